package catalog

import "context"

// Repository is the persistence port for movie-info records.
// Implementations report a missing record with ErrMovieNotFound.
type Repository interface {
	// FindAll returns every persisted record in store-defined order.
	FindAll(ctx context.Context) ([]MovieInfo, error)

	// FindByYear returns the records whose release year equals year.
	// No matches is an empty slice, not an error.
	FindByYear(ctx context.Context, year int) ([]MovieInfo, error)

	// FindByID returns the record with the given id or ErrMovieNotFound.
	FindByID(ctx context.Context, id string) (MovieInfo, error)

	// Save persists the record. An empty ID inserts a new record and the
	// returned copy carries the store-assigned id; a non-empty ID replaces
	// the existing record and returns ErrMovieNotFound when it is gone.
	Save(ctx context.Context, movie MovieInfo) (MovieInfo, error)

	// DeleteByID removes the record with the given id, returning
	// ErrMovieNotFound when nothing was deleted.
	DeleteByID(ctx context.Context, id string) error
}
