package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Service orchestrates CRUD operations against the repository.
// It holds no record state of its own; the repository is the single
// authority on persisted data.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger used for operational logging.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates a Service backed by the given repository.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo: repo,
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists a new record and returns it with the store-assigned id.
// The caller is expected to have validated the record; any client-supplied
// id is discarded since ids are owned by the store.
func (s *Service) Create(ctx context.Context, movie MovieInfo) (MovieInfo, error) {
	movie.ID = ""

	created, err := s.repo.Save(ctx, movie)
	if err != nil {
		return MovieInfo{}, fmt.Errorf("create movie info: %w", err)
	}

	s.log.InfoContext(ctx, "movie info created",
		slog.String("movie_id", created.ID),
		slog.String("name", created.Name))
	return created, nil
}

// GetAll returns every persisted record in store-defined order.
func (s *Service) GetAll(ctx context.Context) ([]MovieInfo, error) {
	return s.repo.FindAll(ctx)
}

// GetByYear returns the records released in the given year; an empty
// result is not an error.
func (s *Service) GetByYear(ctx context.Context, year int) ([]MovieInfo, error) {
	return s.repo.FindByYear(ctx, year)
}

// GetByID returns the record with the given id or ErrMovieNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (MovieInfo, error) {
	return s.repo.FindByID(ctx, id)
}

// Update replaces all mutable fields of the record with the given id and
// returns the merged record. The id itself is immutable and preserved.
// Returns ErrMovieNotFound when the id is unknown, including the case
// where the record vanishes between lookup and save: the replace is not
// atomic against a concurrent delete, and losing that race surfaces as
// not-found rather than resurrecting the record.
func (s *Service) Update(ctx context.Context, id string, updated MovieInfo) (MovieInfo, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return MovieInfo{}, err
	}

	existing.Name = updated.Name
	existing.Year = updated.Year
	existing.Cast = updated.Cast
	existing.ReleaseDate = updated.ReleaseDate

	merged, err := s.repo.Save(ctx, existing)
	if err != nil {
		return MovieInfo{}, err
	}

	s.log.InfoContext(ctx, "movie info updated", slog.String("movie_id", merged.ID))
	return merged, nil
}

// Delete removes the record with the given id. Deletes are
// existence-checked: an unknown id returns ErrMovieNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "movie info deleted", slog.String("movie_id", id))
	return nil
}
