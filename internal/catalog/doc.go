// Package catalog holds the movie-info domain: the MovieInfo entity, its
// validation rules, the repository port the persistence layer implements,
// and the service that orchestrates CRUD against that port.
//
// The package is transport- and storage-agnostic. Absence of a record is
// reported as ErrMovieNotFound so callers can map it to their own not-found
// representation.
package catalog
