package catalog

import "errors"

// ErrMovieNotFound is returned when no record exists for the requested id.
var ErrMovieNotFound = errors.New("movie info not found")
