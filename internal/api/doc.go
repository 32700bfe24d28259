// Package api exposes the movie-info catalog over HTTP: CRUD endpoints
// under /v1/moviesInfo, the replay-all NDJSON stream of created records at
// /v1/moviesInfo/stream, and a health probe at /health.
//
// The package translates transport concerns only. Validation failures
// become a 400 with the sorted violation list, catalog.ErrMovieNotFound
// becomes a bodyless 404, and anything else from the lower layers is a
// generic 500.
package api
