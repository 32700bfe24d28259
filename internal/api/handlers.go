package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/moviestream/internal/catalog"
	"github.com/dmitrymomot/moviestream/pkg/broadcast"
)

// violationYearNotNumeric rejects a non-numeric ?year= filter. It is a
// query-parameter message, complementing the record violation messages
// owned by the catalog package.
const violationYearNotNumeric = "year must be a valid number"

// CatalogService is the slice of the catalog service the handlers need.
type CatalogService interface {
	Create(ctx context.Context, movie catalog.MovieInfo) (catalog.MovieInfo, error)
	GetAll(ctx context.Context) ([]catalog.MovieInfo, error)
	GetByYear(ctx context.Context, year int) ([]catalog.MovieInfo, error)
	GetByID(ctx context.Context, id string) (catalog.MovieInfo, error)
	Update(ctx context.Context, id string, movie catalog.MovieInfo) (catalog.MovieInfo, error)
	Delete(ctx context.Context, id string) error
}

// Handler carries the catalog endpoints' dependencies.
type Handler struct {
	catalog CatalogService
	hub     broadcast.Broadcaster[catalog.MovieInfo]
	log     *slog.Logger
}

// NewHandler creates the catalog HTTP handler set. A nil logger disables
// logging.
func NewHandler(svc CatalogService, hub broadcast.Broadcaster[catalog.MovieInfo], log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{catalog: svc, hub: hub, log: log}
}

// list handles GET /v1/moviesInfo with an optional year filter.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		movies []catalog.MovieInfo
		err    error
	)

	if rawYear := r.URL.Query().Get("year"); rawYear != "" {
		year, convErr := strconv.Atoi(rawYear)
		if convErr != nil {
			respondViolations(w, []string{violationYearNotNumeric})
			return
		}
		movies, err = h.catalog.GetByYear(r.Context(), year)
	} else {
		movies, err = h.catalog.GetAll(r.Context())
	}
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to list movie info", slog.Any("error", err))
		respondServerError(w)
		return
	}

	if movies == nil {
		movies = []catalog.MovieInfo{}
	}
	respondJSON(w, http.StatusOK, movies)
}

// getByID handles GET /v1/moviesInfo/{id}.
func (h *Handler) getByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	movie, err := h.catalog.GetByID(r.Context(), id)
	switch {
	case errors.Is(err, catalog.ErrMovieNotFound):
		respondNotFound(w)
	case err != nil:
		h.log.ErrorContext(r.Context(), "failed to get movie info",
			slog.String("movie_id", id), slog.Any("error", err))
		respondServerError(w)
	default:
		respondJSON(w, http.StatusOK, movie)
	}
}

// create handles POST /v1/moviesInfo: validate, persist, publish to the
// hub, respond 201 with the store-assigned id.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var movie catalog.MovieInfo
	if err := json.NewDecoder(r.Body).Decode(&movie); err != nil {
		respondViolations(w, []string{"request body must be valid JSON"})
		return
	}

	if violations := catalog.Validate(movie); violations != nil {
		respondViolations(w, violations)
		return
	}

	created, err := h.catalog.Create(r.Context(), movie)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to create movie info", slog.Any("error", err))
		respondServerError(w)
		return
	}

	// Publication must survive the client hanging up right after the write
	// committed, so it is detached from the request's cancellation.
	if err := h.hub.Broadcast(context.WithoutCancel(r.Context()), broadcast.Message[catalog.MovieInfo]{Data: created}); err != nil {
		h.log.ErrorContext(r.Context(), "failed to publish created movie info",
			slog.String("movie_id", created.ID), slog.Any("error", err))
	}

	respondJSON(w, http.StatusCreated, created)
}

// update handles PUT /v1/moviesInfo/{id}: full replace of mutable fields,
// id preserved.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var movie catalog.MovieInfo
	if err := json.NewDecoder(r.Body).Decode(&movie); err != nil {
		respondViolations(w, []string{"request body must be valid JSON"})
		return
	}

	merged, err := h.catalog.Update(r.Context(), id, movie)
	switch {
	case errors.Is(err, catalog.ErrMovieNotFound):
		respondNotFound(w)
	case err != nil:
		h.log.ErrorContext(r.Context(), "failed to update movie info",
			slog.String("movie_id", id), slog.Any("error", err))
		respondServerError(w)
	default:
		respondJSON(w, http.StatusOK, merged)
	}
}

// delete handles DELETE /v1/moviesInfo/{id}. Deletes are
// existence-checked; unknown ids get a 404.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.catalog.Delete(r.Context(), id)
	switch {
	case errors.Is(err, catalog.ErrMovieNotFound):
		respondNotFound(w)
	case err != nil:
		h.log.ErrorContext(r.Context(), "failed to delete movie info",
			slog.String("movie_id", id), slog.Any("error", err))
		respondServerError(w)
	default:
		respondJSON(w, http.StatusNoContent, nil)
	}
}

// stream handles GET /v1/moviesInfo/stream: newline-delimited JSON, the
// complete creation history first, then live events until the client
// disconnects.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub := h.hub.Subscribe(r.Context())
	defer sub.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	encoder := json.NewEncoder(w)
	for {
		select {
		case <-r.Context().Done():
			return

		case msg, open := <-sub.Receive():
			if !open {
				return
			}
			if err := encoder.Encode(msg.Data); err != nil {
				h.log.DebugContext(r.Context(), "stream write failed", slog.Any("error", err))
				return
			}
			flusher.Flush()
		}
	}
}
