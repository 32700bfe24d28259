package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/moviestream/internal/api"
	"github.com/dmitrymomot/moviestream/internal/catalog"
	"github.com/dmitrymomot/moviestream/pkg/broadcast"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) Create(ctx context.Context, movie catalog.MovieInfo) (catalog.MovieInfo, error) {
	args := m.Called(ctx, movie)
	created, _ := args.Get(0).(catalog.MovieInfo)
	return created, args.Error(1)
}

func (m *mockCatalog) GetAll(ctx context.Context) ([]catalog.MovieInfo, error) {
	args := m.Called(ctx)
	movies, _ := args.Get(0).([]catalog.MovieInfo)
	return movies, args.Error(1)
}

func (m *mockCatalog) GetByYear(ctx context.Context, year int) ([]catalog.MovieInfo, error) {
	args := m.Called(ctx, year)
	movies, _ := args.Get(0).([]catalog.MovieInfo)
	return movies, args.Error(1)
}

func (m *mockCatalog) GetByID(ctx context.Context, id string) (catalog.MovieInfo, error) {
	args := m.Called(ctx, id)
	movie, _ := args.Get(0).(catalog.MovieInfo)
	return movie, args.Error(1)
}

func (m *mockCatalog) Update(ctx context.Context, id string, movie catalog.MovieInfo) (catalog.MovieInfo, error) {
	args := m.Called(ctx, id, movie)
	merged, _ := args.Get(0).(catalog.MovieInfo)
	return merged, args.Error(1)
}

func (m *mockCatalog) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type testEnv struct {
	svc    *mockCatalog
	hub    *broadcast.ReplayBroadcaster[catalog.MovieInfo]
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	svc := new(mockCatalog)
	hub := broadcast.NewReplayBroadcaster[catalog.MovieInfo](8)
	t.Cleanup(func() { _ = hub.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := api.NewHandler(svc, hub, log)
	return &testEnv{
		svc:    svc,
		hub:    hub,
		router: api.NewRouter(handler, log, nil),
	}
}

func (e *testEnv) do(method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func sampleMovie() catalog.MovieInfo {
	return catalog.MovieInfo{
		Name:        "Star Wars IV",
		Year:        1977,
		Cast:        []string{"Luke", "Obiwan"},
		ReleaseDate: catalog.NewDate(1977, time.January, 1),
	}
}

func withID(m catalog.MovieInfo, id string) catalog.MovieInfo {
	m.ID = id
	return m
}

func decodeMovie(t *testing.T, rec *httptest.ResponseRecorder) catalog.MovieInfo {
	t.Helper()
	var movie catalog.MovieInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movie))
	return movie
}

func TestCreate(t *testing.T) {
	t.Parallel()

	t.Run("valid payload is created and published", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		created := withID(sampleMovie(), "651f1f77bcf86cd799439011")
		env.svc.On("Create", mock.Anything, sampleMovie()).Return(created, nil).Once()

		rec := env.do(http.MethodPost, "/v1/moviesInfo", sampleMovie())
		require.Equal(t, http.StatusCreated, rec.Code)

		got := decodeMovie(t, rec)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.Name, got.Name)

		// The created record reaches the hub exactly once.
		sub := env.hub.Subscribe(context.Background())
		defer sub.Close()
		msg := <-sub.Receive()
		assert.Equal(t, created, msg.Data)
		assert.Equal(t, 1, env.hub.Len())

		env.svc.AssertExpectations(t)
	})

	t.Run("violations return 400 and publish nothing", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		invalid := catalog.MovieInfo{Cast: []string{""}}
		rec := env.do(http.MethodPost, "/v1/moviesInfo", invalid)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var payload struct {
			Errors []string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, []string{
			"cast must not be blank",
			"name must not be blank",
			"releaseDate cannot be null",
			"year must be a positive number",
		}, payload.Errors)

		assert.Zero(t, env.hub.Len())
		env.svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		req := httptest.NewRequest(http.MethodPost, "/v1/moviesInfo", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, env.hub.Len())
	})
}

func TestList(t *testing.T) {
	t.Parallel()

	t.Run("without filter returns everything", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		movies := []catalog.MovieInfo{
			withID(sampleMovie(), "1"),
			withID(sampleMovie(), "2"),
			withID(sampleMovie(), "3"),
		}
		env.svc.On("GetAll", mock.Anything).Return(movies, nil).Once()

		rec := env.do(http.MethodGet, "/v1/moviesInfo", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var got []catalog.MovieInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got, 3)
		env.svc.AssertNotCalled(t, "GetByYear", mock.Anything, mock.Anything)
	})

	t.Run("year filter selects by year", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		env.svc.On("GetByYear", mock.Anything, 1977).
			Return([]catalog.MovieInfo{withID(sampleMovie(), "1")}, nil).Once()

		rec := env.do(http.MethodGet, "/v1/moviesInfo?year=1977", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var got []catalog.MovieInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got, 1)
		env.svc.AssertNotCalled(t, "GetAll", mock.Anything)
	})

	t.Run("no matches is an empty list, not an error", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		env.svc.On("GetByYear", mock.Anything, 2099).Return([]catalog.MovieInfo(nil), nil).Once()

		rec := env.do(http.MethodGet, "/v1/moviesInfo?year=2099", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("non-numeric year returns 400", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		rec := env.do(http.MethodGet, "/v1/moviesInfo?year=nineteen", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var payload struct {
			Errors []string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, []string{"year must be a valid number"}, payload.Errors)
	})
}

func TestGetByID(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		movie := withID(sampleMovie(), "1SW")
		env.svc.On("GetByID", mock.Anything, "1SW").Return(movie, nil).Once()

		rec := env.do(http.MethodGet, "/v1/moviesInfo/1SW", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Star Wars IV", decodeMovie(t, rec).Name)
	})

	t.Run("absent returns bodyless 404", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		env.svc.On("GetByID", mock.Anything, "12SW").
			Return(catalog.MovieInfo{}, catalog.ErrMovieNotFound).Once()

		rec := env.do(http.MethodGet, "/v1/moviesInfo/12SW", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	t.Run("existing id returns merged record", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		incoming := catalog.MovieInfo{
			Name:        "New",
			Year:        2023,
			Cast:        []string{"A"},
			ReleaseDate: catalog.NewDate(2023, time.January, 1),
		}
		merged := withID(incoming, "1SW")
		env.svc.On("Update", mock.Anything, "1SW", incoming).Return(merged, nil).Once()

		rec := env.do(http.MethodPut, "/v1/moviesInfo/1SW", incoming)
		require.Equal(t, http.StatusOK, rec.Code)

		got := decodeMovie(t, rec)
		assert.Equal(t, "1SW", got.ID)
		assert.Equal(t, "New", got.Name)
		assert.Equal(t, 2023, got.Year)
		assert.Equal(t, []string{"A"}, got.Cast)
		assert.True(t, got.ReleaseDate.Equal(catalog.NewDate(2023, time.January, 1)))
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		env.svc.On("Update", mock.Anything, "12SW", mock.Anything).
			Return(catalog.MovieInfo{}, catalog.ErrMovieNotFound).Once()

		rec := env.do(http.MethodPut, "/v1/moviesInfo/12SW", sampleMovie())
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()

	t.Run("existing id returns 204 without body", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		env.svc.On("Delete", mock.Anything, "1SW").Return(nil).Once()

		rec := env.do(http.MethodDelete, "/v1/moviesInfo/1SW", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Empty(t, rec.Header().Get("Content-Type"), "bodyless response carries no content type")
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		env.svc.On("Delete", mock.Anything, "12SW").Return(catalog.ErrMovieNotFound).Once()

		rec := env.do(http.MethodDelete, "/v1/moviesInfo/12SW", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestStream(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	first := withID(sampleMovie(), "1")
	second := withID(sampleMovie(), "2")
	require.NoError(t, env.hub.Broadcast(context.Background(), broadcast.Message[catalog.MovieInfo]{Data: first}))
	require.NoError(t, env.hub.Broadcast(context.Background(), broadcast.Message[catalog.MovieInfo]{Data: second}))

	// The connection is unbounded by design; bound it here so the handler
	// returns after replaying the history.
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/v1/moviesInfo/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2, "full history replayed as one record per line")

	var got catalog.MovieInfo
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "1", got.ID)
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &got))
	assert.Equal(t, "2", got.ID)
}

// Graceful shutdown waits for in-flight responses, so a stream held open by
// a connected client must complete once the hub closes; otherwise every
// restart with a subscriber attached hangs for the full shutdown timeout.
func TestStream_CompletesOnHubClose(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.NoError(t, env.hub.Broadcast(context.Background(), broadcast.Message[catalog.MovieInfo]{Data: withID(sampleMovie(), "1")}))

	ts := httptest.NewServer(env.router)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/v1/moviesInfo/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The client is attached and has received the replayed history.
	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadBytes('\n')
	require.NoError(t, err)
	var got catalog.MovieInfo
	require.NoError(t, json.Unmarshal(line, &got))
	require.Equal(t, "1", got.ID)

	require.NoError(t, env.hub.Close())

	done := make(chan error, 1)
	go func() {
		_, err := io.ReadAll(reader)
		done <- err
	}()
	select {
	case err := <-done:
		assert.NoError(t, err, "stream ends cleanly when the hub closes")
	case <-time.After(2 * time.Second):
		t.Fatal("stream still open after the hub closed")
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	t.Run("healthy", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		rec := env.do(http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("failing probe returns 503", func(t *testing.T) {
		t.Parallel()

		svc := new(mockCatalog)
		hub := broadcast.NewReplayBroadcaster[catalog.MovieInfo](8)
		t.Cleanup(func() { _ = hub.Close() })

		handler := api.NewHandler(svc, hub, nil)
		router := api.NewRouter(handler, nil, func(ctx context.Context) error {
			return context.DeadlineExceeded
		})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates an id", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		env.svc.On("GetAll", mock.Anything).Return([]catalog.MovieInfo{}, nil).Once()
		rec := env.do(http.MethodGet, "/v1/moviesInfo", nil)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("reuses the caller's id", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		env.svc.On("GetAll", mock.Anything).Return([]catalog.MovieInfo{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/moviesInfo", nil)
		req.Header.Set("X-Request-ID", "trace-me")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, "trace-me", rec.Header().Get("X-Request-ID"))
	})
}
