package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cun0/firehose/internal/domain"
	"github.com/cun0/firehose/internal/ingest"
	"github.com/cun0/firehose/internal/logging"
)

type stubEngine struct {
	submitErr error
	submitted []domain.Event
	snap      ingest.Snapshot
}

func (s *stubEngine) Submit(ev domain.Event) error {
	if s.submitErr != nil {
		return s.submitErr
	}
	s.submitted = append(s.submitted, ev)
	return nil
}

func (s *stubEngine) Snapshot() ingest.Snapshot { return s.snap }

type stubStore struct {
	count int64
	err   error
}

func (s *stubStore) StoredCount(ctx context.Context) (int64, error) {
	return s.count, s.err
}

func testLogger() *logging.Logger {
	return &logging.Logger{Logger: slog.New(slog.DiscardHandler)}
}

func newTestHandler(engine Engine, store EventStore) http.Handler {
	return BuildHandler(Config{RequestTimeout: 3 * time.Second}, testLogger(), engine, store)
}

func postEvent(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/event", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"producer_key":"p-1","occurred_at":"2026-08-01T10:00:00Z","payload":{"page":"/home"}}`

func TestPostEventAccepted(t *testing.T) {
	engine := &stubEngine{}
	h := newTestHandler(engine, &stubStore{})

	rec := postEvent(t, h, validBody)

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp["status"])

	require.Len(t, engine.submitted, 1)
	assert.Equal(t, "p-1", engine.submitted[0].ProducerKey)
}

func TestPostEventValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not JSON", `not json at all`},
		{"unknown field", `{"producer_key":"p","occurred_at":"2026-08-01T10:00:00Z","bogus":1}`},
		{"missing producer_key", `{"occurred_at":"2026-08-01T10:00:00Z"}`},
		{"bad timestamp", `{"producer_key":"p","occurred_at":"yesterday"}`},
		{"trailing garbage", validBody + `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &stubEngine{}
			h := newTestHandler(engine, &stubStore{})

			rec := postEvent(t, h, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, engine.submitted)
		})
	}
}

func TestPostEventBufferFull(t *testing.T) {
	h := newTestHandler(&stubEngine{submitErr: ingest.ErrFull}, &stubStore{})

	rec := postEvent(t, h, validBody)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "buffer full")
}

func TestPostEventShuttingDown(t *testing.T) {
	h := newTestHandler(&stubEngine{submitErr: ingest.ErrStopped}, &stubStore{})

	rec := postEvent(t, h, validBody)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "shutting down")
}

func TestPostEventUnexpectedError(t *testing.T) {
	h := newTestHandler(&stubEngine{submitErr: errors.New("boom")}, &stubStore{})

	rec := postEvent(t, h, validBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPostEventMethodNotAllowed(t *testing.T) {
	h := newTestHandler(&stubEngine{}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/event", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthz(t *testing.T) {
	engine := &stubEngine{snap: ingest.Snapshot{
		Received:            120,
		Flushed:             100,
		FailedFlushAttempts: 3,
		Rejected:            7,
		Dropped:             0,
		Occupancy:           20,
	}}
	h := newTestHandler(engine, &stubStore{count: 100})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "ok", resp["status"])
	assert.EqualValues(t, 120, resp["received"])
	assert.EqualValues(t, 100, resp["flushed"])
	assert.EqualValues(t, 3, resp["failed_flush_attempts"])
	assert.EqualValues(t, 7, resp["rejected"])
	assert.EqualValues(t, 20, resp["queue_size"])
	assert.EqualValues(t, 100, resp["stored_events"])
}

func TestHealthzOmitsStoredCountOnDBError(t *testing.T) {
	engine := &stubEngine{}
	h := newTestHandler(engine, &stubStore{err: errors.New("db down")})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotContains(t, resp, "stored_events")
}

func TestPostEventBodyLimit(t *testing.T) {
	engine := &stubEngine{}
	h := newTestHandler(engine, &stubStore{})

	big := strings.Repeat("x", 300<<10)
	body := `{"producer_key":"p","occurred_at":"2026-08-01T10:00:00Z","payload":{"blob":"` + big + `"}}`

	rec := postEvent(t, h, body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, engine.submitted)
}
