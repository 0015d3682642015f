package httpserver

import (
	"context"
	"time"

	"github.com/cun0/firehose/internal/domain"
	"github.com/cun0/firehose/internal/ingest"
	"github.com/cun0/firehose/internal/logging"
)

// Engine is the ingestion surface the handlers need: a non-blocking submit
// plus a counters snapshot for health checks.
type Engine interface {
	Submit(ev domain.Event) error
	Snapshot() ingest.Snapshot
}

// EventStore exposes the sink-side event count for the health endpoint.
type EventStore interface {
	StoredCount(ctx context.Context) (int64, error)
}

type Handler struct {
	logger *logging.Logger
	engine Engine
	store  EventStore
	clock  func() time.Time
}

func New(logger *logging.Logger, engine Engine, store EventStore) *Handler {
	return &Handler{
		logger: logger,
		engine: engine,
		store:  store,
		clock:  time.Now,
	}
}
