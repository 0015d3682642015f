package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/cun0/firehose/internal/domain"
	"github.com/cun0/firehose/internal/logging"
	"github.com/cun0/firehose/internal/metrics"
)

type Config struct {
	// Capacity is the maximum number of buffered events.
	Capacity int
	// BatchSize is the size trigger: a full batch flushes immediately.
	BatchSize int
	// BatchTimeout is the time trigger for partial batches.
	BatchTimeout time.Duration
	// PollInterval is how often the dispatcher evaluates the trigger policy.
	PollInterval time.Duration
	// FlushDeadline bounds a single sink call.
	FlushDeadline time.Duration
}

// Engine accepts events from any number of producers, stages them in a
// bounded buffer and flushes them to the sink in batches from a single
// background dispatcher. Producers never block and never see sink errors;
// their only failure modes are ErrFull and ErrStopped.
type Engine struct {
	cfg    Config
	buf    *Buffer
	stats  *Stats
	disp   *dispatcher
	logger *logging.Logger
}

func NewEngine(sink Sink, cfg Config, logger *logging.Logger) *Engine {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 100_000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}
	if cfg.FlushDeadline <= 0 {
		cfg.FlushDeadline = 5 * time.Second
	}

	buf := NewBuffer(cfg.Capacity)
	stats := &Stats{}
	policy := TriggerPolicy{BatchSize: cfg.BatchSize, BatchTimeout: cfg.BatchTimeout}

	metrics.QueueCapacity.Set(float64(cfg.Capacity))

	return &Engine{
		cfg:    cfg,
		buf:    buf,
		stats:  stats,
		disp:   newDispatcher(buf, sink, policy, stats, logger, cfg.PollInterval, cfg.FlushDeadline),
		logger: logger,
	}
}

// Start launches the background dispatcher.
func (e *Engine) Start() error {
	go e.disp.loop()
	return nil
}

// Stop rejects further submissions, signals the dispatcher and blocks until
// its final drain attempt completes or ctx expires. The dispatcher keeps
// running in the background if the caller gives up early.
func (e *Engine) Stop(ctx context.Context) error {
	e.buf.Close()
	e.disp.stop()

	select {
	case <-e.disp.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit offers one event to the buffer and returns an immediate decision.
// ErrFull means the staging area is at capacity (producers should back off
// and retry); ErrStopped means the engine is shutting down.
func (e *Engine) Submit(ev domain.Event) error {
	if err := e.buf.Enqueue(ev); err != nil {
		switch {
		case errors.Is(err, ErrFull):
			e.stats.rejected.Add(1)
			metrics.EventsRejected.WithLabelValues("full").Inc()
		case errors.Is(err, ErrStopped):
			metrics.EventsRejected.WithLabelValues("shutting_down").Inc()
		}
		return err
	}

	e.stats.received.Add(1)
	metrics.EventsReceived.Inc()
	return nil
}

// Snapshot returns the current counters. Safe to call at any time, including
// during shutdown.
func (e *Engine) Snapshot() Snapshot {
	return e.stats.snapshot(e.buf.Occupancy())
}
