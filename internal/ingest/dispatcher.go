package ingest

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/cun0/firehose/internal/domain"
	"github.com/cun0/firehose/internal/logging"
	"github.com/cun0/firehose/internal/metrics"
)

// dispatcher is the single consumer of the buffer. One goroutine runs loop();
// there is never more than one sink call in flight, so batches arrive at the
// sink in drain order.
type dispatcher struct {
	buf    *Buffer
	sink   Sink
	policy TriggerPolicy
	stats  *Stats
	logger *logging.Logger

	pollInterval  time.Duration
	flushDeadline time.Duration

	stopCh chan struct{}
	doneCh chan struct{}

	lastFlush time.Time
	retry     *backoff.ExponentialBackOff
}

func newDispatcher(buf *Buffer, sink Sink, policy TriggerPolicy, stats *Stats, logger *logging.Logger, pollInterval, flushDeadline time.Duration) *dispatcher {
	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = pollInterval
	retry.MaxInterval = 5 * time.Second
	retry.MaxElapsedTime = 0 // retry for as long as the sink is down

	return &dispatcher{
		buf:           buf,
		sink:          sink,
		policy:        policy,
		stats:         stats,
		logger:        logger,
		pollInterval:  pollInterval,
		flushDeadline: flushDeadline,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
		retry:         retry,
	}
}

func (d *dispatcher) loop() {
	defer close(d.doneCh)

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	d.lastFlush = time.Now()

	for {
		select {
		case <-d.stopCh:
			d.finalDrain()
			return
		case <-ticker.C:
			d.cycle()
		}
	}
}

func (d *dispatcher) cycle() {
	occ := d.buf.Occupancy()
	metrics.QueueDepth.Set(float64(occ))

	flush, take := d.policy.Decide(occ, time.Since(d.lastFlush))
	if !flush {
		return
	}

	batch := d.buf.DrainUpTo(take)
	if len(batch) == 0 {
		return
	}

	// The timer tracks attempts, not successes: a failing sink must not turn
	// the time trigger into a busy loop.
	d.lastFlush = time.Now()

	if err := d.flush(batch); err != nil {
		d.stats.failedFlushAttempts.Add(1)
		metrics.FlushFailures.Inc()

		dropped := d.buf.ReturnToFront(batch)
		if dropped > 0 {
			d.stats.dropped.Add(uint64(dropped))
			metrics.EventsDropped.Add(float64(dropped))
		}

		d.logger.Error("flush failed, batch returned to buffer",
			"error", err,
			"batch_size", len(batch),
			"dropped", dropped,
		)

		d.sleep(d.retry.NextBackOff())
		return
	}

	d.stats.flushed.Add(uint64(len(batch)))
	metrics.EventsFlushed.Add(float64(len(batch)))
	d.retry.Reset()
}

// flush performs one sink call outside any buffer lock, bounded by the
// configured deadline. A timeout is indistinguishable from a sink failure.
func (d *dispatcher) flush(batch []domain.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.flushDeadline)
	defer cancel()

	start := time.Now()
	err := d.sink.Flush(ctx, batch)
	metrics.FlushDuration.Observe(time.Since(start).Seconds())
	metrics.FlushBatchSize.Observe(float64(len(batch)))
	return err
}

// sleep pauses between attempts against a failing sink. A stop signal cuts
// it short; the outer loop then runs the final drain.
func (d *dispatcher) sleep(dur time.Duration) {
	if dur <= 0 {
		return
	}
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-t.C:
	case <-d.stopCh:
	}
}

// finalDrain flushes whatever remains, one attempt per chunk of at most
// BatchSize. The first failure abandons the rest: shutdown must terminate,
// so the leftover events are recorded as dropped rather than retried.
func (d *dispatcher) finalDrain() {
	defer func() { metrics.QueueDepth.Set(float64(d.buf.Occupancy())) }()

	for {
		batch := d.buf.DrainUpTo(d.policy.BatchSize)
		if len(batch) == 0 {
			return
		}

		if err := d.flush(batch); err != nil {
			d.stats.failedFlushAttempts.Add(1)
			metrics.FlushFailures.Inc()

			lost := uint64(len(batch))
			for {
				rest := d.buf.DrainUpTo(d.policy.BatchSize)
				if len(rest) == 0 {
					break
				}
				lost += uint64(len(rest))
			}
			d.stats.dropped.Add(lost)
			metrics.EventsDropped.Add(float64(lost))

			d.logger.Error("shutdown flush failed, dropping remaining events",
				"error", err,
				"dropped", lost,
			)
			return
		}

		d.stats.flushed.Add(uint64(len(batch)))
		metrics.EventsFlushed.Add(float64(len(batch)))
	}
}

// stop signals shutdown (idempotent close pattern).
func (d *dispatcher) stop() {
	select {
	case <-d.stopCh:
		// already stopping
	default:
		close(d.stopCh)
	}
}
