package ingest

import (
	"errors"
	"sync"

	"github.com/cun0/firehose/internal/domain"
)

var (
	// ErrFull is returned by Enqueue when the buffer is at capacity.
	ErrFull = errors.New("event buffer full")

	// ErrStopped is returned by Enqueue once the engine is shutting down.
	ErrStopped = errors.New("ingest engine stopped")
)

// Buffer is a bounded FIFO staging area for events awaiting flush.
// Producers enqueue concurrently; the dispatcher is the only drainer.
// Admission is non-blocking: at capacity new events are rejected, never
// evicted and never waited for.
type Buffer struct {
	mu     sync.Mutex
	data   []domain.Event
	cap    int
	closed bool
}

func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		data: make([]domain.Event, 0, capacity),
		cap:  capacity,
	}
}

// Enqueue appends e unless the buffer is full or closed. The capacity check
// and the insert happen under one lock, so occupancy never exceeds capacity
// no matter how many producers race.
func (b *Buffer) Enqueue(e domain.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrStopped
	}
	if len(b.data) >= b.cap {
		return ErrFull
	}
	b.data = append(b.data, e)
	return nil
}

// DrainUpTo removes and returns at most n events from the front, preserving
// enqueue order. Concurrent enqueues land either before or after the drain's
// snapshot, never inside the returned batch.
func (b *Buffer) DrainUpTo(n int) []domain.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.data) == 0 || n <= 0 {
		return nil
	}
	if n > len(b.data) {
		n = len(b.data)
	}

	out := make([]domain.Event, n)
	copy(out, b.data[:n])
	b.data = append(b.data[:0], b.data[n:]...)
	return out
}

// ReturnToFront pushes a previously drained batch back ahead of anything
// enqueued since, keeping the batch's relative order. If the result would
// exceed capacity the NEWEST events (the tail of buffered arrivals) are
// dropped, so the oldest data still reaches the sink first. Returns the
// number of events dropped this way.
func (b *Buffer) ReturnToFront(batch []domain.Event) int {
	if len(batch) == 0 {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	merged := make([]domain.Event, 0, len(batch)+len(b.data))
	merged = append(merged, batch...)
	merged = append(merged, b.data...)

	dropped := 0
	if len(merged) > b.cap {
		dropped = len(merged) - b.cap
		merged = merged[:b.cap]
	}
	b.data = merged
	return dropped
}

// Occupancy reports the current number of buffered events.
func (b *Buffer) Occupancy() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Close makes all further Enqueue calls return ErrStopped. Draining still
// works so shutdown can flush what remains.
func (b *Buffer) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}
