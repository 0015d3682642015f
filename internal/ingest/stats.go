package ingest

import "sync/atomic"

// Stats holds the engine's counters. Owned by the Engine instance rather
// than being package globals, so multiple engines can coexist in tests.
// Written only by the admission path and the dispatcher; read by anyone.
type Stats struct {
	received            atomic.Uint64
	flushed             atomic.Uint64
	failedFlushAttempts atomic.Uint64
	rejected            atomic.Uint64
	dropped             atomic.Uint64
}

// Snapshot is a point-in-time, non-blocking read of the counters plus the
// live buffer occupancy.
//
// Audit invariant (outside of an in-flight flush):
//
//	Received == Flushed + Occupancy + Dropped
//
// Rejected events never enter the buffer and are not counted as received.
type Snapshot struct {
	Received            uint64 `json:"received"`
	Flushed             uint64 `json:"flushed"`
	FailedFlushAttempts uint64 `json:"failed_flush_attempts"`
	Rejected            uint64 `json:"rejected"`
	Dropped             uint64 `json:"dropped"`
	Occupancy           int    `json:"queue_size"`
}

func (s *Stats) snapshot(occupancy int) Snapshot {
	return Snapshot{
		Received:            s.received.Load(),
		Flushed:             s.flushed.Load(),
		FailedFlushAttempts: s.failedFlushAttempts.Load(),
		Rejected:            s.rejected.Load(),
		Dropped:             s.dropped.Load(),
		Occupancy:           occupancy,
	}
}
