package ingest

import "time"

// TriggerPolicy decides when the dispatcher flushes and how much it takes.
// Dual trigger: a full batch flushes immediately; otherwise any buffered
// events flush once BatchTimeout has elapsed since the last attempt. This
// bounds both per-write overhead (writes are at most BatchSize) and
// worst-case latency (at most BatchTimeout below the size threshold).
type TriggerPolicy struct {
	BatchSize    int
	BatchTimeout time.Duration
}

// Decide is a pure function of buffer occupancy and elapsed time since the
// last flush attempt (successful or not).
func (p TriggerPolicy) Decide(occupancy int, sinceLastFlush time.Duration) (flush bool, take int) {
	if occupancy <= 0 {
		return false, 0
	}
	if occupancy >= p.BatchSize {
		// Take exactly one batch; any remainder waits for the next cycle.
		return true, p.BatchSize
	}
	if sinceLastFlush >= p.BatchTimeout {
		return true, occupancy
	}
	return false, 0
}
