package httpserver

import (
	"context"
	"net/http"
	"time"
)

// Healthz reports the engine counters and, best effort, the sink-side event
// count. Usable at any time, including during shutdown: the snapshot read
// never blocks on the buffer's hot path.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()

	resp := map[string]any{
		"status":                "ok",
		"queue_size":            snap.Occupancy,
		"received":              snap.Received,
		"flushed":               snap.Flushed,
		"failed_flush_attempts": snap.FailedFlushAttempts,
		"rejected":              snap.Rejected,
		"dropped":               snap.Dropped,
	}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()

		if n, err := h.store.StoredCount(ctx); err == nil {
			resp["stored_events"] = n
		}
		// A DB hiccup must not fail the health check; the engine itself is
		// designed to stay up through sink outages.
	}

	writeJSON(w, http.StatusOK, resp)
}
