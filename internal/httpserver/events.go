package httpserver

import (
	"errors"
	"net/http"

	"github.com/cun0/firehose/internal/domain"
	"github.com/cun0/firehose/internal/httpserver/middleware"
	"github.com/cun0/firehose/internal/ingest"
)

// PostEvent accepts one event and returns 202 without waiting for the
// database write; the background dispatcher persists it later.
func (h *Handler) PostEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var p domain.EventPayload
	if err := decodeJSON(r.Body, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := h.clock().UTC()
	if err := p.Validate(now); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ev, err := p.ToEvent()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.engine.Submit(ev); err != nil {
		switch {
		case errors.Is(err, ingest.ErrFull):
			writeUnavailable(w, "event buffer full - retry later")
		case errors.Is(err, ingest.ErrStopped):
			writeUnavailable(w, "ingestion shutting down")
		default:
			h.logger.Error("submit failed",
				"error", err,
				"request_id", middleware.GetRequestID(r.Context()),
			)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "accepted",
	})
}
