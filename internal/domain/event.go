package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// EventPayload is the wire shape accepted by the collector.
type EventPayload struct {
	ProducerKey string          `json:"producer_key"`
	OccurredAt  string          `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload"`
}

// Event is one ingested unit of work. Immutable once constructed; the
// payload is an opaque blob from the engine's point of view.
type Event struct {
	ProducerKey string
	OccurredAt  time.Time
	Payload     json.RawMessage
}

// Producers can be slightly ahead of our clock; anything further out is a bad
// clock and gets rejected.
const maxFutureSkew = 2 * time.Minute

func (p *EventPayload) Validate(now time.Time) error {
	now = now.UTC()

	if strings.TrimSpace(p.ProducerKey) == "" {
		return errors.New("producer_key is required")
	}
	if strings.TrimSpace(p.OccurredAt) == "" {
		return errors.New("occurred_at is required")
	}

	ts, err := parseTimestamp(p.OccurredAt)
	if err != nil {
		return err
	}
	if ts.After(now.Add(maxFutureSkew)) {
		return errors.New("occurred_at must not be in the future")
	}

	if len(p.Payload) != 0 && !json.Valid(p.Payload) {
		return errors.New("payload must be valid JSON")
	}

	return nil
}

// ToEvent converts a validated payload into an Event. Call Validate first.
func (p *EventPayload) ToEvent() (Event, error) {
	ts, err := parseTimestamp(p.OccurredAt)
	if err != nil {
		return Event{}, err
	}

	return Event{
		ProducerKey: strings.TrimSpace(p.ProducerKey),
		OccurredAt:  ts,
		Payload:     compactPayload(p.Payload),
	}, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, errors.New("occurred_at must be a valid RFC 3339 timestamp (e.g. 2024-01-01T12:00:00Z)")
	}
	return ts.UTC(), nil
}

// compactPayload re-marshals so the stored form is canonical JSON text.
func compactPayload(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
