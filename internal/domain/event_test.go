package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPayloadValidate(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	valid := EventPayload{
		ProducerKey: "producer-1",
		OccurredAt:  "2026-08-01T11:59:00Z",
		Payload:     json.RawMessage(`{"page":"/home","action":"click"}`),
	}

	t.Run("valid payload", func(t *testing.T) {
		p := valid
		require.NoError(t, p.Validate(now))
	})

	t.Run("empty payload blob is allowed", func(t *testing.T) {
		p := valid
		p.Payload = nil
		require.NoError(t, p.Validate(now))
	})

	t.Run("missing producer_key", func(t *testing.T) {
		p := valid
		p.ProducerKey = "   "
		assert.EqualError(t, p.Validate(now), "producer_key is required")
	})

	t.Run("missing occurred_at", func(t *testing.T) {
		p := valid
		p.OccurredAt = ""
		assert.EqualError(t, p.Validate(now), "occurred_at is required")
	})

	t.Run("non RFC3339 occurred_at", func(t *testing.T) {
		p := valid
		p.OccurredAt = "1754049540"
		assert.Error(t, p.Validate(now))
	})

	t.Run("future occurred_at beyond skew", func(t *testing.T) {
		p := valid
		p.OccurredAt = now.Add(10 * time.Minute).Format(time.RFC3339)
		assert.EqualError(t, p.Validate(now), "occurred_at must not be in the future")
	})

	t.Run("future occurred_at inside skew", func(t *testing.T) {
		p := valid
		p.OccurredAt = now.Add(time.Minute).Format(time.RFC3339)
		assert.NoError(t, p.Validate(now))
	})

	t.Run("invalid payload JSON", func(t *testing.T) {
		p := valid
		p.Payload = json.RawMessage(`{"broken":`)
		assert.EqualError(t, p.Validate(now), "payload must be valid JSON")
	})
}

func TestEventPayloadToEvent(t *testing.T) {
	p := EventPayload{
		ProducerKey: "  producer-9  ",
		OccurredAt:  "2026-08-01T10:30:00+03:00",
		Payload:     json.RawMessage(`{ "b" : 2 , "a" : 1 }`),
	}

	ev, err := p.ToEvent()
	require.NoError(t, err)

	assert.Equal(t, "producer-9", ev.ProducerKey)
	assert.Equal(t, time.Date(2026, 8, 1, 7, 30, 0, 0, time.UTC), ev.OccurredAt)
	assert.JSONEq(t, `{"a":1,"b":2}`, string(ev.Payload))
}

func TestToEventEmptyPayload(t *testing.T) {
	p := EventPayload{
		ProducerKey: "producer-1",
		OccurredAt:  "2026-08-01T10:30:00Z",
	}

	ev, err := p.ToEvent()
	require.NoError(t, err)
	assert.Nil(t, ev.Payload)
}
