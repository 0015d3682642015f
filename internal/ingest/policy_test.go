package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTriggerPolicyDecide(t *testing.T) {
	p := TriggerPolicy{BatchSize: 100, BatchTimeout: time.Second}

	tests := []struct {
		name      string
		occupancy int
		elapsed   time.Duration
		wantFlush bool
		wantTake  int
	}{
		{"empty buffer never flushes", 0, 10 * time.Second, false, 0},
		{"below size before timeout", 50, 500 * time.Millisecond, false, 0},
		{"size trigger takes exactly one batch", 100, 0, true, 100},
		{"size trigger leaves remainder", 250, 0, true, 100},
		{"time trigger takes all available", 30, time.Second, true, 30},
		{"time trigger well past timeout", 1, time.Minute, true, 1},
		{"one below size threshold before timeout", 99, 999 * time.Millisecond, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flush, take := p.Decide(tt.occupancy, tt.elapsed)
			assert.Equal(t, tt.wantFlush, flush)
			assert.Equal(t, tt.wantTake, take)
		})
	}
}
