package ingest

import (
	"context"

	"github.com/cun0/firehose/internal/domain"
)

// Sink performs one atomic batched write: the batch is either entirely
// durable or entirely not. The dispatcher never issues overlapping calls,
// so implementations only need to be safe for sequential reuse.
type Sink interface {
	Flush(ctx context.Context, events []domain.Event) error
}
