package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cun0/firehose/internal/domain"
)

// EventSink writes event batches to Postgres. Each Flush runs in a single
// transaction, so a batch is either entirely durable or entirely not; the
// dispatcher relies on that for its retry semantics.
//
// Expected schema:
//
//	CREATE TABLE events (
//	    id           BIGSERIAL PRIMARY KEY,
//	    producer_key TEXT        NOT NULL,
//	    occurred_at  TIMESTAMPTZ NOT NULL,
//	    payload      JSONB       NOT NULL DEFAULT '{}',
//	    received_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type EventSink struct {
	pool *pgxpool.Pool
}

func NewEventSink(pool *pgxpool.Pool) *EventSink {
	return &EventSink{pool: pool}
}

func (s *EventSink) Flush(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sql, args := buildInsertBatchSQL(events)

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// StoredCount reports the total number of events in the table, for the
// health endpoint. Best effort: callers may omit the figure on error.
func (s *EventSink) StoredCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*)::bigint FROM events;`).Scan(&n)
	return n, err
}

func buildInsertBatchSQL(events []domain.Event) (string, []any) {
	var b strings.Builder
	// 3 params per event.
	args := make([]any, 0, len(events)*3)

	b.WriteString(`
	INSERT INTO events (producer_key, occurred_at, payload)
	VALUES
`)

	argPos := 1
	for i, e := range events {
		if i > 0 {
			b.WriteString(",\n")
		}

		b.WriteString(fmt.Sprintf(
			"($%d,$%d,$%d::jsonb)",
			argPos, argPos+1, argPos+2,
		))

		args = append(args,
			e.ProducerKey,
			e.OccurredAt,
			toJSONBText(e.Payload),
		)

		argPos += 3
	}

	b.WriteString(";")

	return b.String(), args
}

func toJSONBText(raw []byte) string {
	if len(raw) == 0 {
		return `{}`
	}
	return string(raw)
}
