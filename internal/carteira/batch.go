package carteira

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// defaultBatchSize bounds one upsert wave when the caller passes an
// invalid size. Matches the portal's historical chunking of ERP exports.
const defaultBatchSize = 400

// UpsertOrders writes records in sequential batches of at most batchSize
// rows; rows inside a batch run concurrently. Batches are sequential so a
// large export cannot exhaust the connection pool.
func (s *Store) UpsertOrders(ctx context.Context, records []OrderRecord, batchSize int) error {
	return upsertChunked(ctx, records, batchSize, s.UpsertOrder)
}

// UpsertTools writes die records with the same chunking as UpsertOrders.
func (s *Store) UpsertTools(ctx context.Context, records []ToolRecord, batchSize int) error {
	return upsertChunked(ctx, records, batchSize, s.UpsertTool)
}

func upsertChunked[T any](ctx context.Context, records []T, batchSize int, upsert func(context.Context, T) error) error {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))

		g, gctx := errgroup.WithContext(ctx)
		for _, rec := range records[start:end] {
			g.Go(func() error {
				return upsert(gctx, rec)
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("upserting batch starting at row %d: %w", start, err)
		}
	}
	return nil
}

// Chunks returns the number of batches a record count splits into.
// Exposed for ingestion logging.
func Chunks(n, batchSize int) int {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if n == 0 {
		return 0
	}
	return (n + batchSize - 1) / batchSize
}
