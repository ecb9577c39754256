// Package store publishes catalog artifacts into the Postgres document
// store. Writes are idempotent upserts keyed by (kind, id) with merge
// semantics, sent in batches.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/elodex/catalog/internal/db"
)

// DefaultBatchSize bounds the statements queued per round trip.
const DefaultBatchSize = 500

// Batcher sends a batch of queued statements. *pgxpool.Pool satisfies it.
type Batcher interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Publisher upserts catalog documents.
type Publisher struct {
	db        Batcher
	batchSize int
	logger    *slog.Logger
}

// NewPublisher creates a Publisher writing through db.
func NewPublisher(db Batcher, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{db: db, batchSize: DefaultBatchSize, logger: logger}
}

// Publish upserts every document of kind, stamping each with runID.
// It returns the number of documents written.
func (p *Publisher) Publish(ctx context.Context, kind, runID string, docs map[string]json.RawMessage) (int, error) {
	written := 0
	for _, batch := range BuildBatches(kind, runID, docs, p.batchSize) {
		n, err := p.send(ctx, batch)
		written += n
		if err != nil {
			return written, fmt.Errorf("publish %s: %w", kind, err)
		}
	}
	p.logger.Info("Published documents", "kind", kind, "count", written, "run_id", runID)
	return written, nil
}

func (p *Publisher) send(ctx context.Context, batch *pgx.Batch) (int, error) {
	results := p.db.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return i, fmt.Errorf("upsert %v: %w", batch.QueuedQueries[i].Arguments[1], err)
		}
	}
	return batch.Len(), nil
}

// BuildBatches queues one upsert per document, ordered by id, split into
// batches of at most size statements.
func BuildBatches(kind, runID string, docs map[string]json.RawMessage, size int) []*pgx.Batch {
	if size < 1 {
		size = DefaultBatchSize
	}
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var batches []*pgx.Batch
	var current *pgx.Batch
	for _, id := range ids {
		if current == nil || current.Len() == size {
			current = &pgx.Batch{}
			batches = append(batches, current)
		}
		current.Queue(db.StmtCatalogUpsert, kind, id, []byte(docs[id]), runID)
	}
	return batches
}
