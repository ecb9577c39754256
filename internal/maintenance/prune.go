// Package maintenance holds document-store housekeeping that runs after a
// publish.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/elodex/catalog/internal/config"
)

// Execer runs a statement. *pgxpool.Pool satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const pruneSQL = `
DELETE FROM ` + config.DocumentsTable + `
WHERE kind = $1
  AND run_id <> $2`

// PruneSuperseded removes documents of kind that the publish of runID did
// not touch. Publish stamps every document it writes, so the rows left with
// another run id are the records the newest full artifact no longer holds.
//
// Only call it after publishing a complete artifact for kind.
func PruneSuperseded(ctx context.Context, db Execer, kind, runID string, logger *slog.Logger) (int64, error) {
	if runID == "" {
		return 0, fmt.Errorf("prune %s: empty run id", kind)
	}

	start := time.Now()
	tag, err := db.Exec(ctx, pruneSQL, kind, runID)
	dur := time.Since(start).Round(time.Millisecond)
	if err != nil {
		logger.Warn("Prune: failed to remove superseded documents",
			"kind", kind, "duration", dur, "error", err)
		return 0, fmt.Errorf("prune %s: %w", kind, err)
	}
	if tag.RowsAffected() > 0 {
		logger.Info("Prune: removed superseded documents",
			"kind", kind, "count", tag.RowsAffected(), "duration", dur)
	}
	return tag.RowsAffected(), nil
}
