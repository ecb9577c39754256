package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Channel is the NOTIFY channel catalog consumers LISTEN on.
const Channel = "catalog_published"

// PublishedEvent is the JSON payload sent on Channel after a kind is published.
type PublishedEvent struct {
	Kind  string `json:"kind"`
	RunID string `json:"run_id"`
	Count int    `json:"count"`
}

// Execer runs a statement. *pgxpool.Pool satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Announce notifies listeners that kind was published by runID.
func Announce(ctx context.Context, db Execer, ev PublishedEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := db.Exec(ctx, "SELECT pg_notify($1, $2)", Channel, string(payload)); err != nil {
		return fmt.Errorf("notify %s: %w", Channel, err)
	}
	return nil
}
