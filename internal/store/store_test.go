package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/elodex/catalog/internal/db"
)

type fakeResults struct {
	execs  int
	failAt int // -1 = never
}

func (r *fakeResults) Exec() (pgconn.CommandTag, error) {
	defer func() { r.execs++ }()
	if r.execs == r.failAt {
		return pgconn.CommandTag{}, errors.New("constraint violated")
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *fakeResults) Query() (pgx.Rows, error) { return nil, errors.New("not used") }
func (r *fakeResults) QueryRow() pgx.Row         { return nil }
func (r *fakeResults) Close() error              { return nil }

type fakeBatcher struct {
	batches []*pgx.Batch
	failAt  int
}

func (f *fakeBatcher) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	f.batches = append(f.batches, b)
	return &fakeResults{failAt: f.failAt}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func docs(ids ...string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(ids))
	for _, id := range ids {
		out[id] = json.RawMessage(`{"id":"` + id + `"}`)
	}
	return out
}

func TestBuildBatches(t *testing.T) {
	batches := BuildBatches("moves", "run-1", docs("thunder", "absorb", "cut", "bite", "ember"), 2)
	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}

	var order []string
	for _, b := range batches {
		for _, q := range b.QueuedQueries {
			if q.SQL != db.StmtCatalogUpsert {
				t.Errorf("SQL = %q, want prepared statement %q", q.SQL, db.StmtCatalogUpsert)
			}
			if q.Arguments[0] != "moves" || q.Arguments[3] != "run-1" {
				t.Errorf("args = %v, want kind moves and run id run-1", q.Arguments)
			}
			order = append(order, q.Arguments[1].(string))
		}
	}
	want := []string{"absorb", "bite", "cut", "ember", "thunder"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestBuildBatches_Empty(t *testing.T) {
	if got := BuildBatches("items", "r", nil, 10); len(got) != 0 {
		t.Errorf("got %d batches for no documents", len(got))
	}
}

func TestPublish(t *testing.T) {
	fb := &fakeBatcher{failAt: -1}
	p := NewPublisher(fb, quietLogger())
	p.batchSize = 2

	n, err := p.Publish(context.Background(), "species", "run-2", docs("1", "2", "3"))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if n != 3 {
		t.Errorf("written = %d, want 3", n)
	}
	if len(fb.batches) != 2 {
		t.Errorf("sent %d batches, want 2", len(fb.batches))
	}
}

func TestPublish_ExecError(t *testing.T) {
	fb := &fakeBatcher{failAt: 1}
	p := NewPublisher(fb, quietLogger())

	n, err := p.Publish(context.Background(), "items", "run-3", docs("a", "b", "c"))
	if err == nil {
		t.Fatal("expected error")
	}
	if n != 1 {
		t.Errorf("written = %d, want 1 before the failing statement", n)
	}
}

type recordingExec struct {
	args []any
}

func (r *recordingExec) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	r.args = args
	return pgconn.NewCommandTag("SELECT 1"), nil
}

func TestAnnounce(t *testing.T) {
	rec := &recordingExec{}
	ev := PublishedEvent{Kind: "forms", RunID: "run-4", Count: 12}
	if err := Announce(context.Background(), rec, ev); err != nil {
		t.Fatalf("Announce failed: %v", err)
	}
	if rec.args[0] != Channel {
		t.Errorf("channel = %v, want %s", rec.args[0], Channel)
	}
	var got PublishedEvent
	if err := json.Unmarshal([]byte(rec.args[1].(string)), &got); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if got != ev {
		t.Errorf("payload = %+v, want %+v", got, ev)
	}
}
