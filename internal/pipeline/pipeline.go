// Package pipeline orchestrates the catalog build stages. Each stage lists
// or enumerates its candidates, fetches and normalizes them through the
// worker pool, and writes one artifact plus one failure report.
//
// A failing entity never stops its siblings; it lands in the report.
// Only a missing precondition aborts a stage, and it does so before any
// upstream request.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/elodex/catalog/internal/catalog"
	"github.com/elodex/catalog/internal/config"
	"github.com/elodex/catalog/internal/metrics"
	"github.com/elodex/catalog/internal/pool"
	"github.com/elodex/catalog/internal/provider/pokeapi"
	"github.com/elodex/catalog/internal/typechart"
)

// ErrPrecondition marks a stage that cannot start, e.g. forms without a
// species artifact.
var ErrPrecondition = errors.New("pipeline precondition failed")

const progressEvery = 50

// Deps holds the collaborators of a Builder.
type Deps struct {
	Client *pokeapi.Client
	// Engine computes type matchups. Nil builds a fresh run-scoped cache
	// over Client.
	Engine  *typechart.Engine
	Metrics *metrics.Run
}

// Builder runs the stages of one pipeline run. All stages of a Builder
// share its run id and type cache.
type Builder struct {
	cfg     *config.Config
	client  *pokeapi.Client
	engine  *typechart.Engine
	metrics *metrics.Run
	runID   string
	logger  *slog.Logger
}

// New creates a Builder with a fresh run id.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	engine := deps.Engine
	if engine == nil {
		engine = typechart.NewEngine(typechart.NewCache(deps.Client))
	}
	runID := uuid.NewString()
	return &Builder{
		cfg:     cfg,
		client:  deps.Client,
		engine:  engine,
		metrics: deps.Metrics,
		runID:   runID,
		logger:  logger.With("run_id", runID),
	}
}

// RunID identifies this run in logs and the document store.
func (b *Builder) RunID() string {
	return b.runID
}

// Stage builds one catalog kind.
type Stage struct {
	Kind string
	Run  func(ctx context.Context) (Result, error)
}

// Stages returns every stage in dependency order.
func (b *Builder) Stages() []Stage {
	return []Stage{
		{config.KindSpecies, b.Species},
		{config.KindForms, b.Forms},
		{config.KindMoves, b.Moves},
		{config.KindItems, b.Items},
	}
}

// Stage returns the stage for kind.
func (b *Builder) Stage(kind string) (Stage, bool) {
	for _, s := range b.Stages() {
		if s.Kind == kind {
			return s, true
		}
	}
	return Stage{}, false
}

// All runs every stage in order. Only a stage error (a missing precondition
// or an artifact that cannot be written) stops the run; listing and
// per-entity failures land in the stage report.
func (b *Builder) All(ctx context.Context) ([]Result, error) {
	var results []Result
	for _, s := range b.Stages() {
		res, err := s.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("%s stage: %w", s.Kind, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// collect runs fn over inputs through the worker pool and splits the
// outcomes into records keyed by id and failures.
func collect[In, Out any](ctx context.Context, b *Builder, kind string, inputs []In,
	id func(In) string, fn func(context.Context, In) (Out, error),
) (map[string]Out, []catalog.Failure) {
	outcomes := pool.Run(ctx, inputs, pool.Options{
		Concurrency: b.cfg.Concurrency,
		PauseEvery:  b.cfg.ThrottleEvery,
		Pause:       b.cfg.ThrottlePause,
		Progress: func(done, total int) {
			if done%progressEvery == 0 || done == total {
				b.logger.Info("Stage progress", "kind", kind, "done", done, "total", total)
			}
		},
	}, fn)

	records := make(map[string]Out, len(outcomes))
	var failures []catalog.Failure
	for _, o := range outcomes {
		key := id(o.Input)
		if o.Err == nil {
			records[key] = o.Value
			continue
		}
		f := toFailure(key, o.Err)
		b.logger.Warn("Entity failed", "kind", kind, "id", f.ID, "reason", f.Reason, "url", f.URL, "error", f.Detail)
		failures = append(failures, f)
	}
	return records, failures
}

// finish writes the artifact and report of a stage and records metrics.
func finish[T any](b *Builder, res *Result, records map[string]T, start time.Time) error {
	res.Written = len(records)

	path, err := catalog.WriteRecords(b.cfg.OutDir, res.Kind, records)
	if err != nil {
		return err
	}
	res.Artifacts = append(res.Artifacts, path)

	report, err := catalog.WriteReport(b.cfg.OutDir, res.Kind, res.Failures)
	if err != nil {
		return err
	}
	res.Artifacts = append(res.Artifacts, report)
	res.Duration = time.Since(start)

	if b.metrics != nil {
		b.metrics.ObserveStage(res.Kind, res.Written, res.FailureReasons(), res.Duration)
		stats := b.engine.Cache().Stats()
		b.metrics.ObserveTypeCache(stats.Hits, stats.Fetches)
	}
	b.logger.Info("Stage finished", "summary", res.Summary(), "report", report)
	return nil
}

// list fetches a listing endpoint. On failure it records a stage-level
// report entry on res and returns false; the stage then writes an empty
// artifact and its report instead of aborting the run.
func (b *Builder) list(ctx context.Context, res *Result, resource string) ([]pokeapi.NamedResource, bool) {
	listing, err := b.client.List(ctx, resource)
	if err != nil {
		res.ListingFailed = true
		res.AddFailure(catalog.Failure{
			ID:     resource,
			Reason: catalog.ReasonListingFailed,
			URL:    b.client.URL(resource),
			Detail: err.Error(),
		})
		b.logger.Error("Listing failed", "kind", res.Kind, "resource", resource, "error", err)
		return nil, false
	}
	return listing, true
}

func (b *Builder) newResult(kind string) Result {
	return Result{Kind: kind, RunID: b.runID}
}

// fetchFailure turns an upstream error into a report entry.
func fetchFailure(id, url, resource string, err error) *catalog.Failure {
	return &catalog.Failure{ID: id, URL: url, Reason: reasonFor(err, resource), Detail: err.Error()}
}

// toFailure converts a worker error into a report entry, keeping the
// context of a *catalog.Failure when the worker returned one.
func toFailure(id string, err error) catalog.Failure {
	var f *catalog.Failure
	if errors.As(err, &f) {
		out := *f
		if out.ID == "" {
			out.ID = id
		}
		return out
	}
	return catalog.Failure{ID: id, Reason: reasonFor(err, ""), Detail: err.Error()}
}

// reasonFor classifies an error into a report reason code.
func reasonFor(err error, resource string) string {
	var statusErr *pokeapi.StatusError
	switch {
	case errors.Is(err, pokeapi.ErrNotFound):
		return catalog.NotFoundReason(resource)
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound && resource != "":
		return catalog.NotFoundReason(resource)
	case errors.As(err, &statusErr) && statusErr.Transient():
		return catalog.ReasonUpstreamUnavailable
	case errors.As(err, &statusErr):
		return catalog.ReasonUpstreamRejected
	case errors.Is(err, pokeapi.ErrDecode):
		return catalog.ReasonMalformedPayload
	case errors.Is(err, pokeapi.ErrIncompletePayload):
		return catalog.ReasonPayloadIncomplete
	case errors.Is(err, pool.ErrPanic):
		return catalog.ReasonPanic
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return catalog.ReasonCancelled
	default:
		return catalog.ReasonNetwork
	}
}
