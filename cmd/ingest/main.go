// Command ingest is the catalog build CLI.
//
// Usage:
//
//	catalog-ingest build species
//	catalog-ingest build forms --out data/catalog
//	catalog-ingest build all --publish
//	catalog-ingest publish moves items
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/elodex/catalog/internal/catalog"
	"github.com/elodex/catalog/internal/config"
	"github.com/elodex/catalog/internal/db"
	"github.com/elodex/catalog/internal/maintenance"
	"github.com/elodex/catalog/internal/metrics"
	"github.com/elodex/catalog/internal/pipeline"
	"github.com/elodex/catalog/internal/provider/pokeapi"
	"github.com/elodex/catalog/internal/store"
)

// Exit codes.
const (
	exitFailure      = 1
	exitPrecondition = 2
)

var (
	configPath string
	outDir     string
	debug      bool
	logger     = slog.Default()
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "catalog-ingest",
		Short:         "Build and publish the creature catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CATALOG_CONFIG"), "YAML config file (env CATALOG_CONFIG)")
	root.PersistentFlags().StringVar(&outDir, "out", "", "Artifact directory (overrides CATALOG_OUT_DIR)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	root.AddCommand(buildCmd())
	root.AddCommand(publishCmd())

	if err := root.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		if errors.Is(err, pipeline.ErrPrecondition) {
			os.Exit(exitPrecondition)
		}
		os.Exit(exitFailure)
	}
}

// --------------------------------------------------------------------------
// build command
// --------------------------------------------------------------------------

func buildCmd() *cobra.Command {
	var publish, prune bool
	cmd := &cobra.Command{
		Use:       "build [species|forms|moves|items|all]",
		Short:     "Build catalog artifacts from PokeAPI",
		Args:      cobra.ExactArgs(1),
		ValidArgs: buildTargets,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkKind(args[0], buildTargets); err != nil {
				return err
			}
			return run(func(ctx context.Context, cfg *config.Config) error {
				m := metrics.New()
				opts := pokeapi.Options{
					BaseURL:           cfg.PokeAPIBaseURL,
					UserAgent:         cfg.UserAgent,
					Timeout:           cfg.HTTPTimeout,
					RequestsPerMinute: cfg.RequestsPerMinute,
					MaxAttempts:       cfg.RetryAttempts,
					RetryDelay:        cfg.RetryDelay,
					Observer:          m,
				}
				client := pokeapi.NewClient(opts, logger)
				b := pipeline.New(cfg, pipeline.Deps{Client: client, Metrics: m}, logger)

				results, buildErr := runStages(ctx, b, args[0])
				for _, r := range results {
					logger.Info("Stage summary", "summary", r.Summary())
				}
				if cfg.MetricsFile != "" {
					if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
						logger.Warn("Failed to write metrics", "path", cfg.MetricsFile, "error", err)
					}
				}
				if buildErr != nil {
					return buildErr
				}

				if !publish {
					return nil
				}
				kinds := make([]string, 0, len(results)+1)
				for _, r := range results {
					if r.ListingFailed {
						logger.Warn("Skipping publish of incomplete stage", "kind", r.Kind)
						continue
					}
					kinds = append(kinds, r.Kind)
					if r.Kind == config.KindSpecies {
						kinds = append(kinds, config.KindLearnsets)
					}
				}
				return publishArtifacts(ctx, cfg, b.RunID(), kinds, prune)
			})
		},
	}
	cmd.Flags().BoolVar(&publish, "publish", false, "Upsert the built artifacts into the document store")
	cmd.Flags().BoolVar(&prune, "prune", false, "With --publish, delete stored documents absent from the new artifacts")
	return cmd
}

func runStages(ctx context.Context, b *pipeline.Builder, target string) ([]pipeline.Result, error) {
	if target == "all" {
		return b.All(ctx)
	}
	stage, ok := b.Stage(target)
	if !ok {
		return nil, fmt.Errorf("unknown stage %q", target)
	}
	res, err := stage.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s stage: %w", target, err)
	}
	return []pipeline.Result{res}, nil
}

// --------------------------------------------------------------------------
// publish command
// --------------------------------------------------------------------------

func publishCmd() *cobra.Command {
	var (
		runID string
		prune bool
	)
	cmd := &cobra.Command{
		Use:   "publish [kind...]",
		Short: "Upsert existing artifacts into the document store",
		Long:  "Upsert existing artifacts into the document store. With no arguments every artifact kind is published.",
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := args
			if len(kinds) == 0 {
				kinds = publishKinds
			}
			for _, k := range kinds {
				if err := checkKind(k, publishKinds); err != nil {
					return err
				}
			}
			return run(func(ctx context.Context, cfg *config.Config) error {
				return publishArtifacts(ctx, cfg, runID, kinds, prune)
			})
		},
	}
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete stored documents absent from the published artifacts")
	cmd.Flags().StringVar(&runID, "run-id", "manual-"+time.Now().UTC().Format("20060102T150405Z"), "Run id stamped on published documents")
	return cmd
}

func publishArtifacts(ctx context.Context, cfg *config.Config, runID string, kinds []string, prune bool) error {
	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	pub := store.NewPublisher(pool.Pool, logger)
	for _, kind := range kinds {
		docs, err := catalog.Load[json.RawMessage](cfg.OutDir, kind)
		if err != nil {
			return err
		}
		start := time.Now()
		n, err := pub.Publish(ctx, kind, runID, docs)
		if err != nil {
			return err
		}
		if prune {
			if _, err := maintenance.PruneSuperseded(ctx, pool.Pool, kind, runID, logger); err != nil {
				return err
			}
		}
		if err := store.Announce(ctx, pool.Pool, store.PublishedEvent{Kind: kind, RunID: runID, Count: n}); err != nil {
			logger.Warn("Failed to announce publish", "kind", kind, "error", err)
		}
		total, err := pool.CountByKind(ctx, kind)
		if err != nil {
			return err
		}
		logger.Info("Publish finished", "kind", kind, "published", n, "stored", total,
			"duration", time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// run handles config loading, logger setup, and context cancellation.
func run(fn func(ctx context.Context, cfg *config.Config) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if outDir != "" {
		cfg.OutDir = outDir
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	logger = newLogger(cfg)

	return fn(ctx, cfg)
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if cfg.LogFormat == "pretty" {
		stylelog.InitDefault(&tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
		})
		return slog.Default()
	}
	l := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(l)
	return l
}
