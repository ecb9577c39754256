// Package metrics collects per-run pipeline metrics in a private prometheus
// registry and flushes them to a node-exporter textfile at the end of a run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run holds the collectors of one pipeline run.
type Run struct {
	registry *prometheus.Registry

	FetchesTotal   *prometheus.CounterVec
	FetchLatency   *prometheus.HistogramVec
	RetriesTotal   *prometheus.CounterVec
	RecordsWritten *prometheus.GaugeVec
	FailuresTotal  *prometheus.CounterVec
	StageDuration  *prometheus.GaugeVec
	TypeCacheHits  prometheus.Gauge
	TypeCacheMiss  prometheus.Gauge
	LastSuccess    *prometheus.GaugeVec
}

// New creates a Run with its own registry.
func New() *Run {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Run{
		registry: reg,

		// FetchesTotal tracks upstream requests by resource and outcome
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_upstream_fetches_total",
				Help: "Total number of upstream fetch attempts",
			},
			[]string{"resource", "outcome"},
		),
		FetchLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_upstream_fetch_seconds",
				Help:    "Upstream fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"resource"},
		),
		RetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_upstream_retries_total",
				Help: "Total number of upstream retries",
			},
			[]string{"resource"},
		),
		RecordsWritten: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalog_records_written",
				Help: "Records written to the last artifact of each kind",
			},
			[]string{"kind"},
		),
		FailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_failures_total",
				Help: "Entities routed to the failure report",
			},
			[]string{"kind", "reason"},
		),
		StageDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalog_stage_duration_seconds",
				Help: "Wall-clock duration of each stage",
			},
			[]string{"kind"},
		),
		TypeCacheHits: factory.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_type_cache_hits",
			Help: "Damage-relations cache hits in this run",
		}),
		TypeCacheMiss: factory.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_type_cache_fetches",
			Help: "Damage-relations fetches in this run",
		}),
		LastSuccess: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalog_stage_last_success_timestamp_seconds",
				Help: "Unix time the stage last finished",
			},
			[]string{"kind"},
		),
	}
}

// ObserveFetch records one upstream attempt.
func (r *Run) ObserveFetch(resource, outcome string, elapsed time.Duration) {
	r.FetchesTotal.WithLabelValues(resource, outcome).Inc()
	r.FetchLatency.WithLabelValues(resource).Observe(elapsed.Seconds())
}

// ObserveRetry records one retry.
func (r *Run) ObserveRetry(resource string) {
	r.RetriesTotal.WithLabelValues(resource).Inc()
}

// ObserveStage records the outcome counts of a finished stage.
func (r *Run) ObserveStage(kind string, written int, failureReasons []string, elapsed time.Duration) {
	r.RecordsWritten.WithLabelValues(kind).Set(float64(written))
	for _, reason := range failureReasons {
		r.FailuresTotal.WithLabelValues(kind, reason).Inc()
	}
	r.StageDuration.WithLabelValues(kind).Set(elapsed.Seconds())
	r.LastSuccess.WithLabelValues(kind).SetToCurrentTime()
}

// ObserveTypeCache records the damage-relations cache counters.
func (r *Run) ObserveTypeCache(hits, fetches int) {
	r.TypeCacheHits.Set(float64(hits))
	r.TypeCacheMiss.Set(float64(fetches))
}

// WriteTextfile flushes every collector to path in the text exposition format.
func (r *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
