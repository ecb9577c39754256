package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObserveFetch("pokemon", "ok", 20*time.Millisecond)
	r.ObserveFetch("pokemon", "transient", 5*time.Millisecond)
	r.ObserveRetry("pokemon")
	r.ObserveStage("species", 1023, []string{"pokeapi_pokemon_404", "pokeapi_pokemon_404"}, 90*time.Second)
	r.ObserveTypeCache(2000, 18)

	path := filepath.Join(t.TempDir(), "catalog.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		`catalog_upstream_fetches_total{outcome="ok",resource="pokemon"} 1`,
		`catalog_upstream_fetches_total{outcome="transient",resource="pokemon"} 1`,
		`catalog_upstream_retries_total{resource="pokemon"} 1`,
		`catalog_records_written{kind="species"} 1023`,
		`catalog_failures_total{kind="species",reason="pokeapi_pokemon_404"} 2`,
		`catalog_stage_duration_seconds{kind="species"} 90`,
		`catalog_type_cache_hits 2000`,
		`catalog_type_cache_fetches 18`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}

func TestRunsAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ObserveRetry("type")

	path := filepath.Join(t.TempDir(), "b.prom")
	if err := b.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), `catalog_upstream_retries_total{resource="type"}`) {
		t.Error("second run saw the first run's retry")
	}
}
