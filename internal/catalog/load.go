package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/elodex/catalog/internal/config"
	"github.com/elodex/catalog/internal/provider"
)

// ErrArtifactMissing is returned when a required artifact has not been built.
var ErrArtifactMissing = errors.New("catalog artifact missing")

// Load reads the kind artifact into a map keyed by natural key.
func Load[T any](dir, kind string) (map[string]T, error) {
	path := Path(dir, kind)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrArtifactMissing)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var out map[string]T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if out == nil {
		out = map[string]T{}
	}
	return out, nil
}

// SpeciesIndex loads the species artifact indexed by numeric id.
func SpeciesIndex(dir string) (map[int]provider.Species, error) {
	byKey, err := Load[provider.Species](dir, config.KindSpecies)
	if err != nil {
		return nil, err
	}
	index := make(map[int]provider.Species, len(byKey))
	for key, sp := range byKey {
		id := sp.ID
		if id == 0 {
			if n, err := strconv.Atoi(key); err == nil {
				id = n
			}
		}
		if id != 0 {
			index[id] = sp
		}
	}
	return index, nil
}
