// Package typechart computes defensive type matchups: for a set of one or two
// defending types it multiplies the damage relations of each into a full
// attacking-type multiplier table and classifies every attacking type as
// immune, resisted, neutral, or weak.
package typechart

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/elodex/catalog/internal/provider"
)

// AllTypes is every attacking type the table covers, in chart order.
// Neutral and immune lists follow this order.
var AllTypes = []string{
	"normal", "fire", "water", "electric", "grass", "ice",
	"fighting", "poison", "ground", "flying", "psychic", "bug",
	"rock", "ghost", "dragon", "dark", "steel", "fairy",
}

var knownTypes = func() map[string]bool {
	m := make(map[string]bool, len(AllTypes))
	for _, t := range AllTypes {
		m[t] = true
	}
	return m
}()

// Engine computes type matchups through an injected relations cache.
type Engine struct {
	cache *Cache
}

// NewEngine creates an engine backed by cache. One cache per pipeline run.
func NewEngine(cache *Cache) *Engine {
	return &Engine{cache: cache}
}

// Cache exposes the engine's cache, mainly for stats.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Compute returns the defensive matchups for 1 or 2 defending types.
// Order of defenders does not affect the result.
func (e *Engine) Compute(ctx context.Context, defenders []string) (provider.TypeMatchups, error) {
	if len(defenders) < 1 || len(defenders) > 2 {
		return provider.TypeMatchups{}, fmt.Errorf("defending types must be 1 or 2, got %d", len(defenders))
	}

	relations := make([]Relations, 0, len(defenders))
	for _, d := range defenders {
		rel, err := e.cache.Get(ctx, strings.ToLower(d))
		if err != nil {
			return provider.TypeMatchups{}, fmt.Errorf("damage relations for %s: %w", d, err)
		}
		relations = append(relations, rel)
	}
	return Combine(relations...), nil
}

// Combine multiplies the given relations into a classified matchup table.
// A zero is absorbing: once an attacking type is zeroed it stays zero.
// Attacking types outside AllTypes are ignored.
func Combine(relations ...Relations) provider.TypeMatchups {
	multipliers := make(map[string]float64, len(AllTypes))
	for _, t := range AllTypes {
		multipliers[t] = 1
	}

	apply := func(types []string, factor float64) {
		for _, atk := range types {
			atk = strings.ToLower(atk)
			if !knownTypes[atk] {
				continue
			}
			multipliers[atk] *= factor
		}
	}
	for _, rel := range relations {
		apply(rel.DoubleDamageFrom, 2)
		apply(rel.HalfDamageFrom, 0.5)
		apply(rel.NoDamageFrom, 0)
	}

	return classify(multipliers)
}

func classify(multipliers map[string]float64) provider.TypeMatchups {
	out := provider.TypeMatchups{
		Multipliers: multipliers,
		Immune:      []string{},
		Resist:      []provider.TypeMultiplier{},
		Weak:        []provider.TypeMultiplier{},
		Neutral:     []string{},
	}

	for _, t := range AllTypes {
		m := multipliers[t]
		switch {
		case m == 0:
			out.Immune = append(out.Immune, t)
		case m < 1:
			out.Resist = append(out.Resist, provider.TypeMultiplier{Type: t, Multiplier: m})
		case m > 1:
			out.Weak = append(out.Weak, provider.TypeMultiplier{Type: t, Multiplier: m})
		default:
			out.Neutral = append(out.Neutral, t)
		}
	}

	// Stable sorts keep chart order among equal multipliers.
	sort.SliceStable(out.Resist, func(i, j int) bool {
		return out.Resist[i].Multiplier < out.Resist[j].Multiplier
	})
	sort.SliceStable(out.Weak, func(i, j int) bool {
		return out.Weak[i].Multiplier > out.Weak[j].Multiplier
	})
	return out
}
