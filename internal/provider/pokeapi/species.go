package pokeapi

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/elodex/catalog/internal/provider"
	"github.com/elodex/catalog/internal/sprite"
)

// MatchupComputer computes defensive matchups for 1 or 2 defending types.
// *typechart.Engine satisfies it.
type MatchupComputer interface {
	Compute(ctx context.Context, defenders []string) (provider.TypeMatchups, error)
}

// ErrIncompletePayload is returned when a payload lacks types or stats.
var ErrIncompletePayload = errors.New("payload has no types or stats")

// NormalizeSpecies builds the canonical species record from the
// /pokemon and /pokemon-species payloads of one creature.
func NormalizeSpecies(ctx context.Context, matchups MatchupComputer, p *Pokemon, s *PokemonSpecies) (provider.Species, error) {
	if p == nil || s == nil {
		return provider.Species{}, fmt.Errorf("species: missing payload")
	}
	types := sortedTypes(p.Types)
	if len(types) == 0 {
		return provider.Species{}, fmt.Errorf("species %d: %w", s.ID, ErrIncompletePayload)
	}

	tm, err := matchups.Compute(ctx, types)
	if err != nil {
		return provider.Species{}, fmt.Errorf("species %d matchups: %w", s.ID, err)
	}

	sp := provider.Species{
		ID:          s.ID,
		Name:        provider.Capitalize(p.Name),
		Generation:  provider.ParseGeneration(s.Generation.Name),
		Types:       types,
		BaseStats:   mapStats(p.Stats),
		Abilities:   sortedAbilities(p.Abilities),
		EggGroups:   names(s.EggGroups),
		Physical:    physical(p),
		CaptureRate: s.CaptureRate,
		Flags: provider.SpeciesFlags{
			Legendary: s.IsLegendary,
			Mythical:  s.IsMythical,
		},
		Incubation: provider.Incubation{
			HatchCounter:  s.HatchCounter,
			StepsPerCycle: provider.StepsPerCycle,
			StepsToHatch:  provider.StepsToHatch(s.HatchCounter),
		},
		TypeMatchups: tm,
		Sprites:      sprite.Resolve(p.Sprites),
	}
	if s.EvolutionChain != nil {
		if id, ok := provider.IDFromURL(s.EvolutionChain.URL); ok {
			sp.EvolutionChainID = &id
		}
	}
	return sp, nil
}

// mapStats maps upstream stat names onto BaseStats. Unknown names are
// ignored; missing stats stay 0.
func mapStats(stats []PokemonStat) provider.BaseStats {
	var bs provider.BaseStats
	for _, s := range stats {
		switch s.Stat.Name {
		case "hp":
			bs.HP = s.BaseStat
		case "attack":
			bs.Attack = s.BaseStat
		case "defense":
			bs.Defense = s.BaseStat
		case "special-attack":
			bs.SpecialAttack = s.BaseStat
		case "special-defense":
			bs.SpecialDefense = s.BaseStat
		case "speed":
			bs.Speed = s.BaseStat
		}
	}
	return bs
}

func sortedTypes(in []PokemonType) []string {
	ts := append([]PokemonType(nil), in...)
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].Slot < ts[j].Slot })

	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Type.Name)
	}
	return out
}

func sortedAbilities(in []PokemonAbility) []provider.Ability {
	as := append([]PokemonAbility(nil), in...)
	sort.SliceStable(as, func(i, j int) bool { return as[i].Slot < as[j].Slot })

	out := make([]provider.Ability, 0, len(as))
	for _, a := range as {
		out = append(out, provider.Ability{
			AbilityID: a.Ability.Name,
			IsHidden:  a.IsHidden,
			Slot:      a.Slot,
		})
	}
	return out
}

func physical(p *Pokemon) provider.Physical {
	return provider.Physical{
		HeightMeters: provider.DecimetersToMeters(p.Height),
		WeightKg:     provider.HectogramsToKg(p.Weight),
	}
}
