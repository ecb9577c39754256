package pokeapi

import (
	"sort"

	"github.com/elodex/catalog/internal/provider"
)

const methodLevelUp = "level-up"

// DeriveLearnset collects the moves p learns in versionGroup, one entry per
// (move, method). Level-up entries keep the lowest positive level and come
// first, ordered by level; the rest follow by move name.
func DeriveLearnset(speciesID int, p *Pokemon, versionGroup string) provider.Learnset {
	type key struct{ move, method string }
	byKey := make(map[key]*provider.LearnsetMove)

	for _, m := range p.Moves {
		if m.Move.Name == "" {
			continue
		}
		for _, d := range m.VersionGroupDetails {
			if d.VersionGroup.Name != versionGroup {
				continue
			}
			k := key{m.Move.Name, d.MoveLearnMethod.Name}
			level := d.LevelLearnedAt

			if existing, ok := byKey[k]; ok {
				if k.method == methodLevelUp && level > 0 && (*existing.Level == 0 || level < *existing.Level) {
					*existing.Level = level
				}
				continue
			}

			entry := &provider.LearnsetMove{MoveID: k.move, Method: k.method}
			if k.method == methodLevelUp {
				entry.Level = &level
			}
			byKey[k] = entry
		}
	}

	moves := make([]provider.LearnsetMove, 0, len(byKey))
	for _, e := range byKey {
		moves = append(moves, *e)
	}
	sort.Slice(moves, func(i, j int) bool {
		a, b := moves[i], moves[j]
		aLvl, bLvl := a.Method == methodLevelUp, b.Method == methodLevelUp
		switch {
		case aLvl && bLvl:
			if *a.Level != *b.Level {
				return *a.Level < *b.Level
			}
			return a.MoveID < b.MoveID
		case aLvl != bLvl:
			return aLvl
		case a.MoveID != b.MoveID:
			return a.MoveID < b.MoveID
		default:
			return a.Method < b.Method
		}
	})

	return provider.Learnset{SpeciesID: speciesID, Moves: moves}
}
