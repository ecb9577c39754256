package pokeapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/elodex/catalog/internal/provider"
	"github.com/elodex/catalog/internal/sprite"
)

// ClassifyForm maps a variant name onto a form type by its suffix.
func ClassifyForm(name string) string {
	switch {
	case strings.HasSuffix(name, "-mega"),
		strings.HasSuffix(name, "-mega-x"),
		strings.HasSuffix(name, "-mega-y"):
		return provider.FormMega
	case strings.HasSuffix(name, "-gmax"):
		return provider.FormGigantamax
	default:
		return provider.FormOther
	}
}

// IsFormCandidate reports whether a /pokemon listing entry is a variant the
// forms stage builds.
func IsFormCandidate(name string) bool {
	return ClassifyForm(name) != provider.FormOther
}

// NormalizeForm builds a form record from the variant's own /pokemon payload.
// baseSpeciesID must already be resolved against the species index.
func NormalizeForm(ctx context.Context, matchups MatchupComputer, formID string, baseSpeciesID int, p *Pokemon) (provider.Form, error) {
	if p == nil {
		return provider.Form{}, fmt.Errorf("form %s: missing payload", formID)
	}
	types := sortedTypes(p.Types)
	if len(types) == 0 || len(p.Stats) == 0 {
		return provider.Form{}, fmt.Errorf("form %s: %w", formID, ErrIncompletePayload)
	}

	tm, err := matchups.Compute(ctx, types)
	if err != nil {
		return provider.Form{}, fmt.Errorf("form %s matchups: %w", formID, err)
	}

	formType := ClassifyForm(formID)
	return provider.Form{
		FormID:        formID,
		BaseSpeciesID: baseSpeciesID,
		FormType:      formType,
		DisplayName:   provider.Humanize(formID),
		Types:         types,
		BaseStats:     mapStats(p.Stats),
		Abilities:     sortedAbilities(p.Abilities),
		Physical:      physical(p),
		Sprites:       sprite.Resolve(p.Sprites),
		TypeMatchups:  tm,
		Mechanics:     mechanicsFor(formType),
	}, nil
}

func mechanicsFor(formType string) provider.FormMechanics {
	switch formType {
	case provider.FormMega:
		return provider.FormMechanics{Mega: &provider.MegaMechanic{}}
	case provider.FormGigantamax:
		return provider.FormMechanics{Gigantamax: &provider.GigantamaxMechanic{GmaxFactor: true}}
	}
	return provider.FormMechanics{}
}
