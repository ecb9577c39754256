package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elodex/catalog/internal/catalog"
	"github.com/elodex/catalog/internal/config"
	"github.com/elodex/catalog/internal/provider"
	"github.com/elodex/catalog/internal/provider/pokeapi"
)

// Forms builds forms.json from the mega and gigantamax variants in the
// /pokemon listing. It requires species.json from an earlier species stage
// and fails with ErrPrecondition, before any upstream request, without it.
func (b *Builder) Forms(ctx context.Context) (Result, error) {
	start := time.Now()
	res := b.newResult(config.KindForms)

	index, err := catalog.SpeciesIndex(b.cfg.OutDir)
	if err != nil {
		return res, fmt.Errorf("%w: forms need the species artifact: %v", ErrPrecondition, err)
	}
	if len(index) == 0 {
		return res, fmt.Errorf("%w: species artifact %s is empty", ErrPrecondition, catalog.Path(b.cfg.OutDir, config.KindSpecies))
	}

	listing, _ := b.list(ctx, &res, "pokemon")
	var candidates []string
	for _, r := range listing {
		if pokeapi.IsFormCandidate(r.Name) {
			candidates = append(candidates, r.Name)
		}
	}
	res.Candidates = len(candidates)
	b.logger.Info("Building forms", "candidates", len(candidates), "species_indexed", len(index))

	identity := func(s string) string { return s }
	forms, failures := collect(ctx, b, config.KindForms, candidates, identity,
		func(ctx context.Context, name string) (provider.Form, error) {
			return b.buildForm(ctx, name, index)
		})
	for _, f := range failures {
		res.AddFailure(f)
	}

	if err := finish(b, &res, forms, start); err != nil {
		return res, err
	}
	return res, nil
}

// buildForm resolves the variant's base species through
// variant -> species slug -> species id -> species index, then normalizes it.
func (b *Builder) buildForm(ctx context.Context, name string, index map[int]provider.Species) (provider.Form, error) {
	variantURL := b.client.URL("pokemon/" + name)

	p, err := b.client.Pokemon(ctx, name, true)
	if errors.Is(err, pokeapi.ErrNotFound) {
		return provider.Form{}, &catalog.Failure{ID: name, Reason: catalog.ReasonPokemonNotFound, URL: variantURL}
	}
	if err != nil {
		return provider.Form{}, fetchFailure(name, variantURL, "pokemon", err)
	}

	baseName := strings.ToLower(p.Species.Name)
	speciesURL := b.client.URL("pokemon-species/" + baseName)
	s, err := b.client.Species(ctx, baseName, true)
	if errors.Is(err, pokeapi.ErrNotFound) {
		return provider.Form{}, &catalog.Failure{ID: name, Reason: catalog.ReasonSpeciesNotFound, URL: speciesURL, BaseName: baseName}
	}
	if err != nil {
		f := fetchFailure(name, speciesURL, "species", err)
		f.BaseName = baseName
		return provider.Form{}, f
	}

	base, ok := index[s.ID]
	if !ok {
		dexID := s.ID
		return provider.Form{}, &catalog.Failure{
			ID:         name,
			Reason:     catalog.ReasonBaseSpeciesMissing,
			URL:        speciesURL,
			BaseName:   baseName,
			UpstreamID: &dexID,
		}
	}

	form, err := pokeapi.NormalizeForm(ctx, b.engine, name, base.ID, p)
	if err != nil {
		reason := catalog.ReasonTypeMatchupsFailed
		if errors.Is(err, pokeapi.ErrIncompletePayload) {
			reason = catalog.ReasonVariantIncomplete
		}
		return provider.Form{}, &catalog.Failure{
			ID:         name,
			Reason:     reason,
			URL:        variantURL,
			BaseName:   baseName,
			UpstreamID: &p.ID,
			Detail:     err.Error(),
		}
	}
	return form, nil
}
