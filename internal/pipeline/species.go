package pipeline

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/elodex/catalog/internal/catalog"
	"github.com/elodex/catalog/internal/config"
	"github.com/elodex/catalog/internal/provider"
	"github.com/elodex/catalog/internal/provider/pokeapi"
)

type speciesBuild struct {
	species  provider.Species
	learnset provider.Learnset
}

// Species builds species.json and learnsets.json for ids 1..SpeciesMaxID.
func (b *Builder) Species(ctx context.Context) (Result, error) {
	start := time.Now()
	res := b.newResult(config.KindSpecies)

	ids := make([]int, 0, b.cfg.SpeciesMaxID)
	for id := 1; id <= b.cfg.SpeciesMaxID; id++ {
		ids = append(ids, id)
	}
	res.Candidates = len(ids)
	b.logger.Info("Building species", "candidates", len(ids), "concurrency", b.cfg.Concurrency)

	built, failures := collect(ctx, b, config.KindSpecies, ids, strconv.Itoa, b.buildSpecies)
	for _, f := range failures {
		res.AddFailure(f)
	}

	species := make(map[string]provider.Species, len(built))
	learnsets := make(map[string]provider.Learnset, len(built))
	for key, sb := range built {
		species[key] = sb.species
		learnsets[key] = sb.learnset
	}

	path, err := catalog.WriteRecords(b.cfg.OutDir, config.KindLearnsets, learnsets)
	if err != nil {
		return res, err
	}
	res.Artifacts = append(res.Artifacts, path)

	if err := finish(b, &res, species, start); err != nil {
		return res, err
	}
	return res, nil
}

func (b *Builder) buildSpecies(ctx context.Context, id int) (speciesBuild, error) {
	key := strconv.Itoa(id)

	p, err := b.client.Pokemon(ctx, key, false)
	if err != nil {
		return speciesBuild{}, fetchFailure(key, b.client.URL("pokemon/"+key), "pokemon", err)
	}
	s, err := b.client.Species(ctx, key, false)
	if err != nil {
		return speciesBuild{}, fetchFailure(key, b.client.URL("pokemon-species/"+key), "species", err)
	}

	sp, err := pokeapi.NormalizeSpecies(ctx, b.engine, p, s)
	if err != nil {
		reason := catalog.ReasonTypeMatchupsFailed
		if errors.Is(err, pokeapi.ErrIncompletePayload) {
			reason = catalog.ReasonPayloadIncomplete
		}
		return speciesBuild{}, &catalog.Failure{
			ID:         key,
			Reason:     reason,
			URL:        b.client.URL("pokemon/" + key),
			UpstreamID: &p.ID,
			Detail:     err.Error(),
		}
	}

	return speciesBuild{
		species:  sp,
		learnset: pokeapi.DeriveLearnset(sp.ID, p, b.cfg.MachineVersionGroup),
	}, nil
}
