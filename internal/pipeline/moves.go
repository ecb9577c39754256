package pipeline

import (
	"context"
	"time"

	"github.com/elodex/catalog/internal/catalog"
	"github.com/elodex/catalog/internal/config"
	"github.com/elodex/catalog/internal/provider"
	"github.com/elodex/catalog/internal/provider/pokeapi"
)

// Moves builds moves.json from the /move listing, attaching machine data
// for the configured version group.
func (b *Builder) Moves(ctx context.Context) (Result, error) {
	start := time.Now()
	res := b.newResult(config.KindMoves)

	moves := map[string]provider.Move{}
	if listing, ok := b.list(ctx, &res, "move"); ok {
		res.Candidates = len(listing)
		b.logger.Info("Building moves", "candidates", len(listing), "version_group", b.cfg.MachineVersionGroup)

		var failures []catalog.Failure
		moves, failures = collect(ctx, b, config.KindMoves, listing, resourceName, b.buildMove)
		for _, f := range failures {
			res.AddFailure(f)
		}
	}

	if err := finish(b, &res, moves, start); err != nil {
		return res, err
	}
	return res, nil
}

func (b *Builder) buildMove(ctx context.Context, ref pokeapi.NamedResource) (provider.Move, error) {
	moveURL := b.client.URL("move/" + ref.Name)

	m, err := b.client.Move(ctx, ref.Name)
	if err != nil {
		return provider.Move{}, fetchFailure(ref.Name, moveURL, "move", err)
	}

	mv := pokeapi.NormalizeMove(m, b.cfg.Language)

	machine, err := b.client.ResolveMachine(ctx, m, b.cfg.MachineVersionGroup)
	if err != nil {
		return provider.Move{}, &catalog.Failure{
			ID:         ref.Name,
			Reason:     catalog.ReasonMachineFetchFailed,
			URL:        moveURL,
			UpstreamID: &m.ID,
			Detail:     err.Error(),
		}
	}
	mv.Machine = machine
	mv.MachineItem = pokeapi.MachineItemFor(mv.Name, machine)
	return mv, nil
}

func resourceName(r pokeapi.NamedResource) string {
	return r.Name
}
