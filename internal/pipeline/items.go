package pipeline

import (
	"context"
	"time"

	"github.com/elodex/catalog/internal/config"
	"github.com/elodex/catalog/internal/provider"
	"github.com/elodex/catalog/internal/provider/pokeapi"
)

// Items builds items.json from the /item listing. Machine items are skipped;
// the moves stage nests them under the move they teach.
func (b *Builder) Items(ctx context.Context) (Result, error) {
	start := time.Now()
	res := b.newResult(config.KindItems)

	listing, _ := b.list(ctx, &res, "item")
	candidates := make([]pokeapi.NamedResource, 0, len(listing))
	for _, r := range listing {
		if pokeapi.IsMachineItem(r.Name) {
			res.Skipped++
			continue
		}
		candidates = append(candidates, r)
	}
	res.Candidates = len(candidates)
	b.logger.Info("Building items", "candidates", len(candidates), "machines_skipped", res.Skipped)

	items, failures := collect(ctx, b, config.KindItems, candidates, resourceName, b.buildItem)
	for _, f := range failures {
		res.AddFailure(f)
	}

	if err := finish(b, &res, items, start); err != nil {
		return res, err
	}
	return res, nil
}

func (b *Builder) buildItem(ctx context.Context, ref pokeapi.NamedResource) (provider.Item, error) {
	it, err := b.client.Item(ctx, ref.Name)
	if err != nil {
		return provider.Item{}, fetchFailure(ref.Name, b.client.URL("item/"+ref.Name), "item", err)
	}
	return pokeapi.NormalizeItem(it, b.cfg.Language), nil
}
