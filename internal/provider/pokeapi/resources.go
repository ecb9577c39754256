package pokeapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/elodex/catalog/internal/typechart"
)

// listLimit is large enough that every listing fits in one page.
const listLimit = 100000

// List returns every entry of a listing endpoint, e.g. List(ctx, "item").
func (c *Client) List(ctx context.Context, resource string) ([]NamedResource, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(listLimit))
	q.Set("offset", "0")

	var page ResourceList
	if err := c.Get(ctx, resource+"?"+q.Encode(), &page); err != nil {
		return nil, fmt.Errorf("list %s: %w", resource, err)
	}
	return page.Results, nil
}

// Pokemon fetches /pokemon/{ref}. With optional set, a missing resource
// yields ErrNotFound instead of being retried.
func (c *Client) Pokemon(ctx context.Context, ref string, optional bool) (*Pokemon, error) {
	return fetch[Pokemon](ctx, c, "pokemon/"+ref, optional)
}

// Species fetches /pokemon-species/{ref}.
func (c *Client) Species(ctx context.Context, ref string, optional bool) (*PokemonSpecies, error) {
	return fetch[PokemonSpecies](ctx, c, "pokemon-species/"+ref, optional)
}

// Move fetches /move/{ref}.
func (c *Client) Move(ctx context.Context, ref string) (*Move, error) {
	return fetch[Move](ctx, c, "move/"+ref, false)
}

// Item fetches an item by name or by its absolute listing URL.
func (c *Client) Item(ctx context.Context, ref string) (*Item, error) {
	return fetch[Item](ctx, c, itemPath(ref), false)
}

// Machine fetches a machine by its absolute URL.
func (c *Client) Machine(ctx context.Context, machineURL string) (*Machine, error) {
	return fetch[Machine](ctx, c, machineURL, false)
}

// DamageRelations fetches /type/{name}; it satisfies typechart.Source.
func (c *Client) DamageRelations(ctx context.Context, typeName string) (typechart.Relations, error) {
	t, err := fetch[Type](ctx, c, "type/"+typeName, false)
	if err != nil {
		return typechart.Relations{}, err
	}
	return typechart.Relations{
		DoubleDamageFrom: names(t.DamageRelations.DoubleDamageFrom),
		HalfDamageFrom:   names(t.DamageRelations.HalfDamageFrom),
		NoDamageFrom:     names(t.DamageRelations.NoDamageFrom),
	}, nil
}

func fetch[T any](ctx context.Context, c *Client, path string, optional bool) (*T, error) {
	var out T
	var err error
	if optional {
		err = c.GetOptional(ctx, path, &out)
	} else {
		err = c.Get(ctx, path, &out)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func itemPath(ref string) string {
	if strings.Contains(ref, "://") {
		return ref
	}
	return "item/" + ref
}

func names(refs []NamedResource) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Name)
	}
	return out
}
