// Package sprite resolves the display sprites of a creature from the upstream
// sprite tree, recording which rendering generation supplied them.
package sprite

import "github.com/elodex/catalog/internal/provider"

// Provenance tags.
const (
	SourceHome            = "home"
	SourceOfficialArtwork = "official-artwork"
	SourceFront           = "front"
	SourceNone            = "none"
)

// Tree is the subset of the upstream "sprites" object the resolver reads.
type Tree struct {
	FrontDefault *string `json:"front_default"`
	FrontShiny   *string `json:"front_shiny"`
	Other        struct {
		Home            Pair `json:"home"`
		OfficialArtwork Pair `json:"official-artwork"`
	} `json:"other"`
}

// Pair is a default/shiny URL pair from one rendering generation.
type Pair struct {
	FrontDefault *string `json:"front_default"`
	FrontShiny   *string `json:"front_shiny"`
}

func (p Pair) empty() bool {
	return isBlank(p.FrontDefault) && isBlank(p.FrontShiny)
}

// Resolve walks the tiers home -> official-artwork -> front and takes both
// URLs from the first tier that has either one. A missing URL in the winning
// tier stays nil; it is never borrowed from a lower tier.
func Resolve(tree Tree) provider.Sprites {
	tiers := []struct {
		source string
		pair   Pair
	}{
		{SourceHome, tree.Other.Home},
		{SourceOfficialArtwork, tree.Other.OfficialArtwork},
		{SourceFront, Pair{FrontDefault: tree.FrontDefault, FrontShiny: tree.FrontShiny}},
	}

	for _, tier := range tiers {
		if tier.pair.empty() {
			continue
		}
		return provider.Sprites{
			Default: normalize(tier.pair.FrontDefault),
			Shiny:   normalize(tier.pair.FrontShiny),
			Source:  tier.source,
		}
	}
	return provider.Sprites{Source: SourceNone}
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}

func normalize(s *string) *string {
	if isBlank(s) {
		return nil
	}
	v := *s
	return &v
}
