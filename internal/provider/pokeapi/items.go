package pokeapi

import (
	"regexp"
	"strings"

	"github.com/elodex/catalog/internal/provider"
)

var machineItemRe = regexp.MustCompile(`^(tm|hm|tr)\d+$`)

// IsMachineItem reports whether name is a TM/HM/TR item. Those are
// synthesized from moves instead of listed as items.
func IsMachineItem(name string) bool {
	return machineItemRe.MatchString(name)
}

// categoryRules maps a substring of the upstream category slug onto the
// catalog category and subcategory. First match wins.
var categoryRules = []struct {
	match       string
	category    string
	subCategory string
}{
	{"ball", "pokeball", "capture"},
	{"medicine", "healing", "hp-recovery"},
	{"healing", "healing", "hp-recovery"},
	{"revival", "healing", "status-recovery"},
	{"status-cures", "status", "status-recovery"},
	{"effort-drop", "status", "ev-boost"},
	{"vitamins", "status", "ev-boost"},
	{"held-items", "held-item", ""},
	{"evolution", "evolution-item", ""},
	{"berry", "berries", ""},
	{"key-items", "key-item", ""},
	{"battle", "battle-item", "battle-boost"},
}

// MapItemCategory returns the catalog (category, subCategory) for an
// upstream category slug. Unmatched slugs fall into "others".
func MapItemCategory(slug string) (string, *string) {
	for _, r := range categoryRules {
		if !strings.Contains(slug, r.match) {
			continue
		}
		if r.subCategory == "" {
			return r.category, nil
		}
		sub := r.subCategory
		return r.category, &sub
	}
	return "others", nil
}

// NormalizeItem maps an /item payload onto the canonical item record.
func NormalizeItem(it *Item, lang string) provider.Item {
	name, ok := localizedName(it.Names, lang)
	if !ok {
		name = provider.Humanize(it.Name)
	}
	category, sub := MapItemCategory(it.Category.Name)

	out := provider.Item{
		ID:          it.Name,
		Name:        name,
		Category:    category,
		SubCategory: sub,
		Price:       it.Cost,
	}
	if e, ok := localizedEffect(it.EffectEntries, lang); ok {
		if e.ShortEffect != "" {
			v := e.ShortEffect
			out.Description = &v
		}
		if e.Effect != "" {
			v := strings.Join(strings.Fields(e.Effect), " ")
			out.Effect = &v
		}
	}
	if out.Description == nil {
		if f, ok := localizedFlavor(it.FlavorTextEntries, lang); ok {
			v := strings.Join(strings.Fields(f), " ")
			out.Description = &v
		}
	}

	for _, a := range it.Attributes {
		switch a.Name {
		case "consumable":
			out.Consumable = true
		case "usable-in-battle":
			out.BattleUsable = true
		case "usable-overworld":
			out.OverworldUsable = true
		}
	}
	return out
}
