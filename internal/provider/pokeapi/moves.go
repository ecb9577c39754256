package pokeapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/elodex/catalog/internal/provider"
)

const damageClassStatus = "status"

// NormalizeMove maps a /move payload onto the canonical move record. The
// machine fields are filled separately by ResolveMachine.
func NormalizeMove(m *Move, lang string) provider.Move {
	meta := m.Meta
	if meta == nil {
		meta = &MoveMeta{}
	}

	mv := provider.Move{
		ID:          m.ID,
		Name:        m.Name,
		Type:        refName(m.Type),
		DamageClass: refName(m.DamageClass),
		Power:       m.Power,
		Accuracy:    m.Accuracy,
		PP:          m.PP,
		Priority:    m.Priority,
		Target:      refName(m.Target),
		Raw: provider.MoveRaw{
			EffectChance:      m.EffectChance,
			MetaAilment:       refName(meta.Ailment),
			MetaAilmentChance: meta.AilmentChance,
			MetaStatChance:    meta.StatChance,
		},
		StatChanges:  make([]provider.StatChange, 0, len(m.StatChanges)),
		FlinchChance: meta.FlinchChance,
		CritStage:    meta.CritRate,
		Drain:        meta.Drain,
		Healing:      meta.Healing,
		Flags:        names(m.Flags),
	}

	if e, ok := localizedEffect(m.EffectEntries, lang); ok && e.ShortEffect != "" {
		text := e.ShortEffect
		if m.EffectChance != nil {
			text = strings.ReplaceAll(text, "$effect_chance", strconv.Itoa(*m.EffectChance))
		}
		mv.EffectText = &text
	}
	if f, ok := localizedFlavor(m.FlavorTextEntries, lang); ok {
		text := strings.Join(strings.Fields(f), " ")
		mv.FlavorText = &text
	}

	isStatus := mv.DamageClass != nil && *mv.DamageClass == damageClassStatus

	if a := mv.Raw.MetaAilment; a != nil && *a != "none" && *a != "unknown" && *a != "" {
		mv.StatusAilment = a
		mv.StatusChance = resolveChance(meta.AilmentChance, m.EffectChance, isStatus)
	}

	for _, sc := range m.StatChanges {
		mv.StatChanges = append(mv.StatChanges, provider.StatChange{Stat: sc.Stat.Name, Stages: sc.Change})
	}
	if len(mv.StatChanges) > 0 {
		// Stat chance has no effect-chance tier.
		mv.StatChangeChance = resolveChance(meta.StatChance, nil, isStatus)
	}

	for _, f := range mv.Flags {
		switch f {
		case "contact":
			mv.IsContact = true
		case "sound":
			mv.IsSound = true
		case "punch":
			mv.IsPunch = true
		case "bite":
			mv.IsBite = true
		case "powder":
			mv.IsPowder = true
		case "protect":
			mv.IsProtectAffected = true
		}
	}
	return mv
}

// resolveChance applies the chance precedence: explicit chance, then the
// general effect chance when given, then 100 for pure status moves. Zero
// counts as absent. The result is clamped to [0,100].
func resolveChance(explicit, effect *int, isStatus bool) *int {
	var v int
	switch {
	case explicit != nil && *explicit > 0:
		v = *explicit
	case effect != nil && *effect > 0:
		v = *effect
	case isStatus:
		v = 100
	default:
		return nil
	}
	v = min(v, 100)
	return &v
}

// ResolveMachine looks up the machine teaching m in versionGroup. It returns
// nil, nil when the move is not a machine move there.
func (c *Client) ResolveMachine(ctx context.Context, m *Move, versionGroup string) (*provider.Machine, error) {
	for _, ref := range m.Machines {
		if ref.VersionGroup.Name != versionGroup || ref.Machine.URL == "" {
			continue
		}
		machine, err := c.Machine(ctx, ref.Machine.URL)
		if err != nil {
			return nil, fmt.Errorf("machine for %s: %w", m.Name, err)
		}
		if machine.Item.Name == "" {
			continue
		}
		mc := MachineFromItem(machine.Item.Name)
		return &mc, nil
	}
	return nil, nil
}

// MachineFromItem derives the machine code and kind from an item name such
// as "tm34" or "tr00".
func MachineFromItem(itemName string) provider.Machine {
	code := strings.ToUpper(itemName)
	kind := provider.MachineOther
	switch {
	case strings.HasPrefix(code, "TM"):
		kind = provider.MachineTM
	case strings.HasPrefix(code, "HM"):
		kind = provider.MachineHM
	case strings.HasPrefix(code, "TR"):
		kind = provider.MachineTR
	}
	return provider.Machine{ItemName: itemName, Code: code, Kind: kind}
}

type machineRule struct {
	sprite     string
	price      *int
	consumable bool
	category   string
}

func intPtr(v int) *int { return &v }

var machineRules = map[string]machineRule{
	provider.MachineTM:    {"/sprites/items/tm.png", intPtr(3000), true, provider.MachineTM},
	provider.MachineHM:    {"/sprites/items/hm.png", nil, false, provider.MachineHM},
	provider.MachineTR:    {"/sprites/items/tr.png", intPtr(5000), true, provider.MachineTR},
	provider.MachineOther: {"/sprites/items/machine.png", nil, true, provider.MachineTM},
}

// MachineItemFor synthesizes the item record nested under the move a
// machine teaches.
func MachineItemFor(moveName string, mc *provider.Machine) *provider.MachineItem {
	if mc == nil || mc.ItemName == "" {
		return nil
	}
	rule, ok := machineRules[mc.Kind]
	if !ok {
		rule = machineRules[provider.MachineOther]
	}
	item := &provider.MachineItem{
		ID:          mc.ItemName,
		Name:        mc.Code,
		Description: "A technical machine that teaches a move to a compatible creature.",
		Effect:      "Teaches " + provider.Humanize(moveName) + ".",
		Category:    rule.category,
		Sprite:      rule.sprite,
		Consumable:  rule.consumable,
		MoveID:      moveName,
	}
	if rule.price != nil {
		price := *rule.price
		item.Price = &price
	}
	return item
}

func refName(r *NamedResource) *string {
	if r == nil || r.Name == "" {
		return nil
	}
	v := r.Name
	return &v
}
