package pokeapi

import "github.com/elodex/catalog/internal/sprite"

// Raw payload structs. Each mirrors the subset of one upstream resource the
// normalizers read; unknown fields are ignored by the decoder.

// NamedResource is the upstream {name, url} reference.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ResourceList is a listing page.
type ResourceList struct {
	Count   int             `json:"count"`
	Results []NamedResource `json:"results"`
}

// Pokemon is GET /pokemon/{name-or-id}.
type Pokemon struct {
	ID        int              `json:"id"`
	Name      string           `json:"name"`
	Height    int              `json:"height"`
	Weight    int              `json:"weight"`
	Species   NamedResource    `json:"species"`
	Types     []PokemonType    `json:"types"`
	Stats     []PokemonStat    `json:"stats"`
	Abilities []PokemonAbility `json:"abilities"`
	Sprites   sprite.Tree      `json:"sprites"`
	Moves     []PokemonMove    `json:"moves"`
}

type PokemonType struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

type PokemonStat struct {
	BaseStat int           `json:"base_stat"`
	Stat     NamedResource `json:"stat"`
}

type PokemonAbility struct {
	Slot     int           `json:"slot"`
	IsHidden bool          `json:"is_hidden"`
	Ability  NamedResource `json:"ability"`
}

type PokemonMove struct {
	Move                NamedResource        `json:"move"`
	VersionGroupDetails []VersionGroupDetail `json:"version_group_details"`
}

type VersionGroupDetail struct {
	LevelLearnedAt  int           `json:"level_learned_at"`
	MoveLearnMethod NamedResource `json:"move_learn_method"`
	VersionGroup    NamedResource `json:"version_group"`
}

// PokemonSpecies is GET /pokemon-species/{name-or-id}.
type PokemonSpecies struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Generation     NamedResource   `json:"generation"`
	EggGroups      []NamedResource `json:"egg_groups"`
	HatchCounter   *int            `json:"hatch_counter"`
	CaptureRate    *int            `json:"capture_rate"`
	IsLegendary    bool            `json:"is_legendary"`
	IsMythical     bool            `json:"is_mythical"`
	EvolutionChain *struct {
		URL string `json:"url"`
	} `json:"evolution_chain"`
}

// Type is GET /type/{name}.
type Type struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	DamageRelations DamageRelations `json:"damage_relations"`
}

type DamageRelations struct {
	DoubleDamageFrom []NamedResource `json:"double_damage_from"`
	HalfDamageFrom   []NamedResource `json:"half_damage_from"`
	NoDamageFrom     []NamedResource `json:"no_damage_from"`
}

// Move is GET /move/{name}.
type Move struct {
	ID                int               `json:"id"`
	Name              string            `json:"name"`
	Accuracy          *int              `json:"accuracy"`
	Power             *int              `json:"power"`
	PP                *int              `json:"pp"`
	Priority          int               `json:"priority"`
	EffectChance      *int              `json:"effect_chance"`
	Type              *NamedResource    `json:"type"`
	DamageClass       *NamedResource    `json:"damage_class"`
	Target            *NamedResource    `json:"target"`
	Meta              *MoveMeta         `json:"meta"`
	StatChanges       []MoveStatChange  `json:"stat_changes"`
	Flags             []NamedResource   `json:"flags"`
	EffectEntries     []EffectEntry     `json:"effect_entries"`
	FlavorTextEntries []FlavorTextEntry `json:"flavor_text_entries"`
	Machines          []MoveMachine     `json:"machines"`
}

type MoveMeta struct {
	Ailment       *NamedResource `json:"ailment"`
	AilmentChance *int           `json:"ailment_chance"`
	StatChance    *int           `json:"stat_chance"`
	FlinchChance  *int           `json:"flinch_chance"`
	CritRate      *int           `json:"crit_rate"`
	Drain         *int           `json:"drain"`
	Healing       *int           `json:"healing"`
}

type MoveStatChange struct {
	Change int           `json:"change"`
	Stat   NamedResource `json:"stat"`
}

type MoveMachine struct {
	Machine struct {
		URL string `json:"url"`
	} `json:"machine"`
	VersionGroup NamedResource `json:"version_group"`
}

// Machine is GET /machine/{id}.
type Machine struct {
	ID           int           `json:"id"`
	Item         NamedResource `json:"item"`
	Move         NamedResource `json:"move"`
	VersionGroup NamedResource `json:"version_group"`
}

// Item is GET /item/{name-or-id}.
type Item struct {
	ID                int               `json:"id"`
	Name              string            `json:"name"`
	Cost              *int              `json:"cost"`
	Category          NamedResource     `json:"category"`
	Attributes        []NamedResource   `json:"attributes"`
	Names             []LocalizedName   `json:"names"`
	EffectEntries     []EffectEntry     `json:"effect_entries"`
	FlavorTextEntries []FlavorTextEntry `json:"flavor_text_entries"`
}

type LocalizedName struct {
	Name     string        `json:"name"`
	Language NamedResource `json:"language"`
}

type EffectEntry struct {
	Effect      string        `json:"effect"`
	ShortEffect string        `json:"short_effect"`
	Language    NamedResource `json:"language"`
}

// FlavorTextEntry covers both spellings upstream uses: moves carry
// "flavor_text", items carry "text".
type FlavorTextEntry struct {
	FlavorText string        `json:"flavor_text"`
	Text       string        `json:"text"`
	Language   NamedResource `json:"language"`
}

func (f FlavorTextEntry) value() string {
	if f.FlavorText != "" {
		return f.FlavorText
	}
	return f.Text
}
