// Package provider defines the canonical catalog records that upstream data is
// normalized into. Handlers output these structs; the catalog writer and the
// document store persist them.
//
// Records are created once per pipeline run and never mutated after being
// written; the next full run supersedes them.
package provider

// StepsPerCycle is the fixed egg-cycle length used to derive StepsToHatch.
const StepsPerCycle = 255

// Species is the canonical creature entry, keyed by its numeric id.
type Species struct {
	ID               int          `json:"id"`
	Name             string       `json:"name"`
	Generation       *int         `json:"generation"`
	Types            []string     `json:"types"`
	BaseStats        BaseStats    `json:"baseStats"`
	Abilities        []Ability    `json:"abilities"`
	EggGroups        []string     `json:"eggGroups"`
	Physical         Physical     `json:"physical"`
	Incubation       Incubation   `json:"incubation"`
	CaptureRate      *int         `json:"captureRate"`
	Flags            SpeciesFlags `json:"flags"`
	TypeMatchups     TypeMatchups `json:"typeMatchups"`
	Sprites          Sprites      `json:"sprites"`
	EvolutionChainID *int         `json:"evolutionChainId"`
}

// BaseStats always carries all six stats; a stat upstream omits stays 0.
type BaseStats struct {
	HP             int `json:"hp"`
	Attack         int `json:"attack"`
	Defense        int `json:"defense"`
	SpecialAttack  int `json:"specialAttack"`
	SpecialDefense int `json:"specialDefense"`
	Speed          int `json:"speed"`
}

// Ability is one ability slot of a species or form.
type Ability struct {
	AbilityID string `json:"abilityId"`
	IsHidden  bool   `json:"isHidden"`
	Slot      int    `json:"slot"`
}

// Physical holds height and weight converted to metric units.
type Physical struct {
	HeightMeters float64 `json:"heightMeters"`
	WeightKg     float64 `json:"weightKg"`
}

// Incubation describes egg hatching. StepsToHatch is nil when HatchCounter is.
type Incubation struct {
	HatchCounter  *int `json:"hatchCounter"`
	StepsPerCycle int  `json:"stepsPerCycle"`
	StepsToHatch  *int `json:"stepsToHatch"`
}

type SpeciesFlags struct {
	Legendary bool `json:"legendary"`
	Mythical  bool `json:"mythical"`
}

// Sprites holds the resolved sprite pair and the fallback tier that supplied it.
type Sprites struct {
	Default *string `json:"default"`
	Shiny   *string `json:"shiny"`
	Source  string  `json:"source"`
}

// TypeMatchups is the defensive multiplier table for a set of defending types.
// It is fully determined by the defending types and never hand-edited.
type TypeMatchups struct {
	Multipliers map[string]float64 `json:"multipliers"`
	Immune      []string           `json:"immune"`
	Resist      []TypeMultiplier   `json:"resist"`
	Weak        []TypeMultiplier   `json:"weak"`
	Neutral     []string           `json:"neutral"`
}

// TypeMultiplier pairs an attacking type with its final multiplier.
type TypeMultiplier struct {
	Type       string  `json:"type"`
	Multiplier float64 `json:"multiplier"`
}

// Form types.
const (
	FormMega       = "mega"
	FormGigantamax = "gigantamax"
	FormOther      = "other"
)

// Form is a variant (mega, gigantamax, ...) of an already-built Species.
type Form struct {
	FormID        string        `json:"formId"`
	BaseSpeciesID int           `json:"baseSpeciesId"`
	FormType      string        `json:"formType"`
	DisplayName   string        `json:"displayName"`
	Types         []string      `json:"types"`
	BaseStats     BaseStats     `json:"baseStats"`
	Abilities     []Ability     `json:"abilities"`
	Physical      Physical      `json:"physical"`
	Sprites       Sprites       `json:"sprites"`
	TypeMatchups  TypeMatchups  `json:"typeMatchups"`
	Mechanics     FormMechanics `json:"mechanics"`
}

// FormMechanics carries the battle mechanic attached to the form type.
type FormMechanics struct {
	Mega       *MegaMechanic       `json:"mega,omitempty"`
	Gigantamax *GigantamaxMechanic `json:"gigantamax,omitempty"`
}

type MegaMechanic struct {
	MegaStoneItemID *string `json:"megaStoneItemId"`
}

type GigantamaxMechanic struct {
	GmaxFactor bool `json:"gmaxFactor"`
}

// Move is the canonical move entry, keyed by its slug.
type Move struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Type        *string `json:"type"`
	DamageClass *string `json:"damageClass"`
	Power       *int    `json:"power"`
	Accuracy    *int    `json:"accuracy"`
	PP          *int    `json:"pp"`
	Priority    int     `json:"priority"`
	Target      *string `json:"target"`
	EffectText  *string `json:"effectText"`
	FlavorText  *string `json:"flavorText"`

	Raw MoveRaw `json:"raw"`

	StatusAilment    *string      `json:"statusAilment"`
	StatusChance     *int         `json:"statusChance"`
	StatChanges      []StatChange `json:"statChanges"`
	StatChangeChance *int         `json:"statChangeChance"`

	FlinchChance *int `json:"flinchChance"`
	CritStage    *int `json:"critStage"`
	Drain        *int `json:"drain"`
	Healing      *int `json:"healing"`

	Flags             []string `json:"flags"`
	IsContact         bool     `json:"isContact"`
	IsSound           bool     `json:"isSound"`
	IsPunch           bool     `json:"isPunch"`
	IsBite            bool     `json:"isBite"`
	IsPowder          bool     `json:"isPowder"`
	IsProtectAffected bool     `json:"isProtectAffected"`

	Machine     *Machine     `json:"machine"`
	MachineItem *MachineItem `json:"machineItem,omitempty"`
}

// MoveRaw keeps the upstream chance fields the derived ones were computed from.
type MoveRaw struct {
	EffectChance      *int    `json:"effectChance"`
	MetaAilment       *string `json:"metaAilment"`
	MetaAilmentChance *int    `json:"metaAilmentChance"`
	MetaStatChance    *int    `json:"metaStatChance"`
}

// StatChange is one stat/stage pair applied by a move.
type StatChange struct {
	Stat   string `json:"stat"`
	Stages int    `json:"stages"`
}

// Machine kinds.
const (
	MachineTM    = "tm"
	MachineHM    = "hm"
	MachineTR    = "tr"
	MachineOther = "other"
)

// Machine identifies the machine item teaching a move in the reference
// version group.
type Machine struct {
	ItemName string `json:"machineItemName"`
	Code     string `json:"machineCode"`
	Kind     string `json:"machineKind"`
}

// MachineItem is the item record synthesized for a machine and nested under
// the move it teaches.
type MachineItem struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Effect          string  `json:"effect"`
	Category        string  `json:"category"`
	SubCategory     *string `json:"subCategory"`
	Price           *int    `json:"price"`
	Sprite          string  `json:"sprite"`
	Consumable      bool    `json:"consumable"`
	BattleUsable    bool    `json:"battleUsable"`
	OverworldUsable bool    `json:"overworldUsable"`
	MoveID          string  `json:"moveId"`
}

// Item is the canonical item entry, keyed by its slug. Machine items never
// appear here; they are nested under their move instead.
type Item struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	Effect          *string `json:"effect"`
	Category        string  `json:"category"`
	SubCategory     *string `json:"subCategory"`
	Price           *int    `json:"price"`
	Consumable      bool    `json:"consumable"`
	BattleUsable    bool    `json:"battleUsable"`
	OverworldUsable bool    `json:"overworldUsable"`
}

// Learnset lists the moves a species learns in the reference version group.
type Learnset struct {
	SpeciesID int            `json:"speciesId"`
	Moves     []LearnsetMove `json:"moves"`
}

// LearnsetMove is one (move, method) pair. Level is set only for level-up.
type LearnsetMove struct {
	MoveID string `json:"moveId"`
	Method string `json:"method"`
	Level  *int   `json:"level"`
}
