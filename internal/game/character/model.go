// Package character defines the canonical, revision-independent character record that the
// rules engine reads. Adapters in the importer produce it; nothing in the engine mutates it.
package character

// MethodPointBuy is the only ability generation method whose allocations are applied.
const MethodPointBuy = "POINT_BUY"

// CustomBonus is a player-entered flat bonus to one ability score.
type CustomBonus struct {
	Active bool
	Value  int
}

// AbilityEntry holds the raw inputs for one ability score.
type AbilityEntry struct {
	PointBuy int
	// Override replaces the computed score when non-nil.
	Override      *int
	Damage        int
	CustomBonuses []CustomBonus
}

// AbilityScores holds the ability generation inputs shared by all six abilities.
type AbilityScores struct {
	Method string
	// Increases is the ordered list of level-up picks; order is significant.
	Increases [][]string
	Entries   [AbilityCount]AbilityEntry
}

// Entry returns the raw inputs for a.
//
// Precondition: a must be a valid Ability.
func (s AbilityScores) Entry(a Ability) AbilityEntry {
	return s.Entries[a]
}

// Option is an identified effect choice (racial adjustment, theme option, augmentation option).
type Option struct {
	ID     string
	Effect string
}

// FindOption returns the option with id, or (Option{}, false) if none matches.
func FindOption(opts []Option, id string) (Option, bool) {
	for _, o := range opts {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Race is the character's race with its selectable ability adjustments.
type Race struct {
	HitPoints          int
	SelectedAdjustment string
	Adjustments        []Option
}

// Benefit is one theme benefit; Options are only applied when selected.
type Benefit struct {
	Effect  string
	Options []Option
}

// Theme is the character's theme and the benefit options the player picked.
type Theme struct {
	Benefits               []Benefit
	SelectedBenefitOptions []string
}

// IsSelected reports whether the option id is among the selected benefit options.
func (t Theme) IsSelected(id string) bool {
	for _, s := range t.SelectedBenefitOptions {
		if s == id {
			return true
		}
	}
	return false
}

// ClassDef is the static part of a class relevant to derived statistics.
type ClassDef struct {
	HitPoints                   int
	BaseStaminaPoints           int
	ArmorProficiencies          []string
	ArmorProficiencyDescription string
}

// ClassLevel is a class together with the number of levels taken in it.
type ClassLevel struct {
	Class  ClassDef
	Levels int
}

// TotalLevel returns the sum of levels across all classes.
func (r *Record) TotalLevel() int {
	total := 0
	for _, cl := range r.Classes {
		total += cl.Levels
	}
	return total
}

// Feat is an acquired feat; Benefit is an effect string.
type Feat struct {
	Benefit string
}

// Pool is a damageable resource such as health or stamina.
type Pool struct {
	Max    int
	Damage int
}

// Vitals holds damage counters and temporary hit points.
type Vitals struct {
	Health    Pool
	Stamina   Pool
	Temporary int
}

// Condition is one named condition and whether it is currently applied.
type Condition struct {
	Name   string
	Active bool
}

// Record is an immutable snapshot of one character as exported by the character builder.
//
// Invariant: Conditions preserves the key order of the source document.
type Record struct {
	ID         string
	Name       string
	Abilities  AbilityScores
	Race       Race
	Theme      Theme
	Inventory  []Item
	Classes    []ClassLevel
	Feats      []Feat
	Vitals     Vitals
	Conditions []Condition
}
