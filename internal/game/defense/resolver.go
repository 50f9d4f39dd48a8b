// Package defense computes armor class and maneuver defense from equipped armor and shields.
package defense

import (
	"strings"

	"github.com/cory-johannsen/starsheet/internal/game/ability"
	"github.com/cory-johannsen/starsheet/internal/game/character"
)

const (
	baseArmorClass = 10
	// baseManeuver is added to KAC to get combat maneuver defense.
	baseManeuver = 8
	// nonProficientPenalty applies when the equipped armor's type is not a proficiency.
	nonProficientPenalty = 4
	// shieldProficiency gates a shield's wield bonus.
	shieldProficiency = "SHIELD"
)

// Kind selects which armor class is computed.
type Kind int

const (
	// EAC is energy armor class.
	EAC Kind = iota
	// KAC is kinetic armor class.
	KAC
)

// String returns "EAC" or "KAC".
func (k Kind) String() string {
	if k == KAC {
		return "KAC"
	}
	return "EAC"
}

// Resolver computes defensive statistics for one record.
type Resolver struct {
	rec       *character.Record
	abilities *ability.Resolver
}

// NewResolver creates a Resolver.
//
// Precondition: rec and abilities must be non-nil and resolve the same record.
func NewResolver(rec *character.Record, abilities *ability.Resolver) *Resolver {
	return &Resolver{rec: rec, abilities: abilities}
}

// ArmorClass returns the armor class of the given kind.
// Encumbrance is not applied.
func (r *Resolver) ArmorClass(kind Kind) int {
	ac := baseArmorClass
	dex := r.abilities.Modifier(character.Dexterity)
	profs := r.Proficiencies()

	if armor := r.rec.EquippedArmor(); armor != nil {
		if limit, ok := armor.MaxDexBonus(); ok && limit < dex {
			dex = limit
		}
		if kind == KAC {
			ac += armor.KACBonus()
		} else {
			ac += armor.EACBonus()
		}
		if _, ok := profs[strings.ToUpper(armor.Type())]; !ok {
			ac -= nonProficientPenalty
		}
	}

	if shield := r.rec.EquippedShield(); shield != nil {
		if limit, ok := shield.MaxDexBonus(); ok && limit < dex {
			dex = limit
		}
		if _, ok := profs[shieldProficiency]; ok {
			ac += shield.WieldACBonus()
		}
	}

	return ac + dex
}

// ManeuverDefense returns 8 + KAC.
func (r *Resolver) ManeuverDefense() int {
	return baseManeuver + r.ArmorClass(KAC)
}

// Proficiencies returns the union of every class's armor proficiency tags, upper-cased.
// Free-text descriptions are stripped of every space and split on commas, so entries
// after the first are recognised too.
func (r *Resolver) Proficiencies() map[string]struct{} {
	out := make(map[string]struct{})
	for _, cl := range r.rec.Classes {
		for _, tag := range cl.Class.ArmorProficiencies {
			out[strings.ToUpper(tag)] = struct{}{}
		}
		desc := strings.ReplaceAll(cl.Class.ArmorProficiencyDescription, " ", "")
		if desc == "" {
			continue
		}
		for _, tag := range strings.Split(strings.ToUpper(desc), ",") {
			if tag != "" {
				out[tag] = struct{}{}
			}
		}
	}
	return out
}
