// Package vitals computes hit points, stamina, temporary hit points and initiative.
package vitals

import (
	"github.com/cory-johannsen/starsheet/internal/game/ability"
	"github.com/cory-johannsen/starsheet/internal/game/character"
	"github.com/cory-johannsen/starsheet/internal/game/effect"
)

// initiativeTarget is the effect target feats use for initiative bonuses.
const initiativeTarget = "initiative"

// Resolver computes vital statistics for one record.
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

// MaxHitPoints returns race hit points plus class hit points per level.
func (r *Resolver) MaxHitPoints() int {
	total := r.rec.Race.HitPoints
	for _, cl := range r.rec.Classes {
		total += cl.Class.HitPoints * cl.Levels
	}
	return total
}

// CurrentHitPoints returns MaxHitPoints less health damage.
func (r *Resolver) CurrentHitPoints() int {
	return r.MaxHitPoints() - r.rec.Vitals.Health.Damage
}

// MaxStamina returns the sum over classes of (base stamina + Con modifier) per level.
func (r *Resolver) MaxStamina() int {
	con := r.abilities.Modifier(character.Constitution)
	total := 0
	for _, cl := range r.rec.Classes {
		total += (cl.Class.BaseStaminaPoints + con) * cl.Levels
	}
	return total
}

// CurrentStamina returns MaxStamina less stamina damage.
func (r *Resolver) CurrentStamina() int {
	return r.MaxStamina() - r.rec.Vitals.Stamina.Damage
}

// TemporaryHitPoints returns the recorded temporary hit points.
func (r *Resolver) TemporaryHitPoints() int {
	return r.rec.Vitals.Temporary
}

// Initiative returns the Dex modifier plus every feat's initiative bonus.
func (r *Resolver) Initiative() int {
	total := r.abilities.Modifier(character.Dexterity)
	for _, feat := range r.rec.Feats {
		if v, ok := effect.Extract(feat.Benefit).Get(initiativeTarget); ok {
			total += v
		}
	}
	return total
}
