// Package stats composes the rules resolvers into one set of derived statistics per character.
package stats

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/starsheet/internal/game/ability"
	"github.com/cory-johannsen/starsheet/internal/game/character"
	"github.com/cory-johannsen/starsheet/internal/game/condition"
	"github.com/cory-johannsen/starsheet/internal/game/defense"
	"github.com/cory-johannsen/starsheet/internal/game/vitals"
)

// AbilityStat is one resolved ability score and its modifier.
type AbilityStat struct {
	Score    int `yaml:"score"`
	Modifier int `yaml:"modifier"`
}

// ComputedStats holds every derived value a reference sheet shows.
// Every field is always populated. Abilities is indexed by character.Ability.
type ComputedStats struct {
	ID                 string                              `yaml:"id"`
	Name               string                              `yaml:"name"`
	Level              int                                 `yaml:"level"`
	Abilities          [character.AbilityCount]AbilityStat `yaml:"-"`
	EAC                int                                 `yaml:"eac"`
	KAC                int                                 `yaml:"kac"`
	CMD                int                                 `yaml:"cmd"`
	MaxHitPoints       int                                 `yaml:"max_hit_points"`
	CurrentHitPoints   int                                 `yaml:"current_hit_points"`
	MaxStamina         int                                 `yaml:"max_stamina"`
	CurrentStamina     int                                 `yaml:"current_stamina"`
	TemporaryHitPoints int                                 `yaml:"temporary_hit_points"`
	Initiative         int                                 `yaml:"initiative"`
	Conditions         []string                            `yaml:"conditions"`
}

// Ability returns the resolved stat for a.
//
// Precondition: a must be a valid Ability.
func (s *ComputedStats) Ability(a character.Ability) AbilityStat {
	return s.Abilities[a]
}

// AbilityMap returns the ability stats keyed by lowercase ability name.
func (s *ComputedStats) AbilityMap() map[string]AbilityStat {
	out := make(map[string]AbilityStat, character.AbilityCount)
	for _, a := range character.Abilities {
		out[a.String()] = s.Abilities[a]
	}
	return out
}

// Compute resolves every derived statistic of rec. A nil logger disables logging.
//
// Precondition: rec must be non-nil.
// Postcondition: rec is unchanged; repeated calls on the same rec return equal values.
func Compute(rec *character.Record, logger *zap.Logger) *ComputedStats {
	abilities := ability.NewResolver(rec, logger)
	def := defense.NewResolver(rec, abilities)
	vit := vitals.NewResolver(rec, abilities)

	out := &ComputedStats{
		ID:                 rec.ID,
		Name:               rec.Name,
		Level:              rec.TotalLevel(),
		EAC:                def.ArmorClass(defense.EAC),
		KAC:                def.ArmorClass(defense.KAC),
		CMD:                def.ManeuverDefense(),
		MaxHitPoints:       vit.MaxHitPoints(),
		CurrentHitPoints:   vit.CurrentHitPoints(),
		MaxStamina:         vit.MaxStamina(),
		CurrentStamina:     vit.CurrentStamina(),
		TemporaryHitPoints: vit.TemporaryHitPoints(),
		Initiative:         vit.Initiative(),
		Conditions:         condition.Active(rec),
	}
	for _, a := range character.Abilities {
		out.Abilities[a] = AbilityStat{Score: abilities.Score(a), Modifier: abilities.Modifier(a)}
	}
	return out
}

// MarshalYAML renders the abilities as a name-keyed mapping.
func (s ComputedStats) MarshalYAML() (interface{}, error) {
	// Fields must be exported for the encoder to reach them through the embedding.
	type Fields ComputedStats
	return struct {
		Fields    `yaml:",inline"`
		Abilities map[string]AbilityStat `yaml:"abilities"`
	}{Fields(s), s.AbilityMap()}, nil
}
