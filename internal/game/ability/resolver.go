// Package ability resolves ability scores and modifiers from a character record,
// reproducing the character builder's stacking order.
package ability

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/starsheet/internal/game/character"
	"github.com/cory-johannsen/starsheet/internal/game/effect"
)

const (
	baseScore = 10
	// increaseThreshold is the running score at which a level increase drops from +2 to +1.
	increaseThreshold = 17
)

// Resolver computes ability scores for one record.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	rec    *character.Record
	logger *zap.Logger
}

// NewResolver creates a Resolver over rec. A nil logger disables logging.
//
// Precondition: rec must be non-nil.
func NewResolver(rec *character.Record, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec.Abilities.Method != character.MethodPointBuy {
		logger.Warn("ability generation method not supported; base allocation ignored",
			zap.String("character", rec.ID),
			zap.String("method", rec.Abilities.Method),
		)
	}
	return &Resolver{rec: rec, logger: logger}
}

// Score returns the ability score for a.
// Equipped powered armor with a strength rating replaces Strength outright.
func (r *Resolver) Score(a character.Ability) int {
	if a == character.Strength {
		if pa := r.rec.EquippedPoweredArmor(); pa != nil && pa.Base.Strength > 0 {
			return pa.Base.Strength
		}
	}
	return r.calculate(a)
}

// Modifier returns floor((Score-10)/2) - floor(damage/2).
// Ability damage lowers only the modifier, and only every second point counts.
func (r *Resolver) Modifier(a character.Ability) int {
	damage := r.rec.Abilities.Entry(a).Damage
	return FloorDiv(r.Score(a)-baseScore, 2) - FloorDiv(damage, 2)
}

func (r *Resolver) calculate(a character.Ability) int {
	entry := r.rec.Abilities.Entry(a)
	if entry.Override != nil {
		return *entry.Override
	}

	score := baseScore
	score += r.pointBuy(entry)
	score += r.racialBonus(a)
	score += r.themeBonus(a)
	score = r.applyIncreases(a, score)
	score += r.augmentationBonus(a)
	for _, cb := range entry.CustomBonuses {
		if cb.Active {
			score += cb.Value
		}
	}
	return score
}

func (r *Resolver) pointBuy(entry character.AbilityEntry) int {
	if r.rec.Abilities.Method == character.MethodPointBuy {
		return entry.PointBuy
	}
	return 0
}

// racialBonus applies the selected racial adjustment. When several tokens name the
// same ability, the last one wins.
func (r *Resolver) racialBonus(a character.Ability) int {
	race := r.rec.Race
	adj, ok := character.FindOption(race.Adjustments, race.SelectedAdjustment)
	if !ok {
		if race.SelectedAdjustment != "" {
			r.logger.Debug("selected racial adjustment not found",
				zap.String("character", r.rec.ID),
				zap.String("adjustment", race.SelectedAdjustment),
			)
		}
		return 0
	}
	bonus := 0
	bonuses := effect.Extract(adj.Effect)
	for _, target := range bonuses.Targets() {
		parsed, err := character.ParseAbility(target)
		if err != nil || parsed != a {
			continue
		}
		bonus, _ = bonuses.Get(target)
	}
	return bonus
}

func (r *Resolver) themeBonus(a character.Ability) int {
	theme := r.rec.Theme
	total := 0
	for _, benefit := range theme.Benefits {
		total += Bonus(effect.Extract(benefit.Effect), a)
		for _, opt := range benefit.Options {
			if theme.IsSelected(opt.ID) {
				total += Bonus(effect.Extract(opt.Effect), a)
			}
		}
	}
	return total
}

// applyIncreases folds the level-up picks over the running score in input order.
// Each matching pick re-reads the running score against the threshold.
func (r *Resolver) applyIncreases(a character.Ability, score int) int {
	for _, group := range r.rec.Abilities.Increases {
		for _, pick := range group {
			parsed, err := character.ParseAbility(pick)
			if err != nil || parsed != a {
				continue
			}
			score += IncreaseStep(score)
		}
	}
	return score
}

func (r *Resolver) augmentationBonus(a character.Ability) int {
	total := 0
	for _, aug := range r.rec.EquippedAugmentations() {
		selected := aug.SelectedOption()
		if selected == "" {
			continue
		}
		opt, ok := character.FindOption(aug.Options, selected)
		if !ok {
			r.logger.Debug("selected augmentation option not found",
				zap.String("character", r.rec.ID),
				zap.String("option", selected),
			)
			continue
		}
		total += Bonus(effect.Extract(opt.Effect), a)
	}
	return total
}

// Bonus returns the bonus for a from the first target in b that names a.
// Targets that are not abilities are skipped.
func Bonus(b effect.Bonuses, a character.Ability) int {
	for _, target := range b.Targets() {
		parsed, err := character.ParseAbility(target)
		if err != nil || parsed != a {
			continue
		}
		v, _ := b.Get(target)
		return v
	}
	return 0
}

// IncreaseStep returns the amount a single level increase adds to score.
func IncreaseStep(score int) int {
	if score < increaseThreshold {
		return 2
	}
	return 1
}

// FloorDiv divides rounding toward negative infinity.
//
// Precondition: d != 0.
func FloorDiv(n, d int) int {
	q := n / d
	if n%d != 0 && (n < 0) != (d < 0) {
		q--
	}
	return q
}
