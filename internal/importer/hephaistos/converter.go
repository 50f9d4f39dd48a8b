package hephaistos

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/starsheet/internal/game/character"
)

const (
	typenameAugmentation = "CharacterAugmentation"
	typenamePoweredArmor = "PoweredArmor"

	docItemArmor        = "Armor"
	docItemShield       = "Shield"
	docItemAugmentation = "Augmentation"
)

// ConvertInline transforms a legacy or permalink document into a Record.
//
// Precondition: ic must be non-nil; rev is RevisionLegacy or RevisionPermalink.
// Postcondition: returns a non-nil Record or a non-nil error.
func ConvertInline(ic *InlineCharacter, rev Revision) (*character.Record, error) {
	name := strings.TrimSpace(ic.Name)
	if name == "" {
		return nil, ErrMissingName
	}
	id := ic.ReadOnlyPermalinkID
	if rev == RevisionLegacy {
		id = ic.ID
	}

	rec := &character.Record{
		ID:   id,
		Name: name,
		Abilities: character.AbilityScores{
			Method:    ic.AbilityScores.Method,
			Increases: ic.AbilityScores.Increases,
		},
		Race: character.Race{
			HitPoints:          ic.Race.Race.HitPoints,
			SelectedAdjustment: ic.Race.SelectedAdjustment,
			Adjustments:        convertOptions(ic.Race.Race.AbilityAdjustment),
		},
		Vitals: character.Vitals{
			Health:    character.Pool{Damage: ic.Vitals.Health.Damage},
			Stamina:   character.Pool{Damage: ic.Vitals.Stamina.Damage},
			Temporary: ic.Vitals.Temporary,
		},
	}

	scores := ic.AbilityScores
	for a, raw := range map[character.Ability]InlineAbility{
		character.Strength:     scores.Str,
		character.Dexterity:    scores.Dex,
		character.Constitution: scores.Con,
		character.Intelligence: scores.Int,
		character.Wisdom:       scores.Wis,
		character.Charisma:     scores.Cha,
	} {
		entry := character.AbilityEntry{
			PointBuy: raw.PointBuy,
			Override: nonZero(raw.Override),
			Damage:   raw.Damage,
		}
		for _, cb := range raw.CustomBonus {
			entry.CustomBonuses = append(entry.CustomBonuses, character.CustomBonus{Active: cb.Active, Value: cb.Value})
		}
		rec.Abilities.Entries[a] = entry
	}

	for _, b := range ic.Theme.Theme.Benefits {
		rec.Theme.Benefits = append(rec.Theme.Benefits, character.Benefit{
			Effect:  b.Effect,
			Options: convertOptions(b.Options),
		})
	}
	for _, sel := range ic.Theme.SelectedBenefitOptions {
		rec.Theme.SelectedBenefitOptions = append(rec.Theme.SelectedBenefitOptions, sel.Value)
	}

	for _, it := range ic.Inventory {
		rec.Inventory = append(rec.Inventory, convertInlineItem(it))
	}

	for _, cl := range ic.Classes {
		rec.Classes = append(rec.Classes, character.ClassLevel{
			Class: character.ClassDef{
				HitPoints:                   cl.Class.HitPoints,
				BaseStaminaPoints:           cl.Class.BaseStaminaPoints,
				ArmorProficiencies:          cl.Class.ArmorProficiency,
				ArmorProficiencyDescription: cl.Class.ArmorProficiencyDescription,
			},
			Levels: cl.Levels,
		})
	}
	for _, f := range ic.Feats {
		rec.Feats = append(rec.Feats, character.Feat{Benefit: f.Feat.Benefit})
	}

	rec.Conditions = convertConditions(ic.Conditions, func(c NamedCondition) bool { return truthy(c.Override) })
	return rec, nil
}

func convertInlineItem(it InlineItem) character.Item {
	switch {
	case it.Armor != nil:
		return &character.Armor{
			IsEquipped: it.IsEquipped,
			Base: character.ArmorStats{
				Type:        it.Armor.Type,
				MaxDexBonus: it.Armor.MaxDexBonus,
				EACBonus:    it.Armor.EACBonus,
				KACBonus:    it.Armor.KACBonus,
				Powered:     it.Armor.Typename == typenamePoweredArmor,
				Strength:    it.Armor.Strength,
			},
			Overrides: character.ArmorOverrides{
				Type:        it.ArmorType,
				MaxDexBonus: it.MaxDexBonusOverride,
				EACBonus:    it.EACBonusOverride,
				KACBonus:    it.KACBonusOverride,
			},
		}
	case it.Shield != nil:
		return &character.Shield{
			IsEquipped: it.IsEquipped,
			Base: character.ShieldStats{
				MaxDexBonus:  it.Shield.MaxDexBonus,
				WieldACBonus: it.Shield.WieldACBonus,
			},
			Overrides: character.ShieldOverrides{
				MaxDexBonus:  it.MaxDexBonusOverride,
				WieldACBonus: it.WieldACBonusOverride,
			},
		}
	case it.Typename == typenameAugmentation:
		aug := &character.Augmentation{IsEquipped: it.IsEquipped}
		if it.Augmentation != nil {
			aug.Options = convertOptions(it.Augmentation.Options)
		}
		for _, sel := range it.SelectedOptions {
			aug.SelectedOptions = append(aug.SelectedOptions, sel.Value)
		}
		return aug
	default:
		return &character.Gear{IsEquipped: it.IsEquipped, Type: it.Typename}
	}
}

// ConvertEnvelope validates a JSON-revision envelope and converts its document.
// The builder has already folded racial, theme and augmentation adjustments into
// each ability's score bonuses, so those sources stay empty and the score bonuses
// become active custom bonuses.
//
// Precondition: env must be non-nil.
// Postcondition: returns a non-nil Record or a non-nil error.
func ConvertEnvelope(env *Envelope) (*character.Record, error) {
	doc, err := ParseDocument(env)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(doc.Name)
	if name == "" {
		name = strings.TrimSpace(env.Name)
	}
	if name == "" {
		return nil, ErrMissingName
	}

	rec := &character.Record{
		ID:   env.ReadOnlyPermalinkID,
		Name: name,
		Abilities: character.AbilityScores{
			Method:    doc.AbilityScores.Method,
			Increases: doc.AbilityScores.Increases,
		},
		Race: character.Race{HitPoints: doc.Race.HitPoints},
		Vitals: character.Vitals{
			Health:    character.Pool{Max: doc.Vitals.Health.Max, Damage: doc.Vitals.Health.Damage},
			Stamina:   character.Pool{Max: doc.Vitals.Stamina.Max, Damage: doc.Vitals.Stamina.Damage},
			Temporary: doc.Vitals.Temporary,
		},
	}

	scores := doc.AbilityScores
	for a, raw := range map[character.Ability]DocAbility{
		character.Strength:     scores.Strength,
		character.Dexterity:    scores.Dexterity,
		character.Constitution: scores.Constitution,
		character.Intelligence: scores.Intelligence,
		character.Wisdom:       scores.Wisdom,
		character.Charisma:     scores.Charisma,
	} {
		entry := character.AbilityEntry{
			PointBuy: raw.PointBuy,
			Override: nonZero(raw.Override),
			Damage:   raw.Damage,
		}
		for _, sb := range raw.ScoreBonuses {
			entry.CustomBonuses = append(entry.CustomBonuses, character.CustomBonus{Active: true, Value: sb.Value})
		}
		rec.Abilities.Entries[a] = entry
	}

	for _, it := range doc.Inventory {
		rec.Inventory = append(rec.Inventory, convertDocItem(it))
	}
	for _, cl := range doc.Classes {
		rec.Classes = append(rec.Classes, character.ClassLevel{
			Class: character.ClassDef{
				HitPoints:                   cl.BaseHitPoints,
				BaseStaminaPoints:           cl.BaseStaminaPoints,
				ArmorProficiencies:          cl.ArmorProficiency,
				ArmorProficiencyDescription: cl.ArmorProficiencyDescription,
			},
			Levels: cl.Levels,
		})
	}
	for _, f := range doc.Feats.AcquiredFeats {
		rec.Feats = append(rec.Feats, character.Feat{Benefit: RenderBenefit(f.BenefitEffect)})
	}

	rec.Conditions = convertConditions(doc.Conditions, func(c NamedCondition) bool { return truthy(c.Active) })
	return rec, nil
}

func convertDocItem(it DocItem) character.Item {
	switch it.Type {
	case docItemArmor:
		return &character.Armor{
			IsEquipped: it.IsEquipped,
			Base: character.ArmorStats{
				Type:        it.ArmorType,
				MaxDexBonus: it.MaxDexBonus,
				EACBonus:    it.EACBonus,
				KACBonus:    it.KACBonus,
				Powered:     it.Strength > 0,
				Strength:    it.Strength,
			},
		}
	case docItemShield:
		return &character.Shield{
			IsEquipped: it.IsEquipped,
			Base:       character.ShieldStats{MaxDexBonus: it.MaxDexBonus, WieldACBonus: it.WieldACBonus},
		}
	case docItemAugmentation:
		return &character.Augmentation{IsEquipped: it.IsEquipped}
	default:
		return &character.Gear{IsEquipped: it.IsEquipped, Type: it.Type}
	}
}

// RenderBenefit renders structured feat bonuses into effect notation so the
// extractor reads them like inline feat benefits. Entries without an integer value
// are skipped.
func RenderBenefit(entries []DocBenefitEntry) string {
	var clauses []string
	for _, e := range entries {
		if e.Bonus.Value.Int == nil || e.Bonus.Property == "" {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("bonus %d to character.%s", *e.Bonus.Value.Int, strings.ToLower(e.Bonus.Property)))
	}
	return strings.Join(clauses, "; ")
}

func convertOptions(opts []OptionEffect) []character.Option {
	if len(opts) == 0 {
		return nil
	}
	out := make([]character.Option, 0, len(opts))
	for _, o := range opts {
		out = append(out, character.Option{ID: o.ID, Effect: o.Effect})
	}
	return out
}

func convertConditions(set ConditionSet, active func(NamedCondition) bool) []character.Condition {
	out := make([]character.Condition, 0, len(set))
	for _, c := range set {
		out = append(out, character.Condition{Name: c.Name, Active: active(c)})
	}
	return out
}

// nonZero treats a zero override as absent, matching the builder.
func nonZero(v *int) *int {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}
