package ability_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/starsheet/internal/game/ability"
	"github.com/cory-johannsen/starsheet/internal/game/character"
)

func intPtr(v int) *int { return &v }

func newRecord() *character.Record {
	return &character.Record{
		ID:        "abc123",
		Name:      "Navasi",
		Abilities: character.AbilityScores{Method: character.MethodPointBuy},
	}
}

func resolve(rec *character.Record) *ability.Resolver {
	return ability.NewResolver(rec, nil)
}

func TestScore_BaseIsTen(t *testing.T) {
	r := resolve(newRecord())
	for _, a := range character.Abilities {
		assert.Equal(t, 10, r.Score(a), a.String())
		assert.Equal(t, 0, r.Modifier(a), a.String())
	}
}

func TestScore_PointBuy(t *testing.T) {
	rec := newRecord()
	rec.Abilities.Entries[character.Dexterity].PointBuy = 6
	assert.Equal(t, 16, resolve(rec).Score(character.Dexterity))
}

func TestScore_UnsupportedMethodIgnoresPointBuy(t *testing.T) {
	rec := newRecord()
	rec.Abilities.Method = "ROLLED"
	rec.Abilities.Entries[character.Dexterity].PointBuy = 6
	assert.Equal(t, 10, resolve(rec).Score(character.Dexterity))
}

func TestScore_OverrideBypassesEverything(t *testing.T) {
	rec := newRecord()
	rec.Abilities.Entries[character.Wisdom] = character.AbilityEntry{
		PointBuy:      8,
		Override:      intPtr(13),
		CustomBonuses: []character.CustomBonus{{Active: true, Value: 4}},
	}
	rec.Abilities.Increases = [][]string{{"wis"}}
	assert.Equal(t, 13, resolve(rec).Score(character.Wisdom))
}

func TestModifier_OverrideStillAppliesDamage(t *testing.T) {
	rec := newRecord()
	rec.Abilities.Entries[character.Wisdom] = character.AbilityEntry{Override: intPtr(14), Damage: 2}
	assert.Equal(t, 1, resolve(rec).Modifier(character.Wisdom))
}

func TestModifier_DamageCountsEverySecondPoint(t *testing.T) {
	rec := newRecord()
	rec.Abilities.Entries[character.Constitution] = character.AbilityEntry{PointBuy: 6, Damage: 3}
	r := resolve(rec)
	assert.Equal(t, 16, r.Score(character.Constitution), "damage never lowers the score")
	assert.Equal(t, 2, r.Modifier(character.Constitution))
}

func TestModifier_FloorsNegativeScores(t *testing.T) {
	rec := newRecord()
	rec.Abilities.Entries[character.Charisma] = character.AbilityEntry{Override: intPtr(9)}
	rec.Abilities.Entries[character.Intelligence] = character.AbilityEntry{Override: intPtr(7)}
	r := resolve(rec)
	assert.Equal(t, -1, r.Modifier(character.Charisma))
	assert.Equal(t, -2, r.Modifier(character.Intelligence))
}

func TestScore_IncreasesReevaluateThresholdEachStep(t *testing.T) {
	rec := newRecord()
	rec.Abilities.Entries[character.Strength].PointBuy = 6
	rec.Abilities.Increases = [][]string{{"Str"}, {"Str"}, {"Str"}}
	// 16 -> 18 -> 19 -> 20
	assert.Equal(t, 20, resolve(rec).Score(character.Strength))
}

func TestScore_IncreasesSeeEarlierStages(t *testing.T) {
	rec := newRecord()
	rec.Abilities.Entries[character.Dexterity].PointBuy = 5
	rec.Race = character.Race{
		SelectedAdjustment: "standard",
		Adjustments:        []character.Option{{ID: "standard", Effect: "bonus 2 to character.dex"}},
	}
	rec.Abilities.Increases = [][]string{{"dexterity", "con"}}
	// 15 + 2 racial = 17, so the increase only adds 1.
	assert.Equal(t, 18, resolve(rec).Score(character.Dexterity))
	assert.Equal(t, 12, resolve(rec).Score(character.Constitution))
}

func TestScore_IncreasesAcceptAnyNameForm(t *testing.T) {
	rec := newRecord()
	rec.Abilities.Increases = [][]string{{"INT", "Intelligence", "intelligence"}, {"Luck"}}
	// 10 -> 12 -> 14 -> 16; "Luck" is skipped.
	assert.Equal(t, 16, resolve(rec).Score(character.Intelligence))
}

func TestScore_RacialAdjustment(t *testing.T) {
	rec := newRecord()
	rec.Race = character.Race{
		SelectedAdjustment: "alt",
		Adjustments: []character.Option{
			{ID: "standard", Effect: "bonus 2 to character.str"},
			{ID: "alt", Effect: "bonus 2 to character.cha and bonus -2 to character.constitution and bonus 1 to character.speed"},
		},
	}
	r := resolve(rec)
	assert.Equal(t, 10, r.Score(character.Strength))
	assert.Equal(t, 12, r.Score(character.Charisma))
	assert.Equal(t, 8, r.Score(character.Constitution))
}

func TestScore_RacialAdjustmentLastAbilityTokenWins(t *testing.T) {
	rec := newRecord()
	rec.Race = character.Race{
		SelectedAdjustment: "a",
		Adjustments:        []character.Option{{ID: "a", Effect: "bonus 1 to character.str bonus 2 to character.strength"}},
	}
	assert.Equal(t, 12, resolve(rec).Score(character.Strength))
}

func TestScore_MissingRacialAdjustmentIsNoBonus(t *testing.T) {
	rec := newRecord()
	rec.Race = character.Race{
		SelectedAdjustment: "gone",
		Adjustments:        []character.Option{{ID: "standard", Effect: "bonus 2 to character.str"}},
	}
	assert.Equal(t, 10, resolve(rec).Score(character.Strength))
}

func TestScore_ThemeBenefitsAndSelectedOptions(t *testing.T) {
	rec := newRecord()
	rec.Theme = character.Theme{
		Benefits: []character.Benefit{
			{Effect: "bonus 1 to character.int"},
			{
				Options: []character.Option{
					{ID: "opt-int", Effect: "bonus 1 to character.intelligence"},
					{ID: "opt-wis", Effect: "bonus 1 to character.wis"},
				},
			},
		},
		SelectedBenefitOptions: []string{"opt-int"},
	}
	r := resolve(rec)
	assert.Equal(t, 12, r.Score(character.Intelligence))
	assert.Equal(t, 10, r.Score(character.Wisdom))
}

func TestScore_Augmentations(t *testing.T) {
	rec := newRecord()
	rec.Inventory = []character.Item{
		&character.Augmentation{
			IsEquipped:      true,
			Options:         []character.Option{{ID: "dex", Effect: "bonus 2 to character.dex"}, {ID: "str", Effect: "bonus 2 to character.str"}},
			SelectedOptions: []string{"dex", "str"},
		},
		&character.Augmentation{
			IsEquipped:      false,
			Options:         []character.Option{{ID: "dex", Effect: "bonus 2 to character.dex"}},
			SelectedOptions: []string{"dex"},
		},
		&character.Augmentation{
			IsEquipped:      true,
			Options:         []character.Option{{ID: "dex", Effect: "bonus 2 to character.dex"}},
			SelectedOptions: []string{"stale"},
		},
		&character.Augmentation{IsEquipped: true},
	}
	r := resolve(rec)
	assert.Equal(t, 12, r.Score(character.Dexterity))
	assert.Equal(t, 10, r.Score(character.Strength), "only the first selected option counts")
}

func TestScore_CustomBonusesOnlyWhenActive(t *testing.T) {
	rec := newRecord()
	rec.Abilities.Entries[character.Charisma].CustomBonuses = []character.CustomBonus{
		{Active: true, Value: 2},
		{Active: false, Value: 5},
		{Active: true, Value: -1},
	}
	assert.Equal(t, 11, resolve(rec).Score(character.Charisma))
}

func TestScore_PoweredArmorReplacesStrength(t *testing.T) {
	rec := newRecord()
	rec.Abilities.Entries[character.Strength] = character.AbilityEntry{PointBuy: 2, Damage: 4}
	rec.Inventory = []character.Item{
		&character.Armor{IsEquipped: true, Base: character.ArmorStats{Type: "heavy", Powered: true, Strength: 18}},
	}
	r := resolve(rec)
	assert.Equal(t, 18, r.Score(character.Strength))
	assert.Equal(t, 2, r.Modifier(character.Strength))
}

func TestScore_UnequippedPoweredArmorIgnored(t *testing.T) {
	rec := newRecord()
	rec.Inventory = []character.Item{
		&character.Armor{IsEquipped: false, Base: character.ArmorStats{Powered: true, Strength: 18}},
		&character.Armor{IsEquipped: true, Base: character.ArmorStats{Powered: true}},
	}
	assert.Equal(t, 10, resolve(rec).Score(character.Strength))
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, 3, ability.FloorDiv(6, 2))
	assert.Equal(t, 1, ability.FloorDiv(3, 2))
	assert.Equal(t, -1, ability.FloorDiv(-1, 2))
	assert.Equal(t, -2, ability.FloorDiv(-3, 2))
	assert.Equal(t, 0, ability.FloorDiv(0, 2))
}

// Property: an override is returned verbatim whatever else the record holds.
func TestScore_OverrideIsAbsolute(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := character.Abilities[rapid.IntRange(0, character.AbilityCount-1).Draw(rt, "ability")]
		override := rapid.IntRange(1, 40).Draw(rt, "override")
		rec := newRecord()
		rec.Abilities.Entries[a] = character.AbilityEntry{
			PointBuy: rapid.IntRange(0, 8).Draw(rt, "pointBuy"),
			Override: &override,
			Damage:   rapid.IntRange(0, 10).Draw(rt, "damage"),
			CustomBonuses: []character.CustomBonus{
				{Active: true, Value: rapid.IntRange(-4, 4).Draw(rt, "custom")},
			},
		}
		rec.Abilities.Increases = [][]string{{a.String()}, {a.Abbrev()}}
		if got := resolve(rec).Score(a); got != override {
			rt.Fatalf("Score(%s) = %d, want override %d", a, got, override)
		}
	})
}

// Property: Modifier == floor((Score-10)/2) - floor(damage/2).
func TestModifier_MatchesFormula(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := character.Abilities[rapid.IntRange(0, character.AbilityCount-1).Draw(rt, "ability")]
		score := rapid.IntRange(1, 30).Draw(rt, "score")
		damage := rapid.IntRange(0, 20).Draw(rt, "damage")
		rec := newRecord()
		rec.Abilities.Entries[a] = character.AbilityEntry{Override: &score, Damage: damage}
		want := int(math.Floor(float64(score-10)/2)) - int(math.Floor(float64(damage)/2))
		if got := resolve(rec).Modifier(a); got != want {
			rt.Fatalf("Modifier(%s) with score=%d damage=%d = %d, want %d", a, score, damage, got, want)
		}
	})
}

// Property: a run of k increases equals stepping the threshold rule k times.
func TestScore_IncreasesAreALeftFold(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		pointBuy := rapid.IntRange(-2, 10).Draw(rt, "pointBuy")
		k := rapid.IntRange(0, 8).Draw(rt, "k")
		rec := newRecord()
		rec.Abilities.Entries[character.Wisdom].PointBuy = pointBuy
		want := 10 + pointBuy
		for i := 0; i < k; i++ {
			rec.Abilities.Increases = append(rec.Abilities.Increases, []string{"wis", "str"})
			want += ability.IncreaseStep(want)
		}
		if got := resolve(rec).Score(character.Wisdom); got != want {
			rt.Fatalf("Score after %d increases from %d = %d, want %d", k, 10+pointBuy, got, want)
		}
	})
}
