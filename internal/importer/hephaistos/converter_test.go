package hephaistos_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/starsheet/internal/game/character"
	"github.com/cory-johannsen/starsheet/internal/game/effect"
	"github.com/cory-johannsen/starsheet/internal/game/stats"
	"github.com/cory-johannsen/starsheet/internal/importer/hephaistos"
)

func TestDecode_Permalink(t *testing.T) {
	rec, err := hephaistos.Decode(readFixture(t, "permalink.json"))
	require.NoError(t, err)

	assert.Equal(t, "navasi-7", rec.ID)
	assert.Equal(t, "Navasi", rec.Name)
	assert.Nil(t, rec.Abilities.Entry(character.Intelligence).Override, "zero override is absent")
	assert.Equal(t, []string{"theme-opt-dex"}, rec.Theme.SelectedBenefitOptions)
	require.Len(t, rec.Inventory, 4)
	assert.IsType(t, &character.Armor{}, rec.Inventory[0])
	assert.IsType(t, &character.Shield{}, rec.Inventory[1])
	assert.IsType(t, &character.Augmentation{}, rec.Inventory[2])
	assert.Equal(t, &character.Gear{Type: "CharacterWeapon"}, rec.Inventory[3])
	assert.Equal(t, []character.Condition{
		{Name: "unconscious"}, {Name: "shaken", Active: true}, {Name: "prone"}, {Name: "flatFooted", Active: true},
	}, rec.Conditions)

	s := stats.Compute(rec, nil)
	assert.Equal(t, stats.AbilityStat{Score: 16, Modifier: 3}, s.Ability(character.Strength))
	assert.Equal(t, stats.AbilityStat{Score: 17, Modifier: 3}, s.Ability(character.Dexterity))
	assert.Equal(t, stats.AbilityStat{Score: 16, Modifier: 3}, s.Ability(character.Constitution))
	assert.Equal(t, stats.AbilityStat{Score: 10, Modifier: 0}, s.Ability(character.Intelligence))
	assert.Equal(t, stats.AbilityStat{Score: 12, Modifier: 0}, s.Ability(character.Wisdom))
	assert.Equal(t, stats.AbilityStat{Score: 13, Modifier: 1}, s.Ability(character.Charisma))
	assert.Equal(t, 16, s.EAC)
	assert.Equal(t, 15, s.KAC)
	assert.Equal(t, 23, s.CMD)
	assert.Equal(t, 16, s.MaxHitPoints)
	assert.Equal(t, 13, s.CurrentHitPoints)
	assert.Equal(t, 18, s.MaxStamina)
	assert.Equal(t, 16, s.CurrentStamina)
	assert.Equal(t, 1, s.TemporaryHitPoints)
	assert.Equal(t, 7, s.Initiative)
	assert.Equal(t, []string{"shaken", "flatFooted"}, s.Conditions)
}

func TestDecode_Legacy(t *testing.T) {
	rec, err := hephaistos.Decode(readFixture(t, "legacy.json"))
	require.NoError(t, err)
	assert.Equal(t, "legacy-1", rec.ID)

	armor := rec.EquippedPoweredArmor()
	require.NotNil(t, armor)
	assert.Equal(t, 20, armor.Base.Strength)

	s := stats.Compute(rec, nil)
	assert.Equal(t, 20, s.Ability(character.Strength).Score, "powered armor beats the override")
	// powered armor has no type tag, so the non-proficiency penalty applies; dex capped at 0
	assert.Equal(t, 10+8-4, s.EAC)
	assert.Equal(t, []string{"stable"}, s.Conditions)
}

func TestDecode_JSONRevision(t *testing.T) {
	rec, err := hephaistos.Decode(envelope(t, "kira-1", hephaistos.APIChangeTime))
	require.NoError(t, err)
	assert.Equal(t, "kira-1", rec.ID)
	assert.Equal(t, "Kira", rec.Name)
	assert.Empty(t, rec.Race.Adjustments)

	s := stats.Compute(rec, nil)
	assert.Equal(t, stats.AbilityStat{Score: 12, Modifier: 1}, s.Ability(character.Strength))
	assert.Equal(t, stats.AbilityStat{Score: 16, Modifier: 3}, s.Ability(character.Dexterity))
	assert.Equal(t, stats.AbilityStat{Score: 13, Modifier: 1}, s.Ability(character.Constitution))
	assert.Equal(t, stats.AbilityStat{Score: 10, Modifier: -1}, s.Ability(character.Wisdom))
	assert.Equal(t, stats.AbilityStat{Score: 14, Modifier: 2}, s.Ability(character.Charisma))
	// dex 3 capped to 2 by the armor; no shield proficiency
	assert.Equal(t, 17, s.EAC)
	assert.Equal(t, 19, s.KAC)
	assert.Equal(t, 27, s.CMD)
	assert.Equal(t, 20, s.MaxHitPoints)
	assert.Equal(t, 15, s.CurrentHitPoints)
	assert.Equal(t, 16, s.MaxStamina)
	assert.Equal(t, 7, s.Initiative)
	assert.Equal(t, []string{"fatigued", "bleeding"}, s.Conditions)
}

func TestDecode_JSONRevisionStale(t *testing.T) {
	_, err := hephaistos.Decode(envelope(t, "kira-1", hephaistos.APIChangeTime-60_000))
	assert.ErrorIs(t, err, hephaistos.ErrStaleDocument)
}

func TestDecode_BlankName(t *testing.T) {
	_, err := hephaistos.Decode([]byte(`{"readOnlyPermalinkId":"x","name":"   "}`))
	assert.ErrorIs(t, err, hephaistos.ErrMissingName)
}

func TestDecode_MissingOptionalSections(t *testing.T) {
	rec, err := hephaistos.Decode([]byte(`{"readOnlyPermalinkId":"x","name":"Bare"}`))
	require.NoError(t, err)
	s := stats.Compute(rec, nil)
	assert.Equal(t, 10, s.EAC)
	assert.NotNil(t, s.Conditions)
}

func TestRenderBenefit(t *testing.T) {
	four, two := 4, -2
	entries := make([]hephaistos.DocBenefitEntry, 3)
	entries[0].Bonus.Value.Int = &four
	entries[0].Bonus.Property = "Initiative"
	entries[1].Bonus.Property = "reflex"
	entries[2].Bonus.Value.Int = &two
	entries[2].Bonus.Property = "speed"

	got := hephaistos.RenderBenefit(entries)
	assert.Equal(t, "bonus 4 to character.initiative; bonus -2 to character.speed", got)
	assert.Equal(t, "", hephaistos.RenderBenefit(nil))
}

// Property: rendered benefits are read back verbatim by the effect extractor.
func TestRenderBenefit_RoundTripsThroughExtractor(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(rt, "n")
		entries := make([]hephaistos.DocBenefitEntry, n)
		want := make(map[string]int, n)
		for i := range entries {
			v := rapid.IntRange(-10, 10).Draw(rt, fmt.Sprintf("v%d", i))
			prop := rapid.StringMatching(`[a-z]{2,10}`).Draw(rt, fmt.Sprintf("p%d", i))
			entries[i].Bonus.Value.Int = &v
			entries[i].Bonus.Property = prop
			want[prop] = v
		}
		got := effect.Extract(hephaistos.RenderBenefit(entries)).Map()
		if len(got) != len(want) {
			rt.Fatalf("got %v, want %v", got, want)
		}
		for k, v := range want {
			if got[k] != v {
				rt.Fatalf("%s: got %d, want %d", k, got[k], v)
			}
		}
	})
}
