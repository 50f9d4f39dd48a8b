package defense_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/starsheet/internal/game/ability"
	"github.com/cory-johannsen/starsheet/internal/game/character"
	"github.com/cory-johannsen/starsheet/internal/game/defense"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

// newRecord returns a point-buy record whose dexterity modifier is dexMod.
func newRecord(dexMod int) *character.Record {
	rec := &character.Record{ID: "abc123", Name: "Keskodai"}
	rec.Abilities.Method = character.MethodPointBuy
	score := 10 + 2*dexMod
	rec.Abilities.Entries[character.Dexterity].Override = &score
	return rec
}

func resolver(rec *character.Record) *defense.Resolver {
	return defense.NewResolver(rec, ability.NewResolver(rec, nil))
}

func withClass(rec *character.Record, tags []string, desc string) {
	rec.Classes = append(rec.Classes, character.ClassLevel{
		Class:  character.ClassDef{ArmorProficiencies: tags, ArmorProficiencyDescription: desc},
		Levels: 1,
	})
}

func TestArmorClass_Unarmored(t *testing.T) {
	r := resolver(newRecord(3))
	assert.Equal(t, 13, r.ArmorClass(defense.EAC))
	assert.Equal(t, 13, r.ArmorClass(defense.KAC))
	assert.Equal(t, 21, r.ManeuverDefense())
}

func TestArmorClass_NonProficientArmorWithDexCap(t *testing.T) {
	rec := newRecord(5)
	withClass(rec, []string{"light"}, "")
	rec.Inventory = []character.Item{&character.Armor{
		IsEquipped: true,
		Base:       character.ArmorStats{Type: "heavy", MaxDexBonus: intPtr(2), EACBonus: 4, KACBonus: 6},
	}}
	r := resolver(rec)
	// 10 + 4 - 4 + 2
	assert.Equal(t, 12, r.ArmorClass(defense.EAC))
	assert.Equal(t, 14, r.ArmorClass(defense.KAC))
	assert.Equal(t, 22, r.ManeuverDefense())
}

func TestArmorClass_ProficientArmor(t *testing.T) {
	rec := newRecord(1)
	withClass(rec, []string{"Light", "heavy"}, "")
	rec.Inventory = []character.Item{&character.Armor{
		IsEquipped: true,
		Base:       character.ArmorStats{Type: "Heavy", MaxDexBonus: intPtr(2), EACBonus: 4, KACBonus: 6},
	}}
	assert.Equal(t, 15, resolver(rec).ArmorClass(defense.EAC))
}

func TestArmorClass_ArmorOverridesBeatBase(t *testing.T) {
	rec := newRecord(4)
	withClass(rec, nil, "light")
	rec.Inventory = []character.Item{&character.Armor{
		IsEquipped: true,
		Base:       character.ArmorStats{Type: "heavy", MaxDexBonus: intPtr(1), EACBonus: 9, KACBonus: 9},
		Overrides:  character.ArmorOverrides{Type: strPtr("light"), MaxDexBonus: intPtr(3), EACBonus: intPtr(2)},
	}}
	r := resolver(rec)
	assert.Equal(t, 15, r.ArmorClass(defense.EAC))
	assert.Equal(t, 22, r.ArmorClass(defense.KAC))
}

func TestArmorClass_CapNeverRaisesDex(t *testing.T) {
	rec := newRecord(1)
	withClass(rec, []string{"light"}, "")
	rec.Inventory = []character.Item{&character.Armor{
		IsEquipped: true,
		Base:       character.ArmorStats{Type: "light", MaxDexBonus: intPtr(5), EACBonus: 1},
	}}
	assert.Equal(t, 12, resolver(rec).ArmorClass(defense.EAC))
}

func TestArmorClass_UnequippedArmorIgnored(t *testing.T) {
	rec := newRecord(2)
	rec.Inventory = []character.Item{&character.Armor{
		Base: character.ArmorStats{Type: "heavy", MaxDexBonus: intPtr(0), EACBonus: 8},
	}}
	assert.Equal(t, 12, resolver(rec).ArmorClass(defense.EAC))
}

func TestArmorClass_ShieldRequiresProficiency(t *testing.T) {
	shield := &character.Shield{IsEquipped: true, Base: character.ShieldStats{MaxDexBonus: intPtr(1), WieldACBonus: 2}}

	without := newRecord(4)
	withClass(without, []string{"light"}, "")
	without.Inventory = []character.Item{shield}
	assert.Equal(t, 11, resolver(without).ArmorClass(defense.KAC), "cap applies, bonus does not")

	with := newRecord(4)
	withClass(with, []string{"light"}, "")
	withClass(with, []string{"shield"}, "")
	with.Inventory = []character.Item{shield}
	assert.Equal(t, 13, resolver(with).ArmorClass(defense.KAC))
}

func TestArmorClass_LowerOfTwoCapsWins(t *testing.T) {
	rec := newRecord(6)
	withClass(rec, []string{"light", "shield"}, "")
	rec.Inventory = []character.Item{
		&character.Shield{IsEquipped: true, Base: character.ShieldStats{MaxDexBonus: intPtr(4), WieldACBonus: 1}},
		&character.Armor{IsEquipped: true, Base: character.ArmorStats{Type: "light", MaxDexBonus: intPtr(3), EACBonus: 2}},
	}
	assert.Equal(t, 16, resolver(rec).ArmorClass(defense.EAC))

	rec.Inventory[0].(*character.Shield).Overrides.MaxDexBonus = intPtr(1)
	assert.Equal(t, 14, resolver(rec).ArmorClass(defense.EAC))
}

func TestArmorClass_ShieldProficiencyFromLaterDescriptionEntry(t *testing.T) {
	rec := newRecord(4)
	withClass(rec, nil, "light, heavy, shield")
	rec.Inventory = []character.Item{
		&character.Shield{IsEquipped: true, Base: character.ShieldStats{MaxDexBonus: intPtr(1), WieldACBonus: 2}},
	}
	assert.Equal(t, 13, resolver(rec).ArmorClass(defense.KAC), "every space is stripped, not just the first")
}

func TestProficiencies_MergesTagsAndDescriptions(t *testing.T) {
	rec := newRecord(0)
	withClass(rec, []string{"light"}, "")
	withClass(rec, nil, "Light, Heavy, Shield")
	profs := resolver(rec).Proficiencies()
	assert.Equal(t, map[string]struct{}{"LIGHT": {}, "HEAVY": {}, "SHIELD": {}}, profs)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "EAC", defense.EAC.String())
	assert.Equal(t, "KAC", defense.KAC.String())
}

// Property: with no armor or shield, both armor classes are 10 + the dexterity modifier.
func TestArmorClass_UnarmoredIsTenPlusDex(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dex := rapid.IntRange(-5, 10).Draw(rt, "dex")
		r := resolver(newRecord(dex))
		for _, k := range []defense.Kind{defense.EAC, defense.KAC} {
			if got := r.ArmorClass(k); got != 10+dex {
				rt.Fatalf("%s = %d, want %d", k, got, 10+dex)
			}
		}
		if got := r.ManeuverDefense(); got != 18+dex {
			rt.Fatalf("CMD = %d, want %d", got, 18+dex)
		}
	})
}
