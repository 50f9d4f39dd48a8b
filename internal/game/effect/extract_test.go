package effect_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/starsheet/internal/game/effect"
)

func TestExtract_MultipleClauses(t *testing.T) {
	b := effect.Extract("bonus 2 to character.strength and bonus -1 to character.fly")
	assert.Equal(t, map[string]int{"strength": 2, "fly": -1}, b.Map())
	assert.Equal(t, []string{"strength", "fly"}, b.Targets())
}

func TestExtract_UnrelatedTextIsEmpty(t *testing.T) {
	b := effect.Extract("You gain darkvision with a range of 60 feet.")
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Map())
}

func TestExtract_EmptyText(t *testing.T) {
	assert.Equal(t, 0, effect.Extract("").Len())
}

func TestExtract_RepeatedTargetLastValueWins(t *testing.T) {
	b := effect.Extract("bonus 2 to character.dex; bonus 1 to character.con; bonus 4 to character.dex")
	v, ok := b.Get("dex")
	assert.True(t, ok)
	assert.Equal(t, 4, v)
	assert.Equal(t, []string{"dex", "con"}, b.Targets())
}

func TestExtract_MultiDigitValues(t *testing.T) {
	b := effect.Extract("bonus 12 to character.initiative")
	v, ok := b.Get("initiative")
	assert.True(t, ok)
	assert.Equal(t, 12, v)
}

func TestExtract_EmbeddedInScript(t *testing.T) {
	text := "if (level >= 3) {\n  bonus 1 to character.wisdom;\n}\nbonus 2 to character.initiative"
	assert.Equal(t, map[string]int{"wisdom": 1, "initiative": 2}, effect.Extract(text).Map())
}

func TestExtract_RejectsMalformedClauses(t *testing.T) {
	cases := []string{
		"Bonus 2 to character.strength",
		"bonus two to character.strength",
		"bonus 2 to player.strength",
		"bonus 2 to character. strength",
		"bonus 2 to character .strength",
		"bonus 2 to character.Strength",
		"bonus 2 character.strength",
	}
	for _, c := range cases {
		assert.Equal(t, 0, effect.Extract(c).Len(), "input %q", c)
	}
}

func TestExtract_IdentifierStopsAtFirstNonLowercase(t *testing.T) {
	b := effect.Extract("bonus 1 to character.kac_vs_grapple")
	assert.Equal(t, map[string]int{"kac": 1}, b.Map())
}

func TestExtract_ZeroValueBonuses(t *testing.T) {
	var b effect.Bonuses
	_, ok := b.Get("strength")
	assert.False(t, ok)
	assert.Empty(t, b.Targets())
}

// Property: every generated clause is recovered with its value, whatever filler surrounds it.
func TestExtract_RecoversGeneratedClauses(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(rt, "n")
		want := make(map[string]int, n)
		var parts []string
		for i := 0; i < n; i++ {
			target := rapid.StringMatching(`[a-z]{1,12}`).Draw(rt, fmt.Sprintf("target%d", i))
			value := rapid.IntRange(-20, 20).Draw(rt, fmt.Sprintf("value%d", i))
			filler := rapid.SampledFrom([]string{"", "and", ";", "then, if armed:", "\n"}).Draw(rt, fmt.Sprintf("filler%d", i))
			parts = append(parts, filler, fmt.Sprintf("bonus %d to character.%s", value, target))
			want[target] = value
		}
		got := effect.Extract(strings.Join(parts, " ")).Map()
		if len(got) != len(want) {
			rt.Fatalf("got %v, want %v", got, want)
		}
		for k, v := range want {
			if got[k] != v {
				rt.Fatalf("target %q: got %d, want %d", k, got[k], v)
			}
		}
	})
}

// Property: Extract never panics on arbitrary input.
func TestExtract_NeverPanics(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.String().Draw(rt, "text")
		_ = effect.Extract(s)
	})
}
