package character

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAbility is returned when a token does not name one of the six abilities.
var ErrUnknownAbility = errors.New("unknown ability")

// Ability identifies one of the six ability scores.
type Ability int

// The six abilities, in sheet order.
const (
	Strength Ability = iota
	Dexterity
	Constitution
	Intelligence
	Wisdom
	Charisma
)

// AbilityCount is the number of abilities.
const AbilityCount = 6

// Abilities lists every ability in sheet order.
var Abilities = [AbilityCount]Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

var abilityNames = [AbilityCount]string{"strength", "dexterity", "constitution", "intelligence", "wisdom", "charisma"}

// String returns the lowercase full name, e.g. "strength".
func (a Ability) String() string {
	if !a.Valid() {
		return fmt.Sprintf("<ability %d>", int(a))
	}
	return abilityNames[a]
}

// Abbrev returns the capitalized three-letter label used on sheets, e.g. "Str".
func (a Ability) Abbrev() string {
	if !a.Valid() {
		return a.String()
	}
	n := abilityNames[a]
	return strings.ToUpper(n[:1]) + n[1:3]
}

// Valid reports whether a is one of the six abilities.
func (a Ability) Valid() bool {
	return a >= Strength && a <= Charisma
}

// ParseAbility normalizes a free-text ability token. Full names and three-letter
// abbreviations are accepted in any case.
//
// Postcondition: Returns a valid Ability, or an error wrapping ErrUnknownAbility.
func ParseAbility(token string) (Ability, error) {
	lower := strings.ToLower(token)
	for _, a := range Abilities {
		name := abilityNames[a]
		if lower == name || lower == name[:3] {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAbility, token)
}
