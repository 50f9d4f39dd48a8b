// Package condition lists the conditions currently applied to a character.
package condition

import "github.com/cory-johannsen/starsheet/internal/game/character"

// Active returns the names of every active condition in record order.
//
// Postcondition: the result is non-nil.
func Active(rec *character.Record) []string {
	out := make([]string, 0, len(rec.Conditions))
	for _, c := range rec.Conditions {
		if c.Active {
			out = append(out, c.Name)
		}
	}
	return out
}
