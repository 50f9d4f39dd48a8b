// Package effect extracts numeric bonuses from the free-text rule effects embedded in
// race, theme, feat and augmentation data.
//
// The effect notation is undocumented; only one clause shape is understood:
//
//	clause     = "bonus" integer "to" "character" "." identifier
//	integer    = ["-"] digit { digit }
//	identifier = lower { lower }
//
// Words are separated by whitespace; "character", "." and the identifier are adjacent.
// Matching is case-sensitive and everything outside a clause is ignored.
package effect

import (
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"
)

var effectLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "Word", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Punct", Pattern: `.`},
})

var (
	tokInt        = effectLexer.Symbols()["Int"]
	tokWord       = effectLexer.Symbols()["Word"]
	tokDot        = effectLexer.Symbols()["Dot"]
	tokWhitespace = effectLexer.Symbols()["Whitespace"]
)

// clauseLen is the number of non-whitespace tokens in one clause.
const clauseLen = 6

// token is a lexed token with whitespace folded into the spaced flag.
type token struct {
	typ    lexer.TokenType
	value  string
	spaced bool // preceded by whitespace
}

// Bonuses maps effect targets (e.g. "strength", "initiative") to bonuses.
// Targets keep the position of their first occurrence and the value of their last.
// The zero value is an empty mapping.
type Bonuses struct {
	targets []string
	values  map[string]int
}

// Get returns the bonus for target.
func (b Bonuses) Get(target string) (int, bool) {
	v, ok := b.values[target]
	return v, ok
}

// Targets returns the targets in first-occurrence order.
func (b Bonuses) Targets() []string {
	out := make([]string, len(b.targets))
	copy(out, b.targets)
	return out
}

// Len returns the number of distinct targets.
func (b Bonuses) Len() int { return len(b.targets) }

// Map returns the bonuses as a plain map.
func (b Bonuses) Map() map[string]int {
	out := make(map[string]int, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

func (b *Bonuses) set(target string, value int) {
	if b.values == nil {
		b.values = make(map[string]int)
	}
	if _, ok := b.values[target]; !ok {
		b.targets = append(b.targets, target)
	}
	b.values[target] = value
}

// Extract scans text for every non-overlapping bonus clause.
//
// Postcondition: Never panics; text without clauses, or text the lexer rejects,
// yields an empty Bonuses.
func Extract(text string) Bonuses {
	var out Bonuses
	if text == "" {
		return out
	}
	toks, err := tokenize(text)
	if err != nil {
		return out
	}
	for i := 0; i < len(toks); {
		target, value, ok := matchClause(toks[i:])
		if !ok {
			i++
			continue
		}
		out.set(target, value)
		i += clauseLen
	}
	return out
}

func tokenize(text string) ([]token, error) {
	lx, err := effectLexer.LexString("", text)
	if err != nil {
		return nil, err
	}
	raw, err := lexer.ConsumeAll(lx)
	if err != nil {
		return nil, err
	}
	toks := make([]token, 0, len(raw))
	spaced := false
	for _, t := range raw {
		switch {
		case t.EOF():
		case t.Type == tokWhitespace:
			spaced = true
		default:
			toks = append(toks, token{typ: t.Type, value: t.Value, spaced: spaced})
			spaced = false
		}
	}
	return toks, nil
}

// matchClause reports whether toks starts with a complete clause.
func matchClause(toks []token) (string, int, bool) {
	if len(toks) < clauseLen {
		return "", 0, false
	}
	if !isWord(toks[0], "bonus") || toks[1].typ != tokInt || !isWord(toks[2], "to") || !isWord(toks[3], "character") {
		return "", 0, false
	}
	if toks[4].typ != tokDot || toks[4].spaced || toks[5].typ != tokWord || toks[5].spaced {
		return "", 0, false
	}
	target := lowerPrefix(toks[5].value)
	if target == "" {
		return "", 0, false
	}
	value, err := strconv.Atoi(toks[1].value)
	if err != nil {
		return "", 0, false
	}
	return target, value, true
}

func isWord(t token, w string) bool {
	return t.typ == tokWord && t.value == w
}

// lowerPrefix returns the leading run of ASCII lowercase letters.
func lowerPrefix(s string) string {
	n := 0
	for n < len(s) && s[n] >= 'a' && s[n] <= 'z' {
		n++
	}
	return s[:n]
}
