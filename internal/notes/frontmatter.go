package notes

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/starsheet/internal/game/character"
	"github.com/cory-johannsen/starsheet/internal/game/stats"
)

// LinkPrefix is prepended to the character id to build the note's link.
const LinkPrefix = "https://hephaistos.online/character/"

// overrideSuffix marks a user-maintained key that wins over a computed one.
const overrideSuffix = "_override"

const delimiter = "---"

// ErrMalformedFrontmatter is returned when a note opens a frontmatter block that never closes.
var ErrMalformedFrontmatter = errors.New("notes: frontmatter is not terminated")

// field is one computed frontmatter key.
type field struct {
	key         string
	overridable bool
	value       func(*stats.ComputedStats) *yaml.Node
}

// Options selects the optional key groups Update maintains.
type Options struct {
	// InitiativeTracker adds level, hp, ac and modifier.
	InitiativeTracker bool
}

var (
	fields        = buildFields()
	trackerFields = buildTrackerFields()
)

func (o Options) fields() []field {
	if !o.InitiativeTracker {
		return fields
	}
	out := make([]field, 0, len(fields)+len(trackerFields))
	return append(append(out, fields...), trackerFields...)
}

func buildFields() []field {
	out := []field{
		{key: "name", value: func(s *stats.ComputedStats) *yaml.Node { return strNode(s.Name) }},
		{key: "HP", overridable: true, value: intField(func(s *stats.ComputedStats) int { return s.CurrentHitPoints })},
		{key: "MaxHP", overridable: true, value: intField(func(s *stats.ComputedStats) int { return s.MaxHitPoints })},
		{key: "SP", overridable: true, value: intField(func(s *stats.ComputedStats) int { return s.CurrentStamina })},
		{key: "MaxSP", overridable: true, value: intField(func(s *stats.ComputedStats) int { return s.MaxStamina })},
		{key: "TempHP", overridable: true, value: intField(func(s *stats.ComputedStats) int { return s.TemporaryHitPoints })},
		{key: "EAC", overridable: true, value: intField(func(s *stats.ComputedStats) int { return s.EAC })},
		{key: "KAC", overridable: true, value: intField(func(s *stats.ComputedStats) int { return s.KAC })},
		{key: "CMD", overridable: true, value: intField(func(s *stats.ComputedStats) int { return s.CMD })},
		{key: "Initiative", overridable: true, value: intField(func(s *stats.ComputedStats) int { return s.Initiative })},
	}
	for _, a := range character.Abilities {
		out = append(out,
			field{key: a.Abbrev(), overridable: true, value: intField(func(s *stats.ComputedStats) int { return s.Ability(a).Score })},
			field{key: a.Abbrev() + "Modifier", overridable: true, value: intField(func(s *stats.ComputedStats) int { return s.Ability(a).Modifier })},
		)
	}
	out = append(out,
		field{key: "conditions", overridable: true, value: func(s *stats.ComputedStats) *yaml.Node {
			seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for _, c := range s.Conditions {
				seq.Content = append(seq.Content, strNode(c))
			}
			return seq
		}},
		field{key: "link", value: func(s *stats.ComputedStats) *yaml.Node { return strNode(LinkPrefix + s.ID) }},
	)
	return out
}

// buildTrackerFields describes the keys initiative trackers read. hp counts every
// remaining point: hit points, stamina and temporary hit points.
func buildTrackerFields() []field {
	return []field{
		{key: "level", overridable: true, value: intField(func(s *stats.ComputedStats) int { return s.Level })},
		{key: "hp", overridable: true, value: intField(func(s *stats.ComputedStats) int {
			return s.CurrentHitPoints + s.CurrentStamina + s.TemporaryHitPoints
		})},
		{key: "ac", overridable: true, value: func(s *stats.ComputedStats) *yaml.Node {
			return strNode(fmt.Sprintf("EAC %d, KAC %d", s.EAC, s.KAC))
		}},
		{key: "modifier", overridable: true, value: intField(func(s *stats.ComputedStats) int { return s.Initiative })},
	}
}

// Keys returns the frontmatter keys Update maintains under opts, in write order.
func Keys(opts Options) []string {
	fs := opts.fields()
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.key)
	}
	return out
}

// Update rewrites the computed keys in a note's frontmatter and returns the new note.
// A computed key whose "<key>_override" entry holds a truthy value takes that value
// instead. Other keys keep their values and order, and the body is untouched.
//
// Precondition: s must be non-nil.
// Postcondition: returns the updated note, or ErrMalformedFrontmatter/a YAML error.
func Update(note []byte, s *stats.ComputedStats, opts Options) ([]byte, error) {
	front, body, err := split(note)
	if err != nil {
		return nil, err
	}

	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	root := mapping
	if len(bytes.TrimSpace(front)) > 0 {
		var doc yaml.Node
		if err := yaml.Unmarshal(front, &doc); err != nil {
			return nil, fmt.Errorf("parsing frontmatter: %w", err)
		}
		switch {
		case len(doc.Content) == 1 && doc.Content[0].Kind == yaml.MappingNode:
			mapping, root = doc.Content[0], &doc
		case len(doc.Content) > 0:
			return nil, errors.New("parsing frontmatter: top level is not a mapping")
		}
	}

	for _, f := range opts.fields() {
		value := f.value(s)
		if f.overridable {
			if ov := lookup(mapping, f.key+overrideSuffix); ov != nil && truthy(ov) {
				value = ov
			}
		}
		set(mapping, f.key, value)
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("encoding frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding frontmatter: %w", err)
	}
	buf.WriteString(delimiter + "\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

// split separates a leading "---" delimited block from the rest of the note.
func split(note []byte) (front, body []byte, err error) {
	first, rest, _ := bytes.Cut(note, []byte("\n"))
	if !isDelimiter(first) {
		return nil, note, nil
	}
	for pos := 0; pos <= len(rest); {
		line, after, more := bytes.Cut(rest[pos:], []byte("\n"))
		if isDelimiter(line) {
			return rest[:pos], after, nil
		}
		if !more {
			break
		}
		pos += len(line) + 1
	}
	return nil, nil, ErrMalformedFrontmatter
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, " \t\r")) == delimiter
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func set(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content, strNode(key), value)
}

// truthy mirrors how the notes app treats an override: null, false, zero and the
// empty string are ignored.
func truthy(n *yaml.Node) bool {
	switch n.Kind {
	case yaml.AliasNode:
		return n.Alias != nil && truthy(n.Alias)
	case yaml.ScalarNode:
	default:
		return true
	}
	switch n.ShortTag() {
	case "!!null":
		return false
	case "!!bool":
		v, err := strconv.ParseBool(n.Value)
		return err == nil && v
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return true
		}
		return f != 0
	default:
		return n.Value != ""
	}
}

func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func intField(get func(*stats.ComputedStats) int) func(*stats.ComputedStats) *yaml.Node {
	return func(s *stats.ComputedStats) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(get(s))}
	}
}
