// Package hephaistos fetches characters from the Hephaistos character builder and
// converts each known document revision into a character.Record.
package hephaistos

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/starsheet/internal/game/character"
)

// Revision identifies the shape of a fetched character document.
type Revision int

const (
	// RevisionUnknown is returned alongside an error.
	RevisionUnknown Revision = iota
	// RevisionLegacy is the inline field set addressed by "id".
	RevisionLegacy
	// RevisionPermalink is the inline field set addressed by "readOnlyPermalinkId".
	RevisionPermalink
	// RevisionJSON wraps the builder's own serialized document.
	RevisionJSON
)

// String returns the revision name.
func (r Revision) String() string {
	switch r {
	case RevisionLegacy:
		return "legacy"
	case RevisionPermalink:
		return "permalink"
	case RevisionJSON:
		return "json"
	default:
		return "unknown"
	}
}

// APIChangeTime is the first Updated timestamp (ms) whose JSON document carries every
// field the converter needs.
const APIChangeTime int64 = 1738586040000

var (
	// ErrUnknownRevision is returned when a document matches no known revision.
	ErrUnknownRevision = errors.New("hephaistos: unknown document revision")
	// ErrStaleDocument is returned for JSON documents saved before APIChangeTime or without a body.
	ErrStaleDocument = errors.New("hephaistos: document predates the JSON export; force a save in Hephaistos")
	// ErrMissingName is returned when a document has a blank name.
	ErrMissingName = errors.New("hephaistos: character has no name")
)

// DetectRevision inspects the top-level keys of raw.
//
// Postcondition: returns a known Revision, or RevisionUnknown and a non-nil error.
func DetectRevision(raw []byte) (Revision, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return RevisionUnknown, fmt.Errorf("parsing hephaistos document: %w", err)
	}
	switch {
	case hasKey(keys, "json"):
		return RevisionJSON, nil
	case hasKey(keys, "readOnlyPermalinkId"):
		return RevisionPermalink, nil
	case hasKey(keys, "id"):
		return RevisionLegacy, nil
	}
	return RevisionUnknown, ErrUnknownRevision
}

func hasKey(keys map[string]json.RawMessage, k string) bool {
	_, ok := keys[k]
	return ok
}

// Decode converts a fetched character document of any known revision.
//
// Postcondition: returns a non-nil Record with a non-empty trimmed Name, or a non-nil error.
func Decode(raw []byte) (*character.Record, error) {
	rev, err := DetectRevision(raw)
	if err != nil {
		return nil, err
	}
	switch rev {
	case RevisionJSON:
		env, err := ParseEnvelope(raw)
		if err != nil {
			return nil, err
		}
		return ConvertEnvelope(env)
	default:
		ic, err := ParseInline(raw)
		if err != nil {
			return nil, err
		}
		return ConvertInline(ic, rev)
	}
}

// ParseInline parses a legacy or permalink document.
//
// Postcondition: returns a non-nil InlineCharacter or a non-nil error.
func ParseInline(raw []byte) (*InlineCharacter, error) {
	var ic InlineCharacter
	if err := json.Unmarshal(raw, &ic); err != nil {
		return nil, fmt.Errorf("parsing inline character: %w", err)
	}
	return &ic, nil
}

// ParseEnvelope parses a JSON-revision wrapper without decoding its body.
//
// Postcondition: returns a non-nil Envelope or a non-nil error.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("parsing character envelope: %w", err)
	}
	return &env, nil
}

// ParseDocument parses the serialized body of a JSON-revision envelope.
//
// Precondition: env.Updated >= APIChangeTime and env.JSON is non-empty.
// Postcondition: returns a non-nil Document or a non-nil error.
func ParseDocument(env *Envelope) (*Document, error) {
	if env.Updated < APIChangeTime {
		return nil, fmt.Errorf("%q last saved at %d: %w", env.Name, env.Updated, ErrStaleDocument)
	}
	if strings.TrimSpace(env.JSON) == "" {
		return nil, fmt.Errorf("%q has no JSON body: %w", env.Name, ErrStaleDocument)
	}
	var doc Document
	if err := json.Unmarshal([]byte(env.JSON), &doc); err != nil {
		return nil, fmt.Errorf("parsing character document %q: %w", env.Name, err)
	}
	return &doc, nil
}
