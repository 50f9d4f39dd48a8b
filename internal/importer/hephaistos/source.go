package hephaistos

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/starsheet/internal/game/character"
	"github.com/cory-johannsen/starsheet/internal/importer"
)

var _ importer.Source = (*Source)(nil)

// Fetcher returns raw character documents; *Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
}

// Source implements importer.Source over a Fetcher.
type Source struct {
	fetcher Fetcher
}

// NewSource constructs a Source.
//
// Precondition: fetcher must be non-nil.
func NewSource(fetcher Fetcher) *Source { return &Source{fetcher: fetcher} }

// Fetch retrieves and decodes the character with id.
//
// Postcondition: returns a non-nil Record or a non-nil error.
func (s *Source) Fetch(ctx context.Context, id string) (*character.Record, error) {
	raw, err := s.fetcher.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	rec, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding character %q: %w", id, err)
	}
	if rec.ID == "" {
		rec.ID = id
	}
	return rec, nil
}
