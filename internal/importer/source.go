package importer

import (
	"context"

	"github.com/google/uuid"

	"github.com/cory-johannsen/starsheet/internal/game/character"
	"github.com/cory-johannsen/starsheet/internal/game/stats"
)

// Source produces canonical character records.
//
// Precondition: id must be non-empty.
// Postcondition: returns a non-nil Record, or a non-nil error.
type Source interface {
	Fetch(ctx context.Context, id string) (*character.Record, error)
}

// Sink receives the computed statistics of one character. runID identifies the
// import run that produced them and is shared by every character in the run.
type Sink interface {
	Write(ctx context.Context, runID uuid.UUID, s *stats.ComputedStats) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, runID uuid.UUID, s *stats.ComputedStats) error

// Write calls f.
func (f SinkFunc) Write(ctx context.Context, runID uuid.UUID, s *stats.ComputedStats) error {
	return f(ctx, runID, s)
}
