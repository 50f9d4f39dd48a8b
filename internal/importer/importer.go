// Package importer runs a character import: fetch each record, compute its statistics
// and hand the result to every configured sink.
package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/starsheet/internal/game/stats"
)

// Importer fetches characters from a Source, computes their statistics and hands
// the results to every Sink.
type Importer struct {
	source      Source
	sinks       []Sink
	logger      *zap.Logger
	concurrency int
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *zap.Logger) Option {
	return func(imp *Importer) { imp.logger = logger }
}

// WithConcurrency bounds how many characters are processed at once. Values below 1 mean 1.
func WithConcurrency(n int) Option {
	return func(imp *Importer) { imp.concurrency = n }
}

// New constructs an Importer backed by source and writing to sinks.
//
// Precondition: source must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(source Source, sinks []Sink, opts ...Option) *Importer {
	imp := &Importer{source: source, sinks: sinks, logger: zap.NewNop(), concurrency: 1}
	for _, o := range opts {
		o(imp)
	}
	if imp.concurrency < 1 {
		imp.concurrency = 1
	}
	if imp.logger == nil {
		imp.logger = zap.NewNop()
	}
	return imp
}

// Result summarizes one Run.
type Result struct {
	RunID    uuid.UUID
	Imported []*stats.ComputedStats
}

// Run imports every id. One character's failure never stops the others; all
// failures are joined into the returned error.
//
// Postcondition: Result.Imported holds the stats of every character that was
// fetched and written to all sinks, in ids order.
func (imp *Importer) Run(ctx context.Context, ids []string) (*Result, error) {
	overall := time.Now()
	runID := uuid.New()
	log := imp.logger.With(zap.String("run", runID.String()))
	log.Info("import starting", zap.Int("characters", len(ids)))

	computed := make([]*stats.ComputedStats, len(ids))
	var (
		mu   sync.Mutex
		errs []error
	)

	var g errgroup.Group
	g.SetLimit(imp.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			s, err := imp.importOne(ctx, log, runID, id)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			computed[i] = s
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{RunID: runID}
	for _, s := range computed {
		if s != nil {
			res.Imported = append(res.Imported, s)
		}
	}
	log.Info("import finished",
		zap.Int("imported", len(res.Imported)),
		zap.Int("failed", len(errs)),
		zap.Duration("elapsed", time.Since(overall).Round(time.Millisecond)),
	)
	return res, errors.Join(errs...)
}

func (imp *Importer) importOne(ctx context.Context, log *zap.Logger, runID uuid.UUID, id string) (*stats.ComputedStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("character %q: %w", id, err)
	}
	t0 := time.Now()
	rec, err := imp.source.Fetch(ctx, id)
	if err != nil {
		log.Warn("fetch failed", zap.String("character", id), zap.Error(err))
		return nil, fmt.Errorf("character %q: %w", id, err)
	}

	s := stats.Compute(rec, log)
	for _, sink := range imp.sinks {
		if err := sink.Write(ctx, runID, s); err != nil {
			log.Warn("sink write failed", zap.String("character", id), zap.Error(err))
			return nil, fmt.Errorf("character %q (%s): %w", id, rec.Name, err)
		}
	}
	log.Info("imported",
		zap.String("character", id),
		zap.String("name", rec.Name),
		zap.Duration("elapsed", time.Since(t0).Round(time.Millisecond)),
	)
	return s, nil
}
