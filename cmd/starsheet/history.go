package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/starsheet/internal/config"
	"github.com/cory-johannsen/starsheet/internal/game/stats"
	"github.com/cory-johannsen/starsheet/internal/observability"
	"github.com/cory-johannsen/starsheet/internal/storage/postgres"
)

// snapshotReader is the read side of the snapshot store.
type snapshotReader interface {
	Latest(ctx context.Context, characterID string) (*postgres.Snapshot, error)
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*postgres.Snapshot, error)
}

func newHistoryCmd() *cobra.Command {
	var run string
	cmd := &cobra.Command{
		Use:   "history [character-id]",
		Short: "Show stored statistics snapshots",
		Long: `Print the most recent snapshot stored for a character, or with --run every
snapshot written by one import run. Requires database.enabled.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var characterID string
			if len(args) == 1 {
				characterID = args[0]
			}
			if (characterID == "") == (run == "") {
				return errors.New("give either a character id or --run")
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if !cfg.Database.Enabled {
				return errors.New("history needs database.enabled")
			}
			logger, err := observability.NewLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			defer func() { _ = observability.Sync(logger) }()

			pool, err := postgres.NewPool(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer pool.Close()

			return runHistory(cmd.Context(), cmd.OutOrStdout(), pool.Snapshots(), characterID, run)
		},
	}
	cmd.Flags().StringVar(&run, "run", "", "import run id to list")
	return cmd
}

type snapshotView struct {
	ID        int64                `yaml:"id"`
	Run       string               `yaml:"run"`
	CreatedAt time.Time            `yaml:"created_at"`
	Stats     *stats.ComputedStats `yaml:"stats"`
}

// runHistory writes the latest snapshot of characterID, or every snapshot of run, to w.
func runHistory(ctx context.Context, w io.Writer, repo snapshotReader, characterID, run string) error {
	var snaps []*postgres.Snapshot
	if run != "" {
		runID, err := uuid.Parse(run)
		if err != nil {
			return fmt.Errorf("parsing run id %q: %w", run, err)
		}
		if snaps, err = repo.ListByRun(ctx, runID); err != nil {
			return err
		}
	} else {
		snap, err := repo.Latest(ctx, characterID)
		if err != nil {
			return fmt.Errorf("character %s: %w", characterID, err)
		}
		snaps = append(snaps, snap)
	}

	views := make([]snapshotView, 0, len(snaps))
	for _, s := range snaps {
		views = append(views, snapshotView{ID: s.ID, Run: s.RunID.String(), CreatedAt: s.CreatedAt, Stats: s.Stats})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(views); err != nil {
		return fmt.Errorf("encoding snapshots: %w", err)
	}
	return enc.Close()
}
