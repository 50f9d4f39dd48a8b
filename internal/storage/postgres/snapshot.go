package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/starsheet/internal/game/character"
	"github.com/cory-johannsen/starsheet/internal/game/stats"
	"github.com/cory-johannsen/starsheet/internal/importer"
)

// ErrSnapshotNotFound is returned when a character has no stored snapshot.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrDuplicateSnapshot is returned when a run writes the same character twice.
var ErrDuplicateSnapshot = errors.New("snapshot already recorded for run")

var _ importer.Sink = (*SnapshotRepository)(nil)

// Snapshot is one stored set of computed statistics.
type Snapshot struct {
	ID        int64
	RunID     uuid.UUID
	Stats     *stats.ComputedStats
	CreatedAt time.Time
}

// SnapshotRepository records the statistics produced by each import run.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a SnapshotRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

const snapshotColumns = `id, run_id, character_id, name, level, abilities, eac, kac, cmd,
	max_hit_points, current_hit_points, max_stamina, current_stamina,
	temporary_hit_points, initiative, conditions, created_at`

// Write stores s under runID.
//
// Precondition: s must be non-nil with a non-empty ID.
// Postcondition: a row exists for (runID, s.ID), or ErrDuplicateSnapshot is returned.
func (r *SnapshotRepository) Write(ctx context.Context, runID uuid.UUID, s *stats.ComputedStats) error {
	conditions := s.Conditions
	if conditions == nil {
		conditions = []string{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO stat_snapshots
			(run_id, character_id, name, level, abilities, eac, kac, cmd,
			 max_hit_points, current_hit_points, max_stamina, current_stamina,
			 temporary_hit_points, initiative, conditions)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		runID, s.ID, s.Name, s.Level, s.AbilityMap(), s.EAC, s.KAC, s.CMD,
		s.MaxHitPoints, s.CurrentHitPoints, s.MaxStamina, s.CurrentStamina,
		s.TemporaryHitPoints, s.Initiative, conditions,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("character %s run %s: %w", s.ID, runID, ErrDuplicateSnapshot)
		}
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recently written snapshot for characterID.
//
// Postcondition: Returns the Snapshot or ErrSnapshotNotFound.
func (r *SnapshotRepository) Latest(ctx context.Context, characterID string) (*Snapshot, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+snapshotColumns+`
		FROM stat_snapshots WHERE character_id = $1
		ORDER BY id DESC LIMIT 1`,
		characterID,
	)
	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}
	return snap, nil
}

// ListByRun returns every snapshot written by runID, ordered by character id.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *SnapshotRepository) ListByRun(ctx context.Context, runID uuid.UUID) ([]*Snapshot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+snapshotColumns+`
		FROM stat_snapshots WHERE run_id = $1
		ORDER BY character_id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]*Snapshot, 0)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func scanSnapshot(row pgx.Row) (*Snapshot, error) {
	var (
		snap      Snapshot
		s         stats.ComputedStats
		abilities map[string]stats.AbilityStat
	)
	err := row.Scan(
		&snap.ID, &snap.RunID, &s.ID, &s.Name, &s.Level, &abilities, &s.EAC, &s.KAC, &s.CMD,
		&s.MaxHitPoints, &s.CurrentHitPoints, &s.MaxStamina, &s.CurrentStamina,
		&s.TemporaryHitPoints, &s.Initiative, &s.Conditions, &snap.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	for _, a := range character.Abilities {
		s.Abilities[a] = abilities[a.String()]
	}
	snap.Stats = &s
	return &snap, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
