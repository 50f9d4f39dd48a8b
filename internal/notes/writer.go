// Package notes publishes computed statistics into the YAML frontmatter of one
// Markdown note per character.
package notes

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/starsheet/internal/game/stats"
	"github.com/cory-johannsen/starsheet/internal/importer"
)

var _ importer.Sink = (*Writer)(nil)

// ErrUnusableName is returned when a character name leaves no file name.
var ErrUnusableName = errors.New("notes: character name cannot be used as a file name")

// Writer maintains <folder>/<name>.md for each character.
type Writer struct {
	folder string
	opts   Options
	logger *zap.Logger
}

// NewWriter creates a Writer rooted at folder. A nil logger disables logging.
func NewWriter(folder string, opts Options, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{folder: folder, opts: opts, logger: logger}
}

// Path returns the note path for a character name.
func (w *Writer) Path(name string) (string, error) {
	stem := FileName(name)
	if stem == "" {
		return "", fmt.Errorf("%q: %w", name, ErrUnusableName)
	}
	return filepath.Join(w.folder, stem+".md"), nil
}

// Write creates or updates the character's note.
//
// Precondition: s must be non-nil.
// Postcondition: the note exists and its frontmatter carries the computed keys.
func (w *Writer) Write(ctx context.Context, runID uuid.UUID, s *stats.ComputedStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := w.Path(s.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(w.folder, 0755); err != nil {
		return fmt.Errorf("creating notes folder %s: %w", w.folder, err)
	}

	note, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading note %s: %w", path, err)
	}
	updated, err := Update(note, s, w.opts)
	if err != nil {
		return fmt.Errorf("updating note %s: %w", path, err)
	}
	if err := os.WriteFile(path, updated, 0644); err != nil {
		return fmt.Errorf("writing note %s: %w", path, err)
	}
	w.logger.Debug("note written",
		zap.String("run", runID.String()),
		zap.String("character", s.ID),
		zap.String("path", path),
	)
	return nil
}
