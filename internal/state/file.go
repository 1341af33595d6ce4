package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/roster"
	"go.uber.org/zap"
)

// FileRepository stores the team state as a JSON document on disk.
type FileRepository struct {
	path   string
	logger *zap.Logger
}

// NewFileRepository returns a repository backed by the file at path.
func NewFileRepository(path string, logger *zap.Logger) *FileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileRepository{path: path, logger: logger}
}

// Path is the backing file location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the saved state. An absent file is a first round. An unreadable
// file also yields a first-round state, together with ErrStateCorrupt.
func (r *FileRepository) Load(ctx context.Context) (roster.TeamState, error) {
	if err := ctx.Err(); err != nil {
		return roster.TeamState{}, err
	}
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Debug("no saved team state; starting from first round",
			zap.String("op", "state.FileRepository.Load"),
			zap.String("path", r.path),
		)
		return roster.FirstRoundState(), nil
	}
	if err != nil {
		return roster.TeamState{}, fmt.Errorf("read team state %s: %w", r.path, err)
	}

	s, err := decode(data)
	if err != nil {
		r.logger.Warn("saved team state unreadable; starting from first round",
			zap.String("op", "state.FileRepository.Load"),
			zap.String("path", r.path),
			zap.Error(err),
		)
		return roster.FirstRoundState(), fmt.Errorf("%s: %w", r.path, err)
	}
	return s, nil
}

// Save writes the state to a temporary file in the same directory, syncs it
// and renames it over the previous file.
func (r *FileRepository) Save(ctx context.Context, s roster.TeamState) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	data, err := encode(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory %s: %v", ErrPersistence, dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrPersistence, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("%w: write %s: %v", ErrPersistence, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("%w: sync %s: %v", ErrPersistence, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", ErrPersistence, tmpName, err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: rename into %s: %v", ErrPersistence, r.path, err)
	}

	r.logger.Debug("team state written",
		zap.String("op", "state.FileRepository.Save"),
		zap.String("path", r.path),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// Reset removes the saved state so the next load is a first round.
func (r *FileRepository) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %v", ErrPersistence, r.path, err)
	}
	return nil
}

// Close is a no-op.
func (r *FileRepository) Close() error {
	return nil
}
