package state

import (
	"context"
	"fmt"
	"strings"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/roster"
	"go.uber.org/zap"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Repository is a roster.StateRepository that can also be cleared and closed.
type Repository interface {
	roster.StateRepository
	Reset(ctx context.Context) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Path      string
	BadgerDir string
}

// Open returns the repository named by opts.Backend. An empty backend selects
// the file repository.
func Open(opts Options, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return NewFileRepository(opts.Path, logger), nil
	case BackendBadger:
		return OpenBadger(BadgerOptions{Dir: opts.BadgerDir, SyncWrites: true}, logger)
	case BackendMemory:
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", opts.Backend)
	}
}
