package state

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/iwvelando/fantasy-f1-optimiser/internal/roster"
	"go.uber.org/zap"
)

var teamStateKey = []byte("team_state/current")

// BadgerOptions configures a BadgerRepository.
type BadgerOptions struct {
	// Dir holds the database files. Ignored when InMemory is set.
	Dir        string
	InMemory   bool
	SyncWrites bool
}

// zapBadgerLogger adapts a zap logger to badger's logging interface.
type zapBadgerLogger struct {
	logger *zap.SugaredLogger
}

func (l zapBadgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

func (l zapBadgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

// Infof is demoted to debug; badger reports routine compactions at info.
func (l zapBadgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

func (l zapBadgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

// BadgerRepository stores the team state under a single key in an embedded
// badger database. Each save is one transaction.
type BadgerRepository struct {
	db     *badger.DB
	logger *zap.Logger
}

// OpenBadger opens (creating if needed) the database described by opts.
func OpenBadger(opts BadgerOptions, logger *zap.Logger) (*BadgerRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("badger state directory is required")
	}

	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("create state directory %s: %w", opts.Dir, err)
		}
		bopts = badger.DefaultOptions(opts.Dir)
	}
	bopts = bopts.
		WithSyncWrites(opts.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(zapBadgerLogger{logger: logger.Named("badger").Sugar()})

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger state store: %w", err)
	}
	return &BadgerRepository{db: db, logger: logger}, nil
}

func (r *BadgerRepository) Load(ctx context.Context) (roster.TeamState, error) {
	if err := ctx.Err(); err != nil {
		return roster.TeamState{}, err
	}

	var data []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(teamStateKey)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return roster.FirstRoundState(), nil
	}
	if err != nil {
		return roster.TeamState{}, fmt.Errorf("read team state: %w", err)
	}

	s, err := decode(data)
	if err != nil {
		r.logger.Warn("stored team state unreadable; starting from first round",
			zap.String("op", "state.BadgerRepository.Load"),
			zap.Error(err),
		)
		return roster.FirstRoundState(), err
	}
	return s, nil
}

func (r *BadgerRepository) Save(ctx context.Context, s roster.TeamState) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	data, err := encode(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(teamStateKey, data)
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (r *BadgerRepository) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(teamStateKey)
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Close releases the database.
func (r *BadgerRepository) Close() error {
	return r.db.Close()
}
