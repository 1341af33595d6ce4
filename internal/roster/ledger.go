package roster

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// StateRepository loads and persists the team state between rounds.
//
// Load returns FirstRoundState when nothing has been saved. Save must replace
// the stored state atomically: on error the previous state stays readable.
type StateRepository interface {
	Load(ctx context.Context) (TeamState, error)
	Save(ctx context.Context, state TeamState) error
}

// NextState derives the state to carry into the next round from a solve.
//
// A first round, or a round that used its whole allowance (or more), leaves
// BaseAllowance transfers. A round with a transfer to spare rolls it over to
// RolledAllowance. The allowance never accumulates beyond that.
func NextState(r *Result) TeamState {
	next := BaseAllowance
	if !r.FirstRound && r.TransfersUsed < r.AvailableTransfers {
		next = RolledAllowance
	}
	return TeamState{
		Drivers:            append([]string{}, r.SelectedDrivers...),
		Constructors:       append([]string{}, r.SelectedConstructors...),
		AvailableTransfers: next,
		RemainingBudget:    r.RemainingBudget,
	}
}

// LedgerUpdater persists confirmed solves.
type LedgerUpdater struct {
	logger *zap.Logger
	repo   StateRepository
}

// NewLedgerUpdater constructs a LedgerUpdater.
func NewLedgerUpdater(logger *zap.Logger, repo StateRepository) *LedgerUpdater {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerUpdater{logger: logger, repo: repo}
}

// Commit saves the state derived from r. It returns the saved state only once
// the repository reports the write as durable.
func (l *LedgerUpdater) Commit(ctx context.Context, r *Result) (TeamState, error) {
	if r == nil {
		return TeamState{}, errors.New("cannot commit a nil result")
	}
	if l.repo == nil {
		return TeamState{}, errors.New("no state repository configured")
	}

	next := NextState(r)
	if err := l.repo.Save(ctx, next); err != nil {
		l.logger.Error("failed to persist team state",
			zap.String("op", "roster.Commit"),
			zap.String("mode", r.Mode.String()),
			zap.Error(err),
		)
		return TeamState{}, fmt.Errorf("persist team state: %w", err)
	}

	l.logger.Info("team state saved",
		zap.String("op", "roster.Commit"),
		zap.String("mode", r.Mode.String()),
		zap.Strings("drivers", next.Drivers),
		zap.Strings("constructors", next.Constructors),
		zap.Int("availableTransfers", next.AvailableTransfers),
		zap.String("remainingBudget", next.RemainingBudget.String()),
	)
	return next, nil
}
