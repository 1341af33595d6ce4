package roster

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/fantasy-f1-optimiser/internal/milp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Options configures an Engine.
type Options struct {
	Weights Weights
	// PriceChangeAware adds the weighted price-change term to the
	// single-boost modes. DRS Boost always carries it.
	PriceChangeAware bool
	// StartingBudget is the cost cap of a team with no previous roster.
	StartingBudget decimal.Decimal
}

// Observer receives one notification per solve attempt.
type Observer interface {
	ObserveSolve(mode string, status string, duration time.Duration)
}

// Engine runs single-mode solves. It holds no per-solve state and is safe for
// concurrent use as long as its solver is.
type Engine struct {
	logger   *zap.Logger
	solver   milp.Solver
	opts     Options
	observer Observer
}

// NewEngine constructs an Engine. A nil solver selects a default
// branch-and-bound solver.
func NewEngine(logger *zap.Logger, solver milp.Solver, opts Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if solver == nil {
		solver = milp.NewBranchAndBound(logger, milp.Options{})
	}
	if opts.StartingBudget.IsZero() {
		opts.StartingBudget = DefaultStartingBudget
	}
	return &Engine{logger: logger, solver: solver, opts: opts}
}

// SetObserver registers an observer for solve outcomes.
func (e *Engine) SetObserver(o Observer) {
	e.observer = o
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Solve selects the best roster for mode given the projections and the
// previous team state. It never persists anything.
func (e *Engine) Solve(ctx context.Context, mode Mode, entries []ProjectionEntry, prev TeamState) (*Result, error) {
	start := time.Now()
	result, status, err := e.solve(ctx, mode, entries, prev)
	if e.observer != nil {
		e.observer.ObserveSolve(mode.String(), status, time.Since(start))
	}
	return result, err
}

func (e *Engine) solve(ctx context.Context, mode Mode, entries []ProjectionEntry, prev TeamState) (*Result, string, error) {
	if err := ValidateProjections(entries); err != nil {
		return nil, "invalid", err
	}

	runID := uuid.NewString()
	costCap := ComputeCostCap(prev, entries, e.opts.StartingBudget)
	if len(costCap.Missing) > 0 {
		e.logger.Warn("previous roster names missing from projections; treated as not owned",
			zap.String("op", "roster.Solve"),
			zap.String("runId", runID),
			zap.Strings("missing", costCap.Missing),
		)
	}

	available := prev.AvailableTransfers
	if prev.IsFirstRound() {
		available = UnlimitedTransfers
	}
	if available < 0 {
		available = 0
	}

	drivers, constructors := splitRoles(entries)
	f, err := buildModel(modelInput{
		mode:         mode,
		drivers:      drivers,
		constructors: constructors,
		cap:          costCap.Cap,
		previous:     prev,
		available:    available,
	})
	if err != nil {
		return nil, "infeasible", fmt.Errorf("%s solve: %w", mode.SolveName(), err)
	}
	composeObjective(f, e.opts.Weights, e.opts.PriceChangeAware)

	var notes []string
	if note := mode.unimplementedRelaxation(); note != "" {
		notes = append(notes, note)
		e.logger.Warn(note,
			zap.String("op", "roster.Solve"),
			zap.String("runId", runID),
			zap.String("mode", mode.String()),
		)
	}
	if len(costCap.Missing) > 0 {
		notes = append(notes, "not in projections, counted as unowned: "+strings.Join(costCap.Missing, ", "))
	}

	e.logger.Debug("solving roster model",
		zap.String("op", "roster.Solve"),
		zap.String("runId", runID),
		zap.String("mode", mode.String()),
		zap.Int("drivers", len(drivers)),
		zap.Int("constructors", len(constructors)),
		zap.String("costCap", costCap.Cap.String()),
		zap.Int("availableTransfers", available),
	)

	sol, err := e.solver.Solve(ctx, f.model)
	if err != nil {
		return nil, "error", fmt.Errorf("%s solve: %w", mode.SolveName(), err)
	}
	switch sol.Status {
	case milp.StatusOptimal:
	case milp.StatusInfeasible:
		return nil, "infeasible", fmt.Errorf("%s solve: %w within cost cap %s", mode.SolveName(), ErrInfeasible, costCap.Cap)
	default:
		return nil, "error", fmt.Errorf("%s solve: solver finished with status %s", mode.SolveName(), sol.Status)
	}

	result := extractResult(f, sol, extraction{
		cap:       costCap,
		previous:  prev,
		available: available,
		notes:     notes,
	})

	e.logger.Info("roster solved",
		zap.String("op", "roster.Solve"),
		zap.String("runId", runID),
		zap.String("mode", mode.String()),
		zap.Float64("baseXPts", result.BaseXPts),
		zap.Int("transfersUsed", result.TransfersUsed),
		zap.Float64("penaltyTransfers", result.PenaltyTransfers),
		zap.Int("nodes", sol.Nodes),
	)
	return result, "optimal", nil
}
