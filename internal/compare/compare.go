// Package compare solves every mode against one team snapshot and reports how
// each differs from the Normal solve.
package compare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/roster"
	"github.com/iwvelando/fantasy-f1-optimiser/internal/state"
	"github.com/iwvelando/fantasy-f1-optimiser/pkg/mathutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Solver is the part of roster.Engine the runner needs.
type Solver interface {
	Solve(ctx context.Context, mode roster.Mode, entries []roster.ProjectionEntry, prev roster.TeamState) (*roster.Result, error)
}

// Row is the outcome of one mode. Exactly one of Result and Err is set.
type Row struct {
	Mode   roster.Mode
	Result *roster.Result
	Err    error
	// Delta is BaseXPts against the Normal solve; nil when either failed.
	Delta *float64
}

// Failed reports whether the mode produced no roster.
func (r Row) Failed() bool {
	return r.Err != nil
}

// Report holds one row per mode in roster.AllModes order.
type Report struct {
	Rows     []Row
	Snapshot roster.TeamState
	Elapsed  time.Duration
}

// Row returns the row for mode.
func (r *Report) Row(mode roster.Mode) (Row, bool) {
	for _, row := range r.Rows {
		if row.Mode == mode {
			return row, true
		}
	}
	return Row{}, false
}

// Best returns the successful row with the highest BaseXPts. Ties keep the
// earlier mode.
func (r *Report) Best() (Row, bool) {
	var best Row
	found := false
	for _, row := range r.Rows {
		if row.Failed() {
			continue
		}
		if !found || (row.Result.BaseXPts > best.Result.BaseXPts && !mathutil.PointsEqual(row.Result.BaseXPts, best.Result.BaseXPts)) {
			best = row
			found = true
		}
	}
	return best, found
}

// Runner fans the modes out over a bounded number of goroutines.
type Runner struct {
	logger      *zap.Logger
	solver      Solver
	modes       []roster.Mode
	concurrency int
}

// NewRunner constructs a Runner. A concurrency below one runs every mode at
// once.
func NewRunner(logger *zap.Logger, solver Solver, concurrency int) (*Runner, error) {
	if solver == nil {
		return nil, errors.New("solver cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, solver: solver, modes: roster.AllModes(), concurrency: concurrency}, nil
}

// Run solves every mode against prev. A failing mode is recorded in its row
// and never aborts the others. The only error returned is ctx's.
func (r *Runner) Run(ctx context.Context, entries []roster.ProjectionEntry, prev roster.TeamState) (*Report, error) {
	start := time.Now()
	snapshot := prev.Clone()
	rows := make([]Row, len(r.modes))

	g, gctx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for i, mode := range r.modes {
		g.Go(func() error {
			// Each goroutine gets its own copy of the snapshot.
			result, err := r.solver.Solve(gctx, mode, entries, snapshot.Clone())
			rows[i] = Row{Mode: mode, Result: result, Err: err}
			if err != nil {
				r.logger.Warn("mode failed during comparison",
					zap.String("op", "compare.Run"),
					zap.String("mode", mode.String()),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("comparison cancelled: %w", err)
	}

	applyDeltas(rows)
	report := &Report{Rows: rows, Snapshot: snapshot, Elapsed: time.Since(start)}

	failed := 0
	for _, row := range rows {
		if row.Failed() {
			failed++
		}
	}
	r.logger.Info("comparison finished",
		zap.String("op", "compare.Run"),
		zap.Int("modes", len(rows)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// RunFromRepository loads the team state once and compares against it.
func (r *Runner) RunFromRepository(ctx context.Context, entries []roster.ProjectionEntry, repo roster.StateRepository) (*Report, error) {
	prev, err := repo.Load(ctx)
	if err != nil {
		if errors.Is(err, state.ErrStateCorrupt) {
			r.logger.Warn("comparing against first-round defaults",
				zap.String("op", "compare.RunFromRepository"),
				zap.Error(err),
			)
		} else {
			return nil, fmt.Errorf("load team state: %w", err)
		}
	}
	return r.Run(ctx, entries, prev)
}

func applyDeltas(rows []Row) {
	var baseline *roster.Result
	for _, row := range rows {
		if row.Mode == roster.ModeNormal && !row.Failed() {
			baseline = row.Result
		}
	}
	if baseline == nil {
		return
	}
	for i := range rows {
		if rows[i].Failed() {
			continue
		}
		d := rows[i].Result.BaseXPts - baseline.BaseXPts
		rows[i].Delta = &d
	}
}
