package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/compare"
	"github.com/iwvelando/fantasy-f1-optimiser/internal/milp"
	"github.com/iwvelando/fantasy-f1-optimiser/internal/projection"
	"github.com/iwvelando/fantasy-f1-optimiser/internal/roster"
	"github.com/iwvelando/fantasy-f1-optimiser/internal/server"
	"github.com/iwvelando/fantasy-f1-optimiser/internal/state"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// newEngine builds the roster engine described by the solver and budget
// configuration. observer may be nil.
func (a *app) newEngine(observer roster.Observer) *roster.Engine {
	sc := a.conf.Solver
	solver := milp.NewBranchAndBound(a.logger, milp.Options{
		Timeout:  sc.Timeout,
		MaxNodes: sc.MaxNodes,
	})
	engine := roster.NewEngine(a.logger, solver, roster.Options{
		Weights: roster.Weights{
			PriceChange:  sc.PriceChangeWeight,
			RollTransfer: sc.RollTransferWeight,
		},
		PriceChangeAware: sc.PriceChangeAware,
		StartingBudget:   decimal.NewFromFloat(a.conf.Budget.Starting),
	})
	if observer != nil {
		engine.SetObserver(observer)
	}
	return engine
}

func (a *app) newComparer(engine *roster.Engine) (*compare.Runner, error) {
	return compare.NewRunner(a.logger, engine, a.conf.Solver.Concurrency)
}

func (a *app) openRepository() (state.Repository, error) {
	repo, err := state.Open(state.Options{
		Backend:   a.conf.State.Backend,
		Path:      a.conf.State.Path,
		BadgerDir: a.conf.State.BadgerDir,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open team state: %w", err)
	}
	return repo, nil
}

func (a *app) projectionStore() *projection.Store {
	return projection.NewStore(a.conf.Projections.Path, a.logger)
}

// loadState reads the team state. Corrupt state is replaced by first-round
// defaults and reported on notices.
func (a *app) loadState(ctx context.Context, repo roster.StateRepository, notices io.Writer) (roster.TeamState, error) {
	prev, err := repo.Load(ctx)
	if err == nil {
		return prev, nil
	}
	if !errors.Is(err, state.ErrStateCorrupt) {
		return roster.TeamState{}, fmt.Errorf("load team state: %w", err)
	}
	a.logger.Warn(server.StateResetNotice,
		zap.String("op", "cmd.loadState"),
		zap.Error(err),
	)
	_, _ = fmt.Fprintf(notices, "Notice: %s (%v)\n", server.StateResetNotice, err)
	return prev, nil
}
