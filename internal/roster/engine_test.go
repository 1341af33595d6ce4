package roster

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(opts Options) *Engine {
	return NewEngine(zap.NewNop(), nil, opts)
}

func TestSolveFirstRoundMatchesExhaustiveSearch(t *testing.T) {
	entries := smallField()
	for _, mode := range AllModes() {
		t.Run(mode.String(), func(t *testing.T) {
			r, err := newTestEngine(Options{}).Solve(context.Background(), mode, entries, FirstRoundState())
			require.NoError(t, err)
			assertValidRoster(t, r, entries)

			want := bruteForceObjective(mode, entries, FirstRoundState(), 100, UnlimitedTransfers, Weights{}, false)
			assert.InDelta(t, want, r.BaseXPts, 1e-6)
			assert.InDelta(t, want, r.Objective, 1e-6)
			assert.Equal(t, 0.0, r.PenaltyTransfers)
			assert.True(t, r.FirstRound)
			assert.Equal(t, UnlimitedTransfers, r.AvailableTransfers)
			assert.Empty(t, r.Transfers)
		})
	}
}

func TestSolveTwentyDriverFieldWithinDefaultBudget(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive comparison over a full field")
	}
	entries := generatedField(7, 20, 10)

	r, err := newTestEngine(Options{}).Solve(context.Background(), ModeNormal, entries, FirstRoundState())
	require.NoError(t, err)
	assertValidRoster(t, r, entries)

	want := bruteForceObjective(ModeNormal, entries, FirstRoundState(), 100, UnlimitedTransfers, Weights{}, false)
	assert.InDelta(t, want, r.BaseXPts, 1e-6)
	assert.True(t, r.CostCap.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 0.0, r.PenaltyTransfers)
	assert.Equal(t, 7, r.TransfersUsed)
}

func TestSolveWithPreviousRosterMatchesExhaustiveSearch(t *testing.T) {
	entries := smallField()
	prev := TeamState{
		Drivers:            []string{"LEC", "PIA", "RUS", "HAM", "ALB"},
		Constructors:       []string{"FER", "WIL"},
		AvailableTransfers: 2,
		RemainingBudget:    decimal.NewFromFloat(30.5),
	}
	w := Weights{PriceChange: 4, RollTransfer: 3}

	for _, mode := range AllModes() {
		t.Run(mode.String(), func(t *testing.T) {
			r, err := newTestEngine(Options{Weights: w}).Solve(context.Background(), mode, entries, prev)
			require.NoError(t, err)
			assertValidRoster(t, r, entries)

			// 20+15+12+8+6 + 12+8 + 30.5
			assert.True(t, r.CostCap.Equal(decimal.NewFromFloat(111.5)), "cost cap %s", r.CostCap)
			want := bruteForceObjective(mode, entries, prev, 111.5, 2, w, false)
			assert.InDelta(t, want, r.Objective, 1e-6)
		})
	}
}

func TestSolvePenalisesThirdTransfer(t *testing.T) {
	entries := []ProjectionEntry{
		driver("A1", 10, 10), driver("A2", 10, 10), driver("A3", 10, 10),
		driver("A4", 10, 10), driver("A5", 10, 10),
		driver("N1", 10, 40), driver("N2", 10, 40), driver("N3", 10, 40),
		constructor("C1", 10, 10), constructor("C2", 10, 10), constructor("C3", 10, 1),
	}
	prev := TeamState{
		Drivers:            []string{"A1", "A2", "A3", "A4", "A5"},
		Constructors:       []string{"C1", "C2"},
		AvailableTransfers: 2,
		RemainingBudget:    decimal.NewFromInt(30),
	}

	r, err := newTestEngine(Options{}).Solve(context.Background(), ModeNormal, entries, prev)
	require.NoError(t, err)
	assertValidRoster(t, r, entries)

	assert.Equal(t, 3, r.TransfersUsed)
	assert.Equal(t, 1.0, r.PenaltyTransfers)
	// 3x40 + 2x10 + 40 boost + 2x10 constructors, less one penalty
	assert.InDelta(t, 190, r.Objective, 1e-6)
	assert.InDelta(t, 190, r.BaseXPts, 1e-6)
	assert.Len(t, r.Transfers, 3)
	for _, tr := range r.Transfers {
		assert.True(t, strings.HasPrefix(tr.Out, "A"))
		assert.True(t, strings.HasPrefix(tr.In, "N"))
	}
}

func TestSolveExceedsSingleTransferAllowance(t *testing.T) {
	entries := []ProjectionEntry{
		driver("A1", 10, 10), driver("A2", 10, 10), driver("A3", 10, 10),
		driver("A4", 10, 10), driver("A5", 10, 10), driver("N1", 10, 40),
		constructor("C1", 10, 10), constructor("C2", 10, 10), constructor("NC", 10, 40),
	}
	prev := TeamState{
		Drivers:            []string{"A1", "A2", "A3", "A4", "A5"},
		Constructors:       []string{"C1", "C2"},
		AvailableTransfers: 1,
		RemainingBudget:    decimal.NewFromInt(30),
	}

	r, err := newTestEngine(Options{}).Solve(context.Background(), ModeNormal, entries, prev)
	require.NoError(t, err)
	assertValidRoster(t, r, entries)

	assert.Equal(t, 2, r.TransfersUsed)
	assert.Equal(t, 1.0, r.PenaltyTransfers)
	require.Len(t, r.Transfers, 2)
	assert.Equal(t, "N1", r.Transfers[0].In)
	assert.Equal(t, "NC", r.Transfers[1].In)
	assert.Equal(t, "N1", r.Boosts[Boost2x])
	// 40+4x10 + 40 boost + 40+10, less one penalty
	assert.InDelta(t, 160, r.BaseXPts, 1e-6)
}

func TestSolveRollBonusKeepsMarginalTransferUnused(t *testing.T) {
	entries := []ProjectionEntry{
		driver("A1", 10, 20), driver("A2", 10, 19), driver("A3", 10, 18),
		driver("A4", 10, 17), driver("A5", 10, 10), driver("N1", 10, 13),
		constructor("C1", 10, 10), constructor("C2", 10, 10),
	}
	prev := TeamState{
		Drivers:            []string{"A1", "A2", "A3", "A4", "A5"},
		Constructors:       []string{"C1", "C2"},
		AvailableTransfers: 1,
		RemainingBudget:    decimal.NewFromInt(30),
	}

	t.Run("no roll weight", func(t *testing.T) {
		r, err := newTestEngine(Options{}).Solve(context.Background(), ModeDrsBoost, entries, prev)
		require.NoError(t, err)
		assertValidRoster(t, r, entries)
		assert.Equal(t, 1, r.TransfersUsed)
		assert.Equal(t, []Transfer{{Out: "A5", In: "N1"}}, r.Transfers)
		assert.Equal(t, "A1", r.Boosts[Boost3x])
		assert.Equal(t, "A2", r.Boosts[Boost2x])
		assert.InDelta(t, 166, r.BaseXPts, 1e-6)
	})

	t.Run("roll weight outbids the transfer", func(t *testing.T) {
		r, err := newTestEngine(Options{Weights: Weights{RollTransfer: 5}}).Solve(context.Background(), ModeDrsBoost, entries, prev)
		require.NoError(t, err)
		assertValidRoster(t, r, entries)
		assert.Equal(t, 0, r.TransfersUsed)
		assert.Empty(t, r.Transfers)
		assert.InDelta(t, 163, r.BaseXPts, 1e-6)
		assert.InDelta(t, 168, r.Objective, 1e-6)
	})
}

func TestSolveRollBonusWithTransferToSpare(t *testing.T) {
	entries := []ProjectionEntry{
		driver("A1", 10, 20), driver("A2", 10, 19), driver("A3", 10, 18),
		driver("A4", 10, 17), driver("A5", 10, 10), driver("N1", 10, 13),
		constructor("C1", 10, 10), constructor("C2", 10, 10),
	}
	prev := TeamState{
		Drivers:            []string{"A1", "A2", "A3", "A4", "A5"},
		Constructors:       []string{"C1", "C2"},
		AvailableTransfers: 2,
		RemainingBudget:    decimal.NewFromInt(30),
	}

	// One transfer out of two leaves a spare, so the bonus and the upgrade
	// are both taken.
	r, err := newTestEngine(Options{Weights: Weights{RollTransfer: 5}}).Solve(context.Background(), ModeDrsBoost, entries, prev)
	require.NoError(t, err)
	assertValidRoster(t, r, entries)
	assert.Equal(t, 1, r.TransfersUsed)
	assert.Equal(t, []Transfer{{Out: "A5", In: "N1"}}, r.Transfers)
	assert.InDelta(t, 166, r.BaseXPts, 1e-6)
	assert.InDelta(t, 171, r.Objective, 1e-6)
	assert.Equal(t, RolledAllowance, NextState(r).AvailableTransfers)
}

func TestSolvePriceChangeWeightBiasesChoiceNotPoints(t *testing.T) {
	entries := []ProjectionEntry{
		withChange(driver("A", 10, 10), 0),
		withChange(driver("B", 10, 10), 0),
		withChange(driver("C", 10, 10), 0),
		withChange(driver("D", 10, 10), 0),
		withChange(driver("FLAT", 10, 5), 0),
		withChange(driver("RISER", 10, 5), 1.0),
		withChange(constructor("X", 10, 10), 0),
		withChange(constructor("Y", 10, 10), 0),
	}

	tests := []struct {
		name   string
		mode   Mode
		aware  bool
		weight float64
		want   string
	}{
		{name: "drs weighted", mode: ModeDrsBoost, weight: 2, want: "RISER"},
		{name: "normal aware", mode: ModeNormal, aware: true, weight: 2, want: "RISER"},
		{name: "normal unaware ignores weight", mode: ModeNormal, weight: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(Options{Weights: Weights{PriceChange: tt.weight}, PriceChangeAware: tt.aware})
			r, err := engine.Solve(context.Background(), tt.mode, entries, FirstRoundState())
			require.NoError(t, err)
			assertValidRoster(t, r, entries)

			if tt.want != "" {
				assert.Contains(t, r.SelectedDrivers, tt.want)
			}

			// Points come from xPts only, whatever the weight.
			extra := 10.0
			if tt.mode == ModeDrsBoost {
				extra = 30
			}
			assert.InDelta(t, 45+20+extra, r.BaseXPts, 1e-6)
			wantBonus := 0.0
			if tt.want == "RISER" {
				wantBonus = tt.weight * 1.0
				assert.True(t, r.ProjectedPriceChange.Equal(decimal.NewFromFloat(1.0)))
			}
			assert.InDelta(t, r.BaseXPts+wantBonus, r.Objective, 1e-6)
		})
	}
}

func TestSolveIsDeterministic(t *testing.T) {
	entries := smallField()
	engine := newTestEngine(Options{Weights: Weights{PriceChange: 1.5}})
	for _, mode := range AllModes() {
		first, err := engine.Solve(context.Background(), mode, entries, FirstRoundState())
		require.NoError(t, err)
		second, err := engine.Solve(context.Background(), mode, entries, FirstRoundState())
		require.NoError(t, err)
		assert.Equal(t, first, second, "mode %s", mode)
	}
}

func TestSolveWildcardAndLimitlessMatchNormal(t *testing.T) {
	entries := smallField()
	engine := newTestEngine(Options{})

	normal, err := engine.Solve(context.Background(), ModeNormal, entries, FirstRoundState())
	require.NoError(t, err)
	assert.Empty(t, normal.Notes)

	for _, mode := range []Mode{ModeWildcard, ModeLimitless} {
		r, err := engine.Solve(context.Background(), mode, entries, FirstRoundState())
		require.NoError(t, err)
		assert.Equal(t, normal.SelectedDrivers, r.SelectedDrivers)
		assert.Equal(t, normal.SelectedConstructors, r.SelectedConstructors)
		assert.Equal(t, normal.BaseXPts, r.BaseXPts)
		require.Len(t, r.Notes, 1)
		assert.Contains(t, r.Notes[0], "not implemented")
	}
}

func TestSolveInfeasible(t *testing.T) {
	t.Run("budget too small", func(t *testing.T) {
		entries := []ProjectionEntry{
			driver("A", 30, 1), driver("B", 30, 1), driver("C", 30, 1), driver("D", 30, 1), driver("E", 30, 1),
			constructor("X", 30, 1), constructor("Y", 30, 1),
		}
		_, err := newTestEngine(Options{}).Solve(context.Background(), ModeNormal, entries, FirstRoundState())
		require.ErrorIs(t, err, ErrInfeasible)
	})

	t.Run("too few constructors", func(t *testing.T) {
		entries := []ProjectionEntry{
			driver("A", 1, 1), driver("B", 1, 1), driver("C", 1, 1), driver("D", 1, 1), driver("E", 1, 1),
			constructor("X", 1, 1),
		}
		_, err := newTestEngine(Options{}).Solve(context.Background(), ModeDrsBoost, entries, FirstRoundState())
		require.ErrorIs(t, err, ErrInfeasible)
	})
}

func TestSolveRejectsInvalidProjections(t *testing.T) {
	entries := smallField()
	entries = append(entries, driver("VER", 1, 1))
	_, err := newTestEngine(Options{}).Solve(context.Background(), ModeNormal, entries, FirstRoundState())
	require.ErrorIs(t, err, ErrInvalidProjections)
}

func TestSolveTreatsMissingPreviousNamesAsUnowned(t *testing.T) {
	entries := smallField()
	prev := TeamState{
		Drivers:            []string{"VER", "NOR", "LEC", "PIA", "RETIRED"},
		Constructors:       []string{"MCL", "RBR"},
		AvailableTransfers: 2,
		RemainingBudget:    decimal.NewFromInt(1),
	}

	r, err := newTestEngine(Options{}).Solve(context.Background(), ModeNormal, entries, prev)
	require.NoError(t, err)
	assertValidRoster(t, r, entries)
	// 30+28+20+15 + 25+20 + 1
	assert.True(t, r.CostCap.Equal(decimal.NewFromInt(139)), "cost cap %s", r.CostCap)
	require.NotEmpty(t, r.Notes)
	assert.Contains(t, r.Notes[len(r.Notes)-1], "RETIRED")
}

type recordingObserver struct {
	statuses []string
}

func (o *recordingObserver) ObserveSolve(mode string, status string, _ time.Duration) {
	o.statuses = append(o.statuses, mode+":"+status)
}

func TestSolveNotifiesObserver(t *testing.T) {
	obs := &recordingObserver{}
	engine := newTestEngine(Options{})
	engine.SetObserver(obs)

	_, err := engine.Solve(context.Background(), ModeNormal, smallField(), FirstRoundState())
	require.NoError(t, err)
	_, err = engine.Solve(context.Background(), ModeDrsBoost, smallField()[:3], FirstRoundState())
	require.Error(t, err)

	assert.Equal(t, []string{"normal:optimal", "drs:infeasible"}, obs.statuses)
}
