package integration

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/roster"
	"github.com/shopspring/decimal"
)

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// TestPerformance times a full comparison on the 20-driver grid.
func TestPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping performance test in short mode")
	}

	start := time.Now()
	f := loadFixture(t)
	loadTime := time.Since(start)

	start = time.Now()
	report, err := f.runner.Run(context.Background(), f.entries, roster.FirstRoundState())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	compareTime := time.Since(start)

	t.Logf("Performance metrics:")
	t.Logf("  Load config and projections: %v", loadTime)
	t.Logf("  Compare %d modes: %v", len(report.Rows), compareTime)
	for _, row := range report.Rows {
		if row.Failed() {
			t.Errorf("%s failed: %v", row.Mode.SolveName(), row.Err)
		}
	}

	if total := loadTime + compareTime; total > 30*time.Second {
		t.Errorf("Total processing time %v exceeds 30 second threshold", total)
	}
}

// TestDataConsistency checks that repeated solves return identical results.
func TestDataConsistency(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping repeated solves in short mode")
	}
	f := loadFixture(t)

	prev := roster.TeamState{
		Drivers:            []string{"Lando Norris", "Alexander Albon", "Isack Hadjar", "Oliver Bearman", "Franco Colapinto"},
		Constructors:       []string{"McLaren", "Williams"},
		AvailableTransfers: 2,
		RemainingBudget:    decimal.RequireFromString("3.4"),
	}

	var first *roster.Result
	for run := 0; run < 3; run++ {
		r, err := f.engine.Solve(context.Background(), roster.ModeDrsBoost, f.entries, prev)
		if err != nil {
			t.Fatalf("run %d: Solve() error = %v", run, err)
		}
		if run == 0 {
			first = r
			continue
		}
		if !reflect.DeepEqual(r, first) {
			t.Errorf("run %d differs from the first run:\n%+v\n%+v", run, r, first)
		}
	}
}
