// Package testutil provides common utility functions for testing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/roster"
)

// FindResult finds the result for mode in the results slice.
// Returns nil if no result carries that mode.
func FindResult(results []*roster.Result, mode roster.Mode) *roster.Result {
	for _, r := range results {
		if r != nil && r.Mode == mode {
			return r
		}
	}
	return nil
}

// ProjectionsCSV is a small but complete projection table: ten drivers and
// five constructors, all affordable within the default budget.
const ProjectionsCSV = `name,is_driver,is_constructor,price,xPts,price_change
Max Verstappen,true,false,28.5,26.0,0.2
Lando Norris,true,false,26.0,24.5,0.3
Oscar Piastri,true,false,24.0,23.0,0.1
Charles Leclerc,true,false,21.5,19.0,-0.1
George Russell,true,false,20.0,18.5,0.2
Lewis Hamilton,true,false,19.0,15.0,-0.2
Alexander Albon,true,false,8.0,10.5,0.3
Nico Hulkenberg,true,false,6.5,8.0,0.1
Oliver Bearman,true,false,5.5,7.5,0.2
Franco Colapinto,true,false,4.5,3.0,-0.1
McLaren,false,true,30.0,38.0,0.3
Ferrari,false,true,24.0,27.0,0.0
Red Bull Racing,false,true,23.5,25.0,-0.2
Williams,false,true,12.0,17.0,0.4
Haas,false,true,8.5,11.0,0.1
`

// WriteProjections writes ProjectionsCSV into dir and returns its path.
func WriteProjections(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "projections.csv")
	if err := os.WriteFile(path, []byte(ProjectionsCSV), 0o644); err != nil {
		t.Fatalf("failed to write projections: %v", err)
	}
	return path
}
