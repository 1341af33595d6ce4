package testutil

import (
	"os"
	"strings"
	"testing"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/roster"
)

func TestFindResult(t *testing.T) {
	results := []*roster.Result{
		{Mode: roster.ModeNormal, BaseXPts: 100},
		nil,
		{Mode: roster.ModeDrsBoost, BaseXPts: 140},
	}

	tests := []struct {
		name        string
		mode        roster.Mode
		expectFound bool
		expected    float64
	}{
		{name: "Find normal", mode: roster.ModeNormal, expectFound: true, expected: 100},
		{name: "Find drs", mode: roster.ModeDrsBoost, expectFound: true, expected: 140},
		{name: "Missing wildcard", mode: roster.ModeWildcard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FindResult(results, tt.mode)
			if !tt.expectFound {
				if r != nil {
					t.Errorf("expected nil for %s, got %+v", tt.mode, r)
				}
				return
			}
			if r == nil {
				t.Fatalf("expected result for %s", tt.mode)
			}
			if r.BaseXPts != tt.expected {
				t.Errorf("expected %v points, got %v", tt.expected, r.BaseXPts)
			}
		})
	}
}

func TestWriteProjections(t *testing.T) {
	path := WriteProjections(t, t.TempDir())
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read projections: %v", err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 16 {
		t.Errorf("expected header and 15 rows, got %d lines", lines)
	}
}
