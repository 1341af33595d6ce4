package mathutil

import "testing"

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		places   int
		expected float64
	}{
		{name: "one decimal", input: 12.345, places: 1, expected: 12.3},
		{name: "two decimals half up", input: 0.125, places: 2, expected: 0.13},
		{name: "negative", input: -3.456, places: 2, expected: -3.46},
		{name: "zero places", input: 2.5, places: 0, expected: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round(tt.input, tt.places); got != tt.expected {
				t.Errorf("Round(%v, %d) = %v, expected %v", tt.input, tt.places, got, tt.expected)
			}
		})
	}
}

func TestIsIntegral(t *testing.T) {
	tests := []struct {
		input    float64
		expected bool
	}{
		{input: 1, expected: true},
		{input: 0.9999999, expected: true},
		{input: 1e-8, expected: true},
		{input: 0.5, expected: false},
		{input: 0.001, expected: false},
	}
	for _, tt := range tests {
		if got := IsIntegral(tt.input, 1e-6); got != tt.expected {
			t.Errorf("IsIntegral(%v) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestPointsEqual(t *testing.T) {
	if !PointsEqual(10, 10+1e-9) {
		t.Error("expected values within tolerance to be equal")
	}
	if PointsEqual(10, 10.01) {
		t.Error("expected values outside tolerance to differ")
	}
}

func TestClampNonNegative(t *testing.T) {
	if got := ClampNonNegative(-2); got != 0 {
		t.Errorf("ClampNonNegative(-2) = %v", got)
	}
	if got := ClampNonNegative(3); got != 3 {
		t.Errorf("ClampNonNegative(3) = %v", got)
	}
}
