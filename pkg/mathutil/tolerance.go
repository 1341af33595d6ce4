// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/fantasy-f1-optimiser/pkg/constants"
)

// Round rounds val to the given number of decimal places.
func Round(val float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(val*scale) / scale
}

// IsIntegral reports whether val lies within tolerance of an integer.
func IsIntegral(val, tolerance float64) bool {
	return math.Abs(val-math.Round(val)) <= tolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// PointsEqual compares projected point totals.
func PointsEqual(a, b float64) bool {
	return WithinTolerance(a, b, constants.PointsTolerance)
}

// ClampNonNegative returns val, or zero when val is negative.
func ClampNonNegative(val float64) float64 {
	if val < 0 {
		return 0
	}
	return val
}
