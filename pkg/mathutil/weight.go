// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"
	"sort"

	"github.com/iwvelando/feed-blend/pkg/constants"
	"gonum.org/v1/gonum/floats"
)

// Round rounds a value to the two decimals weights and percentages are
// displayed with.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// WithinRelativeTolerance checks if two values agree to within tolerance
// relative to the larger magnitude. Values that are both zero agree.
func WithinRelativeTolerance(val1, val2, tolerance float64) bool {
	scale := math.Max(math.Abs(val1), math.Abs(val2))
	if scale == 0 {
		return true
	}
	return math.Abs(val1-val2) <= tolerance*scale
}

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// OrderedSum adds the values smallest first. The result does not depend on
// the order of the input, so permuting the input never changes the sum.
func OrderedSum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return floats.Sum(sorted)
}

// SumExcept is OrderedSum over every value except the one at index skip.
func SumExcept(values []float64, skip int) float64 {
	others := make([]float64, 0, len(values))
	for i, v := range values {
		if i == skip {
			continue
		}
		others = append(others, v)
	}
	return OrderedSum(others)
}

// CalculatePercentage returns value as a percentage of total, or 0 for a
// zero total.
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * 100
}
