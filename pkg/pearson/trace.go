package pearson

import (
	"fmt"
	"strconv"
	"strings"
)

// trace accumulates the human-readable calculation steps in the order they
// are computed.
type trace struct {
	unit        string
	target      float64
	finalWeight float64
	lines       []string
}

func newTrace(unit string, target, finalWeight float64) *trace {
	return &trace{unit: unit, target: target, finalWeight: finalWeight}
}

func (t *trace) add(format string, args ...interface{}) {
	t.lines = append(t.lines, fmt.Sprintf(format, args...))
}

func (t *trace) difference(ing Ingredient, diff float64) {
	t.add("Difference for %s: |%s - %s| = %s",
		ing.Name, formatNumber(t.target), formatNumber(ing.Percent), formatNumber(diff))
}

func (t *trace) totalParts(diffs []float64, total float64) {
	t.add("Total parts (sum of differences): %s = %s", joinSum(diffs), formatNumber(total))
}

func (t *trace) proportion(blend []IngredientWeight, i int, total float64) {
	others := make([]float64, 0, len(blend)-1)
	for j, iw := range blend {
		if j != i {
			others = append(others, iw.Diff)
		}
	}
	numerator := joinSum(others)
	if len(others) > 1 {
		numerator = "(" + numerator + ")"
	}
	t.add("Proportion of %s: %s / %s = %.2f", blend[i].Name, numerator, formatNumber(total), blend[i].Part)
}

func (t *trace) nominalWeight(iw IngredientWeight) {
	t.add("Weight of %s: %.2f * %s %s = %.2f %s",
		iw.Name, iw.Part, formatNumber(t.finalWeight), t.unit, iw.Nominal, t.unit)
}

func (t *trace) adjustedWeight(iw IngredientWeight) {
	t.add("Adjusted weight of %s: %.2f %s", iw.Name, iw.Weight, t.unit)
}

func joinSum(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatNumber(v)
	}
	return strings.Join(parts, " + ")
}

// formatNumber prints the shortest representation that round-trips.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
