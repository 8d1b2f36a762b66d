// Package pearson computes feed blends with Pearson's Square.
//
// Given two or three ingredients with a known nutrient percentage, a target
// percentage and a final blend weight, Solve returns the weight of every
// ingredient. Each ingredient's share is the sum of the OTHER ingredients'
// distances from the target, so the ingredient closest to the target gets
// the largest share. The nominal weights are then rescaled to add up to the
// final weight exactly.
package pearson

import (
	"fmt"
	"math"

	"github.com/iwvelando/feed-blend/pkg/constants"
	"github.com/iwvelando/feed-blend/pkg/mathutil"
	"go.uber.org/zap"
)

// Ingredient is one component of a blend.
type Ingredient struct {
	Name    string  `json:"name" yaml:"name"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// IngredientWeight holds every intermediate value computed for one
// ingredient.
type IngredientWeight struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
	Diff    float64 `json:"diff"`
	Part    float64 `json:"part"`
	Nominal float64 `json:"nominal"`
	Weight  float64 `json:"weight"`
}

// BlendResult is the outcome of a single Solve call.
type BlendResult struct {
	Target      float64            `json:"target"`
	FinalWeight float64            `json:"finalWeight"`
	Unit        string             `json:"unit"`
	TotalParts  float64            `json:"totalParts"`
	Blend       []IngredientWeight `json:"blend"`
	// Weights maps ingredient names to weights. Repeated names share one
	// entry holding the sum of their weights; Blend keeps them apart.
	Weights map[string]float64 `json:"weights"`
	Trace   []string           `json:"trace"`
}

// Weight returns the weight computed for the named ingredient.
func (r *BlendResult) Weight(name string) (float64, bool) {
	w, ok := r.Weights[name]
	return w, ok
}

// Sum returns the total weight of the blend.
func (r *BlendResult) Sum() float64 {
	weights := make([]float64, len(r.Blend))
	for i, iw := range r.Blend {
		weights[i] = iw.Weight
	}
	return mathutil.OrderedSum(weights)
}

// Solver solves blends. The zero value is not usable; use NewSolver.
// A Solver holds no mutable state and is safe for concurrent use.
type Solver struct {
	logger *zap.Logger
	unit   string
}

// NewSolver creates a solver that logs to logger and labels weights with
// unit in the trace. A nil logger is replaced by a no-op logger and an empty
// unit by constants.DefaultUnit.
func NewSolver(logger *zap.Logger, unit string) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if unit == "" {
		unit = constants.DefaultUnit
	}
	return &Solver{logger: logger, unit: unit}
}

var defaultSolver = NewSolver(nil, constants.DefaultUnit)

// Solve runs Pearson's Square with a default solver.
func Solve(ingredients []Ingredient, target, finalWeight float64) (*BlendResult, error) {
	return defaultSolver.Solve(ingredients, target, finalWeight)
}

// Unit returns the unit the solver writes into traces.
func (s *Solver) Unit() string {
	return s.unit
}

// Solve computes the weight of every ingredient needed to reach target in a
// blend of finalWeight.
func (s *Solver) Solve(ingredients []Ingredient, target, finalWeight float64) (*BlendResult, error) {
	if err := Validate(ingredients, target, finalWeight); err != nil {
		s.logger.Debug("blend rejected",
			zap.String("op", "pearson.Solve"),
			zap.Int("ingredients", len(ingredients)),
			zap.Float64("target", target),
			zap.Error(err),
		)
		return nil, err
	}

	n := len(ingredients)
	tr := newTrace(s.unit, target, finalWeight)
	blend := make([]IngredientWeight, n)

	diffs := make([]float64, n)
	for i, ing := range ingredients {
		diffs[i] = math.Abs(target - ing.Percent)
		blend[i] = IngredientWeight{Name: ing.Name, Percent: ing.Percent, Diff: diffs[i]}
		tr.difference(ing, diffs[i])
	}

	total := mathutil.OrderedSum(diffs)
	tr.totalParts(diffs, total)
	if !mathutil.IsFinite(total) {
		return nil, fmt.Errorf("%w: differences from target %s overflow", ErrInvalidValue, formatNumber(target))
	}
	if total == 0 {
		// Validate already rejects this; kept so the division below can never
		// be reached with a zero denominator.
		return nil, &DegenerateInputError{Target: target, Percents: percents(ingredients)}
	}

	parts := make([]float64, n)
	for i := range blend {
		blend[i].Part = mathutil.SumExcept(diffs, i) / total
		parts[i] = blend[i].Part
		tr.proportion(blend, i, total)
	}
	for i := range blend {
		blend[i].Nominal = blend[i].Part * finalWeight
		tr.nominalWeight(blend[i])
	}

	// Rescale by the parts (each at most 1) so huge final weights stay finite.
	sumParts := mathutil.OrderedSum(parts)
	weights := make(map[string]float64, n)
	for i := range blend {
		w := blend[i].Part / sumParts * finalWeight
		blend[i].Weight = w
		weights[blend[i].Name] += w
		tr.adjustedWeight(blend[i])
	}

	s.logger.Debug("blend solved",
		zap.String("op", "pearson.Solve"),
		zap.Int("ingredients", n),
		zap.Float64("target", target),
		zap.Float64("finalWeight", finalWeight),
		zap.Float64("totalParts", total),
	)

	return &BlendResult{
		Target:      target,
		FinalWeight: finalWeight,
		Unit:        s.unit,
		TotalParts:  total,
		Blend:       blend,
		Weights:     weights,
		Trace:       tr.lines,
	}, nil
}

// Validate checks that a blend can be solved without computing it. The
// returned error is one of ErrIngredientCount, ErrInvalidValue, an
// *UnsolvableBlendError or a *DegenerateInputError.
func Validate(ingredients []Ingredient, target, finalWeight float64) error {
	if n := len(ingredients); n < constants.MinIngredients || n > constants.MaxIngredients {
		return fmt.Errorf("%w, got %d", ErrIngredientCount, n)
	}
	if !mathutil.IsFinite(target) {
		return fmt.Errorf("%w: target must be finite, got %v", ErrInvalidValue, target)
	}
	if !mathutil.IsFinite(finalWeight) || finalWeight < 0 {
		return fmt.Errorf("%w: final weight must be a finite non-negative number, got %v", ErrInvalidValue, finalWeight)
	}
	for _, ing := range ingredients {
		if !mathutil.IsFinite(ing.Percent) {
			return fmt.Errorf("%w: percent of %q must be finite, got %v", ErrInvalidValue, ing.Name, ing.Percent)
		}
	}

	allHigher, allLower, allEqual := true, true, true
	for _, ing := range ingredients {
		if ing.Percent <= target {
			allHigher = false
		}
		if ing.Percent >= target {
			allLower = false
		}
		if ing.Percent != target {
			allEqual = false
		}
	}

	switch {
	case allHigher:
		return &UnsolvableBlendError{Direction: AllHigher, Target: target, Percents: percents(ingredients)}
	case allLower:
		return &UnsolvableBlendError{Direction: AllLower, Target: target, Percents: percents(ingredients)}
	case allEqual:
		return &DegenerateInputError{Target: target, Percents: percents(ingredients)}
	}
	return nil
}

func percents(ingredients []Ingredient) []float64 {
	out := make([]float64, len(ingredients))
	for i, ing := range ingredients {
		out[i] = ing.Percent
	}
	return out
}
