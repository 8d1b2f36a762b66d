// Package blend defines the data structures related to a solved blend and
// includes functions for solving every blend of a configuration.
package blend

import (
	"fmt"

	"github.com/iwvelando/feed-blend/internal/config"
	"github.com/iwvelando/feed-blend/pkg/pearson"
	"go.uber.org/zap"
)

// Blend holds the outcome of solving one configured blend. Exactly one of
// Result and Err is set.
type Blend struct {
	Name        string
	Unit        string
	Target      float64
	FinalWeight float64
	Ingredients []pearson.Ingredient
	Result      *pearson.BlendResult
	Err         error
}

// Solved reports whether the blend produced a result.
func (b Blend) Solved() bool {
	return b.Err == nil && b.Result != nil
}

// GetBlends solves every blend in the configuration. A blend that cannot be
// solved keeps its error and does not stop the remaining blends.
func GetBlends(logger *zap.Logger, conf config.Configuration) []Blend {
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]Blend, 0, len(conf.Blends))
	for i, b := range conf.Blends {
		name := b.Name
		if name == "" {
			name = fmt.Sprintf("blend %d", i+1)
		}
		unit := conf.UnitFor(b)

		result := Blend{
			Name:        name,
			Unit:        unit,
			Target:      b.Target,
			FinalWeight: b.FinalWeight,
			Ingredients: b.ToIngredients(),
		}

		solver := pearson.NewSolver(logger, unit)
		result.Result, result.Err = solver.Solve(result.Ingredients, b.Target, b.FinalWeight)
		if result.Err != nil {
			logger.Warn(fmt.Sprintf("blend %s could not be solved", name),
				zap.String("op", "blend.GetBlends"),
				zap.Error(result.Err),
			)
		} else {
			logger.Debug(fmt.Sprintf("blend %s solved", name),
				zap.String("op", "blend.GetBlends"),
				zap.Int("ingredients", len(result.Ingredients)),
			)
		}

		results = append(results, result)
	}

	return results
}

// Failed counts the blends that could not be solved.
func Failed(blends []Blend) int {
	n := 0
	for _, b := range blends {
		if !b.Solved() {
			n++
		}
	}
	return n
}
