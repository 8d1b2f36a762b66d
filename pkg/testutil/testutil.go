// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/feed-blend/internal/blend"
	"github.com/iwvelando/feed-blend/pkg/constants"
	"github.com/iwvelando/feed-blend/pkg/mathutil"
)

// FindBlend finds a blend by name in the results slice.
// Returns a pointer to the blend if found, nil otherwise.
func FindBlend(results []blend.Blend, name string) *blend.Blend {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// WeightOf returns the solved weight of an ingredient, or false if the blend
// failed or has no such ingredient.
func WeightOf(b *blend.Blend, ingredient string) (float64, bool) {
	if b == nil || !b.Solved() {
		return 0, false
	}
	return b.Result.Weight(ingredient)
}

// Close reports whether got is within the displayed-weight tolerance of want.
func Close(got, want float64) bool {
	return mathutil.WithinTolerance(got, want, constants.WeightTolerance)
}
