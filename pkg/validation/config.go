// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/feed-blend/pkg/constants"
)

// ValidatePercent checks that a nutrient percentage lies in [0, 100].
func ValidatePercent(label string, value float64) string {
	if value < constants.MinPercent || value > constants.MaxPercent {
		return fmt.Sprintf("%s is %g%%, outside %g-%g%%", label, value, constants.MinPercent, constants.MaxPercent)
	}
	return ""
}

// ValidateFinalWeight checks that a final blend weight is not negative.
func ValidateFinalWeight(label string, value float64) string {
	if value < 0 {
		return fmt.Sprintf("%s has negative final weight %g", label, value)
	}
	return ""
}

// ValidateIngredientCount checks that a blend mixes two or three ingredients.
func ValidateIngredientCount(label string, count int) string {
	if count < constants.MinIngredients || count > constants.MaxIngredients {
		return fmt.Sprintf("%s has %d ingredients, Pearson's Square needs %d or %d",
			label, count, constants.MinIngredients, constants.MaxIngredients)
	}
	return ""
}

// DuplicateNames returns every name that appears more than once, compared
// case-insensitively, in first-seen order.
func DuplicateNames(names []string) []string {
	seen := make(map[string]int, len(names))
	var duplicates []string
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		seen[key]++
		if seen[key] == 2 {
			duplicates = append(duplicates, name)
		}
	}
	return duplicates
}

// ConfigValidator validates a whole blend configuration
type ConfigValidator struct {
	Blends []BlendConfig
}

type BlendConfig struct {
	Name        string
	Target      float64
	FinalWeight float64
	Ingredients []IngredientConfig
}

type IngredientConfig struct {
	Name    string
	Percent float64
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	blendNames := make([]string, 0, len(cv.Blends))
	for _, blend := range cv.Blends {
		blendNames = append(blendNames, blend.Name)
		label := fmt.Sprintf("Blend '%s'", blend.Name)

		if w := ValidateIngredientCount(label, len(blend.Ingredients)); w != "" {
			warnings = append(warnings, w)
		}
		if w := ValidatePercent(label+" target", blend.Target); w != "" {
			warnings = append(warnings, w)
		}
		if w := ValidateFinalWeight(label, blend.FinalWeight); w != "" {
			warnings = append(warnings, w)
		}

		names := make([]string, 0, len(blend.Ingredients))
		for _, ing := range blend.Ingredients {
			names = append(names, ing.Name)
			if strings.TrimSpace(ing.Name) == "" {
				warnings = append(warnings, fmt.Sprintf("%s has an ingredient without a name", label))
			}
			if w := ValidatePercent(fmt.Sprintf("%s ingredient '%s'", label, ing.Name), ing.Percent); w != "" {
				warnings = append(warnings, w)
			}
		}
		for _, dup := range DuplicateNames(names) {
			warnings = append(warnings, fmt.Sprintf("%s lists ingredient '%s' more than once", label, dup))
		}
	}

	for _, dup := range DuplicateNames(blendNames) {
		warnings = append(warnings, fmt.Sprintf("Blend name '%s' is used more than once", dup))
	}

	return warnings
}
