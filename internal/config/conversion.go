package config

import (
	"github.com/iwvelando/feed-blend/pkg/constants"
	"github.com/iwvelando/feed-blend/pkg/pearson"
	"github.com/iwvelando/feed-blend/pkg/validation"
)

// ToIngredients converts the configured ingredients into solver input.
func (b *Blend) ToIngredients() []pearson.Ingredient {
	ingredients := make([]pearson.Ingredient, len(b.Ingredients))
	for i, ing := range b.Ingredients {
		ingredients[i] = pearson.Ingredient{Name: ing.Name, Percent: ing.Percent}
	}
	return ingredients
}

// UnitFor resolves the weight unit of a blend: the blend's own unit, then the
// configuration default, then constants.DefaultUnit.
func (c *Configuration) UnitFor(b Blend) string {
	if b.Unit != "" {
		return b.Unit
	}
	if c.Unit != "" {
		return c.Unit
	}
	return constants.DefaultUnit
}

func (c *Configuration) toValidator() *validation.ConfigValidator {
	blends := make([]validation.BlendConfig, 0, len(c.Blends))
	for _, b := range c.Blends {
		ingredients := make([]validation.IngredientConfig, 0, len(b.Ingredients))
		for _, ing := range b.Ingredients {
			ingredients = append(ingredients, validation.IngredientConfig{
				Name:    ing.Name,
				Percent: ing.Percent,
			})
		}
		blends = append(blends, validation.BlendConfig{
			Name:        b.Name,
			Target:      b.Target,
			FinalWeight: b.FinalWeight,
			Ingredients: ingredients,
		})
	}
	return &validation.ConfigValidator{Blends: blends}
}
