package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RecipeIngredientLine is one ingredient of a recipe, expressed per batch
type RecipeIngredientLine struct {
	IngredientID string
	Quantity     decimal.Decimal
	UnitID       string
}

// Recipe represents a recipe whose ingredient quantities yield Servings portions
type Recipe struct {
	ID       string
	Name     string
	Servings int
	Lines    []RecipeIngredientLine
}

// NewRecipe creates a validated Recipe
func NewRecipe(id, name string, servings int, lines []RecipeIngredientLine) (*Recipe, error) {
	if id == "" {
		return nil, fmt.Errorf("recipe id cannot be empty")
	}
	if servings <= 0 {
		return nil, fmt.Errorf("servings must be positive, got %d", servings)
	}
	for i, line := range lines {
		if line.IngredientID == "" {
			return nil, fmt.Errorf("recipe line %d: ingredient id cannot be empty", i+1)
		}
		if line.Quantity.IsNegative() {
			return nil, fmt.Errorf("recipe line %d: quantity cannot be negative, got %s", i+1, line.Quantity)
		}
	}

	return &Recipe{
		ID:       id,
		Name:     name,
		Servings: servings,
		Lines:    lines,
	}, nil
}
