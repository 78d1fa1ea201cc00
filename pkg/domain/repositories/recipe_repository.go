package repositories

import (
	"context"

	"github.com/vsinha/kitchenplan/pkg/domain/entities"
)

// RecipeRepository provides access to recipes with their ingredient lines
type RecipeRepository interface {
	GetRecipeWithIngredients(ctx context.Context, recipeID string) (*entities.Recipe, error)
}
