package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsinha/kitchenplan/pkg/domain/entities"
	"github.com/vsinha/kitchenplan/pkg/domain/repositories"
)

// RecipeRepository provides in-memory recipe storage
type RecipeRepository struct {
	mutex      sync.RWMutex
	recipes    []entities.Recipe
	recipesMap map[string]int
}

// NewRecipeRepository creates a new in-memory recipe repository
func NewRecipeRepository(expectedRecipes int) *RecipeRepository {
	return &RecipeRepository{
		recipes:    make([]entities.Recipe, 0, expectedRecipes),
		recipesMap: make(map[string]int, expectedRecipes),
	}
}

// Verify interface compliance
var _ repositories.RecipeRepository = (*RecipeRepository)(nil)

// LoadRecipes loads recipes into the repository
func (r *RecipeRepository) LoadRecipes(recipes []*entities.Recipe) error {
	for _, recipe := range recipes {
		r.AddRecipe(*recipe)
	}
	return nil
}

// AddRecipe adds or replaces a recipe
func (r *RecipeRepository) AddRecipe(recipe entities.Recipe) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if index, exists := r.recipesMap[recipe.ID]; exists {
		r.recipes[index] = recipe
		return
	}
	r.recipesMap[recipe.ID] = len(r.recipes)
	r.recipes = append(r.recipes, recipe)
}

// GetRecipeWithIngredients returns a recipe and its ingredient lines
func (r *RecipeRepository) GetRecipeWithIngredients(ctx context.Context, recipeID string) (*entities.Recipe, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	index, exists := r.recipesMap[recipeID]
	if !exists {
		return nil, fmt.Errorf("recipe %s: %w", recipeID, repositories.ErrNotFound)
	}

	recipe := r.recipes[index]
	recipe.Lines = append([]entities.RecipeIngredientLine(nil), recipe.Lines...)
	return &recipe, nil
}
