package repositories

import (
	"context"

	"github.com/vsinha/kitchenplan/pkg/domain/entities"
)

// IngredientRepository provides access to ingredient master data and product families
type IngredientRepository interface {
	GetIngredient(ctx context.Context, ingredientID string) (*entities.Ingredient, error)
	GetProductFamily(ctx context.Context, familyID string) (*entities.ProductFamily, error)
}
