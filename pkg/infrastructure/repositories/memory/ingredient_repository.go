package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchenplan/pkg/domain/entities"
	"github.com/vsinha/kitchenplan/pkg/domain/repositories"
)

// IngredientRepository provides in-memory ingredient and product family storage
type IngredientRepository struct {
	mutex          sync.RWMutex
	ingredients    []entities.Ingredient
	ingredientsMap map[string]int
	families       map[string]entities.ProductFamily
}

// NewIngredientRepository creates a new in-memory ingredient repository
func NewIngredientRepository(expectedIngredients int) *IngredientRepository {
	return &IngredientRepository{
		ingredients:    make([]entities.Ingredient, 0, expectedIngredients),
		ingredientsMap: make(map[string]int, expectedIngredients),
		families:       make(map[string]entities.ProductFamily),
	}
}

// Verify interface compliance
var _ repositories.IngredientRepository = (*IngredientRepository)(nil)

// LoadIngredients loads ingredients into the repository
func (r *IngredientRepository) LoadIngredients(ingredients []*entities.Ingredient) error {
	for _, ingredient := range ingredients {
		r.AddIngredient(*ingredient)
	}
	return nil
}

// LoadProductFamilies loads product families into the repository
func (r *IngredientRepository) LoadProductFamilies(families []*entities.ProductFamily) error {
	for _, family := range families {
		r.AddProductFamily(*family)
	}
	return nil
}

// AddIngredient adds or replaces an ingredient
func (r *IngredientRepository) AddIngredient(ingredient entities.Ingredient) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if index, exists := r.ingredientsMap[ingredient.ID]; exists {
		r.ingredients[index] = ingredient
		return
	}
	r.ingredientsMap[ingredient.ID] = len(r.ingredients)
	r.ingredients = append(r.ingredients, ingredient)
}

// AddProductFamily adds or replaces a product family
func (r *IngredientRepository) AddProductFamily(family entities.ProductFamily) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.families[family.ID] = family
}

// SetStock overwrites an ingredient's current stock
func (r *IngredientRepository) SetStock(ingredientID string, stock decimal.Decimal) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	index, exists := r.ingredientsMap[ingredientID]
	if !exists {
		return fmt.Errorf("ingredient %s: %w", ingredientID, repositories.ErrNotFound)
	}
	r.ingredients[index].StockCurrent = stock
	return nil
}

// GetIngredient returns ingredient master data
func (r *IngredientRepository) GetIngredient(ctx context.Context, ingredientID string) (*entities.Ingredient, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	index, exists := r.ingredientsMap[ingredientID]
	if !exists {
		return nil, fmt.Errorf("ingredient %s: %w", ingredientID, repositories.ErrNotFound)
	}
	ingredient := r.ingredients[index]
	return &ingredient, nil
}

// GetProductFamily returns a product family
func (r *IngredientRepository) GetProductFamily(ctx context.Context, familyID string) (*entities.ProductFamily, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	family, exists := r.families[familyID]
	if !exists {
		return nil, fmt.Errorf("product family %s: %w", familyID, repositories.ErrNotFound)
	}
	return &family, nil
}
