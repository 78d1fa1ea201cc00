package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vsinha/kitchenplan/pkg/domain/entities"
	"github.com/vsinha/kitchenplan/pkg/domain/repositories"
)

type RecipeRepository struct {
	pool *pgxpool.Pool
}

func NewRecipeRepository(pool *pgxpool.Pool) *RecipeRepository {
	return &RecipeRepository{pool: pool}
}

var _ repositories.RecipeRepository = (*RecipeRepository)(nil)

func (r *RecipeRepository) GetRecipeWithIngredients(ctx context.Context, recipeID string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	err := r.pool.QueryRow(ctx, `SELECT id, name, servings FROM recipes WHERE id = $1`, recipeID).
		Scan(&recipe.ID, &recipe.Name, &recipe.Servings)
	if isNoRows(err) {
		return nil, fmt.Errorf("recipe %s: %w", recipeID, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query recipe %s: %w", recipeID, err)
	}

	rows, err := r.pool.Query(ctx, `
        SELECT ingredient_id, quantity, unit_id
        FROM recipe_lines
        WHERE recipe_id = $1
        ORDER BY position
    `, recipeID)
	if err != nil {
		return nil, fmt.Errorf("query lines of recipe %s: %w", recipeID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var line entities.RecipeIngredientLine
		if err := rows.Scan(&line.IngredientID, &line.Quantity, &line.UnitID); err != nil {
			return nil, fmt.Errorf("scan recipe line: %w", err)
		}
		recipe.Lines = append(recipe.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &recipe, nil
}

type IngredientRepository struct {
	pool *pgxpool.Pool
}

func NewIngredientRepository(pool *pgxpool.Pool) *IngredientRepository {
	return &IngredientRepository{pool: pool}
}

var _ repositories.IngredientRepository = (*IngredientRepository)(nil)

func (r *IngredientRepository) GetIngredient(ctx context.Context, ingredientID string) (*entities.Ingredient, error) {
	query := `
        SELECT id, name, unit_id, cost_price, stock_current,
               COALESCE(family_id, ''), COALESCE(supplier_id, '')
        FROM ingredients
        WHERE id = $1
    `

	var ingredient entities.Ingredient
	err := r.pool.QueryRow(ctx, query, ingredientID).Scan(
		&ingredient.ID,
		&ingredient.Name,
		&ingredient.UnitID,
		&ingredient.CostPrice,
		&ingredient.StockCurrent,
		&ingredient.FamilyID,
		&ingredient.SupplierID,
	)
	if isNoRows(err) {
		return nil, fmt.Errorf("ingredient %s: %w", ingredientID, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query ingredient %s: %w", ingredientID, err)
	}

	return &ingredient, nil
}

func (r *IngredientRepository) GetProductFamily(ctx context.Context, familyID string) (*entities.ProductFamily, error) {
	var family entities.ProductFamily
	var buffer decimal.NullDecimal
	err := r.pool.QueryRow(ctx, `SELECT id, name, safety_buffer_pct FROM product_families WHERE id = $1`, familyID).
		Scan(&family.ID, &family.Name, &buffer)
	if isNoRows(err) {
		return nil, fmt.Errorf("product family %s: %w", familyID, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query product family %s: %w", familyID, err)
	}
	if buffer.Valid {
		family.SafetyBufferPct = &buffer.Decimal
	}

	return &family, nil
}

type SupplierRepository struct {
	pool *pgxpool.Pool
}

func NewSupplierRepository(pool *pgxpool.Pool) *SupplierRepository {
	return &SupplierRepository{pool: pool}
}

var _ repositories.SupplierRepository = (*SupplierRepository)(nil)

func (r *SupplierRepository) GetSupplier(ctx context.Context, supplierID string) (*entities.Supplier, error) {
	query := `
        SELECT id, name, lead_time_days, cut_off_time, delivery_days, timezone
        FROM suppliers
        WHERE id = $1
    `

	var supplier entities.Supplier
	var cutOff pgtype.Time
	var days []int16
	err := r.pool.QueryRow(ctx, query, supplierID).Scan(
		&supplier.ID,
		&supplier.Name,
		&supplier.LeadTimeDays,
		&cutOff,
		&days,
		&supplier.Timezone,
	)
	if isNoRows(err) {
		return nil, fmt.Errorf("supplier %s: %w", supplierID, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query supplier %s: %w", supplierID, err)
	}

	if cutOff.Valid {
		tod := timeOfDayFromMicros(cutOff.Microseconds)
		supplier.CutOffTime = &tod
	}
	for _, day := range days {
		supplier.DeliveryDays = append(supplier.DeliveryDays, entities.Weekday(day))
	}

	return &supplier, nil
}

func timeOfDayFromMicros(us int64) entities.TimeOfDay {
	seconds := int(us / 1_000_000)
	return entities.TimeOfDay{
		Hour:   seconds / 3600,
		Minute: seconds % 3600 / 60,
		Second: seconds % 60,
	}
}

func timeOfDayToPg(tod *entities.TimeOfDay) pgtype.Time {
	if tod == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: int64(tod.Seconds()) * 1_000_000, Valid: true}
}
