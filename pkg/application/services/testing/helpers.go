package testing

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/kitchenplan/pkg/domain/entities"
	"github.com/vsinha/kitchenplan/pkg/infrastructure/repositories/memory"
)

// Repositories bundles the in-memory stores used by service tests
type Repositories struct {
	Events         *memory.EventRepository
	Recipes        *memory.RecipeRepository
	Ingredients    *memory.IngredientRepository
	Suppliers      *memory.SupplierRepository
	PurchaseOrders *memory.PurchaseOrderRepository
}

// NewRepositories creates empty in-memory stores
func NewRepositories() *Repositories {
	return &Repositories{
		Events:         memory.NewEventRepository(4),
		Recipes:        memory.NewRecipeRepository(8),
		Ingredients:    memory.NewIngredientRepository(16),
		Suppliers:      memory.NewSupplierRepository(),
		PurchaseOrders: memory.NewPurchaseOrderRepository(),
	}
}

// Dec parses a decimal literal - panics on malformed input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DecPtr parses a decimal literal and returns a pointer to it
func DecPtr(s string) *decimal.Decimal {
	d := Dec(s)
	return &d
}

// Line is shorthand for a recipe ingredient line
func Line(ingredientID, quantity, unitID string) entities.RecipeIngredientLine {
	return entities.RecipeIngredientLine{IngredientID: ingredientID, Quantity: Dec(quantity), UnitID: unitID}
}

// Menu is shorthand for a headcount menu line
func Menu(recipeID string) entities.MenuLine {
	return entities.MenuLine{RecipeID: recipeID}
}

// ForecastMenu is shorthand for a menu line with a forecast quantity
func ForecastMenu(recipeID, forecast string) entities.MenuLine {
	return entities.MenuLine{RecipeID: recipeID, ForecastQty: DecPtr(forecast)}
}

// AddFamily stores a product family; an empty buffer leaves it unset
func (r *Repositories) AddFamily(id, buffer string) {
	family := entities.ProductFamily{ID: id, Name: id}
	if buffer != "" {
		family.SafetyBufferPct = DecPtr(buffer)
	}
	r.Ingredients.AddProductFamily(family)
}

// AddIngredient stores an ingredient
func (r *Repositories) AddIngredient(id, familyID, supplierID, costPrice, stock string) {
	ingredient, err := entities.NewIngredient(id, id, "kg", Dec(costPrice), Dec(stock), familyID, supplierID)
	if err != nil {
		panic(err)
	}
	r.Ingredients.AddIngredient(*ingredient)
}

// AddRecipe stores a recipe - panics on validation error
func (r *Repositories) AddRecipe(id string, servings int, lines ...entities.RecipeIngredientLine) {
	recipe, err := entities.NewRecipe(id, id, servings, lines)
	if err != nil {
		panic(err)
	}
	r.Recipes.AddRecipe(*recipe)
}

// AddEvent stores an event - panics on validation error
func (r *Repositories) AddEvent(
	id, organizationID string,
	eventType entities.EventType,
	pax int,
	menu []entities.MenuLine,
	direct []entities.DirectIngredientLine,
) {
	event, err := entities.NewEvent(id, organizationID, eventType, pax)
	if err != nil {
		panic(err)
	}
	event.MenuLines = menu
	event.DirectIngredientLines = direct
	r.Events.AddEvent(*event)
}

// AddSupplier stores a supplier - panics on validation error
func (r *Repositories) AddSupplier(id string, leadTimeDays int, cutOff string, deliveryDays ...entities.Weekday) {
	var cutOffTime *entities.TimeOfDay
	if cutOff != "" {
		tod, err := entities.ParseTimeOfDay(cutOff)
		if err != nil {
			panic(err)
		}
		cutOffTime = &tod
	}
	if len(deliveryDays) == 0 {
		deliveryDays = entities.AllWeekdays()
	}
	supplier, err := entities.NewSupplier(id, id+" Ltd", leadTimeDays, cutOffTime, deliveryDays)
	if err != nil {
		panic(err)
	}
	r.Suppliers.AddSupplier(*supplier)
}

// BuildBanquetTestData builds a banquet for 40 guests served by two suppliers.
//
//	RISOTTO (4 servings): RICE 0.4 kg, PARMESAN 0.1 kg
//	SALAD   (10 servings): LETTUCE 1 kg, PARMESAN 0.2 kg
//
// RICE and LETTUCE come from VEG_CO (family VEG, buffer 1.00), PARMESAN from
// DAIRY_CO (family DAIRY without a buffer, so 1.10 applies).
func BuildBanquetTestData() *Repositories {
	repos := NewRepositories()

	repos.AddFamily("VEG", "1.00")
	repos.AddFamily("DAIRY", "")

	repos.AddSupplier("VEG_CO", 1, "")
	repos.AddSupplier("DAIRY_CO", 2, "10:00", entities.Tuesday, entities.Friday)

	repos.AddIngredient("RICE", "VEG", "VEG_CO", "2.00", "0")
	repos.AddIngredient("LETTUCE", "VEG", "VEG_CO", "3.00", "10")
	repos.AddIngredient("PARMESAN", "DAIRY", "DAIRY_CO", "20.00", "1")

	repos.AddRecipe("RISOTTO", 4, Line("RICE", "0.4", "kg"), Line("PARMESAN", "0.1", "kg"))
	repos.AddRecipe("SALAD", 10, Line("LETTUCE", "1", "kg"), Line("PARMESAN", "0.2", "kg"))

	repos.AddEvent("BANQUET_1", "ORG_A", entities.EventBanquet, 40,
		[]entities.MenuLine{Menu("RISOTTO"), Menu("SALAD")}, nil)

	return repos
}
