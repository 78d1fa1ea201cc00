package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/kitchenplan/pkg/domain/entities"
)

// Scenario file names inside a scenario directory
const (
	FamiliesFile    = "families.csv"
	SuppliersFile   = "suppliers.csv"
	IngredientsFile = "ingredients.csv"
	RecipesFile     = "recipes.csv"
	RecipeLinesFile = "recipe_lines.csv"
	EventsFile      = "events.csv"
	EventLinesFile  = "event_lines.csv"
)

var (
	familiesHeader    = []string{"id", "name", "safety_buffer_pct"}
	suppliersHeader   = []string{"id", "name", "lead_time_days", "cut_off_time", "delivery_days", "timezone"}
	ingredientsHeader = []string{"id", "name", "unit_id", "cost_price", "stock_current", "family_id", "supplier_id"}
	recipesHeader     = []string{"id", "name", "servings"}
	recipeLinesHeader = []string{"recipe_id", "ingredient_id", "quantity", "unit_id"}
	eventsHeader      = []string{"id", "organization_id", "name", "type", "pax"}
	eventLinesHeader  = []string{"event_id", "kind", "ref_id", "quantity", "unit_id"}
)

// Scenario is the master data of one kitchen read from a directory of CSV files
type Scenario struct {
	Families    []*entities.ProductFamily
	Suppliers   []*entities.Supplier
	Ingredients []*entities.Ingredient
	Recipes     []*entities.Recipe
	Events      []*entities.Event
}

// Loader handles loading kitchen master data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadScenario reads every scenario file from dir
func (l *Loader) LoadScenario(dir string) (*Scenario, error) {
	var (
		scenario Scenario
		err      error
	)

	if scenario.Families, err = l.LoadFamilies(filepath.Join(dir, FamiliesFile)); err != nil {
		return nil, err
	}
	if scenario.Suppliers, err = l.LoadSuppliers(filepath.Join(dir, SuppliersFile)); err != nil {
		return nil, err
	}
	if scenario.Ingredients, err = l.LoadIngredients(filepath.Join(dir, IngredientsFile)); err != nil {
		return nil, err
	}
	if scenario.Recipes, err = l.LoadRecipes(filepath.Join(dir, RecipesFile), filepath.Join(dir, RecipeLinesFile)); err != nil {
		return nil, err
	}
	if scenario.Events, err = l.LoadEvents(filepath.Join(dir, EventsFile), filepath.Join(dir, EventLinesFile)); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// LoadFamilies loads product families; an empty safety_buffer_pct leaves the buffer unset
func (l *Loader) LoadFamilies(filename string) ([]*entities.ProductFamily, error) {
	records, err := readRecords(filename, "families", familiesHeader)
	if err != nil {
		return nil, err
	}

	var families []*entities.ProductFamily
	for i, record := range records {
		buffer, err := parseOptionalDecimal(record[2], "safety_buffer_pct")
		if err != nil {
			return nil, fmt.Errorf("families CSV row %d: %w", i+2, err)
		}
		family, err := entities.NewProductFamily(record[0], record[1], buffer)
		if err != nil {
			return nil, fmt.Errorf("families CSV row %d: %w", i+2, err)
		}
		families = append(families, family)
	}

	return families, nil
}

// LoadSuppliers loads suppliers. delivery_days is a "|" separated list of ISO weekdays.
func (l *Loader) LoadSuppliers(filename string) ([]*entities.Supplier, error) {
	records, err := readRecords(filename, "suppliers", suppliersHeader)
	if err != nil {
		return nil, err
	}

	var suppliers []*entities.Supplier
	for i, record := range records {
		supplier, err := parseSupplier(record)
		if err != nil {
			return nil, fmt.Errorf("suppliers CSV row %d: %w", i+2, err)
		}
		suppliers = append(suppliers, supplier)
	}

	return suppliers, nil
}

// LoadIngredients loads ingredients with their cost, stock, family and supplier
func (l *Loader) LoadIngredients(filename string) ([]*entities.Ingredient, error) {
	records, err := readRecords(filename, "ingredients", ingredientsHeader)
	if err != nil {
		return nil, err
	}

	var ingredients []*entities.Ingredient
	for i, record := range records {
		costPrice, err := parseDecimal(record[3], "cost_price")
		if err != nil {
			return nil, fmt.Errorf("ingredients CSV row %d: %w", i+2, err)
		}
		stock, err := parseDecimal(record[4], "stock_current")
		if err != nil {
			return nil, fmt.Errorf("ingredients CSV row %d: %w", i+2, err)
		}

		ingredient, err := entities.NewIngredient(record[0], record[1], record[2], costPrice, stock, record[5], record[6])
		if err != nil {
			return nil, fmt.Errorf("ingredients CSV row %d: %w", i+2, err)
		}
		ingredients = append(ingredients, ingredient)
	}

	return ingredients, nil
}

// LoadRecipes loads recipes and attaches their ingredient lines in file order
func (l *Loader) LoadRecipes(recipesFile, linesFile string) ([]*entities.Recipe, error) {
	records, err := readRecords(recipesFile, "recipes", recipesHeader)
	if err != nil {
		return nil, err
	}
	lineRecords, err := readRecords(linesFile, "recipe lines", recipeLinesHeader)
	if err != nil {
		return nil, err
	}

	linesByRecipe := make(map[string][]entities.RecipeIngredientLine)
	for i, record := range lineRecords {
		quantity, err := parseDecimal(record[2], "quantity")
		if err != nil {
			return nil, fmt.Errorf("recipe lines CSV row %d: %w", i+2, err)
		}
		linesByRecipe[record[0]] = append(linesByRecipe[record[0]], entities.RecipeIngredientLine{
			IngredientID: record[1],
			Quantity:     quantity,
			UnitID:       record[3],
		})
	}

	var recipes []*entities.Recipe
	for i, record := range records {
		servings, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, fmt.Errorf("recipes CSV row %d: invalid servings: %s", i+2, record[2])
		}
		recipe, err := entities.NewRecipe(record[0], record[1], servings, linesByRecipe[record[0]])
		if err != nil {
			return nil, fmt.Errorf("recipes CSV row %d: %w", i+2, err)
		}
		recipes = append(recipes, recipe)
	}

	return recipes, nil
}

// LoadEvents loads events with their menu and direct-ingredient lines.
// An event line of kind "menu" references a recipe with an optional forecast in quantity;
// kind "direct" references an ingredient with a quantity and unit.
func (l *Loader) LoadEvents(eventsFile, linesFile string) ([]*entities.Event, error) {
	records, err := readRecords(eventsFile, "events", eventsHeader)
	if err != nil {
		return nil, err
	}
	lineRecords, err := readRecords(linesFile, "event lines", eventLinesHeader)
	if err != nil {
		return nil, err
	}

	var events []*entities.Event
	byID := make(map[string]*entities.Event, len(records))
	for i, record := range records {
		eventType := entities.NormalizeEventType(record[3])
		pax, err := strconv.Atoi(record[4])
		if err != nil {
			return nil, fmt.Errorf("events CSV row %d: invalid pax: %s", i+2, record[4])
		}

		event, err := entities.NewEvent(record[0], record[1], eventType, pax)
		if err != nil {
			return nil, fmt.Errorf("events CSV row %d: %w", i+2, err)
		}
		event.Name = record[2]
		events = append(events, event)
		byID[event.ID] = event
	}

	for i, record := range lineRecords {
		event, exists := byID[record[0]]
		if !exists {
			return nil, fmt.Errorf("event lines CSV row %d: unknown event %s", i+2, record[0])
		}

		switch strings.ToLower(record[1]) {
		case "menu":
			forecast, err := parseOptionalDecimal(record[3], "quantity")
			if err != nil {
				return nil, fmt.Errorf("event lines CSV row %d: %w", i+2, err)
			}
			event.MenuLines = append(event.MenuLines, entities.MenuLine{RecipeID: record[2], ForecastQty: forecast})
		case "direct":
			quantity, err := parseDecimal(record[3], "quantity")
			if err != nil {
				return nil, fmt.Errorf("event lines CSV row %d: %w", i+2, err)
			}
			event.DirectIngredientLines = append(event.DirectIngredientLines, entities.DirectIngredientLine{
				IngredientID: record[2],
				Quantity:     quantity,
				UnitID:       record[4],
			})
		default:
			return nil, fmt.Errorf("event lines CSV row %d: invalid kind: %s (expected 'menu' or 'direct')", i+2, record[1])
		}
	}

	return events, nil
}

// Helper functions for parsing CSV records

// readRecords opens filename, validates its header and returns the data rows
func readRecords(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}

	return rows, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseSupplier(record []string) (*entities.Supplier, error) {
	leadTimeDays, err := strconv.Atoi(record[2])
	if err != nil {
		return nil, fmt.Errorf("invalid lead_time_days: %s", record[2])
	}

	var cutOff *entities.TimeOfDay
	if strings.TrimSpace(record[3]) != "" {
		tod, err := entities.ParseTimeOfDay(record[3])
		if err != nil {
			return nil, err
		}
		cutOff = &tod
	}

	days, err := parseWeekdays(record[4])
	if err != nil {
		return nil, err
	}

	supplier, err := entities.NewSupplier(record[0], record[1], leadTimeDays, cutOff, days)
	if err != nil {
		return nil, err
	}
	supplier.Timezone = strings.TrimSpace(record[5])

	return supplier, nil
}

func parseWeekdays(s string) ([]entities.Weekday, error) {
	var days []entities.Weekday
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid delivery_days: %s (expected ISO weekdays like 1|3|5)", s)
		}
		days = append(days, entities.Weekday(n))
	}
	return days, nil
}

func parseDecimal(s, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %s", field, s)
	}
	return d, nil
}

func parseOptionalDecimal(s, field string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := parseDecimal(s, field)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
