package demand

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	testhelpers "github.com/vsinha/kitchenplan/pkg/application/services/testing"
	"github.com/vsinha/kitchenplan/pkg/domain/entities"
	"github.com/vsinha/kitchenplan/pkg/domain/repositories"
)

// Helper to create a planner over the fixture's repositories
func newTestPlanner(repos *testhelpers.Repositories) (*Planner, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewPlanner(repos.Events, repos.Recipes, repos.Ingredients, logger), hook
}

func findLine(lines []entities.DemandLine, ingredientID string) *entities.DemandLine {
	for i := range lines {
		if lines[i].IngredientID == ingredientID {
			return &lines[i]
		}
	}
	return nil
}

func TestPlanner_AggregatesBeforeBuffering(t *testing.T) {
	ctx := context.Background()
	repos := testhelpers.NewRepositories()

	repos.AddIngredient("BUTTER", "", "SUP1", "1", "0")
	repos.AddRecipe("SAUCE_A", 2, testhelpers.Line("BUTTER", "2", "kg"))
	repos.AddRecipe("SAUCE_B", 2, testhelpers.Line("BUTTER", "2", "kg"))
	repos.AddEvent("EV1", "ORG_A", entities.EventBanquet, 4,
		[]entities.MenuLine{testhelpers.Menu("SAUCE_A"), testhelpers.Menu("SAUCE_B")}, nil)

	planner, _ := newTestPlanner(repos)
	lines, err := planner.CalculateEventDemand(ctx, "EV1", "ORG_A")
	if err != nil {
		t.Fatalf("CalculateEventDemand failed: %v", err)
	}

	if len(lines) != 1 {
		t.Fatalf("Expected 1 aggregated line, got %d", len(lines))
	}
	line := lines[0]
	if !line.QuantityNeeded.Equal(decimal.NewFromInt(8)) {
		t.Errorf("Expected quantity needed 8, got %s", line.QuantityNeeded)
	}
	if !line.QuantityWithBuffer.Equal(testhelpers.Dec("8.8")) {
		t.Errorf("Expected quantity with buffer 8.8, got %s", line.QuantityWithBuffer)
	}
	if !line.SafetyBufferPct.Equal(entities.DefaultSafetyBufferPct) {
		t.Errorf("Expected default buffer 1.10, got %s", line.SafetyBufferPct)
	}
}

func TestPlanner_ForecastIgnoresPax(t *testing.T) {
	ctx := context.Background()
	repos := testhelpers.NewRepositories()

	repos.AddFamily("MEAT", "1.20")
	repos.AddIngredient("BEEF", "MEAT", "SUP1", "12", "0")
	repos.AddRecipe("STEAK", 1, testhelpers.Line("BEEF", "2", "kg"))
	repos.AddEvent("EV1", "ORG_A", entities.EventALaCarte, 10,
		[]entities.MenuLine{testhelpers.ForecastMenu("STEAK", "5")}, nil)

	planner, _ := newTestPlanner(repos)
	lines, err := planner.CalculateEventDemand(ctx, "EV1", "ORG_A")
	if err != nil {
		t.Fatalf("CalculateEventDemand failed: %v", err)
	}

	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if !lines[0].QuantityNeeded.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected quantity needed 10, got %s", lines[0].QuantityNeeded)
	}
	if !lines[0].QuantityWithBuffer.Equal(decimal.NewFromInt(12)) {
		t.Errorf("Expected quantity with buffer 12, got %s", lines[0].QuantityWithBuffer)
	}
}

func TestPlanner_UnknownEventTypeScalesByPax(t *testing.T) {
	ctx := context.Background()
	repos := testhelpers.NewRepositories()

	repos.AddIngredient("RICE", "", "SUP1", "1", "0")
	repos.AddRecipe("PAELLA", 2, testhelpers.Line("RICE", "1", "kg"))
	repos.AddEvent("EV1", "ORG_A", entities.NormalizeEventType("gala"), 10,
		[]entities.MenuLine{testhelpers.ForecastMenu("PAELLA", "5")}, nil)

	planner, _ := newTestPlanner(repos)
	lines, err := planner.CalculateEventDemand(ctx, "EV1", "ORG_A")
	if err != nil {
		t.Fatalf("CalculateEventDemand failed: %v", err)
	}

	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	// 10 pax / 2 servings * 1kg; the forecast is ignored
	if !lines[0].QuantityNeeded.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected quantity needed 5, got %s", lines[0].QuantityNeeded)
	}
}

func TestPlanner_ForecastLineWithoutForecastIsSkipped(t *testing.T) {
	ctx := context.Background()
	repos := testhelpers.NewRepositories()

	repos.AddIngredient("BEEF", "", "SUP1", "12", "0")
	repos.AddIngredient("FISH", "", "SUP1", "15", "0")
	repos.AddRecipe("STEAK", 1, testhelpers.Line("BEEF", "1", "kg"))
	repos.AddRecipe("SOLE", 1, testhelpers.Line("FISH", "1", "kg"))
	repos.AddEvent("EV1", "ORG_A", entities.EventALaCarte, 50,
		[]entities.MenuLine{testhelpers.Menu("STEAK"), testhelpers.ForecastMenu("SOLE", "3")}, nil)

	planner, _ := newTestPlanner(repos)
	lines, err := planner.CalculateEventDemand(ctx, "EV1", "ORG_A")
	if err != nil {
		t.Fatalf("CalculateEventDemand failed: %v", err)
	}

	if len(lines) != 1 || lines[0].IngredientID != "FISH" {
		t.Fatalf("Expected only FISH demand, got %+v", lines)
	}
	if !lines[0].QuantityNeeded.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected quantity needed 3, got %s", lines[0].QuantityNeeded)
	}
}

func TestPlanner_EmptyMenuYieldsEmptyDemand(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		eventType entities.EventType
	}{
		{name: "forecast_driven", eventType: entities.EventALaCarte},
		{name: "headcount_driven", eventType: entities.EventBanquet},
		{name: "coffee", eventType: entities.EventCoffee},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := testhelpers.NewRepositories()
			repos.AddEvent("EV1", "ORG_A", tt.eventType, 80, nil, nil)

			planner, _ := newTestPlanner(repos)
			lines, err := planner.CalculateEventDemand(ctx, "EV1", "ORG_A")
			if err != nil {
				t.Fatalf("Expected no error for empty menu, got %v", err)
			}
			if len(lines) != 0 {
				t.Errorf("Expected empty demand, got %d lines", len(lines))
			}
		})
	}
}

func TestPlanner_EventNotFound(t *testing.T) {
	ctx := context.Background()
	repos := testhelpers.BuildBanquetTestData()
	planner, _ := newTestPlanner(repos)

	tests := []struct {
		name    string
		eventID string
		orgID   string
	}{
		{name: "unknown_event", eventID: "NOPE", orgID: "ORG_A"},
		{name: "other_organization", eventID: "BANQUET_1", orgID: "ORG_B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := planner.CalculateEventDemand(ctx, tt.eventID, tt.orgID)
			if err == nil {
				t.Fatal("Expected error for missing event")
			}
			if !errors.Is(err, ErrEventNotFound) {
				t.Errorf("Expected ErrEventNotFound, got %v", err)
			}
			if !errors.Is(err, repositories.ErrNotFound) {
				t.Errorf("Expected error to match repositories.ErrNotFound, got %v", err)
			}
			if !strings.Contains(err.Error(), "event not found") {
				t.Errorf("Expected 'event not found' in message, got %q", err.Error())
			}
		})
	}
}

func TestPlanner_BanquetScenario(t *testing.T) {
	ctx := context.Background()
	repos := testhelpers.BuildBanquetTestData()
	planner, _ := newTestPlanner(repos)

	lines, err := planner.CalculateEventDemand(ctx, "BANQUET_1", "ORG_A")
	if err != nil {
		t.Fatalf("CalculateEventDemand failed: %v", err)
	}

	expectedOrder := []string{"RICE", "PARMESAN", "LETTUCE"}
	if len(lines) != len(expectedOrder) {
		t.Fatalf("Expected %d lines, got %d", len(expectedOrder), len(lines))
	}
	for i, id := range expectedOrder {
		if lines[i].IngredientID != id {
			t.Errorf("Line %d: expected %s, got %s", i, id, lines[i].IngredientID)
		}
	}

	expected := map[string]struct{ needed, buffered string }{
		"RICE":     {"4", "4"},
		"PARMESAN": {"1.8", "1.98"},
		"LETTUCE":  {"4", "4"},
	}
	for id, want := range expected {
		line := findLine(lines, id)
		if line == nil {
			t.Fatalf("Missing line for %s", id)
		}
		if !line.QuantityNeeded.Equal(testhelpers.Dec(want.needed)) {
			t.Errorf("%s: expected needed %s, got %s", id, want.needed, line.QuantityNeeded)
		}
		if !line.QuantityWithBuffer.Equal(testhelpers.Dec(want.buffered)) {
			t.Errorf("%s: expected buffered %s, got %s", id, want.buffered, line.QuantityWithBuffer)
		}
		if line.IngredientName != id {
			t.Errorf("%s: expected ingredient name to be resolved, got %q", id, line.IngredientName)
		}
	}
}

func TestPlanner_SportsMultiDirectIngredients(t *testing.T) {
	ctx := context.Background()
	repos := testhelpers.NewRepositories()

	repos.AddIngredient("PASTA", "", "SUP1", "1", "0")
	repos.AddIngredient("BANANA", "", "SUP1", "0.3", "0")
	repos.AddRecipe("PASTA_BOWL", 5, testhelpers.Line("PASTA", "1", "kg"))

	direct := []entities.DirectIngredientLine{
		{IngredientID: "BANANA", Quantity: testhelpers.Dec("30"), UnitID: "pc"},
		{IngredientID: "PASTA", Quantity: testhelpers.Dec("2"), UnitID: "kg"},
	}
	repos.AddEvent("SPORTS", "ORG_A", entities.EventSportsMulti, 20,
		[]entities.MenuLine{testhelpers.Menu("PASTA_BOWL")}, direct)
	repos.AddEvent("BANQUET", "ORG_A", entities.EventBanquet, 20,
		[]entities.MenuLine{testhelpers.Menu("PASTA_BOWL")}, direct)

	planner, _ := newTestPlanner(repos)

	lines, err := planner.CalculateEventDemand(ctx, "SPORTS", "ORG_A")
	if err != nil {
		t.Fatalf("CalculateEventDemand failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	pasta := findLine(lines, "PASTA")
	if !pasta.QuantityNeeded.Equal(decimal.NewFromInt(6)) {
		t.Errorf("Expected PASTA 4 from recipe + 2 direct = 6, got %s", pasta.QuantityNeeded)
	}
	banana := findLine(lines, "BANANA")
	if banana == nil || !banana.QuantityNeeded.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Expected BANANA 30 used as-is, got %+v", banana)
	}

	lines, err = planner.CalculateEventDemand(ctx, "BANQUET", "ORG_A")
	if err != nil {
		t.Fatalf("CalculateEventDemand failed: %v", err)
	}
	if len(lines) != 1 || findLine(lines, "BANANA") != nil {
		t.Errorf("Expected direct lines to be ignored for BANQUET, got %+v", lines)
	}
}

func TestPlanner_DirectLinePolicyAllEventTypes(t *testing.T) {
	ctx := context.Background()
	repos := testhelpers.NewRepositories()
	repos.AddIngredient("COFFEE_BEANS", "", "SUP1", "10", "0")
	repos.AddEvent("EV1", "ORG_A", entities.EventCoffee, 30, nil,
		[]entities.DirectIngredientLine{{IngredientID: "COFFEE_BEANS", Quantity: testhelpers.Dec("1.5"), UnitID: "kg"}})

	logger, _ := logtest.NewNullLogger()
	config := DefaultConfig()
	config.DirectLinePolicy = DirectLinesAllEventTypes
	planner := NewPlannerWithConfig(config, repos.Events, repos.Recipes, repos.Ingredients, logger)

	lines, err := planner.CalculateEventDemand(ctx, "EV1", "ORG_A")
	if err != nil {
		t.Fatalf("CalculateEventDemand failed: %v", err)
	}
	if len(lines) != 1 || !lines[0].QuantityNeeded.Equal(testhelpers.Dec("1.5")) {
		t.Errorf("Expected 1.5 kg of coffee beans, got %+v", lines)
	}
}

func TestPlanner_SameIngredientDifferentUnits(t *testing.T) {
	ctx := context.Background()
	repos := testhelpers.NewRepositories()
	repos.AddIngredient("EGG", "", "SUP1", "0.2", "0")
	repos.AddRecipe("OMELETTE", 1, testhelpers.Line("EGG", "3", "pc"))
	repos.AddRecipe("MAYO", 10, testhelpers.Line("EGG", "0.5", "kg"))
	repos.AddEvent("EV1", "ORG_A", entities.EventBuffet, 10,
		[]entities.MenuLine{testhelpers.Menu("OMELETTE"), testhelpers.Menu("MAYO")}, nil)

	planner, _ := newTestPlanner(repos)
	lines, err := planner.CalculateEventDemand(ctx, "EV1", "ORG_A")
	if err != nil {
		t.Fatalf("CalculateEventDemand failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected separate lines per unit, got %d", len(lines))
	}
	if lines[0].UnitID != "pc" || !lines[0].QuantityNeeded.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Unexpected first line: %+v", lines[0])
	}
	if lines[1].UnitID != "kg" || !lines[1].QuantityNeeded.Equal(testhelpers.Dec("0.5")) {
		t.Errorf("Unexpected second line: %+v", lines[1])
	}
}

func TestPlanner_MalformedInputsContributeNothing(t *testing.T) {
	ctx := context.Background()
	repos := testhelpers.NewRepositories()

	repos.AddIngredient("SUGAR", "", "SUP1", "1", "0")
	repos.AddRecipe("CAKE", 8, testhelpers.Line("SUGAR", "1", "kg"))
	// A recipe with zero servings bypasses NewRecipe validation, as legacy rows can
	repos.Recipes.AddRecipe(entities.Recipe{ID: "BROKEN", Servings: 0, Lines: []entities.RecipeIngredientLine{testhelpers.Line("SUGAR", "5", "kg")}})
	repos.AddEvent("EV1", "ORG_A", entities.EventBanquet, 16,
		[]entities.MenuLine{testhelpers.Menu("CAKE"), testhelpers.Menu("DELETED_RECIPE"), testhelpers.Menu("BROKEN")}, nil)

	planner, hook := newTestPlanner(repos)
	lines, err := planner.CalculateEventDemand(ctx, "EV1", "ORG_A")
	if err != nil {
		t.Fatalf("CalculateEventDemand failed: %v", err)
	}
	if len(lines) != 1 || !lines[0].QuantityNeeded.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected only CAKE contribution of 2, got %+v", lines)
	}

	warnings := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings++
		}
	}
	if warnings != 2 {
		t.Errorf("Expected 2 warnings for missing and broken recipes, got %d", warnings)
	}
}

func TestPlanner_MissingIngredientUsesDefaultBuffer(t *testing.T) {
	ctx := context.Background()
	repos := testhelpers.NewRepositories()
	repos.AddRecipe("SOUP", 1, testhelpers.Line("GHOST", "1", "l"))
	repos.AddEvent("EV1", "ORG_A", entities.EventOther, 10, []entities.MenuLine{testhelpers.Menu("SOUP")}, nil)

	planner, _ := newTestPlanner(repos)
	lines, err := planner.CalculateEventDemand(ctx, "EV1", "ORG_A")
	if err != nil {
		t.Fatalf("CalculateEventDemand failed: %v", err)
	}
	if len(lines) != 1 || !lines[0].QuantityWithBuffer.Equal(decimal.NewFromInt(11)) {
		t.Errorf("Expected 10 × 1.10 = 11, got %+v", lines)
	}
}

type failingRecipeRepository struct{ err error }

func (f failingRecipeRepository) GetRecipeWithIngredients(ctx context.Context, recipeID string) (*entities.Recipe, error) {
	return nil, f.err
}

type failingIngredientRepository struct {
	repositories.IngredientRepository
	err error
}

func (f failingIngredientRepository) GetProductFamily(ctx context.Context, familyID string) (*entities.ProductFamily, error) {
	return nil, f.err
}

func TestPlanner_PersistenceFailureAborts(t *testing.T) {
	ctx := context.Background()
	repos := testhelpers.BuildBanquetTestData()
	logger, _ := logtest.NewNullLogger()
	dbErr := errors.New("connection reset")

	t.Run("recipe_lookup", func(t *testing.T) {
		planner := NewPlanner(repos.Events, failingRecipeRepository{err: dbErr}, repos.Ingredients, logger)
		lines, err := planner.CalculateEventDemand(ctx, "BANQUET_1", "ORG_A")
		if !errors.Is(err, dbErr) {
			t.Fatalf("Expected persistence error, got %v", err)
		}
		if lines != nil {
			t.Errorf("Expected no partial result, got %+v", lines)
		}
	})

	t.Run("family_lookup", func(t *testing.T) {
		ingredients := failingIngredientRepository{IngredientRepository: repos.Ingredients, err: dbErr}
		planner := NewPlanner(repos.Events, repos.Recipes, ingredients, logger)
		if _, err := planner.CalculateEventDemand(ctx, "BANQUET_1", "ORG_A"); !errors.Is(err, dbErr) {
			t.Fatalf("Expected persistence error, got %v", err)
		}
	})
}

func TestParseDirectLinePolicy(t *testing.T) {
	for input, expected := range map[string]DirectLinePolicy{
		"":            DirectLinesSportsOnly,
		"sports_only": DirectLinesSportsOnly,
		"all":         DirectLinesAllEventTypes,
	} {
		got, err := ParseDirectLinePolicy(input)
		if err != nil {
			t.Fatalf("ParseDirectLinePolicy(%q) failed: %v", input, err)
		}
		if got != expected {
			t.Errorf("ParseDirectLinePolicy(%q) = %d, expected %d", input, got, expected)
		}
	}
	if _, err := ParseDirectLinePolicy("some"); err == nil {
		t.Error("Expected error for unknown policy")
	}
}
