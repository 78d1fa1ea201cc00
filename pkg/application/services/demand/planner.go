package demand

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vsinha/kitchenplan/pkg/domain/entities"
	"github.com/vsinha/kitchenplan/pkg/domain/repositories"
)

// ErrEventNotFound is returned when the event does not exist for the organization.
// It matches repositories.ErrNotFound with errors.Is.
var ErrEventNotFound = fmt.Errorf("event %w", repositories.ErrNotFound)

// DirectLinePolicy decides which event types take direct-ingredient lines into account
type DirectLinePolicy int

const (
	// DirectLinesSportsOnly counts direct-ingredient lines for SPORTS_MULTI events only
	DirectLinesSportsOnly DirectLinePolicy = iota
	// DirectLinesAllEventTypes counts direct-ingredient lines for every event type
	DirectLinesAllEventTypes
)

// ParseDirectLinePolicy maps a config value to a policy
func ParseDirectLinePolicy(s string) (DirectLinePolicy, error) {
	switch s {
	case "", "sports_only":
		return DirectLinesSportsOnly, nil
	case "all":
		return DirectLinesAllEventTypes, nil
	default:
		return 0, fmt.Errorf("unknown direct line policy: %q", s)
	}
}

// Config holds the planner's tunables
type Config struct {
	// DefaultSafetyBufferPct applies when an ingredient's family sets no buffer
	DefaultSafetyBufferPct decimal.Decimal
	DirectLinePolicy       DirectLinePolicy
}

// DefaultConfig returns the standard planner configuration
func DefaultConfig() Config {
	return Config{
		DefaultSafetyBufferPct: entities.DefaultSafetyBufferPct,
		DirectLinePolicy:       DirectLinesSportsOnly,
	}
}

// Planner derives ingredient demand for events from their menus
type Planner struct {
	config      Config
	events      repositories.EventRepository
	recipes     repositories.RecipeRepository
	ingredients repositories.IngredientRepository
	log         logrus.FieldLogger
}

// NewPlanner creates a planner with default configuration
func NewPlanner(
	events repositories.EventRepository,
	recipes repositories.RecipeRepository,
	ingredients repositories.IngredientRepository,
	log logrus.FieldLogger,
) *Planner {
	return NewPlannerWithConfig(DefaultConfig(), events, recipes, ingredients, log)
}

// NewPlannerWithConfig creates a planner with custom configuration
func NewPlannerWithConfig(
	config Config,
	events repositories.EventRepository,
	recipes repositories.RecipeRepository,
	ingredients repositories.IngredientRepository,
	log logrus.FieldLogger,
) *Planner {
	if config.DefaultSafetyBufferPct.IsZero() {
		config.DefaultSafetyBufferPct = entities.DefaultSafetyBufferPct
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Planner{
		config:      config,
		events:      events,
		recipes:     recipes,
		ingredients: ingredients,
		log:         log.WithField("component", "demand_planner"),
	}
}

// CalculateEventDemand returns one demand line per (ingredient, unit) the event needs,
// in first-seen order. The calculation is read-only.
func (p *Planner) CalculateEventDemand(ctx context.Context, eventID, organizationID string) ([]entities.DemandLine, error) {
	event, err := p.events.GetEvent(ctx, eventID, organizationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
		}
		return nil, fmt.Errorf("failed to load event %s: %w", eventID, err)
	}

	log := p.log.WithFields(logrus.Fields{
		"event_id":        event.ID,
		"organization_id": organizationID,
		"event_type":      event.Type,
	})

	contributions := newAggregator()

	if err := p.addMenuContributions(ctx, log, event, contributions); err != nil {
		return nil, err
	}

	if p.includesDirectLines(event.Type) {
		for _, line := range event.DirectIngredientLines {
			contributions.add(entities.DemandKey{IngredientID: line.IngredientID, UnitID: line.UnitID}, line.Quantity)
		}
	}

	lines, err := p.applySafetyBuffers(ctx, contributions)
	if err != nil {
		return nil, err
	}

	log.WithField("lines", len(lines)).Debug("calculated event demand")
	return lines, nil
}

// includesDirectLines applies the configured direct-ingredient policy
func (p *Planner) includesDirectLines(eventType entities.EventType) bool {
	switch p.config.DirectLinePolicy {
	case DirectLinesAllEventTypes:
		return true
	default:
		return eventType == entities.EventSportsMulti
	}
}

// addMenuContributions adds q × (portions / servings) for every recipe ingredient
func (p *Planner) addMenuContributions(
	ctx context.Context,
	log logrus.FieldLogger,
	event *entities.Event,
	contributions *aggregator,
) error {
	mode := event.Type.DemandMode()
	pax := decimal.NewFromInt(int64(event.Pax))
	recipeCache := make(map[string]*entities.Recipe)

	for _, menuLine := range event.MenuLines {
		portions := pax
		if mode == entities.ForecastDriven {
			if menuLine.ForecastQty == nil {
				log.WithField("recipe_id", menuLine.RecipeID).Debug("menu line has no forecast, skipping")
				continue
			}
			portions = *menuLine.ForecastQty
		}

		recipe, cached := recipeCache[menuLine.RecipeID]
		if !cached {
			var err error
			recipe, err = p.recipes.GetRecipeWithIngredients(ctx, menuLine.RecipeID)
			if err != nil {
				if !errors.Is(err, repositories.ErrNotFound) {
					return fmt.Errorf("failed to load recipe %s: %w", menuLine.RecipeID, err)
				}
				log.WithField("recipe_id", menuLine.RecipeID).Warn("menu line references a missing recipe")
				recipe = nil
			}
			recipeCache[menuLine.RecipeID] = recipe
		}
		if recipe == nil {
			continue
		}
		if recipe.Servings <= 0 {
			log.WithFields(logrus.Fields{
				"recipe_id": recipe.ID,
				"servings":  recipe.Servings,
			}).Warn("recipe has no positive servings, skipping")
			continue
		}

		servings := decimal.NewFromInt(int64(recipe.Servings))
		for _, line := range recipe.Lines {
			qty := line.Quantity.Mul(portions).Div(servings)
			contributions.add(entities.DemandKey{IngredientID: line.IngredientID, UnitID: line.UnitID}, qty)
		}
	}

	return nil
}

type bufferInfo struct {
	name string
	pct  decimal.Decimal
}

// applySafetyBuffers buffers each aggregated quantity once, looking up each ingredient once
func (p *Planner) applySafetyBuffers(ctx context.Context, contributions *aggregator) ([]entities.DemandLine, error) {
	buffers := make(map[string]bufferInfo)
	lines := make([]entities.DemandLine, 0, len(contributions.keys))

	for _, key := range contributions.keys {
		info, cached := buffers[key.IngredientID]
		if !cached {
			var err error
			info, err = p.lookupSafetyBuffer(ctx, key.IngredientID)
			if err != nil {
				return nil, err
			}
			buffers[key.IngredientID] = info
		}

		needed := contributions.totals[key]
		lines = append(lines, entities.DemandLine{
			IngredientID:       key.IngredientID,
			IngredientName:     info.name,
			UnitID:             key.UnitID,
			QuantityNeeded:     needed,
			SafetyBufferPct:    info.pct,
			QuantityWithBuffer: needed.Mul(info.pct),
		})
	}

	return lines, nil
}

// lookupSafetyBuffer resolves the ingredient's family buffer, falling back to the default
func (p *Planner) lookupSafetyBuffer(ctx context.Context, ingredientID string) (bufferInfo, error) {
	info := bufferInfo{pct: p.config.DefaultSafetyBufferPct}

	ingredient, err := p.ingredients.GetIngredient(ctx, ingredientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			p.log.WithField("ingredient_id", ingredientID).Warn("ingredient not found, using default safety buffer")
			return info, nil
		}
		return info, fmt.Errorf("failed to load ingredient %s: %w", ingredientID, err)
	}
	info.name = ingredient.Name

	if ingredient.FamilyID == "" {
		return info, nil
	}

	family, err := p.ingredients.GetProductFamily(ctx, ingredient.FamilyID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return info, nil
		}
		return info, fmt.Errorf("failed to load product family %s: %w", ingredient.FamilyID, err)
	}

	info.pct = family.EffectiveSafetyBuffer(p.config.DefaultSafetyBufferPct)
	return info, nil
}

// aggregator sums quantities per key and remembers first-seen key order
type aggregator struct {
	keys   []entities.DemandKey
	totals map[entities.DemandKey]decimal.Decimal
}

func newAggregator() *aggregator {
	return &aggregator{totals: make(map[entities.DemandKey]decimal.Decimal)}
}

func (a *aggregator) add(key entities.DemandKey, qty decimal.Decimal) {
	current, exists := a.totals[key]
	if !exists {
		a.keys = append(a.keys, key)
		current = decimal.Zero
	}
	a.totals[key] = current.Add(qty)
}
