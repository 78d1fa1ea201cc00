package procurement

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vsinha/kitchenplan/pkg/application/dto"
	"github.com/vsinha/kitchenplan/pkg/domain/repositories"
	"github.com/vsinha/kitchenplan/pkg/infrastructure/events"
)

// CheckStockAvailability compares buffered demand with current stock without writing anything.
// Each demand line is compared on its own; an ingredient unknown to the store counts as zero stock.
func (o *Orchestrator) CheckStockAvailability(ctx context.Context, eventID, organizationID string) (*dto.StockAvailability, error) {
	demandLines, err := o.demand.CalculateEventDemand(ctx, eventID, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate demand: %w", err)
	}

	log := o.log.WithFields(logrus.Fields{
		"event_id":        eventID,
		"organization_id": organizationID,
	})

	report := &dto.StockAvailability{
		HasSufficientStock: true,
		MissingIngredients: []dto.MissingIngredient{},
	}

	for _, line := range demandLines {
		available := decimal.Zero
		ingredient, err := o.ingredients.GetIngredient(ctx, line.IngredientID)
		switch {
		case err == nil:
			available = ingredient.StockCurrent
		case errors.Is(err, repositories.ErrNotFound):
			log.WithField("ingredient_id", line.IngredientID).Warn("ingredient not found, treating stock as zero")
		default:
			return nil, fmt.Errorf("failed to load ingredient %s: %w", line.IngredientID, err)
		}

		if !available.LessThan(line.QuantityWithBuffer) {
			continue
		}

		missing := dto.MissingIngredient{
			IngredientID: line.IngredientID,
			Name:         line.IngredientName,
			UnitID:       line.UnitID,
			Required:     line.QuantityWithBuffer,
			Available:    available,
			Shortage:     line.QuantityWithBuffer.Sub(available),
		}
		report.HasSufficientStock = false
		report.MissingIngredients = append(report.MissingIngredients, missing)

		o.publish(log, events.StockShortageIdentifiedFor(eventID, events.StockShortageIdentified{
			IngredientID: missing.IngredientID,
			UnitID:       missing.UnitID,
			Required:     missing.Required,
			Available:    missing.Available,
			Shortage:     missing.Shortage,
		}))
	}

	log.WithFields(logrus.Fields{
		"sufficient": report.HasSufficientStock,
		"missing":    len(report.MissingIngredients),
	}).Debug("checked stock availability")

	return report, nil
}
