package procurement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/kitchenplan/pkg/application/dto"
	"github.com/vsinha/kitchenplan/pkg/domain/entities"
	"github.com/vsinha/kitchenplan/pkg/domain/repositories"
	"github.com/vsinha/kitchenplan/pkg/infrastructure/events"
)

// DemandCalculator produces buffered ingredient demand for an event
type DemandCalculator interface {
	CalculateEventDemand(ctx context.Context, eventID, organizationID string) ([]entities.DemandLine, error)
}

// DeliveryEstimator dates a supplier's order
type DeliveryEstimator interface {
	EstimateForSupplier(supplier *entities.Supplier, orderInstant time.Time) (time.Time, error)
	Now() time.Time
}

// Orchestrator turns event demand into per-supplier purchase orders
type Orchestrator struct {
	demand      DemandCalculator
	delivery    DeliveryEstimator
	ingredients repositories.IngredientRepository
	suppliers   repositories.SupplierRepository
	orders      repositories.PurchaseOrderRepository
	publisher   events.Publisher
	maxGroups   int
	log         logrus.FieldLogger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithPublisher records procurement events in the given store
func WithPublisher(publisher events.Publisher) Option {
	return func(o *Orchestrator) {
		o.publisher = publisher
	}
}

// WithMaxConcurrentGroups processes up to n supplier groups at once; n <= 1 is sequential
func WithMaxConcurrentGroups(n int) Option {
	return func(o *Orchestrator) {
		if n < 1 {
			n = 1
		}
		o.maxGroups = n
	}
}

// NewOrchestrator creates a new procurement orchestrator
func NewOrchestrator(
	demand DemandCalculator,
	delivery DeliveryEstimator,
	ingredients repositories.IngredientRepository,
	suppliers repositories.SupplierRepository,
	orders repositories.PurchaseOrderRepository,
	log logrus.FieldLogger,
	opts ...Option,
) *Orchestrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	o := &Orchestrator{
		demand:      demand,
		delivery:    delivery,
		ingredients: ingredients,
		suppliers:   suppliers,
		orders:      orders,
		maxGroups:   1,
		log:         log.WithField("component", "procurement"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// supplierGroup is the demand one supplier is asked to cover
type supplierGroup struct {
	supplierID string
	lines      []pricedLine
}

type pricedLine struct {
	demand    entities.DemandLine
	unitPrice decimal.Decimal
}

// GenerateFromEvent creates one DRAFT purchase order per supplier for the event's demand.
// Supplier groups that fail are left out of the result; see GenerateFromEventDetailed.
func (o *Orchestrator) GenerateFromEvent(ctx context.Context, eventID, organizationID string) ([]dto.PurchaseOrderSummary, error) {
	result, err := o.GenerateFromEventDetailed(ctx, eventID, organizationID)
	if err != nil {
		return nil, err
	}
	return result.Orders, nil
}

// GenerateFromEventDetailed is GenerateFromEvent with the failed and unsourced groups reported.
// Calling it twice for the same event creates duplicate orders.
func (o *Orchestrator) GenerateFromEventDetailed(ctx context.Context, eventID, organizationID string) (*dto.GenerationResult, error) {
	log := o.log.WithFields(logrus.Fields{
		"event_id":        eventID,
		"organization_id": organizationID,
	})

	demandLines, err := o.demand.CalculateEventDemand(ctx, eventID, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate demand: %w", err)
	}

	result := &dto.GenerationResult{
		EventID: eventID,
		Orders:  []dto.PurchaseOrderSummary{},
	}
	if len(demandLines) == 0 {
		log.Info("event has no demand, no purchase orders generated")
		return result, nil
	}

	groups, unsourced, err := o.groupBySupplier(ctx, demandLines)
	if err != nil {
		return nil, err
	}
	for _, line := range unsourced {
		log.WithField("ingredient_id", line.IngredientID).Warn("ingredient has no supplier, not ordered")
	}
	result.Unsourced = unsourced

	orderDate := o.delivery.Now()
	outcomes := make([]groupOutcome, len(groups))

	var g errgroup.Group
	g.SetLimit(o.maxGroups)
	for i := range groups {
		i := i
		g.Go(func() error {
			outcomes[i] = o.processGroup(ctx, log, eventID, organizationID, groups[i], orderDate)
			return nil
		})
	}
	_ = g.Wait()

	for _, outcome := range outcomes {
		if outcome.failure != nil {
			result.Failures = append(result.Failures, *outcome.failure)
			continue
		}
		result.Orders = append(result.Orders, *outcome.summary)
	}

	log.WithFields(logrus.Fields{
		"orders":    len(result.Orders),
		"failures":  len(result.Failures),
		"unsourced": len(result.Unsourced),
	}).Info("generated purchase orders")

	return result, nil
}

// groupBySupplier resolves each line's supplier and price, keeping first-seen supplier order.
// Lookup failures other than NotFound abort before anything is written.
func (o *Orchestrator) groupBySupplier(ctx context.Context, demandLines []entities.DemandLine) ([]*supplierGroup, []entities.DemandLine, error) {
	var groups []*supplierGroup
	var unsourced []entities.DemandLine
	index := make(map[string]*supplierGroup)

	for _, line := range demandLines {
		ingredient, err := o.ingredients.GetIngredient(ctx, line.IngredientID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				unsourced = append(unsourced, line)
				continue
			}
			return nil, nil, fmt.Errorf("failed to load ingredient %s: %w", line.IngredientID, err)
		}
		if ingredient.SupplierID == "" {
			unsourced = append(unsourced, line)
			continue
		}

		group, exists := index[ingredient.SupplierID]
		if !exists {
			group = &supplierGroup{supplierID: ingredient.SupplierID}
			index[ingredient.SupplierID] = group
			groups = append(groups, group)
		}
		group.lines = append(group.lines, pricedLine{demand: line, unitPrice: ingredient.CostPrice})
	}

	return groups, unsourced, nil
}

type groupOutcome struct {
	summary *dto.PurchaseOrderSummary
	failure *dto.GroupFailure
}

// processGroup writes header, lines and total for one supplier. Any failure after the
// header exists deletes the header again so the group leaves nothing behind.
func (o *Orchestrator) processGroup(
	ctx context.Context,
	log logrus.FieldLogger,
	eventID, organizationID string,
	group *supplierGroup,
	orderDate time.Time,
) groupOutcome {
	log = log.WithField("supplier_id", group.supplierID)

	fail := func(step string, err error, orphanID string) groupOutcome {
		entry := log.WithField("step", step).WithError(err)
		if orphanID != "" {
			entry = entry.WithField("purchase_order_id", orphanID)
		}
		entry.Error("supplier group failed")
		o.publish(log, events.SupplierGroupFailedFor(eventID, events.SupplierGroupFailed{
			SupplierID: group.supplierID,
			Step:       step,
			Error:      err.Error(),
		}))
		return groupOutcome{failure: &dto.GroupFailure{
			SupplierID:    group.supplierID,
			Step:          step,
			Error:         err.Error(),
			OrphanOrderID: orphanID,
		}}
	}

	supplier, err := o.suppliers.GetSupplier(ctx, group.supplierID)
	if err != nil {
		return fail(dto.StepResolveSupplier, err, "")
	}

	deliveryDate, err := o.delivery.EstimateForSupplier(supplier, orderDate)
	if err != nil {
		return fail(dto.StepEstimateDelivery, err, "")
	}

	lines := make([]entities.PurchaseOrderLine, 0, len(group.lines))
	for _, priced := range group.lines {
		line, err := entities.NewPurchaseOrderLine(
			priced.demand.IngredientID,
			priced.demand.UnitID,
			priced.demand.QuantityWithBuffer,
			priced.unitPrice,
		)
		if err != nil {
			return fail(dto.StepCreateLines, err, "")
		}
		lines = append(lines, *line)
	}
	total := entities.SumLineTotals(lines)

	orderID, err := o.orders.CreatePurchaseOrder(ctx, &entities.PurchaseOrder{
		OrganizationID:        organizationID,
		SupplierID:            supplier.ID,
		EventID:               eventID,
		Status:                entities.PurchaseOrderDraft,
		OrderDate:             orderDate,
		DeliveryDateEstimated: deliveryDate,
	})
	if err != nil {
		return fail(dto.StepCreateOrder, err, "")
	}
	log = log.WithField("purchase_order_id", orderID)

	if err := o.orders.CreatePurchaseOrderLines(ctx, orderID, lines); err != nil {
		return fail(dto.StepCreateLines, err, o.compensate(ctx, log, eventID, orderID, supplier.ID, dto.StepCreateLines))
	}

	if err := o.orders.UpdatePurchaseOrderTotal(ctx, orderID, total); err != nil {
		return fail(dto.StepUpdateTotal, err, o.compensate(ctx, log, eventID, orderID, supplier.ID, dto.StepUpdateTotal))
	}

	log.WithFields(logrus.Fields{
		"lines":      len(lines),
		"total_cost": total.String(),
	}).Info("created purchase order")

	o.publish(log, events.PurchaseOrderCreatedFor(eventID, events.PurchaseOrderCreated{
		PurchaseOrderID:       orderID,
		OrganizationID:        organizationID,
		SupplierID:            supplier.ID,
		Lines:                 len(lines),
		TotalCost:             total,
		DeliveryDateEstimated: deliveryDate,
	}))

	return groupOutcome{summary: &dto.PurchaseOrderSummary{
		ID:                    orderID,
		SupplierID:            supplier.ID,
		SupplierName:          supplier.Name,
		Items:                 lines,
		TotalCost:             total,
		DeliveryDateEstimated: deliveryDate,
	}}
}

// compensate deletes a header written earlier in the group. It returns the order id
// when the delete itself failed and the header is left behind.
func (o *Orchestrator) compensate(ctx context.Context, log logrus.FieldLogger, eventID, orderID, supplierID, failedStep string) string {
	if err := o.orders.DeletePurchaseOrder(context.WithoutCancel(ctx), orderID); err != nil {
		log.WithError(err).Error("compensating delete failed, purchase order left behind")
		return orderID
	}

	log.WithField("failed_step", failedStep).Warn("purchase order rolled back")
	o.publish(log, events.PurchaseOrderCompensatedFor(eventID, events.PurchaseOrderCompensated{
		PurchaseOrderID: orderID,
		SupplierID:      supplierID,
		FailedStep:      failedStep,
	}))
	return ""
}

func (o *Orchestrator) publish(log logrus.FieldLogger, event events.Event) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(event); err != nil {
		log.WithError(err).WithField("event_type", event.Type).Warn("failed to publish event")
	}
}
