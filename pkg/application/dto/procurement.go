package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/kitchenplan/pkg/domain/entities"
)

// Supplier-group steps reported in GroupFailure.Step
const (
	StepResolveSupplier  = "resolve_supplier"
	StepEstimateDelivery = "estimate_delivery"
	StepCreateOrder      = "create_order"
	StepCreateLines      = "create_lines"
	StepUpdateTotal      = "update_total"
)

// PurchaseOrderSummary is the per-supplier result of order generation
type PurchaseOrderSummary struct {
	ID                    string                       `json:"id"`
	SupplierID            string                       `json:"supplier_id"`
	SupplierName          string                       `json:"supplier_name"`
	Items                 []entities.PurchaseOrderLine `json:"items"`
	TotalCost             decimal.Decimal              `json:"total_cost"`
	DeliveryDateEstimated time.Time                    `json:"delivery_date_estimated"`
}

// GroupFailure describes a supplier group that produced no order
type GroupFailure struct {
	SupplierID string `json:"supplier_id"`
	Step       string `json:"step"`
	Error      string `json:"error"`
	// OrphanOrderID is set when the compensating delete also failed
	OrphanOrderID string `json:"orphan_order_id,omitempty"`
}

// GenerationResult is the detailed outcome of generating orders for an event
type GenerationResult struct {
	EventID  string                 `json:"event_id"`
	Orders   []PurchaseOrderSummary `json:"orders"`
	Failures []GroupFailure         `json:"failures,omitempty"`
	// Unsourced holds demand lines whose ingredient has no default supplier
	Unsourced []entities.DemandLine `json:"unsourced,omitempty"`
}

// HasFailures reports whether any supplier group failed
func (r *GenerationResult) HasFailures() bool {
	return len(r.Failures) > 0
}

// MissingIngredient is an ingredient whose stock does not cover buffered demand
type MissingIngredient struct {
	IngredientID string          `json:"ingredient_id"`
	Name         string          `json:"name"`
	UnitID       string          `json:"unit_id"`
	Required     decimal.Decimal `json:"required"`
	Available    decimal.Decimal `json:"available"`
	Shortage     decimal.Decimal `json:"shortage"`
}

// StockAvailability is the advisory stock check for an event
type StockAvailability struct {
	HasSufficientStock bool                `json:"has_sufficient_stock"`
	MissingIngredients []MissingIngredient `json:"missing_ingredients"`
}
