package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types published by the procurement orchestrator
const (
	TypePurchaseOrderCreated     = "purchase_order.created"
	TypePurchaseOrderCompensated = "purchase_order.compensated"
	TypeSupplierGroupFailed      = "supplier_group.failed"
	TypeStockShortageIdentified  = "stock.shortage_identified"
)

// ProcurementTypes lists every procurement event type
var ProcurementTypes = []string{
	TypePurchaseOrderCreated,
	TypePurchaseOrderCompensated,
	TypeSupplierGroupFailed,
	TypeStockShortageIdentified,
}

type PurchaseOrderCreated struct {
	PurchaseOrderID       string          `json:"purchase_order_id"`
	OrganizationID        string          `json:"organization_id"`
	SupplierID            string          `json:"supplier_id"`
	Lines                 int             `json:"lines"`
	TotalCost             decimal.Decimal `json:"total_cost"`
	DeliveryDateEstimated time.Time       `json:"delivery_date_estimated"`
}

// PurchaseOrderCompensated records a header deleted after a later step failed
type PurchaseOrderCompensated struct {
	PurchaseOrderID string `json:"purchase_order_id"`
	SupplierID      string `json:"supplier_id"`
	FailedStep      string `json:"failed_step"`
}

type SupplierGroupFailed struct {
	SupplierID string `json:"supplier_id"`
	Step       string `json:"step"`
	Error      string `json:"error"`
}

type StockShortageIdentified struct {
	IngredientID string          `json:"ingredient_id"`
	UnitID       string          `json:"unit_id"`
	Required     decimal.Decimal `json:"required"`
	Available    decimal.Decimal `json:"available"`
	Shortage     decimal.Decimal `json:"shortage"`
}

func PurchaseOrderCreatedFor(eventID string, data PurchaseOrderCreated) Event {
	return New(TypePurchaseOrderCreated, eventID, data)
}

func PurchaseOrderCompensatedFor(eventID string, data PurchaseOrderCompensated) Event {
	return New(TypePurchaseOrderCompensated, eventID, data)
}

func SupplierGroupFailedFor(eventID string, data SupplierGroupFailed) Event {
	return New(TypeSupplierGroupFailed, eventID, data)
}

func StockShortageIdentifiedFor(eventID string, data StockShortageIdentified) Event {
	return New(TypeStockShortageIdentified, eventID, data)
}
