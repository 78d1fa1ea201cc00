package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the lifecycle state of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderDraft     PurchaseOrderStatus = "DRAFT"
	PurchaseOrderSent      PurchaseOrderStatus = "SENT"
	PurchaseOrderConfirmed PurchaseOrderStatus = "CONFIRMED"
	PurchaseOrderReceived  PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderCancelled PurchaseOrderStatus = "CANCELLED"
)

// PurchaseOrder is the header of an order placed with one supplier
type PurchaseOrder struct {
	ID                    string
	OrganizationID        string
	SupplierID            string
	EventID               string
	Status                PurchaseOrderStatus
	OrderDate             time.Time
	DeliveryDateEstimated time.Time
	TotalCost             decimal.Decimal
	Lines                 []PurchaseOrderLine
}

// PurchaseOrderLine is one ingredient ordered on a purchase order
type PurchaseOrderLine struct {
	ID              string          `json:"id,omitempty"`
	PurchaseOrderID string          `json:"purchase_order_id,omitempty"`
	IngredientID    string          `json:"ingredient_id"`
	UnitID          string          `json:"unit_id"`
	QuantityOrdered decimal.Decimal `json:"quantity_ordered"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Total           decimal.Decimal `json:"total"`
}

// NewPurchaseOrderLine creates a validated line with Total = QuantityOrdered × UnitPrice
func NewPurchaseOrderLine(ingredientID, unitID string, quantity, unitPrice decimal.Decimal) (*PurchaseOrderLine, error) {
	if ingredientID == "" {
		return nil, fmt.Errorf("ingredient id cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("quantity ordered cannot be negative, got %s", quantity)
	}
	if unitPrice.IsNegative() {
		return nil, fmt.Errorf("unit price cannot be negative, got %s", unitPrice)
	}

	return &PurchaseOrderLine{
		IngredientID:    ingredientID,
		UnitID:          unitID,
		QuantityOrdered: quantity,
		UnitPrice:       unitPrice,
		Total:           quantity.Mul(unitPrice),
	}, nil
}

// SumLineTotals adds up the totals of the given lines
func SumLineTotals(lines []PurchaseOrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Total)
	}
	return total
}
