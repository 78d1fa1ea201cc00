package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchenplan/pkg/domain/entities"
)

// PurchaseOrderRepository persists purchase orders and their lines.
// DeletePurchaseOrder removes the header together with any lines already written.
// CreatePurchaseOrderLines sets ID and PurchaseOrderID on the lines it stores.
type PurchaseOrderRepository interface {
	CreatePurchaseOrder(ctx context.Context, order *entities.PurchaseOrder) (string, error)
	DeletePurchaseOrder(ctx context.Context, orderID string) error
	CreatePurchaseOrderLines(ctx context.Context, orderID string, lines []entities.PurchaseOrderLine) error
	UpdatePurchaseOrderTotal(ctx context.Context, orderID string, total decimal.Decimal) error
}
