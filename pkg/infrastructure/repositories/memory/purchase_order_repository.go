package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/kitchenplan/pkg/domain/entities"
	"github.com/vsinha/kitchenplan/pkg/domain/repositories"
)

// Operation names passed to a FailureInjector
const (
	OpCreateOrder = "create_order"
	OpCreateLines = "create_lines"
	OpUpdateTotal = "update_total"
	OpDeleteOrder = "delete_order"
)

// FailureInjector lets callers make a write fail for a given supplier.
// Returning a non-nil error aborts the operation before anything is stored.
type FailureInjector func(op string, supplierID string) error

// PurchaseOrderRepository provides in-memory purchase order storage
type PurchaseOrderRepository struct {
	mutex  sync.RWMutex
	orders map[string]*entities.PurchaseOrder
	seq    []string // creation order

	injector FailureInjector
}

// NewPurchaseOrderRepository creates a new in-memory purchase order repository
func NewPurchaseOrderRepository() *PurchaseOrderRepository {
	return &PurchaseOrderRepository{
		orders: make(map[string]*entities.PurchaseOrder),
	}
}

// Verify interface compliance
var _ repositories.PurchaseOrderRepository = (*PurchaseOrderRepository)(nil)

// SetFailureInjector installs an injector; nil removes it
func (r *PurchaseOrderRepository) SetFailureInjector(injector FailureInjector) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.injector = injector
}

func (r *PurchaseOrderRepository) inject(op, supplierID string) error {
	if r.injector == nil {
		return nil
	}
	return r.injector(op, supplierID)
}

// CreatePurchaseOrder stores a new header and returns its generated id
func (r *PurchaseOrderRepository) CreatePurchaseOrder(ctx context.Context, order *entities.PurchaseOrder) (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.inject(OpCreateOrder, order.SupplierID); err != nil {
		return "", err
	}

	stored := *order
	stored.ID = uuid.New().String()
	stored.Lines = nil
	r.orders[stored.ID] = &stored
	r.seq = append(r.seq, stored.ID)
	return stored.ID, nil
}

// DeletePurchaseOrder removes a header and its lines
func (r *PurchaseOrderRepository) DeletePurchaseOrder(ctx context.Context, orderID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	order, exists := r.orders[orderID]
	if !exists {
		return fmt.Errorf("purchase order %s: %w", orderID, repositories.ErrNotFound)
	}
	if err := r.inject(OpDeleteOrder, order.SupplierID); err != nil {
		return err
	}

	delete(r.orders, orderID)
	for i, id := range r.seq {
		if id == orderID {
			r.seq = append(r.seq[:i], r.seq[i+1:]...)
			break
		}
	}
	return nil
}

// CreatePurchaseOrderLines stores all lines of an order or none of them
func (r *PurchaseOrderRepository) CreatePurchaseOrderLines(ctx context.Context, orderID string, lines []entities.PurchaseOrderLine) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	order, exists := r.orders[orderID]
	if !exists {
		return fmt.Errorf("purchase order %s: %w", orderID, repositories.ErrNotFound)
	}
	if err := r.inject(OpCreateLines, order.SupplierID); err != nil {
		return err
	}

	for i := range lines {
		lines[i].ID = uuid.New().String()
		lines[i].PurchaseOrderID = orderID
		order.Lines = append(order.Lines, lines[i])
	}
	return nil
}

// UpdatePurchaseOrderTotal sets the total cost on a header
func (r *PurchaseOrderRepository) UpdatePurchaseOrderTotal(ctx context.Context, orderID string, total decimal.Decimal) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	order, exists := r.orders[orderID]
	if !exists {
		return fmt.Errorf("purchase order %s: %w", orderID, repositories.ErrNotFound)
	}
	if err := r.inject(OpUpdateTotal, order.SupplierID); err != nil {
		return err
	}

	order.TotalCost = total
	return nil
}

// GetPurchaseOrder returns a stored order with its lines
func (r *PurchaseOrderRepository) GetPurchaseOrder(orderID string) (*entities.PurchaseOrder, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	order, exists := r.orders[orderID]
	if !exists {
		return nil, fmt.Errorf("purchase order %s: %w", orderID, repositories.ErrNotFound)
	}
	copied := *order
	copied.Lines = append([]entities.PurchaseOrderLine(nil), order.Lines...)
	return &copied, nil
}

// GetAllPurchaseOrders returns every stored order in creation order
func (r *PurchaseOrderRepository) GetAllPurchaseOrders() []*entities.PurchaseOrder {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	orders := make([]*entities.PurchaseOrder, 0, len(r.seq))
	for _, id := range r.seq {
		copied := *r.orders[id]
		copied.Lines = append([]entities.PurchaseOrderLine(nil), r.orders[id].Lines...)
		orders = append(orders, &copied)
	}
	return orders
}

// GetPurchaseOrdersByEvent returns the orders generated for an event, sorted by supplier id
func (r *PurchaseOrderRepository) GetPurchaseOrdersByEvent(eventID string) []*entities.PurchaseOrder {
	var orders []*entities.PurchaseOrder
	for _, order := range r.GetAllPurchaseOrders() {
		if order.EventID == eventID {
			orders = append(orders, order)
		}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].SupplierID < orders[j].SupplierID
	})
	return orders
}
