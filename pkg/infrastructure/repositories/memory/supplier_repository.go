package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsinha/kitchenplan/pkg/domain/entities"
	"github.com/vsinha/kitchenplan/pkg/domain/repositories"
)

// SupplierRepository provides in-memory supplier storage
type SupplierRepository struct {
	mutex     sync.RWMutex
	suppliers map[string]entities.Supplier
}

// NewSupplierRepository creates a new in-memory supplier repository
func NewSupplierRepository() *SupplierRepository {
	return &SupplierRepository{
		suppliers: make(map[string]entities.Supplier),
	}
}

// Verify interface compliance
var _ repositories.SupplierRepository = (*SupplierRepository)(nil)

// LoadSuppliers loads suppliers into the repository
func (r *SupplierRepository) LoadSuppliers(suppliers []*entities.Supplier) error {
	for _, supplier := range suppliers {
		r.AddSupplier(*supplier)
	}
	return nil
}

// AddSupplier adds or replaces a supplier
func (r *SupplierRepository) AddSupplier(supplier entities.Supplier) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.suppliers[supplier.ID] = supplier
}

// GetSupplier returns a supplier's delivery terms
func (r *SupplierRepository) GetSupplier(ctx context.Context, supplierID string) (*entities.Supplier, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	supplier, exists := r.suppliers[supplierID]
	if !exists {
		return nil, fmt.Errorf("supplier %s: %w", supplierID, repositories.ErrNotFound)
	}
	supplier.DeliveryDays = append([]entities.Weekday(nil), supplier.DeliveryDays...)
	return &supplier, nil
}
