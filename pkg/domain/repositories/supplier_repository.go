package repositories

import (
	"context"

	"github.com/vsinha/kitchenplan/pkg/domain/entities"
)

// SupplierRepository provides access to supplier delivery terms
type SupplierRepository interface {
	GetSupplier(ctx context.Context, supplierID string) (*entities.Supplier, error)
}
