package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultSafetyBufferPct is applied when an ingredient has no family or the family sets none
var DefaultSafetyBufferPct = decimal.RequireFromString("1.10")

// ProductFamily groups ingredients that share a safety buffer
type ProductFamily struct {
	ID   string
	Name string
	// SafetyBufferPct is a multiplier >= 1.0; nil when the family does not set one
	SafetyBufferPct *decimal.Decimal
}

// Ingredient represents a purchasable ingredient
type Ingredient struct {
	ID           string
	Name         string
	UnitID       string
	CostPrice    decimal.Decimal
	StockCurrent decimal.Decimal
	FamilyID     string // empty when the ingredient has no family
	SupplierID   string // empty when no default supplier is set
}

// NewIngredient creates a validated Ingredient
func NewIngredient(id, name, unitID string, costPrice, stockCurrent decimal.Decimal, familyID, supplierID string) (*Ingredient, error) {
	if id == "" {
		return nil, fmt.Errorf("ingredient id cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("ingredient name cannot be empty")
	}
	if costPrice.IsNegative() {
		return nil, fmt.Errorf("cost price cannot be negative, got %s", costPrice)
	}

	return &Ingredient{
		ID:           id,
		Name:         name,
		UnitID:       unitID,
		CostPrice:    costPrice,
		StockCurrent: stockCurrent,
		FamilyID:     familyID,
		SupplierID:   supplierID,
	}, nil
}

// NewProductFamily creates a validated ProductFamily
func NewProductFamily(id, name string, safetyBufferPct *decimal.Decimal) (*ProductFamily, error) {
	if id == "" {
		return nil, fmt.Errorf("product family id cannot be empty")
	}
	if safetyBufferPct != nil && safetyBufferPct.LessThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("safety buffer must be at least 1.0, got %s", safetyBufferPct)
	}

	return &ProductFamily{
		ID:              id,
		Name:            name,
		SafetyBufferPct: safetyBufferPct,
	}, nil
}

// EffectiveSafetyBuffer returns the family's buffer or the fallback when none is set
func (f *ProductFamily) EffectiveSafetyBuffer(fallback decimal.Decimal) decimal.Decimal {
	if f == nil || f.SafetyBufferPct == nil {
		return fallback
	}
	return *f.SafetyBufferPct
}
