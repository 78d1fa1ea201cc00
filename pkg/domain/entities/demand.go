package entities

import "github.com/shopspring/decimal"

// DemandLine is the derived quantity of one ingredient an event needs.
// It is computed on demand and never persisted.
type DemandLine struct {
	IngredientID       string          `json:"ingredient_id"`
	IngredientName     string          `json:"ingredient_name,omitempty"`
	UnitID             string          `json:"unit_id"`
	QuantityNeeded     decimal.Decimal `json:"quantity_needed"`
	SafetyBufferPct    decimal.Decimal `json:"safety_buffer_pct"`
	QuantityWithBuffer decimal.Decimal `json:"quantity_with_buffer"`
}

// DemandKey identifies the aggregation bucket of a demand contribution
type DemandKey struct {
	IngredientID string
	UnitID       string
}

// Key returns the aggregation key of the line
func (l DemandLine) Key() DemandKey {
	return DemandKey{IngredientID: l.IngredientID, UnitID: l.UnitID}
}
