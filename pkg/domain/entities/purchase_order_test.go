package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPurchaseOrderLine_Total(t *testing.T) {
	line, err := NewPurchaseOrderLine("TOMATO", "kg", decimal.RequireFromString("12.5"), decimal.RequireFromString("2.40"))
	if err != nil {
		t.Fatalf("Expected valid line creation to succeed: %v", err)
	}
	if !line.Total.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Expected total 30, got %s", line.Total)
	}

	testCases := []struct {
		name        string
		ingredient  string
		quantity    decimal.Decimal
		price       decimal.Decimal
		expectError string
	}{
		{"empty ingredient", "", decimal.NewFromInt(1), decimal.NewFromInt(1), "ingredient id cannot be empty"},
		{"negative quantity", "TOMATO", decimal.NewFromInt(-1), decimal.NewFromInt(1), "quantity ordered cannot be negative, got -1"},
		{"negative price", "TOMATO", decimal.NewFromInt(1), decimal.NewFromInt(-2), "unit price cannot be negative, got -2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPurchaseOrderLine(tc.ingredient, "kg", tc.quantity, tc.price)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestSumLineTotals(t *testing.T) {
	lines := []PurchaseOrderLine{
		{Total: decimal.NewFromInt(20)},
		{Total: decimal.NewFromInt(15)},
	}
	if total := SumLineTotals(lines); !total.Equal(decimal.NewFromInt(35)) {
		t.Errorf("Expected 35, got %s", total)
	}
	if total := SumLineTotals(nil); !total.IsZero() {
		t.Errorf("Expected zero for no lines, got %s", total)
	}
}
