package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/vsinha/kitchenplan/pkg/application/dto"
	"github.com/vsinha/kitchenplan/pkg/domain/entities"
)

// Supported formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Printer renders command results in one format
type Printer struct {
	w      io.Writer
	format string
}

// NewPrinter validates the format and returns a printer writing to w
func NewPrinter(w io.Writer, format string) (*Printer, error) {
	switch format {
	case FormatText, FormatJSON, FormatCSV:
		return &Printer{w: w, format: format}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Demand prints the demand lines of an event
func (p *Printer) Demand(eventID string, lines []entities.DemandLine) error {
	switch p.format {
	case FormatJSON:
		return p.json(map[string]any{"event_id": eventID, "demand": lines})
	case FormatCSV:
		rows := [][]string{{"ingredient_id", "name", "unit_id", "quantity_needed", "safety_buffer_pct", "quantity_with_buffer"}}
		for _, l := range lines {
			rows = append(rows, []string{l.IngredientID, l.IngredientName, l.UnitID,
				l.QuantityNeeded.String(), l.SafetyBufferPct.String(), l.QuantityWithBuffer.String()})
		}
		return p.csv(rows)
	}

	fmt.Fprintf(p.w, "Demand for event %s (%d lines)\n\n", eventID, len(lines))
	if len(lines) == 0 {
		return nil
	}
	fmt.Fprintf(p.w, "%-15s %-20s %-6s %12s %8s %12s\n", "Ingredient", "Name", "Unit", "Needed", "Buffer", "With buffer")
	fmt.Fprintf(p.w, "%-15s %-20s %-6s %12s %8s %12s\n", "---------------", "--------------------", "------", "------------", "--------", "------------")
	for _, l := range lines {
		fmt.Fprintf(p.w, "%-15s %-20s %-6s %12s %8s %12s\n",
			l.IngredientID, l.IngredientName, l.UnitID,
			l.QuantityNeeded.String(), l.SafetyBufferPct.String(), l.QuantityWithBuffer.String())
	}
	return nil
}

// Generation prints the orders and failures of an order generation run
func (p *Printer) Generation(result *dto.GenerationResult) error {
	switch p.format {
	case FormatJSON:
		return p.json(result)
	case FormatCSV:
		rows := [][]string{{"purchase_order_id", "supplier_id", "delivery_date", "ingredient_id", "unit_id", "quantity", "unit_price", "total"}}
		for _, o := range result.Orders {
			for _, item := range o.Items {
				rows = append(rows, []string{o.ID, o.SupplierID, formatDate(o.DeliveryDateEstimated),
					item.IngredientID, item.UnitID, item.QuantityOrdered.String(), item.UnitPrice.String(), item.Total.String()})
			}
		}
		return p.csv(rows)
	}

	fmt.Fprintf(p.w, "Purchase orders for event %s\n", result.EventID)
	fmt.Fprintf(p.w, "Orders: %d  Failed groups: %d  Unsourced lines: %d\n\n",
		len(result.Orders), len(result.Failures), len(result.Unsourced))

	for _, o := range result.Orders {
		fmt.Fprintf(p.w, "%s  %s (%s)  delivery %s  total %s\n",
			o.ID, o.SupplierID, o.SupplierName, formatDate(o.DeliveryDateEstimated), o.TotalCost.StringFixed(2))
		for _, item := range o.Items {
			fmt.Fprintf(p.w, "    %-15s %10s %-6s x %10s = %10s\n",
				item.IngredientID, item.QuantityOrdered.String(), item.UnitID,
				item.UnitPrice.StringFixed(2), item.Total.StringFixed(2))
		}
	}

	if len(result.Failures) > 0 {
		fmt.Fprintf(p.w, "\nFailed supplier groups:\n")
		for _, f := range result.Failures {
			fmt.Fprintf(p.w, "  %-15s %-18s %s", f.SupplierID, f.Step, f.Error)
			if f.OrphanOrderID != "" {
				fmt.Fprintf(p.w, " (orphan order %s)", f.OrphanOrderID)
			}
			fmt.Fprintln(p.w)
		}
	}

	if len(result.Unsourced) > 0 {
		fmt.Fprintf(p.w, "\nIngredients without supplier:\n")
		for _, l := range result.Unsourced {
			fmt.Fprintf(p.w, "  %-15s %10s %s\n", l.IngredientID, l.QuantityWithBuffer.String(), l.UnitID)
		}
	}
	return nil
}

// Stock prints a stock availability report
func (p *Printer) Stock(eventID string, report *dto.StockAvailability) error {
	switch p.format {
	case FormatJSON:
		return p.json(report)
	case FormatCSV:
		rows := [][]string{{"ingredient_id", "name", "unit_id", "required", "available", "shortage"}}
		for _, m := range report.MissingIngredients {
			rows = append(rows, []string{m.IngredientID, m.Name, m.UnitID,
				m.Required.String(), m.Available.String(), m.Shortage.String()})
		}
		return p.csv(rows)
	}

	if report.HasSufficientStock {
		fmt.Fprintf(p.w, "Stock covers event %s\n", eventID)
		return nil
	}
	fmt.Fprintf(p.w, "Shortages for event %s:\n", eventID)
	fmt.Fprintf(p.w, "%-15s %-20s %-6s %12s %12s %12s\n", "Ingredient", "Name", "Unit", "Required", "Available", "Shortage")
	for _, m := range report.MissingIngredients {
		fmt.Fprintf(p.w, "%-15s %-20s %-6s %12s %12s %12s\n",
			m.IngredientID, m.Name, m.UnitID, m.Required.String(), m.Available.String(), m.Shortage.String())
	}
	return nil
}

// Delivery prints a delivery estimate
func (p *Printer) Delivery(supplierID string, orderInstant, deliveryDate time.Time) error {
	switch p.format {
	case FormatJSON:
		return p.json(map[string]any{
			"supplier_id":   supplierID,
			"order_instant": orderInstant,
			"delivery_date": formatDate(deliveryDate),
		})
	case FormatCSV:
		return p.csv([][]string{
			{"supplier_id", "order_instant", "delivery_date"},
			{supplierID, orderInstant.Format(time.RFC3339), formatDate(deliveryDate)},
		})
	}

	fmt.Fprintf(p.w, "Order with %s at %s arrives %s\n",
		supplierID, orderInstant.Format(time.RFC3339), deliveryDate.Format("Mon 2006-01-02"))
	return nil
}

func (p *Printer) json(v any) error {
	encoder := json.NewEncoder(p.w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

func (p *Printer) csv(rows [][]string) error {
	writer := csv.NewWriter(p.w)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
