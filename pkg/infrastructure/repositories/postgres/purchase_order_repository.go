package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vsinha/kitchenplan/pkg/domain/entities"
	"github.com/vsinha/kitchenplan/pkg/domain/repositories"
)

type PurchaseOrderRepository struct {
	pool *pgxpool.Pool
}

func NewPurchaseOrderRepository(pool *pgxpool.Pool) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{pool: pool}
}

var _ repositories.PurchaseOrderRepository = (*PurchaseOrderRepository)(nil)

func (r *PurchaseOrderRepository) CreatePurchaseOrder(ctx context.Context, order *entities.PurchaseOrder) (string, error) {
	query := `
        INSERT INTO purchase_orders (
            organization_id, supplier_id, event_id, status,
            order_date, delivery_date_estimated, total_cost
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7
        )
        RETURNING id::text
    `

	var id string
	err := r.pool.QueryRow(ctx, query,
		order.OrganizationID,
		order.SupplierID,
		order.EventID,
		string(order.Status),
		order.OrderDate,
		order.DeliveryDateEstimated,
		order.TotalCost.String(),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert purchase order: %w", err)
	}
	return id, nil
}

// DeletePurchaseOrder removes the header; lines go with it through ON DELETE CASCADE
func (r *PurchaseOrderRepository) DeletePurchaseOrder(ctx context.Context, orderID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM purchase_orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("delete purchase order %s: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("purchase order %s: %w", orderID, repositories.ErrNotFound)
	}
	return nil
}

// CreatePurchaseOrderLines inserts all lines in one transaction
func (r *PurchaseOrderRepository) CreatePurchaseOrderLines(ctx context.Context, orderID string, lines []entities.PurchaseOrderLine) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO purchase_order_lines (
            purchase_order_id, ingredient_id, unit_id,
            quantity_ordered, unit_price, total
        ) VALUES (
            $1, $2, $3, $4, $5, $6
        )
        RETURNING id::text
    `

	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(query,
			orderID,
			line.IngredientID,
			line.UnitID,
			line.QuantityOrdered.String(),
			line.UnitPrice.String(),
			line.Total.String(),
		)
	}

	ids := make([]string, len(lines))
	results := tx.SendBatch(ctx, batch)
	for i := range lines {
		if err := results.QueryRow().Scan(&ids[i]); err != nil {
			results.Close()
			return fmt.Errorf("insert lines of purchase order %s: %w", orderID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("insert lines of purchase order %s: %w", orderID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	for i := range lines {
		lines[i].ID = ids[i]
		lines[i].PurchaseOrderID = orderID
	}
	return nil
}

func (r *PurchaseOrderRepository) UpdatePurchaseOrderTotal(ctx context.Context, orderID string, total decimal.Decimal) error {
	tag, err := r.pool.Exec(ctx, `UPDATE purchase_orders SET total_cost = $2 WHERE id = $1`, orderID, total.String())
	if err != nil {
		return fmt.Errorf("update total of purchase order %s: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("purchase order %s: %w", orderID, repositories.ErrNotFound)
	}
	return nil
}

// ListByEvent returns the orders generated for an event with their lines, ordered by supplier
func (r *PurchaseOrderRepository) ListByEvent(ctx context.Context, eventID, organizationID string) ([]*entities.PurchaseOrder, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id::text, organization_id, supplier_id, event_id, status,
               order_date, delivery_date_estimated, total_cost
        FROM purchase_orders
        WHERE event_id = $1 AND organization_id = $2
        ORDER BY supplier_id, order_date
    `, eventID, organizationID)
	if err != nil {
		return nil, fmt.Errorf("query purchase orders of event %s: %w", eventID, err)
	}

	var orders []*entities.PurchaseOrder
	byID := make(map[string]*entities.PurchaseOrder)
	for rows.Next() {
		var order entities.PurchaseOrder
		var status string
		if err := rows.Scan(
			&order.ID,
			&order.OrganizationID,
			&order.SupplierID,
			&order.EventID,
			&status,
			&order.OrderDate,
			&order.DeliveryDateEstimated,
			&order.TotalCost,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		order.Status = entities.PurchaseOrderStatus(status)
		orders = append(orders, &order)
		byID[order.ID] = &order
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}

	lineRows, err := r.pool.Query(ctx, `
        SELECT id::text, purchase_order_id::text, ingredient_id, unit_id,
               quantity_ordered, unit_price, total
        FROM purchase_order_lines
        WHERE purchase_order_id = ANY($1::uuid[])
        ORDER BY purchase_order_id, ingredient_id
    `, ids)
	if err != nil {
		return nil, fmt.Errorf("query purchase order lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var line entities.PurchaseOrderLine
		if err := lineRows.Scan(
			&line.ID,
			&line.PurchaseOrderID,
			&line.IngredientID,
			&line.UnitID,
			&line.QuantityOrdered,
			&line.UnitPrice,
			&line.Total,
		); err != nil {
			return nil, fmt.Errorf("scan purchase order line: %w", err)
		}
		if order, ok := byID[line.PurchaseOrderID]; ok {
			order.Lines = append(order.Lines, line)
		}
	}

	return orders, lineRows.Err()
}
