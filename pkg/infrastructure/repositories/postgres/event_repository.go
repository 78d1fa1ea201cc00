package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vsinha/kitchenplan/pkg/domain/entities"
	"github.com/vsinha/kitchenplan/pkg/domain/repositories"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

var _ repositories.EventRepository = (*EventRepository)(nil)

// GetEvent loads an event with its lines. Soft-deleted events and events of other
// organizations are reported as not found.
func (r *EventRepository) GetEvent(ctx context.Context, eventID, organizationID string) (*entities.Event, error) {
	query := `
        SELECT id, organization_id, name, type, pax
        FROM events
        WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
    `

	var event entities.Event
	var eventType string
	err := r.pool.QueryRow(ctx, query, eventID, organizationID).Scan(
		&event.ID,
		&event.OrganizationID,
		&event.Name,
		&eventType,
		&event.Pax,
	)
	if isNoRows(err) {
		return nil, fmt.Errorf("event %s: %w", eventID, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query event %s: %w", eventID, err)
	}
	event.Type = entities.NormalizeEventType(eventType)

	if event.MenuLines, err = r.menuLines(ctx, eventID); err != nil {
		return nil, err
	}
	if event.DirectIngredientLines, err = r.directLines(ctx, eventID); err != nil {
		return nil, err
	}

	return &event, nil
}

func (r *EventRepository) menuLines(ctx context.Context, eventID string) ([]entities.MenuLine, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT recipe_id, forecast_qty
        FROM event_menu_lines
        WHERE event_id = $1
        ORDER BY position
    `, eventID)
	if err != nil {
		return nil, fmt.Errorf("query menu lines of event %s: %w", eventID, err)
	}
	defer rows.Close()

	var lines []entities.MenuLine
	for rows.Next() {
		var line entities.MenuLine
		var forecast decimal.NullDecimal
		if err := rows.Scan(&line.RecipeID, &forecast); err != nil {
			return nil, fmt.Errorf("scan menu line: %w", err)
		}
		if forecast.Valid {
			line.ForecastQty = &forecast.Decimal
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *EventRepository) directLines(ctx context.Context, eventID string) ([]entities.DirectIngredientLine, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT ingredient_id, quantity, unit_id
        FROM event_direct_lines
        WHERE event_id = $1
        ORDER BY position
    `, eventID)
	if err != nil {
		return nil, fmt.Errorf("query direct lines of event %s: %w", eventID, err)
	}
	defer rows.Close()

	var lines []entities.DirectIngredientLine
	for rows.Next() {
		var line entities.DirectIngredientLine
		if err := rows.Scan(&line.IngredientID, &line.Quantity, &line.UnitID); err != nil {
			return nil, fmt.Errorf("scan direct line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// SoftDelete marks an event deleted
func (r *EventRepository) SoftDelete(ctx context.Context, eventID, organizationID string) error {
	tag, err := r.pool.Exec(ctx, `
        UPDATE events SET deleted_at = now()
        WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
    `, eventID, organizationID)
	if err != nil {
		return fmt.Errorf("soft delete event %s: %w", eventID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event %s: %w", eventID, repositories.ErrNotFound)
	}
	return nil
}
