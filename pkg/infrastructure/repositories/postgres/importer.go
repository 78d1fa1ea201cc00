package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	kitchencsv "github.com/vsinha/kitchenplan/pkg/infrastructure/repositories/csv"
)

// ImportScenario upserts a scenario's master data and events in one transaction.
// Lines of the given recipes and events are replaced.
func ImportScenario(ctx context.Context, pool *pgxpool.Pool, scenario *kitchencsv.Scenario) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}

	for _, f := range scenario.Families {
		var buffer any
		if f.SafetyBufferPct != nil {
			buffer = f.SafetyBufferPct.String()
		}
		batch.Queue(`
            INSERT INTO product_families (id, name, safety_buffer_pct) VALUES ($1, $2, $3)
            ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, safety_buffer_pct = EXCLUDED.safety_buffer_pct
        `, f.ID, f.Name, buffer)
	}

	for _, s := range scenario.Suppliers {
		days := make([]int16, 0, len(s.DeliveryDays))
		for _, d := range s.DeliveryDays {
			days = append(days, int16(d))
		}
		batch.Queue(`
            INSERT INTO suppliers (id, name, lead_time_days, cut_off_time, delivery_days, timezone)
            VALUES ($1, $2, $3, $4, $5, $6)
            ON CONFLICT (id) DO UPDATE SET
                name = EXCLUDED.name,
                lead_time_days = EXCLUDED.lead_time_days,
                cut_off_time = EXCLUDED.cut_off_time,
                delivery_days = EXCLUDED.delivery_days,
                timezone = EXCLUDED.timezone
        `, s.ID, s.Name, s.LeadTimeDays, timeOfDayToPg(s.CutOffTime), days, s.Timezone)
	}

	for _, i := range scenario.Ingredients {
		batch.Queue(`
            INSERT INTO ingredients (id, name, unit_id, cost_price, stock_current, family_id, supplier_id)
            VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))
            ON CONFLICT (id) DO UPDATE SET
                name = EXCLUDED.name,
                unit_id = EXCLUDED.unit_id,
                cost_price = EXCLUDED.cost_price,
                stock_current = EXCLUDED.stock_current,
                family_id = EXCLUDED.family_id,
                supplier_id = EXCLUDED.supplier_id
        `, i.ID, i.Name, i.UnitID, i.CostPrice.String(), i.StockCurrent.String(), i.FamilyID, i.SupplierID)
	}

	for _, r := range scenario.Recipes {
		batch.Queue(`
            INSERT INTO recipes (id, name, servings) VALUES ($1, $2, $3)
            ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, servings = EXCLUDED.servings
        `, r.ID, r.Name, r.Servings)
		batch.Queue(`DELETE FROM recipe_lines WHERE recipe_id = $1`, r.ID)
		for pos, line := range r.Lines {
			batch.Queue(`
                INSERT INTO recipe_lines (recipe_id, position, ingredient_id, quantity, unit_id)
                VALUES ($1, $2, $3, $4, $5)
            `, r.ID, pos+1, line.IngredientID, line.Quantity.String(), line.UnitID)
		}
	}

	for _, e := range scenario.Events {
		batch.Queue(`
            INSERT INTO events (id, organization_id, name, type, pax) VALUES ($1, $2, $3, $4, $5)
            ON CONFLICT (id) DO UPDATE SET
                organization_id = EXCLUDED.organization_id,
                name = EXCLUDED.name,
                type = EXCLUDED.type,
                pax = EXCLUDED.pax,
                deleted_at = NULL
        `, e.ID, e.OrganizationID, e.Name, string(e.Type), e.Pax)
		batch.Queue(`DELETE FROM event_menu_lines WHERE event_id = $1`, e.ID)
		batch.Queue(`DELETE FROM event_direct_lines WHERE event_id = $1`, e.ID)
		for pos, line := range e.MenuLines {
			var forecast any
			if line.ForecastQty != nil {
				forecast = line.ForecastQty.String()
			}
			batch.Queue(`
                INSERT INTO event_menu_lines (event_id, position, recipe_id, forecast_qty)
                VALUES ($1, $2, $3, $4)
            `, e.ID, pos+1, line.RecipeID, forecast)
		}
		for pos, line := range e.DirectIngredientLines {
			batch.Queue(`
                INSERT INTO event_direct_lines (event_id, position, ingredient_id, quantity, unit_id)
                VALUES ($1, $2, $3, $4, $5)
            `, e.ID, pos+1, line.IngredientID, line.Quantity.String(), line.UnitID)
		}
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("import scenario: %w", err)
	}

	return tx.Commit(ctx)
}
