package csv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/kitchenplan/pkg/domain/entities"
)

const scenarioDir = "../../../../testdata/kitchen"

func TestLoader_LoadScenario(t *testing.T) {
	scenario, err := NewLoader().LoadScenario(scenarioDir)
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}

	if len(scenario.Families) != 4 || len(scenario.Suppliers) != 4 || len(scenario.Ingredients) != 7 {
		t.Errorf("Unexpected master data counts: %d families, %d suppliers, %d ingredients",
			len(scenario.Families), len(scenario.Suppliers), len(scenario.Ingredients))
	}

	dairy := scenario.Families[1]
	if dairy.ID != "DAIRY" || dairy.SafetyBufferPct != nil {
		t.Errorf("Expected DAIRY family without buffer, got %+v", dairy)
	}

	supplier := scenario.Suppliers[1]
	if supplier.CutOffTime == nil || supplier.CutOffTime.Hour != 10 {
		t.Errorf("Expected 10:00 cutoff, got %v", supplier.CutOffTime)
	}
	if len(supplier.DeliveryDays) != 2 || supplier.DeliveryDays[0] != entities.Tuesday || supplier.DeliveryDays[1] != entities.Friday {
		t.Errorf("Expected Tuesday and Friday delivery, got %v", supplier.DeliveryDays)
	}
	if supplier.Timezone != "Europe/Madrid" {
		t.Errorf("Expected Europe/Madrid timezone, got %q", supplier.Timezone)
	}

	risotto := scenario.Recipes[0]
	if risotto.Servings != 4 || len(risotto.Lines) != 2 {
		t.Errorf("Expected RISOTTO with 4 servings and 2 lines, got %+v", risotto)
	}

	var alc, sports *entities.Event
	for _, event := range scenario.Events {
		switch event.ID {
		case "ALC_1":
			alc = event
		case "SPORTS_1":
			sports = event
		}
	}
	if alc == nil || alc.Type != entities.EventALaCarte || len(alc.MenuLines) != 2 {
		t.Fatalf("Unexpected ALC_1 event: %+v", alc)
	}
	if alc.MenuLines[0].ForecastQty == nil || !alc.MenuLines[0].ForecastQty.Equal(decimal.NewFromInt(35)) {
		t.Errorf("Expected STEAK forecast 35, got %v", alc.MenuLines[0].ForecastQty)
	}
	if alc.MenuLines[1].ForecastQty != nil {
		t.Errorf("Expected SALAD without forecast, got %v", alc.MenuLines[1].ForecastQty)
	}
	if sports == nil || len(sports.DirectIngredientLines) != 1 || sports.DirectIngredientLines[0].UnitID != "pc" {
		t.Errorf("Expected one direct BANANA line on SPORTS_1, got %+v", sports)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoader_Errors(t *testing.T) {
	loader := NewLoader()

	tests := []struct {
		name    string
		load    func(dir string) error
		wantErr string
	}{
		{
			name: "missing_file",
			load: func(dir string) error {
				_, err := loader.LoadFamilies(filepath.Join(dir, "nope.csv"))
				return err
			},
			wantErr: "failed to open families file",
		},
		{
			name: "header_mismatch",
			load: func(dir string) error {
				_, err := loader.LoadFamilies(writeFile(t, dir, "f.csv", "id,label,buffer\nVEG,Veg,1\n"))
				return err
			},
			wantErr: "header mismatch",
		},
		{
			name: "buffer_below_one",
			load: func(dir string) error {
				_, err := loader.LoadFamilies(writeFile(t, dir, "f.csv", "id,name,safety_buffer_pct\nVEG,Veg,0.9\n"))
				return err
			},
			wantErr: "families CSV row 2",
		},
		{
			name: "invalid_weekday",
			load: func(dir string) error {
				_, err := loader.LoadSuppliers(writeFile(t, dir, "s.csv",
					"id,name,lead_time_days,cut_off_time,delivery_days,timezone\nS1,Sup,1,,1|9,\n"))
				return err
			},
			wantErr: "delivery day must be between 1 and 7",
		},
		{
			name: "invalid_cutoff",
			load: func(dir string) error {
				_, err := loader.LoadSuppliers(writeFile(t, dir, "s.csv",
					"id,name,lead_time_days,cut_off_time,delivery_days,timezone\nS1,Sup,1,25:00,1,\n"))
				return err
			},
			wantErr: "invalid time of day",
		},
		{
			name: "line_for_unknown_event",
			load: func(dir string) error {
				events := writeFile(t, dir, "e.csv", "id,organization_id,name,type,pax\nE1,ORG,Gala,BANQUET,10\n")
				lines := writeFile(t, dir, "l.csv", "event_id,kind,ref_id,quantity,unit_id\nE2,menu,R1,,\n")
				_, err := loader.LoadEvents(events, lines)
				return err
			},
			wantErr: "unknown event E2",
		},
		{
			name: "invalid_line_kind",
			load: func(dir string) error {
				events := writeFile(t, dir, "e.csv", "id,organization_id,name,type,pax\nE1,ORG,Gala,BANQUET,10\n")
				lines := writeFile(t, dir, "l.csv", "event_id,kind,ref_id,quantity,unit_id\nE1,extra,R1,,\n")
				_, err := loader.LoadEvents(events, lines)
				return err
			},
			wantErr: "invalid kind",
		},
		{
			name: "zero_servings",
			load: func(dir string) error {
				recipes := writeFile(t, dir, "r.csv", "id,name,servings\nR1,Soup,0\n")
				lines := writeFile(t, dir, "rl.csv", "recipe_id,ingredient_id,quantity,unit_id\n")
				_, err := loader.LoadRecipes(recipes, lines)
				return err
			},
			wantErr: "servings must be positive",
		},
		{
			name: "bad_decimal",
			load: func(dir string) error {
				_, err := loader.LoadIngredients(writeFile(t, dir, "i.csv",
					"id,name,unit_id,cost_price,stock_current,family_id,supplier_id\nI1,Salt,kg,cheap,0,,\n"))
				return err
			},
			wantErr: "invalid cost_price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.load(t.TempDir())
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestLoader_HeaderOnlyFilesAreEmpty(t *testing.T) {
	dir := t.TempDir()
	families, err := NewLoader().LoadFamilies(writeFile(t, dir, "f.csv", "ID, Name, Safety_Buffer_Pct\n"))
	if err != nil {
		t.Fatalf("Expected header-only file to load: %v", err)
	}
	if len(families) != 0 {
		t.Errorf("Expected no families, got %d", len(families))
	}
}

func TestLoader_EventTypesAreNormalized(t *testing.T) {
	dir := t.TempDir()
	events := writeFile(t, dir, "e.csv",
		"id,organization_id,name,type,pax\nE1,ORG,Gala,GALA,10\nE2,ORG,Lunch, a_la_carte ,40\n")
	lines := writeFile(t, dir, "l.csv", "event_id,kind,ref_id,quantity,unit_id\n")

	loaded, err := NewLoader().LoadEvents(events, lines)
	if err != nil {
		t.Fatalf("Expected unknown event type to load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(loaded))
	}
	if loaded[0].Type != entities.EventType("GALA") || loaded[0].Type.DemandMode() != entities.HeadcountDriven {
		t.Errorf("Expected GALA to be headcount-driven, got %s (%s)", loaded[0].Type, loaded[0].Type.DemandMode())
	}
	if loaded[1].Type != entities.EventALaCarte {
		t.Errorf("Expected A_LA_CARTE, got %q", loaded[1].Type)
	}
}
