package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.Planning.DefaultBufferPct.Equal(decimal.RequireFromString("1.10")) {
		t.Errorf("Expected default buffer 1.10, got %s", cfg.Planning.DefaultBufferPct)
	}
	if cfg.Planning.DirectLinePolicy != "sports_only" {
		t.Errorf("Expected sports_only policy, got %q", cfg.Planning.DirectLinePolicy)
	}
	if cfg.Database.MaxConnLifetime != 30*time.Minute {
		t.Errorf("Expected 30m connection lifetime, got %s", cfg.Database.MaxConnLifetime)
	}
	if cfg.Procurement.MaxConcurrentGroups != 1 || cfg.HTTP.Addr != ":8080" || cfg.Events.Retention != 10000 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if cfg.Location() != time.UTC {
		t.Errorf("Expected UTC default location, got %s", cfg.Location())
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("KITCHENPLAN_DATABASE_URL", "postgres://kitchen@localhost/kitchen")
	t.Setenv("KITCHENPLAN_PLANNING_DEFAULT_BUFFER_PCT", "1.25")
	t.Setenv("KITCHENPLAN_PROCUREMENT_MAX_CONCURRENT_GROUPS", "4")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.URL != "postgres://kitchen@localhost/kitchen" {
		t.Errorf("Expected database url from env, got %q", cfg.Database.URL)
	}
	if !cfg.Planning.DefaultBufferPct.Equal(decimal.RequireFromString("1.25")) {
		t.Errorf("Expected buffer 1.25, got %s", cfg.Planning.DefaultBufferPct)
	}
	if cfg.Procurement.MaxConcurrentGroups != 4 {
		t.Errorf("Expected 4 concurrent groups, got %d", cfg.Procurement.MaxConcurrentGroups)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kitchenplan.yaml")
	content := `
log:
  level: debug
  format: json
delivery:
  default_timezone: Europe/Madrid
planning:
  direct_line_policy: all
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Unexpected log config: %+v", cfg.Log)
	}
	if cfg.Planning.DirectLinePolicy != "all" {
		t.Errorf("Expected policy all, got %q", cfg.Planning.DirectLinePolicy)
	}
	if cfg.Location().String() != "Europe/Madrid" {
		t.Errorf("Expected Europe/Madrid, got %s", cfg.Location())
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "buffer_below_one", key: "KITCHENPLAN_PLANNING_DEFAULT_BUFFER_PCT", value: "0.95"},
		{name: "unknown_timezone", key: "KITCHENPLAN_DELIVERY_DEFAULT_TIMEZONE", value: "Nowhere/Land"},
		{name: "zero_workers", key: "KITCHENPLAN_PROCUREMENT_MAX_CONCURRENT_GROUPS", value: "0"},
		{name: "zero_retention", key: "KITCHENPLAN_EVENTS_RETENTION", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(viper.New(), ""); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
