package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. KITCHENPLAN_DATABASE_URL
const EnvPrefix = "KITCHENPLAN"

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

type ScenarioConfig struct {
	Dir string `mapstructure:"dir"`
}

type PlanningConfig struct {
	DefaultBufferPct decimal.Decimal `mapstructure:"default_buffer_pct"`
	DirectLinePolicy string          `mapstructure:"direct_line_policy"`
}

type DeliveryConfig struct {
	DefaultTimezone string `mapstructure:"default_timezone"`
}

type ProcurementConfig struct {
	MaxConcurrentGroups int `mapstructure:"max_concurrent_groups"`
}

type EventsConfig struct {
	Retention int `mapstructure:"retention"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Scenario    ScenarioConfig    `mapstructure:"scenario"`
	Planning    PlanningConfig    `mapstructure:"planning"`
	Delivery    DeliveryConfig    `mapstructure:"delivery"`
	Procurement ProcurementConfig `mapstructure:"procurement"`
	Events      EventsConfig      `mapstructure:"events"`
	HTTP        HTTPConfig        `mapstructure:"http"`
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 0)
	v.SetDefault("database.max_conn_lifetime", "30m")
	v.SetDefault("scenario.dir", "testdata/kitchen")
	v.SetDefault("planning.default_buffer_pct", "1.10")
	v.SetDefault("planning.direct_line_policy", "sports_only")
	v.SetDefault("delivery.default_timezone", "UTC")
	v.SetDefault("procurement.max_concurrent_groups", 1)
	v.SetDefault("events.retention", 10000)
	v.SetDefault("http.addr", ":8080")
}

// Load reads .env (if present), the optional config file and KITCHENPLAN_* variables into a Config
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			stringToDecimalHookFunc(),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks values the services cannot recover from
func (c *Config) Validate() error {
	if c.Planning.DefaultBufferPct.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("planning.default_buffer_pct must be at least 1.0, got %s", c.Planning.DefaultBufferPct)
	}
	if _, err := time.LoadLocation(c.Delivery.DefaultTimezone); err != nil {
		return fmt.Errorf("delivery.default_timezone: %w", err)
	}
	if c.Procurement.MaxConcurrentGroups < 1 {
		return fmt.Errorf("procurement.max_concurrent_groups must be positive, got %d", c.Procurement.MaxConcurrentGroups)
	}
	if c.Events.Retention < 1 {
		return fmt.Errorf("events.retention must be positive, got %d", c.Events.Retention)
	}
	return nil
}

// Location returns the default delivery calendar
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Delivery.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func stringToDecimalHookFunc() mapstructure.DecodeHookFuncType {
	decimalType := reflect.TypeOf(decimal.Decimal{})
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != decimalType {
			return data, nil
		}
		switch value := data.(type) {
		case string:
			return decimal.NewFromString(strings.TrimSpace(value))
		case float64:
			return decimal.NewFromFloat(value), nil
		case int:
			return decimal.NewFromInt(int64(value)), nil
		}
		return data, nil
	}
}
