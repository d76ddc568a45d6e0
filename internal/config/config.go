package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config mirrors the environment-style keys the seeding script has always
// read (MONGO_URI, N_RESTAURANTS, ...). Every key is optional.
type Config struct {
	MongoURI       string `json:"mongo_uri" mapstructure:"mongo_uri"`
	DBNameFallback string `json:"db_name_fallback" mapstructure:"db_name_fallback"`

	Restaurants           int `json:"n_restaurants" mapstructure:"n_restaurants"`
	MaxOutletsPerRest     int `json:"max_outlets_per_rest" mapstructure:"max_outlets_per_rest"`
	MenuItemsPerRest      int `json:"menu_items_per_rest" mapstructure:"menu_items_per_rest"`
	InventoryItemsPerRest int `json:"inventory_items_per_rest" mapstructure:"inventory_items_per_rest"`
	TablesPerOutlet       int `json:"tables_per_outlet" mapstructure:"tables_per_outlet"`
	OrdersPerOutlet       int `json:"orders_per_outlet" mapstructure:"orders_per_outlet"`
	RecipeLines           int `json:"recipe_lines" mapstructure:"recipe_lines"`

	DefaultPassword    string `json:"default_password" mapstructure:"default_password"`
	SuperAdminEmail    string `json:"superadmin_email" mapstructure:"superadmin_email"`
	SuperAdminName     string `json:"superadmin_name" mapstructure:"superadmin_name"`
	SuperAdminPassword string `json:"superadmin_password" mapstructure:"superadmin_password"`

	Seed           int64         `json:"seed" mapstructure:"seed"`
	BcryptCost     int           `json:"bcrypt_cost" mapstructure:"bcrypt_cost"`
	TableStateMode string        `json:"table_state_mode" mapstructure:"table_state_mode"`
	Timeout        time.Duration `json:"timeout" mapstructure:"timeout"`

	LogLevel    string `json:"log_level" mapstructure:"log_level"`
	LogEnv      string `json:"log_env" mapstructure:"log_env"`
	ReportFile  string `json:"report_file" mapstructure:"report_file"`
	MetricsFile string `json:"metrics_file" mapstructure:"metrics_file"`

	ExportDir    string `json:"export_dir" mapstructure:"export_dir"`
	ExportFormat string `json:"export_format" mapstructure:"export_format"`
}

var defaults = map[string]interface{}{
	"mongo_uri":                "mongodb://localhost:27017/pos",
	"db_name_fallback":         "pos",
	"n_restaurants":            5,
	"max_outlets_per_rest":     2,
	"menu_items_per_rest":      60,
	"inventory_items_per_rest": 40,
	"tables_per_outlet":        12,
	"orders_per_outlet":        30,
	"recipe_lines":             4,
	"default_password":         "cashier123",
	"superadmin_email":         "superadmin@example.com",
	"superadmin_name":          "Super Admin",
	"superadmin_password":      "superadmin123",
	"seed":                     42,
	"bcrypt_cost":              12,
	"table_state_mode":         "latest-pending",
	"timeout":                  "0s",
	"log_level":                "info",
	"log_env":                  "development",
	"report_file":              "",
	"metrics_file":             "",
	"export_dir":               "",
	"export_format":            "json",
}

// SetDefaults registers every key with viper. Registration is also what lets
// AutomaticEnv resolve the upper-cased environment variable for each key.
func SetDefaults() {
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
}

func Load() (*Config, error) {
	SetDefaults()
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.TableStateMode = strings.ToLower(strings.TrimSpace(cfg.TableStateMode))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.ExportFormat = strings.ToLower(strings.TrimSpace(cfg.ExportFormat))

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("mongo_uri cannot be empty")
	}

	counts := map[string]int{
		"n_restaurants":            c.Restaurants,
		"menu_items_per_rest":      c.MenuItemsPerRest,
		"inventory_items_per_rest": c.InventoryItemsPerRest,
		"tables_per_outlet":        c.TablesPerOutlet,
		"orders_per_outlet":        c.OrdersPerOutlet,
	}
	for key, n := range counts {
		if n < 0 {
			return fmt.Errorf("%s cannot be negative (got %d)", key, n)
		}
	}
	if c.MaxOutletsPerRest < 1 {
		return fmt.Errorf("max_outlets_per_rest must be at least 1 (got %d)", c.MaxOutletsPerRest)
	}
	if c.RecipeLines < 1 {
		return fmt.Errorf("recipe_lines must be at least 1 (got %d)", c.RecipeLines)
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost must be between %d and %d (got %d)", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}

	switch c.TableStateMode {
	case "latest-pending", "last-write":
	default:
		return fmt.Errorf("unsupported table_state_mode: %s. Supported modes: [latest-pending last-write]", c.TableStateMode)
	}

	if c.SuperAdminEmail == "" {
		return fmt.Errorf("superadmin_email cannot be empty")
	}
	if c.SuperAdminPassword == "" || c.DefaultPassword == "" {
		return fmt.Errorf("superadmin_password and default_password cannot be empty")
	}
	switch c.ExportFormat {
	case "json", "csv", "sqlite":
	default:
		return fmt.Errorf("unsupported export_format: %s. Supported formats: [json csv sqlite]", c.ExportFormat)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	return nil
}

// RedactedURI hides the password part of the connection string for display.
func (c *Config) RedactedURI() string {
	u, err := url.Parse(c.MongoURI)
	if err != nil {
		return "<unparseable uri>"
	}
	if u.User == nil {
		return c.MongoURI
	}
	if _, ok := u.User.Password(); !ok {
		return c.MongoURI
	}
	return u.Redacted()
}
