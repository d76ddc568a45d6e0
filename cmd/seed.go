package cmd

import (
	"context"
	"fmt"

	"github.com/Rana718/posseed/internal/config"
	"github.com/Rana718/posseed/internal/database/mongodb"
	"github.com/Rana718/posseed/internal/logger"
	"github.com/Rana718/posseed/internal/seeder"
	"github.com/Rana718/posseed/internal/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var seedDryRun bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate restaurants, catalogs and orders",
	Long: `
Run the full seeding pipeline: indexes, roles and the SuperAdmin account, then
for every restaurant its outlets, suppliers, inventory, categories, menu items,
tables, staff and initial stock, followed by synthetic orders per outlet with
their inventory consumption and table state.

Examples:
  posseed seed
  posseed seed --restaurants 1 --orders 5
  posseed seed --restaurants 1 --recipe-lines 1 --dry-run
  posseed seed --dry-run --report seed-report.yaml
  posseed seed --dry-run --export fixtures --export-format csv
  MONGO_URI=mongodb://localhost:27017/pos posseed seed --legacy-tables`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log, err := logger.New(cfg.LogLevel, cfg.LogEnv)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer log.Sync()

		seedCfg, err := seedConfigFrom(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := runContext(cmd.Context(), cfg)
		defer cancel()

		st, err := openStore(ctx, cfg, log, seedDryRun)
		if err != nil {
			return err
		}
		defer st.Close()

		s := seeder.New(st, seedCfg, seeder.WithLogger(log))
		report, err := s.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
		report.Print()

		if err := writeOutputs(cfg, report, s); err != nil {
			return err
		}
		return exportSnapshot(ctx, cfg, st, log)
	},
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func seedConfigFrom(cfg *config.Config) (seeder.SeedConfig, error) {
	mode, err := seeder.ParseTableMode(cfg.TableStateMode)
	if err != nil {
		return seeder.SeedConfig{}, err
	}

	return seeder.SeedConfig{
		Restaurants:     cfg.Restaurants,
		MaxOutlets:      cfg.MaxOutletsPerRest,
		MenuItems:       cfg.MenuItemsPerRest,
		InventoryItems:  cfg.InventoryItemsPerRest,
		TablesPerOutlet: cfg.TablesPerOutlet,
		OrdersPerOutlet: cfg.OrdersPerOutlet,
		RecipeLines:     cfg.RecipeLines,
		Seed:            cfg.Seed,
		DefaultPassword: cfg.DefaultPassword,
		BcryptCost:      cfg.BcryptCost,
		TableMode:       mode,
		SuperAdmin: seeder.Operator{
			Email:    cfg.SuperAdminEmail,
			Name:     cfg.SuperAdminName,
			Password: cfg.SuperAdminPassword,
		},
	}, nil
}

func runContext(parent context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if cfg.Timeout > 0 {
		return context.WithTimeout(parent, cfg.Timeout)
	}
	return context.WithCancel(parent)
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger, dryRun bool) (store.Store, error) {
	if dryRun {
		color.Yellow("🧪 Dry run: writing to an in-memory store, MongoDB is not touched")
		return store.NewMemory(), nil
	}

	color.Cyan("🔌 Connecting to MongoDB: %s", cfg.RedactedURI())
	adapter := mongodb.New(cfg.DBNameFallback, log)
	if err := adapter.Connect(ctx, cfg.MongoURI); err != nil {
		return nil, err
	}
	color.Green("✅ Using database: %s", adapter.DatabaseName())
	return adapter, nil
}

func writeOutputs(cfg *config.Config, report *seeder.Report, s *seeder.Seeder) error {
	if cfg.ReportFile != "" {
		if err := report.WriteYAML(cfg.ReportFile); err != nil {
			return err
		}
		color.Green("📝 Report written to %s", cfg.ReportFile)
	}
	if cfg.MetricsFile != "" {
		if err := s.Metrics().WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
		color.Green("📈 Metrics written to %s", cfg.MetricsFile)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(seedCmd)

	flags := seedCmd.Flags()
	flags.Int("restaurants", 0, "restaurants to create (env N_RESTAURANTS)")
	flags.Int("max-outlets", 0, "maximum outlets per restaurant (env MAX_OUTLETS_PER_REST)")
	flags.Int("menu-items", 0, "menu items per restaurant (env MENU_ITEMS_PER_REST)")
	flags.Int("inventory-items", 0, "inventory items per restaurant (env INVENTORY_ITEMS_PER_REST)")
	flags.Int("tables", 0, "tables per outlet (env TABLES_PER_OUTLET)")
	flags.Int("orders", 0, "orders per outlet (env ORDERS_PER_OUTLET)")
	flags.Int("recipe-lines", 0, "maximum ingredient lines per menu item recipe (env RECIPE_LINES)")
	flags.Int64("seed", 0, "random seed for generated content (env SEED)")
	flags.String("report", "", "write the run report as YAML to this file (env REPORT_FILE)")
	flags.String("metrics-file", "", "write prometheus text metrics to this file (env METRICS_FILE)")
	flags.String("export", "", "after seeding, export all seeded collections to this directory (env EXPORT_DIR)")
	flags.String("export-format", "", "export format: json, csv or sqlite (env EXPORT_FORMAT)")
	flags.Bool("legacy-tables", false, "let every order overwrite its table state (env TABLE_STATE_MODE=last-write)")
	flags.BoolVar(&seedDryRun, "dry-run", false, "seed an in-memory store instead of MongoDB")

	bindings := map[string]string{
		"n_restaurants":            "restaurants",
		"max_outlets_per_rest":     "max-outlets",
		"menu_items_per_rest":      "menu-items",
		"inventory_items_per_rest": "inventory-items",
		"tables_per_outlet":        "tables",
		"orders_per_outlet":        "orders",
		"recipe_lines":             "recipe-lines",
		"seed":                     "seed",
		"report_file":              "report",
		"metrics_file":             "metrics-file",
		"export_dir":               "export",
		"export_format":            "export-format",
	}
	for key, flag := range bindings {
		viper.BindPFlag(key, flags.Lookup(flag))
	}

	seedCmd.PreRun = func(cmd *cobra.Command, args []string) {
		if legacy, _ := cmd.Flags().GetBool("legacy-tables"); legacy {
			viper.Set("table_state_mode", string(seeder.TableLastWrite))
		}
	}
}
