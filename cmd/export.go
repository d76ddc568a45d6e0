package cmd

import (
	"context"
	"fmt"

	"github.com/Rana718/posseed/internal/config"
	"github.com/Rana718/posseed/internal/export"
	"github.com/Rana718/posseed/internal/logger"
	"github.com/Rana718/posseed/internal/store"
	"github.com/Rana718/posseed/internal/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Export the seeded collections",
	Long: `
Export every collection posseed writes to a directory as fixtures.
Supported formats: json (default), csv, sqlite

Examples:
  posseed export fixtures
  posseed export fixtures --format csv
  posseed export fixtures --format sqlite`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		viper.Set("export_dir", args[0])
		if cmd.Flags().Changed("format") {
			format, _ := cmd.Flags().GetString("format")
			viper.Set("export_format", format)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log, err := logger.New(cfg.LogLevel, cfg.LogEnv)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer log.Sync()

		ctx, cancel := runContext(cmd.Context(), cfg)
		defer cancel()

		st, err := openStore(ctx, cfg, log, false)
		if err != nil {
			return err
		}
		defer st.Close()

		return exportSnapshot(ctx, cfg, st, log)
	},
}

func exportSnapshot(ctx context.Context, cfg *config.Config, st store.Store, log *zap.Logger) error {
	if cfg.ExportDir == "" {
		return nil
	}

	color.Cyan("📤 Exporting collections as %s...", cfg.ExportFormat)
	path, err := export.New(st, log).Export(ctx, types.SeededCollections, cfg.ExportDir, cfg.ExportFormat)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if path != "" {
		color.Green("✅ Export completed: %s", path)
	} else {
		color.Yellow("⚠️  No export created (database is empty)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("format", "", "json, csv or sqlite (env EXPORT_FORMAT)")
}
