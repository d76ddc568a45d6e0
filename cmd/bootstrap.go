package cmd

import (
	"fmt"

	"github.com/Rana718/posseed/internal/logger"
	"github.com/Rana718/posseed/internal/seeder"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Ensure indexes, roles and the SuperAdmin account",
	Long: `
Create the unique indexes, upsert the SuperAdmin, Admin and Cashier roles and
create the SuperAdmin account if its email is not registered yet. Safe to run
repeatedly: roles are replaced by name and an existing SuperAdmin keeps its
password.`,
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

		st, err := openStore(ctx, cfg, log, false)
		if err != nil {
			return err
		}
		defer st.Close()

		report, err := seeder.New(st, seedCfg, seeder.WithLogger(log)).Bootstrap(ctx)
		if err != nil {
			return fmt.Errorf("bootstrap failed: %w", err)
		}

		color.Green("✅ Roles: %v", report.Roles)
		if report.OperatorCreated {
			color.Green("✅ SuperAdmin created: %s", cfg.SuperAdminEmail)
		}
		for _, w := range report.IndexWarnings {
			color.Yellow("⚠️  %s", w)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the posseed version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("posseed version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
	rootCmd.AddCommand(versionCmd)
}
