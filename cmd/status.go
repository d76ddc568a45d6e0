package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/Rana718/posseed/internal/logger"
	"github.com/Rana718/posseed/internal/store"
	"github.com/Rana718/posseed/internal/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show document counts of the seeded collections",
	Long: `Show how many documents each POS collection holds, plus the
order breakdown by status and the number of occupied tables.

Useful right after a seed run to check what landed in the database.`,
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

		ctx, cancel := runContext(cmd.Context(), cfg)
		defer cancel()

		st, err := openStore(ctx, cfg, log, false)
		if err != nil {
			return err
		}
		defer st.Close()

		color.Cyan("📊 Collection status")
		return printStatus(ctx, cmd.OutOrStdout(), st)
	},
}

func printStatus(ctx context.Context, out io.Writer, st store.Store) error {
	for _, name := range types.SeededCollections {
		n, err := st.Count(ctx, name, bson.M{})
		if err != nil {
			return fmt.Errorf("failed to count %s: %w", name, err)
		}
		fmt.Fprintf(out, "  %-16s %d\n", name, n)
	}

	fmt.Fprint(out, "Orders:")
	for _, status := range []string{types.OrderCompleted, types.OrderPending, types.OrderCancelled} {
		n, err := st.Count(ctx, types.CollOrders, bson.M{"status": status})
		if err != nil {
			return fmt.Errorf("failed to count %s orders: %w", status, err)
		}
		fmt.Fprintf(out, " %s=%d", status, n)
	}
	fmt.Fprintln(out)

	occupied, err := st.Count(ctx, types.CollTables, bson.M{"status": types.TableOccupied})
	if err != nil {
		return fmt.Errorf("failed to count occupied tables: %w", err)
	}
	fmt.Fprintf(out, "Occupied tables: %d\n", occupied)
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
