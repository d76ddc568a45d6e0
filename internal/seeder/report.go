package seeder

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Report summarises one run, including the references the consumption step
// could not resolve.
type Report struct {
	Seed            int64          `yaml:"seed"`
	TableMode       TableMode      `yaml:"table_mode"`
	StartedAt       time.Time      `yaml:"started_at"`
	Duration        time.Duration  `yaml:"duration"`
	OperatorCreated bool           `yaml:"operator_created"`
	Roles           []string       `yaml:"roles"`
	Created         map[string]int `yaml:"created"`
	Orders          map[string]int `yaml:"orders"`
	Movements       map[string]int `yaml:"stock_movements"`
	Skipped         Skipped        `yaml:"skipped_references"`
	IndexWarnings   []string       `yaml:"index_warnings,omitempty"`
	Restaurants     []string       `yaml:"restaurants"`
}

type Skipped struct {
	MenuItems      int `yaml:"menu_items"`
	InventoryItems int `yaml:"inventory_items"`
}

func newReport(seed int64, mode TableMode, started time.Time) *Report {
	return &Report{
		Seed:      seed,
		TableMode: mode,
		StartedAt: started,
		Created:   make(map[string]int),
		Orders:    make(map[string]int),
		Movements: make(map[string]int),
	}
}

// WriteYAML stores the report at path.
func (r *Report) WriteYAML(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

func (r *Report) Print() {
	color.Green("\n=== SEEDING COMPLETE ===")
	fmt.Printf("Restaurants created: %d\n", len(r.Restaurants))

	collections := make([]string, 0, len(r.Created))
	for name := range r.Created {
		collections = append(collections, name)
	}
	sort.Strings(collections)
	for _, name := range collections {
		fmt.Printf("  %-16s %d\n", name, r.Created[name])
	}

	fmt.Printf("Orders: completed=%d pending=%d cancelled=%d\n",
		r.Orders["completed"], r.Orders["pending"], r.Orders["cancelled"])
	fmt.Printf("Stock movements: purchase=%d usage=%d\n", r.Movements["purchase"], r.Movements["usage"])

	if r.Skipped.MenuItems > 0 || r.Skipped.InventoryItems > 0 {
		color.Yellow("⚠️  Skipped stale recipe references: menu items=%d inventory items=%d",
			r.Skipped.MenuItems, r.Skipped.InventoryItems)
	}

	if len(r.Restaurants) > 0 {
		fmt.Println("Sample restaurant names:")
		for i, name := range r.Restaurants {
			if i == 5 {
				break
			}
			fmt.Println(" -", name)
		}
	}
	color.Cyan("⏱️  Finished in %s", r.Duration.Round(time.Millisecond))
}
