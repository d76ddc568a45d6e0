package seeder

import (
	"fmt"

	"github.com/Rana718/posseed/internal/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TableMode selects how order placement updates table state.
type TableMode string

const (
	// TableLatestPending lets only pending orders touch tables; a table ends
	// occupied by the last pending order placed on it.
	TableLatestPending TableMode = "latest-pending"
	// TableLastWrite reproduces the legacy behaviour where every order
	// overwrites its table's state.
	TableLastWrite TableMode = "last-write"
)

func ParseTableMode(s string) (TableMode, error) {
	switch TableMode(s) {
	case TableLatestPending, TableLastWrite:
		return TableMode(s), nil
	case "":
		return TableLatestPending, nil
	default:
		return "", fmt.Errorf("unknown table state mode %q (want %s or %s)", s, TableLatestPending, TableLastWrite)
	}
}

type Operator struct {
	Email    string
	Name     string
	Password string
}

type SeedConfig struct {
	Restaurants     int // tenants to create
	MaxOutlets      int // outlets per tenant are drawn from 1..MaxOutlets
	MenuItems       int // per tenant
	InventoryItems  int // per tenant
	TablesPerOutlet int
	OrdersPerOutlet int
	Suppliers       int // per tenant
	Categories      int // per tenant
	RecipeLines     int // upper bound of ingredient lines per menu item

	Seed            int64
	DefaultPassword string
	BcryptCost      int
	SuperAdmin      Operator
	TableMode       TableMode
}

// Tenant is the static catalog built for one restaurant.
type Tenant struct {
	Restaurant types.Restaurant
	Outlets    []types.Outlet
	Suppliers  []types.Supplier
	Inventory  []types.InventoryItem
	Categories []types.Category
	MenuItems  []types.MenuItem
	Tables     map[primitive.ObjectID][]types.Table
	Admin      types.User
	Cashiers   []types.User
}

func (t *Tenant) OutletIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, len(t.Outlets))
	for i, o := range t.Outlets {
		ids[i] = o.ID
	}
	return ids
}
