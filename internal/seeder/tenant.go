package seeder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rana718/posseed/internal/types"
	"github.com/fatih/color"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	restaurantSuffixes = []string{"Bistro", "Cafe", "Kitchen", "Diner", "Grill", "House"}
	cuisines           = []string{"Indian", "Italian", "Continental", "Asian", "Mexican", "Fusion"}
	currencies         = []string{"INR", "USD", "EUR"}
	categoryNames      = []string{"Entrees", "Burgers", "Drinks", "Desserts", "Salads", "Sides", "Breakfast"}
	menuSuffixes       = []string{"Special", "Deluxe", "Classic", "Platter", "Bowl"}
	tableSeats         = []int{2, 4, 6}
	tableZones         = []string{"Main Floor", "Patio", "Balcony"}
)

const (
	outletTimeZone    = "Asia/Kolkata"
	inventoryLocation = "Main Store"
	menuCandidateMax  = 500
)

// generateTenant builds and persists one restaurant's static catalog. Outlets
// are written before the restaurant's outlet list is filled in; the restaurant
// document is incomplete until finalizeRestaurant returns.
func (s *Seeder) generateTenant(ctx context.Context) (*Tenant, error) {
	g := s.generator
	now := s.now()
	t := &Tenant{Tables: make(map[primitive.ObjectID][]types.Table)}

	t.Restaurant = NewRestaurant(g, s.tokens, now)
	if err := s.insertOne(ctx, types.CollRestaurants, t.Restaurant); err != nil {
		return nil, fmt.Errorf("failed to insert restaurant: %w", err)
	}

	numOutlets := g.IntRange(1, s.config.MaxOutlets)
	for i := 0; i < numOutlets; i++ {
		outlet := NewOutlet(g, t.Restaurant, i+1, now)
		if err := s.insertOne(ctx, types.CollOutlets, outlet); err != nil {
			return nil, fmt.Errorf("failed to insert outlet: %w", err)
		}
		t.Outlets = append(t.Outlets, outlet)
	}
	if err := s.finalizeRestaurant(ctx, t); err != nil {
		return nil, err
	}
	color.Green("🏪 Created Restaurant: %s with %d outlets", t.Restaurant.Name, len(t.Outlets))

	for i := 0; i < s.config.Suppliers; i++ {
		sup := NewSupplier(g, t.Restaurant.ID, now)
		if err := s.insertOne(ctx, types.CollSuppliers, sup); err != nil {
			return nil, fmt.Errorf("failed to insert supplier: %w", err)
		}
		t.Suppliers = append(t.Suppliers, sup)
	}

	t.Inventory = NewInventory(g, t.Restaurant.ID, t.OutletIDs(), t.Suppliers, s.config.InventoryItems, now)
	if err := s.insertMany(ctx, types.CollInventoryItems, toDocuments(t.Inventory)); err != nil {
		return nil, fmt.Errorf("failed to insert inventory: %w", err)
	}

	t.Categories = NewCategories(g, t.Restaurant.ID, s.config.Categories, now)
	for _, c := range t.Categories {
		if err := s.insertOne(ctx, types.CollCategories, c); err != nil {
			return nil, fmt.Errorf("failed to insert category %s: %w", c.Name, err)
		}
	}

	for i := 0; i < s.config.MenuItems; i++ {
		t.MenuItems = append(t.MenuItems, NewMenuItem(g, t.Restaurant.ID, t.Categories, t.Inventory, t.OutletIDs(), s.config.RecipeLines, now))
	}
	if err := s.insertMany(ctx, types.CollMenuItems, toDocuments(t.MenuItems)); err != nil {
		return nil, fmt.Errorf("failed to insert menu items: %w", err)
	}

	for _, outlet := range t.Outlets {
		tables := NewTables(g, outlet, s.config.TablesPerOutlet, now)
		if err := s.insertMany(ctx, types.CollTables, toDocuments(tables)); err != nil {
			return nil, fmt.Errorf("failed to insert tables: %w", err)
		}
		t.Tables[outlet.ID] = tables
	}

	if err := s.createStaff(ctx, t, now); err != nil {
		return nil, err
	}

	purchases := InitialPurchases(t.Inventory, t.Admin.ID, now)
	if err := s.insertMany(ctx, types.CollStockMovements, toDocuments(purchases)); err != nil {
		return nil, fmt.Errorf("failed to insert initial stock movements: %w", err)
	}
	s.report.Movements[types.MovementPurchase] += len(purchases)
	s.metrics.StockMovements.WithLabelValues(types.MovementPurchase).Add(float64(len(purchases)))

	color.Cyan("  📦 %d inventory items, %d menu items, %d suppliers, %d staff",
		len(t.Inventory), len(t.MenuItems), len(t.Suppliers), 1+len(t.Cashiers))
	return t, nil
}

func (s *Seeder) finalizeRestaurant(ctx context.Context, t *Tenant) error {
	ids := t.OutletIDs()
	set := bson.M{"outlets": ids, "updatedAt": s.now()}
	if err := s.store.UpdateByID(ctx, types.CollRestaurants, t.Restaurant.ID, set); err != nil {
		return fmt.Errorf("failed to link outlets to restaurant: %w", err)
	}
	t.Restaurant.Outlets = ids
	return nil
}

func (s *Seeder) createStaff(ctx context.Context, t *Tenant, now time.Time) error {
	g := s.generator
	hash, err := s.hashPassword(s.config.DefaultPassword)
	if err != nil {
		return err
	}

	rid := t.Restaurant.ID
	t.Admin = types.User{
		ID:           primitive.NewObjectID(),
		Email:        fmt.Sprintf("admin+%s@%s", s.tokens(), g.Domain()),
		Name:         t.Restaurant.Name + " Admin",
		PasswordHash: hash,
		Restaurant:   &rid,
		Roles:        []primitive.ObjectID{s.roles[types.RoleAdmin].ID},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.insertOne(ctx, types.CollUsers, t.Admin); err != nil {
		return fmt.Errorf("failed to insert admin user: %w", err)
	}

	outletIDs := t.OutletIDs()
	cashiers := g.IntRange(1, 3)
	for i := 1; i <= cashiers; i++ {
		outlet := outletIDs[g.rand.Intn(len(outletIDs))]
		user := types.User{
			ID:           primitive.NewObjectID(),
			Email:        fmt.Sprintf("cashier%d-%s@%s", i, s.tokens(), g.Domain()),
			Name:         fmt.Sprintf("Cashier %d %s", i, t.Restaurant.Name),
			PasswordHash: hash,
			Restaurant:   &rid,
			Roles:        []primitive.ObjectID{s.roles[types.RoleCashier].ID},
			Outlet:       &outlet,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.insertOne(ctx, types.CollUsers, user); err != nil {
			return fmt.Errorf("failed to insert cashier: %w", err)
		}
		t.Cashiers = append(t.Cashiers, user)
	}
	return nil
}

func NewRestaurant(g *DataGenerator, tokens TokenSource, now time.Time) types.Restaurant {
	name := fmt.Sprintf("%s %s", g.CompanyName(), g.Choice(restaurantSuffixes))
	return types.Restaurant{
		ID:           primitive.NewObjectID(),
		Name:         name,
		LegalName:    name + " Pvt Ltd",
		TaxNumber:    "GST" + tokens(),
		OwnerName:    g.PersonName(),
		ContactEmail: g.CompanyEmail(),
		ContactPhone: g.Phone(),
		Address:      g.Address(),
		Cuisine:      g.Sample(cuisines, 2),
		Settings:     map[string]interface{}{},
		Outlets:      []primitive.ObjectID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func NewOutlet(g *DataGenerator, r types.Restaurant, n int, now time.Time) types.Outlet {
	return types.Outlet{
		ID:         primitive.NewObjectID(),
		Restaurant: r.ID,
		Name:       fmt.Sprintf("%s - Outlet %d", r.Name, n),
		Code:       fmt.Sprintf("OLT%d", g.IntRange(1000, 9999)),
		Address:    g.Address(),
		Phone:      g.Phone(),
		TimeZone:   outletTimeZone,
		Currency:   g.Choice(currencies),
		Settings:   map[string]interface{}{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func NewSupplier(g *DataGenerator, restaurant primitive.ObjectID, now time.Time) types.Supplier {
	return types.Supplier{
		ID:         primitive.NewObjectID(),
		Restaurant: restaurant,
		Name:       g.CompanyName(),
		Contact:    g.PersonName(),
		Phone:      g.Phone(),
		Email:      g.CompanyEmail(),
		Address:    g.Address(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func NewInventory(g *DataGenerator, restaurant primitive.ObjectID, outlets []primitive.ObjectID,
	suppliers []types.Supplier, n int, now time.Time) []types.InventoryItem {

	names := g.InventoryNames(n)
	items := make([]types.InventoryItem, 0, len(names))
	for _, name := range names {
		compact := strings.ToUpper(strings.ReplaceAll(name, " ", ""))
		if len(compact) > 12 {
			compact = compact[:12]
		}
		item := types.InventoryItem{
			ID:         primitive.NewObjectID(),
			Restaurant: restaurant,
			Outlet:     outlets[g.rand.Intn(len(outlets))],
			Name:       name,
			SKU:        fmt.Sprintf("INV-%s-%d", compact, g.IntRange(100, 999)),
			Unit:       UnitFromName(name),
			CostPrice:  g.FloatRange(10, 500, 2),
			CurrentQty: float64(g.IntRange(30, 300)),
			ParLevel:   g.IntRange(5, 50),
			IsTracked:  true,
			Location:   inventoryLocation,
			Meta:       map[string]interface{}{},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if len(suppliers) > 0 {
			item.Supplier = suppliers[g.rand.Intn(len(suppliers))].ID
		}
		items = append(items, item)
	}
	return items
}

func NewCategories(g *DataGenerator, restaurant primitive.ObjectID, n int, now time.Time) []types.Category {
	names := g.Sample(categoryNames, n)
	cats := make([]types.Category, len(names))
	for i, name := range names {
		cats[i] = types.Category{
			ID:         primitive.NewObjectID(),
			Restaurant: restaurant,
			Name:       name,
			Order:      i + 1,
			IsVisible:  true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}
	return cats
}

// NewMenuItem draws a recipe of 1..maxLines lines from the restaurant's own
// inventory and makes the item available at exactly one outlet.
func NewMenuItem(g *DataGenerator, restaurant primitive.ObjectID, categories []types.Category,
	inventory []types.InventoryItem, outlets []primitive.ObjectID, maxLines int, now time.Time) types.MenuItem {

	cat := categories[g.rand.Intn(len(categories))]
	name := g.DishName() + " " + g.Choice(menuSuffixes)
	basePrice := g.FloatRange(80, 600, 2)

	recipe := []types.RecipeEntry{}
	lines := g.IntRange(1, maxLines)
	for i := 0; i < lines && len(inventory) > 0; i++ {
		inv := inventory[g.rand.Intn(len(inventory))]
		var qty float64
		if IsCountUnit(inv.Unit) {
			qty = float64(g.IntRange(1, 3))
		} else {
			qty = g.FloatRange(0.01, 1.5, 3)
		}
		recipe = append(recipe, types.RecipeEntry{InventoryItemID: inv.ID, Qty: qty, Unit: inv.Unit})
	}

	modifiers := []types.Modifier{}
	if g.Chance(0.3) {
		modifiers = append(modifiers, types.Modifier{Name: "Extra", Price: round(basePrice*0.25, 2)})
	}

	return types.MenuItem{
		ID:           primitive.NewObjectID(),
		Restaurant:   restaurant,
		Categories:   []primitive.ObjectID{cat.ID},
		Name:         name,
		Description:  g.Description(),
		BasePrice:    basePrice,
		SKU:          fmt.Sprintf("MI-%d", g.IntRange(100000, 999999)),
		IsActive:     true,
		IsTaxable:    true,
		Variants:     []string{},
		Modifiers:    modifiers,
		PrepTimeMins: g.IntRange(2, 25),
		Tags:         []string{},
		Meta:         types.MenuMeta{Recipe: recipe},
		OutletAvailability: []types.OutletAvailability{
			{Outlet: outlets[g.rand.Intn(len(outlets))], IsAvailable: true},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NewTables(g *DataGenerator, outlet types.Outlet, n int, now time.Time) []types.Table {
	tables := make([]types.Table, 0, n)
	for i := 1; i <= n; i++ {
		tables = append(tables, types.Table{
			ID:         primitive.NewObjectID(),
			Restaurant: outlet.Restaurant,
			Outlet:     outlet.ID,
			Name:       fmt.Sprintf("Table %d", i),
			Seats:      tableSeats[g.rand.Intn(len(tableSeats))],
			Zone:       g.Choice(tableZones),
			Status:     types.TableAvailable,
			Meta:       map[string]interface{}{},
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return tables
}

// InitialPurchases records each item's starting quantity as a positive delta.
func InitialPurchases(items []types.InventoryItem, performedBy primitive.ObjectID, now time.Time) []types.StockMovement {
	moves := make([]types.StockMovement, len(items))
	for i, inv := range items {
		moves[i] = types.StockMovement{
			ID:            primitive.NewObjectID(),
			Restaurant:    inv.Restaurant,
			Outlet:        inv.Outlet,
			InventoryItem: inv.ID,
			Change:        inv.CurrentQty,
			Type:          types.MovementPurchase,
			Reference:     "INIT-" + inv.ID.Hex(),
			Note:          "Initial stock seed",
			PerformedBy:   performedBy,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}
	return moves
}

func toDocuments[T any](items []T) []interface{} {
	docs := make([]interface{}, len(items))
	for i := range items {
		docs[i] = items[i]
	}
	return docs
}
