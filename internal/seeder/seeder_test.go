package seeder

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/Rana718/posseed/internal/store"
	"github.com/Rana718/posseed/internal/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)

func testConfig() SeedConfig {
	return SeedConfig{
		Restaurants:     1,
		MaxOutlets:      1,
		MenuItems:       3,
		InventoryItems:  5,
		TablesPerOutlet: 2,
		OrdersPerOutlet: 5,
		RecipeLines:     1,
		Seed:            42,
		DefaultPassword: "cashier123",
		BcryptCost:      bcrypt.MinCost,
		SuperAdmin: Operator{
			Email:    "superadmin@example.com",
			Name:     "Super Admin",
			Password: "superadmin123",
		},
	}
}

func newTestSeeder(st store.Store, cfg SeedConfig, opts ...Option) *Seeder {
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithTokens(ReaderTokens(rand.New(rand.NewSource(cfg.Seed)))),
	}
	return New(st, cfg, append(base, opts...)...)
}

func count(t *testing.T, st store.Store, collection string, filter bson.M) int64 {
	t.Helper()
	if filter == nil {
		filter = bson.M{}
	}
	n, err := st.Count(context.Background(), collection, filter)
	require.NoError(t, err)
	return n
}

func TestSeedSingleRestaurantScenario(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	report, err := newTestSeeder(st, testConfig()).Seed(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 1, count(t, st, types.CollRestaurants, nil))
	assert.EqualValues(t, 1, count(t, st, types.CollOutlets, nil))
	assert.EqualValues(t, 5, count(t, st, types.CollInventoryItems, nil))
	assert.EqualValues(t, 3, count(t, st, types.CollMenuItems, nil))
	assert.EqualValues(t, 2, count(t, st, types.CollTables, nil))
	assert.EqualValues(t, 5, count(t, st, types.CollOrders, nil))
	assert.EqualValues(t, 3, count(t, st, types.CollRoles, nil))

	assert.EqualValues(t, 5, count(t, st, types.CollStockMovements, bson.M{"type": types.MovementPurchase}))
	assert.GreaterOrEqual(t, count(t, st, types.CollStockMovements, bson.M{"type": types.MovementUsage}), int64(5))

	var menus []types.MenuItem
	require.NoError(t, st.Find(ctx, types.CollMenuItems, bson.M{}, 0, &menus))
	for _, mi := range menus {
		assert.Len(t, mi.Meta.Recipe, 1, "menu item %s", mi.Name)
	}

	assert.True(t, report.OperatorCreated)
	assert.Len(t, report.Restaurants, 1)
	assert.Equal(t, 5, report.Created[types.CollOrders])
	assert.Equal(t, 5, report.Orders[types.OrderCompleted]+report.Orders[types.OrderPending]+report.Orders[types.OrderCancelled])
	assert.Equal(t, 5, report.Movements[types.MovementPurchase])
	assert.Zero(t, report.Skipped.MenuItems)
	assert.Zero(t, report.Skipped.InventoryItems)
	assert.Equal(t, TableLatestPending, report.TableMode)
}

func TestSeedBackfillsOutlets(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	cfg := testConfig()
	cfg.Restaurants = 3
	cfg.MaxOutlets = 3

	_, err := newTestSeeder(st, cfg).Seed(ctx)
	require.NoError(t, err)

	var restaurants []types.Restaurant
	require.NoError(t, st.Find(ctx, types.CollRestaurants, bson.M{}, 0, &restaurants))
	require.Len(t, restaurants, 3)

	for _, r := range restaurants {
		var outlets []types.Outlet
		require.NoError(t, st.Find(ctx, types.CollOutlets, bson.M{"restaurant": r.ID}, 0, &outlets))
		require.NotEmpty(t, outlets)
		assert.LessOrEqual(t, len(outlets), 3)

		ids := make([]interface{}, len(outlets))
		for i, o := range outlets {
			ids[i] = o.ID
		}
		got := make([]interface{}, len(r.Outlets))
		for i, id := range r.Outlets {
			got[i] = id
		}
		assert.ElementsMatch(t, ids, got, "restaurant %s", r.Name)
	}
}

func TestSeedRecipesStayWithinRestaurant(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	cfg := testConfig()
	cfg.Restaurants = 2
	cfg.MaxOutlets = 2
	cfg.MenuItems = 10
	cfg.RecipeLines = 4

	_, err := newTestSeeder(st, cfg).Seed(ctx)
	require.NoError(t, err)

	var menus []types.MenuItem
	require.NoError(t, st.Find(ctx, types.CollMenuItems, bson.M{}, 0, &menus))
	require.Len(t, menus, 20)

	for _, mi := range menus {
		require.NotEmpty(t, mi.Meta.Recipe)
		assert.LessOrEqual(t, len(mi.Meta.Recipe), 4)
		for _, entry := range mi.Meta.Recipe {
			var inv types.InventoryItem
			err := st.FindOne(ctx, types.CollInventoryItems, bson.M{"_id": entry.InventoryItemID, "restaurant": mi.Restaurant}, &inv)
			require.NoError(t, err, "menu item %s references foreign inventory", mi.Name)
			assert.Equal(t, inv.Unit, entry.Unit)
		}

		require.Len(t, mi.OutletAvailability, 1)
		var outlet types.Outlet
		require.NoError(t, st.FindOne(ctx, types.CollOutlets, bson.M{"_id": mi.OutletAvailability[0].Outlet, "restaurant": mi.Restaurant}, &outlet))
	}
}

func TestSeedOrderTotalsAndStock(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	cfg := testConfig()
	cfg.InventoryItems = 3
	cfg.MenuItems = 4
	cfg.RecipeLines = 4
	cfg.OrdersPerOutlet = 120

	_, err := newTestSeeder(st, cfg).Seed(ctx)
	require.NoError(t, err)

	var orders []types.Order
	require.NoError(t, st.Find(ctx, types.CollOrders, bson.M{}, 0, &orders))
	require.Len(t, orders, 120)

	for _, o := range orders {
		require.NotEmpty(t, o.Items)
		assert.Equal(t, Subtotal(o.Items), o.Subtotal, "order %s", o.OrderNumber)
		assert.Equal(t, o.Subtotal, o.Total, "order %s", o.OrderNumber)
		for _, line := range o.Items {
			assert.Contains(t, []int{1, 2}, line.Qty)
		}

		if o.Status == types.OrderCompleted {
			require.Len(t, o.Payments, 1)
			assert.Equal(t, o.Total, o.Payments[0].Amount)
			assert.Equal(t, "TX-"+o.OrderNumber, o.Payments[0].TransactionRef)
		} else {
			assert.Empty(t, o.Payments)
		}

		if o.Table != nil {
			assert.Equal(t, types.OrderDineIn, o.Type)
		} else {
			assert.Equal(t, types.OrderCounter, o.Type)
		}
	}

	var inventory []types.InventoryItem
	require.NoError(t, st.Find(ctx, types.CollInventoryItems, bson.M{}, 0, &inventory))
	for _, inv := range inventory {
		assert.GreaterOrEqual(t, inv.CurrentQty, 0.0, "inventory %s went negative", inv.Name)
	}
}

func TestCancelledOrdersStillConsume(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	cfg := testConfig()
	cfg.OrdersPerOutlet = 60

	_, err := newTestSeeder(st, cfg).Seed(ctx)
	require.NoError(t, err)

	var cancelled []types.Order
	require.NoError(t, st.Find(ctx, types.CollOrders, bson.M{"status": types.OrderCancelled}, 0, &cancelled))
	require.NotEmpty(t, cancelled)

	var usage []types.StockMovement
	require.NoError(t, st.Find(ctx, types.CollStockMovements, bson.M{"type": types.MovementUsage}, 0, &usage))

	for _, o := range cancelled {
		assert.Empty(t, o.Payments)

		found := 0
		for _, m := range usage {
			if strings.HasPrefix(m.Reference, "SEED-ORD-"+o.OrderNumber+"-") {
				found++
				assert.Less(t, m.Change, 0.0)
				assert.Equal(t, o.Outlet, m.Outlet)
			}
		}
		assert.Positive(t, found, "cancelled order %s has no usage movements", o.OrderNumber)
	}
}

func TestSeedUniqueOrderNumbersAndEmails(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	cfg := testConfig()
	cfg.Restaurants = 3
	cfg.MaxOutlets = 2
	cfg.OrdersPerOutlet = 25

	_, err := newTestSeeder(st, cfg).Seed(ctx)
	require.NoError(t, err)

	var orders []types.Order
	require.NoError(t, st.Find(ctx, types.CollOrders, bson.M{}, 0, &orders))
	numbers := map[string]bool{}
	for _, o := range orders {
		key := o.Restaurant.Hex() + "/" + o.Outlet.Hex() + "/" + o.OrderNumber
		assert.False(t, numbers[key], "duplicate order number %s", o.OrderNumber)
		numbers[key] = true
	}

	var users []types.User
	require.NoError(t, st.Find(ctx, types.CollUsers, bson.M{}, 0, &users))
	emails := map[string]bool{}
	for _, u := range users {
		assert.False(t, emails[u.Email], "duplicate email %s", u.Email)
		emails[u.Email] = true
	}
	// SuperAdmin plus one admin and 1-3 cashiers per restaurant
	assert.GreaterOrEqual(t, len(users), 1+3*2)
	assert.LessOrEqual(t, len(users), 1+3*4)
}

func TestSeedIsDeterministic(t *testing.T) {
	run := func() ([]string, []string, []float64) {
		st := store.NewMemory()
		cfg := testConfig()
		cfg.Restaurants = 2
		cfg.MaxOutlets = 2
		_, err := newTestSeeder(st, cfg).Seed(context.Background())
		require.NoError(t, err)

		var restaurants []types.Restaurant
		var menus []types.MenuItem
		var orders []types.Order
		require.NoError(t, st.Find(context.Background(), types.CollRestaurants, bson.M{}, 0, &restaurants))
		require.NoError(t, st.Find(context.Background(), types.CollMenuItems, bson.M{}, 0, &menus))
		require.NoError(t, st.Find(context.Background(), types.CollOrders, bson.M{}, 0, &orders))

		var names, dishes []string
		var totals []float64
		for _, r := range restaurants {
			names = append(names, r.Name+"|"+r.TaxNumber)
		}
		for _, mi := range menus {
			dishes = append(dishes, mi.Name)
		}
		for _, o := range orders {
			totals = append(totals, o.Total)
		}
		return names, dishes, totals
	}

	names1, dishes1, totals1 := run()
	names2, dishes2, totals2 := run()
	assert.Equal(t, names1, names2)
	assert.Equal(t, dishes1, dishes2)
	assert.Equal(t, totals1, totals2)
}

func TestSeedTablesFollowPendingOrders(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	cfg := testConfig()
	cfg.TablesPerOutlet = 4
	cfg.OrdersPerOutlet = 40

	_, err := newTestSeeder(st, cfg).Seed(ctx)
	require.NoError(t, err)

	var tables []types.Table
	require.NoError(t, st.Find(ctx, types.CollTables, bson.M{}, 0, &tables))

	for _, tbl := range tables {
		var pending []types.Order
		require.NoError(t, st.Find(ctx, types.CollOrders, bson.M{"table": tbl.ID, "status": types.OrderPending}, 0, &pending))

		if len(pending) == 0 {
			assert.Equal(t, types.TableAvailable, tbl.Status, "table %s", tbl.Name)
			assert.Nil(t, tbl.CurrentOrder)
			continue
		}
		assert.Equal(t, types.TableOccupied, tbl.Status, "table %s", tbl.Name)
		require.NotNil(t, tbl.CurrentOrder)
		assert.Equal(t, pending[len(pending)-1].ID, *tbl.CurrentOrder)
	}
}

func TestSeedRecordsMetrics(t *testing.T) {
	st := store.NewMemory()
	s := newTestSeeder(st, testConfig())

	report, err := s.Seed(context.Background())
	require.NoError(t, err)

	m := s.Metrics()
	assert.Equal(t, 5.0, testutil.ToFloat64(m.DocumentsCreated.WithLabelValues(types.CollOrders)))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.StockMovements.WithLabelValues(types.MovementPurchase)))
	assert.Equal(t, float64(report.Movements[types.MovementUsage]),
		testutil.ToFloat64(m.StockMovements.WithLabelValues(types.MovementUsage)))
	assert.Equal(t, float64(report.Orders[types.OrderPending]),
		testutil.ToFloat64(m.OrdersByStatus.WithLabelValues(types.OrderPending)))
}

type failingStore struct {
	*store.Memory
	failOn string
}

func (f *failingStore) InsertOne(ctx context.Context, collection string, document interface{}) error {
	if collection == f.failOn {
		return assert.AnError
	}
	return f.Memory.InsertOne(ctx, collection, document)
}

func TestSeedStopsOnFirstError(t *testing.T) {
	st := &failingStore{Memory: store.NewMemory(), failOn: types.CollOrders}

	report, err := newTestSeeder(st, testConfig()).Seed(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	require.NotNil(t, report)
	assert.Empty(t, report.Restaurants)

	n, err := st.Count(context.Background(), types.CollRestaurants, bson.M{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "writes before the failure are kept")
}
