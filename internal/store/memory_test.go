package store

import (
	"context"
	"testing"
	"time"

	"github.com/Rana718/posseed/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryInsertAndFind(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	rid := primitive.NewObjectID()
	tables := []interface{}{
		types.Table{ID: primitive.NewObjectID(), Restaurant: rid, Name: "Table 1", Seats: 2},
		types.Table{ID: primitive.NewObjectID(), Restaurant: rid, Name: "Table 2", Seats: 4},
		types.Table{ID: primitive.NewObjectID(), Restaurant: primitive.NewObjectID(), Name: "Table 1", Seats: 4},
	}
	require.NoError(t, m.InsertMany(ctx, types.CollTables, tables))

	var got types.Table
	require.NoError(t, m.FindOne(ctx, types.CollTables, bson.M{"restaurant": rid, "seats": 4}, &got))
	assert.Equal(t, "Table 2", got.Name)

	var all []types.Table
	require.NoError(t, m.Find(ctx, types.CollTables, bson.M{"restaurant": rid}, 0, &all))
	assert.Len(t, all, 2)

	var limited []types.Table
	require.NoError(t, m.Find(ctx, types.CollTables, bson.M{}, 1, &limited))
	assert.Len(t, limited, 1)

	n, err := m.Count(ctx, types.CollTables, bson.M{"name": "Table 1"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	err = m.FindOne(ctx, types.CollTables, bson.M{"name": "Table 9"}, &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryFindRequiresSlicePointer(t *testing.T) {
	var single types.Table
	err := NewMemory().Find(context.Background(), types.CollTables, bson.M{}, 0, &single)
	assert.Error(t, err)
}

func TestMemoryDottedPathIntoArrays(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	outlet := primitive.NewObjectID()

	items := []interface{}{
		types.MenuItem{ID: primitive.NewObjectID(), Name: "here", OutletAvailability: []types.OutletAvailability{{Outlet: outlet, IsAvailable: true}}},
		types.MenuItem{ID: primitive.NewObjectID(), Name: "elsewhere", OutletAvailability: []types.OutletAvailability{{Outlet: primitive.NewObjectID()}}},
	}
	require.NoError(t, m.InsertMany(ctx, types.CollMenuItems, items))

	var found []types.MenuItem
	require.NoError(t, m.Find(ctx, types.CollMenuItems, bson.M{"outletAvailability.outlet": outlet}, 0, &found))
	require.Len(t, found, 1)
	assert.Equal(t, "here", found[0].Name)
}

func TestMemoryArrayContains(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	outlet := primitive.NewObjectID()

	require.NoError(t, m.InsertOne(ctx, types.CollRestaurants, types.Restaurant{
		ID:      primitive.NewObjectID(),
		Outlets: []primitive.ObjectID{primitive.NewObjectID(), outlet},
	}))

	n, err := m.Count(ctx, types.CollRestaurants, bson.M{"outlets": outlet})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMemoryNilMatchesMissingAndNull(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	order := primitive.NewObjectID()
	require.NoError(t, m.InsertMany(ctx, types.CollTables, []interface{}{
		types.Table{ID: primitive.NewObjectID(), Name: "free"},
		types.Table{ID: primitive.NewObjectID(), Name: "busy", CurrentOrder: &order},
		bson.M{"name": "bare"},
	}))

	n, err := m.Count(ctx, types.CollTables, bson.M{"currentOrder": nil})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = m.Count(ctx, types.CollTables, bson.M{"currentOrder": &order})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMemoryUniqueIndex(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	spec := types.IndexSpec{Collection: types.CollCategories, Keys: []string{"restaurant", "name"}, Unique: true}
	require.NoError(t, m.EnsureIndex(ctx, spec))
	require.NoError(t, m.EnsureIndex(ctx, spec), "same index twice is a no-op")

	r1, r2 := primitive.NewObjectID(), primitive.NewObjectID()
	require.NoError(t, m.InsertOne(ctx, types.CollCategories, types.Category{ID: primitive.NewObjectID(), Restaurant: r1, Name: "Drinks"}))
	require.NoError(t, m.InsertOne(ctx, types.CollCategories, types.Category{ID: primitive.NewObjectID(), Restaurant: r2, Name: "Drinks"}))

	err := m.InsertOne(ctx, types.CollCategories, types.Category{ID: primitive.NewObjectID(), Restaurant: r1, Name: "Drinks"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	n, err := m.Count(ctx, types.CollCategories, bson.M{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestMemoryUniqueIndexOnUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.EnsureIndex(ctx, types.IndexSpec{Collection: types.CollUsers, Keys: []string{"email"}, Unique: true}))

	a := types.User{ID: primitive.NewObjectID(), Email: "a@example.com"}
	b := types.User{ID: primitive.NewObjectID(), Email: "b@example.com"}
	require.NoError(t, m.InsertMany(ctx, types.CollUsers, []interface{}{a, b}))

	require.NoError(t, m.UpdateByID(ctx, types.CollUsers, a.ID, bson.M{"name": "A"}))
	err := m.UpdateByID(ctx, types.CollUsers, a.ID, bson.M{"email": "b@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestMemoryEnsureIndexConflicts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.EnsureIndex(ctx, types.IndexSpec{Collection: types.CollRoles, Keys: []string{"name"}}))
	err := m.EnsureIndex(ctx, types.IndexSpec{Collection: types.CollRoles, Keys: []string{"name"}, Unique: true})
	assert.Error(t, err)

	require.NoError(t, m.InsertMany(ctx, types.CollUsers, []interface{}{
		bson.M{"email": "same@example.com"},
		bson.M{"email": "same@example.com"},
	}))
	err = m.EnsureIndex(ctx, types.IndexSpec{Collection: types.CollUsers, Keys: []string{"email"}, Unique: true})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestMemoryUpdateByID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	inv := types.InventoryItem{ID: primitive.NewObjectID(), Name: "Rice (kg)", CurrentQty: 10}
	require.NoError(t, m.InsertOne(ctx, types.CollInventoryItems, inv))

	later := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, m.UpdateByID(ctx, types.CollInventoryItems, inv.ID, bson.M{"currentQty": 7.25, "updatedAt": later}))

	var got types.InventoryItem
	require.NoError(t, m.FindOne(ctx, types.CollInventoryItems, bson.M{"_id": inv.ID}, &got))
	assert.Equal(t, 7.25, got.CurrentQty)
	assert.Equal(t, "Rice (kg)", got.Name)
	assert.True(t, later.Equal(got.UpdatedAt))

	err := m.UpdateByID(ctx, types.CollInventoryItems, primitive.NewObjectID(), bson.M{"currentQty": 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUpsert(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	filter := bson.M{"name": "Admin"}

	require.NoError(t, m.Upsert(ctx, types.CollRoles, filter, bson.M{"description": "v1"}, bson.M{"createdAt": created}))
	require.NoError(t, m.Upsert(ctx, types.CollRoles, filter, bson.M{"description": "v2"}, bson.M{"createdAt": created.Add(time.Hour)}))

	var roles []types.Role
	require.NoError(t, m.Find(ctx, types.CollRoles, bson.M{}, 0, &roles))
	require.Len(t, roles, 1)
	assert.Equal(t, "Admin", roles[0].Name)
	assert.Equal(t, "v2", roles[0].Description)
	assert.True(t, created.Equal(roles[0].CreatedAt), "setOnInsert applies only on insert")
	assert.False(t, roles[0].ID.IsZero())
}

func TestMemoryDeleteByID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	id := primitive.NewObjectID()
	require.NoError(t, m.InsertOne(ctx, types.CollMenuItems, types.MenuItem{ID: id}))

	assert.True(t, m.DeleteByID(types.CollMenuItems, id))
	assert.False(t, m.DeleteByID(types.CollMenuItems, id))

	var mi types.MenuItem
	assert.ErrorIs(t, m.FindOne(ctx, types.CollMenuItems, bson.M{"_id": id}, &mi), ErrNotFound)
}
