package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rana718/posseed/internal/store"
	"github.com/Rana718/posseed/internal/types"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	orderStatuses      = []string{types.OrderCompleted, types.OrderPending, types.OrderCancelled}
	orderStatusWeights = []int{60, 25, 15}
	lineQuantities     = []int{1, 1, 1, 2}
)

// synthesizeOrders places OrdersPerOutlet orders at every outlet of the tenant
// and applies each order's ingredient consumption and table effect.
func (s *Seeder) synthesizeOrders(ctx context.Context, t *Tenant) error {
	for _, outlet := range t.Outlets {
		menus, err := s.menuForOutlet(ctx, t.Restaurant.ID, outlet.ID)
		if err != nil {
			return err
		}

		var tables []types.Table
		filter := bson.M{"restaurant": t.Restaurant.ID, "outlet": outlet.ID}
		if err := s.store.Find(ctx, types.CollTables, filter, 0, &tables); err != nil {
			return fmt.Errorf("failed to load tables: %w", err)
		}

		for i := 0; i < s.config.OrdersPerOutlet; i++ {
			order := NewOrder(s.generator, s.tokens, s.now(), outlet, menus, tables, t.Admin.ID)
			if err := s.insertOne(ctx, types.CollOrders, order); err != nil {
				return fmt.Errorf("failed to insert order %s: %w", order.OrderNumber, err)
			}
			s.report.Orders[order.Status]++
			s.metrics.OrdersByStatus.WithLabelValues(order.Status).Inc()

			if err := s.applyConsumption(ctx, order); err != nil {
				return err
			}
			if err := s.applyTableState(ctx, order); err != nil {
				return err
			}
			s.logger.Debug("order synthesized",
				zap.String("orderNumber", order.OrderNumber),
				zap.String("status", order.Status),
				zap.Float64("total", order.Total))
		}
		color.Cyan("  🧾 %s: %d orders", outlet.Name, s.config.OrdersPerOutlet)
	}
	return nil
}

func (s *Seeder) menuForOutlet(ctx context.Context, restaurant, outlet primitive.ObjectID) ([]types.MenuItem, error) {
	var menus []types.MenuItem
	filter := bson.M{"restaurant": restaurant, "outletAvailability.outlet": outlet}
	if err := s.store.Find(ctx, types.CollMenuItems, filter, menuCandidateMax, &menus); err != nil {
		return nil, fmt.Errorf("failed to load menu for outlet: %w", err)
	}
	if len(menus) > 0 {
		return menus, nil
	}
	if err := s.store.Find(ctx, types.CollMenuItems, bson.M{"restaurant": restaurant}, menuCandidateMax, &menus); err != nil {
		return nil, fmt.Errorf("failed to load restaurant menu: %w", err)
	}
	return menus, nil
}

// NewOrder builds an order from 1-4 lines of the candidate menu. Totals carry
// no tax, discount or service charge.
func NewOrder(g *DataGenerator, tokens TokenSource, now time.Time, outlet types.Outlet,
	menus []types.MenuItem, tables []types.Table, placedBy primitive.ObjectID) types.Order {

	items := []types.OrderLine{}
	lines := g.IntRange(1, 4)
	for i := 0; i < lines && len(menus) > 0; i++ {
		mi := menus[g.rand.Intn(len(menus))]
		items = append(items, types.OrderLine{
			MenuItem: mi.ID,
			Name:     mi.Name,
			Qty:      lineQuantities[g.rand.Intn(len(lineQuantities))],
			Price:    mi.BasePrice,
		})
	}

	subtotal := Subtotal(items)
	status := g.Weighted(orderStatuses, orderStatusWeights)
	number := fmt.Sprintf("ORD-%d-%d-%s", now.Unix(), g.IntRange(1000, 9999), tokens())

	order := types.Order{
		ID:          primitive.NewObjectID(),
		Restaurant:  outlet.Restaurant,
		Outlet:      outlet.ID,
		OrderNumber: number,
		Type:        types.OrderCounter,
		Items:       items,
		Subtotal:    subtotal,
		Total:       subtotal,
		Payments:    []types.Payment{},
		Status:      status,
		PlacedAt:    now,
		PlacedBy:    placedBy,
		Meta:        map[string]interface{}{"seed": true},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if len(tables) > 0 {
		table := tables[g.rand.Intn(len(tables))].ID
		order.Table = &table
		order.Type = types.OrderDineIn
	}

	if status == types.OrderCompleted {
		order.Payments = append(order.Payments, types.Payment{
			Method:         "cash",
			Amount:         order.Total,
			TransactionRef: "TX-" + number,
			PaidAt:         now,
		})
	}
	return order
}

// Subtotal sums price*qty over the lines, rounded to cents.
func Subtotal(items []types.OrderLine) float64 {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return sum.Round(2).InexactFloat64()
}

type consumption struct {
	item primitive.ObjectID
	qty  decimal.Decimal
}

// applyConsumption derives ingredient usage from the order lines, whatever the
// order's status, and depletes stock with one usage movement per ingredient.
// References that no longer resolve are skipped and counted.
func (s *Seeder) applyConsumption(ctx context.Context, order types.Order) error {
	var needs []*consumption
	byItem := make(map[primitive.ObjectID]*consumption)

	for _, line := range order.Items {
		var mi types.MenuItem
		err := s.store.FindOne(ctx, types.CollMenuItems, bson.M{"_id": line.MenuItem}, &mi)
		if errors.Is(err, store.ErrNotFound) {
			s.skip("menu_item", order, line.MenuItem)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load menu item %s: %w", line.MenuItem.Hex(), err)
		}

		for _, r := range mi.Meta.Recipe {
			need := decimal.NewFromFloat(r.Qty).Mul(decimal.NewFromInt(int64(line.Qty)))
			c, ok := byItem[r.InventoryItemID]
			if !ok {
				c = &consumption{item: r.InventoryItemID, qty: decimal.Zero}
				byItem[r.InventoryItemID] = c
				needs = append(needs, c)
			}
			c.qty = c.qty.Add(need)
		}
	}

	for _, c := range needs {
		var inv types.InventoryItem
		err := s.store.FindOne(ctx, types.CollInventoryItems, bson.M{"_id": c.item}, &inv)
		if errors.Is(err, store.ErrNotFound) {
			s.skip("inventory_item", order, c.item)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load inventory item %s: %w", c.item.Hex(), err)
		}

		need := c.qty.Round(3).InexactFloat64()
		remaining := decimal.NewFromFloat(inv.CurrentQty).Sub(c.qty)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}

		now := s.now()
		set := bson.M{"currentQty": remaining.Round(3).InexactFloat64(), "updatedAt": now}
		if err := s.store.UpdateByID(ctx, types.CollInventoryItems, inv.ID, set); err != nil {
			return fmt.Errorf("failed to deplete inventory item %s: %w", inv.Name, err)
		}

		hex := c.item.Hex()
		move := types.StockMovement{
			ID:            primitive.NewObjectID(),
			Restaurant:    order.Restaurant,
			Outlet:        order.Outlet,
			InventoryItem: c.item,
			Change:        -need,
			Type:          types.MovementUsage,
			Reference:     fmt.Sprintf("SEED-ORD-%s-%s", order.OrderNumber, hex[:6]),
			Note:          "Seed consumption for order " + order.OrderNumber,
			PerformedBy:   order.PlacedBy,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.insertOne(ctx, types.CollStockMovements, move); err != nil {
			return fmt.Errorf("failed to record usage for %s: %w", inv.Name, err)
		}
		s.report.Movements[types.MovementUsage]++
		s.metrics.StockMovements.WithLabelValues(types.MovementUsage).Inc()
	}
	return nil
}

func (s *Seeder) skip(kind string, order types.Order, ref primitive.ObjectID) {
	switch kind {
	case "menu_item":
		s.report.Skipped.MenuItems++
	case "inventory_item":
		s.report.Skipped.InventoryItems++
	}
	s.metrics.SkippedRefs.WithLabelValues(kind).Inc()
	s.logger.Warn("stale recipe reference skipped",
		zap.String("kind", kind),
		zap.String("ref", ref.Hex()),
		zap.String("orderNumber", order.OrderNumber))
}

func (s *Seeder) applyTableState(ctx context.Context, order types.Order) error {
	if order.Table == nil {
		return nil
	}

	var set bson.M
	switch {
	case order.Status == types.OrderPending:
		set = bson.M{"status": types.TableOccupied, "currentOrder": order.ID, "updatedAt": s.now()}
	case s.config.TableMode == TableLastWrite:
		set = bson.M{"status": types.TableAvailable, "currentOrder": nil, "updatedAt": s.now()}
	default:
		return nil
	}

	if err := s.store.UpdateByID(ctx, types.CollTables, *order.Table, set); err != nil {
		return fmt.Errorf("failed to update table for order %s: %w", order.OrderNumber, err)
	}
	return nil
}
