package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names expected by the POS backend.
const (
	CollRoles          = "roles"
	CollUsers          = "users"
	CollRestaurants    = "restaurants"
	CollOutlets        = "outlets"
	CollSuppliers      = "suppliers"
	CollInventoryItems = "inventoryitems"
	CollCategories     = "categories"
	CollMenuItems      = "menuitems"
	CollTables         = "tables"
	CollStockMovements = "stockmovements"
	CollOrders         = "orders"
	CollAuditLogs      = "auditlogs" // reserved, never written by the seeder
)

// SeededCollections lists every collection a run writes, in write order.
var SeededCollections = []string{
	CollRoles, CollUsers, CollRestaurants, CollOutlets, CollSuppliers, CollInventoryItems,
	CollCategories, CollMenuItems, CollTables, CollStockMovements, CollOrders,
}

const (
	RoleSuperAdmin = "SuperAdmin"
	RoleAdmin      = "Admin"
	RoleCashier    = "Cashier"

	ScopeGlobal     = "global"
	ScopeRestaurant = "restaurant"
)

const (
	OrderCompleted = "completed"
	OrderPending   = "pending"
	OrderCancelled = "cancelled"

	OrderDineIn  = "dine_in"
	OrderCounter = "counter"
)

const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
)

const (
	MovementPurchase = "purchase"
	MovementUsage    = "usage"
)

type Role struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Permissions []string           `bson:"permissions" json:"permissions"`
	Scope       string             `bson:"scope" json:"scope"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type User struct {
	ID           primitive.ObjectID   `bson:"_id" json:"id"`
	Email        string               `bson:"email" json:"email"`
	Name         string               `bson:"name" json:"name"`
	PasswordHash string               `bson:"passwordHash" json:"-"`
	Restaurant   *primitive.ObjectID  `bson:"restaurant,omitempty" json:"restaurant,omitempty"`
	Roles        []primitive.ObjectID `bson:"roles" json:"roles"`
	Outlet       *primitive.ObjectID  `bson:"outlet,omitempty" json:"outlet,omitempty"`
	IsActive     bool                 `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type Restaurant struct {
	ID           primitive.ObjectID     `bson:"_id" json:"id"`
	Name         string                 `bson:"name" json:"name"`
	LegalName    string                 `bson:"legalName" json:"legalName"`
	TaxNumber    string                 `bson:"taxNumber" json:"taxNumber"`
	OwnerName    string                 `bson:"ownerName" json:"ownerName"`
	ContactEmail string                 `bson:"contactEmail" json:"contactEmail"`
	ContactPhone string                 `bson:"contactPhone" json:"contactPhone"`
	Address      string                 `bson:"address" json:"address"`
	Cuisine      []string               `bson:"cuisine" json:"cuisine"`
	Settings     map[string]interface{} `bson:"settings" json:"settings"`
	Outlets      []primitive.ObjectID   `bson:"outlets" json:"outlets"`
	CreatedAt    time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time              `bson:"updatedAt" json:"updatedAt"`
}

type Outlet struct {
	ID         primitive.ObjectID     `bson:"_id" json:"id"`
	Restaurant primitive.ObjectID     `bson:"restaurant" json:"restaurant"`
	Name       string                 `bson:"name" json:"name"`
	Code       string                 `bson:"code" json:"code"`
	Address    string                 `bson:"address" json:"address"`
	Phone      string                 `bson:"phone" json:"phone"`
	TimeZone   string                 `bson:"timeZone" json:"timeZone"`
	Currency   string                 `bson:"currency" json:"currency"`
	Settings   map[string]interface{} `bson:"settings" json:"settings"`
	CreatedAt  time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time              `bson:"updatedAt" json:"updatedAt"`
}

type Supplier struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Restaurant primitive.ObjectID `bson:"restaurant" json:"restaurant"`
	Name       string             `bson:"name" json:"name"`
	Contact    string             `bson:"contact" json:"contact"`
	Phone      string             `bson:"phone" json:"phone"`
	Email      string             `bson:"email" json:"email"`
	Address    string             `bson:"address" json:"address"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type InventoryItem struct {
	ID         primitive.ObjectID     `bson:"_id" json:"id"`
	Restaurant primitive.ObjectID     `bson:"restaurant" json:"restaurant"`
	Outlet     primitive.ObjectID     `bson:"outlet" json:"outlet"`
	Name       string                 `bson:"name" json:"name"`
	SKU        string                 `bson:"sku" json:"sku"`
	Unit       string                 `bson:"unit" json:"unit"`
	CostPrice  float64                `bson:"costPrice" json:"costPrice"`
	CurrentQty float64                `bson:"currentQty" json:"currentQty"`
	ParLevel   int                    `bson:"parLevel" json:"parLevel"`
	Supplier   primitive.ObjectID     `bson:"supplier" json:"supplier"`
	IsTracked  bool                   `bson:"isTracked" json:"isTracked"`
	Location   string                 `bson:"location" json:"location"`
	Meta       map[string]interface{} `bson:"meta" json:"meta"`
	CreatedAt  time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time              `bson:"updatedAt" json:"updatedAt"`
}

type Category struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Restaurant primitive.ObjectID `bson:"restaurant" json:"restaurant"`
	Name       string             `bson:"name" json:"name"`
	Order      int                `bson:"order" json:"order"`
	IsVisible  bool               `bson:"isVisible" json:"isVisible"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RecipeEntry is one ingredient line of a menu item; Qty is per unit sold.
type RecipeEntry struct {
	InventoryItemID primitive.ObjectID `bson:"inventoryItemId" json:"inventoryItemId"`
	Qty             float64            `bson:"qty" json:"qty"`
	Unit            string             `bson:"unit" json:"unit"`
}

type MenuMeta struct {
	Recipe []RecipeEntry `bson:"recipe" json:"recipe"`
}

type Modifier struct {
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
}

type OutletAvailability struct {
	Outlet      primitive.ObjectID `bson:"outlet" json:"outlet"`
	IsAvailable bool               `bson:"isAvailable" json:"isAvailable"`
}

type MenuItem struct {
	ID                 primitive.ObjectID   `bson:"_id" json:"id"`
	Restaurant         primitive.ObjectID   `bson:"restaurant" json:"restaurant"`
	Categories         []primitive.ObjectID `bson:"categories" json:"categories"`
	Name               string               `bson:"name" json:"name"`
	Description        string               `bson:"description" json:"description"`
	Image              *string              `bson:"image" json:"image"`
	BasePrice          float64              `bson:"basePrice" json:"basePrice"`
	SKU                string               `bson:"sku" json:"sku"`
	IsActive           bool                 `bson:"isActive" json:"isActive"`
	IsTaxable          bool                 `bson:"isTaxable" json:"isTaxable"`
	Variants           []string             `bson:"variants" json:"variants"`
	Modifiers          []Modifier           `bson:"modifiers" json:"modifiers"`
	PrepTimeMins       int                  `bson:"prepTimeMins" json:"prepTimeMins"`
	Tags               []string             `bson:"tags" json:"tags"`
	Meta               MenuMeta             `bson:"meta" json:"meta"`
	OutletAvailability []OutletAvailability `bson:"outletAvailability" json:"outletAvailability"`
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type Table struct {
	ID           primitive.ObjectID     `bson:"_id" json:"id"`
	Restaurant   primitive.ObjectID     `bson:"restaurant" json:"restaurant"`
	Outlet       primitive.ObjectID     `bson:"outlet" json:"outlet"`
	Name         string                 `bson:"name" json:"name"`
	Seats        int                    `bson:"seats" json:"seats"`
	Zone         string                 `bson:"zone" json:"zone"`
	Status       string                 `bson:"status" json:"status"`
	CurrentOrder *primitive.ObjectID    `bson:"currentOrder" json:"currentOrder"`
	Meta         map[string]interface{} `bson:"meta" json:"meta"`
	CreatedAt    time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time              `bson:"updatedAt" json:"updatedAt"`
}

type StockMovement struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Restaurant    primitive.ObjectID `bson:"restaurant" json:"restaurant"`
	Outlet        primitive.ObjectID `bson:"outlet" json:"outlet"`
	InventoryItem primitive.ObjectID `bson:"inventoryItem" json:"inventoryItem"`
	Change        float64            `bson:"change" json:"change"`
	Type          string             `bson:"type" json:"type"`
	Reference     string             `bson:"reference" json:"reference"`
	Note          string             `bson:"note" json:"note"`
	PerformedBy   primitive.ObjectID `bson:"performedBy" json:"performedBy"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type OrderLine struct {
	MenuItem primitive.ObjectID `bson:"menuItem" json:"menuItem"`
	Name     string             `bson:"name" json:"name"`
	Qty      int                `bson:"qty" json:"qty"`
	Price    float64            `bson:"price" json:"price"`
}

type Payment struct {
	Method         string    `bson:"method" json:"method"`
	Amount         float64   `bson:"amount" json:"amount"`
	TransactionRef string    `bson:"transactionRef" json:"transactionRef"`
	PaidAt         time.Time `bson:"paidAt" json:"paidAt"`
}

type Order struct {
	ID            primitive.ObjectID     `bson:"_id" json:"id"`
	Restaurant    primitive.ObjectID     `bson:"restaurant" json:"restaurant"`
	Outlet        primitive.ObjectID     `bson:"outlet" json:"outlet"`
	Table         *primitive.ObjectID    `bson:"table" json:"table"`
	OrderNumber   string                 `bson:"orderNumber" json:"orderNumber"`
	Type          string                 `bson:"type" json:"type"`
	Items         []OrderLine            `bson:"items" json:"items"`
	Subtotal      float64                `bson:"subtotal" json:"subtotal"`
	TaxTotal      float64                `bson:"taxTotal" json:"taxTotal"`
	DiscountTotal float64                `bson:"discountTotal" json:"discountTotal"`
	ServiceCharge float64                `bson:"serviceCharge" json:"serviceCharge"`
	Total         float64                `bson:"total" json:"total"`
	Payments      []Payment              `bson:"payments" json:"payments"`
	Status        string                 `bson:"status" json:"status"`
	PlacedAt      time.Time              `bson:"placedAt" json:"placedAt"`
	PlacedBy      primitive.ObjectID     `bson:"placedBy" json:"placedBy"`
	Notes         string                 `bson:"notes" json:"notes"`
	Meta          map[string]interface{} `bson:"meta" json:"meta"`
	CreatedAt     time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time              `bson:"updatedAt" json:"updatedAt"`
}

// IndexSpec describes a compound index; Keys are ascending.
type IndexSpec struct {
	Collection string
	Keys       []string
	Unique     bool
}

// RequiredIndexes are the uniqueness constraints the POS backend relies on.
var RequiredIndexes = []IndexSpec{
	{Collection: CollRoles, Keys: []string{"name"}, Unique: true},
	{Collection: CollUsers, Keys: []string{"email"}, Unique: true},
	{Collection: CollCategories, Keys: []string{"restaurant", "name"}, Unique: true},
	{Collection: CollOrders, Keys: []string{"restaurant", "outlet", "orderNumber"}, Unique: true},
}
