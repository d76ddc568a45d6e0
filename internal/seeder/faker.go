package seeder

import (
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DataGenerator is the single source of random content for a run. It is
// created once from the configured seed and passed to every builder.
type DataGenerator struct {
	rand  *rand.Rand
	faker *gofakeit.Faker
}

func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rand:  rand.New(rand.NewSource(seed)),
		faker: gofakeit.New(uint64(seed)),
	}
}

// IntRange returns a value in [lo, hi].
func (g *DataGenerator) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rand.Intn(hi-lo+1)
}

// FloatRange returns a value in [lo, hi) rounded to places decimals.
func (g *DataGenerator) FloatRange(lo, hi float64, places int32) float64 {
	v := lo + g.rand.Float64()*(hi-lo)
	return round(v, places)
}

func (g *DataGenerator) Chance(p float64) bool {
	return g.rand.Float64() < p
}

func (g *DataGenerator) Choice(options []string) string {
	return options[g.rand.Intn(len(options))]
}

// Sample picks k distinct elements, keeping the order they were drawn in.
func (g *DataGenerator) Sample(options []string, k int) []string {
	if k > len(options) {
		k = len(options)
	}
	perm := g.rand.Perm(len(options))
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = options[perm[i]]
	}
	return out
}

// Weighted picks options[i] with probability weights[i]/sum(weights).
func (g *DataGenerator) Weighted(options []string, weights []int) string {
	total := 0
	for _, w := range weights {
		total += w
	}
	n := g.rand.Intn(total)
	for i, w := range weights {
		if n < w {
			return options[i]
		}
		n -= w
	}
	return options[len(options)-1]
}

func (g *DataGenerator) CompanyName() string {
	return g.faker.Company()
}

func (g *DataGenerator) PersonName() string {
	return g.faker.Name()
}

func (g *DataGenerator) Phone() string {
	return g.faker.Phone()
}

func (g *DataGenerator) Domain() string {
	return g.faker.DomainName()
}

func (g *DataGenerator) CompanyEmail() string {
	return fmt.Sprintf("%s@%s", g.Choice([]string{"info", "contact", "hello", "orders"}), g.Domain())
}

func (g *DataGenerator) Address() string {
	return g.faker.Address().Address
}

func (g *DataGenerator) Word() string {
	return g.faker.Noun()
}

func (g *DataGenerator) DishName() string {
	var dish string
	if g.rand.Intn(2) == 0 {
		dish = g.faker.Lunch()
	} else {
		dish = g.faker.Dinner()
	}
	if len(dish) > 30 {
		dish = dish[:30]
	}
	return strings.TrimSpace(dish)
}

func (g *DataGenerator) Description() string {
	return fmt.Sprintf("%s %s with %s %s and %s.",
		capitalize(g.faker.Adjective()), g.faker.Noun(),
		g.faker.Adjective(), g.faker.Vegetable(), g.faker.Noun())
}

var inventoryPool = []string{
	"Rice (kg)", "Chicken (kg)", "Canned Cola (pcs)", "Burger Buns (pcs)", "Lettuce (kg)", "Tomato (kg)",
	"Cheese (kg)", "Potato (kg)", "Onion (kg)", "Garlic (kg)", "Oil (ltr)", "Sugar (kg)", "Salt (kg)",
	"Flour (kg)", "Butter (kg)", "Eggs (dozen)", "Milk (ltr)", "Yogurt (kg)", "Paneer (kg)", "Fish (kg)",
	"Pasta (kg)", "Tomato Sauce (ltr)", "Chilli Sauce (ltr)", "Mayonnaise (ltr)", "Bread Loaf (pcs)",
	"Veg Mix (kg)", "Spice Mix (kg)", "Coconut (pcs)", "Coriander (kg)", "Curry Leaves (kg)",
}

var unitSuffixes = []string{"(kg)", "(pcs)", "(ltr)", "(dozen)"}

// InventoryNames returns n ingredient names. The curated pool is used first;
// overflow names carry a strictly increasing counter so they never repeat.
func (g *DataGenerator) InventoryNames(n int) []string {
	if n <= len(inventoryPool) {
		return append([]string(nil), inventoryPool[:n]...)
	}
	names := append(make([]string, 0, n), inventoryPool...)
	for count := 0; len(names) < n; count++ {
		suffix := g.Choice(unitSuffixes)
		names = append(names, fmt.Sprintf("%s Ingredient %d %s", capitalize(g.Word()), count, suffix))
	}
	return names
}

// UnitFromName reads the unit from a trailing "(unit)" suffix.
func UnitFromName(name string) string {
	start := strings.LastIndex(name, "(")
	end := strings.LastIndex(name, ")")
	if start < 0 || end <= start {
		return "pcs"
	}
	return name[start+1 : end]
}

// IsCountUnit reports whether recipe quantities for unit are whole numbers.
func IsCountUnit(unit string) bool {
	return unit == "pcs" || unit == "dozen"
}

// TokenSource yields short identity tokens for emails, tax numbers and order
// numbers. It is kept apart from the content generator so that re-running with
// the same seed does not collide with existing unique keys.
type TokenSource func() string

func RandomTokens() TokenSource {
	return func() string {
		return shortToken(uuid.New())
	}
}

// ReaderTokens derives tokens from r; with a seeded reader the sequence is
// reproducible. It panics once r can no longer supply 16 bytes, so a run that
// was meant to be deterministic never mixes in random tokens.
func ReaderTokens(r io.Reader) TokenSource {
	return func() string {
		id, err := uuid.NewRandomFromReader(r)
		if err != nil {
			panic(fmt.Sprintf("token reader exhausted: %v", err))
		}
		return shortToken(id)
	}
}

func shortToken(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")[:6]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
