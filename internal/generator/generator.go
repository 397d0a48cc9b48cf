package generator

import (
	"fmt"
	"math/rand"
	"time"

	"sales-dashboard-api/internal/models"
	"sales-dashboard-api/pkg/utils"
)

// Value pools for synthetic records. Pool order matters: picks are driven by
// a seeded PRNG, so reordering a pool changes every generated dataset.
var (
	firstNames = []string{"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda", "David", "Elizabeth", "William", "Barbara"}
	lastNames  = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez"}
	regions    = []string{"North America", "Europe", "Asia Pacific", "Latin America", "Middle East"}
	cities     = []string{"New York", "London", "Tokyo", "Paris", "Dubai", "Singapore", "Berlin", "Toronto"}
	categories = []string{"Electronics", "Fashion", "Home & Garden", "Sports", "Beauty"}
	brands     = []string{"Apex", "Nova", "Vertex", "Echo", "Solstice", "Luna"}
	tagsPool   = []string{"Bestseller", "New Arrival", "Eco-Friendly", "Limited Edition", "Discounted", "Gift"}
	nouns      = []string{"Widget", "Gadget", "Tool", "Device", "Accessory"}

	genders        = []string{models.GenderMale, models.GenderFemale, models.GenderOther}
	customerTypes  = []string{models.CustomerTypeRegular, models.CustomerTypePremium, models.CustomerTypeNew}
	paymentMethods = []string{models.PaymentCreditCard, models.PaymentDebitCard, models.PaymentPayPal, models.PaymentCash}
	orderStatuses  = []string{models.StatusCompleted, models.StatusPending, models.StatusCancelled, models.StatusReturned}
	deliveryTypes  = []string{models.DeliveryStandard, models.DeliveryExpress, models.DeliveryPickup}
)

// Generator produces deterministic synthetic sales. Each Generator owns its
// random state, so generators with different seeds can coexist and a fresh
// Generator with the same seed replays the same sequence. "Now" is captured
// at construction so every record's date is an offset from a single instant.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

func New(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now(),
	}
}

// Generate returns count sales fully determined by the generator's seed.
func (g *Generator) Generate(count int) []models.Sale {
	sales := make([]models.Sale, count)
	for i := range sales {
		sales[i] = g.next(i)
	}
	return sales
}

// Generate is a convenience for a one-shot dataset from a fresh seed.
func Generate(count int, seed int64) []models.Sale {
	return New(seed).Generate(count)
}

func (g *Generator) next(index int) models.Sale {
	quantity := g.intBetween(1, 10)
	price := float64(g.intBetween(10, 500))
	discount := float64(g.intBetween(0, 30))
	total := utils.LineTotal(quantity, price)
	final := utils.ApplyDiscount(total, discount)

	// A date within the last year.
	date := g.now.AddDate(0, 0, -g.intBetween(0, 365))

	brand := g.pick(brands)

	return models.Sale{
		CustomerID:     fmt.Sprintf("CUST-%d", 1000+index),
		CustomerName:   g.fullName(),
		PhoneNumber:    fmt.Sprintf("555-%d-%d", g.intBetween(100, 999), g.intBetween(1000, 9999)),
		Gender:         g.pick(genders),
		Age:            g.intBetween(18, 80),
		CustomerRegion: g.pick(regions),
		CustomerType:   g.pick(customerTypes),

		ProductID:       fmt.Sprintf("PROD-%d", g.intBetween(100, 999)),
		ProductName:     fmt.Sprintf("%s %s %d", brand, g.pick(nouns), g.intBetween(1, 9)),
		Brand:           brand,
		ProductCategory: g.pick(categories),
		Tags:            []string{g.pick(tagsPool), g.pick(tagsPool)},

		Quantity:           quantity,
		PricePerUnit:       price,
		DiscountPercentage: discount,
		TotalAmount:        total,
		FinalAmount:        final,

		Date:          date,
		PaymentMethod: g.pick(paymentMethods),
		OrderStatus:   g.pick(orderStatuses),
		DeliveryType:  g.pick(deliveryTypes),
		StoreID:       fmt.Sprintf("STORE-%d", g.intBetween(1, 20)),
		StoreLocation: g.pick(cities),
		SalespersonID: fmt.Sprintf("EMP-%d", g.intBetween(100, 199)),
		EmployeeName:  g.fullName(),
	}
}

func (g *Generator) fullName() string {
	return g.pick(firstNames) + " " + g.pick(lastNames)
}

func (g *Generator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

// intBetween returns a value in [min, max] inclusive.
func (g *Generator) intBetween(min, max int) int {
	return g.rng.Intn(max-min+1) + min
}
