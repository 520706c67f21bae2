package datagen

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

var (
	insuranceTypes = []string{"auto", "home", "travel", "life"}
	claimStatuses  = []string{"pending", "approved", "denied", "processing"}
	policyStatuses = []string{"active", "expired", "cancelled", "suspended"}
)

type amountRange struct {
	min, max int
}

type rateRange struct {
	min, max float64
}

// coverageRanges bounds coverage per insurance type.
var coverageRanges = map[string]amountRange{
	"auto":   {10_000, 100_000},
	"home":   {100_000, 1_000_000},
	"travel": {1_000, 50_000},
	"life":   {50_000, 1_000_000},
}

// premiumRates bounds the annual premium as a fraction of coverage.
var premiumRates = map[string]rateRange{
	"auto":   {0.02, 0.08},
	"home":   {0.005, 0.02},
	"travel": {0.1, 0.3},
	"life":   {0.01, 0.05},
}

// claimTypes lists the claim categories valid for each insurance type.
var claimTypes = map[string][]string{
	"auto":   {"collision", "comprehensive", "liability", "theft"},
	"home":   {"fire", "theft", "water damage", "storm damage", "vandalism"},
	"travel": {"trip cancellation", "medical emergency", "lost luggage", "flight delay"},
	"life":   {"death benefit", "terminal illness", "disability"},
}

const (
	policyTermDays   = 365
	claimProbability = 0.3
	minClaimAmount   = 1000.0
	// claims never exceed this fraction of the policy coverage
	maxClaimFraction = 0.8
)

type Customer struct {
	ID          int
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	DateOfBirth time.Time
	Address     string
	City        string
	State       string
	ZipCode     string
}

type Policy struct {
	ID             int
	CustomerID     int
	Type           string
	CoverageAmount int
	PremiumAmount  float64
	StartDate      time.Time
	EndDate        time.Time
	Status         string
}

type Claim struct {
	ID          int
	PolicyID    int
	Amount      float64
	Date        time.Time
	Status      string
	Type        string
	Description string
}

// Generator produces a synthetic insurance portfolio. The same seed
// yields the same portfolio, so generated fixtures are reproducible.
type Generator struct {
	faker *gofakeit.Faker
	now   time.Time
}

func New(seed uint64) *Generator {
	return &Generator{
		faker: gofakeit.New(seed),
		now:   time.Now().UTC().Truncate(24 * time.Hour),
	}
}

func (g *Generator) Customers(n int) []Customer {
	customers := make([]Customer, 0, n)
	for id := 1; id <= n; id++ {
		customers = append(customers, Customer{
			ID:          id,
			FirstName:   g.faker.FirstName(),
			LastName:    g.faker.LastName(),
			Email:       g.faker.Email(),
			Phone:       g.faker.Phone(),
			DateOfBirth: g.dateOfBirth(18, 85),
			Address:     g.faker.Street(),
			City:        g.faker.City(),
			State:       g.faker.StateAbr(),
			ZipCode:     g.faker.Zip(),
		})
	}
	return customers
}

// Policies deals each customer 1 to 4 policies of distinct types with
// one-year terms starting within the last two years.
func (g *Generator) Policies(customers []Customer) []Policy {
	var policies []Policy
	policyID := 1

	for _, customer := range customers {
		count := g.faker.IntRange(1, 4)
		types := append([]string(nil), insuranceTypes...)
		g.faker.ShuffleStrings(types)

		for _, policyType := range types[:count] {
			coverage := coverageRanges[policyType]
			coverageAmount := g.faker.IntRange(coverage.min, coverage.max)

			rate := premiumRates[policyType]
			premium := float64(coverageAmount) * g.faker.Float64Range(rate.min, rate.max)

			startDate := g.dateBetween(g.now.AddDate(-2, 0, 0), g.now)

			policies = append(policies, Policy{
				ID:             policyID,
				CustomerID:     customer.ID,
				Type:           policyType,
				CoverageAmount: coverageAmount,
				PremiumAmount:  round2(premium),
				StartDate:      startDate,
				EndDate:        startDate.AddDate(0, 0, policyTermDays),
				Status:         g.pick(policyStatuses),
			})
			policyID++
		}
	}
	return policies
}

// Claims files claims against roughly 30% of policies. A claimed
// policy carries 1 claim most of the time, occasionally 2 or 3.
func (g *Generator) Claims(policies []Policy) []Claim {
	var claims []Claim
	claimID := 1

	for _, policy := range policies {
		if g.faker.Float64Range(0, 1) >= claimProbability {
			continue
		}

		for range g.claimCount() {
			maxClaim := float64(policy.CoverageAmount) * maxClaimFraction
			amount := g.faker.Float64Range(minClaimAmount, maxClaim)

			windowEnd := policy.EndDate
			if g.now.Before(windowEnd) {
				windowEnd = g.now
			}

			claims = append(claims, Claim{
				ID:          claimID,
				PolicyID:    policy.ID,
				Amount:      round2(amount),
				Date:        g.dateBetween(policy.StartDate, windowEnd),
				Status:      g.pick(claimStatuses),
				Type:        g.pick(claimTypes[policy.Type]),
				Description: g.faker.Sentence(12),
			})
			claimID++
		}
	}
	return claims
}

func (g *Generator) claimCount() int {
	roll := g.faker.IntRange(1, 100)
	switch {
	case roll <= 70:
		return 1
	case roll <= 95:
		return 2
	default:
		return 3
	}
}

func (g *Generator) pick(options []string) string {
	return options[g.faker.IntRange(0, len(options)-1)]
}

func (g *Generator) dateOfBirth(minAge, maxAge int) time.Time {
	earliest := g.now.AddDate(-maxAge, 0, 0)
	latest := g.now.AddDate(-minAge, 0, 0)
	return g.dateBetween(earliest, latest)
}

func (g *Generator) dateBetween(start, end time.Time) time.Time {
	if !end.After(start) {
		return start
	}
	return g.faker.DateRange(start, end).UTC().Truncate(24 * time.Hour)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
