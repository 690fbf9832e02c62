package analytics

import (
	"fmt"
	"math/rand"
	"time"

	"InsiderPulse/internal/domain/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/shopspring/decimal"
)

var asOf = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

// daysAgo is noon of the bucket d days before asOf; daysAgo(0) is in the last bucket.
func daysAgo(d int) time.Time { return asOf.Add(-time.Duration(d)*24*time.Hour - 12*time.Hour) }

func buy(insider, isin string, at time.Time, amount int64) models.Transaction {
	return models.Transaction{
		InsiderID:    insider,
		InsiderName:  "Name " + insider,
		EntityID:     isin,
		CompanyName:  "Company " + isin,
		Jurisdiction: "DE",
		Currency:     "EUR",
		Timestamp:    at,
		Direction:    models.DirectionBuy,
		Amount:       decimal.NewFromInt(amount),
	}
}

func sell(insider, isin string, at time.Time, amount int64) models.Transaction {
	t := buy(insider, isin, at, amount)
	t.Direction = models.DirectionSell
	return t
}

func other(insider, isin string, at time.Time, method string) models.Transaction {
	t := buy(insider, isin, at, 1000)
	t.TransactionMethod = method
	return t
}

var otherMethods = []string{"", "", "", "", "gift", "AWARD", "option_exercise", "Transfer"}

// txFromSeed maps an integer onto a transaction in a small key space so
// generated slices contain plenty of DedupKey collisions.
func txFromSeed(seed int64) models.Transaction {
	r := rand.New(rand.NewSource(seed))
	t := buy(
		fmt.Sprintf("ins-%d", r.Intn(5)),
		fmt.Sprintf("DE000000000%d", r.Intn(4)),
		daysAgo(r.Intn(40)).Add(time.Duration(r.Intn(20))*time.Hour),
		int64(1000+r.Intn(200000)),
	)
	if r.Intn(2) == 0 {
		t.Direction = models.DirectionSell
	}
	t.TransactionMethod = otherMethods[r.Intn(len(otherMethods))]
	if r.Intn(3) == 0 {
		t.Jurisdiction = "US"
	}
	if r.Intn(25) == 0 {
		t.Timestamp = time.Time{}
	}
	return t
}

func txSliceGen() gopter.Gen {
	return gen.SliceOf(gen.Int64()).Map(func(seeds []int64) []models.Transaction {
		out := make([]models.Transaction, len(seeds))
		for i, s := range seeds {
			out[i] = txFromSeed(s)
		}
		return out
	})
}

func shuffled(txs []models.Transaction, seed int64) []models.Transaction {
	out := append([]models.Transaction(nil), txs...)
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func testParameters() *gopter.TestParameters {
	p := gopter.DefaultTestParametersWithSeed(42)
	p.MinSuccessfulTests = 200
	return p
}
