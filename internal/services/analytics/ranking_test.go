package analytics

import (
	"fmt"
	"reflect"
	"testing"

	"InsiderPulse/internal/domain/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func companyTxs(isin, jurisdiction string, buys, sells, insiders int) []models.Transaction {
	var out []models.Transaction
	for i := 0; i < buys+sells; i++ {
		insider := fmt.Sprintf("%s-%d", isin, i%insiders)
		var tx models.Transaction
		if i < buys {
			tx = buy(insider, isin, daysAgo(i), 1000)
		} else {
			tx = sell(insider, isin, daysAgo(i), 1000)
		}
		tx.Jurisdiction = jurisdiction
		out = append(out, tx)
	}
	return out
}

func TestBreadth(t *testing.T) {
	var txs []models.Transaction
	txs = append(txs, companyTxs("DE01", "DE", 8, 2, 3)...)  // 80 bullish
	txs = append(txs, companyTxs("DE02", "DE", 5, 5, 2)...)  // 50 neutral
	txs = append(txs, companyTxs("US01", "US", 1, 4, 2)...)  // 20 bearish
	txs = append(txs, companyTxs("US02", "US", 7, 3, 1)...)  // 70 bullish
	txs = append(txs, companyTxs("XX01", "", 3, 0, 1)...)    // 100 bullish
	w := models.WindowEndingAt(asOf, 30)

	mb := NewRankingEngine(DefaultConfig()).Breadth(Aggregate(txs, w, AggregateFilter{}))
	assert.Equal(t, 5, mb.TotalActiveCompanies)
	assert.Equal(t, 3, mb.Bullish)
	assert.Equal(t, 1, mb.Bearish)
	assert.Equal(t, 1, mb.Neutral)
	assert.InDelta(t, 0.75, mb.BreadthRatio, 1e-9)
	assert.Equal(t, "bullish", mb.Interpretation)

	require.Len(t, mb.Jurisdictions, 3)
	assert.Equal(t, "DE", mb.Jurisdictions[0].Jurisdiction)
	assert.Equal(t, 20, mb.Jurisdictions[0].Transactions)
	assert.Equal(t, "US", mb.Jurisdictions[1].Jurisdiction)
	assert.Equal(t, "UNKNOWN", mb.Jurisdictions[2].Jurisdiction)
	assert.InDelta(t, 0.65, mb.Jurisdictions[0].BuyRatio, 1e-9)

	require.Len(t, mb.TopActiveCompanies, 5)
	assert.Equal(t, "DE01", mb.TopActiveCompanies[0].EntityID)
}

func TestBreadthEmpty(t *testing.T) {
	mb := NewRankingEngine(DefaultConfig()).Breadth(nil)
	assert.Zero(t, mb.TotalActiveCompanies)
	assert.Zero(t, mb.BreadthRatio)
	assert.Equal(t, "neutral", mb.Interpretation)
	assert.Empty(t, mb.TopActiveCompanies)
}

func TestTopMovers(t *testing.T) {
	var txs []models.Transaction
	txs = append(txs, companyTxs("A", "DE", 4, 0, 2)...) // score 8, ratio 1
	txs = append(txs, companyTxs("B", "DE", 2, 2, 2)...) // score 8, ratio .5
	txs = append(txs, companyTxs("C", "DE", 3, 1, 2)...) // score 8, ratio .75
	txs = append(txs, companyTxs("D", "DE", 2, 0, 1)...) // below minimum
	txs = append(txs, companyTxs("E", "DE", 6, 0, 3)...) // score 18
	txs = append(txs, companyTxs("F", "DE", 3, 1, 2)...) // ties C, id breaks it
	aggs := Aggregate(txs, models.WindowEndingAt(asOf, 30), AggregateFilter{})
	r := NewRankingEngine(DefaultConfig())

	movers := r.TopMovers(aggs, 3, 4)
	ids := make([]string, len(movers))
	for i, m := range movers {
		ids[i] = m.EntityID
	}
	assert.Equal(t, []string{"E", "A", "C", "F"}, ids)
	assert.Equal(t, 18, movers[0].ActivityScore)
	assert.Equal(t, "strong_bullish", movers[0].Sentiment)
	assert.Equal(t, "strong_bullish", movers[2].Sentiment) // 75%

	all := r.TopMovers(aggs, 3, 0)
	assert.Len(t, all, 5)
	assert.Equal(t, "neutral", all[4].Sentiment) // B, 50%
}

func TestRankingProperties(t *testing.T) {
	properties := gopter.NewProperties(testParameters())
	w := models.WindowEndingAt(asOf, 30)
	r := NewRankingEngine(DefaultConfig())

	properties.Property("breadth classes sum to active companies", prop.ForAll(
		func(txs []models.Transaction) bool {
			aggs := Aggregate(txs, w, AggregateFilter{})
			mb := r.Breadth(aggs)
			return mb.Bullish+mb.Bearish+mb.Neutral == mb.TotalActiveCompanies &&
				mb.TotalActiveCompanies == len(aggs)
		},
		txSliceGen(),
	))

	properties.Property("top movers are deterministic and respect the minimum", prop.ForAll(
		func(txs []models.Transaction, seed int64) bool {
			a := r.TopMovers(Aggregate(txs, w, AggregateFilter{}), 3, 10)
			b := r.TopMovers(Aggregate(shuffled(txs, seed), w, AggregateFilter{}), 3, 10)
			for _, m := range a {
				if m.Transactions < 3 {
					return false
				}
			}
			return reflect.DeepEqual(a, b) && len(a) <= 10
		},
		txSliceGen(), gen.Int64(),
	))

	properties.TestingRun(t)
}
