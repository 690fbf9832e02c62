package analytics

import (
	"reflect"
	"testing"

	"InsiderPulse/internal/domain/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateCountsAndVolumes(t *testing.T) {
	w := models.WindowEndingAt(asOf, 28)
	txs := []models.Transaction{
		buy("a", "DE0001", daysAgo(1), 100000),
		buy("b", "DE0001", daysAgo(2), 50000),
		sell("c", "DE0001", daysAgo(3), 30000),
		other("d", "DE0001", daysAgo(3), "award_or_grant"),
		buy("a", "DE0002", daysAgo(40), 1000), // outside the window
		other("e", "DE0003", daysAgo(1), "GIFT"),
	}

	aggs := Aggregate(txs, w, AggregateFilter{})
	require.Len(t, aggs, 1, "entities with only OTHER or out-of-window trades are absent")

	a := aggs["DE0001"]
	require.NotNil(t, a)
	assert.Equal(t, 3, a.TradeCount)
	assert.Equal(t, 2, a.BuyCount)
	assert.Equal(t, 1, a.SellCount)
	assert.True(t, a.BuyVolume.Equal(decimal.NewFromInt(150000)))
	assert.True(t, a.SellVolume.Equal(decimal.NewFromInt(30000)))
	assert.True(t, a.NetVolume().Equal(decimal.NewFromInt(120000)))
	assert.Len(t, a.UniqueBuyers, 2)
	assert.Len(t, a.UniqueSellers, 1)
	assert.Equal(t, 3, a.UniqueInsiders())
	assert.Equal(t, []string{"Name b", "Name a"}, a.BuyerNames, "ordered by first buy")
	assert.Equal(t, "Company DE0001", a.CompanyName)
	assert.True(t, a.LastTransaction.Equal(daysAgo(1)))
}

func TestAggregateWindowIsHalfOpen(t *testing.T) {
	w := models.Window{Start: asOf.AddDate(0, 0, -1), End: asOf}
	txs := []models.Transaction{
		buy("a", "DE0001", w.Start, 1),
		buy("b", "DE0001", w.End, 1),
	}
	aggs := Aggregate(txs, w, AggregateFilter{})
	require.Contains(t, aggs, "DE0001")
	assert.Equal(t, 1, aggs["DE0001"].TradeCount)
	assert.Contains(t, aggs["DE0001"].UniqueBuyers, "a")
}

func TestAggregateFilters(t *testing.T) {
	w := models.WindowEndingAt(asOf, 28)
	us := buy("a", "US0001", daysAgo(1), 10)
	us.Jurisdiction = "US"
	txs := []models.Transaction{us, buy("b", "DE0001", daysAgo(1), 10), buy("c", "DE0002", daysAgo(1), 10)}

	byJurisdiction := Aggregate(txs, w, AggregateFilter{Jurisdiction: "us"})
	assert.Equal(t, []string{"US0001"}, SortedEntityIDs(byJurisdiction))

	byEntity := Aggregate(txs, w, AggregateFilter{EntityIDs: []string{"de0002", "XX"}})
	assert.Equal(t, []string{"DE0002"}, SortedEntityIDs(byEntity))

	assert.Empty(t, Aggregate(nil, w, AggregateFilter{}))
}

func TestAggregateProperties(t *testing.T) {
	properties := gopter.NewProperties(testParameters())
	w := models.WindowEndingAt(asOf, 28)
	d := NewDeduplicator(KeepFirst)

	properties.Property("buys plus sells equal trades and OTHER never counts", prop.ForAll(
		func(txs []models.Transaction) bool {
			deduped, _ := d.Dedup(txs)
			qualifying := 0
			for _, tx := range deduped {
				if w.Contains(tx.Timestamp) && tx.Qualifies() {
					qualifying++
				}
			}
			total := 0
			for _, a := range Aggregate(deduped, w, AggregateFilter{}) {
				if a.BuyCount+a.SellCount != a.TradeCount || len(a.UniqueBuyers) > a.BuyCount {
					return false
				}
				total += a.TradeCount
			}
			return total == qualifying
		},
		txSliceGen(),
	))

	properties.Property("aggregation and indicator are permutation invariant", prop.ForAll(
		func(txs []models.Transaction, seed int64) bool {
			a := Aggregate(txs, w, AggregateFilter{})
			b := Aggregate(shuffled(txs, seed), w, AggregateFilter{})
			if !reflect.DeepEqual(a, b) {
				return false
			}
			ba, sa := Totals(a)
			bb, sb := Totals(b)
			return models.Ratio(ba, ba+sa) == models.Ratio(bb, bb+sb)
		},
		txSliceGen(), gen.Int64(),
	))

	properties.TestingRun(t)
}
