package analytics

import (
	"reflect"
	"testing"
	"time"

	"InsiderPulse/internal/domain/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupKeepFirst(t *testing.T) {
	d := NewDeduplicator(KeepFirst)
	morning := daysAgo(3).Add(-3 * time.Hour)
	txs := []models.Transaction{
		buy("a", "DE0001", daysAgo(3), 5000),
		buy("a", "DE0001", morning, 7000),
		buy("a", "DE0001", daysAgo(4), 1000),
		buy("b", "DE0001", daysAgo(3), 2000),
	}

	out, rep := d.Dedup(txs)
	require.Len(t, out, 3)
	assert.Equal(t, 1, rep.Collapsed)
	assert.Equal(t, 0, rep.ExcludedTotal())

	var kept models.Transaction
	for _, tx := range out {
		if tx.InsiderID == "a" && tx.Timestamp.Day() == morning.Day() {
			kept = tx
		}
	}
	assert.True(t, kept.Timestamp.Equal(morning))
	assert.True(t, kept.Amount.Equal(decimal.NewFromInt(7000)))
}

func TestDedupSumVolume(t *testing.T) {
	d := NewDeduplicator(SumVolume)
	txs := []models.Transaction{
		buy("a", "DE0001", daysAgo(3), 5000),
		buy("a", "DE0001", daysAgo(3).Add(-time.Hour), 7000),
		sell("a", "DE0001", daysAgo(3).Add(time.Hour), 9000),
	}

	out, rep := d.Dedup(txs)
	require.Len(t, out, 1)
	assert.Equal(t, 2, rep.Collapsed)
	assert.Equal(t, models.DirectionBuy, out[0].Direction)
	assert.True(t, out[0].Amount.Equal(decimal.NewFromInt(12000)), "got %s", out[0].Amount)

	again, _ := d.Dedup(out)
	assert.Equal(t, out, again)
}

func TestDedupKeepFirstKeepsEarlierGift(t *testing.T) {
	gift := other("a", "DE0001", daysAgo(2).Add(-2*time.Hour), "gift")
	purchase := buy("a", "DE0001", daysAgo(2), 40000)

	out, rep := NewDeduplicator(KeepFirst).Dedup([]models.Transaction{purchase, gift})
	require.Len(t, out, 1)
	assert.Equal(t, 1, rep.Collapsed)
	assert.Equal(t, "gift", out[0].TransactionMethod)
	assert.False(t, out[0].Qualifies())

	aggs := Aggregate(out, models.WindowEndingAt(asOf, 7), AggregateFilter{})
	assert.Empty(t, aggs, "the day counts as no buy")
}

func TestDedupKeepFirstQualifyingPrefersPurchase(t *testing.T) {
	gift := other("a", "DE0001", daysAgo(2).Add(-2*time.Hour), "gift")
	purchase := buy("a", "DE0001", daysAgo(2), 40000)

	out, _ := NewDeduplicator(KeepFirstQualifying).Dedup([]models.Transaction{gift, purchase})
	require.Len(t, out, 1)
	assert.True(t, out[0].Qualifies())
	assert.Equal(t, models.DirectionBuy, out[0].Direction)
}

func TestDedupExcludesMissingTimestamp(t *testing.T) {
	d := NewDeduplicator(KeepFirst)
	bad := buy("a", "DE0001", time.Time{}, 100)

	out, rep := d.Dedup([]models.Transaction{bad, buy("b", "DE0001", daysAgo(1), 100)})
	assert.Len(t, out, 1)
	assert.Equal(t, 1, rep.Excluded[ReasonMissingTimestamp])
	assert.Equal(t, 2, rep.Input)
	assert.Equal(t, 1, rep.Output)
}

func TestDedupUnknownPolicyFallsBackToKeepFirst(t *testing.T) {
	assert.Equal(t, KeepFirst, NewDeduplicator("whatever").Policy())
	assert.Equal(t, KeepFirstQualifying, NewDeduplicator(KeepFirstQualifying).Policy())
}

func TestDedupProperties(t *testing.T) {
	properties := gopter.NewProperties(testParameters())

	for _, policy := range []DedupPolicy{KeepFirst, SumVolume, KeepFirstQualifying} {
		d := NewDeduplicator(policy)

		properties.Property(string(policy)+": deduplicating twice equals once", prop.ForAll(
			func(txs []models.Transaction) bool {
				once, _ := d.Dedup(txs)
				twice, rep := d.Dedup(once)
				return reflect.DeepEqual(once, twice) && rep.Collapsed == 0
			},
			txSliceGen(),
		))

		properties.Property(string(policy)+": at most one transaction per key", prop.ForAll(
			func(txs []models.Transaction) bool {
				out, _ := d.Dedup(txs)
				seen := map[models.DedupKey]bool{}
				for _, tx := range out {
					k, ok := tx.Key()
					if !ok || seen[k] {
						return false
					}
					seen[k] = true
				}
				return true
			},
			txSliceGen(),
		))

		properties.Property(string(policy)+": independent of input order", prop.ForAll(
			func(txs []models.Transaction, seed int64) bool {
				a, _ := d.Dedup(txs)
				b, _ := d.Dedup(shuffled(txs, seed))
				return reflect.DeepEqual(a, b)
			},
			txSliceGen(), gen.Int64(),
		))
	}

	properties.TestingRun(t)
}
