package analytics

import (
	"fmt"
	"testing"

	"InsiderPulse/internal/domain/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func aggregateOf(buys, sells int, buyVol, sellVol int64, uniqueBuyers int) *models.WindowAggregate {
	a := models.NewWindowAggregate("DE0001")
	a.CompanyName = "Acme AG"
	a.Currency = "EUR"
	a.BuyCount, a.SellCount, a.TradeCount = buys, sells, buys+sells
	a.BuyVolume = decimal.NewFromInt(buyVol)
	a.SellVolume = decimal.NewFromInt(sellVol)
	for i := 0; i < uniqueBuyers; i++ {
		id := fmt.Sprintf("ins-%d", i)
		a.UniqueBuyers[id] = struct{}{}
		a.BuyerNames = append(a.BuyerNames, "Insider "+string(rune('A'+i)))
	}
	return a
}

func TestDetectExamples(t *testing.T) {
	d := NewSignalDetector(DefaultConfig())

	pure := d.Detect(aggregateOf(5, 0, 250000, 0, 3))
	assert.ElementsMatch(t, []models.Signal{
		models.SignalClusterBuying, models.SignalHighVolume, models.SignalPureBuying,
	}, pure.Signals)
	assert.False(t, pure.Has(models.SignalDominantBuying))

	dominant := d.Detect(aggregateOf(2, 1, 150000, 30000, 2))
	assert.ElementsMatch(t, []models.Signal{
		models.SignalClusterBuying, models.SignalHighVolume, models.SignalDominantBuying,
	}, dominant.Signals)
}

func TestDetectThresholdsAreStrict(t *testing.T) {
	d := NewSignalDetector(DefaultConfig())

	s := d.Detect(aggregateOf(1, 1, 100000, 50000, 1))
	assert.False(t, s.Has(models.SignalHighVolume), "exactly 100000 is not above the threshold")
	assert.False(t, s.Has(models.SignalDominantBuying), "exactly 2x is not dominant")
	assert.False(t, s.Has(models.SignalClusterBuying))
	assert.Empty(t, d.Detect(aggregateOf(0, 2, 0, 5000, 0)).Signals)
}

func TestHeadline(t *testing.T) {
	a := aggregateOf(5, 0, 1234567, 0, 4)
	assert.Equal(t, "4 insiders (Insider A, Insider B and 2 more) bought Acme AG shares for 1,234,567 EUR.", Headline(a))
	assert.Equal(t, Headline(a), Headline(a))

	single := aggregateOf(1, 0, 999, 0, 1)
	assert.Equal(t, "1 insider (Insider A) bought Acme AG shares for 999 EUR.", Headline(single))

	assert.Empty(t, Headline(aggregateOf(0, 3, 0, 10, 0)))
}

func TestFormatThousands(t *testing.T) {
	cases := map[string]string{
		"0":          "0",
		"999.4":      "999",
		"1000":       "1,000",
		"250000":     "250,000",
		"1234567.89": "1,234,568",
		"-45000":     "-45,000",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatThousands(decimal.RequireFromString(in)), in)
	}
}

func TestPureAndDominantAreExclusive(t *testing.T) {
	d := NewSignalDetector(DefaultConfig())
	properties := gopter.NewProperties(testParameters())

	properties.Property("PURE_BUYING and DOMINANT_BUYING never both fire", prop.ForAll(
		func(buys, sells int, buyVol, sellVol int64) bool {
			if sells == 0 {
				sellVol = 0
			}
			s := d.Detect(aggregateOf(buys, sells, buyVol, sellVol, 0))
			return !(s.Has(models.SignalPureBuying) && s.Has(models.SignalDominantBuying))
		},
		gen.IntRange(0, 20), gen.IntRange(0, 20), gen.Int64Range(0, 1000000), gen.Int64Range(0, 1000000),
	))

	properties.TestingRun(t)
}
