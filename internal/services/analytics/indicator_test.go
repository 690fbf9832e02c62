package analytics

import (
	"testing"

	"InsiderPulse/internal/domain/models"
	"InsiderPulse/internal/services/features"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndicatorExample(t *testing.T) {
	e := NewIndicatorEngine(DefaultConfig())
	r := e.Indicator(127, 115, 28)

	v, err := r.Value.Require()
	require.NoError(t, err)
	assert.InDelta(t, 52.479, v, 0.001)
	assert.Equal(t, "slightly_bullish", r.Interpretation)
}

func TestIndicatorUndefinedWithoutTrades(t *testing.T) {
	e := NewIndicatorEngine(DefaultConfig())
	r := e.Indicator(0, 0, 28)

	assert.False(t, r.Value.IsDefined())
	assert.Equal(t, models.NoData, r.Interpretation)
	_, err := r.Value.Require()
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	b, err := r.Value.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestBarometerScale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BarometerScale = 20
	e := NewIndicatorEngine(cfg)

	cases := []struct {
		current, avg float64
		normalized   float64
		label        string
	}{
		{70, 50, 50, "strong_bullish"},
		{58, 50, 20, "bullish"},
		{55, 50, 12.5, "neutral"},
		{42, 50, -20, "bearish"},
		{30, 50, -50, "strong_bearish"},
		{100, 0, 100, "strong_bullish"}, // clamped
	}
	for _, tc := range cases {
		r := e.Barometer(models.Defined(tc.current), models.Defined(tc.avg))
		n, ok := r.Normalized.Get()
		require.True(t, ok)
		assert.InDelta(t, tc.normalized, n, 1e-9)
		assert.Equal(t, tc.label, r.Interpretation, "current=%v avg=%v", tc.current, tc.avg)
	}

	r := e.Barometer(models.Defined(50), models.Undefined)
	assert.False(t, r.Value.IsDefined())
	assert.Equal(t, models.NoData, r.Interpretation)
}

func TestActivityDeviation(t *testing.T) {
	e := NewIndicatorEngine(DefaultConfig())

	r := e.Activity(56, 28, models.Defined(1))
	assert.InDelta(t, 2.0, r.Value, 1e-9)
	dev, ok := r.DeviationPercent.Get()
	require.True(t, ok)
	assert.InDelta(t, 100.0, dev, 1e-9)
	assert.Equal(t, "very_high", r.Interpretation)

	zero := e.Activity(10, 28, models.Defined(0))
	assert.False(t, zero.DeviationPercent.IsDefined(), "zero average must not divide")
	assert.Equal(t, models.NoData, zero.Interpretation)
}

func TestComputeMatchesNaiveRecomputation(t *testing.T) {
	e := NewIndicatorEngine(DefaultConfig())
	var txs []models.Transaction
	for seed := int64(0); seed < 3000; seed++ {
		tx := txFromSeed(seed)
		tx.Timestamp = daysAgo(int(seed % 420))
		tx.TransactionMethod = ""
		txs = append(txs, tx)
	}
	d := NewDeduplicator(KeepFirst)
	txs, _ = d.Dedup(txs)

	s := features.BuildDailySeries(txs, asOf, e.SeriesDays(1))
	ind, baro, act := e.Compute(s)

	// naive: one full aggregation per day of the reference window
	var sum float64
	var n int
	for back := 0; back < 365; back++ {
		end := asOf.AddDate(0, 0, -back)
		b, sl := Totals(Aggregate(txs, models.WindowEndingAt(end, 28), AggregateFilter{}))
		if v, ok := models.Ratio(b, b+sl).Get(); ok {
			sum += v
			n++
		}
	}
	require.Positive(t, n)

	b, sl := Totals(Aggregate(txs, models.WindowEndingAt(asOf, 28), AggregateFilter{}))
	assert.Equal(t, b, ind.Buys)
	assert.Equal(t, sl, ind.Sells)

	avg, ok := baro.Average12m.Get()
	require.True(t, ok)
	assert.InDelta(t, sum/float64(n), avg, 1e-9)

	rb, rs := Totals(Aggregate(txs, models.WindowEndingAt(asOf, 365), AggregateFilter{}))
	a12, ok := act.Average12m.Get()
	require.True(t, ok)
	assert.InDelta(t, float64(rb+rs)/365, a12, 1e-9)
}

func TestCurrentFastPath(t *testing.T) {
	e := NewIndicatorEngine(DefaultConfig())
	ind, baro, act := e.Current(30, 10)

	assert.Equal(t, "bullish", ind.Interpretation)
	assert.False(t, baro.Value.IsDefined())
	assert.True(t, baro.Current.IsDefined())
	assert.InDelta(t, 40.0/28, act.Value, 1e-9)
	assert.False(t, act.DeviationPercent.IsDefined())
}

func TestStatisticsAndQuality(t *testing.T) {
	e := NewIndicatorEngine(DefaultConfig())
	var txs []models.Transaction
	for d := 0; d < 10; d++ {
		txs = append(txs, buy("a", "DE0001", daysAgo(d), 1), buy("b", "DE0001", daysAgo(d), 1))
		if d%2 == 0 {
			txs = append(txs, sell("c", "DE0001", daysAgo(d), 1))
		}
	}
	s := features.BuildDailySeries(txs, asOf, 20)

	st := e.Statistics(s, 20)
	assert.Equal(t, 25, st.TotalTransactions)
	assert.Equal(t, 20, st.TotalBuys)
	assert.Equal(t, 5, st.TotalSells)
	assert.Equal(t, 10, st.ActiveDays)
	assert.Equal(t, 10, st.DaysWithoutActivity)
	assert.InDelta(t, 1.25, st.AvgDailyTransactions, 1e-9)
	assert.InDelta(t, 4.0, st.BuySellRatio, 1e-9)

	q := e.Quality(st, 20)
	assert.Equal(t, "moderate", q.Level) // ratio 0.5 is not above 0.5
	assert.Equal(t, 0.5, q.ActivityRatio)

	onlyBuys := e.Statistics(features.BuildDailySeries(txs[:2], asOf, 5), 5)
	assert.Equal(t, maxBuySellRatio, onlyBuys.BuySellRatio)
	assert.Equal(t, "limited", e.Quality(onlyBuys, 5).Level)
}

func TestHistoryLength(t *testing.T) {
	e := NewIndicatorEngine(DefaultConfig())
	txs := []models.Transaction{buy("a", "DE0001", daysAgo(0), 1), sell("b", "DE0001", daysAgo(400), 1)}
	s := features.BuildDailySeries(txs, asOf, e.SeriesDays(90))

	h := e.History(s, 90)
	require.Len(t, h, 90)
	last := h[len(h)-1]
	assert.Equal(t, "2025-06-29", last.Date)
	assert.Equal(t, 1, last.Buys)
	v, ok := last.Indicator.Get()
	require.True(t, ok)
	assert.Equal(t, 100.0, v)
	assert.False(t, h[0].Indicator.IsDefined())
}
