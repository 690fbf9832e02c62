package analytics

import (
	"math"

	"InsiderPulse/internal/domain/models"
	"InsiderPulse/internal/services/features"
)

const maxBuySellRatio = 999.99

// IndicatorEngine derives the insider indicator, barometer and activity
// indicator from a daily series ending at the as-of instant.
type IndicatorEngine struct {
	cfg Config
}

func NewIndicatorEngine(cfg Config) *IndicatorEngine {
	return &IndicatorEngine{cfg: cfg.withDefaults()}
}

func (e *IndicatorEngine) ShortWindowDays() int { return e.cfg.ShortWindowDays }

func (e *IndicatorEngine) ReferenceDays() int { return e.cfg.ReferenceDays }

// SeriesDays is how many daily buckets a full computation with historyDays
// of charting output needs: every reported day gets a full reference mean,
// and every value in that mean a full short window.
func (e *IndicatorEngine) SeriesDays(historyDays int) int {
	if historyDays < 1 {
		historyDays = 1
	}
	return historyDays + e.cfg.ReferenceDays + e.cfg.ShortWindowDays - 2
}

// Indicator computes 100*buys/(buys+sells); undefined without trades.
func (e *IndicatorEngine) Indicator(buys, sells, windowDays int) models.IndicatorReading {
	v := models.Ratio(buys, buys+sells)
	return models.IndicatorReading{
		Value:          v,
		Buys:           buys,
		Sells:          sells,
		WindowDays:     windowDays,
		Interpretation: IndicatorBands.Label(v),
	}
}

// Barometer compares current with the reference mean. The raw deviation is
// mapped linearly so that a deviation of BarometerScale reads 50.
func (e *IndicatorEngine) Barometer(current, average models.Metric) models.BarometerReading {
	raw := current.Sub(average)
	norm := models.Undefined
	if v, ok := raw.Get(); ok {
		norm = models.Defined(clamp(50*v/e.cfg.BarometerScale, -100, 100))
	}
	return models.BarometerReading{
		Value:          raw,
		Normalized:     norm,
		Current:        current,
		Average12m:     average,
		Scale:          e.cfg.BarometerScale,
		Interpretation: BarometerBands.Label(norm),
	}
}

// Activity computes transactions per day and its deviation from average.
func (e *IndicatorEngine) Activity(transactions, windowDays int, average models.Metric) models.ActivityReading {
	value := 0.0
	if windowDays > 0 {
		value = float64(transactions) / float64(windowDays)
	}
	dev := models.Undefined
	if avg, ok := average.Get(); ok && avg != 0 {
		dev = models.Defined(100 * (value - avg) / avg)
	}
	return models.ActivityReading{
		Value:            value,
		Transactions:     transactions,
		WindowDays:       windowDays,
		Average12m:       average,
		DeviationPercent: dev,
		Interpretation:   ActivityBands.Label(dev),
	}
}

// Current is the fast path: only short-window values, no reference mean.
func (e *IndicatorEngine) Current(buys, sells int) (models.IndicatorReading, models.BarometerReading, models.ActivityReading) {
	ind := e.Indicator(buys, sells, e.cfg.ShortWindowDays)
	return ind, e.Barometer(ind.Value, models.Undefined), e.Activity(buys+sells, e.cfg.ShortWindowDays, models.Undefined)
}

// Compute derives all three indicators at the end of s.
func (e *IndicatorEngine) Compute(s *features.Series) (models.IndicatorReading, models.BarometerReading, models.ActivityReading) {
	short, ref := e.cfg.ShortWindowDays, e.cfg.ReferenceDays
	buys, sells, ok := s.Tail(short)
	if !ok {
		buys, sells = 0, 0
	}
	ind := e.Indicator(buys, sells, short)

	rolling := s.RollingIndicator(short)
	avg := features.TrailingMean(rolling, s.Len()-1, ref)
	baro := e.Barometer(ind.Value, avg)

	activityAvg := models.Undefined
	if rb, rs, ok := s.Tail(ref); ok {
		activityAvg = models.Defined(float64(rb+rs) / float64(ref))
	}
	act := e.Activity(buys+sells, short, activityAvg)
	return ind, baro, act
}

// History returns one point per day for the last days buckets of s.
func (e *IndicatorEngine) History(s *features.Series, days int) []models.SentimentPoint {
	short, ref := e.cfg.ShortWindowDays, e.cfg.ReferenceDays
	n := s.Len()
	if days > n {
		days = n
	}
	rolling := s.RollingIndicator(short)
	rate := s.RollingRate(short)
	out := make([]models.SentimentPoint, 0, days)
	for i := n - days; i < n; i++ {
		b := s.Buckets[i]
		avg := features.TrailingMean(rolling, i, ref)
		out = append(out, models.SentimentPoint{
			Date:      b.Start.UTC().Format(models.DayLayout),
			Indicator: rolling[i].Round(2),
			Barometer: rolling[i].Sub(avg).Round(2),
			Activity:  rate[i].Round(2),
			Buys:      b.Buys,
			Sells:     b.Sells,
		})
	}
	return out
}

// Statistics summarizes the last days buckets of s.
func (e *IndicatorEngine) Statistics(s *features.Series, days int) models.MarketStatistics {
	n := s.Len()
	if days > n {
		days = n
	}
	var st models.MarketStatistics
	for _, b := range s.Buckets[n-days:] {
		st.TotalBuys += b.Buys
		st.TotalSells += b.Sells
		if b.Total() > 0 {
			st.ActiveDays++
		}
	}
	st.TotalTransactions = st.TotalBuys + st.TotalSells
	st.DaysWithoutActivity = days - st.ActiveDays
	if days > 0 {
		st.AvgDailyTransactions = round2(float64(st.TotalTransactions) / float64(days))
	}
	switch {
	case st.TotalSells > 0:
		st.BuySellRatio = round2(math.Min(float64(st.TotalBuys)/float64(st.TotalSells), maxBuySellRatio))
	case st.TotalBuys > 0:
		st.BuySellRatio = maxBuySellRatio
	default:
		st.BuySellRatio = 1
	}
	return st
}

// Quality grades how much activity backs the statistics.
func (e *IndicatorEngine) Quality(st models.MarketStatistics, days int) models.DataQuality {
	ratio := 0.0
	if days > 0 {
		ratio = float64(st.ActiveDays) / float64(days)
	}
	tx := st.TotalTransactions
	level := "limited"
	switch {
	case ratio > 0.7 && tx > 50:
		level = "excellent"
	case ratio > 0.5 && tx > 20:
		level = "good"
	case ratio > 0.3 || tx > 10:
		level = "moderate"
	}
	return models.DataQuality{ActivityRatio: round2(ratio), Level: level}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
