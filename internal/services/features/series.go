package features

import (
	"time"

	"InsiderPulse/internal/domain/models"
)

const day = 24 * time.Hour

// DailyCounts holds one bucket's qualifying buys and sells.
type DailyCounts struct {
	Start time.Time
	Buys  int
	Sells int
}

func (d DailyCounts) Total() int { return d.Buys + d.Sells }

// Series is a contiguous run of 24h buckets ending at End, oldest first.
// Bucket i covers [End-(n-i)*24h, End-(n-i-1)*24h), so the last k buckets
// are exactly the k-day window ending at End.
type Series struct {
	End     time.Time
	Buckets []DailyCounts

	// prefix[i] holds buys/sells of buckets [0, i).
	prefixBuys  []int
	prefixSells []int
}

// BuildDailySeries folds transactions into n daily buckets ending at end in a
// single pass. Non-qualifying transactions and those outside the range are skipped.
func BuildDailySeries(txs []models.Transaction, end time.Time, n int) *Series {
	if n < 0 {
		n = 0
	}
	start := end.Add(-time.Duration(n) * day)
	s := &Series{End: end, Buckets: make([]DailyCounts, n)}
	for i := range s.Buckets {
		s.Buckets[i].Start = start.Add(time.Duration(i) * day)
	}
	for _, t := range txs {
		if t.Timestamp.Before(start) || !t.Timestamp.Before(end) {
			continue
		}
		idx := int(t.Timestamp.Sub(start) / day)
		switch t.Class() {
		case models.DirectionBuy:
			s.Buckets[idx].Buys++
		case models.DirectionSell:
			s.Buckets[idx].Sells++
		}
	}
	s.prefixBuys = make([]int, n+1)
	s.prefixSells = make([]int, n+1)
	for i, b := range s.Buckets {
		s.prefixBuys[i+1] = s.prefixBuys[i] + b.Buys
		s.prefixSells[i+1] = s.prefixSells[i] + b.Sells
	}
	return s
}

func (s *Series) Len() int { return len(s.Buckets) }

// Sum returns buys and sells over the w buckets ending at index i (inclusive).
// ok is false when fewer than w buckets precede i.
func (s *Series) Sum(i, w int) (buys, sells int, ok bool) {
	if w <= 0 || i < w-1 || i >= len(s.Buckets) {
		return 0, 0, false
	}
	lo, hi := i-w+1, i+1
	return s.prefixBuys[hi] - s.prefixBuys[lo], s.prefixSells[hi] - s.prefixSells[lo], true
}

// Tail sums the last w buckets, the w-day window ending at End.
func (s *Series) Tail(w int) (buys, sells int, ok bool) {
	return s.Sum(len(s.Buckets)-1, w)
}

// RollingIndicator returns, per bucket, 100*buys/(buys+sells) over the w
// buckets ending there. Buckets without a full lookback or without trades are undefined.
func (s *Series) RollingIndicator(w int) []models.Metric {
	out := make([]models.Metric, len(s.Buckets))
	for i := range s.Buckets {
		b, sl, ok := s.Sum(i, w)
		if !ok {
			continue
		}
		out[i] = models.Ratio(b, b+sl)
	}
	return out
}

// RollingRate returns per bucket the trades per day over the w buckets ending there.
func (s *Series) RollingRate(w int) []models.Metric {
	out := make([]models.Metric, len(s.Buckets))
	for i := range s.Buckets {
		b, sl, ok := s.Sum(i, w)
		if !ok {
			continue
		}
		out[i] = models.Defined(float64(b+sl) / float64(w))
	}
	return out
}

// TrailingMean averages the defined values among the w entries ending at i.
func TrailingMean(values []models.Metric, i, w int) models.Metric {
	if i < 0 || i >= len(values) || w <= 0 {
		return models.Undefined
	}
	lo := i - w + 1
	if lo < 0 {
		lo = 0
	}
	return Mean(values[lo : i+1])
}

// Mean averages the defined values; undefined if there are none.
func Mean(values []models.Metric) models.Metric {
	sum, n := 0.0, 0
	for _, m := range values {
		if v, ok := m.Get(); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return models.Undefined
	}
	return models.Defined(sum / float64(n))
}
