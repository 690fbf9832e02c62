package analytics

import (
	"context"
	"sort"

	"InsiderPulse/internal/domain/models"
	"InsiderPulse/internal/services/features"

	"golang.org/x/sync/errgroup"
)

// TrendEngine compares the insider indicator across trailing windows.
type TrendEngine struct {
	windows   []int
	smoothing int
	threshold float64
}

// NewTrendEngine orders the windows shortest first and drops duplicates and
// non-positive lengths; momentum deltas pair adjacent windows.
func NewTrendEngine(cfg Config) *TrendEngine {
	cfg = cfg.withDefaults()
	windows := make([]int, 0, len(cfg.TrendWindows))
	for _, w := range cfg.TrendWindows {
		if w > 0 {
			windows = append(windows, w)
		}
	}
	sort.Ints(windows)
	uniq := windows[:0]
	for i, w := range windows {
		if i == 0 || w != windows[i-1] {
			uniq = append(uniq, w)
		}
	}
	return &TrendEngine{
		windows:   uniq,
		smoothing: cfg.TrendSmoothingDays,
		threshold: cfg.MomentumThreshold,
	}
}

func (e *TrendEngine) Windows() []int { return e.windows }

// SeriesDays is the number of daily buckets Compute needs.
func (e *TrendEngine) SeriesDays() int {
	longest := 0
	for _, w := range e.windows {
		if w > longest {
			longest = w
		}
	}
	return longest + e.smoothing - 1
}

// Compute evaluates every window concurrently over the shared series.
// avgIndicator is the mean of the window's rolling indicator over the last
// smoothing days.
func (e *TrendEngine) Compute(ctx context.Context, s *features.Series) ([]models.TrendWindow, error) {
	out := make([]models.TrendWindow, len(e.windows))
	g, ctx := errgroup.WithContext(ctx)
	for i, w := range e.windows {
		i, w := i, w
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = e.window(s, w)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *TrendEngine) window(s *features.Series, w int) models.TrendWindow {
	rolling := s.RollingIndicator(w)
	avg := features.TrailingMean(rolling, s.Len()-1, e.smoothing)
	buys, sells, _ := s.Tail(w)
	return models.TrendWindow{
		Days:         w,
		AvgIndicator: avg.Round(2),
		RecentBuys:   buys,
		RecentSells:  sells,
		Sentiment:    IndicatorBands.Label(avg),
	}
}

// Momentum takes deltas between adjacent windows (shortest first). A delta
// is undefined when either side is.
func (e *TrendEngine) Momentum(windows []models.TrendWindow) models.Momentum {
	var m models.Momentum
	deltas := []*models.Metric{&m.ShortTerm, &m.MediumTerm, &m.LongTerm}
	for i := 0; i+1 < len(windows) && i < len(deltas); i++ {
		*deltas[i] = windows[i].AvgIndicator.Sub(windows[i+1].AvgIndicator).Round(2)
	}
	m.Interpretation = e.interpret(m)
	return m
}

func (e *TrendEngine) interpret(m models.Momentum) string {
	if !m.ShortTerm.IsDefined() && !m.MediumTerm.IsDefined() && !m.LongTerm.IsDefined() {
		return "neutral"
	}
	short, _ := m.ShortTerm.Get()
	medium, _ := m.MediumTerm.Get()
	switch {
	case short > e.threshold && medium > 0:
		return "accelerating_bullish"
	case short > 0 && medium > 0:
		return "bullish"
	case short < -e.threshold && medium < 0:
		return "accelerating_bearish"
	case short < 0 && medium < 0:
		return "bearish"
	default:
		return "mixed"
	}
}
