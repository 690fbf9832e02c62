package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"InsiderPulse/internal/domain/models"
	domrepo "InsiderPulse/internal/domain/repository"
	"InsiderPulse/internal/services/analytics"
	"InsiderPulse/internal/services/features"
	applogger "InsiderPulse/pkg/logger"
)

// Limits bounds the window lengths a request may ask for and how long a
// store read may take.
type Limits struct {
	MinWindowDays int
	MaxWindowDays int
	// QueryTimeout bounds a shared store read; zero means 30s.
	QueryTimeout time.Duration
}

// SentimentUseCase computes market-wide sentiment, breadth, movers and trends.
type SentimentUseCase struct {
	loader    *loader
	indicator *analytics.IndicatorEngine
	ranking   *analytics.RankingEngine
	trends    *analytics.TrendEngine
	metrics   domrepo.Metrics
	log       *applogger.Logger
	limits    Limits
}

func NewSentimentUseCase(
	store domrepo.TransactionStore,
	cfg analytics.Config,
	limits Limits,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *SentimentUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &SentimentUseCase{
		loader:    newLoader(store, analytics.NewDeduplicator(cfg.DedupPolicy), metrics, l, limits.QueryTimeout),
		indicator: analytics.NewIndicatorEngine(cfg),
		ranking:   analytics.NewRankingEngine(cfg),
		trends:    analytics.NewTrendEngine(cfg),
		metrics:   metrics,
		log:       l,
		limits:    limits,
	}
}

func (u *SentimentUseCase) window(asOf time.Time, days int) (models.Window, error) {
	if days < 1 {
		return models.Window{}, fmt.Errorf("%w: days must be positive, got %d", models.ErrInvalidWindow, days)
	}
	w := models.WindowEndingAt(asOf, days)
	return w, w.Validate(u.limits.MinWindowDays, u.limits.MaxWindowDays)
}

// ComputeSentiment evaluates the three indicators at q.AsOf together with
// statistics over the last q.Days and, on request, one point per day.
func (u *SentimentUseCase) ComputeSentiment(ctx context.Context, q models.SentimentQuery) (*models.SentimentSnapshot, error) {
	start := time.Now()
	if _, err := u.window(q.AsOf, q.Days); err != nil {
		return nil, err
	}

	n := u.indicator.SeriesDays(1)
	if q.IncludeHistory {
		n = u.indicator.SeriesDays(q.Days)
	}
	if n < q.Days {
		n = q.Days
	}
	got, err := u.loader.load(ctx, "sentiment", domrepo.TransactionQuery{
		Window:       models.WindowEndingAt(q.AsOf, n),
		Jurisdiction: q.Jurisdiction,
	})
	if err != nil {
		return nil, err
	}

	series := features.BuildDailySeries(got.txs, q.AsOf, n)
	ind, baro, act := u.indicator.Compute(series)
	stats := u.indicator.Statistics(series, q.Days)

	snap := &models.SentimentSnapshot{
		AsOf:         q.AsOf,
		Days:         q.Days,
		Jurisdiction: normJurisdiction(q.Jurisdiction),
		Indicator:    ind,
		Barometer:    baro,
		Activity:     act,
		Statistics:   stats,
		Quality:      u.indicator.Quality(stats, q.Days),
		Excluded:     got.excluded,
	}
	if q.IncludeHistory {
		snap.History = u.indicator.History(series, q.Days)
	}
	if q.Jurisdiction == "" {
		u.recordSnapshot(snap)
	}
	u.metrics.RecordLatency("compute_sentiment", time.Since(start).Seconds())
	u.log.Debug("sentiment computed",
		applogger.Int("days", q.Days),
		applogger.Bool("history", q.IncludeHistory),
		applogger.Float64("activity", act.Value),
		applogger.Any("indicator", ind.Value),
	)
	return snap, nil
}

// CurrentSentiment reads only the short window. Barometer and activity
// deviations stay undefined since no reference mean is computed.
func (u *SentimentUseCase) CurrentSentiment(ctx context.Context, asOf time.Time, jurisdiction string) (*models.SentimentSnapshot, error) {
	start := time.Now()
	days := u.indicator.ShortWindowDays()
	w, err := u.window(asOf, days)
	if err != nil {
		return nil, err
	}
	got, err := u.loader.load(ctx, "current_sentiment", domrepo.TransactionQuery{Window: w, Jurisdiction: jurisdiction})
	if err != nil {
		return nil, err
	}
	series := features.BuildDailySeries(got.txs, asOf, days)
	buys, sells, _ := series.Tail(days)
	ind, baro, act := u.indicator.Current(buys, sells)
	stats := u.indicator.Statistics(series, days)

	snap := &models.SentimentSnapshot{
		AsOf:         asOf,
		Days:         days,
		Jurisdiction: normJurisdiction(jurisdiction),
		Indicator:    ind,
		Barometer:    baro,
		Activity:     act,
		Statistics:   stats,
		Quality:      u.indicator.Quality(stats, days),
		Excluded:     got.excluded,
	}
	u.metrics.RecordLatency("current_sentiment", time.Since(start).Seconds())
	return snap, nil
}

// MarketBreadth classifies every active entity of the window.
func (u *SentimentUseCase) MarketBreadth(ctx context.Context, q models.RankingQuery) (*models.MarketBreadth, error) {
	aggs, w, err := u.aggregates(ctx, "market_breadth", q)
	if err != nil {
		return nil, err
	}
	mb := u.ranking.Breadth(aggs)
	mb.AsOf = w.End
	mb.Days = q.Days
	mb.Jurisdiction = normJurisdiction(q.Jurisdiction)
	if q.Jurisdiction == "" && len(q.ISINs) == 0 {
		u.metrics.RecordSentiment("breadth_ratio", mb.BreadthRatio)
	}
	return &mb, nil
}

// TopMovers ranks entities of the window by activity score.
func (u *SentimentUseCase) TopMovers(ctx context.Context, q models.RankingQuery) (*models.TopMovers, error) {
	aggs, w, err := u.aggregates(ctx, "top_movers", q)
	if err != nil {
		return nil, err
	}
	minTx := q.MinTransactions
	if minTx < 1 {
		minTx = 1
	}
	return &models.TopMovers{
		AsOf:            w.End,
		Days:            q.Days,
		Jurisdiction:    normJurisdiction(q.Jurisdiction),
		MinTransactions: minTx,
		Movers:          u.ranking.TopMovers(aggs, minTx, q.Limit),
	}, nil
}

func (u *SentimentUseCase) aggregates(ctx context.Context, op string, q models.RankingQuery) (map[string]*models.WindowAggregate, models.Window, error) {
	w, err := u.window(q.AsOf, q.Days)
	if err != nil {
		return nil, models.Window{}, err
	}
	ids := domrepo.NormalizeEntityIDs(q.ISINs)
	got, err := u.loader.load(ctx, op, domrepo.TransactionQuery{
		Window:       w,
		EntityIDs:    ids,
		Jurisdiction: q.Jurisdiction,
	})
	if err != nil {
		return nil, models.Window{}, err
	}
	aggs := analytics.Aggregate(got.txs, w, analytics.AggregateFilter{
		EntityIDs:    ids,
		Jurisdiction: q.Jurisdiction,
	})
	return aggs, w, nil
}

// Trends evaluates the trend windows and their momentum from one series.
func (u *SentimentUseCase) Trends(ctx context.Context, asOf time.Time, jurisdiction string) (*models.TrendReport, error) {
	start := time.Now()
	n := u.trends.SeriesDays()
	w := models.WindowEndingAt(asOf, n)
	if err := w.Validate(0, 0); err != nil {
		return nil, err
	}
	got, err := u.loader.load(ctx, "trends", domrepo.TransactionQuery{Window: w, Jurisdiction: jurisdiction})
	if err != nil {
		return nil, err
	}
	series := features.BuildDailySeries(got.txs, asOf, n)
	windows, err := u.trends.Compute(ctx, series)
	if err != nil {
		return nil, err
	}
	rep := &models.TrendReport{
		AsOf:         asOf,
		Jurisdiction: normJurisdiction(jurisdiction),
		Windows:      windows,
		Momentum:     u.trends.Momentum(windows),
	}
	u.metrics.RecordLatency("compute_trends", time.Since(start).Seconds())
	return rep, nil
}

func (u *SentimentUseCase) recordSnapshot(s *models.SentimentSnapshot) {
	if v, ok := s.Indicator.Value.Get(); ok {
		u.metrics.RecordSentiment("insider_indicator", v)
	}
	if v, ok := s.Barometer.Normalized.Get(); ok {
		u.metrics.RecordSentiment("insider_barometer", v)
	}
	u.metrics.RecordSentiment("activity_indicator", s.Activity.Value)
}

func normJurisdiction(j string) string {
	return strings.ToUpper(strings.TrimSpace(j))
}
