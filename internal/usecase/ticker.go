package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"InsiderPulse/internal/domain/models"
	domrepo "InsiderPulse/internal/domain/repository"
	"InsiderPulse/internal/services/analytics"
	applogger "InsiderPulse/pkg/logger"

	"github.com/shopspring/decimal"
)

// TickerUseCase builds the insider-buying screening feed.
type TickerUseCase struct {
	loader  *loader
	signals *analytics.SignalDetector
	metrics domrepo.Metrics
	log     *applogger.Logger
	limits  Limits
}

func NewTickerUseCase(
	store domrepo.TransactionStore,
	cfg analytics.Config,
	limits Limits,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *TickerUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &TickerUseCase{
		loader:  newLoader(store, analytics.NewDeduplicator(cfg.DedupPolicy), metrics, l, limits.QueryTimeout),
		signals: analytics.NewSignalDetector(cfg),
		metrics: metrics,
		log:     l,
		limits:  limits,
	}
}

// ComputeTicker keeps entities with at least MinTotalAmount bought over at
// least MinTrades trades, sorted by unique buyers, then buy volume, then ISIN.
// Total counts every matching entity; Items is cut to Limit.
func (u *TickerUseCase) ComputeTicker(ctx context.Context, q models.TickerQuery) (*models.TickerFeed, error) {
	start := time.Now()
	if q.Days < 1 {
		return nil, fmt.Errorf("%w: days must be positive, got %d", models.ErrInvalidWindow, q.Days)
	}
	w := models.WindowEndingAt(q.AsOf, q.Days)
	if err := w.Validate(u.limits.MinWindowDays, u.limits.MaxWindowDays); err != nil {
		return nil, err
	}
	ids := domrepo.NormalizeEntityIDs(q.ISINs)
	got, err := u.loader.load(ctx, "ticker", domrepo.TransactionQuery{
		Window:    w,
		EntityIDs: ids,
		Source:    q.Source,
	})
	if err != nil {
		return nil, err
	}

	aggs := analytics.Aggregate(got.txs, w, analytics.AggregateFilter{EntityIDs: ids})
	minAmount := decimal.NewFromFloat(q.MinTotalAmount)
	items := make([]models.TickerItem, 0, len(aggs))
	for _, a := range aggs {
		if a.TradeCount < q.MinTrades || a.BuyVolume.LessThan(minAmount) {
			continue
		}
		items = append(items, models.TickerItem{
			UID:             TickerUID(a),
			Aggregate:       a,
			TickerSignalSet: u.signals.Detect(a),
		})
	}
	sortTickerItems(items)

	feed := &models.TickerFeed{
		AsOf:     q.AsOf,
		Days:     q.Days,
		Total:    len(items),
		Excluded: got.excluded,
	}
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	feed.Items = items
	u.metrics.RecordLatency("compute_ticker", time.Since(start).Seconds())
	return feed, nil
}

// TickerByISIN is ComputeTicker restricted to one entity.
func (u *TickerUseCase) TickerByISIN(ctx context.Context, isin string, q models.TickerQuery) (*models.TickerFeed, error) {
	q.ISINs = []string{isin}
	return u.ComputeTicker(ctx, q)
}

// TickerUID is stable for one entity and the day of its last transaction.
func TickerUID(a *models.WindowAggregate) string {
	return fmt.Sprintf("TICKER-%s-%s", a.EntityID, a.LastTransaction.UTC().Format("20060102"))
}

func sortTickerItems(items []models.TickerItem) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i].Aggregate, items[j].Aggregate
		if ua, ub := len(a.UniqueBuyers), len(b.UniqueBuyers); ua != ub {
			return ua > ub
		}
		if c := a.BuyVolume.Cmp(b.BuyVolume); c != 0 {
			return c > 0
		}
		return a.EntityID < b.EntityID
	})
}
