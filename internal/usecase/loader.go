package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"InsiderPulse/internal/domain/models"
	domrepo "InsiderPulse/internal/domain/repository"
	"InsiderPulse/internal/services/analytics"
	applogger "InsiderPulse/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// Exclusion reasons reported to metrics.
const (
	reasonNonMarket = "non_market_method"
	reasonDuplicate = "duplicate"
)

// loaded is one deduplicated store read.
type loaded struct {
	txs []models.Transaction
	// excluded counts transactions that contribute to no count or volume:
	// missing timestamps, same-day duplicates and non-market methods.
	excluded int
}

const defaultQueryTimeout = 30 * time.Second

// loader reads transactions for one computation. Identical concurrent
// queries share one store round trip.
type loader struct {
	store   domrepo.TransactionStore
	dedup   *analytics.Deduplicator
	metrics domrepo.Metrics
	log     *applogger.Logger
	timeout time.Duration
	group   singleflight.Group
}

func newLoader(store domrepo.TransactionStore, dedup *analytics.Deduplicator, m domrepo.Metrics, l *applogger.Logger, timeout time.Duration) *loader {
	if l == nil {
		l = applogger.Nop()
	}
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &loader{store: store, dedup: dedup, metrics: m, log: l, timeout: timeout}
}

func (l *loader) load(ctx context.Context, op string, q domrepo.TransactionQuery) (loaded, error) {
	start := time.Now()
	// the read is shared, so it must outlive whichever caller started it;
	// each caller still stops waiting on its own ctx below
	ch := l.group.DoChan(q.CacheKey(), func() (interface{}, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		return l.store.Query(qctx, q)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return loaded{}, ctx.Err()
	}
	l.metrics.RecordLatency("store_query", time.Since(start).Seconds())

	if res.Err != nil {
		if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
			return loaded{}, res.Err
		}
		l.metrics.RecordError("store_query")
		l.log.Error("transaction query failed",
			applogger.String("op", op),
			applogger.String("window", q.Window.String()),
			applogger.Error(res.Err),
		)
		if errors.Is(res.Err, models.ErrStoreUnavailable) {
			return loaded{}, res.Err
		}
		return loaded{}, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, res.Err)
	}

	raw, _ := res.Val.([]models.Transaction)
	txs, rep := l.dedup.Dedup(raw)

	nonMarket := 0
	for _, t := range txs {
		if !t.Qualifies() {
			nonMarket++
		}
	}
	for reason, n := range rep.Excluded {
		l.metrics.RecordExcluded(reason, n)
	}
	l.metrics.RecordExcluded(reasonDuplicate, rep.Collapsed)
	l.metrics.RecordExcluded(reasonNonMarket, nonMarket)

	excluded := rep.ExcludedTotal() + rep.Collapsed + nonMarket
	if missing := rep.Excluded[analytics.ReasonMissingTimestamp]; missing > 0 {
		l.log.Warn("transactions without timestamp dropped",
			applogger.String("op", op),
			applogger.Int("count", missing),
		)
	}
	l.log.Debug("transactions loaded",
		applogger.String("op", op),
		applogger.Int("raw", len(raw)),
		applogger.Int("deduped", len(txs)),
		applogger.Int("excluded", excluded),
		applogger.Duration("took", time.Since(start)),
	)
	return loaded{txs: txs, excluded: excluded}, nil
}
