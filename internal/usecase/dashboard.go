package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"InsiderPulse/internal/domain/models"
	applogger "InsiderPulse/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// DashboardDefaults are the section parameters of the overview.
type DashboardDefaults struct {
	SentimentDays   int
	BreadthDays     int
	MoverDays       int
	MoverLimit      int
	MinTransactions int
}

func DefaultDashboard() DashboardDefaults {
	return DashboardDefaults{
		SentimentDays:   90,
		BreadthDays:     30,
		MoverDays:       7,
		MoverLimit:      10,
		MinTransactions: 3,
	}
}

// DashboardUseCase composes sentiment, breadth, movers and trends.
type DashboardUseCase struct {
	sentiment *SentimentUseCase
	defaults  DashboardDefaults
	timeout   time.Duration
	log       *applogger.Logger
}

func NewDashboardUseCase(s *SentimentUseCase, d DashboardDefaults, timeout time.Duration, l *applogger.Logger) *DashboardUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DashboardUseCase{sentiment: s, defaults: d, timeout: timeout, log: l}
}

// Overview fetches the four sections concurrently. A failing section is
// reported in Errors; the call fails only when every section failed.
func (u *DashboardUseCase) Overview(ctx context.Context, asOf time.Time, jurisdiction string) (*models.DashboardOverview, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	res := &models.DashboardOverview{}
	var (
		mu   sync.Mutex
		errs = map[string]error{}
	)
	fail := func(section string, err error) {
		mu.Lock()
		errs[section] = err
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		v, err := u.sentiment.ComputeSentiment(ctx, models.SentimentQuery{
			AsOf:         asOf,
			Days:         u.defaults.SentimentDays,
			Jurisdiction: jurisdiction,
		})
		if err != nil {
			fail("sentiment", err)
			return nil
		}
		res.Sentiment = v
		return nil
	})
	g.Go(func() error {
		v, err := u.sentiment.MarketBreadth(ctx, models.RankingQuery{
			AsOf:         asOf,
			Days:         u.defaults.BreadthDays,
			Jurisdiction: jurisdiction,
		})
		if err != nil {
			fail("breadth", err)
			return nil
		}
		res.Breadth = v
		return nil
	})
	g.Go(func() error {
		v, err := u.sentiment.TopMovers(ctx, models.RankingQuery{
			AsOf:            asOf,
			Days:            u.defaults.MoverDays,
			Jurisdiction:    jurisdiction,
			Limit:           u.defaults.MoverLimit,
			MinTransactions: u.defaults.MinTransactions,
		})
		if err != nil {
			fail("topMovers", err)
			return nil
		}
		res.Movers = v
		return nil
	})
	g.Go(func() error {
		v, err := u.sentiment.Trends(ctx, asOf, jurisdiction)
		if err != nil {
			fail("trends", err)
			return nil
		}
		res.Trends = v
		return nil
	})
	_ = g.Wait()

	if len(errs) == 0 {
		return res, nil
	}
	res.Errors = make(map[string]string, len(errs))
	joined := make([]error, 0, len(errs))
	for section, err := range errs {
		res.Errors[section] = err.Error()
		joined = append(joined, err)
		u.log.Warn("dashboard section failed",
			applogger.String("section", section),
			applogger.Error(err),
		)
	}
	if len(errs) == 4 {
		return nil, errors.Join(joined...)
	}
	return res, nil
}
