package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"InsiderPulse/internal/domain/models"
	domrepo "InsiderPulse/internal/domain/repository"
	applogger "InsiderPulse/pkg/logger"

	"github.com/sony/gobreaker"
)

// BreakerStore fails fast while the underlying store keeps failing.
type BreakerStore struct {
	next domrepo.TransactionStore
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerStore(next domrepo.TransactionStore, maxFailures, halfOpenMax uint32, openTimeout time.Duration, l *applogger.Logger) *BreakerStore {
	if l == nil {
		l = applogger.Nop()
	}
	st := gobreaker.Settings{
		Name:        "transaction_store",
		MaxRequests: halfOpenMax,
		Timeout:     openTimeout,
	}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= maxFailures
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		l.Warn("circuit breaker state change",
			applogger.String("breaker", name),
			applogger.String("from", from.String()),
			applogger.String("to", to.String()),
		)
	}
	// caller cancellations say nothing about store health
	st.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, context.Canceled)
	}
	return &BreakerStore{next: next, cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *BreakerStore) Query(ctx context.Context, q domrepo.TransactionQuery) ([]models.Transaction, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Query(ctx, q)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
		}
		return nil, err
	}
	txs, _ := res.([]models.Transaction)
	return txs, nil
}

func (b *BreakerStore) State() string {
	return b.cb.State().String()
}
