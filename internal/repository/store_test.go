package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"InsiderPulse/internal/domain/models"
	domrepo "InsiderPulse/internal/domain/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

func tx(isin, jurisdiction, source string, ago time.Duration) models.Transaction {
	return models.Transaction{
		InsiderID:    "i-" + isin,
		EntityID:     isin,
		CompanyName:  "Co " + isin,
		Jurisdiction: jurisdiction,
		Source:       source,
		Currency:     "EUR",
		Timestamp:    now.Add(-ago),
		Direction:    models.DirectionBuy,
		Amount:       decimal.NewFromInt(5000),
	}
}

func TestMemoryStoreQuery(t *testing.T) {
	s := NewMemoryStore(
		tx("DE0001", "DE", "bafin", time.Hour),
		tx("US0001", "US", "sec", 2*time.Hour),
		tx("DE0002", "DE", "bafin", 40*24*time.Hour),
		tx("DE0003", "de", "BaFin", 0), // at End, excluded
	)
	w := models.WindowEndingAt(now, 30)
	ctx := context.Background()

	got, err := s.Query(ctx, domrepo.TransactionQuery{Window: w})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.Query(ctx, domrepo.TransactionQuery{Window: w, Jurisdiction: "de"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "DE0001", got[0].EntityID)

	got, _ = s.Query(ctx, domrepo.TransactionQuery{Window: w, EntityIDs: []string{"us0001"}})
	require.Len(t, got, 1)

	got, _ = s.Query(ctx, domrepo.TransactionQuery{Window: w, Source: "SEC"})
	require.Len(t, got, 1)
	assert.Equal(t, "US0001", got[0].EntityID)
}

func TestMemoryStoreFailure(t *testing.T) {
	s := NewMemoryStore()
	s.SetError(errors.New("disk gone"))
	_, err := s.Query(context.Background(), domrepo.TransactionQuery{Window: models.WindowEndingAt(now, 1)})
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.ErrorIs(t, s.StoreBatch(context.Background(), nil), models.ErrStoreUnavailable)
}

func TestLoadMemoryStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"insiderId":"a","isin":"DE0001","companyName":"Acme","jurisdiction":"DE","currency":"EUR",
		 "timestamp":"2025-06-29T10:00:00Z","direction":"BUY","amount":"12000.50"}
	]`), 0o600))

	s, err := LoadMemoryStore(path)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
	got, err := s.Query(context.Background(), domrepo.TransactionQuery{Window: models.WindowEndingAt(now, 7)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, decimal.RequireFromString("12000.5").Equal(got[0].Amount))
}

func TestBreakerStoreOpensAfterFailures(t *testing.T) {
	inner := NewMemoryStore(tx("DE0001", "DE", "bafin", time.Hour))
	inner.SetError(errors.New("down"))
	b := NewBreakerStore(inner, 2, 1, time.Hour, nil)
	q := domrepo.TransactionQuery{Window: models.WindowEndingAt(now, 30)}

	for i := 0; i < 2; i++ {
		_, err := b.Query(context.Background(), q)
		assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	}
	assert.Equal(t, "open", b.State())

	inner.SetError(nil)
	_, err := b.Query(context.Background(), q)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable, "open breaker rejects without calling the store")
}

func TestBreakerStoreIgnoresCancellation(t *testing.T) {
	b := NewBreakerStore(NewMemoryStore(), 1, 1, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Query(ctx, domrepo.TransactionQuery{Window: models.WindowEndingAt(now, 1)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "closed", b.State())
}

func TestBuildCHSelect(t *testing.T) {
	q, args := buildCHSelect("db.t", domrepo.TransactionQuery{
		Window:       models.WindowEndingAt(now, 30),
		EntityIDs:    []string{"us2", "de1", "DE1"},
		Jurisdiction: "de",
		Source:       "BaFin",
	})
	assert.True(t, strings.HasPrefix(q, "SELECT insider_id"))
	assert.Contains(t, q, "FROM db.t FINAL")
	assert.Contains(t, q, "isin IN (?, ?)")
	assert.Equal(t, 6, strings.Count(q, "?"))
	require.Len(t, args, 6)
	assert.Equal(t, "DE1", args[2])
	assert.Equal(t, "US2", args[3])
	assert.Equal(t, "DE", args[4])
	assert.Equal(t, "bafin", args[5])
}

func TestBuildPGSelect(t *testing.T) {
	q, args := buildPGSelect(domrepo.TransactionQuery{
		Window:    models.WindowEndingAt(now, 30),
		EntityIDs: []string{"DE1"},
		Source:    "sec",
	})
	assert.Contains(t, q, "isin = ANY($3)")
	assert.Contains(t, q, "lower(source) = $4")
	assert.NotContains(t, q, "jurisdiction) =")
	require.Len(t, args, 4)
	assert.Equal(t, []string{"DE1"}, args[2])
}

func TestClickHouseSchema(t *testing.T) {
	stmts := ClickHouseSchema("insiderpulse", "insider_transactions")
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[1], "insiderpulse.insider_transactions")
	assert.Contains(t, stmts[1], "ReplacingMergeTree")
}

// refusingStore fails the way a driver does when its server is unreachable.
type refusingStore struct{ calls int }

func (s *refusingStore) Query(ctx context.Context, _ domrepo.TransactionQuery) ([]models.Transaction, error) {
	s.calls++
	return nil, storeError(ctx, "query transactions", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"))
}

func TestStoreErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := storeError(context.Background(), "query transactions", cause)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	err = storeError(ctx, "query transactions", cause)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, models.ErrStoreUnavailable)
}

func TestBreakerStoreStaysClosedOnCancelledDriverQueries(t *testing.T) {
	inner := &refusingStore{}
	b := NewBreakerStore(inner, 2, 1, time.Hour, nil)
	q := domrepo.TransactionQuery{Window: models.WindowEndingAt(now, 30)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 3; i++ {
		_, err := b.Query(ctx, q)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, models.ErrStoreUnavailable)
	}
	assert.Equal(t, "closed", b.State())
	assert.Equal(t, 3, inner.calls)

	// real outages still trip it
	for i := 0; i < 2; i++ {
		_, err := b.Query(context.Background(), q)
		assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	}
	assert.Equal(t, "open", b.State())
}
