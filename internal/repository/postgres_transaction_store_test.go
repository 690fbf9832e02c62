package repository

import (
	"context"
	"testing"
	"time"

	"InsiderPulse/internal/domain/models"
	domrepo "InsiderPulse/internal/domain/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("insiderpulse"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPostgresPool(ctx, dsn, 4, 1, time.Hour)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestPGTransactionStoreRoundTrip(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	s := NewPGTransactionStore(pool, nil)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Init(ctx), "schema init is idempotent")

	a := tx("DE0001", "DE", "bafin", time.Hour)
	a.Amount = decimal.RequireFromString("1234.5678")
	b := tx("US0001", "US", "sec", 3*time.Hour)
	b.Direction = models.DirectionSell
	old := tx("DE0002", "DE", "bafin", 90*24*time.Hour)

	require.NoError(t, s.StoreBatch(ctx, []models.Transaction{a, b, old}))
	require.NoError(t, s.StoreBatch(ctx, []models.Transaction{a}), "duplicates are skipped")

	got, err := s.Query(ctx, domrepo.TransactionQuery{Window: models.WindowEndingAt(now, 30)})
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = s.Query(ctx, domrepo.TransactionQuery{Window: models.WindowEndingAt(now, 30), EntityIDs: []string{"de0001"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, a.Amount.Equal(got[0].Amount))
	assert.Equal(t, models.DirectionBuy, got[0].Direction)
	assert.True(t, a.Timestamp.Equal(got[0].Timestamp))

	got, err = s.Query(ctx, domrepo.TransactionQuery{Window: models.WindowEndingAt(now, 30), Source: "SEC"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.DirectionSell, got[0].Direction)

	require.NoError(t, s.Health(ctx))
}
