package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"InsiderPulse/internal/domain/models"
	domrepo "InsiderPulse/internal/domain/repository"
	applogger "InsiderPulse/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const PostgresSchema = `
CREATE TABLE IF NOT EXISTS insider_transactions (
    id                 BIGSERIAL PRIMARY KEY,
    insider_id         TEXT        NOT NULL,
    insider_name       TEXT        NOT NULL DEFAULT '',
    isin               TEXT        NOT NULL,
    ticker             TEXT        NOT NULL DEFAULT '',
    company_name       TEXT        NOT NULL DEFAULT '',
    jurisdiction       TEXT        NOT NULL DEFAULT '',
    source             TEXT        NOT NULL DEFAULT '',
    currency           TEXT        NOT NULL DEFAULT '',
    ts                 TIMESTAMPTZ NOT NULL,
    direction          TEXT        NOT NULL,
    amount             NUMERIC(38, 4) NOT NULL DEFAULT 0,
    transaction_method TEXT        NOT NULL DEFAULT '',
    ingested_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (isin, insider_id, ts, direction, transaction_method, amount)
);
CREATE INDEX IF NOT EXISTS insider_transactions_ts_idx ON insider_transactions (ts);
CREATE INDEX IF NOT EXISTS insider_transactions_isin_ts_idx ON insider_transactions (isin, ts);
`

// NewPostgresPool connects and pings.
func NewPostgresPool(ctx context.Context, dsn string, maxConns, minConns int32, lifetime time.Duration) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}
	if minConns > 0 {
		config.MinConns = minConns
	}
	if lifetime > 0 {
		config.MaxConnLifetime = lifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// PGTransactionStore keeps transactions in PostgreSQL.
type PGTransactionStore struct {
	pool *pgxpool.Pool
	l    *applogger.Logger
}

func NewPGTransactionStore(pool *pgxpool.Pool, l *applogger.Logger) *PGTransactionStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &PGTransactionStore{pool: pool, l: l}
}

func (s *PGTransactionStore) Init(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("init postgres schema: %w", err)
	}
	return nil
}

func (s *PGTransactionStore) Query(ctx context.Context, q domrepo.TransactionQuery) ([]models.Transaction, error) {
	query, args := buildPGSelect(q)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		s.l.Error("postgres query error", applogger.String("window", q.Window.String()), applogger.Error(err))
		return nil, storeError(ctx, "query transactions", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var (
			t         models.Transaction
			direction string
			amount    string
		)
		if err := rows.Scan(&t.InsiderID, &t.InsiderName, &t.EntityID, &t.Ticker, &t.CompanyName,
			&t.Jurisdiction, &t.Source, &t.Currency, &t.Timestamp, &direction, &amount, &t.TransactionMethod); err != nil {
			return nil, storeError(ctx, "scan transaction", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("%w: parse amount %q: %w", models.ErrStoreUnavailable, amount, err)
		}
		t.Amount = d
		t.Direction = models.ParseDirection(direction)
		t.Timestamp = t.Timestamp.UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(ctx, "rows", err)
	}
	return out, nil
}

// StoreBatch inserts in one round trip; rows already present are skipped.
func (s *PGTransactionStore) StoreBatch(ctx context.Context, txs []models.Transaction) error {
	const insert = `
		INSERT INTO insider_transactions (
			insider_id, insider_name, isin, ticker, company_name, jurisdiction,
			source, currency, ts, direction, amount, transaction_method
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::numeric, $12)
		ON CONFLICT DO NOTHING
	`
	batch := &pgx.Batch{}
	for _, t := range txs {
		if t.EntityID == "" || t.Timestamp.IsZero() {
			continue
		}
		batch.Queue(insert,
			t.InsiderID, t.InsiderName, t.EntityID, t.Ticker, t.CompanyName, t.Jurisdiction,
			t.Source, t.Currency, t.Timestamp.UTC(), string(t.Direction), t.Amount.String(), t.TransactionMethod,
		)
	}
	if batch.Len() == 0 {
		return nil
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		s.l.Error("postgres insert error", applogger.Int("rows", batch.Len()), applogger.Error(err))
		return storeError(ctx, "insert transactions", err)
	}
	return nil
}

func (s *PGTransactionStore) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PGTransactionStore) Close() error {
	s.pool.Close()
	return nil
}

func buildPGSelect(q domrepo.TransactionQuery) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(`SELECT insider_id, insider_name, isin, ticker, company_name, jurisdiction,
		source, currency, ts, direction, amount::text, transaction_method
		FROM insider_transactions WHERE ts >= $1 AND ts < $2`)
	args := []interface{}{q.Window.Start.UTC(), q.Window.End.UTC()}

	if ids := domrepo.NormalizeEntityIDs(q.EntityIDs); len(ids) > 0 {
		args = append(args, ids)
		fmt.Fprintf(&b, " AND isin = ANY($%d)", len(args))
	}
	if q.Jurisdiction != "" {
		args = append(args, strings.ToUpper(q.Jurisdiction))
		fmt.Fprintf(&b, " AND upper(jurisdiction) = $%d", len(args))
	}
	if q.Source != "" {
		args = append(args, strings.ToLower(q.Source))
		fmt.Fprintf(&b, " AND lower(source) = $%d", len(args))
	}
	return b.String(), args
}
