package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"InsiderPulse/internal/domain/models"
	domrepo "InsiderPulse/internal/domain/repository"
	pkgch "InsiderPulse/pkg/clickhouse"
	applogger "InsiderPulse/pkg/logger"

	"github.com/shopspring/decimal"
)

const chColumns = "insider_id, insider_name, isin, ticker, company_name, jurisdiction, source, currency, ts, direction, amount, transaction_method"

// ClickHouseSchema returns idempotent DDL for the transactions table.
// ReplacingMergeTree folds re-ingested identical rows on merge.
func ClickHouseSchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    insider_id String,
    insider_name String,
    isin LowCardinality(String),
    ticker String,
    company_name String,
    jurisdiction LowCardinality(String),
    source LowCardinality(String),
    currency LowCardinality(String),
    ts DateTime64(3, 'UTC'),
    direction LowCardinality(String),
    amount Decimal(38, 4),
    transaction_method LowCardinality(String),
    ingested_at DateTime DEFAULT now()
) ENGINE = ReplacingMergeTree(ingested_at)
PARTITION BY toYYYYMM(ts)
ORDER BY (isin, ts, insider_id, direction, transaction_method, amount)`, database, table),
	}
}

// CHTransactionStore reads and writes insider transactions in ClickHouse.
type CHTransactionStore struct {
	client *pkgch.Client
	db     *sql.DB
	table  string
	l      *applogger.Logger
}

func NewCHTransactionStore(ch *pkgch.Client, table string, l *applogger.Logger) *CHTransactionStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHTransactionStore{
		client: ch,
		db:     ch.DB(),
		table:  ch.Database() + "." + table,
		l:      l,
	}
}

func (s *CHTransactionStore) Init(ctx context.Context) error {
	db, table, _ := strings.Cut(s.table, ".")
	return s.client.InitSchema(ctx, ClickHouseSchema(db, table))
}

func (s *CHTransactionStore) Query(ctx context.Context, q domrepo.TransactionQuery) ([]models.Transaction, error) {
	start := time.Now()
	query, args := buildCHSelect(s.table, q)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.l.Error("clickhouse query error",
			applogger.String("table", s.table),
			applogger.String("window", q.Window.String()),
			applogger.Error(err),
		)
		return nil, storeError(ctx, "query transactions", err)
	}
	defer rows.Close()

	out := make([]models.Transaction, 0, 1024)
	for rows.Next() {
		var (
			t         models.Transaction
			direction string
			amount    decimal.Decimal
		)
		if err := rows.Scan(&t.InsiderID, &t.InsiderName, &t.EntityID, &t.Ticker, &t.CompanyName,
			&t.Jurisdiction, &t.Source, &t.Currency, &t.Timestamp, &direction, &amount, &t.TransactionMethod); err != nil {
			s.l.Error("clickhouse scan error", applogger.String("table", s.table), applogger.Error(err))
			return nil, storeError(ctx, "scan transaction", err)
		}
		t.Direction = models.ParseDirection(direction)
		t.Amount = amount
		t.Timestamp = t.Timestamp.UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		s.l.Error("clickhouse rows error", applogger.String("table", s.table), applogger.Error(err))
		return nil, storeError(ctx, "rows", err)
	}

	s.l.Debug("clickhouse query ok",
		applogger.String("table", s.table),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

// StoreBatch inserts with multi-row VALUES, chunked to bound statement size.
func (s *CHTransactionStore) StoreBatch(ctx context.Context, txs []models.Transaction) error {
	const chunkSize = 2000
	for start := 0; start < len(txs); start += chunkSize {
		end := start + chunkSize
		if end > len(txs) {
			end = len(txs)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*12)
		for _, t := range txs[start:end] {
			if t.EntityID == "" || t.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				t.InsiderID, t.InsiderName, t.EntityID, t.Ticker, t.CompanyName,
				t.Jurisdiction, t.Source, t.Currency, t.Timestamp.UTC(),
				string(t.Direction), t.Amount, t.TransactionMethod,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, chColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse insert error",
				applogger.String("table", s.table),
				applogger.Int("rows", len(values)),
				applogger.Error(err),
			)
			return storeError(ctx, "insert transactions", err)
		}
	}
	return nil
}

func (s *CHTransactionStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

// Close is a no-op; the client owns the pool.
func (s *CHTransactionStore) Close() error { return nil }

func buildCHSelect(table string, q domrepo.TransactionQuery) (string, []interface{}) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s FINAL WHERE ts >= ? AND ts < ?", chColumns, table)
	args := []interface{}{q.Window.Start.UTC(), q.Window.End.UTC()}

	if ids := domrepo.NormalizeEntityIDs(q.EntityIDs); len(ids) > 0 {
		b.WriteString(" AND isin IN (")
		for i, id := range ids {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("?")
			args = append(args, id)
		}
		b.WriteString(")")
	}
	if q.Jurisdiction != "" {
		b.WriteString(" AND upper(jurisdiction) = ?")
		args = append(args, strings.ToUpper(q.Jurisdiction))
	}
	if q.Source != "" {
		b.WriteString(" AND lower(source) = ?")
		args = append(args, strings.ToLower(q.Source))
	}
	return b.String(), args
}
