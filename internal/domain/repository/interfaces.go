package repository

import (
	"context"

	"InsiderPulse/internal/domain/models"
)

// TransactionStore is the queryable history of normalized transactions.
// Result order is not guaranteed. Failures wrap models.ErrStoreUnavailable.
type TransactionStore interface {
	Query(ctx context.Context, q TransactionQuery) ([]models.Transaction, error)
}

// TransactionWriter persists ingested transactions.
type TransactionWriter interface {
	Init(ctx context.Context) error // ensure tables
	StoreBatch(ctx context.Context, txs []models.Transaction) error
	Health(ctx context.Context) error
	Close() error
}

// TransactionRepository is a backend that can both serve and persist.
type TransactionRepository interface {
	TransactionStore
	TransactionWriter
}

// Publisher forwards normalized transactions to the ingest topic.
type Publisher interface {
	PublishBatch(ctx context.Context, txs []models.Transaction) error
	Close() error
}

type Metrics interface {
	RecordIngested(source string, n int)
	RecordError(kind string)
	RecordExcluded(reason string, n int)
	RecordSentiment(indicator string, value float64)
	RecordLatency(op string, seconds float64)
}
