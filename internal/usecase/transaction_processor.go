package usecase

import (
	"context"
	"fmt"
	"time"

	"InsiderPulse/internal/domain/models"
	drepo "InsiderPulse/internal/domain/repository"
)

// Processor backends.
const (
	BackendKafka = "kafka"
	BackendStore = "store"
)

// TransactionProcessor routes imported transactions either to the ingest
// topic or straight into the store.
type TransactionProcessor struct {
	pub     drepo.Publisher
	store   drepo.TransactionWriter
	metrics drepo.Metrics
	backend string
	batchSz int
}

// NewTransactionProcessor creates a new TransactionProcessor instance.
func NewTransactionProcessor(
	pub drepo.Publisher,
	store drepo.TransactionWriter,
	metrics drepo.Metrics,
	backend string,
	batchSz int,
) *TransactionProcessor {
	if batchSz <= 0 {
		batchSz = 1000
	}
	return &TransactionProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		batchSz: batchSz,
	}
}

// ProcessBatch normalizes txs and sends them in chunks of the batch size.
// It returns how many transactions were sent.
func (p *TransactionProcessor) ProcessBatch(ctx context.Context, txs []models.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}
	norm := make([]models.Transaction, len(txs))
	for i, t := range txs {
		norm[i] = t.Normalize()
	}

	sent := 0
	for lo := 0; lo < len(norm); lo += p.batchSz {
		hi := lo + p.batchSz
		if hi > len(norm) {
			hi = len(norm)
		}
		chunk := norm[lo:hi]
		start := time.Now()
		var err error
		switch p.backend {
		case BackendKafka:
			if p.pub == nil {
				return sent, fmt.Errorf("kafka backend: publisher not configured")
			}
			err = p.pub.PublishBatch(ctx, chunk)
		case BackendStore:
			if p.store == nil {
				return sent, fmt.Errorf("store backend: writer not configured")
			}
			err = p.store.StoreBatch(ctx, chunk)
		default:
			err = fmt.Errorf("unknown backend: %s", p.backend)
		}
		if err != nil {
			p.metrics.RecordError("process_batch")
			return sent, fmt.Errorf("process batch: %w", err)
		}
		sent += len(chunk)
		p.metrics.RecordIngested(p.backend, len(chunk))
		p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())
	}
	return sent, nil
}

// Close flushes and closes the publisher. The store belongs to its owner.
func (p *TransactionProcessor) Close() error {
	if p.pub != nil {
		return p.pub.Close()
	}
	return nil
}
