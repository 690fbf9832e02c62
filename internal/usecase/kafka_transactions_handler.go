package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"InsiderPulse/internal/domain/models"
	domrepo "InsiderPulse/internal/domain/repository"
	pkgkafka "InsiderPulse/pkg/kafka"
)

// Submitter accepts normalized transactions for storage.
type Submitter interface {
	Submit(ctx context.Context, txs []models.Transaction) error
}

// KafkaTransactionsHandler consumes normalized insider transactions and
// hands them to the ingest pipeline.
type KafkaTransactionsHandler struct {
	topic   string
	sink    Submitter
	metrics domrepo.Metrics
}

func NewKafkaTransactionsHandler(topic string, sink Submitter, metrics domrepo.Metrics) *KafkaTransactionsHandler {
	return &KafkaTransactionsHandler{topic: topic, sink: sink, metrics: metrics}
}

func (h *KafkaTransactionsHandler) Topic() string { return h.topic }

// Handle accepts one transaction object or an array of them.
func (h *KafkaTransactionsHandler) Handle(ctx context.Context, b []byte) error {
	txs, err := DecodeTransactions(b)
	if err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	start := time.Now()
	if err := h.sink.Submit(ctx, txs); err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordLatency("consumer_store", time.Since(start).Seconds())
	return nil
}

// DecodeTransactions parses and normalizes a JSON object or array.
func DecodeTransactions(b []byte) ([]models.Transaction, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, fmt.Errorf("empty message")
	}
	var txs []models.Transaction
	if b[0] == '[' {
		if err := json.Unmarshal(b, &txs); err != nil {
			return nil, fmt.Errorf("decode transactions: %w", err)
		}
	} else {
		var t models.Transaction
		if err := json.Unmarshal(b, &t); err != nil {
			return nil, fmt.Errorf("decode transaction: %w", err)
		}
		txs = []models.Transaction{t}
	}
	for i := range txs {
		txs[i] = txs[i].Normalize()
	}
	return txs, nil
}

var _ pkgkafka.MessageHandler = (*KafkaTransactionsHandler)(nil)
