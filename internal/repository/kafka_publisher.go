package repository

import (
	"context"

	"InsiderPulse/internal/domain/models"
	pkgkafka "InsiderPulse/pkg/kafka"
)

// TransactionPublisher writes normalized transactions to the ingest topic,
// keyed by ISIN so one company stays on one partition.
type TransactionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewTransactionPublisher(producer *pkgkafka.Producer, topic string) *TransactionPublisher {
	return &TransactionPublisher{producer: producer, topic: topic}
}

func (p *TransactionPublisher) PublishBatch(ctx context.Context, txs []models.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(txs))
	for i, t := range txs {
		msgs[i] = pkgkafka.Message{Key: []byte(t.EntityID), Value: t}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *TransactionPublisher) Close() error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
