package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"InsiderPulse/internal/domain/models"
	"InsiderPulse/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	got []models.Transaction
	err error
}

func (s *captureSink) Submit(_ context.Context, txs []models.Transaction) error {
	s.got = append(s.got, txs...)
	return s.err
}

func TestKafkaTransactionsHandlerDecodes(t *testing.T) {
	sink := &captureSink{}
	h := NewKafkaTransactionsHandler("insider-transactions", sink, newRecordingMetrics())
	assert.Equal(t, "insider-transactions", h.Topic())

	obj := `{"insiderId":" a ","isin":"de0001","companyName":"Acme","jurisdiction":"de","source":"BaFin",
		"currency":"eur","timestamp":"2025-06-29T10:00:00+02:00","direction":"purchase","amount":"1500.25"}`
	require.NoError(t, h.Handle(context.Background(), []byte(obj)))
	require.Len(t, sink.got, 1)
	tx := sink.got[0]
	assert.Equal(t, "a", tx.InsiderID)
	assert.Equal(t, "DE0001", tx.EntityID)
	assert.Equal(t, "DE", tx.Jurisdiction)
	assert.Equal(t, "bafin", tx.Source)
	assert.Equal(t, models.DirectionBuy, tx.Direction)
	assert.Equal(t, time.UTC, tx.Timestamp.Location())
	assert.Equal(t, 8, tx.Timestamp.Hour())

	arr := `[{"insiderId":"b","isin":"US1","timestamp":"2025-06-29T10:00:00Z","direction":"S","amount":"1"},
		{"insiderId":"c","isin":"US2","timestamp":"2025-06-29T10:00:00Z","direction":"gift","amount":"1"}]`
	require.NoError(t, h.Handle(context.Background(), []byte(arr)))
	require.Len(t, sink.got, 3)
	assert.Equal(t, models.DirectionSell, sink.got[1].Direction)
	assert.Equal(t, models.DirectionOther, sink.got[2].Direction)
}

func TestKafkaTransactionsHandlerErrors(t *testing.T) {
	m := newRecordingMetrics()
	sink := &captureSink{}
	h := NewKafkaTransactionsHandler("t", sink, m)

	assert.Error(t, h.Handle(context.Background(), []byte("not json")))
	assert.Error(t, h.Handle(context.Background(), []byte("  ")))
	assert.Equal(t, 2, m.errors["consumer_unmarshal"])

	sink.err = errors.New("store down")
	assert.Error(t, h.Handle(context.Background(), []byte(`{"isin":"X"}`)))
	assert.Equal(t, 1, m.errors["consumer_store"])
}

type capturePublisher struct {
	batches [][]models.Transaction
	closed  bool
}

func (p *capturePublisher) PublishBatch(_ context.Context, txs []models.Transaction) error {
	p.batches = append(p.batches, txs)
	return nil
}

func (p *capturePublisher) Close() error {
	p.closed = true
	return nil
}

func TestTransactionProcessorRoutes(t *testing.T) {
	txs := []models.Transaction{
		buy("a", "de1", daysAgo(1), 100),
		buy("b", "de2", daysAgo(1), 100),
		buy("c", "de3", daysAgo(1), 100),
	}

	pub := &capturePublisher{}
	m := newRecordingMetrics()
	p := NewTransactionProcessor(pub, nil, m, BackendKafka, 2)
	n, err := p.ProcessBatch(context.Background(), txs)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, pub.batches, 2)
	assert.Equal(t, "DE1", pub.batches[0][0].EntityID)
	assert.Equal(t, 3, m.ingested[BackendKafka])
	require.NoError(t, p.Close())
	assert.True(t, pub.closed)

	store := repository.NewMemoryStore()
	p = NewTransactionProcessor(nil, store, newRecordingMetrics(), BackendStore, 10)
	n, err = p.ProcessBatch(context.Background(), txs)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, store.Len())

	p = NewTransactionProcessor(nil, nil, newRecordingMetrics(), "ftp", 10)
	_, err = p.ProcessBatch(context.Background(), txs)
	assert.ErrorContains(t, err, "unknown backend")
}
