package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"InsiderPulse/internal/domain/models"
	"InsiderPulse/pkg/metrics"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu      sync.Mutex
	batches [][]models.Transaction
	fails   int
}

func (w *fakeWriter) StoreBatch(_ context.Context, txs []models.Transaction) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fails > 0 {
		w.fails--
		return errors.New("insert timeout")
	}
	w.batches = append(w.batches, append([]models.Transaction(nil), txs...))
	return nil
}

func (w *fakeWriter) count() (batches, txs int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, b := range w.batches {
		txs += len(b)
	}
	return len(w.batches), txs
}

func validTx(isin string) models.Transaction {
	return models.Transaction{
		InsiderID: "ins-1",
		EntityID:  isin,
		Source:    "bafin",
		Timestamp: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Direction: models.DirectionBuy,
		Amount:    decimal.NewFromInt(1000),
	}
}

func TestSubmitMergesConcurrentSubmissions(t *testing.T) {
	w := &fakeWriter{}
	p := NewIngestPipeline(w, metrics.Nop{}, nil, WithBatchSize(4), WithFlushInterval(time.Hour))
	p.Start(context.Background())
	defer p.Stop()

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = p.Submit(context.Background(), []models.Transaction{validTx("DE000000000" + string(rune('0'+i)))})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	batches, txs := w.count()
	assert.Equal(t, 1, batches, "size threshold flushes one merged batch")
	assert.Equal(t, 4, txs)
}

func TestSubmitFlushesOnInterval(t *testing.T) {
	w := &fakeWriter{}
	p := NewIngestPipeline(w, metrics.Nop{}, nil, WithBatchSize(100), WithFlushInterval(10*time.Millisecond))
	p.Start(context.Background())
	defer p.Stop()

	require.NoError(t, p.Submit(context.Background(), []models.Transaction{validTx("DE0000000001")}))
	_, txs := w.count()
	assert.Equal(t, 1, txs)
}

func TestSubmitRetriesFailedWrites(t *testing.T) {
	w := &fakeWriter{fails: 2}
	p := NewIngestPipeline(w, metrics.Nop{}, nil,
		WithBatchSize(1),
		WithWriteRetry(3, time.Millisecond, 2*time.Millisecond),
	)
	p.Start(context.Background())
	defer p.Stop()

	require.NoError(t, p.Submit(context.Background(), []models.Transaction{validTx("DE0000000001")}))
	batches, _ := w.count()
	assert.Equal(t, 1, batches)
}

func TestSubmitReportsExhaustedRetries(t *testing.T) {
	w := &fakeWriter{fails: 5}
	p := NewIngestPipeline(w, metrics.Nop{}, nil,
		WithBatchSize(1),
		WithWriteRetry(2, time.Millisecond, time.Millisecond),
	)
	p.Start(context.Background())
	defer p.Stop()

	err := p.Submit(context.Background(), []models.Transaction{validTx("DE0000000001")})
	assert.ErrorContains(t, err, "insert timeout")
}

func TestSubmitDropsInvalid(t *testing.T) {
	w := &fakeWriter{}
	p := NewIngestPipeline(w, metrics.Nop{}, nil, WithBatchSize(1))
	p.Start(context.Background())
	defer p.Stop()

	bad := validTx("")
	require.NoError(t, p.Submit(context.Background(), []models.Transaction{bad}))
	_, txs := w.count()
	assert.Zero(t, txs)
}

func TestStopFlushesAndRejects(t *testing.T) {
	w := &fakeWriter{}
	p := NewIngestPipeline(w, metrics.Nop{}, nil, WithBatchSize(100), WithFlushInterval(time.Hour))
	p.Start(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.Submit(context.Background(), []models.Transaction{validTx("DE0000000001")}) }()
	time.Sleep(20 * time.Millisecond)
	p.Stop()

	require.NoError(t, <-done)
	_, txs := w.count()
	assert.Equal(t, 1, txs)
	assert.ErrorIs(t, p.Submit(context.Background(), []models.Transaction{validTx("DE0000000002")}), ErrPipelineStopped)
}

func TestSubmitAfterStopNeverEnqueues(t *testing.T) {
	w := &fakeWriter{}
	p := NewIngestPipeline(w, metrics.Nop{}, nil, WithFlushInterval(time.Hour))
	p.Start(context.Background())
	p.Stop()

	for i := 0; i < 200; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err := p.Submit(ctx, []models.Transaction{validTx("DE0000000003")})
		cancel()
		require.ErrorIs(t, err, ErrPipelineStopped, "submission %d", i)
	}
	assert.Empty(t, p.reqCh)
	_, txs := w.count()
	assert.Zero(t, txs)
}

func TestValidateTransaction(t *testing.T) {
	ok := validTx("DE0000000001")
	require.NoError(t, ValidateTransaction(ok))

	noTime := ok
	noTime.Timestamp = time.Time{}
	assert.Error(t, ValidateTransaction(noTime))

	neg := ok
	neg.Amount = decimal.NewFromInt(-1)
	assert.Error(t, ValidateTransaction(neg))

	noInsider := ok
	noInsider.InsiderID = " "
	assert.Error(t, ValidateTransaction(noInsider))
}
