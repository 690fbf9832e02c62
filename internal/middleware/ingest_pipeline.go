package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"InsiderPulse/internal/domain/models"
	domrepo "InsiderPulse/internal/domain/repository"
	applogger "InsiderPulse/pkg/logger"
)

// ErrPipelineStopped is returned by Submit after Stop.
var ErrPipelineStopped = errors.New("ingest pipeline stopped")

// BatchWriter is the minimal store interface the pipeline needs.
type BatchWriter interface {
	StoreBatch(ctx context.Context, txs []models.Transaction) error
}

// IngestPipeline sits between the Kafka consumer workers and the store.
// It validates transactions and merges concurrent submissions into one
// store batch. Submit returns once the batch holding its transactions has
// been written, so a consumer commits its offset only after the write.
type IngestPipeline struct {
	w       BatchWriter
	metrics domrepo.Metrics
	log     *applogger.Logger

	batchSize   int
	flushEvery  time.Duration
	maxAttempts int
	backoffMin  time.Duration
	backoffMax  time.Duration

	reqCh   chan *pending
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.RWMutex
	started bool
	stopped bool
}

type pending struct {
	txs  []models.Transaction
	done chan error
}

type PipelineOption func(*IngestPipeline)

// WithBatchSize sets how many transactions trigger an immediate flush.
func WithBatchSize(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithFlushInterval sets the longest a submission waits for a fuller batch.
func WithFlushInterval(d time.Duration) PipelineOption {
	return func(p *IngestPipeline) {
		if d > 0 {
			p.flushEvery = d
		}
	}
}

// WithWriteRetry sets attempts and the backoff range of failed writes.
func WithWriteRetry(attempts int, lo, hi time.Duration) PipelineOption {
	return func(p *IngestPipeline) {
		if attempts > 0 {
			p.maxAttempts = attempts
		}
		if lo > 0 {
			p.backoffMin = lo
		}
		if hi >= p.backoffMin {
			p.backoffMax = hi
		}
	}
}

func NewIngestPipeline(w BatchWriter, metrics domrepo.Metrics, l *applogger.Logger, opts ...PipelineOption) *IngestPipeline {
	if l == nil {
		l = applogger.Nop()
	}
	p := &IngestPipeline{
		w:           w,
		metrics:     metrics,
		log:         l,
		batchSize:   500,
		flushEvery:  time.Second,
		maxAttempts: 3,
		backoffMin:  50 * time.Millisecond,
		backoffMax:  2 * time.Second,
		reqCh:       make(chan *pending, 64),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the flush loop. Writes use ctx; cancel it only after Stop.
func (p *IngestPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	go p.run(ctx)
}

// Stop flushes what is buffered and waits for the loop to exit.
func (p *IngestPipeline) Stop() {
	p.mu.Lock()
	if !p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()
	close(p.stopCh)
	<-p.doneCh
}

// Submit validates txs and blocks until they are written. Invalid
// transactions are dropped and counted; an all-invalid submission is a no-op.
func (p *IngestPipeline) Submit(ctx context.Context, txs []models.Transaction) error {
	valid := make([]models.Transaction, 0, len(txs))
	for _, t := range txs {
		if err := ValidateTransaction(t); err != nil {
			p.metrics.RecordExcluded("invalid", 1)
			p.log.Warn("invalid transaction dropped",
				applogger.String("isin", t.EntityID),
				applogger.String("insider", t.InsiderID),
				applogger.Error(err),
			)
			continue
		}
		valid = append(valid, t)
	}
	if len(valid) == 0 {
		return nil
	}

	req := &pending{txs: valid, done: make(chan error, 1)}
	// held across the send so Stop cannot close the loop between the check
	// and the enqueue; the loop drains reqCh until stopCh closes
	p.mu.RLock()
	if p.stopped {
		p.mu.RUnlock()
		return ErrPipelineStopped
	}
	select {
	case p.reqCh <- req:
		p.mu.RUnlock()
	case <-ctx.Done():
		p.mu.RUnlock()
		return ctx.Err()
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *IngestPipeline) run(ctx context.Context) {
	defer close(p.doneCh)
	ticker := time.NewTicker(p.flushEvery)
	defer ticker.Stop()

	var (
		batch []*pending
		size  int
	)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		err := p.write(ctx, batch, size)
		for _, r := range batch {
			r.done <- err
		}
		batch, size = nil, 0
	}

	for {
		select {
		case r := <-p.reqCh:
			batch = append(batch, r)
			size += len(r.txs)
			if size >= p.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-p.stopCh:
			for {
				select {
				case r := <-p.reqCh:
					batch = append(batch, r)
					size += len(r.txs)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (p *IngestPipeline) write(ctx context.Context, batch []*pending, size int) error {
	all := make([]models.Transaction, 0, size)
	for _, r := range batch {
		all = append(all, r.txs...)
	}
	start := time.Now()
	backoff := p.backoffMin
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err = p.w.StoreBatch(ctx, all); err == nil {
			p.metrics.RecordLatency("store_batch", time.Since(start).Seconds())
			p.recordIngested(all)
			return nil
		}
		p.metrics.RecordError("store_batch")
		p.log.Warn("store batch failed",
			applogger.Int("attempt", attempt),
			applogger.Int("size", len(all)),
			applogger.Error(err),
		)
		if attempt == p.maxAttempts {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
		if backoff > p.backoffMax {
			backoff = p.backoffMax
		}
	}
	return fmt.Errorf("store batch of %d: %w", len(all), err)
}

func (p *IngestPipeline) recordIngested(txs []models.Transaction) {
	bySource := make(map[string]int)
	for _, t := range txs {
		src := strings.ToLower(t.Source)
		if src == "" {
			src = "unknown"
		}
		bySource[src]++
	}
	for src, n := range bySource {
		p.metrics.RecordIngested(src, n)
	}
}

// ValidateTransaction rejects records no computation can use.
func ValidateTransaction(t models.Transaction) error {
	if strings.TrimSpace(t.EntityID) == "" {
		return fmt.Errorf("isin empty")
	}
	if strings.TrimSpace(t.InsiderID) == "" {
		return fmt.Errorf("insider id empty")
	}
	if t.Timestamp.IsZero() {
		return fmt.Errorf("timestamp missing")
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("negative amount %s", t.Amount)
	}
	return nil
}
