package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"InsiderPulse/internal/domain/models"
	domrepo "InsiderPulse/internal/domain/repository"
)

// MemoryStore keeps transactions in process. Used for the memory backend,
// offline snapshots and tests.
type MemoryStore struct {
	mu  sync.RWMutex
	txs []models.Transaction
	// err, when set, fails every call; lets tests simulate an outage.
	err error
}

func NewMemoryStore(txs ...models.Transaction) *MemoryStore {
	s := &MemoryStore{}
	s.txs = append(s.txs, txs...)
	return s
}

// LoadMemoryStore reads a JSON array of transactions.
func LoadMemoryStore(path string) (*MemoryStore, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var txs []models.Transaction
	if err := json.Unmarshal(b, &txs); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return NewMemoryStore(txs...), nil
}

func (s *MemoryStore) SetError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *MemoryStore) Init(context.Context) error { return nil }

func (s *MemoryStore) Query(ctx context.Context, q domrepo.TransactionQuery) ([]models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, storeError(ctx, "memory query", s.err)
	}
	var out []models.Transaction
	for _, t := range s.txs {
		if q.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStore) StoreBatch(ctx context.Context, txs []models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return storeError(ctx, "memory insert", s.err)
	}
	s.txs = append(s.txs, txs...)
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

func (s *MemoryStore) Health(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *MemoryStore) Close() error { return nil }
