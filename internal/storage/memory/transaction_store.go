package memory

import (
	"context"
	"sort"
	"sync"

	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/storage"
)

// TransactionStore is an in-memory implementation of storage.TransactionStore.
// Reads return rows in insertion order.
type TransactionStore struct {
	mu    sync.RWMutex
	data  map[string]*domain.Transaction // keyed by tx_id
	order []string                       // tx_ids in insertion order
}

// NewTransactionStore creates a new in-memory transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		data: make(map[string]*domain.Transaction),
	}
}

// InsertBulk adds multiple transactions atomically. Fails entire batch on any duplicate.
func (s *TransactionStore) InsertBulk(_ context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(txs))

	// First pass: validate and check duplicates (existing + intra-batch)
	for _, t := range txs {
		if t == nil || t.TxID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[t.TxID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[t.TxID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[t.TxID] = struct{}{}
	}

	// Second pass: insert all
	for _, t := range txs {
		s.data[t.TxID] = t.Clone()
		s.order = append(s.order, t.TxID)
	}

	return nil
}

// GetByID retrieves a transaction by its ID. Returns ErrNotFound if not exists.
func (s *TransactionStore) GetByID(_ context.Context, txID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[txID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return t.Clone(), nil
}

// GetAll retrieves every transaction in insertion order.
func (s *TransactionStore) GetAll(_ context.Context) ([]*domain.Transaction, error) {
	return s.collect(func(*domain.Transaction) bool { return true }), nil
}

// GetByPeriod retrieves transactions of one accounting period in insertion order.
func (s *TransactionStore) GetByPeriod(_ context.Context, period int) ([]*domain.Transaction, error) {
	return s.collect(func(t *domain.Transaction) bool { return t.Period == period }), nil
}

// Periods returns the distinct periods present, ascending.
func (s *TransactionStore) Periods(_ context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := make(map[int]struct{})
	for _, t := range s.data {
		set[t.Period] = struct{}{}
	}

	periods := make([]int, 0, len(set))
	for p := range set {
		periods = append(periods, p)
	}
	sort.Ints(periods)
	return periods, nil
}

// Len returns the number of stored transactions.
func (s *TransactionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *TransactionStore) collect(keep func(*domain.Transaction) bool) []*domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Transaction, 0, len(s.order))
	for _, id := range s.order {
		if t := s.data[id]; keep(t) {
			result = append(result, t.Clone())
		}
	}
	return result
}

var _ storage.TransactionStore = (*TransactionStore)(nil)
