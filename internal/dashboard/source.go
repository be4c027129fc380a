package dashboard

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/fixtures"
	"ad-revenue-lab/internal/ledger"
	"ad-revenue-lab/internal/observability"
	"ad-revenue-lab/internal/storage"
)

// Source yields the full ledger for a snapshot.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]*domain.Transaction, error)
}

// CSVSource reads a finance ledger export from disk.
type CSVSource struct {
	Path    string
	Options ledger.Options
}

// Name returns "csv".
func (s *CSVSource) Name() string { return "csv" }

// Load parses the file. Skipped rows are logged, not returned.
func (s *CSVSource) Load(_ context.Context) ([]*domain.Transaction, error) {
	res, err := ledger.LoadFile(s.Path, s.Options)
	if err != nil {
		return nil, err
	}

	for _, rowErr := range res.Skipped {
		log.Warn().Str("path", s.Path).Int("line", rowErr.Line).Str("column", rowErr.Column).
			Str("reason", rowErr.Reason).Msg("skipped invalid ledger row")
	}
	if res.CoercedAmount > 0 {
		log.Warn().Str("path", s.Path).Int("rows", res.CoercedAmount).Msg("unreadable amounts set to zero")
	}

	observability.RecordIngest(s.Name(), len(res.Transactions), len(res.Skipped))
	return res.Transactions, nil
}

// SampleSource generates the deterministic simulated ledger.
type SampleSource struct {
	Options fixtures.Options
}

// Name returns "sample".
func (s *SampleSource) Name() string { return "sample" }

// Load generates the ledger.
func (s *SampleSource) Load(_ context.Context) ([]*domain.Transaction, error) {
	txs := fixtures.Generate(s.Options)
	observability.RecordIngest(s.Name(), len(txs), 0)
	return txs, nil
}

// StoreSource reads every row from a transaction store.
type StoreSource struct {
	name  string
	store storage.TransactionStore
}

// NewStoreSource wraps store under name, e.g. "postgres".
func NewStoreSource(name string, store storage.TransactionStore) *StoreSource {
	return &StoreSource{name: name, store: store}
}

// Name returns the name given at construction.
func (s *StoreSource) Name() string { return s.name }

// Load returns all stored transactions.
func (s *StoreSource) Load(ctx context.Context) ([]*domain.Transaction, error) {
	txs, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s store: %w", s.name, err)
	}
	return txs, nil
}
