package storage

import (
	"context"

	"ad-revenue-lab/internal/domain"
)

// TransactionStore provides access to ad_transactions storage.
// Stores are snapshot sources: rows are appended by ingest and read back
// whole; nothing updates a stored row.
type TransactionStore interface {
	// InsertBulk adds multiple transactions atomically. Fails entire batch on any duplicate tx_id.
	InsertBulk(ctx context.Context, txs []*domain.Transaction) error

	// GetByID retrieves a transaction by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, txID string) (*domain.Transaction, error)

	// GetAll retrieves every transaction in ledger order: the order rows
	// were inserted, batch by batch.
	GetAll(ctx context.Context) ([]*domain.Transaction, error)

	// GetByPeriod retrieves transactions of one accounting period in ledger order.
	GetByPeriod(ctx context.Context, period int) ([]*domain.Transaction, error)

	// Periods returns the distinct periods present, ascending.
	Periods(ctx context.Context) ([]int, error)
}
