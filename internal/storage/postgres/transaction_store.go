package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/storage"
)

// TransactionStore implements storage.TransactionStore using PostgreSQL.
type TransactionStore struct {
	pool *Pool
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(pool *Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

// transactionRow is the scan target for ad_transactions.
type transactionRow struct {
	TxID              string          `db:"tx_id"`
	Period            int             `db:"period"`
	Department        string          `db:"department"`
	Country           string          `db:"country"`
	AdType            string          `db:"ad_type"`
	Amount            decimal.Decimal `db:"amount"`
	BusinessAttribute string          `db:"business_attribute"`
	SalespersonID     string          `db:"salesperson_id"`
}

func (r *transactionRow) toDomain() *domain.Transaction {
	return &domain.Transaction{
		TxID:              r.TxID,
		Period:            r.Period,
		Department:        r.Department,
		Country:           r.Country,
		AdType:            domain.AdType(r.AdType),
		Amount:            r.Amount,
		BusinessAttribute: r.BusinessAttribute,
		SalespersonID:     r.SalespersonID,
	}
}

const selectColumns = `
	SELECT tx_id, period, department, country, ad_type, amount,
		business_attribute, salesperson_id
	FROM ad_transactions
`

// InsertBulk adds multiple transactions atomically. Fails entire batch on any duplicate.
func (s *TransactionStore) InsertBulk(ctx context.Context, txs []*domain.Transaction) (err error) {
	if len(txs) == 0 {
		return nil
	}
	for _, t := range txs {
		if t == nil || t.TxID == "" {
			return storage.ErrInvalidInput
		}
	}

	start := time.Now()
	defer func() { observe("insert_bulk", start, err) }()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO ad_transactions (
			tx_id, period, department, country, ad_type, amount,
			business_attribute, salesperson_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	// seq is a BIGSERIAL, so rows take ledger positions in slice order.
	for _, t := range txs {
		_, err := tx.Exec(ctx, query,
			t.TxID, t.Period, t.Department, t.Country, string(t.AdType), t.Amount,
			t.BusinessAttribute, t.SalespersonID,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert transaction in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID. Returns ErrNotFound if not exists.
func (s *TransactionStore) GetByID(ctx context.Context, txID string) (*domain.Transaction, error) {
	start := time.Now()

	var row transactionRow
	err := pgxscan.Get(ctx, s.pool, &row, selectColumns+` WHERE tx_id = $1`, txID)
	if err != nil {
		if pgxscan.NotFound(err) || isNotFoundError(err) {
			observe("get_by_id", start, nil)
			return nil, storage.ErrNotFound
		}
		observe("get_by_id", start, err)
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	observe("get_by_id", start, nil)
	return row.toDomain(), nil
}

// GetAll retrieves every transaction in ledger order (seq ASC).
func (s *TransactionStore) GetAll(ctx context.Context) ([]*domain.Transaction, error) {
	return s.selectMany(ctx, "get_all", selectColumns+` ORDER BY seq ASC`)
}

// GetByPeriod retrieves transactions of one accounting period in ledger order.
func (s *TransactionStore) GetByPeriod(ctx context.Context, period int) ([]*domain.Transaction, error) {
	return s.selectMany(ctx, "get_by_period", selectColumns+` WHERE period = $1 ORDER BY seq ASC`, period)
}

// Periods returns the distinct periods present, ascending.
func (s *TransactionStore) Periods(ctx context.Context) ([]int, error) {
	start := time.Now()

	var periods []int
	err := pgxscan.Select(ctx, s.pool, &periods, `SELECT DISTINCT period FROM ad_transactions ORDER BY period ASC`)
	observe("periods", start, err)
	if err != nil {
		return nil, fmt.Errorf("select periods: %w", err)
	}
	return periods, nil
}

func (s *TransactionStore) selectMany(ctx context.Context, operation, query string, args ...interface{}) ([]*domain.Transaction, error) {
	start := time.Now()

	var rows []*transactionRow
	err := pgxscan.Select(ctx, s.pool, &rows, query, args...)
	observe(operation, start, err)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}

	txs := make([]*domain.Transaction, len(rows))
	for i, r := range rows {
		txs[i] = r.toDomain()
	}
	return txs, nil
}
