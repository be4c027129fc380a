package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/storage"
)

// TransactionStore implements storage.TransactionStore using ClickHouse.
type TransactionStore struct {
	conn *Conn
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(conn *Conn) *TransactionStore {
	return &TransactionStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

const selectColumns = `
	SELECT tx_id, period, department, country, ad_type, amount,
		business_attribute, salesperson_id
	FROM ad_transactions FINAL
`

// InsertBulk adds multiple transactions. Fails entire batch on duplicate tx_id.
func (s *TransactionStore) InsertBulk(ctx context.Context, txs []*domain.Transaction) (err error) {
	if len(txs) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{}, len(txs))
	periods := make(map[int]struct{})
	for _, t := range txs {
		if t == nil || t.TxID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[t.TxID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[t.TxID] = struct{}{}
		periods[t.Period] = struct{}{}
	}

	start := time.Now()
	defer func() { observe("insert_bulk", start, err) }()

	// Check for duplicates against existing rows, one query per period touched
	for period := range periods {
		existing, err := s.idsInPeriod(ctx, period)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		for _, id := range existing {
			if _, dup := seen[id]; dup {
				return storage.ErrDuplicateKey
			}
		}
	}

	next, err := s.nextSeq(ctx)
	if err != nil {
		return fmt.Errorf("next seq: %w", err)
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO ad_transactions (
			tx_id, period, department, country, ad_type, amount,
			business_attribute, salesperson_id, seq
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for i, t := range txs {
		err = batch.Append(
			t.TxID, uint32(t.Period), t.Department, t.Country, string(t.AdType),
			t.Amount, t.BusinessAttribute, t.SalespersonID, next+uint64(i),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID. Returns ErrNotFound if not exists.
func (s *TransactionStore) GetByID(ctx context.Context, txID string) (*domain.Transaction, error) {
	txs, err := s.query(ctx, "get_by_id", selectColumns+` WHERE tx_id = ? LIMIT 1`, txID)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, storage.ErrNotFound
	}
	return txs[0], nil
}

// GetAll retrieves every transaction in ledger order (seq ASC).
func (s *TransactionStore) GetAll(ctx context.Context) ([]*domain.Transaction, error) {
	return s.query(ctx, "get_all", selectColumns+` ORDER BY seq ASC, tx_id ASC`)
}

// GetByPeriod retrieves transactions of one accounting period in ledger order.
func (s *TransactionStore) GetByPeriod(ctx context.Context, period int) ([]*domain.Transaction, error) {
	return s.query(ctx, "get_by_period", selectColumns+` WHERE period = ? ORDER BY seq ASC, tx_id ASC`, uint32(period))
}

// Periods returns the distinct periods present, ascending.
func (s *TransactionStore) Periods(ctx context.Context) ([]int, error) {
	start := time.Now()

	rows, err := s.conn.Query(ctx, `SELECT DISTINCT period FROM ad_transactions ORDER BY period ASC`)
	if err != nil {
		observe("periods", start, err)
		return nil, fmt.Errorf("query periods: %w", err)
	}
	defer rows.Close()

	var periods []int
	for rows.Next() {
		var p uint32
		if err := rows.Scan(&p); err != nil {
			observe("periods", start, err)
			return nil, fmt.Errorf("scan period: %w", err)
		}
		periods = append(periods, int(p))
	}
	err = rows.Err()
	observe("periods", start, err)
	if err != nil {
		return nil, fmt.Errorf("iterate period rows: %w", err)
	}
	return periods, nil
}

// nextSeq returns the first unused ledger position. Writers are expected
// to be serialized; concurrent ingests may share positions.
func (s *TransactionStore) nextSeq(ctx context.Context) (uint64, error) {
	rows, err := s.conn.Query(ctx, `SELECT max(seq) FROM ad_transactions`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var last uint64
	if rows.Next() {
		if err := rows.Scan(&last); err != nil {
			return 0, err
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return last + 1, nil
}

func (s *TransactionStore) idsInPeriod(ctx context.Context, period int) ([]string, error) {
	rows, err := s.conn.Query(ctx, `SELECT tx_id FROM ad_transactions WHERE period = ?`, uint32(period))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *TransactionStore) query(ctx context.Context, operation, query string, args ...interface{}) ([]*domain.Transaction, error) {
	start := time.Now()

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		observe(operation, start, err)
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txs, err := scanTransactions(rows)
	observe(operation, start, err)
	return txs, err
}

// chRows is the subset of driver.Rows used by scan helpers.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanTransactions scans multiple rows.
func scanTransactions(rows chRows) ([]*domain.Transaction, error) {
	txs := make([]*domain.Transaction, 0)

	for rows.Next() {
		var t domain.Transaction
		var period uint32
		var adType string
		var amount decimal.Decimal

		err := rows.Scan(
			&t.TxID, &period, &t.Department, &t.Country, &adType,
			&amount, &t.BusinessAttribute, &t.SalespersonID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}

		t.Period = int(period)
		t.AdType = domain.AdType(adType)
		t.Amount = amount
		txs = append(txs, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return txs, nil
}
