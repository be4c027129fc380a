package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/storage"
)

func makeTransaction(id string, period int, dept, country string, amount string) *domain.Transaction {
	return &domain.Transaction{
		TxID:              id,
		Period:            period,
		Department:        dept,
		Country:           country,
		AdType:            domain.AdTypeCore,
		Amount:            decimal.RequireFromString(amount),
		BusinessAttribute: "外卖BD",
		SalespersonID:     "s-" + id,
	}
}

func TestTransactionStore_InsertAndRead(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTransactionStore(pool)

	txs := []*domain.Transaction{
		makeTransaction("b", 202509, "US", "US", "10.50"),
		makeTransaction("a", 202509, domain.DepartmentAD, "JP", "3.25"),
		makeTransaction("c", 202508, "UK", "UK", "7.00"),
	}
	require.NoError(t, store.InsertBulk(ctx, txs))

	got, err := store.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.DepartmentAD, got.Department)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("3.25")))
	assert.Equal(t, domain.AdTypeCore, got.AdType)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"b", "a", "c"}, txIDs(all))

	byPeriod, err := store.GetByPeriod(ctx, 202509)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, txIDs(byPeriod))

	periods, err := store.Periods(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{202508, 202509}, periods)
}

func TestTransactionStore_LedgerOrderAcrossBatches(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTransactionStore(pool)

	require.NoError(t, store.InsertBulk(ctx, []*domain.Transaction{
		makeTransaction("z", 202509, "US", "US", "1.00"),
		makeTransaction("m", 202509, "UK", "UK", "2.00"),
	}))
	require.NoError(t, store.InsertBulk(ctx, []*domain.Transaction{
		makeTransaction("a", 202509, "JP", "JP", "3.00"),
	}))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "m", "a"}, txIDs(all))
}

func txIDs(txs []*domain.Transaction) []string {
	ids := make([]string, len(txs))
	for i, t := range txs {
		ids[i] = t.TxID
	}
	return ids
}

func TestTransactionStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransactionStore(pool)
	_, err := store.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestTransactionStore_DuplicateRollsBackBatch(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTransactionStore(pool)

	require.NoError(t, store.InsertBulk(ctx, []*domain.Transaction{
		makeTransaction("a", 202509, "US", "US", "1.00"),
	}))

	err := store.InsertBulk(ctx, []*domain.Transaction{
		makeTransaction("b", 202509, "US", "US", "2.00"),
		makeTransaction("a", 202509, "US", "US", "3.00"),
	})
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Amount.Equal(decimal.RequireFromString("1.00")))
}

func TestTransactionStore_EmptyBatch(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransactionStore(pool)
	assert.NoError(t, store.InsertBulk(context.Background(), nil))

	periods, err := store.Periods(context.Background())
	require.NoError(t, err)
	assert.Empty(t, periods)
}
