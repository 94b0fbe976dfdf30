package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/expense-queue/internal/model"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := Open(context.Background(), MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func insertItem(t *testing.T, store *SQLiteStorage, date, amount, merchant string) int {
	t.Helper()
	id, err := store.InsertRawExpense(context.Background(), NewItem{
		TransactionDate: date,
		Amount:          decimal.RequireFromString(amount),
		RawMerchantName: merchant,
		RawDescription:  "card payment",
		Source:          "xlsx_import",
	})
	require.NoError(t, err)
	return id
}

func createCategory(t *testing.T, store *SQLiteStorage, name string, typ model.CategoryType) model.Category {
	t.Helper()
	c, err := store.CreateCategory(context.Background(), model.CategoryInput{Name: name, CategoryType: typ})
	require.NoError(t, err)
	return c
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "nested", "xq.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(ctx))
	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Re-running is a no-op.
	require.NoError(t, store.Migrate(ctx))
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage(" ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestValidateContext(t *testing.T) {
	store := createTestStorage(t)
	//nolint:staticcheck // nil context is the case under test
	_, err := store.QueueCount(nil)
	assert.ErrorIs(t, err, ErrNilContext)
}
