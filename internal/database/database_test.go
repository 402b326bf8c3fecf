package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/parsererror"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "fintrack.db"), logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testForest() models.CategoryForest {
	return models.CategoryForest{Roots: []models.CategoryNode{
		{Name: "Food", Children: []models.CategoryNode{
			{Name: "Groceries", Keywords: []string{"walmart"}},
			{Name: "Coffee", Keywords: []string{"coffee"}},
		}},
		{Name: "Transfers", Keywords: []string{"e-transfer"}},
	}}
}

func newTx(accountID models.AccountID, desc, amount, fp string) *models.Transaction {
	balance := decimal.RequireFromString("100.00")
	return &models.Transaction{
		AccountID:   accountID,
		Date:        time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Balance:     &balance,
		Fingerprint: models.Fingerprint(fp),
	}
}

func TestUpsertAccount(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.UpsertAccount(ctx, models.Account{Number: "01-23456", Name: "CIBC Chequing Account", Type: models.AccountChequing})
	require.NoError(t, err)
	assert.NotZero(t, id)

	require.NoError(t, db.RenameAccount(ctx, "01-23456", "Daily"))

	again, err := db.UpsertAccount(ctx, models.Account{Number: "01-23456", Name: "CIBC Chequing Account", Type: models.AccountChequing})
	require.NoError(t, err)
	assert.Equal(t, id, again)

	accounts, err := db.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Daily", accounts[0].Name)
	assert.Equal(t, models.AccountChequing, accounts[0].Type)
}

func TestRenameAccount_NotFound(t *testing.T) {
	db := setupTestDB(t)
	err := db.RenameAccount(context.Background(), "99-99999", "x")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestInsertTransaction_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	accID, err := db.UpsertAccount(ctx, models.Account{Number: "01-23456", Type: models.AccountChequing})
	require.NoError(t, err)

	tx := newTx(accID, "COFFEE SHOP", "-4.50", "fp-1")
	require.NoError(t, db.InsertTransaction(ctx, tx))
	assert.NotZero(t, tx.ID)

	dup := newTx(accID, "COFFEE SHOP changed", "-9.99", "fp-1")
	err = db.InsertTransaction(ctx, dup)
	assert.ErrorIs(t, err, parsererror.ErrDuplicateTransaction)

	txs, err := db.ListTransactions(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "COFFEE SHOP", txs[0].Description)
	assert.True(t, decimal.RequireFromString("-4.50").Equal(txs[0].Amount))
	require.NotNil(t, txs[0].Balance)
	assert.True(t, decimal.RequireFromString("100").Equal(*txs[0].Balance))
	assert.Equal(t, "01-23456", txs[0].AccountNumber)
	assert.Equal(t, models.UncategorizedLabel, txs[0].Label)

	fps, err := db.ExistingFingerprints(ctx, accID)
	require.NoError(t, err)
	assert.Contains(t, fps, models.Fingerprint("fp-1"))

	other, err := db.ExistingFingerprints(ctx, accID+1)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSyncCategoriesAndLabels(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	forest, err := db.SyncCategories(ctx, testForest())
	require.NoError(t, err)
	require.Len(t, forest.Roots, 2)
	assert.Equal(t, "Food", forest.Roots[0].Name)
	assert.Equal(t, []string{"walmart"}, forest.Roots[0].Children[0].Keywords)
	groceries := forest.Roots[0].Children[0].ID

	accID, err := db.UpsertAccount(ctx, models.Account{Number: "01-23456", Type: models.AccountChequing})
	require.NoError(t, err)
	tx := newTx(accID, "WALMART", "-20.00", "fp-w")
	tx.CategoryID = &groceries
	require.NoError(t, db.InsertTransaction(ctx, tx))

	txs, err := db.ListTransactions(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.CategoryLabel{Category: "Food", Subcategory: "Groceries"}, txs[0].Label)

	// Resync with Groceries removed and Coffee keywords changed: ids stay stable.
	changed := testForest()
	changed.Roots[0].Children = []models.CategoryNode{{Name: "Coffee", Keywords: []string{"tim hortons"}}}
	forest2, err := db.SyncCategories(ctx, changed)
	require.NoError(t, err)

	node, ok := forest2.Find(models.CategoryLabel{Category: "Food", Subcategory: "Coffee"})
	require.True(t, ok)
	assert.Equal(t, []string{"tim hortons"}, node.Keywords)
	assert.Equal(t, forest.Roots[0].Children[1].ID, node.ID)

	retired, ok := forest2.Find(models.CategoryLabel{Category: "Food", Subcategory: "Groceries"})
	require.True(t, ok)
	assert.Equal(t, groceries, retired.ID)
	assert.Empty(t, retired.Keywords)

	txs, err = db.ListTransactions(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", txs[0].Label.Subcategory)
}

func TestSyncCategories_Invalid(t *testing.T) {
	db := setupTestDB(t)
	bad := models.CategoryForest{Roots: []models.CategoryNode{{Name: "A"}, {Name: "a"}}}
	_, err := db.SyncCategories(context.Background(), bad)
	var vErr *parsererror.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestUpdateTransactionCategory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	forest, err := db.SyncCategories(ctx, testForest())
	require.NoError(t, err)
	coffee := forest.Roots[0].Children[1].ID

	accID, err := db.UpsertAccount(ctx, models.Account{Number: "01-23456", Type: models.AccountChequing})
	require.NoError(t, err)
	a := newTx(accID, "COFFEE", "-4.50", "fp-a")
	b := newTx(accID, "UNKNOWN", "-1.00", "fp-b")
	require.NoError(t, db.InsertTransaction(ctx, a))
	require.NoError(t, db.InsertTransaction(ctx, b))

	n, err := db.UncategorizedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, db.UpdateTransactionCategory(ctx, a.ID, &coffee))

	n, err = db.UncategorizedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	uncategorized, err := db.ListTransactions(ctx, models.TransactionFilter{Uncategorized: true})
	require.NoError(t, err)
	require.Len(t, uncategorized, 1)
	assert.Equal(t, "UNKNOWN", uncategorized[0].Description)

	require.NoError(t, db.UpdateTransactionCategory(ctx, a.ID, nil))
	n, err = db.UncategorizedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	err = db.UpdateTransactionCategory(ctx, 999, &coffee)
	var sErr *parsererror.StoreError
	assert.True(t, errors.As(err, &sErr))
}

func TestRecordRun(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	started := time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC)

	stats := models.RunStats{RunID: "11111111-1111-1111-1111-111111111111", TransactionsInserted: 3, TransactionsSkipped: 1}
	stats.RecordFailure("bad.pdf", errors.New("unsupported"))
	require.NoError(t, db.RecordRun(ctx, stats, started, started.Add(time.Second), models.RunStatusCompleted))

	later := models.RunStats{RunID: "22222222-2222-2222-2222-222222222222"}
	require.NoError(t, db.RecordRun(ctx, later, started.Add(time.Hour), started.Add(time.Hour), models.RunStatusAborted))

	runs, err := db.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, later.RunID, runs[0].ID)
	assert.Equal(t, models.RunStatusAborted, runs[0].Status)
	assert.Equal(t, 3, runs[1].Inserted)
	assert.Equal(t, 1, runs[1].Failed)
	assert.Equal(t, []string{"bad.pdf: unsupported"}, runs[1].Failures)
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Ping(context.Background()))
	require.NoError(t, db.Close())

	err := db.Ping(context.Background())
	var sErr *parsererror.StoreError
	assert.True(t, errors.As(err, &sErr))
}
