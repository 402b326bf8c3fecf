package sync

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/sheets"
)

type fakeStore struct {
	accounts []models.Account
	txs      []models.Transaction
	filters  []models.TransactionFilter
}

func (f *fakeStore) ListAccounts(context.Context) ([]models.Account, error) {
	return f.accounts, nil
}

func (f *fakeStore) ListTransactions(_ context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	f.filters = append(f.filters, filter)
	if filter.AccountID == nil {
		return f.txs, nil
	}
	var out []models.Transaction
	for _, tx := range f.txs {
		if tx.AccountID == *filter.AccountID {
			out = append(out, tx)
		}
	}
	return out, nil
}

// memoryService is an in-memory sheets.Service.
type memoryService struct {
	rows map[string][][]interface{}
}

func (m *memoryService) SheetIDs(context.Context) (map[string]int64, error) {
	ids := map[string]int64{}
	for title := range m.rows {
		ids[title] = int64(len(ids))
	}
	return ids, nil
}

func (m *memoryService) AddSheet(_ context.Context, title string) (int64, error) {
	m.rows[title] = nil
	return int64(len(m.rows)), nil
}

func (m *memoryService) WriteHeader(_ context.Context, title string, _ int64, header []string) error {
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	m.rows[title] = append(m.rows[title], row)
	return nil
}

func (m *memoryService) RowCount(_ context.Context, title string) (int, error) {
	return len(m.rows[title]), nil
}

func (m *memoryService) ReadRows(_ context.Context, title string) ([][]string, error) {
	var out [][]string
	for i, r := range m.rows[title] {
		if i == 0 {
			continue
		}
		row := make([]string, len(r))
		for j, v := range r {
			row[j] = v.(string)
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *memoryService) AppendRows(_ context.Context, title string, rows [][]interface{}) error {
	m.rows[title] = append(m.rows[title], rows...)
	return nil
}

func ledger() *fakeStore {
	tx := func(acc models.AccountID, number, desc string) models.Transaction {
		return models.Transaction{
			AccountID:     acc,
			AccountNumber: number,
			Date:          time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
			Description:   desc,
			Amount:        decimal.RequireFromString("-1.00"),
		}
	}
	return &fakeStore{
		accounts: []models.Account{{ID: 1, Number: "01-23456"}, {ID: 2, Number: "4505XXXXXXXX7008"}},
		txs: []models.Transaction{
			tx(1, "01-23456", "COFFEE"),
			tx(1, "01-23456", "PARKING"),
			tx(2, "4505XXXXXXXX7008", "AMAZON"),
		},
	}
}

func TestRun_AllAccounts(t *testing.T) {
	svc := &memoryService{rows: map[string][][]interface{}{}}
	mirror := sheets.NewMirror(svc, 0, logging.NewMockLogger())

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), ledger(), mirror, &out, ""))
	assert.Regexp(t, `01-23456\s+Account_01-23456\s+appended 2\s+skipped 0`, out.String())
	assert.Len(t, svc.rows["Account_4505XXXXXXXX7008"], 2)

	out.Reset()
	require.NoError(t, run(context.Background(), ledger(), mirror, &out, ""))
	assert.Regexp(t, `appended 0\s+skipped 2`, out.String())
}

func TestRun_SingleAccount(t *testing.T) {
	svc := &memoryService{rows: map[string][][]interface{}{}}
	store := ledger()

	require.NoError(t, run(context.Background(), store, sheets.NewMirror(svc, 0, nil), &bytes.Buffer{}, "4505XXXXXXXX7008"))
	assert.NotContains(t, svc.rows, "Account_01-23456")
	require.NotNil(t, store.filters[0].AccountID)
	assert.Equal(t, models.AccountID(2), *store.filters[0].AccountID)

	assert.ErrorContains(t, run(context.Background(), store, sheets.NewMirror(svc, 0, nil), &bytes.Buffer{}, "00-00000"), "unknown account")
}

type failingSyncer struct{}

func (failingSyncer) Sync(context.Context, []models.Transaction) ([]sheets.SyncResult, error) {
	return nil, errors.New("permission denied")
}

func TestRun_Errors(t *testing.T) {
	assert.ErrorContains(t, run(context.Background(), ledger(), failingSyncer{}, &bytes.Buffer{}, ""), "permission denied")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &fakeStore{}, failingSyncer{}, &out, ""))
	assert.Contains(t, out.String(), "Nothing to sync")
}
