// Package sheets mirrors stored transactions into a Google spreadsheet, one
// sheet per account. The mirror only appends.
package sheets

import (
	"context"
	"strings"

	"fjacquet/fintrack/internal/currencyutils"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
)

// DefaultRowLimit is the row count past which an account spills into a second sheet.
const DefaultRowLimit = 10000

// SyncResult reports what happened to one account.
type SyncResult struct {
	Account  string
	Sheet    string
	Appended int
	Skipped  int
}

// Mirror pushes transactions to a Service.
type Mirror struct {
	svc      Service
	rowLimit int
	logger   logging.Logger
	ids      map[string]int64
}

// NewMirror creates a mirror. A non-positive rowLimit uses DefaultRowLimit.
func NewMirror(svc Service, rowLimit int, logger logging.Logger) *Mirror {
	if rowLimit <= 0 {
		rowLimit = DefaultRowLimit
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Mirror{svc: svc, rowLimit: rowLimit, logger: logger}
}

// SheetName returns the sheet title used for an account.
func SheetName(accountNumber string) string {
	return "Account_" + strings.ReplaceAll(accountNumber, " ", "_")
}

// Sync mirrors txs grouped by account, in order of first appearance.
func (m *Mirror) Sync(ctx context.Context, txs []models.Transaction) ([]SyncResult, error) {
	var order []string
	groups := make(map[string][]models.MirrorRow)
	for _, tx := range txs {
		row := models.NewMirrorRow(tx)
		if _, ok := groups[row.Account]; !ok {
			order = append(order, row.Account)
		}
		groups[row.Account] = append(groups[row.Account], row)
	}

	results := make([]SyncResult, 0, len(order))
	for _, account := range order {
		res, err := m.SyncAccount(ctx, account, groups[account])
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// SyncAccount appends the rows of one account that the sheet does not hold yet.
func (m *Mirror) SyncAccount(ctx context.Context, accountNumber string, rows []models.MirrorRow) (SyncResult, error) {
	name := SheetName(accountNumber)
	res := SyncResult{Account: accountNumber, Sheet: name}

	if err := m.ensureSheet(ctx, name); err != nil {
		return res, err
	}
	seen := make(map[string]struct{})
	if err := m.collectKeys(ctx, name, seen); err != nil {
		return res, err
	}
	count, err := m.svc.RowCount(ctx, name)
	if err != nil {
		return res, err
	}
	if count > m.rowLimit {
		// Rows already in the full sheet must not be repeated in the overflow one.
		name += "_2"
		res.Sheet = name
		if err := m.ensureSheet(ctx, name); err != nil {
			return res, err
		}
		if err := m.collectKeys(ctx, name, seen); err != nil {
			return res, err
		}
	}

	var pending [][]interface{}
	for _, row := range rows {
		key := row.Key()
		if _, ok := seen[key]; ok {
			res.Skipped++
			continue
		}
		seen[key] = struct{}{}
		pending = append(pending, row.SheetValues())
	}

	if len(pending) == 0 {
		m.logger.Info("No new rows to mirror", logging.F(logging.FieldSheet, name))
		return res, nil
	}
	if err := m.svc.AppendRows(ctx, name, pending); err != nil {
		return res, err
	}
	res.Appended = len(pending)
	m.logger.Info("Mirrored rows",
		logging.F(logging.FieldSheet, name),
		logging.F(logging.FieldAccount, accountNumber),
		logging.F(logging.FieldCount, res.Appended))
	return res, nil
}

// collectKeys adds the key of every data row of sheet name to seen.
func (m *Mirror) collectKeys(ctx context.Context, name string, seen map[string]struct{}) error {
	existing, err := m.svc.ReadRows(ctx, name)
	if err != nil {
		return err
	}
	for _, r := range existing {
		if len(r) >= 3 {
			seen[sheetKey(r[0], r[1], r[2])] = struct{}{}
		}
	}
	return nil
}

func (m *Mirror) ensureSheet(ctx context.Context, name string) error {
	if m.ids == nil {
		ids, err := m.svc.SheetIDs(ctx)
		if err != nil {
			return err
		}
		m.ids = ids
	}
	if _, ok := m.ids[name]; ok {
		return nil
	}

	id, err := m.svc.AddSheet(ctx, name)
	if err != nil {
		return err
	}
	m.ids[name] = id
	if err := m.svc.WriteHeader(ctx, name, id, models.MirrorHeader); err != nil {
		return err
	}
	m.logger.Info("Created sheet", logging.F(logging.FieldSheet, name))
	return nil
}

// sheetKey builds the MirrorRow key of a row read back from the sheet. The
// sheet may render -4.5 for -4.50, so amounts compare as decimals.
func sheetKey(date, description, amount string) string {
	return date + "|" + strings.TrimSpace(description) + "|" + currencyutils.NormalizeAmount(amount)
}
