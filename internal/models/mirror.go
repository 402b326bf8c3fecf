package models

import "github.com/shopspring/decimal"

// MirrorHeader is the column layout of the spreadsheet mirror.
var MirrorHeader = []string{"Date", "Description", "Amount", "Balance", "Category", "Subcategory"}

// MirrorRow is one transaction as shown to humans in the spreadsheet or CSV mirror.
type MirrorRow struct {
	Account     string `csv:"Account"`
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Balance     string `csv:"Balance"`
	Category    string `csv:"Category"`
	Subcategory string `csv:"Subcategory"`
}

// NewMirrorRow flattens a stored transaction.
func NewMirrorRow(tx Transaction) MirrorRow {
	label := tx.Label
	if label.Category == "" {
		label = UncategorizedLabel
	}
	return MirrorRow{
		Account:     tx.AccountNumber,
		Date:        tx.Date.Format("2006-01-02"),
		Description: tx.Description,
		Amount:      tx.Amount.StringFixed(2),
		Balance:     formatBalance(tx.Balance),
		Category:    label.Category,
		Subcategory: label.Subcategory,
	}
}

func formatBalance(b *decimal.Decimal) string {
	if b == nil {
		return ""
	}
	return b.StringFixed(2)
}

// SheetValues returns the row in MirrorHeader column order.
func (r MirrorRow) SheetValues() []interface{} {
	return []interface{}{r.Date, r.Description, r.Amount, r.Balance, r.Category, r.Subcategory}
}

// Key identifies a mirrored row for append-only deduplication.
func (r MirrorRow) Key() string {
	return r.Date + "|" + r.Description + "|" + r.Amount
}
