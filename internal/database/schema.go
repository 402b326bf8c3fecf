package database

import (
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/fintrack/internal/models"
)

type accountRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Number    string `gorm:"uniqueIndex;not null"`
	Name      string
	Type      string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (accountRecord) TableName() string { return "accounts" }

func (r accountRecord) toModel() models.Account {
	return models.Account{
		ID:     models.AccountID(r.ID),
		Number: r.Number,
		Name:   r.Name,
		Type:   models.AccountType(r.Type),
	}
}

type categoryRecord struct {
	ID        uint     `gorm:"primaryKey"`
	Name      string   `gorm:"not null;index:idx_category_name_parent"`
	ParentID  *uint    `gorm:"index:idx_category_name_parent"`
	Keywords  []string `gorm:"serializer:json"`
	Position  int      `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (categoryRecord) TableName() string { return "categories" }

func (r categoryRecord) toModel() models.Category {
	c := models.Category{
		ID:       models.CategoryID(r.ID),
		Name:     r.Name,
		Keywords: r.Keywords,
		Position: r.Position,
	}
	if r.ParentID != nil {
		parent := models.CategoryID(*r.ParentID)
		c.ParentID = &parent
	}
	return c
}

type transactionRecord struct {
	ID          uint                `gorm:"primaryKey"`
	AccountID   uint                `gorm:"not null;index"`
	Date        time.Time           `gorm:"not null;index"`
	Description string              `gorm:"not null"`
	Amount      decimal.Decimal     `gorm:"type:text;not null"`
	Balance     decimal.NullDecimal `gorm:"type:text"`
	CategoryID  *uint               `gorm:"index"`
	Fingerprint string              `gorm:"size:64;uniqueIndex;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Account accountRecord `gorm:"foreignKey:AccountID"`
}

func (transactionRecord) TableName() string { return "transactions" }

func newTransactionRecord(tx models.Transaction) transactionRecord {
	r := transactionRecord{
		AccountID:   uint(tx.AccountID),
		Date:        tx.Date.UTC(),
		Description: tx.Description,
		Amount:      tx.Amount,
		Fingerprint: string(tx.Fingerprint),
	}
	if tx.Balance != nil {
		r.Balance = decimal.NewNullDecimal(*tx.Balance)
	}
	if tx.CategoryID != nil {
		id := uint(*tx.CategoryID)
		r.CategoryID = &id
	}
	return r
}

func (r transactionRecord) toModel(forest models.CategoryForest) models.Transaction {
	tx := models.Transaction{
		ID:            models.TransactionID(r.ID),
		AccountID:     models.AccountID(r.AccountID),
		AccountNumber: r.Account.Number,
		Date:          r.Date.UTC(),
		Description:   r.Description,
		Amount:        r.Amount,
		Fingerprint:   models.Fingerprint(r.Fingerprint),
		Label:         models.UncategorizedLabel,
	}
	if r.Balance.Valid {
		b := r.Balance.Decimal
		tx.Balance = &b
	}
	if r.CategoryID != nil {
		id := models.CategoryID(*r.CategoryID)
		tx.CategoryID = &id
		if label, ok := forest.LabelFor(id); ok {
			tx.Label = label
		}
	}
	return tx
}

type importRunRecord struct {
	ID                        string    `gorm:"primaryKey;size:36"`
	StartedAt                 time.Time `gorm:"not null"`
	FinishedAt                time.Time
	Status                    string `gorm:"not null"`
	DocumentsProcessed        int
	DocumentsFailed           int
	TransactionsParsed        int
	TransactionsInserted      int
	TransactionsSkipped       int
	TransactionsUncategorized int
	AmbiguousMatches          int
	Failures                  []string `gorm:"serializer:json"`
}

func (importRunRecord) TableName() string { return "import_runs" }

var allModels = []interface{}{
	&accountRecord{},
	&categoryRecord{},
	&transactionRecord{},
	&importRunRecord{},
}
