// Package database persists accounts, categories, transactions and import
// runs in SQLite through gorm.
package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/parsererror"
)

// ErrAccountNotFound is returned when an account number is unknown.
var ErrAccountNotFound = errors.New("account not found")

// DB is the transaction store. It is owned by a single run at a time.
type DB struct {
	db     *gorm.DB
	logger logging.Logger
}

// Open opens (creating if needed) the SQLite database at path and migrates
// the schema. ":memory:" opens a private in-memory database.
func Open(path string, logger logging.Logger) (*DB, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
				return nil, &parsererror.StoreError{Op: "open", Err: err}
			}
		}
	}
	return OpenDialector(sqlite.Open(path), logger)
}

// OpenDialector opens the store on an arbitrary gorm dialector.
func OpenDialector(dialector gorm.Dialector, logger logging.Logger) (*DB, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, &parsererror.StoreError{Op: "open", Err: err}
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		return nil, &parsererror.StoreError{Op: "migrate", Err: err}
	}
	return &DB{db: db, logger: logger}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the store is reachable.
func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return &parsererror.StoreError{Op: "ping", Err: err}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return &parsererror.StoreError{Op: "ping", Err: err}
	}
	return nil
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &parsererror.StoreError{Op: op, Err: err}
}

// UpsertAccount returns the id of the account with acc.Number, creating it
// when unseen. An existing display name is never overwritten.
func (d *DB) UpsertAccount(ctx context.Context, acc models.Account) (models.AccountID, error) {
	var rec accountRecord
	err := d.db.WithContext(ctx).Where("number = ?", acc.Number).First(&rec).Error
	switch {
	case err == nil:
		if rec.Name == "" && acc.Name != "" {
			if err := d.db.WithContext(ctx).Model(&rec).Update("name", acc.Name).Error; err != nil {
				return 0, storeErr("upsert account", err)
			}
		}
		return models.AccountID(rec.ID), nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return 0, storeErr("upsert account", err)
	}

	rec = accountRecord{Number: acc.Number, Name: acc.Name, Type: string(acc.Type)}
	if err := d.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return 0, storeErr("upsert account", err)
	}
	d.logger.Info("Registered account",
		logging.F(logging.FieldAccount, acc.Number),
		logging.F(logging.FieldAccountType, string(acc.Type)))
	return models.AccountID(rec.ID), nil
}

// ExistingFingerprints returns the fingerprints stored for an account.
func (d *DB) ExistingFingerprints(ctx context.Context, accountID models.AccountID) (map[models.Fingerprint]struct{}, error) {
	var fps []string
	err := d.db.WithContext(ctx).Model(&transactionRecord{}).
		Where("account_id = ?", uint(accountID)).
		Pluck("fingerprint", &fps).Error
	if err != nil {
		return nil, storeErr("existing fingerprints", err)
	}
	out := make(map[models.Fingerprint]struct{}, len(fps))
	for _, fp := range fps {
		out[models.Fingerprint(fp)] = struct{}{}
	}
	return out, nil
}

// InsertTransaction stores tx and sets its ID. A fingerprint already present
// yields parsererror.ErrDuplicateTransaction and leaves the stored row alone.
func (d *DB) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	rec := newTransactionRecord(*tx)
	res := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "fingerprint"}}, DoNothing: true}).
		Omit("Account").
		Create(&rec)
	if res.Error != nil {
		return storeErr("insert transaction", res.Error)
	}
	if res.RowsAffected == 0 {
		return parsererror.ErrDuplicateTransaction
	}
	tx.ID = models.TransactionID(rec.ID)
	return nil
}

// UpdateTransactionCategory changes only the category of a stored
// transaction. A nil id marks it uncategorized.
func (d *DB) UpdateTransactionCategory(ctx context.Context, id models.TransactionID, categoryID *models.CategoryID) error {
	var value interface{}
	if categoryID != nil {
		value = uint(*categoryID)
	}
	res := d.db.WithContext(ctx).Model(&transactionRecord{}).
		Where("id = ?", uint(id)).
		Update("category_id", value)
	if res.Error != nil {
		return storeErr("update category", res.Error)
	}
	if res.RowsAffected == 0 {
		return storeErr("update category", fmt.Errorf("transaction %d not found", id))
	}
	return nil
}

// LoadCategoryTree returns the stored category forest.
func (d *DB) LoadCategoryTree(ctx context.Context) (models.CategoryForest, error) {
	var recs []categoryRecord
	if err := d.db.WithContext(ctx).Order("position, id").Find(&recs).Error; err != nil {
		return models.CategoryForest{}, storeErr("load categories", err)
	}
	cats := make([]models.Category, 0, len(recs))
	for _, r := range recs {
		cats = append(cats, r.toModel())
	}
	forest, err := models.BuildForest(cats)
	if err != nil {
		return models.CategoryForest{}, storeErr("load categories", err)
	}
	return forest, nil
}

// SyncCategories makes the stored tree match forest. Categories are matched
// by (name, parent); keywords and order are overwritten. Categories missing
// from forest are kept, since transactions may reference them, but lose
// their keywords and move to the end.
func (d *DB) SyncCategories(ctx context.Context, forest models.CategoryForest) (models.CategoryForest, error) {
	if err := forest.Validate(); err != nil {
		return models.CategoryForest{}, &parsererror.ValidationError{Source: "category tree", Reason: err.Error()}
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keep := make(map[uint]bool)
		position := 0
		for _, root := range forest.Roots {
			rootID, err := upsertCategory(tx, root.Name, nil, root.Keywords, position)
			if err != nil {
				return err
			}
			keep[rootID] = true
			position++
			for _, child := range root.Children {
				childID, err := upsertCategory(tx, child.Name, &rootID, child.Keywords, position)
				if err != nil {
					return err
				}
				keep[childID] = true
				position++
			}
		}

		var stale []categoryRecord
		if err := tx.Find(&stale).Error; err != nil {
			return err
		}
		for _, rec := range stale {
			if keep[rec.ID] {
				continue
			}
			rec.Keywords = nil
			rec.Position = position
			position++
			if err := tx.Select("keywords", "position").Save(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.CategoryForest{}, storeErr("sync categories", err)
	}

	d.logger.Info("Synchronized category tree",
		logging.F(logging.FieldCount, forest.Size()))
	return d.LoadCategoryTree(ctx)
}

func upsertCategory(tx *gorm.DB, name string, parentID *uint, keywords []string, position int) (uint, error) {
	var rec categoryRecord
	q := tx.Where("LOWER(name) = ?", strings.ToLower(name))
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}

	err := q.First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = categoryRecord{Name: name, ParentID: parentID, Keywords: keywords, Position: position}
		if err := tx.Create(&rec).Error; err != nil {
			return 0, err
		}
		return rec.ID, nil
	}
	if err != nil {
		return 0, err
	}

	rec.Name = name
	rec.Keywords = keywords
	rec.Position = position
	if err := tx.Select("name", "keywords", "position").Save(&rec).Error; err != nil {
		return 0, err
	}
	return rec.ID, nil
}

// ListTransactions returns stored transactions with their category labels,
// ordered by account, date and insertion.
func (d *DB) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	forest, err := d.LoadCategoryTree(ctx)
	if err != nil {
		return nil, err
	}

	q := d.db.WithContext(ctx).Preload("Account").Order("account_id, date, id")
	if filter.AccountID != nil {
		q = q.Where("account_id = ?", uint(*filter.AccountID))
	}
	if filter.Uncategorized {
		q = q.Where("category_id IS NULL")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var recs []transactionRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, storeErr("list transactions", err)
	}
	out := make([]models.Transaction, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toModel(forest))
	}
	return out, nil
}

// UncategorizedCount returns the number of transactions without a category.
func (d *DB) UncategorizedCount(ctx context.Context) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&transactionRecord{}).Where("category_id IS NULL").Count(&n).Error
	return n, storeErr("count uncategorized", err)
}

// ListAccounts returns all accounts ordered by number.
func (d *DB) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var recs []accountRecord
	if err := d.db.WithContext(ctx).Order("number").Find(&recs).Error; err != nil {
		return nil, storeErr("list accounts", err)
	}
	out := make([]models.Account, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toModel())
	}
	return out, nil
}

// RenameAccount sets the display name of an account.
func (d *DB) RenameAccount(ctx context.Context, number, name string) error {
	res := d.db.WithContext(ctx).Model(&accountRecord{}).Where("number = ?", number).Update("name", name)
	if res.Error != nil {
		return storeErr("rename account", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", number, ErrAccountNotFound)
	}
	return nil
}

// RecordRun stores the outcome of a pipeline run.
func (d *DB) RecordRun(ctx context.Context, stats models.RunStats, started, finished time.Time, status string) error {
	rec := importRunRecord{
		ID:                        stats.RunID,
		StartedAt:                 started.UTC(),
		FinishedAt:                finished.UTC(),
		Status:                    status,
		DocumentsProcessed:        stats.DocumentsProcessed,
		DocumentsFailed:           stats.DocumentsFailed,
		TransactionsParsed:        stats.TransactionsParsed,
		TransactionsInserted:      stats.TransactionsInserted,
		TransactionsSkipped:       stats.TransactionsSkipped,
		TransactionsUncategorized: stats.TransactionsUncategorized,
		AmbiguousMatches:          stats.AmbiguousMatches,
	}
	for _, f := range stats.Failures {
		rec.Failures = append(rec.Failures, f.Document+": "+f.Message)
	}
	return storeErr("record run", d.db.WithContext(ctx).Create(&rec).Error)
}

// ImportRun is a recorded pipeline run.
type ImportRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Inserted   int
	Skipped    int
	Failed     int
	Failures   []string
}

// ListRuns returns the most recent runs first.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]ImportRun, error) {
	var recs []importRunRecord
	q := d.db.WithContext(ctx).Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, storeErr("list runs", err)
	}
	out := make([]ImportRun, 0, len(recs))
	for _, r := range recs {
		out = append(out, ImportRun{
			ID:         r.ID,
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
			Status:     r.Status,
			Inserted:   r.TransactionsInserted,
			Skipped:    r.TransactionsSkipped,
			Failed:     r.DocumentsFailed,
			Failures:   r.Failures,
		})
	}
	return out, nil
}
