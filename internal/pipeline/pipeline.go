// Package pipeline drives parse-and-store runs: parse, fingerprint, filter
// known transactions, categorize, then persist.
package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"fjacquet/fintrack/internal/categorizer"
	"fjacquet/fintrack/internal/dedup"
	"fjacquet/fintrack/internal/fileutils"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/parser"
	"fjacquet/fintrack/internal/parsererror"
)

// Store is the persistence contract the coordinator relies on. Each call is
// synchronous and all-or-nothing.
type Store interface {
	UpsertAccount(ctx context.Context, acc models.Account) (models.AccountID, error)
	ExistingFingerprints(ctx context.Context, accountID models.AccountID) (map[models.Fingerprint]struct{}, error)
	InsertTransaction(ctx context.Context, tx *models.Transaction) error
	UpdateTransactionCategory(ctx context.Context, id models.TransactionID, categoryID *models.CategoryID) error
	LoadCategoryTree(ctx context.Context) (models.CategoryForest, error)
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
}

// RunRecorder is implemented by stores that keep a history of runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, stats models.RunStats, started, finished time.Time, status string) error
}

// Document is one unit of input. When Text is set it is parsed directly,
// otherwise Path is read.
type Document struct {
	ID   string
	Path string
	Text string
}

// Coordinator sequences parser, deduplicator, categorizer and store.
type Coordinator struct {
	parser parser.Parser
	store  Store
	dedup  *dedup.Deduplicator
	logger logging.Logger

	now      func() time.Time
	newRunID func() string
}

// NewCoordinator creates a coordinator. Nothing is shared between runs
// except the collaborators passed in.
func NewCoordinator(p parser.Parser, store Store, logger logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Coordinator{
		parser:   p,
		store:    store,
		dedup:    dedup.New(nil),
		logger:   logger,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
}

// RunFiles processes files in lexical file-name order.
func (c *Coordinator) RunFiles(ctx context.Context, paths []string) (models.RunStats, error) {
	sorted := append([]string(nil), paths...)
	fileutils.SortByName(sorted)

	docs := make([]Document, 0, len(sorted))
	for _, p := range sorted {
		docs = append(docs, Document{ID: filepath.Base(p), Path: p})
	}
	return c.Run(ctx, docs)
}

// RunDirectory processes every statement in dir matching patterns.
func (c *Coordinator) RunDirectory(ctx context.Context, dir string, patterns []string) (models.RunStats, error) {
	files, err := fileutils.ListStatements(dir, patterns)
	if err != nil {
		return models.RunStats{}, err
	}
	c.logger.Info("Found statements",
		logging.F(logging.FieldFile, dir),
		logging.F(logging.FieldCount, len(files)))
	return c.RunFiles(ctx, files)
}

// Run processes docs one at a time in the given order. Per-document errors
// are recorded in the returned stats and the run continues. A store error
// stops the run and is returned along with the stats gathered so far.
func (c *Coordinator) Run(ctx context.Context, docs []Document) (models.RunStats, error) {
	stats := models.RunStats{RunID: c.newRunID()}
	started := c.now()
	log := c.logger.WithField(logging.FieldRunID, stats.RunID)

	forest, err := c.store.LoadCategoryTree(ctx)
	if err != nil {
		return stats, c.abort(ctx, log, stats, started, err)
	}
	cat := categorizer.New(forest, log)

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return stats, c.abort(ctx, log, stats, started, err)
		}

		err := c.processDocument(ctx, doc, cat, &stats, log)
		if err == nil {
			stats.DocumentsProcessed++
			continue
		}

		var storeErr *parsererror.StoreError
		if errors.As(err, &storeErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return stats, c.abort(ctx, log, stats, started, err)
		}

		stats.RecordFailure(doc.ID, err)
		if parsererror.IsDocumentError(err) {
			log.WithError(err).Warn("Document skipped",
				logging.F(logging.FieldDocument, doc.ID))
		} else {
			log.WithError(err).Error("Document failed",
				logging.F(logging.FieldDocument, doc.ID))
		}
	}

	if rec, ok := c.store.(RunRecorder); ok {
		if err := rec.RecordRun(ctx, stats, started, c.now(), models.RunStatusCompleted); err != nil {
			return stats, err
		}
	}
	stats.LogSummary(log)
	return stats, nil
}

func (c *Coordinator) abort(ctx context.Context, log logging.Logger, stats models.RunStats, started time.Time, cause error) error {
	log.WithError(cause).Error("Run aborted")
	if rec, ok := c.store.(RunRecorder); ok {
		if err := rec.RecordRun(context.WithoutCancel(ctx), stats, started, c.now(), models.RunStatusAborted); err != nil {
			log.WithError(err).Warn("Could not record aborted run")
		}
	}
	return cause
}

func (c *Coordinator) parse(ctx context.Context, doc Document) (models.Statement, error) {
	if doc.Text != "" {
		return c.parser.ParseText(doc.ID, doc.Text)
	}
	return c.parser.ParseFile(ctx, doc.Path)
}

func (c *Coordinator) processDocument(ctx context.Context, doc Document, cat *categorizer.Categorizer, stats *models.RunStats, log logging.Logger) error {
	stmt, err := c.parse(ctx, doc)
	if err != nil {
		return err
	}
	txs := stmt.Transactions()

	accountIDs := make(map[string]models.AccountID)
	known := make(map[models.Fingerprint]struct{})
	for _, acc := range stmt.Accounts() {
		id, err := c.store.UpsertAccount(ctx, acc)
		if err != nil {
			return err
		}
		accountIDs[acc.Number] = id

		fps, err := c.store.ExistingFingerprints(ctx, id)
		if err != nil {
			return err
		}
		for fp := range fps {
			known[fp] = struct{}{}
		}
	}

	res := c.dedup.Partition(txs, known)
	for _, col := range res.Collisions {
		stats.Collisions = append(stats.Collisions, col)
		log.Warn("Fingerprint collision",
			logging.F(logging.FieldDocument, doc.ID),
			logging.F(logging.FieldFingerprint, col.Fingerprint),
			logging.F("first", col.First),
			logging.F("second", col.Second))
	}

	stats.TransactionsParsed += len(txs)
	stats.TransactionsSkipped += len(res.Known)

	for _, cand := range res.New {
		m := cat.Categorize(cand.Raw.Description)

		tx := models.NewTransaction(accountIDs[cand.Raw.AccountNumber], cand.Raw, cand.Fingerprint)
		tx.CategoryID = m.CategoryID
		tx.Label = m.Label

		err := c.store.InsertTransaction(ctx, &tx)
		if errors.Is(err, parsererror.ErrDuplicateTransaction) {
			stats.TransactionsSkipped++
			continue
		}
		if err != nil {
			return err
		}

		stats.TransactionsInserted++
		if m.Uncategorized() {
			stats.TransactionsUncategorized++
		}
		if m.Ambiguous() {
			stats.AmbiguousMatches++
		}
	}

	log.Info("Processed statement",
		logging.F(logging.FieldDocument, doc.ID),
		logging.F("parsed", len(txs)),
		logging.F("new", len(res.New)),
		logging.F("known", len(res.Known)))
	return nil
}

// Recategorize runs the categorizer over every stored transaction with the
// current category tree and updates only those whose category changes.
func (c *Coordinator) Recategorize(ctx context.Context) (models.RecategorizeStats, error) {
	var stats models.RecategorizeStats

	forest, err := c.store.LoadCategoryTree(ctx)
	if err != nil {
		return stats, err
	}
	cat := categorizer.New(forest, c.logger)

	txs, err := c.store.ListTransactions(ctx, models.TransactionFilter{})
	if err != nil {
		return stats, err
	}

	for _, tx := range txs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Examined++

		m := cat.Categorize(tx.Description)
		if m.Uncategorized() {
			stats.Uncategorized++
		}
		if models.SameCategory(tx.CategoryID, m.CategoryID) {
			stats.Unchanged++
			continue
		}

		if err := c.store.UpdateTransactionCategory(ctx, tx.ID, m.CategoryID); err != nil {
			return stats, err
		}
		stats.Changed++
		c.logger.Debug("Transaction recategorized",
			logging.F("description", tx.Description),
			logging.F("from", tx.Label.String()),
			logging.F("to", m.Label.String()))
	}

	c.logger.Info("Recategorization finished",
		logging.F("examined", stats.Examined),
		logging.F("changed", stats.Changed),
		logging.F("unchanged", stats.Unchanged),
		logging.F("uncategorized", stats.Uncategorized))
	return stats, nil
}
