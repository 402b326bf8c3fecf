package models

import (
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/parsererror"
)

// Run statuses recorded for each pipeline run.
const (
	RunStatusCompleted = "completed"
	RunStatusAborted   = "aborted"
)

// DocumentFailure records a document that could not be processed.
type DocumentFailure struct {
	Document string
	Message  string
	Err      error
}

// RunStats aggregates the outcome of one pipeline run.
type RunStats struct {
	RunID string

	DocumentsProcessed int
	DocumentsFailed    int

	TransactionsParsed        int
	TransactionsInserted      int
	TransactionsSkipped       int
	TransactionsUncategorized int

	// AmbiguousMatches counts inserted transactions whose description matched
	// more than one subcategory.
	AmbiguousMatches int

	Failures   []DocumentFailure
	Collisions []parsererror.FingerprintCollision
}

// RecordFailure counts a failed document.
func (s *RunStats) RecordFailure(document string, err error) {
	s.DocumentsFailed++
	s.Failures = append(s.Failures, DocumentFailure{Document: document, Message: err.Error(), Err: err})
}

// LogSummary logs the run statistics.
func (s RunStats) LogSummary(logger logging.Logger) {
	if logger == nil {
		return
	}
	logger.Info("Run summary",
		logging.F(logging.FieldRunID, s.RunID),
		logging.F("documents_processed", s.DocumentsProcessed),
		logging.F("documents_failed", s.DocumentsFailed),
		logging.F("transactions_parsed", s.TransactionsParsed),
		logging.F("transactions_inserted", s.TransactionsInserted),
		logging.F("transactions_skipped", s.TransactionsSkipped),
		logging.F("transactions_uncategorized", s.TransactionsUncategorized),
		logging.F("ambiguous_matches", s.AmbiguousMatches),
	)
	for _, f := range s.Failures {
		logger.Warn("Document failed",
			logging.F(logging.FieldDocument, f.Document),
			logging.F("reason", f.Message))
	}
}

// RecategorizeStats is the outcome of a re-categorization run.
type RecategorizeStats struct {
	Examined      int
	Changed       int
	Unchanged     int
	Uncategorized int
}
