// Package parsererror defines the typed errors raised while turning statement
// documents into stored transactions.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrDuplicateTransaction is returned by a store when a transaction with the
// same fingerprint already exists.
var ErrDuplicateTransaction = errors.New("transaction fingerprint already stored")

// ParseError reports a line that looks like a transaction but from which a
// required field could not be extracted.
type ParseError struct {
	Document string
	LineNo   int
	Line     string
	Field    string
	Err      error
}

func (e *ParseError) Error() string {
	if e.LineNo > 0 {
		return fmt.Sprintf("%s:%d: cannot extract %s from %q: %v",
			e.Document, e.LineNo, e.Field, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: cannot extract %s: %v", e.Document, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnsupportedDocumentError reports a document whose layout matches no known
// statement sub-type.
type UnsupportedDocumentError struct {
	Document string
	Reason   string
}

func (e *UnsupportedDocumentError) Error() string {
	return fmt.Sprintf("unsupported document %s: %s", e.Document, e.Reason)
}

// ExtractionError reports a failure to obtain text from a document.
type ExtractionError struct {
	Document string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("text extraction failed for %s: %v", e.Document, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// FingerprintCollision is a data-quality warning: two records that differ in
// content hashed to the same fingerprint. Only the first one is kept.
type FingerprintCollision struct {
	Fingerprint string
	First       string
	Second      string
}

func (e *FingerprintCollision) Error() string {
	return fmt.Sprintf("fingerprint %s shared by %q and %q", e.Fingerprint, e.First, e.Second)
}

// StoreError wraps a failure of the persistent store. It is fatal to a run.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ValidationError reports an invalid rule set or category tree.
type ValidationError struct {
	Source string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Source, e.Reason)
}

// IsDocumentError reports whether err is scoped to a single document, i.e.
// the run may continue with the next one.
func IsDocumentError(err error) bool {
	var parseErr *ParseError
	var unsupported *UnsupportedDocumentError
	var extraction *ExtractionError
	return errors.As(err, &parseErr) || errors.As(err, &unsupported) || errors.As(err, &extraction)
}
