package parsererror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ParseError
		expected string
	}{
		{
			name: "with line",
			err: &ParseError{
				Document: "2024-09.pdf",
				LineNo:   42,
				Line:     "Sep 31 COFFEE 4.50",
				Field:    "date",
				Err:      errors.New("day out of range"),
			},
			expected: `2024-09.pdf:42: cannot extract date from "Sep 31 COFFEE 4.50": day out of range`,
		},
		{
			name: "document level",
			err: &ParseError{
				Document: "visa.pdf",
				Field:    "period",
				Err:      errors.New("no statement period found"),
			},
			expected: "visa.pdf: cannot extract period: no statement period found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestParseError_Unwrap(t *testing.T) {
	cause := errors.New("bad amount")
	err := &ParseError{Document: "a.pdf", Field: "amount", Err: cause}
	assert.True(t, errors.Is(err, cause))
}

func TestStoreError_Unwrap(t *testing.T) {
	cause := errors.New("database is locked")
	err := fmt.Errorf("insert: %w", &StoreError{Op: "insert transaction", Err: cause})

	var storeErr *StoreError
	assert.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "insert transaction", storeErr.Op)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "store insert transaction: database is locked", storeErr.Error())
}

func TestUnsupportedDocumentError(t *testing.T) {
	err := &UnsupportedDocumentError{Document: "menu.pdf", Reason: "no statement markers"}
	assert.Equal(t, "unsupported document menu.pdf: no statement markers", err.Error())
}

func TestFingerprintCollision(t *testing.T) {
	err := &FingerprintCollision{Fingerprint: "ab12", First: "COFFEE (balance 10.00)", Second: "COFFEE (balance 5.50)"}
	assert.Contains(t, err.Error(), "ab12")
	assert.Contains(t, err.Error(), "balance 5.50")
}

func TestIsDocumentError(t *testing.T) {
	assert.True(t, IsDocumentError(&ParseError{Document: "a", Err: errors.New("x")}))
	assert.True(t, IsDocumentError(fmt.Errorf("wrapped: %w", &UnsupportedDocumentError{Document: "a"})))
	assert.True(t, IsDocumentError(&ExtractionError{Document: "a", Err: errors.New("pdftotext missing")}))
	assert.False(t, IsDocumentError(&StoreError{Op: "upsert", Err: errors.New("x")}))
	assert.False(t, IsDocumentError(errors.New("plain")))
}
