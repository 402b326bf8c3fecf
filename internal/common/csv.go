// Package common holds the CSV mirror shared by the export and sync commands.
package common

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/gocarina/gocsv"

	"fjacquet/fintrack/internal/fileutils"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
)

// DefaultDelimiter is the field separator used when none is configured.
const DefaultDelimiter = ','

// CSVWriter writes mirror rows with a configurable delimiter.
type CSVWriter struct {
	delimiter rune
	logger    logging.Logger
}

// NewCSVWriter creates a writer. A zero delimiter uses DefaultDelimiter.
func NewCSVWriter(delimiter rune, logger logging.Logger) *CSVWriter {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &CSVWriter{delimiter: delimiter, logger: logger}
}

// ParseDelimiter turns a configured string into a single delimiter rune.
func ParseDelimiter(s string) (rune, error) {
	if s == "" {
		return DefaultDelimiter, nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("CSV delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\n' || r == '\r' {
		return 0, fmt.Errorf("invalid CSV delimiter %q", s)
	}
	return r, nil
}

// Write marshals transactions as mirror rows to w.
func (c *CSVWriter) Write(w io.Writer, txs []models.Transaction) error {
	rows := make([]models.MirrorRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, models.NewMirrorRow(tx))
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = c.delimiter
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteFile writes transactions to path, creating parent directories.
func (c *CSVWriter) WriteFile(path string, txs []models.Transaction) error {
	if txs == nil {
		return errors.New("cannot write nil transactions to CSV")
	}
	file, err := fileutils.CreateFile(path)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := c.Write(file, txs); err != nil {
		return err
	}

	c.logger.Info("Wrote CSV mirror",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(txs)),
		logging.F("delimiter", string(c.delimiter)))
	return nil
}

// ReadCSVFile reads a delimited file into a slice of structs using gocsv.
func ReadCSVFile[TCSVRow any](path string, delimiter rune) ([]TCSVRow, error) {
	file, err := os.Open(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	r := csv.NewReader(file)
	r.Comma = delimiter

	var rows []TCSVRow
	if err := gocsv.UnmarshalCSV(r, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}
	return rows, nil
}
