package pdfparser

import (
	"context"
	"path/filepath"

	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/parser"
	"fjacquet/fintrack/internal/parsererror"
)

var _ parser.FullParser = (*Adapter)(nil)

// Adapter couples text extraction with statement parsing so callers can work
// with file paths.
type Adapter struct {
	parser.BaseParser
	statements *Parser
	extractor  PDFExtractor
}

// NewAdapter creates a new adapter with dependency injection.
func NewAdapter(logger logging.Logger, extractor PDFExtractor) *Adapter {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if extractor == nil {
		extractor = NewRealPDFExtractor("", logger)
	}
	return &Adapter{
		BaseParser: parser.NewBaseParser(logger),
		statements: NewParser(logger),
		extractor:  extractor,
	}
}

// SetLogger replaces the logger of the adapter and its statement parser.
func (a *Adapter) SetLogger(logger logging.Logger) {
	if logger == nil {
		return
	}
	a.BaseParser.SetLogger(logger)
	a.statements.logger = logger
}

// ParseFile extracts the text of the document at path and parses it. The
// document identifier is the file name.
func (a *Adapter) ParseFile(ctx context.Context, path string) (models.Statement, error) {
	document := filepath.Base(path)
	a.GetLogger().Info("Parsing statement",
		logging.F(logging.FieldFile, path))

	text, err := a.extractor.ExtractText(ctx, path)
	if err != nil {
		return models.Statement{}, &parsererror.ExtractionError{Document: document, Err: err}
	}
	return a.statements.Parse(document, text)
}

// ParseText parses already extracted text.
func (a *Adapter) ParseText(document, text string) (models.Statement, error) {
	return a.statements.Parse(document, text)
}

// ValidateFormat reports whether the file at path is a supported statement.
func (a *Adapter) ValidateFormat(ctx context.Context, path string) (bool, error) {
	text, err := a.extractor.ExtractText(ctx, path)
	if err != nil {
		a.GetLogger().WithError(err).Warn("Statement validation failed",
			logging.F(logging.FieldFile, path))
		return false, nil
	}
	_, err = DetectKind(firstPage(text))
	return err == nil, nil
}
