// Package parser defines the contracts statement parsers implement.
package parser

import (
	"context"

	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
)

// Parser turns a statement document into a Statement.
//
// Implementations return the error types of the parsererror package so that
// callers can tell an unreadable document from an unrecognized layout.
type Parser interface {
	// ParseFile reads the document at path. The document identifier is the
	// file name.
	ParseFile(ctx context.Context, path string) (models.Statement, error)

	// ParseText parses text that was already extracted from a document.
	ParseText(document, text string) (models.Statement, error)
}

// Validator checks whether a file looks like a supported statement without
// reporting individual line problems.
type Validator interface {
	ValidateFormat(ctx context.Context, path string) (bool, error)
}

// LoggerConfigurable is implemented by parsers whose logger can be replaced.
type LoggerConfigurable interface {
	SetLogger(logger logging.Logger)
}

// FullParser combines every parser capability.
type FullParser interface {
	Parser
	Validator
	LoggerConfigurable
}
