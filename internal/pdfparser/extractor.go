package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"fjacquet/fintrack/internal/logging"
)

// PDFExtractor defines the interface for extracting text from statement files.
// This interface allows for dependency injection and makes the parser testable
// by providing different implementations for production and testing.
type PDFExtractor interface {
	// ExtractText returns the layout-preserving text of the document at path.
	// Pages are separated by form feeds.
	ExtractText(ctx context.Context, path string) (string, error)
}

// RealPDFExtractor implements PDFExtractor using the pdftotext command.
// Plain .txt files are read as-is, which lets pre-extracted statements be
// processed without poppler installed.
type RealPDFExtractor struct {
	binary string
	logger logging.Logger
}

// NewRealPDFExtractor creates a new RealPDFExtractor. An empty binary means
// "pdftotext" from PATH.
func NewRealPDFExtractor(binary string, logger logging.Logger) *RealPDFExtractor {
	if binary == "" {
		binary = "pdftotext"
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &RealPDFExtractor{binary: binary, logger: logger}
}

// ExtractText extracts text from a PDF file using pdftotext -layout.
func (e *RealPDFExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		data, err := os.ReadFile(path) // #nosec G304 -- CLI tool requires user-provided file paths
		if err != nil {
			return "", fmt.Errorf("error reading text file: %w", err)
		}
		return string(data), nil
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("error opening input file: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, "-layout", path, "-") // #nosec G204 -- binary comes from configuration
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug("Running pdftotext",
		logging.F(logging.FieldFile, path))

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("error running %s: %w: %s", e.binary, err, msg)
		}
		return "", fmt.Errorf("error running %s: %w", e.binary, err)
	}
	return stdout.String(), nil
}

// MockPDFExtractor implements PDFExtractor for testing purposes.
// It returns predefined text per path, falling back to MockText.
type MockPDFExtractor struct {
	MockText string
	MockErr  error
	Texts    map[string]string
	Calls    []string
}

// NewMockPDFExtractor creates a new MockPDFExtractor with the given mock data.
func NewMockPDFExtractor(mockText string, mockErr error) *MockPDFExtractor {
	return &MockPDFExtractor{
		MockText: mockText,
		MockErr:  mockErr,
		Texts:    make(map[string]string),
	}
}

// ExtractText returns the predefined mock text or error.
func (e *MockPDFExtractor) ExtractText(_ context.Context, path string) (string, error) {
	e.Calls = append(e.Calls, path)
	if e.MockErr != nil {
		return "", e.MockErr
	}
	if text, ok := e.Texts[path]; ok {
		return text, nil
	}
	return e.MockText, nil
}
