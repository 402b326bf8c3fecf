// Package container provides dependency injection for fintrack.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"

	"fjacquet/fintrack/internal/categorizer"
	"fjacquet/fintrack/internal/common"
	"fjacquet/fintrack/internal/config"
	"fjacquet/fintrack/internal/database"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/pdfparser"
	"fjacquet/fintrack/internal/pipeline"
	"fjacquet/fintrack/internal/sheets"
	"fjacquet/fintrack/internal/store"
	"fjacquet/fintrack/internal/validation"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation. Network clients (Sheets, Gemini)
// are built on demand because most commands never need them.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	db          *database.DB
	rules       *store.CategoryStore
	parser      *pdfparser.Adapter
	coordinator *pipeline.Coordinator
	csv         *common.CSVWriter
}

// NewContainer creates and wires all application dependencies, logging
// through a logger built from cfg.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, config.NewLogger(cfg))
}

// NewContainerWithLogger is NewContainer with an explicit logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	delimiter, err := common.ParseDelimiter(cfg.CSV.Delimiter)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database.Path, logger)
	if err != nil {
		return nil, err
	}

	extractor := pdfparser.NewRealPDFExtractor(cfg.Parser.PdftotextPath, logger)
	parser := pdfparser.NewAdapter(logger, extractor)

	logger.Debug("Container initialized",
		logging.F("database", cfg.Database.Path),
		logging.F("rules", cfg.Rules.File),
		logging.F("ai_enabled", cfg.AI.Enabled))

	return &Container{
		logger:      logger,
		config:      cfg,
		db:          db,
		rules:       store.NewCategoryStore(cfg.Rules.File, logger),
		parser:      parser,
		coordinator: pipeline.NewCoordinator(parser, db, logger),
		csv:         common.NewCSVWriter(delimiter, logger),
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetDatabase returns the transaction store.
func (c *Container) GetDatabase() *database.DB {
	return c.db
}

// GetRuleStore returns the keyword rule file store.
func (c *Container) GetRuleStore() *store.CategoryStore {
	return c.rules
}

// GetParser returns the statement parser.
func (c *Container) GetParser() *pdfparser.Adapter {
	return c.parser
}

// GetCoordinator returns the pipeline coordinator.
func (c *Container) GetCoordinator() *pipeline.Coordinator {
	return c.coordinator
}

// GetCSVWriter returns the CSV mirror writer.
func (c *Container) GetCSVWriter() *common.CSVWriter {
	return c.csv
}

// NewMirror connects to the configured spreadsheet.
func (c *Container) NewMirror(ctx context.Context) (*sheets.Mirror, error) {
	if creds := c.config.Sheets.CredentialsFile; creds != "" {
		if err := validation.CheckSecretFile(creds); err != nil {
			c.logger.WithError(err).Warn("Google credentials file is not private",
				logging.F(logging.FieldFile, creds))
		}
	}
	svc, err := sheets.NewGoogleService(ctx, c.config.Sheets.CredentialsFile, c.config.Sheets.SpreadsheetID)
	if err != nil {
		return nil, err
	}
	return sheets.NewMirror(svc, c.config.Sheets.RowLimit, c.logger), nil
}

// NewSuggester creates the Gemini client. The caller closes it.
func (c *Container) NewSuggester(ctx context.Context) (*categorizer.GeminiClient, error) {
	if !c.config.AI.Enabled {
		return nil, fmt.Errorf("AI suggestions are disabled (set ai.enabled or FINTRACK_AI_ENABLED)")
	}
	return categorizer.NewGeminiClient(ctx, c.config.AI.APIKey, c.config.AI.Model, c.config.AITimeout(), c.logger)
}

// Close releases the database.
func (c *Container) Close() error {
	if c.db == nil {
		return nil
	}
	if err := c.db.Close(); err != nil {
		return err
	}
	c.logger.Debug("Container closed")
	return nil
}
