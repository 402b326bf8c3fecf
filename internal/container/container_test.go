package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/fintrack/internal/config"
	"fjacquet/fintrack/internal/logging"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Database.Path = filepath.Join(t.TempDir(), "fintrack.db")
	cfg.Rules.File = filepath.Join(t.TempDir(), "categories.yaml")
	cfg.Statements.Patterns = []string{"*.pdf"}
	cfg.Parser.PdftotextPath = "pdftotext"
	cfg.Sheets.RowLimit = 10000
	cfg.CSV.Delimiter = ";"
	cfg.AI.Model = "gemini-1.5-flash"
	cfg.AI.TimeoutSeconds = 30
	return cfg
}

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name        string
		config      func(t *testing.T) *config.Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "nil config",
			config:      func(*testing.T) *config.Config { return nil },
			expectError: true,
			errorMsg:    "configuration cannot be nil",
		},
		{
			name:   "valid config",
			config: testConfig,
		},
		{
			name: "bad delimiter",
			config: func(t *testing.T) *config.Config {
				cfg := testConfig(t)
				cfg.CSV.Delimiter = "::"
				return cfg
			},
			expectError: true,
			errorMsg:    "single character",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContainerWithLogger(tt.config(t), logging.NewMockLogger())
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = c.Close() })

			assert.NotNil(t, c.GetLogger())
			assert.NotNil(t, c.GetConfig())
			assert.NotNil(t, c.GetDatabase())
			assert.NotNil(t, c.GetRuleStore())
			assert.NotNil(t, c.GetParser())
			assert.NotNil(t, c.GetCoordinator())
			assert.NotNil(t, c.GetCSVWriter())
			assert.NoError(t, c.GetDatabase().Ping(context.Background()))
		})
	}
}

func TestNewContainer_NilConfig(t *testing.T) {
	_, err := NewContainer(nil)
	assert.Error(t, err)
}

func TestContainer_NetworkClientsNeedConfiguration(t *testing.T) {
	c, err := NewContainerWithLogger(testConfig(t), logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_, err = c.NewMirror(context.Background())
	assert.ErrorContains(t, err, "GOOGLE_CREDENTIALS_FILE")

	_, err = c.NewSuggester(context.Background())
	assert.ErrorContains(t, err, "disabled")
}

func TestContainer_RuleStoreUsesConfiguredFile(t *testing.T) {
	cfg := testConfig(t)
	c, err := NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Equal(t, cfg.Rules.File, c.GetRuleStore().RulesFile)
}
