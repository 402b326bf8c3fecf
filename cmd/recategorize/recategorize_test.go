package recategorize

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/fintrack/internal/config"
	"fjacquet/fintrack/internal/container"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Log.Level = "error"
	cfg.Log.Format = "text"
	cfg.Database.Path = filepath.Join(dir, "fintrack.db")
	cfg.Rules.File = filepath.Join(dir, "categories.yaml")
	cfg.Statements.Patterns = []string{"*.pdf"}
	cfg.Sheets.RowLimit = 10000
	cfg.CSV.Delimiter = ","

	c, err := container.NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	db := c.GetDatabase()
	accID, err := db.UpsertAccount(ctx, models.Account{Number: "01-23456", Name: "CIBC Chequing Account", Type: models.AccountChequing})
	require.NoError(t, err)
	for i, desc := range []string{"NETFLIX.COM", "CITY PARKING"} {
		tx := models.Transaction{
			AccountID:   accID,
			Date:        time.Date(2025, time.January, i+1, 0, 0, 0, 0, time.UTC),
			Description: desc,
			Amount:      decimal.RequireFromString("-10.00"),
			Fingerprint: models.Fingerprint(desc),
		}
		require.NoError(t, db.InsertTransaction(ctx, &tx))
	}

	rules := "categories:\n  - name: Entertainment\n    subcategories:\n      - name: Streaming\n        keywords: [netflix]\n"
	require.NoError(t, os.WriteFile(cfg.Rules.File, []byte(rules), 0600))

	var out bytes.Buffer
	require.NoError(t, run(ctx, c, &out))
	assert.Regexp(t, `Examined\s+2`, out.String())
	assert.Regexp(t, `Changed\s+1`, out.String())
	assert.Regexp(t, `Uncategorized\s+1`, out.String())

	n, err := db.UncategorizedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
