package accounts

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/fintrack/internal/config"
	"fjacquet/fintrack/internal/container"
	"fjacquet/fintrack/internal/database"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
)

func newContainer(t *testing.T) *container.Container {
	t.Helper()
	cfg := &config.Config{}
	cfg.Log.Level = "error"
	cfg.Log.Format = "text"
	cfg.Database.Path = filepath.Join(t.TempDir(), "fintrack.db")
	cfg.Statements.Patterns = []string{"*.pdf"}
	cfg.Sheets.RowLimit = 10000
	cfg.CSV.Delimiter = ","

	c, err := container.NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestListAndRename(t *testing.T) {
	c := newContainer(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, list(ctx, c, &out))
	assert.Contains(t, out.String(), "No accounts yet")

	_, err := c.GetDatabase().UpsertAccount(ctx, models.Account{Number: "01-23456", Name: "CIBC Chequing Account", Type: models.AccountChequing})
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, rename(ctx, c, &out, "01-23456", "Joint"))
	assert.Contains(t, out.String(), `Renamed 01-23456 to "Joint"`)

	out.Reset()
	require.NoError(t, list(ctx, c, &out))
	assert.Contains(t, out.String(), "NUMBER")
	assert.Regexp(t, `01-23456\s+\S+\s+Joint`, out.String())
}

func TestRename_Unknown(t *testing.T) {
	c := newContainer(t)
	err := rename(context.Background(), c, &bytes.Buffer{}, "99-99999", "Nope")
	assert.ErrorIs(t, err, database.ErrAccountNotFound)
}
