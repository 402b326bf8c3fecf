// Package sync mirrors the ledger into Google Sheets.
package sync

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fjacquet/fintrack/cmd/common"
	"fjacquet/fintrack/cmd/root"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/sheets"
)

var accountNumber string

type transactionLister interface {
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
}

type syncer interface {
	Sync(ctx context.Context, txs []models.Transaction) ([]sheets.SyncResult, error)
}

// Cmd represents the sync command
var Cmd = &cobra.Command{
	Use:   "sync",
	Short: "Append new ledger rows to Google Sheets, one sheet per account",
	Long: `Append new ledger rows to Google Sheets, one sheet per account. Rows already
present in a sheet are not appended again and existing rows are never rewritten.
Requires GOOGLE_CREDENTIALS_FILE and GOOGLE_SPREADSHEET_ID.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		mirror, err := c.NewMirror(cmd.Context())
		if err != nil {
			return err
		}
		return run(cmd.Context(), c.GetDatabase(), mirror, cmd.OutOrStdout(), accountNumber)
	},
}

func init() {
	Cmd.Flags().StringVarP(&accountNumber, "account", "a", "", "Only sync this account number")
}

func run(ctx context.Context, store transactionLister, mirror syncer, out io.Writer, account string) error {
	var filter models.TransactionFilter
	if account != "" {
		accounts, err := store.ListAccounts(ctx)
		if err != nil {
			return err
		}
		for _, a := range accounts {
			if a.Number == account {
				id := a.ID
				filter.AccountID = &id
			}
		}
		if filter.AccountID == nil {
			return fmt.Errorf("unknown account %s", account)
		}
	}

	txs, err := store.ListTransactions(ctx, filter)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintln(out, "Nothing to sync.")
		return nil
	}

	results, err := mirror.Sync(ctx, txs)
	w := common.NewTable(out)
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\tappended %d\tskipped %d\n", r.Account, r.Sheet, r.Appended, r.Skipped)
	}
	_ = w.Flush()
	return err
}
