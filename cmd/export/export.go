// Package export writes the ledger as a CSV mirror.
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fjacquet/fintrack/cmd/root"
	"fjacquet/fintrack/internal/container"
	"fjacquet/fintrack/internal/models"
)

var (
	output        string
	uncategorized bool
)

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Write the ledger to a CSV file",
	Long: `Write the ledger to a CSV file with the same columns as the spreadsheet
mirror plus the account number. Use - to write to standard output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return run(cmd.Context(), c, cmd.OutOrStdout(), output, uncategorized)
	},
}

func init() {
	Cmd.Flags().StringVarP(&output, "output", "o", "transactions.csv", "Output file, or - for stdout")
	Cmd.Flags().BoolVarP(&uncategorized, "uncategorized", "u", false, "Only export uncategorized transactions")
}

func run(ctx context.Context, c *container.Container, out io.Writer, path string, onlyUncategorized bool) error {
	txs, err := c.GetDatabase().ListTransactions(ctx, models.TransactionFilter{Uncategorized: onlyUncategorized})
	if err != nil {
		return err
	}
	if txs == nil {
		txs = []models.Transaction{}
	}

	if path == "-" {
		return c.GetCSVWriter().Write(out, txs)
	}
	if err := c.GetCSVWriter().WriteFile(path, txs); err != nil {
		return err
	}
	fmt.Fprintf(out, "Exported %d transactions to %s\n", len(txs), path)
	return nil
}
