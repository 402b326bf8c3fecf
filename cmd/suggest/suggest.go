// Package suggest asks an AI model to propose categories for uncategorized
// transactions. It never changes the ledger or the rule file.
package suggest

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fjacquet/fintrack/cmd/common"
	"fjacquet/fintrack/cmd/root"
	"fjacquet/fintrack/internal/categorizer"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
)

var limit int

type ledger interface {
	LoadCategoryTree(ctx context.Context) (models.CategoryForest, error)
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
}

// Cmd represents the suggest command
var Cmd = &cobra.Command{
	Use:   "suggest",
	Short: "Propose categories for uncategorized transactions with Gemini",
	Long: `Propose a category for each distinct uncategorized description using the
Gemini API. Suggestions are printed only; add keywords with 'fintrack categories add'.
Requires ai.enabled and GEMINI_API_KEY.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		client, err := c.NewSuggester(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				c.GetLogger().WithError(err).Warn("Failed to close Gemini client")
			}
		}()
		return run(cmd.Context(), c.GetDatabase(), client, c.GetLogger(), cmd.OutOrStdout(), limit)
	},
}

func init() {
	Cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of uncategorized transactions to consider")
}

func run(ctx context.Context, db ledger, s categorizer.Suggester, logger logging.Logger, out io.Writer, max int) error {
	forest, err := db.LoadCategoryTree(ctx)
	if err != nil {
		return err
	}
	if len(forest.Leaves()) == 0 {
		return fmt.Errorf("no subcategories to choose from; run 'fintrack categories init' first")
	}

	txs, err := db.ListTransactions(ctx, models.TransactionFilter{Uncategorized: true, Limit: max})
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintln(out, "Every transaction has a category.")
		return nil
	}

	descriptions := make([]string, 0, len(txs))
	for _, tx := range txs {
		descriptions = append(descriptions, tx.Description)
	}
	suggestions, err := categorizer.SuggestAll(ctx, s, forest, descriptions, logger)

	w := common.NewTable(out)
	fmt.Fprintln(w, "DESCRIPTION\tCOUNT\tSUGGESTION")
	for _, sg := range suggestions {
		fmt.Fprintf(w, "%s\t%d\t%s\n", sg.Description, sg.Occurrences, sg.Label.String())
	}
	_ = w.Flush()
	return err
}
