// Package stats summarizes the ledger.
package stats

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fjacquet/fintrack/cmd/common"
	"fjacquet/fintrack/cmd/root"
	"fjacquet/fintrack/internal/container"
	"fjacquet/fintrack/internal/models"
)

// Cmd represents the stats command
var Cmd = &cobra.Command{
	Use:   "stats",
	Short: "Show accounts, totals and uncategorized transactions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return run(cmd.Context(), c, cmd.OutOrStdout())
	},
}

type accountTotals struct {
	count   int
	debits  decimal.Decimal
	credits decimal.Decimal
}

// Summary is the aggregated view printed by the stats command.
type Summary struct {
	Accounts      []models.Account
	Transactions  int
	Uncategorized int64
	perAccount    map[string]*accountTotals
	perCategory   map[string]decimal.Decimal
}

// Summarize aggregates the ledger.
func Summarize(ctx context.Context, c *container.Container) (Summary, error) {
	db := c.GetDatabase()
	accounts, err := db.ListAccounts(ctx)
	if err != nil {
		return Summary{}, err
	}
	txs, err := db.ListTransactions(ctx, models.TransactionFilter{})
	if err != nil {
		return Summary{}, err
	}
	uncategorized, err := db.UncategorizedCount(ctx)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Accounts:      accounts,
		Transactions:  len(txs),
		Uncategorized: uncategorized,
		perAccount:    map[string]*accountTotals{},
		perCategory:   map[string]decimal.Decimal{},
	}
	for _, tx := range txs {
		t, ok := s.perAccount[tx.AccountNumber]
		if !ok {
			t = &accountTotals{}
			s.perAccount[tx.AccountNumber] = t
		}
		t.count++
		if tx.IsDebit() {
			t.debits = t.debits.Add(tx.Amount)
			label := tx.Label.Category
			if label == "" {
				label = models.CategoryUncategorized
			}
			s.perCategory[label] = s.perCategory[label].Add(tx.Amount.Neg())
		} else {
			t.credits = t.credits.Add(tx.Amount)
		}
	}
	return s, nil
}

func run(ctx context.Context, c *container.Container, out io.Writer) error {
	s, err := Summarize(ctx, c)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Accounts: %d\n", len(s.Accounts))
	w := common.NewTable(out)
	for _, a := range s.Accounts {
		t := s.perAccount[a.Number]
		if t == nil {
			t = &accountTotals{}
		}
		fmt.Fprintf(w, "  %s\t%s\t%d tx\tout %s\tin %s\n", a.Number, a.Name, t.count, t.debits.Neg().StringFixed(2), t.credits.StringFixed(2))
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\nTotal transactions: %d\n", s.Transactions)
	fmt.Fprintf(out, "Uncategorized: %d\n", s.Uncategorized)

	if len(s.perCategory) > 0 {
		fmt.Fprintln(out, "\nSpending by category:")
		names := make([]string, 0, len(s.perCategory))
		for name := range s.perCategory {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			return s.perCategory[names[i]].GreaterThan(s.perCategory[names[j]])
		})
		w = common.NewTable(out)
		for _, name := range names {
			fmt.Fprintf(w, "  %s\t%s\n", name, s.perCategory[name].StringFixed(2))
		}
		_ = w.Flush()
	}

	runs, err := c.GetDatabase().ListRuns(ctx, 1)
	if err != nil {
		return err
	}
	if len(runs) == 1 {
		r := runs[0]
		fmt.Fprintf(out, "\nLast run: %s (%s) added %d, skipped %d, failed documents %d\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"), r.Status, r.Inserted, r.Skipped, r.Failed)
	}

	if s.Uncategorized > 0 {
		fmt.Fprintf(out, "\n%d transactions need a category. Add keywords with 'fintrack categories add'.\n", s.Uncategorized)
	}
	return nil
}
