// Package recategorize re-runs keyword categorization over the stored ledger.
package recategorize

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fjacquet/fintrack/cmd/common"
	"fjacquet/fintrack/cmd/root"
	"fjacquet/fintrack/internal/container"
)

// Cmd represents the recategorize command
var Cmd = &cobra.Command{
	Use:   "recategorize",
	Short: "Re-apply the current category rules to every stored transaction",
	Long: `Re-apply the current category rules to every stored transaction. Only
transactions whose category changes are updated.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return run(cmd.Context(), c, cmd.OutOrStdout())
	},
}

func run(ctx context.Context, c *container.Container, out io.Writer) error {
	if _, err := common.SyncRules(ctx, c); err != nil {
		return err
	}
	stats, err := c.GetCoordinator().Recategorize(ctx)
	if err != nil {
		return err
	}

	w := common.NewTable(out)
	fmt.Fprintf(w, "Examined\t%d\n", stats.Examined)
	fmt.Fprintf(w, "Changed\t%d\n", stats.Changed)
	fmt.Fprintf(w, "Unchanged\t%d\n", stats.Unchanged)
	fmt.Fprintf(w, "Uncategorized\t%d\n", stats.Uncategorized)
	return w.Flush()
}
