// Package accounts lists and renames ledger accounts.
package accounts

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fjacquet/fintrack/cmd/common"
	"fjacquet/fintrack/cmd/root"
	"fjacquet/fintrack/internal/container"
)

// Cmd groups the account subcommands.
var Cmd = &cobra.Command{
	Use:   "accounts",
	Short: "List and rename accounts",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List known accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return list(cmd.Context(), c, cmd.OutOrStdout())
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <number> <name>",
	Short: "Set the display name of an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return rename(cmd.Context(), c, cmd.OutOrStdout(), args[0], args[1])
	},
}

func init() {
	Cmd.AddCommand(listCmd, renameCmd)
}

func list(ctx context.Context, c *container.Container, out io.Writer) error {
	accounts, err := c.GetDatabase().ListAccounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Fprintln(out, "No accounts yet. Parse a statement first.")
		return nil
	}
	w := common.NewTable(out)
	fmt.Fprintln(w, "NUMBER\tTYPE\tNAME")
	for _, a := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.Number, a.Type, a.Name)
	}
	return w.Flush()
}

func rename(ctx context.Context, c *container.Container, out io.Writer, number, name string) error {
	if err := c.GetDatabase().RenameAccount(ctx, number, name); err != nil {
		return err
	}
	fmt.Fprintf(out, "Renamed %s to %q\n", number, name)
	return nil
}
