// Package parse provides the parse and parse-all commands.
package parse

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fjacquet/fintrack/cmd/common"
	"fjacquet/fintrack/cmd/root"
	"fjacquet/fintrack/internal/container"
	"fjacquet/fintrack/internal/fileutils"
	"fjacquet/fintrack/internal/models"
)

// ErrDocumentsFailed is returned when a run finished but skipped documents.
var ErrDocumentsFailed = errors.New("some documents could not be processed")

var inputDir string

// Cmd parses the statements given as arguments.
var Cmd = &cobra.Command{
	Use:   "parse <statement>...",
	Short: "Parse one or more statements into the ledger",
	Long: `Parse CIBC statements (PDF, or text already extracted with pdftotext -layout)
and store every transaction that is not already in the ledger.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return runFiles(cmd.Context(), c, cmd.OutOrStdout(), args)
	},
}

// AllCmd parses every statement in a directory.
var AllCmd = &cobra.Command{
	Use:   "parse-all",
	Short: "Parse every statement in the statements directory",
	Long:  `Parse every statement in the statements directory in file-name order.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		dir := inputDir
		if dir == "" {
			dir = c.GetConfig().Statements.Dir
		}
		return runDirectory(cmd.Context(), c, cmd.OutOrStdout(), dir)
	},
}

func init() {
	AllCmd.Flags().StringVarP(&inputDir, "dir", "d", "", "Statements directory (overrides statements.dir)")
}

func runFiles(ctx context.Context, c *container.Container, out io.Writer, paths []string) error {
	for _, p := range paths {
		if !fileutils.FileExists(p) {
			return fmt.Errorf("statement not found: %s", p)
		}
	}
	if _, err := common.SyncRules(ctx, c); err != nil {
		return err
	}
	stats, err := c.GetCoordinator().RunFiles(ctx, paths)
	return report(out, stats, err)
}

func runDirectory(ctx context.Context, c *container.Container, out io.Writer, dir string) error {
	if !fileutils.DirectoryExists(dir) {
		return fmt.Errorf("statements directory not found: %s", dir)
	}
	if _, err := common.SyncRules(ctx, c); err != nil {
		return err
	}
	stats, err := c.GetCoordinator().RunDirectory(ctx, dir, c.GetConfig().Statements.Patterns)
	if err == nil && stats.DocumentsProcessed+stats.DocumentsFailed == 0 {
		fmt.Fprintf(out, "No statements found in %s\n", dir)
		return nil
	}
	return report(out, stats, err)
}

func report(out io.Writer, stats models.RunStats, err error) error {
	common.PrintRunStats(out, stats)
	if err != nil {
		return err
	}
	if stats.DocumentsFailed > 0 {
		return fmt.Errorf("%d of %d: %w", stats.DocumentsFailed, stats.DocumentsFailed+stats.DocumentsProcessed, ErrDocumentsFailed)
	}
	return nil
}
