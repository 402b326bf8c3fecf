// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"fjacquet/fintrack/internal/container"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
)

// SyncRules pushes the rule file into the store when the file exists. It
// reports whether a sync happened.
func SyncRules(ctx context.Context, c *container.Container) (bool, error) {
	rules := c.GetRuleStore()
	if _, err := rules.FindConfigFile(rules.RulesFile); err != nil {
		c.GetLogger().Debug("No rule file, using stored categories",
			logging.F(logging.FieldFile, rules.RulesFile))
		return false, nil
	}

	set, err := rules.Load()
	if err != nil {
		return false, err
	}
	forest, err := c.GetDatabase().SyncCategories(ctx, set.Forest())
	if err != nil {
		return false, err
	}
	c.GetLogger().Info("Synchronized categories from rule file",
		logging.F(logging.FieldFile, rules.RulesFile),
		logging.F(logging.FieldCount, forest.Size()))
	return true, nil
}

// NewTable returns a tab-aligned writer; callers Flush it.
func NewTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

// PrintRunStats writes a human summary of a pipeline run.
func PrintRunStats(out io.Writer, stats models.RunStats) {
	w := NewTable(out)
	fmt.Fprintf(w, "Run\t%s\n", stats.RunID)
	fmt.Fprintf(w, "Documents processed\t%d\n", stats.DocumentsProcessed)
	fmt.Fprintf(w, "Documents failed\t%d\n", stats.DocumentsFailed)
	fmt.Fprintf(w, "Transactions parsed\t%d\n", stats.TransactionsParsed)
	fmt.Fprintf(w, "Transactions added\t%d\n", stats.TransactionsInserted)
	fmt.Fprintf(w, "Duplicates skipped\t%d\n", stats.TransactionsSkipped)
	fmt.Fprintf(w, "Uncategorized\t%d\n", stats.TransactionsUncategorized)
	fmt.Fprintf(w, "Ambiguous matches\t%d\n", stats.AmbiguousMatches)
	_ = w.Flush()

	for _, f := range stats.Failures {
		fmt.Fprintf(out, "FAILED %s: %s\n", f.Document, f.Message)
	}
	for _, c := range stats.Collisions {
		fmt.Fprintf(out, "COLLISION %s: %s / %s\n", shortFingerprint(c.Fingerprint), c.First, c.Second)
	}
}

// PrintForest writes the category tree with keywords.
func PrintForest(out io.Writer, forest models.CategoryForest) {
	if len(forest.Roots) == 0 {
		fmt.Fprintln(out, "No categories. Run 'fintrack categories init' to install the defaults.")
		return
	}
	for _, root := range forest.Roots {
		fmt.Fprintf(out, "%s%s\n", root.Name, keywordSuffix(root.Keywords))
		for _, child := range root.Children {
			fmt.Fprintf(out, "  - %s%s\n", child.Name, keywordSuffix(child.Keywords))
		}
	}
}

func keywordSuffix(keywords []string) string {
	if len(keywords) == 0 {
		return ""
	}
	return " [" + strings.Join(keywords, ", ") + "]"
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
