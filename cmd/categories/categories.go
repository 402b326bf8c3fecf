// Package categories manages the category tree and its keyword rules.
package categories

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fjacquet/fintrack/cmd/common"
	"fjacquet/fintrack/cmd/root"
	"fjacquet/fintrack/internal/container"
	"fjacquet/fintrack/internal/store"
)

var (
	parentName string
	keywords   string
)

// Cmd groups the category subcommands.
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "List and edit categories and their keywords",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the category tree",
	Args:  cobra.NoArgs,
	RunE: withContainer(func(ctx context.Context, c *container.Container, out io.Writer, _ []string) error {
		return list(ctx, c, out)
	}),
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category with keywords, creating the parent when needed",
	Args:  cobra.ExactArgs(1),
	RunE: withContainer(func(ctx context.Context, c *container.Container, out io.Writer, args []string) error {
		return add(ctx, c, out, parentName, args[0], splitKeywords(keywords))
	}),
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Install the default categories",
	Args:  cobra.NoArgs,
	RunE: withContainer(func(ctx context.Context, c *container.Container, out io.Writer, _ []string) error {
		return initDefaults(ctx, c, out)
	}),
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Load the rule file into the ledger",
	Args:  cobra.NoArgs,
	RunE: withContainer(func(ctx context.Context, c *container.Container, out io.Writer, _ []string) error {
		synced, err := common.SyncRules(ctx, c)
		if err != nil {
			return err
		}
		if !synced {
			return fmt.Errorf("rule file not found: %s", c.GetRuleStore().RulesFile)
		}
		return list(ctx, c, out)
	}),
}

func init() {
	addCmd.Flags().StringVarP(&parentName, "parent", "p", "", "Parent category (empty for a top-level category)")
	addCmd.Flags().StringVarP(&keywords, "keywords", "k", "", "Comma-separated keywords")
	_ = addCmd.MarkFlagRequired("keywords")

	Cmd.AddCommand(listCmd, addCmd, initCmd, syncCmd)
}

func withContainer(fn func(context.Context, *container.Container, io.Writer, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return fn(cmd.Context(), c, cmd.OutOrStdout(), args)
	}
}

func splitKeywords(s string) []string {
	var out []string
	for _, kw := range strings.Split(s, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func list(ctx context.Context, c *container.Container, out io.Writer) error {
	forest, err := c.GetDatabase().LoadCategoryTree(ctx)
	if err != nil {
		return err
	}
	common.PrintForest(out, forest)
	return nil
}

// baseRules returns the rule file, or the stored tree when no file exists
// yet, so that editing never drops stored categories.
func baseRules(ctx context.Context, c *container.Container) (store.RuleSet, error) {
	rules := c.GetRuleStore()
	if _, err := rules.FindConfigFile(rules.RulesFile); err == nil {
		return rules.Load()
	}
	forest, err := c.GetDatabase().LoadCategoryTree(ctx)
	if err != nil {
		return store.RuleSet{}, err
	}
	return store.RuleSetFromForest(forest), nil
}

func saveAndSync(ctx context.Context, c *container.Container, set store.RuleSet) error {
	if err := c.GetRuleStore().Save(set); err != nil {
		return err
	}
	_, err := c.GetDatabase().SyncCategories(ctx, set.Forest())
	return err
}

func add(ctx context.Context, c *container.Container, out io.Writer, parent, name string, kws []string) error {
	if len(kws) == 0 {
		return fmt.Errorf("at least one keyword is required")
	}
	set, err := baseRules(ctx, c)
	if err != nil {
		return err
	}
	set.AddCategory(strings.TrimSpace(parent), strings.TrimSpace(name), kws)
	if err := saveAndSync(ctx, c, set); err != nil {
		return err
	}

	if parent != "" {
		fmt.Fprintf(out, "Added %s > %s\n", parent, name)
	} else {
		fmt.Fprintf(out, "Added %s\n", name)
	}
	fmt.Fprintln(out, "Run 'fintrack recategorize' to apply it to stored transactions.")
	return nil
}

func initDefaults(ctx context.Context, c *container.Container, out io.Writer) error {
	set, err := baseRules(ctx, c)
	if err != nil {
		return err
	}
	for _, cat := range store.DefaultRuleSet().Categories {
		set.AddCategory("", cat.Name, cat.Keywords)
		for _, sub := range cat.Subcategories {
			set.AddCategory(cat.Name, sub.Name, sub.Keywords)
		}
	}
	if err := saveAndSync(ctx, c, set); err != nil {
		return err
	}
	fmt.Fprintf(out, "Installed default categories into %s\n", c.GetRuleStore().RulesFile)
	return list(ctx, c, out)
}
