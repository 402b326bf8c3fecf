package categorizer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
)

// Suggester proposes a label for a description the keyword rules left
// uncategorized. Implementations must only pick labels present in forest.
type Suggester interface {
	Suggest(ctx context.Context, description string, forest models.CategoryForest) (models.CategoryLabel, error)
}

// Suggestion pairs an uncategorized description with a proposed label.
type Suggestion struct {
	Description string
	Label       models.CategoryLabel
	Occurrences int
}

// SuggestAll asks s for a label for every distinct description. Nothing is
// written anywhere; callers decide whether to turn suggestions into keywords.
func SuggestAll(ctx context.Context, s Suggester, forest models.CategoryForest, descriptions []string, logger logging.Logger) ([]Suggestion, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	counts := make(map[string]int)
	for _, d := range descriptions {
		counts[strings.TrimSpace(d)]++
	}
	distinct := make([]string, 0, len(counts))
	for d := range counts {
		if d != "" {
			distinct = append(distinct, d)
		}
	}
	sort.Strings(distinct)

	out := make([]Suggestion, 0, len(distinct))
	for _, d := range distinct {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		label, err := s.Suggest(ctx, d, forest)
		if err != nil {
			logger.WithError(err).Warn("Suggestion failed",
				logging.F("description", d))
			continue
		}
		out = append(out, Suggestion{Description: d, Label: label, Occurrences: counts[d]})
	}
	return out, nil
}

// buildPrompt lists the leaf categories the model may choose from.
func buildPrompt(description string, forest models.CategoryForest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Categorize the following bank transaction description:\n%s\n\n", description)
	b.WriteString("Assign it to exactly one of these categories:\n")
	for _, leaf := range forest.Leaves() {
		fmt.Fprintf(&b, "- %s\n", leaf.String())
	}
	fmt.Fprintf(&b, "\nIf none fits, answer %s.\n", models.CategoryUncategorized)
	b.WriteString("Respond in this format:\nCategory: [Category > Subcategory]\n")
	return b.String()
}

// parseSuggestion extracts a label from a model answer and keeps it only if
// it exists in forest.
func parseSuggestion(response string, forest models.CategoryForest) models.CategoryLabel {
	answer := ""
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Category:") {
			answer = strings.TrimSpace(strings.TrimPrefix(line, "Category:"))
			break
		}
	}
	if answer == "" {
		answer = strings.TrimSpace(response)
	}
	answer = strings.TrimSpace(strings.Trim(answer, "[]*`\"."))

	parts := strings.SplitN(answer, ">", 2)
	label := models.CategoryLabel{Category: strings.TrimSpace(parts[0])}
	if len(parts) == 2 {
		label.Subcategory = strings.TrimSpace(parts[1])
	}

	node, ok := forest.Find(label)
	if !ok {
		return models.UncategorizedLabel
	}
	resolved, _ := forest.LabelFor(node.ID)
	return resolved
}
