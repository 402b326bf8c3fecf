// Package categorizer assigns a (category, subcategory) label to transaction
// descriptions by keyword matching against the category forest.
//
// Resolution order: subcategories are tried depth-first in definition order
// (roots in order, then each root's children in order) and the first one with
// a matching keyword wins. Only when no subcategory matches are the roots'
// own keywords tried, in the same order. Otherwise the result is
// Uncategorized.
package categorizer

import (
	"strings"

	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
)

// Match is the result of categorizing one description.
type Match struct {
	Label      models.CategoryLabel
	CategoryID *models.CategoryID
	Keyword    string
	// Candidates is the number of subcategories whose keywords matched.
	Candidates int
}

// Ambiguous reports whether more than one subcategory matched.
func (m Match) Ambiguous() bool {
	return m.Candidates > 1
}

// Uncategorized reports whether no rule matched.
func (m Match) Uncategorized() bool {
	return m.CategoryID == nil
}

// keyword is matched against the normalized description, or literally
// against the folded one when it contains punctuation ("t&t", "h&m").
type keyword struct {
	raw     string
	text    string
	literal bool
}

type subject struct {
	normalized string
	folded     string
}

type entry struct {
	id       models.CategoryID
	label    models.CategoryLabel
	keywords []keyword
}

// Categorizer holds the normalized keyword index of one category forest
// snapshot. Build a new one when the forest changes.
type Categorizer struct {
	leaves []entry
	roots  []entry
	logger logging.Logger
}

// New indexes forest.
func New(forest models.CategoryForest, logger logging.Logger) *Categorizer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	c := &Categorizer{logger: logger}
	for _, root := range forest.Roots {
		for _, child := range root.Children {
			c.leaves = append(c.leaves, newEntry(child, models.CategoryLabel{Category: root.Name, Subcategory: child.Name}))
		}
	}
	for _, root := range forest.Roots {
		c.roots = append(c.roots, newEntry(root, models.CategoryLabel{Category: root.Name}))
	}
	return c
}

func newEntry(node models.CategoryNode, label models.CategoryLabel) entry {
	e := entry{id: node.ID, label: label}
	for _, kw := range node.Keywords {
		k := keyword{raw: kw, literal: hasPunct(kw)}
		if k.literal {
			k.text = fold(kw)
		} else {
			k.text = Normalize(kw)
		}
		if Normalize(kw) == "" {
			continue
		}
		e.keywords = append(e.keywords, k)
	}
	return e
}

func (e entry) match(d subject) (string, bool) {
	for _, kw := range e.keywords {
		target := d.normalized
		if kw.literal {
			target = d.folded
		}
		if strings.Contains(target, kw.text) {
			return kw.raw, true
		}
	}
	return "", false
}

// Categorize returns the best match for description.
func (c *Categorizer) Categorize(desc string) Match {
	d := subject{normalized: Normalize(desc), folded: fold(desc)}
	if d.normalized == "" {
		return Match{Label: models.UncategorizedLabel}
	}

	var best *Match
	candidates := 0
	for _, leaf := range c.leaves {
		kw, ok := leaf.match(d)
		if !ok {
			continue
		}
		candidates++
		if best == nil {
			id := leaf.id
			best = &Match{Label: leaf.label, CategoryID: &id, Keyword: kw}
		}
	}
	if best != nil {
		best.Candidates = candidates
		if best.Ambiguous() {
			c.logger.Debug("Description matched several subcategories",
				logging.F("description", desc),
				logging.F(logging.FieldCategory, best.Label.String()),
				logging.F("candidates", candidates))
		}
		return *best
	}

	for _, root := range c.roots {
		if kw, ok := root.match(d); ok {
			id := root.id
			return Match{Label: root.label, CategoryID: &id, Keyword: kw}
		}
	}
	return Match{Label: models.UncategorizedLabel}
}

// Categorize is a one-off helper that indexes forest for a single call.
func Categorize(forest models.CategoryForest, description string) Match {
	return New(forest, nil).Categorize(description)
}
