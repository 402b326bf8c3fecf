package models

import (
	"fmt"
	"sort"
	"strings"
)

// CategoryLabel is the human-readable (category, subcategory) pair stored
// with a transaction and mirrored to the spreadsheet. Subcategory is empty
// when a root category matched directly.
type CategoryLabel struct {
	Category    string
	Subcategory string
}

// UncategorizedLabel is the sentinel label for transactions no rule matched.
var UncategorizedLabel = CategoryLabel{Category: CategoryUncategorized}

// IsUncategorized reports whether the label is the sentinel.
func (l CategoryLabel) IsUncategorized() bool {
	return l.Category == "" || l == UncategorizedLabel
}

func (l CategoryLabel) String() string {
	if l.Subcategory == "" {
		if l.Category == "" {
			return CategoryUncategorized
		}
		return l.Category
	}
	return l.Category + " > " + l.Subcategory
}

// Category is a flat category row as persisted by the store.
type Category struct {
	ID       CategoryID
	Name     string
	ParentID *CategoryID
	Keywords []string
	Position int
}

// CategoryNode is a category inside a CategoryForest. Only root nodes may
// have children.
type CategoryNode struct {
	ID       CategoryID
	Name     string
	Keywords []string
	Children []CategoryNode
}

// CategoryForest is the two-level category tree: root categories, each
// owning an ordered list of leaf subcategories. Order is definition order
// and is the canonical tie-break for keyword matching.
type CategoryForest struct {
	Roots []CategoryNode
}

// BuildForest assembles flat category rows into a forest. Rows are ordered
// by Position, then ID. A row whose parent is itself a child, or whose parent
// is unknown, is rejected.
func BuildForest(categories []Category) (CategoryForest, error) {
	rows := make([]Category, len(categories))
	copy(rows, categories)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Position != rows[j].Position {
			return rows[i].Position < rows[j].Position
		}
		return rows[i].ID < rows[j].ID
	})

	var forest CategoryForest
	rootIndex := make(map[CategoryID]int)
	for _, c := range rows {
		if c.ParentID != nil {
			continue
		}
		rootIndex[c.ID] = len(forest.Roots)
		forest.Roots = append(forest.Roots, CategoryNode{ID: c.ID, Name: c.Name, Keywords: c.Keywords})
	}

	for _, c := range rows {
		if c.ParentID == nil {
			continue
		}
		idx, ok := rootIndex[*c.ParentID]
		if !ok {
			return CategoryForest{}, fmt.Errorf("category %q: parent %d is not a root category", c.Name, *c.ParentID)
		}
		forest.Roots[idx].Children = append(forest.Roots[idx].Children,
			CategoryNode{ID: c.ID, Name: c.Name, Keywords: c.Keywords})
	}

	return forest, forest.Validate()
}

// Validate checks the forest invariants: names are present and unique among
// siblings, and subcategories have no children of their own.
func (f CategoryForest) Validate() error {
	seenRoots := make(map[string]bool)
	for _, root := range f.Roots {
		name := strings.ToLower(strings.TrimSpace(root.Name))
		if name == "" {
			return fmt.Errorf("root category with empty name")
		}
		if seenRoots[name] {
			return fmt.Errorf("duplicate root category %q", root.Name)
		}
		seenRoots[name] = true

		seenChildren := make(map[string]bool)
		for _, child := range root.Children {
			childName := strings.ToLower(strings.TrimSpace(child.Name))
			if childName == "" {
				return fmt.Errorf("subcategory of %q with empty name", root.Name)
			}
			if seenChildren[childName] {
				return fmt.Errorf("duplicate subcategory %q under %q", child.Name, root.Name)
			}
			seenChildren[childName] = true
			if len(child.Children) > 0 {
				return fmt.Errorf("subcategory %q under %q cannot have children", child.Name, root.Name)
			}
		}
	}
	return nil
}

// LabelFor returns the label of the category with the given id.
func (f CategoryForest) LabelFor(id CategoryID) (CategoryLabel, bool) {
	for _, root := range f.Roots {
		if root.ID == id {
			return CategoryLabel{Category: root.Name}, true
		}
		for _, child := range root.Children {
			if child.ID == id {
				return CategoryLabel{Category: root.Name, Subcategory: child.Name}, true
			}
		}
	}
	return CategoryLabel{}, false
}

// Find looks a category up by label.
func (f CategoryForest) Find(label CategoryLabel) (CategoryNode, bool) {
	for _, root := range f.Roots {
		if !strings.EqualFold(root.Name, label.Category) {
			continue
		}
		if label.Subcategory == "" {
			return root, true
		}
		for _, child := range root.Children {
			if strings.EqualFold(child.Name, label.Subcategory) {
				return child, true
			}
		}
	}
	return CategoryNode{}, false
}

// Leaves returns every subcategory label in depth-first order.
func (f CategoryForest) Leaves() []CategoryLabel {
	var out []CategoryLabel
	for _, root := range f.Roots {
		for _, child := range root.Children {
			out = append(out, CategoryLabel{Category: root.Name, Subcategory: child.Name})
		}
	}
	return out
}

// Size returns the number of categories in the forest.
func (f CategoryForest) Size() int {
	n := len(f.Roots)
	for _, root := range f.Roots {
		n += len(root.Children)
	}
	return n
}
