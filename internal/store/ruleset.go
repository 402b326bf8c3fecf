package store

import (
	"strings"

	"fjacquet/fintrack/internal/models"
)

// SubcategoryRule is a leaf category and its keywords.
type SubcategoryRule struct {
	Name     string   `yaml:"name" validate:"required,category_name"`
	Keywords []string `yaml:"keywords,omitempty" validate:"dive,keyword"`
}

// CategoryRule is a root category with its own keywords and its leaves.
type CategoryRule struct {
	Name          string            `yaml:"name" validate:"required,category_name"`
	Keywords      []string          `yaml:"keywords,omitempty" validate:"dive,keyword"`
	Subcategories []SubcategoryRule `yaml:"subcategories,omitempty" validate:"dive"`
}

// RuleSet is the keyword rule file. Definition order is matching order.
type RuleSet struct {
	Categories []CategoryRule `yaml:"categories" validate:"dive"`
}

// Forest converts the rule set to a category forest without ids.
func (r RuleSet) Forest() models.CategoryForest {
	var f models.CategoryForest
	for _, c := range r.Categories {
		root := models.CategoryNode{Name: c.Name, Keywords: c.Keywords}
		for _, s := range c.Subcategories {
			root.Children = append(root.Children, models.CategoryNode{Name: s.Name, Keywords: s.Keywords})
		}
		f.Roots = append(f.Roots, root)
	}
	return f
}

// RuleSetFromForest converts a stored forest back to a rule set.
func RuleSetFromForest(f models.CategoryForest) RuleSet {
	var r RuleSet
	for _, root := range f.Roots {
		c := CategoryRule{Name: root.Name, Keywords: root.Keywords}
		for _, child := range root.Children {
			c.Subcategories = append(c.Subcategories, SubcategoryRule{Name: child.Name, Keywords: child.Keywords})
		}
		r.Categories = append(r.Categories, c)
	}
	return r
}

// AddCategory adds name under parent (a root when parent is empty), creating
// the parent on demand. Keywords are merged into an existing category.
func (r *RuleSet) AddCategory(parent, name string, keywords []string) {
	if parent == "" {
		idx := r.rootIndex(name)
		if idx < 0 {
			r.Categories = append(r.Categories, CategoryRule{Name: name})
			idx = len(r.Categories) - 1
		}
		r.Categories[idx].Keywords = mergeKeywords(r.Categories[idx].Keywords, keywords)
		return
	}

	idx := r.rootIndex(parent)
	if idx < 0 {
		r.Categories = append(r.Categories, CategoryRule{Name: parent})
		idx = len(r.Categories) - 1
	}
	root := &r.Categories[idx]
	for i := range root.Subcategories {
		if strings.EqualFold(root.Subcategories[i].Name, name) {
			root.Subcategories[i].Keywords = mergeKeywords(root.Subcategories[i].Keywords, keywords)
			return
		}
	}
	root.Subcategories = append(root.Subcategories, SubcategoryRule{Name: name, Keywords: mergeKeywords(nil, keywords)})
}

func (r RuleSet) rootIndex(name string) int {
	for i, c := range r.Categories {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

func mergeKeywords(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	out := make([]string, 0, len(existing)+len(added))
	for _, kw := range existing {
		seen[strings.ToLower(kw)] = true
		out = append(out, kw)
	}
	for _, kw := range added {
		kw = strings.TrimSpace(kw)
		if kw == "" || seen[strings.ToLower(kw)] {
			continue
		}
		seen[strings.ToLower(kw)] = true
		out = append(out, kw)
	}
	return out
}

// DefaultRuleSet returns the built-in category tree installed by
// "categories init".
func DefaultRuleSet() RuleSet {
	return RuleSet{Categories: []CategoryRule{
		{Name: "Food", Subcategories: []SubcategoryRule{
			{Name: "Groceries", Keywords: []string{"loblaws", "metro", "walmart", "sobeys", "safeway", "t&t", "supermarket"}},
			{Name: "Dining", Keywords: []string{"restaurant", "pizza", "mcdonald", "tim horton", "starbucks", "uber eats", "doordash", "osmow", "shawerma", "shozan"}},
			{Name: "Coffee", Keywords: []string{"starbucks", "tim hortons", "second cup", "coffee"}},
		}},
		{Name: "Transportation", Subcategories: []SubcategoryRule{
			{Name: "Gas", Keywords: []string{"shell", "esso", "petro", "chevron", "gas station"}},
			{Name: "Transit", Keywords: []string{"ttc", "presto", "transit", "communauto"}},
			{Name: "Ride Share", Keywords: []string{"uber", "lyft"}},
		}},
		{Name: "Shopping", Subcategories: []SubcategoryRule{
			{Name: "Retail", Keywords: []string{"amazon", "bestbuy", "walmart", "shoppers drug mart"}},
			{Name: "Clothing", Keywords: []string{"zara", "h&m", "uniqlo", "gap"}},
			{Name: "Electronics", Keywords: []string{"apple", "bestbuy", "canada computers"}},
		}},
		{Name: "Health", Subcategories: []SubcategoryRule{
			{Name: "Pharmacy", Keywords: []string{"shoppers drug mart", "rexall", "pharmacy"}},
			{Name: "Medical", Keywords: []string{"hospital", "clinic", "doctor"}},
			{Name: "Cannabis", Keywords: []string{"value buds", "tokyo smoke"}},
		}},
		{Name: "Education", Subcategories: []SubcategoryRule{
			{Name: "Tuition", Keywords: []string{"uoft", "university", "college"}},
			{Name: "Books", Keywords: []string{"indigo", "chapters", "bookstore"}},
			{Name: "Supplies", Keywords: []string{"staples", "grand & toy"}},
		}},
		{Name: "Entertainment", Subcategories: []SubcategoryRule{
			{Name: "Streaming", Keywords: []string{"netflix", "spotify", "disney", "amazon prime"}},
			{Name: "Movies", Keywords: []string{"cineplex", "theatre"}},
			{Name: "Gaming", Keywords: []string{"steam", "playstation", "xbox"}},
		}},
		{Name: "Utilities", Subcategories: []SubcategoryRule{
			{Name: "Internet", Keywords: []string{"rogers", "bell", "telus"}},
			{Name: "Phone", Keywords: []string{"rogers", "bell", "fido", "koodo"}},
			{Name: "Hydro", Keywords: []string{"toronto hydro", "enbridge"}},
		}},
	}}
}
