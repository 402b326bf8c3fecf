package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idPtr(id CategoryID) *CategoryID { return &id }

func TestBuildForest(t *testing.T) {
	rows := []Category{
		{ID: 3, Name: "Groceries", ParentID: idPtr(1), Keywords: []string{"walmart"}, Position: 0},
		{ID: 2, Name: "Transportation", Position: 1},
		{ID: 1, Name: "Food", Position: 0},
		{ID: 4, Name: "Dining", ParentID: idPtr(1), Position: 1},
		{ID: 5, Name: "Gas", ParentID: idPtr(2), Position: 0},
	}

	forest, err := BuildForest(rows)
	require.NoError(t, err)
	require.Len(t, forest.Roots, 2)
	assert.Equal(t, "Food", forest.Roots[0].Name)
	assert.Equal(t, "Transportation", forest.Roots[1].Name)
	require.Len(t, forest.Roots[0].Children, 2)
	assert.Equal(t, "Groceries", forest.Roots[0].Children[0].Name)
	assert.Equal(t, "Dining", forest.Roots[0].Children[1].Name)
	assert.Equal(t, 5, forest.Size())

	label, ok := forest.LabelFor(3)
	require.True(t, ok)
	assert.Equal(t, CategoryLabel{Category: "Food", Subcategory: "Groceries"}, label)

	label, ok = forest.LabelFor(2)
	require.True(t, ok)
	assert.Equal(t, CategoryLabel{Category: "Transportation"}, label)

	_, ok = forest.LabelFor(99)
	assert.False(t, ok)
}

func TestBuildForest_RejectsThirdLevel(t *testing.T) {
	rows := []Category{
		{ID: 1, Name: "Food"},
		{ID: 2, Name: "Groceries", ParentID: idPtr(1)},
		{ID: 3, Name: "Organic", ParentID: idPtr(2)},
	}
	_, err := BuildForest(rows)
	assert.Error(t, err)
}

func TestCategoryForest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		forest  CategoryForest
		wantErr bool
	}{
		{
			name:   "valid",
			forest: CategoryForest{Roots: []CategoryNode{{Name: "Food", Children: []CategoryNode{{Name: "Coffee"}}}}},
		},
		{
			name:    "duplicate roots",
			forest:  CategoryForest{Roots: []CategoryNode{{Name: "Food"}, {Name: "food"}}},
			wantErr: true,
		},
		{
			name:    "duplicate siblings",
			forest:  CategoryForest{Roots: []CategoryNode{{Name: "Food", Children: []CategoryNode{{Name: "Coffee"}, {Name: "Coffee"}}}}},
			wantErr: true,
		},
		{
			name:   "same leaf name under different roots",
			forest: CategoryForest{Roots: []CategoryNode{{Name: "Food", Children: []CategoryNode{{Name: "Other"}}}, {Name: "Health", Children: []CategoryNode{{Name: "Other"}}}}},
		},
		{
			name: "grandchildren",
			forest: CategoryForest{Roots: []CategoryNode{{Name: "Food", Children: []CategoryNode{
				{Name: "Coffee", Children: []CategoryNode{{Name: "Espresso"}}},
			}}}},
			wantErr: true,
		},
		{
			name:    "empty name",
			forest:  CategoryForest{Roots: []CategoryNode{{Name: " "}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.forest.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCategoryForest_FindAndLeaves(t *testing.T) {
	forest := CategoryForest{Roots: []CategoryNode{
		{ID: 1, Name: "Food", Children: []CategoryNode{{ID: 2, Name: "Coffee"}, {ID: 3, Name: "Dining"}}},
		{ID: 4, Name: "Health"},
	}}

	node, ok := forest.Find(CategoryLabel{Category: "food", Subcategory: "dining"})
	require.True(t, ok)
	assert.Equal(t, CategoryID(3), node.ID)

	node, ok = forest.Find(CategoryLabel{Category: "Health"})
	require.True(t, ok)
	assert.Equal(t, CategoryID(4), node.ID)

	_, ok = forest.Find(CategoryLabel{Category: "Health", Subcategory: "Pharmacy"})
	assert.False(t, ok)

	assert.Equal(t, []CategoryLabel{
		{Category: "Food", Subcategory: "Coffee"},
		{Category: "Food", Subcategory: "Dining"},
	}, forest.Leaves())
}

func TestCategoryLabel_String(t *testing.T) {
	assert.Equal(t, "Food > Groceries", CategoryLabel{Category: "Food", Subcategory: "Groceries"}.String())
	assert.Equal(t, "Food", CategoryLabel{Category: "Food"}.String())
	assert.Equal(t, CategoryUncategorized, CategoryLabel{}.String())
	assert.True(t, UncategorizedLabel.IsUncategorized())
	assert.True(t, CategoryLabel{}.IsUncategorized())
	assert.False(t, CategoryLabel{Category: "Food"}.IsUncategorized())
}
