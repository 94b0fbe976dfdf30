package model

import "sort"

// CategoryType indicates whether a category is offered for income or expense items.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income items.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense items.
	CategoryTypeExpense CategoryType = "expense"
	// CategoryTypeAny is the zero value: a typeless category offered for every item.
	CategoryTypeAny CategoryType = ""
)

// Category represents an expense or income category.
type Category struct {
	ParentID     *int         `json:"parent_id"`
	Name         string       `json:"name"`
	Color        string       `json:"color,omitempty"`
	Icon         string       `json:"icon,omitempty"`
	CategoryType CategoryType `json:"category_type"`
	ID           int          `json:"id"`
}

// CategoryRef is the abbreviated category embedded in queue items and expenses.
type CategoryRef struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	ID    int    `json:"id"`
}

// CategoryInput carries the writable fields of a category.
type CategoryInput struct {
	Name         string       `json:"name,omitempty"`
	Color        string       `json:"color,omitempty"`
	Icon         string       `json:"icon,omitempty"`
	CategoryType CategoryType `json:"category_type,omitempty"`
	ParentID     *int         `json:"parent_id,omitempty"`
}

// CategoryNode is a category positioned in the one-level category tree.
type CategoryNode struct {
	Category
	Depth int
}

// CategoryTree orders categories as parents followed by their children.
// Children whose parent is absent from the list are rendered as top-level.
func CategoryTree(categories []Category) []CategoryNode {
	byID := make(map[int]bool, len(categories))
	for _, c := range categories {
		byID[c.ID] = true
	}

	var roots []Category
	children := make(map[int][]Category)
	for _, c := range categories {
		if c.ParentID != nil && *c.ParentID != c.ID && byID[*c.ParentID] {
			children[*c.ParentID] = append(children[*c.ParentID], c)
			continue
		}
		roots = append(roots, c)
	}

	byName := func(list []Category) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}
	byName(roots)

	nodes := make([]CategoryNode, 0, len(categories))
	emitted := make(map[int]bool, len(categories))
	for _, root := range roots {
		nodes = append(nodes, CategoryNode{Category: root})
		emitted[root.ID] = true
		kids := children[root.ID]
		byName(kids)
		for _, kid := range kids {
			nodes = append(nodes, CategoryNode{Category: kid, Depth: 1})
			emitted[kid.ID] = true
		}
	}

	// Deeper nesting is not supported; anything left over is shown top-level.
	for _, c := range categories {
		if !emitted[c.ID] {
			nodes = append(nodes, CategoryNode{Category: c})
		}
	}
	return nodes
}

// FindCategory returns the category with the given ID.
func FindCategory(categories []Category, id int) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
