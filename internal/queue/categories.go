package queue

import "github.com/Veraticus/expense-queue/internal/model"

// FilterCategories returns the categories offered for items, as a tree.
// All-expense items get expense and typeless categories, all-income items
// get income and typeless ones, and a mixed set gets everything.
func FilterCategories(categories []model.Category, items []model.QueueItem) []model.CategoryNode {
	allowed := allowedCategoryType(items)

	filtered := make([]model.Category, 0, len(categories))
	for _, category := range categories {
		if allowed == model.CategoryTypeAny ||
			category.CategoryType == model.CategoryTypeAny ||
			category.CategoryType == allowed {
			filtered = append(filtered, category)
		}
	}
	return model.CategoryTree(filtered)
}

func allowedCategoryType(items []model.QueueItem) model.CategoryType {
	if len(items) == 0 {
		return model.CategoryTypeAny
	}
	expenses := 0
	for _, item := range items {
		if item.IsExpense() {
			expenses++
		}
	}
	switch expenses {
	case len(items):
		return model.CategoryTypeExpense
	case 0:
		return model.CategoryTypeIncome
	default:
		return model.CategoryTypeAny
	}
}

// CategoryOptions returns the category tree offered for the current targets.
func (c *Controller) CategoryOptions() []model.CategoryNode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FilterCategories(c.categories, c.targetsLocked())
}
