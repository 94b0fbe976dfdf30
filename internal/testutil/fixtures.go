// Package testutil provides fixtures and fakes shared by the package tests:
// queue item builders, a recording in-memory API and an emulator-backed client.
package testutil

import (
	"fmt"
	"testing"

	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/shopspring/decimal"
)

// ItemOption customizes a fixture queue item.
type ItemOption func(*model.QueueItem)

// NewItem builds a queue item with the given id and signed amount.
func NewItem(id int, amount string, opts ...ItemOption) model.QueueItem {
	item := model.QueueItem{
		ID:              id,
		Amount:          decimal.RequireFromString(amount),
		Currency:        "GBP",
		TransactionDate: "2024-03-01",
		RawMerchantName: fmt.Sprintf("MERCHANT %d", id),
		RawDescription:  "card payment",
		Source:          "xlsx_import",
		Tags:            []string{},
	}
	for _, opt := range opts {
		opt(&item)
	}
	return item
}

// WithDate sets the transaction date.
func WithDate(date string) ItemOption {
	return func(q *model.QueueItem) { q.TransactionDate = date }
}

// WithRawMerchant sets the bank's merchant text.
func WithRawMerchant(name string) ItemOption {
	return func(q *model.QueueItem) { q.RawMerchantName = name }
}

// WithMerchant resolves the merchant alias.
func WithMerchant(id int, name string) ItemOption {
	return func(q *model.QueueItem) {
		q.MerchantAliasID = &id
		q.MerchantAlias = &model.MerchantRef{ID: id, DisplayName: name}
	}
}

// WithSuggestedMerchant proposes a merchant alias.
func WithSuggestedMerchant(id int, name string) ItemOption {
	return func(q *model.QueueItem) {
		q.SuggestedMerchantAlias = &model.MerchantRef{ID: id, DisplayName: name}
	}
}

// WithCategory resolves the category.
func WithCategory(id int, name string) ItemOption {
	return func(q *model.QueueItem) {
		q.CategoryID = &id
		q.Category = &model.CategoryRef{ID: id, Name: name}
	}
}

// WithSuggestedCategory proposes a category.
func WithSuggestedCategory(id int) ItemOption {
	return func(q *model.QueueItem) { q.SuggestedCategoryID = &id }
}

// WithSuggestedType proposes an expense type.
func WithSuggestedType(t model.ExpenseType) ItemOption {
	return func(q *model.QueueItem) { q.SuggestedType = t }
}

// WithTags sets the item's tags.
func WithTags(tags ...string) ItemOption {
	return func(q *model.QueueItem) { q.Tags = tags }
}

// Complete resolves both merchant and category.
func Complete() ItemOption {
	return func(q *model.QueueItem) {
		WithMerchant(100+q.ID, fmt.Sprintf("Merchant %d", q.ID))(q)
		WithCategory(1, "Groceries")(q)
	}
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// Categories returns a small category tree: two expense parents with
// children, an income category and a typeless one.
func Categories() []model.Category {
	return []model.Category{
		{ID: 1, Name: "Groceries", CategoryType: model.CategoryTypeExpense},
		{ID: 2, Name: "Transport", CategoryType: model.CategoryTypeExpense},
		{ID: 3, Name: "Trains", CategoryType: model.CategoryTypeExpense, ParentID: IntPtr(2)},
		{ID: 4, Name: "Supermarket", CategoryType: model.CategoryTypeExpense, ParentID: IntPtr(1)},
		{ID: 5, Name: "Salary", CategoryType: model.CategoryTypeIncome},
		{ID: 6, Name: "Transfers", CategoryType: model.CategoryTypeAny},
	}
}

// MustSet builds a duplicate set for item with raw candidates.
func MustSet(t *testing.T, item model.QueueItem, raw ...model.QueueItem) model.DuplicateSet {
	t.Helper()
	set := model.DuplicateSet{RawExpense: item}
	for _, r := range raw {
		set.Duplicates = append(set.Duplicates, model.Duplicate{
			ID:              r.ID,
			Type:            model.DuplicateRaw,
			Amount:          r.Amount,
			TransactionDate: r.TransactionDate,
			MerchantName:    r.RawMerchantName,
		})
	}
	if len(set.Duplicates) == 0 {
		t.Fatalf("duplicate set for item %d needs at least one candidate", item.ID)
	}
	return set
}
