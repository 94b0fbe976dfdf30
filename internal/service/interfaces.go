// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"io"

	"github.com/Veraticus/expense-queue/internal/model"
)

// QueueAPI covers the /api/queue endpoints.
type QueueAPI interface {
	ListQueue(ctx context.Context, filter model.QueueFilter) ([]model.QueueItem, error)
	QueueCount(ctx context.Context) (int, error)
	UpdateQueueItem(ctx context.Context, id int, update model.QueueItemUpdate) error
	DeleteQueueItem(ctx context.Context, id int) error
	ProcessQueueItem(ctx context.Context, req model.ProcessRequest) (model.ProcessResponse, error)
	BulkSave(ctx context.Context, ids []int) (model.BulkSaveResponse, error)
	Archive(ctx context.Context, ids []int) (model.ArchiveResponse, error)
	Merge(ctx context.Context, req model.MergeRequest) (model.MergeResponse, error)
	FindDuplicates(ctx context.Context) (map[int]model.DuplicateSet, error)
	// CategoryType returns the expense type implied by a category, or nil
	// when the server has no opinion.
	CategoryType(ctx context.Context, categoryID int) (*model.ExpenseType, error)
	ApplyRules(ctx context.Context) (model.ApplyRulesResponse, error)
}

// CatalogAPI covers categories, merchants and tags.
type CatalogAPI interface {
	ListCategories(ctx context.Context, categoryType model.CategoryType) ([]model.Category, error)
	CreateCategory(ctx context.Context, input model.CategoryInput) (model.Category, error)
	UpdateCategory(ctx context.Context, id int, input model.CategoryInput) (model.Category, error)
	DeleteCategory(ctx context.Context, id int) error

	ListMerchants(ctx context.Context) ([]model.Merchant, error)
	SearchMerchants(ctx context.Context, query string) ([]model.Merchant, error)
	CreateMerchant(ctx context.Context, input model.MerchantInput) (model.Merchant, error)

	ListTags(ctx context.Context) ([]model.Tag, error)
	SearchTags(ctx context.Context, query string) ([]model.Tag, error)
	CreateTag(ctx context.Context, input model.TagInput) (model.Tag, error)
	DeleteTag(ctx context.Context, id int) error
}

// RulesAPI covers /api/rules.
type RulesAPI interface {
	ListRules(ctx context.Context) ([]model.Rule, error)
	CreateRule(ctx context.Context, input model.RuleInput) (model.Rule, error)
	UpdateRule(ctx context.Context, id int, input model.RuleInput) (model.Rule, error)
	DeleteRule(ctx context.Context, id int) error
}

// ImportAPI covers the bank-file import pipeline.
type ImportAPI interface {
	UploadImport(ctx context.Context, filename string, r io.Reader) (model.ImportResult, error)
	ImportHistory(ctx context.Context) ([]model.ImportRecord, error)
	ProcessImports(ctx context.Context) (model.ImportResult, error)
	ProcessAllImports(ctx context.Context) (model.ImportResult, error)
	UploadTickets(ctx context.Context, paths []string) (model.TicketUpload, error)
}

// NotificationsAPI covers push-notification expense capture.
type NotificationsAPI interface {
	ParseNotifications(ctx context.Context) (model.NotificationResult, error)
	AcceptAllNotifications(ctx context.Context) (model.NotificationResult, error)
	DiscardNotification(ctx context.Context, id int) error
}

// ExpensesAPI covers saved expenses and the periodic expense catalog.
type ExpensesAPI interface {
	ListExpenses(ctx context.Context, filter model.ExpenseFilter) (model.ExpensePage, error)
	GetExpense(ctx context.Context, id int) (model.Expense, error)
	UpdateExpense(ctx context.Context, id int, update model.ExpenseUpdate) (model.Expense, error)
	DeleteExpense(ctx context.Context, id int) error

	ListPeriodicExpenses(ctx context.Context, query string) ([]model.PeriodicExpense, error)
	CreatePeriodicExpense(ctx context.Context, name string) (model.PeriodicExpense, error)
	SuggestPeriodicExpense(ctx context.Context, name string) (model.PeriodicSuggestion, error)
}

// API is the full remote contract.
type API interface {
	QueueAPI
	CatalogAPI
	RulesAPI
	ImportAPI
	NotificationsAPI
	ExpensesAPI
}

// Prompter asks the user to confirm destructive actions.
type Prompter interface {
	// Confirm returns false, nil when the user declines.
	Confirm(ctx context.Context, message string) (bool, error)
}

// AutoConfirm is a Prompter that approves everything, used for --yes.
type AutoConfirm struct{}

// Confirm always approves.
func (AutoConfirm) Confirm(context.Context, string) (bool, error) {
	return true, nil
}
