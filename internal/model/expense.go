package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a resolved, saved transaction.
type Expense struct {
	Amount          decimal.Decimal `json:"amount"`
	MerchantAlias   *MerchantRef    `json:"merchant_alias"`
	Category        *CategoryRef    `json:"category"`
	RawExpenseID    *int            `json:"raw_expense_id"`
	TransactionDate string          `json:"transaction_date"`
	Currency        string          `json:"currency"`
	Description     string          `json:"description,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Type            ExpenseType     `json:"type,omitempty"`
	Tags            []Tag           `json:"tags"`
	ID              int             `json:"id"`
	Archived        bool            `json:"archived"`
}

// ExpenseUpdate is the body of PUT /api/expenses/{id}. Nil fields are left
// unchanged; a non-nil Tags replaces the whole tag list.
type ExpenseUpdate struct {
	MerchantAliasID *int         `json:"merchant_alias_id,omitempty"`
	CategoryID      *int         `json:"category_id,omitempty"`
	Type            *ExpenseType `json:"type,omitempty"`
	TransactionDate *string      `json:"transaction_date,omitempty"`
	Description     *string      `json:"description,omitempty"`
	Notes           *string      `json:"notes,omitempty"`
	Tags            *[]string    `json:"tags,omitempty"`
}

// IsZero reports whether the update changes nothing.
func (u ExpenseUpdate) IsZero() bool {
	return u.MerchantAliasID == nil && u.CategoryID == nil && u.Type == nil &&
		u.TransactionDate == nil && u.Description == nil && u.Notes == nil && u.Tags == nil
}

// PeriodicExpense names a recurring expense such as a subscription or rent.
type PeriodicExpense struct {
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	ID        int       `json:"id"`
}

// PeriodicSuggestion is the best fuzzy match for a name, if any.
type PeriodicSuggestion struct {
	Suggestion      *string          `json:"suggestion"`
	PeriodicExpense *PeriodicExpense `json:"periodic_expense"`
	Confidence      int              `json:"confidence"`
}

// TicketUpload is the response of POST /api/upload-tickets.
type TicketUpload struct {
	Message string   `json:"message"`
	Files   []string `json:"files"`
}

// ExpenseFilter narrows GET /api/expenses.
type ExpenseFilter struct {
	CategoryID *int
	DateFrom   string
	DateTo     string
	Search     string
	Skip       int
	Limit      int
}

// ExpensePage is one page of GET /api/expenses.
type ExpensePage struct {
	Expenses []Expense `json:"expenses"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// ImportRecord is one row of the import history.
type ImportRecord struct {
	ImportedAt      time.Time `json:"imported_at"`
	Filename        string    `json:"filename"`
	Status          string    `json:"status"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	RecordsImported int       `json:"records_imported"`
	RecordsSkipped  int       `json:"records_skipped"`
	ID              int       `json:"id"`
}

// ImportResult is returned by uploads and processing runs.
type ImportResult struct {
	Message   string `json:"message"`
	Filename  string `json:"filename,omitempty"`
	Status    string `json:"status,omitempty"`
	Imported  int    `json:"imported"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
}

// NotificationResult summarizes a notifications endpoint call.
type NotificationResult struct {
	Message   string `json:"message"`
	Parsed    int    `json:"parsed"`
	Accepted  int    `json:"accepted"`
	Discarded int    `json:"discarded"`
}
