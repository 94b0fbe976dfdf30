package model

// CountResponse is returned by GET /api/queue/count.
type CountResponse struct {
	Count int `json:"count"`
}

// IDsRequest carries the target ids of a bulk queue action.
type IDsRequest struct {
	RawExpenseIDs []int `json:"raw_expense_ids"`
}

// ProcessRequest resolves a single queue item into an expense.
type ProcessRequest struct {
	CategoryID      *int        `json:"category_id,omitempty"`
	MerchantAliasID *int        `json:"merchant_alias_id,omitempty"`
	MerchantName    string      `json:"merchant_name,omitempty"`
	Description     string      `json:"description,omitempty"`
	Type            ExpenseType `json:"type,omitempty"`
	Tags            []string    `json:"tags,omitempty"`
	RawExpenseID    int         `json:"raw_expense_id"`
}

// ProcessResponse is returned by POST /api/queue/process.
type ProcessResponse struct {
	Message   string `json:"message"`
	ExpenseID int    `json:"expense_id"`
}

// BulkSaveResponse is returned by POST /api/queue/bulk-save.
type BulkSaveResponse struct {
	Errors      []string `json:"errors"`
	SavedCount  int      `json:"saved_count"`
	FailedCount int      `json:"failed_count"`
}

// ArchiveResponse is returned by POST /api/queue/archive.
type ArchiveResponse struct {
	Message       string `json:"message,omitempty"`
	ArchivedCount int    `json:"archived_count"`
}

// MergeData is the expense template of a merge.
type MergeData struct {
	CategoryID   *int        `json:"category_id,omitempty"`
	MerchantName string      `json:"merchant_name"`
	Description  string      `json:"description,omitempty"`
	Type         ExpenseType `json:"type,omitempty"`
	Tags         []string    `json:"tags"`
}

// MergeRequest is the body of POST /api/queue/merge.
type MergeRequest struct {
	ExpenseData   MergeData `json:"expense_data"`
	RawExpenseIDs []int     `json:"raw_expense_ids"`
}

// MergeResponse is returned by POST /api/queue/merge.
type MergeResponse struct {
	Message               string `json:"message,omitempty"`
	ArchivedRawExpenseIDs []int  `json:"archived_raw_expense_ids"`
	ExpenseID             int    `json:"expense_id"`
}

// ApplyRulesResponse is returned by POST /api/queue/apply-rules.
type ApplyRulesResponse struct {
	Message   string `json:"message,omitempty"`
	Processed int    `json:"processed"`
	Discarded int    `json:"discarded"`
	Saved     int    `json:"saved"`
}

// CategoryTypeResponse is returned by GET /api/queue/category-type/{id}.
type CategoryTypeResponse struct {
	Type *ExpenseType `json:"type"`
}
