package testutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/service"
)

var _ service.API = (*FakeAPI)(nil)

// Call is one request seen by FakeAPI, described the way it would hit the wire.
type Call struct {
	Body   any
	Method string
	Path   string
}

func (c Call) String() string {
	return c.Method + " " + c.Path
}

// FakeAPI is an in-memory, call-recording implementation of service.API.
// Mutations change Items the way the real server would.
type FakeAPI struct {
	CategoryTypes map[int]model.ExpenseType
	DuplicateSets map[int]model.DuplicateSet
	// Fail makes the call with the given "METHOD /path" fail.
	Fail map[string]error
	// BulkSaveOverride, when set, is returned by BulkSave instead of saving everything.
	BulkSaveOverride *model.BulkSaveResponse
	// BeforeCall runs before every recorded call, outside the lock.
	BeforeCall func(Call)

	Items      []model.QueueItem
	Categories []model.Category
	Merchants  []model.Merchant
	Tags       []model.Tag
	Rules      []model.Rule
	Expenses   []model.Expense
	Imports    []model.ImportRecord
	Periodic   []model.PeriodicExpense
	Uploaded   []string
	Tickets    []string

	// RulesResult is returned by ApplyRules.
	RulesResult model.ApplyRulesResponse

	calls  []Call
	mu     sync.Mutex
	nextID int
}

// NewFakeAPI creates a fake serving items.
func NewFakeAPI(items ...model.QueueItem) *FakeAPI {
	return &FakeAPI{
		Items:         items,
		Categories:    Categories(),
		CategoryTypes: make(map[int]model.ExpenseType),
		DuplicateSets: make(map[int]model.DuplicateSet),
		Fail:          make(map[string]error),
		nextID:        1000,
	}
}

// Calls returns the recorded calls in order.
func (f *FakeAPI) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallStrings returns the recorded calls as "METHOD /path" strings.
func (f *FakeAPI) CallStrings() []string {
	calls := f.Calls()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.String())
	}
	return out
}

// Mutations returns the recorded non-GET calls.
func (f *FakeAPI) Mutations() []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method != http.MethodGet {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls.
func (f *FakeAPI) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// record logs the call and returns its injected failure, if any.
func (f *FakeAPI) record(method, path string, body any) error {
	call := Call{Method: method, Path: path, Body: body}
	if f.BeforeCall != nil {
		f.BeforeCall(call)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if err, ok := f.Fail[call.String()]; ok {
		return err
	}
	return nil
}

func (f *FakeAPI) indexLocked(id int) int {
	for i, item := range f.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (f *FakeAPI) removeLocked(ids ...int) {
	gone := make(map[int]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}
	kept := f.Items[:0]
	for _, item := range f.Items {
		if !gone[item.ID] {
			kept = append(kept, item)
		}
	}
	f.Items = kept
}

func notFound(method, path string) error {
	return &common.APIError{Method: method, Path: path, Status: http.StatusNotFound, Detail: "Raw expense not found"}
}

// ListQueue returns every item the filter matches.
func (f *FakeAPI) ListQueue(_ context.Context, filter model.QueueFilter) ([]model.QueueItem, error) {
	if err := f.record(http.MethodGet, "/api/queue/all", filter); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.QueueItem, 0, len(f.Items))
	for _, item := range f.Items {
		if filter.Matches(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// QueueCount returns the number of items.
func (f *FakeAPI) QueueCount(context.Context) (int, error) {
	if err := f.record(http.MethodGet, "/api/queue/count", nil); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Items), nil
}

// UpdateQueueItem applies update to the stored item.
func (f *FakeAPI) UpdateQueueItem(_ context.Context, id int, update model.QueueItemUpdate) error {
	path := fmt.Sprintf("/api/queue/%d", id)
	if err := f.record(http.MethodPut, path, update); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(id)
	if i < 0 {
		return notFound(http.MethodPut, path)
	}
	update.Apply(&f.Items[i])
	return nil
}

// DeleteQueueItem removes the stored item.
func (f *FakeAPI) DeleteQueueItem(_ context.Context, id int) error {
	path := fmt.Sprintf("/api/queue/%d", id)
	if err := f.record(http.MethodDelete, path, nil); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.indexLocked(id) < 0 {
		return notFound(http.MethodDelete, path)
	}
	f.removeLocked(id)
	return nil
}

// ProcessQueueItem removes the item and returns a new expense id.
func (f *FakeAPI) ProcessQueueItem(_ context.Context, req model.ProcessRequest) (model.ProcessResponse, error) {
	if err := f.record(http.MethodPost, "/api/queue/process", req); err != nil {
		return model.ProcessResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.indexLocked(req.RawExpenseID) < 0 {
		return model.ProcessResponse{}, notFound(http.MethodPost, "/api/queue/process")
	}
	f.removeLocked(req.RawExpenseID)
	f.nextID++
	return model.ProcessResponse{Message: "Raw expense processed successfully", ExpenseID: f.nextID}, nil
}

// BulkSave removes the items, or returns BulkSaveOverride when set.
func (f *FakeAPI) BulkSave(_ context.Context, ids []int) (model.BulkSaveResponse, error) {
	if err := f.record(http.MethodPost, "/api/queue/bulk-save", model.IDsRequest{RawExpenseIDs: ids}); err != nil {
		return model.BulkSaveResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.BulkSaveOverride != nil {
		return *f.BulkSaveOverride, nil
	}
	f.removeLocked(ids...)
	return model.BulkSaveResponse{SavedCount: len(ids), Errors: []string{}}, nil
}

// Archive removes the items.
func (f *FakeAPI) Archive(_ context.Context, ids []int) (model.ArchiveResponse, error) {
	if err := f.record(http.MethodPost, "/api/queue/archive", model.IDsRequest{RawExpenseIDs: ids}); err != nil {
		return model.ArchiveResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeLocked(ids...)
	return model.ArchiveResponse{ArchivedCount: len(ids)}, nil
}

// Merge removes the items and returns a new expense id.
func (f *FakeAPI) Merge(_ context.Context, req model.MergeRequest) (model.MergeResponse, error) {
	if err := f.record(http.MethodPost, "/api/queue/merge", req); err != nil {
		return model.MergeResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeLocked(req.RawExpenseIDs...)
	f.nextID++
	return model.MergeResponse{ExpenseID: f.nextID, ArchivedRawExpenseIDs: req.RawExpenseIDs}, nil
}

// FindDuplicates returns the configured sets, pruned to items that still exist.
func (f *FakeAPI) FindDuplicates(context.Context) (map[int]model.DuplicateSet, error) {
	if err := f.record(http.MethodGet, "/api/queue/find-duplicates", nil); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int]model.DuplicateSet)
	for id, set := range f.DuplicateSets {
		if f.indexLocked(id) < 0 {
			continue
		}
		kept := set.Duplicates[:0:0]
		for _, d := range set.Duplicates {
			if d.Type == model.DuplicateRaw && f.indexLocked(d.ID) < 0 {
				continue
			}
			kept = append(kept, d)
		}
		if len(kept) == 0 {
			continue
		}
		set.Duplicates = kept
		out[id] = set
	}
	return out, nil
}

// CategoryType returns the configured type for the category, if any.
func (f *FakeAPI) CategoryType(_ context.Context, categoryID int) (*model.ExpenseType, error) {
	if err := f.record(http.MethodGet, fmt.Sprintf("/api/queue/category-type/%d", categoryID), nil); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.CategoryTypes[categoryID]; ok {
		return &t, nil
	}
	return nil, nil
}

// ApplyRules returns RulesResult.
func (f *FakeAPI) ApplyRules(context.Context) (model.ApplyRulesResponse, error) {
	if err := f.record(http.MethodPost, "/api/queue/apply-rules", nil); err != nil {
		return model.ApplyRulesResponse{}, err
	}
	return f.RulesResult, nil
}

// ListCategories returns categories of the given type and typeless ones.
func (f *FakeAPI) ListCategories(_ context.Context, categoryType model.CategoryType) ([]model.Category, error) {
	if err := f.record(http.MethodGet, "/api/categories", categoryType); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Category
	for _, c := range f.Categories {
		if categoryType == model.CategoryTypeAny || c.CategoryType == categoryType {
			out = append(out, c)
		}
	}
	return out, nil
}

// CreateCategory stores a category.
func (f *FakeAPI) CreateCategory(_ context.Context, input model.CategoryInput) (model.Category, error) {
	if err := f.record(http.MethodPost, "/api/categories", input); err != nil {
		return model.Category{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := model.Category{ID: f.nextID, Name: input.Name, Color: input.Color, Icon: input.Icon, CategoryType: input.CategoryType, ParentID: input.ParentID}
	f.Categories = append(f.Categories, c)
	return c, nil
}

// UpdateCategory changes a stored category.
func (f *FakeAPI) UpdateCategory(_ context.Context, id int, input model.CategoryInput) (model.Category, error) {
	path := fmt.Sprintf("/api/categories/%d", id)
	if err := f.record(http.MethodPut, path, input); err != nil {
		return model.Category{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Categories {
		if f.Categories[i].ID != id {
			continue
		}
		if input.Name != "" {
			f.Categories[i].Name = input.Name
		}
		if input.Color != "" {
			f.Categories[i].Color = input.Color
		}
		if input.CategoryType != "" {
			f.Categories[i].CategoryType = input.CategoryType
		}
		return f.Categories[i], nil
	}
	return model.Category{}, &common.APIError{Method: http.MethodPut, Path: path, Status: http.StatusNotFound, Detail: "Category not found"}
}

// DeleteCategory removes a stored category.
func (f *FakeAPI) DeleteCategory(_ context.Context, id int) error {
	if err := f.record(http.MethodDelete, fmt.Sprintf("/api/categories/%d", id), nil); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.Categories[:0]
	for _, c := range f.Categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	f.Categories = kept
	return nil
}

// ListMerchants returns every merchant.
func (f *FakeAPI) ListMerchants(ctx context.Context) ([]model.Merchant, error) {
	return f.SearchMerchants(ctx, "")
}

// SearchMerchants returns merchants whose names contain query.
func (f *FakeAPI) SearchMerchants(_ context.Context, query string) ([]model.Merchant, error) {
	if err := f.record(http.MethodGet, "/api/merchants", query); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(query)
	var out []model.Merchant
	for _, m := range f.Merchants {
		if strings.Contains(strings.ToLower(m.DisplayName), q) || strings.Contains(strings.ToLower(m.RawName), q) {
			out = append(out, m)
		}
	}
	return out, nil
}

// CreateMerchant stores a merchant.
func (f *FakeAPI) CreateMerchant(_ context.Context, input model.MerchantInput) (model.Merchant, error) {
	if err := f.record(http.MethodPost, "/api/merchants", input); err != nil {
		return model.Merchant{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m := model.Merchant{ID: f.nextID, RawName: input.RawName, DisplayName: input.DisplayName, DefaultCategoryID: input.DefaultCategoryID}
	f.Merchants = append(f.Merchants, m)
	return m, nil
}

// ListTags returns every tag.
func (f *FakeAPI) ListTags(ctx context.Context) ([]model.Tag, error) {
	return f.SearchTags(ctx, "")
}

// SearchTags returns tags whose names contain query.
func (f *FakeAPI) SearchTags(_ context.Context, query string) ([]model.Tag, error) {
	if err := f.record(http.MethodGet, "/api/tags", query); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(query)
	var out []model.Tag
	for _, t := range f.Tags {
		if strings.Contains(strings.ToLower(t.Name), q) {
			out = append(out, t)
		}
	}
	return out, nil
}

// CreateTag stores a tag.
func (f *FakeAPI) CreateTag(_ context.Context, input model.TagInput) (model.Tag, error) {
	if err := f.record(http.MethodPost, "/api/tags", input); err != nil {
		return model.Tag{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := model.Tag{ID: f.nextID, Name: input.Name, Color: input.Color}
	f.Tags = append(f.Tags, t)
	return t, nil
}

// DeleteTag removes a stored tag.
func (f *FakeAPI) DeleteTag(_ context.Context, id int) error {
	if err := f.record(http.MethodDelete, fmt.Sprintf("/api/tags/%d", id), nil); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.Tags[:0]
	for _, t := range f.Tags {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	f.Tags = kept
	return nil
}

// ListRules returns every rule.
func (f *FakeAPI) ListRules(context.Context) ([]model.Rule, error) {
	if err := f.record(http.MethodGet, "/api/rules", nil); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Rule(nil), f.Rules...), nil
}

// CreateRule stores a rule.
func (f *FakeAPI) CreateRule(_ context.Context, input model.RuleInput) (model.Rule, error) {
	if err := f.record(http.MethodPost, "/api/rules", input); err != nil {
		return model.Rule{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r := model.Rule{
		ID: f.nextID, Name: input.Name, Field: input.Field, MatchType: input.MatchType,
		MatchValue: input.MatchValue, Action: input.Action, SaveData: input.SaveData, Active: true,
	}
	if input.Active != nil {
		r.Active = *input.Active
	}
	f.Rules = append(f.Rules, r)
	return r, nil
}

// UpdateRule changes a stored rule.
func (f *FakeAPI) UpdateRule(_ context.Context, id int, input model.RuleInput) (model.Rule, error) {
	path := fmt.Sprintf("/api/rules/%d", id)
	if err := f.record(http.MethodPut, path, input); err != nil {
		return model.Rule{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Rules {
		if f.Rules[i].ID != id {
			continue
		}
		if input.Active != nil {
			f.Rules[i].Active = *input.Active
		}
		if input.Name != "" {
			f.Rules[i].Name = input.Name
		}
		if input.MatchValue != "" {
			f.Rules[i].MatchValue = input.MatchValue
		}
		return f.Rules[i], nil
	}
	return model.Rule{}, &common.APIError{Method: http.MethodPut, Path: path, Status: http.StatusNotFound, Detail: "Rule not found"}
}

// DeleteRule removes a stored rule.
func (f *FakeAPI) DeleteRule(_ context.Context, id int) error {
	if err := f.record(http.MethodDelete, fmt.Sprintf("/api/rules/%d", id), nil); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.Rules[:0]
	for _, r := range f.Rules {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	f.Rules = kept
	return nil
}

// UploadImport records the uploaded filename.
func (f *FakeAPI) UploadImport(_ context.Context, filename string, r io.Reader) (model.ImportResult, error) {
	if err := f.record(http.MethodPost, "/api/import/xlsx", filename); err != nil {
		return model.ImportResult{}, err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return model.ImportResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Uploaded = append(f.Uploaded, filename)
	return model.ImportResult{Message: "uploaded", Filename: filename, Status: "processing"}, nil
}

// ImportHistory returns Imports newest first.
func (f *FakeAPI) ImportHistory(context.Context) ([]model.ImportRecord, error) {
	if err := f.record(http.MethodGet, "/api/import/history", nil); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]model.ImportRecord(nil), f.Imports...)
	sort.Slice(out, func(i, j int) bool { return out[i].ImportedAt.After(out[j].ImportedAt) })
	return out, nil
}

// ProcessImports reports nothing processed.
func (f *FakeAPI) ProcessImports(context.Context) (model.ImportResult, error) {
	if err := f.record(http.MethodPost, "/api/import/process", nil); err != nil {
		return model.ImportResult{}, err
	}
	return model.ImportResult{Message: "processed"}, nil
}

// ProcessAllImports reports nothing processed.
func (f *FakeAPI) ProcessAllImports(context.Context) (model.ImportResult, error) {
	if err := f.record(http.MethodPost, "/api/import/process-all", nil); err != nil {
		return model.ImportResult{}, err
	}
	return model.ImportResult{Message: "processed"}, nil
}

// ParseNotifications reports nothing parsed.
func (f *FakeAPI) ParseNotifications(context.Context) (model.NotificationResult, error) {
	if err := f.record(http.MethodPost, "/api/notifications/parse-all", nil); err != nil {
		return model.NotificationResult{}, err
	}
	return model.NotificationResult{Message: "parsed"}, nil
}

// AcceptAllNotifications reports nothing accepted.
func (f *FakeAPI) AcceptAllNotifications(context.Context) (model.NotificationResult, error) {
	if err := f.record(http.MethodPost, "/api/notifications/accept-all", nil); err != nil {
		return model.NotificationResult{}, err
	}
	return model.NotificationResult{Message: "accepted"}, nil
}

// DiscardNotification records the discard.
func (f *FakeAPI) DiscardNotification(_ context.Context, id int) error {
	return f.record(http.MethodPost, fmt.Sprintf("/api/notifications/discard/%d", id), nil)
}

// ListExpenses returns every stored expense.
func (f *FakeAPI) ListExpenses(_ context.Context, filter model.ExpenseFilter) (model.ExpensePage, error) {
	if err := f.record(http.MethodGet, "/api/expenses", filter); err != nil {
		return model.ExpensePage{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.ExpensePage{Expenses: append([]model.Expense(nil), f.Expenses...), Total: len(f.Expenses), Limit: filter.Limit}, nil
}

// GetExpense returns one stored expense.
func (f *FakeAPI) GetExpense(_ context.Context, id int) (model.Expense, error) {
	path := fmt.Sprintf("/api/expenses/%d", id)
	if err := f.record(http.MethodGet, path, nil); err != nil {
		return model.Expense{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.Expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Expense{}, &common.APIError{Method: http.MethodGet, Path: path, Status: http.StatusNotFound, Detail: "Expense not found"}
}

// UpdateExpense applies the set fields of update to a stored expense.
func (f *FakeAPI) UpdateExpense(_ context.Context, id int, update model.ExpenseUpdate) (model.Expense, error) {
	path := fmt.Sprintf("/api/expenses/%d", id)
	if err := f.record(http.MethodPut, path, update); err != nil {
		return model.Expense{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Expenses {
		e := &f.Expenses[i]
		if e.ID != id {
			continue
		}
		if update.Description != nil {
			e.Description = *update.Description
		}
		if update.Notes != nil {
			e.Notes = *update.Notes
		}
		if update.TransactionDate != nil {
			e.TransactionDate = *update.TransactionDate
		}
		if update.Type != nil {
			e.Type = *update.Type
		}
		if update.Tags != nil {
			e.Tags = e.Tags[:0:0]
			for _, name := range *update.Tags {
				e.Tags = append(e.Tags, model.Tag{Name: name})
			}
		}
		return *e, nil
	}
	return model.Expense{}, &common.APIError{Method: http.MethodPut, Path: path, Status: http.StatusNotFound, Detail: "Expense not found"}
}

// DeleteExpense removes a stored expense.
func (f *FakeAPI) DeleteExpense(_ context.Context, id int) error {
	path := fmt.Sprintf("/api/expenses/%d", id)
	if err := f.record(http.MethodDelete, path, nil); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.Expenses {
		if e.ID == id {
			f.Expenses = append(f.Expenses[:i], f.Expenses[i+1:]...)
			return nil
		}
	}
	return &common.APIError{Method: http.MethodDelete, Path: path, Status: http.StatusNotFound, Detail: "Expense not found"}
}

// ListPeriodicExpenses returns periodic expenses whose names contain query.
func (f *FakeAPI) ListPeriodicExpenses(_ context.Context, query string) ([]model.PeriodicExpense, error) {
	if err := f.record(http.MethodGet, "/api/periodic-expenses", query); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(query)
	var out []model.PeriodicExpense
	for _, p := range f.Periodic {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

// CreatePeriodicExpense stores a periodic expense.
func (f *FakeAPI) CreatePeriodicExpense(_ context.Context, name string) (model.PeriodicExpense, error) {
	if err := f.record(http.MethodPost, "/api/periodic-expenses", name); err != nil {
		return model.PeriodicExpense{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := model.PeriodicExpense{ID: f.nextID, Name: name}
	f.Periodic = append(f.Periodic, p)
	return p, nil
}

// SuggestPeriodicExpense returns the stored periodic expense whose name
// equals name ignoring case, or an empty suggestion.
func (f *FakeAPI) SuggestPeriodicExpense(_ context.Context, name string) (model.PeriodicSuggestion, error) {
	if err := f.record(http.MethodGet, "/api/periodic-expenses/suggest", name); err != nil {
		return model.PeriodicSuggestion{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.Periodic {
		if strings.EqualFold(p.Name, name) {
			match := p
			return model.PeriodicSuggestion{Suggestion: &match.Name, PeriodicExpense: &match, Confidence: 100}, nil
		}
	}
	return model.PeriodicSuggestion{}, nil
}

// UploadTickets records the uploaded paths.
func (f *FakeAPI) UploadTickets(_ context.Context, paths []string) (model.TicketUpload, error) {
	if err := f.record(http.MethodPost, "/api/upload-tickets", paths); err != nil {
		return model.TicketUpload{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Tickets = append(f.Tickets, paths...)
	return model.TicketUpload{Message: fmt.Sprintf("Uploaded %d ticket photos successfully", len(paths)), Files: paths}, nil
}

// Prompter is a scripted service.Prompter.
type Prompter struct {
	Err      error
	Messages []string
	Answer   bool
	mu       sync.Mutex
}

// Confirm records the message and returns the scripted answer.
func (p *Prompter) Confirm(_ context.Context, message string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Messages = append(p.Messages, message)
	return p.Answer, p.Err
}
