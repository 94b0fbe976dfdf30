package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/shopspring/decimal"
)

// DiscardSelected deletes every target, continuing past failures. Only the
// items the server confirmed are removed locally.
func (c *Controller) DiscardSelected(ctx context.Context) (*model.BatchResult, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	targets := c.TargetItems()
	if len(targets) == 0 {
		return nil, common.ErrNoTargets
	}
	return c.discard(ctx, targets)
}

// DiscardFocused deletes the focused item regardless of the selection.
func (c *Controller) DiscardFocused(ctx context.Context) (*model.BatchResult, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	item, ok := c.FocusedItem()
	if !ok {
		return nil, common.ErrNoTargets
	}
	return c.discard(ctx, []model.QueueItem{item})
}

func (c *Controller) discard(ctx context.Context, targets []model.QueueItem) (*model.BatchResult, error) {
	if err := c.confirm(ctx, fmt.Sprintf("Discard %s?", plural(len(targets), "item"))); err != nil {
		return nil, err
	}

	result := model.NewBatchResult("discarded", len(targets))
	for _, target := range targets {
		if err := c.api.DeleteQueueItem(ctx, target.ID); err != nil {
			slog.Debug("discard failed", "id", target.ID, "error", err)
			result.Fail(target.ID, err)
			continue
		}
		result.Succeed(target.ID)
	}

	c.mu.Lock()
	c.removeLocked(result.Succeeded)
	c.clearSelectionLocked()
	c.mu.Unlock()

	c.finishBatch(result)
	c.refreshDuplicates(ctx)
	return result, nil
}

// ArchiveSelected archives every target in one request.
func (c *Controller) ArchiveSelected(ctx context.Context) (*model.BatchResult, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	targets := c.TargetItems()
	if len(targets) == 0 {
		return nil, common.ErrNoTargets
	}
	if err := c.confirm(ctx, fmt.Sprintf("Archive %s?", plural(len(targets), "item"))); err != nil {
		return nil, err
	}

	ids := itemIDs(targets)
	resp, err := c.api.Archive(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := model.NewBatchResult("archived", len(targets))
	for _, id := range ids {
		result.Succeed(id)
	}

	c.mu.Lock()
	c.removeLocked(ids)
	c.clearSelectionLocked()
	c.mu.Unlock()

	c.finishBatch(result)
	if resp.ArchivedCount != len(ids) {
		c.setMessage("Archived %d of %d items", resp.ArchivedCount, len(ids))
	}
	c.refreshDuplicates(ctx)
	return result, nil
}

// BulkSaveSelected saves every target as an expense. Every target must be
// complete. Suggested merchants and categories are promoted to real values
// first, then the remaining items are saved in one request.
func (c *Controller) BulkSaveSelected(ctx context.Context) (*model.BatchResult, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	targets := c.TargetItems()
	if len(targets) == 0 {
		return nil, common.ErrNoTargets
	}

	var incomplete int
	for _, target := range targets {
		if !target.IsComplete() {
			incomplete++
		}
	}
	if incomplete > 0 {
		return nil, fmt.Errorf("%w (%d of %d)", common.ErrIncompleteItems, incomplete, len(targets))
	}

	if err := c.confirm(ctx, fmt.Sprintf("Save %s as expenses?", plural(len(targets), "item"))); err != nil {
		return nil, err
	}

	result := model.NewBatchResult("saved", len(targets))
	types := make(map[int]*model.ExpenseType)
	ready := make([]int, 0, len(targets))

	for _, target := range targets {
		if err := c.promoteSuggestions(ctx, target, types); err != nil {
			slog.Debug("promoting suggestion failed", "id", target.ID, "error", err)
			result.Fail(target.ID, err)
			continue
		}
		ready = append(ready, target.ID)
	}

	if len(ready) == 0 {
		c.finishBatch(result)
		return result, nil
	}

	resp, err := c.api.BulkSave(ctx, ready)
	if err != nil {
		for _, id := range ready {
			result.Fail(id, err)
		}
		c.finishBatch(result)
		return result, err
	}

	if resp.FailedCount == 0 {
		for _, id := range ready {
			result.Succeed(id)
		}
		c.mu.Lock()
		c.removeLocked(ready)
		c.clearSelectionLocked()
		c.mu.Unlock()
		c.finishBatch(result)
		c.refreshDuplicates(ctx)
		return result, nil
	}

	// The server's errors do not say which ids failed, so resync and infer it.
	serverErr := fmt.Errorf("bulk save: %s", strings.Join(resp.Errors, "; "))
	if err := c.loadAll(ctx); err != nil {
		slog.Warn("resync after partial bulk save failed", "error", err)
	}

	c.mu.Lock()
	for _, id := range ready {
		if c.indexOfLocked(id) >= 0 {
			result.Fail(id, serverErr)
		} else {
			result.Succeed(id)
		}
	}
	c.mu.Unlock()

	c.finishBatch(result)
	c.setMessage("Saved %d, %d failed: %s", resp.SavedCount, resp.FailedCount, strings.Join(resp.Errors, "; "))
	return result, nil
}

// promoteSuggestions writes a target's suggested merchant and category as
// its real values. types caches category-type lookups for one batch.
func (c *Controller) promoteSuggestions(ctx context.Context, target model.QueueItem, types map[int]*model.ExpenseType) error {
	if _, ok := target.ResolvedMerchantID(); !ok && target.SuggestedMerchantAlias != nil {
		merchantID := target.SuggestedMerchantAlias.ID
		update := model.QueueItemUpdate{MerchantAliasID: &merchantID}
		if err := c.api.UpdateQueueItem(ctx, target.ID, update); err != nil {
			return err
		}
		c.patch(target.ID, update)
	}

	if _, ok := target.ResolvedCategoryID(); !ok && target.SuggestedCategoryID != nil {
		categoryID := *target.SuggestedCategoryID
		typ, cached := types[categoryID]
		if !cached {
			resolved, err := c.api.CategoryType(ctx, categoryID)
			if err != nil {
				slog.Debug("category type lookup failed", "category_id", categoryID, "error", err)
			}
			typ = resolved
			types[categoryID] = typ
		}
		if typ == nil && target.SuggestedType != "" {
			fallback := target.SuggestedType
			typ = &fallback
		}

		update := model.QueueItemUpdate{CategoryID: &categoryID, Type: typ}
		if err := c.api.UpdateQueueItem(ctx, target.ID, update); err != nil {
			return err
		}
		c.patch(target.ID, update)
	}
	return nil
}

func (c *Controller) patch(id int, update model.QueueItemUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOfLocked(id); i >= 0 {
		update.Apply(&c.items[i])
	}
}

// SaveFocused resolves the focused item into an expense.
func (c *Controller) SaveFocused(ctx context.Context) (model.ProcessResponse, error) {
	if err := c.begin(); err != nil {
		return model.ProcessResponse{}, err
	}
	defer c.end()

	item, ok := c.FocusedItem()
	if !ok {
		return model.ProcessResponse{}, common.ErrNoTargets
	}
	resp, err := c.process(ctx, item)
	if err != nil {
		return resp, err
	}
	c.refreshDuplicates(ctx)
	return resp, nil
}

// process saves one complete item through the single-item endpoint and
// removes it locally.
func (c *Controller) process(ctx context.Context, item model.QueueItem) (model.ProcessResponse, error) {
	if !item.IsComplete() {
		return model.ProcessResponse{}, common.ErrIncompleteItems
	}

	resp, err := c.api.ProcessQueueItem(ctx, processRequest(item))
	if err != nil {
		return resp, err
	}

	c.mu.Lock()
	c.removeLocked([]int{item.ID})
	c.message = fmt.Sprintf("Saved as expense #%d", resp.ExpenseID)
	c.mu.Unlock()
	return resp, nil
}

func processRequest(item model.QueueItem) model.ProcessRequest {
	req := model.ProcessRequest{
		RawExpenseID: item.ID,
		MerchantName: item.MerchantLabel(),
		Description:  item.Description,
		Type:         item.EffectiveType(),
		Tags:         item.Tags,
	}
	if id, ok := item.EffectiveMerchantID(); ok {
		req.MerchantAliasID = &id
	}
	if id, ok := item.EffectiveCategoryID(); ok {
		req.CategoryID = &id
	}
	return req
}

// MergeSummary describes the selection a merge would combine.
type MergeSummary struct {
	Total        decimal.Decimal
	Currency     string
	EarliestDate string
	Merchant     string
	Categories   []string
	IDs          []int
	Count        int
}

// MergeForm is what the user fills in before merging.
type MergeForm struct {
	CategoryID   *int
	MerchantName string
	Description  string
	Type         model.ExpenseType
	Tags         []string
}

// OpenMerge opens the merge form over the selection, which must hold at least two items.
func (c *Controller) OpenMerge() (MergeSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	selected := c.selectedItemsLocked()
	if len(selected) < 2 {
		return MergeSummary{}, common.ErrMergeNeedsTwo
	}

	summary := summarize(selected, c.categories)
	c.mergeSummary = &summary
	c.modal = ModalMerge
	return summary, nil
}

func summarize(items []model.QueueItem, categories []model.Category) MergeSummary {
	summary := MergeSummary{Count: len(items), Total: decimal.Zero}
	seen := make(map[string]bool)
	for _, item := range items {
		summary.IDs = append(summary.IDs, item.ID)
		summary.Total = summary.Total.Add(item.Amount)
		if summary.EarliestDate == "" || item.TransactionDate < summary.EarliestDate {
			summary.EarliestDate = item.TransactionDate
		}
		if summary.Currency == "" {
			summary.Currency = item.Currency
		}
		if summary.Merchant == "" {
			if _, ok := item.EffectiveMerchantID(); ok {
				summary.Merchant = item.MerchantLabel()
			}
		}
		if id, ok := item.EffectiveCategoryID(); ok {
			name := fmt.Sprintf("#%d", id)
			if item.Category != nil && item.Category.Name != "" {
				name = item.Category.Name
			} else if category, found := model.FindCategory(categories, id); found {
				name = category.Name
			}
			if !seen[name] {
				seen[name] = true
				summary.Categories = append(summary.Categories, name)
			}
		}
	}
	sort.Strings(summary.Categories)
	return summary
}

// PendingMerge returns the summary shown by the open merge form.
func (c *Controller) PendingMerge() (MergeSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mergeSummary == nil {
		return MergeSummary{}, false
	}
	return *c.mergeSummary, true
}

// SaveMerge combines the selection into one expense. The merchant name is required.
func (c *Controller) SaveMerge(ctx context.Context, form MergeForm) (model.MergeResponse, error) {
	form.MerchantName = strings.TrimSpace(form.MerchantName)
	if form.MerchantName == "" {
		return model.MergeResponse{}, common.ErrMerchantRequired
	}

	if err := c.begin(); err != nil {
		return model.MergeResponse{}, err
	}
	defer c.end()

	c.mu.Lock()
	ids := itemIDs(c.selectedItemsLocked())
	c.mu.Unlock()
	if len(ids) < 2 {
		return model.MergeResponse{}, common.ErrMergeNeedsTwo
	}

	tags := form.Tags
	if tags == nil {
		tags = []string{}
	}
	req := model.MergeRequest{
		RawExpenseIDs: ids,
		ExpenseData: model.MergeData{
			MerchantName: form.MerchantName,
			CategoryID:   form.CategoryID,
			Description:  strings.TrimSpace(form.Description),
			Tags:         tags,
			Type:         form.Type,
		},
	}

	resp, err := c.api.Merge(ctx, req)
	if err != nil {
		return resp, err
	}

	c.mu.Lock()
	c.removeLocked(ids)
	c.clearSelectionLocked()
	c.mergeSummary = nil
	if c.modal == ModalMerge {
		c.modal = ModalNone
	}
	c.message = fmt.Sprintf("Merged %s into expense #%d", plural(len(ids), "item"), resp.ExpenseID)
	c.mu.Unlock()

	c.refreshDuplicates(ctx)
	return resp, nil
}

// ApplyRules runs the server's rules over the queue and reloads it.
func (c *Controller) ApplyRules(ctx context.Context) (model.ApplyRulesResponse, error) {
	if err := c.begin(); err != nil {
		return model.ApplyRulesResponse{}, err
	}
	defer c.end()

	resp, err := c.api.ApplyRules(ctx)
	if err != nil {
		return resp, err
	}
	if err := c.loadAll(ctx); err != nil {
		return resp, err
	}
	c.setMessage("Rules processed %d: %d saved, %d discarded", resp.Processed, resp.Saved, resp.Discarded)
	return resp, nil
}

func itemIDs(items []model.QueueItem) []int {
	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
