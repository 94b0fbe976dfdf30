package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Veraticus/expense-queue/internal/model"
)

// ListQueue fetches every unresolved item, optionally narrowed server-side.
func (c *Client) ListQueue(ctx context.Context, filter model.QueueFilter) ([]model.QueueItem, error) {
	var items []model.QueueItem
	if err := c.doJSON(ctx, http.MethodGet, "/api/queue/all", filter.Query(), nil, &items); err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	return items, nil
}

// QueueCount returns the number of unresolved items.
func (c *Client) QueueCount(ctx context.Context) (int, error) {
	var resp model.CountResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/queue/count", nil, nil, &resp); err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return resp.Count, nil
}

// UpdateQueueItem writes the set fields of update to one item.
func (c *Client) UpdateQueueItem(ctx context.Context, id int, update model.QueueItemUpdate) error {
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/queue/%d", id), nil, update, nil); err != nil {
		return fmt.Errorf("failed to update item %d: %w", id, err)
	}
	return nil
}

// DeleteQueueItem discards one item.
func (c *Client) DeleteQueueItem(ctx context.Context, id int) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/queue/%d", id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to discard item %d: %w", id, err)
	}
	return nil
}

// ProcessQueueItem resolves one item into a saved expense.
func (c *Client) ProcessQueueItem(ctx context.Context, req model.ProcessRequest) (model.ProcessResponse, error) {
	var resp model.ProcessResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/queue/process", nil, req, &resp); err != nil {
		return resp, fmt.Errorf("failed to save item %d: %w", req.RawExpenseID, err)
	}
	return resp, nil
}

// BulkSave resolves many complete items at once.
func (c *Client) BulkSave(ctx context.Context, ids []int) (model.BulkSaveResponse, error) {
	var resp model.BulkSaveResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/queue/bulk-save", nil, model.IDsRequest{RawExpenseIDs: ids}, &resp); err != nil {
		return resp, fmt.Errorf("failed to bulk save: %w", err)
	}
	return resp, nil
}

// Archive moves many items out of the queue without review.
func (c *Client) Archive(ctx context.Context, ids []int) (model.ArchiveResponse, error) {
	var resp model.ArchiveResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/queue/archive", nil, model.IDsRequest{RawExpenseIDs: ids}, &resp); err != nil {
		return resp, fmt.Errorf("failed to archive: %w", err)
	}
	return resp, nil
}

// Merge combines many items into one expense.
func (c *Client) Merge(ctx context.Context, req model.MergeRequest) (model.MergeResponse, error) {
	var resp model.MergeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/queue/merge", nil, req, &resp); err != nil {
		return resp, fmt.Errorf("failed to merge: %w", err)
	}
	return resp, nil
}

// FindDuplicates returns suspected duplicates keyed by queue item id.
func (c *Client) FindDuplicates(ctx context.Context) (map[int]model.DuplicateSet, error) {
	sets := make(map[int]model.DuplicateSet)
	if err := c.doJSON(ctx, http.MethodGet, "/api/queue/find-duplicates", nil, nil, &sets); err != nil {
		return nil, fmt.Errorf("failed to find duplicates: %w", err)
	}
	return sets, nil
}

// CategoryType resolves the expense type a category implies.
func (c *Client) CategoryType(ctx context.Context, categoryID int) (*model.ExpenseType, error) {
	var resp model.CategoryTypeResponse
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/queue/category-type/%d", categoryID), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to resolve type of category %d: %w", categoryID, err)
	}
	if resp.Type != nil && *resp.Type == "" {
		return nil, nil
	}
	return resp.Type, nil
}

// ApplyRules runs the server's rules over the whole queue.
func (c *Client) ApplyRules(ctx context.Context) (model.ApplyRulesResponse, error) {
	var resp model.ApplyRulesResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/queue/apply-rules", nil, nil, &resp); err != nil {
		return resp, fmt.Errorf("failed to apply rules: %w", err)
	}
	return resp, nil
}
