package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/model"
)

// ApplyCategory sets the category on every target. The expense type the
// category implies is resolved first and written alongside it.
func (c *Controller) ApplyCategory(ctx context.Context, categoryID int) (*model.BatchResult, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	targets := c.TargetItems()
	if len(targets) == 0 {
		return nil, common.ErrNoTargets
	}

	typ, err := c.api.CategoryType(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	ref := model.CategoryRef{ID: categoryID}
	if category, ok := model.FindCategory(c.categories, categoryID); ok {
		ref.Name = category.Name
		ref.Color = category.Color
	}
	c.mu.Unlock()

	id := categoryID
	update := model.QueueItemUpdate{CategoryID: &id, Type: typ}
	return c.applyEach(ctx, "categorized", targets, update, func(item *model.QueueItem) {
		r := ref
		item.Category = &r
	}), nil
}

// ApplyMerchant links every target to a merchant alias.
func (c *Controller) ApplyMerchant(ctx context.Context, merchant model.Merchant) (*model.BatchResult, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	targets := c.TargetItems()
	if len(targets) == 0 {
		return nil, common.ErrNoTargets
	}

	id := merchant.ID
	update := model.QueueItemUpdate{MerchantAliasID: &id}
	return c.applyEach(ctx, "updated merchant on", targets, update, func(item *model.QueueItem) {
		ref := merchant.Ref()
		item.MerchantAlias = &ref
	}), nil
}

// ApplyTags replaces the tags of every target, keeping the given order.
func (c *Controller) ApplyTags(ctx context.Context, tags []string) (*model.BatchResult, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	targets := c.TargetItems()
	if len(targets) == 0 {
		return nil, common.ErrNoTargets
	}

	cleaned := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		cleaned = append(cleaned, tag)
	}

	update := model.QueueItemUpdate{Tags: &cleaned}
	return c.applyEach(ctx, "tagged", targets, update, nil), nil
}

// ApplyType sets the expense type on every target.
func (c *Controller) ApplyType(ctx context.Context, typ model.ExpenseType) (*model.BatchResult, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("invalid expense type %q", typ)
	}
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	targets := c.TargetItems()
	if len(targets) == 0 {
		return nil, common.ErrNoTargets
	}

	update := model.QueueItemUpdate{Type: &typ}
	return c.applyEach(ctx, "set type on", targets, update, nil), nil
}

// ApplyDescription sets the description on every target.
func (c *Controller) ApplyDescription(ctx context.Context, text string) (*model.BatchResult, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	targets := c.TargetItems()
	if len(targets) == 0 {
		return nil, common.ErrNoTargets
	}

	text = strings.TrimSpace(text)
	update := model.QueueItemUpdate{Description: &text}
	return c.applyEach(ctx, "described", targets, update, nil), nil
}

// applyEach sends update to each target in turn and patches the items that
// succeeded. Failures do not stop the batch.
func (c *Controller) applyEach(ctx context.Context, action string, targets []model.QueueItem, update model.QueueItemUpdate, patch func(*model.QueueItem)) *model.BatchResult {
	result := model.NewBatchResult(action, len(targets))

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			result.Fail(target.ID, err)
			continue
		}
		if err := c.api.UpdateQueueItem(ctx, target.ID, update); err != nil {
			slog.Debug("queue update failed", "id", target.ID, "action", action, "error", err)
			result.Fail(target.ID, err)
			continue
		}
		result.Succeed(target.ID)

		c.mu.Lock()
		if i := c.indexOfLocked(target.ID); i >= 0 {
			update.Apply(&c.items[i])
			if patch != nil {
				patch(&c.items[i])
			}
		}
		c.mu.Unlock()
	}

	c.finishBatch(result)
	return result
}

// finishBatch records the result and returns the queue to its list view.
func (c *Controller) finishBatch(result *model.BatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastResult = result
	c.message = result.Summary()
	if c.modal.IsEditor() {
		c.modal = ModalNone
	}
}
