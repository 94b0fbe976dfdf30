package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/model"
)

// DetectDuplicates replaces the duplicate map with the server's current view.
func (c *Controller) DetectDuplicates(ctx context.Context) error {
	sets, err := c.api.FindDuplicates(ctx)
	if err != nil {
		return fmt.Errorf("failed to detect duplicates: %w", err)
	}
	if sets == nil {
		sets = make(map[int]model.DuplicateSet)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.duplicates = sets
	c.revalidateDuplicateLocked()
	return nil
}

// refreshDuplicates re-runs detection after a mutation. Failures only cost
// stale badges, so they are logged rather than returned. While the
// duplicates page is open detection is deferred until it closes.
func (c *Controller) refreshDuplicates(ctx context.Context) {
	c.mu.Lock()
	paging := c.modal == ModalDuplicatesPage
	c.mu.Unlock()
	if paging {
		return
	}
	if err := c.DetectDuplicates(ctx); err != nil {
		slog.Warn("duplicate detection failed", "error", err)
	}
}

// Duplicates returns a copy of the duplicate map.
func (c *Controller) Duplicates() map[int]model.DuplicateSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int]model.DuplicateSet, len(c.duplicates))
	for id, set := range c.duplicates {
		out[id] = set
	}
	return out
}

// HasDuplicates reports whether the item has suspected duplicates.
func (c *Controller) HasDuplicates(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.duplicates[id]
	return ok
}

// OpenDuplicate shows the duplicate modal for one item.
func (c *Controller) OpenDuplicate(itemID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.duplicates[itemID]; !ok {
		return common.ErrNoDuplicates
	}
	c.dup = duplicateCursor{itemID: itemID}
	c.modal = ModalDuplicate
	return nil
}

// DuplicateMove moves the card cursor of the duplicate modal or page, stopping at either end.
func (c *Controller) DuplicateMove(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.modal {
	case ModalDuplicate:
		set, ok := c.duplicates[c.dup.itemID]
		if !ok {
			return
		}
		c.dup.cursor = clamp(c.dup.cursor+delta, len(set.Cards()))
	case ModalDuplicatesPage:
		set, ok := c.currentPageSetLocked()
		if !ok {
			return
		}
		c.page.cursor = clamp(c.page.cursor+delta, len(set.Cards()))
	}
}

// DiscardDuplicateCard discards the queue item under the duplicate modal's cursor.
func (c *Controller) DiscardDuplicateCard(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	c.mu.Lock()
	card, ok := c.duplicateCardLocked()
	c.mu.Unlock()
	if !ok {
		return common.ErrNoDuplicates
	}
	if card.Type != model.DuplicateRaw {
		return common.ErrSavedDuplicate
	}

	if err := c.confirm(ctx, fmt.Sprintf("Discard duplicate #%d?", card.ID)); err != nil {
		return err
	}
	if err := c.api.DeleteQueueItem(ctx, card.ID); err != nil {
		return err
	}

	c.mu.Lock()
	c.removeLocked([]int{card.ID})
	c.message = fmt.Sprintf("Discarded duplicate #%d", card.ID)
	c.revalidateDuplicateLocked()
	c.mu.Unlock()

	c.refreshDuplicates(ctx)
	return nil
}

func (c *Controller) duplicateCardLocked() (model.Duplicate, bool) {
	if c.modal != ModalDuplicate {
		return model.Duplicate{}, false
	}
	set, ok := c.duplicates[c.dup.itemID]
	if !ok {
		return model.Duplicate{}, false
	}
	cards := set.Cards()
	if c.dup.cursor >= len(cards) {
		return model.Duplicate{}, false
	}
	return cards[c.dup.cursor], true
}

// revalidateDuplicateLocked closes the duplicate modal once its set is gone
// and keeps the cursor on a card.
func (c *Controller) revalidateDuplicateLocked() {
	if c.modal != ModalDuplicate {
		return
	}
	set, ok := c.duplicates[c.dup.itemID]
	if !ok {
		c.modal = ModalNone
		c.dup = duplicateCursor{}
		return
	}
	c.dup.cursor = clamp(c.dup.cursor, len(set.Cards()))
}

// OpenDuplicatesPage walks every duplicate set in item id order.
func (c *Controller) OpenDuplicatesPage() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.duplicatesPage {
		return common.ErrFeatureDisabled
	}
	if len(c.duplicates) == 0 {
		return common.ErrNoDuplicates
	}
	c.page = duplicatePage{ids: model.DuplicateIDs(c.duplicates)}
	c.modal = ModalDuplicatesPage
	return nil
}

// PageStep moves the duplicates page to the next or previous set.
func (c *Controller) PageStep(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modal != ModalDuplicatesPage || len(c.page.ids) == 0 {
		return
	}
	next := clamp(c.page.index+delta, len(c.page.ids))
	if next != c.page.index {
		c.page.index = next
		c.page.cursor = 0
	}
}

// PageSave saves the queue item under the page cursor as an expense.
func (c *Controller) PageSave(ctx context.Context) error {
	return c.pageAction(ctx, func(card model.Duplicate) error {
		c.mu.Lock()
		i := c.indexOfLocked(card.ID)
		var item model.QueueItem
		if i >= 0 {
			item = c.items[i]
		}
		c.mu.Unlock()
		if i < 0 {
			return fmt.Errorf("item %d: %w", card.ID, common.ErrNotFound)
		}
		_, err := c.process(ctx, item)
		return err
	})
}

// PageDiscard discards the queue item under the page cursor.
func (c *Controller) PageDiscard(ctx context.Context) error {
	return c.pageAction(ctx, func(card model.Duplicate) error {
		if err := c.api.DeleteQueueItem(ctx, card.ID); err != nil {
			return err
		}
		c.mu.Lock()
		c.removeLocked([]int{card.ID})
		c.message = fmt.Sprintf("Discarded #%d", card.ID)
		c.mu.Unlock()
		return nil
	})
}

// pageAction runs act on the current card, then drops resolved sets from the
// page. Once nothing is left the page closes and the queue is reloaded.
func (c *Controller) pageAction(ctx context.Context, act func(model.Duplicate) error) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	c.mu.Lock()
	card, ok := c.pageCardLocked()
	c.mu.Unlock()
	if !ok {
		return common.ErrNoDuplicates
	}
	if card.Type != model.DuplicateRaw {
		return common.ErrSavedDuplicate
	}

	if err := act(card); err != nil {
		return err
	}

	c.mu.Lock()
	c.page.dirty = true
	remaining := c.page.ids[:0]
	for _, id := range c.page.ids {
		if _, ok := c.duplicates[id]; ok {
			remaining = append(remaining, id)
		}
	}
	c.page.ids = remaining
	done := len(remaining) == 0
	if !done {
		c.page.index = clamp(c.page.index, len(remaining))
		if set, ok := c.currentPageSetLocked(); ok {
			c.page.cursor = clamp(c.page.cursor, len(set.Cards()))
		}
	} else {
		c.page = duplicatePage{}
		c.modal = ModalNone
	}
	c.mu.Unlock()

	if done {
		return c.loadAll(ctx)
	}
	return nil
}

func (c *Controller) currentPageSetLocked() (model.DuplicateSet, bool) {
	if len(c.page.ids) == 0 || c.page.index >= len(c.page.ids) {
		return model.DuplicateSet{}, false
	}
	set, ok := c.duplicates[c.page.ids[c.page.index]]
	return set, ok
}

func (c *Controller) pageCardLocked() (model.Duplicate, bool) {
	if c.modal != ModalDuplicatesPage {
		return model.Duplicate{}, false
	}
	set, ok := c.currentPageSetLocked()
	if !ok {
		return model.Duplicate{}, false
	}
	cards := set.Cards()
	if c.page.cursor >= len(cards) {
		return model.Duplicate{}, false
	}
	return cards[c.page.cursor], true
}

// clamp bounds v to [0, n-1], or 0 when n is zero.
func clamp(v, n int) int {
	if n <= 0 || v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
