package queue

import (
	"fmt"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/model"
)

// Focused returns the index of the focused row within the visible items.
func (c *Controller) Focused() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focused
}

// FocusedItem returns the focused item, if any is visible.
func (c *Controller) FocusedItem() (model.QueueItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focusedItemLocked()
}

func (c *Controller) focusedItemLocked() (model.QueueItem, bool) {
	if len(c.view) == 0 {
		return model.QueueItem{}, false
	}
	return c.items[c.view[c.focused]], true
}

// MoveFocus moves the focus by delta rows. Moving past either end does nothing.
func (c *Controller) MoveFocus(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.focused + delta
	if next < 0 || next >= len(c.view) {
		return
	}
	c.focused = next
}

// PageFocus moves the focus by delta rows, stopping at the first or last row.
func (c *Controller) PageFocus(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focused += delta
	c.clampFocusLocked()
}

// FocusFirst focuses the first visible row.
func (c *Controller) FocusFirst() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focused = 0
}

// FocusLast focuses the last visible row.
func (c *Controller) FocusLast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focused = len(c.view) - 1
	c.clampFocusLocked()
}

// FocusID focuses the visible row holding the item, reporting whether it was found.
func (c *Controller) FocusID(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for row, idx := range c.view {
		if c.items[idx].ID == id {
			c.focused = row
			return true
		}
	}
	return false
}

// ToggleSelect flips the selection of the focused item.
func (c *Controller) ToggleSelect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.focusedItemLocked()
	if !ok {
		return
	}
	if _, selected := c.selected[item.ID]; selected {
		delete(c.selected, item.ID)
		return
	}
	c.selected[item.ID] = struct{}{}
}

// SelectAll selects every visible item.
func (c *Controller) SelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, idx := range c.view {
		c.selected[c.items[idx].ID] = struct{}{}
	}
}

// ClearSelection empties the selection.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearSelectionLocked()
}

func (c *Controller) clearSelectionLocked() {
	c.selected = make(map[int]struct{})
}

// SelectedCount returns the number of selected items.
func (c *Controller) SelectedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.selected)
}

// IsSelected reports whether the item is selected.
func (c *Controller) IsSelected(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.selected[id]
	return ok
}

// TargetItems returns the items an action applies to: the selection in queue
// order when anything is selected, otherwise the focused item.
func (c *Controller) TargetItems() []model.QueueItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.targetsLocked()
}

func (c *Controller) targetsLocked() []model.QueueItem {
	if len(c.selected) > 0 {
		targets := make([]model.QueueItem, 0, len(c.selected))
		for _, item := range c.items {
			if _, ok := c.selected[item.ID]; ok {
				targets = append(targets, item)
			}
		}
		return targets
	}
	if item, ok := c.focusedItemLocked(); ok {
		return []model.QueueItem{item}
	}
	return nil
}

func (c *Controller) selectedItemsLocked() []model.QueueItem {
	if len(c.selected) == 0 {
		return nil
	}
	return c.targetsLocked()
}

// UpdateMode reports whether field editors are armed.
func (c *Controller) UpdateMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateMode
}

// ToggleUpdateMode arms or disarms the field editors and returns the new state.
// Leaving update mode closes any open editor.
func (c *Controller) ToggleUpdateMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.updateModeEnabled {
		return false
	}
	c.updateMode = !c.updateMode
	if !c.updateMode && c.modal.IsEditor() {
		c.modal = ModalNone
	}
	return c.updateMode
}

// Modal returns the overlay currently shown.
func (c *Controller) Modal() Modal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modal
}

// OpenEditor opens a field editor over the current targets.
func (c *Controller) OpenEditor(m Modal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !m.IsEditor() {
		return fmt.Errorf("%w: %s is not a field editor", common.ErrFeatureDisabled, m)
	}
	if !c.updateModeEnabled {
		return common.ErrFeatureDisabled
	}
	if !c.updateMode {
		return common.ErrUpdateModeOff
	}
	if len(c.targetsLocked()) == 0 {
		return common.ErrNoTargets
	}
	c.modal = m
	return nil
}

// OpenHelp shows the key reference.
func (c *Controller) OpenHelp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modal == ModalNone {
		c.modal = ModalHelp
	}
}

// CloseModal closes the top overlay. It reports true when the closed
// overlay changed the queue enough that a full reload is due.
func (c *Controller) CloseModal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	reload := false
	switch c.modal {
	case ModalDuplicatesPage:
		reload = c.page.dirty
		c.page = duplicatePage{}
	case ModalDuplicate:
		c.dup = duplicateCursor{}
	case ModalMerge:
		c.mergeSummary = nil
	}
	c.modal = ModalNone
	return reload
}

// Escape applies the escape-key priority: close the top overlay, else leave
// update mode, else clear the selection. It returns what CloseModal returned.
func (c *Controller) Escape() bool {
	c.mu.Lock()
	modal := c.modal
	c.mu.Unlock()

	if modal != ModalNone {
		return c.CloseModal()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.updateMode {
		c.updateMode = false
		return false
	}
	c.clearSelectionLocked()
	return false
}

// Filter returns the active filter.
func (c *Controller) Filter() model.QueueFilter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// OpenFilter shows the filter form.
func (c *Controller) OpenFilter() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.filterMode {
		return common.ErrFeatureDisabled
	}
	c.modal = ModalFilter
	return nil
}

// SetFilter narrows the visible items. The selection is cleared so hidden
// items can never be acted on.
func (c *Controller) SetFilter(f model.QueueFilter) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.filterMode {
		return common.ErrFeatureDisabled
	}
	c.applyFilterLocked(f)
	if c.modal == ModalFilter {
		c.modal = ModalNone
	}
	return nil
}

// ClearFilter shows every item again.
func (c *Controller) ClearFilter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyFilterLocked(model.QueueFilter{})
}

// SetSearch updates only the free-text part of the filter.
func (c *Controller) SetSearch(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.filter
	f.Search = query
	c.applyFilterLocked(f)
}

func (c *Controller) applyFilterLocked(f model.QueueFilter) {
	c.filter = f
	c.clearSelectionLocked()
	c.focused = 0
	c.rebuildViewLocked()
}
