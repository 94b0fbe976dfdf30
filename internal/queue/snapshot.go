package queue

import "github.com/Veraticus/expense-queue/internal/model"

// Snapshot is a consistent copy of the controller state for rendering.
type Snapshot struct {
	Filter     model.QueueFilter
	Selected   map[int]bool
	Duplicates map[int]model.DuplicateSet
	LastResult *model.BatchResult
	Merge      *MergeSummary
	Duplicate  *DuplicateView
	Page       *PageView
	Message    string
	Items      []model.QueueItem
	Total      int
	Focused    int
	Modal      Modal
	UpdateMode bool
	Busy       bool
	Loaded     bool
}

// DuplicateView is the state of the duplicate modal.
type DuplicateView struct {
	Cards  []model.Duplicate
	ItemID int
	Cursor int
}

// PageView is the state of the duplicates page.
type PageView struct {
	Cards  []model.Duplicate
	ItemID int
	Index  int
	Count  int
	Cursor int
}

// Empty reports whether a load completed with nothing left to triage.
func (s Snapshot) Empty() bool {
	return s.Loaded && s.Total == 0
}

// FocusedItem returns the focused visible item.
func (s Snapshot) FocusedItem() (model.QueueItem, bool) {
	if s.Focused < 0 || s.Focused >= len(s.Items) {
		return model.QueueItem{}, false
	}
	return s.Items[s.Focused], true
}

// Snapshot copies the state the views need.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Filter:     c.filter,
		Selected:   make(map[int]bool, len(c.selected)),
		Duplicates: make(map[int]model.DuplicateSet, len(c.duplicates)),
		LastResult: c.lastResult,
		Message:    c.message,
		Items:      make([]model.QueueItem, 0, len(c.view)),
		Total:      len(c.items),
		Focused:    c.focused,
		Modal:      c.modal,
		UpdateMode: c.updateMode,
		Busy:       c.busy,
		Loaded:     c.loaded,
	}
	for id := range c.selected {
		s.Selected[id] = true
	}
	for id, set := range c.duplicates {
		s.Duplicates[id] = set
	}
	for _, idx := range c.view {
		s.Items = append(s.Items, c.items[idx])
	}
	if c.mergeSummary != nil {
		summary := *c.mergeSummary
		s.Merge = &summary
	}
	if set, ok := c.duplicates[c.dup.itemID]; ok && c.modal == ModalDuplicate {
		s.Duplicate = &DuplicateView{Cards: set.Cards(), ItemID: c.dup.itemID, Cursor: c.dup.cursor}
	}
	if set, ok := c.currentPageSetLocked(); ok && c.modal == ModalDuplicatesPage {
		s.Page = &PageView{
			Cards:  set.Cards(),
			ItemID: c.page.ids[c.page.index],
			Index:  c.page.index,
			Count:  len(c.page.ids),
			Cursor: c.page.cursor,
		}
	}
	return s
}
