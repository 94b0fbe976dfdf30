// Package queue implements the triage controller behind the interactive queue:
// selection, focus, modals and every bulk action over unresolved items.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/service"
)

// API is the part of the remote contract the controller drives.
type API interface {
	service.QueueAPI
	ListCategories(ctx context.Context, categoryType model.CategoryType) ([]model.Category, error)
}

// Option enables a capability of the controller.
type Option func(*Controller)

// WithFilterMode enables client-side filtering.
func WithFilterMode() Option {
	return func(c *Controller) {
		c.filterMode = true
	}
}

// WithDuplicatesPage enables the page that walks every duplicate set.
func WithDuplicatesPage() Option {
	return func(c *Controller) {
		c.duplicatesPage = true
	}
}

// WithUpdateMode enables field editors over the selection.
func WithUpdateMode() Option {
	return func(c *Controller) {
		c.updateModeEnabled = true
	}
}

// Controller owns the queue state. Methods are safe for concurrent use;
// the lock is never held across a network call.
type Controller struct {
	api      API
	prompter service.Prompter

	filter       model.QueueFilter
	selected     map[int]struct{}
	duplicates   map[int]model.DuplicateSet
	lastResult   *model.BatchResult
	mergeSummary *MergeSummary
	message      string

	items      []model.QueueItem
	view       []int
	categories []model.Category

	dup  duplicateCursor
	page duplicatePage

	mu                sync.Mutex
	focused           int
	modal             Modal
	updateMode        bool
	busy              bool
	loaded            bool
	filterMode        bool
	duplicatesPage    bool
	updateModeEnabled bool
}

type duplicateCursor struct {
	itemID int
	cursor int
}

type duplicatePage struct {
	ids    []int
	index  int
	cursor int
	dirty  bool
}

// New creates a controller. A nil prompter approves every confirmation.
func New(api API, prompter service.Prompter, opts ...Option) *Controller {
	if prompter == nil {
		prompter = service.AutoConfirm{}
	}
	c := &Controller{
		api:        api,
		prompter:   prompter,
		selected:   make(map[int]struct{}),
		duplicates: make(map[int]model.DuplicateSet),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// begin claims the single mutation slot.
func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return common.ErrBusy
	}
	c.busy = true
	return nil
}

func (c *Controller) end() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// Busy reports whether a mutating operation is running.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// IsEmpty reports whether a load completed and returned no items.
func (c *Controller) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded && len(c.items) == 0
}

// Len returns the number of visible items.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.view)
}

// Message returns the status line left by the last operation.
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

func (c *Controller) setMessage(format string, args ...any) {
	c.mu.Lock()
	c.message = fmt.Sprintf(format, args...)
	c.mu.Unlock()
}

// LastResult returns the outcome of the last bulk action.
func (c *Controller) LastResult() *model.BatchResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// Categories returns the categories loaded by LoadCategories.
func (c *Controller) Categories() []model.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Category(nil), c.categories...)
}

// LoadAll replaces the local queue with the server's.
func (c *Controller) LoadAll(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()
	return c.loadAll(ctx)
}

func (c *Controller) loadAll(ctx context.Context) error {
	items, err := c.api.ListQueue(ctx, model.QueueFilter{})
	if err != nil {
		return fmt.Errorf("failed to load queue: %w", err)
	}

	c.mu.Lock()
	c.items = items
	c.loaded = true
	c.clearSelectionLocked()
	c.rebuildViewLocked()
	c.mu.Unlock()

	slog.Debug("queue loaded", "items", len(items))

	c.refreshDuplicates(ctx)
	return nil
}

// LoadCategories fetches every category for the pickers.
func (c *Controller) LoadCategories(ctx context.Context) error {
	categories, err := c.api.ListCategories(ctx, model.CategoryTypeAny)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	c.mu.Lock()
	c.categories = categories
	c.mu.Unlock()
	return nil
}

// rebuildViewLocked recomputes the visible indices and clamps focus.
func (c *Controller) rebuildViewLocked() {
	c.view = c.view[:0]
	for i, item := range c.items {
		if c.filter.Matches(item) {
			c.view = append(c.view, i)
		}
	}
	c.clampFocusLocked()
}

func (c *Controller) clampFocusLocked() {
	switch {
	case len(c.view) == 0:
		c.focused = 0
	case c.focused >= len(c.view):
		c.focused = len(c.view) - 1
	case c.focused < 0:
		c.focused = 0
	}
}

// removeLocked drops items by id from the queue, the selection and every
// duplicate set. Sets left without candidates are removed.
func (c *Controller) removeLocked(ids []int) {
	if len(ids) == 0 {
		return
	}
	gone := make(map[int]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
		delete(c.selected, id)
	}

	kept := c.items[:0]
	for _, item := range c.items {
		if !gone[item.ID] {
			kept = append(kept, item)
		}
	}
	c.items = kept

	sets := make(map[int]model.DuplicateSet, len(c.duplicates))
	for id, set := range c.duplicates {
		if gone[id] {
			continue
		}
		for removed := range gone {
			set = set.Without(removed)
		}
		if len(set.Duplicates) == 0 {
			continue
		}
		sets[id] = set
	}
	c.duplicates = sets

	c.rebuildViewLocked()
}

func (c *Controller) indexOfLocked(id int) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// confirm asks the prompter, showing the confirm modal while it waits.
// A declined prompt is reported as common.ErrCancelled.
func (c *Controller) confirm(ctx context.Context, message string) error {
	c.mu.Lock()
	previous := c.modal
	c.modal = ModalConfirm
	c.mu.Unlock()

	ok, err := c.prompter.Confirm(ctx, message)

	c.mu.Lock()
	if c.modal == ModalConfirm {
		c.modal = previous
	}
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return common.ErrCancelled
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
