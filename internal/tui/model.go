// Package tui is the interactive queue: a Bubble Tea program that binds
// keys, editors and overlays to the queue controller.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/format"
	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/queue"
	"github.com/Veraticus/expense-queue/internal/tui/components"
	"github.com/Veraticus/expense-queue/internal/tui/themes"
)

// Names tagging picker and autocomplete messages.
const (
	pickerCategory = "category"
	pickerType     = "type"
	sourceMerchant = "merchant"
)

// Model holds the main TUI state. Queue state lives in the controller;
// the model owns only the widgets of whichever overlay is open.
type Model struct {
	ctx       context.Context
	ctrl      *queue.Controller
	theme     themes.Theme
	config    Config
	now       func() time.Time
	confirm   *confirmRequestMsg
	toast     format.Toast
	keymap    KeyMap
	help      help.Model
	spinner   spinner.Model
	search    textinput.Model
	list      components.QueueListModel
	picker    components.PickerModel
	merchant  components.AutocompleteModel
	tags      components.TagEditorModel
	text      components.TextEditorModel
	filter    components.FilterFormModel
	merge     components.MergeFormModel
	width     int
	height    int
	running   int
	searching bool
	ready     bool
	quitting  bool
}

// NewModel creates the program model around a controller.
func NewModel(ctx context.Context, ctrl *queue.Controller, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search merchant or description"
	search.CharLimit = 80

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = cfg.Theme.StatusInfo

	h := help.New()
	h.Styles.ShortKey = cfg.Theme.Key
	h.Styles.FullKey = cfg.Theme.Key

	m := Model{
		ctx:     ctx,
		ctrl:    ctrl,
		theme:   cfg.Theme,
		config:  cfg,
		now:     cfg.Now,
		keymap:  DefaultKeyMap(),
		help:    h,
		spinner: sp,
		search:  search,
		list:    components.NewQueueList(cfg.Theme),
		width:   cfg.Width,
		height:  cfg.Height,
	}
	m.handleResize()
	return m
}

// Init loads the queue.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadQueue(), m.spinner.Tick)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case loadedMsg:
		m.ready = true
		if msg.err != nil {
			return m, m.showError(msg.err)
		}
		return m, nil

	case opDoneMsg:
		return m.handleOpDone(msg)

	case confirmRequestMsg:
		m.confirm = &msg
		return m, nil

	case toastMsg:
		m.toast = msg.toast
		return m, expireToast(msg.toast.Expires.Sub(m.now()), msg.toast.Expires)

	case toastExpiredMsg:
		if m.toast.Expires.Equal(msg.at) {
			m.toast = format.Toast{}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case components.CancelledMsg:
		return m, m.reloadAfterClose(m.ctrl.CloseModal())

	case components.PickedMsg:
		return m.handlePicked(msg)

	case components.SuggestionChosenMsg:
		if msg.Source == sourceMerchant {
			merchant := model.Merchant{ID: msg.Suggestion.ID, DisplayName: msg.Suggestion.Label}
			return m.start("merchant", func(ctx context.Context) (*model.BatchResult, error) {
				return m.ctrl.ApplyMerchant(ctx, merchant)
			})
		}

	case components.TagsCommittedMsg:
		tags := msg.Tags
		return m.start("tags", func(ctx context.Context) (*model.BatchResult, error) {
			return m.ctrl.ApplyTags(ctx, tags)
		})

	case components.TextCommittedMsg:
		text := msg.Value
		return m.start("description", func(ctx context.Context) (*model.BatchResult, error) {
			return m.ctrl.ApplyDescription(ctx, text)
		})

	case components.FilterSubmittedMsg:
		if err := m.ctrl.SetFilter(msg.Filter); err != nil {
			return m, m.showError(err)
		}
		if msg.Filter.IsZero() {
			return m, m.showInfo("Filter cleared")
		}
		return m, m.showInfo(fmt.Sprintf("%d items match", m.ctrl.Len()))

	case components.MergeSubmittedMsg:
		form := queue.MergeForm{
			CategoryID:   msg.CategoryID,
			MerchantName: msg.MerchantName,
			Description:  msg.Description,
			Type:         msg.Type,
			Tags:         msg.Tags,
		}
		m.running++
		return m, m.saveMerge(form)
	}

	return m.forward(msg)
}

// forward hands messages the model does not handle itself, such as
// autocomplete search results, to the open overlay.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.ctrl.Modal() {
	case queue.ModalCategory, queue.ModalType:
		m.picker, cmd = m.picker.Update(msg)
	case queue.ModalMerchant:
		m.merchant, cmd = m.merchant.Update(msg)
	case queue.ModalTags:
		m.tags, cmd = m.tags.Update(msg)
	case queue.ModalDescription:
		m.text, cmd = m.text.Update(msg)
	case queue.ModalFilter:
		m.filter, cmd = m.filter.Update(msg)
	case queue.ModalMerge:
		m.merge, cmd = m.merge.Update(msg)
	}
	return m, cmd
}

// handleKey routes a key press: pending confirmation first, then the
// search line, then the open overlay, then the list.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		return m.quit()
	}

	if m.confirm != nil {
		switch {
		case key.Matches(msg, m.keymap.Yes):
			m.answer(true)
		case key.Matches(msg, m.keymap.No):
			m.answer(false)
		}
		return m, nil
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	modal := m.ctrl.Modal()
	if key.Matches(msg, m.keymap.Escape) {
		return m, m.reloadAfterClose(m.ctrl.Escape())
	}

	switch modal {
	case queue.ModalNone:
		return m.handleListKey(msg)
	case queue.ModalHelp:
		if key.Matches(msg, m.keymap.Help, m.keymap.Quit) {
			m.ctrl.CloseModal()
		}
		return m, nil
	case queue.ModalDuplicate:
		return m.handleDuplicateKey(msg)
	case queue.ModalDuplicatesPage:
		return m.handlePageKey(msg)
	case queue.ModalConfirm:
		return m, nil
	default:
		return m.forward(msg)
	}
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.ctrl.SetSearch("")
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.ctrl.SetSearch(m.search.Value())
	}
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keymap
	if m.ctrl.UpdateMode() {
		editors := []struct {
			binding key.Binding
			modal   queue.Modal
		}{
			{k.Category, queue.ModalCategory},
			{k.Merchant, queue.ModalMerchant},
			{k.Tags, queue.ModalTags},
			{k.Type, queue.ModalType},
			{k.Description, queue.ModalDescription},
		}
		for _, e := range editors {
			if key.Matches(msg, e.binding) {
				return m.openEditor(e.modal)
			}
		}
	}

	switch {
	case key.Matches(msg, k.Quit):
		return m.quit()
	case key.Matches(msg, k.Help):
		m.ctrl.OpenHelp()
	case key.Matches(msg, k.Up):
		m.ctrl.MoveFocus(-1)
	case key.Matches(msg, k.Down):
		m.ctrl.MoveFocus(1)
	case key.Matches(msg, k.PageUp):
		m.ctrl.PageFocus(-m.pageSize())
	case key.Matches(msg, k.PageDown):
		m.ctrl.PageFocus(m.pageSize())
	case key.Matches(msg, k.Home):
		m.ctrl.FocusFirst()
	case key.Matches(msg, k.End):
		m.ctrl.FocusLast()
	case key.Matches(msg, k.ToggleSelect):
		m.ctrl.ToggleSelect()
	case key.Matches(msg, k.SelectAll):
		m.ctrl.SelectAll()
	case key.Matches(msg, k.UpdateMode):
		if m.ctrl.ToggleUpdateMode() {
			return m, m.showInfo("Update mode: c category · m merchant · t tags · y type · e description")
		}
		return m, m.showInfo("Update mode off")
	case key.Matches(msg, k.Save):
		if m.ctrl.SelectedCount() > 0 {
			return m.start("bulk save", m.ctrl.BulkSaveSelected)
		}
		m.running++
		return m, m.saveFocused()
	case key.Matches(msg, k.Discard):
		if m.ctrl.SelectedCount() > 0 {
			return m.start("discard", m.ctrl.DiscardSelected)
		}
		return m.start("discard", m.ctrl.DiscardFocused)
	case key.Matches(msg, k.Archive):
		return m.start("archive", m.ctrl.ArchiveSelected)
	case key.Matches(msg, k.Merge):
		summary, err := m.ctrl.OpenMerge()
		if err != nil {
			return m, m.showError(err)
		}
		m.merge = components.NewMergeForm(summary.Merchant, components.CategoryOptions(m.ctrl.CategoryOptions()), m.theme)
		return m, textinput.Blink
	case key.Matches(msg, k.Filter):
		if err := m.ctrl.OpenFilter(); err != nil {
			return m, m.showError(err)
		}
		m.filter = components.NewFilterForm(m.ctrl.Filter(), m.theme)
		return m, textinput.Blink
	case key.Matches(msg, k.Search):
		m.searching = true
		m.search.SetValue(m.ctrl.Filter().Search)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, k.DuplicatesPage):
		if err := m.ctrl.OpenDuplicatesPage(); err != nil {
			return m, m.showError(err)
		}
	case key.Matches(msg, k.Duplicate):
		item, ok := m.ctrl.FocusedItem()
		if !ok {
			return m, nil
		}
		if err := m.ctrl.OpenDuplicate(item.ID); err != nil {
			return m, m.showError(err)
		}
	case key.Matches(msg, k.Reload):
		return m, m.loadQueue()
	case key.Matches(msg, k.ApplyRules):
		m.running++
		return m, m.applyRules()
	}
	return m, nil
}

func (m Model) handleDuplicateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.ctrl.DuplicateMove(-1)
	case key.Matches(msg, m.keymap.Down):
		m.ctrl.DuplicateMove(1)
	case key.Matches(msg, m.keymap.DiscardCard):
		m.running++
		return m, m.op("discard duplicate", m.ctrl.DiscardDuplicateCard)
	case key.Matches(msg, m.keymap.Quit):
		m.ctrl.CloseModal()
	}
	return m, nil
}

func (m Model) handlePageKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.ctrl.DuplicateMove(-1)
	case key.Matches(msg, m.keymap.Down):
		m.ctrl.DuplicateMove(1)
	case key.Matches(msg, m.keymap.NextSet):
		m.ctrl.PageStep(1)
	case key.Matches(msg, m.keymap.PrevSet):
		m.ctrl.PageStep(-1)
	case key.Matches(msg, m.keymap.Save):
		m.running++
		return m, m.op("save duplicate", m.ctrl.PageSave)
	case key.Matches(msg, m.keymap.DiscardCard):
		m.running++
		return m, m.op("discard duplicate", m.ctrl.PageDiscard)
	case key.Matches(msg, m.keymap.Quit):
		return m, m.reloadAfterClose(m.ctrl.CloseModal())
	}
	return m, nil
}

// openEditor shows a field editor over the current targets.
func (m Model) openEditor(modal queue.Modal) (tea.Model, tea.Cmd) {
	if err := m.ctrl.OpenEditor(modal); err != nil {
		return m, m.showError(err)
	}
	targets := m.ctrl.TargetItems()
	width := m.overlayWidth()

	switch modal {
	case queue.ModalCategory:
		m.picker = components.NewPicker(pickerCategory, m.editorTitle("Category", targets),
			components.CategoryOptions(m.ctrl.CategoryOptions()), m.theme)
		m.picker.Resize(width, m.height/2)
		return m, textinput.Blink
	case queue.ModalType:
		m.picker = components.NewPicker(pickerType, m.editorTitle("Type", targets), components.TypeOptions(), m.theme)
		m.picker.Resize(width, 6)
		return m, textinput.Blink
	case queue.ModalMerchant:
		m.merchant = components.NewAutocomplete(m.ctx, sourceMerchant, m.editorTitle("Merchant", targets),
			merchantSource{api: m.config.Catalog}, m.config.Debounce, m.theme)
		m.merchant.Resize(width)
		return m, m.merchant.Init()
	case queue.ModalTags:
		var initial []string
		if len(targets) == 1 {
			initial = targets[0].Tags
		}
		m.tags = components.NewTagEditor(m.ctx, initial, tagSource{api: m.config.Catalog}, m.config.Debounce, m.theme)
		m.tags.Resize(width)
		return m, m.tags.Init()
	case queue.ModalDescription:
		value := ""
		if len(targets) == 1 {
			value = targets[0].Description
		}
		m.text = components.NewTextEditor(m.editorTitle("Description", targets), value, m.theme)
		m.text.Resize(width)
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) editorTitle(field string, targets []model.QueueItem) string {
	if len(targets) == 1 {
		return fmt.Sprintf("%s · %s", field, format.Sanitize(targets[0].MerchantLabel()))
	}
	return fmt.Sprintf("%s · %d items", field, len(targets))
}

func (m Model) handlePicked(msg components.PickedMsg) (tea.Model, tea.Cmd) {
	switch msg.Picker {
	case pickerCategory:
		id := msg.Option.ID
		return m.start("category", func(ctx context.Context) (*model.BatchResult, error) {
			return m.ctrl.ApplyCategory(ctx, id)
		})
	case pickerType:
		typ := model.ExpenseType(msg.Option.Value)
		return m.start("type", func(ctx context.Context) (*model.BatchResult, error) {
			return m.ctrl.ApplyType(ctx, typ)
		})
	}
	return m, nil
}

// start runs a batch action in the background.
func (m Model) start(op string, fn func(context.Context) (*model.BatchResult, error)) (tea.Model, tea.Cmd) {
	m.running++
	return m, m.batchOp(op, fn)
}

func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	if m.running > 0 {
		m.running--
	}

	if msg.err != nil {
		cmd := m.showError(msg.err)
		if errors.Is(msg.err, common.ErrMerchantRequired) && m.ctrl.Modal() == queue.ModalMerge {
			cmd = tea.Batch(cmd, m.merge.FocusMerchant())
		}
		return m, cmd
	}

	if msg.result != nil && !msg.result.OK() {
		return m, m.showToast(format.LevelWarning, msg.result.Summary())
	}
	if msg.notice != "" {
		return m, m.showToast(format.LevelSuccess, msg.notice)
	}
	return m, nil
}

// answer replies to the pending confirmation.
func (m *Model) answer(ok bool) {
	if m.confirm == nil {
		return
	}
	m.confirm.reply <- ok
	m.confirm = nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.answer(false)
	m.quitting = true
	return m, tea.Quit
}

func (m Model) showToast(level format.Level, message string) tea.Cmd {
	toast := format.NewToast(level, message, m.now(), format.DefaultToastTTL)
	return func() tea.Msg { return toastMsg{toast: toast} }
}

func (m Model) showInfo(message string) tea.Cmd {
	return m.showToast(format.LevelInfo, message)
}

func (m Model) showError(err error) tea.Cmd {
	toast := format.ErrorToast(err, m.now())
	return func() tea.Msg { return toastMsg{toast: toast} }
}

// handleResize adjusts component sizes when the terminal resizes.
func (m *Model) handleResize() {
	// Title (1), list header (2), status (1), help (1).
	m.list.Resize(m.width, max(3, m.height-5))
	m.help.Width = m.width
}

func (m Model) pageSize() int {
	return max(1, m.height-7)
}

func (m Model) overlayWidth() int {
	return min(64, max(30, m.width-8))
}
