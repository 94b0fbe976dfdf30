package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/expense-queue/internal/format"
	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/tui/themes"
)

// Row markers of the queue list.
const (
	MarkSelected  = "●"
	MarkDuplicate = "⧉"
	MarkSuggested = "~"
)

// QueueRows is the state one render of the list needs.
type QueueRows struct {
	Selected   map[int]bool
	Duplicates map[int]model.DuplicateSet
	Items      []model.QueueItem
	Categories []model.Category
	Focused    int
}

// QueueListModel renders the visible queue items as a table. It holds no
// queue state of its own; the cursor mirrors the controller's focus.
type QueueListModel struct {
	theme  themes.Theme
	table  table.Model
	width  int
	height int
}

// NewQueueList creates an empty list.
func NewQueueList(theme themes.Theme) QueueListModel {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(20),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(false)
	s.Selected = theme.Highlighted
	t.SetStyles(s)

	m := QueueListModel{theme: theme, table: t, width: 80, height: 24}
	m.updateColumnWidths()
	return m
}

// Resize updates the component size.
func (m *QueueListModel) Resize(width, height int) {
	m.width = width
	m.height = height

	// Header row plus its border.
	m.table.SetHeight(max(1, height-2))
	m.updateColumnWidths()
}

// updateColumnWidths splits the available width across the columns.
func (m *QueueListModel) updateColumnWidths() {
	available := max(70, m.width-4)
	fixed := 3 + 11 + 12 + 20
	flexible := available - fixed
	merchant := max(14, flexible*45/100)
	category := max(12, flexible*30/100)
	tags := max(8, flexible-merchant-category)

	m.table.SetColumns([]table.Column{
		{Title: "", Width: 3},
		{Title: "Date", Width: 11},
		{Title: "Merchant", Width: merchant},
		{Title: "Amount", Width: 12},
		{Title: "Category", Width: category},
		{Title: "Type", Width: 20},
		{Title: "Tags", Width: tags},
	})
}

// SetRows replaces the rows and moves the cursor to the focused item.
func (m *QueueListModel) SetRows(rows QueueRows) {
	names := make(map[int]string, len(rows.Categories))
	for _, c := range rows.Categories {
		names[c.ID] = c.Name
	}

	out := make([]table.Row, 0, len(rows.Items))
	for _, item := range rows.Items {
		out = append(out, table.Row{
			marks(item, rows.Selected[item.ID], hasSet(rows.Duplicates, item.ID)),
			format.DateShort(item.TransactionDate),
			merchantCell(item),
			format.SignedCurrency(item.Amount, item.Currency),
			categoryCell(item, names),
			typeCell(item),
			format.Tags(item.Tags),
		})
	}
	m.table.SetRows(out)
	if len(out) > 0 {
		m.table.SetCursor(min(max(rows.Focused, 0), len(out)-1))
	}
}

// Cursor returns the highlighted row.
func (m QueueListModel) Cursor() int {
	return m.table.Cursor()
}

// View renders the table.
func (m QueueListModel) View() string {
	return m.table.View()
}

func hasSet(sets map[int]model.DuplicateSet, id int) bool {
	_, ok := sets[id]
	return ok
}

func marks(item model.QueueItem, selected, duplicate bool) string {
	out := ""
	if selected {
		out += MarkSelected
	} else {
		out += " "
	}
	if duplicate {
		out += MarkDuplicate
	} else {
		out += " "
	}
	return out
}

func merchantCell(item model.QueueItem) string {
	label := format.Sanitize(item.MerchantLabel())
	if _, ok := item.ResolvedMerchantID(); !ok && item.SuggestedMerchantAlias != nil {
		return MarkSuggested + label
	}
	return label
}

func categoryCell(item model.QueueItem, names map[int]string) string {
	if item.Category != nil && item.Category.Name != "" {
		return format.Sanitize(item.Category.Name)
	}
	if id, ok := item.ResolvedCategoryID(); ok {
		if name, found := names[id]; found {
			return format.Sanitize(name)
		}
		return fmt.Sprintf("#%d", id)
	}
	if item.SuggestedCategoryID != nil {
		if name, found := names[*item.SuggestedCategoryID]; found {
			return MarkSuggested + format.Sanitize(name)
		}
		return fmt.Sprintf("%s#%d", MarkSuggested, *item.SuggestedCategoryID)
	}
	return "—"
}

func typeCell(item model.QueueItem) string {
	switch {
	case item.Type != "":
		return string(item.Type)
	case item.SuggestedType != "":
		return MarkSuggested + string(item.SuggestedType)
	default:
		return ""
	}
}
