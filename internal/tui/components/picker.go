package components

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/expense-queue/internal/format"
	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/tui/themes"
)

// Option is one choice of a picker.
type Option struct {
	Label string
	Value string
	ID    int
	Depth int
}

// CategoryOptions turns a category tree into picker options.
func CategoryOptions(nodes []model.CategoryNode) []Option {
	options := make([]Option, 0, len(nodes))
	for _, n := range nodes {
		label := n.Name
		if n.Icon != "" {
			label = n.Icon + " " + label
		}
		options = append(options, Option{ID: n.ID, Label: label, Value: n.Name, Depth: n.Depth})
	}
	return options
}

// TypeOptions lists the expense types.
func TypeOptions() []Option {
	options := make([]Option, 0, len(model.ExpenseTypes))
	for i, t := range model.ExpenseTypes {
		options = append(options, Option{ID: i, Label: string(t), Value: string(t)})
	}
	return options
}

// PickerModel chooses one option from a fixed list, narrowed by typing.
// Matches rank by substring position, then by edit distance; with an
// empty query the original order (the category tree) is kept.
type PickerModel struct {
	theme   themes.Theme
	name    string
	title   string
	input   textinput.Model
	all     []Option
	visible []Option
	cursor  int
	height  int
	width   int
}

// NewPicker creates a picker named name over options.
func NewPicker(name, title string, options []Option, theme themes.Theme) PickerModel {
	input := textinput.New()
	input.Placeholder = "filter"
	input.Prompt = "> "
	input.CharLimit = 40
	input.Focus()

	m := PickerModel{
		theme:  theme,
		name:   name,
		title:  title,
		input:  input,
		all:    options,
		height: 12,
		width:  48,
	}
	m.refresh()
	return m
}

// Visible returns the options matching the current query, in display order.
func (m PickerModel) Visible() []Option {
	return m.visible
}

// Selected returns the highlighted option.
func (m PickerModel) Selected() (Option, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return Option{}, false
	}
	return m.visible[m.cursor], true
}

// Resize sets the rendered size.
func (m *PickerModel) Resize(width, height int) {
	m.width = max(20, width)
	m.height = max(3, height)
	m.input.Width = m.width - 4
}

// Update handles keys.
func (m PickerModel) Update(msg tea.Msg) (PickerModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "ctrl+n", "tab":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		option, ok := m.Selected()
		if !ok {
			return m, nil
		}
		name := m.name
		return m, func() tea.Msg { return PickedMsg{Picker: name, Option: option} }
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.refresh()
	}
	return m, cmd
}

type rankedOption struct {
	option   Option
	position int
	distance int
	order    int
}

func (m *PickerModel) refresh() {
	query := strings.ToLower(strings.TrimSpace(m.input.Value()))
	m.cursor = 0
	if query == "" {
		m.visible = append([]Option(nil), m.all...)
		return
	}

	queryLen := len([]rune(query))
	ranked := make([]rankedOption, 0, len(m.all))
	for i, o := range m.all {
		label := strings.ToLower(o.Value)
		if pos := strings.Index(label, query); pos >= 0 {
			ranked = append(ranked, rankedOption{option: o, position: pos, order: i})
			continue
		}
		prefix := label
		if r := []rune(label); len(r) > queryLen {
			prefix = string(r[:queryLen])
		}
		if d := levenshtein.ComputeDistance(query, prefix); d <= typoBudget(query) {
			ranked = append(ranked, rankedOption{option: o, position: len(label), distance: d, order: i})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		if a.position != b.position {
			return a.position < b.position
		}
		return a.order < b.order
	})

	m.visible = make([]Option, 0, len(ranked))
	for _, r := range ranked {
		m.visible = append(m.visible, r.option)
	}
}

// typoBudget is the edit distance tolerated for a query of this length.
func typoBudget(query string) int {
	switch n := len([]rune(query)); {
	case n < 3:
		return 0
	case n < 6:
		return 1
	default:
		return 2
	}
}

// View renders the filter input and the visible window of options.
func (m PickerModel) View() string {
	lines := []string{m.theme.Title.Render(m.title), m.input.View()}

	if len(m.visible) == 0 {
		lines = append(lines, m.theme.Faint.Render("  no match"))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	rows := max(1, m.height-2)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(len(m.visible), start+rows)

	for i := start; i < end; i++ {
		o := m.visible[i]
		text := strings.Repeat("  ", o.Depth) + format.Sanitize(o.Label)
		text = format.Truncate(text, m.width-4)
		if i == m.cursor {
			lines = append(lines, m.theme.Highlighted.Render("› "+text))
			continue
		}
		lines = append(lines, "  "+text)
	}
	if end < len(m.visible) {
		lines = append(lines, m.theme.Faint.Render("  …"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
