package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/tui/themes"
)

const (
	filterDateFrom = iota
	filterDateTo
	filterMerchant
	filterAmountMin
	filterAmountMax
	filterSearch
	filterFieldCount
)

var filterLabels = [filterFieldCount]string{
	"From (YYYY-MM-DD)",
	"To (YYYY-MM-DD)",
	"Merchant",
	"Min amount",
	"Max amount",
	"Search",
}

// FilterFormModel edits the queue filter. Tab moves between fields and
// Enter applies; invalid dates or amounts keep the form open.
type FilterFormModel struct {
	err    error
	theme  themes.Theme
	source string
	inputs [filterFieldCount]textinput.Model
	focus  int
}

// NewFilterForm creates a form prefilled from f.
func NewFilterForm(f model.QueueFilter, theme themes.Theme) FilterFormModel {
	m := FilterFormModel{theme: theme, source: f.Source}
	values := [filterFieldCount]string{
		f.DateFrom, f.DateTo, f.Merchant, decimalText(f.AmountMin), decimalText(f.AmountMax), f.Search,
	}
	for i := range m.inputs {
		input := textinput.New()
		input.Prompt = ""
		input.CharLimit = 64
		input.Width = 30
		input.SetValue(values[i])
		m.inputs[i] = input
	}
	m.inputs[0].Focus()
	return m
}

func decimalText(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// Err returns the last validation error.
func (m FilterFormModel) Err() error {
	return m.err
}

// Focused returns the index of the focused field.
func (m FilterFormModel) Focused() int {
	return m.focus
}

// Update handles keys.
func (m FilterFormModel) Update(msg tea.Msg) (FilterFormModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % filterFieldCount)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + filterFieldCount - 1) % filterFieldCount)
			return m, nil
		case "ctrl+u":
			for i := range m.inputs {
				m.inputs[i].SetValue("")
			}
			m.err = nil
			return m, nil
		case "enter":
			f, err := m.parse()
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			return m, func() tea.Msg { return FilterSubmittedMsg{Filter: f} }
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *FilterFormModel) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m FilterFormModel) value(i int) string {
	return strings.TrimSpace(m.inputs[i].Value())
}

func (m FilterFormModel) parse() (model.QueueFilter, error) {
	f := model.QueueFilter{
		DateFrom: m.value(filterDateFrom),
		DateTo:   m.value(filterDateTo),
		Merchant: m.value(filterMerchant),
		Search:   m.value(filterSearch),
		Source:   m.source,
	}
	for _, d := range []string{f.DateFrom, f.DateTo} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(model.DateLayout, d); err != nil {
			return f, fmt.Errorf("invalid date %q, use YYYY-MM-DD", d)
		}
	}
	if f.DateFrom != "" && f.DateTo != "" && f.DateFrom > f.DateTo {
		return f, fmt.Errorf("from date is after to date")
	}

	var err error
	if f.AmountMin, err = parseAmount(m.value(filterAmountMin)); err != nil {
		return f, err
	}
	if f.AmountMax, err = parseAmount(m.value(filterAmountMax)); err != nil {
		return f, err
	}
	if f.AmountMin != nil && f.AmountMax != nil && f.AmountMin.GreaterThan(*f.AmountMax) {
		return f, fmt.Errorf("min amount is above max amount")
	}
	return f, nil
}

// parseAmount reads an optional non-negative amount; filters compare magnitudes.
func parseAmount(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "£"))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	d = d.Abs()
	return &d, nil
}

// View renders the form.
func (m FilterFormModel) View() string {
	lines := []string{m.theme.Title.Render("Filter queue"), ""}
	for i, input := range m.inputs {
		label := fmt.Sprintf("%-18s", filterLabels[i])
		if i == m.focus {
			label = m.theme.Key.Render(label)
		} else {
			label = m.theme.Subtitle.Render(label)
		}
		lines = append(lines, label+" "+input.View())
	}
	lines = append(lines, "")
	if m.err != nil {
		lines = append(lines, m.theme.StatusError.Render(m.err.Error()))
	}
	lines = append(lines, m.theme.Faint.Render("Tab next field · Enter apply · Ctrl+U clear · Esc cancel"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
