package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/expense-queue/internal/format"
	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/tui/themes"
)

// Merge form fields, in tab order.
const (
	MergeFieldMerchant = iota
	MergeFieldCategory
	MergeFieldType
	MergeFieldDescription
	MergeFieldTags
	mergeFieldCount
)

// MergeFormModel collects the expense data for a merge. Text fields are
// typed; category and type cycle with Left and Right.
type MergeFormModel struct {
	theme       themes.Theme
	merchant    textinput.Model
	description textinput.Model
	tags        textinput.Model
	categories  []Option
	category    int
	typ         int
	focus       int
}

// NewMergeForm creates a form with the merchant prefilled.
func NewMergeForm(merchant string, categories []Option, theme themes.Theme) MergeFormModel {
	newInput := func(placeholder string) textinput.Model {
		input := textinput.New()
		input.Prompt = ""
		input.Placeholder = placeholder
		input.CharLimit = 255
		input.Width = 36
		return input
	}

	m := MergeFormModel{
		theme:       theme,
		merchant:    newInput("merchant name (required)"),
		description: newInput("optional"),
		tags:        newInput("comma separated"),
		categories:  categories,
		category:    -1,
		typ:         -1,
	}
	m.merchant.SetValue(merchant)
	m.merchant.CursorEnd()
	m.merchant.Focus()
	return m
}

// Focused returns the index of the focused field.
func (m MergeFormModel) Focused() int {
	return m.focus
}

// FocusMerchant moves focus back to the merchant name.
func (m *MergeFormModel) FocusMerchant() tea.Cmd {
	m.setFocus(MergeFieldMerchant)
	return textinput.Blink
}

func (m *MergeFormModel) input(field int) *textinput.Model {
	switch field {
	case MergeFieldMerchant:
		return &m.merchant
	case MergeFieldDescription:
		return &m.description
	case MergeFieldTags:
		return &m.tags
	default:
		return nil
	}
}

func (m *MergeFormModel) setFocus(field int) {
	if in := m.input(m.focus); in != nil {
		in.Blur()
	}
	m.focus = field
	if in := m.input(m.focus); in != nil {
		in.Focus()
	}
}

// cycle moves a choice index through [-1, n-1], where -1 means unset.
func cycle(current, delta, n int) int {
	size := n + 1
	return ((current+1+delta)%size+size)%size - 1
}

// Update handles keys.
func (m MergeFormModel) Update(msg tea.Msg) (MergeFormModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % mergeFieldCount)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + mergeFieldCount - 1) % mergeFieldCount)
			return m, nil
		case "enter", "ctrl+s":
			form := m.Value()
			return m, func() tea.Msg { return form }
		case "left", "right":
			delta := 1
			if key.String() == "left" {
				delta = -1
			}
			switch m.focus {
			case MergeFieldCategory:
				m.category = cycle(m.category, delta, len(m.categories))
				return m, nil
			case MergeFieldType:
				m.typ = cycle(m.typ, delta, len(model.ExpenseTypes))
				return m, nil
			}
		}
	}

	in := m.input(m.focus)
	if in == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return m, cmd
}

// Value returns the form as it would be submitted.
func (m MergeFormModel) Value() MergeSubmittedMsg {
	v := MergeSubmittedMsg{
		MerchantName: strings.TrimSpace(m.merchant.Value()),
		Description:  strings.TrimSpace(m.description.Value()),
		Tags:         SplitTags(m.tags.Value()),
	}
	if m.category >= 0 {
		id := m.categories[m.category].ID
		v.CategoryID = &id
	}
	if m.typ >= 0 {
		v.Type = model.ExpenseTypes[m.typ]
	}
	return v
}

// SplitTags parses a comma separated tag list.
func SplitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// View renders the form.
func (m MergeFormModel) View() string {
	category := "none"
	if m.category >= 0 {
		category = format.Sanitize(m.categories[m.category].Value)
	}
	typ := "none"
	if m.typ >= 0 {
		typ = string(model.ExpenseTypes[m.typ])
	}

	rows := []struct {
		label string
		value string
	}{
		{"Merchant", m.merchant.View()},
		{"Category", "‹ " + category + " ›"},
		{"Type", "‹ " + typ + " ›"},
		{"Description", m.description.View()},
		{"Tags", m.tags.View()},
	}

	lines := make([]string, 0, len(rows)+2)
	for i, row := range rows {
		label := fmt.Sprintf("%-12s", row.label)
		if i == m.focus {
			label = m.theme.Key.Render(label)
		} else {
			label = m.theme.Subtitle.Render(label)
		}
		lines = append(lines, label+" "+row.value)
	}
	lines = append(lines, "", m.theme.Faint.Render("Tab next field · ←/→ choose · Enter merge · Esc cancel"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
