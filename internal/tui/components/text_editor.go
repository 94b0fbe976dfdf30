package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/expense-queue/internal/tui/themes"
)

// TextEditorModel edits one line of text.
type TextEditorModel struct {
	theme themes.Theme
	title string
	input textinput.Model
}

// NewTextEditor creates an editor prefilled with value.
func NewTextEditor(title, value string, theme themes.Theme) TextEditorModel {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 255
	input.SetValue(value)
	input.CursorEnd()
	input.Focus()
	return TextEditorModel{theme: theme, title: title, input: input}
}

// Value returns the current text.
func (m TextEditorModel) Value() string {
	return m.input.Value()
}

// Resize sets the rendered width.
func (m *TextEditorModel) Resize(width int) {
	m.input.Width = max(16, width-4)
}

// Update handles keys; Enter commits.
func (m TextEditorModel) Update(msg tea.Msg) (TextEditorModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		value := m.input.Value()
		return m, func() tea.Msg { return TextCommittedMsg{Value: value} }
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the editor.
func (m TextEditorModel) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render(m.title),
		m.input.View(),
		"",
		m.theme.Faint.Render("Enter saves · Esc cancels"),
	)
}
