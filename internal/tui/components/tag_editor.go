package components

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/expense-queue/internal/format"
	"github.com/Veraticus/expense-queue/internal/tui/themes"
)

// TagSourceName tags the messages of the tag editor's autocomplete.
const TagSourceName = "tags"

// TagEditorModel edits an ordered tag list. Tags are added through an
// autocomplete. With the input empty, Left and Right move a cursor over the
// chips, Backspace or Delete removes the chip under it (the last chip when
// none is focused) and Enter commits the list.
type TagEditorModel struct {
	theme        themes.Theme
	autocomplete AutocompleteModel
	tags         []string
	chip         int // -1 while the input has focus
}

// NewTagEditor creates a tag editor starting from tags.
func NewTagEditor(ctx context.Context, tags []string, source Source, debounce time.Duration, theme themes.Theme) TagEditorModel {
	m := TagEditorModel{
		theme:        theme,
		autocomplete: NewAutocomplete(ctx, TagSourceName, "Tags", source, debounce, theme),
		chip:         -1,
	}
	for _, t := range tags {
		m.add(t)
	}
	return m
}

// Init starts the autocomplete.
func (m TagEditorModel) Init() tea.Cmd {
	return m.autocomplete.Init()
}

// Tags returns the current list.
func (m TagEditorModel) Tags() []string {
	return append([]string(nil), m.tags...)
}

// FocusedChip returns the index of the chip under the cursor, or -1.
func (m TagEditorModel) FocusedChip() int {
	return m.chip
}

// Resize sets the rendered width.
func (m *TagEditorModel) Resize(width int) {
	m.autocomplete.Resize(width)
}

func (m *TagEditorModel) add(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	for _, t := range m.tags {
		if strings.EqualFold(t, tag) {
			return
		}
	}
	m.tags = append(m.tags, tag)
}

func (m *TagEditorModel) remove(i int) {
	if i < 0 || i >= len(m.tags) {
		return
	}
	m.tags = append(m.tags[:i:i], m.tags[i+1:]...)
	if m.chip >= len(m.tags) {
		m.chip = len(m.tags) - 1
	}
}

func (m *TagEditorModel) moveChip(delta int) {
	if len(m.tags) == 0 {
		m.chip = -1
		return
	}
	switch {
	case m.chip < 0 && delta < 0:
		m.chip = len(m.tags) - 1
	case m.chip < 0:
	case m.chip+delta >= len(m.tags):
		m.chip = -1
	default:
		m.chip = max(0, m.chip+delta)
	}
}

// Update handles keys and autocomplete results.
func (m TagEditorModel) Update(msg tea.Msg) (TagEditorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case SuggestionChosenMsg:
		if msg.Source != TagSourceName {
			return m, nil
		}
		m.add(msg.Suggestion.Label)
		m.autocomplete.Reset()
		return m, nil

	case tea.KeyMsg:
		if strings.TrimSpace(m.autocomplete.Value()) == "" {
			switch msg.String() {
			case "enter", "ctrl+s":
				tags := m.Tags()
				return m, func() tea.Msg { return TagsCommittedMsg{Tags: tags} }
			case "left":
				m.moveChip(-1)
				return m, nil
			case "right":
				m.moveChip(1)
				return m, nil
			case "backspace", "delete":
				if m.chip >= 0 {
					m.remove(m.chip)
				} else {
					m.remove(len(m.tags) - 1)
				}
				return m, nil
			}
		}
		if msg.String() == "ctrl+s" {
			tags := m.Tags()
			return m, func() tea.Msg { return TagsCommittedMsg{Tags: tags} }
		}
		m.chip = -1
	}

	var cmd tea.Cmd
	m.autocomplete, cmd = m.autocomplete.Update(msg)
	return m, cmd
}

// View renders the chips above the autocomplete.
func (m TagEditorModel) View() string {
	chips := m.theme.Faint.Render("no tags")
	if len(m.tags) > 0 {
		rendered := make([]string, 0, len(m.tags))
		for i, t := range m.tags {
			style := m.theme.Selected
			if i == m.chip {
				style = m.theme.Highlighted
			}
			rendered = append(rendered, style.Render("#"+format.Sanitize(t)))
		}
		chips = strings.Join(rendered, " ")
	}
	hint := m.theme.Faint.Render("Enter on empty input saves · ←/→ pick a tag · Backspace removes it")
	return lipgloss.JoinVertical(lipgloss.Left, chips, "", m.autocomplete.View(), "", hint)
}
