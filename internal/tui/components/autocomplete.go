package components

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/expense-queue/internal/format"
	"github.com/Veraticus/expense-queue/internal/tui/themes"
)

// DefaultDebounce is the quiet period before a search is issued.
const DefaultDebounce = 300 * time.Millisecond

const maxSuggestions = 8

// Suggestion is one autocomplete result.
type Suggestion struct {
	Label  string
	Detail string
	ID     int
}

// Source looks up and creates autocomplete entries.
type Source interface {
	Search(ctx context.Context, query string) ([]Suggestion, error)
	Create(ctx context.Context, name string) (Suggestion, error)
}

type debounceMsg struct {
	name string
	seq  int
}

type suggestionsMsg struct {
	err     error
	name    string
	results []Suggestion
	seq     int
}

type createdMsg struct {
	err        error
	name       string
	suggestion Suggestion
}

// AutocompleteModel is a debounced search-and-create input. Every
// keystroke bumps a sequence number; only the tick carrying the latest
// number searches, and results for older numbers are dropped.
type AutocompleteModel struct {
	ctx        context.Context
	source     Source
	err        error
	theme      themes.Theme
	name       string
	label      string
	input      textinput.Model
	results    []Suggestion
	debounce   time.Duration
	seq        int
	resultsSeq int
	cursor     int
	width      int
	loading    bool
	creating   bool
	pending    bool
}

// NewAutocomplete creates an autocomplete named name, which tags its messages.
func NewAutocomplete(ctx context.Context, name, label string, source Source, debounce time.Duration, theme themes.Theme) AutocompleteModel {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	input := textinput.New()
	input.Placeholder = "type to search, Enter to pick or create"
	input.CharLimit = 80
	input.Prompt = "> "
	input.Focus()

	return AutocompleteModel{
		ctx:      ctx,
		source:   source,
		theme:    theme,
		name:     name,
		label:    label,
		input:    input,
		debounce: debounce,
		cursor:   -1,
		width:    48,
		loading:  true,
	}
}

// Init issues the initial, unfiltered search.
func (m AutocompleteModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.search(m.seq, ""))
}

// Value returns the current input text.
func (m AutocompleteModel) Value() string {
	return m.input.Value()
}

// Seq returns the sequence number of the latest keystroke.
func (m AutocompleteModel) Seq() int {
	return m.seq
}

// Results returns the suggestions currently shown.
func (m AutocompleteModel) Results() []Suggestion {
	return m.results
}

// Reset clears the input for the next entry.
func (m *AutocompleteModel) Reset() {
	m.input.SetValue("")
	m.seq++
	m.cursor = -1
	m.err = nil
}

// Focus gives the input keyboard focus.
func (m *AutocompleteModel) Focus() tea.Cmd {
	return m.input.Focus()
}

// Blur removes keyboard focus.
func (m *AutocompleteModel) Blur() {
	m.input.Blur()
}

// Resize sets the rendered width.
func (m *AutocompleteModel) Resize(width int) {
	m.width = max(20, width)
	m.input.Width = m.width - 4
}

// Update handles keys and the asynchronous search results.
func (m AutocompleteModel) Update(msg tea.Msg) (AutocompleteModel, tea.Cmd) {
	switch msg := msg.(type) {
	case debounceMsg:
		if msg.name != m.name || msg.seq != m.seq {
			return m, nil
		}
		m.loading = true
		return m, m.search(msg.seq, m.input.Value())

	case suggestionsMsg:
		if msg.name != m.name || msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.resultsSeq = msg.seq
		m.results = msg.results
		if len(m.results) > maxSuggestions {
			m.results = m.results[:maxSuggestions]
		}
		m.cursor = -1
		if len(m.results) > 0 {
			m.cursor = 0
		}
		if m.pending {
			m.pending = false
			if msg.err == nil {
				return m.commit()
			}
		}
		return m, nil

	case createdMsg:
		if msg.name != m.name {
			return m, nil
		}
		m.creating = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		return m, m.chosen(msg.suggestion, true)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m AutocompleteModel) handleKey(msg tea.KeyMsg) (AutocompleteModel, tea.Cmd) {
	switch msg.String() {
	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "ctrl+n", "tab":
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		return m.commit()
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}

	m.seq++
	m.err = nil
	seq, name := m.seq, m.name
	tick := tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return debounceMsg{name: name, seq: seq}
	})
	return m, tea.Batch(cmd, tick)
}

// commit picks an exact match, else the highlighted suggestion, else
// creates the typed name. Results older than the input are refreshed
// first and the commit completes when they arrive.
func (m AutocompleteModel) commit() (AutocompleteModel, tea.Cmd) {
	if m.creating {
		return m, nil
	}
	typed := strings.TrimSpace(m.input.Value())
	if s, ok := m.exactMatch(typed); ok {
		return m, m.chosen(s, false)
	}
	if !m.resultsFresh() {
		m.pending = true
		m.loading = true
		return m, m.search(m.seq, typed)
	}
	if m.cursor >= 0 && m.cursor < len(m.results) {
		return m, m.chosen(m.results[m.cursor], false)
	}
	if typed == "" {
		return m, nil
	}

	m.creating = true
	source, ctx, name := m.source, m.ctx, m.name
	return m, func() tea.Msg {
		s, err := source.Create(ctx, typed)
		if err != nil {
			err = fmt.Errorf("failed to create %q: %w", typed, err)
		}
		return createdMsg{name: name, suggestion: s, err: err}
	}
}

// resultsFresh reports whether the shown results belong to the current input.
func (m AutocompleteModel) resultsFresh() bool {
	return !m.loading && m.resultsSeq == m.seq
}

func (m AutocompleteModel) exactMatch(typed string) (Suggestion, bool) {
	if typed == "" {
		return Suggestion{}, false
	}
	for _, s := range m.results {
		if strings.EqualFold(s.Label, typed) {
			return s, true
		}
	}
	return Suggestion{}, false
}

func (m AutocompleteModel) chosen(s Suggestion, created bool) tea.Cmd {
	name := m.name
	return func() tea.Msg {
		return SuggestionChosenMsg{Source: name, Suggestion: s, Created: created}
	}
}

func (m AutocompleteModel) search(seq int, query string) tea.Cmd {
	source, ctx, name := m.source, m.ctx, m.name
	return func() tea.Msg {
		results, err := source.Search(ctx, strings.TrimSpace(query))
		return suggestionsMsg{name: name, seq: seq, results: results, err: err}
	}
}

// View renders the input and its suggestion list.
func (m AutocompleteModel) View() string {
	lines := []string{m.theme.Title.Render(m.label), m.input.View()}

	switch {
	case m.err != nil:
		lines = append(lines, m.theme.StatusError.Render(format.Sanitize(m.err.Error())))
	case m.creating:
		lines = append(lines, m.theme.Faint.Render("creating…"))
	case m.loading:
		lines = append(lines, m.theme.Faint.Render("searching…"))
	}

	for i, s := range m.results {
		text := format.Truncate(format.Sanitize(s.Label), m.width-4)
		if s.Detail != "" {
			text += " " + m.theme.Faint.Render(format.Sanitize(s.Detail))
		}
		if i == m.cursor {
			lines = append(lines, m.theme.Highlighted.Render("› "+text))
			continue
		}
		lines = append(lines, "  "+text)
	}

	if typed := strings.TrimSpace(m.input.Value()); typed != "" {
		if _, ok := m.exactMatch(typed); !ok && m.resultsFresh() && len(m.results) == 0 {
			lines = append(lines, m.theme.Suggested.Render(fmt.Sprintf("Enter creates %q", typed)))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
