package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts of the queue.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Selection
	ToggleSelect key.Binding
	SelectAll    key.Binding
	Escape       key.Binding

	// Actions
	Save           key.Binding
	Discard        key.Binding
	Archive        key.Binding
	Merge          key.Binding
	ApplyRules     key.Binding
	Reload         key.Binding
	Duplicate      key.Binding
	DuplicatesPage key.Binding
	Filter         key.Binding
	Search         key.Binding

	// Update mode
	UpdateMode  key.Binding
	Category    key.Binding
	Merchant    key.Binding
	Tags        key.Binding
	Type        key.Binding
	Description key.Binding

	// Duplicate views
	NextSet     key.Binding
	PrevSet     key.Binding
	DiscardCard key.Binding

	// Confirm
	Yes key.Binding
	No  key.Binding

	// Application
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+b"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+f"),
			key.WithHelp("PgDn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last"),
		),

		ToggleSelect: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space/x", "toggle selection"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "select all"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close / leave mode / clear"),
		),

		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Discard: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "discard"),
		),
		Archive: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "archive"),
		),
		Merge: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "merge selection"),
		),
		ApplyRules: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "apply rules"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload"),
		),
		Duplicate: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "show duplicates"),
		),
		DuplicatesPage: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "all duplicates"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),

		UpdateMode: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "update mode"),
		),
		Category: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "category"),
		),
		Merchant: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "merchant"),
		),
		Tags: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "tags"),
		),
		Type: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "type"),
		),
		Description: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "description"),
		),

		DiscardCard: key.NewBinding(
			key.WithKeys("X", "d"),
			key.WithHelp("X", "discard card"),
		),
		NextSet: key.NewBinding(
			key.WithKeys("n", "right", "l"),
			key.WithHelp("n/→", "next set"),
		),
		PrevSet: key.NewBinding(
			key.WithKeys("p", "left", "h"),
			key.WithHelp("p/←", "previous set"),
		),

		Yes: key.NewBinding(
			key.WithKeys("y", "Y", "enter"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "no"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
	}
}

// ShortHelp returns key bindings for the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleSelect, k.Save, k.Discard, k.UpdateMode, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the help screen.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.ToggleSelect, k.SelectAll, k.Escape, k.Filter, k.Search},
		{k.Save, k.Discard, k.Archive, k.Merge, k.ApplyRules, k.Reload},
		{k.Duplicate, k.DuplicatesPage, k.NextSet, k.PrevSet, k.DiscardCard},
		{k.UpdateMode, k.Category, k.Merchant, k.Tags, k.Type, k.Description},
		{k.Help, k.Quit, k.ForceQuit},
	}
}

// updateHelp is the short help shown while update mode is armed.
func (k KeyMap) updateHelp() []key.Binding {
	return []key.Binding{k.Category, k.Merchant, k.Tags, k.Type, k.Description, k.UpdateMode}
}
