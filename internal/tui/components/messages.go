package components

import "github.com/Veraticus/expense-queue/internal/model"

// CancelledMsg is sent when an editor is dismissed without a value.
type CancelledMsg struct{}

// PickedMsg is sent when a picker option is chosen.
type PickedMsg struct {
	Picker string
	Option Option
}

// SuggestionChosenMsg is sent when an autocomplete commits a suggestion,
// either an existing one or one it just created.
type SuggestionChosenMsg struct {
	Source     string
	Suggestion Suggestion
	Created    bool
}

// TagsCommittedMsg carries the final tag list of the tag editor.
type TagsCommittedMsg struct {
	Tags []string
}

// TextCommittedMsg carries the value of a single-line editor.
type TextCommittedMsg struct {
	Value string
}

// FilterSubmittedMsg carries a parsed filter.
type FilterSubmittedMsg struct {
	Filter model.QueueFilter
}

// MergeSubmittedMsg carries the filled-in merge form.
type MergeSubmittedMsg struct {
	CategoryID   *int
	MerchantName string
	Description  string
	Type         model.ExpenseType
	Tags         []string
}
