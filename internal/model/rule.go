package model

import "fmt"

// RuleField is the queue item field a rule inspects.
type RuleField string

const (
	// FieldRawMerchantName matches against the bank's merchant text.
	FieldRawMerchantName RuleField = "raw_merchant_name"
	// FieldRawDescription matches against the bank's description text.
	FieldRawDescription RuleField = "raw_description"
	// FieldAmount matches against the formatted amount.
	FieldAmount RuleField = "amount"
	// FieldSource matches against the import source.
	FieldSource RuleField = "source"
)

// MatchType controls how a rule value is compared.
type MatchType string

const (
	// MatchExact compares for equality.
	MatchExact MatchType = "exact"
	// MatchRegex treats the value as a regular expression.
	MatchRegex MatchType = "regex"
)

// RuleAction is what happens to an item that matches a rule.
type RuleAction string

const (
	// ActionDiscard deletes the matched item.
	ActionDiscard RuleAction = "discard"
	// ActionSave resolves the matched item using the rule's save data.
	ActionSave RuleAction = "save"
)

// RuleSaveData is the expense template applied by a save rule.
type RuleSaveData struct {
	CategoryID   *int        `json:"category_id,omitempty"`
	MerchantName string      `json:"merchant_name,omitempty"`
	Description  string      `json:"description,omitempty"`
	Type         ExpenseType `json:"type,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
}

// Rule auto-processes queue items whose field matches a value.
type Rule struct {
	SaveData   *RuleSaveData `json:"save_data,omitempty"`
	Name       string        `json:"name"`
	Field      RuleField     `json:"field"`
	MatchType  MatchType     `json:"match_type"`
	MatchValue string        `json:"match_value"`
	Action     RuleAction    `json:"action"`
	ID         int           `json:"id"`
	Active     bool          `json:"active"`
}

// RuleInput carries the writable fields of a rule.
type RuleInput struct {
	SaveData   *RuleSaveData `json:"save_data,omitempty"`
	Active     *bool         `json:"active,omitempty"`
	Name       string        `json:"name,omitempty"`
	Field      RuleField     `json:"field,omitempty"`
	MatchType  MatchType     `json:"match_type,omitempty"`
	MatchValue string        `json:"match_value,omitempty"`
	Action     RuleAction    `json:"action,omitempty"`
}

// Validate checks the enumerated fields of a new rule.
func (r RuleInput) Validate() error {
	switch r.Field {
	case FieldRawMerchantName, FieldRawDescription, FieldAmount, FieldSource:
	default:
		return fmt.Errorf("invalid rule field %q", r.Field)
	}
	switch r.MatchType {
	case MatchExact, MatchRegex:
	default:
		return fmt.Errorf("invalid match type %q", r.MatchType)
	}
	switch r.Action {
	case ActionDiscard, ActionSave:
	default:
		return fmt.Errorf("invalid rule action %q", r.Action)
	}
	if r.MatchValue == "" {
		return fmt.Errorf("rule match value is required")
	}
	return nil
}
