// Package model defines the view models shared by the queue client, its API layer and the emulator.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of transaction dates.
const DateLayout = "2006-01-02"

// ExpenseType classifies how discretionary an expense is.
type ExpenseType string

const (
	// TypeFixed is a recurring, non-negotiable cost.
	TypeFixed ExpenseType = "fixed"
	// TypeNecessaryVariable is a required cost whose amount varies.
	TypeNecessaryVariable ExpenseType = "necessary variable"
	// TypeDiscretionary is an optional cost.
	TypeDiscretionary ExpenseType = "discretionary"
)

// ExpenseTypes lists the valid expense types in display order.
var ExpenseTypes = []ExpenseType{TypeFixed, TypeNecessaryVariable, TypeDiscretionary}

// Valid reports whether t is one of the known expense types.
func (t ExpenseType) Valid() bool {
	for _, known := range ExpenseTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseExpenseType converts user input into an ExpenseType.
func ParseExpenseType(s string) (ExpenseType, error) {
	t := ExpenseType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid expense type %q", s)
	}
	return t, nil
}

// MerchantRef is the abbreviated merchant alias embedded in queue items.
type MerchantRef struct {
	DisplayName string `json:"display_name"`
	RawName     string `json:"raw_name,omitempty"`
	ID          int    `json:"id"`
}

// QueueItem is one imported transaction awaiting categorization.
type QueueItem struct {
	Amount                 decimal.Decimal `json:"amount"`
	MerchantAliasID        *int            `json:"merchant_alias_id"`
	MerchantAlias          *MerchantRef    `json:"merchant_alias"`
	SuggestedMerchantAlias *MerchantRef    `json:"suggested_merchant_alias"`
	CategoryID             *int            `json:"category_id"`
	Category               *CategoryRef    `json:"category"`
	SuggestedCategoryID    *int            `json:"suggested_category_id"`
	TransactionDate        string          `json:"transaction_date"`
	Currency               string          `json:"currency,omitempty"`
	RawMerchantName        string          `json:"raw_merchant_name"`
	RawDescription         string          `json:"raw_description"`
	Source                 string          `json:"source"`
	SourceFile             string          `json:"source_file,omitempty"`
	Type                   ExpenseType     `json:"type,omitempty"`
	SuggestedType          ExpenseType     `json:"suggested_type,omitempty"`
	Description            string          `json:"description,omitempty"`
	Tags                   []string        `json:"tags"`
	ID                     int             `json:"id"`
}

// IsExpense reports whether the item is money going out.
func (q QueueItem) IsExpense() bool {
	return q.Amount.IsNegative()
}

// Date parses the transaction date.
func (q QueueItem) Date() (time.Time, error) {
	return time.Parse(DateLayout, q.TransactionDate)
}

// ResolvedMerchantID returns the user-confirmed merchant alias, if any.
func (q QueueItem) ResolvedMerchantID() (int, bool) {
	if q.MerchantAliasID != nil {
		return *q.MerchantAliasID, true
	}
	if q.MerchantAlias != nil {
		return q.MerchantAlias.ID, true
	}
	return 0, false
}

// EffectiveMerchantID returns the resolved merchant, falling back to the suggestion.
func (q QueueItem) EffectiveMerchantID() (int, bool) {
	if id, ok := q.ResolvedMerchantID(); ok {
		return id, true
	}
	if q.SuggestedMerchantAlias != nil {
		return q.SuggestedMerchantAlias.ID, true
	}
	return 0, false
}

// ResolvedCategoryID returns the user-confirmed category, if any.
func (q QueueItem) ResolvedCategoryID() (int, bool) {
	if q.CategoryID != nil {
		return *q.CategoryID, true
	}
	if q.Category != nil {
		return q.Category.ID, true
	}
	return 0, false
}

// EffectiveCategoryID returns the resolved category, falling back to the suggestion.
func (q QueueItem) EffectiveCategoryID() (int, bool) {
	if id, ok := q.ResolvedCategoryID(); ok {
		return id, true
	}
	if q.SuggestedCategoryID != nil {
		return *q.SuggestedCategoryID, true
	}
	return 0, false
}

// IsComplete reports whether the item carries a merchant and a category,
// resolved or suggested. Only complete items may be bulk-saved.
func (q QueueItem) IsComplete() bool {
	_, hasMerchant := q.EffectiveMerchantID()
	_, hasCategory := q.EffectiveCategoryID()
	return hasMerchant && hasCategory
}

// MerchantLabel is the best display name for the item's merchant.
func (q QueueItem) MerchantLabel() string {
	switch {
	case q.MerchantAlias != nil && q.MerchantAlias.DisplayName != "":
		return q.MerchantAlias.DisplayName
	case q.SuggestedMerchantAlias != nil && q.SuggestedMerchantAlias.DisplayName != "":
		return q.SuggestedMerchantAlias.DisplayName
	default:
		return q.RawMerchantName
	}
}

// HasSuggestionOnly reports whether merchant or category are only proposed by the server.
func (q QueueItem) HasSuggestionOnly() bool {
	_, resolvedMerchant := q.ResolvedMerchantID()
	_, resolvedCategory := q.ResolvedCategoryID()
	return (!resolvedMerchant && q.SuggestedMerchantAlias != nil) ||
		(!resolvedCategory && q.SuggestedCategoryID != nil)
}

// EffectiveType returns the confirmed type, falling back to the suggestion.
func (q QueueItem) EffectiveType() ExpenseType {
	if q.Type != "" {
		return q.Type
	}
	return q.SuggestedType
}

// QueueItemUpdate is the body of PUT /api/queue/{id}. Nil fields are left untouched.
type QueueItemUpdate struct {
	MerchantAliasID *int         `json:"merchant_alias_id,omitempty"`
	CategoryID      *int         `json:"category_id,omitempty"`
	Type            *ExpenseType `json:"type,omitempty"`
	Description     *string      `json:"description,omitempty"`
	Tags            *[]string    `json:"tags,omitempty"`
}

// Apply copies the update onto a local item so the in-memory copy matches the server.
func (u QueueItemUpdate) Apply(item *QueueItem) {
	if u.MerchantAliasID != nil {
		id := *u.MerchantAliasID
		item.MerchantAliasID = &id
		if item.MerchantAlias == nil || item.MerchantAlias.ID != id {
			item.MerchantAlias = &MerchantRef{ID: id}
			if item.SuggestedMerchantAlias != nil && item.SuggestedMerchantAlias.ID == id {
				item.MerchantAlias.DisplayName = item.SuggestedMerchantAlias.DisplayName
			}
		}
	}
	if u.CategoryID != nil {
		id := *u.CategoryID
		item.CategoryID = &id
		if item.Category != nil && item.Category.ID != id {
			item.Category = nil
		}
	}
	if u.Type != nil {
		item.Type = *u.Type
	}
	if u.Description != nil {
		item.Description = *u.Description
	}
	if u.Tags != nil {
		item.Tags = append([]string(nil), (*u.Tags)...)
	}
}
