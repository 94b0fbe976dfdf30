package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DuplicateKind distinguishes queue items from already-saved expenses.
type DuplicateKind string

const (
	// DuplicateRaw is another unresolved queue item.
	DuplicateRaw DuplicateKind = "raw"
	// DuplicateSaved is an expense that was already saved.
	DuplicateSaved DuplicateKind = "saved"
)

// Duplicate is one candidate match for a queue item.
type Duplicate struct {
	Amount          decimal.Decimal `json:"amount"`
	Type            DuplicateKind   `json:"type"`
	TransactionDate string          `json:"transaction_date"`
	MerchantName    string          `json:"merchant_name"`
	Description     string          `json:"description,omitempty"`
	ID              int             `json:"id"`
}

// DuplicateSet groups a queue item with its suspected duplicates.
type DuplicateSet struct {
	RawExpense QueueItem   `json:"raw_expense"`
	Duplicates []Duplicate `json:"duplicates"`
}

// Without returns the set with the given raw item removed from its candidates.
func (s DuplicateSet) Without(id int) DuplicateSet {
	kept := make([]Duplicate, 0, len(s.Duplicates))
	for _, d := range s.Duplicates {
		if d.Type == DuplicateRaw && d.ID == id {
			continue
		}
		kept = append(kept, d)
	}
	s.Duplicates = kept
	return s
}

// Cards lists the set as the modal renders it: the item first, then its candidates.
func (s DuplicateSet) Cards() []Duplicate {
	cards := make([]Duplicate, 0, len(s.Duplicates)+1)
	cards = append(cards, Duplicate{
		ID:              s.RawExpense.ID,
		Type:            DuplicateRaw,
		TransactionDate: s.RawExpense.TransactionDate,
		Amount:          s.RawExpense.Amount,
		MerchantName:    s.RawExpense.MerchantLabel(),
		Description:     s.RawExpense.RawDescription,
	})
	return append(cards, s.Duplicates...)
}

// DuplicateIDs returns the keys of a duplicate map in ascending order.
func DuplicateIDs(sets map[int]DuplicateSet) []int {
	ids := make([]int, 0, len(sets))
	for id := range sets {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
