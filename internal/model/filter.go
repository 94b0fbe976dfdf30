package model

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// QueueFilter narrows the visible queue. Zero fields match everything.
type QueueFilter struct {
	AmountMin *decimal.Decimal
	AmountMax *decimal.Decimal
	DateFrom  string
	DateTo    string
	Merchant  string
	Source    string
	Search    string
}

// IsZero reports whether the filter has no criteria.
func (f QueueFilter) IsZero() bool {
	return f.AmountMin == nil && f.AmountMax == nil &&
		f.DateFrom == "" && f.DateTo == "" &&
		f.Merchant == "" && f.Source == "" && f.Search == ""
}

// Matches reports whether the item passes every criterion of the filter.
// Amount bounds are compared against the absolute amount; dates compare
// lexically since both sides use the YYYY-MM-DD layout.
func (f QueueFilter) Matches(item QueueItem) bool {
	if f.DateFrom != "" && item.TransactionDate < f.DateFrom {
		return false
	}
	if f.DateTo != "" && item.TransactionDate > f.DateTo {
		return false
	}

	abs := item.Amount.Abs()
	if f.AmountMin != nil && abs.LessThan(*f.AmountMin) {
		return false
	}
	if f.AmountMax != nil && abs.GreaterThan(*f.AmountMax) {
		return false
	}

	if f.Source != "" && !strings.EqualFold(item.Source, f.Source) {
		return false
	}

	if f.Merchant != "" {
		needle := strings.ToLower(f.Merchant)
		if !containsFold(item.RawMerchantName, needle) && !containsFold(item.MerchantLabel(), needle) {
			return false
		}
	}

	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		fields := []string{item.RawMerchantName, item.MerchantLabel(), item.RawDescription, item.Description}
		found := false
		for _, field := range fields {
			if containsFold(field, needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// Query encodes the filter as GET /api/queue/all query parameters.
func (f QueueFilter) Query() url.Values {
	q := url.Values{}
	if f.DateFrom != "" {
		q.Set("date_from", f.DateFrom)
	}
	if f.DateTo != "" {
		q.Set("date_to", f.DateTo)
	}
	if f.AmountMin != nil {
		q.Set("amount_min", f.AmountMin.String())
	}
	if f.AmountMax != nil {
		q.Set("amount_max", f.AmountMax.String())
	}
	if f.Source != "" {
		q.Set("source", f.Source)
	}
	search := f.Search
	if search == "" {
		search = f.Merchant
	}
	if search != "" {
		q.Set("search", search)
	}
	return q
}

func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
