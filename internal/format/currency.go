// Package format renders amounts, dates and server-provided text for the terminal.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is assumed for items that carry no currency code.
const DefaultCurrency = "GBP"

var currencySymbols = map[string]string{
	"GBP": "£",
	"EUR": "€",
	"USD": "$",
}

// Currency formats an amount with two decimals and the code's symbol,
// e.g. -£22.50. Codes without a known symbol are appended: 25.00 CHF.
func Currency(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}

	digits := amount.Abs().StringFixed(2)
	sign := ""
	if amount.IsNegative() && !amount.Round(2).IsZero() {
		sign = "-"
	}

	symbol, ok := currencySymbols[code]
	if !ok {
		return sign + digits + " " + code
	}
	return sign + symbol + digits
}

// SignedCurrency is Currency with an explicit + on money coming in.
func SignedCurrency(amount decimal.Decimal, code string) string {
	s := Currency(amount, code)
	if amount.IsPositive() && !amount.Round(2).IsZero() {
		return "+" + s
	}
	return s
}
