package format

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/expense-queue/internal/common"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		amount string
		code   string
		want   string
	}{
		{amount: "-22.5", code: "GBP", want: "-£22.50"},
		{amount: "25", code: "GBP", want: "£25.00"},
		{amount: "25", code: "", want: "£25.00"},
		{amount: "3.1", code: "eur", want: "€3.10"},
		{amount: "-4", code: "USD", want: "-$4.00"},
		{amount: "25", code: "CHF", want: "25.00 CHF"},
		{amount: "-25", code: "CHF", want: "-25.00 CHF"},
		{amount: "-0.001", code: "GBP", want: "£0.00"},
		{amount: "1234.567", code: "GBP", want: "£1234.57"},
	}

	for _, tt := range tests {
		t.Run(tt.amount+" "+tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency(decimal.RequireFromString(tt.amount), tt.code))
		})
	}
}

func TestSignedCurrency(t *testing.T) {
	assert.Equal(t, "+£10.00", SignedCurrency(decimal.RequireFromString("10"), "GBP"))
	assert.Equal(t, "-£10.00", SignedCurrency(decimal.RequireFromString("-10"), "GBP"))
	assert.Equal(t, "£0.00", SignedCurrency(decimal.Zero, "GBP"))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "TESCO STORES", want: "TESCO STORES"},
		{name: "color codes", in: "\x1b[31mred\x1b[0m alert", want: "red alert"},
		{name: "control characters", in: "a\tb\nc\x07d", want: "a b c d"},
		{name: "collapses whitespace", in: "  lots   of\r\nspace ", want: "lots of space"},
		{name: "keeps unicode", in: "Café £5", want: "Café £5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestTruncateAndPad(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "ab   ", Pad("ab", 5))
	assert.Equal(t, "abcd…", Pad("abcdefgh", 5))
}

func TestDates(t *testing.T) {
	assert.Equal(t, "01 Mar 2024", Date("2024-03-01"))
	assert.Equal(t, "01 Mar", DateShort("2024-03-01"))
	assert.Equal(t, "not a date", Date("not a date"))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "250ms", Duration(250*time.Millisecond))
	assert.Equal(t, "42s", Duration(42*time.Second))
	assert.Equal(t, "2m", Duration(2*time.Minute))
	assert.Equal(t, "2m 5s", Duration(2*time.Minute+5*time.Second))
}

func TestTags(t *testing.T) {
	assert.Equal(t, "#work #travel", Tags([]string{"work", "", "travel"}))
	assert.Equal(t, "", Tags(nil))
}

func TestToast(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	toast := NewToast(LevelSuccess, "Saved\x1b[0m 3 items", now, time.Second)
	assert.Equal(t, "Saved 3 items", toast.Message)
	assert.True(t, toast.Active(now))
	assert.False(t, toast.Active(now.Add(time.Second)))
	assert.Equal(t, "success", toast.Level.String())

	cancelled := ErrorToast(common.ErrCancelled, now)
	assert.Equal(t, LevelInfo, cancelled.Level)

	apiErr := &common.APIError{Status: 404, Detail: "Raw expense not found"}
	failed := ErrorToast(errors.Join(errors.New("discard"), apiErr), now)
	assert.Equal(t, LevelError, failed.Level)
	assert.Equal(t, "Raw expense not found", failed.Message)

	assert.False(t, Toast{}.Active(now))
}
