package components

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/testutil"
	"github.com/Veraticus/expense-queue/internal/tui/themes"
)

func TestQueueList_Cells(t *testing.T) {
	items := []model.QueueItem{
		testutil.NewItem(1, "-12.50", testutil.Complete(), testutil.WithTags("food")),
		testutil.NewItem(2, "-3.20", testutil.WithSuggestedMerchant(9, "Pret"), testutil.WithSuggestedCategory(2),
			testutil.WithSuggestedType(model.TypeDiscretionary)),
		testutil.NewItem(3, "1500", testutil.WithRawMerchant("ACME PAYROLL")),
	}

	tests := []struct {
		name     string
		item     model.QueueItem
		merchant string
		category string
		typ      string
	}{
		{name: "resolved", item: items[0], merchant: "Merchant 1", category: "Groceries", typ: ""},
		{name: "suggested", item: items[1], merchant: "~Pret", category: "~Transport", typ: "~discretionary"},
		{name: "raw", item: items[2], merchant: "ACME PAYROLL", category: "—", typ: ""},
	}

	names := map[int]string{1: "Groceries", 2: "Transport"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.merchant, merchantCell(tt.item))
			assert.Equal(t, tt.category, categoryCell(tt.item, names))
			assert.Equal(t, tt.typ, typeCell(tt.item))
		})
	}
}

func TestQueueList_CategoryFallsBackToID(t *testing.T) {
	item := testutil.NewItem(1, "-1", testutil.WithSuggestedCategory(42))

	assert.Equal(t, "~#42", categoryCell(item, nil))
}

func TestQueueList_Marks(t *testing.T) {
	item := testutil.NewItem(1, "-1")

	assert.Equal(t, "  ", marks(item, false, false))
	assert.Equal(t, MarkSelected+" ", marks(item, true, false))
	assert.Equal(t, " "+MarkDuplicate, marks(item, false, true))
}

func TestQueueList_SetRowsFollowsFocus(t *testing.T) {
	items := []model.QueueItem{
		testutil.NewItem(1, "-12.50", testutil.Complete()),
		testutil.NewItem(2, "-3.20", testutil.WithRawMerchant("CORNER SHOP")),
		testutil.NewItem(3, "-8.00"),
	}
	m := NewQueueList(themes.Default)
	m.Resize(120, 10)

	m.SetRows(QueueRows{
		Items:      items,
		Selected:   map[int]bool{2: true},
		Duplicates: map[int]model.DuplicateSet{3: testutil.MustSet(t, items[2], items[0])},
		Categories: testutil.Categories(),
		Focused:    1,
	})

	assert.Equal(t, 1, m.Cursor())
	view := m.View()
	assert.Contains(t, view, "CORNER SHOP")
	assert.Contains(t, view, MarkSelected)
	assert.Contains(t, view, MarkDuplicate)
	assert.Contains(t, view, "Merchant")

	m.SetRows(QueueRows{Items: items[:1], Focused: 5})
	assert.Equal(t, 0, m.Cursor())
}

func TestDuplicateCards(t *testing.T) {
	cards := []model.Duplicate{
		{ID: 1, Type: model.DuplicateRaw, Amount: decimal.RequireFromString("-4.50"), TransactionDate: "2024-03-01", MerchantName: "PRET"},
		{ID: 2, Type: model.DuplicateRaw, Amount: decimal.RequireFromString("-4.50"), TransactionDate: "2024-03-01", MerchantName: "PRET A MANGER"},
		{ID: 90, Type: model.DuplicateSaved, Amount: decimal.RequireFromString("-4.50"), TransactionDate: "2024-03-02", MerchantName: "Pret"},
	}

	out := DuplicateCards(cards, 1, 60, "GBP", themes.Default)

	require.NotEmpty(t, out)
	assert.True(t, strings.Index(out, "This item") < strings.Index(out, "Queue item"))
	assert.Contains(t, out, "Saved expense · read-only")
	assert.Contains(t, out, "#90")
	assert.Contains(t, out, "PRET A MANGER")
}
