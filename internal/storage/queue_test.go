package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/model"
)

func TestInsertRawExpense_Validation(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	tests := []struct {
		name string
		item NewItem
	}{
		{"bad date", NewItem{TransactionDate: "01/03/2024", Source: "xlsx_import"}},
		{"missing source", NewItem{TransactionDate: "2024-03-01"}},
		{"bad type", NewItem{TransactionDate: "2024-03-01", Source: "xlsx_import", Type: "luxury"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.InsertRawExpense(ctx, tt.item)
			assert.ErrorIs(t, err, ErrInvalidItem)
		})
	}
}

func TestListQueue_Suggestions(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	groceries := createCategory(t, store, "Groceries", model.CategoryTypeExpense)
	tesco, err := store.CreateMerchant(ctx, model.MerchantInput{RawName: "TESCO", DisplayName: "Tesco", DefaultCategoryID: &groceries.ID})
	require.NoError(t, err)

	// A saved expense teaches the category its type.
	seedID := insertItem(t, store, "2024-01-01", "-5.00", "TESCO")
	_, err = store.ProcessQueueItem(ctx, model.ProcessRequest{
		RawExpenseID: seedID, MerchantAliasID: &tesco.ID, CategoryID: &groceries.ID, Type: model.TypeNecessaryVariable,
	})
	require.NoError(t, err)

	id := insertItem(t, store, "2024-03-02", "-22.50", "TESCO STORES 3297")
	_ = insertItem(t, store, "2024-03-01", "-3.10", "PRET A MANGER")

	items, err := store.ListQueue(ctx, model.QueueFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "PRET A MANGER", items[0].RawMerchantName, "oldest first")
	assert.Nil(t, items[0].SuggestedMerchantAlias)

	item := items[1]
	assert.Equal(t, id, item.ID)
	assert.True(t, item.Amount.Equal(decimal.RequireFromString("-22.50")))
	assert.Equal(t, "GBP", item.Currency)
	assert.Equal(t, []string{}, item.Tags)
	require.NotNil(t, item.SuggestedMerchantAlias)
	assert.Equal(t, "Tesco", item.SuggestedMerchantAlias.DisplayName)
	require.NotNil(t, item.SuggestedCategoryID)
	assert.Equal(t, groceries.ID, *item.SuggestedCategoryID)
	assert.Equal(t, model.TypeNecessaryVariable, item.SuggestedType)
	assert.True(t, item.IsComplete())

	count, err := store.QueueCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	filtered, err := store.ListQueue(ctx, model.QueueFilter{Search: "pret"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "PRET A MANGER", filtered[0].RawMerchantName)
}

func TestUpdateQueueItem(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	cat := createCategory(t, store, "Transport", model.CategoryTypeExpense)
	merchant, err := store.CreateMerchant(ctx, model.MerchantInput{DisplayName: "TfL"})
	require.NoError(t, err)
	id := insertItem(t, store, "2024-03-01", "-2.80", "TFL TRAVEL CH")

	typ := model.TypeFixed
	desc := "commute"
	tags := []string{"work", "travel"}
	require.NoError(t, store.UpdateQueueItem(ctx, id, model.QueueItemUpdate{
		MerchantAliasID: &merchant.ID,
		CategoryID:      &cat.ID,
		Type:            &typ,
		Description:     &desc,
		Tags:            &tags,
	}))

	item, err := store.GetQueueItem(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, item.MerchantAlias)
	assert.Equal(t, "TfL", item.MerchantAlias.DisplayName)
	require.NotNil(t, item.Category)
	assert.Equal(t, "Transport", item.Category.Name)
	assert.Equal(t, model.TypeFixed, item.Type)
	assert.Equal(t, "commute", item.Description)
	assert.Equal(t, []string{"work", "travel"}, item.Tags)

	missing := 999
	err = store.UpdateQueueItem(ctx, id, model.QueueItemUpdate{CategoryID: &missing})
	assert.ErrorIs(t, err, common.ErrNotFound)

	bad := model.ExpenseType("luxury")
	err = store.UpdateQueueItem(ctx, id, model.QueueItemUpdate{Type: &bad})
	assert.ErrorIs(t, err, ErrInvalidItem)

	err = store.UpdateQueueItem(ctx, 999, model.QueueItemUpdate{Description: &desc})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteQueueItem(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	id := insertItem(t, store, "2024-03-01", "-1.00", "X")

	require.NoError(t, store.DeleteQueueItem(ctx, id))
	assert.ErrorIs(t, store.DeleteQueueItem(ctx, id), common.ErrNotFound)
}

func TestProcessQueueItem(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	cat := createCategory(t, store, "Groceries", model.CategoryTypeExpense)
	id := insertItem(t, store, "2024-03-01", "-22.50", "TESCO STORES 3297")

	resp, err := store.ProcessQueueItem(ctx, model.ProcessRequest{
		RawExpenseID: id,
		MerchantName: "Tesco",
		CategoryID:   &cat.ID,
		Description:  "weekly shop",
		Tags:         []string{"home", "home"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Raw expense processed successfully", resp.Message)

	expense, err := store.GetExpense(ctx, resp.ExpenseID)
	require.NoError(t, err)
	assert.True(t, expense.Amount.Equal(decimal.RequireFromString("-22.50")))
	require.NotNil(t, expense.RawExpenseID)
	assert.Equal(t, id, *expense.RawExpenseID)
	require.NotNil(t, expense.MerchantAlias)
	assert.Equal(t, "Tesco", expense.MerchantAlias.DisplayName)
	assert.Equal(t, "TESCO STORES 3297", expense.MerchantAlias.RawName)
	require.Len(t, expense.Tags, 1)
	assert.Equal(t, "home", expense.Tags[0].Name)

	// The new alias remembers the category for later suggestions.
	merchant, err := store.FindMerchantByDisplayName(ctx, "Tesco")
	require.NoError(t, err)
	require.NotNil(t, merchant.DefaultCategoryID)
	assert.Equal(t, cat.ID, *merchant.DefaultCategoryID)

	_, err = store.ProcessQueueItem(ctx, model.ProcessRequest{RawExpenseID: id, MerchantName: "Tesco"})
	assert.ErrorIs(t, err, ErrAlreadySaved)
	_, err = store.ProcessQueueItem(ctx, model.ProcessRequest{RawExpenseID: 999})
	assert.ErrorIs(t, err, common.ErrNotFound)

	count, err := store.QueueCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBulkSave(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	cat := createCategory(t, store, "Groceries", model.CategoryTypeExpense)
	_, err := store.CreateMerchant(ctx, model.MerchantInput{RawName: "TESCO", DisplayName: "Tesco", DefaultCategoryID: &cat.ID})
	require.NoError(t, err)

	complete := insertItem(t, store, "2024-03-01", "-22.50", "TESCO STORES")
	incomplete := insertItem(t, store, "2024-03-02", "-3.10", "UNKNOWN")

	resp, err := store.BulkSave(ctx, []int{complete, incomplete, 999})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.SavedCount)
	assert.Equal(t, 2, resp.FailedCount)
	require.Len(t, resp.Errors, 2)
	assert.Contains(t, resp.Errors[0], "Raw expense")
	assert.Contains(t, resp.Errors[0], "missing a merchant or category")

	items, err := store.ListQueue(ctx, model.QueueFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, incomplete, items[0].ID)

	_, err = store.BulkSave(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptySlice)
}

func TestArchive(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	a := insertItem(t, store, "2024-03-01", "-1.00", "A")
	b := insertItem(t, store, "2024-03-01", "-2.00", "B")

	resp, err := store.Archive(ctx, []int{a, b, 999})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.ArchivedCount)

	resp, err = store.Archive(ctx, []int{a})
	require.NoError(t, err)
	assert.Zero(t, resp.ArchivedCount)

	count, err := store.QueueCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMerge(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	cat := createCategory(t, store, "Eating out", model.CategoryTypeExpense)
	a := insertItem(t, store, "2024-03-03", "-12.00", "DISHOOM")
	b := insertItem(t, store, "2024-03-01", "-8.50", "DISHOOM TIP")
	other := insertItem(t, store, "2024-03-05", "-1.00", "OTHER")

	resp, err := store.Merge(ctx, model.MergeRequest{
		RawExpenseIDs: []int{a, b},
		ExpenseData:   model.MergeData{MerchantName: "Dishoom", CategoryID: &cat.ID, Tags: []string{"dinner"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{a, b}, resp.ArchivedRawExpenseIDs)

	expense, err := store.GetExpense(ctx, resp.ExpenseID)
	require.NoError(t, err)
	assert.True(t, expense.Amount.Equal(decimal.RequireFromString("-20.50")))
	assert.Equal(t, "2024-03-01", expense.TransactionDate)
	assert.Nil(t, expense.RawExpenseID)
	require.Len(t, expense.Tags, 1)

	items, err := store.ListQueue(ctx, model.QueueFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, other, items[0].ID)

	t.Run("needs two", func(t *testing.T) {
		_, err := store.Merge(ctx, model.MergeRequest{RawExpenseIDs: []int{other, other}, ExpenseData: model.MergeData{MerchantName: "X"}})
		assert.ErrorIs(t, err, ErrInvalidItem)
	})
	t.Run("needs merchant", func(t *testing.T) {
		_, err := store.Merge(ctx, model.MergeRequest{RawExpenseIDs: []int{1, 2}})
		assert.ErrorIs(t, err, ErrEmptyString)
	})
	t.Run("unknown item", func(t *testing.T) {
		_, err := store.Merge(ctx, model.MergeRequest{RawExpenseIDs: []int{other, 999}, ExpenseData: model.MergeData{MerchantName: "X"}})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestFindDuplicates(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	saved := insertItem(t, store, "2024-03-01", "-22.50", "TESCO")
	_, err := store.ProcessQueueItem(ctx, model.ProcessRequest{RawExpenseID: saved, MerchantName: "Tesco"})
	require.NoError(t, err)

	a := insertItem(t, store, "2024-03-01", "-22.50", "TESCO STORES")
	b := insertItem(t, store, "2024-03-01", "-22.5", "TESCO STORES")
	_ = insertItem(t, store, "2024-03-02", "-22.50", "TESCO STORES")
	_ = insertItem(t, store, "2024-03-01", "-9.99", "SPOTIFY")
	c := insertItem(t, store, "2024-03-05", "-4.00", "PRET")
	d := insertItem(t, store, "2024-03-05", "-4.00", "PRET")

	sets, err := store.FindDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{a, b, c, d}, model.DuplicateIDs(sets))

	setA := sets[a]
	assert.Equal(t, a, setA.RawExpense.ID)
	require.Len(t, setA.Duplicates, 2)
	assert.Equal(t, model.DuplicateRaw, setA.Duplicates[0].Type)
	assert.Equal(t, b, setA.Duplicates[0].ID)
	assert.Equal(t, model.DuplicateSaved, setA.Duplicates[1].Type)
	assert.Equal(t, "Tesco", setA.Duplicates[1].MerchantName)

	setC := sets[c]
	require.Len(t, setC.Duplicates, 1, "same amount a day apart is not a duplicate")
	assert.Equal(t, d, setC.Duplicates[0].ID)
}

func TestCategoryType(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	cat := createCategory(t, store, "Bills", model.CategoryTypeExpense)

	typ, err := store.CategoryType(ctx, cat.ID)
	require.NoError(t, err)
	assert.Nil(t, typ)

	for _, tt := range []model.ExpenseType{model.TypeFixed, model.TypeDiscretionary, model.TypeFixed} {
		id := insertItem(t, store, "2024-03-01", "-10.00", "BILL")
		_, err := store.ProcessQueueItem(ctx, model.ProcessRequest{RawExpenseID: id, CategoryID: &cat.ID, Type: tt})
		require.NoError(t, err)
	}

	typ, err = store.CategoryType(ctx, cat.ID)
	require.NoError(t, err)
	require.NotNil(t, typ)
	assert.Equal(t, model.TypeFixed, *typ)

	_, err = store.CategoryType(ctx, 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
