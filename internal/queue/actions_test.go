package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/testutil"
)

func typePtr(t model.ExpenseType) *model.ExpenseType {
	return &t
}

func TestApplyCategory(t *testing.T) {
	t.Run("writes the implied type", func(t *testing.T) {
		api := testutil.NewFakeAPI(threeItems()...)
		api.CategoryTypes[1] = model.TypeFixed
		c := newLoaded(t, api, nil)

		result, err := c.ApplyCategory(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, result.OK())

		assert.Equal(t, []string{"GET /api/queue/category-type/1", "PUT /api/queue/1"}, api.CallStrings())
		update := api.Calls()[1].Body.(model.QueueItemUpdate)
		assert.Equal(t, 1, *update.CategoryID)
		assert.Equal(t, model.TypeFixed, *update.Type)

		item, _ := c.FocusedItem()
		require.NotNil(t, item.Category)
		assert.Equal(t, "Groceries", item.Category.Name)
		assert.Equal(t, model.TypeFixed, item.Type)
		assert.Equal(t, "categorized 1 of 1", c.Message())
	})

	t.Run("omits an unknown type", func(t *testing.T) {
		api := testutil.NewFakeAPI(threeItems()...)
		c := newLoaded(t, api, nil)

		_, err := c.ApplyCategory(context.Background(), 2)
		require.NoError(t, err)
		update := api.Mutations()[0].Body.(model.QueueItemUpdate)
		assert.Nil(t, update.Type)
	})

	t.Run("type lookup failure sends nothing", func(t *testing.T) {
		api := testutil.NewFakeAPI(threeItems()...)
		api.Fail["GET /api/queue/category-type/1"] = common.ErrTransport
		c := newLoaded(t, api, nil)

		_, err := c.ApplyCategory(context.Background(), 1)
		require.ErrorIs(t, err, common.ErrTransport)
		assert.Empty(t, api.Mutations())
	})
}

func TestApplyTagsRoundTrip(t *testing.T) {
	api := testutil.NewFakeAPI(threeItems()...)
	c := newLoaded(t, api, nil)

	_, err := c.ApplyTags(context.Background(), []string{" work", "travel", "work", ""})
	require.NoError(t, err)

	update := api.Mutations()[0].Body.(model.QueueItemUpdate)
	require.NotNil(t, update.Tags)
	assert.Equal(t, []string{"work", "travel"}, *update.Tags)

	item, _ := c.FocusedItem()
	assert.Equal(t, []string{"work", "travel"}, item.Tags)

	require.NoError(t, c.LoadAll(context.Background()))
	item, _ = c.FocusedItem()
	assert.Equal(t, []string{"work", "travel"}, item.Tags, "tags survive a reload in order")
}

func TestApplyEachContinuesPastFailures(t *testing.T) {
	api := testutil.NewFakeAPI(threeItems()...)
	api.Fail["PUT /api/queue/2"] = common.ErrTransport
	c := newLoaded(t, api, nil, WithUpdateMode())
	c.ToggleUpdateMode()
	c.SelectAll()
	require.NoError(t, c.OpenEditor(ModalType))

	result, err := c.ApplyType(context.Background(), model.TypeDiscretionary)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 2, result.Failed[0].ID)
	assert.ErrorIs(t, result.Err(), common.ErrTransport)
	assert.Len(t, api.Mutations(), 3)
	assert.Equal(t, ModalNone, c.Modal(), "finishing a batch closes the editor")
	assert.Contains(t, c.Message(), "set type on 2 of 3, 1 failed")
	assert.Same(t, result, c.LastResult())
}

func TestApplyMerchantAndDescription(t *testing.T) {
	api := testutil.NewFakeAPI(threeItems()...)
	c := newLoaded(t, api, nil)

	_, err := c.ApplyMerchant(context.Background(), model.Merchant{ID: 9, DisplayName: "Tesco"})
	require.NoError(t, err)
	_, err = c.ApplyDescription(context.Background(), "  weekly shop ")
	require.NoError(t, err)

	item, _ := c.FocusedItem()
	assert.Equal(t, "Tesco", item.MerchantLabel())
	assert.Equal(t, "weekly shop", item.Description)

	_, err = c.ApplyType(context.Background(), "luxury")
	assert.Error(t, err)
	assert.Len(t, api.Mutations(), 2)
}

func TestDiscardSelected(t *testing.T) {
	t.Run("partial failure keeps failed items", func(t *testing.T) {
		api := testutil.NewFakeAPI(threeItems()...)
		api.Fail["DELETE /api/queue/2"] = common.ErrTransport
		prompter := &testutil.Prompter{Answer: true}
		c := newLoaded(t, api, prompter)
		c.SelectAll()

		result, err := c.DiscardSelected(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []string{"Discard 3 items?"}, prompter.Messages)
		assert.Equal(t, []int{1, 3}, result.Succeeded)
		assert.Equal(t, 1, c.Len())
		assert.Equal(t, 0, c.SelectedCount())
		item, _ := c.FocusedItem()
		assert.Equal(t, 2, item.ID)
	})

	t.Run("declined confirmation", func(t *testing.T) {
		api := testutil.NewFakeAPI(threeItems()...)
		c := newLoaded(t, api, &testutil.Prompter{Answer: false})
		c.SelectAll()

		_, err := c.DiscardSelected(context.Background())
		require.ErrorIs(t, err, common.ErrCancelled)
		assert.Empty(t, api.Calls())
		assert.Equal(t, 3, c.Len())
		assert.Equal(t, 3, c.SelectedCount())
	})

	t.Run("removes the item from duplicate sets", func(t *testing.T) {
		items := threeItems()
		api := testutil.NewFakeAPI(items...)
		api.DuplicateSets[1] = testutil.MustSet(t, items[0], items[1])
		c := newLoaded(t, api, nil)
		require.True(t, c.HasDuplicates(1))

		api.Fail["GET /api/queue/find-duplicates"] = common.ErrTransport
		require.True(t, c.FocusID(2))
		_, err := c.DiscardFocused(context.Background())
		require.NoError(t, err)

		assert.False(t, c.HasDuplicates(1), "a set left without candidates is dropped")
		assert.Empty(t, c.Duplicates())
	})
}

func TestArchiveSelected(t *testing.T) {
	api := testutil.NewFakeAPI(threeItems()...)
	c := newLoaded(t, api, nil)
	c.ToggleSelect()
	c.MoveFocus(1)
	c.ToggleSelect()

	result, err := c.ArchiveSelected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, result.Succeeded)

	mutations := api.Mutations()
	require.Len(t, mutations, 1)
	assert.Equal(t, "POST /api/queue/archive", mutations[0].String())
	assert.Equal(t, model.IDsRequest{RawExpenseIDs: []int{1, 2}}, mutations[0].Body)
	assert.Equal(t, 1, c.Len())

	api.Fail["POST /api/queue/archive"] = common.ErrTransport
	c.SelectAll()
	_, err = c.ArchiveSelected(context.Background())
	require.ErrorIs(t, err, common.ErrTransport)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, c.SelectedCount(), "failed archive leaves the selection")
}

func TestBulkSaveRefusesIncompleteItems(t *testing.T) {
	api := testutil.NewFakeAPI(
		testutil.NewItem(1, "-5", testutil.Complete()),
		testutil.NewItem(2, "-6", testutil.WithSuggestedMerchant(9, "Tesco")),
	)
	prompter := &testutil.Prompter{Answer: true}
	c := newLoaded(t, api, prompter)
	c.SelectAll()

	_, err := c.BulkSaveSelected(context.Background())
	require.ErrorIs(t, err, common.ErrIncompleteItems)
	assert.Contains(t, err.Error(), "(1 of 2)")
	assert.Empty(t, api.Calls(), "nothing is sent")
	assert.Empty(t, prompter.Messages, "nothing is asked")
	assert.Equal(t, 2, c.Len())
}

func TestBulkSavePromotesSuggestions(t *testing.T) {
	tesco := testutil.NewItem(1, "-42.10",
		testutil.WithRawMerchant("TESCO STORES 3021"),
		testutil.WithSuggestedMerchant(9, "Tesco"),
		testutil.WithSuggestedCategory(4),
	)
	api := testutil.NewFakeAPI(tesco)
	api.CategoryTypes[4] = model.TypeNecessaryVariable
	c := newLoaded(t, api, nil)
	c.SelectAll()

	result, err := c.BulkSaveSelected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, result.Succeeded)

	mutations := api.Mutations()
	require.Len(t, mutations, 3)

	assert.Equal(t, "PUT /api/queue/1", mutations[0].String())
	assert.Equal(t, model.QueueItemUpdate{MerchantAliasID: testutil.IntPtr(9)}, mutations[0].Body)

	assert.Equal(t, "PUT /api/queue/1", mutations[1].String())
	assert.Equal(t, model.QueueItemUpdate{
		CategoryID: testutil.IntPtr(4),
		Type:       typePtr(model.TypeNecessaryVariable),
	}, mutations[1].Body)

	assert.Equal(t, "POST /api/queue/bulk-save", mutations[2].String())
	assert.Equal(t, model.IDsRequest{RawExpenseIDs: []int{1}}, mutations[2].Body)

	assert.True(t, c.Snapshot().Empty())
	assert.Equal(t, "saved 1 of 1", c.Message())
}

func TestBulkSaveTypeFallsBackToSuggestion(t *testing.T) {
	api := testutil.NewFakeAPI(testutil.NewItem(1, "-3",
		testutil.WithMerchant(9, "Costa"),
		testutil.WithSuggestedCategory(2),
		testutil.WithSuggestedType(model.TypeDiscretionary),
	))
	c := newLoaded(t, api, nil)

	_, err := c.BulkSaveSelected(context.Background())
	require.NoError(t, err)

	mutations := api.Mutations()
	require.Len(t, mutations, 2, "merchant is already resolved")
	update := mutations[0].Body.(model.QueueItemUpdate)
	assert.Equal(t, model.TypeDiscretionary, *update.Type)
}

func TestBulkSaveExcludesFailedPromotions(t *testing.T) {
	api := testutil.NewFakeAPI(
		testutil.NewItem(1, "-5", testutil.WithSuggestedMerchant(9, "Tesco"), testutil.WithCategory(1, "Groceries")),
		testutil.NewItem(2, "-6", testutil.WithSuggestedMerchant(9, "Tesco"), testutil.WithCategory(1, "Groceries")),
	)
	api.Fail["PUT /api/queue/2"] = common.ErrTransport
	c := newLoaded(t, api, nil)
	c.SelectAll()

	result, err := c.BulkSaveSelected(context.Background())
	require.NoError(t, err)

	last := api.Mutations()[len(api.Mutations())-1]
	assert.Equal(t, model.IDsRequest{RawExpenseIDs: []int{1}}, last.Body)
	assert.Equal(t, []int{1}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 2, result.Failed[0].ID)
	assert.Equal(t, 1, c.Len())
}

func TestBulkSavePartialServerFailure(t *testing.T) {
	api := testutil.NewFakeAPI(
		testutil.NewItem(1, "-5", testutil.Complete()),
		testutil.NewItem(2, "-6", testutil.Complete()),
	)
	api.BulkSaveOverride = &model.BulkSaveResponse{
		SavedCount:  1,
		FailedCount: 1,
		Errors:      []string{"Raw expense 2: category missing"},
	}
	api.BeforeCall = func(call testutil.Call) {
		if call.String() == "POST /api/queue/bulk-save" {
			api.Items = api.Items[1:]
		}
	}
	c := newLoaded(t, api, nil)
	c.SelectAll()

	result, err := c.BulkSaveSelected(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{1}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 2, result.Failed[0].ID)
	assert.Equal(t, "Saved 1, 1 failed: Raw expense 2: category missing", c.Message())
	assert.Equal(t, 1, c.Len(), "queue was resynced from the server")
}

func TestSaveFocused(t *testing.T) {
	api := testutil.NewFakeAPI(
		testutil.NewItem(1, "-5"),
		testutil.NewItem(2, "-6", testutil.Complete(), testutil.WithTags("work")),
	)
	c := newLoaded(t, api, nil)

	_, err := c.SaveFocused(context.Background())
	require.ErrorIs(t, err, common.ErrIncompleteItems)
	assert.Empty(t, api.Mutations())

	c.MoveFocus(1)
	resp, err := c.SaveFocused(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1001, resp.ExpenseID)

	req := api.Mutations()[0].Body.(model.ProcessRequest)
	assert.Equal(t, 2, req.RawExpenseID)
	assert.Equal(t, "Merchant 2", req.MerchantName)
	assert.Equal(t, 102, *req.MerchantAliasID)
	assert.Equal(t, 1, *req.CategoryID)
	assert.Equal(t, []string{"work"}, req.Tags)
	assert.Equal(t, "Saved as expense #1001", c.Message())
	assert.Equal(t, 1, c.Len())
}

func TestMerge(t *testing.T) {
	items := []model.QueueItem{
		testutil.NewItem(1, "-12.50", testutil.WithDate("2024-03-02"), testutil.WithCategory(1, "Groceries")),
		testutil.NewItem(2, "-7.50", testutil.WithDate("2024-03-01"), testutil.WithSuggestedMerchant(9, "Tesco")),
		testutil.NewItem(3, "-1.00"),
	}

	t.Run("needs two items", func(t *testing.T) {
		c := newLoaded(t, testutil.NewFakeAPI(items...), nil)
		_, err := c.OpenMerge()
		require.ErrorIs(t, err, common.ErrMergeNeedsTwo)
		c.ToggleSelect()
		_, err = c.OpenMerge()
		require.ErrorIs(t, err, common.ErrMergeNeedsTwo)
	})

	t.Run("summarizes the selection", func(t *testing.T) {
		c := newLoaded(t, testutil.NewFakeAPI(items...), nil)
		c.ToggleSelect()
		c.MoveFocus(1)
		c.ToggleSelect()

		summary, err := c.OpenMerge()
		require.NoError(t, err)
		assert.Equal(t, ModalMerge, c.Modal())
		assert.Equal(t, 2, summary.Count)
		assert.Equal(t, "-20", summary.Total.String())
		assert.Equal(t, "2024-03-01", summary.EarliestDate)
		assert.Equal(t, "Tesco", summary.Merchant)
		assert.Equal(t, []string{"Groceries"}, summary.Categories)

		pending, ok := c.PendingMerge()
		require.True(t, ok)
		assert.Equal(t, summary, pending)

		c.CloseModal()
		_, ok = c.PendingMerge()
		assert.False(t, ok)
	})

	t.Run("merchant is required", func(t *testing.T) {
		api := testutil.NewFakeAPI(items...)
		c := newLoaded(t, api, nil)
		c.SelectAll()

		_, err := c.SaveMerge(context.Background(), MergeForm{MerchantName: "   "})
		require.ErrorIs(t, err, common.ErrMerchantRequired)
		assert.Empty(t, api.Calls())
		assert.Equal(t, 3, c.Len())
	})

	t.Run("saves", func(t *testing.T) {
		api := testutil.NewFakeAPI(items...)
		c := newLoaded(t, api, nil)
		c.ToggleSelect()
		c.MoveFocus(1)
		c.ToggleSelect()
		_, err := c.OpenMerge()
		require.NoError(t, err)

		resp, err := c.SaveMerge(context.Background(), MergeForm{MerchantName: "Tesco", CategoryID: testutil.IntPtr(1)})
		require.NoError(t, err)

		mutations := api.Mutations()
		require.Len(t, mutations, 1)
		req := mutations[0].Body.(model.MergeRequest)
		assert.Equal(t, []int{1, 2}, req.RawExpenseIDs)
		assert.Equal(t, "Tesco", req.ExpenseData.MerchantName)
		assert.Equal(t, []string{}, req.ExpenseData.Tags)

		assert.Equal(t, 1, c.Len())
		assert.Equal(t, ModalNone, c.Modal())
		assert.Equal(t, 0, c.SelectedCount())
		assert.Equal(t, "Merged 2 items into expense #1001", c.Message())
		assert.Equal(t, 1001, resp.ExpenseID)
	})
}

func TestApplyRulesReloads(t *testing.T) {
	api := testutil.NewFakeAPI(threeItems()...)
	api.RulesResult = model.ApplyRulesResponse{Processed: 2, Saved: 1, Discarded: 1}
	api.BeforeCall = func(call testutil.Call) {
		if call.String() == "POST /api/queue/apply-rules" {
			api.Items = api.Items[2:]
		}
	}
	c := newLoaded(t, api, nil)
	c.SelectAll()

	_, err := c.ApplyRules(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /api/queue/apply-rules",
		"GET /api/queue/all",
		"GET /api/queue/find-duplicates",
	}, api.CallStrings())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 0, c.SelectedCount())
	assert.Equal(t, "Rules processed 2: 1 saved, 1 discarded", c.Message())
}
