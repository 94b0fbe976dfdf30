package queue

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/testutil"
)

// duplicateFixture has two sets: item 1 matches raw item 2 and saved
// expense 50, item 3 matches raw item 4.
func duplicateFixture(t *testing.T) *testutil.FakeAPI {
	t.Helper()
	items := []model.QueueItem{
		testutil.NewItem(1, "-9.99", testutil.Complete()),
		testutil.NewItem(2, "-9.99"),
		testutil.NewItem(3, "-4.00"),
		testutil.NewItem(4, "-4.00"),
	}
	api := testutil.NewFakeAPI(items...)

	first := testutil.MustSet(t, items[0], items[1])
	first.Duplicates = append(first.Duplicates, model.Duplicate{
		ID:              50,
		Type:            model.DuplicateSaved,
		Amount:          decimal.RequireFromString("-9.99"),
		TransactionDate: "2024-03-01",
		MerchantName:    "Netflix",
	})
	api.DuplicateSets[1] = first
	api.DuplicateSets[3] = testutil.MustSet(t, items[2], items[3])
	return api
}

func TestDetectDuplicates(t *testing.T) {
	api := duplicateFixture(t)
	c := newLoaded(t, api, nil)

	assert.True(t, c.HasDuplicates(1))
	assert.True(t, c.HasDuplicates(3))
	assert.False(t, c.HasDuplicates(2))
	assert.Len(t, c.Duplicates(), 2)

	api.Fail["GET /api/queue/find-duplicates"] = common.ErrTransport
	require.ErrorIs(t, c.DetectDuplicates(context.Background()), common.ErrTransport)
	assert.Len(t, c.Duplicates(), 2, "failed detection keeps the previous map")
}

func TestDuplicateModal(t *testing.T) {
	api := duplicateFixture(t)
	c := newLoaded(t, api, nil)

	require.ErrorIs(t, c.OpenDuplicate(2), common.ErrNoDuplicates)
	require.NoError(t, c.OpenDuplicate(1))

	view := c.Snapshot().Duplicate
	require.NotNil(t, view)
	require.Len(t, view.Cards, 3)
	assert.Equal(t, 1, view.Cards[0].ID, "the item itself is the first card")

	c.DuplicateMove(10)
	assert.Equal(t, 2, c.Snapshot().Duplicate.Cursor)
	require.ErrorIs(t, c.DiscardDuplicateCard(context.Background()), common.ErrSavedDuplicate)
	assert.Empty(t, api.Mutations())

	c.DuplicateMove(-1)
	require.NoError(t, c.DiscardDuplicateCard(context.Background()))
	assert.Equal(t, "DELETE /api/queue/2", api.Mutations()[0].String())
	assert.Equal(t, "Discarded duplicate #2", c.Message())

	view = c.Snapshot().Duplicate
	require.NotNil(t, view, "the saved candidate keeps the set open")
	assert.Len(t, view.Cards, 2)
	assert.Equal(t, 1, view.Cursor)
}

func TestDuplicateModalClosesWhenSetResolves(t *testing.T) {
	api := duplicateFixture(t)
	c := newLoaded(t, api, &testutil.Prompter{Answer: true})

	require.NoError(t, c.OpenDuplicate(3))
	c.DuplicateMove(1)
	require.NoError(t, c.DiscardDuplicateCard(context.Background()))

	assert.Equal(t, ModalNone, c.Modal())
	assert.False(t, c.HasDuplicates(3))
	assert.Equal(t, 3, c.Len())
}

func TestDuplicatesPage(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		c := newLoaded(t, duplicateFixture(t), nil)
		require.ErrorIs(t, c.OpenDuplicatesPage(), common.ErrFeatureDisabled)
	})

	t.Run("nothing to review", func(t *testing.T) {
		c := newLoaded(t, testutil.NewFakeAPI(threeItems()...), nil, WithDuplicatesPage())
		require.ErrorIs(t, c.OpenDuplicatesPage(), common.ErrNoDuplicates)
	})

	t.Run("walks every set and reloads when done", func(t *testing.T) {
		api := duplicateFixture(t)
		c := newLoaded(t, api, nil, WithDuplicatesPage())
		require.NoError(t, c.OpenDuplicatesPage())

		page := c.Snapshot().Page
		require.NotNil(t, page)
		assert.Equal(t, 1, page.ItemID)
		assert.Equal(t, 2, page.Count)

		c.PageStep(1)
		page = c.Snapshot().Page
		assert.Equal(t, 3, page.ItemID)
		c.PageStep(1)
		assert.Equal(t, 1, c.Snapshot().Page.Index, "stepping stops at the last set")

		require.NoError(t, c.PageDiscard(context.Background()))
		page = c.Snapshot().Page
		require.NotNil(t, page)
		assert.Equal(t, 1, page.Count)
		assert.Equal(t, 1, page.ItemID)
		assert.NotContains(t, api.CallStrings(), "GET /api/queue/find-duplicates",
			"detection waits for the page to close")

		c.DuplicateMove(2)
		require.ErrorIs(t, c.PageSave(context.Background()), common.ErrSavedDuplicate)

		c.DuplicateMove(-2)
		require.NoError(t, c.PageSave(context.Background()))
		assert.Equal(t, ModalNone, c.Modal())

		calls := api.CallStrings()
		assert.Equal(t, []string{
			"DELETE /api/queue/3",
			"POST /api/queue/process",
			"GET /api/queue/all",
			"GET /api/queue/find-duplicates",
		}, calls)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("closing after changes asks for a reload", func(t *testing.T) {
		c := newLoaded(t, duplicateFixture(t), nil, WithDuplicatesPage())
		require.NoError(t, c.OpenDuplicatesPage())
		assert.False(t, c.CloseModal())

		require.NoError(t, c.OpenDuplicatesPage())
		require.NoError(t, c.PageDiscard(context.Background()))
		assert.True(t, c.Escape())
		assert.Equal(t, ModalNone, c.Modal())
	})
}
