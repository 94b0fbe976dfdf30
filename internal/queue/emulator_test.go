package queue

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/testutil"
)

func TestController_AgainstEmulator(t *testing.T) {
	ctx := context.Background()
	emu := testutil.NewSeededEmulator(t)
	c := New(emu.Client, &testutil.Prompter{Answer: true}, WithUpdateMode(), WithFilterMode(), WithDuplicatesPage())
	require.NoError(t, c.LoadCategories(ctx))
	require.NoError(t, c.LoadAll(ctx))
	require.Equal(t, 15, c.Len())

	t.Run("duplicates detected on load", func(t *testing.T) {
		snap := c.Snapshot()
		require.NotEmpty(t, snap.Duplicates)
		first, ok := snap.FocusedItem()
		require.True(t, ok)
		assert.True(t, c.HasDuplicates(first.ID), "the two Tesco payments match")
	})

	t.Run("bulk save promotes suggestions", func(t *testing.T) {
		require.NoError(t, c.SetFilter(model.QueueFilter{Search: "trainline"}))
		c.SelectAll()
		result, err := c.BulkSaveSelected(ctx)
		require.NoError(t, err)
		assert.True(t, result.OK())
		c.ClearFilter()
		assert.Equal(t, 14, c.Len())
	})

	t.Run("category edit reaches the server", func(t *testing.T) {
		require.NoError(t, c.SetFilter(model.QueueFilter{Search: "shell"}))
		item, ok := c.FocusedItem()
		require.True(t, ok)

		var transport int
		for _, node := range c.CategoryOptions() {
			if node.Name == "Transport" {
				transport = node.ID
			}
		}
		require.NotZero(t, transport)

		c.ToggleUpdateMode()
		require.NoError(t, c.OpenEditor(ModalCategory))
		result, err := c.ApplyCategory(ctx, transport)
		require.NoError(t, err)
		assert.True(t, result.OK())
		c.ToggleUpdateMode()

		saved, err := emu.Store.GetQueueItem(ctx, item.ID)
		require.NoError(t, err)
		require.NotNil(t, saved.CategoryID)
		assert.Equal(t, transport, *saved.CategoryID)
		c.ClearFilter()
	})

	t.Run("merge dishoom", func(t *testing.T) {
		require.NoError(t, c.SetFilter(model.QueueFilter{Search: "dishoom"}))
		c.SelectAll()
		summary, err := c.OpenMerge()
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Count)
		assert.Equal(t, "-42.75", summary.Total.StringFixed(2))

		resp, err := c.SaveMerge(ctx, MergeForm{MerchantName: "Dishoom"})
		require.NoError(t, err)
		expense, err := emu.Client.GetExpense(ctx, resp.ExpenseID)
		require.NoError(t, err)
		assert.True(t, strings.EqualFold(expense.MerchantAlias.DisplayName, "dishoom"))
		c.ClearFilter()
		assert.Equal(t, 12, c.Len())
	})

	t.Run("apply rules reloads", func(t *testing.T) {
		resp, err := c.ApplyRules(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Discarded)
		assert.Equal(t, 11, c.Len())
	})
}
