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

func TestRules_CRUD(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	rule, err := store.CreateRule(ctx, model.RuleInput{
		Field:      model.FieldRawMerchantName,
		MatchType:  model.MatchExact,
		MatchValue: "PAYPAL",
		Action:     model.ActionDiscard,
	})
	require.NoError(t, err)
	assert.True(t, rule.Active)
	assert.Equal(t, `raw_merchant_name exact "PAYPAL"`, rule.Name)

	_, err = store.CreateRule(ctx, model.RuleInput{
		Field: model.FieldRawDescription, MatchType: model.MatchRegex, MatchValue: "(", Action: model.ActionDiscard,
	})
	assert.ErrorIs(t, err, ErrInvalidRule)
	_, err = store.CreateRule(ctx, model.RuleInput{Field: "nope", MatchType: model.MatchExact, MatchValue: "x", Action: model.ActionDiscard})
	assert.ErrorIs(t, err, ErrInvalidRule)

	off := false
	updated, err := store.UpdateRule(ctx, rule.ID, model.RuleInput{Active: &off, Name: "PayPal noise"})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, "PayPal noise", updated.Name)
	assert.Equal(t, "PAYPAL", updated.MatchValue)

	rules, err := store.ListRules(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 1)

	require.NoError(t, store.DeleteRule(ctx, rule.ID))
	assert.ErrorIs(t, store.DeleteRule(ctx, rule.ID), common.ErrNotFound)
	_, err = store.UpdateRule(ctx, rule.ID, model.RuleInput{})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRuleMatches(t *testing.T) {
	item := model.QueueItem{
		Amount:          decimal.RequireFromString("-9.99"),
		RawMerchantName: "Netflix.com",
		RawDescription:  "DD 12345",
		Source:          "xlsx_import",
	}

	tests := []struct {
		name string
		rule model.Rule
		want bool
	}{
		{"exact ignores case", model.Rule{Field: model.FieldRawMerchantName, MatchType: model.MatchExact, MatchValue: "NETFLIX.COM"}, true},
		{"exact needs whole value", model.Rule{Field: model.FieldRawMerchantName, MatchType: model.MatchExact, MatchValue: "netflix"}, false},
		{"regex on description", model.Rule{Field: model.FieldRawDescription, MatchType: model.MatchRegex, MatchValue: `^DD \d+$`}, true},
		{"amount formatted", model.Rule{Field: model.FieldAmount, MatchType: model.MatchExact, MatchValue: "-9.99"}, true},
		{"source", model.Rule{Field: model.FieldSource, MatchType: model.MatchRegex, MatchValue: "banking"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ruleMatches(tt.rule, item)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyRules(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	subs := createCategory(t, store, "Subscriptions", model.CategoryTypeExpense)

	_, err := store.CreateRule(ctx, model.RuleInput{
		Field: model.FieldRawMerchantName, MatchType: model.MatchRegex, MatchValue: "(?i)^netflix",
		Action: model.ActionSave,
		SaveData: &model.RuleSaveData{
			MerchantName: "Netflix", CategoryID: &subs.ID, Type: model.TypeFixed, Tags: []string{"tv"},
		},
	})
	require.NoError(t, err)
	_, err = store.CreateRule(ctx, model.RuleInput{
		Field: model.FieldRawDescription, MatchType: model.MatchExact, MatchValue: "card payment", Action: model.ActionDiscard,
	})
	require.NoError(t, err)
	off := false
	_, err = store.CreateRule(ctx, model.RuleInput{
		Field: model.FieldSource, MatchType: model.MatchExact, MatchValue: "open_banking", Action: model.ActionDiscard, Active: &off,
	})
	require.NoError(t, err)

	netflix := insertItem(t, store, "2024-03-01", "-9.99", "NETFLIX.COM")
	_ = insertItem(t, store, "2024-03-02", "-4.00", "COFFEE")
	kept, err := store.InsertRawExpense(ctx, NewItem{
		TransactionDate: "2024-03-03", Amount: decimal.RequireFromString("-1.00"), RawMerchantName: "BUS", RawDescription: "contactless", Source: "open_banking",
	})
	require.NoError(t, err)

	resp, err := store.ApplyRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Processed)
	assert.Equal(t, 1, resp.Saved)
	assert.Equal(t, 1, resp.Discarded)

	items, err := store.ListQueue(ctx, model.QueueFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, kept, items[0].ID)

	page, err := store.ListExpenses(ctx, model.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, page.Expenses, 1)
	expense := page.Expenses[0]
	require.NotNil(t, expense.RawExpenseID)
	assert.Equal(t, netflix, *expense.RawExpenseID)
	assert.Equal(t, "Netflix", expense.MerchantAlias.DisplayName)
	assert.Equal(t, model.TypeFixed, expense.Type)
	require.Len(t, expense.Tags, 1)
	assert.Equal(t, "tv", expense.Tags[0].Name)
}
