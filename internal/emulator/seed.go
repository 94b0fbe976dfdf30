package emulator

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/storage"
)

type seedCategory struct {
	name   string
	parent string
	color  string
	typ    model.CategoryType
}

var seedCategories = []seedCategory{
	{name: "Groceries", color: "#4caf50", typ: model.CategoryTypeExpense},
	{name: "Supermarket", parent: "Groceries", typ: model.CategoryTypeExpense},
	{name: "Transport", color: "#2196f3", typ: model.CategoryTypeExpense},
	{name: "Trains", parent: "Transport", typ: model.CategoryTypeExpense},
	{name: "Eating out", color: "#ff9800", typ: model.CategoryTypeExpense},
	{name: "Bills", color: "#9c27b0", typ: model.CategoryTypeExpense},
	{name: "Subscriptions", parent: "Bills", typ: model.CategoryTypeExpense},
	{name: "Salary", color: "#009688", typ: model.CategoryTypeIncome},
	{name: "Transfers", color: "#607d8b"},
}

type seedMerchant struct {
	raw      string
	display  string
	category string
}

var seedMerchants = []seedMerchant{
	{raw: "TESCO STORES", display: "Tesco", category: "Supermarket"},
	{raw: "SAINSBURYS", display: "Sainsbury's", category: "Supermarket"},
	{raw: "TFL TRAVEL", display: "TfL", category: "Transport"},
	{raw: "TRAINLINE", display: "Trainline", category: "Trains"},
	{raw: "PRET A MANGER", display: "Pret", category: "Eating out"},
	{raw: "NETFLIX", display: "Netflix", category: "Subscriptions"},
	{raw: "ACME LTD", display: "Acme Ltd", category: "Salary"},
}

// seedTransaction is dated daysAgo days before the seed time.
type seedTransaction struct {
	merchant    string
	description string
	amount      string
	typ         model.ExpenseType
	daysAgo     int
}

// History entries are saved straight away so categories learn their types
// and the queue has saved duplicates to find.
var seedHistory = []seedTransaction{
	{merchant: "TESCO STORES 3297", amount: "-41.20", daysAgo: 12, typ: model.TypeNecessaryVariable},
	{merchant: "TFL TRAVEL CH", amount: "-2.80", daysAgo: 11, typ: model.TypeNecessaryVariable},
	{merchant: "NETFLIX.COM", amount: "-10.99", daysAgo: 30, typ: model.TypeFixed},
	{merchant: "PRET A MANGER 0042", amount: "-6.45", daysAgo: 9, typ: model.TypeDiscretionary},
	{merchant: "TRAINLINE", amount: "-54.10", daysAgo: 5, typ: model.TypeNecessaryVariable},
}

var seedQueue = []seedTransaction{
	{merchant: "TESCO STORES 3297", description: "card payment", amount: "-22.50", daysAgo: 8},
	{merchant: "TESCO STORES 3297", description: "card payment", amount: "-22.50", daysAgo: 8},
	{merchant: "TFL TRAVEL CH", description: "contactless", amount: "-2.80", daysAgo: 6},
	{merchant: "TFL TRAVEL CH", description: "contactless", amount: "-2.80", daysAgo: 6},
	{merchant: "PRET A MANGER 0042", description: "contactless", amount: "-4.35", daysAgo: 6},
	{merchant: "TRAINLINE", description: "online purchase", amount: "-54.10", daysAgo: 5},
	{merchant: "SAINSBURYS S/MKT", description: "card payment", amount: "-63.07", daysAgo: 5},
	{merchant: "DISHOOM KINGS X", description: "card payment", amount: "-38.00", daysAgo: 4},
	{merchant: "DISHOOM KINGS X", description: "service charge", amount: "-4.75", daysAgo: 4},
	{merchant: "AMZN MKTP UK", description: "online purchase", amount: "-17.99", daysAgo: 3},
	{merchant: "PAYPAL TRANSFER", description: "transfer", amount: "-50.00", daysAgo: 3},
	{merchant: "ACME LTD", description: "salary", amount: "2450.00", daysAgo: 2},
	{merchant: "BOOTS 1123", description: "card payment", amount: "-8.49", daysAgo: 2},
	{merchant: "CAFE NERO", description: "contactless", amount: "-3.10", daysAgo: 1},
	{merchant: "SHELL 0291", description: "card payment", amount: "-71.32", daysAgo: 1},
}

var seedPeriodic = []string{"Netflix", "Rent", "Spotify Premium"}

// Seed fills an empty store with demo data dated relative to now.
func Seed(ctx context.Context, st *storage.SQLiteStorage, now time.Time) error {
	categoryIDs := make(map[string]int, len(seedCategories))
	for _, c := range seedCategories {
		input := model.CategoryInput{Name: c.name, Color: c.color, CategoryType: c.typ}
		if c.parent != "" {
			parentID := categoryIDs[c.parent]
			input.ParentID = &parentID
		}
		created, err := st.CreateCategory(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", c.name, err)
		}
		categoryIDs[c.name] = created.ID
	}

	for _, m := range seedMerchants {
		categoryID := categoryIDs[m.category]
		_, err := st.CreateMerchant(ctx, model.MerchantInput{
			RawName:           m.raw,
			DisplayName:       m.display,
			DefaultCategoryID: &categoryID,
		})
		if err != nil {
			return fmt.Errorf("failed to seed merchant %q: %w", m.display, err)
		}
	}

	for _, name := range []string{"work", "travel", "home", "gift"} {
		if _, err := st.CreateTag(ctx, model.TagInput{Name: name}); err != nil {
			return fmt.Errorf("failed to seed tag %q: %w", name, err)
		}
	}

	for _, tx := range seedHistory {
		id, err := insertSeed(ctx, st, tx, now)
		if err != nil {
			return err
		}
		item, err := st.GetQueueItem(ctx, id)
		if err != nil {
			return err
		}
		req := model.ProcessRequest{RawExpenseID: id, Type: tx.typ}
		if item.SuggestedMerchantAlias != nil {
			req.MerchantAliasID = &item.SuggestedMerchantAlias.ID
		}
		req.CategoryID = item.SuggestedCategoryID
		if _, err := st.ProcessQueueItem(ctx, req); err != nil {
			return fmt.Errorf("failed to seed expense: %w", err)
		}
	}

	for _, tx := range seedQueue {
		if _, err := insertSeed(ctx, st, tx, now); err != nil {
			return err
		}
	}

	if _, err := st.CreateRule(ctx, model.RuleInput{
		Name:       "Ignore PayPal transfers",
		Field:      model.FieldRawMerchantName,
		MatchType:  model.MatchExact,
		MatchValue: "PAYPAL TRANSFER",
		Action:     model.ActionDiscard,
	}); err != nil {
		return fmt.Errorf("failed to seed rule: %w", err)
	}
	subscriptions := categoryIDs["Subscriptions"]
	inactive := false
	if _, err := st.CreateRule(ctx, model.RuleInput{
		Name:       "Amazon to subscriptions",
		Field:      model.FieldRawMerchantName,
		MatchType:  model.MatchRegex,
		MatchValue: "^AMZN",
		Action:     model.ActionSave,
		Active:     &inactive,
		SaveData:   &model.RuleSaveData{MerchantName: "Amazon", CategoryID: &subscriptions, Type: model.TypeDiscretionary},
	}); err != nil {
		return fmt.Errorf("failed to seed rule: %w", err)
	}

	for _, name := range seedPeriodic {
		if _, err := st.CreatePeriodicExpense(ctx, name); err != nil {
			return fmt.Errorf("failed to seed periodic expense: %w", err)
		}
	}

	if _, err := st.RecordImport(ctx, model.ImportRecord{
		Filename:        "statement.xlsx",
		Status:          storage.ImportStatusSuccess,
		RecordsImported: len(seedHistory) + len(seedQueue),
		ImportedAt:      now.Add(-time.Hour),
	}); err != nil {
		return fmt.Errorf("failed to seed import history: %w", err)
	}
	return nil
}

func insertSeed(ctx context.Context, st *storage.SQLiteStorage, tx seedTransaction, now time.Time) (int, error) {
	id, err := st.InsertRawExpense(ctx, storage.NewItem{
		TransactionDate: now.AddDate(0, 0, -tx.daysAgo).Format(model.DateLayout),
		Amount:          decimal.RequireFromString(tx.amount),
		Currency:        "GBP",
		RawMerchantName: tx.merchant,
		RawDescription:  tx.description,
		Source:          "xlsx_import",
		SourceFile:      "statement.xlsx",
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed raw expense %q: %w", tx.merchant, err)
	}
	return id, nil
}
