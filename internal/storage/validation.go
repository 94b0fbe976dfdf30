package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/expense-queue/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrEmptySlice      = errors.New("slice cannot be empty")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidItem     = errors.New("invalid queue item")
	ErrInvalidRule     = errors.New("invalid rule")
	ErrAlreadySaved    = errors.New("raw expense already processed")
	ErrIncomplete      = errors.New("raw expense is missing a merchant or category")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateIDs(ids []int) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: raw_expense_ids", ErrEmptySlice)
	}
	return nil
}

func validateCategoryType(t model.CategoryType) error {
	switch t {
	case model.CategoryTypeAny, model.CategoryTypeIncome, model.CategoryTypeExpense:
		return nil
	default:
		return fmt.Errorf("%w: category_type %q", ErrInvalidCategory, t)
	}
}

func validateExpenseType(t model.ExpenseType) error {
	if t == "" || t.Valid() {
		return nil
	}
	return fmt.Errorf("%w: type %q", ErrInvalidItem, t)
}

func validateNewItem(item NewItem) error {
	if _, err := time.Parse(model.DateLayout, item.TransactionDate); err != nil {
		return fmt.Errorf("%w: transaction_date %q", ErrInvalidItem, item.TransactionDate)
	}
	if item.Source == "" {
		return fmt.Errorf("%w: missing source", ErrInvalidItem)
	}
	return validateExpenseType(item.Type)
}
