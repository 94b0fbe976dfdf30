package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/model"
)

// DefaultExpenseLimit is the page size when a filter does not set one.
const DefaultExpenseLimit = 50

const expenseColumns = `e.id, e.raw_expense_id, e.transaction_date, e.amount, e.currency,
	e.merchant_alias_id, m.display_name, m.raw_name, e.category_id, c.name, c.color,
	e.description, e.notes, e.type, e.archived`

const expenseFrom = ` FROM expenses e
	LEFT JOIN merchant_aliases m ON m.id = e.merchant_alias_id
	LEFT JOIN categories c ON c.id = e.category_id`

func scanExpense(row interface{ Scan(...any) error }) (model.Expense, error) {
	var (
		e             model.Expense
		rawID         sql.NullInt64
		amount        string
		merchantID    sql.NullInt64
		merchantName  sql.NullString
		merchantRaw   sql.NullString
		categoryID    sql.NullInt64
		categoryName  sql.NullString
		categoryColor sql.NullString
		description   sql.NullString
		notes         sql.NullString
		typ           sql.NullString
	)
	if err := row.Scan(&e.ID, &rawID, &e.TransactionDate, &amount, &e.Currency,
		&merchantID, &merchantName, &merchantRaw, &categoryID, &categoryName, &categoryColor,
		&description, &notes, &typ, &e.Archived); err != nil {
		return model.Expense{}, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return model.Expense{}, fmt.Errorf("expense %d has invalid amount %q: %w", e.ID, amount, err)
	}
	e.Amount = parsed
	e.RawExpenseID = intPtr(rawID)
	if merchantID.Valid {
		e.MerchantAlias = &model.MerchantRef{ID: int(merchantID.Int64), DisplayName: merchantName.String, RawName: merchantRaw.String}
	}
	if categoryID.Valid {
		e.Category = &model.CategoryRef{ID: int(categoryID.Int64), Name: categoryName.String, Color: categoryColor.String}
	}
	e.Description = description.String
	e.Notes = notes.String
	e.Type = model.ExpenseType(typ.String)
	e.Tags = []model.Tag{}
	return e, nil
}

// ListExpenses returns one page of saved expenses, newest first.
func (s *SQLiteStorage) ListExpenses(ctx context.Context, filter model.ExpenseFilter) (model.ExpensePage, error) {
	if err := validateContext(ctx); err != nil {
		return model.ExpensePage{}, err
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultExpenseLimit
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}

	var (
		where []string
		args  []any
	)
	if filter.CategoryID != nil {
		where = append(where, "e.category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.DateFrom != "" {
		where = append(where, "e.transaction_date >= ?")
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		where = append(where, "e.transaction_date <= ?")
		args = append(args, filter.DateTo)
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		where = append(where, "(e.description LIKE ? OR m.display_name LIKE ?)")
		like := "%" + q + "%"
		args = append(args, like, like)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	page := model.ExpensePage{Expenses: []model.Expense{}, Skip: filter.Skip, Limit: filter.Limit}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*)`+expenseFrom+clause, args...).Scan(&page.Total); err != nil {
		return model.ExpensePage{}, fmt.Errorf("failed to count expenses: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+expenseColumns+expenseFrom+clause+
		` ORDER BY e.transaction_date DESC, e.id DESC LIMIT ? OFFSET ?`,
		append(args, filter.Limit, filter.Skip)...)
	if err != nil {
		return model.ExpensePage{}, fmt.Errorf("failed to list expenses: %w", err)
	}
	var ids []int
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			_ = rows.Close()
			return model.ExpensePage{}, fmt.Errorf("failed to scan expense: %w", err)
		}
		page.Expenses = append(page.Expenses, e)
		ids = append(ids, e.ID)
	}
	if err := rows.Close(); err != nil {
		return model.ExpensePage{}, err
	}
	if err := rows.Err(); err != nil {
		return model.ExpensePage{}, err
	}

	tags, err := expenseTags(ctx, s.db, ids)
	if err != nil {
		return model.ExpensePage{}, err
	}
	for i := range page.Expenses {
		if t, ok := tags[page.Expenses[i].ID]; ok {
			page.Expenses[i].Tags = t
		}
	}
	return page, nil
}

// GetExpense returns one saved expense with its tags.
func (s *SQLiteStorage) GetExpense(ctx context.Context, id int) (model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return model.Expense{}, err
	}
	e, err := scanExpense(s.db.QueryRowContext(ctx, `SELECT `+expenseColumns+expenseFrom+` WHERE e.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Expense{}, fmt.Errorf("expense %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return model.Expense{}, fmt.Errorf("failed to get expense: %w", err)
	}
	tags, err := expenseTags(ctx, s.db, []int{id})
	if err != nil {
		return model.Expense{}, err
	}
	if t, ok := tags[id]; ok {
		e.Tags = t
	}
	return e, nil
}

// UpdateExpense writes the set fields of update onto a saved expense and
// returns the result.
func (s *SQLiteStorage) UpdateExpense(ctx context.Context, id int, update model.ExpenseUpdate) (model.Expense, error) {
	if update.Type != nil {
		if err := validateExpenseType(*update.Type); err != nil {
			return model.Expense{}, err
		}
	}
	if update.TransactionDate != nil {
		if _, err := time.Parse(model.DateLayout, *update.TransactionDate); err != nil {
			return model.Expense{}, fmt.Errorf("%w: transaction_date %q", ErrInvalidItem, *update.TransactionDate)
		}
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM expenses WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("expense %d: %w", id, common.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to look up expense: %w", err)
		}

		var (
			sets []string
			args []any
		)
		if update.MerchantAliasID != nil {
			if _, err := getMerchantTx(ctx, tx, *update.MerchantAliasID); err != nil {
				return err
			}
			sets = append(sets, "merchant_alias_id = ?")
			args = append(args, *update.MerchantAliasID)
		}
		if update.CategoryID != nil {
			if _, err := getCategoryTx(ctx, tx, *update.CategoryID); err != nil {
				return err
			}
			sets = append(sets, "category_id = ?")
			args = append(args, *update.CategoryID)
		}
		if update.Type != nil {
			sets = append(sets, "type = ?")
			args = append(args, nullString(string(*update.Type)))
		}
		if update.TransactionDate != nil {
			sets = append(sets, "transaction_date = ?")
			args = append(args, *update.TransactionDate)
		}
		if update.Description != nil {
			sets = append(sets, "description = ?")
			args = append(args, *update.Description)
		}
		if update.Notes != nil {
			sets = append(sets, "notes = ?")
			args = append(args, *update.Notes)
		}
		if len(sets) > 0 {
			args = append(args, id)
			if _, err := tx.ExecContext(ctx, `UPDATE expenses SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
				return fmt.Errorf("failed to update expense: %w", err)
			}
		}

		if update.Tags != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM expense_tags WHERE expense_id = ?`, id); err != nil {
				return fmt.Errorf("failed to clear expense tags: %w", err)
			}
			if err := tagExpenseTx(ctx, tx, id, *update.Tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return model.Expense{}, err
	}
	return s.GetExpense(ctx, id)
}

// DeleteExpense removes a saved expense. Its raw expense is archived so it
// does not return to the queue.
func (s *SQLiteStorage) DeleteExpense(ctx context.Context, id int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var rawID sql.NullInt64
		err := tx.QueryRowContext(ctx, `SELECT raw_expense_id FROM expenses WHERE id = ?`, id).Scan(&rawID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("expense %d: %w", id, common.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to look up expense: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		if rawID.Valid {
			if _, err := tx.ExecContext(ctx, `UPDATE raw_expenses SET archived = 1 WHERE id = ?`, rawID.Int64); err != nil {
				return fmt.Errorf("failed to archive raw expense: %w", err)
			}
		}
		return nil
	})
}
