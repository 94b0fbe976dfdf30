package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/model"
)

const categoryColumns = `id, name, parent_id, color, icon, category_type`

func scanCategory(row interface{ Scan(...any) error }) (model.Category, error) {
	var (
		c        model.Category
		parentID sql.NullInt64
		color    sql.NullString
		icon     sql.NullString
		ctype    sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &parentID, &color, &icon, &ctype); err != nil {
		return model.Category{}, err
	}
	c.ParentID = intPtr(parentID)
	c.Color = color.String
	c.Icon = icon.String
	c.CategoryType = model.CategoryType(ctype.String)
	return c, nil
}

// ListCategories returns categories sorted by name. A typed filter also
// includes typeless categories.
func (s *SQLiteStorage) ListCategories(ctx context.Context, categoryType model.CategoryType) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCategoryType(categoryType); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + ` FROM categories`
	var args []any
	if categoryType != model.CategoryTypeAny {
		query += ` WHERE category_type = ? OR category_type IS NULL OR category_type = ''`
		args = append(args, string(categoryType))
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategory returns one category.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id int) (model.Category, error) {
	return getCategoryTx(ctx, s.db, id)
}

func getCategoryTx(ctx context.Context, q queryable, id int) (model.Category, error) {
	c, err := scanCategory(q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// CreateCategory adds a category. Names are unique.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, input model.CategoryInput) (model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return model.Category{}, err
	}
	if err := validateString(input.Name, "name"); err != nil {
		return model.Category{}, err
	}
	if err := validateCategoryType(input.CategoryType); err != nil {
		return model.Category{}, err
	}

	var created model.Category
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkParentTx(ctx, tx, 0, input.ParentID); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `
			INSERT INTO categories (name, parent_id, color, icon, category_type)
			VALUES (?, ?, ?, ?, ?)
		`, input.Name, nullInt(input.ParentID), nullString(input.Color), nullString(input.Icon), nullString(string(input.CategoryType)))
		if isUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", input.Name, common.ErrDuplicateEntry)
		}
		if err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get category ID: %w", err)
		}
		created, err = getCategoryTx(ctx, tx, int(id))
		return err
	})
	return created, err
}

// UpdateCategory changes the non-empty fields of input.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, id int, input model.CategoryInput) (model.Category, error) {
	if err := validateCategoryType(input.CategoryType); err != nil {
		return model.Category{}, err
	}

	var updated model.Category
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getCategoryTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if input.Name != "" {
			current.Name = input.Name
		}
		if input.Color != "" {
			current.Color = input.Color
		}
		if input.Icon != "" {
			current.Icon = input.Icon
		}
		if input.CategoryType != model.CategoryTypeAny {
			current.CategoryType = input.CategoryType
		}
		if input.ParentID != nil {
			if err := checkParentTx(ctx, tx, id, input.ParentID); err != nil {
				return err
			}
			current.ParentID = input.ParentID
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE categories SET name = ?, parent_id = ?, color = ?, icon = ?, category_type = ?
			WHERE id = ?
		`, current.Name, nullInt(current.ParentID), nullString(current.Color), nullString(current.Icon),
			nullString(string(current.CategoryType)), id)
		if isUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", current.Name, common.ErrDuplicateEntry)
		}
		if err != nil {
			return fmt.Errorf("failed to update category: %w", err)
		}
		updated = current
		return nil
	})
	return updated, err
}

// checkParentTx allows only one level of nesting.
func checkParentTx(ctx context.Context, q queryable, id int, parentID *int) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return fmt.Errorf("%w: a category cannot be its own parent", ErrInvalidCategory)
	}
	parent, err := getCategoryTx(ctx, q, *parentID)
	if err != nil {
		return err
	}
	if parent.ParentID != nil {
		return fmt.Errorf("%w: %q is already a subcategory", ErrInvalidCategory, parent.Name)
	}
	return nil
}

// DeleteCategory removes a category. Children become top-level.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// CategoryType returns the expense type most often used with the category,
// or nil when no saved expense uses it.
func (s *SQLiteStorage) CategoryType(ctx context.Context, categoryID int) (*model.ExpenseType, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	return categoryTypeTx(ctx, s.db, categoryID)
}

func categoryTypeTx(ctx context.Context, q queryable, categoryID int) (*model.ExpenseType, error) {
	var typ string
	err := q.QueryRowContext(ctx, `
		SELECT type FROM expenses
		WHERE category_id = ? AND type IS NOT NULL AND type != ''
		GROUP BY type
		ORDER BY COUNT(*) DESC, type
		LIMIT 1
	`, categoryID).Scan(&typ)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category type: %w", err)
	}
	t := model.ExpenseType(typ)
	return &t, nil
}
