package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/model"
)

// ListTags returns tags sorted by name, optionally narrowed to names containing query.
func (s *SQLiteStorage) ListTags(ctx context.Context, query string) ([]model.Tag, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	stmt := `SELECT id, name, color FROM tags`
	var args []any
	if q := strings.TrimSpace(query); q != "" {
		stmt += ` WHERE name LIKE ?`
		args = append(args, "%"+q+"%")
	}
	stmt += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tags := []model.Tag{}
	for rows.Next() {
		var (
			tag   model.Tag
			color sql.NullString
		)
		if err := rows.Scan(&tag.ID, &tag.Name, &color); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tag.Color = color.String
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// CreateTag adds a tag. Names are unique.
func (s *SQLiteStorage) CreateTag(ctx context.Context, input model.TagInput) (model.Tag, error) {
	if err := validateContext(ctx); err != nil {
		return model.Tag{}, err
	}
	name := strings.TrimSpace(input.Name)
	if err := validateString(name, "name"); err != nil {
		return model.Tag{}, err
	}

	result, err := s.db.ExecContext(ctx, `INSERT INTO tags (name, color) VALUES (?, ?)`, name, nullString(input.Color))
	if isUniqueViolation(err) {
		return model.Tag{}, fmt.Errorf("tag %q: %w", name, common.ErrDuplicateEntry)
	}
	if err != nil {
		return model.Tag{}, fmt.Errorf("failed to create tag: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Tag{}, fmt.Errorf("failed to get tag ID: %w", err)
	}
	return model.Tag{ID: int(id), Name: name, Color: input.Color}, nil
}

// DeleteTag removes a tag and detaches it from every expense.
func (s *SQLiteStorage) DeleteTag(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("tag %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// tagExpenseTx links the named tags to an expense, creating missing tags.
func tagExpenseTx(ctx context.Context, q queryable, expenseID int, names []string) error {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var tagID int
		err := q.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID)
		if errors.Is(err, sql.ErrNoRows) {
			result, insertErr := q.ExecContext(ctx, `INSERT INTO tags (name) VALUES (?)`, name)
			if insertErr != nil {
				return fmt.Errorf("failed to create tag %q: %w", name, insertErr)
			}
			id, idErr := result.LastInsertId()
			if idErr != nil {
				return fmt.Errorf("failed to get tag ID: %w", idErr)
			}
			tagID, err = int(id), nil
		}
		if err != nil {
			return fmt.Errorf("failed to look up tag %q: %w", name, err)
		}
		if _, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO expense_tags (expense_id, tag_id) VALUES (?, ?)`, expenseID, tagID); err != nil {
			return fmt.Errorf("failed to tag expense: %w", err)
		}
	}
	return nil
}

// expenseTags loads the tags of the given expenses keyed by expense id.
func expenseTags(ctx context.Context, q queryable, expenseIDs []int) (map[int][]model.Tag, error) {
	tags := make(map[int][]model.Tag, len(expenseIDs))
	if len(expenseIDs) == 0 {
		return tags, nil
	}
	rows, err := q.QueryContext(ctx, `
		SELECT et.expense_id, t.id, t.name, t.color
		FROM expense_tags et JOIN tags t ON t.id = et.tag_id
		WHERE et.expense_id IN (`+placeholders(len(expenseIDs))+`)
		ORDER BY t.name
	`, intArgs(expenseIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			expenseID int
			tag       model.Tag
			color     sql.NullString
		)
		if err := rows.Scan(&expenseID, &tag.ID, &tag.Name, &color); err != nil {
			return nil, fmt.Errorf("failed to scan expense tag: %w", err)
		}
		tag.Color = color.String
		tags[expenseID] = append(tags[expenseID], tag)
	}
	return tags, rows.Err()
}
