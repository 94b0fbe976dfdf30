package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/model"
)

// suggestThreshold is the lowest similarity, in percent, that counts as a
// periodic expense suggestion.
const suggestThreshold = 70

// ListPeriodicExpenses returns periodic expenses sorted by name, optionally
// narrowed to names containing query.
func (s *SQLiteStorage) ListPeriodicExpenses(ctx context.Context, query string) ([]model.PeriodicExpense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	stmt := `SELECT id, name, created_at FROM periodic_expenses`
	var args []any
	if q := strings.TrimSpace(query); q != "" {
		stmt += ` WHERE name LIKE ?`
		args = append(args, "%"+q+"%")
	}
	stmt += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list periodic expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.PeriodicExpense{}
	for rows.Next() {
		var (
			p       model.PeriodicExpense
			created sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.Name, &created); err != nil {
			return nil, fmt.Errorf("failed to scan periodic expense: %w", err)
		}
		p.CreatedAt = created.Time
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreatePeriodicExpense adds a periodic expense. Names are unique.
func (s *SQLiteStorage) CreatePeriodicExpense(ctx context.Context, name string) (model.PeriodicExpense, error) {
	if err := validateContext(ctx); err != nil {
		return model.PeriodicExpense{}, err
	}
	name = strings.TrimSpace(name)
	if err := validateString(name, "name"); err != nil {
		return model.PeriodicExpense{}, err
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `INSERT INTO periodic_expenses (name, created_at) VALUES (?, ?)`, name, now)
	if isUniqueViolation(err) {
		return model.PeriodicExpense{}, fmt.Errorf("periodic expense %q: %w", name, common.ErrDuplicateEntry)
	}
	if err != nil {
		return model.PeriodicExpense{}, fmt.Errorf("failed to create periodic expense: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.PeriodicExpense{}, fmt.Errorf("failed to get periodic expense ID: %w", err)
	}
	return model.PeriodicExpense{ID: int(id), Name: name, CreatedAt: now}, nil
}

// SuggestPeriodicExpense returns the periodic expense whose name is most
// similar to name, when the similarity clears suggestThreshold.
func (s *SQLiteStorage) SuggestPeriodicExpense(ctx context.Context, name string) (model.PeriodicSuggestion, error) {
	all, err := s.ListPeriodicExpenses(ctx, "")
	if err != nil {
		return model.PeriodicSuggestion{}, err
	}

	var (
		suggestion model.PeriodicSuggestion
		best       *model.PeriodicExpense
	)
	for i := range all {
		score := similarity(name, all[i].Name)
		if score > suggestion.Confidence && score > suggestThreshold {
			suggestion.Confidence = score
			best = &all[i]
		}
	}
	if best != nil {
		suggestion.Suggestion = &best.Name
		suggestion.PeriodicExpense = best
	}
	return suggestion, nil
}

// similarity scores two names from 0 to 100, case-insensitively, from their
// edit distance relative to their combined length.
func similarity(a, b string) int {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * float64(total-d) / float64(total)))
}
