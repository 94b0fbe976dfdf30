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

const merchantColumns = `id, raw_name, display_name, default_category_id`

func scanMerchant(row interface{ Scan(...any) error }) (model.Merchant, error) {
	var (
		m          model.Merchant
		categoryID sql.NullInt64
	)
	if err := row.Scan(&m.ID, &m.RawName, &m.DisplayName, &categoryID); err != nil {
		return model.Merchant{}, err
	}
	m.DefaultCategoryID = intPtr(categoryID)
	return m, nil
}

// ListMerchants returns merchants sorted by display name. A non-empty query
// keeps merchants whose raw or display name contains it.
func (s *SQLiteStorage) ListMerchants(ctx context.Context, query string) ([]model.Merchant, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	stmt := `SELECT ` + merchantColumns + ` FROM merchant_aliases`
	var args []any
	if q := strings.TrimSpace(query); q != "" {
		stmt += ` WHERE display_name LIKE ? OR raw_name LIKE ?`
		like := "%" + q + "%"
		args = append(args, like, like)
	}
	stmt += ` ORDER BY display_name COLLATE NOCASE`

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list merchants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	merchants := []model.Merchant{}
	for rows.Next() {
		m, err := scanMerchant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan merchant: %w", err)
		}
		merchants = append(merchants, m)
	}
	return merchants, rows.Err()
}

// GetMerchant returns one merchant.
func (s *SQLiteStorage) GetMerchant(ctx context.Context, id int) (model.Merchant, error) {
	return getMerchantTx(ctx, s.db, id)
}

func getMerchantTx(ctx context.Context, q queryable, id int) (model.Merchant, error) {
	m, err := scanMerchant(q.QueryRowContext(ctx, `SELECT `+merchantColumns+` FROM merchant_aliases WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Merchant{}, fmt.Errorf("merchant %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return model.Merchant{}, fmt.Errorf("failed to get merchant: %w", err)
	}
	return m, nil
}

// CreateMerchant adds a merchant alias. Display names are unique.
func (s *SQLiteStorage) CreateMerchant(ctx context.Context, input model.MerchantInput) (model.Merchant, error) {
	if err := validateContext(ctx); err != nil {
		return model.Merchant{}, err
	}
	if err := validateString(input.DisplayName, "display_name"); err != nil {
		return model.Merchant{}, err
	}
	if input.RawName == "" {
		input.RawName = input.DisplayName
	}
	return createMerchantTx(ctx, s.db, input)
}

func createMerchantTx(ctx context.Context, q queryable, input model.MerchantInput) (model.Merchant, error) {
	result, err := q.ExecContext(ctx, `
		INSERT INTO merchant_aliases (raw_name, display_name, default_category_id)
		VALUES (?, ?, ?)
	`, input.RawName, input.DisplayName, nullInt(input.DefaultCategoryID))
	if isUniqueViolation(err) {
		return model.Merchant{}, fmt.Errorf("merchant %q: %w", input.DisplayName, common.ErrDuplicateEntry)
	}
	if err != nil {
		return model.Merchant{}, fmt.Errorf("failed to create merchant: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Merchant{}, fmt.Errorf("failed to get merchant ID: %w", err)
	}
	return getMerchantTx(ctx, q, int(id))
}

// FindMerchantByDisplayName returns the merchant with exactly this display name.
func (s *SQLiteStorage) FindMerchantByDisplayName(ctx context.Context, name string) (model.Merchant, error) {
	return findMerchantByDisplayNameTx(ctx, s.db, name)
}

func findMerchantByDisplayNameTx(ctx context.Context, q queryable, name string) (model.Merchant, error) {
	m, err := scanMerchant(q.QueryRowContext(ctx,
		`SELECT `+merchantColumns+` FROM merchant_aliases WHERE display_name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Merchant{}, fmt.Errorf("merchant %q: %w", name, common.ErrNotFound)
	}
	if err != nil {
		return model.Merchant{}, fmt.Errorf("failed to find merchant: %w", err)
	}
	return m, nil
}

// resolveMerchantTx finds a merchant by display name or creates it with
// the given raw name and default category.
func resolveMerchantTx(ctx context.Context, q queryable, displayName, rawName string, categoryID *int) (model.Merchant, error) {
	m, err := findMerchantByDisplayNameTx(ctx, q, displayName)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return model.Merchant{}, err
	}
	if rawName == "" {
		rawName = displayName
	}
	return createMerchantTx(ctx, q, model.MerchantInput{
		RawName:           rawName,
		DisplayName:       displayName,
		DefaultCategoryID: categoryID,
	})
}

// merchantMatcher suggests a merchant for raw bank text: an exact
// case-insensitive raw name match wins, then the longest raw name prefix.
type merchantMatcher struct {
	merchants []model.Merchant
}

func loadMerchantMatcher(ctx context.Context, q queryable) (*merchantMatcher, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+merchantColumns+` FROM merchant_aliases ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load merchants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	m := &merchantMatcher{}
	for rows.Next() {
		merchant, err := scanMerchant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan merchant: %w", err)
		}
		m.merchants = append(m.merchants, merchant)
	}
	return m, rows.Err()
}

func (m *merchantMatcher) match(raw string) (model.Merchant, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return model.Merchant{}, false
	}

	var (
		best    model.Merchant
		bestLen int
	)
	for _, merchant := range m.merchants {
		name := strings.ToLower(strings.TrimSpace(merchant.RawName))
		if name == "" {
			continue
		}
		if name == raw {
			return merchant, true
		}
		if strings.HasPrefix(raw, name) && len(name) > bestLen {
			best, bestLen = merchant, len(name)
		}
	}
	return best, bestLen > 0
}
