package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/model"
)

// pendingClause selects raw expenses that are neither archived nor saved.
const pendingClause = `r.archived = 0 AND NOT EXISTS (SELECT 1 FROM expenses e WHERE e.raw_expense_id = r.id)`

const rawColumns = `r.id, r.transaction_date, r.amount, r.currency, r.raw_merchant_name, r.raw_description,
	r.source, r.source_file, r.merchant_alias_id, m.display_name, m.raw_name,
	r.category_id, c.name, c.color, r.type, r.description, r.tags`

const rawFrom = ` FROM raw_expenses r
	LEFT JOIN merchant_aliases m ON m.id = r.merchant_alias_id
	LEFT JOIN categories c ON c.id = r.category_id`

// NewItem is an imported transaction entering the queue.
type NewItem struct {
	Amount          decimal.Decimal
	TransactionDate string
	Currency        string
	RawMerchantName string
	RawDescription  string
	Source          string
	SourceFile      string
	Type            model.ExpenseType
	Tags            []string
}

func scanQueueItem(row interface{ Scan(...any) error }) (model.QueueItem, error) {
	var (
		item          model.QueueItem
		amount        string
		rawMerchant   sql.NullString
		rawDesc       sql.NullString
		srcFile       sql.NullString
		merchantID    sql.NullInt64
		merchantName  sql.NullString
		merchantRaw   sql.NullString
		categoryID    sql.NullInt64
		categoryName  sql.NullString
		categoryColor sql.NullString
		typ           sql.NullString
		description   sql.NullString
		tags          sql.NullString
	)
	if err := row.Scan(&item.ID, &item.TransactionDate, &amount, &item.Currency, &rawMerchant, &rawDesc,
		&item.Source, &srcFile, &merchantID, &merchantName, &merchantRaw,
		&categoryID, &categoryName, &categoryColor, &typ, &description, &tags); err != nil {
		return model.QueueItem{}, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return model.QueueItem{}, fmt.Errorf("raw expense %d has invalid amount %q: %w", item.ID, amount, err)
	}
	item.Amount = parsed
	item.RawMerchantName = rawMerchant.String
	item.RawDescription = rawDesc.String
	item.SourceFile = srcFile.String
	item.Type = model.ExpenseType(typ.String)
	item.Description = description.String

	item.MerchantAliasID = intPtr(merchantID)
	if merchantID.Valid {
		item.MerchantAlias = &model.MerchantRef{ID: int(merchantID.Int64), DisplayName: merchantName.String, RawName: merchantRaw.String}
	}
	item.CategoryID = intPtr(categoryID)
	if categoryID.Valid {
		item.Category = &model.CategoryRef{ID: int(categoryID.Int64), Name: categoryName.String, Color: categoryColor.String}
	}

	item.Tags = []string{}
	if tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &item.Tags); err != nil {
			return model.QueueItem{}, fmt.Errorf("raw expense %d has invalid tags: %w", item.ID, err)
		}
	}
	return item, nil
}

// suggester fills in the server-side merchant, category and type
// suggestions. Category types are cached for the suggester's lifetime.
type suggester struct {
	merchants     *merchantMatcher
	q             queryable
	categoryTypes map[int]*model.ExpenseType
}

func newSuggester(ctx context.Context, q queryable) (*suggester, error) {
	merchants, err := loadMerchantMatcher(ctx, q)
	if err != nil {
		return nil, err
	}
	return &suggester{merchants: merchants, q: q, categoryTypes: make(map[int]*model.ExpenseType)}, nil
}

func (s *suggester) suggest(ctx context.Context, item *model.QueueItem) error {
	if item.MerchantAliasID == nil {
		if m, ok := s.merchants.match(item.RawMerchantName); ok {
			ref := m.Ref()
			item.SuggestedMerchantAlias = &ref
			if item.CategoryID == nil && m.DefaultCategoryID != nil {
				id := *m.DefaultCategoryID
				item.SuggestedCategoryID = &id
			}
		}
	}

	if item.Type != "" {
		return nil
	}
	categoryID, ok := item.EffectiveCategoryID()
	if !ok {
		return nil
	}
	typ, cached := s.categoryTypes[categoryID]
	if !cached {
		var err error
		if typ, err = categoryTypeTx(ctx, s.q, categoryID); err != nil {
			return err
		}
		s.categoryTypes[categoryID] = typ
	}
	if typ != nil {
		item.SuggestedType = *typ
	}
	return nil
}

// InsertRawExpense adds an imported transaction to the queue.
func (s *SQLiteStorage) InsertRawExpense(ctx context.Context, item NewItem) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateNewItem(item); err != nil {
		return 0, err
	}
	if item.Currency == "" {
		item.Currency = "GBP"
	}
	tags, err := encodeTags(item.Tags)
	if err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO raw_expenses (transaction_date, amount, currency, raw_merchant_name, raw_description,
			source, source_file, type, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.TransactionDate, item.Amount.StringFixed(2), item.Currency, nullString(item.RawMerchantName),
		nullString(item.RawDescription), item.Source, nullString(item.SourceFile), nullString(string(item.Type)), tags)
	if err != nil {
		return 0, fmt.Errorf("failed to insert raw expense: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get raw expense ID: %w", err)
	}
	return int(id), nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(data), nil
}

// ListQueue returns the pending items that pass filter, oldest first, with
// suggestions filled in.
func (s *SQLiteStorage) ListQueue(ctx context.Context, filter model.QueueFilter) ([]model.QueueItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	items, err := listPendingTx(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if filter.IsZero() {
		return items, nil
	}
	kept := make([]model.QueueItem, 0, len(items))
	for _, item := range items {
		if filter.Matches(item) {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

func listPendingTx(ctx context.Context, q queryable) ([]model.QueueItem, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+rawColumns+rawFrom+` WHERE `+pendingClause+
		` ORDER BY r.transaction_date, r.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	items := []model.QueueItem{}
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan queue item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Suggestions run their own queries, so rows must be closed first on
	// a single-connection database.
	sg, err := newSuggester(ctx, q)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if err := sg.suggest(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// QueueCount returns the number of pending items.
func (s *SQLiteStorage) QueueCount(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM raw_expenses r WHERE `+pendingClause).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return count, nil
}

// GetQueueItem returns one pending item with suggestions.
func (s *SQLiteStorage) GetQueueItem(ctx context.Context, id int) (model.QueueItem, error) {
	if err := validateContext(ctx); err != nil {
		return model.QueueItem{}, err
	}
	return getPendingTx(ctx, s.db, id)
}

func getPendingTx(ctx context.Context, q queryable, id int) (model.QueueItem, error) {
	item, err := scanQueueItem(q.QueryRowContext(ctx,
		`SELECT `+rawColumns+rawFrom+` WHERE r.id = ? AND `+pendingClause, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.QueueItem{}, rawNotFound(ctx, q, id)
	}
	if err != nil {
		return model.QueueItem{}, fmt.Errorf("failed to get queue item: %w", err)
	}
	sg, err := newSuggester(ctx, q)
	if err != nil {
		return model.QueueItem{}, err
	}
	if err := sg.suggest(ctx, &item); err != nil {
		return model.QueueItem{}, err
	}
	return item, nil
}

// rawNotFound explains why id is not pending: it was already saved or it
// does not exist.
func rawNotFound(ctx context.Context, q queryable, id int) error {
	var saved int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses WHERE raw_expense_id = ?`, id).Scan(&saved)
	if err == nil && saved > 0 {
		return fmt.Errorf("raw expense %d: %w", id, ErrAlreadySaved)
	}
	return fmt.Errorf("raw expense %d: %w", id, common.ErrNotFound)
}

// UpdateQueueItem writes the set fields of update onto a pending item.
func (s *SQLiteStorage) UpdateQueueItem(ctx context.Context, id int, update model.QueueItemUpdate) error {
	if update.Type != nil {
		if err := validateExpenseType(*update.Type); err != nil {
			return err
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getPendingTx(ctx, tx, id); err != nil {
			return err
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
		if update.Description != nil {
			sets = append(sets, "description = ?")
			args = append(args, *update.Description)
		}
		if update.Tags != nil {
			tags, err := encodeTags(*update.Tags)
			if err != nil {
				return err
			}
			sets = append(sets, "tags = ?")
			args = append(args, tags)
		}
		if len(sets) == 0 {
			return nil
		}

		args = append(args, id)
		if _, err := tx.ExecContext(ctx, `UPDATE raw_expenses SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
			return fmt.Errorf("failed to update raw expense: %w", err)
		}
		return nil
	})
}

// DeleteQueueItem discards a pending item.
func (s *SQLiteStorage) DeleteQueueItem(ctx context.Context, id int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getPendingTx(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM raw_expenses WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete raw expense: %w", err)
		}
		return nil
	})
}

// expenseDraft is everything needed to write one expense row.
type expenseDraft struct {
	Amount          decimal.Decimal
	RawExpenseID    *int
	MerchantID      *int
	CategoryID      *int
	TransactionDate string
	Currency        string
	Description     string
	Type            model.ExpenseType
	Tags            []string
}

func insertExpenseTx(ctx context.Context, q queryable, draft expenseDraft) (int, error) {
	if err := validateExpenseType(draft.Type); err != nil {
		return 0, err
	}
	if draft.CategoryID != nil {
		if _, err := getCategoryTx(ctx, q, *draft.CategoryID); err != nil {
			return 0, err
		}
	}
	result, err := q.ExecContext(ctx, `
		INSERT INTO expenses (raw_expense_id, transaction_date, amount, currency, merchant_alias_id,
			category_id, description, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, nullInt(draft.RawExpenseID), draft.TransactionDate, draft.Amount.StringFixed(2), draft.Currency,
		nullInt(draft.MerchantID), nullInt(draft.CategoryID), nullString(draft.Description), nullString(string(draft.Type)))
	if err != nil {
		return 0, fmt.Errorf("failed to insert expense: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get expense ID: %w", err)
	}
	if err := tagExpenseTx(ctx, q, int(id), draft.Tags); err != nil {
		return 0, err
	}
	return int(id), nil
}

func draftFromItem(item model.QueueItem) expenseDraft {
	id := item.ID
	return expenseDraft{
		RawExpenseID:    &id,
		TransactionDate: item.TransactionDate,
		Amount:          item.Amount,
		Currency:        item.Currency,
		Description:     item.Description,
		Type:            item.Type,
		Tags:            item.Tags,
	}
}

// ProcessQueueItem saves one pending item as an expense. A merchant alias
// id wins over a merchant name; an unknown name creates a new alias.
func (s *SQLiteStorage) ProcessQueueItem(ctx context.Context, req model.ProcessRequest) (model.ProcessResponse, error) {
	var resp model.ProcessResponse
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		item, err := getPendingTx(ctx, tx, req.RawExpenseID)
		if err != nil {
			return err
		}

		draft := draftFromItem(item)
		draft.CategoryID = req.CategoryID
		if req.Description != "" {
			draft.Description = req.Description
		}
		if req.Type != "" {
			draft.Type = req.Type
		}
		if req.Tags != nil {
			draft.Tags = req.Tags
		}

		switch {
		case req.MerchantAliasID != nil:
			if _, err := getMerchantTx(ctx, tx, *req.MerchantAliasID); err != nil {
				return err
			}
			draft.MerchantID = req.MerchantAliasID
		case strings.TrimSpace(req.MerchantName) != "":
			m, err := resolveMerchantTx(ctx, tx, strings.TrimSpace(req.MerchantName), item.RawMerchantName, req.CategoryID)
			if err != nil {
				return err
			}
			draft.MerchantID = &m.ID
		}

		expenseID, err := insertExpenseTx(ctx, tx, draft)
		if err != nil {
			return err
		}
		resp = model.ProcessResponse{Message: "Raw expense processed successfully", ExpenseID: expenseID}
		return nil
	})
	return resp, err
}

// BulkSave saves each listed item using its resolved or suggested merchant,
// category and type. Items fail individually; the rest are still saved.
func (s *SQLiteStorage) BulkSave(ctx context.Context, ids []int) (model.BulkSaveResponse, error) {
	resp := model.BulkSaveResponse{Errors: []string{}}
	if err := validateContext(ctx); err != nil {
		return resp, err
	}
	if err := validateIDs(ids); err != nil {
		return resp, err
	}

	for _, id := range ids {
		err := s.withTx(ctx, func(tx *sql.Tx) error {
			return saveCompleteTx(ctx, tx, id)
		})
		if err != nil {
			resp.FailedCount++
			resp.Errors = append(resp.Errors, fmt.Sprintf("Raw expense %d: %v", id, err))
			continue
		}
		resp.SavedCount++
	}
	return resp, nil
}

func saveCompleteTx(ctx context.Context, tx *sql.Tx, id int) error {
	item, err := getPendingTx(ctx, tx, id)
	if err != nil {
		return err
	}
	merchantID, hasMerchant := item.EffectiveMerchantID()
	categoryID, hasCategory := item.EffectiveCategoryID()
	if !hasMerchant || !hasCategory {
		return ErrIncomplete
	}

	draft := draftFromItem(item)
	draft.MerchantID = &merchantID
	draft.CategoryID = &categoryID
	draft.Type = item.EffectiveType()
	_, err = insertExpenseTx(ctx, tx, draft)
	return err
}

// Archive hides the listed items from the queue without saving them.
func (s *SQLiteStorage) Archive(ctx context.Context, ids []int) (model.ArchiveResponse, error) {
	if err := validateContext(ctx); err != nil {
		return model.ArchiveResponse{}, err
	}
	if err := validateIDs(ids); err != nil {
		return model.ArchiveResponse{}, err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE raw_expenses SET archived = 1
		WHERE id IN (`+placeholders(len(ids))+`) AND archived = 0
		AND NOT EXISTS (SELECT 1 FROM expenses e WHERE e.raw_expense_id = raw_expenses.id)`, intArgs(ids)...)
	if err != nil {
		return model.ArchiveResponse{}, fmt.Errorf("failed to archive raw expenses: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return model.ArchiveResponse{}, fmt.Errorf("failed to count archived raw expenses: %w", err)
	}
	return model.ArchiveResponse{
		Message:       fmt.Sprintf("Archived %d raw expenses", n),
		ArchivedCount: int(n),
	}, nil
}

// Merge combines pending items into one expense: amounts are summed, the
// earliest date is kept and the source items are archived.
func (s *SQLiteStorage) Merge(ctx context.Context, req model.MergeRequest) (model.MergeResponse, error) {
	if len(req.RawExpenseIDs) < 2 {
		return model.MergeResponse{}, fmt.Errorf("%w: merge needs at least two raw expenses", ErrInvalidItem)
	}
	name := strings.TrimSpace(req.ExpenseData.MerchantName)
	if err := validateString(name, "merchant_name"); err != nil {
		return model.MergeResponse{}, err
	}

	var resp model.MergeResponse
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var items []model.QueueItem
		seen := make(map[int]bool, len(req.RawExpenseIDs))
		for _, id := range req.RawExpenseIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			item, err := getPendingTx(ctx, tx, id)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		if len(items) < 2 {
			return fmt.Errorf("%w: merge needs at least two distinct raw expenses", ErrInvalidItem)
		}

		draft := expenseDraft{
			TransactionDate: items[0].TransactionDate,
			Currency:        items[0].Currency,
			CategoryID:      req.ExpenseData.CategoryID,
			Description:     req.ExpenseData.Description,
			Type:            req.ExpenseData.Type,
			Tags:            req.ExpenseData.Tags,
		}
		archived := make([]int, 0, len(items))
		for _, item := range items {
			draft.Amount = draft.Amount.Add(item.Amount)
			if item.TransactionDate < draft.TransactionDate {
				draft.TransactionDate = item.TransactionDate
			}
			archived = append(archived, item.ID)
		}

		m, err := resolveMerchantTx(ctx, tx, name, items[0].RawMerchantName, req.ExpenseData.CategoryID)
		if err != nil {
			return err
		}
		draft.MerchantID = &m.ID

		expenseID, err := insertExpenseTx(ctx, tx, draft)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE raw_expenses SET archived = 1 WHERE id IN (`+
			placeholders(len(archived))+`)`, intArgs(archived)...); err != nil {
			return fmt.Errorf("failed to archive merged raw expenses: %w", err)
		}

		resp = model.MergeResponse{
			Message:               fmt.Sprintf("Merged %d raw expenses", len(archived)),
			ExpenseID:             expenseID,
			ArchivedRawExpenseIDs: archived,
		}
		return nil
	})
	return resp, err
}

// FindDuplicates pairs each pending item with other pending items and saved
// expenses of the same amount on the same date. Items without candidates are
// omitted.
func (s *SQLiteStorage) FindDuplicates(ctx context.Context) (map[int]model.DuplicateSet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	items, err := listPendingTx(ctx, s.db)
	if err != nil {
		return nil, err
	}
	saved, err := savedCandidates(ctx, s.db)
	if err != nil {
		return nil, err
	}

	sets := make(map[int]model.DuplicateSet)
	for _, item := range items {
		date, err := item.Date()
		if err != nil {
			continue
		}
		var dups []model.Duplicate
		for _, other := range items {
			if other.ID == item.ID || !other.Amount.Equal(item.Amount) || !sameDate(date, other.TransactionDate) {
				continue
			}
			dups = append(dups, model.Duplicate{
				ID:              other.ID,
				Type:            model.DuplicateRaw,
				TransactionDate: other.TransactionDate,
				Amount:          other.Amount,
				MerchantName:    other.MerchantLabel(),
				Description:     other.RawDescription,
			})
		}
		for _, expense := range saved {
			if !expense.Amount.Equal(item.Amount) || !sameDate(date, expense.TransactionDate) {
				continue
			}
			dups = append(dups, expense)
		}
		if len(dups) > 0 {
			sets[item.ID] = model.DuplicateSet{RawExpense: item, Duplicates: dups}
		}
	}
	return sets, nil
}

func sameDate(date time.Time, other string) bool {
	t, err := time.Parse(model.DateLayout, other)
	if err != nil {
		return false
	}
	return t.Equal(date)
}

func savedCandidates(ctx context.Context, q queryable) ([]model.Duplicate, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT e.id, e.transaction_date, e.amount, m.display_name, e.description
		FROM expenses e LEFT JOIN merchant_aliases m ON m.id = e.merchant_alias_id
		WHERE e.archived = 0
		ORDER BY e.transaction_date, e.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load saved expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var dups []model.Duplicate
	for rows.Next() {
		var (
			d           model.Duplicate
			amount      string
			merchant    sql.NullString
			description sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.TransactionDate, &amount, &merchant, &description); err != nil {
			return nil, fmt.Errorf("failed to scan saved expense: %w", err)
		}
		if d.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("expense %d has invalid amount %q: %w", d.ID, amount, err)
		}
		d.Type = model.DuplicateSaved
		d.MerchantName = merchant.String
		d.Description = description.String
		dups = append(dups, d)
	}
	return dups, rows.Err()
}
