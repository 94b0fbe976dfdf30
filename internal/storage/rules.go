package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/model"
)

const ruleColumns = `id, name, field, match_type, match_value, action, save_data, active`

func scanRule(row interface{ Scan(...any) error }) (model.Rule, error) {
	var (
		r        model.Rule
		saveData sql.NullString
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Field, &r.MatchType, &r.MatchValue, &r.Action, &saveData, &r.Active); err != nil {
		return model.Rule{}, err
	}
	if saveData.String != "" {
		r.SaveData = &model.RuleSaveData{}
		if err := json.Unmarshal([]byte(saveData.String), r.SaveData); err != nil {
			return model.Rule{}, fmt.Errorf("rule %d has invalid save data: %w", r.ID, err)
		}
	}
	return r, nil
}

func encodeSaveData(data *model.RuleSaveData) (sql.NullString, error) {
	if data == nil {
		return sql.NullString{}, nil
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode save data: %w", err)
	}
	return sql.NullString{String: string(encoded), Valid: true}, nil
}

// ListRules returns every rule in evaluation order.
func (s *SQLiteStorage) ListRules(ctx context.Context) ([]model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listRulesTx(ctx, s.db, false)
}

func listRulesTx(ctx context.Context, q queryable, activeOnly bool) ([]model.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY id`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	rules := []model.Rule{}
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// GetRule returns one rule.
func (s *SQLiteStorage) GetRule(ctx context.Context, id int) (model.Rule, error) {
	r, err := scanRule(s.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM rules WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Rule{}, fmt.Errorf("rule %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return model.Rule{}, fmt.Errorf("failed to get rule: %w", err)
	}
	return r, nil
}

// CreateRule adds a rule. Rules are active unless input says otherwise.
func (s *SQLiteStorage) CreateRule(ctx context.Context, input model.RuleInput) (model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return model.Rule{}, err
	}
	if err := validateRule(input); err != nil {
		return model.Rule{}, err
	}
	if input.Name == "" {
		input.Name = fmt.Sprintf("%s %s %q", input.Field, input.MatchType, input.MatchValue)
	}
	active := input.Active == nil || *input.Active
	saveData, err := encodeSaveData(input.SaveData)
	if err != nil {
		return model.Rule{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO rules (name, field, match_type, match_value, action, save_data, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, input.Name, input.Field, input.MatchType, input.MatchValue, input.Action, saveData, active)
	if err != nil {
		return model.Rule{}, fmt.Errorf("failed to create rule: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Rule{}, fmt.Errorf("failed to get rule ID: %w", err)
	}
	return s.GetRule(ctx, int(id))
}

func validateRule(input model.RuleInput) error {
	if err := input.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	if input.MatchType == model.MatchRegex {
		if _, err := common.MatchRegex(input.MatchValue, ""); err != nil {
			return fmt.Errorf("%w: invalid pattern %q: %w", ErrInvalidRule, input.MatchValue, err)
		}
	}
	if input.SaveData != nil {
		if err := validateExpenseType(input.SaveData.Type); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRule, err)
		}
	}
	return nil
}

// UpdateRule changes the set fields of input.
func (s *SQLiteStorage) UpdateRule(ctx context.Context, id int, input model.RuleInput) (model.Rule, error) {
	current, err := s.GetRule(ctx, id)
	if err != nil {
		return model.Rule{}, err
	}

	merged := model.RuleInput{
		Name:       current.Name,
		Field:      current.Field,
		MatchType:  current.MatchType,
		MatchValue: current.MatchValue,
		Action:     current.Action,
		SaveData:   current.SaveData,
		Active:     &current.Active,
	}
	if input.Name != "" {
		merged.Name = input.Name
	}
	if input.Field != "" {
		merged.Field = input.Field
	}
	if input.MatchType != "" {
		merged.MatchType = input.MatchType
	}
	if input.MatchValue != "" {
		merged.MatchValue = input.MatchValue
	}
	if input.Action != "" {
		merged.Action = input.Action
	}
	if input.SaveData != nil {
		merged.SaveData = input.SaveData
	}
	if input.Active != nil {
		merged.Active = input.Active
	}
	if err := validateRule(merged); err != nil {
		return model.Rule{}, err
	}
	saveData, err := encodeSaveData(merged.SaveData)
	if err != nil {
		return model.Rule{}, err
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE rules SET name = ?, field = ?, match_type = ?, match_value = ?, action = ?, save_data = ?, active = ?
		WHERE id = ?
	`, merged.Name, merged.Field, merged.MatchType, merged.MatchValue, merged.Action, saveData, *merged.Active, id); err != nil {
		return model.Rule{}, fmt.Errorf("failed to update rule: %w", err)
	}
	return s.GetRule(ctx, id)
}

// DeleteRule removes a rule.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("rule %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// ruleMatches reports whether the rule's field of item matches its value.
func ruleMatches(rule model.Rule, item model.QueueItem) (bool, error) {
	var value string
	switch rule.Field {
	case model.FieldRawMerchantName:
		value = item.RawMerchantName
	case model.FieldRawDescription:
		value = item.RawDescription
	case model.FieldAmount:
		value = item.Amount.StringFixed(2)
	case model.FieldSource:
		value = item.Source
	default:
		return false, nil
	}

	switch rule.MatchType {
	case model.MatchExact:
		return strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(rule.MatchValue)), nil
	case model.MatchRegex:
		return common.MatchRegex(rule.MatchValue, value)
	default:
		return false, nil
	}
}

// ApplyRules runs every pending item through the active rules. The first
// matching rule by id decides: discard deletes the item, save turns it
// into an expense from the rule's save data.
func (s *SQLiteStorage) ApplyRules(ctx context.Context) (model.ApplyRulesResponse, error) {
	var resp model.ApplyRulesResponse
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rules, err := listRulesTx(ctx, tx, true)
		if err != nil {
			return err
		}
		if len(rules) == 0 {
			return nil
		}
		items, err := listPendingTx(ctx, tx)
		if err != nil {
			return err
		}

		for _, item := range items {
			rule, ok, err := firstMatch(rules, item)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}

			switch rule.Action {
			case model.ActionDiscard:
				if _, err := tx.ExecContext(ctx, `DELETE FROM raw_expenses WHERE id = ?`, item.ID); err != nil {
					return fmt.Errorf("failed to discard raw expense %d: %w", item.ID, err)
				}
				resp.Discarded++
			case model.ActionSave:
				if err := saveByRuleTx(ctx, tx, rule, item); err != nil {
					return fmt.Errorf("rule %q on raw expense %d: %w", rule.Name, item.ID, err)
				}
				resp.Saved++
			default:
				continue
			}
			resp.Processed++
			slog.Debug("Applied rule", "rule", rule.ID, "action", rule.Action, "raw_expense_id", item.ID)
		}
		return nil
	})
	if err != nil {
		return model.ApplyRulesResponse{}, err
	}
	resp.Message = fmt.Sprintf("Processed %d raw expenses", resp.Processed)
	return resp, nil
}

func firstMatch(rules []model.Rule, item model.QueueItem) (model.Rule, bool, error) {
	for _, rule := range rules {
		ok, err := ruleMatches(rule, item)
		if err != nil {
			return model.Rule{}, false, fmt.Errorf("rule %d: %w", rule.ID, err)
		}
		if ok {
			return rule, true, nil
		}
	}
	return model.Rule{}, false, nil
}

func saveByRuleTx(ctx context.Context, tx *sql.Tx, rule model.Rule, item model.QueueItem) error {
	data := model.RuleSaveData{}
	if rule.SaveData != nil {
		data = *rule.SaveData
	}

	draft := draftFromItem(item)
	draft.CategoryID = data.CategoryID
	if draft.CategoryID == nil {
		if id, ok := item.EffectiveCategoryID(); ok {
			draft.CategoryID = &id
		}
	}
	if data.Description != "" {
		draft.Description = data.Description
	}
	if data.Type != "" {
		draft.Type = data.Type
	} else {
		draft.Type = item.EffectiveType()
	}
	if data.Tags != nil {
		draft.Tags = data.Tags
	}

	name := strings.TrimSpace(data.MerchantName)
	if name == "" {
		name = strings.TrimSpace(item.RawMerchantName)
	}
	if name != "" {
		m, err := resolveMerchantTx(ctx, tx, name, item.RawMerchantName, draft.CategoryID)
		if err != nil {
			return err
		}
		draft.MerchantID = &m.ID
	}

	_, err := insertExpenseTx(ctx, tx, draft)
	return err
}
