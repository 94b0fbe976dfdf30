package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Veraticus/expense-queue/internal/model"
)

// ListRules returns every rule.
func (c *Client) ListRules(ctx context.Context) ([]model.Rule, error) {
	var rules []model.Rule
	if err := c.doJSON(ctx, http.MethodGet, "/api/rules", nil, nil, &rules); err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return rules, nil
}

// CreateRule adds a rule.
func (c *Client) CreateRule(ctx context.Context, input model.RuleInput) (model.Rule, error) {
	var rule model.Rule
	if err := c.doJSON(ctx, http.MethodPost, "/api/rules", nil, input, &rule); err != nil {
		return rule, fmt.Errorf("failed to create rule %q: %w", input.Name, err)
	}
	return rule, nil
}

// UpdateRule changes the set fields of a rule.
func (c *Client) UpdateRule(ctx context.Context, id int, input model.RuleInput) (model.Rule, error) {
	var rule model.Rule
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/rules/%d", id), nil, input, &rule); err != nil {
		return rule, fmt.Errorf("failed to update rule %d: %w", id, err)
	}
	return rule, nil
}

// DeleteRule removes a rule.
func (c *Client) DeleteRule(ctx context.Context, id int) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/rules/%d", id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete rule %d: %w", id, err)
	}
	return nil
}
