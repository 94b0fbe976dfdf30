package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Veraticus/expense-queue/internal/model"
)

// ListExpenses returns one page of saved expenses.
func (c *Client) ListExpenses(ctx context.Context, filter model.ExpenseFilter) (model.ExpensePage, error) {
	query := url.Values{}
	if filter.CategoryID != nil {
		query.Set("category_id", strconv.Itoa(*filter.CategoryID))
	}
	if filter.DateFrom != "" {
		query.Set("date_from", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query.Set("date_to", filter.DateTo)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Skip > 0 {
		query.Set("skip", strconv.Itoa(filter.Skip))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	var page model.ExpensePage
	if err := c.doJSON(ctx, http.MethodGet, "/api/expenses", query, nil, &page); err != nil {
		return page, fmt.Errorf("failed to list expenses: %w", err)
	}
	return page, nil
}

// GetExpense returns one saved expense.
func (c *Client) GetExpense(ctx context.Context, id int) (model.Expense, error) {
	var expense model.Expense
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/expenses/%d", id), nil, nil, &expense); err != nil {
		return expense, fmt.Errorf("failed to get expense %d: %w", id, err)
	}
	return expense, nil
}

// UpdateExpense changes the fields set in update and returns the stored expense.
func (c *Client) UpdateExpense(ctx context.Context, id int, update model.ExpenseUpdate) (model.Expense, error) {
	var expense model.Expense
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/expenses/%d", id), nil, update, &expense); err != nil {
		return expense, fmt.Errorf("failed to update expense %d: %w", id, err)
	}
	return expense, nil
}

// DeleteExpense removes a saved expense.
func (c *Client) DeleteExpense(ctx context.Context, id int) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete expense %d: %w", id, err)
	}
	return nil
}

// ListPeriodicExpenses returns periodic expenses whose name contains query.
func (c *Client) ListPeriodicExpenses(ctx context.Context, query string) ([]model.PeriodicExpense, error) {
	var values url.Values
	if query != "" {
		values = url.Values{"q": {query}}
	}
	var periodic []model.PeriodicExpense
	if err := c.doJSON(ctx, http.MethodGet, "/api/periodic-expenses", values, nil, &periodic); err != nil {
		return nil, fmt.Errorf("failed to list periodic expenses: %w", err)
	}
	return periodic, nil
}

// CreatePeriodicExpense adds a periodic expense name.
func (c *Client) CreatePeriodicExpense(ctx context.Context, name string) (model.PeriodicExpense, error) {
	var periodic model.PeriodicExpense
	body := map[string]string{"name": name}
	if err := c.doJSON(ctx, http.MethodPost, "/api/periodic-expenses", nil, body, &periodic); err != nil {
		return periodic, fmt.Errorf("failed to create periodic expense: %w", err)
	}
	return periodic, nil
}

// SuggestPeriodicExpense returns the closest known periodic expense to name.
func (c *Client) SuggestPeriodicExpense(ctx context.Context, name string) (model.PeriodicSuggestion, error) {
	var suggestion model.PeriodicSuggestion
	values := url.Values{"name": {name}}
	if err := c.doJSON(ctx, http.MethodGet, "/api/periodic-expenses/suggest", values, nil, &suggestion); err != nil {
		return suggestion, fmt.Errorf("failed to suggest periodic expense: %w", err)
	}
	return suggestion, nil
}

// ParseNotifications turns captured push notifications into queue items.
func (c *Client) ParseNotifications(ctx context.Context) (model.NotificationResult, error) {
	var result model.NotificationResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/notifications/parse-all", nil, nil, &result); err != nil {
		return result, fmt.Errorf("failed to parse notifications: %w", err)
	}
	return result, nil
}

// AcceptAllNotifications accepts every parsed notification.
func (c *Client) AcceptAllNotifications(ctx context.Context) (model.NotificationResult, error) {
	var result model.NotificationResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/notifications/accept-all", nil, nil, &result); err != nil {
		return result, fmt.Errorf("failed to accept notifications: %w", err)
	}
	return result, nil
}

// DiscardNotification drops one parsed notification.
func (c *Client) DiscardNotification(ctx context.Context, id int) error {
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/notifications/discard/%d", id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to discard notification %d: %w", id, err)
	}
	return nil
}
