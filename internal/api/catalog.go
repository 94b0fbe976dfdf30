package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Veraticus/expense-queue/internal/model"
)

// ListCategories returns categories, restricted to one type when categoryType is set.
func (c *Client) ListCategories(ctx context.Context, categoryType model.CategoryType) ([]model.Category, error) {
	var query url.Values
	if categoryType != model.CategoryTypeAny {
		query = url.Values{"category_type": {string(categoryType)}}
	}

	var categories []model.Category
	if err := c.doJSON(ctx, http.MethodGet, "/api/categories", query, nil, &categories); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory adds a category.
func (c *Client) CreateCategory(ctx context.Context, input model.CategoryInput) (model.Category, error) {
	var category model.Category
	if err := c.doJSON(ctx, http.MethodPost, "/api/categories", nil, input, &category); err != nil {
		return category, fmt.Errorf("failed to create category %q: %w", input.Name, err)
	}
	return category, nil
}

// UpdateCategory changes the set fields of a category.
func (c *Client) UpdateCategory(ctx context.Context, id int, input model.CategoryInput) (model.Category, error) {
	var category model.Category
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/categories/%d", id), nil, input, &category); err != nil {
		return category, fmt.Errorf("failed to update category %d: %w", id, err)
	}
	return category, nil
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id int) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/categories/%d", id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	return nil
}

// ListMerchants returns every merchant alias.
func (c *Client) ListMerchants(ctx context.Context) ([]model.Merchant, error) {
	return c.SearchMerchants(ctx, "")
}

// SearchMerchants returns merchant aliases matching query.
func (c *Client) SearchMerchants(ctx context.Context, query string) ([]model.Merchant, error) {
	var merchants []model.Merchant
	if err := c.doJSON(ctx, http.MethodGet, "/api/merchants", searchQuery(query), nil, &merchants); err != nil {
		return nil, fmt.Errorf("failed to search merchants: %w", err)
	}
	return merchants, nil
}

// CreateMerchant adds a merchant alias.
func (c *Client) CreateMerchant(ctx context.Context, input model.MerchantInput) (model.Merchant, error) {
	var merchant model.Merchant
	if err := c.doJSON(ctx, http.MethodPost, "/api/merchants", nil, input, &merchant); err != nil {
		return merchant, fmt.Errorf("failed to create merchant %q: %w", input.DisplayName, err)
	}
	return merchant, nil
}

// ListTags returns every tag.
func (c *Client) ListTags(ctx context.Context) ([]model.Tag, error) {
	return c.SearchTags(ctx, "")
}

// SearchTags returns tags matching query.
func (c *Client) SearchTags(ctx context.Context, query string) ([]model.Tag, error) {
	var tags []model.Tag
	if err := c.doJSON(ctx, http.MethodGet, "/api/tags", searchQuery(query), nil, &tags); err != nil {
		return nil, fmt.Errorf("failed to search tags: %w", err)
	}
	return tags, nil
}

// CreateTag adds a tag.
func (c *Client) CreateTag(ctx context.Context, input model.TagInput) (model.Tag, error) {
	var tag model.Tag
	if err := c.doJSON(ctx, http.MethodPost, "/api/tags", nil, input, &tag); err != nil {
		return tag, fmt.Errorf("failed to create tag %q: %w", input.Name, err)
	}
	return tag, nil
}

// DeleteTag removes a tag.
func (c *Client) DeleteTag(ctx context.Context, id int) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/tags/%d", id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete tag %d: %w", id, err)
	}
	return nil
}

func searchQuery(q string) url.Values {
	if q == "" {
		return nil
	}
	return url.Values{"q": {q}}
}
