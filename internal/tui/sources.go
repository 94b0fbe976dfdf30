package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/service"
	"github.com/Veraticus/expense-queue/internal/tui/components"
)

var errNoCatalog = errors.New("no catalog configured")

// merchantSource serves the merchant autocomplete from /api/merchants.
type merchantSource struct {
	api service.CatalogAPI
}

func (s merchantSource) Search(ctx context.Context, query string) ([]components.Suggestion, error) {
	if s.api == nil {
		return nil, errNoCatalog
	}
	merchants, err := s.api.SearchMerchants(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]components.Suggestion, 0, len(merchants))
	for _, m := range merchants {
		out = append(out, merchantSuggestion(m))
	}
	return out, nil
}

func (s merchantSource) Create(ctx context.Context, name string) (components.Suggestion, error) {
	if s.api == nil {
		return components.Suggestion{}, errNoCatalog
	}
	m, err := s.api.CreateMerchant(ctx, model.MerchantInput{DisplayName: name, RawName: name})
	if err != nil {
		return components.Suggestion{}, err
	}
	return merchantSuggestion(m), nil
}

func merchantSuggestion(m model.Merchant) components.Suggestion {
	s := components.Suggestion{ID: m.ID, Label: m.DisplayName}
	if m.RawName != "" && !strings.EqualFold(m.RawName, m.DisplayName) {
		s.Detail = m.RawName
	}
	return s
}

// tagSource serves the tag autocomplete from /api/tags.
type tagSource struct {
	api service.CatalogAPI
}

func (s tagSource) Search(ctx context.Context, query string) ([]components.Suggestion, error) {
	if s.api == nil {
		return nil, errNoCatalog
	}
	tags, err := s.api.SearchTags(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]components.Suggestion, 0, len(tags))
	for _, t := range tags {
		out = append(out, components.Suggestion{ID: t.ID, Label: t.Name})
	}
	return out, nil
}

func (s tagSource) Create(ctx context.Context, name string) (components.Suggestion, error) {
	if s.api == nil {
		return components.Suggestion{}, errNoCatalog
	}
	t, err := s.api.CreateTag(ctx, model.TagInput{Name: name})
	if err != nil {
		return components.Suggestion{}, err
	}
	return components.Suggestion{ID: t.ID, Label: t.Name}, nil
}
