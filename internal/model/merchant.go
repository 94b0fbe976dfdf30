package model

// Merchant is a merchant alias mapping raw bank text to a display name.
type Merchant struct {
	DefaultCategoryID *int   `json:"default_category_id"`
	RawName           string `json:"raw_name"`
	DisplayName       string `json:"display_name"`
	ID                int    `json:"id"`
}

// Ref returns the abbreviated form embedded in queue items.
func (m Merchant) Ref() MerchantRef {
	return MerchantRef{ID: m.ID, DisplayName: m.DisplayName, RawName: m.RawName}
}

// MerchantInput carries the writable fields of a merchant.
type MerchantInput struct {
	DefaultCategoryID *int   `json:"default_category_id,omitempty"`
	RawName           string `json:"raw_name"`
	DisplayName       string `json:"display_name"`
}

// Tag is a free-form label attached to items and expenses.
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	ID    int    `json:"id"`
}

// TagInput carries the writable fields of a tag.
type TagInput struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}
