package emulator

import (
	"net/http"

	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/storage"
)

// CatalogHandler serves categories, merchants and tags.
type CatalogHandler struct {
	store *storage.SQLiteStorage
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(s *storage.SQLiteStorage) *CatalogHandler {
	return &CatalogHandler{store: s}
}

// ListCategories handles GET /api/categories.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context(), model.CategoryType(r.URL.Query().Get("category_type")))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// CreateCategory handles POST /api/categories.
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input model.CategoryInput
	if !decodeBody(w, r, &input) {
		return
	}
	category, err := h.store.CreateCategory(r.Context(), input)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// UpdateCategory handles PUT /api/categories/{id}.
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var input model.CategoryInput
	if !decodeBody(w, r, &input) {
		return
	}
	category, err := h.store.UpdateCategory(r.Context(), id, input)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/categories/{id}.
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Category deleted"})
}

// ListMerchants handles GET /api/merchants with an optional q search.
func (h *CatalogHandler) ListMerchants(w http.ResponseWriter, r *http.Request) {
	merchants, err := h.store.ListMerchants(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, merchants)
}

// CreateMerchant handles POST /api/merchants.
func (h *CatalogHandler) CreateMerchant(w http.ResponseWriter, r *http.Request) {
	var input model.MerchantInput
	if !decodeBody(w, r, &input) {
		return
	}
	merchant, err := h.store.CreateMerchant(r.Context(), input)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, merchant)
}

// ListTags handles GET /api/tags with an optional q search.
func (h *CatalogHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.store.ListTags(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// CreateTag handles POST /api/tags.
func (h *CatalogHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var input model.TagInput
	if !decodeBody(w, r, &input) {
		return
	}
	tag, err := h.store.CreateTag(r.Context(), input)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// DeleteTag handles DELETE /api/tags/{id}.
func (h *CatalogHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteTag(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Tag deleted"})
}
