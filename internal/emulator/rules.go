package emulator

import (
	"net/http"

	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/storage"
)

// RulesHandler serves /api/rules.
type RulesHandler struct {
	store *storage.SQLiteStorage
}

// NewRulesHandler creates a RulesHandler.
func NewRulesHandler(s *storage.SQLiteStorage) *RulesHandler {
	return &RulesHandler{store: s}
}

// List handles GET /api/rules.
func (h *RulesHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.store.ListRules(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

// Create handles POST /api/rules.
func (h *RulesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input model.RuleInput
	if !decodeBody(w, r, &input) {
		return
	}
	rule, err := h.store.CreateRule(r.Context(), input)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// Update handles PUT /api/rules/{id}.
func (h *RulesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var input model.RuleInput
	if !decodeBody(w, r, &input) {
		return
	}
	rule, err := h.store.UpdateRule(r.Context(), id, input)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// Delete handles DELETE /api/rules/{id}.
func (h *RulesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteRule(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Rule deleted"})
}
