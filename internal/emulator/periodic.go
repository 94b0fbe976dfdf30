package emulator

import (
	"net/http"
	"strings"

	"github.com/Veraticus/expense-queue/internal/storage"
)

// PeriodicHandler serves the periodic expense catalog.
type PeriodicHandler struct {
	store *storage.SQLiteStorage
}

// NewPeriodicHandler creates a PeriodicHandler.
func NewPeriodicHandler(s *storage.SQLiteStorage) *PeriodicHandler {
	return &PeriodicHandler{store: s}
}

type periodicInput struct {
	Name string `json:"name"`
}

// List handles GET /api/periodic-expenses.
func (h *PeriodicHandler) List(w http.ResponseWriter, r *http.Request) {
	periodic, err := h.store.ListPeriodicExpenses(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, periodic)
}

// Create handles POST /api/periodic-expenses.
func (h *PeriodicHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input periodicInput
	if !decodeBody(w, r, &input) {
		return
	}
	periodic, err := h.store.CreatePeriodicExpense(r.Context(), input.Name)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, periodic)
}

// Suggest handles GET /api/periodic-expenses/suggest?name=.
func (h *PeriodicHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeJSONError(w, http.StatusUnprocessableEntity, "Missing name")
		return
	}
	suggestion, err := h.store.SuggestPeriodicExpense(r.Context(), name)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}
