package emulator

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/storage"
)

// maxTicketUpload bounds the in-memory part of a ticket upload.
const maxTicketUpload = 32 << 20

// ExpensesHandler serves saved expenses, the import history and the
// notification endpoints.
type ExpensesHandler struct {
	store *storage.SQLiteStorage
}

// NewExpensesHandler creates an ExpensesHandler.
func NewExpensesHandler(s *storage.SQLiteStorage) *ExpensesHandler {
	return &ExpensesHandler{store: s}
}

// List handles GET /api/expenses.
func (h *ExpensesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.ExpenseFilter{
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
		Search:   q.Get("search"),
	}

	var ok bool
	if filter.Skip, ok = intParam(w, r, "skip"); !ok {
		return
	}
	if filter.Limit, ok = intParam(w, r, "limit"); !ok {
		return
	}
	if raw := q.Get("category_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, http.StatusUnprocessableEntity, "Invalid category_id")
			return
		}
		filter.CategoryID = &id
	}

	page, err := h.store.ListExpenses(r.Context(), filter)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func intParam(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		writeJSONError(w, http.StatusUnprocessableEntity, "Invalid "+key)
		return 0, false
	}
	return v, true
}

// Get handles GET /api/expenses/{id}.
func (h *ExpensesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	expense, err := h.store.GetExpense(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// Update handles PUT /api/expenses/{id}.
func (h *ExpensesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var update model.ExpenseUpdate
	if !decodeBody(w, r, &update) {
		return
	}
	expense, err := h.store.UpdateExpense(r.Context(), id, update)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// Delete handles DELETE /api/expenses/{id}.
func (h *ExpensesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteExpense(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Expense deleted successfully"})
}

// UploadTickets handles POST /api/upload-tickets. Only the file names and
// sizes are kept.
func (h *ExpensesHandler) UploadTickets(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxTicketUpload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "No files provided")
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeJSONError(w, http.StatusBadRequest, "No files provided")
		return
	}

	now := time.Now()
	files := make([]string, 0, len(headers))
	for _, fh := range headers {
		name := filepath.Base(fh.Filename)
		if fh.Filename == "" || name == "." {
			continue
		}
		stored, err := h.store.RecordTicket(r.Context(), name, fh.Size, now)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		files = append(files, stored)
	}
	writeJSON(w, http.StatusOK, model.TicketUpload{
		Message: fmt.Sprintf("Uploaded %d ticket photos successfully", len(files)),
		Files:   files,
	})
}

// Upload handles POST /api/import/xlsx. Spreadsheet parsing lives in the
// real server only.
func (h *ExpensesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, http.StatusNotImplemented, "XLSX import is not available in the emulator")
}

// History handles GET /api/import/history.
func (h *ExpensesHandler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListImports(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// ProcessImports handles POST /api/import/process and /process-all.
func (h *ExpensesHandler) ProcessImports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.ImportResult{Message: "No pending import files"})
}

// ParseNotifications handles POST /api/notifications/parse-all.
func (h *ExpensesHandler) ParseNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.NotificationResult{Message: "No notifications to parse"})
}

// AcceptNotifications handles POST /api/notifications/accept-all.
func (h *ExpensesHandler) AcceptNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.NotificationResult{Message: "No notifications to accept"})
}

// DiscardNotification handles POST /api/notifications/discard/{id}.
func (h *ExpensesHandler) DiscardNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	writeJSONError(w, http.StatusNotFound, fmt.Sprintf("notification %d: not found", id))
}
