package emulator

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/storage"
)

// QueueHandler serves /api/queue.
type QueueHandler struct {
	store *storage.SQLiteStorage
}

// NewQueueHandler creates a QueueHandler.
func NewQueueHandler(s *storage.SQLiteStorage) *QueueHandler {
	return &QueueHandler{store: s}
}

// All handles GET /api/queue/all.
func (h *QueueHandler) All(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.QueueFilter{
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
		Source:   q.Get("source"),
		Search:   q.Get("search"),
	}
	var ok bool
	if filter.AmountMin, ok = decimalParam(w, r, "amount_min"); !ok {
		return
	}
	if filter.AmountMax, ok = decimalParam(w, r, "amount_max"); !ok {
		return
	}

	items, err := h.store.ListQueue(r.Context(), filter)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func decimalParam(w http.ResponseWriter, r *http.Request, key string) (*decimal.Decimal, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "Invalid "+key)
		return nil, false
	}
	return &d, true
}

// Next handles GET /api/queue: the oldest pending item.
func (h *QueueHandler) Next(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListQueue(r.Context(), model.QueueFilter{})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if len(items) == 0 {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "No raw expenses to process"})
		return
	}
	writeJSON(w, http.StatusOK, items[0])
}

// Count handles GET /api/queue/count.
func (h *QueueHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.QueueCount(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.CountResponse{Count: count})
}

// Update handles PUT /api/queue/{id}.
func (h *QueueHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var update model.QueueItemUpdate
	if !decodeBody(w, r, &update) {
		return
	}
	if err := h.store.UpdateQueueItem(r.Context(), id, update); err != nil {
		writeStoreError(w, r, err)
		return
	}
	item, err := h.store.GetQueueItem(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/queue/{id}.
func (h *QueueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteQueueItem(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Raw expense discarded"})
}

// Process handles POST /api/queue/process.
func (h *QueueHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req model.ProcessRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.store.ProcessQueueItem(r.Context(), req)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// BulkSave handles POST /api/queue/bulk-save.
func (h *QueueHandler) BulkSave(w http.ResponseWriter, r *http.Request) {
	var req model.IDsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.store.BulkSave(r.Context(), req.RawExpenseIDs)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Archive handles POST /api/queue/archive.
func (h *QueueHandler) Archive(w http.ResponseWriter, r *http.Request) {
	var req model.IDsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.store.Archive(r.Context(), req.RawExpenseIDs)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Merge handles POST /api/queue/merge.
func (h *QueueHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req model.MergeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.store.Merge(r.Context(), req)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// FindDuplicates handles GET /api/queue/find-duplicates. Keys are
// encoded as id strings.
func (h *QueueHandler) FindDuplicates(w http.ResponseWriter, r *http.Request) {
	sets, err := h.store.FindDuplicates(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

// CategoryType handles GET /api/queue/category-type/{id}.
func (h *QueueHandler) CategoryType(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	typ, err := h.store.CategoryType(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.CategoryTypeResponse{Type: typ})
}

// ApplyRules handles POST /api/queue/apply-rules.
func (h *QueueHandler) ApplyRules(w http.ResponseWriter, r *http.Request) {
	resp, err := h.store.ApplyRules(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
