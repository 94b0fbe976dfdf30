package emulator

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/storage"
)

// ErrorResponse is the FastAPI-style error body.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse acknowledges a call that returns no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// writeStoreError maps storage errors onto status codes.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrAlreadySaved), errors.Is(err, common.ErrDuplicateEntry):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrInvalidItem),
		errors.Is(err, storage.ErrInvalidCategory),
		errors.Is(err, storage.ErrInvalidRule),
		errors.Is(err, storage.ErrIncomplete),
		errors.Is(err, storage.ErrEmptyString),
		errors.Is(err, storage.ErrEmptySlice):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("Emulator request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "Failed to parse request body: "+err.Error())
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "Invalid "+name)
		return 0, false
	}
	return id, true
}
