package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"kakeibo/internal/expense"
	"kakeibo/internal/models"
	"kakeibo/internal/session"

	"github.com/go-chi/chi/v5"
)

// CreateExpenseRequest is the JSON create payload. Amount is decoded
// loosely: clients send it as a number or a numeric string.
type CreateExpenseRequest struct {
	SpentDate string          `json:"spent_date"`
	Category  string          `json:"category"`
	Amount    json.RawMessage `json:"amount"`
	Memo      string          `json:"memo"`
}

// ListExpensesResponse is the JSON list payload.
type ListExpensesResponse struct {
	Items []models.Expense `json:"items"`
	Total int64            `json:"total"`
}

// ListExpensesJSON returns all visible expenses with their total. In
// web mode the session middleware scopes the result to the caller.
func (h *Handlers) ListExpensesJSON(w http.ResponseWriter, r *http.Request) {
	items, total, err := h.expenses.List(r.Context(), ownerFromContext(r))
	if err != nil {
		slog.Error("list expenses failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if items == nil {
		items = []models.Expense{}
	}
	writeJSON(w, http.StatusOK, ListExpensesResponse{Items: items, Total: total})
}

// CreateExpenseJSON creates an expense from a JSON body.
func (h *Handlers) CreateExpenseJSON(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	id, err := h.expenses.Create(r.Context(), ownerFromContext(r),
		req.SpentDate, req.Category, rawAmount(req.Amount), req.Memo)
	if errors.Is(err, expense.ErrInvalidInput) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		slog.Error("create expense failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// DeleteExpenseJSON deletes an expense by id. A missing or non-owned id
// is a not-found outcome, not a server error; repeating a delete
// reports not-found too.
func (h *Handlers) DeleteExpenseJSON(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]bool{"ok": false})
		return
	}

	err = h.expenses.Delete(r.Context(), id, ownerFromContext(r))
	if errors.Is(err, expense.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]bool{"ok": false})
		return
	}
	if err != nil {
		slog.Error("delete expense failed", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ownerFromContext returns the authenticated caller's id, or nil when
// the route is unauthenticated (api mode).
func ownerFromContext(r *http.Request) *int64 {
	if p, ok := session.FromContext(r.Context()); ok {
		return &p.UserID
	}
	return nil
}

// rawAmount renders the raw JSON amount as the string the validator
// parses: numbers and quoted numbers both pass through, anything else
// comes out unparseable.
func rawAmount(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}
