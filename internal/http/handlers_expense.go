package http

import (
	"errors"
	"net/http"
	"strconv"

	"finbook/internal/auth"
	"finbook/internal/core"
	applog "finbook/internal/log"
	"finbook/internal/storage"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}

	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Category == "" || req.Amount == nil {
		writeError(w, http.StatusBadRequest, "category and amount required")
		return
	}

	expense, err := s.expenseService.CreateExpense(r.Context(),
		claims.UserID,
		sanitizeInput(req.Category),
		sanitizeInput(req.Description),
		*req.Amount)
	switch {
	case errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrCategoryTooLong),
		errors.Is(err, core.ErrDescriptionTooLong),
		errors.Is(err, core.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to save expense",
			applog.FieldError, err.Error(),
			applog.FieldUserID, claims.UserID,
			applog.FieldOperation, applog.OpCreate)
		writeError(w, http.StatusInternalServerError, "error saving expense")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"expense": expense})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}

	expenses, err := s.expenseService.ListExpenses(r.Context(), claims.UserID)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to list expenses",
			applog.FieldError, err.Error(),
			applog.FieldUserID, claims.UserID,
			applog.FieldOperation, applog.OpList)
		writeError(w, http.StatusInternalServerError, "error listing expenses")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}

	expenseID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || expenseID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	err = s.expenseService.DeleteExpense(r.Context(), claims.UserID, expenseID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// Covers both missing and non-owned expenses, by the same body,
		// so ownership cannot be probed.
		writeError(w, http.StatusNotFound, "expense not found")
		return
	case err != nil:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to delete expense",
			applog.FieldError, err.Error(),
			applog.FieldUserID, claims.UserID,
			applog.FieldExpenseID, expenseID,
			applog.FieldOperation, applog.OpDelete)
		writeError(w, http.StatusInternalServerError, "error deleting expense")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": expenseID})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}

	summary, cached, err := s.expenseService.Summary(r.Context(), claims.UserID)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to compute summary",
			applog.FieldError, err.Error(),
			applog.FieldUserID, claims.UserID,
			applog.FieldOperation, applog.OpSummary)
		writeError(w, http.StatusInternalServerError, "error computing summary")
		return
	}
	if summary == nil {
		summary = []core.CategoryTotal{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary": summary,
		"cached":  cached,
	})
}
