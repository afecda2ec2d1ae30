package http

import (
	"net/http"

	"finbook/internal/auth"
	applog "finbook/internal/log"
)

func (s *Server) handleImportMock(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}

	created, err := s.expenseService.ImportMock(r.Context(), claims.UserID)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to import mock transactions",
			applog.FieldError, err.Error(),
			applog.FieldUserID, claims.UserID,
			applog.FieldOperation, applog.OpImport)
		writeError(w, http.StatusInternalServerError, "error importing transactions")
		return
	}

	ids := make([]int64, 0, len(created))
	for _, e := range created {
		ids = append(ids, e.ID)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"imported": len(created),
		"expenses": ids,
	})
}
