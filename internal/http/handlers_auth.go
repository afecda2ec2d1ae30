package http

import (
	"errors"
	"net/http"

	"finbook/internal/core"
	applog "finbook/internal/log"
	"finbook/internal/services"
	"finbook/internal/storage"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, token, err := s.authService.Register(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, core.ErrInvalidEmail) || errors.Is(err, core.ErrEmptyPassword):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, storage.ErrEmailTaken):
		writeError(w, http.StatusConflict, "user already exists")
		return
	case err != nil:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Registration failed",
			applog.FieldError, err.Error(),
			applog.FieldOperation, applog.OpRegister)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"access_token": token,
		"user":         user,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, token, err := s.authService.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, core.ErrInvalidEmail) || errors.Is(err, core.ErrEmptyPassword):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	case err != nil:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Login failed",
			applog.FieldError, err.Error(),
			applog.FieldOperation, applog.OpLogin)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"user":         user,
	})
}
