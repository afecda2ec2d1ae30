// Package http wires the expense API: routing, middleware chain, and
// thin JSON handlers over the service layer.
package http

import (
	"context"
	"net/http"
	"time"

	"finbook/internal/auth"
	applog "finbook/internal/log"
	"finbook/internal/middleware/ratelimit"
	"finbook/internal/middleware/security"
	"finbook/internal/middleware/trace"
	"finbook/internal/services"
)

// Server is the HTTP front of the expense API.
type Server struct {
	httpServer *http.Server
	handler    http.Handler

	authService    *services.AuthService
	expenseService *services.ExpenseService
	tokens         *auth.TokenManager
	limiter        *ratelimit.Limiter
	logger         *applog.Logger
}

func NewServer(addr string, authService *services.AuthService, expenseService *services.ExpenseService, tokens *auth.TokenManager, limiter *ratelimit.Limiter, logger *applog.Logger) *Server {
	s := &Server{
		authService:    authService,
		expenseService: expenseService,
		tokens:         tokens,
		limiter:        limiter,
		logger:         logger.WithComponent(applog.ComponentHTTP),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	// Outermost first: tracing, security headers, CORS, context logger.
	var handler http.Handler = mux
	handler = applog.Middleware(s.logger)(handler)
	handler = security.CORSMiddleware(security.DefaultCORSConfig())(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(clientIP).Middleware(handler)
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16, // 64KB
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	authed := auth.Middleware(s.tokens, s.rejectUnauthorized)
	limited := s.limiter.Middleware(rateKey, s.rejectRateLimited)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.Handle("POST /api/expenses", authed(limited(http.HandlerFunc(s.handleCreateExpense))))
	mux.Handle("GET /api/expenses", authed(http.HandlerFunc(s.handleListExpenses)))
	mux.Handle("GET /api/expenses/summary", authed(http.HandlerFunc(s.handleSummary)))
	mux.Handle("DELETE /api/expenses/{id}", authed(limited(http.HandlerFunc(s.handleDeleteExpense))))
	mux.Handle("POST /api/imports/mock", authed(limited(http.HandlerFunc(s.handleImportMock))))
}

// Handler exposes the full middleware-wrapped handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) rejectUnauthorized(w http.ResponseWriter, r *http.Request, err error) {
	msg := "missing or invalid token"
	if err == auth.ErrExpiredToken {
		msg = "token expired"
	}
	writeError(w, http.StatusUnauthorized, msg)
}

func (s *Server) rejectRateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
}
