package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbook/internal/auth"
	"finbook/internal/cache"
	applog "finbook/internal/log"
	"finbook/internal/middleware/ratelimit"
	"finbook/internal/services"
	"finbook/internal/storage"
)

type apiFixture struct {
	t      *testing.T
	server *httptest.Server
}

func newAPIFixture(t *testing.T, requestsPerMinute int) *apiFixture {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	logger := applog.New(applog.DefaultConfig())
	summaryCache := cache.NewSummaryCache(cache.NewMemoryBackend(), time.Minute, logger)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: requestsPerMinute})
	t.Cleanup(limiter.Stop)

	authService := services.NewAuthService(repo, tokens, logger)
	expenseService := services.NewExpenseService(repo, summaryCache, nil, 100, logger)

	srv := NewServer(":0", authService, expenseService, tokens, limiter, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &apiFixture{t: t, server: ts}
}

func (f *apiFixture) do(method, path, token string, body any) (*http.Response, map[string]any) {
	f.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(f.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(f.t, err)
	if len(raw) > 0 {
		require.NoError(f.t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func (f *apiFixture) register(email, password string) string {
	f.t.Helper()
	resp, body := f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(f.t, http.StatusCreated, resp.StatusCode)
	token, _ := body["access_token"].(string)
	require.NotEmpty(f.t, token)
	return token
}

func summaryTotals(t *testing.T, body map[string]any) map[string]float64 {
	t.Helper()
	raw, ok := body["summary"].([]any)
	require.True(t, ok, "summary missing: %v", body)

	totals := make(map[string]float64, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		require.True(t, ok)
		totals[entry["category"].(string)] = entry["total"].(float64)
	}
	return totals
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t, 60)

	resp, body := f.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestRegisterAndLoginFlow(t *testing.T) {
	f := newAPIFixture(t, 60)

	resp, body := f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "a@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["access_token"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@example.com", user["email"])
	assert.NotContains(t, user, "password_hash", "password hash must never be serialized")

	resp, _ = f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "a@example.com",
		"password": "other-pass",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = f.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "a@example.com",
		"password": "hunter22",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["access_token"])

	resp, body = f.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "a@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid credentials", body["error"])
}

func TestRegister_Validation(t *testing.T) {
	f := newAPIFixture(t, 60)

	resp, _ := f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "a@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"password": "hunter22",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProtectedEndpointsRequireAuth(t *testing.T) {
	f := newAPIFixture(t, 60)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/expenses"},
		{http.MethodGet, "/api/expenses"},
		{http.MethodGet, "/api/expenses/summary"},
		{http.MethodDelete, "/api/expenses/1"},
		{http.MethodPost, "/api/imports/mock"},
	} {
		resp, body := f.do(tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
		assert.Equal(t, "missing or invalid token", body["error"])
	}

	resp, _ := f.do(http.MethodGet, "/api/expenses", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestExpiredTokenMessage(t *testing.T) {
	f := newAPIFixture(t, 60)

	expired := auth.NewTokenManager("test-secret", -time.Minute)
	token, err := expired.Issue(1)
	require.NoError(t, err)

	resp, body := f.do(http.MethodGet, "/api/expenses", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "token expired", body["error"])
}

func TestCreateAndListExpenses(t *testing.T) {
	f := newAPIFixture(t, 60)
	token := f.register("a@example.com", "hunter22")

	resp, body := f.do(http.MethodPost, "/api/expenses", token, map[string]any{
		"category":    "groceries",
		"description": "weekly shop",
		"amount":      "12.50",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	expense, ok := body["expense"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 12.5, expense["amount"])
	assert.Equal(t, "groceries", expense["category"])

	// Amounts are accepted as JSON numbers too.
	resp, _ = f.do(http.MethodPost, "/api/expenses", token, map[string]any{
		"category": "transport",
		"amount":   3.20,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = f.do(http.MethodGet, "/api/expenses", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	expenses, ok := body["expenses"].([]any)
	require.True(t, ok)
	assert.Len(t, expenses, 2)
}

func TestCreateExpense_Validation(t *testing.T) {
	f := newAPIFixture(t, 60)
	token := f.register("a@example.com", "hunter22")

	tests := []struct {
		name       string
		payload    any
		wantStatus int
	}{
		{"missing amount", map[string]any{"category": "groceries"}, http.StatusBadRequest},
		{"missing category", map[string]any{"amount": "1.00"}, http.StatusBadRequest},
		{"negative amount", map[string]any{"category": "groceries", "amount": "-1.00"}, http.StatusBadRequest},
		{"non-numeric amount", map[string]any{"category": "groceries", "amount": "abc"}, http.StatusBadRequest},
		{"not json", "not-an-object", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := f.do(http.MethodPost, "/api/expenses", token, tt.payload)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestDeleteExpense(t *testing.T) {
	f := newAPIFixture(t, 60)
	alice := f.register("alice@example.com", "hunter22")
	bob := f.register("bob@example.com", "hunter22")

	resp, body := f.do(http.MethodPost, "/api/expenses", alice, map[string]any{
		"category": "groceries",
		"amount":   "12.50",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := int64(body["expense"].(map[string]any)["id"].(float64))

	// Another user's token gets the same 404 as a missing expense.
	resp, body = f.do(http.MethodDelete, fmt.Sprintf("/api/expenses/%d", id), bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "expense not found", body["error"])

	resp, _ = f.do(http.MethodDelete, "/api/expenses/abc", alice, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = f.do(http.MethodDelete, fmt.Sprintf("/api/expenses/%d", id), alice, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(id), body["deleted"])

	resp, _ = f.do(http.MethodDelete, fmt.Sprintf("/api/expenses/%d", id), alice, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSummary_CachedFlagAndFreshness(t *testing.T) {
	f := newAPIFixture(t, 60)
	token := f.register("a@example.com", "hunter22")

	// Empty summary still works and is cacheable.
	resp, body := f.do(http.MethodGet, "/api/expenses/summary", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["cached"])
	assert.Empty(t, summaryTotals(t, body))

	resp, body = f.do(http.MethodGet, "/api/expenses/summary", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["cached"])

	// Writes invalidate: the next read recomputes and sees the new rows.
	resp, _ = f.do(http.MethodPost, "/api/expenses", token, map[string]any{
		"category": "groceries",
		"amount":   "12.50",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = f.do(http.MethodGet, "/api/expenses/summary", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["cached"])
	assert.Equal(t, map[string]float64{"groceries": 12.5}, summaryTotals(t, body))

	resp, body = f.do(http.MethodPost, "/api/expenses", token, map[string]any{
		"category": "groceries",
		"amount":   "7.50",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	secondID := int64(body["expense"].(map[string]any)["id"].(float64))

	resp, body = f.do(http.MethodGet, "/api/expenses/summary", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]float64{"groceries": 20.0}, summaryTotals(t, body))

	resp, body = f.do(http.MethodDelete, fmt.Sprintf("/api/expenses/%d", secondID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = f.do(http.MethodGet, "/api/expenses/summary", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["cached"])
	assert.Equal(t, map[string]float64{"groceries": 12.5}, summaryTotals(t, body))
}

func TestSummary_IsolatedBetweenUsers(t *testing.T) {
	f := newAPIFixture(t, 60)
	alice := f.register("alice@example.com", "hunter22")
	bob := f.register("bob@example.com", "hunter22")

	resp, _ := f.do(http.MethodPost, "/api/expenses", alice, map[string]any{
		"category": "groceries",
		"amount":   "12.50",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := f.do(http.MethodGet, "/api/expenses/summary", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, summaryTotals(t, body))
}

func TestImportMock(t *testing.T) {
	f := newAPIFixture(t, 60)
	token := f.register("a@example.com", "hunter22")

	resp, body := f.do(http.MethodPost, "/api/imports/mock", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(5), body["imported"])
	ids, ok := body["expenses"].([]any)
	require.True(t, ok)
	assert.Len(t, ids, 5)

	resp, body = f.do(http.MethodGet, "/api/expenses", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["expenses"].([]any), 5)
}

func TestRateLimit_MutatingEndpoints(t *testing.T) {
	f := newAPIFixture(t, 3)
	token := f.register("a@example.com", "hunter22")

	payload := map[string]any{"category": "groceries", "amount": "1.00"}
	for i := 0; i < 3; i++ {
		resp, _ := f.do(http.MethodPost, "/api/expenses", token, payload)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "request %d within the limit", i+1)
	}

	resp, body := f.do(http.MethodPost, "/api/expenses", token, payload)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "rate limit exceeded", body["error"])
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))

	// Reads are not rate limited.
	resp, _ = f.do(http.MethodGet, "/api/expenses", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.do(http.MethodGet, "/api/expenses/summary", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimit_PerUser(t *testing.T) {
	f := newAPIFixture(t, 2)
	alice := f.register("alice@example.com", "hunter22")
	bob := f.register("bob@example.com", "hunter22")

	payload := map[string]any{"category": "groceries", "amount": "1.00"}
	for i := 0; i < 2; i++ {
		resp, _ := f.do(http.MethodPost, "/api/expenses", alice, payload)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp, _ := f.do(http.MethodPost, "/api/expenses", alice, payload)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// A different user has an independent window.
	resp, _ = f.do(http.MethodPost, "/api/expenses", bob, payload)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	f := newAPIFixture(t, 60)

	resp, _ := f.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
