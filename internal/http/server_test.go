package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/cache"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/services"
	"finboard/internal/storage"
)

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

type apiClient struct {
	t      *testing.T
	srv    *Server
	token  string
	remote string
}

func newTestServer(t *testing.T, cfg Config) *apiClient {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	c, err := cache.NewRistretto[core.MonthSummary](100, time.Minute)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	now := func() time.Time { return testNow }
	svc := services.New(services.Deps{Storage: repo, Cache: c, Now: now})

	cfg.Now = now
	if cfg.Logger == nil {
		cfg.Logger = log.New(log.Config{Output: io.Discard})
	}
	if cfg.Ready == nil {
		cfg.Ready = repo.Ping
	}
	srv, err := NewServer(cfg, svc)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return &apiClient{t: t, srv: srv, remote: "198.51.100.1:4000"}
}

func (c *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.RemoteAddr = c.remote
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndReadiness(t *testing.T) {
	c := newTestServer(t, Config{})
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/readyz", nil).Code)

	down := newTestServer(t, Config{Ready: func(context.Context) error { return errors.New("db gone") }})
	assert.Equal(t, http.StatusServiceUnavailable, down.do(http.MethodGet, "/readyz", nil).Code)
}

func TestTransactionsAndBalance(t *testing.T) {
	c := newTestServer(t, Config{})

	rec := c.do(http.MethodPost, "/api/v1/transactions", map[string]any{
		"type": "income", "amount": "100.00", "category": "Salary", "date": "2026-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	income := decode[core.Transaction](t, rec)
	assert.Equal(t, LocalUser, income.UserID)

	rec = c.do(http.MethodPost, "/api/v1/transactions", map[string]any{
		"type": "expense", "amount": 40, "category": "Food",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	expense := decode[core.Transaction](t, rec)
	assert.Equal(t, "2026-03-15", expense.Date.String(), "date defaults to today")

	rec = c.do(http.MethodGet, "/api/v1/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bal := decode[core.Summary](t, rec)
	assert.Equal(t, int64(10000), bal.Income.Cents)
	assert.Equal(t, int64(4000), bal.Expense.Cents)
	assert.Equal(t, int64(6000), bal.Total.Cents)

	rec = c.do(http.MethodGet, "/api/v1/transactions?from=2026-03-01&to=2026-03-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]core.Transaction](t, rec), 2)

	rec = c.do(http.MethodGet, "/api/v1/summary/month?year=2026&month=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ms := decode[core.MonthSummary](t, rec)
	assert.Equal(t, int64(6000), ms.Total.Cents)

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/api/v1/transactions/"+expense.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/v1/transactions/"+expense.ID, nil).Code)
}

func TestErrorMapping(t *testing.T) {
	c := newTestServer(t, Config{})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"malformed json", http.MethodPost, "/api/v1/transactions", "{", http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/v1/transactions", `{"kind":"income"}`, http.StatusBadRequest},
		{"zero amount", http.MethodPost, "/api/v1/transactions", map[string]any{"type": "income", "amount": "0", "category": "x"}, http.StatusUnprocessableEntity},
		{"bad date filter", http.MethodGet, "/api/v1/transactions?from=03/01/2026", nil, http.StatusUnprocessableEntity},
		{"inverted range", http.MethodGet, "/api/v1/transactions?from=2026-03-10&to=2026-03-01", nil, http.StatusUnprocessableEntity},
		{"bad month", http.MethodGet, "/api/v1/summary/month?month=13", nil, http.StatusUnprocessableEntity},
		{"missing card", http.MethodGet, "/api/v1/cards/nope", nil, http.StatusNotFound},
		{"no goal yet", http.MethodGet, "/api/v1/goal", nil, http.StatusNotFound},
		{"unknown route", http.MethodGet, "/api/v1/nothing", nil, http.StatusNotFound},
		{"wrong method", http.MethodPatch, "/api/v1/balance", nil, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}

	rec := c.do(http.MethodPost, "/api/v1/transactions", map[string]any{"type": "income", "amount": "5", "category": ""})
	body := decode[errorBody](t, rec)
	assert.Equal(t, "category", body.Field)
}

func TestGoalFlow(t *testing.T) {
	c := newTestServer(t, Config{})
	c.do(http.MethodPost, "/api/v1/transactions", map[string]any{"type": "income", "amount": "100", "category": "Salary"})

	rec := c.do(http.MethodPut, "/api/v1/goal", map[string]any{"name": "Trip", "target": "500"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/api/v1/goal/deposit", map[string]any{"amount": "150"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "deposit above balance")

	rec = c.do(http.MethodPost, "/api/v1/goal/deposit", map[string]any{"amount": "80"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	mv := decode[goalMovement](t, rec)
	assert.Equal(t, int64(8000), mv.Goal.Saved.Cents)
	assert.Equal(t, core.VaultCategory, mv.Transaction.Category)

	rec = c.do(http.MethodPost, "/api/v1/goal/withdraw", map[string]any{"amount": "100"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "withdraw above savings")

	rec = c.do(http.MethodPost, "/api/v1/goal/withdraw", map[string]any{"amount": "30"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5000), decode[goalMovement](t, rec).Goal.Saved.Cents)
}

func TestCategories(t *testing.T) {
	c := newTestServer(t, Config{})

	rec := c.do(http.MethodGet, "/api/v1/categories?type=expense", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	defaults := decode[[]core.Category](t, rec)
	require.NotEmpty(t, defaults)

	rec = c.do(http.MethodPost, "/api/v1/categories", map[string]any{"name": "Pets", "type": "expense", "color": "#123456"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pets := decode[core.Category](t, rec)

	rec = c.do(http.MethodPost, "/api/v1/categories", map[string]any{"name": "Pets", "type": "expense"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodPut, "/api/v1/categories/"+defaults[0].ID, map[string]any{"name": "Groceries"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "default categories are read-only")

	ids := []string{pets.ID}
	for _, d := range defaults {
		ids = append(ids, d.ID)
	}
	rec = c.do(http.MethodPost, "/api/v1/categories/reorder", map[string]any{"type": "expense", "ids": ids})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reordered := decode[[]core.Category](t, rec)
	assert.Equal(t, pets.ID, reordered[0].ID)

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/api/v1/categories/"+pets.ID, nil).Code)
}

func TestCardsAndStatement(t *testing.T) {
	c := newTestServer(t, Config{})

	rec := c.do(http.MethodPost, "/api/v1/cards", map[string]any{
		"name": "Visa", "last_digits": "4242", "due_day": 10, "closing_day": 3, "limit": "1000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	card := decode[core.Card](t, rec)
	assert.True(t, card.IsActive)

	rec = c.do(http.MethodPost, "/api/v1/transactions", map[string]any{
		"type": "expense", "amount": "25.50", "category": "Food", "date": "2026-02-20",
		"payment_method": "credit_card", "card_id": card.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(http.MethodGet, "/api/v1/cards/"+card.ID+"/statement?year=2026&month=3", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	st := decode[services.Statement](t, rec)
	assert.Equal(t, int64(2550), st.Total.Cents)
	require.NotNil(t, st.Available)
	assert.Equal(t, int64(97450), st.Available.Cents)

	rec = c.do(http.MethodPut, "/api/v1/cards/"+card.ID, map[string]any{
		"name": "Visa Gold", "last_digits": "4242", "due_day": 10, "closing_day": 3, "is_active": false,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decode[core.Card](t, rec).IsActive)

	rec = c.do(http.MethodGet, "/api/v1/cards", nil)
	assert.Len(t, decode[[]core.Card](t, rec), 1)
	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/api/v1/cards/"+card.ID, nil).Code)
}

func TestRecurringFlow(t *testing.T) {
	c := newTestServer(t, Config{})

	rec := c.do(http.MethodPost, "/api/v1/recurring", map[string]any{
		"name": "Rent", "amount": "700", "category": "Housing", "due_day": 5,
		"payment_method": "transfer", "recurrence_type": "monthly", "priority": "high",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rent := decode[core.RecurringExpense](t, rec)

	rec = c.do(http.MethodGet, "/api/v1/recurring/due", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	due := decode[[]services.DueItem](t, rec)
	require.Len(t, due, 1)
	assert.Equal(t, "2026-03", due[0].Period)

	rec = c.do(http.MethodPost, "/api/v1/recurring/"+rent.ID+"/pay", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tx := decode[core.Transaction](t, rec)
	assert.Equal(t, rent.ID, tx.RecurringID)

	rec = c.do(http.MethodPost, "/api/v1/recurring/"+rent.ID+"/pay", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "second payment in the same period")

	rec = c.do(http.MethodPost, "/api/v1/recurring/"+rent.ID+"/resume", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "resume an active expense")

	rec = c.do(http.MethodPost, "/api/v1/recurring/"+rent.ID+"/pause", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.StatusPaused, decode[core.RecurringExpense](t, rec).Status)

	rec = c.do(http.MethodGet, "/api/v1/recurring?status=paused", nil)
	assert.Len(t, decode[[]core.RecurringExpense](t, rec), 1)
	rec = c.do(http.MethodGet, "/api/v1/recurring?status=weird", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/recurring/process", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[processResult](t, rec).Created)

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/api/v1/recurring/"+rent.ID, nil).Code)
}

func TestDayOff(t *testing.T) {
	c := newTestServer(t, Config{})

	rec := c.do(http.MethodPost, "/api/v1/dayoff/rules", map[string]any{
		"type": "regular", "interval_days": 21, "start_date": "2025-12-07", "description": "rotation",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/api/v1/dayoff/rules", map[string]any{"type": "regular", "interval_days": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/dayoff/check?date=2025-12-28", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	chk := decode[services.Check](t, rec)
	assert.True(t, chk.Rules.IsDayOff)

	rec = c.do(http.MethodGet, "/api/v1/dayoff/check?date=2025-12-20", nil)
	assert.False(t, decode[services.Check](t, rec).Rules.IsDayOff)

	rec = c.do(http.MethodGet, "/api/v1/dayoff/calendar?year=2026&month=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]json.RawMessage](t, rec), 28)

	rec = c.do(http.MethodGet, "/api/v1/dayoff/rules", nil)
	rules := decode[[]map[string]any](t, rec)
	require.Len(t, rules, 1)
	id, _ := rules[0]["id"].(string)
	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/api/v1/dayoff/rules/"+id, nil).Code)
}

func TestHydrateWithoutRemote(t *testing.T) {
	c := newTestServer(t, Config{})
	rec := c.do(http.MethodPost, "/api/v1/sync/hydrate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.HydrateResult{}, decode[services.HydrateResult](t, rec))
}

func TestRateLimit(t *testing.T) {
	c := newTestServer(t, Config{RequestsPerMinute: 2})
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/v1/balance", nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/v1/balance", nil).Code)
	rec := c.do(http.MethodGet, "/api/v1/balance", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// health checks are not limited
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz", nil).Code)
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	c := newTestServer(t, Config{})
	rec := c.do(http.MethodGet, "/api/v1/balance", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = c.do(http.MethodGet, "/api/v1/../.env", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
