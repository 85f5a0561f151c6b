package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/onbongo-leads/internal/entity"
	"github.com/xavierca1/onbongo-leads/internal/usecase"
)

func newLeadRouter(t *testing.T, perMinute int) (http.Handler, entity.LeadRepositoryInterface) {
	t.Helper()
	store := openStore(t)
	repo := store.Leads()
	submitUC := usecase.NewSubmitLeadUseCase(repo, nil, quietLogger())
	h := NewLeadHandler(submitUC, repo, perMinute, quietLogger())

	r := chi.NewRouter()
	r.Post("/leads", h.CaptureLead)
	r.Get("/leads", h.List)
	r.Get("/leads/{id}", h.Get)
	return r, repo
}

func TestCaptureLead_RetailerCreated(t *testing.T) {
	router, repo := newLeadRouter(t, 10)

	rr, resp := doRequest(t, router, http.MethodPost, "/leads", map[string]any{
		"full_name": "Maria Silva",
		"phone":     "(11) 98765-4321",
		"kind":      "retailer",
		"tax_id":    "12.345.678/0001-90",
		"tracking":  map[string]string{"utm_source": "google", "browser_id": "b-1"},
	})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.True(t, resp.Success)

	var lead entity.Lead
	require.NoError(t, json.Unmarshal(resp.Data, &lead))
	assert.Equal(t, int64(1), lead.ID)
	assert.Equal(t, "11987654321", lead.Phone)
	assert.Equal(t, "12345678000190", lead.TaxIDValue())
	assert.Equal(t, "google", lead.UTMSource)
	assert.Equal(t, "b-1", lead.BrowserID)
	assert.NotEmpty(t, lead.SessionID)
	assert.False(t, lead.WebhookDelivered)

	stored, err := repo.FindByID(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", stored.FullName)
}

func TestCaptureLead_ValidationErrors(t *testing.T) {
	router, repo := newLeadRouter(t, 10)

	rr, resp := doRequest(t, router, http.MethodPost, "/leads", map[string]any{
		"full_name": "Jo",
		"phone":     "123",
		"kind":      "retailer",
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, usecase.CodeValidation, resp.Code)

	fields := map[string]string{}
	for _, d := range resp.Details {
		fields[d.Field] = d.Reason
	}
	assert.Equal(t, usecase.ReasonTooShort, fields["full_name"])
	assert.Equal(t, usecase.ReasonInvalidLength, fields["phone"])
	assert.Equal(t, usecase.ReasonRequired, fields["tax_id"])

	_, total, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCaptureLead_InvalidJSON(t *testing.T) {
	router, _ := newLeadRouter(t, 10)

	rr, resp := doRequest(t, router, http.MethodPost, "/leads", "{nope")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_JSON", resp.Code)
}

func TestCaptureLead_RateLimited(t *testing.T) {
	router, _ := newLeadRouter(t, 2)
	body := map[string]any{"full_name": "Carlos Lima", "phone": "21987654321", "kind": "consumer"}

	for i := 0; i < 2; i++ {
		rr, _ := doRequest(t, router, http.MethodPost, "/leads", body)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr, resp := doRequest(t, router, http.MethodPost, "/leads", body)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "RATE_LIMITED", resp.Code)
}

func TestListLeads_Paginated(t *testing.T) {
	router, _ := newLeadRouter(t, 100)
	for i := 0; i < 3; i++ {
		rr, _ := doRequest(t, router, http.MethodPost, "/leads", map[string]any{
			"full_name": "Consumidor Teste", "phone": "31987654321", "kind": "consumer",
		})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr, resp := doRequest(t, router, http.MethodGet, "/leads?page=2&limit=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var leads []entity.Lead
	require.NoError(t, json.Unmarshal(resp.Data, &leads))
	require.Len(t, leads, 1)
	assert.Equal(t, int64(1), leads[0].ID)
	assert.Equal(t, Pagination{Page: 2, Limit: 2, Total: 3, TotalPages: 2}, *resp.Pagination)
}

func TestGetLead(t *testing.T) {
	router, _ := newLeadRouter(t, 10)
	rr, _ := doRequest(t, router, http.MethodPost, "/leads", map[string]any{
		"full_name": "Ana Souza", "phone": "11912345678", "kind": "consumer", "tax_id": "999",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"found", "/leads/1", http.StatusOK, ""},
		{"not found", "/leads/42", http.StatusNotFound, usecase.CodeLeadNotFound},
		{"invalid id", "/leads/abc", http.StatusBadRequest, "INVALID_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, resp := doRequest(t, router, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:1234", "198.51.100.4"},
		{"remote addr", nil, "192.0.2.10:5555", "192.0.2.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/leads", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("1.1.1.1"))
}

func TestListLeads_HugePageIsClamped(t *testing.T) {
	router, _ := newLeadRouter(t, 10)
	rr, _ := doRequest(t, router, http.MethodPost, "/leads", map[string]any{
		"full_name": "Consumidor Teste", "phone": "31987654321", "kind": "consumer",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr, resp := doRequest(t, router, http.MethodGet, "/leads?page=92233720368547760&limit=100", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var leads []entity.Lead
	require.NoError(t, json.Unmarshal(resp.Data, &leads))
	assert.Empty(t, leads)
	assert.Equal(t, maxPage, resp.Pagination.Page)
	assert.Equal(t, 1, resp.Pagination.Total)
}

func TestCaptureLead_OversizedBodyRejected(t *testing.T) {
	router, repo := newLeadRouter(t, 10)

	rr, resp := doRequest(t, router, http.MethodPost, "/leads", map[string]any{
		"full_name": strings.Repeat("a", 70<<10),
		"phone":     "(11) 98765-4321",
		"kind":      "retailer",
		"tax_id":    "12.345.678/0001-90",
	})

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", resp.Code)

	_, total, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}
