package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/onbongo-leads/internal/entity"
	"github.com/xavierca1/onbongo-leads/internal/infra/jsonstore"
	"github.com/xavierca1/onbongo-leads/internal/usecase"
)

type fakeWebhook struct {
	retry    entity.DeliveryResult
	retryErr error
	test     entity.DeliveryResult
	ctx      context.Context
}

func (f *fakeWebhook) Retry(ctx context.Context, _ int64) (entity.DeliveryResult, error) {
	f.ctx = ctx
	return f.retry, f.retryErr
}

func (f *fakeWebhook) Test(_ context.Context) entity.DeliveryResult {
	return f.test
}

type fakeConversions struct {
	report usecase.ConversionReport
	err    error
	ctx    context.Context
}

func (f *fakeConversions) Retry(ctx context.Context, _ int64) (usecase.ConversionReport, error) {
	f.ctx = ctx
	return f.report, f.err
}

func newAdminRouter(t *testing.T, webhook WebhookOperator, conversions ConversionRetrier) (http.Handler, *jsonstore.Store) {
	t.Helper()
	store := openStore(t)
	h := NewAdminHandler(
		usecase.NewSettingsUseCase(store.Settings()),
		usecase.NewDashboardUseCase(store.Leads()),
		store.DeliveryLogs(),
		webhook,
		conversions,
		quietLogger(),
	)

	r := chi.NewRouter()
	r.Get("/admin/settings", h.ListSettings)
	r.Post("/admin/settings", h.UpdateSetting)
	r.Post("/admin/settings/bulk", h.BulkUpdateSettings)
	r.Get("/admin/dashboard", h.Dashboard)
	r.Get("/admin/deliveries", h.Deliveries)
	r.Post("/admin/webhook/retry/{leadId}", h.RetryWebhook)
	r.Post("/admin/conversions/retry/{leadId}", h.RetryConversions)
	r.Post("/admin/webhook/test", h.TestWebhook)
	return r, store
}

func settingValue(t *testing.T, store *jsonstore.Store, key string) string {
	t.Helper()
	v, _, err := store.Settings().Get(context.Background(), key)
	require.NoError(t, err)
	return v
}

func TestListSettings_ReturnsDefaults(t *testing.T) {
	router, _ := newAdminRouter(t, &fakeWebhook{}, &fakeConversions{})

	rr, resp := doRequest(t, router, http.MethodGet, "/admin/settings", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var settings []entity.Setting
	require.NoError(t, json.Unmarshal(resp.Data, &settings))
	assert.Len(t, settings, len(entity.DefaultSettings()))
}

func TestUpdateSetting(t *testing.T) {
	router, store := newAdminRouter(t, &fakeWebhook{}, &fakeConversions{})

	rr, _ := doRequest(t, router, http.MethodPost, "/admin/settings", map[string]string{
		"key": entity.SettingWebhookEndpoint, "value": "https://crm.example.com/leads",
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://crm.example.com/leads", settingValue(t, store, entity.SettingWebhookEndpoint))

	rr, resp := doRequest(t, router, http.MethodPost, "/admin/settings", map[string]string{"value": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "key", resp.Details[0].Field)
}

func TestBulkUpdateSettings_AllOrNothing(t *testing.T) {
	router, store := newAdminRouter(t, &fakeWebhook{}, &fakeConversions{})

	rr, resp := doRequest(t, router, http.MethodPost, "/admin/settings/bulk", map[string]any{
		"settings": []map[string]string{
			{"key": entity.SettingMetaPixelID, "value": "123"},
			{"key": entity.SettingWebhookMethod, "value": "DELETE"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, usecase.CodeValidation, resp.Code)
	assert.Empty(t, settingValue(t, store, entity.SettingMetaPixelID))

	rr, _ = doRequest(t, router, http.MethodPost, "/admin/settings/bulk", map[string]any{
		"settings": []map[string]string{
			{"key": entity.SettingMetaPixelID, "value": "123"},
			{"key": entity.SettingWebhookMethod, "value": "put"},
		},
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "123", settingValue(t, store, entity.SettingMetaPixelID))

	rr, _ = doRequest(t, router, http.MethodPost, "/admin/settings/bulk", map[string]any{"settings": []any{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDashboard(t *testing.T) {
	router, store := newAdminRouter(t, &fakeWebhook{}, &fakeConversions{})
	ctx := context.Background()

	cnpj := "12345678000190"
	require.NoError(t, store.Leads().Create(ctx, &entity.Lead{FullName: "Loja A", Phone: "11987654321", Kind: entity.LeadKindRetailer, TaxID: &cnpj}))
	require.NoError(t, store.Leads().Create(ctx, &entity.Lead{FullName: "Cliente B", Phone: "11987654322", Kind: entity.LeadKindConsumer}))
	require.NoError(t, store.Leads().SetWebhookDelivered(ctx, 1, true))

	rr, resp := doRequest(t, router, http.MethodGet, "/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var d usecase.Dashboard
	require.NoError(t, json.Unmarshal(resp.Data, &d))
	assert.Equal(t, 2, d.TotalLeads)
	assert.Equal(t, 50.0, d.RetailerRate)
	assert.Equal(t, 50.0, d.WebhookSuccessRate)
	assert.Equal(t, 0.0, d.ConversionsSuccessRate)
}

func TestDeliveries_Filters(t *testing.T) {
	router, store := newAdminRouter(t, &fakeWebhook{}, &fakeConversions{})
	ctx := context.Background()
	require.NoError(t, store.DeliveryLogs().Append(ctx, &entity.DeliveryLog{LeadID: 1, Channel: entity.ChannelWebhook, Success: true}))
	require.NoError(t, store.DeliveryLogs().Append(ctx, &entity.DeliveryLog{LeadID: 1, Channel: entity.ChannelMeta}))
	require.NoError(t, store.DeliveryLogs().Append(ctx, &entity.DeliveryLog{LeadID: 2, Channel: entity.ChannelMeta}))

	rr, resp := doRequest(t, router, http.MethodGet, "/admin/deliveries?channel=meta&lead_id=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var logs []entity.DeliveryLog
	require.NoError(t, json.Unmarshal(resp.Data, &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, entity.ChannelMeta, logs[0].Channel)
	assert.Equal(t, 1, resp.Pagination.Total)

	rr, _ = doRequest(t, router, http.MethodGet, "/admin/deliveries?channel=sms", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = doRequest(t, router, http.MethodGet, "/admin/deliveries?lead_id=-3", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRetryWebhook(t *testing.T) {
	t.Run("delivered", func(t *testing.T) {
		router, _ := newAdminRouter(t, &fakeWebhook{retry: entity.DeliveryResult{Channel: entity.ChannelWebhook, Success: true, StatusCode: 200}}, &fakeConversions{})
		rr, resp := doRequest(t, router, http.MethodPost, "/admin/webhook/retry/1", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, resp.Success)
	})

	t.Run("destination failed", func(t *testing.T) {
		router, _ := newAdminRouter(t, &fakeWebhook{retry: entity.DeliveryResult{Channel: entity.ChannelWebhook, StatusCode: 502, Error: "HTTP 502"}}, &fakeConversions{})
		rr, resp := doRequest(t, router, http.MethodPost, "/admin/webhook/retry/1", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.False(t, resp.Success)
		assert.Equal(t, "HTTP 502", resp.Error)
	})

	t.Run("unknown lead", func(t *testing.T) {
		router, _ := newAdminRouter(t, &fakeWebhook{retryErr: entity.ErrLeadNotFound}, &fakeConversions{})
		rr, resp := doRequest(t, router, http.MethodPost, "/admin/webhook/retry/99", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, usecase.CodeLeadNotFound, resp.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		router, _ := newAdminRouter(t, &fakeWebhook{}, &fakeConversions{})
		rr, _ := doRequest(t, router, http.MethodPost, "/admin/webhook/retry/0", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRetryConversions(t *testing.T) {
	t.Run("reported", func(t *testing.T) {
		report := usecase.ConversionReport{LeadID: 1, Reported: true, Results: []usecase.PlatformResult{{Platform: "meta", Success: true}}}
		router, _ := newAdminRouter(t, &fakeWebhook{}, &fakeConversions{report: report})
		rr, resp := doRequest(t, router, http.MethodPost, "/admin/conversions/retry/1", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, resp.Success)
	})

	t.Run("unknown lead", func(t *testing.T) {
		err := &usecase.DomainError{Code: usecase.CodeLeadNotFound, Message: "lead não encontrado"}
		router, _ := newAdminRouter(t, &fakeWebhook{}, &fakeConversions{err: err})
		rr, resp := doRequest(t, router, http.MethodPost, "/admin/conversions/retry/7", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, usecase.CodeLeadNotFound, resp.Code)
	})
}

func TestTestWebhook(t *testing.T) {
	router, _ := newAdminRouter(t, &fakeWebhook{test: entity.DeliveryResult{Channel: entity.ChannelWebhook, Error: "webhook endpoint not configured"}}, &fakeConversions{})

	rr, resp := doRequest(t, router, http.MethodPost, "/admin/webhook/test", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "webhook endpoint not configured", resp.Error)
}

func TestDeliveries_HugePageIsClamped(t *testing.T) {
	router, store := newAdminRouter(t, &fakeWebhook{}, &fakeConversions{})
	require.NoError(t, store.DeliveryLogs().Append(context.Background(), &entity.DeliveryLog{LeadID: 1, Channel: entity.ChannelWebhook}))

	rr, resp := doRequest(t, router, http.MethodGet, "/admin/deliveries?page=92233720368547760&limit=100", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, maxPage, resp.Pagination.Page)
	assert.Equal(t, 1, resp.Pagination.Total)
}

func TestRetry_SurvivesClientDisconnect(t *testing.T) {
	webhook := &fakeWebhook{retry: entity.DeliveryResult{Channel: entity.ChannelWebhook, Success: true}}
	conversions := &fakeConversions{report: usecase.ConversionReport{Reported: true}}
	router, _ := newAdminRouter(t, webhook, conversions)

	gone, cancel := context.WithCancel(context.Background())
	cancel()

	for _, target := range []string{"/admin/webhook/retry/1", "/admin/conversions/retry/1"} {
		req := httptest.NewRequest(http.MethodPost, target, nil).WithContext(gone)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, target)
	}

	require.NotNil(t, webhook.ctx)
	require.NotNil(t, conversions.ctx)
	assert.NoError(t, webhook.ctx.Err())
	assert.NoError(t, conversions.ctx.Err())
}
