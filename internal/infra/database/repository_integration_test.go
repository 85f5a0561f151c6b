package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

// Roda apenas com TEST_DATABASE_URL apontando para um Postgres descartável.
func openTestDB(t *testing.T) *LeadRepository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL não definido")
	}

	db, err := NewDBConnection(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))
	_, err = db.ExecContext(ctx, `TRUNCATE leads, delivery_logs RESTART IDENTITY`)
	require.NoError(t, err)

	return NewLeadRepository(db)
}

func TestLeadRepository_CreateAndFlags(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	cnpj := "12345678000190"
	lead := &entity.Lead{
		FullName: "Ana Souza",
		Phone:    "11987654321",
		Kind:     entity.LeadKindRetailer,
		TaxID:    &cnpj,
	}
	require.NoError(t, repo.Create(ctx, lead))
	assert.NotZero(t, lead.ID)
	assert.False(t, lead.WebhookDelivered)

	require.NoError(t, repo.SetWebhookDelivered(ctx, lead.ID, true))
	require.NoError(t, repo.SetConversionReported(ctx, lead.ID, true))

	got, err := repo.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.True(t, got.WebhookDelivered)
	assert.True(t, got.ConversionReported)
	assert.Equal(t, cnpj, got.TaxIDValue())

	_, err = repo.FindByID(ctx, lead.ID+1000)
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)

	stats, err := repo.Stats(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalLeads)
	assert.Equal(t, 1, stats.ByKind[entity.LeadKindRetailer])
}

func TestSettingAndDeliveryLogRepositories(t *testing.T) {
	leads := openTestDB(t)
	ctx := context.Background()

	settings := NewSettingRepository(leads.DB)
	v, ok, err := settings.Get(ctx, entity.SettingWebhookMethod)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "POST", v)

	require.NoError(t, settings.Set(ctx, entity.SettingWebhookEndpoint, "https://crm.example.com/hook"))
	v, _, err = settings.Get(ctx, entity.SettingWebhookEndpoint)
	require.NoError(t, err)
	assert.Equal(t, "https://crm.example.com/hook", v)

	logs := NewDeliveryLogRepository(leads.DB)
	status := 502
	require.NoError(t, logs.Append(ctx, &entity.DeliveryLog{LeadID: 7, Channel: entity.ChannelWebhook, ResponseStatus: &status}))
	require.NoError(t, logs.Append(ctx, &entity.DeliveryLog{LeadID: 7, Channel: entity.ChannelMeta, Success: true}))

	list, total, err := logs.List(ctx, entity.DeliveryLogFilter{LeadID: 7, Channel: entity.ChannelWebhook, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].ResponseStatus)
	assert.Equal(t, 502, *list[0].ResponseStatus)
}
