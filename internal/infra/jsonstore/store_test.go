package jsonstore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "onbongo.json")
	s, err := Open(path)
	require.NoError(t, err)
	return s, path
}

func newLead(name string, kind entity.LeadKind) *entity.Lead {
	return &entity.Lead{FullName: name, Phone: "11987654321", Kind: kind}
}

func TestOpen_SeedsDefaultSettings(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	all, err := s.Settings().All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(entity.DefaultSettings()))

	v, ok, err := s.Settings().Get(ctx, entity.SettingAutoSendWebhook)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	_, ok, err = s.Settings().Get(ctx, "does_not_exist")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_KeepsExistingValuesAcrossReopen(t *testing.T) {
	s, path := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Settings().Set(ctx, entity.SettingWebhookEndpoint, "https://crm.example.com"))
	lead := newLead("Ana Souza", entity.LeadKindConsumer)
	require.NoError(t, s.Leads().Create(ctx, lead))

	reopened, err := Open(path)
	require.NoError(t, err)

	v, _, err := reopened.Settings().Get(ctx, entity.SettingWebhookEndpoint)
	require.NoError(t, err)
	assert.Equal(t, "https://crm.example.com", v)

	got, err := reopened.Leads().FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", got.FullName)

	next := newLead("Bruno Lima", entity.LeadKindConsumer)
	require.NoError(t, reopened.Leads().Create(ctx, next))
	assert.Equal(t, lead.ID+1, next.ID)
}

func TestLeadRepository_CreateAssignsIDsAndDefaults(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	lead := newLead("Ana Souza", entity.LeadKindConsumer)
	lead.WebhookDelivered = true
	require.NoError(t, s.Leads().Create(ctx, lead))

	assert.Equal(t, int64(1), lead.ID)
	assert.False(t, lead.WebhookDelivered)
	assert.False(t, lead.ConversionReported)
	assert.False(t, lead.CreatedAt.IsZero())
	assert.Equal(t, lead.CreatedAt, lead.UpdatedAt)

	_, err := s.Leads().FindByID(ctx, 99)
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}

func TestLeadRepository_ListNewestFirstWithPagination(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"Primeiro", "Segundo", "Terceiro"} {
		at := base.Add(time.Duration(i) * time.Minute)
		s.now = func() time.Time { return at }
		require.NoError(t, s.Leads().Create(ctx, newLead(name, entity.LeadKindConsumer)))
	}

	page, total, err := s.Leads().List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Terceiro", page[0].FullName)
	assert.Equal(t, "Segundo", page[1].FullName)

	page, _, err = s.Leads().List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Primeiro", page[0].FullName)

	page, _, err = s.Leads().List(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestLeadRepository_FlagsAreIndependent(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	lead := newLead("Ana Souza", entity.LeadKindConsumer)
	require.NoError(t, s.Leads().Create(ctx, lead))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); assert.NoError(t, s.Leads().SetWebhookDelivered(ctx, lead.ID, true)) }()
	go func() { defer wg.Done(); assert.NoError(t, s.Leads().SetConversionReported(ctx, lead.ID, true)) }()
	wg.Wait()

	got, err := s.Leads().FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.True(t, got.WebhookDelivered)
	assert.True(t, got.ConversionReported)
	assert.Equal(t, lead.FullName, got.FullName)
	assert.Equal(t, lead.CreatedAt, got.CreatedAt)

	assert.NoError(t, s.Leads().SetWebhookDelivered(ctx, 404, true))
}

func TestLeadRepository_Stats(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	yesterday := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	today := yesterday.Add(24 * time.Hour)

	s.now = func() time.Time { return yesterday }
	require.NoError(t, s.Leads().Create(ctx, newLead("Antigo", entity.LeadKindRetailer)))
	s.now = func() time.Time { return today }
	fresh := newLead("Novo", entity.LeadKindConsumer)
	require.NoError(t, s.Leads().Create(ctx, fresh))
	require.NoError(t, s.Leads().SetWebhookDelivered(ctx, fresh.ID, true))

	stats, err := s.Leads().Stats(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalLeads)
	assert.Equal(t, 1, stats.LeadsToday)
	assert.Equal(t, 1, stats.WebhookDelivered)
	assert.Equal(t, 0, stats.ConversionReported)
	assert.Equal(t, 1, stats.ByKind[entity.LeadKindRetailer])
	assert.Equal(t, 1, stats.ByKind[entity.LeadKindConsumer])
}

func TestDeliveryLogRepository_AppendAndFilter(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()
	logs := s.DeliveryLogs()

	require.NoError(t, logs.Append(ctx, &entity.DeliveryLog{LeadID: 1, Channel: entity.ChannelWebhook}))
	require.NoError(t, logs.Append(ctx, &entity.DeliveryLog{LeadID: 1, Channel: entity.ChannelMeta, Success: true}))
	require.NoError(t, logs.Append(ctx, &entity.DeliveryLog{LeadID: 2, Channel: entity.ChannelWebhook, Success: true}))

	all, total, err := logs.List(ctx, entity.DeliveryLogFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, int64(3), all[0].ID)

	webhook, total, err := logs.List(ctx, entity.DeliveryLogFilter{Channel: entity.ChannelWebhook, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, int64(2), webhook[0].LeadID)

	lead1, total, err := logs.List(ctx, entity.DeliveryLogFilter{LeadID: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, lead1, 1)
	assert.Equal(t, entity.ChannelMeta, lead1[0].Channel)
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		name                 string
		total, limit, offset int
		start, end           int
	}{
		{"first page", 5, 2, 0, 0, 2},
		{"last partial page", 5, 2, 4, 4, 5},
		{"past the end", 5, 2, 10, 5, 5},
		{"negative offset", 5, 2, -100, 0, 2},
		{"no limit", 5, 0, 1, 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := pageBounds(tt.total, tt.limit, tt.offset)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}
