package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

type Dashboard struct {
	TotalLeads             int                     `json:"total_leads"`
	LeadsToday             int                     `json:"leads_today"`
	RetailerRate           float64                 `json:"retailer_rate"`
	WebhookSuccessRate     float64                 `json:"webhook_success_rate"`
	ConversionsSuccessRate float64                 `json:"conversions_success_rate"`
	LeadsByKind            map[entity.LeadKind]int `json:"leads_by_kind"`
}

type DashboardUseCase struct {
	Leads entity.LeadRepositoryInterface
	now   func() time.Time
}

func NewDashboardUseCase(leads entity.LeadRepositoryInterface) *DashboardUseCase {
	return &DashboardUseCase{Leads: leads, now: time.Now}
}

func (uc *DashboardUseCase) Execute(ctx context.Context) (*Dashboard, error) {
	stats, err := uc.Leads.Stats(ctx, uc.now())
	if err != nil {
		return nil, &TechnicalError{Code: CodeStorage, Message: "failed to load lead stats", Err: err}
	}
	return BuildDashboard(stats), nil
}

// BuildDashboard calcula as taxas em porcentagem com duas casas. Sem leads, tudo é zero.
func BuildDashboard(stats *entity.LeadStats) *Dashboard {
	byKind := map[entity.LeadKind]int{
		entity.LeadKindRetailer: 0,
		entity.LeadKindConsumer: 0,
	}
	for k, v := range stats.ByKind {
		byKind[k] = v
	}

	return &Dashboard{
		TotalLeads:             stats.TotalLeads,
		LeadsToday:             stats.LeadsToday,
		RetailerRate:           percent(byKind[entity.LeadKindRetailer], stats.TotalLeads),
		WebhookSuccessRate:     percent(stats.WebhookDelivered, stats.TotalLeads),
		ConversionsSuccessRate: percent(stats.ConversionReported, stats.TotalLeads),
		LeadsByKind:            byKind,
	}
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), 2).
		InexactFloat64()
}
