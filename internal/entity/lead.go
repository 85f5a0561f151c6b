package entity

import (
	"context"
	"time"
)

// LeadKind é o tipo de cadastro escolhido no formulário
type LeadKind string

const (
	LeadKindRetailer LeadKind = "retailer" // lojista oficial, exige CNPJ
	LeadKindConsumer LeadKind = "consumer" // desconto de consumidor
)

func (k LeadKind) Valid() bool {
	return k == LeadKindRetailer || k == LeadKindConsumer
}

type Lead struct {
	ID       int64    `json:"id"`
	FullName string   `json:"full_name"`
	Phone    string   `json:"phone"` // somente dígitos (DDD + número)
	Kind     LeadKind `json:"kind"`
	TaxID    *string  `json:"tax_id"` // CNPJ, nil para consumidor

	// Atribuição, capturada na submissão e nunca alterada
	IPAddress   string `json:"ip_address,omitempty"`
	UserAgent   string `json:"user_agent,omitempty"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMContent  string `json:"utm_content,omitempty"`
	UTMTerm     string `json:"utm_term,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
	BrowserID   string `json:"browser_id,omitempty"`
	SessionID   string `json:"session_id,omitempty"`

	// Cada canal de entrega é dono de uma única flag
	WebhookDelivered   bool `json:"webhook_delivered"`
	ConversionReported bool `json:"conversion_reported"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaxIDValue devolve o CNPJ ou string vazia.
func (l *Lead) TaxIDValue() string {
	if l.TaxID == nil {
		return ""
	}
	return *l.TaxID
}

// LeadStats alimenta o dashboard administrativo e o monitor de pendências.
type LeadStats struct {
	TotalLeads         int              `json:"total_leads"`
	LeadsToday         int              `json:"leads_today"`
	ByKind             map[LeadKind]int `json:"leads_by_kind"`
	WebhookDelivered   int              `json:"webhook_delivered"`
	ConversionReported int              `json:"conversion_reported"`
}

type LeadRepositoryInterface interface {
	// Create atribui ID, created_at/updated_at e zera as flags de entrega.
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id int64) (*Lead, error)
	// List ordena do mais novo para o mais antigo.
	List(ctx context.Context, limit, offset int) ([]Lead, int, error)
	SetWebhookDelivered(ctx context.Context, id int64, delivered bool) error
	SetConversionReported(ctx context.Context, id int64, reported bool) error
	Stats(ctx context.Context, now time.Time) (*LeadStats, error)
}
