package usecase

import (
	"context"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

// WebhookDeliverer é o canal de webhook (infra/integration/webhook).
type WebhookDeliverer interface {
	Deliver(ctx context.Context, lead *entity.Lead) entity.DeliveryResult
}

// ConversionReporter é uma plataforma de anúncios (Meta, TikTok...).
type ConversionReporter interface {
	Platform() string
	Report(ctx context.Context, lead *entity.Lead) entity.DeliveryResult
}

// LeadNotifier avisa o time comercial. Melhor esforço, não mexe em flags.
type LeadNotifier interface {
	NotifyNewLead(ctx context.Context, lead *entity.Lead) error
}

// Dispatcher agenda o fan-out de um lead recém-criado sem bloquear o chamador.
type Dispatcher interface {
	Dispatch(lead *entity.Lead)
}

// ConversionMarker e WebhookMarker são as duas únicas mutações de um lead após a criação.
type ConversionMarker interface {
	MarkConversionReported(ctx context.Context, leadID int64) error
}

type WebhookMarker interface {
	MarkWebhookDelivered(ctx context.Context, leadID int64) error
}
