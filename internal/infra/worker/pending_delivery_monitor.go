package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/onbongo-leads/internal/entity"
	"github.com/xavierca1/onbongo-leads/internal/infra/metrics"
)

// PendingDeliveryMonitor só observa: atualiza os gauges de leads sem webhook e sem
// conversão. Reenvio continua sendo manual pelo painel.
type PendingDeliveryMonitor struct {
	leads        entity.LeadRepositoryInterface
	log          logrus.FieldLogger
	tickInterval time.Duration
	now          func() time.Time

	lastWebhook    int
	lastConversion int
}

func NewPendingDeliveryMonitor(leads entity.LeadRepositoryInterface, log logrus.FieldLogger, interval time.Duration) *PendingDeliveryMonitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &PendingDeliveryMonitor{
		leads:        leads,
		log:          log,
		tickInterval: interval,
		now:          time.Now,
	}
}

func (w *PendingDeliveryMonitor) Start(ctx context.Context) {
	w.log.WithField("interval", w.tickInterval.String()).Info("🕒 Monitor de entregas pendentes iniciado")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("⚠️ Monitor de entregas pendentes encerrado")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

// refresh devolve os pendentes calculados; em erro mantém os gauges anteriores.
func (w *PendingDeliveryMonitor) refresh(ctx context.Context) (webhook, conversion int, err error) {
	stats, err := w.leads.Stats(ctx, w.now())
	if err != nil {
		w.log.WithError(err).Error("❌ Erro ao calcular entregas pendentes")
		return 0, 0, err
	}

	webhook = stats.TotalLeads - stats.WebhookDelivered
	conversion = stats.TotalLeads - stats.ConversionReported
	metrics.SetPendingDeliveries(webhook, conversion)

	if webhook != w.lastWebhook || conversion != w.lastConversion {
		w.log.WithFields(logrus.Fields{
			"pending_webhook":    webhook,
			"pending_conversion": conversion,
		}).Info("⏱️ Entregas pendentes atualizadas")
	}
	w.lastWebhook, w.lastConversion = webhook, conversion

	return webhook, conversion, nil
}
