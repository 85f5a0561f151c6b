package usecase

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

// LeadDispatcher roda o fan-out de um lead fora do request: webhook, conversões e
// o aviso por e-mail correm em paralelo e um não espera o outro.
type LeadDispatcher struct {
	Webhook     WebhookDeliverer
	Conversions *ReportConversionsUseCase
	Notifier    LeadNotifier
	Settings    entity.SettingRepositoryInterface
	Log         logrus.FieldLogger

	inflight sync.WaitGroup
}

func NewLeadDispatcher(
	webhook WebhookDeliverer,
	conversions *ReportConversionsUseCase,
	notifier LeadNotifier,
	settings entity.SettingRepositoryInterface,
	log logrus.FieldLogger,
) *LeadDispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LeadDispatcher{
		Webhook:     webhook,
		Conversions: conversions,
		Notifier:    notifier,
		Settings:    settings,
		Log:         log,
	}
}

// Dispatch não bloqueia. O handler nunca observa o resultado nem os panics daqui.
func (d *LeadDispatcher) Dispatch(lead *entity.Lead) {
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		d.Run(context.Background(), lead)
	}()
}

// Run executa o fan-out e só retorna quando todos os canais terminaram.
func (d *LeadDispatcher) Run(ctx context.Context, lead *entity.Lead) {
	var wg sync.WaitGroup

	if d.Webhook != nil {
		wg.Add(1)
		go d.guard(&wg, lead.ID, entity.ChannelWebhook, func() {
			d.Webhook.Deliver(ctx, lead)
		})
	}

	if d.Conversions != nil {
		wg.Add(1)
		go d.guard(&wg, lead.ID, "conversions", func() {
			if !d.autoSendConversions(ctx) {
				return
			}
			d.Conversions.Execute(ctx, lead)
		})
	}

	if d.Notifier != nil {
		wg.Add(1)
		go d.guard(&wg, lead.ID, "notification", func() {
			if err := d.Notifier.NotifyNewLead(ctx, lead); err != nil {
				d.Log.WithField("lead_id", lead.ID).WithError(err).Warn("⚠️ Falha ao avisar time comercial")
			}
		})
	}

	wg.Wait()
}

// Wait aguarda os fan-outs em andamento (shutdown e testes).
func (d *LeadDispatcher) Wait() {
	d.inflight.Wait()
}

func (d *LeadDispatcher) guard(wg *sync.WaitGroup, leadID int64, channel string, fn func()) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			d.Log.WithFields(logrus.Fields{"lead_id": leadID, "channel": channel}).
				Errorf("💥 Panic no fan-out: %v", r)
		}
	}()
	fn()
}

func (d *LeadDispatcher) autoSendConversions(ctx context.Context) bool {
	if d.Settings == nil {
		return true
	}
	enabled, err := entity.SettingBool(ctx, d.Settings, entity.SettingAutoSendConversions)
	if err != nil {
		d.Log.WithError(err).Error("❌ Erro ao ler auto_send_conversions")
		return false
	}
	return enabled
}
