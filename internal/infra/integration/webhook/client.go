package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/onbongo-leads/internal/entity"
	"github.com/xavierca1/onbongo-leads/internal/infra/metrics"
)

const (
	DefaultTimeout  = 30 * time.Second
	maxResponseBody = 64 << 10
)

// DeliveredMarker é implementado pelo usecase.StatusTracker.
type DeliveredMarker interface {
	MarkWebhookDelivered(ctx context.Context, leadID int64) error
}

type Client struct {
	Settings   entity.SettingRepositoryInterface
	Leads      entity.LeadRepositoryInterface
	Logs       entity.DeliveryLogRepositoryInterface
	Tracker    DeliveredMarker
	HTTPClient *http.Client
	Log        logrus.FieldLogger

	now func() time.Time
}

func NewClient(
	settings entity.SettingRepositoryInterface,
	leads entity.LeadRepositoryInterface,
	logs entity.DeliveryLogRepositoryInterface,
	tracker DeliveredMarker,
	log logrus.FieldLogger,
) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		Settings:   settings,
		Leads:      leads,
		Logs:       logs,
		Tracker:    tracker,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		Log:        log.WithField("channel", entity.ChannelWebhook),
		now:        time.Now,
	}
}

type config struct {
	endpoint string
	method   string
	headers  map[string]string
	enabled  bool
}

// Deliver faz uma única tentativa. Qualquer status abaixo de 500 conta como entregue.
func (c *Client) Deliver(ctx context.Context, lead *entity.Lead) entity.DeliveryResult {
	result := entity.DeliveryResult{Channel: entity.ChannelWebhook}
	log := c.Log.WithField("lead_id", lead.ID)

	cfg, err := c.loadConfig(ctx)
	if err != nil {
		log.WithError(err).Error("❌ Erro ao ler configuração do webhook")
		result.Error = fmt.Sprintf("erro ao ler configuração do webhook: %v", err)
		c.appendLog(ctx, log, &entity.DeliveryLog{
			LeadID:       lead.ID,
			Channel:      entity.ChannelWebhook,
			Endpoint:     cfg.endpoint,
			Method:       cfg.method,
			ErrorMessage: result.Error,
		})
		metrics.RecordDelivery(entity.ChannelWebhook, false, false)
		return result
	}

	if !cfg.enabled || cfg.endpoint == "" {
		log.Info("⚠️ Webhook desativado ou sem endpoint, pulando envio")
		result.Success = true
		result.Skipped = true
		metrics.RecordDelivery(entity.ChannelWebhook, true, true)
		return result
	}

	body, err := json.Marshal(newPayload(lead, c.now().UTC()))
	if err != nil {
		result.Error = fmt.Sprintf("erro ao serializar payload: %v", err)
		return result
	}

	log.WithField("endpoint", cfg.endpoint).Info("📤 Enviando webhook")
	status, respBody, sendErr := c.send(ctx, cfg, body)

	entry := &entity.DeliveryLog{
		LeadID:       lead.ID,
		Channel:      entity.ChannelWebhook,
		Endpoint:     cfg.endpoint,
		Method:       cfg.method,
		Payload:      string(body),
		ResponseBody: respBody,
	}
	if status > 0 {
		entry.ResponseStatus = &status
		result.StatusCode = status
	}

	switch {
	case sendErr != nil:
		entry.ErrorMessage = sendErr.Error()
	case status >= http.StatusInternalServerError:
		entry.ErrorMessage = fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
	default:
		entry.Success = true
	}
	result.Success = entry.Success
	result.Error = entry.ErrorMessage

	c.appendLog(ctx, log, entry)

	if result.Success {
		if err := c.Tracker.MarkWebhookDelivered(ctx, lead.ID); err != nil {
			log.WithError(err).Error("❌ Falha ao marcar webhook_delivered")
		}
		log.WithField("status", status).Info("✅ Webhook entregue")
	} else {
		log.WithFields(logrus.Fields{"status": status, "error": result.Error}).Error("❌ Erro ao enviar webhook")
	}

	metrics.RecordDelivery(entity.ChannelWebhook, result.Success, false)
	return result
}

// Retry recarrega o lead e executa Deliver de novo. Lead desconhecido devolve entity.ErrLeadNotFound.
func (c *Client) Retry(ctx context.Context, leadID int64) (entity.DeliveryResult, error) {
	lead, err := c.Leads.FindByID(ctx, leadID)
	if err != nil {
		return entity.DeliveryResult{}, err
	}
	return c.Deliver(ctx, lead), nil
}

// Test envia um payload sintético mesmo com auto_send_webhook desligado. Nada é registrado.
func (c *Client) Test(ctx context.Context) entity.DeliveryResult {
	result := entity.DeliveryResult{Channel: entity.ChannelWebhook}

	cfg, err := c.loadConfig(ctx)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if cfg.endpoint == "" {
		result.Error = "webhook endpoint not configured"
		return result
	}

	body, err := json.Marshal(newTestPayload(c.now().UTC()))
	if err != nil {
		result.Error = err.Error()
		return result
	}

	status, _, sendErr := c.send(ctx, cfg, body)
	result.StatusCode = status
	switch {
	case sendErr != nil:
		result.Error = sendErr.Error()
	case status >= http.StatusInternalServerError:
		result.Error = fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
	default:
		result.Success = true
	}

	c.Log.WithFields(logrus.Fields{"status": status, "success": result.Success}).Info("🧪 Teste de webhook executado")
	return result
}

func (c *Client) appendLog(ctx context.Context, log logrus.FieldLogger, entry *entity.DeliveryLog) {
	if err := c.Logs.Append(ctx, entry); err != nil {
		log.WithError(err).Error("❌ Falha ao registrar log do webhook")
	}
}

func (c *Client) send(ctx context.Context, cfg config, body []byte) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, cfg.method, cfg.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("erro ao montar requisição: %w", err)
	}
	c.setHeaders(req, cfg.headers)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	return resp.StatusCode, string(respBody), nil
}

func (c *Client) setHeaders(req *http.Request, headers map[string]string) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}

// loadConfig lê as settings a cada disparo, sem cache.
func (c *Client) loadConfig(ctx context.Context) (config, error) {
	cfg := config{headers: map[string]string{"Content-Type": "application/json"}}

	var err error
	if cfg.endpoint, err = entity.SettingString(ctx, c.Settings, entity.SettingWebhookEndpoint, ""); err != nil {
		return cfg, err
	}
	method, err := entity.SettingString(ctx, c.Settings, entity.SettingWebhookMethod, http.MethodPost)
	if err != nil {
		return cfg, err
	}
	cfg.method = strings.ToUpper(method)

	if cfg.enabled, err = entity.SettingBool(ctx, c.Settings, entity.SettingAutoSendWebhook); err != nil {
		return cfg, err
	}

	rawHeaders, err := entity.SettingString(ctx, c.Settings, entity.SettingWebhookHeaders, "{}")
	if err != nil {
		return cfg, err
	}
	var custom map[string]any
	if err := json.Unmarshal([]byte(rawHeaders), &custom); err != nil {
		c.Log.WithError(err).Warn("⚠️ webhook_headers inválido, usando headers padrão")
	}
	for k, v := range custom {
		cfg.headers[k] = fmt.Sprint(v)
	}

	token, err := entity.SettingString(ctx, c.Settings, entity.SettingWebhookAuthToken, "")
	if err != nil {
		return cfg, err
	}
	if token != "" {
		if !strings.HasPrefix(token, "Bearer ") {
			token = "Bearer " + token
		}
		cfg.headers["Authorization"] = token
	}

	return cfg, nil
}
