package entity

import (
	"context"
	"strings"
)

// Chaves de configuração lidas pelos canais de entrega a cada disparo.
const (
	SettingGA4MeasurementID     = "ga4_measurement_id"
	SettingMetaPixelID          = "meta_pixel_id"
	SettingMetaAccessToken      = "meta_access_token"
	SettingMetaTestEventCode    = "meta_test_event_code"
	SettingTikTokPixelID        = "tiktok_pixel_id"
	SettingTikTokAccessToken    = "tiktok_access_token"
	SettingTikTokTestEventCode  = "tiktok_test_event_code"
	SettingWebhookEndpoint      = "webhook_endpoint"
	SettingWebhookMethod        = "webhook_method"
	SettingWebhookHeaders       = "webhook_headers"
	SettingWebhookAuthToken     = "webhook_auth_token"
	SettingSiteDomain           = "site_domain"
	SettingConversionValue      = "conversion_value"
	SettingAutoSendConversions  = "auto_send_conversions"
	SettingAutoSendWebhook      = "auto_send_webhook"
	SettingLeadNotificationMail = "lead_notification_email"
)

type Setting struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// DefaultSettings é o seed aplicado na primeira inicialização do store.
func DefaultSettings() []Setting {
	return []Setting{
		{Key: SettingGA4MeasurementID, Value: "", Description: "Google Analytics 4 Measurement ID (G-XXXXXXX)"},
		{Key: SettingMetaPixelID, Value: "", Description: "Meta Pixel ID"},
		{Key: SettingMetaAccessToken, Value: "", Description: "Meta Conversions API Access Token"},
		{Key: SettingMetaTestEventCode, Value: "", Description: "Meta Test Event Code para desenvolvimento"},
		{Key: SettingTikTokPixelID, Value: "", Description: "TikTok Pixel ID"},
		{Key: SettingTikTokAccessToken, Value: "", Description: "TikTok Events API Access Token"},
		{Key: SettingTikTokTestEventCode, Value: "", Description: "TikTok Test Event Code"},
		{Key: SettingWebhookEndpoint, Value: "", Description: "Endpoint para envio de leads"},
		{Key: SettingWebhookMethod, Value: "POST", Description: "Método HTTP para webhook"},
		{Key: SettingWebhookHeaders, Value: "{}", Description: "Headers personalizados em JSON"},
		{Key: SettingWebhookAuthToken, Value: "", Description: "Token de autenticação para webhook"},
		{Key: SettingSiteDomain, Value: "b2b.onbongo.com.br", Description: "Domínio do site para tracking"},
		{Key: SettingConversionValue, Value: "50.00", Description: "Valor padrão de conversão em BRL"},
		{Key: SettingAutoSendConversions, Value: "true", Description: "Enviar conversões automaticamente"},
		{Key: SettingAutoSendWebhook, Value: "true", Description: "Enviar webhook automaticamente"},
		{Key: SettingLeadNotificationMail, Value: "", Description: "E-mail do time comercial avisado a cada novo lead"},
	}
}

type SettingRepositoryInterface interface {
	// Get devolve ok=false quando a chave não existe.
	Get(ctx context.Context, key string) (string, bool, error)
	All(ctx context.Context) ([]Setting, error)
	Set(ctx context.Context, key, value string) error
}

// SettingString lê uma chave e aplica o fallback quando ela está vazia ou ausente.
func SettingString(ctx context.Context, repo SettingRepositoryInterface, key, fallback string) (string, error) {
	v, ok, err := repo.Get(ctx, key)
	if err != nil {
		return "", err
	}
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return fallback, nil
	}
	return v, nil
}

// SettingBool considera apenas "true" (case-insensitive) como ligado.
func SettingBool(ctx context.Context, repo SettingRepositoryInterface, key string) (bool, error) {
	v, err := SettingString(ctx, repo, key, "")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(v, "true"), nil
}
