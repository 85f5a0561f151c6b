package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/onbongo-leads/internal/entity"
	"github.com/xavierca1/onbongo-leads/internal/usecase"
)

// WebhookOperator é o canal de webhook visto pelo painel.
type WebhookOperator interface {
	Retry(ctx context.Context, leadID int64) (entity.DeliveryResult, error)
	Test(ctx context.Context) entity.DeliveryResult
}

type ConversionRetrier interface {
	Retry(ctx context.Context, leadID int64) (usecase.ConversionReport, error)
}

type AdminHandler struct {
	settingsUC  *usecase.SettingsUseCase
	dashboardUC *usecase.DashboardUseCase
	logs        entity.DeliveryLogRepositoryInterface
	webhook     WebhookOperator
	conversions ConversionRetrier
	log         logrus.FieldLogger
}

func NewAdminHandler(
	settingsUC *usecase.SettingsUseCase,
	dashboardUC *usecase.DashboardUseCase,
	logs entity.DeliveryLogRepositoryInterface,
	webhook WebhookOperator,
	conversions ConversionRetrier,
	log logrus.FieldLogger,
) *AdminHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AdminHandler{
		settingsUC:  settingsUC,
		dashboardUC: dashboardUC,
		logs:        logs,
		webhook:     webhook,
		conversions: conversions,
		log:         log,
	}
}

func (h *AdminHandler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsUC.List(r.Context())
	if err != nil {
		h.log.WithError(err).Error("❌ Erro ao listar configurações")
		writeUsecaseError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, settings, "")
}

func (h *AdminHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	var req usecase.SettingInput
	if details := decodeAndValidate(r, &req); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Code: usecase.CodeValidation, Error: "Dados inválidos", Details: details})
		return
	}

	if err := h.settingsUC.Update(r.Context(), []usecase.SettingInput{req}); err != nil {
		writeUsecaseError(w, err)
		return
	}

	h.log.WithField("key", req.Key).Info("⚙️ Configuração atualizada")
	writeSuccess(w, http.StatusOK, nil, "Configuração atualizada com sucesso")
}

type BulkSettingsRequest struct {
	Settings []usecase.SettingInput `json:"settings" validate:"required,min=1,dive"`
}

func (h *AdminHandler) BulkUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req BulkSettingsRequest
	if details := decodeAndValidate(r, &req); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Code: usecase.CodeValidation, Error: "Dados inválidos", Details: details})
		return
	}

	if err := h.settingsUC.Update(r.Context(), req.Settings); err != nil {
		writeUsecaseError(w, err)
		return
	}

	h.log.WithField("count", len(req.Settings)).Info("⚙️ Configurações atualizadas em lote")
	writeSuccess(w, http.StatusOK, nil, "Configurações atualizadas com sucesso")
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboardUC.Execute(r.Context())
	if err != nil {
		h.log.WithError(err).Error("❌ Erro ao montar dashboard")
		writeUsecaseError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, dashboard, "")
}

// Deliveries lista o histórico de entregas (webhook, meta, tiktok), mais novo primeiro.
func (h *AdminHandler) Deliveries(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	filter := entity.DeliveryLogFilter{
		Channel: r.URL.Query().Get("channel"),
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}

	switch filter.Channel {
	case "", entity.ChannelWebhook, entity.ChannelMeta, entity.ChannelTikTok:
	default:
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "channel deve ser webhook, meta ou tiktok")
		return
	}

	if raw := r.URL.Query().Get("lead_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeErrorResponse(w, http.StatusBadRequest, "INVALID_ID", "lead_id inválido")
			return
		}
		filter.LeadID = id
	}

	logs, total, err := h.logs.List(r.Context(), filter)
	if err != nil {
		h.log.WithError(err).Error("❌ Erro ao listar entregas")
		writeErrorResponse(w, http.StatusInternalServerError, usecase.CodeStorage, "Erro ao listar entregas")
		return
	}

	writePage(w, logs, newPagination(page, limit, total))
}

// RetryWebhook responde 200 mesmo quando o destino falha; o resultado vem em data.
func (h *AdminHandler) RetryWebhook(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "leadId"))
	if !ok {
		return
	}

	// o reenvio termina mesmo se o cliente desconectar, para o log e o flag ficarem consistentes
	result, err := h.webhook.Retry(context.WithoutCancel(r.Context()), id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		writeErrorResponse(w, http.StatusNotFound, usecase.CodeLeadNotFound, "Lead não encontrado")
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("lead_id", id).Error("❌ Erro ao reenviar webhook")
		writeErrorResponse(w, http.StatusInternalServerError, usecase.CodeStorage, "Erro ao reenviar webhook")
		return
	}

	message := "Webhook reenviado com sucesso"
	switch {
	case result.Skipped:
		message = "Webhook desativado ou sem endpoint configurado"
	case !result.Success:
		message = "Falha ao reenviar webhook"
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: result.Success, Data: result, Message: message, Error: result.Error})
}

func (h *AdminHandler) RetryConversions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "leadId"))
	if !ok {
		return
	}

	report, err := h.conversions.Retry(context.WithoutCancel(r.Context()), id)
	if err != nil {
		if usecase.IsTechnicalError(err) {
			h.log.WithError(err).WithField("lead_id", id).Error("❌ Erro ao reenviar conversões")
		}
		writeUsecaseError(w, err)
		return
	}

	message := "Conversões reenviadas com sucesso"
	if !report.Reported {
		message = "Nenhuma plataforma aceitou a conversão"
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: report.Reported, Data: report, Message: message})
}

func (h *AdminHandler) TestWebhook(w http.ResponseWriter, r *http.Request) {
	result := h.webhook.Test(r.Context())

	message := "Webhook respondeu ao teste"
	if !result.Success {
		message = "Falha no teste de webhook"
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: result.Success, Data: result, Message: message, Error: result.Error})
}
