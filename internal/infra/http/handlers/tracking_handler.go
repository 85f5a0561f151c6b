package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/onbongo-leads/internal/entity"
	"github.com/xavierca1/onbongo-leads/internal/usecase"
)

// Só ids públicos; tokens das plataformas nunca saem daqui.
var publicTrackingKeys = []string{
	entity.SettingGA4MeasurementID,
	entity.SettingMetaPixelID,
	entity.SettingTikTokPixelID,
}

type TrackingHandler struct {
	settings entity.SettingRepositoryInterface
	log      logrus.FieldLogger
}

func NewTrackingHandler(settings entity.SettingRepositoryInterface, log logrus.FieldLogger) *TrackingHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TrackingHandler{settings: settings, log: log}
}

func (h *TrackingHandler) Config(w http.ResponseWriter, r *http.Request) {
	cfg := make(map[string]string, len(publicTrackingKeys))
	for _, key := range publicTrackingKeys {
		v, err := entity.SettingString(r.Context(), h.settings, key, "")
		if err != nil {
			h.log.WithError(err).Error("❌ Erro ao buscar configurações de tracking")
			writeErrorResponse(w, http.StatusInternalServerError, usecase.CodeStorage, "Erro interno do servidor")
			return
		}
		if v != "" {
			cfg[key] = v
		}
	}
	writeSuccess(w, http.StatusOK, cfg, "")
}

type TrackingEventRequest struct {
	EventName string         `json:"event_name" validate:"required,max=100"`
	EventData map[string]any `json:"event_data,omitempty"`
	LeadID    int64          `json:"lead_id,omitempty" validate:"omitempty,gt=0"`
	BrowserID string         `json:"browser_id,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
}

// Event registra eventos do client-side apenas no log estruturado.
func (h *TrackingHandler) Event(w http.ResponseWriter, r *http.Request) {
	var req TrackingEventRequest
	if details := decodeAndValidate(r, &req); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Code: usecase.CodeValidation, Error: "Nome do evento é obrigatório", Details: details})
		return
	}

	h.log.WithFields(logrus.Fields{
		"event_name": req.EventName,
		"event_data": req.EventData,
		"lead_id":    req.LeadID,
		"browser_id": req.BrowserID,
		"session_id": req.SessionID,
		"ip":         getClientIP(r),
		"user_agent": r.UserAgent(),
	}).Info("📊 Tracking event")

	writeSuccess(w, http.StatusOK, nil, "Evento registrado com sucesso")
}
