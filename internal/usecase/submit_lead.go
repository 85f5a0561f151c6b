package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/onbongo-leads/internal/entity"
	"github.com/xavierca1/onbongo-leads/internal/infra/metrics"
)

type SubmitLeadUseCase struct {
	Repo       entity.LeadRepositoryInterface
	Dispatcher Dispatcher
	Log        logrus.FieldLogger
}

func NewSubmitLeadUseCase(repo entity.LeadRepositoryInterface, dispatcher Dispatcher, log logrus.FieldLogger) *SubmitLeadUseCase {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SubmitLeadUseCase{
		Repo:       repo,
		Dispatcher: dispatcher,
		Log:        log,
	}
}

func (uc *SubmitLeadUseCase) Execute(ctx context.Context, input SubmitLeadInput, reqCtx RequestContext) (*entity.Lead, error) {
	normalized, validationErrors := ValidateSubmitLeadInput(input)
	if len(validationErrors) > 0 {
		return nil, &DomainError{
			Code:    CodeValidation,
			Message: "dados inválidos",
			Details: validationErrors,
		}
	}

	tracking := TrackingInput{}
	if input.Tracking != nil {
		tracking = *input.Tracking
	}

	referrer := strings.TrimSpace(tracking.Referrer)
	if referrer == "" {
		referrer = reqCtx.Referrer
	}

	lead := &entity.Lead{
		FullName:    normalized.FullName,
		Phone:       normalized.Phone,
		Kind:        normalized.Kind,
		TaxID:       normalized.TaxID,
		IPAddress:   reqCtx.IPAddress,
		UserAgent:   reqCtx.UserAgent,
		UTMSource:   strings.TrimSpace(tracking.UTMSource),
		UTMMedium:   strings.TrimSpace(tracking.UTMMedium),
		UTMCampaign: strings.TrimSpace(tracking.UTMCampaign),
		UTMContent:  strings.TrimSpace(tracking.UTMContent),
		UTMTerm:     strings.TrimSpace(tracking.UTMTerm),
		Referrer:    referrer,
		BrowserID:   valueOrNewID(tracking.BrowserID),
		SessionID:   valueOrNewID(tracking.SessionID),
	}

	if err := uc.Repo.Create(ctx, lead); err != nil {
		uc.Log.WithError(err).Error("❌ Falha ao persistir lead")
		return nil, &TechnicalError{
			Code:    CodeStorage,
			Message: "failed to persist lead",
			Err:     err,
		}
	}

	metrics.RecordLeadCreated(string(lead.Kind))
	uc.Log.WithFields(logrus.Fields{"lead_id": lead.ID, "kind": lead.Kind}).Info("✅ Lead criado")

	// O lead já está salvo: nada no fan-out pode derrubar a submissão
	if uc.Dispatcher != nil {
		uc.dispatch(*lead)
	}

	return lead, nil
}

func (uc *SubmitLeadUseCase) dispatch(lead entity.Lead) {
	defer func() {
		if r := recover(); r != nil {
			uc.Log.WithField("lead_id", lead.ID).Errorf("⚠️ Falha ao agendar fan-out: %v", r)
		}
	}()
	uc.Dispatcher.Dispatch(&lead)
}

func valueOrNewID(v string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return uuid.NewString()
}
