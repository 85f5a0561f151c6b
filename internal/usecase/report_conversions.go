package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

// ReportConversionsUseCase dispara todas as plataformas em paralelo e marca o lead
// como reportado se pelo menos uma delas aceitou o evento.
type ReportConversionsUseCase struct {
	Reporters []ConversionReporter
	Leads     entity.LeadRepositoryInterface
	Tracker   ConversionMarker
	Log       logrus.FieldLogger
}

func NewReportConversionsUseCase(
	leads entity.LeadRepositoryInterface,
	tracker ConversionMarker,
	log logrus.FieldLogger,
	reporters ...ConversionReporter,
) *ReportConversionsUseCase {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ReportConversionsUseCase{
		Reporters: reporters,
		Leads:     leads,
		Tracker:   tracker,
		Log:       log,
	}
}

func (uc *ReportConversionsUseCase) Execute(ctx context.Context, lead *entity.Lead) ConversionReport {
	results := make([]PlatformResult, len(uc.Reporters))

	var wg sync.WaitGroup
	for i, reporter := range uc.Reporters {
		wg.Add(1)
		go func(i int, reporter ConversionReporter) {
			defer wg.Done()
			results[i] = uc.reportOne(ctx, reporter, lead)
		}(i, reporter)
	}
	wg.Wait()

	report := ConversionReport{LeadID: lead.ID, Results: results}
	for _, r := range results {
		if r.Success {
			report.Reported = true
			break
		}
	}

	log := uc.Log.WithField("lead_id", lead.ID)
	if report.Reported {
		if err := uc.Tracker.MarkConversionReported(ctx, lead.ID); err != nil {
			// o lead continua com a flag antiga; um retry manual resolve
			log.WithError(err).Error("❌ Falha ao atualizar conversion_reported")
		}
	}

	fields := logrus.Fields{}
	for _, r := range results {
		fields[r.Platform] = r.Success
	}
	log.WithFields(fields).Info("📊 Conversões processadas")

	return report
}

// Retry reenvia para todas as plataformas, inclusive as que já tiveram sucesso.
func (uc *ReportConversionsUseCase) Retry(ctx context.Context, leadID int64) (ConversionReport, error) {
	lead, err := uc.Leads.FindByID(ctx, leadID)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return ConversionReport{}, &DomainError{Code: CodeLeadNotFound, Message: "lead não encontrado"}
	}
	if err != nil {
		return ConversionReport{}, &TechnicalError{Code: CodeStorage, Message: "failed to load lead", Err: err}
	}
	return uc.Execute(ctx, lead), nil
}

func (uc *ReportConversionsUseCase) reportOne(ctx context.Context, reporter ConversionReporter, lead *entity.Lead) (result PlatformResult) {
	result.Platform = reporter.Platform()
	defer func() {
		if r := recover(); r != nil {
			uc.Log.WithFields(logrus.Fields{"lead_id": lead.ID, "platform": result.Platform}).
				Errorf("💥 Panic no envio de conversão: %v", r)
			result.Success = false
			result.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	res := reporter.Report(ctx, lead)
	result.Success = res.Success
	result.EventID = res.EventID
	result.Error = res.Error
	return result
}
