package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

// StatusTracker é o único ponto que altera um lead depois de criado.
// Cada canal escreve só a própria flag, então não há lock aqui.
type StatusTracker struct {
	Repo entity.LeadRepositoryInterface
}

func NewStatusTracker(repo entity.LeadRepositoryInterface) *StatusTracker {
	return &StatusTracker{Repo: repo}
}

func (t *StatusTracker) MarkWebhookDelivered(ctx context.Context, leadID int64) error {
	lead, err := t.find(ctx, leadID)
	if err != nil || lead == nil || lead.WebhookDelivered {
		return err
	}
	if err := t.Repo.SetWebhookDelivered(ctx, leadID, true); err != nil {
		return fmt.Errorf("erro ao marcar webhook do lead %d: %w", leadID, err)
	}
	return nil
}

func (t *StatusTracker) MarkConversionReported(ctx context.Context, leadID int64) error {
	lead, err := t.find(ctx, leadID)
	if err != nil || lead == nil || lead.ConversionReported {
		return err
	}
	if err := t.Repo.SetConversionReported(ctx, leadID, true); err != nil {
		return fmt.Errorf("erro ao marcar conversão do lead %d: %w", leadID, err)
	}
	return nil
}

// find devolve (nil, nil) quando o lead não existe mais.
func (t *StatusTracker) find(ctx context.Context, leadID int64) (*entity.Lead, error) {
	lead, err := t.Repo.FindByID(ctx, leadID)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar lead %d: %w", leadID, err)
	}
	return lead, nil
}
