package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

const leadColumns = `id, full_name, phone, kind, tax_id, ip_address, user_agent,
	utm_source, utm_medium, utm_campaign, utm_content, utm_term, referrer,
	browser_id, session_id, webhook_delivered, conversion_reported, created_at, updated_at`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (full_name, phone, kind, tax_id, ip_address, user_agent,
			utm_source, utm_medium, utm_campaign, utm_content, utm_term, referrer,
			browser_id, session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, webhook_delivered, conversion_reported, created_at, updated_at
	`

	err := r.DB.QueryRowContext(ctx, query,
		lead.FullName,
		lead.Phone,
		string(lead.Kind),
		lead.TaxID,
		lead.IPAddress,
		lead.UserAgent,
		lead.UTMSource,
		lead.UTMMedium,
		lead.UTMCampaign,
		lead.UTMContent,
		lead.UTMTerm,
		lead.Referrer,
		lead.BrowserID,
		lead.SessionID,
	).Scan(
		&lead.ID,
		&lead.WebhookDelivered,
		&lead.ConversionReported,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao inserir lead: %w", err)
	}

	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)

	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar lead %d: %w", id, err)
	}

	return lead, nil
}

func (r *LeadRepository) List(ctx context.Context, limit, offset int) ([]entity.Lead, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("erro ao contar leads: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("erro ao listar leads: %w", err)
	}
	defer rows.Close()

	leads := make([]entity.Lead, 0, limit)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, *lead)
	}

	return leads, total, rows.Err()
}

// SetWebhookDelivered só toca a própria coluna, então não disputa com SetConversionReported.
func (r *LeadRepository) SetWebhookDelivered(ctx context.Context, id int64, delivered bool) error {
	return r.setFlag(ctx, `UPDATE leads SET webhook_delivered = $1, updated_at = NOW() WHERE id = $2 AND webhook_delivered <> $1`, id, delivered)
}

func (r *LeadRepository) SetConversionReported(ctx context.Context, id int64, reported bool) error {
	return r.setFlag(ctx, `UPDATE leads SET conversion_reported = $1, updated_at = NOW() WHERE id = $2 AND conversion_reported <> $1`, id, reported)
}

func (r *LeadRepository) setFlag(ctx context.Context, query string, id int64, value bool) error {
	if _, err := r.DB.ExecContext(ctx, query, value, id); err != nil {
		return fmt.Errorf("erro ao atualizar lead %d: %w", id, err)
	}
	return nil
}

func (r *LeadRepository) Stats(ctx context.Context, now time.Time) (*entity.LeadStats, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := &entity.LeadStats{ByKind: map[entity.LeadKind]int{}}
	err := r.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= $1),
			COUNT(*) FILTER (WHERE webhook_delivered),
			COUNT(*) FILTER (WHERE conversion_reported)
		FROM leads
	`, dayStart).Scan(&stats.TotalLeads, &stats.LeadsToday, &stats.WebhookDelivered, &stats.ConversionReported)
	if err != nil {
		return nil, fmt.Errorf("erro ao calcular estatísticas: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT kind, COUNT(*) FROM leads GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("erro ao agrupar leads: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		stats.ByKind[entity.LeadKind(kind)] = count
	}

	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead  entity.Lead
		kind  string
		taxID sql.NullString
	)

	err := row.Scan(
		&lead.ID,
		&lead.FullName,
		&lead.Phone,
		&kind,
		&taxID,
		&lead.IPAddress,
		&lead.UserAgent,
		&lead.UTMSource,
		&lead.UTMMedium,
		&lead.UTMCampaign,
		&lead.UTMContent,
		&lead.UTMTerm,
		&lead.Referrer,
		&lead.BrowserID,
		&lead.SessionID,
		&lead.WebhookDelivered,
		&lead.ConversionReported,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Kind = entity.LeadKind(kind)
	if taxID.Valid {
		lead.TaxID = &taxID.String
	}

	return &lead, nil
}
