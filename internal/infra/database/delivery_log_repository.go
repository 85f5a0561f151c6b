package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

type DeliveryLogRepository struct {
	DB *sql.DB
}

func NewDeliveryLogRepository(db *sql.DB) *DeliveryLogRepository {
	return &DeliveryLogRepository{DB: db}
}

func (r *DeliveryLogRepository) Append(ctx context.Context, l *entity.DeliveryLog) error {
	query := `
		INSERT INTO delivery_logs (lead_id, channel, endpoint, method, event_id, payload,
			response_status, response_body, error_message, success)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	var status sql.NullInt64
	if l.ResponseStatus != nil {
		status = sql.NullInt64{Int64: int64(*l.ResponseStatus), Valid: true}
	}

	err := r.DB.QueryRowContext(ctx, query,
		l.LeadID,
		l.Channel,
		l.Endpoint,
		l.Method,
		l.EventID,
		l.Payload,
		status,
		l.ResponseBody,
		l.ErrorMessage,
		l.Success,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("erro ao registrar entrega do lead %d: %w", l.LeadID, err)
	}
	return nil
}

func (r *DeliveryLogRepository) List(ctx context.Context, f entity.DeliveryLogFilter) ([]entity.DeliveryLog, int, error) {
	var (
		where []string
		args  []any
	)
	if f.LeadID != 0 {
		args = append(args, f.LeadID)
		where = append(where, fmt.Sprintf("lead_id = $%d", len(args)))
	}
	if f.Channel != "" {
		args = append(args, f.Channel)
		where = append(where, fmt.Sprintf("channel = $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM delivery_logs`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("erro ao contar entregas: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`
		SELECT id, lead_id, channel, endpoint, method, event_id, payload,
			response_status, response_body, error_message, success, created_at
		FROM delivery_logs%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, clause, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("erro ao listar entregas: %w", err)
	}
	defer rows.Close()

	logs := make([]entity.DeliveryLog, 0, f.Limit)
	for rows.Next() {
		var (
			l      entity.DeliveryLog
			status sql.NullInt64
		)
		err := rows.Scan(&l.ID, &l.LeadID, &l.Channel, &l.Endpoint, &l.Method, &l.EventID, &l.Payload,
			&status, &l.ResponseBody, &l.ErrorMessage, &l.Success, &l.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		if status.Valid {
			code := int(status.Int64)
			l.ResponseStatus = &code
		}
		logs = append(logs, l)
	}

	return logs, total, rows.Err()
}
