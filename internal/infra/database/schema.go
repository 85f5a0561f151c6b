package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS leads (
		id                  BIGSERIAL PRIMARY KEY,
		full_name           TEXT NOT NULL,
		phone               VARCHAR(11) NOT NULL,
		kind                VARCHAR(16) NOT NULL CHECK (kind IN ('retailer', 'consumer')),
		tax_id              VARCHAR(14),
		ip_address          TEXT NOT NULL DEFAULT '',
		user_agent          TEXT NOT NULL DEFAULT '',
		utm_source          TEXT NOT NULL DEFAULT '',
		utm_medium          TEXT NOT NULL DEFAULT '',
		utm_campaign        TEXT NOT NULL DEFAULT '',
		utm_content         TEXT NOT NULL DEFAULT '',
		utm_term            TEXT NOT NULL DEFAULT '',
		referrer            TEXT NOT NULL DEFAULT '',
		browser_id          TEXT NOT NULL DEFAULT '',
		session_id          TEXT NOT NULL DEFAULT '',
		webhook_delivered   BOOLEAN NOT NULL DEFAULT FALSE,
		conversion_reported BOOLEAN NOT NULL DEFAULT FALSE,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key         TEXT PRIMARY KEY,
		value       TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS delivery_logs (
		id              BIGSERIAL PRIMARY KEY,
		lead_id         BIGINT NOT NULL,
		channel         VARCHAR(16) NOT NULL,
		endpoint        TEXT NOT NULL DEFAULT '',
		method          VARCHAR(8) NOT NULL DEFAULT '',
		event_id        TEXT NOT NULL DEFAULT '',
		payload         TEXT NOT NULL DEFAULT '',
		response_status INTEGER,
		response_body   TEXT NOT NULL DEFAULT '',
		error_message   TEXT NOT NULL DEFAULT '',
		success         BOOLEAN NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_logs_lead ON delivery_logs (lead_id, created_at DESC)`,
}

// Migrate cria as tabelas e semeia as configurações padrão sem sobrescrever valores existentes.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("erro ao aplicar schema: %w", err)
		}
	}

	for _, s := range entity.DefaultSettings() {
		_, err := db.ExecContext(ctx,
			`INSERT INTO settings (key, value, description) VALUES ($1, $2, $3) ON CONFLICT (key) DO NOTHING`,
			s.Key, s.Value, s.Description,
		)
		if err != nil {
			return fmt.Errorf("erro ao semear setting %s: %w", s.Key, err)
		}
	}

	return nil
}
