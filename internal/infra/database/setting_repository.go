package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

type SettingRepository struct {
	DB *sql.DB
}

func NewSettingRepository(db *sql.DB) *SettingRepository {
	return &SettingRepository{DB: db}
}

func (r *SettingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.DB.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("erro ao ler setting %s: %w", key, err)
	}
	return value, true, nil
}

func (r *SettingRepository) All(ctx context.Context) ([]entity.Setting, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT key, value, description FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar settings: %w", err)
	}
	defer rows.Close()

	var settings []entity.Setting
	for rows.Next() {
		var s entity.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("erro ao gravar setting %s: %w", key, err)
	}
	return nil
}
