package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/akosachev/ledgerpay/internal/apperrors"
	"github.com/akosachev/ledgerpay/internal/models"
)

type SettingRepo struct {
	DB DBTX
}

const listSettings = `-- name: ListSettings
SELECT name, value, updated_at FROM settings
WHERE $1::text[] IS NULL OR name = ANY($1)
ORDER BY name ASC
`

func (r *SettingRepo) ListSettings(ctx context.Context, names []string) ([]models.Setting, error) {
	rows, _ := r.DB.Query(ctx, listSettings, names)
	settings, err := pgx.CollectRows(rows, rowToSetting)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return settings, nil
}

const getSetting = `-- name: GetSetting
SELECT name, value, updated_at FROM settings
WHERE name = $1
`

func (r *SettingRepo) GetSetting(ctx context.Context, name string) (models.Setting, error) {
	rows, _ := r.DB.Query(ctx, getSetting, name)
	setting, err := pgx.CollectOneRow(rows, rowToSetting)

	switch {
	case err == nil:
		return setting, nil
	case errors.Is(err, pgx.ErrNoRows):
		return setting, apperrors.ErrSettingNotFound
	default:
		return setting, fmt.Errorf("db error: %w", err)
	}
}

const upsertSetting = `-- name: UpsertSetting
INSERT INTO settings (name, value)
VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
RETURNING name, value, updated_at
`

func (r *SettingRepo) UpsertSetting(ctx context.Context, name string, value string) (models.Setting, error) {
	rows, _ := r.DB.Query(ctx, upsertSetting, name, value)
	setting, err := pgx.CollectOneRow(rows, rowToSetting)
	if err != nil {
		return setting, fmt.Errorf("db error: %w", err)
	}

	return setting, nil
}

const deleteSetting = `-- name: DeleteSetting
DELETE FROM settings
WHERE name = $1
`

func (r *SettingRepo) DeleteSetting(ctx context.Context, name string) error {
	tag, err := r.DB.Exec(ctx, deleteSetting, name)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrSettingNotFound
	}

	return nil
}

func rowToSetting(row pgx.CollectableRow) (models.Setting, error) {
	var s models.Setting
	err := row.Scan(&s.Name, &s.Value, &s.UpdatedAt)
	return s, err
}
