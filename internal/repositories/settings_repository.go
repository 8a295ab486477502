package repositories

import (
	"context"
	"database/sql"

	"travelagency/internal/domain/models"
)

type SettingsRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func (r SettingsRepository) WithTx(tx *sql.Tx) SettingsRepository {
	r.Tx = tx
	return r
}

func (r SettingsRepository) All(ctx context.Context) ([]models.SiteSetting, error) {
	rows, err := conn(r.DB, r.Tx).QueryContext(ctx,
		`SELECT setting_key, setting_value FROM site_settings ORDER BY setting_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.SiteSetting{}
	for rows.Next() {
		var s models.SiteSetting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r SettingsRepository) Upsert(ctx context.Context, key, value string) error {
	_, err := conn(r.DB, r.Tx).ExecContext(ctx, `
		INSERT INTO site_settings (setting_key, setting_value) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value)`, key, value)
	return err
}
