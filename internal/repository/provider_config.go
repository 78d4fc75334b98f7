package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/duncan19760605/GenAI-Kid/internal/domain"
)

type ProviderConfigRepository struct {
	db *sql.DB
}

func NewProviderConfigRepository(db *sql.DB) *ProviderConfigRepository {
	return &ProviderConfigRepository{db: db}
}

func (r *ProviderConfigRepository) Upsert(ctx context.Context, cfg domain.ProviderConfig) (domain.ProviderConfig, error) {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	cfg.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO provider_configs (id, user_id, modality, vendor_name, api_key_encrypted, model_name, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, modality, vendor_name) DO UPDATE SET
			api_key_encrypted = excluded.api_key_encrypted,
			model_name = excluded.model_name,
			active = excluded.active
	`, cfg.ID, cfg.UserID, cfg.Modality, cfg.VendorName, nullable(cfg.APIKeyEncrypted), nullable(cfg.ModelName), cfg.Active, cfg.CreatedAt)
	return cfg, err
}

// GetActive returns the active config for (user, modality, vendor).
// Inactive or absent configs both report sql.ErrNoRows.
func (r *ProviderConfigRepository) GetActive(ctx context.Context, userID string, modality domain.Modality, vendor string) (domain.ProviderConfig, error) {
	var (
		cfg   domain.ProviderConfig
		key   sql.NullString
		model sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, modality, vendor_name, api_key_encrypted, model_name, active, created_at
		FROM provider_configs
		WHERE user_id = ? AND modality = ? AND vendor_name = ? AND active = 1
	`, userID, modality, vendor).Scan(&cfg.ID, &cfg.UserID, &cfg.Modality, &cfg.VendorName, &key, &model, &cfg.Active, &cfg.CreatedAt)
	if err != nil {
		return domain.ProviderConfig{}, err
	}
	cfg.APIKeyEncrypted = key.String
	cfg.ModelName = model.String
	return cfg, nil
}

func (r *ProviderConfigRepository) ListByUser(ctx context.Context, userID string) ([]domain.ProviderConfig, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, modality, vendor_name, api_key_encrypted, model_name, active, created_at
		FROM provider_configs
		WHERE user_id = ?
		ORDER BY modality, vendor_name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []domain.ProviderConfig
	for rows.Next() {
		var (
			cfg   domain.ProviderConfig
			key   sql.NullString
			model sql.NullString
		)
		if err := rows.Scan(&cfg.ID, &cfg.UserID, &cfg.Modality, &cfg.VendorName, &key, &model, &cfg.Active, &cfg.CreatedAt); err != nil {
			return nil, err
		}
		cfg.APIKeyEncrypted = key.String
		cfg.ModelName = model.String
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

func (r *ProviderConfigRepository) Delete(ctx context.Context, userID string, modality domain.Modality, vendor string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM provider_configs
		WHERE user_id = ? AND modality = ? AND vendor_name = ?
	`, userID, modality, vendor)
	return err
}
