package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cashora/backend/internal/models"
)

const settingsRowID = 1

// PostgresSettingsStore keeps the settings record as a single row of
// system_settings.
type PostgresSettingsStore struct {
	db *sql.DB
}

func NewPostgresSettingsStore(db *sql.DB) *PostgresSettingsStore {
	return &PostgresSettingsStore{db: db}
}

func (p *PostgresSettingsStore) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS system_settings (
			id INTEGER PRIMARY KEY,
			withdrawal_min_limit NUMERIC NOT NULL,
			withdrawal_max_limit NUMERIC NOT NULL,
			send_min_limit NUMERIC NOT NULL,
			send_max_limit NUMERIC NOT NULL,
			default_transaction_fee NUMERIC NOT NULL,
			is_percentage_fee BOOLEAN NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create system_settings: %w", err)
	}
	return nil
}

func (p *PostgresSettingsStore) Load(ctx context.Context) (models.SystemSettings, error) {
	var s models.SystemSettings
	err := p.db.QueryRowContext(ctx, `
		SELECT withdrawal_min_limit, withdrawal_max_limit, send_min_limit, send_max_limit,
			default_transaction_fee, is_percentage_fee
		FROM system_settings
		WHERE id = $1`, settingsRowID).Scan(
		&s.WithdrawalMinLimit, &s.WithdrawalMaxLimit, &s.SendMinLimit, &s.SendMaxLimit,
		&s.DefaultTransactionFee, &s.IsPercentageFee)

	if errors.Is(err, sql.ErrNoRows) {
		return models.SystemSettings{}, models.ErrNotFound
	}
	if err != nil {
		return models.SystemSettings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return s, nil
}

func (p *PostgresSettingsStore) Save(ctx context.Context, s models.SystemSettings) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO system_settings (id, withdrawal_min_limit, withdrawal_max_limit, send_min_limit,
			send_max_limit, default_transaction_fee, is_percentage_fee, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			withdrawal_min_limit = EXCLUDED.withdrawal_min_limit,
			withdrawal_max_limit = EXCLUDED.withdrawal_max_limit,
			send_min_limit = EXCLUDED.send_min_limit,
			send_max_limit = EXCLUDED.send_max_limit,
			default_transaction_fee = EXCLUDED.default_transaction_fee,
			is_percentage_fee = EXCLUDED.is_percentage_fee,
			updated_at = EXCLUDED.updated_at`,
		settingsRowID, s.WithdrawalMinLimit, s.WithdrawalMaxLimit, s.SendMinLimit, s.SendMaxLimit,
		s.DefaultTransactionFee, s.IsPercentageFee, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
