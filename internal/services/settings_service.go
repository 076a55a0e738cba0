package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/cashora/backend/internal/audit"
	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/store"
	"go.uber.org/zap"
)

// SettingsService owns the single SystemSettings record. Reads take the
// read lock; Update validates, persists, then swaps the cached copy.
type SettingsService struct {
	mu      sync.RWMutex
	current models.SystemSettings
	store   store.SettingsStore
	audit   *audit.Logger
	log     *logging.Logger
}

// NewSettingsService loads the persisted record, seeding the store with
// initial when nothing has been saved yet.
func NewSettingsService(ctx context.Context, st store.SettingsStore, initial models.SystemSettings, auditLog *audit.Logger) (*SettingsService, error) {
	s := &SettingsService{store: st, audit: auditLog, log: logging.L().Named("settings")}

	loaded, err := st.Load(ctx)
	switch {
	case errors.Is(err, models.ErrNotFound):
		if err := initial.Validate(); err != nil {
			return nil, err
		}
		if err := st.Save(ctx, initial); err != nil {
			return nil, err
		}
		loaded = initial
		s.log.Info("settings seeded from configuration")
	case err != nil:
		return nil, err
	}

	s.current = loaded
	return s, nil
}

func (s *SettingsService) Get() models.SystemSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *SettingsService) Update(ctx context.Context, actorID int, patch models.SettingsPatch) (models.SystemSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := patch.Apply(s.current)
	if err := next.Validate(); err != nil {
		return models.SystemSettings{}, err
	}
	if err := s.store.Save(ctx, next); err != nil {
		return models.SystemSettings{}, fmt.Errorf("failed to persist settings: %w", err)
	}
	s.current = next

	s.log.Info("settings updated",
		zap.Int("actor_id", actorID),
		zap.Float64("withdrawal_min", next.WithdrawalMinLimit),
		zap.Float64("withdrawal_max", next.WithdrawalMaxLimit),
		zap.Float64("send_min", next.SendMinLimit),
		zap.Float64("send_max", next.SendMaxLimit),
		zap.Float64("fee", next.DefaultTransactionFee),
		zap.Bool("percentage", next.IsPercentageFee),
	)
	s.audit.LogOperation("settings", actorID, "SETTINGS_UPDATE", fmt.Sprintf("%+v", next))
	return next, nil
}

// CalculateFee applies the system default fee.
func (s *SettingsService) CalculateFee(amount float64) float64 {
	settings := s.Get()
	if settings.IsPercentageFee {
		return amount * settings.DefaultTransactionFee / 100
	}
	return settings.DefaultTransactionFee
}

// FeeFor prefers the user's custom fee over the system default.
func (s *SettingsService) FeeFor(u models.User, amount float64) float64 {
	if u.CustomFee != nil {
		return u.CustomFee.Amount(amount)
	}
	return s.CalculateFee(amount)
}

// EffectiveLimits resolves the bounds for kind; each user bound that is set
// replaces the matching system bound. ok is false for kinds without limits.
func (s *SettingsService) EffectiveLimits(u models.User, kind models.RequestKind) (lo, hi float64, ok bool) {
	settings := s.Get()

	var custom models.Range
	switch kind {
	case models.KindWithdrawal:
		lo, hi = settings.WithdrawalMinLimit, settings.WithdrawalMaxLimit
		if u.Limits != nil {
			custom = u.Limits.Withdrawal
		}
	case models.KindSend:
		lo, hi = settings.SendMinLimit, settings.SendMaxLimit
		if u.Limits != nil {
			custom = u.Limits.Send
		}
	default:
		return 0, 0, false
	}

	if custom.Min != nil {
		lo = *custom.Min
	}
	if custom.Max != nil {
		hi = *custom.Max
	}
	return lo, hi, true
}

// CheckAmount rejects non-positive amounts and, for limited kinds, amounts
// outside the user's effective limits.
func (s *SettingsService) CheckAmount(u models.User, kind models.RequestKind, amount float64) error {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return models.ErrInvalidAmount
	}
	lo, hi, ok := s.EffectiveLimits(u, kind)
	if !ok {
		return nil
	}
	if amount < lo || amount > hi {
		return fmt.Errorf("%w: %s of %.2f must be between %.2f and %.2f", models.ErrAmountOutOfRange, kind, amount, lo, hi)
	}
	return nil
}
