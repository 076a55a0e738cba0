package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/cashora/backend/internal/audit"
	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/store"
	"go.uber.org/zap"
)

type UserFilter struct {
	Search string
	Status models.UserStatus
}

// UserPatch is the admin "manage user" form. Nil fields are left alone;
// the Clear flags remove an override entirely.
type UserPatch struct {
	Balance        *float64          `json:"balance,omitempty" validate:"omitempty,gte=0"`
	CustomFee      *models.CustomFee `json:"customFee,omitempty"`
	ClearCustomFee bool              `json:"clearCustomFee,omitempty"`
	Limits         *models.Limits    `json:"limits,omitempty"`
	ClearLimits    bool              `json:"clearLimits,omitempty"`
	AssignedBanks  *[]int            `json:"assignedBanks,omitempty"`
}

func (p UserPatch) validate() error {
	if p.Balance != nil && *p.Balance < 0 {
		return models.ErrInvalidAmount
	}
	if p.CustomFee != nil {
		if p.CustomFee.Value < 0 {
			return fmt.Errorf("%w: fee must not be negative", models.ErrInvalidSettings)
		}
		if p.CustomFee.Type == models.FeePercentage && p.CustomFee.Value > 100 {
			return fmt.Errorf("%w: percentage fee above 100", models.ErrInvalidSettings)
		}
		if p.CustomFee.Type != models.FeePercentage && p.CustomFee.Type != models.FeeFixed {
			return fmt.Errorf("%w: unknown fee type %q", models.ErrInvalidSettings, p.CustomFee.Type)
		}
	}
	if p.Limits != nil {
		for name, r := range map[string]models.Range{"withdrawal": p.Limits.Withdrawal, "send": p.Limits.Send} {
			if (r.Min != nil && *r.Min < 0) || (r.Max != nil && *r.Max < 0) {
				return fmt.Errorf("%w: %s limits must not be negative", models.ErrInvalidSettings, name)
			}
			if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
				return fmt.Errorf("%w: %s min exceeds max", models.ErrInvalidSettings, name)
			}
		}
	}
	return nil
}

type UserService struct {
	store    *store.MemoryStore
	settings *SettingsService
	audit    *audit.Logger
	log      *logging.Logger
}

func NewUserService(st *store.MemoryStore, settings *SettingsService, auditLog *audit.Logger) *UserService {
	return &UserService{store: st, settings: settings, audit: auditLog, log: logging.L().Named("users")}
}

// List returns portal users (never admins), matching Search against name,
// username and email case-insensitively.
func (s *UserService) List(filter UserFilter) []models.User {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var out []models.User
	for _, u := range s.store.ListUsers() {
		if u.Role != models.RoleUser {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if search != "" && !userMatches(u, search) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func userMatches(u models.User, search string) bool {
	for _, field := range []string{u.FullName(), u.Username, u.Email} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func (s *UserService) Get(id int) (models.User, error) {
	return s.store.GetUser(id)
}

func (s *UserService) Update(ctx context.Context, actorID, id int, patch UserPatch) (models.User, error) {
	if err := patch.validate(); err != nil {
		return models.User{}, err
	}

	u, err := s.store.UpdateUser(id, func(u *models.User) error {
		if u.Status == models.UserStatusDeleted {
			return fmt.Errorf("user %d: %w", id, models.ErrUserNotActive)
		}
		if patch.Balance != nil {
			u.Balance = *patch.Balance
		}
		switch {
		case patch.ClearCustomFee:
			u.CustomFee = nil
		case patch.CustomFee != nil:
			fee := *patch.CustomFee
			u.CustomFee = &fee
		}
		switch {
		case patch.ClearLimits:
			u.Limits = nil
		case patch.Limits != nil:
			limits := *patch.Limits
			u.Limits = &limits
			if err := s.checkLimits(*u); err != nil {
				return err
			}
		}
		if patch.AssignedBanks != nil {
			u.AssignedBanks = dedupe(*patch.AssignedBanks)
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	s.log.Info("user updated", zap.Int("user_id", id), zap.Int("actor_id", actorID))
	s.audit.LogOperation(fmt.Sprintf("user:%d", id), actorID, "USER_UPDATE", "profile managed")
	return u, nil
}

// checkLimits refuses custom bounds that, merged with the system bounds
// they leave unset, would admit no amount at all.
func (s *UserService) checkLimits(u models.User) error {
	for _, kind := range []models.RequestKind{models.KindWithdrawal, models.KindSend} {
		lo, hi, ok := s.settings.EffectiveLimits(u, kind)
		if ok && lo > hi {
			return fmt.Errorf("%w: %s min %.2f exceeds max %.2f", models.ErrInvalidSettings, kind, lo, hi)
		}
	}
	return nil
}

// Delete is a soft delete: the user keeps its ID and history but loses its
// bank assignments and can no longer sign in.
func (s *UserService) Delete(ctx context.Context, actorID, id int) error {
	_, err := s.store.UpdateUser(id, func(u *models.User) error {
		if u.Role == models.RoleAdmin {
			return fmt.Errorf("cannot delete admin %d: %w", id, models.ErrForbidden)
		}
		if u.Status == models.UserStatusDeleted {
			return fmt.Errorf("user %d: %w", id, models.ErrNotFound)
		}
		u.Status = models.UserStatusDeleted
		u.AssignedBanks = []int{}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("user deleted", zap.Int("user_id", id), zap.Int("actor_id", actorID))
	s.audit.LogOperation(fmt.Sprintf("user:%d", id), actorID, "USER_DELETE", "soft delete")
	return nil
}

func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
