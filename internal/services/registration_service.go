package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cashora/backend/internal/audit"
	"github.com/cashora/backend/internal/events"
	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/notify"
	"github.com/cashora/backend/internal/store"
	"go.uber.org/zap"
)

const kindRegistration = "registration"

// RegistrationService runs the KYC review of pending sign-ups.
type RegistrationService struct {
	store     *store.MemoryStore
	notifier  *notify.Notifier
	publisher events.Publisher
	audit     *audit.Logger
	log       *logging.Logger
	now       func() time.Time
}

func NewRegistrationService(st *store.MemoryStore, notifier *notify.Notifier, publisher events.Publisher, auditLog *audit.Logger) *RegistrationService {
	return &RegistrationService{
		store:     st,
		notifier:  notifier,
		publisher: publisher,
		audit:     auditLog,
		log:       logging.L().Named("registrations"),
		now:       time.Now,
	}
}

func (s *RegistrationService) ListPending() []models.UserRegistration {
	return s.store.ListRegistrations()
}

func (s *RegistrationService) Get(id int) (models.UserRegistration, error) {
	return s.store.GetRegistration(id)
}

// Approve promotes the registration to an approved user with the same ID.
func (s *RegistrationService) Approve(ctx context.Context, actorID, id int) (models.User, error) {
	u, err := s.store.PromoteRegistration(id)
	if err != nil {
		return models.User{}, err
	}

	s.log.Info("registration approved", zap.Int("registration_id", id), zap.Int("actor_id", actorID))
	s.announce(ctx, actorID, id, u.Email, string(models.RequestStatusApproved), "")
	return u, nil
}

// Reject discards the registration. A reason is mandatory and is quoted in
// the status email.
func (s *RegistrationService) Reject(ctx context.Context, actorID, id int, reason string) (models.UserRegistration, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.UserRegistration{}, models.ErrReasonRequired
	}

	reg, err := s.store.DeleteRegistration(id)
	if err != nil {
		return models.UserRegistration{}, err
	}

	s.log.Info("registration rejected", zap.Int("registration_id", id), zap.Int("actor_id", actorID), zap.String("reason", reason))
	s.announce(ctx, actorID, id, reg.Email, string(models.RequestStatusRejected), reason)
	return reg, nil
}

func (s *RegistrationService) announce(ctx context.Context, actorID, id int, email, status, reason string) {
	s.notifier.SendStatusEmail(ctx, email, status, kindRegistration, reason)

	event := events.StatusEvent{
		Kind:      kindRegistration,
		ID:        id,
		UserID:    id,
		Status:    status,
		Reason:    reason,
		DecidedBy: actorID,
		At:        s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("status event not published", zap.String("key", event.Key()), zap.Error(err))
	}

	s.audit.LogDecision(fmt.Sprintf("%s:%d", kindRegistration, id), actorID, 0, status, reason)
}
