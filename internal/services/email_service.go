package services

import (
	"context"
	"fmt"

	"github.com/cashora/backend/internal/audit"
	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/notify"
	"github.com/cashora/backend/internal/store"
	"go.uber.org/zap"
)

// EmailRequest is the admin email-management form
// @Description Broadcast email request
type EmailRequest struct {
	SendToAll bool   `json:"sendToAll" example:"false"`
	UserIDs   []int  `json:"userIds" validate:"required_without=SendToAll" example:"1"`
	Subject   string `json:"subject" validate:"required,max=200" example:"Scheduled maintenance"`
	Body      string `json:"body" validate:"required" example:"The portal will be unavailable tonight."`
}

// EmailResult reports how a broadcast went
type EmailResult struct {
	Recipients int `json:"recipients" example:"2"`
	Sent       int `json:"sent" example:"2"`
	Failed     int `json:"failed" example:"0"`
}

type EmailService struct {
	store    *store.MemoryStore
	notifier *notify.Notifier
	audit    *audit.Logger
	log      *logging.Logger
}

func NewEmailService(st *store.MemoryStore, notifier *notify.Notifier, auditLog *audit.Logger) *EmailService {
	return &EmailService{store: st, notifier: notifier, audit: auditLog, log: logging.L().Named("emails")}
}

// Send mails every approved user, or only the selected ones. Selected IDs
// must name existing, approved portal users.
func (s *EmailService) Send(ctx context.Context, actorID int, req EmailRequest) (EmailResult, error) {
	var recipients []string
	if req.SendToAll {
		for _, u := range s.store.ListUsers() {
			if u.Role == models.RoleUser && u.IsActive() {
				recipients = append(recipients, u.Email)
			}
		}
	} else {
		for _, id := range dedupe(req.UserIDs) {
			u, err := s.store.GetUser(id)
			if err != nil {
				return EmailResult{}, err
			}
			if u.Role != models.RoleUser || !u.IsActive() {
				return EmailResult{}, fmt.Errorf("user %d: %w", id, models.ErrUserNotActive)
			}
			recipients = append(recipients, u.Email)
		}
	}

	sent, failed := s.notifier.Broadcast(ctx, recipients, req.Subject, req.Body)
	s.log.Info("broadcast email",
		zap.Int("actor_id", actorID),
		zap.Bool("send_to_all", req.SendToAll),
		zap.Int("recipients", len(recipients)),
	)
	s.audit.LogOperation("emails", actorID, "EMAIL_BROADCAST", req.Subject)
	return EmailResult{Recipients: len(recipients), Sent: sent, Failed: failed}, nil
}
