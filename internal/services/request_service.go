package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cashora/backend/internal/audit"
	"github.com/cashora/backend/internal/events"
	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/metrics"
	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/notify"
	"github.com/cashora/backend/internal/store"
	"go.uber.org/zap"
)

// DepositRequest represents the deposit form
// @Description Deposit request structure
type DepositRequest struct {
	FullName string  `json:"fullName" validate:"required,min=2" example:"John Doe"`
	Amount   float64 `json:"amount" validate:"required,gt=0" example:"500"`
}

// WithdrawalRequest represents the withdrawal form
// @Description Withdrawal request structure
type WithdrawalRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0" example:"1000"`
}

// SendRequest represents the send-money form
// @Description Send money request structure
type SendRequest struct {
	Recipient string  `json:"recipient" validate:"required" example:"jane@example.com"` // Email or username
	Amount    float64 `json:"amount" validate:"required,gt=0" example:"300"`
}

// RejectRequest carries the admin's rejection reason
// @Description Reject request structure
type RejectRequest struct {
	Reason string `json:"reason" validate:"max=500" example:"Receipt is unreadable"`
}

type RequestFilter struct {
	Status models.RequestStatus
	Search string
}

type RequestService struct {
	store     *store.MemoryStore
	settings  *SettingsService
	notifier  *notify.Notifier
	publisher events.Publisher
	audit     *audit.Logger
	metrics   metrics.Collector
	log       *logging.Logger
	now       func() time.Time
}

func NewRequestService(
	st *store.MemoryStore,
	settings *SettingsService,
	notifier *notify.Notifier,
	publisher events.Publisher,
	auditLog *audit.Logger,
	collector metrics.Collector,
) *RequestService {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	return &RequestService{
		store:     st,
		settings:  settings,
		notifier:  notifier,
		publisher: publisher,
		audit:     auditLog,
		metrics:   collector,
		log:       logging.L().Named("requests"),
		now:       time.Now,
	}
}

func (s *RequestService) activeUser(userID int) (models.User, error) {
	u, err := s.store.GetUser(userID)
	if err != nil {
		return models.User{}, err
	}
	if !u.IsActive() {
		return models.User{}, fmt.Errorf("user %d is %s: %w", u.ID, u.Status, models.ErrUserNotActive)
	}
	return u, nil
}

// CreateDeposit files a deposit. Deposits carry no fee and no limits;
// document is the stored receipt name, if one was uploaded.
func (s *RequestService) CreateDeposit(ctx context.Context, userID int, in DepositRequest, document string) (models.Request, error) {
	u, err := s.activeUser(userID)
	if err != nil {
		return models.Request{}, err
	}
	if len(strings.TrimSpace(in.FullName)) < 2 {
		return models.Request{}, models.ErrFullNameRequired
	}
	if err := s.settings.CheckAmount(u, models.KindDeposit, in.Amount); err != nil {
		return models.Request{}, err
	}

	return s.create(models.Request{
		Kind:     models.KindDeposit,
		UserID:   u.ID,
		UserName: u.FullName(),
		FullName: strings.TrimSpace(in.FullName),
		Amount:   in.Amount,
		Document: document,
	})
}

func (s *RequestService) CreateWithdrawal(ctx context.Context, userID int, in WithdrawalRequest) (models.Request, error) {
	u, err := s.activeUser(userID)
	if err != nil {
		return models.Request{}, err
	}
	if err := s.settings.CheckAmount(u, models.KindWithdrawal, in.Amount); err != nil {
		return models.Request{}, err
	}

	return s.create(models.Request{
		Kind:     models.KindWithdrawal,
		UserID:   u.ID,
		UserName: u.FullName(),
		Amount:   in.Amount,
		Fee:      s.settings.FeeFor(u, in.Amount),
	})
}

// CreateSend files a transfer to another approved portal user, found by
// email or username.
func (s *RequestService) CreateSend(ctx context.Context, userID int, in SendRequest) (models.Request, error) {
	u, err := s.activeUser(userID)
	if err != nil {
		return models.Request{}, err
	}

	recipient, err := s.store.FindUser(in.Recipient)
	if err != nil || recipient.Role != models.RoleUser {
		return models.Request{}, fmt.Errorf("recipient %q: %w", in.Recipient, models.ErrNotFound)
	}
	if recipient.ID == u.ID {
		return models.Request{}, models.ErrSelfTransfer
	}
	if !recipient.IsActive() {
		return models.Request{}, fmt.Errorf("recipient %q: %w", in.Recipient, models.ErrUserNotActive)
	}
	if err := s.settings.CheckAmount(u, models.KindSend, in.Amount); err != nil {
		return models.Request{}, err
	}

	return s.create(models.Request{
		Kind:          models.KindSend,
		UserID:        u.ID,
		UserName:      u.FullName(),
		RecipientID:   recipient.ID,
		RecipientName: recipient.FullName(),
		Amount:        in.Amount,
		Fee:           s.settings.FeeFor(u, in.Amount),
	})
}

func (s *RequestService) create(r models.Request) (models.Request, error) {
	created, err := s.store.CreateRequest(r)
	if err != nil {
		return models.Request{}, err
	}

	s.log.Info("request created",
		zap.Int("request_id", created.ID),
		zap.String("kind", string(created.Kind)),
		zap.Int("user_id", created.UserID),
		zap.Float64("amount", created.Amount),
		zap.Float64("fee", created.Fee),
	)
	s.metrics.RequestCreated(string(created.Kind))
	s.refreshPending()
	return created, nil
}

// List returns requests of kind (all kinds when empty) in ID order.
func (s *RequestService) List(kind models.RequestKind, filter RequestFilter) []models.Request {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var out []models.Request
	for _, r := range s.store.ListRequests(kind) {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if search != "" && !requestMatches(r, search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func requestMatches(r models.Request, search string) bool {
	fields := []string{
		r.UserName,
		r.RecipientName,
		r.FullName,
		r.Date,
		strconv.FormatFloat(r.Amount, 'f', -1, 64),
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// ListForUser returns requests the user filed or receives.
func (s *RequestService) ListForUser(userID int) []models.Request {
	var out []models.Request
	for _, r := range s.store.ListRequests("") {
		if r.UserID == userID || r.RecipientID == userID {
			out = append(out, r)
		}
	}
	return out
}

// Get returns the request only if it is of the given kind.
func (s *RequestService) Get(kind models.RequestKind, id int) (models.Request, error) {
	r, err := s.store.GetRequest(id)
	if err != nil {
		return models.Request{}, err
	}
	if r.Kind != kind {
		return models.Request{}, fmt.Errorf("%s %d: %w", kind, id, models.ErrNotFound)
	}
	return r, nil
}

// Approve decides a pending request. Withdrawals need the payout's bank
// reference; other kinds ignore details.
func (s *RequestService) Approve(ctx context.Context, actorID int, kind models.RequestKind, id int, details *models.BankTransactionDetails) (models.Request, error) {
	if kind != models.KindWithdrawal {
		details = nil
	} else {
		if details == nil || strings.TrimSpace(details.Reference) == "" {
			return models.Request{}, models.ErrReferenceRequired
		}
		d := *details
		d.Reference = strings.TrimSpace(d.Reference)
		if d.TransactionDate == "" {
			d.TransactionDate = s.now().Format(models.DateLayout)
		}
		details = &d
	}
	return s.decide(ctx, actorID, kind, id, models.RequestStatusApproved, "", details)
}

// Reject decides a pending request. Deposits and withdrawals need a reason;
// for sends it is optional.
func (s *RequestService) Reject(ctx context.Context, actorID int, kind models.RequestKind, id int, reason string) (models.Request, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" && kind != models.KindSend {
		return models.Request{}, models.ErrReasonRequired
	}
	return s.decide(ctx, actorID, kind, id, models.RequestStatusRejected, reason, nil)
}

func (s *RequestService) decide(ctx context.Context, actorID int, kind models.RequestKind, id int, to models.RequestStatus, reason string, details *models.BankTransactionDetails) (models.Request, error) {
	now := s.now()
	r, err := s.store.UpdateRequest(id, func(r *models.Request) error {
		if r.Kind != kind {
			return fmt.Errorf("%s %d: %w", kind, id, models.ErrNotFound)
		}
		if err := r.Transition(to, now); err != nil {
			return err
		}
		r.DecidedBy = actorID
		r.RejectReason = reason
		r.BankDetails = details
		return nil
	})
	if err != nil {
		s.log.Info("decision refused",
			zap.String("kind", string(kind)),
			zap.Int("request_id", id),
			zap.String("to", string(to)),
			zap.Error(err),
		)
		return models.Request{}, err
	}

	s.log.Info("request decided",
		zap.String("kind", string(kind)),
		zap.Int("request_id", id),
		zap.String("status", string(to)),
		zap.Int("actor_id", actorID),
	)
	s.afterDecision(ctx, r)
	return r, nil
}

// afterDecision fans a decision out to email, the event stream, the audit
// log and metrics. None of these can undo the decision.
func (s *RequestService) afterDecision(ctx context.Context, r models.Request) {
	status := string(r.Status)

	if u, err := s.store.GetUser(r.UserID); err == nil {
		s.notifier.SendStatusEmail(ctx, u.Email, status, string(r.Kind), r.RejectReason)
	} else {
		s.log.Warn("no recipient for status email", zap.Int("user_id", r.UserID), zap.Error(err))
	}

	event := events.StatusEvent{
		Kind:      string(r.Kind),
		ID:        r.ID,
		UserID:    r.UserID,
		Status:    status,
		Amount:    r.Amount,
		Reason:    r.RejectReason,
		DecidedBy: r.DecidedBy,
		At:        r.UpdatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("status event not published", zap.String("key", event.Key()), zap.Error(err))
		s.audit.LogError(event.Key(), r.DecidedBy, err)
	}

	s.audit.LogDecision(event.Key(), r.DecidedBy, r.Amount, status, r.RejectReason)
	s.metrics.RequestDecided(string(r.Kind), status)
	s.refreshPending()
}

func (s *RequestService) refreshPending() {
	counts := map[models.RequestKind]int{
		models.KindDeposit:    0,
		models.KindWithdrawal: 0,
		models.KindSend:       0,
	}
	for _, r := range s.store.ListRequests("") {
		if r.Status == models.RequestStatusPending {
			counts[r.Kind]++
		}
	}
	for kind, n := range counts {
		s.metrics.SetPending(string(kind), n)
	}
}
