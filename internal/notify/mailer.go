package notify

import (
	"context"
	"errors"
	"time"

	"github.com/cashora/backend/internal/logging"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var ErrMailerUnavailable = errors.New("mailer unavailable")

type Email struct {
	From    string
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// LogMailer is the delivery stand-in: it logs the message and reports
// success.
type LogMailer struct {
	log *logging.Logger
}

func NewLogMailer(log *logging.Logger) *LogMailer {
	return &LogMailer{log: log.Named("mailer")}
}

func (m *LogMailer) Send(ctx context.Context, email Email) error {
	m.log.Info("sending email",
		zap.String("from", email.From),
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("body", email.Body),
	)
	return nil
}

// BreakerConfig mirrors the gobreaker knobs we expose.
type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// BreakerMailer stops calling a failing transport until the breaker's
// timeout elapses.
type BreakerMailer struct {
	next Mailer
	cb   *gobreaker.CircuitBreaker
	log  *logging.Logger
}

func NewBreakerMailer(next Mailer, config BreakerConfig) *BreakerMailer {
	logger := logging.L().Named("mailer").Named("breaker")

	bm := &BreakerMailer{next: next, log: logger}
	bm.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mailer",
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return bm
}

func (b *BreakerMailer) Send(ctx context.Context, email Email) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Send(ctx, email)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.log.Warn("email dropped, breaker open", zap.String("to", email.To))
		return ErrMailerUnavailable
	}
	return err
}

func (b *BreakerMailer) State() gobreaker.State {
	return b.cb.State()
}
