package notify

import (
	"context"
	"fmt"

	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/metrics"
	"go.uber.org/zap"
)

// Notifier formats portal emails and hands them to a Mailer.
type Notifier struct {
	mailer  Mailer
	from    string
	log     *logging.Logger
	metrics metrics.Collector
}

func NewNotifier(mailer Mailer, from string, collector metrics.Collector) *Notifier {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	return &Notifier{
		mailer:  mailer,
		from:    from,
		log:     logging.L().Named("notify"),
		metrics: collector,
	}
}

// SendEmail reports whether the mailer accepted the message. Failures are
// logged, never returned, so a broken transport cannot undo a decision.
func (n *Notifier) SendEmail(ctx context.Context, to, subject, body string) bool {
	err := n.mailer.Send(ctx, Email{From: n.from, To: to, Subject: subject, Body: body})
	n.metrics.EmailSent(err == nil)
	if err != nil {
		n.log.Warn("email not sent", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return false
	}
	return true
}

func StatusSubject(kind, status string) string {
	return fmt.Sprintf("Your %s request has been %s", kind, status)
}

func StatusBody(kind, status, reason string) string {
	if status == "rejected" {
		return fmt.Sprintf("Your %s request has been rejected. Reason: %s", kind, reason)
	}
	return fmt.Sprintf("Your %s request has been %s.", kind, status)
}

func (n *Notifier) SendStatusEmail(ctx context.Context, to, status, kind, reason string) bool {
	return n.SendEmail(ctx, to, StatusSubject(kind, status), StatusBody(kind, status, reason))
}

// Broadcast sends the same message to every recipient and counts outcomes.
func (n *Notifier) Broadcast(ctx context.Context, recipients []string, subject, body string) (sent, failed int) {
	for _, to := range recipients {
		if ctx.Err() != nil {
			failed += len(recipients) - sent - failed
			break
		}
		if n.SendEmail(ctx, to, subject, body) {
			sent++
		} else {
			failed++
		}
	}
	n.log.Info("broadcast finished", zap.Int("sent", sent), zap.Int("failed", failed))
	return sent, failed
}
