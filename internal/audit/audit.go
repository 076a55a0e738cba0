package audit

import (
	"time"

	"github.com/cashora/backend/internal/logging"
	"go.uber.org/zap"
)

type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	Subject   string            `json:"subject"`
	ActorID   int               `json:"actor_id"`
	Amount    float64           `json:"amount,omitempty"`
	Status    string            `json:"status"`
	Details   map[string]string `json:"details,omitempty"`
}

// Logger writes one structured line per audited action under the "audit"
// logger name so the lines can be routed separately.
type Logger struct {
	log *logging.Logger
	now func() time.Time
}

func NewLogger(log *logging.Logger) *Logger {
	return &Logger{log: log.Named("audit"), now: time.Now}
}

// LogDecision records an approve/reject on a request or registration.
func (a *Logger) LogDecision(subject string, actorID int, amount float64, status, reason string) {
	event := Event{
		Timestamp: a.now(),
		EventType: "DECISION",
		Subject:   subject,
		ActorID:   actorID,
		Amount:    amount,
		Status:    status,
	}
	if reason != "" {
		event.Details = map[string]string{"reason": reason}
	}
	a.write(event)
}

func (a *Logger) LogOperation(subject string, actorID int, operation, details string) {
	a.write(Event{
		Timestamp: a.now(),
		EventType: operation,
		Subject:   subject,
		ActorID:   actorID,
		Status:    "SUCCESS",
		Details:   map[string]string{"details": details},
	})
}

func (a *Logger) LogError(subject string, actorID int, err error) {
	a.write(Event{
		Timestamp: a.now(),
		EventType: "ERROR",
		Subject:   subject,
		ActorID:   actorID,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *Logger) write(event Event) {
	fields := []zap.Field{
		zap.Time("timestamp", event.Timestamp),
		zap.String("event_type", event.EventType),
		zap.String("subject", event.Subject),
		zap.Int("actor_id", event.ActorID),
		zap.String("status", event.Status),
	}
	if event.Amount != 0 {
		fields = append(fields, zap.Float64("amount", event.Amount))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}
	a.log.Info("audit", fields...)
}
