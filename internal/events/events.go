package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cashora/backend/internal/logging"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// StatusEvent is published whenever a request or registration is decided.
type StatusEvent struct {
	Kind      string    `json:"kind"`
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	Status    string    `json:"status"`
	Amount    float64   `json:"amount,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	DecidedBy int       `json:"decidedBy"`
	At        time.Time `json:"at"`
}

// Key partitions events so every decision on one record lands in order.
func (e StatusEvent) Key() string {
	return fmt.Sprintf("%s:%d", e.Kind, e.ID)
}

type Publisher interface {
	Publish(ctx context.Context, event StatusEvent) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event StatusEvent) error { return nil }
func (NopPublisher) Close() error                                         { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	log    *logging.Logger
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	})
}

func newKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, log: logging.L().Named("events")}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event StatusEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	message := kafka.Message{
		Key:   []byte(event.Key()),
		Value: value,
		Time:  event.At,
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		p.log.Warn("failed to publish status event",
			zap.String("key", event.Key()),
			zap.Error(err),
		)
		return fmt.Errorf("publish %s: %w", event.Key(), err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
