package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"tryout-service/internal/config"
	"tryout-service/internal/util"
)

// Event types emitted on the audit topic.
const (
	EventParticipantRegistered = "participant_registered"
	EventPasswordReset         = "password_reset"
	EventPaymentUploaded       = "payment_uploaded"
	EventPaymentReviewed       = "payment_reviewed"
)

// Event is one audit record. Detail carries event-specific fields; never
// plaintext credentials.
type Event struct {
	ID     string            `json:"id"`
	Type   string            `json:"type"`
	At     time.Time         `json:"at"`
	Detail map[string]string `json:"detail,omitempty"`
}

// Publisher writes audit events to Kafka, best effort. A nil Publisher (no
// brokers configured) is valid and drops everything.
type Publisher struct {
	writer *kafka.Writer
	topic  string
}

func NewPublisher(cfg config.KafkaConfig) *Publisher {
	if !cfg.Enabled() {
		util.Warn("Kafka brokers not configured - audit events disabled")
		return nil
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.AuditTopic,
		Balancer:     &kafka.LeastBytes{},
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}

	util.Info("Audit publisher initialized",
		util.Any("brokers", cfg.Brokers),
		util.String("topic", cfg.AuditTopic))

	return &Publisher{
		writer: writer,
		topic:  cfg.AuditTopic,
	}
}

// Publish emits one event. Failures are logged and swallowed; audit must
// never fail a user-facing request.
func (p *Publisher) Publish(eventType string, detail map[string]string) {
	if p == nil {
		return
	}

	event := Event{
		ID:     uuid.New().String(),
		Type:   eventType,
		At:     time.Now().UTC(),
		Detail: detail,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		util.Error("Failed to encode audit event", util.ErrorField(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(eventType),
		Value: payload,
	}); err != nil {
		util.Error("Failed to publish audit event",
			util.String("type", eventType),
			util.ErrorField(err))
		return
	}

	util.Debug("Audit event published", util.String("type", eventType))
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		util.Error("failed to close audit publisher", util.ErrorField(err))
		return err
	}
	util.Info("Audit publisher closed")
	return nil
}
