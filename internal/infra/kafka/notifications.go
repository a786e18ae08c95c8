package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/port"
)

// NotificationPublisher implements port.NotificationPublisher on Kafka.
// Messages are keyed by recipient so one recipient's notifications stay
// ordered.
type NotificationPublisher struct {
	producer *Producer
	logger   *zap.Logger
}

// NewNotificationPublisher constructs a Kafka-backed publisher.
func NewNotificationPublisher(producer *Producer, logger *zap.Logger) *NotificationPublisher {
	return &NotificationPublisher{producer: producer, logger: logger}
}

type notificationEnvelope struct {
	ID          string            `json:"id"`
	RecipientID string            `json:"recipient_id"`
	Template    string            `json:"template"`
	Context     map[string]string `json:"context,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Publish enqueues one notification for async delivery.
func (p *NotificationPublisher) Publish(_ context.Context, n domain.Notification) error {
	envelope := notificationEnvelope{
		ID:          uuid.NewString(),
		RecipientID: n.RecipientID,
		Template:    string(n.Template),
		Context:     n.Context,
		Timestamp:   time.Now().UTC(),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	p.producer.Input() <- &sarama.ProducerMessage{
		Topic: p.producer.Topic(),
		Key:   sarama.StringEncoder(n.RecipientID),
		Value: sarama.ByteEncoder(payload),
	}
	return nil
}

var _ port.NotificationPublisher = (*NotificationPublisher)(nil)
