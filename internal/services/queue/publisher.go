package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phambaophuc/image-derivative/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// PublishEvent sends event as a persistent JSON message. A missing ID or
// timestamp is filled in.
func (q *QueueService) PublishEvent(ctx context.Context, event *models.DerivativeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.ProcessedAt.IsZero() {
		event.ProcessedAt = time.Now().UTC()
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = q.channel.Publish(
		"",          // exchange
		q.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         eventBytes,
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    event.ProcessedAt,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	q.logger.Debug("Event published to queue",
		zap.String("event_id", event.ID),
		zap.String("derivative", event.Derivative))
	return nil
}
