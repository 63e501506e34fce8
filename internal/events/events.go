// Package events publishes user and product lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

const (
	UserCreated    = "user.created"
	UserUpdated    = "user.updated"
	UserDeleted    = "user.deleted"
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
)

// Publisher delivers an encoded event under a routing key.
type Publisher interface {
	Publish(routingKey string, body []byte) error
}

// Event is the envelope every message is wrapped in.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// Emitter publishes events on a best-effort basis. A nil Publisher disables it.
type Emitter struct {
	publisher Publisher
	logger    *slog.Logger
}

func NewEmitter(publisher Publisher, logger *slog.Logger) *Emitter {
	return &Emitter{publisher: publisher, logger: logger}
}

// Emit publishes eventType with payload. Failures are logged and never returned:
// the write that produced the event has already been committed.
func (e *Emitter) Emit(ctx context.Context, eventType string, payload any) {
	if e == nil || e.publisher == nil {
		return
	}

	body, err := encode(eventType, payload)
	if err != nil {
		e.logger.WarnContext(ctx, "failed to encode event", slog.String("type", eventType), slog.Any("error", err))
		return
	}
	if err := e.publisher.Publish(eventType, body); err != nil {
		e.logger.WarnContext(ctx, "failed to publish event", slog.String("type", eventType), slog.Any("error", err))
		return
	}
	e.logger.DebugContext(ctx, "event published", slog.String("type", eventType))
}

func encode(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return json.Marshal(Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	})
}

// LoggingHandler returns a consumer handler that records every received event.
// Undecodable messages are rejected so they are not redelivered forever.
func LoggingHandler(logger *slog.Logger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event Event
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			logger.Warn("discarding malformed event", slog.Uint64("delivery_tag", msg.DeliveryTag), slog.Any("error", err))
			return nil
		}
		logger.Info("event received",
			slog.String("id", event.ID),
			slog.String("type", event.Type),
			slog.Time("occurred_at", event.OccurredAt),
			slog.String("routing_key", msg.RoutingKey),
		)
		return nil
	}
}
