package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"stays-dashboard/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishReservationUpserted publishes a ReservationUpserted event
func (ep *EventPublisher) PublishReservationUpserted(ctx context.Context, event *models.ReservationUpsertedEvent) error {
	key := fmt.Sprintf("reserva-%s", event.ReservationID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered handlers
type EventHandler struct {
	onReservationUpserted func(context.Context, *models.ReservationUpsertedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnReservationUpserted registers a handler for ReservationUpserted events
func (eh *EventHandler) OnReservationUpserted(handler func(context.Context, *models.ReservationUpsertedEvent) error) {
	eh.onReservationUpserted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeReservationUpserted:
		if eh.onReservationUpserted != nil {
			var event models.ReservationUpsertedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ReservationUpserted event: %w", err)
			}
			return eh.onReservationUpserted(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
