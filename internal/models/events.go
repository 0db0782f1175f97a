package models

import "time"

// Event types
const (
	EventTypeReservationUpserted = "RESERVATION_UPSERTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ReservationUpsertedEvent is published after a webhook delivery has been
// committed to the store, so downstream consumers can refresh derived views.
type ReservationUpsertedEvent struct {
	BaseEvent
	ReservationID string `json:"reservation_id"`
	ListingID     string `json:"listing_id"`
	Checkin       string `json:"checkin"`
	Checkout      string `json:"checkout"`
}
