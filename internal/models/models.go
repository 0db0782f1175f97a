package models

import "time"

// Reserva is a reservation as exposed by the dashboard. When it comes from the
// Stays API the guest fields are plaintext; when it comes from our store only
// the derived guest hash is available and Hospede carries a masked display name.
type Reserva struct {
	ID         string  `json:"id"`
	ListingID  string  `json:"listing_id"`
	Checkin    string  `json:"checkin"`
	Checkout   string  `json:"checkout"`
	TotalBruto float64 `json:"total_bruto"`
	Taxas      float64 `json:"taxas"`
	Canal      string  `json:"canal"`
	Hospede    string  `json:"hospede"`
	Telefone   string  `json:"telefone,omitempty"`
}

// StoredReservation is the persisted form of a reservation. Guest identity is
// kept only as a salted hash; plaintext name and phone are never written.
type StoredReservation struct {
	ID         string    `db:"id"`
	ListingID  string    `db:"listing_id"`
	Checkin    time.Time `db:"checkin"`
	Checkout   time.Time `db:"checkout"`
	GrossTotal float64   `db:"gross_total"`
	Channel    string    `db:"channel"`
	GuestHash  string    `db:"guest_hash"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// CalendarDay marks one listing/date as reserved. Always derived from a
// reservation span; the reservation row stays authoritative.
type CalendarDay struct {
	ID        int64     `db:"id"`
	ListingID string    `db:"listing_id"`
	Date      time.Time `db:"date"`
	Reserved  bool      `db:"reserved"`
	Source    string    `db:"source"`
	CreatedAt time.Time `db:"created_at"`
}

// WebhookEvent is the append-only dedup record for inbound webhook deliveries.
type WebhookEvent struct {
	ID         int64     `db:"id"`
	EventID    string    `db:"event_id"`
	ReceivedAt time.Time `db:"received_at"`
	Raw        []byte    `db:"raw"`
}

// Listing is an active rentable unit known to the store.
type Listing struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
}

// Calendar day provenance values.
const (
	CalendarSourceWebhook = "webhook"
)

// DateLayout is the calendar-date wire format used across the Stays API,
// webhooks and our own responses.
const DateLayout = "2006-01-02"
