// Package webhook ingests Stays webhook deliveries: each payload is
// fingerprinted, recorded at most once, and, when it carries a complete
// reservation record, applied to the reservation and calendar tables in a
// single transaction.
package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"stays-dashboard/internal/models"
	"stays-dashboard/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the storage contract the reconciler needs: one transactional
// reconcile that inserts the event row, upserts the reservation and fans out
// the calendar days, or does nothing at all. It reports false when the event
// fingerprint was already recorded.
type Store interface {
	ReconcileWebhook(ctx context.Context, event *models.WebhookEvent, res *models.StoredReservation, days []models.CalendarDay) (bool, error)
}

// Publisher publishes domain events after a committed reconcile.
type Publisher interface {
	PublishReservationUpserted(ctx context.Context, event *models.ReservationUpsertedEvent) error
}

// Outcome describes what a delivery did. Duplicate and a skipped mutation are
// expected results, not errors.
type Outcome struct {
	EventID   string
	Duplicate bool
	Applied   bool
}

// Reconciler applies webhook deliveries to the store.
type Reconciler struct {
	store     Store
	publisher Publisher
	logger    *zap.Logger
}

// NewReconciler creates a reconciler. publisher may be nil when no broker is
// configured.
func NewReconciler(store Store, publisher Publisher) *Reconciler {
	return &Reconciler{
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// reservaPayload is the nested record inside a webhook delivery. Upstream
// sends amounts as JSON numbers and dates as YYYY-MM-DD strings.
type reservaPayload struct {
	Data struct {
		ID         string  `json:"id"`
		ListingID  string  `json:"listing_id"`
		Checkin    string  `json:"checkin"`
		Checkout   string  `json:"checkout"`
		TotalBruto float64 `json:"total_bruto"`
		Taxas      float64 `json:"taxas"`
		Canal      string  `json:"canal"`
		Hospede    string  `json:"hospede"`
		Telefone   string  `json:"telefone"`
	} `json:"data"`
}

// Process handles one webhook delivery end to end. A payload with an already
// seen fingerprint returns a duplicate outcome with no writes. A payload whose
// nested record is incomplete still records the event but applies nothing.
func (r *Reconciler) Process(ctx context.Context, raw []byte) (*Outcome, error) {
	ctx, span := util.StartSpan(ctx, "Reconciler.Process")
	defer span.End()

	eventID, err := EventID(raw)
	if err != nil {
		return nil, err
	}

	util.WebhooksReceivedTotal.Inc()

	event := &models.WebhookEvent{
		EventID:    eventID,
		ReceivedAt: time.Now().UTC(),
		Raw:        raw,
	}

	res, days := r.buildMutation(raw, eventID)

	inserted, err := r.store.ReconcileWebhook(ctx, event, res, days)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile webhook event %s: %w", eventID, err)
	}

	if !inserted {
		util.WebhooksDuplicateTotal.Inc()
		r.logger.Info("Webhook event already processed", zap.String("event_id", eventID))
		return &Outcome{EventID: eventID, Duplicate: true}, nil
	}

	if res == nil {
		r.logger.Info("Webhook event recorded without reservation data",
			zap.String("event_id", eventID))
		return &Outcome{EventID: eventID}, nil
	}

	util.ReservationsUpsertedTotal.Inc()
	r.logger.Info("Reservation reconciled from webhook",
		zap.String("event_id", eventID),
		zap.String("reservation_id", res.ID),
		zap.String("listing_id", res.ListingID),
		zap.Int("calendar_days", len(days)))

	r.publishUpserted(ctx, res)

	return &Outcome{EventID: eventID, Applied: true}, nil
}

// buildMutation extracts the reservation upsert and calendar fan-out from the
// payload. It returns nil when any required field is missing or a date does
// not parse; the caller still records the event in that case.
func (r *Reconciler) buildMutation(raw []byte, eventID string) (*models.StoredReservation, []models.CalendarDay) {
	var payload reservaPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, nil
	}

	data := payload.Data
	if data.ID == "" || data.ListingID == "" || data.Checkin == "" || data.Checkout == "" {
		return nil, nil
	}

	checkin, err := time.Parse(models.DateLayout, data.Checkin)
	if err != nil {
		r.logger.Warn("Webhook reservation has invalid checkin",
			zap.String("event_id", eventID), zap.String("checkin", data.Checkin))
		return nil, nil
	}
	checkout, err := time.Parse(models.DateLayout, data.Checkout)
	if err != nil {
		r.logger.Warn("Webhook reservation has invalid checkout",
			zap.String("event_id", eventID), zap.String("checkout", data.Checkout))
		return nil, nil
	}

	now := time.Now().UTC()
	res := &models.StoredReservation{
		ID:         data.ID,
		ListingID:  data.ListingID,
		Checkin:    checkin,
		Checkout:   checkout,
		GrossTotal: data.TotalBruto,
		Channel:    data.Canal,
		GuestHash:  GuestHash(data.Hospede, data.Telefone),
		UpdatedAt:  now,
	}

	var days []models.CalendarDay
	for d := checkin; d.Before(checkout); d = d.AddDate(0, 0, 1) {
		days = append(days, models.CalendarDay{
			ListingID: data.ListingID,
			Date:      d,
			Reserved:  true,
			Source:    models.CalendarSourceWebhook,
		})
	}

	return res, days
}

func (r *Reconciler) publishUpserted(ctx context.Context, res *models.StoredReservation) {
	if r.publisher == nil {
		return
	}

	event := &models.ReservationUpsertedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeReservationUpserted,
			Timestamp: time.Now(),
		},
		ReservationID: res.ID,
		ListingID:     res.ListingID,
		Checkin:       res.Checkin.Format(models.DateLayout),
		Checkout:      res.Checkout.Format(models.DateLayout),
	}

	if err := r.publisher.PublishReservationUpserted(ctx, event); err != nil {
		r.logger.Error("Failed to publish ReservationUpserted event", zap.Error(err))
	}
}

// GuestHash derives the only guest identifier that is ever persisted.
// Plaintext name and phone stay out of the database.
func GuestHash(hospede, telefone string) string {
	sum := sha256.Sum256([]byte(hospede + telefone))
	return hex.EncodeToString(sum[:])[:16]
}
