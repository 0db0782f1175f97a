package store

import (
	"context"
	"fmt"
	"time"

	"stays-dashboard/internal/models"

	"github.com/jmoiron/sqlx"
)

// ReconcileWebhook applies one webhook delivery as a single unit of work:
// record the event fingerprint, upsert the reservation and overwrite its
// calendar days. Either everything commits or nothing does, so a failed
// delivery can be retried from scratch.
//
// It returns false when the fingerprint was already recorded. Concurrent
// redeliveries of the same event race on the unique constraint; exactly one
// insert wins and the rest come back with zero rows affected.
//
// res may be nil for a payload without a complete reservation record; the
// event row is still committed so a redelivery of the same broken payload is
// reported as a duplicate.
func (s *Store) ReconcileWebhook(ctx context.Context, event *models.WebhookEvent, res *models.StoredReservation, days []models.CalendarDay) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO webhook_events (event_id, received_at, raw)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (event_id) DO NOTHING`,
		event.EventID, event.ReceivedAt, string(event.Raw))
	if err != nil {
		return false, fmt.Errorf("failed to record webhook event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	if res != nil {
		if err := upsertReservationTx(ctx, tx, res); err != nil {
			return false, err
		}
		for _, day := range days {
			if err := upsertCalendarDayTx(ctx, tx, day); err != nil {
				return false, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit webhook reconcile: %w", err)
	}
	return true, nil
}

func upsertReservationTx(ctx context.Context, tx *sqlx.Tx, res *models.StoredReservation) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (id, listing_id, checkin, checkout, gross_total, channel, guest_hash, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
			listing_id = EXCLUDED.listing_id,
			checkin = EXCLUDED.checkin,
			checkout = EXCLUDED.checkout,
			gross_total = EXCLUDED.gross_total,
			channel = EXCLUDED.channel,
			guest_hash = EXCLUDED.guest_hash,
			updated_at = EXCLUDED.updated_at`,
		res.ID, res.ListingID, res.Checkin, res.Checkout,
		res.GrossTotal, res.Channel, res.GuestHash, res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert reservation %s: %w", res.ID, err)
	}
	return nil
}

func upsertCalendarDayTx(ctx context.Context, tx *sqlx.Tx, day models.CalendarDay) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO calendars (listing_id, date, reserved, source)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (listing_id, date) DO UPDATE SET
			reserved = EXCLUDED.reserved,
			source = EXCLUDED.source`,
		day.ListingID, day.Date, day.Reserved, day.Source)
	if err != nil {
		return fmt.Errorf("failed to upsert calendar day %s/%s: %w",
			day.ListingID, day.Date.Format(models.DateLayout), err)
	}
	return nil
}

// GetReservationsOverlapping returns stored reservations whose stay touches
// the [start, end] date range, optionally filtered by listing.
func (s *Store) GetReservationsOverlapping(ctx context.Context, start, end time.Time, listingID string) ([]models.StoredReservation, error) {
	query := `SELECT * FROM reservations WHERE checkin <= $1 AND checkout >= $2`
	args := []interface{}{end, start}

	if listingID != "" {
		query += ` AND listing_id = $3`
		args = append(args, listingID)
	}
	query += ` ORDER BY checkin`

	var reservations []models.StoredReservation
	err := s.db.SelectContext(ctx, &reservations, query, args...)
	return reservations, err
}

// GetReservationByID retrieves a stored reservation by its identifier.
func (s *Store) GetReservationByID(ctx context.Context, id string) (*models.StoredReservation, error) {
	var res models.StoredReservation
	err := s.db.GetContext(ctx, &res, "SELECT * FROM reservations WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetActiveListings returns the distinct listings known from reservations and
// calendar rows.
func (s *Store) GetActiveListings(ctx context.Context) ([]models.Listing, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids,
		`SELECT DISTINCT listing_id FROM (
			SELECT listing_id FROM reservations
			UNION
			SELECT listing_id FROM calendars
		) AS units ORDER BY listing_id`)
	if err != nil {
		return nil, err
	}

	listings := make([]models.Listing, 0, len(ids))
	for _, id := range ids {
		listings = append(listings, models.Listing{ID: id, Nome: fmt.Sprintf("Unidade %s", id)})
	}
	return listings, nil
}

// GetCalendarDays returns the derived calendar rows for a listing/date range.
func (s *Store) GetCalendarDays(ctx context.Context, listingID string, start, end time.Time) ([]models.CalendarDay, error) {
	var days []models.CalendarDay
	err := s.db.SelectContext(ctx, &days,
		`SELECT * FROM calendars WHERE listing_id = $1 AND date BETWEEN $2 AND $3 ORDER BY date`,
		listingID, start, end)
	return days, err
}
