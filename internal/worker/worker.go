// Package worker runs the cache-invalidation consumer: after a reservation is
// reconciled from a webhook, its event invalidates every cached month view the
// stay touches, so the read side converges faster than the cache TTL.
package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"stays-dashboard/internal/broker"
	"stays-dashboard/internal/cache"
	"stays-dashboard/internal/models"
	"stays-dashboard/internal/util"

	"go.uber.org/zap"
)

// InvalidationWorker consumes ReservationUpserted events and drops the
// affected cache entries.
type InvalidationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	cache        *cache.Client
	logger       *zap.Logger
}

// NewInvalidationWorker creates a new invalidation worker
func NewInvalidationWorker(consumer *broker.Consumer, cacheClient *cache.Client) *InvalidationWorker {
	w := &InvalidationWorker{
		consumer: consumer,
		cache:    cacheClient,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnReservationUpserted(w.handleReservationUpserted)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *InvalidationWorker) Start(ctx context.Context) error {
	log.Println("Starting cache invalidation worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *InvalidationWorker) Stop() error {
	log.Println("Stopping cache invalidation worker...")
	return w.consumer.Close()
}

func (w *InvalidationWorker) handleReservationUpserted(ctx context.Context, event *models.ReservationUpsertedEvent) error {
	meses, err := MonthsTouched(event.Checkin, event.Checkout)
	if err != nil {
		w.logger.Warn("Invalidation event carries invalid dates",
			zap.String("reservation_id", event.ReservationID),
			zap.Error(err))
		return nil
	}

	for _, mes := range meses {
		for _, prefix := range []string{"repasse_" + mes, "calendario_" + mes, "ocupacao_" + mes} {
			if err := w.cache.DeletePrefix(ctx, prefix); err != nil {
				return fmt.Errorf("failed to invalidate cache for %s: %w", mes, err)
			}
		}
	}

	// Reservation list keys are keyed by arbitrary ranges, so drop them all.
	if err := w.cache.DeletePrefix(ctx, "reservas_"); err != nil {
		return fmt.Errorf("failed to invalidate reservation cache: %w", err)
	}

	util.CacheInvalidationsTotal.Add(float64(len(meses)))
	w.logger.Info("Cache invalidated for reservation",
		zap.String("reservation_id", event.ReservationID),
		zap.Strings("meses", meses))
	return nil
}

// MonthsTouched returns every YYYY-MM month the stay [checkin, checkout]
// overlaps, checkout month included since that day still renders a tag.
func MonthsTouched(checkin, checkout string) ([]string, error) {
	start, err := time.Parse(models.DateLayout, checkin)
	if err != nil {
		return nil, fmt.Errorf("invalid checkin %q: %w", checkin, err)
	}
	end, err := time.Parse(models.DateLayout, checkout)
	if err != nil {
		return nil, fmt.Errorf("invalid checkout %q: %w", checkout, err)
	}

	var meses []string
	for cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !cursor.After(end); cursor = cursor.AddDate(0, 1, 0) {
		meses = append(meses, cursor.Format("2006-01"))
	}
	return meses, nil
}
