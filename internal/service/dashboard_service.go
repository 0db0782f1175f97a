package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stays-dashboard/internal/cache"
	"stays-dashboard/internal/calendar"
	"stays-dashboard/internal/models"
	"stays-dashboard/internal/repasse"
	"stays-dashboard/internal/stays"
	"stays-dashboard/internal/store"
	"stays-dashboard/internal/util"

	"go.uber.org/zap"
)

// ErrInvalidMes signals a malformed month query parameter; the API layer maps
// it to a 400 instead of a 500.
var ErrInvalidMes = errors.New("Formato de mês inválido. Use YYYY-MM")

// CalendarioResponse is the month occupancy view.
type CalendarioResponse struct {
	Mes  string         `json:"mes"`
	Dias []calendar.Dia `json:"dias"`
}

// DashboardService serves the read side of the dashboard: reservations,
// month calendar, payout estimate and occupancy. Responses are cached under a
// short TTL; reservation data comes from the Stays API when configured and
// from the webhook-fed store otherwise.
type DashboardService struct {
	store                 *store.Store
	cache                 *cache.Client
	stays                 *stays.Client
	metaRepasse           float64
	incluirLimpezaDefault bool
	logger                *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(st *store.Store, ca *cache.Client, sc *stays.Client, metaRepasse float64, incluirLimpezaDefault bool) *DashboardService {
	return &DashboardService{
		store:                 st,
		cache:                 ca,
		stays:                 sc,
		metaRepasse:           metaRepasse,
		incluirLimpezaDefault: incluirLimpezaDefault,
		logger:                util.GetLogger(),
	}
}

// IncluirLimpezaDefault exposes the configured cleaning-fee default.
func (s *DashboardService) IncluirLimpezaDefault() bool {
	return s.incluirLimpezaDefault
}

// GetReservas lists reservations in [from, to], optionally for one listing.
func (s *DashboardService) GetReservas(ctx context.Context, from, to, listingID string) ([]models.Reserva, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.GetReservas")
	defer span.End()

	listingKey := listingID
	if listingKey == "" {
		listingKey = "all"
	}
	cacheKey := fmt.Sprintf("reservas_%s_%s_%s", from, to, listingKey)

	var cached []models.Reserva
	if s.fromCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	reservas, err := s.fetchReservations(ctx, from, to, listingID)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, cacheKey, reservas)
	return reservas, nil
}

// GetCalendario builds the per-day view for a YYYY-MM month.
func (s *DashboardService) GetCalendario(ctx context.Context, mes string) (*CalendarioResponse, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.GetCalendario")
	defer span.End()

	year, month, err := ParseMes(mes)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("calendario_%s", mes)
	var cached CalendarioResponse
	if s.fromCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	from, to := monthBounds(year, month)
	reservas, err := s.fetchReservations(ctx, from, to, "")
	if err != nil {
		return nil, err
	}

	result := &CalendarioResponse{
		Mes:  mes,
		Dias: calendar.MonthDays(reservas, year, month),
	}

	s.toCache(ctx, cacheKey, result)
	return result, nil
}

// GetRepasse computes the payout estimate for a YYYY-MM month. incluirLimpeza
// nil falls back to the configured default.
func (s *DashboardService) GetRepasse(ctx context.Context, mes string, incluirLimpeza *bool) (*repasse.Resultado, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.GetRepasse")
	defer span.End()

	year, month, err := ParseMes(mes)
	if err != nil {
		return nil, err
	}

	limpeza := s.incluirLimpezaDefault
	if incluirLimpeza != nil {
		limpeza = *incluirLimpeza
	}

	cacheKey := fmt.Sprintf("repasse_%s_%t", mes, limpeza)
	var cached repasse.Resultado
	if s.fromCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	from, to := monthBounds(year, month)
	reservas, err := s.fetchReservations(ctx, from, to, "")
	if err != nil {
		return nil, err
	}

	result := repasse.Calcular(reservas, limpeza, s.metaRepasse)
	util.RepasseComputedTotal.Inc()

	s.toCache(ctx, cacheKey, result)
	return result, nil
}

// GetOcupacao summarizes occupancy for a YYYY-MM month.
func (s *DashboardService) GetOcupacao(ctx context.Context, mes string) (*calendar.Ocupacao, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.GetOcupacao")
	defer span.End()

	year, month, err := ParseMes(mes)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("ocupacao_%s", mes)
	var cached calendar.Ocupacao
	if s.fromCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	from, to := monthBounds(year, month)
	reservas, err := s.fetchReservations(ctx, from, to, "")
	if err != nil {
		return nil, err
	}

	result := calendar.CalcularOcupacao(reservas, calendar.DaysInMonth(year, month))

	s.toCache(ctx, cacheKey, result)
	return &result, nil
}

// GetListings lists the active units known to the store.
func (s *DashboardService) GetListings(ctx context.Context) ([]models.Listing, error) {
	return s.store.GetActiveListings(ctx)
}

// fetchReservations prefers the Stays API; without credentials it serves the
// webhook-fed store, falling back to sample data when the store is empty.
func (s *DashboardService) fetchReservations(ctx context.Context, from, to, listingID string) ([]models.Reserva, error) {
	if s.stays.Configured() {
		return s.stays.ListReservations(ctx, from, to, listingID)
	}

	start, errStart := time.Parse(models.DateLayout, from)
	end, errEnd := time.Parse(models.DateLayout, to)
	if errStart == nil && errEnd == nil && s.store != nil {
		stored, err := s.store.GetReservationsOverlapping(ctx, start, end, listingID)
		if err != nil {
			return nil, fmt.Errorf("failed to query reservations: %w", err)
		}
		if len(stored) > 0 {
			reservas := make([]models.Reserva, 0, len(stored))
			for _, res := range stored {
				reservas = append(reservas, toReserva(res))
			}
			return reservas, nil
		}
	}

	return s.stays.ListReservations(ctx, from, to, listingID)
}

// toReserva exposes a stored reservation without guest PII: the display name
// is rebuilt from the hash prefix and the phone is never surfaced.
func toReserva(res models.StoredReservation) models.Reserva {
	hashPrefix := res.GuestHash
	if len(hashPrefix) > 8 {
		hashPrefix = hashPrefix[:8]
	}
	return models.Reserva{
		ID:         res.ID,
		ListingID:  res.ListingID,
		Checkin:    res.Checkin.Format(models.DateLayout),
		Checkout:   res.Checkout.Format(models.DateLayout),
		TotalBruto: res.GrossTotal,
		Taxas:      0,
		Canal:      res.Channel,
		Hospede:    fmt.Sprintf("Hóspede %s", hashPrefix),
	}
}

func (s *DashboardService) fromCache(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		util.CacheMissesTotal.Inc()
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("Cache entry corrupted", zap.String("key", key), zap.Error(err))
		return false
	}
	util.CacheHitsTotal.Inc()
	return true
}

func (s *DashboardService) toCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// ParseMes validates a YYYY-MM month query.
func ParseMes(mes string) (year, month int, err error) {
	t, parseErr := time.Parse("2006-01", mes)
	if parseErr != nil {
		return 0, 0, ErrInvalidMes
	}
	return t.Year(), int(t.Month()), nil
}

// monthBounds returns the first and last date of a month as YYYY-MM-DD.
func monthBounds(year, month int) (string, string) {
	first := fmt.Sprintf("%04d-%02d-01", year, month)
	last := fmt.Sprintf("%04d-%02d-%02d", year, month, calendar.DaysInMonth(year, month))
	return first, last
}
