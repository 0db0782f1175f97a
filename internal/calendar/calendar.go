// Package calendar derives per-day occupancy views from reservation spans.
// A reservation occupies every night from checkin (inclusive) up to but
// excluding checkout.
package calendar

import (
	"fmt"
	"math"
	"time"

	"stays-dashboard/internal/models"
	"stays-dashboard/internal/util"

	"go.uber.org/zap"
)

// Day statuses as seen from a single calendar date.
const (
	StatusCheckin  = "checkin"
	StatusCheckout = "checkout"
	StatusOcupado  = "ocupado"
)

// Ocupacao summarizes how much of a period is covered by reservations.
type Ocupacao struct {
	DiasOcupados int     `json:"dias_ocupados"`
	DiasTotais   int     `json:"dias_totais"`
	TaxaOcupacao float64 `json:"taxa_ocupacao"`
	DiasLivres   int     `json:"dias_livres"`
}

// ReservaDoDia is one reservation touching a calendar date.
type ReservaDoDia struct {
	ID         string  `json:"id"`
	Hospede    string  `json:"hospede"`
	Status     string  `json:"status"`
	TotalBruto float64 `json:"total_bruto"`
}

// Dia is one entry of the month view. Reservas is never nil.
type Dia struct {
	Dia      int            `json:"dia"`
	Data     string         `json:"data"`
	Reservas []ReservaDoDia `json:"reservas"`
}

// CalcularOcupacao counts the distinct dates covered by any reservation and
// relates them to the period length. Reservations with unparseable dates are
// logged and skipped; the rest of the batch is still counted.
func CalcularOcupacao(reservas []models.Reserva, periodoDias int) Ocupacao {
	diasComReserva := make(map[string]struct{})

	for _, reserva := range reservas {
		checkin, checkout, err := parseSpan(reserva)
		if err != nil {
			util.GetLogger().Warn("Skipping reservation with invalid dates",
				zap.String("reservation_id", reserva.ID),
				zap.Error(err))
			continue
		}

		for d := checkin; d.Before(checkout); d = d.AddDate(0, 0, 1) {
			diasComReserva[d.Format(models.DateLayout)] = struct{}{}
		}
	}

	ocupados := len(diasComReserva)

	var taxa float64
	if periodoDias > 0 {
		taxa = float64(ocupados) / float64(periodoDias) * 100
	}

	return Ocupacao{
		DiasOcupados: ocupados,
		DiasTotais:   periodoDias,
		TaxaOcupacao: math.Round(taxa*100) / 100,
		DiasLivres:   periodoDias - ocupados,
	}
}

// MonthDays builds the per-day sequence for a calendar month. Every date of
// the month gets exactly one entry; each reservation touching a date
// contributes at most one status tag, evaluated in the fixed order
// checkin, checkout, ocupado.
func MonthDays(reservas []models.Reserva, year, month int) []Dia {
	numDays := DaysInMonth(year, month)
	dias := make([]Dia, 0, numDays)

	for day := 1; day <= numDays; day++ {
		dayStr := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		doDia := make([]ReservaDoDia, 0)

		for _, reserva := range reservas {
			status := statusForDate(reserva, dayStr)
			if status == "" {
				continue
			}
			doDia = append(doDia, ReservaDoDia{
				ID:         reserva.ID,
				Hospede:    reserva.Hospede,
				Status:     status,
				TotalBruto: reserva.TotalBruto,
			})
		}

		dias = append(dias, Dia{Dia: day, Data: dayStr, Reservas: doDia})
	}

	return dias
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// statusForDate relies on the lexicographic ordering of YYYY-MM-DD strings,
// which matches chronological ordering.
func statusForDate(reserva models.Reserva, date string) string {
	switch {
	case reserva.Checkin == date:
		return StatusCheckin
	case reserva.Checkout == date:
		return StatusCheckout
	case reserva.Checkin < date && date < reserva.Checkout:
		return StatusOcupado
	}
	return ""
}

func parseSpan(reserva models.Reserva) (time.Time, time.Time, error) {
	checkin, err := time.Parse(models.DateLayout, reserva.Checkin)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid checkin %q: %w", reserva.Checkin, err)
	}
	checkout, err := time.Parse(models.DateLayout, reserva.Checkout)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid checkout %q: %w", reserva.Checkout, err)
	}
	return checkin, checkout, nil
}
