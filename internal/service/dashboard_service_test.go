package service

import (
	"testing"
	"time"

	"stays-dashboard/internal/models"
	"stays-dashboard/internal/webhook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMes(t *testing.T) {
	year, month, err := ParseMes("2024-02")
	require.NoError(t, err)
	assert.Equal(t, 2024, year)
	assert.Equal(t, 2, month)

	for _, bad := range []string{"", "2024", "2024-13", "02-2024", "2024-2", "abc"} {
		_, _, err := ParseMes(bad)
		assert.ErrorIs(t, err, ErrInvalidMes, "mes=%q", bad)
	}
}

func TestMonthBounds(t *testing.T) {
	from, to := monthBounds(2024, 2)
	assert.Equal(t, "2024-02-01", from)
	assert.Equal(t, "2024-02-29", to)

	from, to = monthBounds(2023, 12)
	assert.Equal(t, "2023-12-01", from)
	assert.Equal(t, "2023-12-31", to)
}

func TestToReservaMasksGuest(t *testing.T) {
	hash := webhook.GuestHash("Maria Santos", "(11) 91234-5678")
	stored := models.StoredReservation{
		ID:         "R1",
		ListingID:  "L7",
		Checkin:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Checkout:   time.Date(2024, 2, 6, 0, 0, 0, 0, time.UTC),
		GrossTotal: 1200.5,
		Channel:    "Airbnb",
		GuestHash:  hash,
	}

	reserva := toReserva(stored)

	assert.Equal(t, "R1", reserva.ID)
	assert.Equal(t, "2024-02-01", reserva.Checkin)
	assert.Equal(t, "2024-02-06", reserva.Checkout)
	assert.Equal(t, "Hóspede "+hash[:8], reserva.Hospede)
	assert.Empty(t, reserva.Telefone)
	assert.NotContains(t, reserva.Hospede, "Maria")
}
