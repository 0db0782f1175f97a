package repasse

import (
	"math"
	"testing"

	"stays-dashboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcularBreakdown(t *testing.T) {
	reservas := []models.Reserva{
		{ID: "R1", TotalBruto: 1000, Taxas: 50},
	}

	result := Calcular(reservas, true, 3500)

	require.Len(t, result.Detalhes.Reservas, 1)
	detalhe := result.Detalhes.Reservas[0]

	assert.Equal(t, 150.0, detalhe.TaxaLimpeza)
	assert.Equal(t, 30.0, detalhe.TaxaAPI)
	assert.Equal(t, 100.0, detalhe.ComissaoAnfitriao)
	assert.Equal(t, 50.0, detalhe.TaxasExtras)

	// With cleaning included the three fees sum to 28% of gross and the net
	// payout is 72% of gross minus extras.
	assert.InDelta(t, 0.28*1000, detalhe.TaxaLimpeza+detalhe.TaxaAPI+detalhe.ComissaoAnfitriao, 1e-9)
	assert.InDelta(t, 0.72*1000-50, detalhe.RepasseLiquido, 1e-9)
}

func TestCalcularSemLimpeza(t *testing.T) {
	reservas := []models.Reserva{
		{ID: "R1", TotalBruto: 1000, Taxas: 0},
	}

	result := Calcular(reservas, false, 3500)

	detalhe := result.Detalhes.Reservas[0]
	assert.Equal(t, 0.0, detalhe.TaxaLimpeza)
	assert.Equal(t, 0.0, result.Detalhes.TotalLimpeza)
	assert.InDelta(t, 1000-30-100, detalhe.RepasseLiquido, 1e-9)
	assert.False(t, result.Detalhes.IncluiuLimpeza)
}

func TestCalcularTotalsMatchPerReservationNets(t *testing.T) {
	reservas := []models.Reserva{
		{ID: "R1", TotalBruto: 733.37, Taxas: 41.03},
		{ID: "R2", TotalBruto: 1280.51, Taxas: 0},
		{ID: "R3", TotalBruto: 99.99, Taxas: 12.34},
		{ID: "R4", TotalBruto: 0, Taxas: 0},
	}

	for _, incluirLimpeza := range []bool{true, false} {
		result := Calcular(reservas, incluirLimpeza, 3500)

		var somaLiquidos float64
		for _, detalhe := range result.Detalhes.Reservas {
			somaLiquidos += detalhe.RepasseLiquido
		}

		// The aggregate payout and the sum of per-reservation nets are the
		// same number before rounding; only 2dp rounding may separate them.
		assert.InDelta(t, math.Round(somaLiquidos*100)/100, result.RepasseEstimado, 0.005,
			"incluir_limpeza=%t", incluirLimpeza)
	}
}

func TestCalcularStatusBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		repasse float64
		status  string
	}{
		{"meta exata", 3500, StatusMetaBatida},
		{"acima da meta", 4200, StatusMetaBatida},
		{"80 por cento", 2800, StatusProximoDaMeta},
		{"entre 50 e 80", 1750, StatusEmProgresso},
		{"abaixo de 50", 1000, StatusInicioPeriodo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, classify(tt.repasse, 3500))
		})
	}
}

func TestCalcularStatus(t *testing.T) {
	// 10000 gross without cleaning nets 8700, comfortably past the goal.
	result := Calcular([]models.Reserva{{ID: "R1", TotalBruto: 10000}}, false, 3500)
	assert.Equal(t, StatusMetaBatida, result.Status)

	result = Calcular([]models.Reserva{{ID: "R1", TotalBruto: 100}}, false, 3500)
	assert.Equal(t, StatusInicioPeriodo, result.Status)
}

func TestCalcularEmptyInput(t *testing.T) {
	result := Calcular(nil, true, 3500)

	assert.Equal(t, 0.0, result.RepasseEstimado)
	assert.Equal(t, StatusInicioPeriodo, result.Status)
	assert.Equal(t, 0, result.Detalhes.NumeroReservas)
	assert.Equal(t, 0.0, result.Detalhes.TotalVendas)
	assert.Empty(t, result.Detalhes.Reservas)
}

func TestCalcularMissingAmountsTreatedAsZero(t *testing.T) {
	reservas := []models.Reserva{
		{ID: "R1"}, // no gross, no fees
		{ID: "R2", TotalBruto: 500},
	}

	result := Calcular(reservas, true, 3500)

	assert.Equal(t, 500.0, result.Detalhes.TotalVendas)
	assert.Equal(t, 0.0, result.Detalhes.Reservas[0].RepasseLiquido)
}

func TestCalcularRoundsTotals(t *testing.T) {
	reservas := []models.Reserva{
		{ID: "R1", TotalBruto: 100.333, Taxas: 0.111},
	}

	result := Calcular(reservas, true, 3500)

	assert.Equal(t, round2(100.333), result.Detalhes.TotalVendas)
	assert.Equal(t, round2(100.333*0.15), result.Detalhes.TotalLimpeza)
	assert.Equal(t, round2(100.333*0.72-0.111), result.RepasseEstimado)
}
