// Package repasse computes the host payout estimate for a set of reservations.
//
// The breakdown per reservation is:
//
//	limpeza   = 15% of the gross sale (optional)
//	taxa_api  =  3% of the gross sale
//	comissao  = 10% of the gross sale
//	liquido   = gross - limpeza - taxa_api - comissao - extra fees
//
// Sums are kept at full float64 precision; rounding to two decimals happens
// only on the values placed into the result.
package repasse

import (
	"math"

	"stays-dashboard/internal/models"
)

// Fee rates applied to the gross sale amount.
const (
	TaxaLimpezaRate       = 0.15
	TaxaAPIRate           = 0.03
	ComissaoAnfitriaoRate = 0.10
)

// Progress statuses relative to the configured goal.
const (
	StatusMetaBatida    = "meta batida"
	StatusProximoDaMeta = "próximo da meta"
	StatusEmProgresso   = "em progresso"
	StatusInicioPeriodo = "início do período"
)

// DetalheReserva is the per-reservation fee breakdown.
type DetalheReserva struct {
	ID                string  `json:"id"`
	Hospede           string  `json:"hospede"`
	Checkin           string  `json:"checkin"`
	Checkout          string  `json:"checkout"`
	ValorBruto        float64 `json:"valor_bruto"`
	TaxaLimpeza       float64 `json:"taxa_limpeza"`
	TaxaAPI           float64 `json:"taxa_api"`
	ComissaoAnfitriao float64 `json:"comissao_anfitriao"`
	TaxasExtras       float64 `json:"taxas_extras"`
	RepasseLiquido    float64 `json:"repasse_liquido"`
}

// Detalhes aggregates the breakdown across all reservations.
type Detalhes struct {
	TotalVendas            float64          `json:"total_vendas"`
	TotalLimpeza           float64          `json:"total_limpeza"`
	TotalTaxaAPI           float64          `json:"total_taxa_api"`
	TotalComissaoAnfitriao float64          `json:"total_comissao_anfitriao"`
	TotalTaxasExtras       float64          `json:"total_taxas_extras"`
	IncluiuLimpeza         bool             `json:"incluiu_limpeza"`
	NumeroReservas         int              `json:"numero_reservas"`
	Reservas               []DetalheReserva `json:"reservas"`
}

// Resultado is the payout estimate for a period.
type Resultado struct {
	Meta            float64  `json:"meta"`
	RepasseEstimado float64  `json:"repasse_estimado"`
	Status          string   `json:"status"`
	Detalhes        Detalhes `json:"detalhes"`
}

// Calcular computes the payout estimate for the given reservations against the
// configured goal. Missing amounts on a reservation count as zero; an empty
// input yields all-zero totals.
func Calcular(reservas []models.Reserva, incluirLimpeza bool, meta float64) *Resultado {
	var (
		totalVendas   float64
		totalTaxas    float64
		totalLimpeza  float64
		totalComissao float64
		totalTaxaAPI  float64
	)

	detalhes := make([]DetalheReserva, 0, len(reservas))

	for _, reserva := range reservas {
		valorBruto := reserva.TotalBruto
		taxas := reserva.Taxas

		var taxaLimpeza float64
		if incluirLimpeza {
			taxaLimpeza = valorBruto * TaxaLimpezaRate
		}
		taxaAPI := valorBruto * TaxaAPIRate
		comissao := valorBruto * ComissaoAnfitriaoRate

		liquido := valorBruto - taxaLimpeza - taxaAPI - comissao - taxas

		totalVendas += valorBruto
		totalTaxas += taxas
		totalLimpeza += taxaLimpeza
		totalTaxaAPI += taxaAPI
		totalComissao += comissao

		detalhes = append(detalhes, DetalheReserva{
			ID:                reserva.ID,
			Hospede:           reserva.Hospede,
			Checkin:           reserva.Checkin,
			Checkout:          reserva.Checkout,
			ValorBruto:        valorBruto,
			TaxaLimpeza:       taxaLimpeza,
			TaxaAPI:           taxaAPI,
			ComissaoAnfitriao: comissao,
			TaxasExtras:       taxas,
			RepasseLiquido:    liquido,
		})
	}

	repasseTotal := totalVendas - totalLimpeza - totalTaxaAPI - totalComissao - totalTaxas

	return &Resultado{
		Meta:            meta,
		RepasseEstimado: round2(repasseTotal),
		Status:          classify(repasseTotal, meta),
		Detalhes: Detalhes{
			TotalVendas:            round2(totalVendas),
			TotalLimpeza:           round2(totalLimpeza),
			TotalTaxaAPI:           round2(totalTaxaAPI),
			TotalComissaoAnfitriao: round2(totalComissao),
			TotalTaxasExtras:       round2(totalTaxas),
			IncluiuLimpeza:         incluirLimpeza,
			NumeroReservas:         len(reservas),
			Reservas:               detalhes,
		},
	}
}

// classify compares the payout/goal ratio rather than payout against
// goal*threshold, so exact boundary values (e.g. 80% of the goal) land on the
// near side regardless of float rounding in the multiplication.
func classify(repasse, meta float64) string {
	switch {
	case repasse >= meta:
		return StatusMetaBatida
	case repasse/meta >= 0.8:
		return StatusProximoDaMeta
	case repasse/meta >= 0.5:
		return StatusEmProgresso
	default:
		return StatusInicioPeriodo
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
