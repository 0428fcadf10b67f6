package dto

import (
	"comercioapp/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	SaldoInicial decimal.Decimal `json:"saldoInicial" validate:"min=0"`
}

type ActualizarCajaRequest struct {
	SaldoInicial decimal.Decimal `json:"saldoInicial" validate:"min=0"`
	SaldoFinal   decimal.Decimal `json:"saldoFinal"   validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AbrirCajaResponse struct {
	ID int64 `json:"id"`
}

// CajaDelDiaResponse: Caja is nil when no caja was opened today; the UI must
// then ask for the opening balance.
type CajaDelDiaResponse struct {
	Fecha string      `json:"fecha"`
	Caja  *model.Caja `json:"caja"`
}

type ResumenCajasResponse struct {
	Cantidad     int             `json:"cantidad"`
	TotalGeneral decimal.Decimal `json:"total_general"` // Σ saldoFinal − saldoInicial
}
