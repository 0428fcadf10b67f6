package model

import (
	"encoding/json"

	"comercioapp/internal/money"

	"github.com/shopspring/decimal"
)

// Caja is one day's cash register as the remote API stores it.
type Caja struct {
	ID           int64           `json:"id"`
	Fecha        string          `json:"fecha,omitempty"`
	SaldoInicial decimal.Decimal `json:"saldoInicial"`
	SaldoFinal   decimal.Decimal `json:"saldoFinal"`
	CreadoEl     string          `json:"creadoEl,omitempty"`
}

func (c *Caja) UnmarshalJSON(b []byte) error {
	var w struct {
		ID           json.RawMessage `json:"id"`
		Fecha        *string         `json:"fecha"`
		SaldoInicial json.RawMessage `json:"saldoInicial"`
		SaldoFinal   json.RawMessage `json:"saldoFinal"`
		CreadoEl     *string         `json:"creadoEl"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*c = Caja{
		ID:           parseEntero(w.ID),
		SaldoInicial: money.ParseRaw(w.SaldoInicial),
		SaldoFinal:   money.ParseRaw(w.SaldoFinal),
	}
	if w.Fecha != nil {
		c.Fecha = *w.Fecha
	}
	if w.CreadoEl != nil {
		c.CreadoEl = *w.CreadoEl
	}
	return nil
}

// Diferencia is saldoFinal - saldoInicial.
func (c Caja) Diferencia() decimal.Decimal {
	return c.SaldoFinal.Sub(c.SaldoInicial)
}

// CajaUpdate is the body of PUT /cajas/:id.
type CajaUpdate struct {
	ID           int64           `json:"id"`
	SaldoInicial decimal.Decimal `json:"saldoInicial"`
	SaldoFinal   decimal.Decimal `json:"saldoFinal"`
}
