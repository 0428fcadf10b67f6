package model

import (
	"encoding/json"

	"comercioapp/internal/money"

	"github.com/shopspring/decimal"
)

// TipoMovimiento: "ingreso" | "gasto"
type TipoMovimiento string

const (
	TipoIngreso TipoMovimiento = "ingreso"
	TipoGasto   TipoMovimiento = "gasto"
)

// DescripcionVenta is the descripcion of the movement paired with a ticket sale.
const DescripcionVenta = "Venta"

// Movimiento is the body of POST /movimiento and an entry of GET /movimientoall.
type Movimiento struct {
	ID          int64           `json:"id,omitempty"`
	Tipo        TipoMovimiento  `json:"tipo"`
	Monto       decimal.Decimal `json:"monto"`
	Descripcion string          `json:"descripcion"`
	Producto    string          `json:"producto,omitempty"`
	Fecha       string          `json:"fecha"`
	CajaID      int64           `json:"cajaId"`
}

func (m *Movimiento) UnmarshalJSON(b []byte) error {
	var w struct {
		ID          json.RawMessage `json:"id"`
		Tipo        TipoMovimiento  `json:"tipo"`
		Monto       json.RawMessage `json:"monto"`
		Descripcion *string         `json:"descripcion"`
		Producto    *string         `json:"producto"`
		Fecha       *string         `json:"fecha"`
		CajaID      json.RawMessage `json:"cajaId"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*m = Movimiento{
		ID:     parseEntero(w.ID),
		Tipo:   w.Tipo,
		Monto:  money.ParseRaw(w.Monto),
		CajaID: parseEntero(w.CajaID),
	}
	if w.Descripcion != nil {
		m.Descripcion = *w.Descripcion
	}
	if w.Producto != nil {
		m.Producto = *w.Producto
	}
	if w.Fecha != nil {
		m.Fecha = *w.Fecha
	}
	return nil
}

// MovimientoDeVenta builds the ingreso that must follow a registered sale.
func MovimientoDeVenta(v Venta, descripcion string) Movimiento {
	return Movimiento{
		Tipo:        TipoIngreso,
		Monto:       v.Total,
		Descripcion: descripcion,
		Fecha:       v.Fecha,
		CajaID:      v.CajaID,
	}
}
