package dto

import "github.com/shopspring/decimal"

// ServicioRequest registers a phone top-up (recarga) or a bill payment (pago).
type ServicioRequest struct {
	Tipo      string          `json:"tipo"      validate:"required,oneof=recarga pago"`
	Proveedor string          `json:"proveedor" validate:"required"`
	Numero    string          `json:"numero"    validate:"required"`
	Monto     decimal.Decimal `json:"monto"     validate:"gt=0"`
}

type ServicioResponse struct {
	ID        int64           `json:"id"`
	Fecha     string          `json:"fecha"` // dd/mm/yyyy
	Hora      string          `json:"hora"`  // HH:MM
	Tipo      string          `json:"tipo"`
	Proveedor string          `json:"proveedor"`
	Numero    string          `json:"numero"`
	Monto     decimal.Decimal `json:"monto"`
	Comision  decimal.Decimal `json:"comision"`
	Total     decimal.Decimal `json:"total"`
	Estado    string          `json:"estado"`
	// MovimientoPendiente: see CobroResponse.
	MovimientoPendiente bool `json:"movimiento_pendiente"`
}
