package model

import "github.com/shopspring/decimal"

// Recibo is everything needed to render a customer receipt after checkout.
// It is built from the ticket snapshot, so names survive later catalog edits.
type Recibo struct {
	VentaID      int64           `json:"venta_id"`
	CajaID       int64           `json:"caja_id"`
	Fecha        string          `json:"fecha"`
	MedioPago    MedioPago       `json:"medio_pago"`
	Lineas       []ReciboLinea   `json:"lineas"`
	Bruto        decimal.Decimal `json:"bruto"`
	Descuento    decimal.Decimal `json:"descuento"`
	Total        decimal.Decimal `json:"total"`
	ClienteEmail string          `json:"cliente_email,omitempty"`
}

type ReciboLinea struct {
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Descuento      decimal.Decimal `json:"descuento"`
	Total          decimal.Decimal `json:"total"`
}
