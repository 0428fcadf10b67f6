package dto

import (
	"comercioapp/internal/model"
	"comercioapp/internal/ticket"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AgregarItemRequest struct {
	ProductoID int64 `json:"producto_id" validate:"required,min=1"`
}

// ActualizarLineaRequest: nil fields are left unchanged. Out-of-range values
// are clamped by the ticket, not rejected.
type ActualizarLineaRequest struct {
	Cantidad  *int             `json:"cantidad"`
	Descuento *decimal.Decimal `json:"descuento"`
}

type CobrarRequest struct {
	MedioPago string `json:"medio_pago" validate:"required,oneof=efectivo debito credito mercado_pago"`
	// ClienteEmail: optional; when present the receipt PDF is mailed.
	ClienteEmail string `json:"cliente_email" validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineaResponse struct {
	ProductoID int64           `json:"producto_id"`
	Nombre     string          `json:"nombre"`
	Precio     decimal.Decimal `json:"precio"`
	Cantidad   int             `json:"cantidad"`
	Descuento  decimal.Decimal `json:"descuento"`
	Total      decimal.Decimal `json:"total"`
}

type TicketResponse struct {
	CajaID         int64           `json:"caja_id"`
	Lineas         []LineaResponse `json:"lineas"`
	Totales        ticket.Totales  `json:"totales"`
	Cobrando       bool            `json:"cobrando"`
	CobroPendiente bool            `json:"cobro_pendiente"`
}

type CobroResponse struct {
	VentaID int64       `json:"venta_id"`
	Venta   model.Venta `json:"venta"`
	// MovimientoPendiente: the sale is registered and its ingreso is queued
	// in the outbox instead of confirmed by the remote API.
	MovimientoPendiente bool           `json:"movimiento_pendiente"`
	Aviso               string         `json:"aviso,omitempty"`
	Ticket              TicketResponse `json:"ticket"`
}

// NewTicketResponse renders a ticket with rounded totals.
func NewTicketResponse(cajaID int64, t *ticket.Ticket) TicketResponse {
	lineas := t.Lineas()
	out := TicketResponse{
		CajaID:  cajaID,
		Lineas:  make([]LineaResponse, 0, len(lineas)),
		Totales: t.Totales().Redondear(),
	}
	for _, l := range lineas {
		out.Lineas = append(out.Lineas, LineaResponse{
			ProductoID: l.ProductoID,
			Nombre:     l.Nombre,
			Precio:     l.Precio,
			Cantidad:   l.Cantidad,
			Descuento:  l.Descuento,
			Total:      l.Neto().Round(2),
		})
	}
	return out
}
