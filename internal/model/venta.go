package model

import (
	"encoding/json"
	"strings"

	"comercioapp/internal/money"

	"github.com/shopspring/decimal"
)

// MedioPago is the payment method recorded on a sale.
type MedioPago string

const (
	MedioEfectivo    MedioPago = "efectivo"
	MedioDebito      MedioPago = "debito"
	MedioCredito     MedioPago = "credito"
	MedioMercadoPago MedioPago = "mercado_pago"
)

// MediosPago lists the accepted values in display order.
var MediosPago = []MedioPago{MedioEfectivo, MedioDebito, MedioCredito, MedioMercadoPago}

// ParseMedioPago normalizes s and reports whether it is an accepted method.
func ParseMedioPago(s string) (MedioPago, bool) {
	m := MedioPago(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range MediosPago {
		if v == m {
			return m, true
		}
	}
	return "", false
}

// DetalleVenta is one line of a sale as the remote API stores it.
// Total is the discounted line amount rounded to 2 decimals.
type DetalleVenta struct {
	ProductoID     int64           `json:"producto_id"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total"`
	Descuento      decimal.Decimal `json:"descuento"`
	Descripcion    string          `json:"descripcion,omitempty"`
}

// Venta is the body of POST /ventas.
type Venta struct {
	Fecha     string          `json:"fecha"`
	Total     decimal.Decimal `json:"total"`
	CajaID    int64           `json:"cajaId"`
	MedioPago MedioPago       `json:"medio_pago"`
	Detalles  []DetalleVenta  `json:"detalles"`
}

// VentaCreada is what the gateway keeps from the POST /ventas response.
// The remote API answers either {id} or {venta:{id}}; ID is 0 when absent.
type VentaCreada struct {
	ID int64 `json:"id"`
}

func (v *VentaCreada) UnmarshalJSON(b []byte) error {
	var w struct {
		ID    json.RawMessage `json:"id"`
		Venta *struct {
			ID json.RawMessage `json:"id"`
		} `json:"venta"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	v.ID = parseEntero(w.ID)
	if v.ID == 0 && w.Venta != nil {
		v.ID = parseEntero(w.Venta.ID)
	}
	return nil
}

// ── Reporting shapes (GET /ventasAll) ────────────────────────────────────────

// ProductoVendido is the product snapshot embedded in a stored detalle.
type ProductoVendido struct {
	Nombre       string          `json:"nombre"`
	PrecioCompra decimal.Decimal `json:"precioCompra"`
}

func (p *ProductoVendido) UnmarshalJSON(b []byte) error {
	var w struct {
		Nombre       *string         `json:"nombre"`
		PrecioCompra json.RawMessage `json:"precioCompra"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = ProductoVendido{PrecioCompra: money.ParseRaw(w.PrecioCompra)}
	if w.Nombre != nil {
		p.Nombre = *w.Nombre
	}
	return nil
}

// DetalleRegistrado is a detalle read back from the remote API.
type DetalleRegistrado struct {
	ID             int64            `json:"id"`
	ProductoID     int64            `json:"producto_id"`
	Cantidad       int              `json:"cantidad"`
	PrecioUnitario decimal.Decimal  `json:"precio_unitario"`
	Total          decimal.Decimal  `json:"total"`
	Descuento      decimal.Decimal  `json:"descuento"`
	Producto       *ProductoVendido `json:"productos"`
}

func (d *DetalleRegistrado) UnmarshalJSON(b []byte) error {
	var w struct {
		ID             json.RawMessage  `json:"id"`
		ProductoID     json.RawMessage  `json:"producto_id"`
		Cantidad       json.RawMessage  `json:"cantidad"`
		PrecioUnitario json.RawMessage  `json:"precio_unitario"`
		Total          json.RawMessage  `json:"total"`
		Descuento      json.RawMessage  `json:"descuento"`
		Producto       *ProductoVendido `json:"productos"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*d = DetalleRegistrado{
		ID:             parseEntero(w.ID),
		ProductoID:     parseEntero(w.ProductoID),
		Cantidad:       int(parseEntero(w.Cantidad)),
		PrecioUnitario: money.ParseRaw(w.PrecioUnitario),
		Total:          money.ParseRaw(w.Total),
		Descuento:      money.ParseRaw(w.Descuento),
		Producto:       w.Producto,
	}
	return nil
}

// VentaRegistrada is a sale read back from GET /ventasAll.
type VentaRegistrada struct {
	ID        int64               `json:"id"`
	Fecha     string              `json:"fecha"`
	Total     decimal.Decimal     `json:"total"`
	MedioPago string              `json:"medio_pago"`
	CajaID    int64               `json:"cajaId"`
	Detalles  []DetalleRegistrado `json:"detalles"`
}

func (v *VentaRegistrada) UnmarshalJSON(b []byte) error {
	var w struct {
		ID        json.RawMessage     `json:"id"`
		Fecha     string              `json:"fecha"`
		Total     json.RawMessage     `json:"total"`
		MedioPago string              `json:"medio_pago"`
		CajaID    json.RawMessage     `json:"cajaId"`
		Detalles  []DetalleRegistrado `json:"detalles"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*v = VentaRegistrada{
		ID:        parseEntero(w.ID),
		Fecha:     w.Fecha,
		Total:     money.ParseRaw(w.Total),
		MedioPago: w.MedioPago,
		CajaID:    parseEntero(w.CajaID),
		Detalles:  w.Detalles,
	}
	return nil
}
