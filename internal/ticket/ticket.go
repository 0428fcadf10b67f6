// Package ticket is the in-progress sale of one caja: an ordered list of lines
// keyed by product id, the totals derived from them and the sale payload
// built at checkout. A Ticket is not safe for concurrent use; the owner
// (service.TicketService) serializes access per caja.
package ticket

import (
	"time"

	"comercioapp/internal/model"
	"comercioapp/internal/money"

	"github.com/shopspring/decimal"
)

var (
	cien = decimal.NewFromInt(100)
	cero = decimal.Zero
)

// Linea is one product on the ticket.
// Cantidad >= 1 and Descuento in [0, 100] always hold.
type Linea struct {
	ProductoID int64           `json:"producto_id"`
	Nombre     string          `json:"nombre"`
	Precio     decimal.Decimal `json:"precio"`
	Cantidad   int             `json:"cantidad"`
	Descuento  decimal.Decimal `json:"descuento"`
}

// Bruto is precio × cantidad.
func (l Linea) Bruto() decimal.Decimal {
	return l.Precio.Mul(decimal.NewFromInt(int64(l.Cantidad)))
}

// MontoDescuento is the amount removed by the line discount (unrounded).
func (l Linea) MontoDescuento() decimal.Decimal {
	return money.Porcentaje(l.Bruto(), l.Descuento)
}

// Neto is precio × cantidad × (1 − descuento/100), unrounded.
func (l Linea) Neto() decimal.Decimal {
	return l.Bruto().Mul(money.FactorDescuento(l.Descuento))
}

// Totales are derived on demand, never stored.
type Totales struct {
	Bruto     decimal.Decimal `json:"bruto"`
	Descuento decimal.Decimal `json:"descuento"`
	Neto      decimal.Decimal `json:"neto"`
}

// Redondear returns the totals rounded to 2 decimals for display and the wire.
func (t Totales) Redondear() Totales {
	return Totales{
		Bruto:     money.Round2(t.Bruto),
		Descuento: money.Round2(t.Descuento),
		Neto:      money.Round2(t.Neto),
	}
}

// Ticket is the ordered set of lines. The zero value is an empty ticket.
type Ticket struct {
	lineas []Linea
}

// New returns an empty ticket.
func New() *Ticket {
	return &Ticket{}
}

func (t *Ticket) indice(productoID int64) int {
	for i := range t.lineas {
		if t.lineas[i].ProductoID == productoID {
			return i
		}
	}
	return -1
}

// Agregar adds one unit of p. A product already on the ticket only has its
// quantity incremented; its price and discount stay as they were.
func (t *Ticket) Agregar(p model.Producto) Linea {
	if i := t.indice(p.ID); i >= 0 {
		t.lineas[i].Cantidad++
		return t.lineas[i]
	}
	l := Linea{
		ProductoID: p.ID,
		Nombre:     p.Nombre,
		Precio:     p.PrecioVenta,
		Cantidad:   1,
		Descuento:  cero,
	}
	t.lineas = append(t.lineas, l)
	return l
}

// Quitar removes the line for productoID. Absent ids are a no-op.
func (t *Ticket) Quitar(productoID int64) bool {
	i := t.indice(productoID)
	if i < 0 {
		return false
	}
	t.lineas = append(t.lineas[:i], t.lineas[i+1:]...)
	return true
}

// Actualizar sets quantity and/or discount of an existing line; nil leaves the
// field unchanged. Out-of-range values are clamped: cantidad to at least 1,
// descuento to [0, 100]. Absent ids are a no-op.
func (t *Ticket) Actualizar(productoID int64, cantidad *int, descuento *decimal.Decimal) (Linea, bool) {
	i := t.indice(productoID)
	if i < 0 {
		return Linea{}, false
	}
	if cantidad != nil {
		c := *cantidad
		if c < 1 {
			c = 1
		}
		t.lineas[i].Cantidad = c
	}
	if descuento != nil {
		t.lineas[i].Descuento = money.Clamp(*descuento, cero, cien)
	}
	return t.lineas[i], true
}

// Limpiar empties the ticket.
func (t *Ticket) Limpiar() {
	t.lineas = nil
}

// Lineas returns a copy of the lines in insertion order.
func (t *Ticket) Lineas() []Linea {
	out := make([]Linea, len(t.lineas))
	copy(out, t.lineas)
	return out
}

func (t *Ticket) Len() int    { return len(t.lineas) }
func (t *Ticket) Vacio() bool { return len(t.lineas) == 0 }

// Totales sums the lines. Neto == Bruto − Descuento exactly.
func (t *Ticket) Totales() Totales {
	tot := Totales{Bruto: cero, Descuento: cero}
	for _, l := range t.lineas {
		tot.Bruto = tot.Bruto.Add(l.Bruto())
		tot.Descuento = tot.Descuento.Add(l.MontoDescuento())
	}
	tot.Neto = tot.Bruto.Sub(tot.Descuento)
	return tot
}

// Detalles maps each line to its sale detail; total is the line net rounded
// to 2 decimals.
func (t *Ticket) Detalles() []model.DetalleVenta {
	out := make([]model.DetalleVenta, 0, len(t.lineas))
	for _, l := range t.lineas {
		out = append(out, model.DetalleVenta{
			ProductoID:     l.ProductoID,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.Precio,
			Total:          money.Round2(l.Neto()),
			Descuento:      l.Descuento,
		})
	}
	return out
}

// Venta builds the sale payload. Its total is the ticket net rounded to 2
// decimals, which can differ by a cent from the sum of rounded detalles.
func (t *Ticket) Venta(cajaID int64, medio model.MedioPago, fecha time.Time) model.Venta {
	return model.Venta{
		Fecha:     model.FechaHoraLocal(fecha),
		Total:     money.Round2(t.Totales().Neto),
		CajaID:    cajaID,
		MedioPago: medio,
		Detalles:  t.Detalles(),
	}
}

// Clone returns an independent copy.
func (t *Ticket) Clone() *Ticket {
	return &Ticket{lineas: t.Lineas()}
}
