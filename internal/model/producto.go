package model

import (
	"encoding/json"
	"strconv"
	"strings"

	"comercioapp/internal/money"

	"github.com/shopspring/decimal"
)

// Producto is a catalog entry as served by the remote API.
// Prices arrive as numbers or numeric strings; UnmarshalJSON normalizes both.
type Producto struct {
	ID           int64           `json:"id"`
	Nombre       string          `json:"nombre"`
	Descripcion  string          `json:"descripcion"`
	Categoria    string          `json:"categoria"`
	Cantidad     int             `json:"cantidad"`
	PrecioCompra decimal.Decimal `json:"precioCompra"`
	PrecioVenta  decimal.Decimal `json:"precioVenta"`
	Activo       bool            `json:"activo"`
}

// Valido reports whether the entry can be shown and sold: it needs an id and a name.
func (p Producto) Valido() bool {
	return p.ID != 0 && strings.TrimSpace(p.Nombre) != ""
}

type productoWire struct {
	ID           json.RawMessage `json:"id"`
	Nombre       *string         `json:"nombre"`
	Descripcion  *string         `json:"descripcion"`
	Categoria    *string         `json:"categoria"`
	Cantidad     json.RawMessage `json:"cantidad"`
	PrecioCompra json.RawMessage `json:"precioCompra"`
	PrecioVenta  json.RawMessage `json:"precioVenta"`
	Activo       *bool           `json:"activo"`
}

// UnmarshalJSON applies the catalog normalization: null descripcion/categoria
// become "", a null activo means active, unparsable or negative prices become zero.
func (p *Producto) UnmarshalJSON(b []byte) error {
	var w productoWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = Producto{
		ID:           parseEntero(w.ID),
		Cantidad:     int(parseEntero(w.Cantidad)),
		PrecioCompra: noNegativo(money.ParseRaw(w.PrecioCompra)),
		PrecioVenta:  noNegativo(money.ParseRaw(w.PrecioVenta)),
		Activo:       true,
	}
	if w.Nombre != nil {
		p.Nombre = *w.Nombre
	}
	if w.Descripcion != nil {
		p.Descripcion = *w.Descripcion
	}
	if w.Categoria != nil {
		p.Categoria = *w.Categoria
	}
	if w.Activo != nil {
		p.Activo = *w.Activo
	}
	return nil
}

func noNegativo(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// parseEntero accepts 12, "12" and 12.0; anything else is 0.
func parseEntero(raw json.RawMessage) int64 {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return money.ParseString(s).IntPart()
}

// ProductoInput is the body of POST /productos and PUT /productos/:id.
type ProductoInput struct {
	ID           int64           `json:"id,omitempty"`
	Nombre       string          `json:"nombre" validate:"required"`
	Descripcion  string          `json:"descripcion"`
	Categoria    string          `json:"categoria"`
	Cantidad     int             `json:"cantidad" validate:"min=0"`
	PrecioCompra decimal.Decimal `json:"precioCompra" validate:"min=0"`
	PrecioVenta  decimal.Decimal `json:"precioVenta" validate:"min=0"`
	Activo       *bool           `json:"activo"`
}

// FromProducto builds an input carrying every field of p, used when only the
// activo flag changes and the remote API expects the full entity.
func FromProducto(p Producto) ProductoInput {
	activo := p.Activo
	return ProductoInput{
		ID:           p.ID,
		Nombre:       p.Nombre,
		Descripcion:  p.Descripcion,
		Categoria:    p.Categoria,
		Cantidad:     p.Cantidad,
		PrecioCompra: p.PrecioCompra,
		PrecioVenta:  p.PrecioVenta,
		Activo:       &activo,
	}
}
