package dto

import "github.com/shopspring/decimal"

// FiltroProductos is bound from the query string of GET /v1/productos.
type FiltroProductos struct {
	Q      string `form:"q"`
	Estado string `form:"estado,default=todos" validate:"omitempty,oneof=activos inactivos todos"`
}

// ResumenInventario: every figure except Inactivos counts active products only.
type ResumenInventario struct {
	Activos         int             `json:"activos"`
	Inactivos       int             `json:"inactivos"`
	StockTotal      int             `json:"stock_total"`
	ValorInventario decimal.Decimal `json:"valor_inventario"` // Σ cantidad × precioCompra
	Categorias      []string        `json:"categorias"`
}
