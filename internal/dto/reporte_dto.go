package dto

import "github.com/shopspring/decimal"

// FiltroReporte is bound from GET /v1/ventas/detalle; both bounds inclusive.
type FiltroReporte struct {
	Desde string `form:"desde" validate:"omitempty,datetime=2006-01-02"`
	Hasta string `form:"hasta" validate:"omitempty,datetime=2006-01-02"`
}

type DetalleVentaItem struct {
	VentaID        int64           `json:"venta_id"`
	Fecha          string          `json:"fecha"`
	MedioPago      string          `json:"medio_pago"`
	ProductoID     int64           `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	PrecioCompra   decimal.Decimal `json:"precio_compra"`
	Descuento      decimal.Decimal `json:"descuento"`
	Total          decimal.Decimal `json:"total"`
}

type ProductoTop struct {
	Nombre   string `json:"nombre"`
	Cantidad int    `json:"cantidad"`
}

type ReporteVentasResponse struct {
	Desde        string             `json:"desde,omitempty"`
	Hasta        string             `json:"hasta,omitempty"`
	Ventas       int                `json:"ventas"`
	Items        []DetalleVentaItem `json:"items"`
	TotalVendido decimal.Decimal    `json:"total_vendido"`
	Ganancia     decimal.Decimal    `json:"ganancia"`
	ProductoTop  *ProductoTop       `json:"producto_top"`
}
