package dto

import "github.com/shopspring/decimal"

type MovimientoManualRequest struct {
	Tipo        string          `json:"tipo"        validate:"required,oneof=ingreso gasto"`
	Descripcion string          `json:"descripcion" validate:"required"`
	Monto       decimal.Decimal `json:"monto"       validate:"gt=0"`
	Producto    string          `json:"producto"`
	// Fecha YYYY-MM-DD; empty = today
	Fecha  string `json:"fecha"  validate:"omitempty,datetime=2006-01-02"`
	CajaID int64  `json:"cajaId" validate:"required,min=1"`
}

type ResumenMovimientos struct {
	Ingresos decimal.Decimal `json:"ingresos"`
	Gastos   decimal.Decimal `json:"gastos"`
	Balance  decimal.Decimal `json:"balance"`
}
