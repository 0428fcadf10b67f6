package service

import (
	"context"
	"fmt"
	"time"

	"comercioapp/internal/dto"
	"comercioapp/internal/model"
	"comercioapp/internal/money"

	"github.com/shopspring/decimal"
)

// ReporteService serves read-only sale reports built from GET /ventasAll.
type ReporteService interface {
	DetalleVentas(ctx context.Context, filtro dto.FiltroReporte) (*dto.ReporteVentasResponse, error)
}

type reporteService struct {
	api ReportesAPI
	loc *time.Location
}

func NewReporteService(api ReportesAPI) ReporteService {
	return &reporteService{api: api, loc: time.Local}
}

func (s *reporteService) DetalleVentas(ctx context.Context, filtro dto.FiltroReporte) (*dto.ReporteVentasResponse, error) {
	if filtro.Desde != "" && filtro.Hasta != "" && filtro.Hasta < filtro.Desde {
		return nil, fmt.Errorf("%w: hasta es anterior a desde", ErrDatosInvalidos)
	}
	ventas, err := s.api.ListarVentas(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.ReporteVentasResponse{
		Desde:        filtro.Desde,
		Hasta:        filtro.Hasta,
		Items:        []dto.DetalleVentaItem{},
		TotalVendido: decimal.Zero,
		Ganancia:     decimal.Zero,
	}
	cantidades := make(map[string]int)
	var orden []string

	for _, v := range ventas {
		dia := ""
		if t, ok := model.ParseFechaRemota(v.Fecha, s.loc); ok {
			dia = model.FechaLocal(t)
		}
		if !enRango(dia, filtro) {
			continue
		}
		resp.Ventas++
		for _, d := range v.Detalles {
			item := dto.DetalleVentaItem{
				VentaID:        v.ID,
				Fecha:          v.Fecha,
				MedioPago:      v.MedioPago,
				ProductoID:     d.ProductoID,
				Producto:       fmt.Sprintf("Producto #%d", d.ProductoID),
				Cantidad:       d.Cantidad,
				PrecioUnitario: d.PrecioUnitario,
				PrecioCompra:   decimal.Zero,
				Descuento:      d.Descuento,
				Total:          d.Total,
			}
			if d.Producto != nil {
				if d.Producto.Nombre != "" {
					item.Producto = d.Producto.Nombre
				}
				item.PrecioCompra = d.Producto.PrecioCompra
			}
			resp.Items = append(resp.Items, item)

			resp.TotalVendido = resp.TotalVendido.Add(d.Total)
			margen := d.PrecioUnitario.Sub(item.PrecioCompra).Mul(decimal.NewFromInt(int64(d.Cantidad)))
			resp.Ganancia = resp.Ganancia.Add(margen)

			if _, ok := cantidades[item.Producto]; !ok {
				orden = append(orden, item.Producto)
			}
			cantidades[item.Producto] += d.Cantidad
		}
	}

	resp.TotalVendido = money.Round2(resp.TotalVendido)
	resp.Ganancia = money.Round2(resp.Ganancia)

	// Ties go to the product seen first.
	for _, nombre := range orden {
		if resp.ProductoTop == nil || cantidades[nombre] > resp.ProductoTop.Cantidad {
			resp.ProductoTop = &dto.ProductoTop{Nombre: nombre, Cantidad: cantidades[nombre]}
		}
	}
	return resp, nil
}

// enRango compares YYYY-MM-DD strings; both bounds inclusive. Sales with an
// unreadable date only show up in unfiltered reports.
func enRango(dia string, f dto.FiltroReporte) bool {
	if f.Desde == "" && f.Hasta == "" {
		return true
	}
	if dia == "" {
		return false
	}
	if f.Desde != "" && dia < f.Desde {
		return false
	}
	if f.Hasta != "" && dia > f.Hasta {
		return false
	}
	return true
}
