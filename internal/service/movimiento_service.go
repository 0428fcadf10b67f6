package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"comercioapp/internal/dto"
	"comercioapp/internal/model"
	"comercioapp/internal/money"

	"github.com/shopspring/decimal"
)

// MovimientoService handles manual ingresos and gastos. Sale-paired ingresos
// are posted by TicketService and ServicioService.
type MovimientoService interface {
	Listar(ctx context.Context) ([]model.Movimiento, error)
	Registrar(ctx context.Context, req dto.MovimientoManualRequest) (*model.Movimiento, error)
	Resumen(ctx context.Context) (*dto.ResumenMovimientos, error)
}

type movimientoService struct {
	api MovimientosAPI
	now func() time.Time
}

func NewMovimientoService(api MovimientosAPI) MovimientoService {
	return &movimientoService{api: api, now: time.Now}
}

func (s *movimientoService) Listar(ctx context.Context) ([]model.Movimiento, error) {
	movs, err := s.api.ListarMovimientos(ctx)
	if err != nil {
		return nil, err
	}
	if movs == nil {
		movs = []model.Movimiento{}
	}
	return movs, nil
}

func (s *movimientoService) Registrar(ctx context.Context, req dto.MovimientoManualRequest) (*model.Movimiento, error) {
	tipo := model.TipoMovimiento(strings.ToLower(strings.TrimSpace(req.Tipo)))
	desc := strings.TrimSpace(req.Descripcion)
	switch {
	case tipo != model.TipoIngreso && tipo != model.TipoGasto:
		return nil, fmt.Errorf("%w: tipo debe ser ingreso o gasto", ErrDatosInvalidos)
	case desc == "":
		return nil, fmt.Errorf("%w: la descripción es obligatoria", ErrDatosInvalidos)
	case !req.Monto.IsPositive():
		return nil, fmt.Errorf("%w: el monto debe ser mayor a 0", ErrDatosInvalidos)
	case req.CajaID <= 0:
		return nil, fmt.Errorf("%w: caja requerida", ErrDatosInvalidos)
	}

	fecha := req.Fecha
	if fecha == "" {
		fecha = model.FechaLocal(s.now())
	}
	mov := model.Movimiento{
		Tipo:        tipo,
		Monto:       money.Round2(req.Monto),
		Descripcion: desc,
		Producto:    strings.TrimSpace(req.Producto),
		Fecha:       fecha,
		CajaID:      req.CajaID,
	}
	if err := s.api.RegistrarMovimiento(ctx, mov); err != nil {
		return nil, err
	}
	return &mov, nil
}

func (s *movimientoService) Resumen(ctx context.Context) (*dto.ResumenMovimientos, error) {
	movs, err := s.api.ListarMovimientos(ctx)
	if err != nil {
		return nil, err
	}
	return resumirMovimientos(movs), nil
}

func resumirMovimientos(movs []model.Movimiento) *dto.ResumenMovimientos {
	ingresos, gastos := decimal.Zero, decimal.Zero
	for _, m := range movs {
		switch m.Tipo {
		case model.TipoIngreso:
			ingresos = ingresos.Add(m.Monto)
		case model.TipoGasto:
			gastos = gastos.Add(m.Monto)
		}
	}
	return &dto.ResumenMovimientos{
		Ingresos: money.Round2(ingresos),
		Gastos:   money.Round2(gastos),
		Balance:  money.Round2(ingresos.Sub(gastos)),
	}
}
