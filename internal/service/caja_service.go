package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"comercioapp/internal/dto"
	"comercioapp/internal/infra"
	"comercioapp/internal/model"
	"comercioapp/internal/money"

	"github.com/shopspring/decimal"
)

type CajaService interface {
	Listar(ctx context.Context) ([]model.Caja, error)
	Abrir(ctx context.Context, req dto.AbrirCajaRequest) (*dto.AbrirCajaResponse, error)
	// CajaDelDia returns the caja opened on the current local date, if any.
	CajaDelDia(ctx context.Context) (*dto.CajaDelDiaResponse, error)
	Actualizar(ctx context.Context, id int64, req dto.ActualizarCajaRequest) error
	Resumen(ctx context.Context) (*dto.ResumenCajasResponse, error)
}

type cajaService struct {
	api CajasAPI
	now func() time.Time
}

func NewCajaService(api CajasAPI) CajaService {
	return &cajaService{api: api, now: time.Now}
}

func (s *cajaService) Listar(ctx context.Context) ([]model.Caja, error) {
	cajas, err := s.api.ListarCajas(ctx)
	if err != nil {
		return nil, err
	}
	if cajas == nil {
		cajas = []model.Caja{}
	}
	return cajas, nil
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, req dto.AbrirCajaRequest) (*dto.AbrirCajaResponse, error) {
	if req.SaldoInicial.IsNegative() {
		return nil, fmt.Errorf("%w: el saldo inicial no puede ser negativo", ErrDatosInvalidos)
	}
	id, err := s.api.AbrirCaja(ctx, money.Round2(req.SaldoInicial))
	if err != nil {
		return nil, err
	}
	return &dto.AbrirCajaResponse{ID: id}, nil
}

// ── CajaDelDia ────────────────────────────────────────────────────────────────

func (s *cajaService) CajaDelDia(ctx context.Context) (*dto.CajaDelDiaResponse, error) {
	cajas, err := s.api.ListarCajas(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	hoy := model.FechaLocal(now)
	resp := &dto.CajaDelDiaResponse{Fecha: hoy}
	for i := range cajas {
		if fechaDeCaja(cajas[i], now.Location()) == hoy {
			resp.Caja = &cajas[i]
			break
		}
	}
	return resp, nil
}

// fechaDeCaja is the local calendar day the caja was created on; creadoEl
// wins over fecha.
func fechaDeCaja(c model.Caja, loc *time.Location) string {
	for _, raw := range []string{c.CreadoEl, c.Fecha} {
		if t, ok := model.ParseFechaRemota(raw, loc); ok {
			return model.FechaLocal(t)
		}
	}
	return ""
}

// ── Actualizar ────────────────────────────────────────────────────────────────

func (s *cajaService) Actualizar(ctx context.Context, id int64, req dto.ActualizarCajaRequest) error {
	if req.SaldoInicial.IsNegative() || req.SaldoFinal.IsNegative() {
		return fmt.Errorf("%w: los saldos no pueden ser negativos", ErrDatosInvalidos)
	}
	if req.SaldoFinal.LessThan(req.SaldoInicial) {
		return ErrSaldoInvalido
	}
	err := s.api.ActualizarCaja(ctx, model.CajaUpdate{
		ID:           id,
		SaldoInicial: money.Round2(req.SaldoInicial),
		SaldoFinal:   money.Round2(req.SaldoFinal),
	})
	if errors.Is(err, infra.ErrNoEncontrado) {
		return ErrCajaNoEncontrada
	}
	return err
}

// ── Resumen ───────────────────────────────────────────────────────────────────

func (s *cajaService) Resumen(ctx context.Context) (*dto.ResumenCajasResponse, error) {
	cajas, err := s.api.ListarCajas(ctx)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, c := range cajas {
		total = total.Add(c.Diferencia())
	}
	return &dto.ResumenCajasResponse{Cantidad: len(cajas), TotalGeneral: money.Round2(total)}, nil
}
