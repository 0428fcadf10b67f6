package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"comercioapp/internal/dto"
	"comercioapp/internal/model"
	"comercioapp/internal/money"
	"comercioapp/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	ServicioRecarga = "recarga"
	ServicioPago    = "pago"

	estadoServicioCompletado = "Completado"
)

// ServicioService registers phone top-ups and bill payments as a one-line
// sale followed by its ingreso, with the same ordering as a ticket checkout.
type ServicioService interface {
	Registrar(ctx context.Context, cajaID int64, req dto.ServicioRequest) (*dto.ServicioResponse, error)
}

type servicioService struct {
	api         VentasAPI
	pareado     *pareador
	productoID  int64
	comisionPct decimal.Decimal
	metrics     *Metrics
	now         func() time.Time
}

func NewServicioService(
	api VentasAPI,
	outbox repository.MovimientoPendienteRepository,
	productoID int64,
	comisionPct float64,
	metrics *Metrics,
) ServicioService {
	s := &servicioService{
		api:         api,
		productoID:  productoID,
		comisionPct: decimal.NewFromFloat(comisionPct),
		metrics:     metrics,
		now:         time.Now,
	}
	s.pareado = &pareador{api: api, outbox: outbox, metrics: metrics, now: func() time.Time { return s.now() }}
	return s
}

func (s *servicioService) Registrar(ctx context.Context, cajaID int64, req dto.ServicioRequest) (*dto.ServicioResponse, error) {
	tipo := strings.ToLower(strings.TrimSpace(req.Tipo))
	proveedor := strings.TrimSpace(req.Proveedor)
	numero := strings.TrimSpace(req.Numero)
	switch {
	case tipo != ServicioRecarga && tipo != ServicioPago:
		return nil, fmt.Errorf("%w: tipo debe ser recarga o pago", ErrDatosInvalidos)
	case proveedor == "" || numero == "":
		return nil, fmt.Errorf("%w: proveedor y número son obligatorios", ErrDatosInvalidos)
	case !req.Monto.IsPositive():
		return nil, fmt.Errorf("%w: el monto debe ser mayor a 0", ErrDatosInvalidos)
	}

	monto := money.Round2(req.Monto)
	comision := decimal.Zero
	if tipo == ServicioPago {
		comision = money.Round2(money.Porcentaje(monto, s.comisionPct))
	}
	total := money.Round2(monto.Add(comision))

	now := s.now()
	detalle := "Recarga - " + proveedor
	movDesc := "Recarga " + proveedor
	if tipo == ServicioPago {
		detalle = "Pago de servicio - " + proveedor
		movDesc = fmt.Sprintf("Pago servicio %s + $%s comisión", proveedor, comision.StringFixed(2))
	}
	venta := model.Venta{
		Fecha:     model.FechaHoraLocal(now),
		Total:     total,
		CajaID:    cajaID,
		MedioPago: model.MedioEfectivo,
		Detalles: []model.DetalleVenta{{
			ProductoID:     s.productoID,
			Cantidad:       1,
			PrecioUnitario: total,
			Total:          total,
			Descuento:      decimal.Zero,
			Descripcion:    detalle,
		}},
	}

	creada, err := s.api.RegistrarVenta(ctx, venta)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVentaNoRegistrada, err)
	}

	mov := model.MovimientoDeVenta(venta, movDesc)
	encolado, err := s.pareado.enviar(ctx, mov, creada.ID)
	if err != nil {
		// Nothing is kept in memory for services: the operator must record the
		// ingreso by hand, so the sale id has to reach them.
		log.Error().Err(err).Int64("caja_id", cajaID).Int64("venta_id", creada.ID).Msg("servicio: ingreso not recorded")
		return nil, &VentaSinMovimientoError{VentaID: creada.ID, Err: err}
	}

	s.metrics.Servicio(tipo)
	log.Info().
		Int64("caja_id", cajaID).
		Int64("venta_id", creada.ID).
		Str("tipo", tipo).
		Str("total", total.StringFixed(2)).
		Msg("servicio: registered")

	return &dto.ServicioResponse{
		ID:                  creada.ID,
		Fecha:               now.Format("02/01/2006"),
		Hora:                now.Format("15:04"),
		Tipo:                tipo,
		Proveedor:           proveedor,
		Numero:              numero,
		Monto:               monto,
		Comision:            comision,
		Total:               total,
		Estado:              estadoServicioCompletado,
		MovimientoPendiente: encolado,
	}, nil
}
