package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"comercioapp/internal/dto"
	"comercioapp/internal/model"
	"comercioapp/internal/repository"
	"comercioapp/internal/ticket"

	"github.com/rs/zerolog/log"
)

// TicketPublisher receives a snapshot after every ticket change.
// Implementations must not block.
type TicketPublisher interface {
	Publicar(cajaID int64, snap dto.TicketResponse)
}

// ReciboEncolador schedules the receipt of a completed sale.
type ReciboEncolador interface {
	EncolarRecibo(ctx context.Context, r model.Recibo) error
}

type TicketService interface {
	Obtener(ctx context.Context, cajaID int64) dto.TicketResponse
	AgregarProducto(ctx context.Context, cajaID, productoID int64) (dto.TicketResponse, error)
	QuitarProducto(ctx context.Context, cajaID, productoID int64) (dto.TicketResponse, error)
	ActualizarLinea(ctx context.Context, cajaID, productoID int64, req dto.ActualizarLineaRequest) (dto.TicketResponse, error)
	Limpiar(ctx context.Context, cajaID int64) (dto.TicketResponse, error)
	Cobrar(ctx context.Context, cajaID int64, req dto.CobrarRequest) (*dto.CobroResponse, error)
}

// sesionTicket is the ticket of one caja. mu guards every field; the network
// calls of a checkout run without mu while cobrando is set.
type sesionTicket struct {
	mu        sync.Mutex
	ticket    *ticket.Ticket
	cobrando  bool
	pendiente *cobroPendiente
}

// cobroPendiente is a checkout in flight, kept on the session when the sale
// was registered but its movement could be neither sent nor queued.
type cobroPendiente struct {
	venta      model.Venta
	movimiento model.Movimiento
	recibo     model.Recibo
	registrada bool
	ventaID    int64
}

type ticketService struct {
	api      VentasAPI
	catalogo CatalogoService
	pareado  *pareador
	recibos  ReciboEncolador
	pub      TicketPublisher
	metrics  *Metrics
	now      func() time.Time

	mu       sync.Mutex
	sesiones map[int64]*sesionTicket
}

func NewTicketService(
	api VentasAPI,
	catalogo CatalogoService,
	outbox repository.MovimientoPendienteRepository,
	recibos ReciboEncolador,
	pub TicketPublisher,
	metrics *Metrics,
) TicketService {
	s := &ticketService{
		api:      api,
		catalogo: catalogo,
		recibos:  recibos,
		pub:      pub,
		metrics:  metrics,
		now:      time.Now,
		sesiones: make(map[int64]*sesionTicket),
	}
	s.pareado = &pareador{api: api, outbox: outbox, metrics: metrics, now: func() time.Time { return s.now() }}
	return s
}

func (s *ticketService) sesion(cajaID int64) *sesionTicket {
	s.mu.Lock()
	defer s.mu.Unlock()
	ses, ok := s.sesiones[cajaID]
	if !ok {
		ses = &sesionTicket{ticket: ticket.New()}
		s.sesiones[cajaID] = ses
	}
	return ses
}

// snapshot must be called with ses.mu held.
func snapshot(cajaID int64, ses *sesionTicket) dto.TicketResponse {
	snap := dto.NewTicketResponse(cajaID, ses.ticket)
	snap.Cobrando = ses.cobrando
	snap.CobroPendiente = ses.pendiente != nil
	return snap
}

// publicar must be called with ses.mu held so subscribers see changes in order.
func (s *ticketService) publicar(cajaID int64, ses *sesionTicket) dto.TicketResponse {
	snap := snapshot(cajaID, ses)
	if s.pub != nil {
		s.pub.Publicar(cajaID, snap)
	}
	return snap
}

// mutar runs fn on the ticket unless a checkout is running or pending.
func (s *ticketService) mutar(cajaID int64, fn func(t *ticket.Ticket)) (dto.TicketResponse, error) {
	ses := s.sesion(cajaID)
	ses.mu.Lock()
	defer ses.mu.Unlock()
	if ses.cobrando {
		return snapshot(cajaID, ses), ErrCobroEnCurso
	}
	if ses.pendiente != nil {
		return snapshot(cajaID, ses), ErrCobroPendiente
	}
	fn(ses.ticket)
	return s.publicar(cajaID, ses), nil
}

// ── Ticket operations ─────────────────────────────────────────────────────────

// Obtener never creates a session: reading an unknown caja yields an empty ticket.
func (s *ticketService) Obtener(_ context.Context, cajaID int64) dto.TicketResponse {
	s.mu.Lock()
	ses, ok := s.sesiones[cajaID]
	s.mu.Unlock()
	if !ok {
		return dto.NewTicketResponse(cajaID, ticket.New())
	}
	ses.mu.Lock()
	defer ses.mu.Unlock()
	return snapshot(cajaID, ses)
}

func (s *ticketService) AgregarProducto(ctx context.Context, cajaID, productoID int64) (dto.TicketResponse, error) {
	// Resolved before taking the session lock: the catalog may hit the network.
	p, err := s.catalogo.BuscarPorID(ctx, productoID)
	if err != nil {
		return s.Obtener(ctx, cajaID), err
	}
	if !p.Activo {
		return s.Obtener(ctx, cajaID), ErrProductoInactivo
	}
	return s.mutar(cajaID, func(t *ticket.Ticket) { t.Agregar(p) })
}

func (s *ticketService) QuitarProducto(_ context.Context, cajaID, productoID int64) (dto.TicketResponse, error) {
	return s.mutar(cajaID, func(t *ticket.Ticket) { t.Quitar(productoID) })
}

func (s *ticketService) ActualizarLinea(_ context.Context, cajaID, productoID int64, req dto.ActualizarLineaRequest) (dto.TicketResponse, error) {
	return s.mutar(cajaID, func(t *ticket.Ticket) { t.Actualizar(productoID, req.Cantidad, req.Descuento) })
}

func (s *ticketService) Limpiar(_ context.Context, cajaID int64) (dto.TicketResponse, error) {
	return s.mutar(cajaID, func(t *ticket.Ticket) { t.Limpiar() })
}

// ── Cobrar ────────────────────────────────────────────────────────────────────
// Strict order:
//   1. POST /ventas; failure leaves the ticket as it was
//   2. POST /movimiento, only after 1 succeeded
//   3. both done (or 2 queued in the outbox) → ticket cleared
// When 2 can be neither sent nor queued, the session remembers the registered
// sale and the next Cobrar resumes at step 2.

func (s *ticketService) Cobrar(ctx context.Context, cajaID int64, req dto.CobrarRequest) (*dto.CobroResponse, error) {
	medio, ok := model.ParseMedioPago(req.MedioPago)
	if !ok {
		return nil, ErrMedioPagoInvalido
	}

	ses := s.sesion(cajaID)
	ses.mu.Lock()
	if ses.cobrando {
		ses.mu.Unlock()
		return nil, ErrCobroEnCurso
	}
	cp := ses.pendiente
	if cp == nil {
		if ses.ticket.Vacio() {
			ses.mu.Unlock()
			return nil, ErrTicketVacio
		}
		venta := ses.ticket.Venta(cajaID, medio, s.now())
		cp = &cobroPendiente{
			venta:      venta,
			movimiento: model.MovimientoDeVenta(venta, model.DescripcionVenta),
			recibo:     nuevoRecibo(ses.ticket, venta, req.ClienteEmail),
		}
	} else {
		log.Info().Int64("caja_id", cajaID).Int64("venta_id", cp.ventaID).Msg("cobro: resuming pending movement")
	}
	ses.cobrando = true
	s.publicar(cajaID, ses)
	ses.mu.Unlock()

	encolado, err := s.ejecutarCobro(ctx, cp)

	ses.mu.Lock()
	defer ses.mu.Unlock()
	ses.cobrando = false
	if err != nil {
		if cp.registrada {
			ses.pendiente = cp
			s.metrics.Cobro(string(cp.venta.MedioPago), ResultadoMovError, cp.venta.Total)
		} else {
			s.metrics.Cobro(string(cp.venta.MedioPago), ResultadoVentaError, cp.venta.Total)
		}
		s.publicar(cajaID, ses)
		return nil, err
	}

	ses.pendiente = nil
	ses.ticket.Limpiar()
	snap := s.publicar(cajaID, ses)

	resultado := ResultadoOK
	if encolado {
		resultado = ResultadoPendiente
	}
	s.metrics.Cobro(string(cp.venta.MedioPago), resultado, cp.venta.Total)
	s.encolarRecibo(ctx, cp)

	resp := &dto.CobroResponse{
		VentaID:             cp.ventaID,
		Venta:               cp.venta,
		MovimientoPendiente: encolado,
		Ticket:              snap,
	}
	if encolado {
		resp.Aviso = "La venta se registró; el movimiento de caja se enviará automáticamente."
	}
	log.Info().
		Int64("caja_id", cajaID).
		Int64("venta_id", cp.ventaID).
		Str("total", cp.venta.Total.StringFixed(2)).
		Bool("movimiento_pendiente", encolado).
		Msg("cobro: completed")
	return resp, nil
}

// ejecutarCobro performs the remote calls of cp that have not succeeded yet.
func (s *ticketService) ejecutarCobro(ctx context.Context, cp *cobroPendiente) (bool, error) {
	if !cp.registrada {
		creada, err := s.api.RegistrarVenta(ctx, cp.venta)
		if err != nil {
			log.Warn().Err(err).Int64("caja_id", cp.venta.CajaID).Msg("cobro: POST /ventas failed")
			return false, fmt.Errorf("%w: %w", ErrVentaNoRegistrada, err)
		}
		cp.registrada = true
		cp.ventaID = creada.ID
		cp.recibo.VentaID = creada.ID
	}

	encolado, err := s.pareado.enviar(ctx, cp.movimiento, cp.ventaID)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrMovimientoPendiente, err)
	}
	return encolado, nil
}

func (s *ticketService) encolarRecibo(ctx context.Context, cp *cobroPendiente) {
	if s.recibos == nil {
		return
	}
	if err := s.recibos.EncolarRecibo(context.WithoutCancel(ctx), cp.recibo); err != nil {
		log.Warn().Err(err).Int64("venta_id", cp.ventaID).Msg("cobro: failed to enqueue recibo")
	}
}

func nuevoRecibo(t *ticket.Ticket, v model.Venta, email string) model.Recibo {
	tot := t.Totales().Redondear()
	r := model.Recibo{
		CajaID:       v.CajaID,
		Fecha:        v.Fecha,
		MedioPago:    v.MedioPago,
		Bruto:        tot.Bruto,
		Descuento:    tot.Descuento,
		Total:        v.Total,
		ClienteEmail: email,
	}
	for i, l := range t.Lineas() {
		r.Lineas = append(r.Lineas, model.ReciboLinea{
			Nombre:         l.Nombre,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.Precio,
			Descuento:      l.Descuento,
			Total:          v.Detalles[i].Total,
		})
	}
	return r
}
