package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"comercioapp/internal/dto"
	"comercioapp/internal/model"
	"comercioapp/internal/repository"

	"github.com/shopspring/decimal"
)

// ── Remote API stub ───────────────────────────────────────────────────────────

type stubAPI struct {
	mu sync.Mutex

	llamadas    []string
	ventas      []model.Venta
	movimientos []model.Movimiento
	productos   []model.Producto
	cajas       []model.Caja
	registradas []model.VentaRegistrada

	ventaErr      error
	movimientoErr error
	productosErr  error
	proximoID     int64

	// bloquearVenta, when set, holds RegistrarVenta until closed.
	bloquearVenta chan struct{}
}

var (
	_ VentasAPI      = (*stubAPI)(nil)
	_ CatalogoAPI    = (*stubAPI)(nil)
	_ CajasAPI       = (*stubAPI)(nil)
	_ MovimientosAPI = (*stubAPI)(nil)
	_ ReportesAPI    = (*stubAPI)(nil)
)

func (a *stubAPI) registrar(llamada string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.llamadas = append(a.llamadas, llamada)
}

func (a *stubAPI) RegistrarVenta(_ context.Context, v model.Venta) (*model.VentaCreada, error) {
	if a.bloquearVenta != nil {
		<-a.bloquearVenta
	}
	a.registrar("POST /ventas")
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ventaErr != nil {
		return nil, a.ventaErr
	}
	a.proximoID++
	a.ventas = append(a.ventas, v)
	return &model.VentaCreada{ID: a.proximoID}, nil
}

func (a *stubAPI) RegistrarMovimiento(ctx context.Context, m model.Movimiento) error {
	a.registrar("POST /movimiento")
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.movimientoErr != nil {
		return a.movimientoErr
	}
	a.movimientos = append(a.movimientos, m)
	return nil
}

func (a *stubAPI) ListarProductos(context.Context) ([]model.Producto, error) {
	a.registrar("GET /productos")
	if a.productosErr != nil {
		return nil, a.productosErr
	}
	return a.productos, nil
}

func (a *stubAPI) CrearProducto(_ context.Context, p model.ProductoInput) error {
	a.registrar("POST /productos")
	return nil
}

func (a *stubAPI) ActualizarProducto(_ context.Context, id int64, p model.ProductoInput) error {
	a.registrar("PUT /productos")
	for i := range a.productos {
		if a.productos[i].ID == id && p.Activo != nil {
			a.productos[i].Activo = *p.Activo
		}
	}
	return nil
}

func (a *stubAPI) EliminarProducto(context.Context, int64) error {
	a.registrar("DELETE /productos")
	return nil
}

func (a *stubAPI) ListarCajas(context.Context) ([]model.Caja, error) {
	return a.cajas, nil
}

func (a *stubAPI) AbrirCaja(_ context.Context, saldo decimal.Decimal) (int64, error) {
	id := int64(len(a.cajas) + 1)
	a.cajas = append(a.cajas, model.Caja{ID: id, SaldoInicial: saldo})
	return id, nil
}

func (a *stubAPI) ActualizarCaja(_ context.Context, u model.CajaUpdate) error {
	for i := range a.cajas {
		if a.cajas[i].ID == u.ID {
			a.cajas[i].SaldoInicial = u.SaldoInicial
			a.cajas[i].SaldoFinal = u.SaldoFinal
			return nil
		}
	}
	return errors.New("not found")
}

func (a *stubAPI) ListarMovimientos(context.Context) ([]model.Movimiento, error) {
	return a.movimientos, nil
}

func (a *stubAPI) ListarVentas(context.Context) ([]model.VentaRegistrada, error) {
	return a.registradas, nil
}

func (a *stubAPI) Llamadas() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.llamadas...)
}

// ── Outbox stub ───────────────────────────────────────────────────────────────

type stubOutbox struct {
	mu   sync.Mutex
	rows []model.MovimientoPendiente
	err  error
}

var _ repository.MovimientoPendienteRepository = (*stubOutbox)(nil)

func (o *stubOutbox) Create(_ context.Context, m *model.MovimientoPendiente) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	if m.ID == "" {
		m.ID = "pend-1"
	}
	o.rows = append(o.rows, *m)
	return nil
}

func (o *stubOutbox) Update(_ context.Context, m *model.MovimientoPendiente) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.rows {
		if o.rows[i].ID == m.ID {
			o.rows[i] = *m
		}
	}
	return nil
}

func (o *stubOutbox) FindByID(_ context.Context, id string) (*model.MovimientoPendiente, error) {
	for _, r := range o.rows {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, errors.New("not found")
}

func (o *stubOutbox) ListDue(context.Context, time.Time, int) ([]model.MovimientoPendiente, error) {
	return o.rows, nil
}

func (o *stubOutbox) ListByEstado(context.Context, string, int) ([]model.MovimientoPendiente, error) {
	return o.rows, nil
}

func (o *stubOutbox) CountByEstado(context.Context) (map[string]int64, error) {
	return map[string]int64{model.PendienteEstadoPendiente: int64(len(o.rows))}, nil
}

// ── Publisher / recibos ───────────────────────────────────────────────────────

type stubPublisher struct {
	mu    sync.Mutex
	snaps []dto.TicketResponse
}

func (p *stubPublisher) Publicar(_ int64, snap dto.TicketResponse) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snaps = append(p.snaps, snap)
}

func (p *stubPublisher) ultimo() dto.TicketResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snaps[len(p.snaps)-1]
}

type stubRecibos struct {
	recibos []model.Recibo
}

func (r *stubRecibos) EncolarRecibo(_ context.Context, rec model.Recibo) error {
	r.recibos = append(r.recibos, rec)
	return nil
}

func fechaFija() time.Time {
	return time.Date(2024, 3, 15, 14, 30, 5, 0, time.Local)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func catalogoBase() []model.Producto {
	return []model.Producto{
		{ID: 1, Nombre: "Yerba", Categoria: "Almacén", Cantidad: 10, PrecioCompra: dec("700"), PrecioVenta: dec("1200"), Activo: true},
		{ID: 2, Nombre: "Galletitas", Categoria: "Almacén", Cantidad: 5, PrecioCompra: dec("10"), PrecioVenta: dec("19.995"), Activo: true},
		{ID: 3, Nombre: "Gaseosa", Categoria: "Bebidas", Cantidad: 3, PrecioCompra: dec("500"), PrecioVenta: dec("900"), Activo: false},
	}
}
