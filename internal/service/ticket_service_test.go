package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"comercioapp/internal/dto"
	"comercioapp/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ticketFixture struct {
	svc     *ticketService
	api     *stubAPI
	outbox  *stubOutbox
	pub     *stubPublisher
	recibos *stubRecibos
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	api := &stubAPI{productos: catalogoBase(), proximoID: 40}
	f := &ticketFixture{api: api, outbox: &stubOutbox{}, pub: &stubPublisher{}, recibos: &stubRecibos{}}
	cat := NewCatalogoService(api, nil, time.Minute, nil)
	svc := NewTicketService(api, cat, f.outbox, f.recibos, f.pub, nil).(*ticketService)
	svc.now = fechaFija
	f.svc = svc
	return f
}

func (f *ticketFixture) agregar(t *testing.T, cajaID, productoID int64) dto.TicketResponse {
	t.Helper()
	snap, err := f.svc.AgregarProducto(context.Background(), cajaID, productoID)
	require.NoError(t, err)
	return snap
}

// ── Ticket mutations ──────────────────────────────────────────────────────────

func TestTicketService_AgregarProducto(t *testing.T) {
	f := newTicketFixture(t)

	f.agregar(t, 1, 1)
	snap := f.agregar(t, 1, 1)

	require.Len(t, snap.Lineas, 1)
	assert.Equal(t, 2, snap.Lineas[0].Cantidad)
	assert.Equal(t, "2400.00", snap.Totales.Neto.StringFixed(2))
	assert.Equal(t, snap, f.pub.ultimo())
}

func TestTicketService_AgregarProducto_Inactivo(t *testing.T) {
	f := newTicketFixture(t)

	_, err := f.svc.AgregarProducto(context.Background(), 1, 3)
	assert.ErrorIs(t, err, ErrProductoInactivo)
	assert.Empty(t, f.svc.Obtener(context.Background(), 1).Lineas)
}

func TestTicketService_AgregarProducto_Desconocido(t *testing.T) {
	f := newTicketFixture(t)

	_, err := f.svc.AgregarProducto(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrProductoNoEncontrado)
}

func TestTicketService_CajasIndependientes(t *testing.T) {
	f := newTicketFixture(t)

	f.agregar(t, 1, 1)
	f.agregar(t, 2, 2)

	assert.Equal(t, int64(1), f.svc.Obtener(context.Background(), 1).Lineas[0].ProductoID)
	assert.Equal(t, int64(2), f.svc.Obtener(context.Background(), 2).Lineas[0].ProductoID)
}

func TestTicketService_ObtenerNoCreaSesion(t *testing.T) {
	f := newTicketFixture(t)

	for caja := int64(1); caja <= 50; caja++ {
		snap := f.svc.Obtener(context.Background(), caja)
		assert.Equal(t, caja, snap.CajaID)
		assert.Empty(t, snap.Lineas)
	}
	f.svc.mu.Lock()
	assert.Empty(t, f.svc.sesiones)
	f.svc.mu.Unlock()

	f.agregar(t, 7, 1)
	snap := f.svc.Obtener(context.Background(), 7)
	require.Len(t, snap.Lineas, 1)
	f.svc.mu.Lock()
	assert.Len(t, f.svc.sesiones, 1)
	f.svc.mu.Unlock()
}

func TestTicketService_ActualizarLinea_Clamp(t *testing.T) {
	f := newTicketFixture(t)
	f.agregar(t, 1, 2)

	cantidad := 0
	descuento := dec("150")
	snap, err := f.svc.ActualizarLinea(context.Background(), 1, 2, dto.ActualizarLineaRequest{Cantidad: &cantidad, Descuento: &descuento})
	require.NoError(t, err)

	assert.Equal(t, 1, snap.Lineas[0].Cantidad)
	assert.Equal(t, "100", snap.Lineas[0].Descuento.String())
	assert.True(t, snap.Totales.Neto.IsZero())
}

func TestTicketService_QuitarYLimpiar(t *testing.T) {
	f := newTicketFixture(t)
	f.agregar(t, 1, 1)
	f.agregar(t, 1, 2)

	snap, err := f.svc.QuitarProducto(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, snap.Lineas, 1)
	assert.Equal(t, int64(2), snap.Lineas[0].ProductoID)

	snap, err = f.svc.QuitarProducto(context.Background(), 1, 77)
	require.NoError(t, err)
	assert.Len(t, snap.Lineas, 1)

	snap, err = f.svc.Limpiar(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, snap.Lineas)
}

// ── Cobrar ────────────────────────────────────────────────────────────────────

func TestCobrar_TicketVacio(t *testing.T) {
	f := newTicketFixture(t)

	_, err := f.svc.Cobrar(context.Background(), 1, dto.CobrarRequest{MedioPago: "efectivo"})
	assert.ErrorIs(t, err, ErrTicketVacio)
	assert.Empty(t, f.api.Llamadas())
}

func TestCobrar_MedioPagoInvalido(t *testing.T) {
	f := newTicketFixture(t)
	f.agregar(t, 1, 1)

	_, err := f.svc.Cobrar(context.Background(), 1, dto.CobrarRequest{MedioPago: "cheque"})
	assert.ErrorIs(t, err, ErrMedioPagoInvalido)
}

func TestCobrar_Exito(t *testing.T) {
	f := newTicketFixture(t)
	f.agregar(t, 7, 1)
	for i := 0; i < 3; i++ {
		f.agregar(t, 7, 2)
	}
	descuento := dec("10")
	_, err := f.svc.ActualizarLinea(context.Background(), 7, 2, dto.ActualizarLineaRequest{Descuento: &descuento})
	require.NoError(t, err)

	resp, err := f.svc.Cobrar(context.Background(), 7, dto.CobrarRequest{MedioPago: "debito", ClienteEmail: "cliente@example.com"})
	require.NoError(t, err)

	assert.Equal(t, []string{"GET /productos", "GET /productos", "GET /productos", "GET /productos", "POST /ventas", "POST /movimiento"}, f.api.Llamadas())

	require.Len(t, f.api.ventas, 1)
	v := f.api.ventas[0]
	assert.Equal(t, "2024-03-15T14:30:05", v.Fecha)
	assert.Equal(t, int64(7), v.CajaID)
	assert.Equal(t, model.MedioDebito, v.MedioPago)
	assert.Equal(t, "1253.99", v.Total.StringFixed(2))
	require.Len(t, v.Detalles, 2)
	assert.Equal(t, "53.99", v.Detalles[1].Total.StringFixed(2))

	require.Len(t, f.api.movimientos, 1)
	m := f.api.movimientos[0]
	assert.Equal(t, model.TipoIngreso, m.Tipo)
	assert.Equal(t, "Venta", m.Descripcion)
	assert.True(t, m.Monto.Equal(v.Total))
	assert.Equal(t, v.Fecha, m.Fecha)
	assert.Equal(t, int64(7), m.CajaID)

	assert.Equal(t, int64(41), resp.VentaID)
	assert.False(t, resp.MovimientoPendiente)
	assert.Empty(t, resp.Ticket.Lineas)
	assert.Empty(t, f.svc.Obtener(context.Background(), 7).Lineas)

	require.Len(t, f.recibos.recibos, 1)
	r := f.recibos.recibos[0]
	assert.Equal(t, int64(41), r.VentaID)
	assert.Equal(t, "cliente@example.com", r.ClienteEmail)
	assert.Equal(t, "Galletitas", r.Lineas[1].Nombre)
}

func TestCobrar_VentaFalla_TicketIntacto(t *testing.T) {
	f := newTicketFixture(t)
	f.agregar(t, 1, 1)
	f.api.ventaErr = errors.New("boom")

	_, err := f.svc.Cobrar(context.Background(), 1, dto.CobrarRequest{MedioPago: "efectivo"})
	assert.ErrorIs(t, err, ErrVentaNoRegistrada)

	assert.NotContains(t, f.api.Llamadas(), "POST /movimiento")
	snap := f.svc.Obtener(context.Background(), 1)
	assert.Len(t, snap.Lineas, 1)
	assert.False(t, snap.CobroPendiente)
	assert.False(t, snap.Cobrando)
	assert.Empty(t, f.recibos.recibos)

	// The same ticket can be charged once the API recovers.
	f.api.ventaErr = nil
	_, err = f.svc.Cobrar(context.Background(), 1, dto.CobrarRequest{MedioPago: "efectivo"})
	require.NoError(t, err)
	assert.Len(t, f.api.ventas, 1)
}

func TestCobrar_MovimientoFalla_VaAlOutbox(t *testing.T) {
	f := newTicketFixture(t)
	f.agregar(t, 1, 1)
	f.api.movimientoErr = errors.New("api caída")

	resp, err := f.svc.Cobrar(context.Background(), 1, dto.CobrarRequest{MedioPago: "credito"})
	require.NoError(t, err)

	assert.True(t, resp.MovimientoPendiente)
	assert.NotEmpty(t, resp.Aviso)
	assert.Empty(t, f.svc.Obtener(context.Background(), 1).Lineas)

	require.Len(t, f.outbox.rows, 1)
	row := f.outbox.rows[0]
	assert.Equal(t, int64(41), row.VentaID)
	assert.Equal(t, int64(1), row.CajaID)
	assert.Equal(t, "1200.00", row.Monto.StringFixed(2))
	assert.Equal(t, model.PendienteEstadoPendiente, row.Estado)
	assert.Equal(t, time.UTC, row.NextRetryAt.Location())
}

func TestCobrar_SinOutbox_ReanudaSinDuplicarVenta(t *testing.T) {
	f := newTicketFixture(t)
	f.agregar(t, 1, 1)
	f.api.movimientoErr = errors.New("api caída")
	f.outbox.err = errors.New("disk full")

	_, err := f.svc.Cobrar(context.Background(), 1, dto.CobrarRequest{MedioPago: "efectivo"})
	assert.ErrorIs(t, err, ErrMovimientoPendiente)
	assert.ErrorIs(t, err, ErrOutboxNoDisponible)

	snap := f.svc.Obtener(context.Background(), 1)
	assert.True(t, snap.CobroPendiente)
	assert.Len(t, snap.Lineas, 1)

	_, err = f.svc.AgregarProducto(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrCobroPendiente)
	_, err = f.svc.Limpiar(context.Background(), 1)
	assert.ErrorIs(t, err, ErrCobroPendiente)

	f.api.movimientoErr = nil
	resp, err := f.svc.Cobrar(context.Background(), 1, dto.CobrarRequest{MedioPago: "efectivo"})
	require.NoError(t, err)

	assert.Len(t, f.api.ventas, 1, "the sale must not be posted twice")
	assert.Len(t, f.api.movimientos, 1)
	assert.Equal(t, int64(41), resp.VentaID)
	assert.False(t, f.svc.Obtener(context.Background(), 1).CobroPendiente)
}

func TestCobrar_EnCurso_BloqueaMutaciones(t *testing.T) {
	f := newTicketFixture(t)
	f.agregar(t, 1, 1)
	f.api.bloquearVenta = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Cobrar(context.Background(), 1, dto.CobrarRequest{MedioPago: "efectivo"})
		done <- err
	}()

	require.Eventually(t, func() bool {
		return f.svc.Obtener(context.Background(), 1).Cobrando
	}, time.Second, 5*time.Millisecond)

	_, err := f.svc.QuitarProducto(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrCobroEnCurso)
	_, err = f.svc.Cobrar(context.Background(), 1, dto.CobrarRequest{MedioPago: "efectivo"})
	assert.ErrorIs(t, err, ErrCobroEnCurso)

	close(f.api.bloquearVenta)
	require.NoError(t, <-done)
	assert.Len(t, f.api.ventas, 1)
}

func TestCobrar_ClienteDesconectado_MovimientoIgualSeEnvia(t *testing.T) {
	f := newTicketFixture(t)
	f.agregar(t, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	f.api.bloquearVenta = make(chan struct{})
	go func() {
		cancel()
		close(f.api.bloquearVenta)
	}()

	_, err := f.svc.Cobrar(ctx, 1, dto.CobrarRequest{MedioPago: "efectivo"})
	require.NoError(t, err)
	assert.Len(t, f.api.movimientos, 1)
}
