package service

import (
	"context"
	"errors"
	"testing"

	"comercioapp/internal/dto"
	"comercioapp/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServicioTest(api *stubAPI, outbox *stubOutbox) *servicioService {
	svc := NewServicioService(api, outbox, 214, 10, nil).(*servicioService)
	svc.now = fechaFija
	return svc
}

func TestServicio_PagoConComision(t *testing.T) {
	api := &stubAPI{proximoID: 99}
	svc := newServicioTest(api, &stubOutbox{})

	resp, err := svc.Registrar(context.Background(), 3, dto.ServicioRequest{
		Tipo: "pago", Proveedor: "Edenor", Numero: "123", Monto: dec("1000"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(100), resp.ID)
	assert.Equal(t, "100.00", resp.Comision.StringFixed(2))
	assert.Equal(t, "1100.00", resp.Total.StringFixed(2))
	assert.Equal(t, "15/03/2024", resp.Fecha)
	assert.Equal(t, "14:30", resp.Hora)
	assert.Equal(t, "Completado", resp.Estado)

	require.Len(t, api.ventas, 1)
	v := api.ventas[0]
	assert.Equal(t, model.MedioEfectivo, v.MedioPago)
	require.Len(t, v.Detalles, 1)
	assert.Equal(t, int64(214), v.Detalles[0].ProductoID)
	assert.Equal(t, "Pago de servicio - Edenor", v.Detalles[0].Descripcion)
	assert.True(t, v.Detalles[0].PrecioUnitario.Equal(dec("1100")))

	require.Len(t, api.movimientos, 1)
	assert.Equal(t, "Pago servicio Edenor + $100.00 comisión", api.movimientos[0].Descripcion)
	assert.True(t, api.movimientos[0].Monto.Equal(dec("1100")))
	assert.Equal(t, []string{"POST /ventas", "POST /movimiento"}, api.Llamadas())
}

func TestServicio_RecargaSinComision(t *testing.T) {
	api := &stubAPI{}
	svc := newServicioTest(api, &stubOutbox{})

	resp, err := svc.Registrar(context.Background(), 3, dto.ServicioRequest{
		Tipo: "recarga", Proveedor: "Claro", Numero: "1155554444", Monto: dec("500"),
	})
	require.NoError(t, err)
	assert.True(t, resp.Comision.IsZero())
	assert.Equal(t, "500.00", resp.Total.StringFixed(2))
	assert.Equal(t, "Recarga - Claro", api.ventas[0].Detalles[0].Descripcion)
	assert.Equal(t, "Recarga Claro", api.movimientos[0].Descripcion)
}

func TestServicio_Validacion(t *testing.T) {
	svc := newServicioTest(&stubAPI{}, &stubOutbox{})

	cases := []dto.ServicioRequest{
		{Tipo: "otro", Proveedor: "X", Numero: "1", Monto: dec("1")},
		{Tipo: "pago", Proveedor: " ", Numero: "1", Monto: dec("1")},
		{Tipo: "pago", Proveedor: "X", Numero: "1", Monto: dec("0")},
	}
	for _, req := range cases {
		_, err := svc.Registrar(context.Background(), 1, req)
		assert.ErrorIs(t, err, ErrDatosInvalidos)
	}
}

func TestServicio_MovimientoSinOutbox_InformaVenta(t *testing.T) {
	api := &stubAPI{proximoID: 7, movimientoErr: errors.New("down")}
	svc := newServicioTest(api, &stubOutbox{err: errors.New("db down")})

	_, err := svc.Registrar(context.Background(), 1, dto.ServicioRequest{
		Tipo: "recarga", Proveedor: "Claro", Numero: "1", Monto: dec("100"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIngresoManual)
	assert.ErrorIs(t, err, ErrOutboxNoDisponible)
	assert.NotErrorIs(t, err, ErrMovimientoPendiente)
	var vsm *VentaSinMovimientoError
	require.ErrorAs(t, err, &vsm)
	assert.Equal(t, int64(8), vsm.VentaID)
	assert.Contains(t, err.Error(), "venta 8")
}
