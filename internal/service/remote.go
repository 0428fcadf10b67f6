package service

import (
	"context"

	"comercioapp/internal/infra"
	"comercioapp/internal/model"

	"github.com/shopspring/decimal"
)

// Narrow views of infra.APIClient, one per service, so tests can stub the
// remote API without an HTTP server.

type VentasAPI interface {
	RegistrarVenta(ctx context.Context, v model.Venta) (*model.VentaCreada, error)
	RegistrarMovimiento(ctx context.Context, m model.Movimiento) error
}

type CatalogoAPI interface {
	ListarProductos(ctx context.Context) ([]model.Producto, error)
	CrearProducto(ctx context.Context, p model.ProductoInput) error
	ActualizarProducto(ctx context.Context, id int64, p model.ProductoInput) error
	EliminarProducto(ctx context.Context, id int64) error
}

type CajasAPI interface {
	ListarCajas(ctx context.Context) ([]model.Caja, error)
	AbrirCaja(ctx context.Context, saldoInicial decimal.Decimal) (int64, error)
	ActualizarCaja(ctx context.Context, u model.CajaUpdate) error
}

type MovimientosAPI interface {
	ListarMovimientos(ctx context.Context) ([]model.Movimiento, error)
	RegistrarMovimiento(ctx context.Context, m model.Movimiento) error
}

type ReportesAPI interface {
	ListarVentas(ctx context.Context) ([]model.VentaRegistrada, error)
}

type CuentaAPI interface {
	Login(ctx context.Context, cred model.Credenciales) (string, error)
	Registrar(ctx context.Context, r model.Registro) error
	Perfil(ctx context.Context) (*model.Usuario, error)
	ActualizarPerfil(ctx context.Context, u model.UsuarioUpdate) error
}

var (
	_ VentasAPI      = (*infra.APIClient)(nil)
	_ CatalogoAPI    = (*infra.APIClient)(nil)
	_ CajasAPI       = (*infra.APIClient)(nil)
	_ MovimientosAPI = (*infra.APIClient)(nil)
	_ ReportesAPI    = (*infra.APIClient)(nil)
	_ CuentaAPI      = (*infra.APIClient)(nil)
)
