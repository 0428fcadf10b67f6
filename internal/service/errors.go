package service

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped to HTTP statuses by handler.respondError.
var (
	ErrTicketVacio         = errors.New("el ticket está vacío")
	ErrCobroEnCurso        = errors.New("hay un cobro en curso para esta caja")
	ErrCobroPendiente      = errors.New("la venta anterior quedó registrada sin su movimiento de caja; reintente el cobro")
	ErrVentaNoRegistrada   = errors.New("no se pudo registrar la venta")
	ErrMovimientoPendiente = errors.New("venta registrada, movimiento de caja pendiente")
	ErrOutboxNoDisponible  = errors.New("outbox no disponible")
	ErrMedioPagoInvalido   = errors.New("medio de pago inválido")
	ErrIngresoManual       = errors.New("venta registrada sin su movimiento de caja; registre el ingreso manualmente")

	ErrProductoNoEncontrado = errors.New("producto no encontrado")
	ErrProductoInactivo     = errors.New("el producto está inactivo")
	ErrCatalogoNoDisponible = errors.New("Error al obtener productos.")

	ErrCajaNoEncontrada = errors.New("caja no encontrada")
	ErrSaldoInvalido    = errors.New("el saldo final no puede ser menor al saldo inicial")

	ErrDatosInvalidos        = errors.New("datos inválidos")
	ErrCredencialesInvalidas = errors.New("credenciales invalidas")
	ErrPasswordsNoCoinciden  = errors.New("las contraseñas no coinciden")
)

// VentaSinMovimientoError reports a sale the remote API accepted whose ingreso
// could neither be sent nor queued, and for which nothing is kept to resume.
// Repeating the request would post the sale again.
type VentaSinMovimientoError struct {
	VentaID int64
	Err     error
}

func (e *VentaSinMovimientoError) Error() string {
	return fmt.Sprintf("%s (venta %d): %v", ErrIngresoManual, e.VentaID, e.Err)
}

func (e *VentaSinMovimientoError) Unwrap() []error { return []error{ErrIngresoManual, e.Err} }
