package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"comercioapp/internal/apierror"
	"comercioapp/internal/auth"
	"comercioapp/internal/infra"
	"comercioapp/internal/middleware"
	"comercioapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for query strings.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range ves {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// paramID parses a positive integer path param, answering 400 otherwise.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return 0, false
	}
	return id, true
}

// respondError maps service and remote errors to the {detail} envelope.
// Raw remote bodies are only surfaced for 4xx answers, where they carry the
// API's validation message.
func respondError(c *gin.Context, err error) {
	status, body := clasificar(err)
	if status >= 500 {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(status, body)
}

func clasificar(err error) (int, *apierror.APIError) {
	var se *infra.StatusError
	var sinMov *service.VentaSinMovimientoError
	switch {
	case errors.Is(err, auth.ErrSesionExpirada), errors.Is(err, auth.ErrSinCredenciales):
		return http.StatusUnauthorized, apierror.New("Sesión expirada")
	case errors.Is(err, service.ErrCredencialesInvalidas):
		return http.StatusUnauthorized, apierror.New(err.Error())

	case errors.Is(err, service.ErrCobroEnCurso), errors.Is(err, service.ErrCobroPendiente):
		return http.StatusConflict, apierror.New(err.Error())

	case errors.Is(err, service.ErrTicketVacio),
		errors.Is(err, service.ErrProductoInactivo),
		errors.Is(err, service.ErrDatosInvalidos),
		errors.Is(err, service.ErrSaldoInvalido),
		errors.Is(err, service.ErrPasswordsNoCoinciden),
		errors.Is(err, service.ErrMedioPagoInvalido):
		return http.StatusUnprocessableEntity, apierror.New(err.Error())

	case errors.Is(err, service.ErrProductoNoEncontrado):
		return http.StatusNotFound, apierror.New(service.ErrProductoNoEncontrado.Error())
	case errors.Is(err, service.ErrCajaNoEncontrada), errors.Is(err, infra.ErrNoEncontrado):
		return http.StatusNotFound, apierror.New("Recurso no encontrado")

	// The sale exists remotely and nothing resumes it: repeating would duplicate it.
	case errors.As(err, &sinMov):
		return http.StatusBadGateway, &apierror.APIError{Detail: service.ErrIngresoManual.Error(), VentaID: sinMov.VentaID}

	// The sale exists remotely; retrying the cobro resumes at the movement.
	case errors.Is(err, service.ErrMovimientoPendiente):
		if errors.Is(err, service.ErrOutboxNoDisponible) {
			return http.StatusServiceUnavailable, apierror.NewRetryable(service.ErrMovimientoPendiente.Error())
		}
		return http.StatusBadGateway, apierror.NewRetryable(service.ErrMovimientoPendiente.Error())
	case errors.Is(err, service.ErrVentaNoRegistrada):
		if errors.Is(err, infra.ErrCircuitOpen) {
			return http.StatusServiceUnavailable, apierror.NewRetryable(service.ErrVentaNoRegistrada.Error())
		}
		return http.StatusBadGateway, apierror.NewRetryable(service.ErrVentaNoRegistrada.Error())
	case errors.Is(err, service.ErrCatalogoNoDisponible):
		return http.StatusBadGateway, apierror.NewRetryable(service.ErrCatalogoNoDisponible.Error())
	case errors.Is(err, infra.ErrCircuitOpen):
		return http.StatusServiceUnavailable, apierror.NewRetryable("Servicio remoto no disponible")

	case errors.As(err, &se):
		if se.Temporal() {
			return http.StatusBadGateway, apierror.NewRetryable("Servicio remoto no disponible")
		}
		msg := se.Mensaje
		if msg == "" {
			msg = "Solicitud rechazada por el servidor"
		}
		return http.StatusBadRequest, apierror.New(msg)
	}
	return http.StatusInternalServerError, apierror.New("Error interno del servidor")
}
