package handler

import (
	"net/http"

	"comercioapp/internal/dto"
	"comercioapp/internal/service"

	"github.com/gin-gonic/gin"
)

type ServiciosHandler struct{ svc service.ServicioService }

func NewServiciosHandler(svc service.ServicioService) *ServiciosHandler {
	return &ServiciosHandler{svc: svc}
}

// Registrar godoc
// @Summary      Registra una recarga o pago de servicio
// @Description  Cobra monto más comisión como una venta del producto de servicios y su ingreso.
// @Tags         servicios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     int                 true "ID de caja"
// @Param        body body     dto.ServicioRequest true "Servicio"
// @Success      201  {object} dto.ServicioResponse
// @Failure      422  {object} apierror.APIError
// @Failure      502  {object} apierror.APIError
// @Router       /v1/cajas/{id}/servicios [post]
func (h *ServiciosHandler) Registrar(c *gin.Context) {
	cajaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ServicioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), cajaID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
