package handler

import (
	"net/http"

	"comercioapp/internal/dto"
	"comercioapp/internal/model"
	"comercioapp/internal/service"

	"github.com/gin-gonic/gin"
)

type MovimientosHandler struct{ svc service.MovimientoService }

func NewMovimientosHandler(svc service.MovimientoService) *MovimientosHandler {
	return &MovimientosHandler{svc: svc}
}

func (h *MovimientosHandler) Listar(c *gin.Context) {
	movs, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if movs == nil {
		movs = []model.Movimiento{}
	}
	c.JSON(http.StatusOK, movs)
}

// Registrar godoc
// @Summary Registra un ingreso o gasto manual
// @Tags movimientos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovimientoManualRequest true "Movimiento"
// @Success 201 {object} model.Movimiento
// @Failure 422 {object} apierror.APIError
// @Router /v1/movimientos [post]
func (h *MovimientosHandler) Registrar(c *gin.Context) {
	var req dto.MovimientoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	mov, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mov)
}

func (h *MovimientosHandler) Resumen(c *gin.Context) {
	resp, err := h.svc.Resumen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
