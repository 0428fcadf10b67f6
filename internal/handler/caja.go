package handler

import (
	"net/http"

	"comercioapp/internal/dto"
	"comercioapp/internal/model"
	"comercioapp/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Abrir godoc
// @Summary Abre una caja con su saldo inicial
// @Tags cajas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Saldo inicial"
// @Success 201 {object} dto.AbrirCajaResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/cajas [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CajaHandler) Listar(c *gin.Context) {
	cajas, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if cajas == nil {
		cajas = []model.Caja{}
	}
	c.JSON(http.StatusOK, cajas)
}

// DelDia godoc
// @Summary Caja abierta hoy
// @Description caja es null cuando todavía no se abrió ninguna en la fecha local.
// @Tags cajas
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CajaDelDiaResponse
// @Router /v1/cajas/hoy [get]
func (h *CajaHandler) DelDia(c *gin.Context) {
	resp, err := h.svc.CajaDelDia(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary Actualiza saldos de una caja
// @Tags cajas
// @Accept json
// @Security BearerAuth
// @Param id path int true "ID de caja"
// @Param body body dto.ActualizarCajaRequest true "Saldos"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/cajas/{id} [put]
func (h *CajaHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Actualizar(c.Request.Context(), id, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CajaHandler) Resumen(c *gin.Context) {
	resp, err := h.svc.Resumen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
