package handler

import (
	"net/http"

	"comercioapp/internal/dto"
	"comercioapp/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// DetalleVentas godoc
// @Summary Detalle de ventas por línea con ganancia
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Param desde query string false "Fecha inicial (YYYY-MM-DD)"
// @Param hasta query string false "Fecha final inclusive (YYYY-MM-DD)"
// @Success 200 {object} dto.ReporteVentasResponse
// @Router /v1/ventas/detalle [get]
func (h *ReportesHandler) DetalleVentas(c *gin.Context) {
	var filtro dto.FiltroReporte
	if !bindQuery(c, &filtro) {
		return
	}
	resp, err := h.svc.DetalleVentas(c.Request.Context(), filtro)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
