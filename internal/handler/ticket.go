package handler

import (
	"net/http"

	"comercioapp/internal/dto"
	"comercioapp/internal/realtime"
	"comercioapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type TicketHandler struct {
	svc service.TicketService
	hub *realtime.Hub
}

func NewTicketHandler(svc service.TicketService, hub *realtime.Hub) *TicketHandler {
	return &TicketHandler{svc: svc, hub: hub}
}

// Obtener godoc
// @Summary      Ticket en curso de la caja
// @Tags         ticket
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     int true "ID de caja"
// @Success      200  {object} dto.TicketResponse
// @Router       /v1/cajas/{id}/ticket [get]
func (h *TicketHandler) Obtener(c *gin.Context) {
	cajaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.Obtener(c.Request.Context(), cajaID))
}

// AgregarItem godoc
// @Summary      Agrega un producto al ticket
// @Description  Si el producto ya está en el ticket incrementa su cantidad.
// @Tags         ticket
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     int                    true "ID de caja"
// @Param        body body     dto.AgregarItemRequest true "Producto"
// @Success      200  {object} dto.TicketResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/cajas/{id}/ticket/items [post]
func (h *TicketHandler) AgregarItem(c *gin.Context) {
	cajaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AgregarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarProducto(c.Request.Context(), cajaID, req.ProductoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarItem godoc
// @Summary      Cambia cantidad o descuento de una línea
// @Description  Valores fuera de rango se ajustan: cantidad mínima 1, descuento entre 0 y 100.
// @Tags         ticket
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id         path int                        true "ID de caja"
// @Param        productoId path int                        true "ID de producto"
// @Param        body       body dto.ActualizarLineaRequest true "Cambios"
// @Success      200  {object} dto.TicketResponse
// @Router       /v1/cajas/{id}/ticket/items/{productoId} [patch]
func (h *TicketHandler) ActualizarItem(c *gin.Context) {
	cajaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	productoID, ok := paramID(c, "productoId")
	if !ok {
		return
	}
	var req dto.ActualizarLineaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarLinea(c.Request.Context(), cajaID, productoID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TicketHandler) QuitarItem(c *gin.Context) {
	cajaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	productoID, ok := paramID(c, "productoId")
	if !ok {
		return
	}
	resp, err := h.svc.QuitarProducto(c.Request.Context(), cajaID, productoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TicketHandler) Limpiar(c *gin.Context) {
	cajaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Limpiar(c.Request.Context(), cajaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cobrar godoc
// @Summary      Cobra el ticket
// @Description  Registra la venta y luego su movimiento de ingreso. Si el movimiento falla queda
// @Description  en la cola de pendientes y la respuesta trae movimiento_pendiente=true.
// @Tags         ticket
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     int               true "ID de caja"
// @Param        body body     dto.CobrarRequest true "Medio de pago"
// @Success      201  {object} dto.CobroResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Failure      502  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /v1/cajas/{id}/ticket/cobrar [post]
func (h *TicketHandler) Cobrar(c *gin.Context) {
	cajaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.CobrarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cobrar(c.Request.Context(), cajaID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Stream upgrades to a websocket that receives a ticket snapshot on every change.
func (h *TicketHandler) Stream(c *gin.Context) {
	cajaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	inicial := h.svc.Obtener(c.Request.Context(), cajaID)
	if err := h.hub.Serve(c.Writer, c.Request, cajaID, inicial); err != nil {
		// Upgrade already wrote the HTTP error.
		log.Debug().Err(err).Int64("caja_id", cajaID).Msg("ws: upgrade failed")
	}
}
