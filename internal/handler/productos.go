package handler

import (
	"context"
	"net/http"

	"comercioapp/internal/dto"
	"comercioapp/internal/model"
	"comercioapp/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct{ svc service.CatalogoService }

func NewProductosHandler(svc service.CatalogoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

// Listar godoc
// @Summary      Lista el catálogo
// @Tags         productos
// @Produce      json
// @Security     BearerAuth
// @Param        q      query string false "Busca en nombre y categoría"
// @Param        estado query string false "activos | inactivos | todos"
// @Success      200 {array} model.Producto
// @Failure      502 {object} apierror.APIError
// @Router       /v1/productos [get]
func (h *ProductosHandler) Listar(c *gin.Context) {
	var filtro dto.FiltroProductos
	if !bindQuery(c, &filtro) {
		return
	}
	productos, err := h.svc.Listar(c.Request.Context(), filtro)
	if err != nil {
		respondError(c, err)
		return
	}
	if productos == nil {
		productos = []model.Producto{}
	}
	c.JSON(http.StatusOK, productos)
}

func (h *ProductosHandler) Resumen(c *gin.Context) {
	resp, err := h.svc.Resumen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) Crear(c *gin.Context) {
	var req model.ProductoInput
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Crear(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *ProductosHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.ProductoInput
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Actualizar(c.Request.Context(), id, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductosHandler) Activar(c *gin.Context)    { h.cambiarEstado(c, h.svc.Activar) }
func (h *ProductosHandler) Desactivar(c *gin.Context) { h.cambiarEstado(c, h.svc.Desactivar) }
func (h *ProductosHandler) Eliminar(c *gin.Context)   { h.cambiarEstado(c, h.svc.Eliminar) }

func (h *ProductosHandler) cambiarEstado(c *gin.Context, fn func(ctx context.Context, id int64) error) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
