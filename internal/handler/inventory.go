package handler

import (
	"net/http"

	"github.com/dimaswi/pos-sub002/internal/apierror"
	"github.com/dimaswi/pos-sub002/internal/dto"
	"github.com/dimaswi/pos-sub002/internal/middleware"
	"github.com/dimaswi/pos-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// Adjust godoc
// @Summary      Manual stock adjustment
// @Description  Applies a signed correction to one (store, product) balance and records the movement.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AdjustStockRequest true "Adjustment"
// @Success      201  {object} dto.MovementResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Adjust(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Movements godoc
// @Summary      List stock movements
// @Description  The append-only audit trail, filterable by store, product and movement type.
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        store_id   query string false "Store UUID"
// @Param        product_id query string false "Product UUID"
// @Param        type       query string false "sale | adjustment | transfer_in | transfer_out | return"
// @Param        page       query int    false "Page (default 1)"
// @Param        limit      query int    false "Page size (default 50)"
// @Success      200 {object} dto.MovementListResponse
// @Router       /v1/inventory/movements [get]
func (h *InventoryHandler) Movements(c *gin.Context) {
	var filter dto.MovementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Movements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LowStock godoc
// @Summary      Balances at or below minimum stock
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        store_id query string false "Store UUID (default: all stores)"
// @Success      200 {array} dto.InventoryResponse
// @Router       /v1/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	var storeID *uuid.UUID
	if raw := c.Query("store_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid store_id"))
			return
		}
		storeID = &id
	}
	resp, err := h.svc.LowStock(c.Request.Context(), storeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
