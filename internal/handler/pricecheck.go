package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dimaswi/pos-sub002/internal/apierror"
	"github.com/dimaswi/pos-sub002/internal/dto"
	"github.com/dimaswi/pos-sub002/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const priceCacheTTL = 4 * time.Hour

// PriceCheckHandler serves the public price lookup used by in-store scanner
// kiosks. No authentication, no side effects.
type PriceCheckHandler struct {
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
	rdb           *redis.Client
}

func NewPriceCheckHandler(productRepo repository.ProductRepository, inventoryRepo repository.InventoryRepository, rdb *redis.Client) *PriceCheckHandler {
	return &PriceCheckHandler{productRepo: productRepo, inventoryRepo: inventoryRepo, rdb: rdb}
}

// GetPrice godoc
// @Summary Price check by barcode (no authentication)
// @Tags price
// @Produce json
// @Param store_id path string true "Store UUID"
// @Param barcode  path string true "Barcode"
// @Success 200 {object} dto.PriceResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/price/{store_id}/{barcode} [get]
func (h *PriceCheckHandler) GetPrice(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("store_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid store_id"))
		return
	}
	barcode := c.Param("barcode")
	ctx := c.Request.Context()
	cacheKey := "price:" + storeID.String() + ":" + barcode

	// Try Redis first — kiosks hammer this endpoint
	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.PriceResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	product, err := h.productRepo.FindByBarcode(ctx, barcode)
	if err != nil || !product.Active {
		c.JSON(http.StatusNotFound, apierror.New("product not found"))
		return
	}

	inStock := 0
	if inv, err := h.inventoryRepo.Find(ctx, storeID, product.ID); err == nil {
		inStock = inv.Quantity
	}

	resp := dto.PriceResponse{
		ProductID: product.ID.String(),
		Barcode:   product.Barcode,
		Name:      product.Name,
		SellPrice: product.SellPrice,
		InStock:   inStock,
	}

	// Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, priceCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
