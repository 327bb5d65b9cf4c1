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

type TransactionsHandler struct{ svc service.TransactionService }

func NewTransactionsHandler(svc service.TransactionService) *TransactionsHandler {
	return &TransactionsHandler{svc: svc}
}

// Settle godoc
// @Summary      Settle a sales transaction
// @Description  Atomically creates the transaction, decrements stock, applies discounts and records payments.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SettleRequest true "Cart, payments, optional customer and promo"
// @Success      201  {object} dto.TransactionResponse
// @Failure      422  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /v1/transactions [post]
func (h *TransactionsHandler) Settle(c *gin.Context) {
	var req dto.SettleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	cashierID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Settle(c.Request.Context(), cashierID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Void godoc
// @Summary      Void a transaction
// @Description  Fully reverses a completed transaction: restores stock, voids payments, releases promo usage.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string          true "Transaction UUID"
// @Param        body body dto.VoidRequest true "Void reason"
// @Success      200  {object} dto.TransactionResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/transactions/{id}/void [post]
func (h *TransactionsHandler) Void(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.VoidRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	voidedBy, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Void(c.Request.Context(), voidedBy, id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get one transaction
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Transaction UUID"
// @Success      200 {object} dto.TransactionResponse
// @Failure      422 {object} apierror.APIError
// @Router       /v1/transactions/{id} [get]
func (h *TransactionsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List transactions
// @Description  Paginated list filtered by date (default: today), store and status.
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        date     query string false "Date YYYY-MM-DD (default: today)"
// @Param        store_id query string false "Store UUID"
// @Param        status   query string false "completed | voided | refunded | all"
// @Param        page     query int    false "Page (default 1)"
// @Param        limit    query int    false "Page size (default 50)"
// @Success      200 {object} dto.TransactionListResponse
// @Router       /v1/transactions [get]
func (h *TransactionsHandler) List(c *gin.Context) {
	var filter dto.TransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
