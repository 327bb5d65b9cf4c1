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

type TransfersHandler struct{ svc service.TransferService }

func NewTransfersHandler(svc service.TransferService) *TransfersHandler {
	return &TransfersHandler{svc: svc}
}

func (h *TransfersHandler) actor(c *gin.Context) uuid.UUID {
	claims := middleware.GetClaims(c)
	id, _ := uuid.Parse(claims.UserID)
	return id
}

func (h *TransfersHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// Create godoc
// @Summary      Create a stock transfer
// @Description  Creates a transfer between two stores, as draft or straight to pending.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateTransferRequest true "Transfer details"
// @Success      201  {object} dto.TransferResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/transfers [post]
func (h *TransfersHandler) Create(c *gin.Context) {
	var req dto.CreateTransferRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), h.actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary      Edit a draft or pending transfer
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                    true "Transfer UUID"
// @Param        body body dto.UpdateTransferRequest true "Replacement lines"
// @Success      200  {object} dto.TransferResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/transfers/{id} [put]
func (h *TransfersHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateTransferRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete a draft or pending transfer
// @Tags         transfers
// @Security     BearerAuth
// @Param        id path string true "Transfer UUID"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/transfers/{id} [delete]
func (h *TransfersHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Submit godoc
// @Summary      Submit a draft transfer for approval
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Transfer UUID"
// @Success      200 {object} dto.TransferResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/transfers/{id}/submit [post]
func (h *TransfersHandler) Submit(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Submit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Approve godoc
// @Summary      Approve a transfer
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Transfer UUID"
// @Success      200 {object} dto.TransferResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/transfers/{id}/approve [post]
func (h *TransfersHandler) Approve(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Approve(c.Request.Context(), h.actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reject godoc
// @Summary      Reject a pending transfer
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Transfer UUID"
// @Success      200 {object} dto.TransferResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/transfers/{id}/reject [post]
func (h *TransfersHandler) Reject(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Reject(c.Request.Context(), h.actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary      Cancel a pending or approved transfer
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Transfer UUID"
// @Success      200 {object} dto.TransferResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/transfers/{id}/cancel [post]
func (h *TransfersHandler) Cancel(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ship godoc
// @Summary      Ship an approved transfer
// @Description  Debits every line from the sending store and records transfer-out movements.
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Transfer UUID"
// @Success      200 {object} dto.TransferResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/transfers/{id}/ship [post]
func (h *TransfersHandler) Ship(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Ship(c.Request.Context(), h.actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Receive godoc
// @Summary      Receive a shipped transfer
// @Description  Credits the destination store at the counted quantities; uncounted lines are received in full.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                     true "Transfer UUID"
// @Param        body body dto.ReceiveTransferRequest true "Optional per-line counts"
// @Success      200  {object} dto.TransferResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/transfers/{id}/receive [post]
func (h *TransfersHandler) Receive(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.ReceiveTransferRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Receive(c.Request.Context(), h.actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get one transfer
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Transfer UUID"
// @Success      200 {object} dto.TransferResponse
// @Router       /v1/transfers/{id} [get]
func (h *TransfersHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
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
// @Summary      List transfers
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Param        status   query string false "draft | pending | approved | shipped | received | cancelled | rejected | all"
// @Param        store_id query string false "Match either side of the transfer"
// @Param        page     query int    false "Page (default 1)"
// @Param        limit    query int    false "Page size (default 50)"
// @Success      200 {object} dto.TransferListResponse
// @Router       /v1/transfers [get]
func (h *TransfersHandler) List(c *gin.Context) {
	var filter dto.TransferFilter
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
