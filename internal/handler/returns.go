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

type ReturnsHandler struct{ svc service.ReturnService }

func NewReturnsHandler(svc service.ReturnService) *ReturnsHandler {
	return &ReturnsHandler{svc: svc}
}

// Create godoc
// @Summary      Open a return request
// @Description  Creates a pending return against a settled transaction. At most one pending return per transaction.
// @Tags         returns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateReturnRequest true "Items to return"
// @Success      201  {object} dto.ReturnResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/returns [post]
func (h *ReturnsHandler) Create(c *gin.Context) {
	var req dto.CreateReturnRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	requestedBy, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Create(c.Request.Context(), requestedBy, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary      Edit a pending return
// @Tags         returns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "Return UUID"
// @Param        body body dto.UpdateReturnRequest true "Replacement item lines"
// @Success      200  {object} dto.ReturnResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/returns/{id} [put]
func (h *ReturnsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.UpdateReturnRequest
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
// @Summary      Delete a pending return
// @Tags         returns
// @Security     BearerAuth
// @Param        id path string true "Return UUID"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/returns/{id} [delete]
func (h *ReturnsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Approve godoc
// @Summary      Approve a pending return
// @Description  Restocks good-condition items and re-derives the transaction status.
// @Tags         returns
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Return UUID"
// @Success      200 {object} dto.ReturnResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/returns/{id}/approve [post]
func (h *ReturnsHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	claims := middleware.GetClaims(c)
	approvedBy, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Approve(c.Request.Context(), approvedBy, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reject godoc
// @Summary      Reject a pending return
// @Tags         returns
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Return UUID"
// @Success      200 {object} dto.ReturnResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/returns/{id}/reject [post]
func (h *ReturnsHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	claims := middleware.GetClaims(c)
	rejectedBy, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Reject(c.Request.Context(), rejectedBy, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get one return
// @Tags         returns
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Return UUID"
// @Success      200 {object} dto.ReturnResponse
// @Router       /v1/returns/{id} [get]
func (h *ReturnsHandler) Get(c *gin.Context) {
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
// @Summary      List returns
// @Tags         returns
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "pending | approved | rejected | all"
// @Param        page   query int    false "Page (default 1)"
// @Param        limit  query int    false "Page size (default 50)"
// @Success      200 {object} dto.ReturnListResponse
// @Router       /v1/returns [get]
func (h *ReturnsHandler) List(c *gin.Context) {
	var filter dto.ReturnFilter
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
