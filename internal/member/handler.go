package member

import (
	"errors"
	"net/http"
	"time"

	"frontdesk/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type RenewRequest struct {
	Until time.Time `json:"until" binding:"required"`
}

// @Summary      Enroll a member
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        request body member.EnrollRequest true "Member payload"
// @Success      201 {object} member.Member
// @Failure      400 {object} api.ErrorResponse
// @Router       /members [post]
func (h *Handler) Enroll(c *gin.Context) {
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, err)
		return
	}

	m, err := h.service.Enroll(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) Get(c *gin.Context) {
	m, err := h.service.Get(c.Request.Context(), c.Param("memberID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// @Summary      Renew a membership
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        memberID path string true "Member ID"
// @Param        request body member.RenewRequest true "New end date"
// @Success      200 {object} member.Member
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /members/{memberID}/renew [post]
func (h *Handler) Renew(c *gin.Context) {
	var req RenewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, err)
		return
	}

	m, err := h.service.Renew(c.Request.Context(), c.Param("memberID"), req.Until)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) Freeze(c *gin.Context) {
	m, err := h.service.Freeze(c.Request.Context(), c.Param("memberID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) Unfreeze(c *gin.Context) {
	m, err := h.service.Unfreeze(c.Request.Context(), c.Param("memberID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Member not found"})
	case errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrInvalidRenewal),
		errors.Is(err, ErrInvalidMember),
		errors.Is(err, ErrInvalidMembershipPeriod):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update member"})
	}
}
