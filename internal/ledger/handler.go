package ledger

import (
	"errors"
	"net/http"
	"strconv"

	"frontdesk/internal/api"
	"frontdesk/internal/member"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type RecordRequest struct {
	Kind        EntryKind `json:"kind" binding:"required,oneof=charge payment credit"`
	AmountCents int64     `json:"amount_cents" binding:"required,gt=0"`
	Description string    `json:"description"`
}

// @Summary      Record a charge, payment or credit
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        memberID path string true "Member ID"
// @Param        request body ledger.RecordRequest true "Ledger entry"
// @Success      201 {object} ledger.Entry
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /members/{memberID}/ledger [post]
func (h *Handler) Record(c *gin.Context) {
	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, err)
		return
	}

	e, err := h.service.Record(c.Request.Context(), c.Param("memberID"), req.Kind, req.AmountCents, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, member.ErrNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Member not found"})
		case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidKind):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to record ledger entry"})
		}
		return
	}

	c.JSON(http.StatusCreated, e)
}

func (h *Handler) Statement(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	st, err := h.service.Statement(c.Request.Context(), c.Param("memberID"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load ledger"})
		return
	}
	c.JSON(http.StatusOK, st)
}
