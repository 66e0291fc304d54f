package guest

import (
	"errors"
	"net/http"

	"frontdesk/internal/api"
	"frontdesk/internal/clock"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	FirstName    string       `json:"first_name" binding:"required"`
	LastName     string       `json:"last_name"`
	Email        string       `json:"email" binding:"omitempty,email"`
	Phone        string       `json:"phone"`
	VisitPurpose VisitPurpose `json:"visit_purpose" binding:"required,oneof=trial day_pass tour class other"`
	WaiverSigned bool         `json:"waiver_signed"`
	HostMemberID string       `json:"host_member_id"`
}

// Handler registers guests ahead of their visit. Check-in and check-out go
// through the check-in engine.
type Handler struct {
	repo  Repository
	clock clock.Clock
}

func NewHandler(repo Repository, clk clock.Clock) *Handler {
	return &Handler{repo: repo, clock: clk}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, err)
		return
	}

	now := h.clock.Now()
	g := Guest{
		ID:              uuid.NewString(),
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		VisitPurpose:    req.VisitPurpose,
		WaiverSigned:    req.WaiverSigned,
		Status:          StatusScheduled,
		CheckInDateTime: now,
		HostMemberID:    req.HostMemberID,
		VisitHistory:    []Visit{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := h.repo.Save(c.Request.Context(), g); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to register guest"})
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *Handler) Get(c *gin.Context) {
	g, err := h.repo.Get(c.Request.Context(), c.Param("guestID"))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Guest not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load guest"})
		return
	}
	c.JSON(http.StatusOK, g)
}
