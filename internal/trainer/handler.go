package trainer

import (
	"errors"
	"net/http"

	"frontdesk/internal/api"
	"frontdesk/internal/clock"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	FirstName    string   `json:"first_name" binding:"required"`
	LastName     string   `json:"last_name"`
	Email        string   `json:"email" binding:"omitempty,email"`
	Phone        string   `json:"phone"`
	Specialties  []string `json:"specialties"`
	Availability []Window `json:"availability"`
}

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
	t := Trainer{
		ID:              uuid.NewString(),
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		Specialties:     append([]string{}, req.Specialties...),
		Availability:    append([]Window{}, req.Availability...),
		AssignedClasses: []string{},
		AssignedMembers: []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	t.SortAvailability()
	if err := t.Validate(); err != nil {
		api.BadRequest(c, err)
		return
	}
	if err := h.repo.Save(c.Request.Context(), t); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to register trainer"})
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) List(c *gin.Context) {
	trainers, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to list trainers"})
		return
	}
	c.JSON(http.StatusOK, trainers)
}

func (h *Handler) Get(c *gin.Context) {
	t, err := h.repo.Get(c.Request.Context(), c.Param("trainerID"))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Trainer not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load trainer"})
		return
	}
	c.JSON(http.StatusOK, t)
}
