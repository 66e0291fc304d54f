package checkin

import (
	"errors"
	"net/http"

	"frontdesk/internal/api"
	"frontdesk/internal/guest"
	"frontdesk/internal/member"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type MemberCheckInResponse struct {
	Evaluation Evaluation     `json:"evaluation"`
	CheckIn    member.CheckIn `json:"check_in"`
}

type GuestCheckInResponse struct {
	Evaluation Evaluation  `json:"evaluation"`
	Guest      guest.Guest `json:"guest"`
}

type CheckOutResponse struct {
	Guest         guest.Guest `json:"guest"`
	VisitDuration string      `json:"visit_duration"`
}

// BlockedResponse is returned with 403 when a member may not enter.
type BlockedResponse struct {
	Error      string     `json:"error"`
	Evaluation Evaluation `json:"evaluation"`
}

// @Summary      Check member eligibility
// @Tags         check-ins
// @Produce      json
// @Param        memberID path string true "Member ID"
// @Success      200 {object} checkin.Evaluation
// @Failure      404 {object} api.ErrorResponse
// @Router       /members/{memberID}/eligibility [get]
func (h *Handler) MemberEligibility(c *gin.Context) {
	eval, err := h.service.EvaluateMember(c.Request.Context(), c.Param("memberID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, eval)
}

// @Summary      Check a member in
// @Tags         check-ins
// @Produce      json
// @Param        memberID path string true "Member ID"
// @Success      201 {object} checkin.MemberCheckInResponse
// @Failure      403 {object} checkin.BlockedResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /members/{memberID}/check-ins [post]
func (h *Handler) CheckInMember(c *gin.Context) {
	eval, ci, err := h.service.CheckInMember(c.Request.Context(), c.Param("memberID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MemberCheckInResponse{Evaluation: eval, CheckIn: ci})
}

func (h *Handler) GuestEligibility(c *gin.Context) {
	eval, err := h.service.EvaluateGuest(c.Request.Context(), c.Param("guestID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, eval)
}

func (h *Handler) CheckInGuest(c *gin.Context) {
	eval, g, err := h.service.CheckInGuest(c.Request.Context(), c.Param("guestID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, GuestCheckInResponse{Evaluation: eval, Guest: g})
}

func (h *Handler) CheckOutGuest(c *gin.Context) {
	g, err := h.service.CheckOutGuest(c.Request.Context(), c.Param("guestID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, CheckOutResponse{Guest: g, VisitDuration: VisitDuration(g)})
}

// @Summary      Convert a guest into a pending member
// @Tags         guests
// @Produce      json
// @Param        guestID path string true "Guest ID"
// @Success      201 {object} member.Member
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /guests/{guestID}/convert [post]
func (h *Handler) ConvertGuest(c *gin.Context) {
	m, err := h.service.ConvertGuest(c.Request.Context(), c.Param("guestID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func writeError(c *gin.Context, err error) {
	var blocked *BlockedError
	switch {
	case errors.As(err, &blocked):
		c.JSON(http.StatusForbidden, BlockedResponse{Error: blocked.Error(), Evaluation: blocked.Evaluation})
	case errors.Is(err, ErrMemberNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Member not found"})
	case errors.Is(err, ErrGuestNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Guest not found"})
	case errors.Is(err, ErrAlreadyCheckedIn),
		errors.Is(err, ErrNotCheckedIn),
		errors.Is(err, ErrCheckOutBeforeCheckIn),
		errors.Is(err, ErrAlreadyConverted):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
	}
}
