package scheduling

import (
	"errors"
	"net/http"

	"frontdesk/internal/api"
	"frontdesk/internal/calendar"
	"frontdesk/internal/gymclass"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type BookRequest struct {
	Kind gymclass.AttendeeKind `json:"kind" binding:"required,oneof=member guest"`
	ID   string                `json:"id" binding:"required"`
}

// ConflictResponse is returned with 409 when a draft collides with a session.
type ConflictResponse struct {
	Error         string `json:"error"`
	ConflictingID string `json:"conflicting_class_id"`
}

// @Summary      Schedule a class
// @Tags         classes
// @Accept       json
// @Produce      json
// @Param        request body scheduling.SessionDraft true "Session draft"
// @Success      201 {object} scheduling.ClassView
// @Failure      400 {object} api.ErrorResponse
// @Failure      409 {object} scheduling.ConflictResponse
// @Router       /classes [post]
func (h *Handler) ScheduleClass(c *gin.Context) {
	var d SessionDraft
	if err := c.ShouldBindJSON(&d); err != nil {
		api.BadRequest(c, err)
		return
	}

	class, err := h.service.ScheduleClass(c.Request.Context(), d)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, View(class))
}

// @Summary      Reschedule a class
// @Tags         classes
// @Accept       json
// @Produce      json
// @Param        classID path string true "Class ID"
// @Param        request body scheduling.SessionDraft true "Session draft"
// @Success      200 {object} scheduling.ClassView
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} scheduling.ConflictResponse
// @Router       /classes/{classID} [put]
func (h *Handler) RescheduleClass(c *gin.Context) {
	var d SessionDraft
	if err := c.ShouldBindJSON(&d); err != nil {
		api.BadRequest(c, err)
		return
	}

	class, err := h.service.RescheduleClass(c.Request.Context(), c.Param("classID"), d)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, View(class))
}

func (h *Handler) GetClass(c *gin.Context) {
	class, err := h.service.GetClass(c.Request.Context(), c.Param("classID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, View(class))
}

// @Summary      List classes
// @Tags         classes
// @Produce      json
// @Param        date query string false "Date (YYYY-MM-DD)"
// @Success      200 {array} scheduling.ClassView
// @Failure      400 {object} api.ErrorResponse
// @Router       /classes [get]
func (h *Handler) ListClasses(c *gin.Context) {
	var date calendar.Date
	if raw := c.Query("date"); raw != "" {
		parsed, err := calendar.ParseDate(raw)
		if err != nil {
			api.BadRequest(c, err)
			return
		}
		date = parsed
	}

	classes, err := h.service.ListClasses(c.Request.Context(), date)
	if err != nil {
		writeError(c, err)
		return
	}
	views := make([]ClassView, 0, len(classes))
	for _, class := range classes {
		views = append(views, View(class))
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) AvailableRooms(c *gin.Context) {
	date, err := calendar.ParseDate(c.Query("date"))
	if err != nil {
		api.BadRequest(c, err)
		return
	}
	start, err := calendar.ParseTimeOfDay(c.Query("start"))
	if err != nil {
		api.BadRequest(c, err)
		return
	}
	end, err := calendar.ParseTimeOfDay(c.Query("end"))
	if err != nil {
		api.BadRequest(c, err)
		return
	}

	rooms, err := h.service.AvailableRooms(c.Request.Context(), date, calendar.Interval{Start: start, End: end})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "start": start, "end": end, "rooms": rooms})
}

// @Summary      Book a member or guest into a class
// @Description  Confirms a seat, or joins the waitlist when the class is full and waitlisting is on
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        classID path string true "Class ID"
// @Param        request body scheduling.BookRequest true "Attendee"
// @Success      201 {object} scheduling.BookingOutcome
// @Success      202 {object} scheduling.BookingOutcome
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /classes/{classID}/bookings [post]
func (h *Handler) BookAttendee(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, err)
		return
	}

	out, err := h.service.BookAttendee(c.Request.Context(), c.Param("classID"), gymclass.AttendeeRef{Kind: req.Kind, ID: req.ID})
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusCreated
	if out.Status == StatusWaitlisted {
		status = http.StatusAccepted
	}
	c.JSON(status, out)
}

// @Summary      Cancel a booking
// @Tags         bookings
// @Produce      json
// @Param        classID path string true "Class ID"
// @Param        kind path string true "member or guest"
// @Param        attendeeID path string true "Attendee ID"
// @Success      200 {object} scheduling.CancelOutcome
// @Failure      404 {object} api.ErrorResponse
// @Router       /classes/{classID}/bookings/{kind}/{attendeeID} [delete]
func (h *Handler) CancelBooking(c *gin.Context) {
	ref := gymclass.AttendeeRef{Kind: gymclass.AttendeeKind(c.Param("kind")), ID: c.Param("attendeeID")}

	out, err := h.service.CancelBooking(c.Request.Context(), c.Param("classID"), ref)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func writeError(c *gin.Context, err error) {
	var conflict *ConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, ConflictResponse{Error: conflict.Error(), ConflictingID: conflict.ClassID})
	case errors.Is(err, ErrInvalidSession), errors.Is(err, gymclass.ErrInvalidAttendee):
		api.BadRequest(c, err)
	case errors.Is(err, gymclass.ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Class not found"})
	case errors.Is(err, ErrNotBooked):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrClassFull),
		errors.Is(err, ErrAlreadyBooked),
		errors.Is(err, ErrClassEnded),
		errors.Is(err, ErrTrainerUnavailable),
		errors.Is(err, ErrCapacityBelowRoster),
		errors.Is(err, ErrWaitlistNotEmpty),
		errors.Is(err, ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
	}
}
