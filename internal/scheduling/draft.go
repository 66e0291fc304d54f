package scheduling

import (
	"fmt"
	"time"

	"frontdesk/internal/calendar"
	"frontdesk/internal/gymclass"

	"github.com/go-playground/validator/v10"
)

type WaitlistPolicy string

const (
	WaitlistDefault  WaitlistPolicy = "default"
	WaitlistEnabled  WaitlistPolicy = "enabled"
	WaitlistDisabled WaitlistPolicy = "disabled"
)

// SessionDraft is the input for scheduling or rescheduling a class.
type SessionDraft struct {
	Type      string             `json:"type" validate:"required,max=64"`
	Room      gymclass.Room      `json:"room" validate:"required,room"`
	Date      calendar.Date      `json:"date"`
	Start     calendar.TimeOfDay `json:"start"`
	End       calendar.TimeOfDay `json:"end"`
	TrainerID string             `json:"trainer_id" validate:"required"`
	Capacity  int                `json:"capacity" validate:"gt=0,lte=500"`
	Waitlist  WaitlistPolicy     `json:"waitlist,omitempty" validate:"omitempty,oneof=default enabled disabled"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("room", func(fl validator.FieldLevel) bool {
		return gymclass.Room(fl.Field().String()).Valid()
	})
	return v
}

func (d SessionDraft) Interval() calendar.Interval {
	return calendar.Interval{Start: d.Start, End: d.End}
}

func (d SessionDraft) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	if d.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidSession)
	}
	if !d.Interval().Valid() {
		return fmt.Errorf("%w: start must be before end", ErrInvalidSession)
	}
	return nil
}

func (d SessionDraft) waitlistEnabled(fallback bool) bool {
	switch d.Waitlist {
	case WaitlistEnabled:
		return true
	case WaitlistDisabled:
		return false
	default:
		return fallback
	}
}

// apply copies the draft onto c, leaving identity and roster untouched.
func (d SessionDraft) apply(c *gymclass.GymClass, waitlistDefault bool, now time.Time) {
	c.Type = d.Type
	c.Room = d.Room
	c.Date = d.Date
	c.Interval = d.Interval()
	c.TrainerID = d.TrainerID
	c.Capacity = d.Capacity
	c.WaitlistEnabled = d.waitlistEnabled(waitlistDefault)
	c.UpdatedAt = now
}
