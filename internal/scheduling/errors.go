package scheduling

import (
	"errors"
	"fmt"

	"frontdesk/internal/calendar"
	"frontdesk/internal/gymclass"
)

var (
	ErrInvalidSession      = errors.New("invalid class session")
	ErrRoomConflict        = errors.New("room is already booked at that time")
	ErrTrainerConflict     = errors.New("trainer is already teaching at that time")
	ErrTrainerUnavailable  = errors.New("trainer is not available at that time")
	ErrCapacityBelowRoster = errors.New("capacity is below the confirmed roster")
	ErrClassFull           = errors.New("class is full")
	ErrAlreadyBooked       = errors.New("attendee is already booked for this class")
	ErrNotBooked           = errors.New("attendee is not booked for this class")
	ErrClassEnded          = errors.New("class has already ended")
	ErrConcurrentUpdate    = errors.New("class was moved by another request, retry")
	ErrWaitlistNotEmpty    = errors.New("waitlist still has entrants, cancel them before disabling it")
)

// ConflictError names the existing session a draft collides with.
type ConflictError struct {
	Err       error
	ClassID   string
	Room      gymclass.Room
	TrainerID string
	Date      calendar.Date
	Interval  calendar.Interval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: class %s in %s on %s %s", e.Err, e.ClassID, e.Room, e.Date, e.Interval)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

func conflictWith(err error, c gymclass.GymClass) *ConflictError {
	return &ConflictError{
		Err:       err,
		ClassID:   c.ID,
		Room:      c.Room,
		TrainerID: c.TrainerID,
		Date:      c.Date,
		Interval:  c.Interval,
	}
}

// findConflict checks rooms across all sessions before trainers, so a room
// clash wins when both apply.
func findConflict(existing []gymclass.GymClass, candidate gymclass.GymClass) error {
	overlapping := make([]gymclass.GymClass, 0, len(existing))
	for _, c := range existing {
		if c.ID != candidate.ID && candidate.Overlaps(c) {
			overlapping = append(overlapping, c)
		}
	}
	for _, c := range overlapping {
		if c.Room == candidate.Room {
			return conflictWith(ErrRoomConflict, c)
		}
	}
	for _, c := range overlapping {
		if c.TrainerID == candidate.TrainerID {
			return conflictWith(ErrTrainerConflict, c)
		}
	}
	return nil
}

// metricLabel maps an engine error onto a short metrics label.
func metricLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidSession):
		return "invalid"
	case errors.Is(err, ErrRoomConflict):
		return "room_conflict"
	case errors.Is(err, ErrTrainerConflict):
		return "trainer_conflict"
	case errors.Is(err, ErrTrainerUnavailable):
		return "trainer_unavailable"
	case errors.Is(err, ErrCapacityBelowRoster):
		return "capacity_below_roster"
	case errors.Is(err, ErrWaitlistNotEmpty):
		return "waitlist_not_empty"
	case errors.Is(err, ErrClassFull):
		return "full"
	case errors.Is(err, ErrAlreadyBooked):
		return "already_booked"
	case errors.Is(err, ErrClassEnded):
		return "ended"
	case errors.Is(err, gymclass.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
