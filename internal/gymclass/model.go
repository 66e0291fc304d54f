package gymclass

import (
	"errors"
	"time"

	"frontdesk/internal/calendar"
)

type Room string

const (
	RoomStudioA    Room = "Studio A"
	RoomStudioB    Room = "Studio B"
	RoomMainFloor  Room = "Main Floor"
	RoomSpin       Room = "Spin Room"
	RoomYogaStudio Room = "Yoga Studio"
	RoomPool       Room = "Pool"
)

// Rooms lists every bookable space in display order.
var Rooms = []Room{RoomStudioA, RoomStudioB, RoomMainFloor, RoomSpin, RoomYogaStudio, RoomPool}

func (r Room) Valid() bool {
	for _, known := range Rooms {
		if r == known {
			return true
		}
	}
	return false
}

type AttendeeKind string

const (
	AttendeeMember AttendeeKind = "member"
	AttendeeGuest  AttendeeKind = "guest"
)

var ErrInvalidAttendee = errors.New("attendee must be a member or guest with an id")

// AttendeeRef is a weak reference to a member or guest.
type AttendeeRef struct {
	Kind AttendeeKind `json:"kind" db:"attendee_kind"`
	ID   string       `json:"id" db:"attendee_id"`
}

func (a AttendeeRef) Validate() error {
	if a.ID == "" || (a.Kind != AttendeeMember && a.Kind != AttendeeGuest) {
		return ErrInvalidAttendee
	}
	return nil
}

func (a AttendeeRef) String() string {
	return string(a.Kind) + ":" + a.ID
}

type WaitlistEntry struct {
	Attendee AttendeeRef `json:"attendee"`
	JoinedAt time.Time   `json:"joined_at"`
}

// GymClass is one scheduled session of a class type.
type GymClass struct {
	ID              string            `json:"id"`
	Type            string            `json:"type"`
	TrainerID       string            `json:"trainer_id"`
	Room            Room              `json:"room"`
	Date            calendar.Date     `json:"date"`
	Interval        calendar.Interval `json:"interval"`
	Capacity        int               `json:"capacity"`
	Attendees       []AttendeeRef     `json:"attendees"`
	Waitlist        []WaitlistEntry   `json:"waitlist"`
	WaitlistEnabled bool              `json:"waitlist_enabled"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type AttendanceLevel string

const (
	AttendanceLow      AttendanceLevel = "low"
	AttendanceModerate AttendanceLevel = "moderate"
	AttendanceHigh     AttendanceLevel = "high"
	AttendanceFull     AttendanceLevel = "full"
)

// Overlaps reports whether both sessions share the date and their intervals intersect.
func (c *GymClass) Overlaps(o GymClass) bool {
	return c.Date == o.Date && c.Interval.Overlaps(o.Interval)
}

func (c *GymClass) IsFull() bool {
	return len(c.Attendees) >= c.Capacity
}

func (c *GymClass) SeatsLeft() int {
	if n := c.Capacity - len(c.Attendees); n > 0 {
		return n
	}
	return 0
}

// AttendancePercentage is used only for display classification.
func (c *GymClass) AttendancePercentage() float64 {
	if c.Capacity <= 0 {
		return 0
	}
	return float64(len(c.Attendees)) / float64(c.Capacity) * 100
}

func (c *GymClass) AttendanceLevel() AttendanceLevel {
	pct := c.AttendancePercentage()
	switch {
	case pct >= 100:
		return AttendanceFull
	case pct >= 80:
		return AttendanceHigh
	case pct >= 50:
		return AttendanceModerate
	default:
		return AttendanceLow
	}
}

func (c *GymClass) HasAttendee(ref AttendeeRef) bool {
	for _, a := range c.Attendees {
		if a == ref {
			return true
		}
	}
	return false
}

// WaitlistPosition returns the 1-based waitlist position of ref, or 0.
func (c *GymClass) WaitlistPosition(ref AttendeeRef) int {
	for i, e := range c.Waitlist {
		if e.Attendee == ref {
			return i + 1
		}
	}
	return 0
}

func (c *GymClass) RemoveAttendee(ref AttendeeRef) bool {
	for i, a := range c.Attendees {
		if a == ref {
			c.Attendees = append(c.Attendees[:i], c.Attendees[i+1:]...)
			return true
		}
	}
	return false
}

func (c *GymClass) RemoveFromWaitlist(ref AttendeeRef) bool {
	for i, e := range c.Waitlist {
		if e.Attendee == ref {
			c.Waitlist = append(c.Waitlist[:i], c.Waitlist[i+1:]...)
			return true
		}
	}
	return false
}

// PromoteWaitlisted moves waitlisted entrants onto the roster in arrival
// order until the class is full, and returns who was promoted.
func (c *GymClass) PromoteWaitlisted() []AttendeeRef {
	var promoted []AttendeeRef
	for len(c.Waitlist) > 0 && !c.IsFull() {
		next := c.Waitlist[0]
		c.Waitlist = c.Waitlist[1:]
		c.Attendees = append(c.Attendees, next.Attendee)
		promoted = append(promoted, next.Attendee)
	}
	return promoted
}

// Clone returns a copy that shares no slices with c.
func (c GymClass) Clone() GymClass {
	cp := c
	cp.Attendees = append([]AttendeeRef{}, c.Attendees...)
	cp.Waitlist = append([]WaitlistEntry{}, c.Waitlist...)
	return cp
}
