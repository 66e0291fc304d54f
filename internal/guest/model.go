package guest

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type VisitPurpose string
type Status string

const (
	PurposeTrial   VisitPurpose = "trial"
	PurposeDayPass VisitPurpose = "day_pass"
	PurposeTour    VisitPurpose = "tour"
	PurposeClass   VisitPurpose = "class"
	PurposeOther   VisitPurpose = "other"

	StatusScheduled  Status = "scheduled"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
)

var (
	ErrInvalidGuest          = errors.New("guest requires an id and a name")
	ErrAlreadyCheckedIn      = errors.New("guest is already checked in")
	ErrNotCheckedIn          = errors.New("guest is not checked in")
	ErrCheckOutBeforeCheckIn = errors.New("check-out cannot precede check-in")
	ErrAlreadyConverted      = errors.New("guest was already converted to a member")
)

// Visit is one stay at the gym. CheckOut stays nil while the guest is inside.
type Visit struct {
	ID       string       `json:"id" db:"id"`
	Purpose  VisitPurpose `json:"purpose" db:"purpose"`
	CheckIn  time.Time    `json:"check_in" db:"checked_in_at"`
	CheckOut *time.Time   `json:"check_out,omitempty" db:"checked_out_at"`
}

type Guest struct {
	ID               string       `json:"id"`
	FirstName        string       `json:"first_name"`
	LastName         string       `json:"last_name"`
	Email            string       `json:"email"`
	Phone            string       `json:"phone"`
	VisitPurpose     VisitPurpose `json:"visit_purpose"`
	WaiverSigned     bool         `json:"waiver_signed"`
	Status           Status       `json:"status"`
	CheckInDateTime  time.Time    `json:"check_in_date_time"`
	CheckOutDateTime *time.Time   `json:"check_out_date_time,omitempty"`
	HostMemberID     string       `json:"host_member_id,omitempty"`
	// VisitHistory is oldest first.
	VisitHistory      []Visit   `json:"visit_history"`
	ConvertedToMember bool      `json:"converted_to_member"`
	ConvertedMemberID string    `json:"converted_member_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (g *Guest) Validate() error {
	if g.ID == "" || strings.TrimSpace(g.FirstName+g.LastName) == "" {
		return ErrInvalidGuest
	}
	if g.CheckOutDateTime != nil && g.CheckOutDateTime.Before(g.CheckInDateTime) {
		return ErrCheckOutBeforeCheckIn
	}
	return nil
}

func (g *Guest) FullName() string {
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}

func (g *Guest) CheckIn(now time.Time, visitID string) error {
	if g.Status == StatusCheckedIn {
		return ErrAlreadyCheckedIn
	}
	g.Status = StatusCheckedIn
	g.CheckInDateTime = now
	g.CheckOutDateTime = nil
	g.VisitHistory = append(g.VisitHistory, Visit{ID: visitID, Purpose: g.VisitPurpose, CheckIn: now})
	g.UpdatedAt = now
	return nil
}

// CheckOut closes the current stay and back-fills the open visit.
func (g *Guest) CheckOut(now time.Time) error {
	if g.Status != StatusCheckedIn {
		return ErrNotCheckedIn
	}
	if now.Before(g.CheckInDateTime) {
		return ErrCheckOutBeforeCheckIn
	}
	out := now
	g.Status = StatusCheckedOut
	g.CheckOutDateTime = &out
	for i := len(g.VisitHistory) - 1; i >= 0; i-- {
		if g.VisitHistory[i].CheckOut == nil {
			g.VisitHistory[i].CheckOut = &out
			break
		}
	}
	g.UpdatedAt = now
	return nil
}

func (g *Guest) MarkConverted(memberID string, now time.Time) error {
	if g.ConvertedToMember {
		return ErrAlreadyConverted
	}
	g.ConvertedToMember = true
	g.ConvertedMemberID = memberID
	g.UpdatedAt = now
	return nil
}

// VisitDuration is the length of the last completed stay.
func (g *Guest) VisitDuration() (time.Duration, bool) {
	if g.CheckOutDateTime == nil {
		return 0, false
	}
	return g.CheckOutDateTime.Sub(g.CheckInDateTime), true
}

// FormatDuration renders whole minutes as "45m" or "1h 30m".
func FormatDuration(d time.Duration) string {
	minutes := int(d / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func (g Guest) Clone() Guest {
	cp := g
	if g.CheckOutDateTime != nil {
		out := *g.CheckOutDateTime
		cp.CheckOutDateTime = &out
	}
	cp.VisitHistory = make([]Visit, len(g.VisitHistory))
	for i, v := range g.VisitHistory {
		if v.CheckOut != nil {
			out := *v.CheckOut
			v.CheckOut = &out
		}
		cp.VisitHistory[i] = v
	}
	return cp
}
