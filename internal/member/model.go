package member

import (
	"errors"
	"strings"
	"time"

	"frontdesk/internal/calendar"
)

type MembershipStatus string
type MembershipType string

const (
	StatusActive   MembershipStatus = "active"
	StatusInactive MembershipStatus = "inactive"
	StatusExpired  MembershipStatus = "expired"
	StatusFrozen   MembershipStatus = "frozen"
	StatusPending  MembershipStatus = "pending"

	TypeBasic   MembershipType = "basic"
	TypePremium MembershipType = "premium"
	TypeVIP     MembershipType = "vip"
)

var (
	ErrInvalidMember           = errors.New("member requires an id and a name")
	ErrInvalidMembershipPeriod = errors.New("membership end date is before its start date")
	ErrInvalidStatus           = errors.New("unknown membership status")
)

func (s MembershipStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusExpired, StatusFrozen, StatusPending:
		return true
	}
	return false
}

type CheckIn struct {
	ID       string    `json:"id" db:"id"`
	DateTime time.Time `json:"date_time" db:"checked_in_at"`
}

type Member struct {
	ID                  string           `json:"id"`
	FirstName           string           `json:"first_name"`
	LastName            string           `json:"last_name"`
	Email               string           `json:"email"`
	Phone               string           `json:"phone"`
	DateOfBirth         *calendar.Date   `json:"date_of_birth,omitempty"`
	MembershipType      MembershipType   `json:"membership_type"`
	MembershipStatus    MembershipStatus `json:"membership_status"`
	MembershipStartDate time.Time        `json:"membership_start_date"`
	MembershipEndDate   time.Time        `json:"membership_end_date"`
	Tags                []string         `json:"tags"`
	// CheckIns is newest first.
	CheckIns  []CheckIn `json:"check_ins"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Member) Validate() error {
	if m.ID == "" || strings.TrimSpace(m.FirstName+m.LastName) == "" {
		return ErrInvalidMember
	}
	if !m.MembershipStatus.Valid() {
		return ErrInvalidStatus
	}
	if m.MembershipEndDate.Before(m.MembershipStartDate) {
		return ErrInvalidMembershipPeriod
	}
	return nil
}

func (m *Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// HasTag matches tags case-insensitively.
func (m *Member) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

// DaysUntilExpiry counts whole calendar days in loc from now to the
// membership end date. Negative means the membership has lapsed.
func (m *Member) DaysUntilExpiry(now time.Time, loc *time.Location) int {
	return calendar.DaysUntil(now, m.MembershipEndDate, loc)
}

func (m *Member) IsBirthday(now time.Time, loc *time.Location) bool {
	if m.DateOfBirth == nil || m.DateOfBirth.IsZero() {
		return false
	}
	if loc == nil {
		loc = time.UTC
	}
	return calendar.SameMonthDay(m.DateOfBirth.In(loc), now.In(loc))
}

func (m *Member) LastCheckIn() (CheckIn, bool) {
	if len(m.CheckIns) == 0 {
		return CheckIn{}, false
	}
	return m.CheckIns[0], true
}

// RecordCheckIn prepends c so the history stays newest first.
func (m *Member) RecordCheckIn(c CheckIn) {
	m.CheckIns = append([]CheckIn{c}, m.CheckIns...)
}

func (m Member) Clone() Member {
	cp := m
	if m.DateOfBirth != nil {
		dob := *m.DateOfBirth
		cp.DateOfBirth = &dob
	}
	cp.Tags = append([]string{}, m.Tags...)
	cp.CheckIns = append([]CheckIn{}, m.CheckIns...)
	return cp
}
