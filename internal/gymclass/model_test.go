package gymclass

import (
	"testing"
	"time"

	"frontdesk/internal/calendar"

	"github.com/stretchr/testify/assert"
)

func member(id string) AttendeeRef { return AttendeeRef{Kind: AttendeeMember, ID: id} }

func TestAttendanceLevel(t *testing.T) {
	tests := []struct {
		name      string
		attendees int
		capacity  int
		wantPct   float64
		wantLevel AttendanceLevel
	}{
		{"empty", 0, 10, 0, AttendanceLow},
		{"under half", 4, 10, 40, AttendanceLow},
		{"half", 5, 10, 50, AttendanceModerate},
		{"eighty", 8, 10, 80, AttendanceHigh},
		{"full", 10, 10, 100, AttendanceFull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := GymClass{Capacity: tt.capacity}
			for i := 0; i < tt.attendees; i++ {
				c.Attendees = append(c.Attendees, member(string(rune('a'+i))))
			}
			assert.InDelta(t, tt.wantPct, c.AttendancePercentage(), 0.001)
			assert.Equal(t, tt.wantLevel, c.AttendanceLevel())
		})
	}
}

func TestAttendancePercentageZeroCapacity(t *testing.T) {
	c := GymClass{}
	assert.Zero(t, c.AttendancePercentage())
}

func TestWaitlistPositionAndRemoval(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	c := GymClass{
		Capacity:  1,
		Attendees: []AttendeeRef{member("m1")},
		Waitlist: []WaitlistEntry{
			{Attendee: member("m2"), JoinedAt: now},
			{Attendee: member("m3"), JoinedAt: now.Add(time.Minute)},
		},
	}

	assert.Equal(t, 1, c.WaitlistPosition(member("m2")))
	assert.Equal(t, 2, c.WaitlistPosition(member("m3")))
	assert.Equal(t, 0, c.WaitlistPosition(member("m1")))

	assert.True(t, c.RemoveFromWaitlist(member("m2")))
	assert.False(t, c.RemoveFromWaitlist(member("m2")))
	assert.Equal(t, 1, c.WaitlistPosition(member("m3")))
}

func TestPromoteWaitlistedFillsInArrivalOrder(t *testing.T) {
	c := GymClass{
		Capacity:  3,
		Attendees: []AttendeeRef{member("m1")},
		Waitlist: []WaitlistEntry{
			{Attendee: member("w1")},
			{Attendee: member("w2")},
			{Attendee: member("w3")},
		},
	}

	promoted := c.PromoteWaitlisted()

	assert.Equal(t, []AttendeeRef{member("w1"), member("w2")}, promoted)
	assert.Equal(t, []AttendeeRef{member("m1"), member("w1"), member("w2")}, c.Attendees)
	assert.Len(t, c.Waitlist, 1)
	assert.Equal(t, member("w3"), c.Waitlist[0].Attendee)
	assert.True(t, c.IsFull())
	assert.Zero(t, c.SeatsLeft())
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	c := GymClass{Capacity: 2, Attendees: []AttendeeRef{member("m1")}}
	cp := c.Clone()
	cp.Attendees[0] = member("other")
	cp.Attendees = append(cp.Attendees, member("m2"))

	assert.Equal(t, []AttendeeRef{member("m1")}, c.Attendees)
}

func TestOverlapsRequiresSameDate(t *testing.T) {
	morning := calendar.Interval{Start: calendar.NewTimeOfDay(9, 0), End: calendar.NewTimeOfDay(10, 0)}
	a := GymClass{Date: calendar.NewDate(2024, 6, 1), Interval: morning}
	b := GymClass{Date: calendar.NewDate(2024, 6, 2), Interval: morning}

	assert.False(t, a.Overlaps(b))
	b.Date = a.Date
	assert.True(t, a.Overlaps(b))
}

func TestAttendeeRefValidate(t *testing.T) {
	assert.NoError(t, member("m1").Validate())
	assert.ErrorIs(t, AttendeeRef{Kind: "staff", ID: "x"}.Validate(), ErrInvalidAttendee)
	assert.ErrorIs(t, AttendeeRef{Kind: AttendeeGuest}.Validate(), ErrInvalidAttendee)
	assert.Equal(t, "guest:g1", AttendeeRef{Kind: AttendeeGuest, ID: "g1"}.String())
}

func TestRoomValid(t *testing.T) {
	assert.True(t, RoomPool.Valid())
	assert.False(t, Room("Sauna").Valid())
}
