package seed

import (
	"context"
	"fmt"
	"time"

	"frontdesk/internal/calendar"
	"frontdesk/internal/guest"
	"frontdesk/internal/gymclass"
	"frontdesk/internal/ledger"
	"frontdesk/internal/logger"
	"frontdesk/internal/member"
	"frontdesk/internal/scheduling"
	"frontdesk/internal/trainer"
)

// Target is where demo data is written. Classes go through the scheduling
// engine so the usual conflict rules apply.
type Target struct {
	Members    member.Repository
	Guests     guest.Repository
	Trainers   trainer.Repository
	Ledger     *ledger.Service
	Scheduling scheduling.Service
}

// Load writes a small demo front desk relative to now. It does nothing when
// members already exist.
func Load(ctx context.Context, t Target, now time.Time, loc *time.Location) error {
	existing, err := t.Members.List(ctx)
	if err != nil {
		return fmt.Errorf("seed: list members: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("seed skipped, members already present", "members", len(existing))
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, tr := range trainers(now) {
		if err := t.Trainers.Save(ctx, tr); err != nil {
			return fmt.Errorf("seed: trainer %s: %w", tr.ID, err)
		}
	}
	for _, m := range members(now, loc) {
		if err := t.Members.Save(ctx, m); err != nil {
			return fmt.Errorf("seed: member %s: %w", m.ID, err)
		}
	}
	for _, g := range guests(now) {
		if err := t.Guests.Save(ctx, g); err != nil {
			return fmt.Errorf("seed: guest %s: %w", g.ID, err)
		}
	}
	if t.Ledger != nil {
		if _, err := t.Ledger.Record(ctx, "m-carmen", ledger.KindCharge, 4500, "personal training session"); err != nil {
			return fmt.Errorf("seed: ledger: %w", err)
		}
	}

	tomorrow := calendar.DateOf(now.In(loc).AddDate(0, 0, 1))
	classes := 0
	for _, d := range drafts(tomorrow) {
		c, err := t.Scheduling.ScheduleClass(ctx, d)
		if err != nil {
			return fmt.Errorf("seed: class %s in %s: %w", d.Type, d.Room, err)
		}
		classes++
		if c.Type != "Spin" {
			continue
		}
		for _, ref := range []gymclass.AttendeeRef{
			{Kind: gymclass.AttendeeMember, ID: "m-ada"},
			{Kind: gymclass.AttendeeMember, ID: "m-carmen"},
			{Kind: gymclass.AttendeeGuest, ID: "g-sam"},
		} {
			if _, err := t.Scheduling.BookAttendee(ctx, c.ID, ref); err != nil {
				return fmt.Errorf("seed: book %s: %w", ref, err)
			}
		}
	}

	logger.Info("seed loaded", "members", 5, "guests", 2, "trainers", 3, "classes", classes)
	return nil
}

func allWeek(start, end calendar.TimeOfDay) []trainer.Window {
	windows := make([]trainer.Window, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		windows = append(windows, trainer.Window{Weekday: d, Interval: calendar.Interval{Start: start, End: end}})
	}
	return windows
}

func trainers(now time.Time) []trainer.Trainer {
	return []trainer.Trainer{
		{
			ID: "t-maya", FirstName: "Maya", LastName: "Okafor", Email: "maya@example.com",
			Specialties:  []string{"Yoga", "Pilates"},
			Availability: allWeek(calendar.NewTimeOfDay(6, 0), calendar.NewTimeOfDay(14, 0)),
			CreatedAt:    now, UpdatedAt: now,
		},
		{
			ID: "t-leo", FirstName: "Leo", LastName: "Brandt", Email: "leo@example.com",
			Specialties:  []string{"Spin", "HIIT"},
			Availability: allWeek(calendar.NewTimeOfDay(12, 0), calendar.NewTimeOfDay(21, 0)),
			CreatedAt:    now, UpdatedAt: now,
		},
		{
			ID: "t-ines", FirstName: "Ines", LastName: "Castro", Email: "ines@example.com",
			Specialties:  []string{"Aqua", "Strength"},
			Availability: allWeek(calendar.NewTimeOfDay(7, 0), calendar.NewTimeOfDay(19, 0)),
			CreatedAt:    now, UpdatedAt: now,
		},
	}
}

func members(now time.Time, loc *time.Location) []member.Member {
	today := calendar.DateOf(now.In(loc))
	// 1992 is a leap year, so a 29 February "today" still has a birthday.
	birthday := calendar.NewDate(1992, today.Month, today.Day)
	yearAgo := now.AddDate(-1, 0, 0)

	return []member.Member{
		{
			ID: "m-ada", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
			MembershipType: member.TypePremium, MembershipStatus: member.StatusActive,
			MembershipStartDate: yearAgo, MembershipEndDate: now.AddDate(0, 6, 0),
			DateOfBirth: &birthday,
			CheckIns:    []member.CheckIn{{ID: "seed-ci-ada-1", DateTime: now.AddDate(0, 0, -2)}},
			CreatedAt:   yearAgo, UpdatedAt: now,
		},
		{
			ID: "m-bo", FirstName: "Bo", LastName: "Chen", Email: "bo@example.com",
			MembershipType: member.TypeBasic, MembershipStatus: member.StatusActive,
			MembershipStartDate: yearAgo, MembershipEndDate: now.AddDate(0, 0, 3),
			Tags:      []string{"Special Needs"},
			CreatedAt: yearAgo, UpdatedAt: now,
		},
		{
			ID: "m-carmen", FirstName: "Carmen", LastName: "Diaz", Email: "carmen@example.com",
			MembershipType: member.TypeVIP, MembershipStatus: member.StatusActive,
			MembershipStartDate: yearAgo, MembershipEndDate: now.AddDate(1, 0, 0),
			CheckIns:  []member.CheckIn{{ID: "seed-ci-carmen-1", DateTime: now.AddDate(0, 0, -1)}},
			CreatedAt: yearAgo, UpdatedAt: now,
		},
		{
			// Status is stale on purpose: the end date has passed.
			ID: "m-dev", FirstName: "Dev", LastName: "Patel", Email: "dev@example.com",
			MembershipType: member.TypeBasic, MembershipStatus: member.StatusActive,
			MembershipStartDate: yearAgo, MembershipEndDate: now.AddDate(0, 0, -9),
			CreatedAt: yearAgo, UpdatedAt: now,
		},
		{
			ID: "m-erin", FirstName: "Erin", LastName: "Walsh", Email: "erin@example.com",
			MembershipType: member.TypePremium, MembershipStatus: member.StatusFrozen,
			MembershipStartDate: yearAgo, MembershipEndDate: now.AddDate(0, 4, 0),
			CreatedAt: yearAgo, UpdatedAt: now,
		},
	}
}

func guests(now time.Time) []guest.Guest {
	return []guest.Guest{
		{
			ID: "g-sam", FirstName: "Sam", LastName: "Rivera", Email: "sam@example.com",
			VisitPurpose: guest.PurposeTrial, Status: guest.StatusScheduled,
			CheckInDateTime: now, HostMemberID: "m-ada",
			VisitHistory: []guest.Visit{},
			CreatedAt:    now, UpdatedAt: now,
		},
		{
			ID: "g-kim", FirstName: "Kim", LastName: "Novak", Email: "kim@example.com",
			VisitPurpose: guest.PurposeDayPass, WaiverSigned: true, Status: guest.StatusScheduled,
			CheckInDateTime: now,
			VisitHistory:    []guest.Visit{},
			CreatedAt:       now, UpdatedAt: now,
		},
	}
}

func drafts(date calendar.Date) []scheduling.SessionDraft {
	at := calendar.NewTimeOfDay
	return []scheduling.SessionDraft{
		{Type: "Yoga", Room: gymclass.RoomYogaStudio, Date: date, Start: at(7, 0), End: at(8, 0), TrainerID: "t-maya", Capacity: 12},
		{Type: "Pilates", Room: gymclass.RoomStudioA, Date: date, Start: at(9, 0), End: at(10, 0), TrainerID: "t-maya", Capacity: 10},
		{Type: "Aqua Fit", Room: gymclass.RoomPool, Date: date, Start: at(9, 0), End: at(9, 45), TrainerID: "t-ines", Capacity: 8},
		{Type: "Spin", Room: gymclass.RoomSpin, Date: date, Start: at(18, 0), End: at(19, 0), TrainerID: "t-leo", Capacity: 2,
			Waitlist: scheduling.WaitlistEnabled},
		{Type: "HIIT", Room: gymclass.RoomMainFloor, Date: date, Start: at(19, 0), End: at(19, 45), TrainerID: "t-leo", Capacity: 15},
	}
}
