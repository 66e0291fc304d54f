package notify

import (
	"context"
	"fmt"
	"time"

	"frontdesk/internal/guest"
	"frontdesk/internal/gymclass"
	"frontdesk/internal/logger"
	"frontdesk/internal/member"
)

const (
	TypeBookingConfirmed = "booking_confirmed"
	TypeWaitlisted       = "waitlisted"
	TypeWaitlistPromoted = "waitlist_promoted"
)

type Contact struct {
	Name  string
	Email string
}

// Directory resolves an attendee reference to someone we can write to.
type Directory interface {
	Lookup(ctx context.Context, ref gymclass.AttendeeRef) (Contact, error)
}

type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

// Notifier turns roster changes into queued emails.
type Notifier struct {
	queue Enqueuer
	dir   Directory
	loc   *time.Location
}

func NewNotifier(queue Enqueuer, dir Directory, loc *time.Location) *Notifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Notifier{queue: queue, dir: dir, loc: loc}
}

func (n *Notifier) BookingConfirmed(ctx context.Context, c gymclass.GymClass, ref gymclass.AttendeeRef) error {
	return n.send(ctx, TypeBookingConfirmed, ref, "Booking Confirmed - "+c.Type, func(name string) string {
		return fmt.Sprintf("Hi %s,\n\nYour spot is confirmed!\n\n%s\n\nSee you at the gym!\n\n- Front Desk", name, n.describe(c))
	})
}

func (n *Notifier) Waitlisted(ctx context.Context, c gymclass.GymClass, ref gymclass.AttendeeRef, position int) error {
	return n.send(ctx, TypeWaitlisted, ref, "Waitlisted - "+c.Type, func(name string) string {
		return fmt.Sprintf("Hi %s,\n\nThe class is full. You are number %d on the waitlist.\n\n%s\n\n- Front Desk", name, position, n.describe(c))
	})
}

func (n *Notifier) WaitlistPromoted(ctx context.Context, c gymclass.GymClass, ref gymclass.AttendeeRef) error {
	return n.send(ctx, TypeWaitlistPromoted, ref, "A spot opened up - "+c.Type, func(name string) string {
		return fmt.Sprintf("Hi %s,\n\nGood news: a spot opened up and you moved off the waitlist.\n\n%s\n\n- Front Desk", name, n.describe(c))
	})
}

func (n *Notifier) send(ctx context.Context, kind string, ref gymclass.AttendeeRef, subject string, body func(name string) string) error {
	contact, err := n.dir.Lookup(ctx, ref)
	if err != nil {
		return err
	}
	if contact.Email == "" {
		logger.Debug("notification skipped, no email", "attendee", ref.String(), "type", kind)
		return nil
	}
	return n.queue.Enqueue(ctx, Job{
		Type:    kind,
		To:      contact.Email,
		Name:    contact.Name,
		Subject: subject,
		Body:    body(contact.Name),
	})
}

func (n *Notifier) describe(c gymclass.GymClass) string {
	when := c.Interval.Start.On(c.Date, n.loc)
	return fmt.Sprintf("Class: %s\nRoom: %s\nTime: %s (%d min)",
		c.Type, c.Room, when.Format("Jan 2, 2006 at 3:04 PM"), c.Interval.Minutes())
}

// RepoDirectory looks contacts up in the member and guest repositories.
type RepoDirectory struct {
	members member.Repository
	guests  guest.Repository
}

func NewRepoDirectory(members member.Repository, guests guest.Repository) *RepoDirectory {
	return &RepoDirectory{members: members, guests: guests}
}

func (d *RepoDirectory) Lookup(ctx context.Context, ref gymclass.AttendeeRef) (Contact, error) {
	switch ref.Kind {
	case gymclass.AttendeeMember:
		m, err := d.members.Get(ctx, ref.ID)
		if err != nil {
			return Contact{}, err
		}
		return Contact{Name: m.FirstName, Email: m.Email}, nil
	case gymclass.AttendeeGuest:
		g, err := d.guests.Get(ctx, ref.ID)
		if err != nil {
			return Contact{}, err
		}
		return Contact{Name: g.FirstName, Email: g.Email}, nil
	default:
		return Contact{}, gymclass.ErrInvalidAttendee
	}
}
