package scheduling

import (
	"context"
	"errors"
	"sort"
	"time"

	"frontdesk/internal/calendar"
	"frontdesk/internal/clock"
	"frontdesk/internal/gymclass"
	"frontdesk/internal/keylock"
	"frontdesk/internal/logger"
	"frontdesk/internal/metrics"
	"frontdesk/internal/trainer"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	StatusConfirmed  BookingStatus = "confirmed"
	StatusWaitlisted BookingStatus = "waitlisted"
)

type BookingOutcome struct {
	Status    BookingStatus        `json:"status"`
	ClassID   string               `json:"class_id"`
	Attendee  gymclass.AttendeeRef `json:"attendee"`
	Position  int                  `json:"position,omitempty"`
	SeatsLeft int                  `json:"seats_left"`
}

type CancelOutcome struct {
	ClassID       string                `json:"class_id"`
	Attendee      gymclass.AttendeeRef  `json:"attendee"`
	WasWaitlisted bool                  `json:"was_waitlisted"`
	Promoted      *gymclass.AttendeeRef `json:"promoted,omitempty"`
}

// ClassView adds the display figures a front desk needs to a session.
type ClassView struct {
	gymclass.GymClass
	AttendancePercentage float64                  `json:"attendance_percentage"`
	AttendanceLevel      gymclass.AttendanceLevel `json:"attendance_level"`
	SeatsLeft            int                      `json:"seats_left"`
}

func View(c gymclass.GymClass) ClassView {
	return ClassView{
		GymClass:             c,
		AttendancePercentage: c.AttendancePercentage(),
		AttendanceLevel:      c.AttendanceLevel(),
		SeatsLeft:            c.SeatsLeft(),
	}
}

// Notifier is told about roster changes after they are saved. Errors are
// logged and never fail the booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, c gymclass.GymClass, ref gymclass.AttendeeRef) error
	Waitlisted(ctx context.Context, c gymclass.GymClass, ref gymclass.AttendeeRef, position int) error
	WaitlistPromoted(ctx context.Context, c gymclass.GymClass, ref gymclass.AttendeeRef) error
}

type Options struct {
	// WaitlistDefault applies when a draft leaves the waitlist policy unset.
	WaitlistDefault            bool
	EnforceTrainerAvailability bool
	Location                   *time.Location
}

type Service interface {
	ScheduleClass(ctx context.Context, d SessionDraft) (gymclass.GymClass, error)
	RescheduleClass(ctx context.Context, classID string, d SessionDraft) (gymclass.GymClass, error)
	BookAttendee(ctx context.Context, classID string, ref gymclass.AttendeeRef) (BookingOutcome, error)
	CancelBooking(ctx context.Context, classID string, ref gymclass.AttendeeRef) (CancelOutcome, error)
	GetClass(ctx context.Context, classID string) (gymclass.GymClass, error)
	ListClasses(ctx context.Context, date calendar.Date) ([]gymclass.GymClass, error)
	AvailableRooms(ctx context.Context, date calendar.Date, in calendar.Interval) ([]gymclass.Room, error)
}

type service struct {
	classes  gymclass.Repository
	trainers trainer.Repository
	clock    clock.Clock
	locks    *keylock.Locker
	notifier Notifier
	opts     Options
}

// NewService wires the engine. trainers and notifier may be nil.
func NewService(
	classes gymclass.Repository,
	trainers trainer.Repository,
	clk clock.Clock,
	locks *keylock.Locker,
	notifier Notifier,
	opts Options,
) Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &service{
		classes:  classes,
		trainers: trainers,
		clock:    clk,
		locks:    locks,
		notifier: notifier,
		opts:     opts,
	}
}

func dateKey(d calendar.Date) string     { return "date:" + d.String() }
func classKey(classID string) string     { return "class:" + classID }
func trainerKey(trainerID string) string { return "trainer:" + trainerID }

func (s *service) ScheduleClass(ctx context.Context, d SessionDraft) (gymclass.GymClass, error) {
	c, err := s.schedule(ctx, d)
	metrics.RecordScheduling(scheduleLabel(err))
	if err != nil {
		logger.Info("class_schedule_rejected", "room", d.Room, "trainer_id", d.TrainerID, "date", d.Date.String(), "reason", err.Error())
		return gymclass.GymClass{}, err
	}
	logger.Info("class_scheduled", "class_id", c.ID, "room", c.Room, "trainer_id", c.TrainerID, "date", c.Date.String(), "interval", c.Interval.String())
	s.assignTrainer(ctx, c.TrainerID, c.ID, "")
	return c, nil
}

func (s *service) schedule(ctx context.Context, d SessionDraft) (gymclass.GymClass, error) {
	if err := d.Validate(); err != nil {
		return gymclass.GymClass{}, err
	}

	unlock := s.locks.Lock(dateKey(d.Date))
	defer unlock()

	now := s.clock.Now()
	c := gymclass.GymClass{
		ID:        uuid.NewString(),
		Attendees: []gymclass.AttendeeRef{},
		Waitlist:  []gymclass.WaitlistEntry{},
		CreatedAt: now,
	}
	d.apply(&c, s.opts.WaitlistDefault, now)

	if err := s.checkPlacement(ctx, c); err != nil {
		return gymclass.GymClass{}, err
	}
	if err := s.classes.Save(ctx, c); err != nil {
		return gymclass.GymClass{}, err
	}
	return c, nil
}

func (s *service) RescheduleClass(ctx context.Context, classID string, d SessionDraft) (gymclass.GymClass, error) {
	c, previousTrainer, promoted, err := s.reschedule(ctx, classID, d)
	metrics.RecordScheduling("reschedule_" + scheduleLabel(err))
	if err != nil {
		logger.Info("class_reschedule_rejected", "class_id", classID, "reason", err.Error())
		return gymclass.GymClass{}, err
	}
	logger.Info("class_rescheduled", "class_id", c.ID, "room", c.Room, "date", c.Date.String(), "interval", c.Interval.String(), "promoted", len(promoted))

	if previousTrainer != c.TrainerID {
		s.assignTrainer(ctx, c.TrainerID, c.ID, previousTrainer)
	}
	metrics.RecordWaitlistPromotions(len(promoted))
	for _, ref := range promoted {
		s.notify(ctx, "waitlist_promoted", ref, func(n Notifier) error { return n.WaitlistPromoted(ctx, c, ref) })
	}
	return c, nil
}

func (s *service) reschedule(ctx context.Context, classID string, d SessionDraft) (gymclass.GymClass, string, []gymclass.AttendeeRef, error) {
	if err := d.Validate(); err != nil {
		return gymclass.GymClass{}, "", nil, err
	}

	current, err := s.classes.Get(ctx, classID)
	if err != nil {
		return gymclass.GymClass{}, "", nil, err
	}

	// Date locks are taken in a fixed order before the roster lock so two
	// reschedules crossing dates cannot deadlock.
	keys := []string{dateKey(current.Date)}
	if d.Date != current.Date {
		keys = append(keys, dateKey(d.Date))
		sort.Strings(keys)
	}
	for _, k := range keys {
		unlock := s.locks.Lock(k)
		defer unlock()
	}
	unlockClass := s.locks.Lock(classKey(classID))
	defer unlockClass()

	c, err := s.classes.Get(ctx, classID)
	if err != nil {
		return gymclass.GymClass{}, "", nil, err
	}
	if c.Date != current.Date {
		return gymclass.GymClass{}, "", nil, ErrConcurrentUpdate
	}
	if d.Capacity < len(c.Attendees) {
		return gymclass.GymClass{}, "", nil, ErrCapacityBelowRoster
	}

	previousTrainer := c.TrainerID
	fallback := s.opts.WaitlistDefault
	if d.Waitlist == "" {
		fallback = c.WaitlistEnabled
	}
	d.apply(&c, fallback, s.clock.Now())

	if err := s.checkPlacement(ctx, c); err != nil {
		return gymclass.GymClass{}, "", nil, err
	}
	promoted := c.PromoteWaitlisted()
	// Entrants left waiting on a disabled waitlist would still be promoted
	// on cancellation while new bookers are turned away.
	if !c.WaitlistEnabled && len(c.Waitlist) > 0 {
		return gymclass.GymClass{}, "", nil, ErrWaitlistNotEmpty
	}
	if err := s.classes.Save(ctx, c); err != nil {
		return gymclass.GymClass{}, "", nil, err
	}
	return c, previousTrainer, promoted, nil
}

// checkPlacement runs the conflict and availability rules for c against the
// sessions already stored on its date.
func (s *service) checkPlacement(ctx context.Context, c gymclass.GymClass) error {
	sameDay, err := s.classes.ListByDate(ctx, c.Date)
	if err != nil {
		return err
	}
	if err := findConflict(sameDay, c); err != nil {
		return err
	}
	if !s.opts.EnforceTrainerAvailability || s.trainers == nil {
		return nil
	}
	t, err := s.trainers.Get(ctx, c.TrainerID)
	if errors.Is(err, trainer.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !t.Covers(c.Date, c.Interval) {
		return ErrTrainerUnavailable
	}
	return nil
}

// assignTrainer keeps the trainer's class list in step. It runs after the
// class is saved, so failures are only logged.
func (s *service) assignTrainer(ctx context.Context, trainerID, classID, previousTrainerID string) {
	if s.trainers == nil {
		return
	}
	update := func(id string, change func(t *trainer.Trainer) bool) {
		unlock := s.locks.Lock(trainerKey(id))
		defer unlock()
		t, err := s.trainers.Get(ctx, id)
		if err != nil {
			if !errors.Is(err, trainer.ErrNotFound) {
				logger.WithError(err).Warn("trainer lookup failed", "trainer_id", id)
			}
			return
		}
		if !change(&t) {
			return
		}
		t.UpdatedAt = s.clock.Now()
		if err := s.trainers.Save(ctx, t); err != nil {
			logger.WithError(err).Warn("trainer assignment not saved", "trainer_id", id, "class_id", classID)
		}
	}
	if previousTrainerID != "" {
		update(previousTrainerID, func(t *trainer.Trainer) bool { return t.UnassignClass(classID) })
	}
	update(trainerID, func(t *trainer.Trainer) bool { return t.AssignClass(classID) })
}

func (s *service) BookAttendee(ctx context.Context, classID string, ref gymclass.AttendeeRef) (BookingOutcome, error) {
	out, c, err := s.book(ctx, classID, ref)
	if err != nil {
		metrics.RecordBooking(metricLabel(err), string(ref.Kind))
		logger.Info("booking_rejected", "class_id", classID, "attendee", ref.String(), "reason", err.Error())
		return BookingOutcome{}, err
	}
	metrics.RecordBooking(string(out.Status), string(ref.Kind))
	logger.Info("booking", "class_id", classID, "attendee", ref.String(), "status", out.Status, "position", out.Position)

	if out.Status == StatusConfirmed {
		s.notify(ctx, "booking_confirmed", ref, func(n Notifier) error { return n.BookingConfirmed(ctx, c, ref) })
	} else {
		s.notify(ctx, "waitlisted", ref, func(n Notifier) error { return n.Waitlisted(ctx, c, ref, out.Position) })
	}
	return out, nil
}

func (s *service) book(ctx context.Context, classID string, ref gymclass.AttendeeRef) (BookingOutcome, gymclass.GymClass, error) {
	if err := ref.Validate(); err != nil {
		return BookingOutcome{}, gymclass.GymClass{}, err
	}

	unlock := s.locks.Lock(classKey(classID))
	defer unlock()

	c, err := s.classes.Get(ctx, classID)
	if err != nil {
		return BookingOutcome{}, gymclass.GymClass{}, err
	}
	now := s.clock.Now()
	if !c.Interval.End.On(c.Date, s.opts.Location).After(now) {
		return BookingOutcome{}, gymclass.GymClass{}, ErrClassEnded
	}
	if c.HasAttendee(ref) || c.WaitlistPosition(ref) > 0 {
		return BookingOutcome{}, gymclass.GymClass{}, ErrAlreadyBooked
	}

	out := BookingOutcome{ClassID: c.ID, Attendee: ref}
	switch {
	case !c.IsFull():
		c.Attendees = append(c.Attendees, ref)
		out.Status = StatusConfirmed
	case c.WaitlistEnabled:
		c.Waitlist = append(c.Waitlist, gymclass.WaitlistEntry{Attendee: ref, JoinedAt: now})
		out.Status = StatusWaitlisted
		out.Position = len(c.Waitlist)
	default:
		return BookingOutcome{}, gymclass.GymClass{}, ErrClassFull
	}

	c.UpdatedAt = now
	if err := s.classes.Save(ctx, c); err != nil {
		return BookingOutcome{}, gymclass.GymClass{}, err
	}
	out.SeatsLeft = c.SeatsLeft()
	return out, c, nil
}

func (s *service) CancelBooking(ctx context.Context, classID string, ref gymclass.AttendeeRef) (CancelOutcome, error) {
	out, c, err := s.cancel(ctx, classID, ref)
	if err != nil {
		logger.Info("cancellation_rejected", "class_id", classID, "attendee", ref.String(), "reason", err.Error())
		return CancelOutcome{}, err
	}
	promotedCount := 0
	if out.Promoted != nil {
		promotedCount = 1
	}
	metrics.RecordBookingCancellation(promotedCount)
	logger.Info("booking_cancelled", "class_id", classID, "attendee", ref.String(), "was_waitlisted", out.WasWaitlisted, "promoted", promotedCount)

	if out.Promoted != nil {
		promoted := *out.Promoted
		s.notify(ctx, "waitlist_promoted", promoted, func(n Notifier) error { return n.WaitlistPromoted(ctx, c, promoted) })
	}
	return out, nil
}

func (s *service) cancel(ctx context.Context, classID string, ref gymclass.AttendeeRef) (CancelOutcome, gymclass.GymClass, error) {
	if err := ref.Validate(); err != nil {
		return CancelOutcome{}, gymclass.GymClass{}, err
	}

	unlock := s.locks.Lock(classKey(classID))
	defer unlock()

	c, err := s.classes.Get(ctx, classID)
	if err != nil {
		return CancelOutcome{}, gymclass.GymClass{}, err
	}

	out := CancelOutcome{ClassID: c.ID, Attendee: ref}
	switch {
	case c.RemoveAttendee(ref):
		if promoted := c.PromoteWaitlisted(); len(promoted) > 0 {
			out.Promoted = &promoted[0]
		}
	case c.RemoveFromWaitlist(ref):
		out.WasWaitlisted = true
	default:
		return CancelOutcome{}, gymclass.GymClass{}, ErrNotBooked
	}

	c.UpdatedAt = s.clock.Now()
	if err := s.classes.Save(ctx, c); err != nil {
		return CancelOutcome{}, gymclass.GymClass{}, err
	}
	return out, c, nil
}

func (s *service) GetClass(ctx context.Context, classID string) (gymclass.GymClass, error) {
	return s.classes.Get(ctx, classID)
}

// ListClasses returns the sessions on date, or every session for a zero date.
func (s *service) ListClasses(ctx context.Context, date calendar.Date) ([]gymclass.GymClass, error) {
	if date.IsZero() {
		return s.classes.List(ctx)
	}
	return s.classes.ListByDate(ctx, date)
}

func (s *service) AvailableRooms(ctx context.Context, date calendar.Date, in calendar.Interval) ([]gymclass.Room, error) {
	if date.IsZero() || !in.Valid() {
		return nil, ErrInvalidSession
	}
	sameDay, err := s.classes.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	busy := make(map[gymclass.Room]bool)
	for _, c := range sameDay {
		if c.Interval.Overlaps(in) {
			busy[c.Room] = true
		}
	}
	free := make([]gymclass.Room, 0, len(gymclass.Rooms))
	for _, r := range gymclass.Rooms {
		if !busy[r] {
			free = append(free, r)
		}
	}
	return free, nil
}

func (s *service) notify(ctx context.Context, kind string, ref gymclass.AttendeeRef, send func(Notifier) error) {
	if s.notifier == nil {
		return
	}
	if err := send(s.notifier); err != nil {
		logger.WithError(err).Warn("notification not queued", "type", kind, "attendee", ref.String())
	}
}

func scheduleLabel(err error) string {
	if err == nil {
		return "scheduled"
	}
	return metricLabel(err)
}
