package member

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"frontdesk/internal/calendar"
	"frontdesk/internal/clock"
	"frontdesk/internal/keylock"
	"frontdesk/internal/logger"
	"frontdesk/internal/metrics"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

var (
	ErrInvalidTransition = errors.New("membership status does not allow this change")
	ErrInvalidRenewal    = errors.New("renewal must end in the future")
)

// LockKey is the keylock key that serializes writes to one member record.
func LockKey(id string) string {
	return "member:" + id
}

type EnrollRequest struct {
	FirstName      string         `json:"first_name" binding:"required"`
	LastName       string         `json:"last_name" binding:"required"`
	Email          string         `json:"email" binding:"omitempty,email"`
	Phone          string         `json:"phone"`
	DateOfBirth    *calendar.Date `json:"date_of_birth"`
	MembershipType MembershipType `json:"membership_type" binding:"omitempty,oneof=basic premium vip"`
	Tags           []string       `json:"tags"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date" binding:"required"`
}

// Service owns membership status transitions. Check-ins are appended by the
// check-in engine, not here.
type Service struct {
	repo  Repository
	clock clock.Clock
	locks *keylock.Locker
	loc   *time.Location
}

func NewService(repo Repository, clk clock.Clock, locks *keylock.Locker, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, clock: clk, locks: locks, loc: loc}
}

func (s *Service) Get(ctx context.Context, id string) (Member, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Enroll(ctx context.Context, req EnrollRequest) (Member, error) {
	now := s.clock.Now()
	start := req.StartDate
	if start.IsZero() {
		start = now
	}
	mtype := req.MembershipType
	if mtype == "" {
		mtype = TypeBasic
	}
	status := StatusActive
	if start.After(now) {
		status = StatusPending
	}

	m := Member{
		ID:                  uuid.NewString(),
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Email:               req.Email,
		Phone:               req.Phone,
		DateOfBirth:         req.DateOfBirth,
		MembershipType:      mtype,
		MembershipStatus:    status,
		MembershipStartDate: start,
		MembershipEndDate:   req.EndDate,
		Tags:                append([]string{}, req.Tags...),
		CheckIns:            []CheckIn{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.repo.Save(ctx, m); err != nil {
		return Member{}, err
	}
	logger.Info("member_enrolled", "member_id", m.ID, "status", m.MembershipStatus)
	return m, nil
}

// Renew extends the membership to until and reactivates it. A frozen
// membership keeps its frozen status.
func (s *Service) Renew(ctx context.Context, id string, until time.Time) (Member, error) {
	return s.mutate(ctx, id, func(m *Member, now time.Time) error {
		if !until.After(now) {
			return ErrInvalidRenewal
		}
		if m.MembershipStatus != StatusActive && m.MembershipStatus != StatusFrozen {
			m.MembershipStartDate = now
			m.MembershipStatus = StatusActive
		}
		m.MembershipEndDate = until
		return nil
	})
}

func (s *Service) Freeze(ctx context.Context, id string) (Member, error) {
	return s.transition(ctx, id, StatusActive, StatusFrozen)
}

func (s *Service) Unfreeze(ctx context.Context, id string) (Member, error) {
	return s.transition(ctx, id, StatusFrozen, StatusActive)
}

func (s *Service) transition(ctx context.Context, id string, from, to MembershipStatus) (Member, error) {
	return s.mutate(ctx, id, func(m *Member, _ time.Time) error {
		if m.MembershipStatus != from {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, m.MembershipStatus, to)
		}
		m.MembershipStatus = to
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, id string, apply func(m *Member, now time.Time) error) (Member, error) {
	unlock := s.locks.Lock(LockKey(id))
	defer unlock()

	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return Member{}, err
	}
	now := s.clock.Now()
	if err := apply(&m, now); err != nil {
		return Member{}, err
	}
	m.UpdatedAt = now
	if err := s.repo.Save(ctx, m); err != nil {
		return Member{}, err
	}
	logger.Info("member_updated", "member_id", m.ID, "status", m.MembershipStatus)
	return m, nil
}

// SweepExpired marks active memberships whose end date has passed as expired
// and returns how many were changed.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	active, err := s.repo.ListByStatus(ctx, StatusActive)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, candidate := range active {
		if candidate.DaysUntilExpiry(s.clock.Now(), s.loc) >= 0 {
			continue
		}
		changed, err := s.expire(ctx, candidate.ID)
		if err != nil {
			return expired, err
		}
		if changed {
			expired++
		}
	}

	if expired > 0 {
		metrics.RecordMembershipsExpired(expired)
		logger.Info("memberships_expired", "count", expired)
	}
	return expired, nil
}

func (s *Service) expire(ctx context.Context, id string) (bool, error) {
	unlock := s.locks.Lock(LockKey(id))
	defer unlock()

	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	now := s.clock.Now()
	if m.MembershipStatus != StatusActive || m.DaysUntilExpiry(now, s.loc) >= 0 {
		return false, nil
	}
	m.MembershipStatus = StatusExpired
	m.UpdatedAt = now
	return true, s.repo.Save(ctx, m)
}

// RunExpirySweeper calls SweepExpired every interval until ctx is done. A
// sweep still running when the next one is due is skipped. cron rounds
// intervals below one second up to a second.
func (s *Service) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	cronLog := cron.PrintfLogger(slog.NewLogLogger(logger.L().Handler(), slog.LevelWarn))
	c := cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.SkipIfStillRunning(cronLog)))
	c.Schedule(cron.Every(interval), cron.FuncJob(func() {
		if _, err := s.SweepExpired(ctx); err != nil && ctx.Err() == nil {
			logger.WithError(err).Error("expiry sweep failed")
		}
	}))
	c.Start()
	logger.Info("Expiry sweeper started", "interval", interval.String())

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("Expiry sweeper stopped")
}
