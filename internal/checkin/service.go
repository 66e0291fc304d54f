package checkin

import (
	"context"

	"frontdesk/internal/clock"
	"frontdesk/internal/guest"
	"frontdesk/internal/keylock"
	"frontdesk/internal/logger"
	"frontdesk/internal/member"
	"frontdesk/internal/metrics"

	"github.com/google/uuid"
)

// BalanceLookup reports what a member owes, in cents.
type BalanceLookup interface {
	OutstandingBalance(ctx context.Context, memberID string) (int64, error)
}

type Service interface {
	EvaluateMember(ctx context.Context, memberID string) (Evaluation, error)
	CheckInMember(ctx context.Context, memberID string) (Evaluation, member.CheckIn, error)
	EvaluateGuest(ctx context.Context, guestID string) (Evaluation, error)
	CheckInGuest(ctx context.Context, guestID string) (Evaluation, guest.Guest, error)
	CheckOutGuest(ctx context.Context, guestID string) (guest.Guest, error)
	ConvertGuest(ctx context.Context, guestID string) (member.Member, error)
}

type service struct {
	members  member.Repository
	guests   guest.Repository
	balances BalanceLookup
	clock    clock.Clock
	locks    *keylock.Locker
	policy   Policy
}

// NewService wires the check-in engine. balances may be nil, in which case
// nobody owes anything.
func NewService(
	members member.Repository,
	guests guest.Repository,
	balances BalanceLookup,
	clk clock.Clock,
	locks *keylock.Locker,
	policy Policy,
) Service {
	return &service{
		members:  members,
		guests:   guests,
		balances: balances,
		clock:    clk,
		locks:    locks,
		policy:   policy.withDefaults(),
	}
}

func guestKey(id string) string { return "guest:" + id }

func (s *service) EvaluateMember(ctx context.Context, memberID string) (Evaluation, error) {
	m, err := s.members.Get(ctx, memberID)
	if err != nil {
		return Evaluation{}, err
	}
	return Assess(m, s.clock.Now(), s.outstanding(ctx, memberID), s.policy), nil
}

func (s *service) CheckInMember(ctx context.Context, memberID string) (Evaluation, member.CheckIn, error) {
	unlock := s.locks.Lock(member.LockKey(memberID))
	defer unlock()

	m, err := s.members.Get(ctx, memberID)
	if err != nil {
		return Evaluation{}, member.CheckIn{}, err
	}
	now := s.clock.Now()
	eval := Assess(m, now, s.outstanding(ctx, memberID), s.policy)

	if !eval.Verdict.Eligible() {
		metrics.RecordCheckIn(string(KindMember), string(eval.Verdict.Reason))
		logger.Info("check_in_blocked", "member_id", memberID, "reason", eval.Verdict.Reason, "status", m.MembershipStatus)
		return eval, member.CheckIn{}, &BlockedError{Evaluation: eval}
	}

	ci := member.CheckIn{ID: uuid.NewString(), DateTime: now}
	m.RecordCheckIn(ci)
	m.UpdatedAt = now
	if err := s.members.Save(ctx, m); err != nil {
		return Evaluation{}, member.CheckIn{}, err
	}

	metrics.RecordCheckIn(string(KindMember), "ok")
	recordAdvisories(eval)
	logger.Info("member_checked_in", "member_id", memberID, "check_in_id", ci.ID, "advisories", len(eval.Advisories))
	return eval, ci, nil
}

func (s *service) EvaluateGuest(ctx context.Context, guestID string) (Evaluation, error) {
	g, err := s.guests.Get(ctx, guestID)
	if err != nil {
		return Evaluation{}, err
	}
	return AssessGuest(g, s.clock.Now()), nil
}

func (s *service) CheckInGuest(ctx context.Context, guestID string) (Evaluation, guest.Guest, error) {
	unlock := s.locks.Lock(guestKey(guestID))
	defer unlock()

	g, err := s.guests.Get(ctx, guestID)
	if err != nil {
		return Evaluation{}, guest.Guest{}, err
	}
	now := s.clock.Now()
	eval := AssessGuest(g, now)

	if err := g.CheckIn(now, uuid.NewString()); err != nil {
		metrics.RecordCheckIn(string(KindGuest), string(ReasonAlreadyCheckedIn))
		return eval, guest.Guest{}, err
	}
	if err := s.guests.Save(ctx, g); err != nil {
		return Evaluation{}, guest.Guest{}, err
	}

	metrics.RecordCheckIn(string(KindGuest), "ok")
	recordAdvisories(eval)
	logger.Info("guest_checked_in", "guest_id", guestID, "purpose", g.VisitPurpose, "visits", len(g.VisitHistory))
	return eval, g, nil
}

func (s *service) CheckOutGuest(ctx context.Context, guestID string) (guest.Guest, error) {
	unlock := s.locks.Lock(guestKey(guestID))
	defer unlock()

	g, err := s.guests.Get(ctx, guestID)
	if err != nil {
		return guest.Guest{}, err
	}
	if err := g.CheckOut(s.clock.Now()); err != nil {
		return guest.Guest{}, err
	}
	if err := s.guests.Save(ctx, g); err != nil {
		return guest.Guest{}, err
	}

	d, _ := g.VisitDuration()
	logger.Info("guest_checked_out", "guest_id", guestID, "duration", guest.FormatDuration(d))
	return g, nil
}

// ConvertGuest creates a pending membership from the guest's identity. The
// conversion is one-way.
func (s *service) ConvertGuest(ctx context.Context, guestID string) (member.Member, error) {
	unlock := s.locks.Lock(guestKey(guestID))
	defer unlock()

	g, err := s.guests.Get(ctx, guestID)
	if err != nil {
		return member.Member{}, err
	}
	if g.ConvertedToMember {
		return member.Member{}, ErrAlreadyConverted
	}

	now := s.clock.Now()
	m := member.Member{
		ID:                  convertedMemberID(guestID),
		FirstName:           g.FirstName,
		LastName:            g.LastName,
		Email:               g.Email,
		Phone:               g.Phone,
		MembershipType:      member.TypeBasic,
		MembershipStatus:    member.StatusPending,
		MembershipStartDate: now,
		MembershipEndDate:   now,
		Tags:                []string{},
		CheckIns:            []member.CheckIn{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := g.MarkConverted(m.ID, now); err != nil {
		return member.Member{}, err
	}
	if err := s.members.Save(ctx, m); err != nil {
		return member.Member{}, err
	}
	if err := s.guests.Save(ctx, g); err != nil {
		logger.WithError(err).Error("guest conversion not recorded", "guest_id", guestID, "member_id", m.ID)
		// Roll the member back so a retry does not enroll the guest twice.
		if derr := s.members.Delete(ctx, m.ID); derr != nil {
			logger.WithError(derr).Error("orphaned member after failed conversion", "guest_id", guestID, "member_id", m.ID)
		}
		return member.Member{}, err
	}

	logger.Info("guest_converted", "guest_id", guestID, "member_id", m.ID)
	return m, nil
}

// convertedMemberID is derived from the guest so a retried conversion
// overwrites the same member instead of creating another.
func convertedMemberID(guestID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("guest:"+guestID)).String()
}

// outstanding treats a missing or failing balance lookup as nothing owed.
func (s *service) outstanding(ctx context.Context, memberID string) int64 {
	if s.balances == nil {
		return 0
	}
	cents, err := s.balances.OutstandingBalance(ctx, memberID)
	if err != nil {
		logger.WithError(err).Warn("balance lookup failed", "member_id", memberID)
		return 0
	}
	return cents
}

func recordAdvisories(e Evaluation) {
	for _, a := range e.Advisories {
		metrics.RecordAdvisory(string(a.Code))
	}
}

// VisitDuration formats the guest's last completed stay, or "" while a
// visit is open.
func VisitDuration(g guest.Guest) string {
	d, ok := g.VisitDuration()
	if !ok {
		return ""
	}
	return guest.FormatDuration(d)
}
