package checkin

import (
	"fmt"
	"time"

	"frontdesk/internal/guest"
	"frontdesk/internal/member"
)

const (
	DefaultExpiringSoonDays = 7
	DefaultWaiverTag        = "Special Needs"
)

type PersonKind string

const (
	KindMember PersonKind = "member"
	KindGuest  PersonKind = "guest"
)

type VerdictStatus string

const (
	VerdictEligible VerdictStatus = "eligible"
	VerdictBlocked  VerdictStatus = "blocked"
)

type BlockReason string

const (
	ReasonNotActive        BlockReason = "not_active"
	ReasonExpired          BlockReason = "expired"
	ReasonAlreadyCheckedIn BlockReason = "already_checked_in"
)

type Verdict struct {
	Status  VerdictStatus `json:"status"`
	Reason  BlockReason   `json:"reason,omitempty"`
	Message string        `json:"message"`
}

func (v Verdict) Eligible() bool {
	return v.Status == VerdictEligible
}

type AdvisoryCode string

const (
	AdvisoryExpiringSoon       AdvisoryCode = "expiring_soon"
	AdvisoryFirstVisit         AdvisoryCode = "first_visit"
	AdvisoryBirthday           AdvisoryCode = "birthday"
	AdvisoryWaiverRequired     AdvisoryCode = "waiver_required"
	AdvisoryOutstandingBalance AdvisoryCode = "outstanding_balance"
)

// Advisory is a non-blocking note for the front desk.
type Advisory struct {
	Code        AdvisoryCode `json:"code"`
	Message     string       `json:"message"`
	AmountCents int64        `json:"amount_cents,omitempty"`
}

type Evaluation struct {
	Kind            PersonKind `json:"kind"`
	PersonID        string     `json:"person_id"`
	Name            string     `json:"name"`
	Verdict         Verdict    `json:"verdict"`
	Advisories      []Advisory `json:"advisories"`
	DaysUntilExpiry *int       `json:"days_until_expiry,omitempty"`
	LastCheckIn     *time.Time `json:"last_check_in,omitempty"`
	EvaluatedAt     time.Time  `json:"evaluated_at"`
}

func (e Evaluation) Has(code AdvisoryCode) bool {
	for _, a := range e.Advisories {
		if a.Code == code {
			return true
		}
	}
	return false
}

type Policy struct {
	ExpiringSoonDays int
	WaiverTag        string
	Location         *time.Location
}

func DefaultPolicy() Policy {
	return Policy{ExpiringSoonDays: DefaultExpiringSoonDays, WaiverTag: DefaultWaiverTag, Location: time.UTC}
}

func (p Policy) withDefaults() Policy {
	if p.ExpiringSoonDays < 0 {
		p.ExpiringSoonDays = 0
	}
	if p.WaiverTag == "" {
		p.WaiverTag = DefaultWaiverTag
	}
	if p.Location == nil {
		p.Location = time.UTC
	}
	return p
}

// Assess derives a member's verdict and advisories at now. It never touches
// storage. Expiry is checked before status, so a lapsed membership reads as
// expired whatever status is stored.
func Assess(m member.Member, now time.Time, outstandingCents int64, p Policy) Evaluation {
	p = p.withDefaults()
	days := m.DaysUntilExpiry(now, p.Location)

	e := Evaluation{
		Kind:            KindMember,
		PersonID:        m.ID,
		Name:            m.FullName(),
		Advisories:      []Advisory{},
		DaysUntilExpiry: &days,
		EvaluatedAt:     now,
	}
	if last, ok := m.LastCheckIn(); ok {
		at := last.DateTime
		e.LastCheckIn = &at
	}

	switch {
	case days < 0:
		e.Verdict = Verdict{Status: VerdictBlocked, Reason: ReasonExpired, Message: "membership expired"}
	case m.MembershipStatus != member.StatusActive:
		e.Verdict = Verdict{
			Status:  VerdictBlocked,
			Reason:  ReasonNotActive,
			Message: fmt.Sprintf("membership not active: %s", m.MembershipStatus),
		}
	default:
		e.Verdict = Verdict{Status: VerdictEligible, Message: "eligible"}
	}

	if days >= 0 && days <= p.ExpiringSoonDays {
		e.Advisories = append(e.Advisories, Advisory{Code: AdvisoryExpiringSoon, Message: expiryMessage(days)})
	}
	if len(m.CheckIns) == 0 {
		e.Advisories = append(e.Advisories, Advisory{Code: AdvisoryFirstVisit, Message: "first visit"})
	}
	if m.IsBirthday(now, p.Location) {
		e.Advisories = append(e.Advisories, Advisory{Code: AdvisoryBirthday, Message: "birthday today"})
	}
	if m.HasTag(p.WaiverTag) {
		e.Advisories = append(e.Advisories, Advisory{Code: AdvisoryWaiverRequired, Message: "waiver required: " + p.WaiverTag})
	}
	if outstandingCents > 0 {
		e.Advisories = append(e.Advisories, Advisory{
			Code:        AdvisoryOutstandingBalance,
			Message:     "outstanding balance " + formatCents(outstandingCents),
			AmountCents: outstandingCents,
		})
	}
	return e
}

// AssessGuest evaluates a guest arrival. Guests are only refused while a
// visit is still open.
func AssessGuest(g guest.Guest, now time.Time) Evaluation {
	e := Evaluation{
		Kind:        KindGuest,
		PersonID:    g.ID,
		Name:        g.FullName(),
		Advisories:  []Advisory{},
		EvaluatedAt: now,
	}
	if g.Status == guest.StatusCheckedIn {
		e.Verdict = Verdict{Status: VerdictBlocked, Reason: ReasonAlreadyCheckedIn, Message: "guest is already checked in"}
	} else {
		e.Verdict = Verdict{Status: VerdictEligible, Message: "eligible"}
	}
	if n := len(g.VisitHistory); n > 0 {
		at := g.VisitHistory[n-1].CheckIn
		e.LastCheckIn = &at
	}

	if !g.WaiverSigned {
		e.Advisories = append(e.Advisories, Advisory{Code: AdvisoryWaiverRequired, Message: "waiver not signed"})
	}
	if len(g.VisitHistory) == 0 {
		e.Advisories = append(e.Advisories, Advisory{Code: AdvisoryFirstVisit, Message: "first visit"})
	}
	return e
}

func expiryMessage(days int) string {
	switch days {
	case 0:
		return "membership expires today"
	case 1:
		return "membership expires tomorrow"
	default:
		return fmt.Sprintf("membership expires in %d days", days)
	}
}

func formatCents(c int64) string {
	return fmt.Sprintf("%d.%02d", c/100, c%100)
}
