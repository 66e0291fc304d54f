package ledger

import (
	"context"

	"frontdesk/internal/clock"
	"frontdesk/internal/logger"
	"frontdesk/internal/member"
	"frontdesk/internal/metrics"

	"github.com/google/uuid"
)

type Statement struct {
	MemberID         string  `json:"member_id"`
	BalanceCents     int64   `json:"balance_cents"`
	OutstandingCents int64   `json:"outstanding_cents"`
	Entries          []Entry `json:"entries"`
}

type Service struct {
	repo    Repository
	members member.Repository
	clock   clock.Clock
}

func NewService(repo Repository, members member.Repository, clk clock.Clock) *Service {
	return &Service{repo: repo, members: members, clock: clk}
}

func (s *Service) Record(ctx context.Context, memberID string, kind EntryKind, amountCents int64, description string) (Entry, error) {
	signed, err := SignedAmount(kind, amountCents)
	if err != nil {
		return Entry{}, err
	}
	if _, err := s.members.Get(ctx, memberID); err != nil {
		return Entry{}, err
	}

	e, err := s.repo.Append(ctx, Entry{
		ID:          uuid.NewString(),
		MemberID:    memberID,
		Kind:        kind,
		AmountCents: signed,
		Description: description,
		CreatedAt:   s.clock.Now(),
	})
	if err != nil {
		return Entry{}, err
	}

	metrics.RecordLedgerEntry(string(kind))
	logger.Info("ledger_entry", "member_id", memberID, "kind", kind, "amount_cents", signed, "balance_after", e.BalanceAfter)
	return e, nil
}

// OutstandingBalance returns what the member owes in cents, never negative.
func (s *Service) OutstandingBalance(ctx context.Context, memberID string) (int64, error) {
	balance, err := s.repo.Balance(ctx, memberID)
	if err != nil {
		return 0, err
	}
	return Outstanding(balance), nil
}

func (s *Service) Statement(ctx context.Context, memberID string, limit, offset int) (Statement, error) {
	balance, err := s.repo.Balance(ctx, memberID)
	if err != nil {
		return Statement{}, err
	}
	entries, err := s.repo.Entries(ctx, memberID, limit, offset)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		MemberID:         memberID,
		BalanceCents:     balance,
		OutstandingCents: Outstanding(balance),
		Entries:          entries,
	}, nil
}
