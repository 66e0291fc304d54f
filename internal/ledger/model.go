package ledger

import (
	"errors"
	"time"
)

type EntryKind string

const (
	KindCharge  EntryKind = "charge"
	KindPayment EntryKind = "payment"
	KindCredit  EntryKind = "credit"
)

var (
	ErrInvalidAmount = errors.New("amount_cents must be positive")
	ErrInvalidKind   = errors.New("entry kind must be charge, payment or credit")
)

// Account is the running balance of one member. Positive means the member owes money.
type Account struct {
	MemberID     string    `db:"member_id" json:"member_id"`
	BalanceCents int64     `db:"balance_cents" json:"balance_cents"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Entry is one immutable ledger line. AmountCents is signed: charges add to
// the balance, payments and credits subtract from it.
type Entry struct {
	ID           string    `db:"id" json:"id"`
	MemberID     string    `db:"member_id" json:"member_id"`
	Kind         EntryKind `db:"kind" json:"kind"`
	AmountCents  int64     `db:"amount_cents" json:"amount_cents"`
	Description  string    `db:"description" json:"description"`
	BalanceAfter int64     `db:"balance_after" json:"balance_after"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SignedAmount converts a positive amount into the ledger sign for kind.
func SignedAmount(kind EntryKind, amountCents int64) (int64, error) {
	if amountCents <= 0 {
		return 0, ErrInvalidAmount
	}
	switch kind {
	case KindCharge:
		return amountCents, nil
	case KindPayment, KindCredit:
		return -amountCents, nil
	default:
		return 0, ErrInvalidKind
	}
}

// Outstanding is the part of a balance the member still owes.
func Outstanding(balanceCents int64) int64 {
	if balanceCents < 0 {
		return 0
	}
	return balanceCents
}
