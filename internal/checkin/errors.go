package checkin

import (
	"errors"

	"frontdesk/internal/guest"
	"frontdesk/internal/member"
)

var (
	ErrNotActive = errors.New("membership is not active")
	ErrExpired   = errors.New("membership expired")

	ErrAlreadyCheckedIn      = guest.ErrAlreadyCheckedIn
	ErrNotCheckedIn          = guest.ErrNotCheckedIn
	ErrCheckOutBeforeCheckIn = guest.ErrCheckOutBeforeCheckIn
	ErrAlreadyConverted      = guest.ErrAlreadyConverted

	ErrMemberNotFound = member.ErrNotFound
	ErrGuestNotFound  = guest.ErrNotFound
)

// BlockedError carries the evaluation that refused a member check-in.
type BlockedError struct {
	Evaluation Evaluation
}

func (e *BlockedError) Error() string {
	return e.Evaluation.Verdict.Message
}

func (e *BlockedError) Unwrap() error {
	switch e.Evaluation.Verdict.Reason {
	case ReasonExpired:
		return ErrExpired
	case ReasonAlreadyCheckedIn:
		return ErrAlreadyCheckedIn
	default:
		return ErrNotActive
	}
}
