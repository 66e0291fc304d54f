package member

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("member not found")

type Repository interface {
	Get(ctx context.Context, id string) (Member, error)
	List(ctx context.Context) ([]Member, error)
	ListByStatus(ctx context.Context, status MembershipStatus) ([]Member, error)
	Save(ctx context.Context, m Member) error
	// Delete removes the member and their check-ins. Deleting an unknown
	// member returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}
