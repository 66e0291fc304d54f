package guest

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("guest not found")

type Repository interface {
	Get(ctx context.Context, id string) (Guest, error)
	List(ctx context.Context) ([]Guest, error)
	Save(ctx context.Context, g Guest) error
}
