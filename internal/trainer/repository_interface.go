package trainer

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("trainer not found")

type Repository interface {
	Get(ctx context.Context, id string) (Trainer, error)
	List(ctx context.Context) ([]Trainer, error)
	Save(ctx context.Context, t Trainer) error
}
