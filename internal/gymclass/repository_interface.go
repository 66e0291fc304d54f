package gymclass

import (
	"context"
	"errors"

	"frontdesk/internal/calendar"
)

var ErrNotFound = errors.New("class not found")

// Repository stores class sessions together with their roster and waitlist.
// Implementations return copies; mutating a returned value never changes
// stored state until Save is called.
type Repository interface {
	Get(ctx context.Context, id string) (GymClass, error)
	List(ctx context.Context) ([]GymClass, error)
	ListByDate(ctx context.Context, date calendar.Date) ([]GymClass, error)
	ListByTrainer(ctx context.Context, trainerID string) ([]GymClass, error)
	Save(ctx context.Context, c GymClass) error
}
