package gymclass

import (
	"context"
	"sort"
	"sync"

	"frontdesk/internal/calendar"
)

// MemoryRepository is an in-memory Repository. It is safe for concurrent use.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]GymClass
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]GymClass)}
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (GymClass, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return GymClass{}, ErrNotFound
	}
	return c.Clone(), nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]GymClass, error) {
	return r.filter(ctx, func(GymClass) bool { return true })
}

func (r *MemoryRepository) ListByDate(ctx context.Context, date calendar.Date) ([]GymClass, error) {
	return r.filter(ctx, func(c GymClass) bool { return c.Date == date })
}

func (r *MemoryRepository) ListByTrainer(ctx context.Context, trainerID string) ([]GymClass, error) {
	return r.filter(ctx, func(c GymClass) bool { return c.TrainerID == trainerID })
}

func (r *MemoryRepository) Save(ctx context.Context, c GymClass) error {
	_ = ctx
	if c.ID == "" {
		return ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ID] = c.Clone()
	return nil
}

func (r *MemoryRepository) filter(ctx context.Context, keep func(GymClass) bool) ([]GymClass, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]GymClass, 0)
	for _, c := range r.byID {
		if keep(c) {
			out = append(out, c.Clone())
		}
	}
	SortByStart(out)
	return out, nil
}

// SortByStart orders sessions by date, start time, room and ID.
func SortByStart(cs []GymClass) {
	sort.Slice(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		if a.Interval.Start != b.Interval.Start {
			return a.Interval.Start < b.Interval.Start
		}
		if a.Room != b.Room {
			return a.Room < b.Room
		}
		return a.ID < b.ID
	})
}
