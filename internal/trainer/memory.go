package trainer

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]Trainer
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]Trainer)}
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (Trainer, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return Trainer{}, ErrNotFound
	}
	return t.Clone(), nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]Trainer, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Trainer, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) Save(ctx context.Context, t Trainer) error {
	_ = ctx
	if err := t.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[t.ID] = t.Clone()
	return nil
}
