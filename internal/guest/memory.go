package guest

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]Guest
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]Guest)}
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (Guest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.byID[id]
	if !ok {
		return Guest{}, ErrNotFound
	}
	return g.Clone(), nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]Guest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Guest, 0, len(r.byID))
	for _, g := range r.byID {
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) Save(ctx context.Context, g Guest) error {
	_ = ctx
	if err := g.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[g.ID] = g.Clone()
	return nil
}
