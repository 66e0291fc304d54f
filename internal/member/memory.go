package member

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]Member
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]Member)}
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return Member{}, ErrNotFound
	}
	return m.Clone(), nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]Member, error) {
	return r.filter(ctx, func(Member) bool { return true })
}

func (r *MemoryRepository) ListByStatus(ctx context.Context, status MembershipStatus) ([]Member, error) {
	return r.filter(ctx, func(m Member) bool { return m.MembershipStatus == status })
}

func (r *MemoryRepository) Save(ctx context.Context, m Member) error {
	_ = ctx
	if err := m.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[m.ID] = m.Clone()
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) filter(ctx context.Context, keep func(Member) bool) ([]Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Member, 0, len(r.byID))
	for _, m := range r.byID {
		if keep(m) {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
