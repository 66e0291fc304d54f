package ledger

import (
	"context"
	"sync"
)

type MemoryRepository struct {
	mu       sync.Mutex
	balances map[string]int64
	entries  map[string][]Entry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		balances: make(map[string]int64),
		entries:  make(map[string][]Entry),
	}
}

func (r *MemoryRepository) Append(ctx context.Context, e Entry) (Entry, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[e.MemberID] += e.AmountCents
	e.BalanceAfter = r.balances[e.MemberID]
	r.entries[e.MemberID] = append(r.entries[e.MemberID], e)
	return e, nil
}

func (r *MemoryRepository) Balance(ctx context.Context, memberID string) (int64, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[memberID], nil
}

// Entries returns newest first.
func (r *MemoryRepository) Entries(ctx context.Context, memberID string, limit, offset int) ([]Entry, error) {
	_ = ctx
	if limit <= 0 {
		limit = 50
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.entries[memberID]
	out := make([]Entry, 0, limit)
	for i := len(all) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}
