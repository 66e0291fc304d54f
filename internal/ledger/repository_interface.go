package ledger

import "context"

type Repository interface {
	// Append stores e, fills in BalanceAfter and returns the stored entry.
	Append(ctx context.Context, e Entry) (Entry, error)
	Balance(ctx context.Context, memberID string) (int64, error)
	Entries(ctx context.Context, memberID string, limit, offset int) ([]Entry, error)
}
