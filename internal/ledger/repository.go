package ledger

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, e Entry) (Entry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Entry{}, err
	}
	defer tx.Rollback()

	var acc Account
	err = tx.QueryRowxContext(ctx,
		`SELECT member_id, balance_cents, updated_at
		 FROM member_accounts
		 WHERE member_id = $1
		 FOR UPDATE`,
		e.MemberID,
	).StructScan(&acc)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowxContext(ctx,
			`INSERT INTO member_accounts (member_id)
			 VALUES ($1)
			 RETURNING member_id, balance_cents, updated_at`,
			e.MemberID,
		).StructScan(&acc)
	}
	if err != nil {
		return Entry{}, err
	}

	e.BalanceAfter = acc.BalanceCents + e.AmountCents

	_, err = tx.ExecContext(ctx,
		`UPDATE member_accounts
		 SET balance_cents = $1, updated_at = $2
		 WHERE member_id = $3`,
		e.BalanceAfter, e.CreatedAt, e.MemberID,
	)
	if err != nil {
		return Entry{}, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (id, member_id, kind, amount_cents, description, balance_after, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.MemberID, string(e.Kind), e.AmountCents, e.Description, e.BalanceAfter, e.CreatedAt,
	)
	if err != nil {
		return Entry{}, err
	}

	return e, tx.Commit()
}

func (r *PostgresRepository) Balance(ctx context.Context, memberID string) (int64, error) {
	var balance int64
	err := r.db.GetContext(ctx, &balance, `SELECT balance_cents FROM member_accounts WHERE member_id = $1`, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

func (r *PostgresRepository) Entries(ctx context.Context, memberID string, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	entries := []Entry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, member_id, kind, amount_cents, description, balance_after, created_at
		FROM ledger_entries
		WHERE member_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, memberID, limit, offset)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
