package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"frontdesk/internal/calendar"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const selectMemberColumns = `SELECT id, first_name, last_name, email, phone, date_of_birth, membership_type, membership_status, membership_start, membership_end, tags, created_at, updated_at FROM members`

type memberRow struct {
	ID        string           `db:"id"`
	FirstName string           `db:"first_name"`
	LastName  string           `db:"last_name"`
	Email     string           `db:"email"`
	Phone     string           `db:"phone"`
	DOB       *calendar.Date   `db:"date_of_birth"`
	Type      MembershipType   `db:"membership_type"`
	Status    MembershipStatus `db:"membership_status"`
	Start     time.Time        `db:"membership_start"`
	End       time.Time        `db:"membership_end"`
	Tags      pq.StringArray   `db:"tags"`
	CreatedAt time.Time        `db:"created_at"`
	UpdatedAt time.Time        `db:"updated_at"`
}

type checkInRow struct {
	MemberID string `db:"member_id"`
	CheckIn
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Member, error) {
	var row memberRow
	err := r.db.GetContext(ctx, &row, selectMemberColumns+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Member{}, ErrNotFound
	}
	if err != nil {
		return Member{}, fmt.Errorf("get member %s: %w", id, err)
	}
	members, err := r.attachCheckIns(ctx, []memberRow{row})
	if err != nil {
		return Member{}, err
	}
	return members[0], nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Member, error) {
	return r.selectMembers(ctx, selectMemberColumns+` ORDER BY last_name, id`)
}

func (r *PostgresRepository) ListByStatus(ctx context.Context, status MembershipStatus) ([]Member, error) {
	return r.selectMembers(ctx, selectMemberColumns+` WHERE membership_status = $1 ORDER BY last_name, id`, string(status))
}

// Save upserts the member row. Check-ins are append-only, so existing ones are
// left untouched and only new IDs are inserted.
func (r *PostgresRepository) Save(ctx context.Context, m Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO members (id, first_name, last_name, email, phone, date_of_birth, membership_type, membership_status, membership_start, membership_end, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			date_of_birth = EXCLUDED.date_of_birth,
			membership_type = EXCLUDED.membership_type,
			membership_status = EXCLUDED.membership_status,
			membership_start = EXCLUDED.membership_start,
			membership_end = EXCLUDED.membership_end,
			tags = EXCLUDED.tags,
			updated_at = EXCLUDED.updated_at`,
		m.ID, m.FirstName, m.LastName, m.Email, m.Phone, nullableDate(m.DateOfBirth),
		string(m.MembershipType), string(m.MembershipStatus), m.MembershipStartDate, m.MembershipEndDate,
		pq.Array(m.Tags), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save member %s: %w", m.ID, err)
	}

	for _, c := range m.CheckIns {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO member_check_ins (id, member_id, checked_in_at) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
			c.ID, m.ID, c.DateTime,
		)
		if err != nil {
			return fmt.Errorf("save check-in %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// Delete relies on ON DELETE CASCADE to drop check-ins and ledger rows.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete member %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete member %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) selectMembers(ctx context.Context, query string, args ...any) ([]Member, error) {
	var rows []memberRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	if len(rows) == 0 {
		return []Member{}, nil
	}
	return r.attachCheckIns(ctx, rows)
}

func (r *PostgresRepository) attachCheckIns(ctx context.Context, rows []memberRow) ([]Member, error) {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	var checkIns []checkInRow
	err := r.db.SelectContext(ctx, &checkIns,
		`SELECT member_id, id, checked_in_at FROM member_check_ins WHERE member_id = ANY($1) ORDER BY checked_in_at DESC, id DESC`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("load check-ins: %w", err)
	}
	byMember := make(map[string][]CheckIn, len(rows))
	for _, c := range checkIns {
		byMember[c.MemberID] = append(byMember[c.MemberID], c.CheckIn)
	}

	out := make([]Member, 0, len(rows))
	for _, row := range rows {
		m := Member{
			ID:                  row.ID,
			FirstName:           row.FirstName,
			LastName:            row.LastName,
			Email:               row.Email,
			Phone:               row.Phone,
			DateOfBirth:         row.DOB,
			MembershipType:      row.Type,
			MembershipStatus:    row.Status,
			MembershipStartDate: row.Start,
			MembershipEndDate:   row.End,
			Tags:                []string(row.Tags),
			CheckIns:            byMember[row.ID],
			CreatedAt:           row.CreatedAt,
			UpdatedAt:           row.UpdatedAt,
		}
		if m.Tags == nil {
			m.Tags = []string{}
		}
		if m.CheckIns == nil {
			m.CheckIns = []CheckIn{}
		}
		out = append(out, m)
	}
	return out, nil
}

func nullableDate(d *calendar.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return *d
}
