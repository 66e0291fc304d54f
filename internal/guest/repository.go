package guest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const selectGuestColumns = `SELECT id, first_name, last_name, email, phone, visit_purpose, waiver_signed, status, check_in_at, check_out_at, host_member_id, converted_to_member, converted_member_id, created_at, updated_at FROM guests`

type guestRow struct {
	ID                string       `db:"id"`
	FirstName         string       `db:"first_name"`
	LastName          string       `db:"last_name"`
	Email             string       `db:"email"`
	Phone             string       `db:"phone"`
	Purpose           VisitPurpose `db:"visit_purpose"`
	WaiverSigned      bool         `db:"waiver_signed"`
	Status            Status       `db:"status"`
	CheckIn           time.Time    `db:"check_in_at"`
	CheckOut          *time.Time   `db:"check_out_at"`
	HostMemberID      string       `db:"host_member_id"`
	ConvertedToMember bool         `db:"converted_to_member"`
	ConvertedMemberID string       `db:"converted_member_id"`
	CreatedAt         time.Time    `db:"created_at"`
	UpdatedAt         time.Time    `db:"updated_at"`
}

type visitRow struct {
	GuestID string `db:"guest_id"`
	Visit
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Guest, error) {
	var row guestRow
	err := r.db.GetContext(ctx, &row, selectGuestColumns+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Guest{}, ErrNotFound
	}
	if err != nil {
		return Guest{}, fmt.Errorf("get guest %s: %w", id, err)
	}
	guests, err := r.attachVisits(ctx, []guestRow{row})
	if err != nil {
		return Guest{}, err
	}
	return guests[0], nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Guest, error) {
	var rows []guestRow
	if err := r.db.SelectContext(ctx, &rows, selectGuestColumns+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	if len(rows) == 0 {
		return []Guest{}, nil
	}
	return r.attachVisits(ctx, rows)
}

func (r *PostgresRepository) Save(ctx context.Context, g Guest) error {
	if err := g.Validate(); err != nil {
		return err
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO guests (id, first_name, last_name, email, phone, visit_purpose, waiver_signed, status, check_in_at, check_out_at, host_member_id, converted_to_member, converted_member_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			visit_purpose = EXCLUDED.visit_purpose,
			waiver_signed = EXCLUDED.waiver_signed,
			status = EXCLUDED.status,
			check_in_at = EXCLUDED.check_in_at,
			check_out_at = EXCLUDED.check_out_at,
			host_member_id = EXCLUDED.host_member_id,
			converted_to_member = EXCLUDED.converted_to_member,
			converted_member_id = EXCLUDED.converted_member_id,
			updated_at = EXCLUDED.updated_at`,
		g.ID, g.FirstName, g.LastName, g.Email, g.Phone, string(g.VisitPurpose), g.WaiverSigned,
		string(g.Status), g.CheckInDateTime, g.CheckOutDateTime, g.HostMemberID,
		g.ConvertedToMember, g.ConvertedMemberID, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save guest %s: %w", g.ID, err)
	}

	for _, v := range g.VisitHistory {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO guest_visits (id, guest_id, purpose, checked_in_at, checked_out_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET checked_out_at = EXCLUDED.checked_out_at`,
			v.ID, g.ID, string(v.Purpose), v.CheckIn, v.CheckOut,
		)
		if err != nil {
			return fmt.Errorf("save visit %s: %w", v.ID, err)
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) attachVisits(ctx context.Context, rows []guestRow) ([]Guest, error) {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	var visits []visitRow
	err := r.db.SelectContext(ctx, &visits,
		`SELECT guest_id, id, purpose, checked_in_at, checked_out_at FROM guest_visits WHERE guest_id = ANY($1) ORDER BY checked_in_at, id`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("load visits: %w", err)
	}
	byGuest := make(map[string][]Visit, len(rows))
	for _, v := range visits {
		byGuest[v.GuestID] = append(byGuest[v.GuestID], v.Visit)
	}

	out := make([]Guest, 0, len(rows))
	for _, row := range rows {
		history := byGuest[row.ID]
		if history == nil {
			history = []Visit{}
		}
		out = append(out, Guest{
			ID:                row.ID,
			FirstName:         row.FirstName,
			LastName:          row.LastName,
			Email:             row.Email,
			Phone:             row.Phone,
			VisitPurpose:      row.Purpose,
			WaiverSigned:      row.WaiverSigned,
			Status:            row.Status,
			CheckInDateTime:   row.CheckIn,
			CheckOutDateTime:  row.CheckOut,
			HostMemberID:      row.HostMemberID,
			VisitHistory:      history,
			ConvertedToMember: row.ConvertedToMember,
			ConvertedMemberID: row.ConvertedMemberID,
			CreatedAt:         row.CreatedAt,
			UpdatedAt:         row.UpdatedAt,
		})
	}
	return out, nil
}
