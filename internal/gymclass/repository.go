package gymclass

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

const (
	rosterConfirmed  = "confirmed"
	rosterWaitlisted = "waitlisted"
)

const selectClassColumns = `SELECT id, type, trainer_id, room, class_date, start_minute, end_minute, capacity, waitlist_enabled, created_at, updated_at FROM gym_classes`

type classRow struct {
	ID              string             `db:"id"`
	Type            string             `db:"type"`
	TrainerID       string             `db:"trainer_id"`
	Room            Room               `db:"room"`
	Date            calendar.Date      `db:"class_date"`
	Start           calendar.TimeOfDay `db:"start_minute"`
	End             calendar.TimeOfDay `db:"end_minute"`
	Capacity        int                `db:"capacity"`
	WaitlistEnabled bool               `db:"waitlist_enabled"`
	CreatedAt       time.Time          `db:"created_at"`
	UpdatedAt       time.Time          `db:"updated_at"`
}

type rosterRow struct {
	ClassID  string       `db:"class_id"`
	Kind     AttendeeKind `db:"attendee_kind"`
	ID       string       `db:"attendee_id"`
	Status   string       `db:"status"`
	Position int          `db:"position"`
	JoinedAt time.Time    `db:"joined_at"`
}

// PostgresRepository stores sessions in gym_classes and their roster in class_roster.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (GymClass, error) {
	var row classRow
	err := r.db.GetContext(ctx, &row, selectClassColumns+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return GymClass{}, ErrNotFound
	}
	if err != nil {
		return GymClass{}, fmt.Errorf("get class %s: %w", id, err)
	}
	classes, err := r.attachRosters(ctx, []classRow{row})
	if err != nil {
		return GymClass{}, err
	}
	return classes[0], nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]GymClass, error) {
	return r.selectClasses(ctx, selectClassColumns+` ORDER BY class_date, start_minute, room, id`)
}

func (r *PostgresRepository) ListByDate(ctx context.Context, date calendar.Date) ([]GymClass, error) {
	return r.selectClasses(ctx, selectClassColumns+` WHERE class_date = $1 ORDER BY start_minute, room, id`, date)
}

func (r *PostgresRepository) ListByTrainer(ctx context.Context, trainerID string) ([]GymClass, error) {
	return r.selectClasses(ctx, selectClassColumns+` WHERE trainer_id = $1 ORDER BY class_date, start_minute, room, id`, trainerID)
}

func (r *PostgresRepository) Save(ctx context.Context, c GymClass) error {
	if c.ID == "" {
		return ErrNotFound
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO gym_classes (id, type, trainer_id, room, class_date, start_minute, end_minute, capacity, waitlist_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			trainer_id = EXCLUDED.trainer_id,
			room = EXCLUDED.room,
			class_date = EXCLUDED.class_date,
			start_minute = EXCLUDED.start_minute,
			end_minute = EXCLUDED.end_minute,
			capacity = EXCLUDED.capacity,
			waitlist_enabled = EXCLUDED.waitlist_enabled,
			updated_at = EXCLUDED.updated_at`,
		c.ID, c.Type, c.TrainerID, string(c.Room), c.Date, c.Interval.Start, c.Interval.End,
		c.Capacity, c.WaitlistEnabled, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save class %s: %w", c.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM class_roster WHERE class_id = $1`, c.ID); err != nil {
		return fmt.Errorf("clear roster %s: %w", c.ID, err)
	}

	const insertRoster = `INSERT INTO class_roster (class_id, attendee_kind, attendee_id, status, position, joined_at) VALUES ($1, $2, $3, $4, $5, $6)`
	for i, a := range c.Attendees {
		if _, err := tx.ExecContext(ctx, insertRoster, c.ID, string(a.Kind), a.ID, rosterConfirmed, i+1, c.UpdatedAt); err != nil {
			return fmt.Errorf("save roster %s: %w", c.ID, err)
		}
	}
	for i, e := range c.Waitlist {
		if _, err := tx.ExecContext(ctx, insertRoster, c.ID, string(e.Attendee.Kind), e.Attendee.ID, rosterWaitlisted, i+1, e.JoinedAt); err != nil {
			return fmt.Errorf("save waitlist %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) selectClasses(ctx context.Context, query string, args ...any) ([]GymClass, error) {
	var rows []classRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	if len(rows) == 0 {
		return []GymClass{}, nil
	}
	return r.attachRosters(ctx, rows)
}

func (r *PostgresRepository) attachRosters(ctx context.Context, rows []classRow) ([]GymClass, error) {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	var roster []rosterRow
	err := r.db.SelectContext(ctx, &roster,
		`SELECT class_id, attendee_kind, attendee_id, status, position, joined_at FROM class_roster WHERE class_id = ANY($1) ORDER BY class_id, status, position`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("load rosters: %w", err)
	}

	byClass := make(map[string][]rosterRow, len(rows))
	for _, rr := range roster {
		byClass[rr.ClassID] = append(byClass[rr.ClassID], rr)
	}

	out := make([]GymClass, 0, len(rows))
	for _, row := range rows {
		c := GymClass{
			ID:              row.ID,
			Type:            row.Type,
			TrainerID:       row.TrainerID,
			Room:            row.Room,
			Date:            row.Date,
			Interval:        calendar.Interval{Start: row.Start, End: row.End},
			Capacity:        row.Capacity,
			Attendees:       []AttendeeRef{},
			Waitlist:        []WaitlistEntry{},
			WaitlistEnabled: row.WaitlistEnabled,
			CreatedAt:       row.CreatedAt,
			UpdatedAt:       row.UpdatedAt,
		}
		for _, rr := range byClass[row.ID] {
			ref := AttendeeRef{Kind: rr.Kind, ID: rr.ID}
			if rr.Status == rosterWaitlisted {
				c.Waitlist = append(c.Waitlist, WaitlistEntry{Attendee: ref, JoinedAt: rr.JoinedAt})
				continue
			}
			c.Attendees = append(c.Attendees, ref)
		}
		out = append(out, c)
	}
	return out, nil
}
