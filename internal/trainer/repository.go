package trainer

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

const selectTrainerColumns = `SELECT id, first_name, last_name, email, phone, specialties, assigned_classes, assigned_members, created_at, updated_at FROM trainers`

type trainerRow struct {
	ID              string         `db:"id"`
	FirstName       string         `db:"first_name"`
	LastName        string         `db:"last_name"`
	Email           string         `db:"email"`
	Phone           string         `db:"phone"`
	Specialties     pq.StringArray `db:"specialties"`
	AssignedClasses pq.StringArray `db:"assigned_classes"`
	AssignedMembers pq.StringArray `db:"assigned_members"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type windowRow struct {
	TrainerID string             `db:"trainer_id"`
	Weekday   int                `db:"weekday"`
	Start     calendar.TimeOfDay `db:"start_minute"`
	End       calendar.TimeOfDay `db:"end_minute"`
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Trainer, error) {
	var row trainerRow
	err := r.db.GetContext(ctx, &row, selectTrainerColumns+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Trainer{}, ErrNotFound
	}
	if err != nil {
		return Trainer{}, fmt.Errorf("get trainer %s: %w", id, err)
	}
	trainers, err := r.attachAvailability(ctx, []trainerRow{row})
	if err != nil {
		return Trainer{}, err
	}
	return trainers[0], nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Trainer, error) {
	var rows []trainerRow
	if err := r.db.SelectContext(ctx, &rows, selectTrainerColumns+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list trainers: %w", err)
	}
	if len(rows) == 0 {
		return []Trainer{}, nil
	}
	return r.attachAvailability(ctx, rows)
}

func (r *PostgresRepository) Save(ctx context.Context, t Trainer) error {
	if err := t.Validate(); err != nil {
		return err
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO trainers (id, first_name, last_name, email, phone, specialties, assigned_classes, assigned_members, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			specialties = EXCLUDED.specialties,
			assigned_classes = EXCLUDED.assigned_classes,
			assigned_members = EXCLUDED.assigned_members,
			updated_at = EXCLUDED.updated_at`,
		t.ID, t.FirstName, t.LastName, t.Email, t.Phone,
		pq.Array(t.Specialties), pq.Array(t.AssignedClasses), pq.Array(t.AssignedMembers),
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save trainer %s: %w", t.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM trainer_availability WHERE trainer_id = $1`, t.ID); err != nil {
		return fmt.Errorf("clear availability %s: %w", t.ID, err)
	}
	for _, w := range t.Availability {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO trainer_availability (trainer_id, weekday, start_minute, end_minute) VALUES ($1, $2, $3, $4)`,
			t.ID, int(w.Weekday), w.Interval.Start, w.Interval.End,
		)
		if err != nil {
			return fmt.Errorf("save availability %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) attachAvailability(ctx context.Context, rows []trainerRow) ([]Trainer, error) {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	var windows []windowRow
	err := r.db.SelectContext(ctx, &windows,
		`SELECT trainer_id, weekday, start_minute, end_minute FROM trainer_availability WHERE trainer_id = ANY($1) ORDER BY trainer_id, weekday, start_minute`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("load availability: %w", err)
	}
	byTrainer := make(map[string][]Window, len(rows))
	for _, w := range windows {
		byTrainer[w.TrainerID] = append(byTrainer[w.TrainerID], Window{
			Weekday:  time.Weekday(w.Weekday),
			Interval: calendar.Interval{Start: w.Start, End: w.End},
		})
	}

	out := make([]Trainer, 0, len(rows))
	for _, row := range rows {
		t := Trainer{
			ID:              row.ID,
			FirstName:       row.FirstName,
			LastName:        row.LastName,
			Email:           row.Email,
			Phone:           row.Phone,
			Specialties:     append([]string{}, row.Specialties...),
			Availability:    byTrainer[row.ID],
			AssignedClasses: append([]string{}, row.AssignedClasses...),
			AssignedMembers: append([]string{}, row.AssignedMembers...),
			CreatedAt:       row.CreatedAt,
			UpdatedAt:       row.UpdatedAt,
		}
		if t.Availability == nil {
			t.Availability = []Window{}
		}
		out = append(out, t)
	}
	return out, nil
}
