package trainer

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trainerColumns = []string{"id", "first_name", "last_name", "email", "phone", "specialties", "assigned_classes", "assigned_members", "created_at", "updated_at"}

func TestPostgresGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(sqlx.NewDb(db, "sqlmock"))
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM trainers WHERE id = \$1`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows(trainerColumns).
			AddRow("t1", "Maya", "Ortiz", "maya@example.com", "", `{Yoga,Pilates}`, `{c1}`, `{}`, now, now))
	mock.ExpectQuery(`FROM trainer_availability WHERE trainer_id = ANY\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"trainer_id", "weekday", "start_minute", "end_minute"}).
			AddRow("t1", 6, 480, 720))

	tr, err := repo.Get(context.Background(), "t1")
	require.NoError(t, err)

	assert.Equal(t, []string{"Yoga", "Pilates"}, tr.Specialties)
	assert.Equal(t, []string{"c1"}, tr.AssignedClasses)
	require.Len(t, tr.Availability, 1)
	assert.Equal(t, time.Saturday, tr.Availability[0].Weekday)
	assert.Equal(t, span(8, 0, 12, 0), tr.Availability[0].Interval)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(sqlx.NewDb(db, "sqlmock"))

	mock.ExpectQuery(`FROM trainers WHERE id = \$1`).
		WithArgs("t9").
		WillReturnRows(sqlmock.NewRows(trainerColumns))

	_, err = repo.Get(context.Background(), "t9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresSaveReplacesAvailability(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(sqlx.NewDb(db, "sqlmock"))

	tr := sampleTrainer()
	tr.Availability = tr.Availability[:1]

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO trainers .* ON CONFLICT \(id\) DO UPDATE`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM trainer_availability WHERE trainer_id = \$1`).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO trainer_availability`).
		WithArgs("t1", 6, int64(480), int64(720)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), tr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	tr := sampleTrainer()
	require.NoError(t, repo.Save(ctx, tr))

	got, err := repo.Get(ctx, "t1")
	require.NoError(t, err)
	got.Availability[0].Weekday = time.Sunday

	again, err := repo.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, again.Availability[0].Weekday)

	bad := sampleTrainer()
	bad.ID = "t2"
	bad.Availability = append(bad.Availability, Window{Weekday: time.Monday, Interval: span(18, 0, 19, 0)})
	assert.ErrorIs(t, repo.Save(ctx, bad), ErrOverlappingAvailability)

	_, err = repo.Get(ctx, "t2")
	assert.ErrorIs(t, err, ErrNotFound)
}
