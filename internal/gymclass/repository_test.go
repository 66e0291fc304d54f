package gymclass

import (
	"context"
	"testing"
	"time"

	"frontdesk/internal/calendar"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var classColumns = []string{"id", "type", "trainer_id", "room", "class_date", "start_minute", "end_minute", "capacity", "waitlist_enabled", "created_at", "updated_at"}

var rosterColumns = []string{"class_id", "attendee_kind", "attendee_id", "status", "position", "joined_at"}

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestPostgresGetLoadsRoster(t *testing.T) {
	repo, mock := newMockRepo(t)
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	joined := time.Date(2024, 5, 30, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, type, trainer_id, room, class_date, .* FROM gym_classes WHERE id = \$1`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(classColumns).
			AddRow("c1", "Spin", "t1", "Spin Room", day, 540, 600, 2, true, created, created))

	mock.ExpectQuery(`FROM class_roster WHERE class_id = ANY\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(rosterColumns).
			AddRow("c1", "member", "m1", "confirmed", 1, created).
			AddRow("c1", "guest", "g1", "confirmed", 2, created).
			AddRow("c1", "member", "m2", "waitlisted", 1, joined))

	c, err := repo.Get(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, RoomSpin, c.Room)
	assert.Equal(t, calendar.NewDate(2024, 6, 1), c.Date)
	assert.Equal(t, "09:00-10:00", c.Interval.String())
	assert.Equal(t, []AttendeeRef{member("m1"), {Kind: AttendeeGuest, ID: "g1"}}, c.Attendees)
	require.Len(t, c.Waitlist, 1)
	assert.Equal(t, member("m2"), c.Waitlist[0].Attendee)
	assert.Equal(t, joined, c.Waitlist[0].JoinedAt)
	assert.True(t, c.IsFull())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM gym_classes WHERE id = \$1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(classColumns))

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListByDateEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)
	date := calendar.NewDate(2024, 6, 1)

	mock.ExpectQuery(`FROM gym_classes WHERE class_date = \$1`).
		WithArgs(date.In(time.UTC)).
		WillReturnRows(sqlmock.NewRows(classColumns))

	classes, err := repo.ListByDate(context.Background(), date)
	require.NoError(t, err)
	assert.Empty(t, classes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveRewritesRoster(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	c := sampleClass("c1", calendar.NewDate(2024, 6, 1), 9, RoomStudioA)
	c.Capacity = 1
	c.WaitlistEnabled = true
	c.CreatedAt, c.UpdatedAt = now, now
	c.Attendees = []AttendeeRef{member("m1")}
	c.Waitlist = []WaitlistEntry{{Attendee: member("m2"), JoinedAt: now}}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO gym_classes .* ON CONFLICT \(id\) DO UPDATE`).
		WithArgs("c1", "Yoga", "t1", "Studio A", sqlmock.AnyArg(), int64(540), int64(600), 1, true, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM class_roster WHERE class_id = \$1`).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO class_roster`).
		WithArgs("c1", "member", "m1", "confirmed", 1, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO class_roster`).
		WithArgs("c1", "member", "m2", "waitlisted", 1, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveRollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	c := sampleClass("c1", calendar.NewDate(2024, 6, 1), 9, RoomStudioA)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO gym_classes`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Save(context.Background(), c)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
