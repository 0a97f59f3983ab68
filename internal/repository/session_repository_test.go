package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	repo "github.com/Freeeeeet/tutor_market/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

var sessionCols = []string{
	"id", "student_id", "teacher_id", "subject_id", "session_date", "start_time", "end_time",
	"duration_minutes", "status", "student_rating", "created_at", "updated_at",
}

func pgTime(t model.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: t.Microseconds(), Valid: true}
}

func TestSessionRepository_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewSessionRepository(mock)

	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO sessions (student_id, teacher_id, subject_id, session_date, start_time, end_time, duration_minutes, status)`)).
		WithArgs(int64(10), int64(20), int64(5), date, pgTime(600), pgTime(690), 90, model.SessionStatusScheduled).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(77), now, now))

	s := &model.Session{
		StudentID:       10,
		TeacherID:       20,
		SubjectID:       5,
		SessionDate:     date,
		StartTime:       600,
		EndTime:         690,
		DurationMinutes: 90,
		Status:          model.SessionStatusScheduled,
	}
	require.NoError(t, r.Insert(context.Background(), s))
	require.Equal(t, int64(77), s.ID)
	require.Equal(t, now, s.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewSessionRepository(mock)

	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	rating := 4
	mock.ExpectQuery(regexp.QuoteMeta(`FROM sessions WHERE id = $1`)).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(sessionCols).AddRow(
			int64(7), int64(10), int64(20), int64(5), date, pgTime(600), pgTime(660),
			60, model.SessionStatusCompleted, &rating, now, now,
		))

	s, err := r.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, s)
	require.Equal(t, model.TimeOfDay(600), s.StartTime)
	require.Equal(t, model.TimeOfDay(660), s.EndTime)
	require.Equal(t, model.SessionStatusCompleted, s.Status)
	require.Equal(t, 4, *s.StudentRating)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_GetByID_NoRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewSessionRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM sessions WHERE id = $1`)).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	s, err := r.GetByID(context.Background(), 404)
	require.NoError(t, err)
	require.Nil(t, s)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_UpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "status matched", affected: 1, want: true},
		{name: "lost race", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			r := repo.NewSessionRepository(mock)

			mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $1 AND status = $2`)).
				WithArgs(int64(7), model.SessionStatusScheduled, model.SessionStatusInProgress).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			ok, err := r.UpdateStatus(context.Background(), 7, model.SessionStatusScheduled, model.SessionStatusInProgress)
			require.NoError(t, err)
			require.Equal(t, tt.want, ok)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSessionRepository_UpdateStatus_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewSessionRepository(mock)

	boom := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions`)).
		WithArgs(int64(7), model.SessionStatusScheduled, model.SessionStatusCancelled).
		WillReturnError(boom)

	_, err = r.UpdateStatus(context.Background(), 7, model.SessionStatusScheduled, model.SessionStatusCancelled)
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_LockStudentDay(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewSessionRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`)).
		WithArgs("book:10:2025-01-10").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	err = r.LockStudentDay(context.Background(), 10, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_SumDurationForStudentOnDate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewSessionRepository(mock)

	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(duration_minutes), 0)::int`)).
		WithArgs(int64(10), date, []string{"scheduled", "in_progress", "completed"}).
		WillReturnRows(pgxmock.NewRows([]string{"total"}).AddRow(300))

	total, err := r.SumDurationForStudentOnDate(context.Background(), 10, date)
	require.NoError(t, err)
	require.Equal(t, 300, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_SetRating(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewSessionRepository(mock)

	q := regexp.QuoteMeta(`WHERE id = $1 AND status = 'completed' AND student_rating IS NULL`)
	mock.ExpectExec(q).WithArgs(int64(7), 5).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(q).WithArgs(int64(7), 3).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := r.SetRating(context.Background(), 7, 5)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.SetRating(context.Background(), 7, 3)
	require.NoError(t, err)
	require.False(t, ok, "second rating must not overwrite the first")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_LockAndRecomputeTeacherAggregate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewSessionRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM teachers WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(20)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(20)))
	mock.ExpectQuery(regexp.QuoteMeta(`RETURNING t.rating::float8, t.total_ratings`)).
		WithArgs(int64(20)).
		WillReturnRows(pgxmock.NewRows([]string{"rating", "total_ratings"}).AddRow(4.33, 3))

	require.NoError(t, r.LockTeacher(context.Background(), 20))

	agg, err := r.RecomputeTeacherAggregate(context.Background(), 20)
	require.NoError(t, err)
	require.Equal(t, model.TeacherAggregate{Average: 4.33, Count: 3}, agg)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_ListTeacherIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewSessionRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM teachers ORDER BY id`)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(20)).AddRow(int64(21)))

	ids, err := r.ListTeacherIDs(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int64{20, 21}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_ListForStudent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewSessionRepository(mock)

	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	cols := append(append([]string{}, sessionCols...), "name", "first_name", "last_name")
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE s.student_id = $1`)).
		WithArgs(int64(10)).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			int64(7), int64(10), int64(20), int64(5), date, pgTime(600), pgTime(660),
			60, model.SessionStatusScheduled, (*int)(nil), now, now,
			"Math", "Ada", "Lovelace",
		))

	views, err := r.ListForStudent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "Math", views[0].SubjectName)
	require.Equal(t, "Ada", views[0].CounterpartFirstName)
	require.Nil(t, views[0].StudentRating)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_SummaryForTeacher(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewSessionRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE teacher_id = $1`)).
		WithArgs(int64(20)).
		WillReturnRows(pgxmock.NewRows([]string{"count", "minutes"}).AddRow(4, 150))

	total, minutes, err := r.SummaryForTeacher(context.Background(), 20)
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Equal(t, 150, minutes)
	require.NoError(t, mock.ExpectationsWereMet())
}
