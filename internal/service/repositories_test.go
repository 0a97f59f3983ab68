package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPgTransactor_CommitsOnSuccess(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`pg_advisory_xact_lock`)).
		WithArgs("book:10:2025-01-10").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SUM(duration_minutes)`)).
		WithArgs(int64(10), date, []string{"scheduled", "in_progress", "completed"}).
		WillReturnRows(pgxmock.NewRows([]string{"total"}).AddRow(120))
	mock.ExpectCommit()

	tx := NewTransactor(mock, zap.NewNop())
	err = tx.WithinTx(context.Background(), func(repos Repositories) error {
		if err := repos.Sessions.LockStudentDay(context.Background(), 10, date); err != nil {
			return err
		}
		total, err := repos.Sessions.SumDurationForStudentOnDate(context.Background(), 10, date)
		require.Equal(t, 120, total)
		return err
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgTransactor_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx := NewTransactor(mock, zap.NewNop())
	err = tx.WithinTx(context.Background(), func(Repositories) error {
		return ErrQuotaExceeded
	})

	require.ErrorIs(t, err, ErrQuotaExceeded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgTransactor_BeginFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	tx := NewTransactor(mock, zap.NewNop())
	err = tx.WithinTx(context.Background(), func(Repositories) error {
		called = true
		return nil
	})

	require.Error(t, err)
	require.False(t, called)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgTransactor_RateFlowUsesTeacherLock(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs(int64(20)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(20)))
	mock.ExpectExec(regexp.QuoteMeta(`student_rating IS NULL`)).
		WithArgs(int64(7), 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE teachers t`)).
		WithArgs(int64(20)).
		WillReturnRows(pgxmock.NewRows([]string{"rating", "total_ratings"}).AddRow(5.0, 1))
	mock.ExpectCommit()

	var agg model.TeacherAggregate
	tx := NewTransactor(mock, zap.NewNop())
	err = tx.WithinTx(context.Background(), func(repos Repositories) error {
		if err := repos.Sessions.LockTeacher(context.Background(), 20); err != nil {
			return err
		}
		if _, err := repos.Sessions.SetRating(context.Background(), 7, 5); err != nil {
			return err
		}
		agg, err = repos.Sessions.RecomputeTeacherAggregate(context.Background(), 20)
		return err
	})

	require.NoError(t, err)
	require.Equal(t, model.TeacherAggregate{Average: 5, Count: 1}, agg)
	require.NoError(t, mock.ExpectationsWereMet())
}
