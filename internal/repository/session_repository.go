package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const sessionColumns = `id, student_id, teacher_id, subject_id, session_date, start_time, end_time,
		duration_minutes, status, student_rating, created_at, updated_at`

type SessionRepository struct {
	*base.Repository
}

func NewSessionRepository(db base.DB) *SessionRepository {
	return &SessionRepository{Repository: base.NewRepository(db)}
}

// Insert создаёт новое занятие и заполняет ID и временные метки
func (r *SessionRepository) Insert(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (student_id, teacher_id, subject_id, session_date, start_time, end_time, duration_minutes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		session.StudentID,
		session.TeacherID,
		session.SubjectID,
		session.SessionDate,
		timeOfDayParam(session.StartTime),
		timeOfDayParam(session.EndTime),
		session.DurationMinutes,
		session.Status,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// GetByID получает занятие по ID, nil если не найдено
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	session, err := scanSession(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	return session, nil
}

// UpdateStatus меняет статус только если текущий равен expected.
// false означает, что строка не совпала: занятие исчезло или статус уже другой.
func (r *SessionRepository) UpdateStatus(ctx context.Context, id int64, expected, next model.SessionStatus) (bool, error) {
	query := `
		UPDATE sessions
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`

	affected, err := r.ExecAffected(ctx, query, id, expected, next)
	if err != nil {
		return false, fmt.Errorf("update session status: %w", err)
	}

	return affected == 1, nil
}

// LockStudentDay берёт advisory lock на пару студент+дата до конца транзакции.
// Сериализует проверку дневного лимита и вставку.
func (r *SessionRepository) LockStudentDay(ctx context.Context, studentID int64, date time.Time) error {
	key := fmt.Sprintf("book:%d:%s", studentID, date.Format(model.DateLayout))

	_, err := r.DB().Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key)
	if err != nil {
		return fmt.Errorf("lock student day: %w", err)
	}

	return nil
}

// SumDurationForStudentOnDate сумма минут неотменённых занятий студента за день
func (r *SessionRepository) SumDurationForStudentOnDate(ctx context.Context, studentID int64, date time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(duration_minutes), 0)::int
		FROM sessions
		WHERE student_id = $1 AND session_date = $2 AND status = ANY($3)
	`

	var total int
	err := r.QueryRow(ctx, query, studentID, date, statusStrings(model.QuotaStatuses)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum student minutes: %w", err)
	}

	return total, nil
}

// SetRating ставит оценку завершённому занятию, если оценки ещё нет.
// false означает, что условие не выполнено.
func (r *SessionRepository) SetRating(ctx context.Context, id int64, rating int) (bool, error) {
	query := `
		UPDATE sessions
		SET student_rating = $2, updated_at = now()
		WHERE id = $1 AND status = 'completed' AND student_rating IS NULL
	`

	affected, err := r.ExecAffected(ctx, query, id, rating)
	if err != nil {
		return false, fmt.Errorf("set session rating: %w", err)
	}

	return affected == 1, nil
}

// LockTeacher блокирует строку учителя до конца транзакции
func (r *SessionRepository) LockTeacher(ctx context.Context, teacherID int64) error {
	var id int64
	err := r.QueryRow(ctx, `SELECT id FROM teachers WHERE id = $1 FOR UPDATE`, teacherID).Scan(&id)
	if err != nil {
		return fmt.Errorf("lock teacher: %w", err)
	}
	return nil
}

// RecomputeTeacherAggregate пересчитывает рейтинг учителя по всем оценённым
// завершённым занятиям и перезаписывает teachers.rating / total_ratings.
// Возвращается сохранённое значение (numeric(3,2)), как его видит каталог.
func (r *SessionRepository) RecomputeTeacherAggregate(ctx context.Context, teacherID int64) (model.TeacherAggregate, error) {
	query := `
		UPDATE teachers t
		SET rating = agg.avg_rating, total_ratings = agg.total
		FROM (
			SELECT COALESCE(AVG(student_rating), 0)::float8 AS avg_rating, COUNT(student_rating)::int AS total
			FROM sessions
			WHERE teacher_id = $1 AND status = 'completed' AND student_rating IS NOT NULL
		) agg
		WHERE t.id = $1
		RETURNING t.rating::float8, t.total_ratings
	`

	var agg model.TeacherAggregate
	err := r.QueryRow(ctx, query, teacherID).Scan(&agg.Average, &agg.Count)
	if err != nil {
		return model.TeacherAggregate{}, fmt.Errorf("recompute teacher aggregate: %w", err)
	}

	return agg, nil
}

// ListTeacherIDs все id учителей, для фоновой сверки рейтингов
func (r *SessionRepository) ListTeacherIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.Query(ctx, `SELECT id FROM teachers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list teacher ids: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan teacher ids: %w", err)
	}

	return ids, nil
}

// ListForStudent занятия студента с именем учителя, новые сначала
func (r *SessionRepository) ListForStudent(ctx context.Context, studentID int64) ([]*model.SessionView, error) {
	query := `
		SELECT s.id, s.student_id, s.teacher_id, s.subject_id, s.session_date, s.start_time, s.end_time,
		       s.duration_minutes, s.status, s.student_rating, s.created_at, s.updated_at,
		       sub.name, u.first_name, u.last_name
		FROM sessions s
		JOIN teachers t ON s.teacher_id = t.id
		JOIN users u ON t.user_id = u.id
		JOIN subjects sub ON s.subject_id = sub.id
		WHERE s.student_id = $1
		ORDER BY s.session_date DESC, s.start_time DESC
	`

	return r.listViews(ctx, query, studentID)
}

// ListForTeacher занятия учителя с именем студента, новые сначала
func (r *SessionRepository) ListForTeacher(ctx context.Context, teacherID int64) ([]*model.SessionView, error) {
	query := `
		SELECT s.id, s.student_id, s.teacher_id, s.subject_id, s.session_date, s.start_time, s.end_time,
		       s.duration_minutes, s.status, s.student_rating, s.created_at, s.updated_at,
		       sub.name, u.first_name, u.last_name
		FROM sessions s
		JOIN students st ON s.student_id = st.id
		JOIN users u ON st.user_id = u.id
		JOIN subjects sub ON s.subject_id = sub.id
		WHERE s.teacher_id = $1
		ORDER BY s.session_date DESC, s.start_time DESC
	`

	return r.listViews(ctx, query, teacherID)
}

func (r *SessionRepository) listViews(ctx context.Context, query string, id int64) ([]*model.SessionView, error) {
	rows, err := r.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	views := []*model.SessionView{}
	for rows.Next() {
		var v model.SessionView
		var start, end pgtype.Time
		err := rows.Scan(
			&v.ID,
			&v.StudentID,
			&v.TeacherID,
			&v.SubjectID,
			&v.SessionDate,
			&start,
			&end,
			&v.DurationMinutes,
			&v.Status,
			&v.StudentRating,
			&v.CreatedAt,
			&v.UpdatedAt,
			&v.SubjectName,
			&v.CounterpartFirstName,
			&v.CounterpartLastName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		v.StartTime = model.TimeOfDayFromMicroseconds(start.Microseconds)
		v.EndTime = model.TimeOfDayFromMicroseconds(end.Microseconds)
		views = append(views, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return views, nil
}

// SummaryForStudent всего занятий и минут завершённых занятий студента
func (r *SessionRepository) SummaryForStudent(ctx context.Context, studentID int64) (total int, completedMinutes int, err error) {
	return r.summary(ctx, "student_id", studentID)
}

// SummaryForTeacher то же для учителя
func (r *SessionRepository) SummaryForTeacher(ctx context.Context, teacherID int64) (total int, completedMinutes int, err error) {
	return r.summary(ctx, "teacher_id", teacherID)
}

func (r *SessionRepository) summary(ctx context.Context, column string, id int64) (int, int, error) {
	query := `
		SELECT COUNT(*)::int,
		       COALESCE(SUM(duration_minutes) FILTER (WHERE status = 'completed'), 0)::int
		FROM sessions
		WHERE ` + column + ` = $1
	`

	var total, minutes int
	if err := r.QueryRow(ctx, query, id).Scan(&total, &minutes); err != nil {
		return 0, 0, fmt.Errorf("sessions summary: %w", err)
	}

	return total, minutes, nil
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var s model.Session
	var start, end pgtype.Time
	err := row.Scan(
		&s.ID,
		&s.StudentID,
		&s.TeacherID,
		&s.SubjectID,
		&s.SessionDate,
		&start,
		&end,
		&s.DurationMinutes,
		&s.Status,
		&s.StudentRating,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.StartTime = model.TimeOfDayFromMicroseconds(start.Microseconds)
	s.EndTime = model.TimeOfDayFromMicroseconds(end.Microseconds)
	return &s, nil
}

func timeOfDayParam(t model.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: t.Microseconds(), Valid: true}
}

func statusStrings(statuses []model.SessionStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
