package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/notify"
	"github.com/Freeeeeet/tutor_market/internal/policy"
	"go.uber.org/zap"
)

const (
	MinRating = 1
	MaxRating = 5
)

// SessionConfig настройки политики и часовой пояс, в котором живут даты занятий
type SessionConfig struct {
	Limits   policy.Limits
	Location *time.Location
}

// BookRequest параметры бронирования. Указывается SubjectID или SubjectName.
type BookRequest struct {
	StudentAccountID int64
	TeacherAccountID int64
	SubjectID        *int64
	SubjectName      string
	Date             time.Time
	Start            model.TimeOfDay
	End              model.TimeOfDay
}

type SessionService struct {
	tx       Transactor
	repos    Repositories
	notifier notify.Notifier
	cfg      SessionConfig
	now      func() time.Time
	logger   *zap.Logger
}

func NewSessionService(
	tx Transactor,
	repos Repositories,
	notifier notify.Notifier,
	cfg SessionConfig,
	logger *zap.Logger,
) *SessionService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &SessionService{
		tx:       tx,
		repos:    repos,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock подменяет часы (для тестов политики отмены)
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// Book бронирует занятие студента у учителя
func (s *SessionService) Book(ctx context.Context, req BookRequest) (session *model.Session, err error) {
	defer func() { observe("book", err) }()

	studentID, err := s.resolveStudent(ctx, req.StudentAccountID)
	if err != nil {
		return nil, err
	}
	teacherID, err := s.resolveTeacher(ctx, req.TeacherAccountID)
	if err != nil {
		return nil, err
	}

	subjectName := strings.TrimSpace(req.SubjectName)
	if req.SubjectID != nil {
		subject, err := s.repos.Subjects.GetByID(ctx, *req.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("get subject: %w", err)
		}
		if subject == nil {
			return nil, fmt.Errorf("%w: subject %d not found", ErrValidation, *req.SubjectID)
		}
	} else if subjectName == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrValidation)
	}

	// Длительность считается один раз и сохраняется
	start := req.Start.On(req.Date, s.cfg.Location)
	end := req.End.On(req.Date, s.cfg.Location)
	duration, err := policy.ComputeDuration(start, end)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}

	session = &model.Session{
		StudentID:       studentID,
		TeacherID:       teacherID,
		SessionDate:     req.Date,
		StartTime:       req.Start,
		EndTime:         req.End,
		DurationMinutes: duration,
		Status:          model.SessionStatusScheduled,
	}

	// Проверка лимита и вставка под одной блокировкой студент+день
	err = s.tx.WithinTx(ctx, func(repos Repositories) error {
		if err := repos.Sessions.LockStudentDay(ctx, studentID, req.Date); err != nil {
			return err
		}

		if req.SubjectID != nil {
			session.SubjectID = *req.SubjectID
		} else {
			subjectID, err := repos.Subjects.FindOrCreateByName(ctx, subjectName)
			if err != nil {
				return err
			}
			session.SubjectID = subjectID
		}

		booked, err := repos.Sessions.SumDurationForStudentOnDate(ctx, studentID, req.Date)
		if err != nil {
			return err
		}

		decision := policy.CanBook(booked, duration, s.cfg.Limits.MaxDailyBookingMinutes)
		if !decision.Allowed {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, decision.Reason)
		}

		return repos.Sessions.Insert(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Session booked",
		zap.Int64("session_id", session.ID),
		zap.Int64("student_id", studentID),
		zap.Int64("teacher_id", teacherID),
		zap.String("date", req.Date.Format(model.DateLayout)),
		zap.Int("duration_minutes", duration),
	)

	// Уведомление учителю: best-effort, бронирование не откатывается
	if s.notifier != nil {
		notice := notify.Booked{
			SessionID:        session.ID,
			StudentAccountID: req.StudentAccountID,
			TeacherAccountID: req.TeacherAccountID,
			SessionDate:      session.SessionDate,
			StartTime:        session.StartTime,
			EndTime:          session.EndTime,
			DurationMinutes:  session.DurationMinutes,
		}
		if err := s.notifier.SessionBooked(ctx, notice); err != nil {
			// Каналы сами пишут Warn по каждой ошибке
			s.logger.Debug("Booking notification incomplete",
				zap.Int64("session_id", session.ID),
				zap.Error(err),
			)
		}
	}

	return session, nil
}

// Accept учитель принимает занятие: scheduled → in_progress
func (s *SessionService) Accept(ctx context.Context, sessionID, teacherAccountID int64) (err error) {
	defer func() { observe("accept", err) }()
	return s.teacherTransition(ctx, sessionID, teacherAccountID, model.SessionStatusInProgress)
}

// Complete учитель завершает занятие: in_progress → completed
func (s *SessionService) Complete(ctx context.Context, sessionID, teacherAccountID int64) (err error) {
	defer func() { observe("complete", err) }()
	return s.teacherTransition(ctx, sessionID, teacherAccountID, model.SessionStatusCompleted)
}

func (s *SessionService) teacherTransition(ctx context.Context, sessionID, teacherAccountID int64, to model.SessionStatus) error {
	teacherID, err := s.resolveTeacher(ctx, teacherAccountID)
	if err != nil {
		return err
	}

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.TeacherID != teacherID {
		return fmt.Errorf("%w: session belongs to another teacher", ErrForbidden)
	}

	return s.transition(ctx, session, to)
}

// Cancel отменяет запланированное занятие (мягкое удаление).
// Отменить может студент или учитель этого занятия.
func (s *SessionService) Cancel(ctx context.Context, sessionID, callerAccountID int64) (err error) {
	defer func() { observe("cancel", err) }()

	caller, err := s.repos.Users.ResolveRole(ctx, callerAccountID)
	if err != nil {
		return fmt.Errorf("resolve caller: %w", err)
	}
	if caller == nil {
		return fmt.Errorf("%w: user %d", ErrNotFound, callerAccountID)
	}

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if !caller.Owns(session) {
		return fmt.Errorf("%w: not authorized to cancel this session", ErrForbidden)
	}

	if session.Status != model.SessionStatusScheduled {
		return fmt.Errorf("%w: only scheduled sessions can be cancelled", ErrInvalidStateTransition)
	}

	decision := policy.CanCancel(session.StartsAt(s.cfg.Location), s.now(), s.cfg.Limits.CancelLockMinutes)
	if !decision.Allowed {
		return fmt.Errorf("%w: %s", ErrCancellationLocked, decision.Reason)
	}

	return s.transition(ctx, session, model.SessionStatusCancelled)
}

// Rate студент оценивает завершённое занятие. Первая оценка окончательная.
// После оценки рейтинг учителя пересчитывается по всем оценённым занятиям.
func (s *SessionService) Rate(ctx context.Context, sessionID, studentAccountID int64, rating int) (agg model.TeacherAggregate, err error) {
	defer func() { observe("rate", err) }()

	if rating < MinRating || rating > MaxRating {
		return agg, fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, MinRating, MaxRating)
	}

	studentID, err := s.resolveStudent(ctx, studentAccountID)
	if err != nil {
		return agg, err
	}

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return agg, err
	}

	if session.StudentID != studentID {
		return agg, fmt.Errorf("%w: not authorized to rate", ErrForbidden)
	}
	if session.Status != model.SessionStatusCompleted {
		return agg, fmt.Errorf("%w: can rate only completed sessions", ErrInvalidStateTransition)
	}
	if session.StudentRating != nil {
		return agg, ErrAlreadyRated
	}

	err = s.tx.WithinTx(ctx, func(repos Repositories) error {
		// Строка учителя блокируется, чтобы параллельные оценки не пересчитывали по неполным данным
		if err := repos.Sessions.LockTeacher(ctx, session.TeacherID); err != nil {
			return err
		}

		ok, err := repos.Sessions.SetRating(ctx, sessionID, rating)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyRated
		}

		agg, err = repos.Sessions.RecomputeTeacherAggregate(ctx, session.TeacherID)
		return err
	})
	if err != nil {
		return model.TeacherAggregate{}, err
	}

	s.logger.Info("Session rated",
		zap.Int64("session_id", sessionID),
		zap.Int64("teacher_id", session.TeacherID),
		zap.Int("rating", rating),
		zap.Float64("teacher_rating", agg.Average),
		zap.Int("teacher_total_ratings", agg.Count),
	)

	return agg, nil
}

// ListSessions занятия аккаунта в зависимости от роли
func (s *SessionService) ListSessions(ctx context.Context, accountID int64) ([]*model.SessionView, error) {
	rc, err := s.resolveAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if id, ok := rc.Student(); ok {
		return s.repos.Sessions.ListForStudent(ctx, id)
	}
	if id, ok := rc.Teacher(); ok {
		return s.repos.Sessions.ListForTeacher(ctx, id)
	}
	return nil, fmt.Errorf("%w: unsupported user type", ErrInvalidRole)
}

// Summary число занятий и часы завершённых занятий (округление до целых)
func (s *SessionService) Summary(ctx context.Context, accountID int64) (*model.SessionSummary, error) {
	rc, err := s.resolveAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var total, minutes int
	if id, ok := rc.Student(); ok {
		total, minutes, err = s.repos.Sessions.SummaryForStudent(ctx, id)
	} else if id, ok := rc.Teacher(); ok {
		total, minutes, err = s.repos.Sessions.SummaryForTeacher(ctx, id)
	} else {
		return nil, fmt.Errorf("%w: unsupported user type", ErrInvalidRole)
	}
	if err != nil {
		return nil, err
	}

	return &model.SessionSummary{
		TotalSessions:  total,
		HoursCompleted: int(math.Round(float64(minutes) / 60)),
	}, nil
}

// ListTeachers каталог учителей
func (s *SessionService) ListTeachers(ctx context.Context) ([]*model.TeacherCard, error) {
	return s.repos.Users.ListTeachers(ctx)
}

// ReconcileAggregates пересчитывает рейтинги всех учителей из исходных строк
func (s *SessionService) ReconcileAggregates(ctx context.Context) (int, error) {
	ids, err := s.repos.Sessions.ListTeacherIDs(ctx)
	if err != nil {
		return 0, err
	}

	var errs []error
	done := 0
	for _, teacherID := range ids {
		err := s.tx.WithinTx(ctx, func(repos Repositories) error {
			if err := repos.Sessions.LockTeacher(ctx, teacherID); err != nil {
				return err
			}
			_, err := repos.Sessions.RecomputeTeacherAggregate(ctx, teacherID)
			return err
		})
		if err != nil {
			s.logger.Error("Failed to reconcile teacher rating",
				zap.Int64("teacher_id", teacherID),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		done++
	}

	return done, errors.Join(errs...)
}

// transition проверяет граф статусов и делает CAS-обновление
func (s *SessionService) transition(ctx context.Context, session *model.Session, to model.SessionStatus) error {
	if !model.CanTransition(session.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, session.Status, to)
	}

	ok, err := s.repos.Sessions.UpdateStatus(ctx, session.ID, session.Status, to)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: session %d changed concurrently", ErrConflict, session.ID)
	}

	s.logger.Info("Session status changed",
		zap.Int64("session_id", session.ID),
		zap.String("from", string(session.Status)),
		zap.String("to", string(to)),
	)

	session.Status = to
	return nil
}

func (s *SessionService) getSession(ctx context.Context, sessionID int64) (*model.Session, error) {
	session, err := s.repos.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: session %d", ErrNotFound, sessionID)
	}
	return session, nil
}

func (s *SessionService) resolveAccount(ctx context.Context, accountID int64) (*model.RoleContext, error) {
	rc, err := s.repos.Users.ResolveRole(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("resolve account: %w", err)
	}
	if rc == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, accountID)
	}
	return rc, nil
}

func (s *SessionService) resolveStudent(ctx context.Context, accountID int64) (int64, error) {
	rc, err := s.repos.Users.ResolveRole(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("resolve student: %w", err)
	}
	id, ok := rc.Student()
	if !ok {
		return 0, fmt.Errorf("%w: invalid student user", ErrInvalidRole)
	}
	return id, nil
}

func (s *SessionService) resolveTeacher(ctx context.Context, accountID int64) (int64, error) {
	rc, err := s.repos.Users.ResolveRole(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("resolve teacher: %w", err)
	}
	id, ok := rc.Teacher()
	if !ok {
		return 0, fmt.Errorf("%w: invalid teacher user", ErrInvalidRole)
	}
	return id, nil
}
