package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
	"go.uber.org/zap"
)

type SessionRepository interface {
	Insert(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id int64) (*model.Session, error)
	UpdateStatus(ctx context.Context, id int64, expected, next model.SessionStatus) (bool, error)
	LockStudentDay(ctx context.Context, studentID int64, date time.Time) error
	SumDurationForStudentOnDate(ctx context.Context, studentID int64, date time.Time) (int, error)
	SetRating(ctx context.Context, id int64, rating int) (bool, error)
	LockTeacher(ctx context.Context, teacherID int64) error
	RecomputeTeacherAggregate(ctx context.Context, teacherID int64) (model.TeacherAggregate, error)
	ListTeacherIDs(ctx context.Context) ([]int64, error)
	ListForStudent(ctx context.Context, studentID int64) ([]*model.SessionView, error)
	ListForTeacher(ctx context.Context, teacherID int64) ([]*model.SessionView, error)
	SummaryForStudent(ctx context.Context, studentID int64) (int, int, error)
	SummaryForTeacher(ctx context.Context, teacherID int64) (int, int, error)
}

type SubjectRepository interface {
	FindOrCreateByName(ctx context.Context, name string) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Subject, error)
}

// UserRepository разрешение аккаунтов (Identity Resolver) и каталог учителей
type UserRepository interface {
	ResolveRole(ctx context.Context, accountID int64) (*model.RoleContext, error)
	ListTeachers(ctx context.Context) ([]*model.TeacherCard, error)
}

// Repositories набор репозиториев, привязанных к одному соединению или транзакции
type Repositories struct {
	Sessions SessionRepository
	Subjects SubjectRepository
	Users    UserRepository
}

// Transactor выполняет fn в одной транзакции; ошибка fn откатывает её
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}

// NewRepositories собирает Postgres-репозитории поверх пула или транзакции
func NewRepositories(db base.DB, logger *zap.Logger) Repositories {
	return Repositories{
		Sessions: repository.NewSessionRepository(db),
		Subjects: repository.NewSubjectRepository(db, logger),
		Users:    repository.NewUserRepository(db),
	}
}

type pgTransactor struct {
	db     base.Beginner
	logger *zap.Logger
}

func NewTransactor(db base.Beginner, logger *zap.Logger) Transactor {
	return &pgTransactor{db: db, logger: logger}
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(repos Repositories) error) error {
	// Начинаем транзакцию
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(NewRepositories(tx, t.logger)); err != nil {
		return err
	}

	// Коммитим транзакцию
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
