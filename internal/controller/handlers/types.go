package handlers

import (
	"context"
	"reflect"
	"strings"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// SessionService операции жизненного цикла занятий, нужные HTTP-слою
type SessionService interface {
	Book(ctx context.Context, req service.BookRequest) (*model.Session, error)
	Accept(ctx context.Context, sessionID, teacherAccountID int64) error
	Complete(ctx context.Context, sessionID, teacherAccountID int64) error
	Cancel(ctx context.Context, sessionID, callerAccountID int64) error
	Rate(ctx context.Context, sessionID, studentAccountID int64, rating int) (model.TeacherAggregate, error)
	ListSessions(ctx context.Context, accountID int64) ([]*model.SessionView, error)
	Summary(ctx context.Context, accountID int64) (*model.SessionSummary, error)
	ListTeachers(ctx context.Context) ([]*model.TeacherCard, error)
}

// Handlers содержит все зависимости для обработки запросов
type Handlers struct {
	sessions SessionService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewHandlers создаёт новый обработчик запросов
func NewHandlers(sessions SessionService, logger *zap.Logger) *Handlers {
	return &Handlers{
		sessions: sessions,
		validate: newValidator(),
		logger:   logger,
	}
}

// newValidator валидатор, который называет поля так же, как они названы в JSON
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
