// Package notify доставляет уведомления о новых бронированиях.
// Доставка best-effort: ошибка логируется вызывающим и не отменяет бронирование.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"go.uber.org/zap"
)

// Booked событие "занятие забронировано"
type Booked struct {
	SessionID        int64
	StudentAccountID int64
	TeacherAccountID int64
	SessionDate      time.Time
	StartTime        model.TimeOfDay
	EndTime          model.TimeOfDay
	DurationMinutes  int
}

// Text текст уведомления для учителя
func (b Booked) Text() string {
	return fmt.Sprintf("New session booking request for %s %s-%s. Please accept to confirm.",
		b.SessionDate.Format(model.DateLayout), b.StartTime, b.EndTime)
}

type Notifier interface {
	SessionBooked(ctx context.Context, b Booked) error
}

// Multi рассылает событие всем каналам; ошибки каналов объединяются
type Multi struct {
	notifiers []Notifier
	logger    *zap.Logger
}

func NewMulti(logger *zap.Logger, notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers, logger: logger}
}

// Add подключает ещё один канал
func (m *Multi) Add(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

func (m *Multi) SessionBooked(ctx context.Context, b Booked) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.SessionBooked(ctx, b); err != nil {
			m.logger.Warn("Notification channel failed",
				zap.String("channel", fmt.Sprintf("%T", n)),
				zap.Int64("session_id", b.SessionID),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
