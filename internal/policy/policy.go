// Package policy содержит чистые функции допуска для бронирования и отмены занятий.
// Никакого I/O: всё нужное состояние передаётся аргументами.
package policy

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimeRange конец занятия не позже начала
var ErrInvalidTimeRange = errors.New("end time must be after start time")

// Decision результат проверки политики
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(format string, args ...interface{}) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}

// Limits настройки политики; 0 означает отсутствие ограничения
type Limits struct {
	MaxDailyBookingMinutes int
	CancelLockMinutes      int
}

// CanBook проверяет дневной лимит минут студента
func CanBook(existingMinutesToday, requestedMinutes, dailyLimitMinutes int) Decision {
	if dailyLimitMinutes <= 0 {
		return allow()
	}
	if existingMinutesToday+requestedMinutes > dailyLimitMinutes {
		return deny("exceeds daily booking limit: %d booked + %d requested > %d minutes",
			existingMinutesToday, requestedMinutes, dailyLimitMinutes)
	}
	return allow()
}

// CanCancel запрещает отмену, если до начала осталось lockWindowMinutes или меньше.
// Сравнение идёт по точной длительности: ровно W минут до начала уже запрещено,
// прошедшие занятия тоже.
func CanCancel(sessionStart, now time.Time, lockWindowMinutes int) Decision {
	if lockWindowMinutes <= 0 {
		return allow()
	}
	lead := sessionStart.Sub(now)
	if lead <= time.Duration(lockWindowMinutes)*time.Minute {
		return deny("cannot cancel within %d minutes of session start", lockWindowMinutes)
	}
	return allow()
}

// ComputeDuration длительность в целых минутах: целочисленное деление прошедшего
// времени на минуту, остаток меньше минуты отбрасывается. Интервал короче минуты
// даёт 0 и тоже считается ошибкой.
func ComputeDuration(start, end time.Time) (int, error) {
	if !end.After(start) {
		return 0, ErrInvalidTimeRange
	}
	minutes := int(end.Sub(start) / time.Minute)
	if minutes <= 0 {
		return 0, ErrInvalidTimeRange
	}
	return minutes, nil
}
