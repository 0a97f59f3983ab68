package model

import "time"

type SessionStatus string

const (
	SessionStatusScheduled  SessionStatus = "scheduled"   // Забронировано, ждёт учителя
	SessionStatusInProgress SessionStatus = "in_progress" // Учитель принял занятие
	SessionStatusCompleted  SessionStatus = "completed"   // Завершено
	SessionStatusCancelled  SessionStatus = "cancelled"   // Отменено (мягкое удаление)
)

// sessionTransitions допустимые рёбра жизненного цикла занятия
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusScheduled:  {SessionStatusInProgress, SessionStatusCancelled},
	SessionStatusInProgress: {SessionStatusCompleted},
}

// CanTransition проверяет, есть ли переход from → to в графе статусов
func CanTransition(from, to SessionStatus) bool {
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal true для completed и cancelled
func (s SessionStatus) IsTerminal() bool {
	return len(sessionTransitions[s]) == 0
}

// QuotaStatuses статусы, минуты которых учитываются в дневном лимите
var QuotaStatuses = []SessionStatus{
	SessionStatusScheduled,
	SessionStatusInProgress,
	SessionStatusCompleted,
}

type Session struct {
	ID              int64         `json:"id"`
	StudentID       int64         `json:"student_id"`
	TeacherID       int64         `json:"teacher_id"`
	SubjectID       int64         `json:"subject_id"`
	SessionDate     time.Time     `json:"session_date"`
	StartTime       TimeOfDay     `json:"start_time"`
	EndTime         TimeOfDay     `json:"end_time"`
	DurationMinutes int           `json:"duration_minutes"` // считается один раз при создании
	Status          SessionStatus `json:"status"`
	StudentRating   *int          `json:"student_rating"` // nil пока не оценено
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// StartsAt возвращает момент начала занятия в заданной локации
func (s *Session) StartsAt(loc *time.Location) time.Time {
	return s.StartTime.On(s.SessionDate, loc)
}

// SessionView занятие вместе с именами для списка в кабинете
type SessionView struct {
	Session
	SubjectName          string `json:"subject_name"`
	CounterpartFirstName string `json:"counterpart_first_name"`
	CounterpartLastName  string `json:"counterpart_last_name"`
}

// SessionSummary агрегаты для карточек обзора
type SessionSummary struct {
	TotalSessions  int `json:"totalSessions"`
	HoursCompleted int `json:"hoursCompleted"`
}
