package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
)

const SubjectSessionBooked = "session.booked"

// Publisher часть *nats.Conn, нужная для публикации
type Publisher interface {
	Publish(subj string, data []byte) error
}

type SessionBookedEvent struct {
	EventType        string    `json:"event_type"`
	SessionID        int64     `json:"session_id"`
	StudentAccountID int64     `json:"student_user_id"`
	TeacherAccountID int64     `json:"teacher_user_id"`
	SessionDate      string    `json:"session_date"`
	StartTime        string    `json:"start_time"`
	EndTime          string    `json:"end_time"`
	DurationMinutes  int       `json:"duration_minutes"`
	BookedAt         time.Time `json:"booked_at"`
}

// EventNotifier публикует событие бронирования в NATS
type EventNotifier struct {
	pub Publisher
	now func() time.Time
}

func NewEventNotifier(pub Publisher) *EventNotifier {
	return &EventNotifier{pub: pub, now: time.Now}
}

func (n *EventNotifier) SessionBooked(_ context.Context, b Booked) error {
	event := SessionBookedEvent{
		EventType:        SubjectSessionBooked,
		SessionID:        b.SessionID,
		StudentAccountID: b.StudentAccountID,
		TeacherAccountID: b.TeacherAccountID,
		SessionDate:      b.SessionDate.Format(model.DateLayout),
		StartTime:        b.StartTime.String(),
		EndTime:          b.EndTime.String(),
		DurationMinutes:  b.DurationMinutes,
		BookedAt:         n.now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", SubjectSessionBooked, err)
	}

	if err := n.pub.Publish(SubjectSessionBooked, data); err != nil {
		return fmt.Errorf("publish %s event: %w", SubjectSessionBooked, err)
	}

	return nil
}
