package notify

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
)

type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) error
}

// MessageNotifier пишет уведомление во входящие учителя от имени студента
type MessageNotifier struct {
	store MessageStore
}

func NewMessageNotifier(store MessageStore) *MessageNotifier {
	return &MessageNotifier{store: store}
}

func (n *MessageNotifier) SessionBooked(ctx context.Context, b Booked) error {
	sessionID := b.SessionID
	msg := &model.Message{
		SenderID:   b.StudentAccountID,
		ReceiverID: b.TeacherAccountID,
		SessionID:  &sessionID,
		Text:       b.Text(),
		Type:       model.MessageTypeText,
	}

	if err := n.store.Create(ctx, msg); err != nil {
		return fmt.Errorf("message notification: %w", err)
	}
	return nil
}
