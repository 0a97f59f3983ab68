package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
)

type MessageRepository struct {
	*base.Repository
}

func NewMessageRepository(db base.DB) *MessageRepository {
	return &MessageRepository{Repository: base.NewRepository(db)}
}

// Create сохраняет сообщение
func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	if msg.Type == "" {
		msg.Type = model.MessageTypeText
	}

	query := `
		INSERT INTO messages (sender_id, receiver_id, session_id, message_text, message_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		msg.SenderID,
		msg.ReceiverID,
		msg.SessionID,
		msg.Text,
		msg.Type,
	).Scan(&msg.ID, &msg.CreatedAt)

	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	return nil
}
