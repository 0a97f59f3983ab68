package model

import "time"

type MessageType string

const MessageTypeText MessageType = "text"

// Message запись в переписке; сервис занятий создаёт её как уведомление
type Message struct {
	ID         int64       `json:"id"`
	SenderID   int64       `json:"sender_id"`
	ReceiverID int64       `json:"receiver_id"`
	SessionID  *int64      `json:"session_id"`
	Text       string      `json:"message_text"`
	Type       MessageType `json:"message_type"`
	CreatedAt  time.Time   `json:"created_at"`
}
