package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// MessageSender часть *bot.Bot, которая нужна для уведомлений
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// ChatResolver ищет telegram-чат аккаунта
type ChatResolver interface {
	GetTelegramChatID(ctx context.Context, accountID int64) (*int64, error)
}

// TelegramNotifier дублирует уведомление учителю в Telegram, если чат привязан
type TelegramNotifier struct {
	sender MessageSender
	chats  ChatResolver
	logger *zap.Logger
}

func NewTelegramNotifier(sender MessageSender, chats ChatResolver, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		sender: sender,
		chats:  chats,
		logger: logger,
	}
}

func (n *TelegramNotifier) SessionBooked(ctx context.Context, b Booked) error {
	chatID, err := n.chats.GetTelegramChatID(ctx, b.TeacherAccountID)
	if err != nil {
		return fmt.Errorf("telegram notification: %w", err)
	}

	// Учитель не привязал бота
	if chatID == nil {
		n.logger.Debug("Teacher has no telegram chat, skipping",
			zap.Int64("teacher_account_id", b.TeacherAccountID))
		return nil
	}

	text := fmt.Sprintf("📅 %s\n\nЗанятие #%d, %d мин.", b.Text(), b.SessionID, b.DurationMinutes)
	_, err = n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: *chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("telegram notification: %w", err)
	}

	return nil
}
