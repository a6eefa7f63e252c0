package ports

import (
	"context"

	"github.com/larriantoniy/crosspost_translator/internal/domain"
)

// MessageService — операции над сообщениями, которые нужны синхронизатору ответов.
type MessageService interface {
	// FetchMessage returns domain.ErrMessageNotFound when the message was deleted.
	FetchMessage(ctx context.Context, channelID, messageID string) (*domain.Message, error)
	// SendReply отправляет ответ на reference без уведомления и без парсинга упоминаний.
	// Отсутствие исходного сообщения не должно приводить к ошибке.
	SendReply(ctx context.Context, reference domain.Message, content string) (*domain.Message, error)
	EditMessage(ctx context.Context, channelID, messageID, content string) (*domain.Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// ChatPlatform определяет интерфейс для работы с чат-платформой.
// Реализуется конкретными адаптерами (discordgo и т.д.).
type ChatPlatform interface {
	MessageService

	// Listen возвращает канал доменных событий; канал закрывается вместе с ctx
	Listen(ctx context.Context) (<-chan domain.Event, error)
	// SelfID returns the bot user ID, or "" when it is not known yet.
	SelfID() string
	// IsMessageable reports whether the bot can post text into the channel at all.
	IsMessageable(ctx context.Context, channelID string) (bool, error)
	// CanSend проверяет право SendMessages у бота в канале
	CanSend(ctx context.Context, channelID string) (bool, error)
	Close()
}
