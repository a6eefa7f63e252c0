package ports

import "context"

// ReplyStore хранит соответствие исходное сообщение -> упорядоченные ID ответов.
type ReplyStore interface {
	// GetReplies возвращает nil без ошибки, если записи нет
	GetReplies(ctx context.Context, originalID string) ([]string, error)
	// SetReplies перезаписывает список целиком
	SetReplies(ctx context.Context, originalID string, replyIDs []string) error
}
