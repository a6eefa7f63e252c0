package useCases

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/larriantoniy/crosspost_translator/internal/domain"
	"github.com/larriantoniy/crosspost_translator/internal/metrics"
	"github.com/larriantoniy/crosspost_translator/internal/ports"
)

// SyncResult описывает, что синхронизатор сделал с ответами
type SyncResult struct {
	ReplyIDs []string
	Edited   int
	Created  int
	Deleted  int
	// Reset is set when a stored reply had disappeared and the whole set was recreated.
	Reset bool
}

// ReplySynchronizer приводит ответы на исходное сообщение к списку чанков:
// существующие ответы редактируются, недостающие создаются, лишние удаляются.
type ReplySynchronizer struct {
	messages ports.MessageService
	store    ports.ReplyStore
	log      *slog.Logger
}

func NewReplySynchronizer(messages ports.MessageService, store ports.ReplyStore, log *slog.Logger) *ReplySynchronizer {
	return &ReplySynchronizer{messages: messages, store: store, log: log}
}

// Sync reconciles the replies of original with chunks and persists the new
// reply IDs. A reply set with any member deleted out-of-band is deleted
// and recreated as a whole.
func (s *ReplySynchronizer) Sync(ctx context.Context, original domain.Message, chunks []string) (SyncResult, error) {
	var res SyncResult
	log := s.log.With("message_id", original.ID, "channel_id", original.ChannelID)

	ids, err := s.store.GetReplies(ctx, original.ID)
	if err != nil {
		return res, fmt.Errorf("load replies: %w", err)
	}

	// 1) резолвим сохраненные ответы; nil — ответ уже удален
	prior := s.resolve(ctx, original.ChannelID, ids)

	// 2) один пропал — удаляем весь набор и начинаем заново.
	// Unresolvable IDs are deleted too: the fetch may have failed transiently.
	if hasMissing(prior) {
		log.Warn("Some replies were deleted, recreating reply set", "stored", len(ids))
		res.Deleted += s.deleteAll(ctx, log, original.ChannelID, ids)
		prior = nil
		res.Reset = true
	}

	// 3) редактируем или создаем по порядку, чтобы порядок ответов совпадал с чанками
	newIDs := make([]string, 0, len(chunks))
	for i, content := range chunks {
		if i < len(prior) {
			msg, err := s.messages.EditMessage(ctx, original.ChannelID, prior[i].ID, content)
			if err != nil {
				s.savePartial(ctx, log, original.ID, newIDs, prior)
				return res, fmt.Errorf("edit reply %s: %w", prior[i].ID, err)
			}
			newIDs = append(newIDs, msg.ID)
			res.Edited++
			continue
		}

		msg, err := s.messages.SendReply(ctx, original, content)
		if err != nil {
			s.savePartial(ctx, log, original.ID, newIDs, prior)
			return res, fmt.Errorf("send reply %d/%d: %w", i+1, len(chunks), err)
		}
		newIDs = append(newIDs, msg.ID)
		res.Created++
	}

	// 4) лишние ответы удаляем, ошибки глотаем
	if len(prior) > len(chunks) {
		stale := make([]string, 0, len(prior)-len(chunks))
		for _, m := range prior[len(chunks):] {
			stale = append(stale, m.ID)
		}
		res.Deleted += s.deleteAll(ctx, log, original.ChannelID, stale)
	}

	// 5) перезаписываем соответствие
	if err := s.store.SetReplies(ctx, original.ID, newIDs); err != nil {
		return res, fmt.Errorf("save replies: %w", err)
	}

	res.ReplyIDs = newIDs
	metrics.AddReplyOps(res.Edited, res.Created, res.Deleted)
	log.Info("Replies synchronized",
		"replies", len(newIDs),
		"edited", res.Edited,
		"created", res.Created,
		"deleted", res.Deleted,
		"reset", res.Reset,
	)

	return res, nil
}

// resolve fetches every reply concurrently. The result has one entry per
// ID in the same order; an entry is nil when the reply cannot be fetched.
func (s *ReplySynchronizer) resolve(ctx context.Context, channelID string, ids []string) []*domain.Message {
	out := make([]*domain.Message, len(ids))

	var g errgroup.Group
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			msg, err := s.messages.FetchMessage(ctx, channelID, id)
			if err != nil {
				s.log.Debug("Reply is not resolvable", "reply_id", id, "error", err)
				return nil
			}
			out[i] = msg
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// deleteAll удаляет сообщения параллельно; возвращает число успешно удаленных
func (s *ReplySynchronizer) deleteAll(ctx context.Context, log *slog.Logger, channelID string, ids []string) int {
	var (
		g       errgroup.Group
		deleted atomic.Int32
	)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := s.messages.DeleteMessage(ctx, channelID, id); err != nil {
				log.Debug("Delete reply failed", "reply_id", id, "error", err)
				return nil
			}
			deleted.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return int(deleted.Load())
}

// savePartial keeps the replies produced so far followed by the prior
// replies that were not reached, so the next run can pick them up.
func (s *ReplySynchronizer) savePartial(ctx context.Context, log *slog.Logger, originalID string, done []string, prior []*domain.Message) {
	ids := append([]string(nil), done...)
	for i := len(done); i < len(prior); i++ {
		ids = append(ids, prior[i].ID)
	}
	if err := s.store.SetReplies(ctx, originalID, ids); err != nil {
		log.Error("Save partial replies failed", "error", err)
	}
}

func hasMissing(msgs []*domain.Message) bool {
	for _, m := range msgs {
		if m == nil {
			return true
		}
	}
	return false
}
