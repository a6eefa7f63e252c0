package useCases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/larriantoniy/crosspost_translator/internal/chunker"
	"github.com/larriantoniy/crosspost_translator/internal/domain"
	"github.com/larriantoniy/crosspost_translator/internal/markup"
	"github.com/larriantoniy/crosspost_translator/internal/metrics"
	"github.com/larriantoniy/crosspost_translator/internal/ports"
)

// SkipReason объясняет, почему сообщение не было переведено
type SkipReason string

const (
	SkipNone            SkipReason = ""
	SkipNotMessageable  SkipReason = "not_messageable"
	SkipNotInGuild      SkipReason = "not_in_guild"
	SkipNotCrosspost    SkipReason = "not_crosspost"
	SkipSelfUnknown     SkipReason = "self_unknown"
	SkipSelfAuthored    SkipReason = "self_authored"
	SkipNoPermission    SkipReason = "no_permission"
	SkipRejected        SkipReason = "translation_rejected"
	SkipUnchanged       SkipReason = "translation_unchanged"
	SkipEmptyTranslated SkipReason = "translation_empty"
)

type Result struct {
	TaskID  string
	Skipped SkipReason
	Sync    *SyncResult
}

type RelayConfig struct {
	FromLanguage string
	ToLanguage   string
	ChunkLimit   int
}

// Relay переводит одно кросспост-сообщение и синхронизирует ответы с переводом.
type Relay struct {
	log        *slog.Logger
	platform   ports.ChatPlatform
	translator ports.Translator
	sync       *ReplySynchronizer
	cfg        RelayConfig
}

func NewRelay(
	log *slog.Logger,
	platform ports.ChatPlatform,
	translator ports.Translator,
	store ports.ReplyStore,
	cfg RelayConfig,
) *Relay {
	return &Relay{
		log:        log,
		platform:   platform,
		translator: translator,
		sync:       NewReplySynchronizer(platform, store, log),
		cfg:        cfg,
	}
}

// Process runs escape → translate → unescape → chunk → sync for msg.
// Precondition failures are reported through Result.Skipped with a nil
// error; only transport and storage failures are returned as errors.
func (r *Relay) Process(ctx context.Context, msg domain.Message) (Result, error) {
	res := Result{TaskID: uuid.NewString()}
	log := r.log.With("task_id", res.TaskID, "message_id", msg.ID, "channel_id", msg.ChannelID)

	skip := func(reason SkipReason, text string) (Result, error) {
		log.Warn("❌ " + text)
		res.Skipped = reason
		metrics.ObserveRelay(string(reason))
		return res, nil
	}

	// сообщение пришло partial — дозагружаем
	if msg.Partial {
		full, err := r.platform.FetchMessage(ctx, msg.ChannelID, msg.ID)
		if err != nil {
			metrics.ObserveRelay("error")
			return res, fmt.Errorf("fetch partial message: %w", err)
		}
		msg = *full
	}

	// дешевые проверки без сетевых вызовов идут первыми
	if !msg.InGuild() {
		return skip(SkipNotInGuild, "Message is not in a guild")
	}
	if !msg.Crosspost {
		log.Debug("Message is not a crosspost")
		res.Skipped = SkipNotCrosspost
		metrics.ObserveRelay(string(SkipNotCrosspost))
		return res, nil
	}

	me := r.platform.SelfID()
	if me == "" {
		return skip(SkipSelfUnknown, "Failed to get self user")
	}
	if msg.AuthorID == me {
		return skip(SkipSelfAuthored, "Message is from myself")
	}

	messageable, err := r.platform.IsMessageable(ctx, msg.ChannelID)
	if err != nil {
		metrics.ObserveRelay("error")
		return res, fmt.Errorf("get channel: %w", err)
	}
	if !messageable {
		return skip(SkipNotMessageable, "Channel is not text based")
	}

	canSend, err := r.platform.CanSend(ctx, msg.ChannelID)
	if err != nil {
		log.Warn("❌ Failed to get my permissions", "error", err)
		res.Skipped = SkipNoPermission
		metrics.ObserveRelay(string(SkipNoPermission))
		return res, nil
	}
	if !canSend {
		return skip(SkipNoPermission, "I do not have permission to send messages")
	}

	translated, err := r.translator.Translate(ctx, markup.Escape(msg.Content), r.cfg.FromLanguage, r.cfg.ToLanguage)
	if errors.Is(err, domain.ErrTranslationRejected) {
		log.Warn("❌ Failed to translate message", "error", err)
		res.Skipped = SkipRejected
		metrics.ObserveRelay(string(SkipRejected))
		return res, nil
	}
	if err != nil {
		metrics.ObserveRelay("error")
		return res, fmt.Errorf("translate: %w", err)
	}

	text := markup.Unescape(translated)
	if text == msg.Content {
		return skip(SkipUnchanged, "Translated message is same as original message")
	}
	if strings.TrimSpace(text) == "" {
		return skip(SkipEmptyTranslated, "Translated message is empty")
	}

	chunks := chunker.Split(text, r.cfg.ChunkLimit)
	sr, err := r.sync.Sync(ctx, msg, chunks)
	if err != nil {
		metrics.ObserveRelay("error")
		return res, fmt.Errorf("sync replies: %w", err)
	}

	res.Sync = &sr
	metrics.ObserveRelay("relayed")
	log.Info("Message relayed", "chunks", len(chunks))

	return res, nil
}
