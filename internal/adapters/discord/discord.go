package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/larriantoniy/crosspost_translator/internal/domain"
)

// messageFlagIsCrosspost — сообщение пришло из канала, на который подписан сервер (IS_CROSSPOST)
const messageFlagIsCrosspost discordgo.MessageFlags = 1 << 1

const intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

// Client реализует ports.ChatPlatform через discordgo
type Client struct {
	session *discordgo.Session
	logger  *slog.Logger
	selfID  atomic.Value // string

	mu     sync.RWMutex
	closed bool
	out    chan domain.Event
}

func NewClient(token string, log *slog.Logger) (*Client, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = intents

	c := &Client{session: s, logger: log}
	c.selfID.Store("")
	s.AddHandler(c.onReady)

	return c, nil
}

func (c *Client) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	if r.User == nil {
		return
	}
	c.selfID.Store(r.User.ID)
	c.logger.Info("👌 Ready", "user", r.User.String(), "self_id", r.User.ID, "guilds", len(r.Guilds))
}

// Listen подключается к gateway и возвращает канал доменных событий.
// Канал закрывается после отмены ctx.
func (c *Client) Listen(ctx context.Context) (<-chan domain.Event, error) {
	c.out = make(chan domain.Event)

	removeCreate := c.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		c.emit(ctx, domain.EventMessageCreated, m.Message)
	})
	removeUpdate := c.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageUpdate) {
		c.emit(ctx, domain.EventMessageUpdated, m.Message)
	})

	if err := c.session.Open(); err != nil {
		removeCreate()
		removeUpdate()
		return nil, fmt.Errorf("open gateway: %w", err)
	}

	go func() {
		<-ctx.Done()
		removeCreate()
		removeUpdate()

		c.mu.Lock()
		c.closed = true
		close(c.out)
		c.mu.Unlock()
	}()

	return c.out, nil
}

func (c *Client) emit(ctx context.Context, kind domain.EventKind, m *discordgo.Message) {
	if m == nil {
		return
	}
	// личные сообщения не интересуют
	if m.GuildID == "" {
		c.logger.Debug("Skip non-guild message", "message_id", m.ID)
		return
	}

	ev := domain.Event{Kind: kind, Message: toDomain(m)}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.out <- ev:
	case <-ctx.Done():
	}
}

func (c *Client) SelfID() string {
	id, _ := c.selfID.Load().(string)
	return id
}

func (c *Client) FetchMessage(ctx context.Context, channelID, messageID string) (*domain.Message, error) {
	m, err := c.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	msg := toDomain(m)
	return &msg, nil
}

func (c *Client) SendReply(ctx context.Context, reference domain.Message, content string) (*domain.Message, error) {
	m, err := c.session.ChannelMessageSendComplex(reference.ChannelID, replyPayload(reference, content), discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	msg := toDomain(m)
	return &msg, nil
}

func (c *Client) EditMessage(ctx context.Context, channelID, messageID, content string) (*domain.Message, error) {
	m, err := c.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:              messageID,
		Channel:         channelID,
		Content:         &content,
		AllowedMentions: noMentions(),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	msg := toDomain(m)
	return &msg, nil
}

func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := c.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return mapError(err)
	}
	return nil
}

// IsMessageable сначала смотрит в кеш state, потом идет в REST
func (c *Client) IsMessageable(ctx context.Context, channelID string) (bool, error) {
	ch, err := c.session.State.Channel(channelID)
	if err != nil {
		ch, err = c.session.Channel(channelID, discordgo.WithContext(ctx))
		if err != nil {
			return false, fmt.Errorf("get channel %s: %w", channelID, err)
		}
	}
	return isMessageable(ch.Type), nil
}

func (c *Client) CanSend(ctx context.Context, channelID string) (bool, error) {
	self := c.SelfID()
	if self == "" {
		return false, errors.New("self user is not known yet")
	}
	perms, err := c.session.UserChannelPermissions(self, channelID, discordgo.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("get permissions in %s: %w", channelID, err)
	}
	return perms&discordgo.PermissionSendMessages != 0, nil
}

func (c *Client) Close() {
	if err := c.session.Close(); err != nil {
		c.logger.Warn("Close discord session failed", "error", err)
	}
}

func toDomain(m *discordgo.Message) domain.Message {
	msg := domain.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
		Crosspost: m.Flags&messageFlagIsCrosspost != 0,
	}
	// update-события без автора приходят урезанными
	if m.Author == nil {
		msg.Partial = true
	} else {
		msg.AuthorID = m.Author.ID
	}
	return msg
}

func noMentions() *discordgo.MessageAllowedMentions {
	return &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}
}

// replyPayload: ответ без уведомления, без упоминаний, и не падает если оригинал удален
func replyPayload(reference domain.Message, content string) *discordgo.MessageSend {
	failIfNotExists := false
	return &discordgo.MessageSend{
		Content: content,
		Reference: &discordgo.MessageReference{
			MessageID:       reference.ID,
			ChannelID:       reference.ChannelID,
			GuildID:         reference.GuildID,
			FailIfNotExists: &failIfNotExists,
		},
		AllowedMentions: noMentions(),
		Flags:           discordgo.MessageFlagsSuppressNotifications,
	}
}

func isMessageable(t discordgo.ChannelType) bool {
	switch t {
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeDM,
		discordgo.ChannelTypeGroupDM,
		discordgo.ChannelTypeGuildVoice,
		discordgo.ChannelTypeGuildStageVoice,
		discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildNewsThread,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread:
		return true
	default:
		return false
	}
}

// mapError переводит 404 / Unknown Message в domain.ErrMessageNotFound
func mapError(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage {
		return fmt.Errorf("%w: %w", domain.ErrMessageNotFound, err)
	}
	if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", domain.ErrMessageNotFound, err)
	}
	return err
}
