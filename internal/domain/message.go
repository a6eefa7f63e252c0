package domain

// Message описывает сообщение Discord, с которым работает relay
type Message struct {
	ID        string
	ChannelID string
	GuildID   string
	AuthorID  string
	Content   string
	// Crosspost is set for messages delivered from a followed announcement channel.
	Crosspost bool
	// Partial означает, что событие пришло без контента/автора и сообщение надо дозагрузить
	Partial bool
}

// InGuild reports whether the message was posted in a server channel.
func (m Message) InGuild() bool {
	return m.GuildID != ""
}

type EventKind int

const (
	EventMessageCreated EventKind = iota
	EventMessageUpdated
)

func (k EventKind) String() string {
	switch k {
	case EventMessageCreated:
		return "message_create"
	case EventMessageUpdated:
		return "message_update"
	default:
		return "unknown"
	}
}

// Event — входящее событие платформы, которое запускает одну relay-задачу
type Event struct {
	Kind    EventKind
	Message Message
}
