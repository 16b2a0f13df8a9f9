package bus

import "time"

// Event kinds published by the backend client and the daemon.
const (
	MessageInserted      = "message.inserted"
	MessageUpdated       = "message.updated"
	MessageDeleted       = "message.deleted"
	MessagesRead         = "message.read"
	ReactionChanged      = "reaction.changed"
	TypingChanged        = "typing.changed"
	ProfileUpdated       = "profile.updated"
	SessionStatusChanged = "session.status_changed"
	ConversationChanged  = "conversation.changed"
	NoticeShown          = "notice.shown"
)

// Event represents a domain event published on the bus.
type Event struct {
	ID        string
	Kind      string
	Timestamp time.Time
	Payload   any
}
