package backend

import "github.com/matheus3301/conversa/internal/store"

// MessageRef identifies a deleted message and its pair.
type MessageRef struct {
	ID          string
	SenderID    string
	RecipientID string
}

// ReadReceipt is published when unread messages of a pair are marked read.
type ReadReceipt struct {
	SenderID    string
	RecipientID string
	Count       int64
}

// ReactionSet carries the full reaction list of a message after a change.
type ReactionSet struct {
	MessageID string
	Reactions []store.Reaction
}

// TypingChange is published on every typing status write. Status is empty
// when the row was deleted.
type TypingChange struct {
	UserID string
	PeerID string
	Status string
}
