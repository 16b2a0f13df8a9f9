package backend

import (
	"context"

	"github.com/matheus3301/conversa/internal/bus"
	"github.com/matheus3301/conversa/internal/store"
)

// UpsertTyping writes the typing status of user towards peer.
func (c *Client) UpsertTyping(ctx context.Context, user, peer, status string) error {
	db, err := c.store()
	if err != nil {
		return err
	}
	if err := db.UpsertTyping(ctx, &store.TypingStatus{UserID: user, PeerID: peer, Status: status}); err != nil {
		return err
	}
	c.publish(bus.TypingChanged, TypingChange{UserID: user, PeerID: peer, Status: status})
	return nil
}

// DeleteTyping clears the typing status of user towards peer.
func (c *Client) DeleteTyping(ctx context.Context, user, peer string) error {
	db, err := c.store()
	if err != nil {
		return err
	}
	if err := db.DeleteTyping(ctx, user, peer); err != nil {
		return err
	}
	c.publish(bus.TypingChanged, TypingChange{UserID: user, PeerID: peer})
	return nil
}

// GetTyping returns the current status of user towards peer, empty if none.
func (c *Client) GetTyping(ctx context.Context, user, peer string) (string, error) {
	db, err := c.store()
	if err != nil {
		return "", err
	}
	ts, err := db.GetTyping(ctx, user, peer)
	if err != nil || ts == nil {
		return "", err
	}
	return ts.Status, nil
}
