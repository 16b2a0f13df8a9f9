package backend

import (
	"context"

	"github.com/matheus3301/conversa/internal/bus"
	"github.com/matheus3301/conversa/internal/store"
	"go.uber.org/zap"
)

// FindReaction returns the reaction sender left with emoji on a message, or nil.
func (c *Client) FindReaction(ctx context.Context, messageID, sender, emoji string) (*store.Reaction, error) {
	db, err := c.store()
	if err != nil {
		return nil, err
	}
	return db.FindReaction(ctx, messageID, sender, emoji)
}

// AddReaction stores r and publishes the message's new reaction list.
func (c *Client) AddReaction(ctx context.Context, r *store.Reaction) error {
	db, err := c.store()
	if err != nil {
		return err
	}
	if err := db.InsertReaction(ctx, r); err != nil {
		return err
	}
	c.publishReactions(ctx, db, r.MessageID)
	return nil
}

// RemoveReaction deletes the reaction id, which actor must have left.
func (c *Client) RemoveReaction(ctx context.Context, actor, id string) error {
	db, err := c.store()
	if err != nil {
		return err
	}
	r, err := db.GetReaction(ctx, id)
	if err != nil {
		return err
	}
	if r == nil {
		return ErrNotFound
	}
	if r.SenderID != actor {
		return ErrNotOwner
	}
	if err := db.DeleteReaction(ctx, r.ID); err != nil {
		return err
	}
	c.publishReactions(ctx, db, r.MessageID)
	return nil
}

func (c *Client) publishReactions(ctx context.Context, db *store.DB, messageID string) {
	list, err := db.ListReactions(ctx, messageID)
	if err != nil {
		c.logger.Warn("reaction list reload failed", zap.Error(err), zap.String("msg_id", messageID))
		return
	}
	c.publish(bus.ReactionChanged, ReactionSet{MessageID: messageID, Reactions: list})
}
