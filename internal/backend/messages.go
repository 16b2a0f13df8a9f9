package backend

import (
	"context"

	"github.com/matheus3301/conversa/internal/bus"
	"github.com/matheus3301/conversa/internal/store"
)

// ListMessages fetches messages ordered by creation time.
func (c *Client) ListMessages(ctx context.Context, q store.MessageQuery) ([]store.Message, error) {
	db, err := c.store()
	if err != nil {
		return nil, err
	}
	return db.ListMessages(ctx, q)
}

// GetMessage returns a message or ErrNotFound.
func (c *Client) GetMessage(ctx context.Context, id string) (*store.Message, error) {
	db, err := c.store()
	if err != nil {
		return nil, err
	}
	m, err := db.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	return m, nil
}

// InsertMessage stores m and publishes message.inserted with the stored row.
func (c *Client) InsertMessage(ctx context.Context, m *store.Message) error {
	db, err := c.store()
	if err != nil {
		return err
	}
	if err := db.InsertMessage(ctx, m); err != nil {
		return err
	}
	stored, err := db.GetMessage(ctx, m.ID)
	if err != nil || stored == nil {
		c.publish(bus.MessageInserted, *m)
		return nil
	}
	c.publish(bus.MessageInserted, *stored)
	return nil
}

// UpdateMessage replaces the content of a message authored by actor.
func (c *Client) UpdateMessage(ctx context.Context, actor, id, conteudo string) error {
	db, err := c.store()
	if err != nil {
		return err
	}
	m, err := c.owned(ctx, db, actor, id)
	if err != nil {
		return err
	}
	if err := db.UpdateMessageContent(ctx, id, conteudo); err != nil {
		return err
	}
	m.Content = conteudo
	c.publish(bus.MessageUpdated, *m)
	return nil
}

// DeleteMessage removes a message authored by actor.
func (c *Client) DeleteMessage(ctx context.Context, actor, id string) error {
	db, err := c.store()
	if err != nil {
		return err
	}
	m, err := c.owned(ctx, db, actor, id)
	if err != nil {
		return err
	}
	if err := db.DeleteMessage(ctx, id); err != nil {
		return err
	}
	c.publish(bus.MessageDeleted, MessageRef{ID: m.ID, SenderID: m.SenderID, RecipientID: m.RecipientID})
	return nil
}

func (c *Client) owned(ctx context.Context, db *store.DB, actor, id string) (*store.Message, error) {
	m, err := db.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	if m.SenderID != actor {
		return nil, ErrNotOwner
	}
	return m, nil
}

// MarkRead flags unread messages from sender to recipient as read.
func (c *Client) MarkRead(ctx context.Context, sender, recipient string) (int64, error) {
	db, err := c.store()
	if err != nil {
		return 0, err
	}
	n, err := db.MarkRead(ctx, sender, recipient)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		c.publish(bus.MessagesRead, ReadReceipt{SenderID: sender, RecipientID: recipient, Count: n})
	}
	return n, nil
}

// UnreadCounts returns unread message counts addressed to recipient by sender.
func (c *Client) UnreadCounts(ctx context.Context, recipient string) (map[string]int, error) {
	db, err := c.store()
	if err != nil {
		return nil, err
	}
	return db.UnreadCounts(ctx, recipient)
}

// MessageCount returns the number of stored messages.
func (c *Client) MessageCount(ctx context.Context) (int, error) {
	db, err := c.store()
	if err != nil {
		return 0, err
	}
	return db.MessageCount(ctx)
}
