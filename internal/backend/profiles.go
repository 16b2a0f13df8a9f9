package backend

import (
	"context"

	"github.com/matheus3301/conversa/internal/bus"
	"github.com/matheus3301/conversa/internal/store"
)

// UpsertProfile inserts or updates a profile.
func (c *Client) UpsertProfile(ctx context.Context, p *store.Profile) error {
	db, err := c.store()
	if err != nil {
		return err
	}
	if err := db.UpsertProfile(ctx, p); err != nil {
		return err
	}
	c.publish(bus.ProfileUpdated, *p)
	return nil
}

// GetProfile returns a profile or nil.
func (c *Client) GetProfile(ctx context.Context, id string) (*store.Profile, error) {
	db, err := c.store()
	if err != nil {
		return nil, err
	}
	return db.GetProfile(ctx, id)
}

// ListProfiles lists profiles.
func (c *Client) ListProfiles(ctx context.Context, q store.ProfileQuery) ([]store.Profile, error) {
	db, err := c.store()
	if err != nil {
		return nil, err
	}
	return db.ListProfiles(ctx, q)
}

// SetProfileStatus updates the coarse online/offline status of a profile.
func (c *Client) SetProfileStatus(ctx context.Context, id, status string) error {
	db, err := c.store()
	if err != nil {
		return err
	}
	if err := db.SetProfileStatus(ctx, id, status); err != nil {
		return err
	}
	if p, err := db.GetProfile(ctx, id); err == nil && p != nil {
		c.publish(bus.ProfileUpdated, *p)
	}
	return nil
}
