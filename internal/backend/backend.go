// Package backend is the client for the shared chat backend: relational rows,
// object storage and the realtime change feed.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/matheus3301/conversa/internal/blob"
	"github.com/matheus3301/conversa/internal/bus"
	"github.com/matheus3301/conversa/internal/metrics"
	"github.com/matheus3301/conversa/internal/store"
	"go.uber.org/zap"
)

var (
	// ErrNotConnected is returned by every operation before Connect or after Close.
	ErrNotConnected = errors.New("backend not connected")
	// ErrNotOwner is returned when a user mutates a row they did not author.
	ErrNotOwner = errors.New("not the owner")
	// ErrNotFound is returned when the target row does not exist.
	ErrNotFound = store.ErrNotFound
)

// Config locates the backend resources.
type Config struct {
	DBPath string
}

// Client is an explicitly connected handle to the backend. Every write
// publishes the matching change event on the bus.
type Client struct {
	cfg    Config
	blobs  blob.Store
	bus    *bus.Bus
	logger *zap.Logger

	mu sync.RWMutex
	db *store.DB
}

// New creates a disconnected client.
func New(cfg Config, blobs blob.Store, b *bus.Bus, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, blobs: blobs, bus: b, logger: logger}
}

// Connect opens and migrates the database. Calling it twice is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		return nil
	}
	db, err := store.Open(c.cfg.DBPath)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping: %w", err)
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return err
	}
	c.logger.Info("backend connected",
		zap.String("path", c.cfg.DBPath),
		zap.Uint("schema_version", result.Version),
		zap.Bool("migrated", result.Changed))
	c.db = db
	return nil
}

// Close releases the database. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	c.logger.Info("backend disconnected")
	return err
}

// Connected reports whether Connect succeeded and Close was not called.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db != nil
}

func (c *Client) store() (*store.DB, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.db == nil {
		return nil, ErrNotConnected
	}
	return c.db, nil
}

func (c *Client) publish(kind string, payload any) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(bus.Event{Kind: kind, Payload: payload})
}

// Upload stores a media object and returns its public URL.
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if !c.Connected() {
		return "", ErrNotConnected
	}
	if c.blobs == nil {
		return "", fmt.Errorf("upload %s: no object store configured", key)
	}
	folder, _, _ := strings.Cut(key, "/")
	url, err := c.blobs.Put(ctx, key, body, size, contentType)
	if err != nil {
		metrics.Uploads.WithLabelValues(folder, "error").Inc()
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	metrics.Uploads.WithLabelValues(folder, "ok").Inc()
	return url, nil
}

// SubscribeWhere exposes the change feed.
func (c *Client) SubscribeWhere(namespace string, bufSize int, match func(bus.Event) bool) (<-chan bus.Event, func()) {
	return c.bus.SubscribeWhere(namespace, bufSize, match)
}
