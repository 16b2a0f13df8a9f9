// Package presence publishes the local user's typing status towards a peer
// and watches the peer's status towards the local user.
package presence

import (
	"context"
	"sync"
	"time"

	"github.com/matheus3301/conversa/internal/schedule"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	Typing    = "digitando"
	Recording = "gravando"
)

// Writer stores status rows.
type Writer interface {
	UpsertTyping(ctx context.Context, user, peer, status string) error
	DeleteTyping(ctx context.Context, user, peer string) error
}

// ChannelOptions tunes a Channel. Zero values pick the defaults.
type ChannelOptions struct {
	// IdleTimeout clears a typing status after the last keystroke. Default 2s.
	IdleTimeout time.Duration
	// Rewrite is the minimum gap between two upserts of the same status.
	// Default 1s.
	Rewrite time.Duration
	Clock   schedule.Clock
}

// Channel owns the status row of (self, peer).
type Channel struct {
	w       Writer
	self    string
	peer    string
	idle    time.Duration
	clock   schedule.Clock
	timer   *schedule.Timer
	limiter *rate.Limiter
	logger  *zap.Logger

	mu      sync.Mutex
	current string
	// gen identifies the latest SetStatus; an idle expiry armed by an
	// older call is void.
	gen uint64
}

// NewChannel creates a channel for self typing to peer.
func NewChannel(w Writer, self, peer string, opts ChannelOptions, logger *zap.Logger) *Channel {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 2 * time.Second
	}
	if opts.Rewrite <= 0 {
		opts.Rewrite = time.Second
	}
	if opts.Clock == nil {
		opts.Clock = schedule.Real{}
	}
	return &Channel{
		w:       w,
		self:    self,
		peer:    peer,
		idle:    opts.IdleTimeout,
		clock:   opts.Clock,
		timer:   schedule.NewTimer(opts.Clock),
		limiter: rate.NewLimiter(rate.Every(opts.Rewrite), 1),
		logger:  logger.With(zap.String("peer", peer)),
	}
}

// SetStatus upserts status, or deletes the row when status is empty. A typing
// status is cleared after the idle timeout unless renewed.
func (c *Channel) SetStatus(ctx context.Context, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++

	if status == "" {
		c.timer.Stop()
		if c.current == "" {
			return nil
		}
		c.current = ""
		return c.w.DeleteTyping(ctx, c.self, c.peer)
	}

	if status == Typing {
		gen := c.gen
		c.timer.Reset(c.idle, func() { c.expire(gen) })
	} else {
		c.timer.Stop()
	}

	allowed := c.limiter.AllowN(c.clock.Now(), 1)
	if status == c.current && !allowed {
		return nil
	}
	if err := c.w.UpsertTyping(ctx, c.self, c.peer, status); err != nil {
		return err
	}
	c.current = status
	return nil
}

// Keystroke marks self as typing and restarts the idle timer.
func (c *Channel) Keystroke(ctx context.Context) error {
	return c.SetStatus(ctx, Typing)
}

// Clear deletes the status row.
func (c *Channel) Clear(ctx context.Context) error {
	return c.SetStatus(ctx, "")
}

// Current returns the last status written.
func (c *Channel) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Close cancels the idle timer without touching the row.
func (c *Channel) Close() {
	c.timer.Stop()
}

// expire clears the typing status armed by SetStatus call gen, unless a
// later call superseded it.
func (c *Channel) expire(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen || c.current != Typing {
		return
	}
	c.gen++
	c.current = ""
	if err := c.w.DeleteTyping(ctx, c.self, c.peer); err != nil {
		c.logger.Warn("clear typing status failed", zap.Error(err))
	}
}
