// Package overlay implements the per-message action menu: ownership-gated
// actions, reaction toggling and the timers that show and dismiss the menu.
package overlay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matheus3301/conversa/internal/metrics"
	"github.com/matheus3301/conversa/internal/schedule"
	"github.com/matheus3301/conversa/internal/store"
	"go.uber.org/zap"
)

// Action is an entry of the message menu.
type Action string

const (
	React   Action = "react"
	Reply   Action = "reply"
	Forward Action = "forward"
	Edit    Action = "edit"
	Delete  Action = "delete"
)

// QuickReactions are offered before the full emoji catalog.
var QuickReactions = []string{"😂", "😍", "😱", "👍", "👎", "❤️"}

// Actions returns the menu of m for self. Only the sender may edit or delete.
func Actions(m store.Message, self string) []Action {
	acts := []Action{React, Reply, Forward}
	if m.SenderID == self {
		acts = append(acts, Edit, Delete)
	}
	return acts
}

// Backend is the subset of the backend client the overlay writes through.
type Backend interface {
	FindReaction(ctx context.Context, messageID, sender, emoji string) (*store.Reaction, error)
	AddReaction(ctx context.Context, r *store.Reaction) error
	RemoveReaction(ctx context.Context, actor, id string) error
	DeleteMessage(ctx context.Context, actor, id string) error
}

// Editor receives the edit and reply actions.
type Editor interface {
	BeginEdit(m store.Message) error
	ReplyTo(m store.Message)
}

// Options tunes the overlay timers. Zero values pick the defaults.
type Options struct {
	LongPress  time.Duration
	CloseDelay time.Duration
	Highlight  time.Duration
	Clock      schedule.Clock
}

// State is a copy of what the overlay shows.
type State struct {
	// Selected is the message whose menu is open.
	Selected string
	// Highlighted is the message flashed after jumping to a reply target.
	Highlighted string
}

// Overlay is the action menu of one conversation.
type Overlay struct {
	be       Backend
	editor   Editor
	self     string
	opts     Options
	logger   *zap.Logger
	onChange func()

	press     *schedule.Timer
	close     *schedule.Timer
	highlight *schedule.Timer

	mu    sync.Mutex
	state State
}

// New creates a closed overlay.
func New(be Backend, editor Editor, self string, opts Options, logger *zap.Logger) *Overlay {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.LongPress <= 0 {
		opts.LongPress = 500 * time.Millisecond
	}
	if opts.CloseDelay <= 0 {
		opts.CloseDelay = 200 * time.Millisecond
	}
	if opts.Highlight <= 0 {
		opts.Highlight = 1500 * time.Millisecond
	}
	if opts.Clock == nil {
		opts.Clock = schedule.Real{}
	}
	return &Overlay{
		be:        be,
		editor:    editor,
		self:      self,
		opts:      opts,
		logger:    logger,
		press:     schedule.NewTimer(opts.Clock),
		close:     schedule.NewTimer(opts.Clock),
		highlight: schedule.NewTimer(opts.Clock),
	}
}

// OnChange registers a callback run whenever State changes. Set it before use.
func (o *Overlay) OnChange(fn func()) {
	o.onChange = fn
}

// State returns what the overlay currently shows.
func (o *Overlay) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Overlay) update(fn func(*State)) {
	o.mu.Lock()
	before := o.state
	fn(&o.state)
	changed := before != o.state
	o.mu.Unlock()
	if changed && o.onChange != nil {
		o.onChange()
	}
}

// PressStart arms the long-press timer for id.
func (o *Overlay) PressStart(id string) {
	o.press.Reset(o.opts.LongPress, func() { o.Open(id) })
}

// PressEnd cancels a long press released before the threshold.
func (o *Overlay) PressEnd() {
	o.press.Stop()
}

// Open shows the menu of id.
func (o *Overlay) Open(id string) {
	o.close.Stop()
	o.update(func(s *State) { s.Selected = id })
}

// Hover opens the menu of id and cancels a pending close.
func (o *Overlay) Hover(id string) {
	o.Open(id)
}

// Leave closes the menu after the close delay, so the pointer can move from
// the message into the menu.
func (o *Overlay) Leave() {
	o.close.Reset(o.opts.CloseDelay, o.Dismiss)
}

// Dismiss closes the menu.
func (o *Overlay) Dismiss() {
	o.press.Stop()
	o.close.Stop()
	o.update(func(s *State) { s.Selected = "" })
}

// Highlight flashes id, fading after the highlight duration.
func (o *Overlay) Highlight(id string) {
	o.update(func(s *State) { s.Highlighted = id })
	o.highlight.Reset(o.opts.Highlight, func() {
		o.update(func(s *State) { s.Highlighted = "" })
	})
}

// ToggleReaction removes the reaction self left on m with emoji, or adds it
// when there is none. It reports whether the reaction was added.
func (o *Overlay) ToggleReaction(ctx context.Context, m store.Message, emoji string) (bool, error) {
	defer o.Dismiss()
	existing, err := o.be.FindReaction(ctx, m.ID, o.self, emoji)
	if err != nil {
		return false, fmt.Errorf("find reaction: %w", err)
	}
	if existing != nil {
		if err := o.be.RemoveReaction(ctx, o.self, existing.ID); err != nil {
			return false, fmt.Errorf("remove reaction: %w", err)
		}
		metrics.ReactionsToggled.WithLabelValues("removed").Inc()
		return false, nil
	}
	if err := o.be.AddReaction(ctx, &store.Reaction{MessageID: m.ID, SenderID: o.self, Emoji: emoji}); err != nil {
		return false, fmt.Errorf("add reaction: %w", err)
	}
	metrics.ReactionsToggled.WithLabelValues("added").Inc()
	return true, nil
}

// Reply makes m the reply target.
func (o *Overlay) Reply(m store.Message) {
	defer o.Dismiss()
	o.editor.ReplyTo(m)
}

// Edit loads m into the composer. It does nothing unless self sent m.
func (o *Overlay) Edit(m store.Message) bool {
	defer o.Dismiss()
	if m.SenderID != o.self {
		o.logger.Debug("edit ignored for foreign message", zap.String("msg_id", m.ID))
		return false
	}
	if err := o.editor.BeginEdit(m); err != nil {
		o.logger.Warn("begin edit failed", zap.String("msg_id", m.ID), zap.Error(err))
		return false
	}
	return true
}

// Delete removes m. It does nothing unless self sent m.
func (o *Overlay) Delete(ctx context.Context, m store.Message) (bool, error) {
	defer o.Dismiss()
	if m.SenderID != o.self {
		o.logger.Debug("delete ignored for foreign message", zap.String("msg_id", m.ID))
		return false, nil
	}
	if err := o.be.DeleteMessage(ctx, o.self, m.ID); err != nil {
		return false, fmt.Errorf("delete message: %w", err)
	}
	return true, nil
}

// Close cancels every timer.
func (o *Overlay) Close() {
	o.press.Stop()
	o.close.Stop()
	o.highlight.Stop()
}
