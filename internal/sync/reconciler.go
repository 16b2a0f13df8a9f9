// Package sync keeps the in-memory message list of one conversation in step
// with the backend, by polling and by applying change events.
package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matheus3301/conversa/internal/backend"
	"github.com/matheus3301/conversa/internal/bus"
	"github.com/matheus3301/conversa/internal/metrics"
	"github.com/matheus3301/conversa/internal/store"
	"go.uber.org/zap"
)

// ErrSyncInFlight is returned when Sync is called while a previous run is
// still fetching.
var ErrSyncInFlight = errors.New("sync already in flight")

// Mode selects how the reconciler learns about changes.
type Mode string

const (
	ModePoll     Mode = "poll"
	ModeRealtime Mode = "realtime"
	ModeBoth     Mode = "both"
)

// ParseMode maps a config value to a Mode. Unknown values mean ModeBoth.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModePoll, ModeRealtime:
		return Mode(s)
	default:
		return ModeBoth
	}
}

// Source is the subset of the backend the reconciler reads and writes.
type Source interface {
	ListMessages(ctx context.Context, q store.MessageQuery) ([]store.Message, error)
	MarkRead(ctx context.Context, sender, recipient string) (int64, error)
}

// Feed delivers realtime change events.
type Feed interface {
	SubscribeWhere(namespace string, bufSize int, match func(bus.Event) bool) (<-chan bus.Event, func())
}

// HealthObserver receives the outcome of each sync run.
type HealthObserver interface {
	ObserveSync(err error)
}

// Options configures a Reconciler.
type Options struct {
	Self     string
	Peer     string
	Interval time.Duration
	Mode     Mode
	// Unscoped fetches every message and filters the pair client-side.
	Unscoped bool
}

// Result summarizes one sync run.
type Result struct {
	Added            int
	ReactionsChanged int
}

// Reconciler owns the ordered message list of one (self, peer) conversation.
type Reconciler struct {
	src      Source
	feed     Feed
	health   HealthObserver
	opts     Options
	logger   *zap.Logger
	onChange func()

	inFlight atomic.Bool

	mu    sync.RWMutex
	msgs  []store.Message
	index map[string]int
	// deleted holds ids removed by events; a fetch that raced the delete
	// must not bring them back.
	deleted map[string]struct{}

	cancel context.CancelFunc
	wg     sync.WaitGroup

	lifeMu  sync.Mutex
	stopped bool
}

// NewReconciler creates a reconciler. feed and health may be nil.
func NewReconciler(src Source, feed Feed, health HealthObserver, opts Options, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.Mode == "" {
		opts.Mode = ModeBoth
	}
	return &Reconciler{
		src:     src,
		feed:    feed,
		health:  health,
		opts:    opts,
		logger:  logger.With(zap.String("peer", opts.Peer)),
		index:   make(map[string]int),
		deleted: make(map[string]struct{}),
	}
}

// OnChange registers a callback run after every state mutation. It must be
// set before Start.
func (r *Reconciler) OnChange(fn func()) {
	r.onChange = fn
}

// Start runs an immediate sync, then polls and/or applies change events
// according to the configured mode until Stop or ctx is done.
func (r *Reconciler) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	if r.feed != nil && r.opts.Mode != ModePoll {
		ch, unsub := r.feed.SubscribeWhere("", 256, r.relevant)
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			defer unsub()
			for {
				select {
				case evt := <-ch:
					r.Apply(evt)
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.runSync(ctx)
		if r.opts.Mode == ModeRealtime {
			return
		}
		ticker := time.NewTicker(r.opts.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.runSync(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels polling and the event subscription and waits for background
// work to finish. Syncs run after Stop no longer mark messages read.
func (r *Reconciler) Stop() {
	r.lifeMu.Lock()
	r.stopped = true
	r.lifeMu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *Reconciler) runSync(ctx context.Context) {
	if _, err := r.Sync(ctx); err != nil && !errors.Is(err, ErrSyncInFlight) && ctx.Err() == nil {
		r.logger.Warn("sync failed", zap.Error(err))
	}
}

// Sync fetches the conversation, appends messages not seen before and
// replaces the reaction list of messages whose reactions changed. Other fields
// of known messages are left untouched. A fetch error leaves state unchanged.
func (r *Reconciler) Sync(ctx context.Context) (Result, error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		metrics.SyncRuns.WithLabelValues("skipped").Inc()
		return Result{}, ErrSyncInFlight
	}
	defer r.inFlight.Store(false)

	q := store.MessageQuery{Self: r.opts.Self, Peer: r.opts.Peer}
	if r.opts.Unscoped {
		q = store.MessageQuery{}
	}
	fetched, err := r.src.ListMessages(ctx, q)
	if err != nil {
		metrics.SyncRuns.WithLabelValues("error").Inc()
		r.observe(err)
		return Result{}, fmt.Errorf("fetch messages: %w", err)
	}

	var (
		res      Result
		fromPeer bool
	)
	r.mu.Lock()
	for _, m := range fetched {
		if !r.inPair(m.SenderID, m.RecipientID) {
			continue
		}
		if _, gone := r.deleted[m.ID]; gone {
			continue
		}
		i, ok := r.index[m.ID]
		if !ok {
			r.index[m.ID] = len(r.msgs)
			r.msgs = append(r.msgs, clone(m))
			res.Added++
			if m.SenderID != r.opts.Self {
				fromPeer = true
			}
			continue
		}
		if reactionKey(r.msgs[i].Reactions) != reactionKey(m.Reactions) {
			r.msgs[i].Reactions = cloneReactions(m.Reactions)
			res.ReactionsChanged++
		}
	}
	r.mu.Unlock()

	metrics.SyncRuns.WithLabelValues("ok").Inc()
	r.observe(nil)
	if fromPeer {
		r.markRead()
	}
	if res.Added > 0 || res.ReactionsChanged > 0 {
		metrics.MessagesApplied.WithLabelValues("inserted").Add(float64(res.Added))
		metrics.MessagesApplied.WithLabelValues("reactions").Add(float64(res.ReactionsChanged))
		r.changed()
	}
	return res, nil
}

// Apply folds one change event into the list. It reports whether the list
// changed; replaying an event is a no-op.
func (r *Reconciler) Apply(evt bus.Event) bool {
	var (
		applied  bool
		fromPeer bool
		change   string
	)
	r.mu.Lock()
	switch p := evt.Payload.(type) {
	case store.Message:
		if !r.inPair(p.SenderID, p.RecipientID) {
			break
		}
		i, ok := r.index[p.ID]
		switch evt.Kind {
		case bus.MessageInserted:
			if _, gone := r.deleted[p.ID]; ok || gone {
				break
			}
			r.index[p.ID] = len(r.msgs)
			r.msgs = append(r.msgs, clone(p))
			applied, change = true, "inserted"
			fromPeer = p.SenderID != r.opts.Self
		case bus.MessageUpdated:
			if !ok || r.msgs[i].Content == p.Content {
				break
			}
			r.msgs[i].Content = p.Content
			applied, change = true, "updated"
		}
	case backend.MessageRef:
		if evt.Kind != bus.MessageDeleted || !r.inPair(p.SenderID, p.RecipientID) {
			break
		}
		r.deleted[p.ID] = struct{}{}
		if _, ok := r.index[p.ID]; ok {
			r.remove(p.ID)
			applied, change = true, "deleted"
		}
	case backend.ReactionSet:
		i, ok := r.index[p.MessageID]
		if ok && reactionKey(r.msgs[i].Reactions) != reactionKey(p.Reactions) {
			r.msgs[i].Reactions = cloneReactions(p.Reactions)
			applied, change = true, "reactions"
		}
	}
	r.mu.Unlock()

	if !applied {
		return false
	}
	metrics.MessagesApplied.WithLabelValues(change).Inc()
	if fromPeer {
		r.markRead()
	}
	r.changed()
	return true
}

// Snapshot returns a deep copy of the ordered message list.
func (r *Reconciler) Snapshot() []store.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]store.Message, len(r.msgs))
	for i, m := range r.msgs {
		out[i] = clone(m)
	}
	return out
}

// Lookup returns a copy of a held message.
func (r *Reconciler) Lookup(id string) (store.Message, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return store.Message{}, false
	}
	return clone(r.msgs[i]), true
}

func (r *Reconciler) relevant(evt bus.Event) bool {
	switch p := evt.Payload.(type) {
	case store.Message:
		return r.inPair(p.SenderID, p.RecipientID)
	case backend.MessageRef:
		return r.inPair(p.SenderID, p.RecipientID)
	case backend.ReactionSet:
		return true
	default:
		return false
	}
}

func (r *Reconciler) inPair(sender, recipient string) bool {
	return (sender == r.opts.Self && recipient == r.opts.Peer) ||
		(sender == r.opts.Peer && recipient == r.opts.Self)
}

// remove deletes id and rebuilds the index. Caller holds r.mu.
func (r *Reconciler) remove(id string) {
	i := r.index[id]
	r.msgs = append(r.msgs[:i], r.msgs[i+1:]...)
	delete(r.index, id)
	for j := i; j < len(r.msgs); j++ {
		r.index[r.msgs[j].ID] = j
	}
}

// markRead flags the peer's messages as read without blocking the caller.
func (r *Reconciler) markRead() {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()
	if r.stopped {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := r.src.MarkRead(ctx, r.opts.Peer, r.opts.Self); err != nil {
			r.logger.Warn("mark read failed", zap.Error(err))
		}
	}()
}

func (r *Reconciler) observe(err error) {
	if r.health != nil {
		r.health.ObserveSync(err)
	}
}

func (r *Reconciler) changed() {
	if r.onChange != nil {
		r.onChange()
	}
}

func reactionKey(rs []store.Reaction) string {
	var sb strings.Builder
	for _, x := range rs {
		sb.WriteString(x.ID)
		sb.WriteByte(':')
		sb.WriteString(x.SenderID)
		sb.WriteByte(':')
		sb.WriteString(x.Emoji)
		sb.WriteByte(';')
	}
	return sb.String()
}

func cloneReactions(rs []store.Reaction) []store.Reaction {
	if rs == nil {
		return nil
	}
	return append([]store.Reaction(nil), rs...)
}

func clone(m store.Message) store.Message {
	m.Reactions = cloneReactions(m.Reactions)
	if m.Reply != nil {
		reply := *m.Reply
		m.Reply = &reply
	}
	return m
}
