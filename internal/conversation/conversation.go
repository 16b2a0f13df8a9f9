// Package conversation holds the open conversation views of the signed-in
// user. Each view composes a reconciler, a composer, an action overlay and
// the typing channels of one peer.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/matheus3301/conversa/internal/backend"
	"github.com/matheus3301/conversa/internal/bus"
	"github.com/matheus3301/conversa/internal/composer"
	"github.com/matheus3301/conversa/internal/forward"
	"github.com/matheus3301/conversa/internal/metrics"
	"github.com/matheus3301/conversa/internal/overlay"
	"github.com/matheus3301/conversa/internal/presence"
	"github.com/matheus3301/conversa/internal/present"
	"github.com/matheus3301/conversa/internal/schedule"
	"github.com/matheus3301/conversa/internal/store"
	convsync "github.com/matheus3301/conversa/internal/sync"
	"go.uber.org/zap"
)

var (
	// ErrNotOpen is returned for a peer without an open view.
	ErrNotOpen = errors.New("conversation not open")
	// ErrSelf is returned when opening a conversation with oneself.
	ErrSelf = errors.New("cannot open a conversation with yourself")
)

// Options configures every view opened by a Manager.
type Options struct {
	Self           string
	Sync           convsync.Options
	Typing         presence.ChannelOptions
	TypingRefresh  time.Duration
	Overlay        overlay.Options
	MaxUploadBytes int64
	Clock          schedule.Clock
	RecorderMIME   string
}

// Changed is the payload of bus.ConversationChanged.
type Changed struct {
	Peer string
}

// Notice is the payload of bus.NoticeShown.
type Notice struct {
	Peer string
	Text string
}

// Manager owns the open views, one per peer.
type Manager struct {
	be        *backend.Client
	bus       *bus.Bus
	health    convsync.HealthObserver
	formatter *present.Formatter
	watcher   *presence.Watcher
	forwarder *forward.Forwarder
	opts      Options
	logger    *zap.Logger

	mu    sync.Mutex
	views map[string]*View
}

// NewManager creates a manager with no open views.
func NewManager(be *backend.Client, b *bus.Bus, health convsync.HealthObserver, formatter *present.Formatter, opts Options, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = schedule.Real{}
	}
	opts.Sync.Self = opts.Self
	opts.Typing.Clock = opts.Clock
	opts.Overlay.Clock = opts.Clock
	return &Manager{
		be:        be,
		bus:       b,
		health:    health,
		formatter: formatter,
		watcher:   presence.NewWatcher(be, opts.TypingRefresh, logger),
		forwarder: forward.New(be, opts.Self, logger),
		opts:      opts,
		logger:    logger,
		views:     make(map[string]*View),
	}
}

// Self returns the signed-in user id.
func (m *Manager) Self() string { return m.opts.Self }

// Formatter returns the date formatter used for views.
func (m *Manager) Formatter() *present.Formatter { return m.formatter }

// Open returns the view of peer, opening it when needed.
func (m *Manager) Open(ctx context.Context, peer string) (*View, error) {
	if peer == m.opts.Self {
		return nil, ErrSelf
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.views[peer]; ok {
		return v, nil
	}

	p, err := m.be.GetProfile(ctx, peer)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("peer %s: %w", peer, backend.ErrNotFound)
	}

	v := m.newView(*p)
	if err := m.watcher.Watch(ctx, m.opts.Self, peer, v.setPeerStatus); err != nil {
		v.close(ctx)
		return nil, fmt.Errorf("watch typing: %w", err)
	}
	v.rec.Start(context.Background())
	m.views[peer] = v
	metrics.OpenConversations.Inc()
	m.logger.Info("conversation opened", zap.String("peer", peer))
	return v, nil
}

func (m *Manager) newView(peer store.Profile) *View {
	logger := m.logger.With(zap.String("peer", peer.ID))
	v := &View{peer: peer, mgr: m}

	v.typing = presence.NewChannel(m.be, m.opts.Self, peer.ID, m.opts.Typing, logger)
	notify := composer.NotifierFunc(func(text string) {
		m.publish(bus.NoticeShown, Notice{Peer: peer.ID, Text: text})
	})
	v.composer = composer.New(m.be, v.typing, notify, composer.Microphone{MIME: m.opts.RecorderMIME},
		composer.Options{
			Self:           m.opts.Self,
			Peer:           peer.ID,
			MaxUploadBytes: m.opts.MaxUploadBytes,
			Clock:          m.opts.Clock,
		}, logger)
	v.overlay = overlay.New(m.be, v.composer, m.opts.Self, m.opts.Overlay, logger)
	v.overlay.OnChange(v.changed)

	so := m.opts.Sync
	so.Peer = peer.ID
	v.rec = convsync.NewReconciler(m.be, m.be, m.health, so, logger)
	v.rec.OnChange(v.changed)
	return v
}

// Get returns the open view of peer.
func (m *Manager) Get(peer string) (*View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.views[peer]
	if !ok {
		return nil, ErrNotOpen
	}
	return v, nil
}

// Peers returns the peers with an open view.
func (m *Manager) Peers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.views))
	for p := range m.views {
		out = append(out, p)
	}
	return out
}

// Close closes the view of peer. Closing a closed view is a no-op.
func (m *Manager) Close(ctx context.Context, peer string) {
	m.mu.Lock()
	v, ok := m.views[peer]
	delete(m.views, peer)
	m.mu.Unlock()
	if !ok {
		return
	}
	m.watcher.Unwatch(m.opts.Self, peer)
	v.close(ctx)
	metrics.OpenConversations.Dec()
	m.logger.Info("conversation closed", zap.String("peer", peer))
}

// CloseAll closes every open view.
func (m *Manager) CloseAll(ctx context.Context) {
	for _, p := range m.Peers() {
		m.Close(ctx, p)
	}
	m.watcher.Close()
}

// ForwardCandidates lists the profiles a message of the chat with peer can be
// forwarded to.
func (m *Manager) ForwardCandidates(ctx context.Context, peer string) ([]store.Profile, error) {
	return m.forwarder.Candidates(ctx, peer)
}

// Forward copies message id to recipients.
func (m *Manager) Forward(ctx context.Context, id string, recipients []string) (forward.Result, error) {
	msg, err := m.message(ctx, "", id)
	if err != nil {
		return forward.Result{}, err
	}
	return m.forwarder.Forward(ctx, msg, recipients)
}

// message finds id in the view of peer, falling back to the backend.
func (m *Manager) message(ctx context.Context, peer, id string) (store.Message, error) {
	if peer != "" {
		if v, err := m.Get(peer); err == nil {
			if msg, ok := v.rec.Lookup(id); ok {
				return msg, nil
			}
		}
	}
	msg, err := m.be.GetMessage(ctx, id)
	if err != nil {
		return store.Message{}, err
	}
	return *msg, nil
}

func (m *Manager) publish(kind string, payload any) {
	if m.bus != nil {
		m.bus.Publish(bus.Event{Kind: kind, Payload: payload})
	}
}
