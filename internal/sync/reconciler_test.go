package sync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matheus3301/conversa/internal/backend"
	"github.com/matheus3301/conversa/internal/bus"
	"github.com/matheus3301/conversa/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	msgs     []store.Message
	err      error
	block    chan struct{}
	queries  []store.MessageQuery
	markRead chan [2]string
}

func newFakeSource(msgs ...store.Message) *fakeSource {
	return &fakeSource{msgs: msgs, markRead: make(chan [2]string, 16)}
}

func (f *fakeSource) ListMessages(_ context.Context, q store.MessageQuery) ([]store.Message, error) {
	f.mu.Lock()
	block := f.block
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]store.Message, len(f.msgs))
	for i, m := range f.msgs {
		out[i] = clone(m)
	}
	return out, nil
}

func (f *fakeSource) MarkRead(_ context.Context, sender, recipient string) (int64, error) {
	f.markRead <- [2]string{sender, recipient}
	return 1, nil
}

func (f *fakeSource) set(msgs ...store.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = msgs
}

type healthRecorder struct {
	mu   sync.Mutex
	errs []error
}

func (h *healthRecorder) ObserveSync(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func msg(id, from, to string, at int64) store.Message {
	return store.Message{ID: id, SenderID: from, RecipientID: to, Content: "m-" + id, CreatedAt: at}
}

func opts() Options {
	return Options{Self: "me", Peer: "ana", Mode: ModePoll}
}

func TestSyncAppendsNewMessagesInFetchOrder(t *testing.T) {
	src := newFakeSource(msg("1", "me", "ana", 1), msg("2", "ana", "me", 2))
	r := NewReconciler(src, nil, nil, opts(), nil)

	res, err := r.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Added: 2}, res)

	src.set(msg("1", "me", "ana", 1), msg("2", "ana", "me", 2), msg("3", "me", "ana", 3))
	res, err = r.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)

	snap := r.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{snap[0].ID, snap[1].ID, snap[2].ID})
	assert.Equal(t, store.MessageQuery{Self: "me", Peer: "ana"}, src.queries[0])
}

func TestSyncIdempotent(t *testing.T) {
	m := msg("1", "ana", "me", 1)
	m.Reactions = []store.Reaction{{ID: "r1", MessageID: "1", SenderID: "me", Emoji: "👍"}}
	src := newFakeSource(m, msg("2", "me", "ana", 2))
	r := NewReconciler(src, nil, nil, opts(), nil)

	_, err := r.Sync(context.Background())
	require.NoError(t, err)
	first := r.Snapshot()

	res, err := r.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Equal(t, first, r.Snapshot())
}

func TestSyncReplacesOnlyReactions(t *testing.T) {
	src := newFakeSource(msg("1", "ana", "me", 1))
	r := NewReconciler(src, nil, nil, opts(), nil)
	_, err := r.Sync(context.Background())
	require.NoError(t, err)

	changed := msg("1", "ana", "me", 1)
	changed.Content = "edited elsewhere"
	changed.Reactions = []store.Reaction{{ID: "r1", MessageID: "1", SenderID: "ana", Emoji: "❤️"}}
	src.set(changed)

	res, err := r.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.ReactionsChanged)

	got, ok := r.Lookup("1")
	require.True(t, ok)
	assert.Equal(t, "m-1", got.Content)
	require.Len(t, got.Reactions, 1)
	assert.Equal(t, "❤️", got.Reactions[0].Emoji)
}

func TestSyncFiltersPairWhenUnscoped(t *testing.T) {
	src := newFakeSource(msg("1", "me", "ana", 1), msg("2", "bob", "me", 2), msg("3", "ana", "bob", 3), msg("4", "ana", "me", 4))
	o := opts()
	o.Unscoped = true
	r := NewReconciler(src, nil, nil, o, nil)

	_, err := r.Sync(context.Background())
	require.NoError(t, err)
	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "1", snap[0].ID)
	assert.Equal(t, "4", snap[1].ID)
	assert.Equal(t, store.MessageQuery{}, src.queries[0])
}

func TestSyncFetchErrorKeepsState(t *testing.T) {
	src := newFakeSource(msg("1", "me", "ana", 1))
	h := &healthRecorder{}
	r := NewReconciler(src, nil, h, opts(), nil)
	_, err := r.Sync(context.Background())
	require.NoError(t, err)
	before := r.Snapshot()

	src.mu.Lock()
	src.err = errors.New("connection reset")
	src.mu.Unlock()

	_, err = r.Sync(context.Background())
	require.Error(t, err)
	assert.Equal(t, before, r.Snapshot())
	require.Len(t, h.errs, 2)
	assert.NoError(t, h.errs[0])
	assert.Error(t, h.errs[1])
}

func TestSyncInFlightGuard(t *testing.T) {
	src := newFakeSource(msg("1", "me", "ana", 1))
	src.block = make(chan struct{})
	r := NewReconciler(src, nil, nil, opts(), nil)

	done := make(chan error, 1)
	go func() {
		_, err := r.Sync(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return len(src.queries) == 1
	}, time.Second, 5*time.Millisecond)

	_, err := r.Sync(context.Background())
	assert.ErrorIs(t, err, ErrSyncInFlight)

	close(src.block)
	require.NoError(t, <-done)
	assert.Len(t, r.Snapshot(), 1)
}

func TestSyncMarksPeerMessagesRead(t *testing.T) {
	src := newFakeSource(msg("1", "me", "ana", 1))
	r := NewReconciler(src, nil, nil, opts(), nil)
	_, err := r.Sync(context.Background())
	require.NoError(t, err)

	select {
	case got := <-src.markRead:
		t.Fatalf("unexpected mark read %v for own message", got)
	case <-time.After(50 * time.Millisecond):
	}

	src.set(msg("1", "me", "ana", 1), msg("2", "ana", "me", 2))
	_, err = r.Sync(context.Background())
	require.NoError(t, err)
	select {
	case got := <-src.markRead:
		assert.Equal(t, [2]string{"ana", "me"}, got)
	case <-time.After(time.Second):
		t.Fatal("mark read not fired")
	}
}

func TestApplyEvents(t *testing.T) {
	src := newFakeSource(msg("1", "me", "ana", 1), msg("2", "ana", "me", 2))
	r := NewReconciler(src, nil, nil, opts(), nil)
	changes := 0
	r.OnChange(func() { changes++ })
	_, err := r.Sync(context.Background())
	require.NoError(t, err)
	<-src.markRead
	changes = 0

	ins := bus.Event{Kind: bus.MessageInserted, Payload: msg("3", "me", "ana", 3)}
	assert.True(t, r.Apply(ins))
	assert.False(t, r.Apply(ins), "replayed insert must be a no-op")

	other := bus.Event{Kind: bus.MessageInserted, Payload: msg("9", "bob", "me", 9)}
	assert.False(t, r.Apply(other))

	upd := msg("1", "me", "ana", 1)
	upd.Content = "edited"
	assert.True(t, r.Apply(bus.Event{Kind: bus.MessageUpdated, Payload: upd}))
	assert.False(t, r.Apply(bus.Event{Kind: bus.MessageUpdated, Payload: upd}))

	set := backend.ReactionSet{MessageID: "2", Reactions: []store.Reaction{{ID: "r", MessageID: "2", SenderID: "me", Emoji: "😂"}}}
	assert.True(t, r.Apply(bus.Event{Kind: bus.ReactionChanged, Payload: set}))
	assert.False(t, r.Apply(bus.Event{Kind: bus.ReactionChanged, Payload: set}))

	del := bus.Event{Kind: bus.MessageDeleted, Payload: backend.MessageRef{ID: "2", SenderID: "ana", RecipientID: "me"}}
	assert.True(t, r.Apply(del))
	assert.False(t, r.Apply(del))

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "edited", snap[0].Content)
	assert.Equal(t, "3", snap[1].ID)
	_, ok := r.Lookup("2")
	assert.False(t, ok)
	assert.Equal(t, 4, changes)
}

func TestDeleteDuringFetchIsNotResurrected(t *testing.T) {
	src := newFakeSource(msg("1", "me", "ana", 1), msg("2", "me", "ana", 2))
	r := NewReconciler(src, nil, nil, opts(), nil)
	_, err := r.Sync(context.Background())
	require.NoError(t, err)

	src.mu.Lock()
	src.block = make(chan struct{})
	src.mu.Unlock()
	done := make(chan error, 1)
	go func() {
		_, err := r.Sync(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return len(src.queries) == 2
	}, time.Second, 5*time.Millisecond)

	del := bus.Event{Kind: bus.MessageDeleted, Payload: backend.MessageRef{ID: "2", SenderID: "me", RecipientID: "ana"}}
	require.True(t, r.Apply(del))

	close(src.block)
	require.NoError(t, <-done)
	_, ok := r.Lookup("2")
	assert.False(t, ok, "stale fetch brought a deleted message back")

	src.mu.Lock()
	src.block = nil
	src.mu.Unlock()
	_, err = r.Sync(context.Background())
	require.NoError(t, err)
	assert.Len(t, r.Snapshot(), 1)
	assert.False(t, r.Apply(bus.Event{Kind: bus.MessageInserted, Payload: msg("2", "me", "ana", 2)}))
}

func TestSyncAfterStopSkipsMarkRead(t *testing.T) {
	src := newFakeSource()
	r := NewReconciler(src, nil, nil, opts(), nil)
	r.Start(context.Background())
	r.Stop()

	src.set(msg("1", "ana", "me", 1))
	res, err := r.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	select {
	case got := <-src.markRead:
		t.Fatalf("mark read %v fired after Stop", got)
	case <-time.After(50 * time.Millisecond):
	}
	r.Stop()
}

func TestStartRealtimeAppliesBusEvents(t *testing.T) {
	src := newFakeSource()
	b := bus.New()
	o := opts()
	o.Mode = ModeRealtime
	r := NewReconciler(src, b, nil, o, nil)
	r.Start(context.Background())
	defer r.Stop()

	require.Eventually(t, func() bool { return b.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	b.Publish(bus.Event{Kind: bus.MessageInserted, Payload: msg("1", "me", "ana", 1)})

	require.Eventually(t, func() bool { return len(r.Snapshot()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestStartPollsOnInterval(t *testing.T) {
	src := newFakeSource()
	o := opts()
	o.Interval = 10 * time.Millisecond
	r := NewReconciler(src, nil, nil, o, nil)
	r.Start(context.Background())
	defer r.Stop()

	src.set(msg("1", "me", "ana", 1))
	require.Eventually(t, func() bool { return len(r.Snapshot()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModePoll, ParseMode("poll"))
	assert.Equal(t, ModeRealtime, ParseMode("realtime"))
	assert.Equal(t, ModeBoth, ParseMode(""))
	assert.Equal(t, ModeBoth, ParseMode("both"))
}
