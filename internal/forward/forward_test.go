package forward

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/matheus3301/conversa/internal/content"
	"github.com/matheus3301/conversa/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu       sync.Mutex
	inserted []store.Message
	profiles map[string]store.Profile
	failFor  string
}

func (f *fakeBackend) InsertMessage(_ context.Context, m *store.Message) error {
	if m.RecipientID == f.failFor {
		return errors.New("boom")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = "fw-" + m.RecipientID
	f.inserted = append(f.inserted, *m)
	return nil
}

func (f *fakeBackend) GetProfile(_ context.Context, id string) (*store.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeBackend) ListProfiles(_ context.Context, q store.ProfileQuery) ([]store.Profile, error) {
	skip := map[string]bool{}
	for _, id := range q.Exclude {
		skip[id] = true
	}
	var out []store.Profile
	for _, p := range f.profiles {
		if !skip[p.ID] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func newFake() *fakeBackend {
	return &fakeBackend{profiles: map[string]store.Profile{
		"me":  {ID: "me", Name: "Eu"},
		"ana": {ID: "ana", Name: "Ana"},
		"bob": {ID: "bob", Name: "Bob"},
		"cid": {ID: "cid", Name: "Cid"},
	}}
}

func TestForwardSingleRecipientNavigates(t *testing.T) {
	be := newFake()
	f := New(be, "me", nil)
	m := store.Message{ID: "m1", SenderID: "ana", RecipientID: "me", Content: content.Encode("https://x/a.png", "oi"), Kind: content.Image}

	res, err := f.Forward(context.Background(), m, []string{"bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob", res.Navigate)
	assert.Equal(t, "ana", res.OriginalSenderID)
	assert.Equal(t, "Ana", res.OriginalSenderName)

	require.Len(t, be.inserted, 1)
	got := be.inserted[0]
	assert.Equal(t, "me", got.SenderID)
	assert.Equal(t, "bob", got.RecipientID)
	assert.Equal(t, m.Content, got.Content)
	assert.Equal(t, content.Image, got.Kind)
	assert.Equal(t, "ana", got.OriginalSenderID)
}

func TestForwardKeepsFirstOrigin(t *testing.T) {
	be := newFake()
	f := New(be, "me", nil)
	m := store.Message{ID: "m1", SenderID: "ana", OriginalSenderID: "ghost", Content: "oi"}

	res, err := f.Forward(context.Background(), m, []string{"bob", "cid", "bob"})
	require.NoError(t, err)
	assert.Equal(t, "", res.Navigate)
	assert.Equal(t, UnknownSender, res.OriginalSenderName)
	require.Len(t, res.Messages, 2)
	for _, c := range be.inserted {
		assert.Equal(t, "ghost", c.OriginalSenderID)
	}
}

func TestForwardErrors(t *testing.T) {
	be := newFake()
	be.failFor = "cid"
	f := New(be, "me", nil)

	_, err := f.Forward(context.Background(), store.Message{ID: "m1", SenderID: "ana"}, nil)
	assert.ErrorIs(t, err, ErrNoRecipients)

	_, err = f.Forward(context.Background(), store.Message{ID: "m1", SenderID: "ana"}, []string{"bob", "cid"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cid")
}

func TestCandidatesExcludeSelfAndPeer(t *testing.T) {
	f := New(newFake(), "me", nil)
	got, err := f.Candidates(context.Background(), "ana")
	require.NoError(t, err)
	var ids []string
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"bob", "cid"}, ids)
}
