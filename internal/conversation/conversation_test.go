package conversation

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/conversa/internal/backend"
	"github.com/matheus3301/conversa/internal/blob"
	"github.com/matheus3301/conversa/internal/bus"
	"github.com/matheus3301/conversa/internal/composer"
	"github.com/matheus3301/conversa/internal/content"
	"github.com/matheus3301/conversa/internal/overlay"
	"github.com/matheus3301/conversa/internal/presence"
	"github.com/matheus3301/conversa/internal/present"
	"github.com/matheus3301/conversa/internal/store"
	convsync "github.com/matheus3301/conversa/internal/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	be  *backend.Client
	bus *bus.Bus
	mgr *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	b := bus.New()
	be := backend.New(backend.Config{DBPath: filepath.Join(dir, "chat.db")},
		blob.NewLocal(filepath.Join(dir, "media"), "http://media.test"), b, nil)
	require.NoError(t, be.Connect(context.Background()))
	t.Cleanup(func() { _ = be.Close() })

	ctx := context.Background()
	for _, p := range []store.Profile{
		{ID: "me", Name: "Eu", Status: StatusOnline},
		{ID: "ana", Name: "Ána", Status: StatusOnline},
		{ID: "bob", Name: "Bob", Status: StatusOffline},
	} {
		p := p
		require.NoError(t, be.UpsertProfile(ctx, &p))
	}

	mgr := NewManager(be, b, nil, present.NewFormatter("pt-BR", time.UTC), Options{
		Self: "me",
		Sync: convsync.Options{Mode: convsync.ModeRealtime},
	}, nil)
	t.Cleanup(func() { mgr.CloseAll(context.Background()) })
	return &fixture{be: be, bus: b, mgr: mgr}
}

func (f *fixture) waitMessages(t *testing.T, v *View, n int) []store.Message {
	t.Helper()
	require.Eventually(t, func() bool { return len(v.Messages()) == n }, 2*time.Second, 10*time.Millisecond)
	return v.Messages()
}

func TestOpenRejectsSelfAndUnknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.Open(context.Background(), "me")
	assert.ErrorIs(t, err, ErrSelf)
	_, err = f.mgr.Open(context.Background(), "ghost")
	assert.ErrorIs(t, err, backend.ErrNotFound)
	_, err = f.mgr.Get("ana")
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestOpenIsIdempotent(t *testing.T) {
	f := newFixture(t)
	v1, err := f.mgr.Open(context.Background(), "ana")
	require.NoError(t, err)
	v2, err := f.mgr.Open(context.Background(), "ana")
	require.NoError(t, err)
	assert.Same(t, v1, v2)
	assert.Equal(t, []string{"ana"}, f.mgr.Peers())

	f.mgr.Close(context.Background(), "ana")
	f.mgr.Close(context.Background(), "ana")
	assert.Empty(t, f.mgr.Peers())
}

func TestSendReactDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	changes, unsub := f.bus.Subscribe(bus.ConversationChanged, 64)
	defer unsub()

	v, err := f.mgr.Open(ctx, "ana")
	require.NoError(t, err)

	v.Composer().SetText(ctx, "*oi* ana")
	id, err := v.Composer().Send(ctx)
	require.NoError(t, err)
	msgs := f.waitMessages(t, v, 1)
	assert.Equal(t, id, msgs[0].ID)

	select {
	case evt := <-changes:
		assert.Equal(t, Changed{Peer: "ana"}, evt.Payload)
	case <-time.After(time.Second):
		t.Fatal("no conversation.changed event")
	}

	added, err := v.React(ctx, id, "👍")
	require.NoError(t, err)
	assert.True(t, added)
	require.Eventually(t, func() bool { return len(v.Messages()[0].Reactions) == 1 }, 2*time.Second, 10*time.Millisecond)

	snap := v.Snapshot(time.Now())
	require.Len(t, snap.Groups, 1)
	assert.Equal(t, "Hoje", snap.Groups[0].Label)
	mv := snap.Groups[0].Messages[0]
	assert.True(t, mv.Mine)
	assert.Contains(t, mv.Actions, overlay.Delete)
	require.Len(t, mv.Reactions, 1)
	assert.True(t, mv.Reactions[0].Mine)

	ok, err := v.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	f.waitMessages(t, v, 0)
}

func TestForeignMessageCannotBeDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := &store.Message{SenderID: "ana", RecipientID: "me", Content: "dela"}
	require.NoError(t, f.be.InsertMessage(ctx, m))

	v, err := f.mgr.Open(ctx, "ana")
	require.NoError(t, err)
	f.waitMessages(t, v, 1)

	ok, err := v.Delete(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = v.BeginEdit(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, composer.Idle, v.Composer().State())
	assert.Len(t, v.Messages(), 1)
}

func TestPeerTypingReachesView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.mgr.Open(ctx, "ana")
	require.NoError(t, err)

	require.NoError(t, f.be.UpsertTyping(ctx, "ana", "me", presence.Typing))
	require.Eventually(t, func() bool { return v.PeerStatus() == presence.Typing }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, f.be.DeleteTyping(ctx, "ana", "me"))
	require.Eventually(t, func() bool { return v.PeerStatus() == "" }, 2*time.Second, 10*time.Millisecond)
}

func TestReplyAndJump(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := &store.Message{SenderID: "ana", RecipientID: "me", Content: "pergunta"}
	require.NoError(t, f.be.InsertMessage(ctx, first))

	v, err := f.mgr.Open(ctx, "ana")
	require.NoError(t, err)
	f.waitMessages(t, v, 1)

	require.NoError(t, v.ReplyTo(ctx, first.ID))
	v.Composer().SetText(ctx, "resposta")
	id, err := v.Composer().Send(ctx)
	require.NoError(t, err)
	f.waitMessages(t, v, 2)

	target, err := v.JumpToReply(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first.ID, target)
	assert.Equal(t, first.ID, v.Snapshot(time.Now()).Overlay.Highlighted)
}

func TestContactsFilterAndUnread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		require.NoError(t, f.be.InsertMessage(ctx, &store.Message{SenderID: "bob", RecipientID: "me", Content: "oi"}))
	}

	all, err := f.mgr.Contacts(ctx, ContactFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	unread := map[string]int{}
	for _, c := range all {
		unread[c.ID] = c.Unread
	}
	assert.Equal(t, map[string]int{"ana": 0, "bob": 2}, unread)

	online, err := f.mgr.Contacts(ctx, ContactFilter{Status: StatusOnline})
	require.NoError(t, err)
	require.Len(t, online, 1)
	assert.Equal(t, "ana", online[0].ID)

	found, err := f.mgr.Contacts(ctx, ContactFilter{Search: "ANA"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ána", found[0].Name)

	require.NoError(t, f.mgr.SetOnline(ctx, false))
	p, err := f.be.GetProfile(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, StatusOffline, p.Status)
}

func TestSharedMedia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rows := []store.Message{
		{SenderID: "me", RecipientID: "ana", Kind: content.Image, Content: "http://media.test/imagens/1-a.png"},
		{SenderID: "ana", RecipientID: "me", Kind: content.Attachment, Content: content.Encode("http://media.test/anexos/2-relatorio.pdf", "leia")},
		{SenderID: "ana", RecipientID: "me", Kind: content.Text, Content: "texto"},
		{SenderID: "bob", RecipientID: "me", Kind: content.Audio, Content: "http://media.test/audios/3-x.webm"},
	}
	for i := range rows {
		require.NoError(t, f.be.InsertMessage(ctx, &rows[i]))
	}

	media, err := f.mgr.SharedMedia(ctx, "ana")
	require.NoError(t, err)
	assert.Len(t, media.Images, 1)
	assert.Empty(t, media.Audios)
	require.Len(t, media.Attachments, 1)
	att := media.Attachments[0]
	assert.Equal(t, "2-relatorio.pdf", att.Name)
	assert.Equal(t, content.ClassPDF, att.Class)
	assert.Equal(t, "leia", att.Caption)
}

func TestForwardThroughManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := &store.Message{SenderID: "ana", RecipientID: "me", Content: "repasse"}
	require.NoError(t, f.be.InsertMessage(ctx, m))

	cands, err := f.mgr.ForwardCandidates(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "bob", cands[0].ID)

	res, err := f.mgr.Forward(ctx, m.ID, []string{"bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob", res.Navigate)
	assert.Equal(t, "Ána", res.OriginalSenderName)

	got, err := f.be.ListMessages(ctx, store.MessageQuery{Self: "me", Peer: "bob"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ana", got[0].OriginalSenderID)
	assert.Equal(t, "Ána", got[0].OriginalSenderName)
}
