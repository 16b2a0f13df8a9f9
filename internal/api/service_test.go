package api

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/conversa/internal/backend"
	"github.com/matheus3301/conversa/internal/blob"
	"github.com/matheus3301/conversa/internal/bus"
	"github.com/matheus3301/conversa/internal/conversation"
	"github.com/matheus3301/conversa/internal/present"
	"github.com/matheus3301/conversa/internal/rpc"
	"github.com/matheus3301/conversa/internal/status"
	"github.com/matheus3301/conversa/internal/store"
	convsync "github.com/matheus3301/conversa/internal/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type harness struct {
	client *rpc.Client
	be     *backend.Client
	bus    *bus.Bus
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	b := bus.New()
	be := backend.New(backend.Config{DBPath: filepath.Join(dir, "chat.db")},
		blob.NewLocal(filepath.Join(dir, "media"), "http://media.test"), b, nil)
	require.NoError(t, be.Connect(ctx))
	t.Cleanup(func() { _ = be.Close() })

	for _, p := range []store.Profile{
		{ID: "me", Name: "Eu", Status: conversation.StatusOnline},
		{ID: "ana", Name: "Ana", Status: conversation.StatusOnline},
		{ID: "bob", Name: "Bob", Status: conversation.StatusOffline},
	} {
		p := p
		require.NoError(t, be.UpsertProfile(ctx, &p))
	}

	machine := status.NewMachine(b)
	mgr := conversation.NewManager(be, b, machine, present.NewFormatter("pt-BR", time.UTC), conversation.Options{
		Self:           "me",
		MaxUploadBytes: 1024,
		Sync:           convsync.Options{Mode: convsync.ModeRealtime},
	}, nil)
	t.Cleanup(func() { mgr.CloseAll(context.Background()) })

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	rpc.RegisterConversaServer(srv, NewService("test", machine, be, mgr, b, nil))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &harness{client: rpc.NewClient(conn), be: be, bus: b}
}

func code(err error) codes.Code {
	return grpcstatus.Code(err)
}

func TestGetSessionStatus(t *testing.T) {
	h := newHarness(t)
	st, err := h.client.GetSessionStatus(context.Background(), &rpc.GetSessionStatusRequest{})
	require.NoError(t, err)
	assert.Equal(t, "test", st.Workspace)
	assert.Equal(t, "me", st.UserID)
	assert.Equal(t, string(status.Booting), st.Status)
	assert.True(t, st.Connected)
	assert.Empty(t, st.OpenConversations)
}

func TestListContactsFilters(t *testing.T) {
	h := newHarness(t)
	resp, err := h.client.ListContacts(context.Background(), &rpc.ListContactsRequest{Status: conversation.StatusOnline})
	require.NoError(t, err)
	require.Len(t, resp.Contacts, 1)
	assert.Equal(t, "ana", resp.Contacts[0].ID)
}

func TestConversationRequiresOpen(t *testing.T) {
	h := newHarness(t)
	_, err := h.client.GetView(context.Background(), &rpc.PeerRequest{Peer: "ana"})
	assert.Equal(t, codes.FailedPrecondition, code(err))

	_, err = h.client.OpenConversation(context.Background(), &rpc.PeerRequest{Peer: "ghost"})
	assert.Equal(t, codes.NotFound, code(err))

	_, err = h.client.OpenConversation(context.Background(), &rpc.PeerRequest{Peer: "me"})
	assert.Equal(t, codes.InvalidArgument, code(err))
}

func TestSendAndRender(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.client.OpenConversation(ctx, &rpc.PeerRequest{Peer: "ana"})
	require.NoError(t, err)

	_, err = h.client.Send(ctx, &rpc.PeerRequest{Peer: "ana"})
	assert.Equal(t, codes.FailedPrecondition, code(err))

	cs, err := h.client.SetText(ctx, &rpc.SetTextRequest{Peer: "ana", Text: "oi *ana*"})
	require.NoError(t, err)
	assert.Equal(t, "COMPOSING_TEXT", cs.State)
	assert.True(t, cs.Affordances.Send)

	sent, err := h.client.Send(ctx, &rpc.PeerRequest{Peer: "ana"})
	require.NoError(t, err)
	require.NotEmpty(t, sent.MessageID)

	var view *rpc.ConversationView
	require.Eventually(t, func() bool {
		view, err = h.client.GetView(ctx, &rpc.PeerRequest{Peer: "ana"})
		return err == nil && len(view.Groups) == 1 && len(view.Groups[0].Messages) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "Hoje", view.Groups[0].Label)
	m := view.Groups[0].Messages[0]
	assert.Equal(t, sent.MessageID, m.ID)
	assert.True(t, m.Mine)
	assert.Equal(t, "oi <strong>ana</strong>", m.HTML)
	assert.Equal(t, "IDLE", view.Composer.State)

	react, err := h.client.React(ctx, &rpc.ReactRequest{Peer: "ana", MessageID: m.ID, Emoji: "👍"})
	require.NoError(t, err)
	assert.True(t, react.Added)
	react, err = h.client.React(ctx, &rpc.ReactRequest{Peer: "ana", MessageID: m.ID, Emoji: "👍"})
	require.NoError(t, err)
	assert.False(t, react.Added)

	del, err := h.client.Delete(ctx, &rpc.MessageRequest{Peer: "ana", MessageID: m.ID})
	require.NoError(t, err)
	assert.True(t, del.Applied)
}

func TestStageFileTooLarge(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.client.OpenConversation(ctx, &rpc.PeerRequest{Peer: "ana"})
	require.NoError(t, err)

	_, err = h.client.StageFile(ctx, &rpc.StageFileRequest{
		Peer: "ana", Source: "picker", Name: "big.png", MIME: "image/png",
		Data: make([]byte, 2048),
	})
	assert.Equal(t, codes.InvalidArgument, code(err))
}

func TestForwardNeedsRecipients(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := store.Message{ID: "m1", SenderID: "ana", RecipientID: "me", Content: "oi", CreatedAt: time.Now().UnixMilli()}
	require.NoError(t, h.be.InsertMessage(ctx, &m))

	_, err := h.client.Forward(ctx, &rpc.ForwardRequest{MessageID: "m1"})
	assert.Equal(t, codes.InvalidArgument, code(err))

	resp, err := h.client.Forward(ctx, &rpc.ForwardRequest{MessageID: "m1", Recipients: []string{"bob"}})
	require.NoError(t, err)
	assert.Len(t, resp.MessageIDs, 1)
	assert.Equal(t, "ana", resp.OriginalSenderID)
	assert.Equal(t, "bob", resp.Navigate)
}

func TestSearchEmoji(t *testing.T) {
	h := newHarness(t)
	resp, err := h.client.SearchEmoji(context.Background(), &rpc.SearchEmojiRequest{Query: "coracao"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Results)
	assert.Len(t, resp.Quick, 6)
}

func TestWatchEventsFiltersByKind(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	base := h.bus.Subscribers()
	stream, err := h.client.WatchEvents(ctx, &rpc.WatchEventsRequest{Kinds: []string{"typing."}})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.bus.Subscribers() > base }, 2*time.Second, 10*time.Millisecond)

	h.bus.Publish(bus.Event{ID: "e1", Kind: bus.ProfileUpdated, Timestamp: time.Now(), Payload: store.Profile{ID: "ana"}})
	h.bus.Publish(bus.Event{ID: "e2", Kind: bus.TypingChanged, Timestamp: time.Now(),
		Payload: backend.TypingChange{UserID: "ana", PeerID: "me", Status: "digitando"}})

	env, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "e2", env.EventID)
	assert.Equal(t, bus.TypingChanged, env.Kind)
	assert.Equal(t, PayloadVersion, env.PayloadVersion)

	payload, err := DecodePayload(env.Payload)
	require.NoError(t, err)
	assert.Equal(t, "digitando", payload["status"])
	assert.Equal(t, "ana", payload["user_id"])
}

func TestProfileSettings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	me, err := h.client.GetProfile(ctx, &rpc.GetProfileRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Eu", me.Name)

	me, err = h.client.UpdateProfile(ctx, &rpc.UpdateProfileRequest{
		Name:       "Eu Mesmo",
		Status:     conversation.StatusAway,
		AvatarName: "eu.jpg",
		AvatarMIME: "image/jpeg",
		AvatarData: []byte("jpeg"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Eu Mesmo", me.Name)
	assert.Equal(t, conversation.StatusAway, me.Status)
	assert.Contains(t, me.PhotoURL, "/avatares/me-")

	_, err = h.client.UpdateProfile(ctx, &rpc.UpdateProfileRequest{Status: "sumido"})
	assert.Equal(t, codes.InvalidArgument, code(err))
	_, err = h.client.UpdateProfile(ctx, &rpc.UpdateProfileRequest{AvatarMIME: "image/png", AvatarData: make([]byte, 2048)})
	assert.Equal(t, codes.InvalidArgument, code(err))
}
