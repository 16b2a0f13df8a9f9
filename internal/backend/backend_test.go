package backend

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/conversa/internal/blob"
	"github.com/matheus3301/conversa/internal/bus"
	"github.com/matheus3301/conversa/internal/store"
)

func testClient(t *testing.T) (*Client, *bus.Bus) {
	t.Helper()
	dir := t.TempDir()
	b := bus.New()
	c := New(Config{DBPath: filepath.Join(dir, "chat.db")}, blob.NewLocal(filepath.Join(dir, "media"), "http://media.local"), b, nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, b
}

func waitEvent(t *testing.T, ch <-chan bus.Event, kind string) bus.Event {
	t.Helper()
	for {
		select {
		case evt := <-ch:
			if evt.Kind == kind {
				return evt
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %s", kind)
		}
	}
}

func TestNotConnected(t *testing.T) {
	c := New(Config{DBPath: filepath.Join(t.TempDir(), "x.db")}, nil, bus.New(), nil)
	if _, err := c.ListMessages(context.Background(), store.MessageQuery{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
	if _, err := c.UnreadCounts(context.Background(), "a"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("after close err = %v, want ErrNotConnected", err)
	}
}

func TestInsertPublishesStoredRow(t *testing.T) {
	c, b := testClient(t)
	ch, unsub := b.Subscribe("message.", 10)
	defer unsub()

	m := &store.Message{SenderID: "a", RecipientID: "b", Content: "oi"}
	if err := c.InsertMessage(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	evt := waitEvent(t, ch, bus.MessageInserted)
	got, ok := evt.Payload.(store.Message)
	if !ok || got.ID != m.ID || got.Content != "oi" {
		t.Errorf("payload = %#v, want inserted message", evt.Payload)
	}
}

func TestOwnershipEnforcedAtDataLayer(t *testing.T) {
	c, b := testClient(t)
	ctx := context.Background()
	m := &store.Message{SenderID: "a", RecipientID: "b", Content: "original"}
	if err := c.InsertMessage(ctx, m); err != nil {
		t.Fatal(err)
	}

	if err := c.UpdateMessage(ctx, "b", m.ID, "hijack"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("update by non-owner err = %v, want ErrNotOwner", err)
	}
	if err := c.DeleteMessage(ctx, "b", m.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("delete by non-owner err = %v, want ErrNotOwner", err)
	}
	got, err := c.GetMessage(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "original" {
		t.Errorf("content = %q, want original", got.Content)
	}

	ch, unsub := b.Subscribe("message.", 10)
	defer unsub()
	if err := c.UpdateMessage(ctx, "a", m.ID, "edited"); err != nil {
		t.Fatal(err)
	}
	evt := waitEvent(t, ch, bus.MessageUpdated)
	if evt.Payload.(store.Message).Content != "edited" {
		t.Errorf("updated payload = %+v", evt.Payload)
	}
	if err := c.DeleteMessage(ctx, "a", m.ID); err != nil {
		t.Fatal(err)
	}
	evt = waitEvent(t, ch, bus.MessageDeleted)
	if ref := evt.Payload.(MessageRef); ref.ID != m.ID || ref.RecipientID != "b" {
		t.Errorf("deleted payload = %+v", ref)
	}
	if _, err := c.GetMessage(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete err = %v, want ErrNotFound", err)
	}
}

func TestReactionEventsCarryFullList(t *testing.T) {
	c, b := testClient(t)
	ctx := context.Background()
	m := &store.Message{SenderID: "a", RecipientID: "b", Content: "hi"}
	if err := c.InsertMessage(ctx, m); err != nil {
		t.Fatal(err)
	}
	ch, unsub := b.Subscribe("reaction.", 10)
	defer unsub()

	if err := c.AddReaction(ctx, &store.Reaction{MessageID: m.ID, SenderID: "b", Emoji: "👍"}); err != nil {
		t.Fatal(err)
	}
	if err := c.AddReaction(ctx, &store.Reaction{MessageID: m.ID, SenderID: "a", Emoji: "❤️"}); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, ch, bus.ReactionChanged)
	evt := waitEvent(t, ch, bus.ReactionChanged)
	if set := evt.Payload.(ReactionSet); len(set.Reactions) != 2 {
		t.Errorf("reactions = %d, want 2", len(set.Reactions))
	}

	r, err := c.FindReaction(ctx, m.ID, "b", "👍")
	if err != nil || r == nil {
		t.Fatalf("FindReaction = %v, %v", r, err)
	}
	if err := c.RemoveReaction(ctx, "a", r.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("remove other user's reaction err = %v, want ErrNotOwner", err)
	}
	if err := c.RemoveReaction(ctx, "a", "missing-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("remove unknown reaction err = %v, want ErrNotFound", err)
	}
	if err := c.RemoveReaction(ctx, "b", r.ID); err != nil {
		t.Fatal(err)
	}
	evt = waitEvent(t, ch, bus.ReactionChanged)
	if set := evt.Payload.(ReactionSet); len(set.Reactions) != 1 || set.Reactions[0].Emoji != "❤️" {
		t.Errorf("reactions after remove = %+v", set.Reactions)
	}
}

func TestTypingEvents(t *testing.T) {
	c, b := testClient(t)
	ctx := context.Background()
	ch, unsub := b.Subscribe("typing.", 10)
	defer unsub()

	if err := c.UpsertTyping(ctx, "a", "b", "digitando"); err != nil {
		t.Fatal(err)
	}
	evt := waitEvent(t, ch, bus.TypingChanged)
	if tc := evt.Payload.(TypingChange); tc.Status != "digitando" || tc.UserID != "a" {
		t.Errorf("change = %+v", tc)
	}
	status, err := c.GetTyping(ctx, "a", "b")
	if err != nil || status != "digitando" {
		t.Errorf("GetTyping = %q, %v", status, err)
	}

	if err := c.DeleteTyping(ctx, "a", "b"); err != nil {
		t.Fatal(err)
	}
	evt = waitEvent(t, ch, bus.TypingChanged)
	if tc := evt.Payload.(TypingChange); tc.Status != "" {
		t.Errorf("delete change status = %q, want empty", tc.Status)
	}
}

func TestMarkReadPublishesReceipt(t *testing.T) {
	c, b := testClient(t)
	ctx := context.Background()
	if err := c.InsertMessage(ctx, &store.Message{SenderID: "b", RecipientID: "a", Content: "1"}); err != nil {
		t.Fatal(err)
	}
	ch, unsub := b.Subscribe(bus.MessagesRead, 10)
	defer unsub()

	n, err := c.MarkRead(ctx, "b", "a")
	if err != nil || n != 1 {
		t.Fatalf("MarkRead = %d, %v", n, err)
	}
	evt := waitEvent(t, ch, bus.MessagesRead)
	if rr := evt.Payload.(ReadReceipt); rr.Count != 1 {
		t.Errorf("receipt = %+v", rr)
	}
}

func TestUpload(t *testing.T) {
	c, _ := testClient(t)
	url, err := c.Upload(context.Background(), "imagens/1-a.png", strings.NewReader("png"), 3, "image/png")
	if err != nil {
		t.Fatal(err)
	}
	if url != "http://media.local/imagens/1-a.png" {
		t.Errorf("url = %q", url)
	}
}
