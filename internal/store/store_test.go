package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/matheus3301/conversa/internal/content"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insert(t *testing.T, db *DB, m *Message) *Message {
	t.Helper()
	if err := db.InsertMessage(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)

	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 2 {
		t.Errorf("version = %d, want 2", result.Version)
	}
}

func TestMigrateSchemaMatchesRecordShapes(t *testing.T) {
	db := testDB(t)

	ops := []struct {
		desc  string
		query string
		args  []any
	}{
		{"profile", "INSERT INTO perfis (id, nome, foto_url, status) VALUES (?, ?, ?, ?)", []any{"u1", "Ana", "", "online"}},
		{"message with null kind", "INSERT INTO mensagens (id, remetente, destinatario, conteudo, tipo, criado_em, lida, resposta_id, remetente_original_id) VALUES (?, ?, ?, ?, NULL, ?, 0, NULL, NULL)", []any{"m1", "u1", "u2", "oi", 1000}},
		{"reaction", "INSERT INTO mensagens_reacoes (id, mensagem_id, remetente, emoji) VALUES (?, ?, ?, ?)", []any{"r1", "m1", "u2", "👍"}},
		{"status", "INSERT INTO status_digitacao (usuario_id, destinatario_id, status, atualizado_em) VALUES (?, ?, ?, ?)", []any{"u1", "u2", "digitando", 1000}},
	}
	for _, op := range ops {
		t.Run(op.desc, func(t *testing.T) {
			if _, err := db.Exec(op.query, op.args...); err != nil {
				t.Fatalf("%s failed: %v", op.desc, err)
			}
		})
	}

	m, err := db.GetMessage(context.Background(), "m1")
	if err != nil {
		t.Fatal(err)
	}
	if m.Kind != content.Text {
		t.Errorf("kind = %q, want texto for NULL tipo", m.Kind)
	}
	if len(m.Reactions) != 1 || m.Reactions[0].Emoji != "👍" {
		t.Errorf("reactions = %+v, want one 👍", m.Reactions)
	}
}

func TestListMessagesPairScoped(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	insert(t, db, &Message{SenderID: "a", RecipientID: "b", Content: "1", CreatedAt: 1000})
	insert(t, db, &Message{SenderID: "b", RecipientID: "a", Content: "2", CreatedAt: 2000})
	insert(t, db, &Message{SenderID: "a", RecipientID: "c", Content: "other", CreatedAt: 1500})
	insert(t, db, &Message{SenderID: "c", RecipientID: "b", Content: "other", CreatedAt: 1600})

	msgs, err := db.ListMessages(ctx, MessageQuery{Self: "a", Peer: "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Content != "1" || msgs[1].Content != "2" {
		t.Errorf("order = %q,%q, want 1,2", msgs[0].Content, msgs[1].Content)
	}

	all, err := db.ListMessages(ctx, MessageQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("unscoped got %d, want 4", len(all))
	}
}

func TestListMessagesByKind(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	insert(t, db, &Message{SenderID: "a", RecipientID: "b", Content: "hi", Kind: content.Text})
	insert(t, db, &Message{SenderID: "a", RecipientID: "b", Content: "https://x/imagens/1-a.png", Kind: content.Image})
	insert(t, db, &Message{SenderID: "b", RecipientID: "a", Content: "https://x/anexos/1-a.pdf", Kind: content.Attachment})

	msgs, err := db.ListMessages(ctx, MessageQuery{Self: "a", Peer: "b", Kinds: []content.Kind{content.Image, content.Attachment}})
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Errorf("got %d media messages, want 2", len(msgs))
	}
}

func TestReplyPreviewAndProvenance(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.UpsertProfile(ctx, &Profile{ID: "c", Name: "Carla"}); err != nil {
		t.Fatal(err)
	}
	target := insert(t, db, &Message{SenderID: "b", RecipientID: "a", Content: "https://x/a.png|SEPARATOR|foto", Kind: content.Image, CreatedAt: 1000})
	reply := insert(t, db, &Message{SenderID: "a", RecipientID: "b", Content: "nice", ReplyToID: target.ID, CreatedAt: 2000})
	fwd := insert(t, db, &Message{SenderID: "a", RecipientID: "b", Content: "fwd", OriginalSenderID: "c", CreatedAt: 3000})

	got, err := db.GetMessage(ctx, reply.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Reply == nil || got.Reply.Kind != content.Image {
		t.Fatalf("reply preview = %+v, want image preview", got.Reply)
	}

	got, err = db.GetMessage(ctx, fwd.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Forwarded() || got.OriginalSenderName != "Carla" {
		t.Errorf("provenance = %q/%q, want c/Carla", got.OriginalSenderID, got.OriginalSenderName)
	}

	// Deleting the target clears the reply link.
	if err := db.DeleteMessage(ctx, target.ID); err != nil {
		t.Fatal(err)
	}
	got, err = db.GetMessage(ctx, reply.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Reply != nil || got.ReplyToID != "" {
		t.Errorf("reply after target delete = %+v, want nil", got.Reply)
	}
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.UpdateMessageContent(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing err = %v, want ErrNotFound", err)
	}
	if err := db.DeleteMessage(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete missing err = %v, want ErrNotFound", err)
	}
	m, err := db.GetMessage(ctx, "missing")
	if err != nil || m != nil {
		t.Errorf("GetMessage(missing) = %v, %v, want nil, nil", m, err)
	}
}

func TestMarkReadAndUnreadCounts(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	insert(t, db, &Message{SenderID: "b", RecipientID: "a", Content: "1"})
	insert(t, db, &Message{SenderID: "b", RecipientID: "a", Content: "2"})
	insert(t, db, &Message{SenderID: "c", RecipientID: "a", Content: "3"})
	insert(t, db, &Message{SenderID: "a", RecipientID: "b", Content: "mine"})

	counts, err := db.UnreadCounts(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if counts["b"] != 2 || counts["c"] != 1 {
		t.Errorf("counts = %v, want b=2 c=1", counts)
	}

	n, err := db.MarkRead(ctx, "b", "a")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("marked %d, want 2", n)
	}
	n, err = db.MarkRead(ctx, "b", "a")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("second mark read changed %d rows, want 0", n)
	}

	counts, err = db.UnreadCounts(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := counts["b"]; ok {
		t.Errorf("counts = %v, want no entry for b", counts)
	}
}

func TestReactionsUniqueAndCascade(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	m := insert(t, db, &Message{SenderID: "a", RecipientID: "b", Content: "hi"})
	if err := db.InsertReaction(ctx, &Reaction{MessageID: m.ID, SenderID: "b", Emoji: "👍"}); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertReaction(ctx, &Reaction{MessageID: m.ID, SenderID: "b", Emoji: "👍"}); err == nil {
		t.Error("duplicate reaction should violate unique constraint")
	}
	if err := db.InsertReaction(ctx, &Reaction{MessageID: m.ID, SenderID: "b", Emoji: "❤️"}); err != nil {
		t.Fatal(err)
	}

	r, err := db.FindReaction(ctx, m.ID, "b", "👍")
	if err != nil || r == nil {
		t.Fatalf("FindReaction = %v, %v", r, err)
	}
	none, err := db.FindReaction(ctx, m.ID, "a", "👍")
	if err != nil || none != nil {
		t.Errorf("FindReaction(a) = %v, %v, want nil, nil", none, err)
	}

	list, err := db.ListReactions(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Emoji != "👍" || list[1].Emoji != "❤️" {
		t.Errorf("reactions = %+v, want 👍 then ❤️", list)
	}

	if err := db.DeleteMessage(ctx, m.ID); err != nil {
		t.Fatal(err)
	}
	list, err = db.ListReactions(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("reactions after delete = %d, want 0", len(list))
	}
}

func TestProfiles(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for _, p := range []*Profile{
		{ID: "a", Name: "Ana", Status: "online"},
		{ID: "b", Name: "Bruno"},
		{ID: "c", Name: "Carla", Status: "online"},
	} {
		if err := db.UpsertProfile(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	online, err := db.ListProfiles(ctx, ProfileQuery{Exclude: []string{"a"}, Status: "online"})
	if err != nil {
		t.Fatal(err)
	}
	if len(online) != 1 || online[0].ID != "c" {
		t.Errorf("online = %+v, want [c]", online)
	}

	if err := db.SetProfileStatus(ctx, "b", "online"); err != nil {
		t.Fatal(err)
	}
	p, err := db.GetProfile(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != "online" {
		t.Errorf("status = %q, want online", p.Status)
	}
	if err := db.SetProfileStatus(ctx, "zzz", "online"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetProfileStatus(missing) = %v, want ErrNotFound", err)
	}
}

func TestTypingUpsertIsLastWriteWins(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.UpsertTyping(ctx, &TypingStatus{UserID: "a", PeerID: "b", Status: "digitando"}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertTyping(ctx, &TypingStatus{UserID: "a", PeerID: "b", Status: "gravando"}); err != nil {
		t.Fatal(err)
	}
	ts, err := db.GetTyping(ctx, "a", "b")
	if err != nil {
		t.Fatal(err)
	}
	if ts == nil || ts.Status != "gravando" {
		t.Fatalf("status = %+v, want gravando", ts)
	}

	if err := db.DeleteTyping(ctx, "a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteTyping(ctx, "a", "b"); err != nil {
		t.Errorf("second delete err = %v, want nil", err)
	}
	ts, err = db.GetTyping(ctx, "a", "b")
	if err != nil || ts != nil {
		t.Errorf("after delete = %v, %v, want nil, nil", ts, err)
	}
}
