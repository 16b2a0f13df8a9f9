package store

import (
	"database/sql"

	"github.com/matheus3301/conversa/internal/content"
)

// Message is a row of mensagens with its reply preview and reactions.
type Message struct {
	ID                 string
	SenderID           string
	RecipientID        string
	Content            string
	Kind               content.Kind
	CreatedAt          int64 // unix ms
	Read               bool
	ReplyToID          string
	Reply              *ReplyPreview
	Reactions          []Reaction
	OriginalSenderID   string
	OriginalSenderName string
}

// ReplyPreview is the denormalized content of a reply target.
type ReplyPreview struct {
	Content string
	Kind    content.Kind
}

// Forwarded reports whether the message carries forwarding provenance.
func (m *Message) Forwarded() bool {
	return m.OriginalSenderID != ""
}

// Reaction is a row of mensagens_reacoes.
type Reaction struct {
	ID        string `db:"id"`
	MessageID string `db:"mensagem_id"`
	SenderID  string `db:"remetente"`
	Emoji     string `db:"emoji"`
}

// Profile is a row of perfis.
type Profile struct {
	ID       string `db:"id"`
	Name     string `db:"nome"`
	PhotoURL string `db:"foto_url"`
	Status   string `db:"status"`
}

// TypingStatus is a row of status_digitacao.
type TypingStatus struct {
	UserID    string `db:"usuario_id"`
	PeerID    string `db:"destinatario_id"`
	Status    string `db:"status"`
	UpdatedAt int64  `db:"atualizado_em"`
}

type messageRow struct {
	ID                 string         `db:"id"`
	SenderID           string         `db:"remetente"`
	RecipientID        string         `db:"destinatario"`
	Content            string         `db:"conteudo"`
	Kind               sql.NullString `db:"tipo"`
	CreatedAt          int64          `db:"criado_em"`
	Read               bool           `db:"lida"`
	ReplyToID          sql.NullString `db:"resposta_id"`
	OriginalSenderID   sql.NullString `db:"remetente_original_id"`
	OriginalSenderName sql.NullString `db:"remetente_original_nome"`
	ReplyContent       sql.NullString `db:"resposta_conteudo"`
	ReplyKind          sql.NullString `db:"resposta_tipo"`
}

func (r messageRow) message() Message {
	m := Message{
		ID:                 r.ID,
		SenderID:           r.SenderID,
		RecipientID:        r.RecipientID,
		Content:            r.Content,
		Kind:               content.ParseKind(r.Kind.String),
		CreatedAt:          r.CreatedAt,
		Read:               r.Read,
		ReplyToID:          r.ReplyToID.String,
		OriginalSenderID:   r.OriginalSenderID.String,
		OriginalSenderName: r.OriginalSenderName.String,
	}
	if r.ReplyContent.Valid {
		m.Reply = &ReplyPreview{
			Content: r.ReplyContent.String,
			Kind:    content.ParseKind(r.ReplyKind.String),
		}
	}
	return m
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
