package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/matheus3301/conversa/internal/content"
)

// MessageQuery scopes ListMessages. A zero query lists every message.
type MessageQuery struct {
	Self  string
	Peer  string
	Kinds []content.Kind
	Limit uint64
}

func messageSelect() sq.SelectBuilder {
	return sq.Select(
		"m.id",
		"m.remetente",
		"m.destinatario",
		"m.conteudo",
		"m.tipo",
		"m.criado_em",
		"m.lida",
		"m.resposta_id",
		"m.remetente_original_id",
		"p.nome AS remetente_original_nome",
		"r.conteudo AS resposta_conteudo",
		"r.tipo AS resposta_tipo",
	).
		From("mensagens m").
		LeftJoin("mensagens r ON r.id = m.resposta_id").
		LeftJoin("perfis p ON p.id = m.remetente_original_id")
}

// ListMessages returns messages ordered by creation time ascending, each with
// its reply preview and reactions.
func (db *DB) ListMessages(ctx context.Context, q MessageQuery) ([]Message, error) {
	b := messageSelect()
	if q.Self != "" && q.Peer != "" {
		b = b.Where(sq.Or{
			sq.Eq{"m.remetente": q.Self, "m.destinatario": q.Peer},
			sq.Eq{"m.remetente": q.Peer, "m.destinatario": q.Self},
		})
	}
	if len(q.Kinds) > 0 {
		kinds := make([]string, len(q.Kinds))
		for i, k := range q.Kinds {
			kinds[i] = string(k)
		}
		b = b.Where(sq.Eq{"m.tipo": kinds})
	}
	b = b.OrderBy("m.criado_em ASC", "m.rowid ASC")
	if q.Limit > 0 {
		b = b.Limit(q.Limit)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	var rows []messageRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	msgs := make([]Message, len(rows))
	ids := make([]string, len(rows))
	for i, r := range rows {
		msgs[i] = r.message()
		ids[i] = r.ID
	}
	reactions, err := db.reactionsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range msgs {
		msgs[i].Reactions = reactions[msgs[i].ID]
	}
	return msgs, nil
}

// GetMessage returns a single message, or nil if it does not exist.
func (db *DB) GetMessage(ctx context.Context, id string) (*Message, error) {
	query, args, err := messageSelect().Where(sq.Eq{"m.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}
	var row messageRow
	err = db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := row.message()
	reactions, err := db.reactionsFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	m.Reactions = reactions[id]
	return &m, nil
}

// InsertMessage stores m, assigning an id and creation time when unset.
func (db *DB) InsertMessage(ctx context.Context, m *Message) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt == 0 {
		m.CreatedAt = time.Now().UnixMilli()
	}
	if m.Kind == "" {
		m.Kind = content.Text
	}
	query, args, err := sq.Insert("mensagens").
		Columns("id", "remetente", "destinatario", "conteudo", "tipo", "criado_em", "lida", "resposta_id", "remetente_original_id").
		Values(m.ID, m.SenderID, m.RecipientID, m.Content, string(m.Kind), m.CreatedAt, m.Read, nullString(m.ReplyToID), nullString(m.OriginalSenderID)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	_, err = db.ExecContext(ctx, query, args...)
	return err
}

// UpdateMessageContent replaces the content of an existing message.
func (db *DB) UpdateMessageContent(ctx context.Context, id, conteudo string) error {
	query, args, err := sq.Update("mensagens").
		Set("conteudo", conteudo).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	return execOne(ctx, db, query, args)
}

// DeleteMessage removes a message. Its reactions are removed by cascade.
func (db *DB) DeleteMessage(ctx context.Context, id string) error {
	query, args, err := sq.Delete("mensagens").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	return execOne(ctx, db, query, args)
}

// MarkRead flags every unread message from sender to recipient as read and
// returns how many rows changed.
func (db *DB) MarkRead(ctx context.Context, sender, recipient string) (int64, error) {
	query, args, err := sq.Update("mensagens").
		Set("lida", true).
		Where(sq.Eq{"remetente": sender, "destinatario": recipient, "lida": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build mark read: %w", err)
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UnreadCounts returns the number of unread messages addressed to recipient,
// keyed by sender.
func (db *DB) UnreadCounts(ctx context.Context, recipient string) (map[string]int, error) {
	query, args, err := sq.Select("remetente", "COUNT(*) AS total").
		From("mensagens").
		Where(sq.Eq{"destinatario": recipient, "lida": false}).
		GroupBy("remetente").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build unread query: %w", err)
	}
	var rows []struct {
		Sender string `db:"remetente"`
		Total  int    `db:"total"`
	}
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Sender] = r.Total
	}
	return counts, nil
}

// MessageCount returns the total number of stored messages.
func (db *DB) MessageCount(ctx context.Context) (int, error) {
	var n int
	err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM mensagens")
	return n, err
}

func execOne(ctx context.Context, db *DB, query string, args []any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
