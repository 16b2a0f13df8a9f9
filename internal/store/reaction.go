package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

func (db *DB) reactionsFor(ctx context.Context, messageIDs []string) (map[string][]Reaction, error) {
	out := make(map[string][]Reaction)
	if len(messageIDs) == 0 {
		return out, nil
	}
	query, args, err := sq.Select("id", "mensagem_id", "remetente", "emoji").
		From("mensagens_reacoes").
		Where(sq.Eq{"mensagem_id": messageIDs}).
		OrderBy("rowid ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reactions query: %w", err)
	}
	var rows []Reaction
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.MessageID] = append(out[r.MessageID], r)
	}
	return out, nil
}

// ListReactions returns the reactions of one message in insertion order.
func (db *DB) ListReactions(ctx context.Context, messageID string) ([]Reaction, error) {
	m, err := db.reactionsFor(ctx, []string{messageID})
	if err != nil {
		return nil, err
	}
	return m[messageID], nil
}

// GetReaction returns a reaction by id, or nil if there is none.
func (db *DB) GetReaction(ctx context.Context, id string) (*Reaction, error) {
	query, args, err := sq.Select("id", "mensagem_id", "remetente", "emoji").
		From("mensagens_reacoes").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get reaction: %w", err)
	}
	var r Reaction
	err = db.GetContext(ctx, &r, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindReaction looks up the reaction a sender left with emoji on a message.
// Returns nil if there is none.
func (db *DB) FindReaction(ctx context.Context, messageID, sender, emoji string) (*Reaction, error) {
	query, args, err := sq.Select("id", "mensagem_id", "remetente", "emoji").
		From("mensagens_reacoes").
		Where(sq.Eq{"mensagem_id": messageID, "remetente": sender, "emoji": emoji}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find reaction: %w", err)
	}
	var r Reaction
	err = db.GetContext(ctx, &r, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// InsertReaction stores r, assigning an id when unset.
func (db *DB) InsertReaction(ctx context.Context, r *Reaction) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	query, args, err := sq.Insert("mensagens_reacoes").
		Columns("id", "mensagem_id", "remetente", "emoji").
		Values(r.ID, r.MessageID, r.SenderID, r.Emoji).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert reaction: %w", err)
	}
	_, err = db.ExecContext(ctx, query, args...)
	return err
}

// DeleteReaction removes a reaction by id.
func (db *DB) DeleteReaction(ctx context.Context, id string) error {
	query, args, err := sq.Delete("mensagens_reacoes").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete reaction: %w", err)
	}
	return execOne(ctx, db, query, args)
}
