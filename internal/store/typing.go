package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// UpsertTyping writes a typing status keyed by (usuario_id, destinatario_id).
// The latest write wins.
func (db *DB) UpsertTyping(ctx context.Context, ts *TypingStatus) error {
	if ts.UpdatedAt == 0 {
		ts.UpdatedAt = time.Now().UnixMilli()
	}
	query, args, err := sq.Insert("status_digitacao").
		Columns("usuario_id", "destinatario_id", "status", "atualizado_em").
		Values(ts.UserID, ts.PeerID, ts.Status, ts.UpdatedAt).
		Suffix(`ON CONFLICT(usuario_id, destinatario_id) DO UPDATE SET
			status = excluded.status,
			atualizado_em = excluded.atualizado_em`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert typing: %w", err)
	}
	_, err = db.ExecContext(ctx, query, args...)
	return err
}

// DeleteTyping clears the status row for a directed pair. Missing rows are
// not an error.
func (db *DB) DeleteTyping(ctx context.Context, user, peer string) error {
	_, err := db.ExecContext(ctx,
		"DELETE FROM status_digitacao WHERE usuario_id = ? AND destinatario_id = ?", user, peer)
	return err
}

// GetTyping returns the status row for a directed pair, or nil.
func (db *DB) GetTyping(ctx context.Context, user, peer string) (*TypingStatus, error) {
	var ts TypingStatus
	err := db.GetContext(ctx, &ts, `
		SELECT usuario_id, destinatario_id, status, atualizado_em
		FROM status_digitacao
		WHERE usuario_id = ? AND destinatario_id = ?`, user, peer)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ts, nil
}
