package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// ProfileQuery filters ListProfiles.
type ProfileQuery struct {
	Exclude []string
	Status  string
}

// UpsertProfile inserts or updates a profile.
func (db *DB) UpsertProfile(ctx context.Context, p *Profile) error {
	if p.Status == "" {
		p.Status = "offline"
	}
	query, args, err := sq.Insert("perfis").
		Columns("id", "nome", "foto_url", "status").
		Values(p.ID, p.Name, p.PhotoURL, p.Status).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			nome = excluded.nome,
			foto_url = excluded.foto_url,
			status = excluded.status`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert profile: %w", err)
	}
	_, err = db.ExecContext(ctx, query, args...)
	return err
}

// GetProfile returns a profile by id, or nil if it does not exist.
func (db *DB) GetProfile(ctx context.Context, id string) (*Profile, error) {
	var p Profile
	err := db.GetContext(ctx, &p, "SELECT id, nome, foto_url, status FROM perfis WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProfiles returns profiles ordered by name.
func (db *DB) ListProfiles(ctx context.Context, q ProfileQuery) ([]Profile, error) {
	b := sq.Select("id", "nome", "foto_url", "status").From("perfis")
	if len(q.Exclude) > 0 {
		b = b.Where(sq.NotEq{"id": q.Exclude})
	}
	if q.Status != "" {
		b = b.Where(sq.Eq{"status": q.Status})
	}
	query, args, err := b.OrderBy("nome ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list profiles: %w", err)
	}
	var out []Profile
	if err := db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// SetProfileStatus updates the coarse presence status of a profile.
func (db *DB) SetProfileStatus(ctx context.Context, id, status string) error {
	query, args, err := sq.Update("perfis").Set("status", status).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build set status: %w", err)
	}
	return execOne(ctx, db, query, args)
}
