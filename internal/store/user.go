package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/larder/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	var name, avatar sql.NullString
	err := s.Scan(&u.ID, &u.ExternalID, &u.Email, &name, &avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Name = stringPtr(name)
	u.AvatarURL = stringPtr(avatar)
	return &u, nil
}

const userCols = `id, external_id, email, name, avatar_url, created_at, updated_at`

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE external_id = ?`, externalID)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by external id: %w", err)
	}
	return u, nil
}

// CreateIfAbsent inserts a user for the identity unless one already exists
// for its external id, then returns the stored row. An existing row is never
// modified.
func (s *UserStore) CreateIfAbsent(ctx context.Context, ident model.Identity, now time.Time) (*model.User, error) {
	now = now.UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, external_id, email, name, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(external_id) DO NOTHING`,
		newID(), ident.ExternalID, ident.Email, nullString(ident.Name), nullString(ident.AvatarURL), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	u, err := s.GetByExternalID(ctx, ident.ExternalID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("insert user: row for %q missing after insert", ident.ExternalID)
	}
	return u, nil
}
