package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"formbridge/internal/auth/models"
	"formbridge/pkg/platform/sentinel"
)

// Postgres persists users in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE users (
//	    id               UUID PRIMARY KEY,
//	    airtable_user_id TEXT NOT NULL UNIQUE,
//	    email            TEXT NOT NULL DEFAULT '',
//	    sealed_access    TEXT NOT NULL,
//	    sealed_refresh   TEXT NOT NULL,
//	    token_expires_at TIMESTAMPTZ,
//	    login_at         TIMESTAMPTZ NOT NULL,
//	    created_at       TIMESTAMPTZ NOT NULL,
//	    updated_at       TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Save(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (id, airtable_user_id, email, sealed_access, sealed_refresh,
		                   token_expires_at, login_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			sealed_access = EXCLUDED.sealed_access,
			sealed_refresh = EXCLUDED.sealed_refresh,
			token_expires_at = EXCLUDED.token_expires_at,
			login_at = EXCLUDED.login_at,
			updated_at = EXCLUDED.updated_at`
	_, err := s.db.ExecContext(ctx, q,
		user.ID, user.AirtableUserID, user.Email, user.SealedAccess, user.SealedRefresh,
		nullableTime(user.TokenExpiresAt), user.LoginAt, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id string) (*models.User, error) {
	const q = `
		SELECT id, airtable_user_id, email, sealed_access, sealed_refresh,
		       token_expires_at, login_at, created_at, updated_at
		FROM users WHERE id = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, q, id))
}

func (s *Postgres) FindByAirtableUserID(ctx context.Context, providerID string) (*models.User, error) {
	const q = `
		SELECT id, airtable_user_id, email, sealed_access, sealed_refresh,
		       token_expires_at, login_at, created_at, updated_at
		FROM users WHERE airtable_user_id = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, q, providerID))
}

func (s *Postgres) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var expires sql.NullTime
	err := row.Scan(&u.ID, &u.AirtableUserID, &u.Email, &u.SealedAccess, &u.SealedRefresh,
		&expires, &u.LoginAt, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if expires.Valid {
		u.TokenExpiresAt = expires.Time
	}
	return &u, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
