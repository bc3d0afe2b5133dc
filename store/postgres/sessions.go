// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/stratacms/strata-auth/auth"
	"github.com/stratacms/strata-auth/session"
)

// SessionRepository implements session.Repository using PostgreSQL.
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db DB) (*SessionRepository, error) {
	if db == nil {
		return nil, oops.Code("STORE_CONFIG_INVALID").Errorf("database handle is required")
	}
	return &SessionRepository{db: db}, nil
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, sess *session.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO auth_sessions (id, list_key, item_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sess.ID.String(), sess.ListKey, sess.ItemID, sess.TokenHash, sess.ExpiresAt, sess.CreatedAt)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			With("list", sess.ListKey).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*session.Session, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, list_key, item_id, token_hash, expires_at, created_at
		FROM auth_sessions
		WHERE token_hash = $1
	`, tokenHash)

	var (
		sess  session.Session
		rawID string
	)
	err := row.Scan(&rawID, &sess.ListKey, &sess.ItemID, &sess.TokenHash, &sess.ExpiresAt, &sess.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	id, err := ulid.Parse(rawID)
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "parse session id").
			With("id", rawID).
			Wrap(err)
	}
	sess.ID = id
	return &sess, nil
}

// Delete removes a session by ID.
func (r *SessionRepository) Delete(ctx context.Context, id ulid.ULID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM auth_sessions WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			With("session_id", id.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").
			With("session_id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteExpired removes sessions that expired before now.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM auth_sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return tag.RowsAffected(), nil
}
