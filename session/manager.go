// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package session

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"

	"github.com/stratacms/strata-auth/auth"
	"github.com/stratacms/strata-auth/clock"
)

// Manager implements auth.SessionStrategy on top of a Repository.
type Manager struct {
	repo Repository
	clk  clock.Clock
	ttl  time.Duration
}

// NewManager creates a Manager with the default expiry.
func NewManager(repo Repository) (*Manager, error) {
	return NewManagerWithOptions(repo, clock.Real(), DefaultExpiry)
}

// NewManagerWithOptions creates a Manager with an explicit clock and session
// lifetime.
func NewManagerWithOptions(repo Repository, clk clock.Clock, ttl time.Duration) (*Manager, error) {
	if repo == nil {
		return nil, oops.Code("SESSION_CONFIG_INVALID").Errorf("session repository is required")
	}
	if clk == nil {
		return nil, oops.Code("SESSION_CONFIG_INVALID").Errorf("clock is required")
	}
	if ttl <= 0 {
		return nil, oops.Code("SESSION_CONFIG_INVALID").Errorf("session lifetime must be positive, got %s", ttl)
	}
	return &Manager{repo: repo, clk: clk, ttl: ttl}, nil
}

// Start issues a session for the item and returns the plaintext token.
func (m *Manager) Start(ctx context.Context, listKey, itemID string) (string, error) {
	token, hash, err := GenerateToken()
	if err != nil {
		return "", err
	}

	now := m.clk.Now()
	sess, err := New(listKey, itemID, hash, now, now.Add(m.ttl))
	if err != nil {
		return "", err
	}

	if err := m.repo.Create(ctx, sess); err != nil {
		return "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "persist session").
			With("list", listKey).
			Wrap(err)
	}
	return token, nil
}

// Get resolves the session carried by the request context. Absent, unknown,
// and expired tokens all read as "no session" rather than an error.
func (m *Manager) Get(ctx context.Context) (*auth.SessionRef, error) {
	token, ok := TokenFromContext(ctx)
	if !ok {
		return nil, nil
	}

	sess, err := m.repo.GetByTokenHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}
	if sess.IsExpiredAt(m.clk.Now()) {
		return nil, nil
	}

	return &auth.SessionRef{ListKey: sess.ListKey, ItemID: sess.ItemID}, nil
}

// End terminates the request's session. Ending with no session is a no-op.
func (m *Manager) End(ctx context.Context) error {
	token, ok := TokenFromContext(ctx)
	if !ok {
		return nil
	}

	sess, err := m.repo.GetByTokenHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return nil
		}
		return oops.Code("SESSION_END_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if err := m.repo.Delete(ctx, sess.ID); err != nil && !errors.Is(err, auth.ErrNotFound) {
		return oops.Code("SESSION_END_FAILED").
			With("operation", "delete session").
			With("session_id", sess.ID.String()).
			Wrap(err)
	}
	return nil
}
