// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

// Package session provides the default stateful session strategy for the
// auth plugin. Session tokens are random, stored hashed, and resolved from
// the request context.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	TokenBytes    = 32             // 32 bytes = 64 hex chars
	DefaultExpiry = 24 * time.Hour // sessions live a day unless configured
)

// Session correlates an opaque client token with a list item.
type Session struct {
	ID        ulid.ULID
	ListKey   string
	ItemID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// New creates a validated Session.
func New(listKey, itemID, tokenHash string, createdAt, expiresAt time.Time) (*Session, error) {
	if listKey == "" {
		return nil, oops.Code("SESSION_INVALID_LIST").Errorf("list key cannot be empty")
	}
	if itemID == "" {
		return nil, oops.Code("SESSION_INVALID_ITEM").Errorf("item id cannot be empty")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}
	return &Session{
		ID:        ulid.Make(),
		ListKey:   listKey,
		ItemID:    itemID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}, nil
}

// IsExpiredAt reports whether the session would be expired at t.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return t.After(s.ExpiresAt)
}

// GenerateToken creates a secure random session token and its hash.
// The plaintext token goes to the client; only the hash is stored.
func GenerateToken() (token, hash string, err error) {
	raw := make([]byte, TokenBytes)
	if _, err = rand.Read(raw); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			Wrap(err)
	}
	token = hex.EncodeToString(raw)
	return token, HashToken(token), nil
}

// HashToken computes the SHA256 hash of a session token.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// VerifyToken checks a plaintext token against a stored hash in constant time.
func VerifyToken(token, hash string) bool {
	if token == "" || hash == "" {
		return false
	}
	computed := HashToken(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}

// Repository manages session persistence.
type Repository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByTokenHash retrieves a session by its token hash, or ErrNotFound.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// Delete removes a session by ID.
	Delete(ctx context.Context, id ulid.ULID) error

	// DeleteExpired removes sessions that expired before now and returns the
	// count of deleted records.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
