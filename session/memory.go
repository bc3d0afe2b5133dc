// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package session

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/stratacms/strata-auth/auth"
)

// MemoryRepository is an in-memory Repository for tests and single-process
// development setups. Safe for concurrent use.
type MemoryRepository struct {
	mu     sync.RWMutex
	byHash map[string]*Session
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byHash: make(map[string]*Session)}
}

// Create stores a new session.
func (r *MemoryRepository) Create(_ context.Context, sess *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *sess
	r.byHash[sess.TokenHash] = &cp
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
func (r *MemoryRepository) GetByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.byHash[tokenHash]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

// Delete removes a session by ID.
func (r *MemoryRepository) Delete(_ context.Context, id ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, sess := range r.byHash {
		if sess.ID == id {
			delete(r.byHash, hash)
			return nil
		}
	}
	return auth.ErrNotFound
}

// DeleteExpired removes sessions that expired before now.
func (r *MemoryRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for hash, sess := range r.byHash {
		if sess.IsExpiredAt(now) {
			delete(r.byHash, hash)
			n++
		}
	}
	return n, nil
}
