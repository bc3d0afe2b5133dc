// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package auth

import (
	"context"
	"time"

	"github.com/samber/oops"
)

// TokenType selects which token-lifecycle fields an operation works on.
type TokenType string

const (
	// TokenTypePasswordReset is the password-reset link flow.
	TokenTypePasswordReset TokenType = "passwordReset"

	// TokenTypeMagicAuth is the passwordless magic-link flow.
	TokenTypeMagicAuth TokenType = "magicAuth"
)

// Validate rejects values outside the closed token type set.
func (t TokenType) Validate() error {
	switch t {
	case TokenTypePasswordReset, TokenTypeMagicAuth:
		return nil
	default:
		return oops.Code("AUTH_CONFIG_INVALID").
			With("token_type", string(t)).
			Errorf("unknown token type %q", string(t))
	}
}

// TokenState holds the persisted lifecycle fields for one token type on an
// item. A zero TokenState means no token has ever been issued.
type TokenState struct {
	Token      string
	IssuedAt   *time.Time
	RedeemedAt *time.Time
}

// Item is the identity record as read from the host list. It is a per-request
// snapshot; nothing in this package holds an Item across requests.
type Item struct {
	ID         string
	Identity   string
	SecretHash string // empty means no secret is set

	PasswordReset TokenState
	MagicAuth     TokenState
}

// State returns the lifecycle fields for the given token type. An unknown
// type reads as a zero state rather than aliasing to either flow.
func (i *Item) State(typ TokenType) TokenState {
	switch typ {
	case TokenTypePasswordReset:
		return i.PasswordReset
	case TokenTypeMagicAuth:
		return i.MagicAuth
	default:
		return TokenState{}
	}
}

// SetState replaces the lifecycle fields for the given token type. An
// unknown type is dropped; callers validate the type before writing.
func (i *Item) SetState(typ TokenType, state TokenState) {
	switch typ {
	case TokenTypePasswordReset:
		i.PasswordReset = state
	case TokenTypeMagicAuth:
		i.MagicAuth = state
	}
}

// ItemStore is the data-access capability the host list must provide.
//
// Writes through SetTokenState and SetSecret run with elevated privilege:
// the actor performing a token request or redemption is not yet
// authenticated, so normal list access control does not apply.
type ItemStore interface {
	// FindByIdentity returns every item whose identity field exactly equals
	// value. Matching is case-sensitive; the store must not normalize.
	FindByIdentity(ctx context.Context, value string) ([]*Item, error)

	// GetByID retrieves a single item, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Item, error)

	// Count returns the number of items in the list.
	Count(ctx context.Context) (int, error)

	// Create stores a new item. The caller assigns the ID.
	Create(ctx context.Context, item *Item) error

	// SetTokenState overwrites the lifecycle fields for one token type.
	SetTokenState(ctx context.Context, itemID string, typ TokenType, state TokenState) error

	// SetSecret replaces the stored secret hash for an item.
	SetSecret(ctx context.Context, itemID, secretHash string) error
}

// SecretHasher is the hashing capability of the list's secret field.
type SecretHasher interface {
	// Hash produces a storable hash of the plaintext secret.
	Hash(secret string) (string, error)

	// Verify checks the plaintext secret against a stored hash. The
	// comparison must take comparable time for matching and non-matching
	// inputs. Returns (false, nil) on a clean mismatch.
	Verify(secret, hash string) (bool, error)
}

// SessionRef identifies the item an active session belongs to.
type SessionRef struct {
	ListKey string
	ItemID  string
}

// SessionStrategy is the session capability owned by the host.
type SessionStrategy interface {
	// Start issues a session for the item and returns the opaque session
	// token handed back to the client.
	Start(ctx context.Context, listKey, itemID string) (string, error)

	// Get resolves the current request's session. Returns (nil, nil) when
	// the request carries no valid session.
	Get(ctx context.Context) (*SessionRef, error)

	// End terminates the current request's session, if any.
	End(ctx context.Context) error
}

// TokenParams is handed to the delivery callback after a token is issued.
type TokenParams struct {
	ItemID   string
	Identity string
	Token    string
}

// SendTokenFunc delivers an issued token to the account owner (email, SMS,
// whatever the host wires up). Delivery is fire-and-forget: failures are the
// callback's concern and are never retried here.
type SendTokenFunc func(ctx context.Context, params TokenParams)
