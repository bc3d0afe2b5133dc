// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package auth

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"github.com/samber/oops"

	"github.com/stratacms/strata-auth/clock"
	"github.com/stratacms/strata-auth/pkg/errutil"
)

// TokenResult is the outcome of a token issuance request.
type TokenResult struct {
	// OK reports a token was issued and persisted.
	OK bool

	ItemID string
	Token  string

	// Code classifies the failure. With identity protection enabled it is
	// nil even on failure: callers get no hint about why the request failed.
	Code *ErrorCode
}

// RedeemResult is the outcome of a token redemption or validation.
type RedeemResult struct {
	// OK reports the token was valid (and, for Redeem, is now spent).
	OK bool

	// Item is the uniquely matched record on success.
	Item *Item

	// Code classifies the failure.
	Code *ErrorCode
}

// TokenIssuer generates, persists, validates, and redeems the single-use
// opaque tokens behind the password-reset and magic-auth flows.
//
// Concurrent issuance for the same item is last-write-wins: a second Issue
// overwrites the stored token and an in-flight redemption of the earlier one
// will fail as invalid. The issuer adds no locking of its own.
type TokenIssuer struct {
	cfg    Config
	store  ItemStore
	clk    clock.Clock
	logger *slog.Logger
}

// NewTokenIssuer creates a TokenIssuer for the configured list.
func NewTokenIssuer(cfg Config, store ItemStore) (*TokenIssuer, error) {
	return NewTokenIssuerWithOptions(cfg, store, clock.Real(), slog.Default())
}

// NewTokenIssuerWithOptions creates a TokenIssuer with an explicit clock and
// logger. Tests use a fake clock to exercise expiry.
func NewTokenIssuerWithOptions(cfg Config, store ItemStore, clk clock.Clock, logger *slog.Logger) (*TokenIssuer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("item store is required")
	}
	if clk == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("clock is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("logger is required")
	}
	return &TokenIssuer{cfg: cfg, store: store, clk: clk, logger: logger}, nil
}

// Issue generates a fresh token for the identity and persists it, clearing
// any prior token of the same type. The caller is responsible for delivery.
func (t *TokenIssuer) Issue(ctx context.Context, typ TokenType, identity string) (TokenResult, error) {
	if err := typ.Validate(); err != nil {
		return TokenResult{}, err
	}
	if t.cfg.Link(typ) == nil {
		return TokenResult{}, oops.Code("AUTH_FLOW_DISABLED").
			With("token_type", string(typ)).
			Errorf("the %s flow is not enabled for list %s", typ, t.cfg.ListKey)
	}

	items, err := t.store.FindByIdentity(ctx, identity)
	if err != nil {
		return TokenResult{}, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "find items by identity").
			With("list", t.cfg.ListKey).
			Wrap(err)
	}

	var code ErrorCode
	switch {
	case len(items) == 0:
		code = CodeTokenRequestIdentityNotFound
	case len(items) > 1:
		code = CodeTokenRequestMultipleIdentityMatches
	}
	if code != "" {
		if t.cfg.ProtectIdentities {
			// Suppress the code entirely. "No code" and "none of your
			// business" are the same answer here.
			return TokenResult{}, nil
		}
		return TokenResult{Code: &code}, nil
	}

	item := items[0]

	token, err := GenerateToken()
	if err != nil {
		return TokenResult{}, err
	}

	now := t.clk.Now()
	state := TokenState{Token: token, IssuedAt: &now}
	if err := t.store.SetTokenState(ctx, item.ID, typ, state); err != nil {
		// Full detail stays server-side; the caller sees only the opaque code.
		errutil.LogError(t.logger, "failed to persist auth token", err)
		internal := CodeTokenInternalError
		return TokenResult{Code: &internal}, nil
	}

	tokensIssued.WithLabelValues(t.cfg.ListKey, string(typ)).Inc()
	return TokenResult{OK: true, ItemID: item.ID, Token: token}, nil
}

// Redeem validates the token for the identity and, on success, marks it
// redeemed so it cannot be used again.
func (t *TokenIssuer) Redeem(ctx context.Context, typ TokenType, identity, token string) (RedeemResult, error) {
	return t.redeem(ctx, typ, identity, token, true)
}

// Validate checks the token without consuming it. It reports the same
// failure codes as Redeem.
func (t *TokenIssuer) Validate(ctx context.Context, typ TokenType, identity, token string) (RedeemResult, error) {
	return t.redeem(ctx, typ, identity, token, false)
}

func (t *TokenIssuer) redeem(ctx context.Context, typ TokenType, identity, token string, consume bool) (RedeemResult, error) {
	if err := typ.Validate(); err != nil {
		return RedeemResult{}, err
	}

	items, err := t.store.FindByIdentity(ctx, identity)
	if err != nil {
		return RedeemResult{}, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "find items by identity").
			With("list", t.cfg.ListKey).
			Wrap(err)
	}

	// Anything short of a unique match with a matching token reads as an
	// invalid token. Redemption codes never reveal whether the identity
	// exists, so identity protection does not alter them.
	if len(items) != 1 {
		return t.redeemFailure(typ, CodeTokenRedemptionInvalidToken), nil
	}

	item := items[0]
	state := item.State(typ)

	if state.Token == "" || token == "" ||
		subtle.ConstantTimeCompare([]byte(state.Token), []byte(token)) != 1 {
		return t.redeemFailure(typ, CodeTokenRedemptionInvalidToken), nil
	}
	if state.RedeemedAt != nil {
		return t.redeemFailure(typ, CodeTokenRedemptionTokenRedeemed), nil
	}
	if state.IssuedAt == nil || t.clk.Now().Sub(*state.IssuedAt) > t.cfg.tokensValidFor(typ) {
		return t.redeemFailure(typ, CodeTokenRedemptionTokenExpired), nil
	}

	if consume {
		now := t.clk.Now()
		state.RedeemedAt = &now
		if err := t.store.SetTokenState(ctx, item.ID, typ, state); err != nil {
			errutil.LogError(t.logger, "failed to mark auth token redeemed", err)
			return t.redeemFailure(typ, CodeTokenInternalError), nil
		}
		item.SetState(typ, state)
	}

	observeRedemption(t.cfg.ListKey, typ, "")
	return RedeemResult{OK: true, Item: item}, nil
}

func (t *TokenIssuer) redeemFailure(typ TokenType, code ErrorCode) RedeemResult {
	observeRedemption(t.cfg.ListKey, typ, code)
	return RedeemResult{Code: &code}
}
