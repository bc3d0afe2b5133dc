// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package auth

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// AttemptResult is the outcome of one authentication attempt. Exactly one of
// Item and Code is set.
type AttemptResult struct {
	// Item is the uniquely matched record on success.
	Item *Item

	// Code classifies the failure. With identity protection enabled this is
	// always CodePasswordAuthFailure.
	Code ErrorCode
}

// OK reports whether the attempt succeeded.
func (r AttemptResult) OK() bool { return r.Item != nil }

// Authenticator resolves identity/secret pairs against the list.
type Authenticator struct {
	cfg    Config
	store  ItemStore
	hasher SecretHasher
	logger *slog.Logger
}

// NewAuthenticator creates an Authenticator for the configured list.
func NewAuthenticator(cfg Config, store ItemStore, hasher SecretHasher) (*Authenticator, error) {
	return NewAuthenticatorWithLogger(cfg, store, hasher, slog.Default())
}

// NewAuthenticatorWithLogger creates an Authenticator with a custom logger.
func NewAuthenticatorWithLogger(cfg Config, store ItemStore, hasher SecretHasher, logger *slog.Logger) (*Authenticator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("item store is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("secret hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("logger is required")
	}
	return &Authenticator{cfg: cfg, store: store, hasher: hasher, logger: logger}, nil
}

// Attempt authenticates an identity/secret pair.
//
// Expected failures come back as AttemptResult codes; the returned error is
// reserved for infrastructure faults (failed lookup, malformed stored hash),
// which propagate to the caller unclassified.
func (a *Authenticator) Attempt(ctx context.Context, identity, secret string) (AttemptResult, error) {
	items, err := a.store.FindByIdentity(ctx, identity)
	if err != nil {
		return AttemptResult{}, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "find items by identity").
			With("list", a.cfg.ListKey).
			Wrap(err)
	}

	var code ErrorCode
	switch {
	case len(items) == 0:
		code = CodePasswordAuthIdentityNotFound
	case len(items) > 1:
		code = CodePasswordAuthMultipleIdentityMatches
	case items[0].SecretHash == "":
		code = CodePasswordAuthSecretNotSet
	}

	if code != "" {
		if a.cfg.ProtectIdentities {
			// Burn comparable time so this path is indistinguishable from a
			// secret mismatch. Best effort only.
			_, _ = a.hasher.Verify(secret, DummySecretHash) //nolint:errcheck // timing only
			code = CodePasswordAuthFailure
		}
		observeAttempt(a.cfg.ListKey, code)
		return AttemptResult{Code: code}, nil
	}

	item := items[0]
	ok, err := a.hasher.Verify(secret, item.SecretHash)
	if err != nil {
		return AttemptResult{}, oops.Code("AUTH_VERIFY_FAILED").
			With("operation", "verify secret").
			With("list", a.cfg.ListKey).
			With("item_id", item.ID).
			Wrap(err)
	}
	if !ok {
		code = CodePasswordAuthSecretMismatch
		if a.cfg.ProtectIdentities {
			code = CodePasswordAuthFailure
		}
		observeAttempt(a.cfg.ListKey, code)
		return AttemptResult{Code: code}, nil
	}

	observeAttempt(a.cfg.ListKey, "")
	a.logger.DebugContext(ctx, "password authentication succeeded",
		"list", a.cfg.ListKey, "item_id", item.ID)
	return AttemptResult{Item: item}, nil
}
