// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package schema

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/stratacms/strata-auth/auth"
	"github.com/stratacms/strata-auth/clock"
)

// Deps are the host capabilities the extension is wired with.
type Deps struct {
	Store    auth.ItemStore
	Hasher   auth.SecretHasher
	Sessions auth.SessionStrategy

	// Clock defaults to the real clock.
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Extension binds the auth flows for one list into resolvable operations.
type Extension struct {
	cfg      auth.Config
	authn    *auth.Authenticator
	tokens   *auth.TokenIssuer
	store    auth.ItemStore
	hasher   auth.SecretHasher
	sessions auth.SessionStrategy
	logger   *slog.Logger
	names    OperationNames
}

// New creates the schema extension for the configured list.
func New(cfg auth.Config, deps Deps) (*Extension, error) {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Sessions == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("session strategy is required")
	}

	authn, err := auth.NewAuthenticatorWithLogger(cfg, deps.Store, deps.Hasher, deps.Logger)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenIssuerWithOptions(cfg, deps.Store, deps.Clock, deps.Logger)
	if err != nil {
		return nil, err
	}

	return &Extension{
		cfg:      cfg,
		authn:    authn,
		tokens:   tokens,
		store:    deps.Store,
		hasher:   deps.Hasher,
		sessions: deps.Sessions,
		logger:   deps.Logger,
		names:    DefaultOperationNames(cfg.ListKey),
	}, nil
}

// AuthenticateWithPassword resolves the authenticate{List}WithPassword
// mutation.
func (e *Extension) AuthenticateWithPassword(ctx context.Context, identity, secret string) (AuthenticationResult, error) {
	result, err := e.authn.Attempt(ctx, identity, secret)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return &AuthenticationFailure{
			Code:    result.Code,
			Message: e.cfg.MessageFor(result.Code),
		}, nil
	}

	token, err := e.sessions.Start(ctx, e.cfg.ListKey, result.Item.ID)
	if err != nil {
		return nil, err
	}
	return &AuthenticationSuccess{SessionToken: token, Item: result.Item}, nil
}

// CreateInitial resolves the createInitial{List} mutation: a bootstrap path
// that only works while the list is empty. It creates the first item with a
// hashed secret and starts a session for it.
func (e *Extension) CreateInitial(ctx context.Context, identity, secret string) (AuthenticationResult, error) {
	count, err := e.store.Count(ctx)
	if err != nil {
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "count items").
			With("list", e.cfg.ListKey).
			Wrap(err)
	}
	if count > 0 {
		return nil, oops.Code("AUTH_LIST_NOT_EMPTY").
			With("list", e.cfg.ListKey).
			Errorf("initial %s can only be created while the list is empty", e.cfg.ListKey)
	}

	hash, err := e.hasher.Hash(secret)
	if err != nil {
		return nil, err
	}

	item := &auth.Item{
		ID:         ulid.Make().String(),
		Identity:   identity,
		SecretHash: hash,
	}
	if err := e.store.Create(ctx, item); err != nil {
		return nil, oops.Code("AUTH_CREATE_FAILED").
			With("operation", "create initial item").
			With("list", e.cfg.ListKey).
			Wrap(err)
	}

	token, err := e.sessions.Start(ctx, e.cfg.ListKey, item.ID)
	if err != nil {
		return nil, err
	}
	return &AuthenticationSuccess{SessionToken: token, Item: item}, nil
}

// SendPasswordResetLink resolves the send{List}PasswordResetLink mutation.
func (e *Extension) SendPasswordResetLink(ctx context.Context, identity string) (TokenFlowResult, error) {
	return e.sendTokenLink(ctx, auth.TokenTypePasswordReset, identity)
}

// SendMagicAuthLink resolves the send{List}MagicAuthLink mutation.
func (e *Extension) SendMagicAuthLink(ctx context.Context, identity string) (TokenFlowResult, error) {
	return e.sendTokenLink(ctx, auth.TokenTypeMagicAuth, identity)
}

func (e *Extension) sendTokenLink(ctx context.Context, typ auth.TokenType, identity string) (TokenFlowResult, error) {
	result, err := e.tokens.Issue(ctx, typ, identity)
	if err != nil {
		return TokenFlowResult{}, err
	}
	if !result.OK {
		return e.tokenFailure(result.Code), nil
	}

	link := e.cfg.Link(typ)
	params := auth.TokenParams{ItemID: result.ItemID, Identity: identity, Token: result.Token}

	// Delivery is fire-and-forget: the mutation result does not wait on it
	// and delivery failures are the callback's concern. The detached context
	// keeps delivery alive after the resolver returns.
	go link.SendToken(context.WithoutCancel(ctx), params)

	return TokenFlowResult{}, nil
}

// RedeemPasswordResetToken resolves the redeem{List}PasswordResetToken
// mutation: on a valid token it stores the new secret and consumes the token.
func (e *Extension) RedeemPasswordResetToken(ctx context.Context, identity, token, newSecret string) (TokenFlowResult, error) {
	result, err := e.tokens.Redeem(ctx, auth.TokenTypePasswordReset, identity, token)
	if err != nil {
		return TokenFlowResult{}, err
	}
	if !result.OK {
		return e.tokenFailure(result.Code), nil
	}

	// The secret is hashed only after the token checks out, so requests with
	// bad tokens never pay for an argon2id computation.
	hash, err := e.hasher.Hash(newSecret)
	if err != nil {
		return TokenFlowResult{}, err
	}

	if err := e.store.SetSecret(ctx, result.Item.ID, hash); err != nil {
		return TokenFlowResult{}, oops.Code("AUTH_UPDATE_FAILED").
			With("operation", "set secret").
			With("list", e.cfg.ListKey).
			With("item_id", result.Item.ID).
			Wrap(err)
	}
	return TokenFlowResult{}, nil
}

// ValidatePasswordResetToken resolves the validate{List}PasswordResetToken
// query: it reports redemption failures without consuming the token.
func (e *Extension) ValidatePasswordResetToken(ctx context.Context, identity, token string) (TokenFlowResult, error) {
	result, err := e.tokens.Validate(ctx, auth.TokenTypePasswordReset, identity, token)
	if err != nil {
		return TokenFlowResult{}, err
	}
	if !result.OK {
		return e.tokenFailure(result.Code), nil
	}
	return TokenFlowResult{}, nil
}

// RedeemMagicAuthToken resolves the redeem{List}MagicAuthToken mutation: on
// a valid token it consumes it and starts a session for the matched item.
func (e *Extension) RedeemMagicAuthToken(ctx context.Context, identity, token string) (RedemptionResult, error) {
	result, err := e.tokens.Redeem(ctx, auth.TokenTypeMagicAuth, identity, token)
	if err != nil {
		return nil, err
	}
	if !result.OK {
		code := auth.CodeTokenRedemptionInvalidToken
		if result.Code != nil {
			code = *result.Code
		}
		return &RedemptionFailure{Code: code, Message: e.cfg.MessageFor(code)}, nil
	}

	sessionToken, err := e.sessions.Start(ctx, e.cfg.ListKey, result.Item.ID)
	if err != nil {
		return nil, err
	}
	return &RedemptionSuccess{SessionToken: sessionToken, Item: result.Item}, nil
}

// AuthenticatedItem resolves the authenticatedItem query: the item behind
// the current session, or nil when there is no session, the session belongs
// to another list, or the item no longer exists.
func (e *Extension) AuthenticatedItem(ctx context.Context) (*AuthenticatedItem, error) {
	ref, err := e.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}
	if ref == nil || ref.ListKey != e.cfg.ListKey {
		return nil, nil
	}

	item, err := e.store.GetByID(ctx, ref.ItemID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "get item by id").
			With("list", e.cfg.ListKey).
			With("item_id", ref.ItemID).
			Wrap(err)
	}
	return &AuthenticatedItem{ListKey: e.cfg.ListKey, Item: item}, nil
}

// EndSession resolves the endSession mutation. It always reports true: a
// request with no session is already in the desired state.
func (e *Extension) EndSession(ctx context.Context) (bool, error) {
	if err := e.sessions.End(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Extension) tokenFailure(code *auth.ErrorCode) TokenFlowResult {
	if code == nil {
		// Identity protection suppressed the detail. The payload is
		// indistinguishable from success by design.
		return TokenFlowResult{}
	}
	msg := e.cfg.MessageFor(*code)
	return TokenFlowResult{Code: code, Message: &msg}
}
