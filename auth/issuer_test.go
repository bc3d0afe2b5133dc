// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stratacms/strata-auth/auth"
	"github.com/stratacms/strata-auth/auth/mocks"
	"github.com/stratacms/strata-auth/clock"
)

func tokenConfig() auth.Config {
	cfg := validConfig()
	cfg.PasswordReset = &auth.TokenLinkConfig{SendToken: noopSendToken}
	cfg.MagicAuth = &auth.TokenLinkConfig{
		TokensValidFor: time.Hour,
		SendToken:      noopSendToken,
	}
	return cfg
}

func newIssuer(t *testing.T, cfg auth.Config, clk clock.Clock) (*auth.TokenIssuer, *mocks.MockItemStore) {
	t.Helper()
	store := mocks.NewMockItemStore(t)
	issuer, err := auth.NewTokenIssuerWithOptions(cfg, store, clk, slog.Default())
	require.NoError(t, err)
	return issuer, store
}

func TestTokenIssuer_Issue(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	t.Run("issues and persists a fresh token", func(t *testing.T) {
		clk := clock.NewFake(start)
		issuer, store := newIssuer(t, tokenConfig(), clk)

		item := &auth.Item{ID: "item-1", Identity: "a@example.com"}
		store.On("FindByIdentity", ctx, "a@example.com").Return([]*auth.Item{item}, nil)

		var persisted auth.TokenState
		store.On("SetTokenState", ctx, "item-1", auth.TokenTypePasswordReset,
			mock.AnythingOfType("auth.TokenState")).
			Run(func(args mock.Arguments) {
				persisted = args.Get(3).(auth.TokenState)
			}).
			Return(nil)

		result, err := issuer.Issue(ctx, auth.TokenTypePasswordReset, "a@example.com")
		require.NoError(t, err)
		assert.True(t, result.OK)
		assert.Equal(t, "item-1", result.ItemID)
		assert.Len(t, result.Token, auth.TokenLength)
		assert.Nil(t, result.Code)

		assert.Equal(t, result.Token, persisted.Token)
		require.NotNil(t, persisted.IssuedAt)
		assert.True(t, persisted.IssuedAt.Equal(start))
		assert.Nil(t, persisted.RedeemedAt)
	})

	t.Run("disabled flow is a hard error", func(t *testing.T) {
		cfg := tokenConfig()
		cfg.MagicAuth = nil
		issuer, _ := newIssuer(t, cfg, clock.NewFake(start))

		_, err := issuer.Issue(ctx, auth.TokenTypeMagicAuth, "a@example.com")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not enabled")
	})

	t.Run("unknown token type is a hard error", func(t *testing.T) {
		issuer, store := newIssuer(t, tokenConfig(), clock.NewFake(start))

		_, err := issuer.Issue(ctx, auth.TokenType("bogus"), "a@example.com")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown token type")
		store.AssertNotCalled(t, "FindByIdentity")
	})

	t.Run("unmatched identity", func(t *testing.T) {
		issuer, store := newIssuer(t, tokenConfig(), clock.NewFake(start))
		store.On("FindByIdentity", ctx, "missing@example.com").Return([]*auth.Item{}, nil)

		result, err := issuer.Issue(ctx, auth.TokenTypePasswordReset, "missing@example.com")
		require.NoError(t, err)
		assert.False(t, result.OK)
		require.NotNil(t, result.Code)
		assert.Equal(t, auth.CodeTokenRequestIdentityNotFound, *result.Code)
	})

	t.Run("multiple identity matches", func(t *testing.T) {
		issuer, store := newIssuer(t, tokenConfig(), clock.NewFake(start))
		items := []*auth.Item{{ID: "item-1"}, {ID: "item-2"}}
		store.On("FindByIdentity", ctx, "dup@example.com").Return(items, nil)

		result, err := issuer.Issue(ctx, auth.TokenTypeMagicAuth, "dup@example.com")
		require.NoError(t, err)
		require.NotNil(t, result.Code)
		assert.Equal(t, auth.CodeTokenRequestMultipleIdentityMatches, *result.Code)
	})

	t.Run("identity protection suppresses the code", func(t *testing.T) {
		cfg := tokenConfig()
		cfg.ProtectIdentities = true
		issuer, store := newIssuer(t, cfg, clock.NewFake(start))
		store.On("FindByIdentity", ctx, "missing@example.com").Return([]*auth.Item{}, nil)

		result, err := issuer.Issue(ctx, auth.TokenTypePasswordReset, "missing@example.com")
		require.NoError(t, err)
		assert.False(t, result.OK)
		assert.Nil(t, result.Code)
		store.AssertNotCalled(t, "SetTokenState")
	})

	t.Run("persistence failure becomes internal code", func(t *testing.T) {
		issuer, store := newIssuer(t, tokenConfig(), clock.NewFake(start))
		item := &auth.Item{ID: "item-1", Identity: "a@example.com"}
		store.On("FindByIdentity", ctx, "a@example.com").Return([]*auth.Item{item}, nil)
		store.On("SetTokenState", ctx, "item-1", auth.TokenTypePasswordReset,
			mock.AnythingOfType("auth.TokenState")).
			Return(errors.New("disk full"))

		result, err := issuer.Issue(ctx, auth.TokenTypePasswordReset, "a@example.com")
		require.NoError(t, err)
		assert.False(t, result.OK)
		require.NotNil(t, result.Code)
		assert.Equal(t, auth.CodeTokenInternalError, *result.Code)
	})

	t.Run("lookup failure propagates", func(t *testing.T) {
		issuer, store := newIssuer(t, tokenConfig(), clock.NewFake(start))
		store.On("FindByIdentity", ctx, "a@example.com").Return(nil, errors.New("connection refused"))

		_, err := issuer.Issue(ctx, auth.TokenTypePasswordReset, "a@example.com")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestTokenIssuer_Redeem(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	itemWithToken := func(token string, issuedAt time.Time) *auth.Item {
		return &auth.Item{
			ID:            "item-1",
			Identity:      "a@example.com",
			PasswordReset: auth.TokenState{Token: token, IssuedAt: &issuedAt},
		}
	}

	t.Run("valid token is redeemed and marked spent", func(t *testing.T) {
		clk := clock.NewFake(start)
		issuer, store := newIssuer(t, tokenConfig(), clk)

		item := itemWithToken("aaaaaaaaaaaaaaaaaaaa", start)
		store.On("FindByIdentity", ctx, "a@example.com").Return([]*auth.Item{item}, nil)

		clk.Advance(5 * time.Minute)
		redeemedAt := clk.Now()

		var persisted auth.TokenState
		store.On("SetTokenState", ctx, "item-1", auth.TokenTypePasswordReset,
			mock.AnythingOfType("auth.TokenState")).
			Run(func(args mock.Arguments) {
				persisted = args.Get(3).(auth.TokenState)
			}).
			Return(nil)

		result, err := issuer.Redeem(ctx, auth.TokenTypePasswordReset, "a@example.com", "aaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, err)
		assert.True(t, result.OK)
		assert.Same(t, item, result.Item)

		require.NotNil(t, persisted.RedeemedAt)
		assert.True(t, persisted.RedeemedAt.Equal(redeemedAt))
		require.NotNil(t, item.PasswordReset.RedeemedAt)
	})

	t.Run("wrong token reads as invalid", func(t *testing.T) {
		issuer, store := newIssuer(t, tokenConfig(), clock.NewFake(start))
		item := itemWithToken("aaaaaaaaaaaaaaaaaaaa", start)
		store.On("FindByIdentity", ctx, "a@example.com").Return([]*auth.Item{item}, nil)

		result, err := issuer.Redeem(ctx, auth.TokenTypePasswordReset, "a@example.com", "bbbbbbbbbbbbbbbbbbbb")
		require.NoError(t, err)
		require.NotNil(t, result.Code)
		assert.Equal(t, auth.CodeTokenRedemptionInvalidToken, *result.Code)
	})

	t.Run("no token ever issued reads as invalid", func(t *testing.T) {
		issuer, store := newIssuer(t, tokenConfig(), clock.NewFake(start))
		item := &auth.Item{ID: "item-1", Identity: "a@example.com"}
		store.On("FindByIdentity", ctx, "a@example.com").Return([]*auth.Item{item}, nil)

		result, err := issuer.Redeem(ctx, auth.TokenTypePasswordReset, "a@example.com", "aaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, err)
		require.NotNil(t, result.Code)
		assert.Equal(t, auth.CodeTokenRedemptionInvalidToken, *result.Code)
	})

	t.Run("unmatched identity reads as invalid", func(t *testing.T) {
		issuer, store := newIssuer(t, tokenConfig(), clock.NewFake(start))
		store.On("FindByIdentity", ctx, "missing@example.com").Return([]*auth.Item{}, nil)

		result, err := issuer.Redeem(ctx, auth.TokenTypePasswordReset, "missing@example.com", "aaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, err)
		require.NotNil(t, result.Code)
		assert.Equal(t, auth.CodeTokenRedemptionInvalidToken, *result.Code)
	})

	t.Run("unknown token type is a hard error", func(t *testing.T) {
		issuer, store := newIssuer(t, tokenConfig(), clock.NewFake(start))

		_, err := issuer.Redeem(ctx, auth.TokenType("bogus"), "a@example.com", "aaaaaaaaaaaaaaaaaaaa")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown token type")
		store.AssertNotCalled(t, "FindByIdentity")
	})

	t.Run("already redeemed", func(t *testing.T) {
		issuer, store := newIssuer(t, tokenConfig(), clock.NewFake(start))
		item := itemWithToken("aaaaaaaaaaaaaaaaaaaa", start)
		redeemed := start.Add(time.Minute)
		item.PasswordReset.RedeemedAt = &redeemed
		store.On("FindByIdentity", ctx, "a@example.com").Return([]*auth.Item{item}, nil)

		result, err := issuer.Redeem(ctx, auth.TokenTypePasswordReset, "a@example.com", "aaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, err)
		require.NotNil(t, result.Code)
		assert.Equal(t, auth.CodeTokenRedemptionTokenRedeemed, *result.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		clk := clock.NewFake(start)
		issuer, store := newIssuer(t, tokenConfig(), clk)
		item := itemWithToken("aaaaaaaaaaaaaaaaaaaa", start)
		store.On("FindByIdentity", ctx, "a@example.com").Return([]*auth.Item{item}, nil)

		// Default window is 10 minutes for the password reset flow here.
		clk.Advance(auth.DefaultTokensValidFor + time.Second)

		result, err := issuer.Redeem(ctx, auth.TokenTypePasswordReset, "a@example.com", "aaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, err)
		require.NotNil(t, result.Code)
		assert.Equal(t, auth.CodeTokenRedemptionTokenExpired, *result.Code)
	})

	t.Run("redeemable at the edge of the window", func(t *testing.T) {
		clk := clock.NewFake(start)
		issuer, store := newIssuer(t, tokenConfig(), clk)
		item := itemWithToken("aaaaaaaaaaaaaaaaaaaa", start)
		store.On("FindByIdentity", ctx, "a@example.com").Return([]*auth.Item{item}, nil)
		store.On("SetTokenState", ctx, "item-1", auth.TokenTypePasswordReset,
			mock.AnythingOfType("auth.TokenState")).
			Return(nil)

		clk.Advance(auth.DefaultTokensValidFor)

		result, err := issuer.Redeem(ctx, auth.TokenTypePasswordReset, "a@example.com", "aaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, err)
		assert.True(t, result.OK)
	})

	t.Run("configured window overrides the default", func(t *testing.T) {
		clk := clock.NewFake(start)
		issuer, store := newIssuer(t, tokenConfig(), clk)

		issuedAt := start
		item := &auth.Item{
			ID:        "item-1",
			Identity:  "a@example.com",
			MagicAuth: auth.TokenState{Token: "aaaaaaaaaaaaaaaaaaaa", IssuedAt: &issuedAt},
		}
		store.On("FindByIdentity", ctx, "a@example.com").Return([]*auth.Item{item}, nil)
		store.On("SetTokenState", ctx, "item-1", auth.TokenTypeMagicAuth,
			mock.AnythingOfType("auth.TokenState")).
			Return(nil)

		// Past the default window but inside the configured one-hour window.
		clk.Advance(30 * time.Minute)

		result, err := issuer.Redeem(ctx, auth.TokenTypeMagicAuth, "a@example.com", "aaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, err)
		assert.True(t, result.OK)
	})

	t.Run("redeemed check runs before expiry", func(t *testing.T) {
		// A token that is both redeemed and expired reports redeemed.
		issuer, store := newIssuer(t, tokenConfig(), clock.NewFake(start.Add(time.Hour)))
		item := itemWithToken("aaaaaaaaaaaaaaaaaaaa", start)
		redeemed := start.Add(time.Minute)
		item.PasswordReset.RedeemedAt = &redeemed
		store.On("FindByIdentity", ctx, "a@example.com").Return([]*auth.Item{item}, nil)

		result, err := issuer.Redeem(ctx, auth.TokenTypePasswordReset, "a@example.com", "aaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, err)
		require.NotNil(t, result.Code)
		assert.Equal(t, auth.CodeTokenRedemptionTokenRedeemed, *result.Code)
	})

	t.Run("persistence failure becomes internal code", func(t *testing.T) {
		issuer, store := newIssuer(t, tokenConfig(), clock.NewFake(start))
		item := itemWithToken("aaaaaaaaaaaaaaaaaaaa", start)
		store.On("FindByIdentity", ctx, "a@example.com").Return([]*auth.Item{item}, nil)
		store.On("SetTokenState", ctx, "item-1", auth.TokenTypePasswordReset,
			mock.AnythingOfType("auth.TokenState")).
			Return(errors.New("disk full"))

		result, err := issuer.Redeem(ctx, auth.TokenTypePasswordReset, "a@example.com", "aaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, err)
		assert.False(t, result.OK)
		require.NotNil(t, result.Code)
		assert.Equal(t, auth.CodeTokenInternalError, *result.Code)
	})

	t.Run("identity protection does not alter redemption codes", func(t *testing.T) {
		cfg := tokenConfig()
		cfg.ProtectIdentities = true
		issuer, store := newIssuer(t, cfg, clock.NewFake(start))
		store.On("FindByIdentity", ctx, "missing@example.com").Return([]*auth.Item{}, nil)

		result, err := issuer.Redeem(ctx, auth.TokenTypePasswordReset, "missing@example.com", "aaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, err)
		require.NotNil(t, result.Code)
		assert.Equal(t, auth.CodeTokenRedemptionInvalidToken, *result.Code)
	})
}

func TestTokenIssuer_Validate(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	t.Run("valid token is not consumed", func(t *testing.T) {
		issuer, store := newIssuer(t, tokenConfig(), clock.NewFake(start))
		issuedAt := start
		item := &auth.Item{
			ID:            "item-1",
			Identity:      "a@example.com",
			PasswordReset: auth.TokenState{Token: "aaaaaaaaaaaaaaaaaaaa", IssuedAt: &issuedAt},
		}
		store.On("FindByIdentity", ctx, "a@example.com").Return([]*auth.Item{item}, nil)

		result, err := issuer.Validate(ctx, auth.TokenTypePasswordReset, "a@example.com", "aaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, err)
		assert.True(t, result.OK)
		assert.Nil(t, item.PasswordReset.RedeemedAt)
		store.AssertNotCalled(t, "SetTokenState")
	})

	t.Run("reports the same failure codes as redeem", func(t *testing.T) {
		issuer, store := newIssuer(t, tokenConfig(), clock.NewFake(start))
		issuedAt := start
		item := &auth.Item{
			ID:            "item-1",
			Identity:      "a@example.com",
			PasswordReset: auth.TokenState{Token: "aaaaaaaaaaaaaaaaaaaa", IssuedAt: &issuedAt},
		}
		store.On("FindByIdentity", ctx, "a@example.com").Return([]*auth.Item{item}, nil)

		result, err := issuer.Validate(ctx, auth.TokenTypePasswordReset, "a@example.com", "bbbbbbbbbbbbbbbbbbbb")
		require.NoError(t, err)
		require.NotNil(t, result.Code)
		assert.Equal(t, auth.CodeTokenRedemptionInvalidToken, *result.Code)
	})
}
