// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package auth

import (
	"strings"
	"time"

	"github.com/samber/oops"
)

// DefaultTokensValidFor is the validity window applied to a token link flow
// when the host does not configure one.
const DefaultTokensValidFor = 10 * time.Minute

// MaxTokensValidFor caps the configurable validity window.
const MaxTokensValidFor = 24 * time.Hour

// TokenLinkConfig enables one token link flow (password reset or magic auth).
type TokenLinkConfig struct {
	// TokensValidFor is how long an issued token may be redeemed.
	// Zero means DefaultTokensValidFor.
	TokensValidFor time.Duration

	// SendToken delivers the issued token to the account owner. Required.
	SendToken SendTokenFunc
}

// Config describes the identity list the plugin authenticates against.
// It is immutable after construction; operations capture it by value.
type Config struct {
	// ListKey is the host list the plugin is attached to, e.g. "User".
	ListKey string

	// IdentityField is the list field used to look accounts up, e.g. "email".
	IdentityField string

	// SecretField is the list field holding the hashed credential.
	SecretField string

	// ProtectIdentities reduces failure detail so callers cannot probe which
	// identities exist. Password failures collapse to PASSWORD_AUTH_FAILURE;
	// token request failures carry no code at all.
	ProtectIdentities bool

	// Labels overrides the names used in error messages. Empty fields are
	// derived from ListKey, IdentityField, and SecretField.
	Labels Labels

	// PasswordReset enables the password-reset link flow when non-nil.
	PasswordReset *TokenLinkConfig

	// MagicAuth enables the magic-auth link flow when non-nil.
	MagicAuth *TokenLinkConfig
}

// Validate checks the config for structural problems. It is called by the
// component constructors, so a hand-built Config cannot skip it.
func (c Config) Validate() error {
	if c.ListKey == "" {
		return oops.Code("AUTH_CONFIG_INVALID").Errorf("list key is required")
	}
	if c.IdentityField == "" {
		return oops.Code("AUTH_CONFIG_INVALID").Errorf("identity field is required")
	}
	if c.SecretField == "" {
		return oops.Code("AUTH_CONFIG_INVALID").Errorf("secret field is required")
	}
	for typ, link := range map[TokenType]*TokenLinkConfig{
		TokenTypePasswordReset: c.PasswordReset,
		TokenTypeMagicAuth:     c.MagicAuth,
	} {
		if link == nil {
			continue
		}
		if link.SendToken == nil {
			return oops.Code("AUTH_CONFIG_INVALID").
				With("token_type", string(typ)).
				Errorf("send token callback is required when the %s flow is enabled", typ)
		}
		if link.TokensValidFor < 0 || link.TokensValidFor > MaxTokensValidFor {
			return oops.Code("AUTH_CONFIG_INVALID").
				With("token_type", string(typ)).
				With("tokens_valid_for", link.TokensValidFor.String()).
				Errorf("tokens valid for must be between 0 and %s", MaxTokensValidFor)
		}
	}
	return nil
}

// Link returns the flow config for typ. Disabled flows and unknown token
// types both read as nil.
func (c Config) Link(typ TokenType) *TokenLinkConfig {
	switch typ {
	case TokenTypePasswordReset:
		return c.PasswordReset
	case TokenTypeMagicAuth:
		return c.MagicAuth
	default:
		return nil
	}
}

// tokensValidFor returns the effective validity window for typ.
func (c Config) tokensValidFor(typ TokenType) time.Duration {
	link := c.Link(typ)
	if link == nil || link.TokensValidFor == 0 {
		return DefaultTokensValidFor
	}
	return link.TokensValidFor
}

// labels returns the message labels with unset fields derived from the list
// configuration: "User" becomes singular "user", plural "users".
func (c Config) labels() Labels {
	l := c.Labels
	if l.IdentityField == "" {
		l.IdentityField = c.IdentityField
	}
	if l.SecretField == "" {
		l.SecretField = c.SecretField
	}
	if l.ItemSingular == "" {
		l.ItemSingular = strings.ToLower(c.ListKey)
	}
	if l.ItemPlural == "" {
		l.ItemPlural = l.ItemSingular + "s"
	}
	return l
}

// MessageFor renders code using this list's labels.
func (c Config) MessageFor(code ErrorCode) string {
	return Message(c.labels(), code)
}
