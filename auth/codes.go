// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package auth

// ErrorCode identifies an expected authentication failure. The values are
// wire-stable: they are exposed verbatim in the GraphQL AuthErrorCode enum
// and must never be renamed.
type ErrorCode string

const (
	// CodePasswordAuthFailure is the generic password failure reported when
	// identity protection is enabled, regardless of the underlying cause.
	CodePasswordAuthFailure ErrorCode = "PASSWORD_AUTH_FAILURE"

	// CodePasswordAuthIdentityNotFound means no item matched the identity.
	CodePasswordAuthIdentityNotFound ErrorCode = "PASSWORD_AUTH_IDENTITY_NOT_FOUND"

	// CodePasswordAuthSecretNotSet means the matched item has no stored secret.
	CodePasswordAuthSecretNotSet ErrorCode = "PASSWORD_AUTH_SECRET_NOT_SET"

	// CodePasswordAuthMultipleIdentityMatches means the identity matched more
	// than one item, so no single account can be authenticated.
	CodePasswordAuthMultipleIdentityMatches ErrorCode = "PASSWORD_AUTH_MULTIPLE_IDENTITY_MATCHES"

	// CodePasswordAuthSecretMismatch means the supplied secret did not match.
	CodePasswordAuthSecretMismatch ErrorCode = "PASSWORD_AUTH_SECRET_MISMATCH"

	// CodeTokenRequestIdentityNotFound means a token was requested for an
	// identity that matched no item.
	CodeTokenRequestIdentityNotFound ErrorCode = "AUTH_TOKEN_REQUEST_IDENTITY_NOT_FOUND"

	// CodeTokenRequestMultipleIdentityMatches means a token was requested for
	// an identity that matched more than one item.
	CodeTokenRequestMultipleIdentityMatches ErrorCode = "AUTH_TOKEN_REQUEST_MULTIPLE_IDENTITY_MATCHES"

	// CodeTokenRedemptionInvalidToken means the presented token does not match
	// the stored one, or the identity did not resolve to a single item.
	CodeTokenRedemptionInvalidToken ErrorCode = "AUTH_TOKEN_REDEMPTION_INVALID_TOKEN"

	// CodeTokenRedemptionTokenExpired means the token's validity window has
	// elapsed.
	CodeTokenRedemptionTokenExpired ErrorCode = "AUTH_TOKEN_REDEMPTION_TOKEN_EXPIRED"

	// CodeTokenRedemptionTokenRedeemed means the token was already spent.
	CodeTokenRedemptionTokenRedeemed ErrorCode = "AUTH_TOKEN_REDEMPTION_TOKEN_REDEEMED"

	// CodeTokenInternalError hides storage write failures during token
	// issuance or redemption. Details are logged server-side only.
	CodeTokenInternalError ErrorCode = "AUTH_TOKEN_INTERNAL_ERROR"

	// CodeCustomError is reserved for host-defined failures surfaced through
	// the same payload shape.
	CodeCustomError ErrorCode = "CUSTOM_ERROR"
)

// Codes lists every ErrorCode, in the order they appear in the GraphQL enum.
func Codes() []ErrorCode {
	return []ErrorCode{
		CodePasswordAuthFailure,
		CodePasswordAuthIdentityNotFound,
		CodePasswordAuthSecretNotSet,
		CodePasswordAuthMultipleIdentityMatches,
		CodePasswordAuthSecretMismatch,
		CodeTokenRequestIdentityNotFound,
		CodeTokenRequestMultipleIdentityMatches,
		CodeTokenRedemptionInvalidToken,
		CodeTokenRedemptionTokenExpired,
		CodeTokenRedemptionTokenRedeemed,
		CodeTokenInternalError,
		CodeCustomError,
	}
}
