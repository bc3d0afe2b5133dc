// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package auth

import "fmt"

// Labels carries the human-facing names used to render error messages for a
// list. All fields must be non-empty; Config.normalize fills in defaults.
type Labels struct {
	IdentityField string // e.g. "email"
	SecretField   string // e.g. "password"
	ItemSingular  string // e.g. "user"
	ItemPlural    string // e.g. "users"
}

// Message renders an ErrorCode as a human-readable string. The mapping is
// total: codes outside the closed enumeration fall back to a generic message
// so a payload never carries an empty message.
func Message(l Labels, code ErrorCode) string {
	switch code {
	case CodePasswordAuthFailure:
		return "Authentication failed."
	case CodePasswordAuthIdentityNotFound, CodeTokenRequestIdentityNotFound:
		return fmt.Sprintf("The %s provided didn't identify any %s.", l.IdentityField, l.ItemPlural)
	case CodePasswordAuthSecretNotSet:
		return fmt.Sprintf("The %s identified has no %s set so can not be authenticated.", l.ItemSingular, l.SecretField)
	case CodePasswordAuthMultipleIdentityMatches, CodeTokenRequestMultipleIdentityMatches:
		return fmt.Sprintf("The %s provided identified more than one %s.", l.IdentityField, l.ItemSingular)
	case CodePasswordAuthSecretMismatch:
		return fmt.Sprintf("The %s provided is incorrect.", l.SecretField)
	case CodeTokenRedemptionInvalidToken:
		return "The auth token provided is invalid."
	case CodeTokenRedemptionTokenExpired:
		return "The auth token provided has expired."
	case CodeTokenRedemptionTokenRedeemed:
		return "Auth tokens are single use and the auth token provided has already been redeemed."
	case CodeTokenInternalError:
		return "An unexpected error condition was encountered while creating or redeeming an auth token."
	case CodeCustomError:
		return "A custom error occurred."
	default:
		return "An unexpected error occurred."
	}
}
