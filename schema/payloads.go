// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package schema

import "github.com/stratacms/strata-auth/auth"

// AuthenticationResult is the union payload of the password mutation.
// It is either an *AuthenticationSuccess or an *AuthenticationFailure.
type AuthenticationResult interface {
	isAuthenticationResult()
}

// AuthenticationSuccess carries the freshly issued session token and the
// authenticated item.
type AuthenticationSuccess struct {
	SessionToken string
	Item         *auth.Item
}

func (*AuthenticationSuccess) isAuthenticationResult() {}

// AuthenticationFailure carries a stable code and rendered message.
type AuthenticationFailure struct {
	Code    auth.ErrorCode
	Message string
}

func (*AuthenticationFailure) isAuthenticationResult() {}

// TokenFlowResult is the payload of the send/redeem/validate token
// operations that do not issue a session. Both fields are nil on success;
// on a suppressed failure (identity protection) they are nil as well, so
// callers must treat the two identically.
type TokenFlowResult struct {
	Code    *auth.ErrorCode
	Message *string
}

// OK reports whether the result carries no failure detail.
func (r TokenFlowResult) OK() bool { return r.Code == nil }

// RedemptionResult is the union payload of redeemMagicAuthToken. It is
// either a *RedemptionSuccess or a *RedemptionFailure.
type RedemptionResult interface {
	isRedemptionResult()
}

// RedemptionSuccess carries the new session token and the matched item.
type RedemptionSuccess struct {
	SessionToken string
	Item         *auth.Item
}

func (*RedemptionSuccess) isRedemptionResult() {}

// RedemptionFailure carries a stable code and rendered message.
type RedemptionFailure struct {
	Code    auth.ErrorCode
	Message string
}

func (*RedemptionFailure) isRedemptionResult() {}

// AuthenticatedItem is the payload of the authenticatedItem query. ListKey
// doubles as the GraphQL type discriminator.
type AuthenticatedItem struct {
	ListKey string
	Item    *auth.Item
}
