// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package session

import "context"

type contextKey struct{}

// WithToken returns a context carrying the client's session token. Transport
// layers call this after extracting the token from a cookie or header.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKey{}, token)
}

// TokenFromContext returns the session token carried by ctx, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(contextKey{}).(string)
	return token, ok && token != ""
}
