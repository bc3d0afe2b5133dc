// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

// Package schema exposes the auth flows as a fixed set of named GraphQL
// operations for the host to mount on its schema.
//
// Operation names are bound once at construction from the list key
// (authenticateUserWithPassword, sendUserPasswordResetLink, ...), never
// dispatched by runtime string lookup. Each operation resolves to a typed
// success/failure payload; failure payloads carry a wire-stable ErrorCode and
// a human-readable message rendered from the list's labels.
package schema
