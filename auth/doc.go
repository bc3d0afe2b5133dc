// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

// Package auth implements password and token authentication for a single
// identity list of a Strata project.
//
// # Components
//
//   - Authenticator - resolves an identity/secret pair to a matched item or a
//     classified failure code
//   - TokenIssuer - issues, validates, and redeems single-use opaque tokens
//     for the password-reset and magic-auth flows
//   - Message - renders a stable ErrorCode into a human-readable string using
//     the list's field and item labels
//
// Expected failures (wrong password, unknown identity, spent token) are
// returned as result values carrying an ErrorCode, never as Go errors.
// Errors returned from these components indicate infrastructure faults such
// as a failed storage lookup.
//
// The package does not own storage, secret hashing, or session issuance.
// Those are consumed through the ItemStore, SecretHasher, and SessionStrategy
// interfaces so a host can bring its own list backend.
package auth
