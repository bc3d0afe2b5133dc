// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package auth

import "errors"

// ErrNotFound is returned by ItemStore implementations when a requested item
// does not exist.
var ErrNotFound = errors.New("not found")
