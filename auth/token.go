// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"

	"github.com/samber/oops"
)

// TokenLength is the exact length of issued auth tokens.
const TokenLength = 20

// GenerateToken returns a fresh opaque token: TokenLength characters drawn
// from base64-encoded crypto/rand output with the '+', '/', and '=' symbols
// stripped, so the result is alphanumeric and safe in URLs and GraphQL
// string literals. The generator keeps drawing until the target length is
// reached, so the length is guaranteed.
func GenerateToken() (string, error) {
	return generateToken(rand.Reader, TokenLength)
}

func generateToken(r io.Reader, length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	raw := make([]byte, length)
	for b.Len() < length {
		if _, err := io.ReadFull(r, raw); err != nil {
			return "", oops.Code("AUTH_TOKEN_GENERATE_FAILED").
				With("operation", "read random bytes").
				Wrap(err)
		}
		for _, ch := range []byte(base64.StdEncoding.EncodeToString(raw)) {
			if !isAlphanumeric(ch) {
				continue
			}
			b.WriteByte(ch)
			if b.Len() == length {
				break
			}
		}
	}
	return b.String(), nil
}

func isAlphanumeric(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}
