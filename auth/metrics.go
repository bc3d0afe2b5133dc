// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the authentication and token flows. Outcome labels use the
// wire-stable error codes, or "success".
var (
	passwordAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strata_auth_password_attempts_total",
		Help: "Total password authentication attempts by outcome",
	}, []string{"list", "outcome"})

	tokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strata_auth_tokens_issued_total",
		Help: "Total auth tokens issued by token type",
	}, []string{"list", "type"})

	tokenRedemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strata_auth_token_redemptions_total",
		Help: "Total auth token redemption attempts by token type and outcome",
	}, []string{"list", "type", "outcome"})
)

const outcomeSuccess = "success"

func observeAttempt(list string, code ErrorCode) {
	outcome := outcomeSuccess
	if code != "" {
		outcome = string(code)
	}
	passwordAttempts.WithLabelValues(list, outcome).Inc()
}

func observeRedemption(list string, typ TokenType, code ErrorCode) {
	outcome := outcomeSuccess
	if code != "" {
		outcome = string(code)
	}
	tokenRedemptions.WithLabelValues(list, string(typ), outcome).Inc()
}
