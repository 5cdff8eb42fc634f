package utils

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

// Error codes the Slack API returns for conditions that will not clear up on their own
var permanentErrors = []string{
	"is_archived",
	"not_in_channel",
	"channel_not_found",
	"cant_invite_self",
	"invalid_auth",
	"not_authed",
	"account_inactive",
	"token_revoked",
	"missing_scope",
	"method_not_supported_for_channel_type",
}

// Substrings that indicate a condition a later run may not hit again
var transientErrors = []string{
	"timeout",
	"connection refused",
	"connection reset",
	"temporary failure",
	"rate limit",
	"too many requests",
	"service unavailable",
	"internal server error",
	"bad gateway",
	"gateway timeout",
	"network is unreachable",
	"ratelimited",
	"rate_limited",
	"429",
	"too_many_requests",
	"fatal_error",
	"internal_error",
}

// IsTransientError checks whether an upstream failure is likely to succeed on a later run.
// Nothing in the bot retries on its own; this only feeds the error report.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}

	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())

	for _, permanentErr := range permanentErrors {
		if strings.Contains(errStr, permanentErr) {
			return false
		}
	}

	for _, transientErr := range transientErrors {
		if strings.Contains(errStr, transientErr) {
			return true
		}
	}

	return false
}

// RetryAfter returns the wait Slack asked for when it rate limited a call, or zero
func RetryAfter(err error) time.Duration {
	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		return rateLimited.RetryAfter
	}
	return 0
}
