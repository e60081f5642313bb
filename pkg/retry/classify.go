package retry

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strings"
)

var transientFragments = []string{
	"rate limit",
	"rate_limit",
	"ratelimit",
	"too many requests",
	"timeout",
	"timed out",
	"network",
	"connection reset",
	"connection refused",
	"connection closed",
	"broken pipe",
	"econnreset",
	"econnrefused",
	"etimedout",
	"unexpected eof",
	"no such host",
	"overloaded",
	"internal server error",
	"bad gateway",
	"service unavailable",
	"gateway timeout",
}

var statusPattern = regexp.MustCompile(`\b(429|5\d\d)\b`)

// IsRetryable reports whether err looks like a transient failure.
// Context cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if retryable, ok := explicit(err); ok {
		return retryable
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range transientFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return statusPattern.MatchString(msg)
}
