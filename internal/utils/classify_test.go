package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/slack-go/slack"
)

func TestIsTransientError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"rate limited", &slack.RateLimitedError{RetryAfter: 30 * time.Second}, true},
		{"wrapped rate limited", fmt.Errorf("history: %w", &slack.RateLimitedError{RetryAfter: time.Second}), true},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"server error", errors.New("slack server error: 503 Service Unavailable"), true},
		{"not in channel", errors.New("not_in_channel"), false},
		{"invalid auth", errors.New("invalid_auth"), false},
		{"missing scope", errors.New("missing_scope"), false},
		{"unknown", errors.New("something odd"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransientError(tt.err); got != tt.expected {
				t.Errorf("IsTransientError(%v) = %v, expected %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestRetryAfter(t *testing.T) {
	err := fmt.Errorf("post: %w", &slack.RateLimitedError{RetryAfter: 42 * time.Second})
	if got := RetryAfter(err); got != 42*time.Second {
		t.Errorf("Expected 42s, got %v", got)
	}

	if got := RetryAfter(errors.New("channel_not_found")); got != 0 {
		t.Errorf("Expected zero delay for non rate limit error, got %v", got)
	}
}
