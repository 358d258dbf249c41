package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_Classification(t *testing.T) {
	tests := []struct {
		name         string
		err          *APIError
		unauthorized bool
		timeout      bool
		retryable    bool
	}{
		{"unauthorized", newAPIError(401, errors.New("bad key")), true, false, false},
		{"forbidden", newAPIError(403, errors.New("nope")), true, false, false},
		{"request timeout", newAPIError(408, errors.New("slow")), false, true, true},
		{"deadline", newAPIError(0, context.DeadlineExceeded), false, true, true},
		{"rate limited", newAPIError(429, errors.New("slow down")), false, false, true},
		{"server error", newAPIError(502, errors.New("bad gateway")), false, false, true},
		{"bad request", newAPIError(400, errors.New("invalid")), false, false, false},
		{"transport", newAPIError(0, errors.New("connection reset")), false, false, true},
		{"cancelled", newAPIError(0, context.Canceled), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.IsUnauthorized(); got != tt.unauthorized {
				t.Errorf("IsUnauthorized() = %v, want %v", got, tt.unauthorized)
			}
			if got := tt.err.IsTimeout(); got != tt.timeout {
				t.Errorf("IsTimeout() = %v, want %v", got, tt.timeout)
			}
			if got := tt.err.Retryable(); got != tt.retryable {
				t.Errorf("Retryable() = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestAPIError_UnauthorizedMessage(t *testing.T) {
	err := newAPIError(401, errors.New(`{"error":"raw body"}`))
	if err.Message != unauthorizedMessage {
		t.Errorf("Message = %q, want %q", err.Message, unauthorizedMessage)
	}
	if err.Code() != "API_ERROR" {
		t.Errorf("Code() = %q", err.Code())
	}
}

func TestIsUnauthorized_Wrapped(t *testing.T) {
	err := fmt.Errorf("decompose: %w", newAPIError(401, nil))
	if !IsUnauthorized(err) {
		t.Error("IsUnauthorized should see through wrapping")
	}
	if IsTimeout(err) {
		t.Error("IsTimeout should be false for 401")
	}
	if IsUnauthorized(errors.New("plain")) {
		t.Error("plain errors are not unauthorized")
	}
}
