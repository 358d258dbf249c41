package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func fastPolicy(retries int) RetryPolicy {
	return RetryPolicy{MaxRetries: retries, InitialDelay: time.Millisecond, Multiplier: 1, MaxDelay: time.Millisecond}
}

func TestRetryGateway_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	inner := GatewayFunc(func(ctx context.Context, req Request) (*Completion, error) {
		if calls.Add(1) < 3 {
			return nil, newAPIError(503, errors.New("unavailable"))
		}
		return &Completion{Content: "ok"}, nil
	})

	g := NewRetryGateway(inner, fastPolicy(3), zerolog.Nop())
	c, err := g.Complete(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if c.Content != "ok" {
		t.Errorf("Content = %q, want ok", c.Content)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestRetryGateway_UnauthorizedIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	inner := GatewayFunc(func(ctx context.Context, req Request) (*Completion, error) {
		calls.Add(1)
		return nil, newAPIError(401, errors.New("bad key"))
	})

	g := NewRetryGateway(inner, fastPolicy(3), zerolog.Nop())
	_, err := g.Complete(context.Background(), Request{})
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestRetryGateway_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	inner := GatewayFunc(func(ctx context.Context, req Request) (*Completion, error) {
		calls.Add(1)
		return nil, newAPIError(500, errors.New("boom"))
	})

	g := NewRetryGateway(inner, fastPolicy(2), zerolog.Nop())
	_, err := g.Complete(context.Background(), Request{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 500 {
		t.Fatalf("expected status 500 APIError, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3 (1 + 2 retries)", calls.Load())
	}
}

func TestRetryGateway_NonAPIErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	inner := GatewayFunc(func(ctx context.Context, req Request) (*Completion, error) {
		calls.Add(1)
		return nil, errors.New("unsupported message role")
	})

	g := NewRetryGateway(inner, fastPolicy(3), zerolog.Nop())
	if _, err := g.Complete(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}
