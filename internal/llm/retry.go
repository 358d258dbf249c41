package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// RetryPolicy controls how RetryGateway repeats failed calls.
type RetryPolicy struct {
	// MaxRetries is the number of extra attempts after the first call.
	MaxRetries int
	// InitialDelay is the first backoff interval; later ones grow
	// exponentially by Multiplier.
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
}

// DefaultRetryPolicy mirrors the provider defaults: three retries starting
// at one second and doubling.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   3,
		InitialDelay: time.Second,
		Multiplier:   2,
		MaxDelay:     30 * time.Second,
	}
}

// RetryGateway retries retryable APIErrors with exponential backoff.
// Unauthorized and other client errors are returned after one attempt.
type RetryGateway struct {
	next   Gateway
	policy RetryPolicy
	logger zerolog.Logger
}

// NewRetryGateway wraps next with policy.
func NewRetryGateway(next Gateway, policy RetryPolicy, logger zerolog.Logger) *RetryGateway {
	if policy.Multiplier <= 0 {
		policy.Multiplier = 2
	}
	if policy.InitialDelay <= 0 {
		policy.InitialDelay = time.Second
	}
	return &RetryGateway{
		next:   next,
		policy: policy,
		logger: logger.With().Str("component", "llm").Logger(),
	}
}

// Complete implements Gateway.
func (g *RetryGateway) Complete(ctx context.Context, req Request) (*Completion, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.policy.InitialDelay
	b.Multiplier = g.policy.Multiplier
	b.RandomizationFactor = 0.1
	if g.policy.MaxDelay > 0 {
		b.MaxInterval = g.policy.MaxDelay
	}

	attempt := 0
	op := func() (*Completion, error) {
		attempt++
		c, err := g.next.Complete(ctx, req)
		if err == nil {
			return c, nil
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Retryable() {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(g.policy.MaxRetries+1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			g.logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_retries", g.policy.MaxRetries).
				Dur("backoff", next).
				Msg("retrying failed completion")
		}),
	)
}
