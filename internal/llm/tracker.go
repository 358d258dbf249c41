package llm

import (
	"context"
	"sync"
)

// TokenTracker tracks token usage across gateway calls. It is shared by
// every agent talking to the same gateway, so all access is locked.
type TokenTracker struct {
	mu        sync.Mutex
	inputTok  int64
	outputTok int64
	calls     int
}

// NewTokenTracker creates a new token tracker.
func NewTokenTracker() *TokenTracker {
	return &TokenTracker{}
}

// Add records token usage from one call.
func (t *TokenTracker) Add(u Usage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputTok += u.InputTokens
	t.outputTok += u.OutputTokens
	t.calls++
}

// Total returns the total input and output tokens tracked.
func (t *TokenTracker) Total() (input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inputTok, t.outputTok
}

// Calls returns the number of calls recorded.
func (t *TokenTracker) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// Reset clears all tracked usage.
func (t *TokenTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputTok = 0
	t.outputTok = 0
	t.calls = 0
}

// Tracked wraps a gateway so every successful completion is added to t.
func Tracked(g Gateway, t *TokenTracker) Gateway {
	return GatewayFunc(func(ctx context.Context, req Request) (*Completion, error) {
		c, err := g.Complete(ctx, req)
		if err == nil && c != nil {
			t.Add(c.Usage)
		}
		return c, err
	})
}
