// Package llmtest provides a scripted llm.Gateway for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/ShayCichocki/heavy/internal/llm"
)

// Step is one scripted reply. When Func is set it is called instead of
// returning Completion/Err, which lets a test block, delay or inspect the
// request.
type Step struct {
	Completion *llm.Completion
	Err        error
	Func       func(ctx context.Context, req llm.Request) (*llm.Completion, error)
}

// Scripted replays steps in order and records every request. Once the
// script is exhausted it repeats Fallback if set, otherwise it fails.
type Scripted struct {
	mu       sync.Mutex
	steps    []Step
	index    int
	requests []llm.Request

	Fallback *Step
}

// New returns a gateway that replies with steps in order.
func New(steps ...Step) *Scripted {
	return &Scripted{steps: steps}
}

// Text is a step replying with plain assistant content.
func Text(content string) Step {
	return Step{Completion: &llm.Completion{Content: content, StopReason: "stop"}}
}

// Calls is a step replying with content plus tool calls.
func Calls(content string, calls ...llm.ToolCall) Step {
	return Step{Completion: &llm.Completion{Content: content, ToolCalls: calls, StopReason: "tool_calls"}}
}

// Fail is a step returning err.
func Fail(err error) Step {
	return Step{Err: err}
}

// Complete implements llm.Gateway.
func (s *Scripted) Complete(ctx context.Context, req llm.Request) (*llm.Completion, error) {
	s.mu.Lock()
	req.Messages = append([]llm.Message(nil), req.Messages...)
	s.requests = append(s.requests, req)
	var step Step
	switch {
	case s.index < len(s.steps):
		step = s.steps[s.index]
		s.index++
	case s.Fallback != nil:
		step = *s.Fallback
	default:
		s.mu.Unlock()
		return nil, fmt.Errorf("llmtest: script exhausted after %d calls", len(s.steps))
	}
	s.mu.Unlock()

	if step.Func != nil {
		return step.Func(ctx, req)
	}
	if step.Err != nil {
		return nil, step.Err
	}
	c := *step.Completion
	return &c, nil
}

// Requests returns a copy of every request received so far.
func (s *Scripted) Requests() []llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.Request(nil), s.requests...)
}

// CallCount returns the number of requests received.
func (s *Scripted) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
