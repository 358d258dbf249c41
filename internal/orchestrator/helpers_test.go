package orchestrator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ShayCichocki/heavy/internal/llm"
	"github.com/ShayCichocki/heavy/internal/tools"
)

// fakeModel routes requests by kind: decomposition, synthesis, or an agent
// working on a specific question.
type fakeModel struct {
	mu             sync.Mutex
	decompose      func() (*llm.Completion, error)
	synthesize     func(prompt string) (*llm.Completion, error)
	agents         map[string]func(ctx context.Context) (*llm.Completion, error)
	synthesisInput string
}

func newFakeModel() *fakeModel {
	return &fakeModel{agents: make(map[string]func(ctx context.Context) (*llm.Completion, error))}
}

func firstUserMessage(req llm.Request) string {
	for _, m := range req.Messages {
		if m.Role == llm.RoleUser {
			return m.Content
		}
	}
	return ""
}

func (f *fakeModel) Complete(ctx context.Context, req llm.Request) (*llm.Completion, error) {
	user := firstUserMessage(req)
	switch {
	case strings.Contains(user, "orchestrator that needs to create"):
		if f.decompose == nil {
			return text("not json"), nil
		}
		return f.decompose()
	case strings.Contains(user, "synthesize their responses"):
		f.mu.Lock()
		f.synthesisInput = user
		f.mu.Unlock()
		if f.synthesize == nil {
			return text("synthesized"), nil
		}
		return f.synthesize(user)
	}

	f.mu.Lock()
	handler, ok := f.agents[user]
	f.mu.Unlock()
	if !ok {
		return finish("default answer for " + user), nil
	}
	return handler(ctx)
}

func (f *fakeModel) SynthesisInput() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.synthesisInput
}

func text(content string) *llm.Completion {
	return &llm.Completion{Content: content}
}

// finish replies with content and the completion tool call.
func finish(content string) *llm.Completion {
	return &llm.Completion{
		Content:   content,
		ToolCalls: []llm.ToolCall{{ID: "done", Name: tools.CompletionToolName, Arguments: `{"summary":"ok"}`}},
	}
}

func after(d time.Duration, c *llm.Completion) func(ctx context.Context) (*llm.Completion, error) {
	return func(ctx context.Context) (*llm.Completion, error) {
		select {
		case <-time.After(d):
			return c, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func newTestOrchestrator(t *testing.T, gw llm.Gateway, opts ...Option) *Orchestrator {
	t.Helper()
	base := []Option{
		WithTools(func() *tools.Registry { return tools.NewRegistry(tools.MarkTaskComplete{}) }),
		WithTaskTimeout(5 * time.Second),
		WithMaxIterations(3),
	}
	return New(gw, append(base, opts...)...)
}
