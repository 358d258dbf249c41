// Package agent runs one tool-augmented conversation with a language
// model until the model calls the completion tool or the iteration
// budget runs out.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ShayCichocki/heavy/internal/llm"
	"github.com/ShayCichocki/heavy/internal/observer"
	"github.com/ShayCichocki/heavy/internal/tools"
)

// DefaultMaxIterations bounds a run when no option overrides it.
const DefaultMaxIterations = 10

// Loop holds the configuration for agent runs. A Loop may be reused, and
// every Run owns a private conversation.
type Loop struct {
	gateway       llm.Gateway
	registry      *tools.Registry
	id            string
	model         string
	systemPrompt  string
	maxIterations int
	maxTokens     int
	observer      observer.Observer
	log           zerolog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithID sets the agent id reported to the observer and logs.
func WithID(id string) Option {
	return func(l *Loop) { l.id = id }
}

// WithModel sets the model id sent with each request.
func WithModel(model string) Option {
	return func(l *Loop) { l.model = model }
}

// WithSystemPrompt sets the system message that opens the conversation.
func WithSystemPrompt(prompt string) Option {
	return func(l *Loop) { l.systemPrompt = prompt }
}

// WithMaxIterations bounds the number of gateway calls per run.
func WithMaxIterations(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxIterations = n
		}
	}
}

// WithMaxTokens caps the completion length per call.
func WithMaxTokens(n int) Option {
	return func(l *Loop) { l.maxTokens = n }
}

// WithObserver reports progress to o.
func WithObserver(o observer.Observer) Option {
	return func(l *Loop) { l.observer = observer.OrNop(o) }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// New creates a Loop that talks to gateway and executes tools from registry.
func New(gateway llm.Gateway, registry *tools.Registry, opts ...Option) *Loop {
	l := &Loop{
		gateway:       gateway,
		registry:      registry,
		id:            "agent",
		maxIterations: DefaultMaxIterations,
		observer:      observer.Nop{},
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.registry == nil {
		l.registry = tools.NewRegistry()
	}
	l.log = l.log.With().Str("component", "agent").Str("agent_id", l.id).Logger()
	return l
}

// ID returns the agent id.
func (l *Loop) ID() string { return l.id }

// MaxIterations returns the iteration budget.
func (l *Loop) MaxIterations() int { return l.maxIterations }

// Run converses until the completion tool is called and returns every
// piece of assistant text joined by blank lines. If the budget runs out,
// whatever text was produced is returned; with none, Run fails with *Error.
// Gateway errors end the run immediately.
func (l *Loop) Run(ctx context.Context, input string) (string, error) {
	messages := make([]llm.Message, 0, 2+2*l.maxIterations)
	if l.systemPrompt != "" {
		messages = append(messages, llm.SystemMessage(l.systemPrompt))
	}
	messages = append(messages, llm.UserMessage(input))

	var captured []string
	schemas := l.registry.Schemas()
	start := time.Now()

	for i := 1; i <= l.maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return l.finish("", err)
		}

		l.observer.UpdateIteration(l.id, i)
		l.observer.UpdateStatus(l.id, observer.StatusRunning, fmt.Sprintf("Iteration %d/%d", i, l.maxIterations))

		resp, err := l.gateway.Complete(ctx, llm.Request{
			Model:     l.model,
			Messages:  messages,
			Tools:     schemas,
			MaxTokens: l.maxTokens,
		})
		if err != nil {
			l.observer.LogError(l.id, fmt.Sprintf("API call failed: %v", err))
			l.log.Warn().Err(err).Int("iteration", i).Msg("gateway call failed")
			return l.finish("", err)
		}
		l.observer.LogAPICall(l.id, resp.Usage.Total())

		messages = append(messages, llm.AssistantMessage(resp))
		if resp.Content != "" {
			captured = append(captured, resp.Content)
		}

		if call, ok := completionCall(resp.ToolCalls); ok {
			res := l.registry.Execute(ctx, call.Name, call.Arguments)
			l.observer.LogToolUsage(l.id, call.Name, res.OK())
			l.log.Debug().Int("iteration", i).Dur("elapsed", time.Since(start)).Msg("task marked complete")
			return l.finish(strings.Join(captured, "\n\n"), nil)
		}

		if !resp.HasToolCalls() {
			continue
		}
		for _, call := range resp.ToolCalls {
			callStart := time.Now()
			res := l.registry.Execute(ctx, call.Name, call.Arguments)
			l.observer.LogToolUsage(l.id, call.Name, res.OK())
			ev := l.log.Debug()
			if !res.OK() {
				ev = l.log.Warn().Str("error", res.Err.Message)
			}
			ev.Str("tool", call.Name).Dur("took", time.Since(callStart)).Msg("tool executed")
			messages = append(messages, llm.ToolMessage(call.ID, call.Name, res.Content()))
		}
	}

	if len(captured) > 0 {
		l.log.Info().Int("iterations", l.maxIterations).Msg("iteration budget exhausted, returning partial content")
		return l.finish(strings.Join(captured, "\n\n"), nil)
	}
	return l.finish("", &Error{AgentID: l.id, Iterations: l.maxIterations, Message: MaxIterationsMessage})
}

// finish reports the terminal status to the observer.
func (l *Loop) finish(answer string, err error) (string, error) {
	if err != nil {
		l.observer.MarkFailed(l.id, err.Error())
		return "", err
	}
	l.observer.MarkCompleted(l.id)
	return answer, nil
}

func completionCall(calls []llm.ToolCall) (llm.ToolCall, bool) {
	for _, c := range calls {
		if c.Name == tools.CompletionToolName {
			return c, true
		}
	}
	return llm.ToolCall{}, false
}
