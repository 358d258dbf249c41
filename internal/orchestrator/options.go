package orchestrator

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ShayCichocki/heavy/internal/observer"
	"github.com/ShayCichocki/heavy/internal/tools"
)

// Defaults used when no option overrides them.
const (
	DefaultAgents      = 4
	DefaultTaskTimeout = 300 * time.Second
)

// Option configures an Orchestrator. Use With* functions to create Options.
type Option func(*Orchestrator)

// WithAgents sets how many sub-questions, and so agents, each run uses.
func WithAgents(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.agents = n
		}
	}
}

// WithMaxConcurrency caps how many agents run at once. Zero means all of them.
func WithMaxConcurrency(n int) Option {
	return func(o *Orchestrator) { o.maxConcurrency = n }
}

// WithTaskTimeout sets the single deadline shared by all agents of a run.
func WithTaskTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.taskTimeout = d
		}
	}
}

// WithPartialOnTimeout makes a dispatch deadline synthesize whatever
// finished instead of failing the run. Unfinished agents are reported as
// failed with "timed out".
func WithPartialOnTimeout(b bool) Option {
	return func(o *Orchestrator) { o.partialOnTimeout = b }
}

// WithQuestionPrompt overrides the decomposition template.
func WithQuestionPrompt(tmpl string) Option {
	return func(o *Orchestrator) {
		if tmpl != "" {
			o.questionPrompt = tmpl
		}
	}
}

// WithSynthesisPrompt overrides the synthesis template.
func WithSynthesisPrompt(tmpl string) Option {
	return func(o *Orchestrator) {
		if tmpl != "" {
			o.synthesisPrompt = tmpl
		}
	}
}

// WithModel sets the model id for every call of the run.
func WithModel(model string) Option {
	return func(o *Orchestrator) { o.model = model }
}

// WithSystemPrompt sets the system prompt given to each agent.
func WithSystemPrompt(prompt string) Option {
	return func(o *Orchestrator) { o.systemPrompt = prompt }
}

// WithMaxIterations sets each agent's iteration budget.
func WithMaxIterations(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithMaxTokens caps completion length for every call.
func WithMaxTokens(n int) Option {
	return func(o *Orchestrator) { o.maxTokens = n }
}

// WithTools sets the factory that builds each agent's private registry.
func WithTools(factory func() *tools.Registry) Option {
	return func(o *Orchestrator) {
		if factory != nil {
			o.newTools = factory
		}
	}
}

// WithObserver reports progress to obs.
func WithObserver(obs observer.Observer) Option {
	return func(o *Orchestrator) { o.observer = observer.OrNop(obs) }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}
