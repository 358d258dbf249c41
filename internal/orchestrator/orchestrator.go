package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ShayCichocki/heavy/internal/agent"
	"github.com/ShayCichocki/heavy/internal/llm"
	"github.com/ShayCichocki/heavy/internal/observer"
	"github.com/ShayCichocki/heavy/internal/tools"
)

// Orchestrator runs decompose, dispatch and synthesize for one request at
// a time per call. It holds only configuration, so concurrent calls to
// Orchestrate are independent.
type Orchestrator struct {
	gateway          llm.Gateway
	agents           int
	maxConcurrency   int
	taskTimeout      time.Duration
	partialOnTimeout bool
	questionPrompt   string
	synthesisPrompt  string
	model            string
	systemPrompt     string
	maxIterations    int
	maxTokens        int
	newTools         func() *tools.Registry
	observer         observer.Observer
	log              zerolog.Logger
	baseLog          zerolog.Logger
}

// Result is a finished orchestration.
type Result struct {
	RunID        string
	Answer       string
	SubQuestions []string
	// Outcomes are in sub-question order.
	Outcomes []AgentOutcome
	Duration time.Duration
}

// Completed counts the agents that succeeded.
func (r *Result) Completed() int {
	n := 0
	for _, out := range r.Outcomes {
		if out.Succeeded() {
			n++
		}
	}
	return n
}

// New creates an Orchestrator that sends every call through gateway.
func New(gateway llm.Gateway, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateway:         gateway,
		agents:          DefaultAgents,
		taskTimeout:     DefaultTaskTimeout,
		questionPrompt:  DefaultQuestionPrompt,
		synthesisPrompt: DefaultSynthesisPrompt,
		systemPrompt:    agent.DefaultSystemPrompt,
		maxIterations:   agent.DefaultMaxIterations,
		newTools:        func() *tools.Registry { return tools.Defaults(tools.Options{}) },
		observer:        observer.Nop{},
		log:             zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.baseLog = o.log
	o.log = o.log.With().Str("component", "orchestrator").Logger()
	return o
}

// Agents returns the number of agents per run.
func (o *Orchestrator) Agents() int { return o.agents }

// Orchestrate answers input with the full pipeline. On failure the
// returned Result still carries whatever stages finished, for auditing,
// and err is an *Error.
func (o *Orchestrator) Orchestrate(ctx context.Context, input string) (res *Result, err error) {
	runID := uuid.NewString()
	start := time.Now()
	res = &Result{RunID: runID}

	// Per-run copy so log lines carry the run id.
	run := *o
	run.log = o.log.With().Str("run_id", runID).Logger()

	defer func() {
		res.Duration = time.Since(start)
		if err != nil {
			run.observer.UpdatePhase(observer.PhaseFailed, err.Error())
			run.log.Error().Err(err).Dur("took", res.Duration).Msg("orchestration failed")
			return
		}
		run.observer.UpdatePhase(observer.PhaseCompleted, fmt.Sprintf("Finished in %s", res.Duration.Round(time.Millisecond)))
		run.log.Info().Dur("took", res.Duration).Int("completed", res.Completed()).Int("agents", len(res.Outcomes)).Msg("orchestration finished")
	}()

	run.observer.UpdatePhase(observer.PhaseInitializing, "Starting orchestration")
	run.log.Info().Int("agents", run.agents).Msg("orchestration started")

	run.observer.UpdatePhase(observer.PhaseGeneratingQuestions, fmt.Sprintf("Generating %d questions", run.agents))
	questions, err := run.decompose(ctx, input, run.agents)
	if err != nil {
		if llm.IsUnauthorized(err) {
			return res, &Error{Reason: ReasonUnauthorized, Err: err}
		}
		return res, &Error{Reason: ReasonCancelled, Err: err}
	}
	res.SubQuestions = questions
	run.observer.SetSubQuestions(questions)

	run.observer.UpdatePhase(observer.PhaseRunningAgents, fmt.Sprintf("Running %d agents in parallel", len(questions)))
	outcomes, err := run.Dispatch(ctx, questions)
	if err != nil {
		return res, err
	}
	res.Outcomes = outcomes
	if authErr := unauthorizedErr(outcomes); authErr != nil {
		return res, &Error{Reason: ReasonUnauthorized, Err: authErr}
	}

	run.observer.UpdatePhase(observer.PhaseSynthesizing, fmt.Sprintf("%d of %d agents completed", res.Completed(), len(outcomes)))
	answer, err := run.Synthesize(ctx, outcomes)
	if err != nil {
		return res, err
	}
	res.Answer = answer
	return res, nil
}
