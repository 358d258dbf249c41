package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/heavy/internal/agent"
	"github.com/ShayCichocki/heavy/internal/llm"
	"github.com/ShayCichocki/heavy/internal/observer"
)

// timedOutMessage is the response recorded for agents cut off by the deadline.
const timedOutMessage = "timed out"

// AgentOutcome is the result of one dispatched agent.
type AgentOutcome struct {
	Index    int
	Question string
	// Status is observer.StatusCompleted or observer.StatusFailed.
	Status observer.Status
	// Response is the agent's answer, or the error message when it failed.
	Response string
	Duration time.Duration

	err      error
	timedOut bool
}

// Succeeded reports whether the agent completed.
func (a AgentOutcome) Succeeded() bool {
	return a.Status == observer.StatusCompleted
}

// Err returns the error that failed the agent, if any.
func (a AgentOutcome) Err() error {
	return a.err
}

// AgentID names the agent that handles sub-question i.
func AgentID(i int) string {
	return fmt.Sprintf("agent-%d", i)
}

// collector stores outcomes by index as agents finish.
type collector struct {
	mu       sync.Mutex
	outcomes []AgentOutcome
	done     []bool
}

func newCollector(n int) *collector {
	return &collector{outcomes: make([]AgentOutcome, n), done: make([]bool, n)}
}

func (c *collector) put(out AgentOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes[out.Index] = out
	c.done[out.Index] = true
}

func (c *collector) snapshot() ([]AgentOutcome, []bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]AgentOutcome(nil), c.outcomes...), append([]bool(nil), c.done...)
}

// Dispatch runs one agent per question concurrently and returns their
// outcomes with outcomes[i] answering questions[i]. A failing or panicking
// agent becomes a failed outcome. The task timeout bounds only the wait:
// agents still running when it passes are abandoned rather than cancelled,
// and nothing they report afterwards reaches the observer. Dispatch then
// fails with a timeout Error, or, with partial mode enabled, returns the
// finished outcomes plus "timed out" failures for the rest.
func (o *Orchestrator) Dispatch(ctx context.Context, questions []string) ([]AgentOutcome, error) {
	n := len(questions)
	if n == 0 {
		return nil, nil
	}
	for i := range questions {
		o.observer.CreateAgent(AgentID(i), o.maxIterations)
	}

	limit := o.maxConcurrency
	if limit <= 0 || limit > n {
		limit = n
	}

	gate := newAgentGate(o.observer)
	expired := make(chan struct{})
	stopped := func() bool {
		select {
		case <-expired:
			return true
		default:
			return ctx.Err() != nil
		}
	}

	results := newCollector(n)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		var g errgroup.Group
		g.SetLimit(limit)
		for i, q := range questions {
			if stopped() {
				break
			}
			g.Go(func() error {
				if stopped() {
					return nil
				}
				results.put(o.runAgent(ctx, gate, i, q))
				return nil
			})
		}
		_ = g.Wait()
	}()

	timer := time.NewTimer(o.taskTimeout)
	defer timer.Stop()
	select {
	case <-finished:
	case <-timer.C:
		close(expired)
	case <-ctx.Done():
	}

	outcomes, done := results.snapshot()
	var pending []int
	for i := range outcomes {
		if !done[i] || outcomes[i].timedOut {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return outcomes, nil
	}
	for _, i := range pending {
		gate.abandon(AgentID(i))
	}

	if err := ctx.Err(); err != nil {
		return nil, &Error{Reason: ReasonCancelled, Err: err}
	}
	if !o.partialOnTimeout {
		o.log.Warn().Int("unfinished", len(pending)).Dur("timeout", o.taskTimeout).Msg("dispatch deadline exceeded")
		for _, i := range pending {
			o.observer.MarkFailed(AgentID(i), timedOutMessage)
		}
		return nil, &Error{Reason: ReasonTimeout, Err: fmt.Errorf("%d of %d agents unfinished after %s: %w", len(pending), n, o.taskTimeout, context.DeadlineExceeded)}
	}

	o.log.Warn().Int("unfinished", len(pending)).Msg("dispatch deadline exceeded, continuing with partial results")
	for _, i := range pending {
		outcomes[i] = AgentOutcome{
			Index:    i,
			Question: questions[i],
			Status:   observer.StatusFailed,
			Response: timedOutMessage,
			Duration: o.taskTimeout,
			err:      context.DeadlineExceeded,
			timedOut: true,
		}
		o.observer.MarkFailed(AgentID(i), timedOutMessage)
	}
	return outcomes, nil
}

// runAgent runs one agent to completion and converts every way it can
// end, panics included, into an outcome.
func (o *Orchestrator) runAgent(ctx context.Context, obs observer.Observer, index int, question string) (out AgentOutcome) {
	id := AgentID(index)
	start := time.Now()
	out = AgentOutcome{Index: index, Question: question}
	log := o.log.With().Str("agent_id", id).Logger()

	defer func() {
		if p := recover(); p != nil {
			out.Status = observer.StatusFailed
			out.Response = fmt.Sprintf("agent panicked: %v", p)
			out.err = errors.New(out.Response)
			log.Error().Interface("panic", p).Msg("agent panicked")
			obs.MarkFailed(id, out.Response)
		}
		out.Duration = time.Since(start)
	}()

	obs.UpdateStatus(id, observer.StatusRunning, "Processing: "+question)
	loop := agent.New(o.gateway, o.newTools(),
		agent.WithID(id),
		agent.WithModel(o.model),
		agent.WithSystemPrompt(o.systemPrompt),
		agent.WithMaxIterations(o.maxIterations),
		agent.WithMaxTokens(o.maxTokens),
		agent.WithObserver(obs),
		agent.WithLogger(o.baseLog),
	)

	text, err := loop.Run(ctx, question)
	if err != nil {
		out.Status = observer.StatusFailed
		out.Response = err.Error()
		out.err = err
		out.timedOut = ctx.Err() != nil
		log.Warn().Err(err).Msg("agent failed")
		return out
	}
	out.Status = observer.StatusCompleted
	out.Response = text
	log.Debug().Dur("took", time.Since(start)).Msg("agent completed")
	return out
}

// unauthorizedErr returns the gateway's unauthorized error when every
// agent failed on it, since no retry or synthesis can help then.
func unauthorizedErr(outcomes []AgentOutcome) error {
	var first error
	for _, out := range outcomes {
		if out.Succeeded() || !llm.IsUnauthorized(out.err) {
			return nil
		}
		if first == nil {
			first = out.err
		}
	}
	return first
}
