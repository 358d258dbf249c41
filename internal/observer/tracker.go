package observer

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTimelineSize is how many recent events a Tracker keeps.
const DefaultTimelineSize = 10

// Level marks a timeline event as informational or an error.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

// AgentMetrics is the tracked state of one agent.
type AgentMetrics struct {
	ID            string
	Status        Status
	CurrentTask   string
	Iteration     int
	MaxIterations int
	ToolsUsed     []string
	ToolFailures  int
	APICalls      int
	Tokens        int64
	Errors        []string
	StartTime     time.Time
	EndTime       time.Time
}

// Elapsed returns the agent's run time, up to now if it is still running.
func (a AgentMetrics) Elapsed(now time.Time) time.Duration {
	if !a.EndTime.IsZero() {
		return a.EndTime.Sub(a.StartTime)
	}
	return now.Sub(a.StartTime)
}

// Done reports whether the agent reached a terminal status.
func (a AgentMetrics) Done() bool {
	return a.Status == StatusCompleted || a.Status == StatusFailed
}

// OrchestrationMetrics is the tracked state of the run as a whole.
type OrchestrationMetrics struct {
	Phase             Phase
	Detail            string
	SubQuestions      []string
	Completed         int
	Failed            int
	SynthesisProgress float64
	StartTime         time.Time
}

// Event is one timeline entry.
type Event struct {
	Time    time.Time
	Level   Level
	Title   string
	Details string
}

// Snapshot is a deep copy of a Tracker's state.
type Snapshot struct {
	Orchestration OrchestrationMetrics
	// Agents are listed in creation order.
	Agents   []AgentMetrics
	Timeline []Event
	Taken    time.Time
}

// Tracker records agent and orchestration metrics plus a bounded
// timeline for the dashboard.
type Tracker struct {
	mu           sync.Mutex
	agents       map[string]*AgentMetrics
	order        []string
	orch         OrchestrationMetrics
	timeline     []Event
	timelineSize int
	now          func() time.Time
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithTimelineSize bounds the number of retained timeline events.
func WithTimelineSize(n int) TrackerOption {
	return func(t *Tracker) {
		if n > 0 {
			t.timelineSize = n
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker creates an empty Tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		agents:       make(map[string]*AgentMetrics),
		timelineSize: DefaultTimelineSize,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.orch = OrchestrationMetrics{Phase: PhaseInitializing, StartTime: t.now()}
	return t
}

// record appends to the timeline. Callers hold t.mu.
func (t *Tracker) record(level Level, title, details string) {
	t.timeline = append(t.timeline, Event{Time: t.now(), Level: level, Title: title, Details: details})
	if over := len(t.timeline) - t.timelineSize; over > 0 {
		t.timeline = append(t.timeline[:0:0], t.timeline[over:]...)
	}
}

func (t *Tracker) CreateAgent(agentID string, maxIterations int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.agents[agentID]; !exists {
		t.order = append(t.order, agentID)
	}
	t.agents[agentID] = &AgentMetrics{
		ID:            agentID,
		Status:        StatusInitializing,
		CurrentTask:   "Starting...",
		MaxIterations: maxIterations,
		StartTime:     t.now(),
	}
	t.record(LevelInfo, fmt.Sprintf("Agent %s initialized", agentID), fmt.Sprintf("Max iterations: %d", maxIterations))
}

func (t *Tracker) UpdateStatus(agentID string, status Status, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.agents[agentID]
	if !ok {
		return
	}
	a.Status = status
	if detail != "" {
		a.CurrentTask = detail
	}
	t.record(LevelInfo, fmt.Sprintf("Agent %s status", agentID), fmt.Sprintf("%s: %s", status, detail))
}

func (t *Tracker) UpdateIteration(agentID string, iteration int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if a, ok := t.agents[agentID]; ok {
		a.Iteration = iteration
	}
}

func (t *Tracker) LogToolUsage(agentID, tool string, success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.agents[agentID]
	if !ok {
		return
	}
	a.ToolsUsed = append(a.ToolsUsed, tool)
	title := fmt.Sprintf("Agent %s tool", agentID)
	if success {
		t.record(LevelInfo, title, fmt.Sprintf("Used %s successfully", tool))
		return
	}
	a.ToolFailures++
	t.record(LevelError, title, fmt.Sprintf("Failed to use %s", tool))
}

func (t *Tracker) LogError(agentID, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logErrorLocked(agentID, message)
}

func (t *Tracker) logErrorLocked(agentID, message string) {
	a, ok := t.agents[agentID]
	if !ok {
		return
	}
	a.Errors = append(a.Errors, message)
	t.record(LevelError, fmt.Sprintf("Agent %s error", agentID), message)
}

func (t *Tracker) LogAPICall(agentID string, tokens int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if a, ok := t.agents[agentID]; ok {
		a.APICalls++
		a.Tokens += tokens
	}
}

func (t *Tracker) MarkCompleted(agentID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.agents[agentID]
	if !ok || a.Done() {
		return
	}
	a.Status = StatusCompleted
	a.EndTime = t.now()
	t.orch.Completed++
	t.record(LevelInfo, fmt.Sprintf("Agent %s completed", agentID), fmt.Sprintf("Total completed: %d", t.orch.Completed))
}

func (t *Tracker) MarkFailed(agentID, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.agents[agentID]
	if !ok || a.Done() {
		return
	}
	a.Status = StatusFailed
	a.EndTime = t.now()
	t.orch.Failed++
	t.logErrorLocked(agentID, message)
}

func (t *Tracker) UpdatePhase(phase Phase, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.orch.Phase = phase
	t.orch.Detail = detail
	t.record(LevelInfo, "Orchestrator phase", fmt.Sprintf("%s: %s", phase, detail))
}

func (t *Tracker) SetSubQuestions(questions []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.orch.SubQuestions = append([]string(nil), questions...)
	t.record(LevelInfo, "Questions generated", fmt.Sprintf("Generated %d questions", len(questions)))
}

func (t *Tracker) UpdateSynthesisProgress(fraction float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.orch.SynthesisProgress = min(max(fraction, 0), 1)
}

// Snapshot returns a copy of the current state that is safe to read
// without holding the lock.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		Orchestration: t.orch,
		Agents:        make([]AgentMetrics, 0, len(t.order)),
		Timeline:      append([]Event(nil), t.timeline...),
		Taken:         t.now(),
	}
	s.Orchestration.SubQuestions = append([]string(nil), t.orch.SubQuestions...)
	for _, id := range t.order {
		a := *t.agents[id]
		a.ToolsUsed = append([]string(nil), a.ToolsUsed...)
		a.Errors = append([]string(nil), a.Errors...)
		s.Agents = append(s.Agents, a)
	}
	return s
}
