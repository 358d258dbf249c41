// Package observer carries progress events out of agents and the
// orchestrator. Every implementation must be safe for concurrent use:
// agents running in parallel report through the same observer.
package observer

// Phase is the orchestration stage.
type Phase string

const (
	PhaseInitializing        Phase = "initializing"
	PhaseGeneratingQuestions Phase = "generating_questions"
	PhaseRunningAgents       Phase = "running_agents"
	PhaseSynthesizing        Phase = "synthesizing"
	PhaseCompleted           Phase = "completed"
	PhaseFailed              Phase = "failed"
)

// Status is the lifecycle state of one agent.
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusRunning      Status = "running"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// Observer receives fire-and-forget progress events. Agent ids are
// caller-chosen strings such as "agent-0".
type Observer interface {
	CreateAgent(agentID string, maxIterations int)
	UpdateStatus(agentID string, status Status, detail string)
	UpdateIteration(agentID string, iteration int)
	LogToolUsage(agentID, tool string, success bool)
	LogError(agentID, message string)
	LogAPICall(agentID string, tokens int64)
	MarkCompleted(agentID string)
	MarkFailed(agentID, message string)

	UpdatePhase(phase Phase, detail string)
	SetSubQuestions(questions []string)
	UpdateSynthesisProgress(fraction float64)
}

// OrNop returns o, or Nop when o is nil.
func OrNop(o Observer) Observer {
	if o == nil {
		return Nop{}
	}
	return o
}
