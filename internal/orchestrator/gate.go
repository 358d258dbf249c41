package orchestrator

import (
	"sync"

	"github.com/ShayCichocki/heavy/internal/observer"
)

// agentGate forwards events to an observer until an agent is abandoned.
// After that, the agent's own events are dropped so a late finish cannot
// overwrite the "timed out" state Dispatch reported.
type agentGate struct {
	next observer.Observer

	mu        sync.RWMutex
	abandoned map[string]bool
}

func newAgentGate(next observer.Observer) *agentGate {
	return &agentGate{next: next, abandoned: make(map[string]bool)}
}

func (g *agentGate) abandon(agentID string) {
	g.mu.Lock()
	g.abandoned[agentID] = true
	g.mu.Unlock()
}

// forward runs fn unless agentID was abandoned. The read lock is held
// across fn so abandon waits for events already in flight.
func (g *agentGate) forward(agentID string, fn func()) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.abandoned[agentID] {
		fn()
	}
}

func (g *agentGate) CreateAgent(agentID string, maxIterations int) {
	g.forward(agentID, func() { g.next.CreateAgent(agentID, maxIterations) })
}

func (g *agentGate) UpdateStatus(agentID string, status observer.Status, detail string) {
	g.forward(agentID, func() { g.next.UpdateStatus(agentID, status, detail) })
}

func (g *agentGate) UpdateIteration(agentID string, iteration int) {
	g.forward(agentID, func() { g.next.UpdateIteration(agentID, iteration) })
}

func (g *agentGate) LogToolUsage(agentID, tool string, success bool) {
	g.forward(agentID, func() { g.next.LogToolUsage(agentID, tool, success) })
}

func (g *agentGate) LogError(agentID, message string) {
	g.forward(agentID, func() { g.next.LogError(agentID, message) })
}

func (g *agentGate) LogAPICall(agentID string, tokens int64) {
	g.forward(agentID, func() { g.next.LogAPICall(agentID, tokens) })
}

func (g *agentGate) MarkCompleted(agentID string) {
	g.forward(agentID, func() { g.next.MarkCompleted(agentID) })
}

func (g *agentGate) MarkFailed(agentID, message string) {
	g.forward(agentID, func() { g.next.MarkFailed(agentID, message) })
}

func (g *agentGate) UpdatePhase(phase observer.Phase, detail string) {
	g.next.UpdatePhase(phase, detail)
}

func (g *agentGate) SetSubQuestions(questions []string) {
	g.next.SetSubQuestions(questions)
}

func (g *agentGate) UpdateSynthesisProgress(fraction float64) {
	g.next.UpdateSynthesisProgress(fraction)
}
