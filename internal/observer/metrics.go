package observer

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports events as Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	agentRuns         *prometheus.CounterVec
	activeAgents      prometheus.Gauge
	agentDuration     prometheus.Histogram
	agentIterations   prometheus.Histogram
	agentErrors       prometheus.Counter
	toolCalls         *prometheus.CounterVec
	apiCalls          prometheus.Counter
	tokens            prometheus.Counter
	phaseTransitions  *prometheus.CounterVec
	synthesisProgress prometheus.Gauge

	mu      sync.Mutex
	running map[string]agentRun
	now     func() time.Time
}

type agentRun struct {
	start     time.Time
	iteration int
}

// NewMetrics registers the heavy collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		agentRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "heavy_agent_runs_total",
			Help: "Agent runs by terminal status",
		}, []string{"status"}),
		activeAgents: factory.NewGauge(prometheus.GaugeOpts{
			Name: "heavy_active_agents",
			Help: "Agents created and not yet finished",
		}),
		agentDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "heavy_agent_duration_seconds",
			Help:    "Wall time of agent runs",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		agentIterations: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "heavy_agent_iterations",
			Help:    "Iterations used by finished agents",
			Buckets: prometheus.LinearBuckets(1, 1, 20),
		}),
		agentErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "heavy_agent_errors_total",
			Help: "Errors reported by agents",
		}),
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "heavy_tool_calls_total",
			Help: "Tool calls by tool and outcome",
		}, []string{"tool", "outcome"}),
		apiCalls: factory.NewCounter(prometheus.CounterOpts{
			Name: "heavy_api_calls_total",
			Help: "Completed LLM gateway calls",
		}),
		tokens: factory.NewCounter(prometheus.CounterOpts{
			Name: "heavy_tokens_total",
			Help: "Tokens consumed across all gateway calls",
		}),
		phaseTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "heavy_phase_transitions_total",
			Help: "Orchestration phase transitions",
		}, []string{"phase"}),
		synthesisProgress: factory.NewGauge(prometheus.GaugeOpts{
			Name: "heavy_synthesis_progress_ratio",
			Help: "Progress of the current synthesis pass",
		}),
		running: make(map[string]agentRun),
		now:     time.Now,
	}
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the text exposition format,
// for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func (m *Metrics) CreateAgent(agentID string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.running[agentID]; !exists {
		m.activeAgents.Inc()
	}
	m.running[agentID] = agentRun{start: m.now()}
}

func (m *Metrics) UpdateStatus(string, Status, string) {}

func (m *Metrics) UpdateIteration(agentID string, iteration int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if run, ok := m.running[agentID]; ok {
		run.iteration = iteration
		m.running[agentID] = run
	}
}

func (m *Metrics) LogToolUsage(_ string, tool string, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}

func (m *Metrics) LogError(string, string) {
	m.agentErrors.Inc()
}

func (m *Metrics) LogAPICall(_ string, tokens int64) {
	m.apiCalls.Inc()
	if tokens > 0 {
		m.tokens.Add(float64(tokens))
	}
}

func (m *Metrics) MarkCompleted(agentID string) {
	m.finish(agentID, StatusCompleted)
}

func (m *Metrics) MarkFailed(agentID, _ string) {
	m.finish(agentID, StatusFailed)
}

func (m *Metrics) finish(agentID string, status Status) {
	m.mu.Lock()
	run, ok := m.running[agentID]
	delete(m.running, agentID)
	m.mu.Unlock()

	if !ok {
		return
	}
	m.agentRuns.WithLabelValues(string(status)).Inc()
	m.activeAgents.Dec()
	m.agentDuration.Observe(m.now().Sub(run.start).Seconds())
	m.agentIterations.Observe(float64(run.iteration))
}

func (m *Metrics) UpdatePhase(phase Phase, _ string) {
	m.phaseTransitions.WithLabelValues(string(phase)).Inc()
}

func (m *Metrics) SetSubQuestions([]string) {}

func (m *Metrics) UpdateSynthesisProgress(fraction float64) {
	m.synthesisProgress.Set(fraction)
}
