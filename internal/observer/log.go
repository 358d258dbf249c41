package observer

import "github.com/rs/zerolog"

// LogObserver writes each event as a structured log record.
type LogObserver struct {
	log zerolog.Logger
}

// NewLogObserver returns an observer logging through log.
func NewLogObserver(log zerolog.Logger) *LogObserver {
	return &LogObserver{log: log.With().Str("component", "observer").Logger()}
}

func (o *LogObserver) CreateAgent(agentID string, maxIterations int) {
	o.log.Debug().Str("agent_id", agentID).Int("max_iterations", maxIterations).Msg("agent created")
}

func (o *LogObserver) UpdateStatus(agentID string, status Status, detail string) {
	o.log.Debug().Str("agent_id", agentID).Str("status", string(status)).Str("detail", detail).Msg("agent status")
}

func (o *LogObserver) UpdateIteration(agentID string, iteration int) {
	o.log.Trace().Str("agent_id", agentID).Int("iteration", iteration).Msg("agent iteration")
}

func (o *LogObserver) LogToolUsage(agentID, tool string, success bool) {
	ev := o.log.Info()
	if !success {
		ev = o.log.Warn()
	}
	ev.Str("agent_id", agentID).Str("tool", tool).Bool("success", success).Msg("tool call")
}

func (o *LogObserver) LogError(agentID, message string) {
	o.log.Error().Str("agent_id", agentID).Msg(message)
}

func (o *LogObserver) LogAPICall(agentID string, tokens int64) {
	o.log.Debug().Str("agent_id", agentID).Int64("tokens", tokens).Msg("api call")
}

func (o *LogObserver) MarkCompleted(agentID string) {
	o.log.Info().Str("agent_id", agentID).Msg("agent completed")
}

func (o *LogObserver) MarkFailed(agentID, message string) {
	o.log.Warn().Str("agent_id", agentID).Str("error", message).Msg("agent failed")
}

func (o *LogObserver) UpdatePhase(phase Phase, detail string) {
	o.log.Info().Str("phase", string(phase)).Str("detail", detail).Msg("phase")
}

func (o *LogObserver) SetSubQuestions(questions []string) {
	o.log.Info().Strs("questions", questions).Msg("sub-questions generated")
}

func (o *LogObserver) UpdateSynthesisProgress(fraction float64) {
	o.log.Debug().Float64("progress", fraction).Msg("synthesis progress")
}
