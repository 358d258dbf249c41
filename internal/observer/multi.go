package observer

type multi []Observer

// Multi fans every event out to each non-nil observer in order.
func Multi(observers ...Observer) Observer {
	var m multi
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	switch len(m) {
	case 0:
		return Nop{}
	case 1:
		return m[0]
	}
	return m
}

func (m multi) CreateAgent(agentID string, maxIterations int) {
	for _, o := range m {
		o.CreateAgent(agentID, maxIterations)
	}
}

func (m multi) UpdateStatus(agentID string, status Status, detail string) {
	for _, o := range m {
		o.UpdateStatus(agentID, status, detail)
	}
}

func (m multi) UpdateIteration(agentID string, iteration int) {
	for _, o := range m {
		o.UpdateIteration(agentID, iteration)
	}
}

func (m multi) LogToolUsage(agentID, tool string, success bool) {
	for _, o := range m {
		o.LogToolUsage(agentID, tool, success)
	}
}

func (m multi) LogError(agentID, message string) {
	for _, o := range m {
		o.LogError(agentID, message)
	}
}

func (m multi) LogAPICall(agentID string, tokens int64) {
	for _, o := range m {
		o.LogAPICall(agentID, tokens)
	}
}

func (m multi) MarkCompleted(agentID string) {
	for _, o := range m {
		o.MarkCompleted(agentID)
	}
}

func (m multi) MarkFailed(agentID, message string) {
	for _, o := range m {
		o.MarkFailed(agentID, message)
	}
}

func (m multi) UpdatePhase(phase Phase, detail string) {
	for _, o := range m {
		o.UpdatePhase(phase, detail)
	}
}

func (m multi) SetSubQuestions(questions []string) {
	for _, o := range m {
		o.SetSubQuestions(questions)
	}
}

func (m multi) UpdateSynthesisProgress(fraction float64) {
	for _, o := range m {
		o.UpdateSynthesisProgress(fraction)
	}
}
