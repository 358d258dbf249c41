package agent

import "fmt"

// ErrorCode is the taxonomy code reported for agent failures.
const ErrorCode = "AGENT_ERROR"

// Error reports an agent run that ended without usable output.
type Error struct {
	AgentID    string
	Iterations int
	Message    string
}

func (e *Error) Error() string {
	if e.AgentID == "" {
		return e.Message
	}
	return fmt.Sprintf("agent %s: %s", e.AgentID, e.Message)
}

// Code returns the taxonomy code.
func (e *Error) Code() string { return ErrorCode }

// MaxIterationsMessage is the message used when the iteration budget runs out.
const MaxIterationsMessage = "max iterations reached"
