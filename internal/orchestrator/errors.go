package orchestrator

import "fmt"

// ErrorCode is the taxonomy code reported for orchestration failures.
const ErrorCode = "ORCHESTRATION_ERROR"

// Reasons carried by Error.
const (
	ReasonTimeout         = "timeout"
	ReasonSynthesisFailed = "synthesis failed"
	ReasonUnauthorized    = "unauthorized"
	ReasonCancelled       = "cancelled"
)

// Error is a failure of the whole orchestration. No answer is produced.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("orchestration failed: %s: %v", e.Reason, e.Err)
	}
	return "orchestration failed: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// Code returns the taxonomy code.
func (e *Error) Code() string { return ErrorCode }
