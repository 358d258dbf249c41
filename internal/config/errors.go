package config

import "fmt"

// ErrorCode identifies configuration failures in user-facing output.
const ErrorCode = "CONFIG_ERROR"

// ConfigurationError reports a missing, malformed or invalid setting.
type ConfigurationError struct {
	Key     string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	msg := e.Message
	if e.Key != "" {
		msg = fmt.Sprintf("%s: %s", e.Key, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Code returns ErrorCode.
func (*ConfigurationError) Code() string { return ErrorCode }
