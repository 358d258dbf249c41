package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorCode is the taxonomy code reported for gateway failures.
const ErrorCode = "API_ERROR"

// APIError is a gateway-level failure. StatusCode is zero when the request
// never produced an HTTP response.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	return "api error: " + e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// Code returns the taxonomy code.
func (e *APIError) Code() string { return ErrorCode }

// IsUnauthorized reports whether the credentials were rejected.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsTimeout reports whether the call timed out.
func (e *APIError) IsTimeout() bool {
	if e.StatusCode == http.StatusRequestTimeout || e.StatusCode == http.StatusGatewayTimeout {
		return true
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// Retryable reports whether repeating the same request may succeed.
func (e *APIError) Retryable() bool {
	switch {
	case e.IsUnauthorized():
		return false
	case e.IsTimeout():
		return true
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	case e.StatusCode == 0:
		// Transport failures without a response, but not caller cancellation.
		return !errors.Is(e.Err, context.Canceled)
	}
	return false
}

// IsUnauthorized reports whether err carries an unauthorized APIError.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsUnauthorized()
}

// IsTimeout reports whether err carries a timed-out APIError.
func IsTimeout(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsTimeout()
}

// unauthorizedMessage is shown instead of the provider's raw 401 body.
const unauthorizedMessage = "invalid API key, check provider.api_key in your configuration"

// newAPIError builds an APIError from a status code and cause, normalising
// the message for the distinguished sub-cases.
func newAPIError(status int, err error) *APIError {
	apiErr := &APIError{StatusCode: status, Err: err}
	if err != nil {
		apiErr.Message = err.Error()
	}
	if status == 0 && errors.Is(err, context.DeadlineExceeded) {
		apiErr.StatusCode = http.StatusRequestTimeout
	}
	switch {
	case apiErr.IsUnauthorized():
		apiErr.Message = unauthorizedMessage
	case apiErr.IsTimeout():
		apiErr.Message = "request timed out: " + apiErr.Message
	}
	return apiErr
}
