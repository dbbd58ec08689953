package transport

import (
	"errors"
	"fmt"
)

// Sentinel errors for common transport conditions.
var (
	// ErrSendExhausted is returned once a streaming send has been
	// abandoned after the configured number of retries. The client stays
	// in this state until the channel reopens, so queued sends issued
	// after exhaustion fail fast instead of piling up retry timers.
	ErrSendExhausted = errors.New("transport: streaming send abandoned after retries")

	// ErrClosed is returned when operating on a closed client.
	ErrClosed = errors.New("transport: client closed")
)

// CallError represents a failed control-plane call: the endpoint answered
// with a non-success HTTP status, or with a success status whose response
// envelope carries a non-zero firmware code.
type CallError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Code is the non-zero firmware code from the response envelope, if
	// the failure was application level.
	Code int

	// Message is the firmware's msg field for application failures.
	Message string

	// Method and Path identify the call.
	Method string
	Path   string

	// Body is the raw response body, useful for robot-side diagnostics.
	Body string
}

// Error implements the error interface.
func (e *CallError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("transport: %s %s: robot code %d: %s", e.Method, e.Path, e.Code, e.Message)
	}
	if e.Body != "" {
		return fmt.Sprintf("transport: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("transport: %s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// IsRobotError returns true if the firmware rejected the request at the
// application level (HTTP success, non-zero envelope code).
func (e *CallError) IsRobotError() bool {
	return e.Code != 0
}

// IsServerError returns true for robot-side errors (HTTP 5xx).
func (e *CallError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsNotFound returns true if the robot does not expose the path (HTTP 404).
func (e *CallError) IsNotFound() bool {
	return e.StatusCode == 404
}
