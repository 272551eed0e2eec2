package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrDaemonNotRunning is returned when the daemon is not running
	ErrDaemonNotRunning = errors.New("daemon not running")

	// ErrPermissionDenied is returned when the user does not have permission to perform the requested action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when 404 is returned from the daemon
	ErrNotFound = errors.New("404 not found")
)

// ResponseError is a non-2xx response from the daemon.
type ResponseError struct {
	StatusCode int
	Body       string
}

// Message returns the error message sent by the daemon, which is a JSON string.
func (e *ResponseError) Message() string {
	var msg string
	if err := json.Unmarshal([]byte(e.Body), &msg); err == nil {
		return msg
	}
	return e.Body
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("got %d: %s", e.StatusCode, e.Message())
}
