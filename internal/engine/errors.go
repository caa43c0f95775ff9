package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// APIError is an engine-level rejection: the call reached the engine and
// came back with a non-2xx status. The body is kept for logs but callers
// classify on the status code alone.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is an engine 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// IsConflict reports whether err is an engine 409 (duplicate resource).
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 409
}

// IsAuthError reports whether err is an engine 401/403.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
}

// IsServerError reports whether err is an engine 5xx.
func IsServerError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 500
}

// IsUnreachable reports whether err looks like a transport-level failure
// (refused, reset, DNS, timeout) rather than an engine-level rejection.
func IsUnreachable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "timeout", "timed out", "no such host", "network is unreachable", "broken pipe"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
