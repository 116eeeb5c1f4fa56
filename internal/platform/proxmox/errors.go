package proxmox

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// APIError is a non-2xx response from the Proxmox API. The message comes
// from the response body; the Authorization header is never part of it.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("proxmox api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("proxmox api: status %d: %s", e.StatusCode, e.Message)
}

// TimeoutError reports that an operation exceeded its configured bound.
// It is deliberately distinct from APIError so callers can tell a slow
// hypervisor from a rejecting one.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("proxmox %s timed out after %s", e.Op, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// TaskError reports a provider task that finished with a non-OK exit status.
type TaskError struct {
	UPID       string
	ExitStatus string
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("proxmox task %s failed: %s", e.UPID, e.ExitStatus)
}

// IsAuth reports whether the error is an authentication or authorization
// failure. These are fatal: retrying an invalid token cannot succeed.
func IsAuth(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// IsNotFound reports whether the error indicates a missing resource.
// Proxmox reports missing VMs both as 404s and as 500s whose message says
// the config file does not exist.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == http.StatusNotFound {
		return true
	}
	return apiErr.StatusCode == http.StatusInternalServerError &&
		strings.Contains(apiErr.Message, "does not exist")
}

// IsConflict reports whether the error indicates the resource is locked or
// changed underneath the request. Retryable.
func IsConflict(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusConflict {
			return true
		}
		msg := strings.ToLower(apiErr.Message)
		return strings.Contains(msg, "lock") || strings.Contains(msg, "is busy")
	}
	return false
}

// IsTransient reports whether the error is worth retrying: rate limits,
// server-side 5xx (except not-found-in-disguise), and network-level
// failures including timeouts of a single HTTP exchange.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if IsNotFound(err) || IsAuth(err) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500 || IsConflict(err)
	}
	// Operation-level deadlines are reported as TimeoutError, not retried here.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// Low-level transport failures wrapped by net/http.
	msg := err.Error()
	return strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset")
}

// IsTimeout reports whether the error is an operation-level timeout.
func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}
