package api

import (
	"errors"
	"fmt"
	"strings"
)

// PreconditionError reports that the addressing state required by an
// action has not been selected (document set, document, store mode, or
// store object). It is raised before any transport call; callers recover
// by reselecting and retrying.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// ConfigurationError reports that no executor was available, neither from
// construction nor per call. It indicates misuse at the call site.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "client misconfigured: " + e.Reason
}

// IsPrecondition checks if the error is a PreconditionError.
func IsPrecondition(err error) bool {
	var e *PreconditionError
	return errors.As(err, &e)
}

// IsConfiguration checks if the error is a ConfigurationError.
func IsConfiguration(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// APIError represents a non-2xx response surfaced by the typed layer.
// The core dispatch never produces one; it returns executor responses
// verbatim regardless of status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

func newAPIError(resp *Response) *APIError {
	return &APIError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(resp.Body)),
	}
}

// IsNotFoundError checks if the error indicates a resource was not found.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404 ||
			strings.Contains(strings.ToLower(apiErr.Body), "not found")
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
