package api

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsPrecondition(t *testing.T) {
	err := &PreconditionError{Reason: "no document set selected"}
	if !IsPrecondition(err) {
		t.Error("IsPrecondition(direct) = false")
	}
	if !IsPrecondition(fmt.Errorf("wrapped: %w", err)) {
		t.Error("IsPrecondition(wrapped) = false")
	}
	if IsPrecondition(errors.New("other")) {
		t.Error("IsPrecondition(other) = true")
	}
}

func TestIsConfiguration(t *testing.T) {
	err := &ConfigurationError{Reason: "no executor configured"}
	if !IsConfiguration(err) {
		t.Error("IsConfiguration(direct) = false")
	}
	if IsConfiguration(&PreconditionError{Reason: "x"}) {
		t.Error("IsConfiguration(precondition) = true")
	}
}

func TestStructuredErrorFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{"nil", nil, ""},
		{"precondition", &PreconditionError{Reason: "store not selected"}, ErrPrecondition},
		{"configuration", &ConfigurationError{Reason: "no executor"}, ErrConfiguration},
		{"api 401", &APIError{StatusCode: 401, Body: "unauthorized"}, ErrUnauthorized},
		{"api 500", &APIError{StatusCode: 500, Body: "oops"}, ErrServerError},
		{"generic", errors.New("boom"), ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := StructuredErrorFromError(tt.err)
			if tt.err == nil {
				if se != nil {
					t.Fatalf("expected nil, got %+v", se)
				}
				return
			}
			if se.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", se.Code, tt.wantCode)
			}
		})
	}
}

func TestErrorCodeFromStatus(t *testing.T) {
	cases := map[int]ErrorCode{
		400: ErrBadRequest,
		401: ErrUnauthorized,
		403: ErrForbidden,
		404: ErrNotFound,
		409: ErrConflict,
		422: ErrValidation,
		429: ErrRateLimited,
		500: ErrServerError,
		503: ErrServerError,
		418: ErrUnknown,
	}
	for status, want := range cases {
		if got := ErrorCodeFromStatus(status); got != want {
			t.Errorf("ErrorCodeFromStatus(%d) = %q, want %q", status, got, want)
		}
	}
}

func TestErrorCodeRetryable(t *testing.T) {
	if !ErrRateLimited.IsRetryable() || !ErrServerError.IsRetryable() {
		t.Error("rate limited and server errors should be retryable")
	}
	if ErrPrecondition.IsRetryable() || ErrConfiguration.IsRetryable() {
		t.Error("client-side errors should not be retryable")
	}
}
