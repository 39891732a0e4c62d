package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"

	"github.com/overviewdocs/overview-cli/internal/api"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"help request", pflag.ErrHelp, exitOK},
		{"generic", errors.New("boom"), exitGeneric},
		{"unauthorized", &api.APIError{StatusCode: 401, Body: "nope"}, exitAuth},
		{"forbidden", &api.APIError{StatusCode: 403, Body: "nope"}, exitForbidden},
		{"not found", &api.APIError{StatusCode: 404, Body: "gone"}, exitNotFound},
		{"rate limited", &api.APIError{StatusCode: 429, Body: "slow down"}, exitRateLimited},
		{"server error", &api.APIError{StatusCode: 503, Body: "oops"}, exitServer},
		{"bad request", &api.APIError{StatusCode: 400, Body: "bad"}, exitUsage},
		{"validation", &api.APIError{StatusCode: 422, Body: "invalid"}, exitUsage},
		{"conflict", &api.APIError{StatusCode: 409, Body: "conflict"}, exitUsage},
		{"precondition", &api.PreconditionError{Reason: "no document set selected"}, exitUsage},
		{"configuration", &api.ConfigurationError{Reason: "no executor"}, exitUsage},
		{"wrapped api error", fmt.Errorf("failed: %w", &api.APIError{StatusCode: 404, Body: "x"}), exitNotFound},
		{"unknown command", errors.New(`unknown command "dcos" for "ov"`), exitUsage},
		{"unknown flag", errors.New("unknown flag: --slect"), exitUsage},
		{"required arg", errors.New("document set is required: pass an ID"), exitUsage},
		{"url error", &url.Error{Op: "Get", URL: "https://x", Err: errors.New("dial tcp")}, exitNetwork},
		{"connection refused", errors.New("dial tcp 10.0.0.1:443: connection refused"), exitNetwork},
		{"no such host", errors.New("lookup nope.example: no such host"), exitNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestExitCode_HandledErrorCarriesCode(t *testing.T) {
	inner := &api.APIError{StatusCode: 401, Body: "nope"}
	handled := &handledError{err: inner, exitCode: exitAuth}
	assert.Equal(t, exitAuth, ExitCode(handled))
}

func TestIsNetworkError(t *testing.T) {
	assert.False(t, isNetworkError(nil))
	assert.False(t, isNetworkError(errors.New("boom")))
	assert.True(t, isNetworkError(errors.New("x509: certificate signed by unknown authority")))
	assert.True(t, isNetworkError(errors.New("read tcp: i/o timeout")))
}
