// Package api is a client for the Overview document-management HTTP API.
//
// The package is built in two layers. The core layer (Client, Ref,
// Executor) constructs request descriptors and delegates transport to an
// injected Executor, returning the executor's response verbatim. The typed
// layer (DocumentsService, StoreService) sits on top and adds JSON
// decoding and HTTP status handling for CLI consumption.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const DefaultTimeout = 30 * time.Second

// apiPrefix is prepended to every action path.
const apiPrefix = "/api/v1"

// Client holds the connection configuration for one Overview server.
// The base URL and credential digest are fixed at construction. Addressing
// state lives in immutable Ref values, so a single Client is safe for
// concurrent use as long as its executor is.
type Client struct {
	BaseURL string

	// credential is base64("<token>:x-auth-token"), computed once.
	credential string

	// executor handles transport when no per-call executor is supplied.
	// May be nil; actions then fail with *ConfigurationError.
	executor Executor
}

// Option configures a Client.
type Option func(*Client)

// WithExecutor sets the default executor used when a Ref carries no
// per-call override.
func WithExecutor(e Executor) Option {
	return func(c *Client) {
		c.executor = e
	}
}

// New creates a client for the given server and API token.
func New(baseURL, apiToken string, opts ...Option) *Client {
	c := &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		credential: base64.StdEncoding.EncodeToString([]byte(apiToken + ":x-auth-token")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dispatch builds the request descriptor for path (joined to
// {BaseURL}/api/v1) and hands it to exec, or to the default executor when
// exec is nil. The Authorization header is always set; Content-Type is set
// only when a body is present. The executor's response is returned
// unmodified.
func (c *Client) Dispatch(ctx context.Context, exec Executor, method, path string, body any) (*Response, error) {
	if exec == nil {
		exec = c.executor
	}
	if exec == nil {
		return nil, &ConfigurationError{Reason: "no executor configured: pass WithExecutor to New or supply one per call"}
	}
	if method == "" {
		method = http.MethodGet
	}

	headers := map[string]string{
		"Authorization": "Basic " + c.credential,
	}
	if body != nil {
		headers["Content-Type"] = "application/json"
	}

	return exec.Execute(ctx, &Request{
		URL:     c.BaseURL + apiPrefix + path,
		Method:  method,
		Headers: headers,
		Body:    body,
	})
}

// decode maps a dispatch result into the typed layer: non-2xx responses
// become *APIError, and the body is unmarshaled into result when non-nil.
func (c *Client) decode(resp *Response, err error, result any) error {
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return newAPIError(resp)
	}
	if result != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return fmt.Errorf("unexpected API response format (JSON decode failed): %w", err)
		}
	}
	return nil
}
