package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Request is a fully built API request descriptor. The client constructs
// one per action call and hands it to an Executor; it never performs
// network I/O itself.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    any // marshaled to JSON by the executor when non-nil
}

// Response is what an Executor returns. The client passes it back to the
// caller unmodified: no status checks, no parsing, no retries.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Executor performs the actual transport for a built request. It owns all
// response handling, including streaming semantics for stream=true
// document queries, timeouts, and cancellation.
type Executor interface {
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req *Request) (*Response, error)

func (f ExecutorFunc) Execute(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// HTTPExecutor is the default Executor, backed by net/http. It buffers
// response bodies; callers that need incremental consumption of streamed
// document queries should supply their own Executor.
type HTTPExecutor struct {
	HTTP      *http.Client
	UserAgent string
}

// NewHTTPExecutor creates an HTTPExecutor with a TLS 1.2+ transport and
// the given request timeout (DefaultTimeout when zero).
func NewHTTPExecutor(timeout time.Duration) *HTTPExecutor {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPExecutor{
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (e *HTTPExecutor) Execute(ctx context.Context, req *Request) (*Response, error) {
	var reader io.Reader
	if req.Body != nil {
		jsonBody, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if e.UserAgent != "" {
		httpReq.Header.Set("User-Agent", e.UserAgent)
	}

	client := e.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
