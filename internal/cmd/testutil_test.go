// Test utilities for the ov CLI commands.
//
// Commands are exercised end to end through Execute() against a mock HTTP
// server. The pieces:
//
//   - routeHandler: routes "METHOD /path" to canned responses
//   - setupTestEnvWithHandler: points OVERVIEW_* env vars at the mock server
//   - captureStdout / captureStderr: output capture
//   - jsonResponse: canned JSON response handler
//
// A minimal test:
//
//	handler := newRouteHandler().
//	    On("GET", "/api/v1/document-sets/123/documents", jsonResponse(200, `{"items": [...]}`))
//	setupTestEnvWithHandler(t, handler)
//	output := captureStdout(t, func() {
//	    if err := Execute(context.Background(), []string{"docs", "list"}); err != nil {
//	        t.Fatalf("command failed: %v", err)
//	    }
//	})
//
// Routes match on r.URL.Path only, so query strings (fields=..., stream=true)
// are ignored when routing. Server URL validation only runs at auth login, so
// the httptest server's 127.0.0.1 URL works without any bypass.
package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

// captureStdout executes fn and returns what it wrote to stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// captureStderr executes fn and returns what it wrote to stderr.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	fn()

	_ = w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// testEnv gives tests access to the mock server.
type testEnv struct {
	t      *testing.T
	server *httptest.Server
}

// setupTestEnv creates a mock server answering every request with handler and
// points the CLI environment at it. Use setupTestEnvWithHandler with a
// routeHandler when more than one endpoint is involved.
func setupTestEnv(t *testing.T, handler http.HandlerFunc) *testEnv {
	t.Helper()
	return setupTestEnvWithHandler(t, handler)
}

// setupTestEnvWithHandler creates a mock server and sets up the environment:
//
//   - OVERVIEW_SERVER points at the test server
//   - OVERVIEW_API_TOKEN is "test-token" (env credentials bypass the keychain)
//   - OVERVIEW_DOCSET_ID is "123"
//   - OVERVIEW_OUTPUT is "text" so format assertions are deterministic
//   - OVERVIEW_CACHE_DIR is a temp dir so cached object listings never leak
//     between tests
//
// Everything is restored on test cleanup via t.Setenv.
func setupTestEnvWithHandler(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("OVERVIEW_SERVER", server.URL)
	t.Setenv("OVERVIEW_API_TOKEN", "test-token")
	t.Setenv("OVERVIEW_DOCSET_ID", "123")
	t.Setenv("OVERVIEW_OUTPUT", "text")
	t.Setenv("OVERVIEW_CACHE_DIR", t.TempDir())

	return &testEnv{t: t, server: server}
}

// jsonResponse returns a handler answering with the given status and body.
func jsonResponse(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}

// routeHandler routes requests by exact "METHOD PATH"; unmatched requests get
// a 404. The path is r.URL.Path, so query strings never affect routing.
type routeHandler struct {
	routes map[string]http.HandlerFunc
}

func newRouteHandler() *routeHandler {
	return &routeHandler{routes: make(map[string]http.HandlerFunc)}
}

// On registers a handler for the method and path, returning the routeHandler
// for chaining.
func (rh *routeHandler) On(method, path string, handler http.HandlerFunc) *routeHandler {
	rh.routes[method+" "+path] = handler
	return rh
}

func (rh *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	if handler, ok := rh.routes[key]; ok {
		handler(w, r)
		return
	}
	http.NotFound(w, r)
}

func TestTestInfrastructure(t *testing.T) {
	t.Run("setupTestEnv sets environment variables", func(t *testing.T) {
		env := setupTestEnv(t, jsonResponse(200, `{"status": "ok"}`))

		if os.Getenv("OVERVIEW_SERVER") != env.server.URL {
			t.Error("OVERVIEW_SERVER not set correctly")
		}
		if os.Getenv("OVERVIEW_API_TOKEN") != "test-token" {
			t.Error("OVERVIEW_API_TOKEN not set correctly")
		}
		if os.Getenv("OVERVIEW_DOCSET_ID") != "123" {
			t.Error("OVERVIEW_DOCSET_ID not set correctly")
		}
	})

	t.Run("routeHandler routes requests correctly", func(t *testing.T) {
		handler := newRouteHandler().
			On("GET", "/api/v1/test", jsonResponse(200, `{"method": "get"}`)).
			On("POST", "/api/v1/test", jsonResponse(201, `{"method": "post"}`))

		env := setupTestEnvWithHandler(t, handler)

		resp, err := http.Get(env.server.URL + "/api/v1/test")
		if err != nil {
			t.Fatalf("GET request failed: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Errorf("expected status 200, got %d", resp.StatusCode)
		}

		resp, err = http.Post(env.server.URL+"/api/v1/test", "application/json", nil)
		if err != nil {
			t.Fatalf("POST request failed: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != 201 {
			t.Errorf("expected status 201, got %d", resp.StatusCode)
		}

		resp, err = http.Get(env.server.URL + "/api/v1/unknown")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != 404 {
			t.Errorf("expected status 404 for unknown route, got %d", resp.StatusCode)
		}
	})
}

// decodeItems parses list-command JSON output ({"items": [...]}) and returns
// the items for assertion.
func decodeItems(t *testing.T, output string) []map[string]any {
	t.Helper()
	var wrapper struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal([]byte(output), &wrapper); err != nil {
		t.Fatalf("output is not valid JSON: %v, output: %s", err, output)
	}
	return wrapper.Items
}

// decodeJSONMap parses a single JSON object from command output.
func decodeJSONMap(t *testing.T, output string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(output), &m); err != nil {
		t.Fatalf("output is not valid JSON: %v, output: %s", err, output)
	}
	return m
}
