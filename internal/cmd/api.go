package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/overviewdocs/overview-cli/internal/api"
	"github.com/overviewdocs/overview-cli/internal/iocontext"
)

var allowedAPIMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

func newAPICmd() *cobra.Command {
	var (
		method    string
		fields    []string
		rawFields []string
		inputFile string
		bodyData  string
		include   bool
	)

	cmd := &cobra.Command{
		Use:   "api <endpoint>",
		Short: "Make a raw API request to any Overview endpoint",
		Long: strings.TrimSpace(`
Make an authenticated HTTP request to the Overview API.

The endpoint is joined to <server>/api/v1 and may carry a query string.
Request bodies can come from --body, --input, and typed/raw fields;
later sources override earlier keys.
`),
		Args: cobra.ExactArgs(1),
		Example: strings.TrimSpace(`
  # List document IDs
  ov api '/document-sets/123/documents?fields=id'

  # Replace the store state
  ov api /store/state -X PUT -d '{"cursor": 42}'

  # Build a body from fields (-f is a string, -F is raw JSON)
  ov api /store/objects -X POST -f indexedString=interesting -F 'json={"color":"#ff0000"}'

  # Body from a file or stdin
  ov api /store/state -X PUT --input state.json
  echo '{}' | ov api /store/state -X PUT --input -

  # Inspect response headers
  ov api /document-sets/123/documents --include
`),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			method = strings.ToUpper(strings.TrimSpace(method))
			if !allowedAPIMethods[method] {
				return fmt.Errorf("invalid method %q: use GET, POST, PUT, PATCH, or DELETE", method)
			}

			endpoint := strings.TrimSpace(args[0])
			if !strings.HasPrefix(endpoint, "/") {
				endpoint = "/" + endpoint
			}

			body, err := buildRequestBody(bodyData, inputFile, fields, rawFields)
			if err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			resp, err := client.Dispatch(cmdContext(cmd), nil, method, endpoint, body)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}

			if include {
				return printRawResponse(cmd, resp)
			}

			if resp.StatusCode >= 400 {
				return &api.APIError{
					StatusCode: resp.StatusCode,
					Body:       strings.TrimSpace(string(resp.Body)),
				}
			}

			return printResponseBody(cmd, resp.Body)
		}),
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Add a string body field (key=value)")
	cmd.Flags().StringArrayVarP(&rawFields, "raw-field", "F", nil, "Add a raw JSON body field (key=value)")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read the request body from a file (use - for stdin)")
	cmd.Flags().StringVarP(&bodyData, "body", "d", "", "Request body as a JSON string")
	cmd.Flags().BoolVar(&include, "include", false, "Print the response status line and headers")

	return cmd
}

// buildRequestBody merges the body sources. --body is the base, --input is
// layered on top, then -f fields, then -F raw fields.
func buildRequestBody(bodyData, inputFile string, fields, rawFields []string) (any, error) {
	if bodyData == "" && inputFile == "" && len(fields) == 0 && len(rawFields) == 0 {
		return nil, nil
	}

	merged := map[string]any{}

	if bodyData != "" {
		parsed, err := parseJSONBody(bodyData, "--body")
		if err != nil {
			return nil, err
		}
		// A non-object body can only stand alone.
		obj, ok := parsed.(map[string]any)
		if !ok {
			if inputFile != "" || len(fields) > 0 || len(rawFields) > 0 {
				return nil, fmt.Errorf("--body must be a JSON object when combined with --input or fields")
			}
			return parsed, nil
		}
		merged = obj
	}

	if inputFile != "" {
		data, err := readInputFile(inputFile)
		if err != nil {
			return nil, err
		}
		parsed, err := parseJSONBody(string(data), "--input")
		if err != nil {
			return nil, err
		}
		obj, ok := parsed.(map[string]any)
		if !ok {
			if bodyData != "" || len(fields) > 0 || len(rawFields) > 0 {
				return nil, fmt.Errorf("--input must be a JSON object when combined with --body or fields")
			}
			return parsed, nil
		}
		for k, v := range obj {
			merged[k] = v
		}
	}

	for _, field := range fields {
		key, value, err := splitField(field, "--field")
		if err != nil {
			return nil, err
		}
		merged[key] = value
	}

	for _, field := range rawFields {
		key, value, err := splitField(field, "--raw-field")
		if err != nil {
			return nil, err
		}
		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			return nil, fmt.Errorf("invalid JSON in --raw-field %q: %w", key, err)
		}
		merged[key] = parsed
	}

	return merged, nil
}

func parseJSONBody(data, source string) (any, error) {
	var parsed any
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", source, err)
	}
	return parsed, nil
}

func readInputFile(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func splitField(field, flagName string) (string, string, error) {
	key, value, ok := strings.Cut(field, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid %s value %q: expected key=value", flagName, field)
	}
	return key, value, nil
}

// printRawResponse writes the status line, sorted headers, and body.
// Errors are not raised for non-2xx statuses; the caller asked to see them.
func printRawResponse(cmd *cobra.Command, resp *api.Response) error {
	out := iocontext.GetIO(cmd.Context()).Out

	_, _ = fmt.Fprintf(out, "HTTP %d\n", resp.StatusCode)

	keys := make([]string, 0, len(resp.Header))
	for k := range resp.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range resp.Header[k] {
			_, _ = fmt.Fprintf(out, "%s: %s\n", k, v)
		}
	}
	_, _ = fmt.Fprintln(out)

	if len(resp.Body) > 0 {
		_, _ = out.Write(resp.Body)
		if !bytes.HasSuffix(resp.Body, []byte("\n")) {
			_, _ = fmt.Fprintln(out)
		}
	}
	return nil
}

// printResponseBody writes the response body, pretty-printing JSON in text
// mode and routing through the JSON pipeline (jq, templates) otherwise.
func printResponseBody(cmd *cobra.Command, body []byte) error {
	out := iocontext.GetIO(cmd.Context()).Out

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Not JSON; pass it through untouched.
		_, _ = out.Write(body)
		if !bytes.HasSuffix(body, []byte("\n")) {
			_, _ = fmt.Fprintln(out)
		}
		return nil
	}

	if isJSON(cmd) {
		return printJSON(cmd, parsed)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, bytes.TrimSpace(body), "", "  "); err != nil {
		_, _ = out.Write(body)
		_, _ = fmt.Fprintln(out)
		return nil
	}
	_, _ = out.Write(pretty.Bytes())
	_, _ = fmt.Fprintln(out)
	return nil
}
