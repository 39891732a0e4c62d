package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/overviewdocs/overview-cli/internal/api"
	"github.com/overviewdocs/overview-cli/internal/cache"
	"github.com/overviewdocs/overview-cli/internal/config"
	"github.com/overviewdocs/overview-cli/internal/dryrun"
	"github.com/overviewdocs/overview-cli/internal/iocontext"
	"github.com/overviewdocs/overview-cli/internal/outfmt"
	"github.com/overviewdocs/overview-cli/internal/resolve"
	"github.com/overviewdocs/overview-cli/internal/urlparse"
	"github.com/overviewdocs/overview-cli/internal/validation"
)

// getJQQuery returns the jq query from --jq or --query flags.
// --jq takes precedence over --query for consistency with gh CLI.
func getJQQuery() string {
	if flags.JQ != "" {
		return flags.JQ
	}
	return flags.Query
}

// getClient creates an API client from stored credentials
func getClient() (*api.Client, error) {
	return newClientFactory().client()
}

// getClientAndDocSet resolves both the client and the document set a command
// should operate on. An explicit argument (ID or pasted URL) wins over the
// configured default.
func getClientAndDocSet(docSetArg string) (*api.Client, int64, error) {
	cfg, err := config.ResolveClientConfig("", "")
	if err != nil {
		return nil, 0, err
	}
	client := newClientFactory().newClient(cfg)

	if strings.TrimSpace(docSetArg) != "" {
		id, err := parseDocSetArg(docSetArg)
		if err != nil {
			return nil, 0, err
		}
		return client, id, nil
	}
	if cfg.DocumentSetID > 0 {
		return client, cfg.DocumentSetID, nil
	}
	return nil, 0, fmt.Errorf("document set is required: pass an ID or URL, set OVERVIEW_DOCSET_ID, or run 'ov docset use <id>'")
}

// newTabWriter creates a tabwriter for text output
func newTabWriter(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func newTabWriterFromCmd(cmd *cobra.Command) *tabwriter.Writer {
	ioStreams := iocontext.GetIO(cmd.Context())
	return newTabWriter(ioStreams.Out)
}

// printJSON outputs data as JSON with optional query/template filtering
func printJSON(cmd *cobra.Command, v any) error {
	ioStreams := iocontext.GetIO(cmd.Context())
	query := outfmt.GetQuery(cmd.Context())
	compact := outfmt.IsCompact(cmd.Context())
	if tmpl := outfmt.GetTemplate(cmd.Context()); tmpl != "" {
		filtered, err := outfmt.ApplyQuery(v, query)
		if err != nil {
			return err
		}
		return outfmt.WriteTemplate(ioStreams.Out, filtered, tmpl)
	}
	if outfmt.IsJSONL(cmd.Context()) {
		return outfmt.WriteJSONL(ioStreams.Out, v, query)
	}
	return outfmt.WriteJSONFiltered(ioStreams.Out, v, query, compact)
}

// printJSONErr writes a JSON value to stderr.
func printJSONErr(cmd *cobra.Command, v any) error {
	ioStreams := iocontext.GetIO(cmd.Context())
	return outfmt.WriteJSON(ioStreams.ErrOut, v)
}

// isJSON checks if the command context wants JSON output
func isJSON(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmd.Context())
}

// printIfNotQuiet prints to stdout only if not in quiet mode
func printIfNotQuiet(cmd *cobra.Command, format string, args ...any) {
	if !flags.Quiet {
		ioStreams := iocontext.GetIO(cmd.Context())
		_, _ = fmt.Fprintf(ioStreams.Out, format, args...)
	}
}

func printAction(cmd *cobra.Command, action, resource string, id any, name string) {
	if flags.Quiet || isJSON(cmd) {
		return
	}

	ioStreams := iocontext.GetIO(cmd.Context())
	message := fmt.Sprintf("%s %s", action, resource)
	if id != nil {
		if value, ok := id.(string); !ok || value != "" {
			message = fmt.Sprintf("%s %v", message, id)
		}
	}
	if name != "" {
		message = fmt.Sprintf("%s: %s", message, name)
	}
	_, _ = fmt.Fprintln(ioStreams.Out, message)
}

// cmdContext returns the command context
func cmdContext(cmd *cobra.Command) context.Context {
	return cmd.Context()
}

func maybeDryRun(cmd *cobra.Command, preview *dryrun.Preview) (bool, error) {
	if !dryrun.IsEnabled(cmd.Context()) {
		return false, nil
	}
	if preview == nil {
		preview = &dryrun.Preview{}
	}
	if isJSON(cmd) {
		payload := map[string]any{
			"dry_run":     true,
			"operation":   preview.Operation,
			"resource":    preview.Resource,
			"description": preview.Description,
			"details":     preview.Details,
			"warnings":    preview.Warnings,
		}
		return true, printJSON(cmd, payload)
	}

	ioStreams := iocontext.GetIO(cmd.Context())
	preview.Write(ioStreams.Out)
	return true, nil
}

// flagChanged returns true if the named flag was explicitly set by the user,
// on the command itself or inherited from the root.
func flagChanged(cmd *cobra.Command, name string) bool {
	return cmd.Flags().Changed(name) || cmd.InheritedFlags().Changed(name)
}

// loadAtValue resolves @- (stdin) and @path (file) inputs, returning plain
// values unchanged.
func loadAtValue(value string) (string, error) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "@") {
		return value, nil
	}
	target := strings.TrimPrefix(value, "@")
	if target == "" {
		return "", fmt.Errorf("invalid @ value: missing path (use @- for stdin)")
	}
	if target == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", target, err)
	}
	return string(data), nil
}

// loadJSONValue loads a JSON payload from an inline string, @path, or @-,
// validates its size, and unmarshals it.
func loadJSONValue(value string) (any, error) {
	raw, err := loadAtValue(value)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateJSONPayload(raw); err != nil {
		return nil, err
	}
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return parsed, nil
}

func isInteractive() bool {
	if flags.NoInput || flags.Yes {
		return false
	}
	if forceInteractive() {
		return true
	}
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func forceInteractive() bool {
	value, ok := os.LookupEnv("OVERVIEW_FORCE_INTERACTIVE")
	if !ok {
		return false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return enabled
}

type confirmOptions struct {
	Prompt              string
	Expected            string
	CancelMessage       string
	Force               bool
	RequireForceForJSON bool
}

func confirmAction(cmd *cobra.Command, opts confirmOptions) (bool, error) {
	if flags.Yes {
		opts.Force = true
	}
	if opts.RequireForceForJSON && isJSON(cmd) && !opts.Force {
		return false, fmt.Errorf("--force flag is required when using --output json")
	}
	if opts.Force {
		return true, nil
	}

	out := cmd.OutOrStdout()
	if opts.Prompt != "" {
		_, _ = fmt.Fprint(out, opts.Prompt)
	}

	ioStreams := iocontext.GetIO(cmd.Context())
	reader := bufio.NewReader(ioStreams.In)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		if opts.CancelMessage != "" {
			_, _ = fmt.Fprintln(out, opts.CancelMessage)
		}
		return false, nil
	}

	response = strings.TrimSpace(strings.ToLower(response))
	expected := strings.TrimSpace(strings.ToLower(opts.Expected))
	if expected == "" {
		expected = "y"
	}
	if response != expected {
		if opts.CancelMessage != "" {
			_, _ = fmt.Fprintln(out, opts.CancelMessage)
		}
		return false, nil
	}

	return true, nil
}

// errAlreadyHandled is a sentinel error indicating the error was already printed to stderr.
// Commands using RunE return this to signal Cobra that an error occurred (for exit code)
// without Cobra printing it again (since SilenceErrors is true on root command).
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() error {
	return errAlreadyHandled
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

// parseDocSetArg accepts a numeric document set ID, a "#123" shorthand, or a
// pasted Overview URL and returns the document set ID.
func parseDocSetArg(input string) (int64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("invalid document set ID: empty input")
	}

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		parsed, err := urlparse.Parse(input)
		if err != nil {
			return 0, fmt.Errorf("invalid document set ID: %w", err)
		}
		return parsed.DocumentSetID, nil
	}

	if prefix, rest, ok := strings.Cut(input, ":"); ok {
		switch strings.ToLower(strings.TrimSpace(prefix)) {
		case "docset", "documentset", "document-set", "ds":
			input = strings.TrimSpace(rest)
		}
	}

	return validation.ParsePositiveID(input, "document set ID")
}

// parseDocumentArg accepts a numeric document ID or a pasted Overview document
// URL. URLs carry the document set too; a bare ID returns setID 0 and the
// caller falls back to the configured default.
func parseDocumentArg(input string) (setID, docID int64, err error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, 0, fmt.Errorf("invalid document ID: empty input")
	}

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		parsed, err := urlparse.Parse(input)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid document ID: %w", err)
		}
		if !parsed.HasDocumentID() {
			return 0, 0, fmt.Errorf("invalid document ID: URL does not contain a document ID")
		}
		return parsed.DocumentSetID, parsed.DocumentID, nil
	}

	if prefix, rest, ok := strings.Cut(input, ":"); ok {
		switch strings.ToLower(strings.TrimSpace(prefix)) {
		case "doc", "docs", "document", "documents":
			input = strings.TrimSpace(rest)
		}
	}

	id, err := validation.ParsePositiveID(input, "document ID")
	if err != nil {
		return 0, 0, err
	}
	return 0, id, nil
}

func resolveCacheDir() string {
	if dir := os.Getenv("OVERVIEW_CACHE_DIR"); dir != "" {
		return dir
	}
	dir, err := cache.DefaultDir()
	if err != nil {
		return ""
	}
	return dir
}

// resolveObjectID resolves a store object identifier to a numeric ID.
// Accepts: numeric ID or object title (fuzzy match, cached).
func resolveObjectID(ctx context.Context, client *api.Client, identifier string) (int64, error) {
	identifier = strings.TrimSpace(identifier)
	if id, err := validation.ParsePositiveID(identifier, "object ID"); err == nil {
		return id, nil
	}

	dir := resolveCacheDir()
	var objects []api.StoreObject

	if dir != "" {
		store := cache.NewStore(dir, "objects", client.BaseURL, 0)
		if store.Get(&objects) {
			if id, err := fuzzyMatchObjects(identifier, objects); err == nil {
				return id, nil
			}
			// Cache might be stale, fall through to API.
		}
	}

	var err error
	objects, err = client.Store().Objects(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list store objects: %w", err)
	}

	if dir != "" {
		store := cache.NewStore(dir, "objects", client.BaseURL, 0)
		store.Put(objects)
	}

	return fuzzyMatchObjects(identifier, objects)
}

func fuzzyMatchObjects(query string, objects []api.StoreObject) (int64, error) {
	items := make([]resolve.Named, len(objects))
	for i := range objects {
		items[i] = resolve.Named{ID: objects[i].ID, Name: objects[i].Title()}
	}

	id, err := resolve.FuzzyMatch(query, items)
	if err == nil {
		return id, nil
	}

	var ae *resolve.AmbiguousError
	if errors.As(err, &ae) {
		var options []string
		for _, m := range ae.Matches {
			options = append(options, fmt.Sprintf("  %d: %s", m.ID, m.Name))
		}
		return 0, fmt.Errorf("multiple objects match %q, specify ID:\n%s", query, strings.Join(options, "\n"))
	}

	matches := resolve.FuzzyMatchAll(query, items, 5)
	if len(matches) == 0 {
		return 0, fmt.Errorf("no store object found matching %q", query)
	}
	var options []string
	for _, m := range matches {
		options = append(options, fmt.Sprintf("  %d: %s", m.ID, m.Name))
	}
	return 0, fmt.Errorf("no store object found matching %q, best matches:\n%s", query, strings.Join(options, "\n"))
}

// fuzzyMatchAllObjects ranks store objects against a query by title.
func fuzzyMatchAllObjects(query string, objects []api.StoreObject, limit int) []resolve.Match {
	items := make([]resolve.Named, len(objects))
	for i := range objects {
		items[i] = resolve.Named{ID: objects[i].ID, Name: objects[i].Title()}
	}
	return resolve.FuzzyMatchAll(query, items, limit)
}

// cacheStoreObjects stores a fresh object listing for later name resolution.
func cacheStoreObjects(dir string, client *api.Client, objects []api.StoreObject) {
	cache.NewStore(dir, "objects", client.BaseURL, 0).Put(objects)
}

// clearObjectCache drops the cached store object listing after a write so
// name resolution never serves a stale title.
func clearObjectCache(client *api.Client) {
	dir := resolveCacheDir()
	if dir == "" {
		return
	}
	cache.NewStore(dir, "objects", client.BaseURL, 0).Clear()
}

// RunE wraps a command function with enhanced error handling
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err != nil {
			if isJSON(cmd) {
				if structured := api.StructuredErrorFromError(err); structured != nil {
					_ = printJSONErr(cmd, structured)
				}
			} else {
				// Print enhanced error to stderr
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), HandleError(err))
			}
			// Return a handled error so tests can still inspect the original message.
			return &handledError{err: err, exitCode: ExitCode(err)}
		}
		return nil
	}
}
