// Package dryrun lets mutating commands print a preview instead of executing.
package dryrun

import (
	"context"
	"fmt"
	"io"
)

type contextKey struct{}

// WithDryRun returns a context with dry-run mode enabled or disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, contextKey{}, enabled)
}

// IsEnabled reports whether dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	enabled, _ := ctx.Value(contextKey{}).(bool)
	return enabled
}

// Preview describes the mutation a command would have performed.
type Preview struct {
	Operation   string
	Resource    string
	Description string
	Details     map[string]any
	Warnings    []string
}

// Write prints the preview in a fixed human-readable layout.
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "\n[DRY-RUN] Would %s %s\n", p.Operation, p.Resource)
	_, _ = fmt.Fprintln(w, "---------------------------------------")

	if p.Description != "" {
		_, _ = fmt.Fprintf(w, "%s\n\n", p.Description)
	}

	if len(p.Details) > 0 {
		for k, v := range p.Details {
			_, _ = fmt.Fprintf(w, "  %s: %v\n", k, v)
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(p.Warnings) > 0 {
		_, _ = fmt.Fprintln(w, "Warnings:")
		for _, warning := range p.Warnings {
			_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, "---------------------------------------")
	_, _ = fmt.Fprintln(w, "No changes made (dry-run mode)")
}
