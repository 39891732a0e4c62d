package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/overviewdocs/overview-cli/internal/update"
)

// Build metadata, set via ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newVersionCmd() *cobra.Command {
	var checkUpdate bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if isJSON(cmd) {
				payload := map[string]any{
					"version":    version,
					"commit":     commit,
					"build_date": date,
					"go_version": runtime.Version(),
					"platform":   runtime.GOOS + "/" + runtime.GOARCH,
				}
				if checkUpdate {
					if result := update.CheckForUpdate(cmdContext(cmd), version); result != nil {
						payload["latest_version"] = result.LatestVersion
						payload["update_available"] = result.UpdateAvailable
						if result.UpdateAvailable {
							payload["update_url"] = result.UpdateURL
						}
					}
				}
				return printJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "overview-cli version %s\n", version)
			if commit != "none" {
				_, _ = fmt.Fprintf(out, "  commit: %s\n", commit)
			}
			if date != "unknown" {
				_, _ = fmt.Fprintf(out, "  built: %s\n", date)
			}
			_, _ = fmt.Fprintf(out, "  %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

			if checkUpdate {
				printUpdateNotice(cmd)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&checkUpdate, "check-update", false, "Check for a newer release")

	return cmd
}

// printUpdateNotice writes an update hint to stderr. Failures are silent;
// the check never blocks or fails the command.
func printUpdateNotice(cmd *cobra.Command) {
	result := update.CheckForUpdate(cmdContext(cmd), version)
	if result == nil {
		return
	}

	errOut := cmd.ErrOrStderr()
	if !result.UpdateAvailable {
		_, _ = fmt.Fprintln(errOut, "You are on the latest version.")
		return
	}

	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "A new release of ov is available: %s -> %s\n", result.CurrentVersion, result.LatestVersion)
	if result.UpdateURL != "" {
		_, _ = fmt.Fprintf(&b, "  %s\n", result.UpdateURL)
	}
	_, _ = fmt.Fprint(errOut, b.String())
}
