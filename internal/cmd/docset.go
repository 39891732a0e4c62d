package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/overviewdocs/overview-cli/internal/config"
)

func newDocSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docset",
		Aliases: []string{"documentset", "ds"},
		Short:   "Show or change the default document set",
		Long: strings.TrimSpace(`
Manage the default document set used by docs commands.

The default comes from OVERVIEW_DOCSET_ID when exported, otherwise from
the stored profile. 'ov docset use' updates the stored profile.
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			return runDocSetShow(cmd)
		}),
	}

	cmd.AddCommand(newDocSetShowCmd())
	cmd.AddCommand(newDocSetUseCmd())
	cmd.AddCommand(newDocSetClearCmd())

	return cmd
}

func newDocSetShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the default document set",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			return runDocSetShow(cmd)
		}),
	}
}

func runDocSetShow(cmd *cobra.Command) error {
	envID := strings.TrimSpace(os.Getenv("OVERVIEW_DOCSET_ID"))

	account, err := config.LoadAccount()
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	if isJSON(cmd) {
		payload := map[string]any{
			"document_set_id": account.DocumentSetID,
			"source":          map[bool]string{true: "env", false: "profile"}[envID != ""],
		}
		if account.DocumentSetID == 0 {
			payload["document_set_id"] = nil
		}
		return printJSON(cmd, payload)
	}

	if account.DocumentSetID == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No default document set.")
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Run 'ov docset use <id>' to set one.")
		return nil
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Default document set: %d\n", account.DocumentSetID)
	if envID != "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "  Source: env (OVERVIEW_DOCSET_ID)")
	}
	return nil
}

func newDocSetUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use <id|url>",
		Aliases: []string{"set"},
		Short:   "Set the default document set",
		Args:    cobra.ExactArgs(1),
		Example: strings.TrimSpace(`
  # By ID
  ov docset use 123

  # Paste an Overview URL
  ov docset use https://www.overviewdocs.com/documentsets/123
`),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := parseDocSetArg(args[0])
			if err != nil {
				return err
			}

			if err := config.SetDefaultDocumentSet(id); err != nil {
				return fmt.Errorf("failed to save default document set: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"document_set_id": id})
			}
			printIfNotQuiet(cmd, "Default document set is now %d\n", id)
			return nil
		}),
	}
}

func newDocSetClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the default document set",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if err := config.SetDefaultDocumentSet(0); err != nil {
				return fmt.Errorf("failed to clear default document set: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"document_set_id": nil})
			}
			printIfNotQuiet(cmd, "Default document set cleared\n")
			return nil
		}),
	}
}
