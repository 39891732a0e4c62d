package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/overviewdocs/overview-cli/internal/config"
	"github.com/overviewdocs/overview-cli/internal/validation"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage authentication credentials",
		Long:    "Configure and manage Overview API tokens stored securely in your OS keychain.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthProfilesCmd())
	cmd.AddCommand(newAuthSwitchCmd())

	return cmd
}

// newAuthLoginCmd creates the auth login command
func newAuthLoginCmd() *cobra.Command {
	var (
		server  string
		token   string
		docset  string
		profile string
		envFile string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save API credentials to the keychain",
		Long: strings.TrimSpace(`
Save Overview authentication credentials securely to your OS keychain.

You'll need:
- Server: Your Overview instance URL (e.g. https://www.overviewdocs.com)
- API Token: Generate one from the document set's API tokens page

Optional:
- Document set: A default document set ID for docs commands
- Profile: Save multiple servers/tokens and switch between them
`),
		Example: strings.TrimSpace(`
  # Log in with flags
  ov auth login --server https://www.overviewdocs.com --token YOUR_API_TOKEN

  # Set a default document set at the same time
  ov auth login --server https://www.overviewdocs.com --token YOUR_API_TOKEN --docset 123

  # Save to a named profile
  ov auth login --server https://staging.example.com --token TOKEN --profile staging

  # Load credentials from a .env file
  ov auth login --env-file .env
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if envFile != "" {
				envVars, err := loadAuthEnvFile(envFile)
				if err != nil {
					return err
				}
				applyAuthEnvFileRuntimeVars(envVars)

				if server == "" {
					server = strings.TrimSpace(envVars["OVERVIEW_SERVER"])
				}
				if token == "" {
					token = strings.TrimSpace(envVars["OVERVIEW_API_TOKEN"])
				}
				if docset == "" {
					docset = strings.TrimSpace(envVars["OVERVIEW_DOCSET_ID"])
				}
				if !cmd.Flags().Changed("profile") {
					if envProfile := strings.TrimSpace(envVars["OVERVIEW_PROFILE"]); envProfile != "" {
						profile = envProfile
					}
				}
			}

			if server == "" {
				return fmt.Errorf("--server is required")
			}
			if token == "" {
				return fmt.Errorf("--token is required")
			}

			var docSetID int64
			if docset != "" {
				id, err := parseDocSetArg(docset)
				if err != nil {
					return err
				}
				docSetID = id
			}

			// Normalize URL (remove trailing slash)
			server = strings.TrimSuffix(server, "/")

			// Validate URL to prevent SSRF attacks
			if err := validation.ValidateServerURL(server); err != nil {
				return fmt.Errorf("invalid URL: %w", err)
			}

			account := config.Account{
				Server:        server,
				APIToken:      token,
				DocumentSetID: docSetID,
			}

			if err := config.SaveProfile(profile, account); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Authentication credentials saved successfully!")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Server: %s\n", server)
			if docSetID > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Document set: %d\n", docSetID)
			}
			if profile != "" && profile != "default" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Profile: %s\n", profile)
			}

			return nil
		}),
	}

	cmd.Flags().StringVar(&server, "server", "", "Overview server URL (e.g. https://www.overviewdocs.com)")
	cmd.Flags().StringVar(&token, "token", "", "API token")
	cmd.Flags().StringVar(&docset, "docset", "", "Default document set ID or URL (optional)")
	cmd.Flags().StringVar(&profile, "profile", "default", "Profile name to save credentials under")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load OVERVIEW_* (and optional OV_KEYRING_*) values from a .env file")

	return cmd
}

func loadAuthEnvFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("--env-file requires a file path")
	}

	envVars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read --env-file %q: %w", path, err)
	}

	return envVars, nil
}

// applyAuthEnvFileRuntimeVars copies keyring settings from --env-file into the
// process environment when they are not already exported.
func applyAuthEnvFileRuntimeVars(envVars map[string]string) {
	keys := []string{
		"OV_KEYRING_BACKEND",
		"OV_KEYRING_PASSWORD",
		"OV_CREDENTIALS_DIR",
	}

	for _, key := range keys {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		value := strings.TrimSpace(envVars[key])
		if value == "" {
			continue
		}
		_ = os.Setenv(key, value)
	}
}

// newAuthStatusCmd creates the auth status command
func newAuthStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show current authentication configuration",
		Long:  "Display the currently saved authentication configuration (API token is masked for security).",
		Example: strings.TrimSpace(`
  # Check authentication status
  ov auth status

  # JSON output for scripting
  ov auth status --json
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			envServer := strings.TrimSpace(os.Getenv("OVERVIEW_SERVER"))
			envToken := strings.TrimSpace(os.Getenv("OVERVIEW_API_TOKEN"))
			usingEnv := envServer != "" || envToken != ""

			account, err := config.LoadAccount()
			if err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					if isJSON(cmd) {
						return printJSON(cmd, map[string]any{
							"authenticated": false,
							"message":       "Not authenticated. Run 'ov auth login' to configure credentials.",
						})
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not authenticated.")
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Run 'ov auth login' to configure credentials.")
					return nil
				}
				return fmt.Errorf("failed to load credentials: %w", err)
			}

			var profile string
			if !usingEnv {
				if current, err := config.CurrentProfile(); err == nil {
					profile = current
				}
			}

			if isJSON(cmd) {
				payload := map[string]any{
					"authenticated": true,
					"server":        account.Server,
					"api_token":     maskToken(account.APIToken),
					"source":        map[bool]string{true: "env", false: "keychain"}[usingEnv],
				}
				if account.DocumentSetID > 0 {
					payload["document_set_id"] = account.DocumentSetID
				}
				if profile != "" {
					payload["profile"] = profile
				}
				return printJSON(cmd, payload)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Authenticated")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Server: %s\n", account.Server)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  API Token: %s\n", maskToken(account.APIToken))
			if account.DocumentSetID > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Document set: %d\n", account.DocumentSetID)
			}
			if profile != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Profile: %s\n", profile)
			}
			if usingEnv {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "  Source: env")
			}

			return nil
		}),
	}

	return cmd
}

// newAuthLogoutCmd creates the auth logout command
func newAuthLogoutCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove credentials from keychain",
		Long:  "Delete the stored authentication credentials from your OS keychain.",
		Example: strings.TrimSpace(`
  # Remove stored credentials
  ov auth logout
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if profile == "" {
				current, err := config.CurrentProfile()
				if err == nil {
					profile = current
				}
			}

			if profile == "" && !config.HasAccount() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No credentials found.")
				return nil
			}

			if err := config.DeleteProfile(profile); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}

			if profile == "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Credentials removed successfully.")
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile %s removed successfully.\n", profile)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&profile, "profile", "", "Profile name to remove (defaults to current)")

	return cmd
}

// newAuthProfilesCmd lists stored profiles
func newAuthProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "profiles",
		Aliases: []string{"profile"},
		Short:   "List stored credential profiles",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profiles, err := config.ListProfiles()
			if err != nil {
				return fmt.Errorf("failed to list profiles: %w", err)
			}

			current, _ := config.CurrentProfile()

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"profiles": profiles,
					"current":  current,
				})
			}

			if len(profiles) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No profiles found. Run 'ov auth login' to create one.")
				return nil
			}
			for _, p := range profiles {
				marker := " "
				if p == current {
					marker = "*"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, p)
			}
			return nil
		}),
	}
}

// newAuthSwitchCmd switches the active profile
func newAuthSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <profile>",
		Short: "Switch the active credential profile",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			profile := strings.TrimSpace(args[0])
			if profile == "" {
				return fmt.Errorf("profile name is required")
			}

			// Fail fast if the profile does not exist.
			if _, err := config.LoadProfile(profile); err != nil {
				return fmt.Errorf("profile %q not found: %w", profile, err)
			}

			if err := config.SetCurrentProfile(profile); err != nil {
				return fmt.Errorf("failed to switch profile: %w", err)
			}

			printIfNotQuiet(cmd, "Switched to profile %s\n", profile)
			return nil
		}),
	}
}

// maskToken masks an API token for display, showing only first and last 4 characters
func maskToken(token string) string {
	if len(token) < 8 {
		return strings.Repeat("*", len(token)) // Match actual length
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
