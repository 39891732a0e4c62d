package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/overviewdocs/overview-cli/internal/dryrun"
)

func newStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Read and write the API token's store",
		Long: strings.TrimSpace(`
Work with the store attached to your API token.

The store holds a single global state document plus individually
addressable objects. Both carry free-form JSON; Overview never interprets
the contents.
`),
	}

	cmd.AddCommand(newStoreStateCmd())
	cmd.AddCommand(newStoreObjectsCmd())

	return cmd
}

func newStoreStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Get or replace the store's global state",
	}

	cmd.AddCommand(newStoreStateGetCmd())
	cmd.AddCommand(newStoreStateSetCmd())

	return cmd
}

func newStoreStateGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the store's global state",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			state, err := client.Store().State(cmdContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to get store state: %w", err)
			}

			return printJSON(cmd, state)
		}),
	}
}

func newStoreStateSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <json|@file|@->",
		Short: "Replace the store's global state",
		Long: strings.TrimSpace(`
Replace the store's global state with the given JSON value.

The previous state is overwritten entirely; there is no merge. Read the
current state first if you need to preserve keys.
`),
		Args: cobra.ExactArgs(1),
		Example: strings.TrimSpace(`
  # Inline JSON
  ov store state set '{"cursor": 42}'

  # From a file or stdin
  ov store state set @state.json
  echo '{"cursor": 42}' | ov store state set @-
`),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			state, err := loadJSONValue(args[0])
			if err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			if isInteractive() {
				ok, err := confirmAction(cmd, confirmOptions{
					Prompt:        "Replace the entire store state? [y/N] ",
					CancelMessage: "Cancelled.",
				})
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			if done, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation:   "replace",
				Resource:    "store state",
				Description: "Replace the store's global state",
				Warnings:    []string{"the previous state is overwritten, not merged"},
			}); done {
				return err
			}

			result, err := client.Store().SetState(cmdContext(cmd), state)
			if err != nil {
				return fmt.Errorf("failed to set store state: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, result)
			}
			printAction(cmd, "Updated", "store state", nil, "")
			return nil
		}),
	}
}

func newStoreObjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "objects",
		Aliases: []string{"obj"},
		Short:   "Manage store objects",
	}

	cmd.AddCommand(newStoreObjectsListCmd())
	cmd.AddCommand(newStoreObjectsGetCmd())
	cmd.AddCommand(newStoreObjectsCreateCmd())
	cmd.AddCommand(newStoreObjectsUpdateCmd())
	cmd.AddCommand(newStoreObjectsFindCmd())

	return cmd
}

func newStoreObjectsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all store objects",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			objects, err := client.Store().Objects(cmdContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list store objects: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, objects)
			}

			if len(objects) == 0 {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No store objects found.")
				return nil
			}

			w := newTabWriterFromCmd(cmd)
			_, _ = fmt.Fprintln(w, "ID\tTITLE\tINDEXED")
			for i := range objects {
				obj := &objects[i]
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", obj.ID, truncate(obj.Title(), 60), obj.IndexedString)
			}
			return w.Flush()
		}),
	}
}

func newStoreObjectsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id|title>",
		Short: "Get a store object by ID or title",
		Args:  cobra.ExactArgs(1),
		Example: strings.TrimSpace(`
  # By ID
  ov store objects get 17

  # By title (fuzzy matched against cached objects)
  ov store objects get "interesting"
`),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			id, err := resolveObjectID(cmdContext(cmd), client, args[0])
			if err != nil {
				return err
			}

			obj, err := client.Store().Object(cmdContext(cmd), id)
			if err != nil {
				return fmt.Errorf("failed to get store object: %w", err)
			}

			return printJSON(cmd, obj)
		}),
	}
}

func newStoreObjectsCreateCmd() *cobra.Command {
	var indexed string

	cmd := &cobra.Command{
		Use:   "create <json|@file|@->",
		Short: "Create a store object",
		Long: strings.TrimSpace(`
Create a store object with the given JSON payload.

The optional --indexed string is what the server indexes the object by;
everything else lives in the free-form payload.
`),
		Args: cobra.ExactArgs(1),
		Example: strings.TrimSpace(`
  # Tag-like object
  ov store objects create '{"title": "interesting", "color": "#ff0000"}' --indexed interesting

  # From a file
  ov store objects create @object.json
`),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			payload, err := loadJSONValue(args[0])
			if err != nil {
				return err
			}

			body := map[string]any{"json": payload}
			if indexed != "" {
				body["indexedString"] = indexed
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			if done, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "create",
				Resource:  "store object",
				Details:   map[string]any{"indexedString": indexed},
			}); done {
				return err
			}

			obj, err := client.Store().CreateObject(cmdContext(cmd), body)
			if err != nil {
				return fmt.Errorf("failed to create store object: %w", err)
			}
			clearObjectCache(client)

			if isJSON(cmd) {
				return printJSON(cmd, obj)
			}
			printAction(cmd, "Created", "store object", obj.ID, obj.Title())
			return nil
		}),
	}

	cmd.Flags().StringVar(&indexed, "indexed", "", "Indexed string for server-side lookup")

	return cmd
}

func newStoreObjectsUpdateCmd() *cobra.Command {
	var indexed string

	cmd := &cobra.Command{
		Use:   "update <id|title> <json|@file|@->",
		Short: "Replace a store object's payload",
		Args:  cobra.ExactArgs(2),
		Example: strings.TrimSpace(`
  # Replace the payload
  ov store objects update 17 '{"title": "renamed"}'
`),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			payload, err := loadJSONValue(args[1])
			if err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			id, err := resolveObjectID(cmdContext(cmd), client, args[0])
			if err != nil {
				return err
			}

			body := map[string]any{"json": payload}
			if indexed != "" {
				body["indexedString"] = indexed
			}

			if done, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "update",
				Resource:  "store object",
				Details:   map[string]any{"id": id},
				Warnings:  []string{"the previous payload is overwritten, not merged"},
			}); done {
				return err
			}

			obj, err := client.Store().UpdateObject(cmdContext(cmd), id, body)
			if err != nil {
				return fmt.Errorf("failed to update store object: %w", err)
			}
			clearObjectCache(client)

			if isJSON(cmd) {
				return printJSON(cmd, obj)
			}
			printAction(cmd, "Updated", "store object", obj.ID, obj.Title())
			return nil
		}),
	}

	cmd.Flags().StringVar(&indexed, "indexed", "", "Indexed string for server-side lookup")

	return cmd
}

func newStoreObjectsFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy-search store objects by title",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			objects, err := client.Store().Objects(cmdContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list store objects: %w", err)
			}

			if dir := resolveCacheDir(); dir != "" {
				// Refresh the name-resolution cache while we have fresh data.
				cacheStoreObjects(dir, client, objects)
			}

			matches := fuzzyMatchAllObjects(args[0], objects, 10)
			if isJSON(cmd) {
				return printJSON(cmd, matches)
			}

			if len(matches) == 0 {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "No store objects match %q.\n", args[0])
				return nil
			}

			w := newTabWriterFromCmd(cmd)
			_, _ = fmt.Fprintln(w, "ID\tTITLE\tSCORE")
			for _, m := range matches {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%d\n", m.ID, m.Name, m.Score)
			}
			return w.Flush()
		}),
	}
}
