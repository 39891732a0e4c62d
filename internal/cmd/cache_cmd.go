package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/overviewdocs/overview-cli/internal/cache"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local cache",
		Long: strings.TrimSpace(`
Manage the local cache used for store object name resolution.

Entries expire on their own; clearing is only needed when a listing looks
stale. Set OVERVIEW_NO_CACHE=1 to disable caching entirely.
`),
	}

	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCachePathCmd())
	cmd.AddCommand(newCacheListCmd())

	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached data",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			dir := resolveCacheDir()
			if dir == "" {
				return fmt.Errorf("could not determine cache directory")
			}

			cache.ClearAll(dir)

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"cleared": true, "path": dir})
			}
			printIfNotQuiet(cmd, "Cache cleared\n")
			return nil
		}),
	}
}

func newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			dir := resolveCacheDir()
			if dir == "" {
				return fmt.Errorf("could not determine cache directory")
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"path": dir})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		}),
	}
}

func newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cache entries with sizes",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			dir := resolveCacheDir()
			if dir == "" {
				return fmt.Errorf("could not determine cache directory")
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				if os.IsNotExist(err) {
					entries = nil
				} else {
					return fmt.Errorf("failed to read cache directory: %w", err)
				}
			}

			type cacheEntry struct {
				Name string `json:"name"`
				Size int64  `json:"size"`
			}
			var files []cacheEntry
			for _, e := range entries {
				if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
					continue
				}
				info, err := e.Info()
				if err != nil {
					continue
				}
				files = append(files, cacheEntry{Name: e.Name(), Size: info.Size()})
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"path": dir, "entries": files})
			}

			if len(files) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cache is empty.")
				return nil
			}

			w := newTabWriterFromCmd(cmd)
			_, _ = fmt.Fprintln(w, "NAME\tSIZE")
			for _, f := range files {
				_, _ = fmt.Fprintf(w, "%s\t%d\n", f.Name, f.Size)
			}
			return w.Flush()
		}),
	}
}
