package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/overviewdocs/overview-cli/internal/api"
)

func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"documents", "doc"},
		Short:   "Work with documents in a document set",
		Long: strings.TrimSpace(`
Read documents from an Overview document set.

Commands take an optional document set ID or pasted Overview URL; without
one they use the configured default (ov docset use, OVERVIEW_DOCSET_ID).
`),
	}

	cmd.AddCommand(newDocsIDsCmd())
	cmd.AddCommand(newDocsListCmd())
	cmd.AddCommand(newDocsGetCmd())
	cmd.AddCommand(newDocsExportCmd())

	return cmd
}

func newDocsIDsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ids [docset-id|url]",
		Short: "List the IDs of every document in the set",
		Args:  cobra.MaximumNArgs(1),
		Example: strings.TrimSpace(`
  # IDs from the default document set
  ov docs ids

  # IDs from an explicit set
  ov docs ids 123

  # Pipe into xargs
  ov docs ids 123 | xargs -n1 ov docs get
`),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) > 0 {
				arg = args[0]
			}
			client, setID, err := getClientAndDocSet(arg)
			if err != nil {
				return err
			}

			ids, err := client.Documents().IDs(cmdContext(cmd), setID)
			if err != nil {
				return fmt.Errorf("failed to list document IDs: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, ids)
			}

			for _, id := range ids {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		}),
	}
}

func newDocsListCmd() *cobra.Command {
	var selectFields string
	var sortOrder string

	cmd := &cobra.Command{
		Use:     "list [docset-id|url]",
		Aliases: []string{"ls"},
		Short:   "List documents in the set",
		Args:    cobra.MaximumNArgs(1),
		Example: strings.TrimSpace(`
  # Titles from the default document set
  ov docs list --select id,title

  # Full text as JSON
  ov docs list 123 --select id,text --json

  # Only metadata, filtered with jq
  ov docs list --select id,metadata --jq '.items[].metadata'
`),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) > 0 {
				arg = args[0]
			}
			client, setID, err := getClientAndDocSet(arg)
			if err != nil {
				return err
			}

			query := api.DocumentQuery{Sort: strings.TrimSpace(sortOrder)}
			if selectFields != "" {
				fields, err := parseFields(selectFields)
				if err != nil {
					return fmt.Errorf("invalid --select value: %w", err)
				}
				query.Fields = fields
			}

			docs, err := client.Documents().List(cmdContext(cmd), setID, query)
			if err != nil {
				return fmt.Errorf("failed to list documents: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, docs)
			}

			if len(docs) == 0 {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No documents found.")
				return nil
			}

			w := newTabWriterFromCmd(cmd)
			_, _ = fmt.Fprintln(w, "ID\tTITLE\tURL")
			for _, doc := range docs {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", doc.ID, truncate(docTitle(doc), 60), doc.URL)
			}
			return w.Flush()
		}),
	}

	cmd.Flags().StringVar(&selectFields, "select", "", "Document fields to request (e.g. id,text,title,url,suppliedId,pageNumber,metadata)")
	cmd.Flags().StringVar(&sortOrder, "sort", "", "Server-side sort order")

	return cmd
}

func newDocsGetCmd() *cobra.Command {
	var docset string

	cmd := &cobra.Command{
		Use:   "get <document-id|url>",
		Short: "Get a single document",
		Args:  cobra.ExactArgs(1),
		Example: strings.TrimSpace(`
  # Document from the default set
  ov docs get 456

  # Paste an Overview URL (carries both IDs)
  ov docs get https://www.overviewdocs.com/documentsets/123/documents/456

  # Just the text
  ov docs get 456 --jq .text
`),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			urlSetID, docID, err := parseDocumentArg(args[0])
			if err != nil {
				return err
			}

			arg := docset
			if urlSetID > 0 {
				arg = fmt.Sprintf("%d", urlSetID)
			}
			client, setID, err := getClientAndDocSet(arg)
			if err != nil {
				return err
			}

			doc, err := client.Documents().Get(cmdContext(cmd), setID, docID)
			if err != nil {
				return fmt.Errorf("failed to get document: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, doc)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Document #%d\n", doc.ID)
			if title := docTitle(*doc); title != "" {
				_, _ = fmt.Fprintf(out, "Title: %s\n", title)
			}
			if doc.URL != "" {
				_, _ = fmt.Fprintf(out, "URL: %s\n", doc.URL)
			}
			if doc.PageNumber != nil {
				_, _ = fmt.Fprintf(out, "Page: %d\n", *doc.PageNumber)
			}
			if doc.Text != "" {
				_, _ = fmt.Fprintf(out, "\n%s\n", doc.Text)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&docset, "docset", "", "Document set ID or URL (defaults to the configured set)")

	return cmd
}

// exportConcurrency caps parallel document fetches during export.
const exportConcurrency = 4

func newDocsExportCmd() *cobra.Command {
	var outPath string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "export [docset-id|url]",
		Short: "Export every document as JSON lines",
		Long: strings.TrimSpace(`
Export all documents from a document set as JSON lines, one document per line.

Each document is fetched individually so the export carries the complete
payload, including metadata. Fetches run concurrently; tune with
--concurrency.
`),
		Args: cobra.MaximumNArgs(1),
		Example: strings.TrimSpace(`
  # Export the default document set to stdout
  ov docs export

  # Export an explicit set to a file
  ov docs export 123 --out documents.jsonl
`),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if concurrency <= 0 {
				return fmt.Errorf("--concurrency must be a positive integer")
			}

			arg := ""
			if len(args) > 0 {
				arg = args[0]
			}
			client, setID, err := getClientAndDocSet(arg)
			if err != nil {
				return err
			}

			ctx := cmdContext(cmd)
			ids, err := client.Documents().IDs(ctx, setID)
			if err != nil {
				return fmt.Errorf("failed to list document IDs: %w", err)
			}

			docs := make([]*api.Document, len(ids))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(concurrency)
			for i, id := range ids {
				i, id := i, id
				g.Go(func() error {
					doc, err := client.Documents().Get(gctx, setID, id)
					if err != nil {
						return fmt.Errorf("failed to fetch document %d: %w", id, err)
					}
					docs[i] = doc
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outPath, err)
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			enc := json.NewEncoder(out)
			for _, doc := range docs {
				if err := enc.Encode(doc); err != nil {
					return fmt.Errorf("failed to write document: %w", err)
				}
			}

			if outPath != "" {
				printIfNotQuiet(cmd, "Exported %d documents to %s\n", len(docs), outPath)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Write JSON lines to a file instead of stdout")
	cmd.Flags().IntVar(&concurrency, "concurrency", exportConcurrency, "Parallel document fetches")

	return cmd
}

// docTitle prefers the document title, falling back to the supplied ID the
// uploader attached.
func docTitle(doc api.Document) string {
	if doc.Title != "" {
		return doc.Title
	}
	return doc.SuppliedID
}

// truncate shortens s to at most max runes. Counting runes keeps multibyte
// titles from being cut mid-character.
func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
