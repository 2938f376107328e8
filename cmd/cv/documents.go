package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/citegraph/citecheck/internal/docstore"
)

var (
	docID      string
	docTitle   string
	docAuthors []string
	docDOI     string
	docYear    string
	docJournal string

	searchLimit int
)

func init() {
	documentsAddCmd.Flags().StringVar(&docID, "id", "", "Document identifier (default: slug of the title)")
	documentsAddCmd.Flags().StringVar(&docTitle, "title", "", "Document title (default: guessed from the first page)")
	documentsAddCmd.Flags().StringSliceVar(&docAuthors, "author", nil, "Author display name (repeatable)")
	documentsAddCmd.Flags().StringVar(&docDOI, "doi", "", "DOI (default: scanned from the leading pages)")
	documentsAddCmd.Flags().StringVar(&docYear, "year", "", "Publication year")
	documentsAddCmd.Flags().StringVar(&docJournal, "journal", "", "Journal or venue")

	documentsSearchCmd.Flags().IntVar(&searchLimit, "limit", 20, "Maximum number of results")

	documentsCmd.AddCommand(documentsAddCmd, documentsListCmd, documentsSearchCmd)
	rootCmd.AddCommand(documentsCmd)
}

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage the source document store",
}

var documentsAddCmd = &cobra.Command{
	Use:   "add <pdf>",
	Short: "Ingest a PDF into the document store",
	Long: `Ingest a PDF into the document store. The PDF's text becomes the
verification evidence body; title and DOI are derived from the file when
not given explicitly.

Example:
  cv documents add coley2019.pdf --year 2019 --author "Connor W Coley"`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentsAdd,
}

func runDocumentsAdd(cmd *cobra.Command, args []string) error {
	pdfPath := args[0]
	if _, err := os.Stat(pdfPath); err != nil {
		exitWithError(ExitDataError, "pdf not found: %s", pdfPath)
	}

	root, cfg := requireWorkspace()
	store := docstore.NewStore(cfg.StorePath(root), newLogger())

	doc, err := docstore.IngestPDF(pdfPath, docstore.Document{
		ID:      docID,
		Title:   docTitle,
		Authors: docAuthors,
		DOI:     docDOI,
		Year:    docYear,
		Journal: docJournal,
	})
	if err != nil {
		exitWithError(ExitDataError, "ingesting %s: %v", pdfPath, err)
	}
	if err := store.Add(doc); err != nil {
		exitWithError(ExitDataError, "storing document: %v", err)
	}

	if humanOutput {
		fmt.Printf("Added %s\n  %s\n", doc.ID, truncateString(doc.Title, ReportTitleMaxLen))
	} else {
		outputJSON(map[string]string{
			"status": "added",
			"id":     doc.ID,
			"title":  doc.Title,
			"doi":    doc.DOI,
		})
	}
	return nil
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	RunE:  runDocumentsList,
}

// documentSummary is the list entry shape: metadata only, content omitted.
type documentSummary struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Authors []string `json:"authors,omitempty"`
	DOI     string   `json:"doi,omitempty"`
	Year    string   `json:"year,omitempty"`
}

func runDocumentsList(cmd *cobra.Command, args []string) error {
	root, cfg := requireWorkspace()
	store := docstore.NewStore(cfg.StorePath(root), newLogger())

	docs, err := store.List()
	if err != nil {
		exitWithError(ExitError, "listing documents: %v", err)
	}

	if humanOutput {
		for _, doc := range docs {
			fmt.Printf("%s\n  %s\n", doc.ID, truncateString(doc.Title, ReportTitleMaxLen))
			if len(doc.Authors) > 0 {
				fmt.Printf("  %s", formatAuthors(doc.Authors, 3))
				if doc.Year != "" {
					fmt.Printf(" (%s)", doc.Year)
				}
				fmt.Println()
			}
		}
		fmt.Printf("\n%d document(s)\n", len(docs))
		return nil
	}

	summaries := make([]documentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, documentSummary{
			ID:      doc.ID,
			Title:   doc.Title,
			Authors: doc.Authors,
			DOI:     doc.DOI,
			Year:    doc.Year,
		})
	}
	return outputJSON(map[string]interface{}{
		"documents": summaries,
		"count":     len(summaries),
	})
}

var documentsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over stored documents",
	Long: `Search document titles and content with the full-text query cache.
The cache is rebuilt automatically when the document set has changed.

Example:
  cv documents search "reaction outcomes"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDocumentsSearch,
}

func runDocumentsSearch(cmd *cobra.Command, args []string) error {
	root, cfg := requireWorkspace()
	store := docstore.NewStore(cfg.StorePath(root), newLogger())

	q, err := docstore.OpenQueryDB(store)
	if err != nil {
		exitWithError(ExitError, "opening query database: %v", err)
	}
	defer q.Close()

	stale, err := q.NeedsSync(store)
	if err != nil {
		exitWithError(ExitError, "checking query database: %v", err)
	}
	if stale {
		if _, err := q.Sync(store); err != nil {
			exitWithError(ExitError, "rebuilding query database: %v", err)
		}
	}

	hits, err := q.Search(strings.Join(args, " "), searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	if humanOutput {
		for i, hit := range hits {
			fmt.Printf("%d. %s\n   %s\n", i+1, hit.ID, truncateString(hit.Title, ReportTitleMaxLen))
			if hit.Snippet != "" {
				fmt.Printf("   %s\n", hit.Snippet)
			}
		}
		if len(hits) == 0 {
			fmt.Println("no matches")
		}
		return nil
	}
	return outputJSON(map[string]interface{}{
		"hits":  hits,
		"count": len(hits),
	})
}
