package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/citegraph/citecheck/internal/citation"
	"github.com/citegraph/citecheck/internal/config"
	"github.com/citegraph/citecheck/internal/grobid"
)

var extractOutputPath string

func init() {
	extractCmd.Flags().StringVarP(&extractOutputPath, "output", "o", "", "Write references JSON to a file instead of stdout")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <pdf>",
	Short: "Extract references and citation contexts from a PDF",
	Long: `Extract bibliographic references and in-text citation contexts from a
PDF via the extraction service, then match, filter, and deduplicate them.

The output is the input format of 'cv verify'.

Example:
  cv extract paper.pdf -o references.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	pdfPath := args[0]
	if _, err := os.Stat(pdfPath); err != nil {
		exitWithError(ExitDataError, "pdf not found: %s", pdfPath)
	}

	cfg := loadWorkspaceConfig()
	client := newExtractionClient(cfg)

	out, err := extractFromPDF(cmd.Context(), client, pdfPath)
	if err != nil {
		code := ExitError
		if errors.Is(err, grobid.ErrUnavailable) || errors.Is(err, grobid.ErrTimeout) {
			code = ExitUpstream
		}
		exitWithError(code, "extracting %s: %v", pdfPath, err)
	}

	if extractOutputPath != "" {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			exitWithError(ExitError, "encoding output: %v", err)
		}
		if err := os.WriteFile(extractOutputPath, data, 0644); err != nil {
			exitWithError(ExitError, "writing %s: %v", extractOutputPath, err)
		}
		if humanOutput {
			fmt.Printf("Wrote %d references to %s\n", len(out.References), extractOutputPath)
		} else {
			outputJSON(StatusResponse{Status: "written", Path: extractOutputPath})
		}
		return nil
	}

	if humanOutput {
		printExtractHuman(out)
	} else {
		outputJSON(out)
	}
	return nil
}

// extractFromPDF runs the extract-match-enhance portion of the pipeline.
func extractFromPDF(ctx context.Context, client *grobid.Client, pdfPath string) (*ExtractOutput, error) {
	data, err := client.ExtractCitations(ctx, pdfPath)
	if err != nil {
		return nil, err
	}

	usages, stats := citation.BuildUsages(data.Refs, data.Contexts)
	refs := citation.Enhance(usages)

	out := &ExtractOutput{
		Title:       data.Title,
		DOI:         data.DOI,
		Year:        data.Year,
		References:  refs,
		Diagnostics: stats,
	}
	for _, a := range data.Authors {
		out.Authors = append(out.Authors, a.DisplayName())
	}
	return out, nil
}

// newExtractionClient builds the extraction service client from config.
func newExtractionClient(cfg *config.Config) *grobid.Client {
	var opts []grobid.ClientOption
	if cfg.GrobidURL != "" {
		opts = append(opts, grobid.WithBaseURL(cfg.GrobidURL))
	}
	return grobid.NewClient(opts...)
}

// loadWorkspaceConfig loads config from the enclosing workspace, or returns
// defaults when run outside one. Commands that need the store or the fetch
// list require a workspace and use requireWorkspace instead.
func loadWorkspaceConfig() *config.Config {
	root, exitCode := getWorkspaceRoot()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	wsRoot, err := config.FindWorkspace(root)
	if err != nil {
		wsRoot = root
	}
	cfg, err := config.Load(wsRoot)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return cfg
}

// requireWorkspace locates the workspace root and loads its config.
func requireWorkspace() (string, *config.Config) {
	root, exitCode := getWorkspaceRoot()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	wsRoot, err := config.FindWorkspace(root)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	cfg, err := config.Load(wsRoot)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return wsRoot, cfg
}

func printExtractHuman(out *ExtractOutput) {
	if out.Title != "" {
		fmt.Printf("Document: %s\n", out.Title)
	}
	if len(out.Authors) > 0 {
		fmt.Printf("Authors:  %s\n", formatAuthors(out.Authors, 3))
	}
	fmt.Printf("References: %d\n\n", len(out.References))

	for i, ref := range out.References {
		fmt.Printf("%d. %s\n", i+1, truncateString(ref.Reference.Title, ReportTitleMaxLen))
		if ref.Reference.DOI != "" {
			fmt.Printf("   doi: %s\n", ref.Reference.DOI)
		}
		fmt.Printf("   cited %d time(s)\n", ref.CitationCount)
	}

	if n := len(out.Diagnostics.OrphanedContexts); n > 0 {
		fmt.Printf("\n%d citation marker(s) had no matching bibliography entry\n", n)
	}
	if out.Diagnostics.OrphanReferences > 0 {
		fmt.Printf("%d reference(s) are never cited in the text\n", out.Diagnostics.OrphanReferences)
	}
}
