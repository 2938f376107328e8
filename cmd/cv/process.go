package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/citegraph/citecheck/internal/grobid"
	"github.com/citegraph/citecheck/internal/verify"
)

func init() {
	processCmd.Flags().StringVar(&verifyPolicyFlag, "policy", "", "Missing-reference policy: skip, log, prompt, or fetch")
	rootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process <pdf>",
	Short: "Extract and verify a PDF in one step",
	Long: `Run the full pipeline on a PDF: extraction, matching, deduplication,
and verification against the document store.

Equivalent to 'cv extract' followed by 'cv verify'.

Example:
  cv process paper.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

// ProcessOutput combines the extraction artifact and the verdict report.
type ProcessOutput struct {
	Document ExtractOutput  `json:"document"`
	Report   *verify.Report `json:"report"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	pdfPath := args[0]
	if _, err := os.Stat(pdfPath); err != nil {
		exitWithError(ExitDataError, "pdf not found: %s", pdfPath)
	}

	root, cfg := requireWorkspace()
	client := newExtractionClient(cfg)

	// Fail fast when the extraction service is down; no partial run is
	// possible without it.
	if err := client.IsAlive(cmd.Context()); err != nil {
		url := cfg.GrobidURL
		if url == "" {
			url = grobid.DefaultBaseURL
		}
		exitWithError(ExitUpstream, "extraction service at %s is not answering: %v", url, err)
	}

	extracted, err := extractFromPDF(cmd.Context(), client, pdfPath)
	if err != nil {
		code := ExitError
		if errors.Is(err, grobid.ErrUnavailable) || errors.Is(err, grobid.ErrTimeout) {
			code = ExitUpstream
		}
		exitWithError(code, "extracting %s: %v", pdfPath, err)
	}

	if humanOutput {
		fmt.Printf("Extracted %d references from %s\n\n", len(extracted.References), pdfPath)
	}

	report := runVerification(cmd.Context(), root, cfg, extracted.References)
	if humanOutput {
		printReportHuman(report)
	} else {
		outputJSON(ProcessOutput{Document: *extracted, Report: report})
	}
	return nil
}
