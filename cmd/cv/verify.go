package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/citegraph/citecheck/internal/citation"
	"github.com/citegraph/citecheck/internal/config"
	"github.com/citegraph/citecheck/internal/docstore"
	"github.com/citegraph/citecheck/internal/oracle"
	"github.com/citegraph/citecheck/internal/verify"
)

var verifyPolicyFlag string

func init() {
	verifyCmd.Flags().StringVar(&verifyPolicyFlag, "policy", "", "Missing-reference policy: skip, log, prompt, or fetch")
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify <references.json>",
	Short: "Verify extracted citations against the document store",
	Long: `Verify citations from a references file produced by 'cv extract'.

For each reference, the matching stored document is located and the
verification oracle judges whether the citing text is supported by it.
Requires ANTHROPIC_API_KEY in the environment or a workspace .env file.

Example:
  cv extract paper.pdf -o references.json
  cv verify references.json`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	root, cfg := requireWorkspace()

	data, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading references: %v", err)
	}
	var extracted ExtractOutput
	if err := json.Unmarshal(data, &extracted); err != nil {
		exitWithError(ExitDataError, "parsing references %s: %v", args[0], err)
	}

	report := runVerification(cmd.Context(), root, cfg, extracted.References)
	if humanOutput {
		printReportHuman(report)
	} else {
		outputJSON(report)
	}
	return nil
}

// runVerification wires the store, oracle, and engine, then runs the batch.
func runVerification(ctx context.Context, root string, cfg *config.Config, refs []citation.EnhancedReference) *verify.Report {
	apiKey := config.APIKey()
	if apiKey == "" {
		exitWithError(ExitConfigError, "%s not set (export it or add it to %s/.env)", config.EnvAPIKey, root)
	}

	policyName := verifyPolicyFlag
	if policyName == "" {
		policyName = cfg.MissingRefPolicy
	}
	policy, err := verify.ParsePolicy(policyName)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	var oracleOpts []oracle.AnthropicOption
	if cfg.OracleModel != "" {
		oracleOpts = append(oracleOpts, oracle.WithModel(cfg.OracleModel))
	}
	provider, err := oracle.NewAnthropicProvider(apiKey, oracleOpts...)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	logger := newLogger()
	store := docstore.NewStore(cfg.StorePath(root), logger)

	fetchList, err := verify.LoadFetchList(config.FetchListPath(root))
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	opts := []verify.EngineOption{
		verify.WithPolicy(policy),
		verify.WithFetchList(fetchList),
		verify.WithLogger(logger),
	}
	if cfg.MaxEvidenceChars > 0 {
		opts = append(opts, verify.WithMaxEvidenceChars(cfg.MaxEvidenceChars))
	}
	if policy == verify.PolicyPrompt {
		opts = append(opts, verify.WithPrompter(terminalPrompter{}))
	}
	if humanOutput {
		opts = append(opts, verify.WithProgress(func(index, total int, ref citation.EnhancedReference, result verify.Result) {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", index+1, total,
				truncateString(ref.Reference.Title, ReportTitleMaxLen))
		}))
	}

	engine := verify.NewEngine(store, provider, opts...)
	report, err := engine.Run(ctx, refs)
	if err != nil {
		exitWithError(ExitError, "verification interrupted: %v", err)
	}
	return report
}

// terminalPrompter asks the operator on stdin how to handle a missing
// reference.
type terminalPrompter struct{}

func (terminalPrompter) AskMissingReference(title string) (verify.PromptChoice, error) {
	fmt.Fprintf(os.Stderr, "\nNo stored document for: %s\n", title)
	fmt.Fprint(os.Stderr, "[q]ueue for acquisition, accept as [v]erified, accept as [u]nverified? ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return verify.ChoiceAcceptUnverified, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "q", "queue":
		return verify.ChoiceQueue, nil
	case "v", "verified":
		return verify.ChoiceAcceptVerified, nil
	default:
		return verify.ChoiceAcceptUnverified, nil
	}
}

func printReportHuman(report *verify.Report) {
	fmt.Printf("Verified:     %d\n", report.Verified)
	fmt.Printf("Unverified:   %d\n", report.Unverified)
	fmt.Printf("Inconclusive: %d\n", report.Inconclusive)
	fmt.Printf("Missing:      %d\n", report.MissingRefs)
	fmt.Println()

	for i, r := range report.Results {
		status := "UNVERIFIED"
		switch {
		case r.Confidence < 0:
			status = "INCONCLUSIVE"
		case r.IsVerified:
			status = "VERIFIED"
		case !r.ReferenceFound:
			status = "MISSING"
		}
		fmt.Printf("%d. [%s] %s\n", i+1, status, truncateString(r.ReferenceTitle, ReportTitleMaxLen))
		if r.Confidence >= 0 {
			fmt.Printf("   confidence: %.2f\n", r.Confidence)
		}
		if r.Explanation != "" {
			fmt.Printf("   %s\n", truncateString(r.Explanation, 120))
		}
	}
}
