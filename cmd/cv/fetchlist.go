package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/citegraph/citecheck/internal/config"
	"github.com/citegraph/citecheck/internal/verify"
)

func init() {
	rootCmd.AddCommand(fetchlistCmd)
}

var fetchlistCmd = &cobra.Command{
	Use:   "fetchlist",
	Short: "Show references queued for document acquisition",
	Long: `Show references queued for later document acquisition.

References land here when the prompt policy queues them or the fetch
policy records intent.`,
	RunE: runFetchlist,
}

func runFetchlist(cmd *cobra.Command, args []string) error {
	root, _ := requireWorkspace()

	fl, err := verify.LoadFetchList(config.FetchListPath(root))
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	entries := fl.Entries()

	if humanOutput {
		for i, e := range entries {
			fmt.Printf("%d. %s\n", i+1, truncateString(e.Title, ReportTitleMaxLen))
			if e.Authors != "" {
				fmt.Printf("   %s", e.Authors)
				if e.Year != "" {
					fmt.Printf(" (%s)", e.Year)
				}
				fmt.Println()
			}
			if e.DOI != "" {
				fmt.Printf("   doi: %s\n", e.DOI)
			}
		}
		fmt.Printf("\n%d queued reference(s)\n", len(entries))
		return nil
	}
	return outputJSON(map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}
