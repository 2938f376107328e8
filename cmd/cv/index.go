package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/citegraph/citecheck/internal/docstore"
)

func init() {
	indexCmd.AddCommand(indexRebuildCmd)
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the derived lookup index",
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the lookup index from the stored documents",
	Long: `Discard the persisted lookup index and re-derive it from every stored
document record. Use after bulk imports or suspected index corruption.
The rebuild never re-parses source PDFs; document content is already
persisted.`,
	RunE: runIndexRebuild,
}

func runIndexRebuild(cmd *cobra.Command, args []string) error {
	root, cfg := requireWorkspace()
	store := docstore.NewStore(cfg.StorePath(root), newLogger())

	idx, err := store.RebuildIndex()
	if err != nil {
		exitWithError(ExitError, "rebuilding index: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt index: %d DOIs, %d title words, %d years\n",
			len(idx.ByDOI), len(idx.ByTitleWords), len(idx.ByYear))
	} else {
		outputJSON(map[string]int{
			"dois":       len(idx.ByDOI),
			"titleWords": len(idx.ByTitleWords),
			"years":      len(idx.ByYear),
		})
	}
	return nil
}
