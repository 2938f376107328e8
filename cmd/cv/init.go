package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/citegraph/citecheck/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a citecheck workspace",
	Long: `Initialize a citecheck workspace in the current directory.

Creates:
  .citecheck/
  ├── config.yml     # Default config
  └── store/         # Document store root`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, exitCode := getWorkspaceRoot()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	if config.IsWorkspace(root) {
		exitWithError(ExitError, "directory already contains a citecheck workspace")
	}

	cfg, err := config.Init(root)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := os.MkdirAll(cfg.StorePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating store directory: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized citecheck workspace in %s\n", root)
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: root})
	}
	return nil
}
