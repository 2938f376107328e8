// Package main provides the cv CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// verbose enables diagnostic logging to stderr
var verbose bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cv",
	Short: "Citation extraction and verification for academic PDFs",
	Long: `cv extracts bibliographic references and their in-text citation
contexts from academic PDFs, matches each citation to the work it cites,
and asks a language model to judge whether the citing text accurately
represents the cited document.

Documents are stored as plain JSON files with a derived lookup index.
All commands output JSON by default for easy integration with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log diagnostics to stderr")
	rootCmd.Version = Version
}

// getWorkspaceRoot returns the starting directory for workspace discovery.
func getWorkspaceRoot() (string, int) {
	if root := os.Getenv("CV_ROOT"); root != "" {
		return root, 0
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// newLogger builds the CLI logger: silent unless --verbose.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
