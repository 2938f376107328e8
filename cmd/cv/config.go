package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/citegraph/citecheck/internal/config"
	"github.com/citegraph/citecheck/internal/verify"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  cv config                                  # Show all config
  cv config grobid-url                       # Get specific value
  cv config grobid-url http://grobid:8070    # Set value
  cv config missing-ref-policy skip          # Set policy

Keys:
  grobid-url          Extraction service base URL
  oracle-model        Verification model identifier
  missing-ref-policy  skip, log, prompt, or fetch
  store-root          Document store root (relative to the workspace)
  max-evidence-chars  Document content budget per verification call
  listen-addr         Serve-mode listen address`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	root, cfg := requireWorkspace()

	if len(args) == 0 {
		if humanOutput {
			fmt.Printf("grobid-url:          %s\n", cfg.GrobidURL)
			fmt.Printf("oracle-model:        %s\n", cfg.OracleModel)
			fmt.Printf("missing-ref-policy:  %s\n", cfg.MissingRefPolicy)
			fmt.Printf("store-root:          %s\n", cfg.StoreRoot)
			fmt.Printf("max-evidence-chars:  %d\n", cfg.MaxEvidenceChars)
			fmt.Printf("listen-addr:         %s\n", cfg.ListenAddr)
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	key := args[0]
	if len(args) == 1 {
		value, ok := configValue(cfg, key)
		if !ok {
			exitWithError(ExitError, "unknown config key: %s", key)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{"key": key, "value": value})
		}
		return nil
	}

	if err := setConfigValue(cfg, key, args[1]); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, args[1])
	} else {
		outputJSON(map[string]string{"status": "updated", "key": key, "value": args[1]})
	}
	return nil
}

func configValue(cfg *config.Config, key string) (string, bool) {
	switch key {
	case "grobid-url":
		return cfg.GrobidURL, true
	case "oracle-model":
		return cfg.OracleModel, true
	case "missing-ref-policy":
		return cfg.MissingRefPolicy, true
	case "store-root":
		return cfg.StoreRoot, true
	case "max-evidence-chars":
		return strconv.Itoa(cfg.MaxEvidenceChars), true
	case "listen-addr":
		return cfg.ListenAddr, true
	}
	return "", false
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "grobid-url":
		cfg.GrobidURL = value
	case "oracle-model":
		cfg.OracleModel = value
	case "missing-ref-policy":
		if _, err := verify.ParsePolicy(value); err != nil {
			return err
		}
		cfg.MissingRefPolicy = value
	case "store-root":
		cfg.StoreRoot = value
	case "max-evidence-chars":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("max-evidence-chars must be a positive integer")
		}
		cfg.MaxEvidenceChars = n
	case "listen-addr":
		cfg.ListenAddr = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
