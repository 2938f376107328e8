package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/citegraph/citecheck/internal/config"
	"github.com/citegraph/citecheck/internal/docstore"
	"github.com/citegraph/citecheck/internal/oracle"
	"github.com/citegraph/citecheck/internal/server"
	"github.com/citegraph/citecheck/internal/verify"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the verification pipeline over HTTP",
	Long: `Serve the verification pipeline over HTTP.

POST /api/process uploads a PDF and starts an asynchronous run;
GET /api/runs/:id/events streams progress as server-sent events;
GET /api/documents lists the document store.

Missing references are handled with the skip policy; there is no
interactive operator in serve mode.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	root, cfg := requireWorkspace()

	apiKey := config.APIKey()
	if apiKey == "" {
		exitWithError(ExitConfigError, "%s not set (export it or add it to %s/.env)", config.EnvAPIKey, root)
	}
	var oracleOpts []oracle.AnthropicOption
	if cfg.OracleModel != "" {
		oracleOpts = append(oracleOpts, oracle.WithModel(cfg.OracleModel))
	}
	provider, err := oracle.NewAnthropicProvider(apiKey, oracleOpts...)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	// Serve mode always logs; --verbose switches to the development format.
	logger := newLogger()
	if !verbose {
		if prod, err := zap.NewProduction(); err == nil {
			logger = prod
		}
	}
	defer logger.Sync()

	srv := server.New(server.Options{
		Store:     docstore.NewStore(cfg.StorePath(root), logger),
		Extractor: newExtractionClient(cfg),
		Provider:  provider,
		Policy:    verify.PolicySkip,
		MaxChars:  cfg.MaxEvidenceChars,
		UploadDir: filepath.Join(os.TempDir(), "citecheck-uploads"),
		Logger:    logger,
	})

	addr := serveAddr
	if addr == "" {
		addr = cfg.ListenAddr
	}
	if err := srv.Run(addr); err != nil {
		exitWithError(ExitError, "server: %v", err)
	}
	return nil
}
