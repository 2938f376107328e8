// Package server exposes the verification pipeline over HTTP: PDF upload,
// document listing, and live run progress over server-sent events.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/citegraph/citecheck/internal/citation"
	"github.com/citegraph/citecheck/internal/docstore"
	"github.com/citegraph/citecheck/internal/oracle"
	"github.com/citegraph/citecheck/internal/progress"
	"github.com/citegraph/citecheck/internal/verify"
)

// Extractor turns a PDF on disk into parsed citation data.
type Extractor interface {
	ExtractCitations(ctx context.Context, pdfPath string) (*citation.Data, error)
	IsAlive(ctx context.Context) error
}

// Options configures a Server.
type Options struct {
	Store     *docstore.Store
	Extractor Extractor
	Provider  oracle.Provider
	Policy    verify.MissingRefPolicy
	MaxChars  int
	UploadDir string
	Logger    *zap.Logger
}

// Server handles verification requests over HTTP.
type Server struct {
	store     *docstore.Store
	extractor Extractor
	provider  oracle.Provider
	policy    verify.MissingRefPolicy
	maxChars  int
	uploadDir string
	progress  *progress.Service
	logger    *zap.Logger
	engine    *gin.Engine
}

// New assembles the server and its route tree.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := opts.Policy
	if policy == "" {
		policy = verify.PolicySkip // serve mode has no interactive operator
	}

	s := &Server{
		store:     opts.Store,
		extractor: opts.Extractor,
		provider:  opts.Provider,
		policy:    policy,
		maxChars:  opts.MaxChars,
		uploadDir: opts.UploadDir,
		progress:  progress.NewService(),
		logger:    logger,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/process", s.handleProcess)
		api.GET("/runs/:id", s.handleRunState)
		api.GET("/runs/:id/events", s.handleRunEvents)
		api.GET("/documents", s.handleListDocuments)
		api.GET("/documents/:id", s.handleGetDocument)
	}

	s.engine = router
	return s
}

// Handler returns the route tree for use with http.Server or tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.engine,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
	s.logger.Info("listening", zap.String("addr", addr))
	return srv.ListenAndServe()
}

// requestLogger logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
