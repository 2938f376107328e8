package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/citegraph/citecheck/internal/citation"
	"github.com/citegraph/citecheck/internal/docstore"
	"github.com/citegraph/citecheck/internal/progress"
	"github.com/citegraph/citecheck/internal/verify"
)

// handleHealth reports liveness and whether the extraction service answers.
func (s *Server) handleHealth(c *gin.Context) {
	extraction := "ok"
	if err := s.extractor.IsAlive(c.Request.Context()); err != nil {
		extraction = err.Error()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"extraction": extraction,
	})
}

// handleProcess accepts a PDF upload and starts an asynchronous verification
// run. The response carries the run identifier; clients follow progress via
// the events endpoint.
func (s *Server) handleProcess(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'file' upload field"})
		return
	}

	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("preparing upload directory: %v", err)})
		return
	}
	pdfPath := filepath.Join(s.uploadDir, uuid.NewString()+".pdf")
	if err := c.SaveUploadedFile(file, pdfPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("saving upload: %v", err)})
		return
	}

	runID := s.progress.StartRun(0)
	go s.runPipeline(runID, pdfPath, file.Filename)

	c.JSON(http.StatusAccepted, gin.H{"runId": runID})
}

// runPipeline executes extract-match-verify for one uploaded PDF, publishing
// progress along the way. Errors end the run in the error state; they never
// reach the upload response, which has already been sent.
func (s *Server) runPipeline(runID, pdfPath, originalName string) {
	defer os.Remove(pdfPath)
	ctx := context.Background()

	data, err := s.extractor.ExtractCitations(ctx, pdfPath)
	if err != nil {
		s.logger.Error("extraction failed",
			zap.String("run", runID), zap.String("file", originalName), zap.Error(err))
		s.progress.Publish(progress.Event{
			RunID:        runID,
			Status:       progress.StatusError,
			CurrentTitle: fmt.Sprintf("extraction failed: %v", err),
		})
		s.progress.Finish(runID, progress.StatusError, nil)
		return
	}

	usages, stats := citation.BuildUsages(data.Refs, data.Contexts)
	if len(stats.OrphanedContexts) > 0 {
		s.logger.Warn("citation markers without bibliography entries",
			zap.String("run", runID), zap.Int("count", len(stats.OrphanedContexts)))
	}
	refs := citation.Enhance(usages)

	var processed []progress.RefStatus
	engine := verify.NewEngine(s.store, s.provider,
		verify.WithPolicy(s.policy),
		verify.WithMaxEvidenceChars(s.maxChars),
		verify.WithLogger(s.logger),
		verify.WithProgress(func(index, total int, ref citation.EnhancedReference, result verify.Result) {
			processed = append(processed, progress.RefStatus{
				Title:   ref.Reference.Title,
				Verdict: verdictLabel(result),
			})
			event := progress.Event{
				RunID:     runID,
				Index:     index + 1,
				Total:     total,
				Status:    progress.StatusProcessing,
				Processed: append([]progress.RefStatus(nil), processed...),
			}
			if index+1 < total {
				event.CurrentTitle = refs[index+1].Reference.Title
			}
			s.progress.Publish(event)
		}))

	s.progress.Publish(progress.Event{
		RunID:  runID,
		Total:  len(refs),
		Status: progress.StatusProcessing,
	})

	if _, err := engine.Run(ctx, refs); err != nil {
		s.progress.Finish(runID, progress.StatusError, processed)
		return
	}
	s.progress.Finish(runID, progress.StatusCompleted, processed)
}

// verdictLabel renders one result for the progress stream.
func verdictLabel(result verify.Result) string {
	switch {
	case result.Confidence < 0:
		return "inconclusive"
	case result.IsVerified:
		return "verified"
	case !result.ReferenceFound:
		return "missing"
	default:
		return "unverified"
	}
}

// handleRunState returns the latest snapshot for a run.
func (s *Server) handleRunState(c *gin.Context) {
	event, err := s.progress.Latest(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown run"})
		return
	}
	c.JSON(http.StatusOK, event)
}

// handleRunEvents streams run progress as server-sent events. The first
// event replays the run's latest known state so late subscribers catch up
// immediately.
func (s *Server) handleRunEvents(c *gin.Context) {
	ch, cancel, err := s.progress.Subscribe(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown run"})
		return
	}
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("progress", event)
			return event.Status == progress.StatusProcessing
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// handleListDocuments returns every stored document's metadata, content
// omitted.
func (s *Server) handleListDocuments(c *gin.Context) {
	docs, err := s.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]gin.H, 0, len(docs))
	for _, doc := range docs {
		out = append(out, gin.H{
			"id":      doc.ID,
			"title":   doc.Title,
			"authors": doc.Authors,
			"doi":     doc.DOI,
			"year":    doc.Year,
		})
	}
	c.JSON(http.StatusOK, gin.H{"documents": out, "count": len(out)})
}

// handleGetDocument returns one full document record.
func (s *Server) handleGetDocument(c *gin.Context) {
	doc, err := s.store.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doc)
}
