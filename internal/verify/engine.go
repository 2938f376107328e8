package verify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/citegraph/citecheck/internal/citation"
	"github.com/citegraph/citecheck/internal/docstore"
	"github.com/citegraph/citecheck/internal/oracle"
)

// Result is one verdict per enhanced reference.
type Result struct {
	CitationText   string  `json:"citationText"`
	ReferenceTitle string  `json:"referenceTitle"`
	IsVerified     bool    `json:"isVerified"`
	Confidence     float64 `json:"confidenceScore"`
	MatchLocation  string  `json:"matchLocation,omitempty"`
	Explanation    string  `json:"explanation"`
	ReferenceFound bool    `json:"referenceFound"`
}

// ProgressFunc is called after each reference with its verdict. index is
// zero-based over the input order.
type ProgressFunc func(index, total int, ref citation.EnhancedReference, result Result)

// Engine verifies a batch of enhanced references against the document store.
type Engine struct {
	store    *docstore.Store
	provider oracle.Provider
	policy   MissingRefPolicy
	prompter Prompter
	fetch    *FetchList
	maxChars int
	logger   *zap.Logger
	progress ProgressFunc
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPolicy sets the missing-reference policy.
func WithPolicy(p MissingRefPolicy) EngineOption {
	return func(e *Engine) {
		if p != "" {
			e.policy = p
		}
	}
}

// WithPrompter supplies the interactive handler for the prompt policy.
func WithPrompter(p Prompter) EngineOption {
	return func(e *Engine) { e.prompter = p }
}

// WithFetchList supplies the queue used by the prompt and fetch policies.
func WithFetchList(fl *FetchList) EngineOption {
	return func(e *Engine) { e.fetch = fl }
}

// WithMaxEvidenceChars bounds document content per oracle call.
func WithMaxEvidenceChars(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxChars = n
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProgress registers a per-reference progress callback.
func WithProgress(fn ProgressFunc) EngineOption {
	return func(e *Engine) { e.progress = fn }
}

// NewEngine creates a verification engine over a store and oracle provider.
func NewEngine(store *docstore.Store, provider oracle.Provider, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    store,
		provider: provider,
		policy:   DefaultPolicy,
		maxChars: DefaultMaxEvidenceChars,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run verifies every reference in input order. A failure on one reference
// produces an error-state result and the run continues; only context
// cancellation stops the batch early.
func (e *Engine) Run(ctx context.Context, refs []citation.EnhancedReference) (*Report, error) {
	report := NewReport()
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := e.verifyOne(ctx, ref)
		report.Add(result)

		if e.progress != nil {
			e.progress(i, len(refs), ref, result)
		}
	}
	return report, nil
}

// verifyOne decides the verdict for a single reference.
func (e *Engine) verifyOne(ctx context.Context, ref citation.EnhancedReference) Result {
	result := Result{
		CitationText:   citingEvidence(ref),
		ReferenceTitle: ref.Reference.Title,
	}

	doc, err := e.store.FindForReference(ref.Reference)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return e.applyMissingPolicy(ref, result)
		}
		e.logger.Warn("document lookup failed",
			zap.String("title", ref.Reference.Title), zap.Error(err))
		result.Explanation = fmt.Sprintf("document lookup failed: %v", err)
		return result
	}

	result.ReferenceFound = true
	system, user := BuildPrompt(doc, ref, e.maxChars)

	reply, err := e.provider.Complete(ctx, system, user)
	if err != nil {
		e.logger.Warn("oracle call failed",
			zap.String("title", ref.Reference.Title), zap.Error(err))
		result.IsVerified = false
		result.Confidence = 0
		result.Explanation = fmt.Sprintf("verification call failed: %v", err)
		return result
	}

	verdict := ParseVerdict(reply)
	if verdict.Kind == VerdictHeuristic {
		e.logger.Debug("falling back to keyword verdict",
			zap.String("title", ref.Reference.Title))
	}
	result.IsVerified = verdict.Verified
	result.Confidence = verdict.Confidence
	result.MatchLocation = verdict.MatchLocation
	result.Explanation = verdict.Explanation
	return result
}

// applyMissingPolicy resolves a reference with no stored document.
func (e *Engine) applyMissingPolicy(ref citation.EnhancedReference, result Result) Result {
	result.ReferenceFound = false

	switch e.policy {
	case PolicySkip:
		result.Confidence = ConfidenceInconclusive
		result.Explanation = "no source document in store; skipped"

	case PolicyPrompt:
		if e.prompter == nil {
			result.Confidence = ConfidenceInconclusive
			result.Explanation = "no source document in store; no prompter available"
			break
		}
		choice, err := e.prompter.AskMissingReference(ref.Reference.Title)
		if err != nil {
			result.Confidence = ConfidenceInconclusive
			result.Explanation = fmt.Sprintf("no source document in store; prompt failed: %v", err)
			break
		}
		switch choice {
		case ChoiceQueue:
			result.Confidence = ConfidenceInconclusive
			result.Explanation = "no source document in store; queued for acquisition"
			e.queueForFetch(ref)
		case ChoiceAcceptVerified:
			result.IsVerified = true
			result.Confidence = 1
			result.Explanation = "manually verified by operator"
		default:
			result.Explanation = "no source document in store; accepted as unverified"
		}

	case PolicyFetch:
		// Acquisition is not implemented; record intent and move on.
		result.Confidence = ConfidenceInconclusive
		result.Explanation = "no source document in store; recorded for future acquisition"
		e.queueForFetch(ref)

	default: // PolicyLog
		e.logger.Info("no source document for reference",
			zap.String("title", ref.Reference.Title))
		result.Explanation = "no source document in store"
	}
	return result
}

// queueForFetch appends to the fetch list when one is configured.
func (e *Engine) queueForFetch(ref citation.EnhancedReference) {
	if e.fetch == nil {
		return
	}
	if !e.fetch.Add(ref.Reference) {
		return
	}
	if err := e.fetch.Save(); err != nil {
		e.logger.Warn("saving fetch list failed", zap.Error(err))
	}
}
