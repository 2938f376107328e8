package verify

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/citegraph/citecheck/internal/citation"
	"github.com/citegraph/citecheck/internal/docstore"
	"github.com/citegraph/citecheck/internal/reference"
)

// stubProvider returns a fixed reply or error for every call.
type stubProvider struct {
	reply string
	err   error
	calls int
}

func (p *stubProvider) Complete(ctx context.Context, system, user string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func (p *stubProvider) Name() string { return "stub" }

// stubPrompter answers every question the same way.
type stubPrompter struct {
	choice PromptChoice
}

func (p stubPrompter) AskMissingReference(title string) (PromptChoice, error) {
	return p.choice, nil
}

func enhancedRef(title string) citation.EnhancedReference {
	return citation.EnhancedReference{
		Reference:      reference.BibReference{Title: title},
		CitationCount:  1,
		Contexts:       []citation.ContextDetail{{Marker: "[1]", Surrounding: "As shown previously, " + title + "."}},
		PrimaryContext: "As shown previously, " + title + ".",
	}
}

func storeWith(t *testing.T, docs ...docstore.Document) *docstore.Store {
	t.Helper()
	s := docstore.NewStore(t.TempDir(), nil)
	for _, doc := range docs {
		if doc.FilePath == "" {
			doc.FilePath = "pdfs/" + doc.ID + ".pdf"
		}
		if err := s.Add(doc); err != nil {
			t.Fatalf("Add(%s): %v", doc.ID, err)
		}
	}
	return s
}

func TestRunStructuredVerdict(t *testing.T) {
	s := storeWith(t, docstore.Document{
		ID:      "paper",
		Title:   "Graph networks for molecular property prediction",
		Content: "We trained graph networks on molecular property benchmarks.",
	})
	provider := &stubProvider{
		reply: `{"verified": true, "confidenceScore": 0.92, "matchLocation": "trained graph networks", "explanation": "directly supported"}`,
	}
	engine := NewEngine(s, provider)

	report, err := engine.Run(context.Background(), []citation.EnhancedReference{
		enhancedRef("Graph networks for molecular property prediction"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Verified != 1 || report.Total() != 1 {
		t.Fatalf("report = %+v, want one verified", report)
	}
	result := report.Results[0]
	if !result.ReferenceFound || !result.IsVerified || result.Confidence != 0.92 {
		t.Errorf("result = %+v", result)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1", provider.calls)
	}
}

func TestRunOracleFailure(t *testing.T) {
	s := storeWith(t, docstore.Document{
		ID:      "paper",
		Title:   "Graph networks for molecular property prediction",
		Content: "content",
	})
	engine := NewEngine(s, &stubProvider{err: errors.New("connection refused")})

	report, err := engine.Run(context.Background(), []citation.EnhancedReference{
		enhancedRef("Graph networks for molecular property prediction"),
	})
	if err != nil {
		t.Fatalf("one failed call must not abort the run: %v", err)
	}
	result := report.Results[0]
	if result.IsVerified || result.Confidence != 0 {
		t.Errorf("result = %+v, want error-state verdict", result)
	}
	if !strings.Contains(result.Explanation, "connection refused") {
		t.Errorf("explanation = %q, want the call error", result.Explanation)
	}
	if !result.ReferenceFound {
		t.Error("document was found; ReferenceFound should be true")
	}
	if report.Unverified != 1 {
		t.Errorf("report = %+v, want one unverified", report)
	}
}

func TestRunMissingReferenceSkipPolicy(t *testing.T) {
	s := storeWith(t)
	provider := &stubProvider{reply: "unused"}
	engine := NewEngine(s, provider, WithPolicy(PolicySkip))

	report, err := engine.Run(context.Background(), []citation.EnhancedReference{
		enhancedRef("A work nobody has ingested yet"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	result := report.Results[0]
	if result.ReferenceFound {
		t.Error("ReferenceFound should be false")
	}
	if result.Confidence != ConfidenceInconclusive {
		t.Errorf("Confidence = %v, want the inconclusive sentinel", result.Confidence)
	}
	if report.Inconclusive != 1 {
		t.Errorf("report = %+v, want one inconclusive", report)
	}
	if provider.calls != 0 {
		t.Error("skip policy must not call the oracle")
	}
}

func TestRunMissingReferenceLogPolicy(t *testing.T) {
	s := storeWith(t)
	engine := NewEngine(s, &stubProvider{})

	report, err := engine.Run(context.Background(), []citation.EnhancedReference{
		enhancedRef("A work nobody has ingested yet"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	result := report.Results[0]
	if result.IsVerified || result.Confidence != 0 || result.ReferenceFound {
		t.Errorf("result = %+v, want unverified with zero confidence", result)
	}
	if report.MissingRefs != 1 {
		t.Errorf("report = %+v, want one missing reference", report)
	}
}

func TestRunPromptPolicyQueues(t *testing.T) {
	s := storeWith(t)
	fetchPath := filepath.Join(t.TempDir(), "fetchlist.json")
	fl, err := LoadFetchList(fetchPath)
	if err != nil {
		t.Fatal(err)
	}
	engine := NewEngine(s, &stubProvider{},
		WithPolicy(PolicyPrompt),
		WithPrompter(stubPrompter{choice: ChoiceQueue}),
		WithFetchList(fl))

	report, err := engine.Run(context.Background(), []citation.EnhancedReference{
		enhancedRef("A work nobody has ingested yet"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Results[0].Confidence != ConfidenceInconclusive {
		t.Errorf("queued reference should be inconclusive, got %+v", report.Results[0])
	}

	reloaded, err := LoadFetchList(fetchPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(reloaded.Entries()) != 1 {
		t.Fatalf("fetch list has %d entries, want 1", len(reloaded.Entries()))
	}
	if reloaded.Entries()[0].Title != "A work nobody has ingested yet" {
		t.Errorf("queued title = %q", reloaded.Entries()[0].Title)
	}
}

func TestRunPromptPolicyManualVerify(t *testing.T) {
	s := storeWith(t)
	engine := NewEngine(s, &stubProvider{},
		WithPolicy(PolicyPrompt),
		WithPrompter(stubPrompter{choice: ChoiceAcceptVerified}))

	report, err := engine.Run(context.Background(), []citation.EnhancedReference{
		enhancedRef("A work nobody has ingested yet"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	result := report.Results[0]
	if !result.IsVerified || result.Confidence != 1 {
		t.Errorf("result = %+v, want manually verified with confidence 1", result)
	}
}

func TestRunCancellation(t *testing.T) {
	s := storeWith(t)
	engine := NewEngine(s, &stubProvider{}, WithPolicy(PolicySkip))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx, []citation.EnhancedReference{enhancedRef("anything at all here")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run with cancelled context = %v, want context.Canceled", err)
	}
}

func TestRunProgressCallback(t *testing.T) {
	s := storeWith(t)
	var seen []int
	engine := NewEngine(s, &stubProvider{},
		WithPolicy(PolicySkip),
		WithProgress(func(index, total int, ref citation.EnhancedReference, result Result) {
			seen = append(seen, index)
			if total != 2 {
				t.Errorf("total = %d, want 2", total)
			}
		}))

	_, err := engine.Run(context.Background(), []citation.EnhancedReference{
		enhancedRef("First missing reference title"),
		enhancedRef("Second missing reference title"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0] != 0 || seen[1] != 1 {
		t.Errorf("progress indexes = %v, want [0 1]", seen)
	}
}

func TestFetchListDeduplicatesByTitle(t *testing.T) {
	fl, err := LoadFetchList(filepath.Join(t.TempDir(), "fetchlist.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !fl.Add(reference.BibReference{Title: "Deep Learning for Chemistry"}) {
		t.Error("first add should succeed")
	}
	if fl.Add(reference.BibReference{Title: "deep learning for chemistry!"}) {
		t.Error("normalized-title duplicate should be rejected")
	}
	if len(fl.Entries()) != 1 {
		t.Errorf("entries = %d, want 1", len(fl.Entries()))
	}
}

func TestBuildPromptFlagsTruncation(t *testing.T) {
	doc := &docstore.Document{
		ID:      "paper",
		Title:   "A very long paper",
		Content: strings.Repeat("evidence ", 100),
	}
	_, user := BuildPrompt(doc, enhancedRef("A very long paper"), 50)
	if !strings.Contains(user, "truncated to the first 50 characters") {
		t.Error("prompt must flag content truncation")
	}
	if !strings.Contains(user, "As shown previously") {
		t.Error("prompt must include the citing evidence")
	}
}
