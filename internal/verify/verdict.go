// Package verify runs the citation verification pipeline: candidate lookup,
// evidence prompt construction, oracle calls, and report assembly.
package verify

import (
	"encoding/json"
	"strings"
)

// ConfidenceInconclusive marks results where no verdict was possible. It is
// deliberately negative so it can never collide with a clamped real score.
const ConfidenceInconclusive = -1.0

// VerdictKind records how a verdict was obtained.
type VerdictKind int

const (
	// VerdictStructured means the oracle returned parseable JSON.
	VerdictStructured VerdictKind = iota

	// VerdictHeuristic means the reply was free text and keywords decided.
	VerdictHeuristic

	// VerdictError means the oracle call itself failed.
	VerdictError
)

// Verdict is the interpreted outcome of one oracle reply.
type Verdict struct {
	Kind          VerdictKind
	Verified      bool
	Confidence    float64
	MatchLocation string
	Explanation   string
}

// structuredVerdict mirrors the JSON shape the oracle is instructed to emit.
type structuredVerdict struct {
	Verified      bool    `json:"verified"`
	Confidence    float64 `json:"confidenceScore"`
	MatchLocation string  `json:"matchLocation"`
	Explanation   string  `json:"explanation"`
}

// ParseVerdict interprets an oracle reply. JSON is accepted bare, inside a
// code fence, or embedded in surrounding prose; anything else falls back to
// the keyword heuristic. ParseVerdict never fails: an uninterpretable reply
// still yields a conservative heuristic verdict.
func ParseVerdict(reply string) Verdict {
	if candidate := extractJSON(reply); candidate != "" {
		var sv structuredVerdict
		if err := json.Unmarshal([]byte(candidate), &sv); err == nil {
			return Verdict{
				Kind:          VerdictStructured,
				Verified:      sv.Verified,
				Confidence:    clampConfidence(sv.Confidence),
				MatchLocation: strings.TrimSpace(sv.MatchLocation),
				Explanation:   strings.TrimSpace(sv.Explanation),
			}
		}
	}
	return heuristicVerdict(reply)
}

// extractJSON pulls a JSON object out of a reply, stripping code fences and
// surrounding prose. Returns "" when no object-shaped text is present.
func extractJSON(reply string) string {
	text := strings.TrimSpace(reply)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// heuristicVerdict decides from keywords when no JSON could be parsed. The
// raw reply is preserved in the explanation so nothing the oracle said is
// lost.
func heuristicVerdict(reply string) Verdict {
	lower := strings.ToLower(reply)

	negative := strings.Contains(lower, "not verified") ||
		strings.Contains(lower, "unverified") ||
		strings.Contains(lower, "incorrect") ||
		strings.Contains(lower, "inaccurate")
	positive := strings.Contains(lower, "verified") ||
		strings.Contains(lower, "correct") ||
		strings.Contains(lower, "accurate")

	v := Verdict{
		Kind:        VerdictHeuristic,
		Explanation: strings.TrimSpace(reply),
	}
	if positive && !negative {
		v.Verified = true
		v.Confidence = 0.7
	} else {
		v.Verified = false
		v.Confidence = 0.3
	}
	return v
}

// clampConfidence forces out-of-range oracle scores into [0,1].
func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
