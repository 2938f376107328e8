package verify

import (
	"fmt"
	"strings"
)

// MissingRefPolicy decides what happens when no stored document matches a
// reference.
type MissingRefPolicy string

const (
	// PolicySkip marks the citation inconclusive without interaction.
	PolicySkip MissingRefPolicy = "skip"

	// PolicyLog marks the citation unverified and continues. Default.
	PolicyLog MissingRefPolicy = "log"

	// PolicyPrompt asks the operator what to do per reference.
	PolicyPrompt MissingRefPolicy = "prompt"

	// PolicyFetch is reserved for automatic document acquisition. It
	// currently records intent on the fetch list and nothing more.
	PolicyFetch MissingRefPolicy = "fetch"
)

// DefaultPolicy applies when no policy is configured.
const DefaultPolicy = PolicyLog

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (MissingRefPolicy, error) {
	switch MissingRefPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicySkip:
		return PolicySkip, nil
	case PolicyLog, "":
		return PolicyLog, nil
	case PolicyPrompt:
		return PolicyPrompt, nil
	case PolicyFetch:
		return PolicyFetch, nil
	}
	return "", fmt.Errorf("unknown missing-reference policy %q (want skip, log, prompt, or fetch)", s)
}

// PromptChoice is the operator's answer under the prompt policy.
type PromptChoice int

const (
	// ChoiceQueue queues the reference for later acquisition and marks
	// the citation inconclusive.
	ChoiceQueue PromptChoice = iota

	// ChoiceAcceptVerified accepts the citation as manually verified.
	ChoiceAcceptVerified

	// ChoiceAcceptUnverified accepts the citation as unverified.
	ChoiceAcceptUnverified
)

// Prompter asks the operator how to handle one missing reference.
type Prompter interface {
	AskMissingReference(title string) (PromptChoice, error)
}
