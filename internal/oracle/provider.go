// Package oracle talks to the language model that judges whether a citation
// claim is supported by the cited document's text.
package oracle

import "context"

// Provider answers a single verification prompt with free-form text. The
// caller is responsible for parsing the answer into a verdict.
type Provider interface {
	// Complete sends a system and user prompt and returns the model's text.
	Complete(ctx context.Context, system, user string) (string, error)

	// Name identifies the provider and model for logging and reports.
	Name() string
}
