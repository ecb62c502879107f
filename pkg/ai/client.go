// Package ai talks to an OpenAI-compatible chat completions endpoint for
// free-text agronomy chat and symptom diagnosis.
package ai

import "context"

// Diagnosis is the structured answer to a symptom description.
type Diagnosis struct {
	Disease  string   `json:"disease"`
	Remedies []string `json:"remedies"`
}

type Client interface {
	Chat(ctx context.Context, message string) (string, error)
	// Diagnose asks for a {"disease","remedies"} document; kbCtx is optional
	// background text from the knowledge base.
	Diagnose(ctx context.Context, symptoms, kbCtx string) (*Diagnosis, error)
}
