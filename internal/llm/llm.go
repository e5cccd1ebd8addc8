package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Request is one completion exchange with the reasoning capability.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Completer is the narrow seam to the external reasoning capability. The
// summarizer and the retrieval navigator both depend on this interface
// only, so tests substitute canned responses for the real API.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// StripCodeFence removes a wrapping markdown code fence from a model
// reply, if present.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
