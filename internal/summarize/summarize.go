// Package summarize attaches short descriptions to document tree nodes.
// Summaries make the skeleton readable for the selection step but are not
// required for correctness: any node whose summary call fails keeps an
// empty summary and the rest of the tree proceeds.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docnav/internal/doctree"
	"docnav/internal/llm"
)

// Cap on how much section text is sent per summary call.
const maxInputChars = 16000

type Config struct {
	MaxConcurrent int // Concurrent summary calls per document.
	MaxWords      int // Word budget given to the model per summary.
}

type Summarizer struct {
	completer llm.Completer
	log       *slog.Logger
	cfg       Config

	backoff func(attempt int) time.Duration
}

func New(completer llm.Completer, log *slog.Logger, cfg Config) *Summarizer {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 5
	}
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = 60
	}
	return &Summarizer{completer: completer, log: log, cfg: cfg, backoff: llm.Backoff}
}

// SummarizeTree fills in Summary for every node in the tree, issuing calls
// with bounded concurrency. Nodes are independent: one node's failure never
// blocks or fails the others. Returns the number of nodes whose summary
// could not be produced.
func (s *Summarizer) SummarizeTree(ctx context.Context, tree *doctree.Tree) int {
	var nodes []*doctree.Node
	tree.Walk(func(n *doctree.Node) { nodes = append(nodes, n) })
	if len(nodes) == 0 {
		return 0
	}

	type result struct {
		idx     int
		summary string
		err     error
	}
	results := make(chan result, len(nodes))
	sem := make(chan struct{}, s.cfg.MaxConcurrent)

	for i, node := range nodes {
		sem <- struct{}{}
		go func(i int, node *doctree.Node) {
			defer func() { <-sem }()
			summary, err := s.summarizeNode(ctx, tree.DocName, node)
			results <- result{idx: i, summary: summary, err: err}
		}(i, node)
	}

	failed := 0
	for range nodes {
		r := <-results
		if r.err != nil {
			failed++
			s.log.Warn("node summary failed", "doc", tree.DocName, "node_id", nodes[r.idx].ID, "error", r.err)
			continue
		}
		nodes[r.idx].Summary = r.summary
	}
	return failed
}

func (s *Summarizer) summarizeNode(ctx context.Context, docName string, node *doctree.Node) (string, error) {
	text := node.Text
	if len(text) > maxInputChars {
		text = text[:maxInputChars]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Document: %q\nSection: %q\n\n", docName, node.Title)
	sb.WriteString("Section content:\n")
	sb.WriteString(text)
	fmt.Fprintf(&sb, "\n\nProduce a brief, faithful description of this section in under %d words. ", s.cfg.MaxWords)
	sb.WriteString("Describe only what the section contains, using its own terminology. Do not speculate or interpret. Reply with the description only.")

	req := llm.Request{Prompt: sb.String(), MaxTokens: 512}

	var reply string
	var err error
	for attempt := range llm.MaxRetries {
		reply, err = s.completer.Complete(ctx, req)
		if err == nil || !llm.IsRetryable(err) {
			break
		}
		s.log.Warn("retryable summary error", "node_id", node.ID, "attempt", attempt, "error", err)
		select {
		case <-time.After(s.backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// DescribeDocument produces the document-level description from the head
// of the converted text. Failure degrades to an empty description.
func (s *Summarizer) DescribeDocument(ctx context.Context, docName, text string) (string, error) {
	if len(text) > maxInputChars {
		text = text[:maxInputChars]
	}
	prompt := fmt.Sprintf(
		"The following is the beginning of the document %q:\n\n%s\n\nWrite a 2-4 sentence description of the document's purpose and content. Reply with the description only.",
		docName, text)

	reply, err := s.completer.Complete(ctx, llm.Request{Prompt: prompt, MaxTokens: 512})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}
