package navigate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"docnav/internal/doctree"
	"docnav/internal/llm"
)

type completerFunc func(ctx context.Context, req llm.Request) (string, error)

func (f completerFunc) Complete(ctx context.Context, req llm.Request) (string, error) {
	return f(ctx, req)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func queryTree(t *testing.T) *doctree.Tree {
	t.Helper()
	input := `# Handbook

## Vacation Policy

Employees get 25 days.

## Expense Policy

Receipts are required.
`
	tree, err := doctree.Build("handbook", input, doctree.Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return tree
}

func TestQuery_HappyPath(t *testing.T) {
	tree := queryTree(t)

	var prompts []string
	nav := New(completerFunc(func(ctx context.Context, req llm.Request) (string, error) {
		prompts = append(prompts, req.Prompt)
		switch len(prompts) {
		case 1:
			return `{"thinking": "vacation is covered in 0002", "node_list": ["0002"]}`, nil
		default:
			return "25 days per year.", nil
		}
	}), discardLogger())

	res, err := nav.Query(context.Background(), tree, "How many vacation days?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Found {
		t.Error("expected found result")
	}
	if res.Answer != "25 days per year." {
		t.Errorf("unexpected answer %q", res.Answer)
	}
	if len(res.NodeIDs) != 1 || res.NodeIDs[0] != "0002" {
		t.Errorf("expected cited node 0002, got %v", res.NodeIDs)
	}
	if res.Thinking != "vacation is covered in 0002" {
		t.Errorf("expected selection rationale, got %q", res.Thinking)
	}
	if len(prompts) != 2 {
		t.Fatalf("expected selection then synthesis, got %d calls", len(prompts))
	}

	// Selection sees the skeleton, never node text.
	if strings.Contains(prompts[0], "Employees get 25 days.") {
		t.Error("selection prompt must not contain node text")
	}
	if !strings.Contains(prompts[0], `"node_id": "0002"`) {
		t.Errorf("selection prompt missing skeleton ids:\n%s", prompts[0])
	}

	// Synthesis sees only the selected node's text, with provenance.
	if !strings.Contains(prompts[1], "Employees get 25 days.") {
		t.Error("synthesis prompt missing selected node text")
	}
	if !strings.Contains(prompts[1], "(node 0002)") {
		t.Error("synthesis prompt missing node provenance")
	}
	if strings.Contains(prompts[1], "Receipts are required.") {
		t.Error("synthesis prompt must not contain unselected node text")
	}
}

func TestQuery_EmptySelectionShortCircuits(t *testing.T) {
	tree := queryTree(t)

	calls := 0
	nav := New(completerFunc(func(ctx context.Context, req llm.Request) (string, error) {
		calls++
		return `{"thinking": "nothing relevant", "node_list": []}`, nil
	}), discardLogger())

	res, err := nav.Query(context.Background(), tree, "What is the dress code?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Found {
		t.Error("expected not-found result")
	}
	if res.Answer != NotFoundAnswer {
		t.Errorf("expected not-found answer, got %q", res.Answer)
	}
	if len(res.NodeIDs) != 0 {
		t.Errorf("expected no cited nodes, got %v", res.NodeIDs)
	}
	if calls != 1 {
		t.Errorf("synthesis must not run on empty selection, got %d calls", calls)
	}
}

func TestQuery_UnknownIdsDropped(t *testing.T) {
	tree := queryTree(t)

	var synthesis string
	nav := New(completerFunc(func(ctx context.Context, req llm.Request) (string, error) {
		if strings.Contains(req.Prompt, "tree structure") {
			return `{"node_list": ["9999", "0003"]}`, nil
		}
		synthesis = req.Prompt
		return "Receipts are required.", nil
	}), discardLogger())

	res, err := nav.Query(context.Background(), tree, "Do I need receipts?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Found {
		t.Fatal("expected found result despite one unknown id")
	}
	if len(res.NodeIDs) != 1 || res.NodeIDs[0] != "0003" {
		t.Errorf("expected only the known id, got %v", res.NodeIDs)
	}
	if !strings.Contains(synthesis, "Receipts are required.") {
		t.Error("synthesis should use the resolved node")
	}
}

func TestQuery_AllUnknownIdsIsNotFound(t *testing.T) {
	tree := queryTree(t)

	calls := 0
	nav := New(completerFunc(func(ctx context.Context, req llm.Request) (string, error) {
		calls++
		return `{"node_list": ["7777", "8888"]}`, nil
	}), discardLogger())

	res, err := nav.Query(context.Background(), tree, "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Found || calls != 1 {
		t.Errorf("expected not-found without synthesis, found=%v calls=%d", res.Found, calls)
	}
}

func TestQuery_MalformedSelectionIsEmpty(t *testing.T) {
	tree := queryTree(t)

	nav := New(completerFunc(func(ctx context.Context, req llm.Request) (string, error) {
		return "I think the answer is probably in the vacation section.", nil
	}), discardLogger())

	res, err := nav.Query(context.Background(), tree, "vacation?")
	if err != nil {
		t.Fatalf("malformed selection must not fail the query: %v", err)
	}
	if res.Found {
		t.Error("malformed selection should resolve to not-found")
	}
}

func TestQuery_FencedSelectionReply(t *testing.T) {
	tree := queryTree(t)

	nav := New(completerFunc(func(ctx context.Context, req llm.Request) (string, error) {
		if strings.Contains(req.Prompt, "tree structure") {
			return "```json\n{\"node_list\": [\"0002\"]}\n```", nil
		}
		return "answer", nil
	}), discardLogger())

	res, err := nav.Query(context.Background(), tree, "vacation?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Found || len(res.NodeIDs) != 1 {
		t.Errorf("fenced JSON reply should parse, got %+v", res)
	}
}

func TestQuery_SelectionFailure(t *testing.T) {
	tree := queryTree(t)

	nav := New(completerFunc(func(ctx context.Context, req llm.Request) (string, error) {
		return "", &llm.RetryableError{StatusCode: 529, Message: "overloaded"}
	}), discardLogger())

	_, err := nav.Query(context.Background(), tree, "anything")
	var capErr *CapabilityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapabilityError, got %v", err)
	}
	if capErr.State != StateAwaitingSelection {
		t.Errorf("expected failure in awaiting_selection, got %s", capErr.State)
	}
	if !llm.IsRetryable(err) {
		t.Error("transient capability failures must stay retryable through the wrap")
	}
}

func TestQuery_SynthesisFailure(t *testing.T) {
	tree := queryTree(t)

	nav := New(completerFunc(func(ctx context.Context, req llm.Request) (string, error) {
		if strings.Contains(req.Prompt, "tree structure") {
			return `{"node_list": ["0001"]}`, nil
		}
		return "", errors.New("timeout")
	}), discardLogger())

	_, err := nav.Query(context.Background(), tree, "anything")
	var capErr *CapabilityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapabilityError, got %v", err)
	}
	if capErr.State != StateAwaitingAnswer {
		t.Errorf("expected failure in awaiting_answer, got %s", capErr.State)
	}
}
