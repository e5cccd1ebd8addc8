// Package navigate answers queries against a built document tree. The
// tree skeleton (ids, titles, summaries - no text) is shown to the
// reasoning capability, which selects node ids; only the selected nodes'
// materialized text is then used to synthesize the answer. This keeps the
// selection payload bounded regardless of document size while still
// resolving to exact source spans.
package navigate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"docnav/internal/doctree"
	"docnav/internal/llm"
)

// State names the navigator's position in a query exchange.
type State string

const (
	StateReceivedQuery     State = "received_query"
	StateSkeletonBuilt     State = "skeleton_built"
	StateAwaitingSelection State = "awaiting_selection"
	StateSelectionResolved State = "selection_resolved"
	StateAwaitingAnswer    State = "awaiting_answer"
	StateAnswered          State = "answered"
	StateFailed            State = "failed"
)

// NotFoundAnswer is returned when selection yields no usable nodes. It is
// a successful negative result, not an error.
const NotFoundAnswer = "The document does not contain a section relevant to this question."

// CapabilityError reports that the reasoning capability failed during a
// query. It is retryable from the caller's point of view; the navigator
// itself never retries.
type CapabilityError struct {
	State State
	Err   error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("reasoning capability failed in state %s: %v", e.State, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

// Result is a completed query: the answer plus the ids of the nodes it
// was synthesized from.
type Result struct {
	Answer   string   `json:"answer"`
	NodeIDs  []string `json:"node_ids"`
	Found    bool     `json:"found"`
	Thinking string   `json:"thinking,omitempty"`
}

type Navigator struct {
	completer llm.Completer
	log       *slog.Logger
}

func New(completer llm.Completer, log *slog.Logger) *Navigator {
	return &Navigator{completer: completer, log: log}
}

type selectionReply struct {
	Thinking string   `json:"thinking"`
	NodeList []string `json:"node_list"`
}

// Query runs the two-phase retrieval exchange: node selection over the
// skeleton, then answer synthesis over the selected nodes' text. The two
// calls are strictly sequential. The tree is never mutated, so concurrent
// queries against one tree are safe.
func (nav *Navigator) Query(ctx context.Context, tree *doctree.Tree, query string) (Result, error) {
	log := nav.log.With("doc", tree.DocName)
	state := StateReceivedQuery
	step := func(next State) {
		state = next
		log.Debug("navigator state", "state", state)
	}

	skeleton, err := json.MarshalIndent(tree.Skeleton(), "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("marshal skeleton: %w", err)
	}
	step(StateSkeletonBuilt)

	step(StateAwaitingSelection)
	reply, err := nav.completer.Complete(ctx, llm.Request{
		Prompt:    selectionPrompt(query, skeleton),
		MaxTokens: 2048,
	})
	if err != nil {
		log.Error("selection call failed", "error", err)
		step(StateFailed)
		return Result{}, &CapabilityError{State: StateAwaitingSelection, Err: err}
	}

	var sel selectionReply
	if err := json.Unmarshal([]byte(llm.StripCodeFence(reply)), &sel); err != nil {
		// A malformed selection reply means no usable selection, not a
		// failed query.
		log.Warn("malformed selection reply, treating as empty", "error", err)
		sel = selectionReply{}
	}

	// Resolve ids against the tree index; unknown ids are dropped.
	var nodes []*doctree.Node
	var nodeIDs []string
	for _, id := range sel.NodeList {
		n, ok := tree.Node(id)
		if !ok {
			log.Warn("selection returned unknown node id", "node_id", id)
			continue
		}
		nodes = append(nodes, n)
		nodeIDs = append(nodeIDs, id)
	}
	step(StateSelectionResolved)
	log.Info("selection resolved", "selected", len(sel.NodeList), "resolved", len(nodes))

	if len(nodes) == 0 {
		// A valid, meaningful negative: skip synthesis entirely rather
		// than invoking it with empty context.
		step(StateAnswered)
		return Result{Answer: NotFoundAnswer, NodeIDs: []string{}, Found: false, Thinking: sel.Thinking}, nil
	}

	step(StateAwaitingAnswer)
	answer, err := nav.completer.Complete(ctx, llm.Request{
		Prompt:    synthesisPrompt(query, nodes),
		MaxTokens: 4096,
	})
	if err != nil {
		log.Error("synthesis call failed", "error", err)
		step(StateFailed)
		return Result{}, &CapabilityError{State: StateAwaitingAnswer, Err: err}
	}

	step(StateAnswered)
	return Result{
		Answer:   strings.TrimSpace(answer),
		NodeIDs:  nodeIDs,
		Found:    true,
		Thinking: sel.Thinking,
	}, nil
}

func selectionPrompt(query string, skeleton []byte) string {
	var sb strings.Builder
	sb.WriteString("You are given a question and a tree structure of a document.\n")
	sb.WriteString("Each node contains a node id, node title, and a corresponding summary.\n")
	sb.WriteString("Your task is to find all nodes that are likely to contain the answer to the question.\n\n")
	fmt.Fprintf(&sb, "Question: %s\n\n", query)
	sb.WriteString("Document tree structure:\n")
	sb.Write(skeleton)
	sb.WriteString("\n\nReply in the following JSON format:\n")
	sb.WriteString("{\n")
	sb.WriteString("    \"thinking\": \"<your reasoning about which nodes are relevant to the question>\",\n")
	sb.WriteString("    \"node_list\": [\"node_id_1\", \"node_id_2\", ..., \"node_id_n\"]\n")
	sb.WriteString("}\n")
	sb.WriteString("Return an empty node_list if no section of the document is relevant.\n")
	sb.WriteString("Directly return the final JSON structure. Do not output anything else.\n")
	return sb.String()
}

func synthesisPrompt(query string, nodes []*doctree.Node) string {
	var sb strings.Builder
	sb.WriteString("Answer the question based on the context provided.\n\n")
	fmt.Fprintf(&sb, "Question: %s\n\n", query)
	sb.WriteString("Context:\n")
	for _, n := range nodes {
		fmt.Fprintf(&sb, "\n### %s (node %s)\n%s\n", n.Title, n.ID, n.Text)
	}
	sb.WriteString("\nProvide a clear, concise answer based only on the context provided.\n")
	sb.WriteString("If the context doesn't contain enough information to answer, say so.\n")
	return sb.String()
}
