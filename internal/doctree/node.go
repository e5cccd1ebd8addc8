package doctree

import "strings"

// Node is a single section of a document. The JSON form matches the
// exchanged tree shape: {title, node_id, summary?, text?, nodes}.
type Node struct {
	Title   string  `json:"title"`
	ID      string  `json:"node_id"`
	Summary string  `json:"summary,omitempty"`
	Text    string  `json:"text,omitempty"`
	Nodes   []*Node `json:"nodes,omitempty"`

	// Structural bookkeeping, not part of the exchange form.
	Level     int  `json:"-"` // Heading level; 0 for synthetic nodes.
	StartLine int  `json:"-"` // 0-based line index of the heading.
	EndLine   int  `json:"-"` // One past the last owned line.
	Flagged   bool `json:"-"` // Span could not be materialized.

	parent *Node
}

// Parent returns the enclosing section, or nil for top-level nodes.
func (n *Node) Parent() *Node { return n.parent }

// OwnText returns the exclusive span of this node: its heading line and
// body up to the first child heading. Node.Text includes descendant
// sections; OwnText subtracts them. Children partition the remainder of
// the span, so concatenating OwnText in pre-order reconstructs the source.
func (n *Node) OwnText() string {
	if len(n.Nodes) == 0 || n.Flagged {
		return n.Text
	}
	keep := n.Nodes[0].StartLine - n.StartLine
	if keep <= 0 {
		return ""
	}
	lines := strings.Split(n.Text, "\n")
	if keep > len(lines) {
		keep = len(lines)
	}
	return strings.Join(lines[:keep], "\n")
}

// Tree is the parsed form of one document: an ordered forest of sections
// plus an id index. A Tree is read-only after Build, so any number of
// concurrent readers may share it.
type Tree struct {
	DocName        string  `json:"doc_name"`
	DocDescription string  `json:"doc_description,omitempty"`
	Structure      []*Node `json:"structure"`

	index map[string]*Node
}

// Node looks up a node by id.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.index[id]
	return n, ok
}

// NodeCount returns the total number of nodes in the tree.
func (t *Tree) NodeCount() int { return len(t.index) }

// Walk visits every node in pre-order (document order).
func (t *Tree) Walk(fn func(*Node)) {
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			fn(n)
			walk(n.Nodes)
		}
	}
	walk(t.Structure)
}

// Skeleton returns a projection of the tree with all text omitted. Ids,
// titles, summaries and child order are preserved, so a selection made
// against the skeleton resolves against the full tree.
func (t *Tree) Skeleton() *Tree {
	var strip func(nodes []*Node) []*Node
	strip = func(nodes []*Node) []*Node {
		if len(nodes) == 0 {
			return nil
		}
		out := make([]*Node, 0, len(nodes))
		for _, n := range nodes {
			out = append(out, &Node{
				Title:   n.Title,
				ID:      n.ID,
				Summary: n.Summary,
				Level:   n.Level,
				Nodes:   strip(n.Nodes),
			})
		}
		return out
	}
	return &Tree{
		DocName:        t.DocName,
		DocDescription: t.DocDescription,
		Structure:      strip(t.Structure),
	}
}
