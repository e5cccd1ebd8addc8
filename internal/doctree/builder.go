package doctree

import (
	"fmt"
	"strings"
)

// PreambleTitle names the synthetic node that owns content appearing
// before the first heading.
const PreambleTitle = "Preamble"

// Options controls tree construction.
type Options struct {
	Scan ScanOptions

	// DropPreamble discards content before the first heading instead of
	// attaching it to a synthetic node. The default keeps it: every source
	// character should have exactly one owning node.
	DropPreamble bool
}

// Build constructs a document tree from markdown text.
//
// Headings are assembled into a forest with a level-ordered stack: a new
// heading closes every open section of equal or senior level, then becomes
// a child of whatever section remains open (or a top-level node). Equal
// levels are therefore always siblings, and skipped levels (a level-3
// heading directly under a level-1) attach directly without synthesizing
// the missing intermediate - the builder never invents sections.
//
// Node ids are assigned at creation time, which in this algorithm is
// pre-order document order, as zero-padded strings "0001", "0002", ...
// Each node's text is the exact source span from its heading line up to
// the next heading of equal or senior level, so a parent's text contains
// its descendants' text.
func Build(docName, text string, opts Options) (*Tree, error) {
	res := Scan(text, opts.Scan)
	tree := &Tree{DocName: docName, index: make(map[string]*Node)}

	// Empty document: an explicit empty tree, not an error.
	if len(res.Records) == 0 && !hasContent(res.Lines) {
		return tree, nil
	}

	nextID := 0
	newNode := func(title string, level, startLine int) (*Node, error) {
		nextID++
		id := fmt.Sprintf("%04d", nextID)
		if _, exists := tree.index[id]; exists {
			return nil, fmt.Errorf("node id collision on %q: builder invariant violated", id)
		}
		n := &Node{Title: title, ID: id, Level: level, StartLine: startLine}
		tree.index[id] = n
		return n, nil
	}

	// No headings at all: a single synthetic node owning the whole document.
	if len(res.Records) == 0 {
		n, err := newNode(docName, 0, 0)
		if err != nil {
			return nil, err
		}
		n.EndLine = len(res.Lines)
		n.Text = strings.Join(res.Lines, "\n")
		tree.Structure = []*Node{n}
		return tree, nil
	}

	// Content before the first heading.
	first := res.Records[0]
	if first.Line > 0 && hasContent(res.Lines[:first.Line]) && !opts.DropPreamble {
		pre, err := newNode(PreambleTitle, 0, 0)
		if err != nil {
			return nil, err
		}
		pre.EndLine = first.Line
		pre.Text = strings.Join(res.Lines[:first.Line], "\n")
		tree.Structure = append(tree.Structure, pre)
	}

	type frame struct {
		node  *Node
		level int
	}
	var stack []frame

	for i, rec := range res.Records {
		// Close every section that cannot be an ancestor. Ancestors must
		// have a strictly smaller level, so popping on >= makes equal
		// levels siblings rather than nesting them.
		for len(stack) > 0 && stack[len(stack)-1].level >= rec.Level {
			stack = stack[:len(stack)-1]
		}

		n, err := newNode(rec.Title, rec.Level, rec.Line)
		if err != nil {
			return nil, err
		}

		end := len(res.Lines)
		for _, later := range res.Records[i+1:] {
			if later.Level <= rec.Level {
				end = later.Line
				break
			}
		}
		n.EndLine = end
		if end < rec.Line {
			// Cannot happen with an ordered scan; keep the node but give
			// it no text rather than failing the whole document.
			n.Flagged = true
		} else {
			n.Text = strings.Join(res.Lines[rec.Line:end], "\n")
		}

		if len(stack) == 0 {
			tree.Structure = append(tree.Structure, n)
		} else {
			parent := stack[len(stack)-1].node
			n.parent = parent
			parent.Nodes = append(parent.Nodes, n)
		}
		stack = append(stack, frame{node: n, level: rec.Level})
	}
	// A non-empty stack here is normal: the last open sections simply run
	// to end of document.

	return tree, nil
}

func hasContent(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}
