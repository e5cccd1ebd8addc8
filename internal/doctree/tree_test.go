package doctree

import (
	"encoding/json"
	"strings"
	"testing"
)

const sampleDoc = `# Guide

Welcome.

## Install

Run the installer.

## Usage

Start the program.
`

func TestSkeleton_OmitsTextPreservesIds(t *testing.T) {
	tree := mustBuild(t, "guide", sampleDoc, Options{})
	tree.Walk(func(n *Node) { n.Summary = "summary of " + n.Title })

	skel := tree.Skeleton()

	data, err := json.Marshal(skel)
	if err != nil {
		t.Fatalf("marshal skeleton: %v", err)
	}
	if strings.Contains(string(data), `"text"`) {
		t.Errorf("skeleton JSON must not contain a text field: %s", data)
	}

	var count int
	var check func(orig, proj []*Node)
	check = func(orig, proj []*Node) {
		if len(orig) != len(proj) {
			t.Fatalf("skeleton shape mismatch: %d vs %d children", len(orig), len(proj))
		}
		for i := range orig {
			count++
			if proj[i].ID != orig[i].ID {
				t.Errorf("skeleton changed id %s -> %s", orig[i].ID, proj[i].ID)
			}
			if proj[i].Summary != orig[i].Summary {
				t.Errorf("skeleton dropped summary on %s", orig[i].ID)
			}
			if proj[i].Text != "" {
				t.Errorf("skeleton kept text on %s", proj[i].ID)
			}
			check(orig[i].Nodes, proj[i].Nodes)
		}
	}
	check(tree.Structure, skel.Structure)
	if count != tree.NodeCount() {
		t.Errorf("skeleton lost nodes: %d vs %d", count, tree.NodeCount())
	}

	// Projection must not disturb the original.
	if tree.Structure[0].Text == "" {
		t.Error("projection mutated the source tree")
	}
}

func TestTree_NodeLookup(t *testing.T) {
	tree := mustBuild(t, "guide", sampleDoc, Options{})

	n, ok := tree.Node("0002")
	if !ok {
		t.Fatal("expected node 0002 to exist")
	}
	if n.Title != "Install" {
		t.Errorf("expected Install, got %q", n.Title)
	}
	if _, ok := tree.Node("9999"); ok {
		t.Error("expected lookup miss for unknown id")
	}
}

func TestTree_WalkPreOrder(t *testing.T) {
	tree := mustBuild(t, "guide", sampleDoc, Options{})

	var ids []string
	tree.Walk(func(n *Node) { ids = append(ids, n.ID) })
	want := []string{"0001", "0002", "0003"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d nodes, got %v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("walk order %v, want %v", ids, want)
			break
		}
	}
}

func TestTree_JSONShape(t *testing.T) {
	tree := mustBuild(t, "guide", sampleDoc, Options{})
	tree.DocDescription = "A short guide."

	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		DocName        string `json:"doc_name"`
		DocDescription string `json:"doc_description"`
		Structure      []struct {
			Title  string          `json:"title"`
			NodeID string          `json:"node_id"`
			Text   string          `json:"text"`
			Nodes  json.RawMessage `json:"nodes"`
		} `json:"structure"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.DocName != "guide" || decoded.DocDescription != "A short guide." {
		t.Errorf("unexpected document fields: %+v", decoded)
	}
	if len(decoded.Structure) != 1 || decoded.Structure[0].NodeID != "0001" {
		t.Errorf("unexpected structure: %+v", decoded.Structure)
	}
	if decoded.Structure[0].Text == "" {
		t.Error("full form must carry node text")
	}
}
