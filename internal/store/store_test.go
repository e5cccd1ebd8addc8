package store

import (
	"testing"
	"time"

	"docnav/internal/doctree"
)

func record(t *testing.T, docID, hash string, at time.Time) *Record {
	t.Helper()
	tree, err := doctree.Build(docID, "# Title\nbody\n", doctree.Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return &Record{DocID: docID, Filename: docID + ".md", ContentHash: hash, CreatedAt: at, Tree: tree}
}

func TestStore_PutGet(t *testing.T) {
	s := New()
	rec := record(t, "doc-1", "hash-1", time.Now())
	s.Put(rec)

	got, ok := s.Get("doc-1")
	if !ok {
		t.Fatal("expected record back")
	}
	if got.Tree.NodeCount() != 1 {
		t.Errorf("unexpected tree: %d nodes", got.Tree.NodeCount())
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("expected miss for unknown id")
	}
}

func TestStore_ByHash(t *testing.T) {
	s := New()
	s.Put(record(t, "doc-1", "hash-1", time.Now()))

	id, ok := s.ByHash("hash-1")
	if !ok || id != "doc-1" {
		t.Errorf("expected doc-1 for hash-1, got %q (ok=%v)", id, ok)
	}
	if _, ok := s.ByHash("hash-2"); ok {
		t.Error("expected miss for unknown hash")
	}
}

func TestStore_ReplaceUpdatesHashIndex(t *testing.T) {
	s := New()
	s.Put(record(t, "doc-1", "hash-old", time.Now()))
	s.Put(record(t, "doc-1", "hash-new", time.Now()))

	if _, ok := s.ByHash("hash-old"); ok {
		t.Error("stale hash entry must be removed on replace")
	}
	if id, ok := s.ByHash("hash-new"); !ok || id != "doc-1" {
		t.Errorf("expected doc-1 for new hash, got %q (ok=%v)", id, ok)
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := New()
	now := time.Now()
	s.Put(record(t, "older", "h1", now.Add(-time.Hour)))
	s.Put(record(t, "newer", "h2", now))

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}
	if list[0].DocID != "newer" || list[1].DocID != "older" {
		t.Errorf("unexpected order: %s, %s", list[0].DocID, list[1].DocID)
	}
}

func TestStore_Delete(t *testing.T) {
	s := New()
	s.Put(record(t, "doc-1", "hash-1", time.Now()))

	if !s.Delete("doc-1") {
		t.Fatal("expected delete to succeed")
	}
	if s.Delete("doc-1") {
		t.Error("second delete should report missing")
	}
	if _, ok := s.ByHash("hash-1"); ok {
		t.Error("hash index must be cleaned on delete")
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
}
