// Package store is the in-process registry of built document trees.
// Trees are immutable once registered, so readers never lock each other;
// the store only guards its own maps.
package store

import (
	"sort"
	"sync"
	"time"

	"docnav/internal/doctree"
)

// Record is one ingested document and its built tree.
type Record struct {
	DocID       string
	Filename    string
	ContentHash string
	CreatedAt   time.Time
	Tree        *doctree.Tree
}

// Store is a thread-safe registry of documents keyed by doc id, with a
// content-hash index for duplicate detection.
type Store struct {
	mu     sync.RWMutex
	docs   map[string]*Record
	byHash map[string]string
}

func New() *Store {
	return &Store{
		docs:   make(map[string]*Record),
		byHash: make(map[string]string),
	}
}

// Put registers a document, replacing any previous record for the same id.
func (s *Store) Put(rec *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.docs[rec.DocID]; ok && old.ContentHash != rec.ContentHash {
		delete(s.byHash, old.ContentHash)
	}
	s.docs[rec.DocID] = rec
	if rec.ContentHash != "" {
		s.byHash[rec.ContentHash] = rec.DocID
	}
}

// Get returns the record for a doc id.
func (s *Store) Get(docID string) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.docs[docID]
	return rec, ok
}

// ByHash returns the id of the document with the given content hash.
func (s *Store) ByHash(hash string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byHash[hash]
	return id, ok
}

// List returns all records ordered by ingestion time, newest first.
func (s *Store) List() []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Record, 0, len(s.docs))
	for _, rec := range s.docs {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].DocID < out[j].DocID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Delete removes a document. Returns false if it was not present.
func (s *Store) Delete(docID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.docs[docID]
	if !ok {
		return false
	}
	delete(s.docs, docID)
	delete(s.byHash, rec.ContentHash)
	return true
}

// Len returns the number of registered documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
