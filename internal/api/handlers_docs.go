package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// handleListDocuments lists all registered documents, newest first.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	var docs []map[string]any
	for _, rec := range s.docs.List() {
		docs = append(docs, map[string]any{
			"doc_id":       rec.DocID,
			"doc_name":     rec.Tree.DocName,
			"filename":     rec.Filename,
			"content_hash": rec.ContentHash,
			"created_at":   rec.CreatedAt,
			"node_count":   rec.Tree.NodeCount(),
		})
	}
	if docs == nil {
		docs = []map[string]any{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": docs})
}

// handleGetDocument returns the full tree of a document, text included.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.docs.Get(chi.URLParam(r, "docID"))
	if !ok {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec.Tree)
}

// handleGetSkeleton returns the tree with all node text omitted. This is
// the projection the query flow sends to the model, exposed for
// inspection and for clients that browse structure only.
func (s *Server) handleGetSkeleton(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.docs.Get(chi.URLParam(r, "docID"))
	if !ok {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec.Tree.Skeleton())
}

// handleDeleteDocument removes a document from the registry.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if !s.docs.Delete(docID) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": docID})
}

// handleGetNode returns a single node with its inclusive text span.
func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.docs.Get(chi.URLParam(r, "docID"))
	if !ok {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	node, ok := rec.Tree.Node(chi.URLParam(r, "nodeID"))
	if !ok {
		jsonError(w, "node not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(node)
}

var nodeRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// handleGetNodeHTML renders a node's markdown span as HTML for preview.
func (s *Server) handleGetNodeHTML(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.docs.Get(chi.URLParam(r, "docID"))
	if !ok {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	node, ok := rec.Tree.Node(chi.URLParam(r, "nodeID"))
	if !ok {
		jsonError(w, "node not found", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := nodeRenderer.Convert([]byte(node.Text), &buf); err != nil {
		jsonError(w, "failed to render node: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
