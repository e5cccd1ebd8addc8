package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"docnav/internal/llm"
	"docnav/internal/navigate"
	"github.com/go-chi/chi/v5"
)

type queryRequest struct {
	Query string `json:"query"`
}

// handleQuery answers a natural-language question over one document's
// tree. A not-found outcome is a 200 with found=false; only a failure of
// the reasoning capability itself is an error status.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.docs.Get(chi.URLParam(r, "docID"))
	if !ok {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		jsonError(w, "query is required", http.StatusBadRequest)
		return
	}

	result, err := s.navigator.Query(r.Context(), rec.Tree, req.Query)
	if err != nil {
		var capErr *navigate.CapabilityError
		if errors.As(err, &capErr) {
			s.log.Error("query failed", "doc_id", rec.DocID, "state", capErr.State, "error", capErr.Err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]any{
				"error":     "reasoning capability failed",
				"state":     capErr.State,
				"retryable": llm.IsRetryable(err),
			})
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
